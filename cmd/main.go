package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mansoorceksport/fileupload/internal/config"
	"github.com/mansoorceksport/fileupload/internal/domain"
	"github.com/mansoorceksport/fileupload/internal/repository"
	"github.com/mansoorceksport/fileupload/internal/server"
	"github.com/mansoorceksport/fileupload/internal/telemetry"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	log.Println("Starting File Upload Service...")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	otelProvider, err := telemetry.Initialize(ctx, telemetry.Config{
		ServiceName:    cfg.OTEL.ServiceName,
		ServiceVersion: cfg.OTEL.ServiceVersion,
		Environment:    cfg.OTEL.Environment,
		OTLPEndpoint:   cfg.OTEL.Endpoint,
		OTLPHeaders:    telemetry.BasicAuthHeaders(cfg.OTEL.InstanceID, cfg.OTEL.Token),
		Enabled:        cfg.OTEL.Enabled,
	})
	if err != nil {
		log.Printf("Warning: Failed to initialize OpenTelemetry: %v", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		otelProvider.Shutdown(shutdownCtx)
	}()

	fileRepo, err := newFileRepository(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to initialize storage: %v", err)
	}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       0,
		})
		defer redisClient.Close()

		if err := redisClient.Ping(ctx).Err(); err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		log.Println("✓ Redis connected, idempotent replay enabled")
	}

	app := server.NewApp(server.AppDependencies{
		Config:         cfg,
		FileRepository: fileRepo,
		RedisClient:    redisClient,
	})

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Printf("🚀 Server starting on port %s", cfg.Server.Port)
		return app.Listen(":" + cfg.Server.Port)
	})
	g.Go(func() error {
		<-gCtx.Done()
		log.Println("Shutting down gracefully...")
		return app.ShutdownWithTimeout(10 * time.Second)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatalf("Server stopped: %v", err)
	}
}

func newFileRepository(ctx context.Context, cfg *config.Config) (domain.FileRepository, error) {
	switch cfg.Storage.Backend {
	case config.BackendS3:
		repo, err := repository.NewSeaweedS3Repository(ctx, cfg.S3)
		if err != nil {
			return nil, err
		}
		log.Printf("✓ S3 storage ready (bucket %s)", cfg.S3.Bucket)
		return repo, nil
	default:
		dir := cfg.Storage.UploadPath()
		log.Printf("✓ Disk storage at %s, served under %s", dir, cfg.Storage.PublicPath)
		return repository.NewDiskFileRepository(dir, cfg.Storage.PublicPath), nil
	}
}
