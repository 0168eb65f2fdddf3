package server

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/mansoorceksport/fileupload/internal/config"
	"github.com/mansoorceksport/fileupload/internal/domain"
	"github.com/mansoorceksport/fileupload/internal/handler"
	"github.com/mansoorceksport/fileupload/internal/middleware"
	"github.com/mansoorceksport/fileupload/internal/service"
	"github.com/mansoorceksport/fileupload/internal/telemetry"
	"github.com/redis/go-redis/v9"
)

// UploadRoute is the JSON upload endpoint
const UploadRoute = "/api/upload"

// AppDependencies holds the dependencies required to start the application
type AppDependencies struct {
	Config         *config.Config
	FileRepository domain.FileRepository
	RedisClient    *redis.Client              // optional, enables idempotent replay
	UploadService  *service.UploadServiceImpl // optional, built from FileRepository when nil
	Metrics        *telemetry.UploadMetrics   // optional
}

// NewApp creates and configures the Fiber application with the given dependencies
func NewApp(deps AppDependencies) *fiber.App {
	cfg := deps.Config

	uploadService := deps.UploadService
	if uploadService == nil {
		uploadService = service.NewUploadService(deps.FileRepository)
	}
	metrics := deps.Metrics
	if metrics == nil {
		metrics = telemetry.NewUploadMetrics()
	}

	uploadHandler := handler.NewUploadHandler(uploadService, metrics, cfg.Server.EnforceUploadRules, cfg.Server.MaxUploadBytes())
	pageHandler := handler.NewPageHandler(uploadService, metrics, UploadRoute)

	app := fiber.New(fiber.Config{
		AppName:      "File Upload API",
		BodyLimit:    int(cfg.Server.BodyLimitMB * 1024 * 1024),
		ErrorHandler: customErrorHandler,
	})

	// Global middleware
	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, X-Correlation-ID",
		AllowMethods: "GET, POST, OPTIONS",
	}))
	app.Use(telemetry.FiberMiddleware())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "healthy",
			"service": "file-upload",
		})
	})
	app.Get("/metrics", metrics.Handler())

	// Stored files are served by static file serving, not by the upload handler
	if cfg.Storage.Backend == config.BackendDisk {
		app.Static(cfg.Storage.PublicPath, cfg.Storage.UploadPath())
	}

	app.Get("/", pageHandler.Show)
	app.Post("/form", pageHandler.Submit)

	api := app.Group("/api")
	if deps.RedisClient != nil {
		api.Use(middleware.IdempotencyMiddleware(deps.RedisClient, cfg.Redis.IdempotencyTTL, func() {
			metrics.Observe(telemetry.OutcomeReplayed, 0)
		}))
	}
	api.Post("/upload", uploadHandler.Upload)

	return app
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
	}
	log.Printf("Error: %v", err)
	return c.Status(code).JSON(domain.ErrorResponse{
		Error: err.Error(),
	})
}
