package repository

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// DiskFileRepository implements domain.FileRepository on the local filesystem.
// Files land in dir and are served back by the host under publicPath.
type DiskFileRepository struct {
	dir        string
	publicPath string
}

// NewDiskFileRepository creates a new disk repository. The directory is created lazily on upload.
func NewDiskFileRepository(dir, publicPath string) *DiskFileRepository {
	return &DiskFileRepository{
		dir:        dir,
		publicPath: publicPath,
	}
}

// Dir returns the directory files are written to
func (r *DiskFileRepository) Dir() string {
	return r.dir
}

// Upload writes file to dir/filename and returns publicPath/filename.
// There is no temp-file rename, so a crash mid-write can leave a truncated file.
func (r *DiskFileRepository) Upload(ctx context.Context, file []byte, filename string, contentType string) (string, error) {
	tracer := otel.Tracer("disk")
	_, span := tracer.Start(ctx, "disk.Write",
		trace.WithAttributes(
			attribute.String("file.name", filename),
			attribute.String("file.content_type", contentType),
			attribute.Int("file.size", len(file)),
		),
	)
	defer span.End()

	// MkdirAll is a no-op when the directory already exists
	if err := os.MkdirAll(r.dir, 0o755); err != nil {
		span.RecordError(err)
		return "", fmt.Errorf("failed to create upload directory: %w", err)
	}

	if err := os.WriteFile(filepath.Join(r.dir, filename), file, 0o644); err != nil {
		span.RecordError(err)
		return "", fmt.Errorf("failed to write file: %w", err)
	}

	return path.Join(r.publicPath, filename), nil
}
