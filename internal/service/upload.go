package service

import (
	"context"
	"fmt"
	"time"

	"github.com/mansoorceksport/fileupload/internal/domain"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// UploadServiceImpl implements domain.UploadService
type UploadServiceImpl struct {
	fileRepository domain.FileRepository
	now            func() time.Time
}

// NewUploadService creates a new upload service
func NewUploadService(fileRepository domain.FileRepository) *UploadServiceImpl {
	return &UploadServiceImpl{
		fileRepository: fileRepository,
		now:            time.Now,
	}
}

// WithClock replaces the time source used for filename prefixes
func (s *UploadServiceImpl) WithClock(now func() time.Time) *UploadServiceImpl {
	s.now = now
	return s
}

// StoredName prefixes the original filename with the millisecond epoch.
// Two uploads of the same name in the same millisecond collide.
func StoredName(at time.Time, originalName string) string {
	return fmt.Sprintf("%d-%s", at.UnixMilli(), originalName)
}

// Store persists one uploaded file and describes where it landed
func (s *UploadServiceImpl) Store(ctx context.Context, input domain.UploadInput) (*domain.StoredFile, error) {
	if input.OriginalName == "" {
		return nil, domain.ErrNoFile
	}

	storedAt := s.now()
	filename := StoredName(storedAt, input.OriginalName)

	ctx, span := otel.Tracer("upload").Start(ctx, "upload.Store")
	defer span.End()
	span.SetAttributes(
		attribute.String("upload.filename", filename),
		attribute.String("upload.content_type", input.ContentType),
		attribute.Int("upload.size", len(input.Data)),
	)

	url, err := s.fileRepository.Upload(ctx, input.Data, filename, input.ContentType)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	return &domain.StoredFile{
		Filename:     filename,
		OriginalName: input.OriginalName,
		ContentType:  input.ContentType,
		Size:         int64(len(input.Data)),
		URL:          url,
		StoredAt:     storedAt,
	}, nil
}
