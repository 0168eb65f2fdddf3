package domain

import (
	"context"
	"time"
)

// FileRepository defines the interface for file storage operations
type FileRepository interface {
	// Upload saves a file under filename and returns its access URL
	Upload(ctx context.Context, file []byte, filename string, contentType string) (string, error)
}

// StoredFile describes one file persisted by the upload service.
// Filename has the form "<unixMillis>-<OriginalName>".
type StoredFile struct {
	Filename     string
	OriginalName string
	ContentType  string
	Size         int64
	URL          string
	StoredAt     time.Time
}

// UploadInput is what the server extracted from the multipart "file" part
type UploadInput struct {
	OriginalName string
	ContentType  string
	Data         []byte
}

// UploadService stores one uploaded file per call
type UploadService interface {
	Store(ctx context.Context, input UploadInput) (*StoredFile, error)
}
