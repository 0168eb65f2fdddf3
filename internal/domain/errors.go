package domain

import (
	"errors"
	"fmt"
)

// Common errors
var (
	ErrNoFile             = errors.New("No file uploaded")
	ErrFileRequired       = errors.New("File is required")
	ErrNameRequired       = errors.New("Name is required")
	ErrFileTooLarge       = errors.New("File size must be less than 5MB")
	ErrInvalidFileType    = errors.New("Only JPEG, PNG, and PDF files are accepted")
	ErrSubmissionInFlight = errors.New("an upload is already in progress")
)

// ResponseError is a non-2xx answer from the upload endpoint.
// Message carries the server's "error" field and may be empty.
type ResponseError struct {
	StatusCode int
	Message    string
}

func (e *ResponseError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("upload endpoint returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("upload endpoint returned status %d: %s", e.StatusCode, e.Message)
}
