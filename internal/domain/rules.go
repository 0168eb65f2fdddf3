package domain

import (
	"mime"
	"strings"
)

// MaxFileSize is the largest accepted upload, 5MB
const MaxFileSize int64 = 5 * 1024 * 1024

// Accepted MIME types
const (
	MIMEJPEG = "image/jpeg"
	MIMEPNG  = "image/png"
	MIMEPDF  = "application/pdf"
)

// AcceptedMIMETypes lists the types the form accepts, in display order
var AcceptedMIMETypes = []string{MIMEJPEG, MIMEPNG, MIMEPDF}

// AcceptedExtensions maps each accepted type to the extensions a file picker should offer
var AcceptedExtensions = map[string][]string{
	MIMEJPEG: {".jpg", ".jpeg"},
	MIMEPNG:  {".png"},
	MIMEPDF:  {".pdf"},
}

// IsAcceptedType reports whether mimeType is one of AcceptedMIMETypes.
// Parameters such as "; charset=" are ignored.
func IsAcceptedType(mimeType string) bool {
	mediaType := NormalizeMIMEType(mimeType)
	for _, t := range AcceptedMIMETypes {
		if mediaType == t {
			return true
		}
	}
	return false
}

// NormalizeMIMEType lowercases and strips parameters from a Content-Type value
func NormalizeMIMEType(mimeType string) string {
	if mediaType, _, err := mime.ParseMediaType(mimeType); err == nil {
		return mediaType
	}
	return strings.ToLower(strings.TrimSpace(mimeType))
}

// CheckFile applies the size rule then the type rule.
// A size equal to maxSize is accepted.
func CheckFile(size int64, mimeType string, maxSize int64) error {
	if size > maxSize {
		return ErrFileTooLarge
	}
	if !IsAcceptedType(mimeType) {
		return ErrInvalidFileType
	}
	return nil
}

// AcceptAttribute renders the accepted types and extensions for an HTML file input
func AcceptAttribute() string {
	parts := make([]string, 0, len(AcceptedMIMETypes)*2)
	for _, t := range AcceptedMIMETypes {
		parts = append(parts, t)
		parts = append(parts, AcceptedExtensions[t]...)
	}
	return strings.Join(parts, ",")
}
