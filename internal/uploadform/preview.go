package uploadform

import (
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/oklog/ulid/v2"
)

// PreviewKind says how a selected file is previewed
type PreviewKind int

const (
	PreviewNone PreviewKind = iota
	PreviewImage
	PreviewDocument
)

// Preview is what the form shows for the active file
type Preview struct {
	Kind     PreviewKind
	URL      string // object URL, images only
	Name     string
	MIMEType string
}

// ObjectURLs hands out temporary, revocable references to local file data
type ObjectURLs interface {
	Create(file File) (string, error)
	Revoke(url string) error
}

// TempObjectURLs backs object URLs with copies in a private temp directory
type TempObjectURLs struct {
	dir string

	mu    sync.Mutex
	paths map[string]string
}

// NewTempObjectURLs creates the backing directory under parent ("" = os.TempDir)
func NewTempObjectURLs(parent string) (*TempObjectURLs, error) {
	dir, err := os.MkdirTemp(parent, "upload-preview-")
	if err != nil {
		return nil, fmt.Errorf("failed to create preview directory: %w", err)
	}
	return &TempObjectURLs{dir: dir, paths: make(map[string]string)}, nil
}

// Create copies the file and returns a file:// URL to the copy
func (t *TempObjectURLs) Create(file File) (string, error) {
	src, err := file.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	path := filepath.Join(t.dir, ulid.Make().String()+strings.ToLower(filepath.Ext(file.Name)))
	dst, err := os.Create(path)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		os.Remove(path)
		return "", err
	}
	if err := dst.Close(); err != nil {
		os.Remove(path)
		return "", err
	}

	u := (&url.URL{Scheme: "file", Path: filepath.ToSlash(path)}).String()

	t.mu.Lock()
	t.paths[u] = path
	t.mu.Unlock()
	return u, nil
}

// Revoke deletes the copy behind u. Unknown URLs are ignored.
func (t *TempObjectURLs) Revoke(u string) error {
	t.mu.Lock()
	path, ok := t.paths[u]
	delete(t.paths, u)
	t.mu.Unlock()

	if !ok {
		return nil
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// Active is the number of URLs not yet revoked
func (t *TempObjectURLs) Active() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.paths)
}

// Close revokes everything and removes the backing directory
func (t *TempObjectURLs) Close() error {
	t.mu.Lock()
	t.paths = make(map[string]string)
	t.mu.Unlock()
	return os.RemoveAll(t.dir)
}
