package main

import (
	"bytes"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/mansoorceksport/fileupload/internal/config"
	"github.com/mansoorceksport/fileupload/internal/repository"
	"github.com/mansoorceksport/fileupload/internal/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProgressBar(t *testing.T) {
	assert.Equal(t, "[..............................]   0%", progressBar(0))
	assert.Equal(t, "[###############...............]  50%", progressBar(50))
	assert.Equal(t, "[##############################] 100%", progressBar(100))
}

func TestResolveURL(t *testing.T) {
	assert.Equal(t, "http://localhost:8080/uploads/1-a.png", resolveURL("http://localhost:8080/api/upload", "/uploads/1-a.png"))
	assert.Equal(t, "http://s3.local/b/1-a.png", resolveURL("http://localhost:8080/api/upload", "http://s3.local/b/1-a.png"))
}

func newTestServer(t *testing.T) (*httptest.Server, string) {
	root := t.TempDir()
	cfg := &config.Config{
		Server:  config.ServerConfig{Port: "0", BodyLimitMB: 32, MaxUploadSizeMB: 5},
		Storage: config.StorageConfig{Backend: config.BackendDisk, StaticRoot: root, UploadDir: "uploads", PublicPath: "/uploads"},
	}
	app := server.NewApp(server.AppDependencies{
		Config:         cfg,
		FileRepository: repository.NewDiskFileRepository(cfg.Storage.UploadPath(), cfg.Storage.PublicPath),
	})
	srv := httptest.NewServer(adaptor.FiberApp(app))
	t.Cleanup(srv.Close)
	return srv, cfg.Storage.UploadPath()
}

func runCLI(t *testing.T, args ...string) (string, error) {
	cmd := uploadCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestUploadCommand_Success(t *testing.T) {
	srv, uploadDir := newTestServer(t)

	path := filepath.Join(t.TempDir(), "a.png")
	require.NoError(t, os.WriteFile(path, []byte("\x89PNG\r\n\x1a\nhello"), 0o644))

	out, err := runCLI(t, "--name", "Ada", "--file", path, "--endpoint", srv.URL+"/api/upload")
	require.NoError(t, err)

	assert.Contains(t, out, "Selected a.png (image/png")
	assert.Contains(t, out, "Preview: file://")
	assert.Contains(t, out, "100%")
	assert.Contains(t, out, "✓ File uploaded successfully!")
	assert.Contains(t, out, "Uploaded as: ")
	assert.Contains(t, out, "URL: "+srv.URL+"/uploads/")

	entries, err := os.ReadDir(uploadDir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Regexp(t, `^\d+-a\.png$`, entries[0].Name())
}

func TestUploadCommand_ValidationStopsBeforeNetwork(t *testing.T) {
	srv, uploadDir := newTestServer(t)

	path := filepath.Join(t.TempDir(), "notes.txt")
	require.NoError(t, os.WriteFile(path, []byte("plain text"), 0o644))

	out, err := runCLI(t, "--file", path, "--endpoint", srv.URL+"/api/upload")
	assert.ErrorIs(t, err, errUploadFailed)

	assert.Contains(t, out, "file: Only JPEG, PNG, and PDF files are accepted")
	assert.Contains(t, out, "name: Name is required")
	assert.NotContains(t, out, "%")

	_, statErr := os.Stat(uploadDir)
	assert.True(t, os.IsNotExist(statErr))
}

func TestUploadCommand_ServerDown(t *testing.T) {
	srv, _ := newTestServer(t)
	endpoint := srv.URL + "/api/upload"
	srv.Close()

	path := filepath.Join(t.TempDir(), "doc.pdf")
	require.NoError(t, os.WriteFile(path, []byte("%PDF-1.7"), 0o644))

	out, err := runCLI(t, "-n", "Ada", "-f", path, "--endpoint", endpoint)
	assert.ErrorIs(t, err, errUploadFailed)
	assert.Contains(t, out, "Preview: 📄 doc.pdf")
	assert.Contains(t, out, "✗ Upload failed")
}
