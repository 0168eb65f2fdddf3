package client

import (
	"context"
	"encoding/json"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/mansoorceksport/fileupload/internal/config"
	"github.com/mansoorceksport/fileupload/internal/domain"
	"github.com/mansoorceksport/fileupload/internal/repository"
	"github.com/mansoorceksport/fileupload/internal/server"
	"github.com/mansoorceksport/fileupload/internal/service"
	"github.com/mansoorceksport/fileupload/internal/uploadform"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type capturedRequest struct {
	name          string
	filename      string
	fileType      string
	content       string
	contentLength int64
	correlationID string
}

func captureServer(t *testing.T, status int, body string) (*httptest.Server, *capturedRequest) {
	captured := &capturedRequest{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured.contentLength = r.ContentLength
		captured.correlationID = r.Header.Get(CorrelationIDHeader)

		mediaType, params, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
		if !assert.NoError(t, err) || !assert.Equal(t, "multipart/form-data", mediaType) {
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		mr := multipart.NewReader(r.Body, params["boundary"])
		for {
			part, err := mr.NextPart()
			if err == io.EOF {
				break
			}
			if !assert.NoError(t, err) {
				w.WriteHeader(http.StatusBadRequest)
				return
			}
			data, _ := io.ReadAll(part)
			switch part.FormName() {
			case domain.FieldName:
				captured.name = string(data)
			case domain.FieldFile:
				captured.filename = part.FileName()
				captured.fileType = part.Header.Get("Content-Type")
				captured.content = string(data)
			}
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv, captured
}

func TestUpload_MultipartShape(t *testing.T) {
	srv, captured := captureServer(t, http.StatusOK,
		`{"message":"File uploaded successfully","filename":"1-a.png","originalName":"a.png","url":"/uploads/1-a.png"}`)

	c := New(srv.URL, WithCorrelationID(func() string { return "corr-1" }))

	var mu sync.Mutex
	var reports [][2]int64
	resp, err := c.Upload(context.Background(), uploadform.Submission{
		Name: "Ada",
		File: uploadform.FileFromBytes(`we"ird.png`, "image/png", []byte("hello")),
	}, func(sent, total int64) {
		mu.Lock()
		reports = append(reports, [2]int64{sent, total})
		mu.Unlock()
	})
	require.NoError(t, err)

	assert.Equal(t, "1-a.png", resp.Filename)
	assert.Equal(t, "Ada", captured.name)
	assert.Equal(t, `we"ird.png`, captured.filename)
	assert.Equal(t, "image/png", captured.fileType)
	assert.Equal(t, "hello", captured.content)
	assert.Equal(t, "corr-1", captured.correlationID)

	mu.Lock()
	defer mu.Unlock()
	require.NotEmpty(t, reports)
	last := reports[len(reports)-1]
	assert.Equal(t, last[1], last[0], "all bytes reported")
	assert.Equal(t, captured.contentLength, last[1])
	for i := 1; i < len(reports); i++ {
		assert.GreaterOrEqual(t, reports[i][0], reports[i-1][0])
	}
}

func TestUpload_ServerErrorMessage(t *testing.T) {
	srv, _ := captureServer(t, http.StatusInternalServerError, `{"error":"Error uploading file: disk full"}`)

	_, err := New(srv.URL).Upload(context.Background(), uploadform.Submission{
		Name: "Ada",
		File: uploadform.FileFromBytes("a.pdf", "application/pdf", []byte("%PDF")),
	}, nil)

	var respErr *domain.ResponseError
	require.ErrorAs(t, err, &respErr)
	assert.Equal(t, http.StatusInternalServerError, respErr.StatusCode)
	assert.Equal(t, "Error uploading file: disk full", respErr.Message)
}

func TestUpload_NonJSONError(t *testing.T) {
	srv, _ := captureServer(t, http.StatusBadGateway, `<html>bad gateway</html>`)

	_, err := New(srv.URL).Upload(context.Background(), uploadform.Submission{
		Name: "Ada",
		File: uploadform.FileFromBytes("a.pdf", "application/pdf", []byte("%PDF")),
	}, nil)

	var respErr *domain.ResponseError
	require.ErrorAs(t, err, &respErr)
	assert.Empty(t, respErr.Message)
	assert.Equal(t, uploadform.GenericFailureMessage, uploadform.FailureMessage(err))
}

func newUploadServer(t *testing.T, now func() time.Time) (*httptest.Server, string) {
	root := t.TempDir()
	cfg := &config.Config{
		Server:  config.ServerConfig{Port: "0", BodyLimitMB: 32, MaxUploadSizeMB: 5},
		Storage: config.StorageConfig{Backend: config.BackendDisk, StaticRoot: root, UploadDir: "uploads", PublicPath: "/uploads"},
	}
	repo := repository.NewDiskFileRepository(cfg.Storage.UploadPath(), cfg.Storage.PublicPath)
	app := server.NewApp(server.AppDependencies{
		Config:         cfg,
		FileRepository: repo,
		UploadService:  service.NewUploadService(repo).WithClock(now),
	})
	srv := httptest.NewServer(adaptor.FiberApp(app))
	t.Cleanup(srv.Close)
	return srv, cfg.Storage.UploadPath()
}

func TestForm_EndToEnd(t *testing.T) {
	tick := int64(1700000000000)
	srv, uploadDir := newUploadServer(t, func() time.Time {
		tick++
		return time.UnixMilli(tick)
	})

	urls, err := uploadform.NewTempObjectURLs(t.TempDir())
	require.NoError(t, err)
	defer urls.Close()

	var mu sync.Mutex
	var progress []int
	form := uploadform.NewForm(New(srv.URL+"/api/upload"), urls, func(s uploadform.State) {
		if s.Phase == uploadform.PhaseUploading {
			mu.Lock()
			progress = append(progress, s.Progress)
			mu.Unlock()
		}
	})
	defer form.Close()

	path := filepath.Join(t.TempDir(), "a.png")
	content := strings.Repeat("x", 256*1024)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	file, err := uploadform.FileFromPath(path)
	require.NoError(t, err)

	form.SetName("Ada")
	_, err = form.Select(file)
	require.NoError(t, err)

	var urlsSeen []string
	for i := 0; i < 2; i++ {
		state, err := form.Submit(context.Background())
		require.NoError(t, err)
		require.Equal(t, uploadform.PhaseSucceeded, state.Phase, "outcome: %+v", state.Outcome)
		assert.Regexp(t, `^\d+-a\.png$`, state.Outcome.Upload.Filename)
		urlsSeen = append(urlsSeen, state.Outcome.Upload.URL)
	}
	assert.NotEqual(t, urlsSeen[0], urlsSeen[1])

	for _, u := range urlsSeen {
		resp, err := http.Get(srv.URL + u)
		require.NoError(t, err)
		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, content, string(body))
	}

	entries, err := os.ReadDir(uploadDir)
	require.NoError(t, err)
	assert.Len(t, entries, 2)

	mu.Lock()
	defer mu.Unlock()
	require.NotEmpty(t, progress)
	assert.Equal(t, 100, progress[len(progress)-1])
}

func TestUpload_MissingFileAgainstServer(t *testing.T) {
	srv, _ := newUploadServer(t, time.Now)

	req, err := http.NewRequest(http.MethodPost, srv.URL+"/api/upload", strings.NewReader("name=Ada"))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	var body domain.ErrorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "No file uploaded", body.Error)
}
