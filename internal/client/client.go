package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mansoorceksport/fileupload/internal/domain"
	"github.com/mansoorceksport/fileupload/internal/uploadform"
)

// DefaultEndpoint is used when no endpoint is configured
const DefaultEndpoint = "http://localhost:8080/api/upload"

// CorrelationIDHeader lets the server replay a retried upload instead of storing it twice
const CorrelationIDHeader = "X-Correlation-ID"

// Client posts multipart uploads to the upload endpoint
type Client struct {
	endpoint      string
	httpClient    *http.Client
	correlationID func() string
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the default http.Client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithCorrelationID sets the generator for X-Correlation-ID. nil disables the header.
func WithCorrelationID(gen func() string) Option {
	return func(c *Client) {
		c.correlationID = gen
	}
}

// New creates a client for endpoint
func New(endpoint string, opts ...Option) *Client {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	c := &Client{
		endpoint:      endpoint,
		httpClient:    &http.Client{Timeout: 5 * time.Minute},
		correlationID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Endpoint returns the upload URL
func (c *Client) Endpoint() string {
	return c.endpoint
}

// Upload streams sub as multipart/form-data with parts "name" and "file".
// onProgress receives the request bytes written so far and the total body size.
// A non-2xx answer is returned as *domain.ResponseError.
func (c *Client) Upload(ctx context.Context, sub uploadform.Submission, onProgress func(sent, total int64)) (*domain.UploadResponse, error) {
	src, err := sub.File.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", sub.File.Name, err)
	}
	defer src.Close()

	head, tail, contentType, err := multipartFrame(sub)
	if err != nil {
		return nil, err
	}

	total := int64(len(head)) + sub.File.Size + int64(len(tail))
	body := &progressReader{
		r:          io.MultiReader(bytes.NewReader(head), io.LimitReader(src, sub.File.Size), bytes.NewReader(tail)),
		total:      total,
		onProgress: onProgress,
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, body)
	if err != nil {
		return nil, err
	}
	req.ContentLength = total
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")
	if c.correlationID != nil {
		req.Header.Set(CorrelationIDHeader, c.correlationID())
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var errResp domain.ErrorResponse
		_ = json.Unmarshal(payload, &errResp)
		return nil, &domain.ResponseError{StatusCode: resp.StatusCode, Message: errResp.Error}
	}

	var out domain.UploadResponse
	if err := json.Unmarshal(payload, &out); err != nil {
		return nil, fmt.Errorf("invalid upload response: %w", err)
	}
	return &out, nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

// multipartFrame renders everything around the file bytes so the body length
// is known up front and progress can be measured against it.
func multipartFrame(sub uploadform.Submission) (head, tail []byte, contentType string, err error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	if err := mw.WriteField(domain.FieldName, sub.Name); err != nil {
		return nil, nil, "", err
	}

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
		quoteEscaper.Replace(domain.FieldFile), quoteEscaper.Replace(sub.File.Name)))
	fileType := sub.File.MIMEType
	if fileType == "" {
		fileType = "application/octet-stream"
	}
	h.Set("Content-Type", fileType)
	if _, err := mw.CreatePart(h); err != nil {
		return nil, nil, "", err
	}

	headLen := buf.Len()
	if err := mw.Close(); err != nil {
		return nil, nil, "", err
	}

	all := buf.Bytes()
	head = append([]byte(nil), all[:headLen]...)
	tail = append([]byte(nil), all[headLen:]...)
	return head, tail, mw.FormDataContentType(), nil
}

type progressReader struct {
	r          io.Reader
	sent       int64
	total      int64
	onProgress func(sent, total int64)
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	if n > 0 {
		p.sent += int64(n)
		if p.onProgress != nil {
			p.onProgress(p.sent, p.total)
		}
	}
	return n, err
}
