package handler

import (
	"embed"
	"html/template"
	"io"
	"log"
	"mime/multipart"

	"github.com/dustin/go-humanize"
	"github.com/gofiber/fiber/v2"
	"github.com/mansoorceksport/fileupload/internal/domain"
	"github.com/mansoorceksport/fileupload/internal/telemetry"
	"github.com/mansoorceksport/fileupload/internal/uploadform"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageTemplate = template.Must(template.ParseFS(templateFS, "templates/upload.html"))

// PageData feeds templates/upload.html
type PageData struct {
	Name           string
	FieldErrors    uploadform.FieldErrors
	Outcome        *uploadform.Outcome
	Accept         string
	AcceptedTypes  []string
	MaxSize        int64
	MaxSizeLabel   string
	UploadEndpoint string
}

// PageHandler serves the browser upload form
type PageHandler struct {
	uploadService  domain.UploadService
	metrics        *telemetry.UploadMetrics
	uploadEndpoint string
}

// NewPageHandler creates a new page handler. uploadEndpoint is where the
// page script posts when JavaScript is available.
func NewPageHandler(uploadService domain.UploadService, metrics *telemetry.UploadMetrics, uploadEndpoint string) *PageHandler {
	return &PageHandler{
		uploadService:  uploadService,
		metrics:        metrics,
		uploadEndpoint: uploadEndpoint,
	}
}

// Show handles GET /
func (h *PageHandler) Show(c *fiber.Ctx) error {
	return h.render(c, fiber.StatusOK, h.pageData())
}

// Submit handles POST /form, the no-script fallback of the form.
// It applies the same validation as the form before storing anything.
func (h *PageHandler) Submit(c *fiber.Ctx) error {
	data := h.pageData()
	data.Name = c.FormValue(domain.FieldName)

	var file *uploadform.File
	if fileHeader, err := c.FormFile(domain.FieldFile); err == nil {
		f := fileFromHeader(fileHeader)
		file = &f
	}

	if errs := uploadform.Validate(data.Name, file); len(errs) > 0 {
		h.metrics.Observe(telemetry.OutcomeRejected, 0)
		data.FieldErrors = errs
		return h.render(c, fiber.StatusUnprocessableEntity, data)
	}

	content, err := readAll(file)
	if err == nil {
		var stored *domain.StoredFile
		stored, err = h.uploadService.Store(c.UserContext(), domain.UploadInput{
			OriginalName: file.Name,
			ContentType:  file.MIMEType,
			Data:         content,
		})
		if err == nil {
			h.metrics.Observe(telemetry.OutcomeStored, stored.Size)
			resp := domain.NewUploadResponse(stored)
			data.Name = ""
			data.Outcome = &uploadform.Outcome{
				Success:         true,
				Message:         uploadform.SuccessMessage,
				ProgressPercent: 100,
				Upload:          &resp,
			}
			return h.render(c, fiber.StatusOK, data)
		}
	}

	log.Printf("Error uploading file: %v", err)
	h.metrics.Observe(telemetry.OutcomeFailed, 0)
	data.Outcome = &uploadform.Outcome{
		Success: false,
		Message: "Error uploading file: " + err.Error(),
	}
	return h.render(c, fiber.StatusInternalServerError, data)
}

func (h *PageHandler) pageData() PageData {
	return PageData{
		Accept:         domain.AcceptAttribute(),
		AcceptedTypes:  domain.AcceptedMIMETypes,
		MaxSize:        domain.MaxFileSize,
		MaxSizeLabel:   humanize.IBytes(uint64(domain.MaxFileSize)),
		UploadEndpoint: h.uploadEndpoint,
	}
}

func (h *PageHandler) render(c *fiber.Ctx, status int, data PageData) error {
	c.Status(status)
	c.Type("html", "utf-8")
	return pageTemplate.Execute(c, data)
}

func fileFromHeader(fileHeader *multipart.FileHeader) uploadform.File {
	return uploadform.File{
		Name:     fileHeader.Filename,
		MIMEType: domain.NormalizeMIMEType(fileHeader.Header.Get(fiber.HeaderContentType)),
		Size:     fileHeader.Size,
		Open: func() (io.ReadCloser, error) {
			return fileHeader.Open()
		},
	}
}

func readAll(file *uploadform.File) ([]byte, error) {
	rc, err := file.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}
