package handler

import (
	"errors"
	"io"
	"log"
	"mime/multipart"

	"github.com/gofiber/fiber/v2"
	"github.com/mansoorceksport/fileupload/internal/domain"
	"github.com/mansoorceksport/fileupload/internal/telemetry"
	"go.opentelemetry.io/otel/attribute"
)

// UploadHandler handles POST /api/upload
type UploadHandler struct {
	uploadService domain.UploadService
	metrics       *telemetry.UploadMetrics
	enforceRules  bool
	maxUpload     int64
}

// NewUploadHandler creates a new upload handler. With enforceRules set the handler
// applies the form's size/type rules itself instead of trusting the client.
func NewUploadHandler(uploadService domain.UploadService, metrics *telemetry.UploadMetrics, enforceRules bool, maxUploadBytes int64) *UploadHandler {
	return &UploadHandler{
		uploadService: uploadService,
		metrics:       metrics,
		enforceRules:  enforceRules,
		maxUpload:     maxUploadBytes,
	}
}

// Upload handles POST /api/upload
func (h *UploadHandler) Upload(c *fiber.Ctx) error {
	fileHeader, err := c.FormFile(domain.FieldFile)
	if err != nil {
		h.metrics.Observe(telemetry.OutcomeRejected, 0)
		return c.Status(fiber.StatusBadRequest).JSON(domain.ErrorResponse{
			Error: domain.ErrNoFile.Error(),
		})
	}

	contentType := fileHeader.Header.Get(fiber.HeaderContentType)
	telemetry.AddSpanEvent(c, "upload.received",
		attribute.String("file.name", fileHeader.Filename),
		attribute.Int64("file.size", fileHeader.Size),
	)

	if h.enforceRules {
		if err := domain.CheckFile(fileHeader.Size, contentType, h.maxUpload); err != nil {
			h.metrics.Observe(telemetry.OutcomeRejected, 0)
			return c.Status(fiber.StatusBadRequest).JSON(domain.ErrorResponse{Error: err.Error()})
		}
	}

	data, err := readFormFile(fileHeader)
	if err != nil {
		return h.fail(c, err)
	}

	stored, err := h.uploadService.Store(c.UserContext(), domain.UploadInput{
		OriginalName: fileHeader.Filename,
		ContentType:  contentType,
		Data:         data,
	})
	if err != nil {
		if errors.Is(err, domain.ErrNoFile) {
			h.metrics.Observe(telemetry.OutcomeRejected, 0)
			return c.Status(fiber.StatusBadRequest).JSON(domain.ErrorResponse{Error: err.Error()})
		}
		return h.fail(c, err)
	}

	h.metrics.Observe(telemetry.OutcomeStored, stored.Size)
	log.Printf("Stored upload %s (%d bytes)", stored.Filename, stored.Size)

	return c.Status(fiber.StatusOK).JSON(domain.NewUploadResponse(stored))
}

func (h *UploadHandler) fail(c *fiber.Ctx, err error) error {
	log.Printf("Error uploading file: %v", err)
	h.metrics.Observe(telemetry.OutcomeFailed, 0)
	return c.Status(fiber.StatusInternalServerError).JSON(domain.ErrorResponse{
		Error: "Error uploading file: " + err.Error(),
	})
}

func readFormFile(fileHeader *multipart.FileHeader) ([]byte, error) {
	fileHandle, err := fileHeader.Open()
	if err != nil {
		return nil, err
	}
	defer fileHandle.Close()

	return io.ReadAll(fileHandle)
}
