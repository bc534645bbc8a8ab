package handlers

import (
	"log/slog"
	"mime/multipart"
	"path/filepath"
	"strings"

	"github.com/ahmetcoskunkizilkaya/agent-distribution/internal/distribution"
	"github.com/ahmetcoskunkizilkaya/agent-distribution/internal/dto"
	"github.com/ahmetcoskunkizilkaya/agent-distribution/internal/ingest"
	"github.com/ahmetcoskunkizilkaya/agent-distribution/internal/models"
	"github.com/ahmetcoskunkizilkaya/agent-distribution/internal/principal"
	"github.com/ahmetcoskunkizilkaya/agent-distribution/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// UploadHandler accepts contact lists and hands them to the distribution
// pipeline. Files land in uploadDir under a random name and are removed by
// the service once processed.
type UploadHandler struct {
	distributionService *services.DistributionService
	uploadDir           string
}

func NewUploadHandler(distributionService *services.DistributionService, uploadDir string) *UploadHandler {
	return &UploadHandler{distributionService: distributionService, uploadDir: uploadDir}
}

func (h *UploadHandler) Upload(c *fiber.Ctx) error {
	actor, err := principal.Actor(c)
	if err != nil {
		return fail(c, services.ErrUnauthorized)
	}

	file, err := c.FormFile("file")
	if err != nil {
		return badRequest(c, "Please upload a file")
	}
	if file.Size > ingest.MaxUploadSize {
		return c.Status(fiber.StatusRequestEntityTooLarge).JSON(dto.ErrorResponse{
			Error: true, Message: "File too large. Maximum size is 5MB",
		})
	}

	format, ok := detectFormat(file, actor.Kind)
	if !ok {
		return badRequest(c, allowedMessage(actor.Kind))
	}

	dest := filepath.Join(h.uploadDir, uuid.New().String()+"."+string(format))
	if err := c.SaveFile(file, dest); err != nil {
		slog.Error("failed to save upload", "path", dest, "error", err)
		return err
	}

	result, err := h.distributionService.DistributeFile(c.UserContext(), actor, services.Upload{
		Path:     dest,
		Format:   format,
		Filename: file.Filename,
	})
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(uploadResponse(result))
}

// detectFormat picks the decoder from the file extension. Agents may only
// send CSV, which is also accepted by MIME type when the name has no usable
// extension.
func detectFormat(file *multipart.FileHeader, kind models.PrincipalKind) (ingest.Format, bool) {
	format, ok := ingest.FormatFromFilename(file.Filename)
	if !ok && strings.HasPrefix(file.Header.Get(fiber.HeaderContentType), "text/csv") {
		format, ok = ingest.FormatCSV, true
	}
	if !ok {
		return "", false
	}
	for _, allowed := range services.AllowedFormats(kind) {
		if allowed == format {
			return format, true
		}
	}
	return "", false
}

func allowedMessage(kind models.PrincipalKind) string {
	if kind == models.KindAdministrator {
		return "Only CSV, XLS and XLSX files are allowed"
	}
	return "Only CSV files are allowed"
}

func uploadResponse(r *distribution.Result) *dto.UploadResponse {
	resp := &dto.UploadResponse{
		Message:          "File uploaded and distributed successfully",
		BatchID:          r.BatchID,
		TotalRecords:     r.Total,
		Recipients:       r.Recipients,
		RecordsPerAgent:  r.Base,
		RemainderRecords: r.Remainder,
		Distribution:     make([]dto.RecipientAllocation, 0, len(r.Allocations)),
	}
	for _, a := range r.Allocations {
		resp.Distribution = append(resp.Distribution, dto.RecipientAllocation{
			RecipientID:   a.RecipientID,
			RecipientName: a.RecipientName,
			Count:         a.Count,
		})
	}
	return resp
}
