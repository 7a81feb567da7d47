package api

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"rag/service"
	"rag/types"
)

// allowedExtensions is the upload allow-list; anything else is rejected
// before touching disk.
var allowedExtensions = map[string]bool{
	".pdf":  true,
	".docx": true,
	".txt":  true,
	".md":   true,
	".xlsx": true,
	".xls":  true,
	".csv":  true,
}

type DocumentHandler struct {
	svc       *service.Service
	uploadDir string
	logger    *slog.Logger
}

func NewDocumentHandler(svc *service.Service, uploadDir string) *DocumentHandler {
	return &DocumentHandler{
		svc:       svc,
		uploadDir: uploadDir,
		logger:    slog.Default(),
	}
}

// HandleUpload saves the uploaded file and ingests it. A failed
// ingestion removes the saved file again; that cleanup is best-effort
// and only logged.
func (h *DocumentHandler) HandleUpload(c *fiber.Ctx) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return ErrBadRequest()
	}

	ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
	if !allowedExtensions[ext] {
		return NewError(fiber.StatusBadRequest, fmt.Sprintf("file type %s not supported", ext))
	}

	if err := os.MkdirAll(h.uploadDir, 0o755); err != nil {
		return err
	}

	path := filepath.Join(h.uploadDir, filepath.Base(fileHeader.Filename))
	if _, err := os.Stat(path); err == nil {
		// Name collision: keep the existing upload, suffix the new one.
		stem := strings.TrimSuffix(filepath.Base(fileHeader.Filename), ext)
		path = filepath.Join(h.uploadDir, fmt.Sprintf("%s_%s%s", stem, time.Now().Format("20060102_150405"), ext))
	}

	if err := c.SaveFile(fileHeader, path); err != nil {
		return err
	}

	docID, err := h.svc.Ingest(c.UserContext(), path, map[string]string{
		"upload_date": time.Now().Format(time.RFC3339),
		"status":      "active",
	})
	if err != nil {
		if rmErr := os.Remove(path); rmErr != nil {
			h.logger.Warn("failed to remove upload after ingest failure", "path", path, "error", rmErr)
		}
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(types.UploadResponse{
		ID:       docID,
		Filename: fileHeader.Filename,
		Message:  "Document uploaded and processed successfully",
		Status:   "success",
	})
}

// HandleList returns metadata for every registered document.
func (h *DocumentHandler) HandleList(c *fiber.Ctx) error {
	return c.JSON(h.svc.Documents())
}

// HandleGet returns one document's metadata.
func (h *DocumentHandler) HandleGet(c *fiber.Ctx) error {
	doc, err := h.svc.Document(c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(doc)
}

// HandleDelete removes a document, its chunks and, best-effort, the
// stored upload file.
func (h *DocumentHandler) HandleDelete(c *fiber.Ctx) error {
	id := c.Params("id")

	doc, err := h.svc.Document(id)
	if err != nil {
		return err
	}

	if err := h.svc.Delete(c.UserContext(), id); err != nil {
		return err
	}

	path := filepath.Join(h.uploadDir, doc.Filename)
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		h.logger.Warn("failed to remove stored upload", "path", path, "error", err)
	}

	return c.JSON(types.DeleteResponse{
		Message: fmt.Sprintf("Document %s deleted successfully", id),
		ID:      id,
	})
}
