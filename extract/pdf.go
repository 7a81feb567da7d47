package extract

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	pdftypes "github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

// Header and footer crop margins in points (1 pt = 1/72 inch). Running
// headers and page numbers would otherwise pollute every chunk.
const (
	cropTop    = 46.0
	cropBottom = 57.0
)

type converterResponse struct {
	Document struct {
		MdContent string `json:"md_content"`
	} `json:"document"`
}

// extractPDF crops headers and footers into a temporary copy, then sends
// it to the converter for text extraction. The original upload is left
// untouched.
func (e *Extractor) extractPDF(ctx context.Context, path string) (string, int, error) {
	pages, err := api.PageCountFile(path)
	if err != nil {
		return "", 0, fmt.Errorf("failed to read PDF: %w", err)
	}

	cropped := filepath.Join(os.TempDir(), "crop_"+filepath.Base(path))
	if err := cropHeaderFooter(path, cropped, cropTop, cropBottom); err != nil {
		return "", 0, err
	}
	defer os.Remove(cropped)

	text, err := e.convert(ctx, cropped)
	if err != nil {
		return "", 0, err
	}
	return text, pages, nil
}

// cropHeaderFooter trims top and bottom margins from every page.
func cropHeaderFooter(inputPath, outputPath string, top, bottom float64) error {
	conf := api.LoadConfiguration()
	pages := []string{"1-"}

	box, err := model.ParseBox(fmt.Sprintf("%.2f 0 %.2f 0", top, bottom), pdftypes.POINTS)
	if err != nil {
		return fmt.Errorf("failed to parse crop box: %w", err)
	}

	if err := api.CropFile(inputPath, outputPath, pages, box, conf); err != nil {
		return fmt.Errorf("failed to crop PDF: %w", err)
	}
	return nil
}

// convert posts the file to the converter sidecar and returns its
// markdown content.
func (e *Extractor) convert(ctx context.Context, path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer file.Close()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	part, err := writer.CreateFormFile("files", filepath.Base(path))
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(part, file); err != nil {
		return "", err
	}
	writer.Close()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.converterURL, &buf)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := e.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("converter request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("converter error: status %d, body: %s", resp.StatusCode, string(body))
	}

	var conv converterResponse
	if err := json.Unmarshal(body, &conv); err != nil {
		return "", fmt.Errorf("failed to unmarshal converter response: %w", err)
	}
	return conv.Document.MdContent, nil
}
