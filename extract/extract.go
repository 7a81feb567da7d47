// Package extract turns uploaded files into a single text blob plus
// file-level metadata. Plain formats are read directly; PDF and
// spreadsheet formats go through a docling-style converter sidecar.
package extract

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"rag/types"
)

// ErrUnsupportedFormat is returned for file extensions the extractor
// does not handle.
var ErrUnsupportedFormat = errors.New("unsupported file format")

type Extractor struct {
	converterURL string
	client       *http.Client
}

func NewExtractor(converterURL string) *Extractor {
	return &Extractor{
		converterURL: converterURL,
		client:       &http.Client{Timeout: 5 * time.Minute},
	}
}

// Extract reads the file at path and returns its combined text. The
// text of a PDF is the converter's markdown rendition; pages/sheets are
// separated by blank lines.
func (e *Extractor) Extract(ctx context.Context, path string) (*types.FileData, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("file does not exist: %s", path)
	}

	ext := strings.ToLower(filepath.Ext(path))

	var (
		text  string
		pages int
	)
	switch ext {
	case ".txt", ".md":
		text, err = readText(path)
		pages = 1
	case ".csv":
		text, err = readCSV(path)
		pages = 1
	case ".docx":
		text, err = readDocx(path)
		pages = 1
	case ".pdf":
		text, pages, err = e.extractPDF(ctx, path)
	case ".xlsx", ".xls":
		text, err = e.convert(ctx, path)
		pages = 1
	default:
		err = fmt.Errorf("%w: %s", ErrUnsupportedFormat, ext)
	}
	if err != nil {
		return nil, fmt.Errorf("error processing file %s: %w", filepath.Base(path), err)
	}

	return &types.FileData{
		Text:     text,
		Filename: filepath.Base(path),
		FileType: ext,
		Size:     info.Size(),
		Pages:    pages,
	}, nil
}

func readText(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// readCSV flattens rows into " | "-separated lines, skipping blank rows.
func readCSV(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	var lines []string
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", err
		}
		line := strings.Join(row, " | ")
		if strings.TrimSpace(line) != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n"), nil
}
