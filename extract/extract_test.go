package extract

import (
	"archive/zip"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestExtract_PlainText(t *testing.T) {
	e := NewExtractor("")
	dir := t.TempDir()
	path := writeFile(t, dir, "notes.txt", "hello world\nsecond line")

	data, err := e.Extract(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, "hello world\nsecond line", data.Text)
	assert.Equal(t, "notes.txt", data.Filename)
	assert.Equal(t, ".txt", data.FileType)
	assert.Equal(t, int64(len("hello world\nsecond line")), data.Size)
	assert.Equal(t, 1, data.Pages)
}

func TestExtract_Markdown(t *testing.T) {
	e := NewExtractor("")
	path := writeFile(t, t.TempDir(), "readme.md", "# Title\n\nBody.")

	data, err := e.Extract(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "# Title\n\nBody.", data.Text)
	assert.Equal(t, ".md", data.FileType)
}

func TestExtract_CSVRowsJoined(t *testing.T) {
	e := NewExtractor("")
	path := writeFile(t, t.TempDir(), "staff.csv", "name,role\nalice,engineer\n\nbob,designer\n")

	data, err := e.Extract(context.Background(), path)
	require.NoError(t, err)

	// Rows become " | "-separated lines; blank rows are dropped.
	assert.Equal(t, "name | role\nalice | engineer\nbob | designer", data.Text)
}

func TestExtract_Docx(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "policy.docx")

	f, err := os.Create(path)
	require.NoError(t, err)
	zw := zip.NewWriter(f)
	w, err := zw.Create("word/document.xml")
	require.NoError(t, err)
	_, err = w.Write([]byte(`<?xml version="1.0"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
  <w:body>
    <w:p><w:r><w:t>First paragraph.</w:t></w:r></w:p>
    <w:p><w:r><w:t>Second </w:t></w:r><w:r><w:t>paragraph.</w:t></w:r></w:p>
    <w:p></w:p>
  </w:body>
</w:document>`))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())

	e := NewExtractor("")
	data, err := e.Extract(context.Background(), path)
	require.NoError(t, err)

	// Runs within one paragraph concatenate; empty paragraphs vanish.
	assert.Equal(t, "First paragraph.\nSecond paragraph.", data.Text)
	assert.Equal(t, ".docx", data.FileType)
}

func TestExtract_UnsupportedFormat(t *testing.T) {
	e := NewExtractor("")
	path := writeFile(t, t.TempDir(), "image.png", "not really a png")

	_, err := e.Extract(context.Background(), path)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestExtract_MissingFile(t *testing.T) {
	e := NewExtractor("")
	_, err := e.Extract(context.Background(), filepath.Join(t.TempDir(), "absent.txt"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "file does not exist")
}
