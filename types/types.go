package types

import (
	"time"
)

// Document is the registry-side view of an ingested file. Chunk storage
// lives in the vector index; the two are kept consistent by the RAG service.
type Document struct {
	ID         string            `json:"id"`
	Filename   string            `json:"filename"`
	FileType   string            `json:"file_type"`
	Size       int64             `json:"size"`
	UploadDate time.Time         `json:"upload_date"`
	ChunkCount int               `json:"chunk_count"`
	Status     string            `json:"status"`
	Metadata   map[string]string `json:"metadata,omitempty"`
}

// ChunkRecord is one indexed chunk: the text, its embedding and the
// metadata the index stores alongside it. IDs are derived from the owning
// document as {document_id}_chunk_{i}, so positions never change after write.
type ChunkRecord struct {
	ID        string
	Content   string
	Embedding []float32
	Metadata  map[string]string
}

// Metadata keys written for every chunk at ingestion time.
const (
	MetaSource      = "source"
	MetaDocumentID  = "document_id"
	MetaChunkIndex  = "chunk_index"
	MetaTotalChunks = "total_chunks"
	MetaFileType    = "file_type"
)

// SearchResult is a retrieved chunk with its cosine distance to the query
// vector. Smaller distance means more similar.
type SearchResult struct {
	Chunk    ChunkRecord
	Distance float64
}

// FileData is what the text extractor produces from an uploaded file.
type FileData struct {
	Text     string
	Filename string
	FileType string
	Size     int64
	Pages    int
}

// Answer is the result of one RAG query. Grounded is false when retrieval
// came back empty and the fixed fallback answer was returned without
// calling the generative model.
type Answer struct {
	Text     string
	Sources  []Source
	Grounded bool
}

// Source attributes part of an answer to a retrieved chunk.
type Source struct {
	DocumentName   string  `json:"document_name"`
	Content        string  `json:"content"`
	RelevanceScore float64 `json:"relevance_score"`
}

// CollectionInfo describes the vector index collection for stats reporting.
type CollectionInfo struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}
