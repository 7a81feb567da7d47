// Package service implements the RAG pipeline: it is the only writer
// that keeps the document registry and the vector index consistent.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"rag/app/agent"
	"rag/chunker"
	"rag/model"
	"rag/store"
	"rag/types"
)

// ErrNoContent is the validation failure for documents that yield zero
// chunks: an empty document must fail ingestion, not register silently.
var ErrNoContent = errors.New("no text content could be extracted from the document")

// ErrNotFound reports an unknown document id.
var ErrNotFound = errors.New("document not found")

// previewLen caps the source excerpt attached to an answer.
const previewLen = 200

// TextExtractor converts a file path into one combined text blob.
type TextExtractor interface {
	Extract(ctx context.Context, path string) (*types.FileData, error)
}

// Params collects the collaborators the service composes. All of them
// are constructed once at startup and injected here.
type Params struct {
	Extractor TextExtractor
	Splitter  *chunker.Splitter
	Embedder  model.Embedder
	Completer agent.Completer
	Vectors   store.VectorStorer
	Registry  *store.Registry

	// Company is interpolated into the generation prompt.
	Company string
	// Metric names the index distance metric; it selects the
	// distance-to-relevance conversion. Defaults to cosine.
	Metric string
}

type Service struct {
	logger    *slog.Logger
	extractor TextExtractor
	splitter  *chunker.Splitter
	embedder  model.Embedder
	llm       agent.Completer
	vectors   store.VectorStorer
	registry  *store.Registry
	company   string
	metric    string
}

func New(p Params) *Service {
	metric := p.Metric
	if metric == "" {
		metric = "cosine"
	}
	return &Service{
		logger:    slog.Default(),
		extractor: p.Extractor,
		splitter:  p.Splitter,
		embedder:  p.Embedder,
		llm:       p.Completer,
		vectors:   p.Vectors,
		registry:  p.Registry,
		company:   p.Company,
		metric:    metric,
	}
}

// Ingest extracts, chunks, embeds and indexes the file at path, then
// registers the document. The registry entry is written only after the
// index write succeeded, so a failed ingestion leaves no document record.
func (s *Service) Ingest(ctx context.Context, path string, metadata map[string]string) (string, error) {
	data, err := s.extractor.Extract(ctx, path)
	if err != nil {
		return "", err
	}

	chunks := s.splitter.Split(data.Text)
	if len(chunks) == 0 {
		return "", ErrNoContent
	}

	docID := uuid.NewString()

	// One batched call for all chunks: one round trip instead of N.
	vectors, err := s.embedder.EmbedBatch(ctx, chunks)
	if err != nil {
		return "", fmt.Errorf("failed to embed chunks: %w", err)
	}

	records := make([]types.ChunkRecord, len(chunks))
	for i, chunk := range chunks {
		meta := map[string]string{
			types.MetaSource:      data.Filename,
			types.MetaDocumentID:  docID,
			types.MetaChunkIndex:  strconv.Itoa(i),
			types.MetaTotalChunks: strconv.Itoa(len(chunks)),
			types.MetaFileType:    data.FileType,
		}
		for k, v := range metadata {
			meta[k] = v
		}
		records[i] = types.ChunkRecord{
			ID:        fmt.Sprintf("%s_chunk_%d", docID, i),
			Content:   chunk,
			Embedding: vectors[i],
			Metadata:  meta,
		}
	}

	if err := s.vectors.AddChunks(ctx, records); err != nil {
		return "", err
	}

	status := metadata["status"]
	if status == "" {
		status = "active"
	}
	s.registry.Put(types.Document{
		ID:         docID,
		Filename:   data.Filename,
		FileType:   data.FileType,
		Size:       data.Size,
		UploadDate: time.Now(),
		ChunkCount: len(chunks),
		Status:     status,
		Metadata:   metadata,
	})

	s.logger.Info("document ingested",
		"id", docID, "filename", data.Filename, "chunks", len(chunks))
	return docID, nil
}

// Answer retrieves the topK nearest chunks and conditions the model on
// them. When retrieval is empty it returns the fixed fallback without
// touching the model.
func (s *Service) Answer(ctx context.Context, question string, topK int) (*types.Answer, error) {
	queryVec, err := s.embedder.Embed(ctx, question)
	if err != nil {
		return nil, fmt.Errorf("failed to embed question: %w", err)
	}

	results, err := s.vectors.Search(ctx, queryVec, topK, nil)
	if err != nil {
		return nil, err
	}

	if len(results) == 0 {
		s.logger.Info("retrieval empty, returning fallback answer")
		return &types.Answer{
			Text:     agent.NoKnowledgeAnswer,
			Sources:  []types.Source{},
			Grounded: false,
		}, nil
	}

	contextParts := make([]string, 0, len(results))
	sources := make([]types.Source, 0, len(results))
	for i, res := range results {
		contextParts = append(contextParts, fmt.Sprintf("[Source %d]: %s", i+1, res.Chunk.Content))

		name := res.Chunk.Metadata[types.MetaSource]
		if name == "" {
			name = "Unknown"
		}
		sources = append(sources, types.Source{
			DocumentName:   name,
			Content:        preview(res.Chunk.Content),
			RelevanceScore: s.relevanceFromDistance(res.Distance),
		})
	}

	prompt := agent.BuildPrompt(s.company, strings.Join(contextParts, "\n\n"), question)

	answer, err := s.llm.Complete(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("error generating response: %w", err)
	}

	return &types.Answer{
		Text:     answer,
		Sources:  sources,
		Grounded: true,
	}, nil
}

// Delete cascades from the index to the registry. Finding no chunks is
// not an error: the registry entry goes away regardless, so an already
// inconsistent index cannot orphan it.
func (s *Service) Delete(ctx context.Context, documentID string) error {
	ids, err := s.vectors.IDsByDocument(ctx, documentID)
	if err != nil {
		return err
	}
	if len(ids) > 0 {
		if err := s.vectors.DeleteByIDs(ctx, ids); err != nil {
			return err
		}
	}
	s.registry.Delete(documentID)
	s.logger.Info("document deleted", "id", documentID, "chunks", len(ids))
	return nil
}

// Documents lists all registered documents.
func (s *Service) Documents() []types.Document {
	return s.registry.List()
}

// Document returns one registry entry or ErrNotFound.
func (s *Service) Document(documentID string) (types.Document, error) {
	doc, ok := s.registry.Get(documentID)
	if !ok {
		return types.Document{}, fmt.Errorf("%w: %s", ErrNotFound, documentID)
	}
	return doc, nil
}

// Stats reports registry and collection counters.
type Stats struct {
	TotalDocuments int
	TotalChunks    int
	CollectionName string
}

func (s *Service) Stats(ctx context.Context) (*Stats, error) {
	info, err := s.vectors.Describe(ctx)
	if err != nil {
		return nil, err
	}
	return &Stats{
		TotalDocuments: s.registry.Len(),
		TotalChunks:    info.Count,
		CollectionName: info.Name,
	}, nil
}

// relevanceFromDistance converts retrieval distance to a similarity
// score. Under cosine distance in [0, 2] this is 1 - d; other metrics
// get a rank-preserving positive fallback.
func (s *Service) relevanceFromDistance(d float64) float64 {
	if s.metric == "cosine" {
		return 1 - d
	}
	return 1 / (1 + d)
}

func preview(content string) string {
	runes := []rune(content)
	if len(runes) <= previewLen {
		return content
	}
	return string(runes[:previewLen]) + "..."
}
