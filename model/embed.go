package model

import "context"

// Embedder maps text to fixed-length vectors. EmbedBatch must return one
// vector per input text, in input order; the orchestrator relies on this
// to embed all chunks of a document in a single round trip.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}
