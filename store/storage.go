package store

import (
	"context"
	"errors"

	"rag/types"
)

// ErrNotInitialized is returned by every vector store operation invoked
// before Init has completed.
var ErrNotInitialized = errors.New("vector store not initialized")

// VectorStorer is the access layer over the vector index. Implementations
// must order Search results by ascending distance and must fail a whole
// AddChunks batch when any id collides with an existing record; silent
// overwrites would corrupt the id-to-position derivation.
type VectorStorer interface {
	// Init prepares the backing collection with cosine similarity as the
	// distance metric. It is idempotent and must be called before any
	// other operation.
	Init(ctx context.Context) error

	// AddChunks writes a batch of chunk records. The batch belongs to a
	// single document; an id collision fails the whole batch.
	AddChunks(ctx context.Context, records []types.ChunkRecord) error

	// Search returns up to topK records nearest to vector, closest first.
	// An empty index or a non-matching filter yields an empty result,
	// not an error. A nil filter matches everything.
	Search(ctx context.Context, vector []float32, topK int, filter map[string]string) ([]types.SearchResult, error)

	// DeleteByIDs removes the given records. Nonexistent ids are not an
	// error; a storage failure is.
	DeleteByIDs(ctx context.Context, ids []string) error

	// IDsByDocument resolves every chunk id belonging to a document.
	IDsByDocument(ctx context.Context, documentID string) ([]string, error)

	// Count reports the number of records in the collection.
	Count(ctx context.Context) (int, error)

	// Describe reports the collection name and record count.
	Describe(ctx context.Context) (*types.CollectionInfo, error)
}
