package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rag/types"
)

func record(id, docID string, idx string, embedding []float32) types.ChunkRecord {
	return types.ChunkRecord{
		ID:        id,
		Content:   "content of " + id,
		Embedding: embedding,
		Metadata: map[string]string{
			types.MetaDocumentID: docID,
			types.MetaChunkIndex: idx,
			types.MetaSource:     docID + ".txt",
		},
	}
}

func TestMemoryStore_RequiresInit(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore("test", 3)

	err := s.AddChunks(ctx, []types.ChunkRecord{record("a_chunk_0", "a", "0", []float32{1, 0, 0})})
	assert.ErrorIs(t, err, ErrNotInitialized)

	_, err = s.Search(ctx, []float32{1, 0, 0}, 5, nil)
	assert.ErrorIs(t, err, ErrNotInitialized)

	assert.ErrorIs(t, s.DeleteByIDs(ctx, []string{"a_chunk_0"}), ErrNotInitialized)

	_, err = s.IDsByDocument(ctx, "a")
	assert.ErrorIs(t, err, ErrNotInitialized)

	_, err = s.Count(ctx)
	assert.ErrorIs(t, err, ErrNotInitialized)
}

func TestMemoryStore_InitIdempotent(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore("test", 3)
	require.NoError(t, s.Init(ctx))
	require.NoError(t, s.Init(ctx))
}

func TestMemoryStore_AddRejectsDuplicateIDs(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore("test", 3)
	require.NoError(t, s.Init(ctx))

	require.NoError(t, s.AddChunks(ctx, []types.ChunkRecord{
		record("a_chunk_0", "a", "0", []float32{1, 0, 0}),
	}))

	// A colliding batch must fail as a whole, never overwrite.
	err := s.AddChunks(ctx, []types.ChunkRecord{
		record("a_chunk_1", "a", "1", []float32{0, 1, 0}),
		record("a_chunk_0", "a", "0", []float32{0, 0, 1}),
	})
	require.Error(t, err)

	count, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestMemoryStore_AddRejectsDimensionMismatch(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore("test", 3)
	require.NoError(t, s.Init(ctx))

	err := s.AddChunks(ctx, []types.ChunkRecord{record("a_chunk_0", "a", "0", []float32{1, 0})})
	assert.Error(t, err)
}

func TestMemoryStore_SearchOrdersByDistance(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore("test", 2)
	require.NoError(t, s.Init(ctx))

	require.NoError(t, s.AddChunks(ctx, []types.ChunkRecord{
		record("a_chunk_0", "a", "0", []float32{1, 0}),  // identical to query
		record("a_chunk_1", "a", "1", []float32{0, 1}),  // orthogonal
		record("a_chunk_2", "a", "2", []float32{-1, 0}), // opposite
	}))

	results, err := s.Search(ctx, []float32{1, 0}, 3, nil)
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.Equal(t, "a_chunk_0", results[0].Chunk.ID)
	assert.Equal(t, "a_chunk_1", results[1].Chunk.ID)
	assert.Equal(t, "a_chunk_2", results[2].Chunk.ID)

	assert.InDelta(t, 0.0, results[0].Distance, 1e-9)
	assert.InDelta(t, 1.0, results[1].Distance, 1e-9)
	assert.InDelta(t, 2.0, results[2].Distance, 1e-9)
}

func TestMemoryStore_SearchTopKAndEmpty(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore("test", 2)
	require.NoError(t, s.Init(ctx))

	// Empty index: empty result, not an error.
	results, err := s.Search(ctx, []float32{1, 0}, 5, nil)
	require.NoError(t, err)
	assert.Empty(t, results)

	require.NoError(t, s.AddChunks(ctx, []types.ChunkRecord{
		record("a_chunk_0", "a", "0", []float32{1, 0}),
		record("a_chunk_1", "a", "1", []float32{0, 1}),
	}))

	// Fewer matches than topK is fine.
	results, err = s.Search(ctx, []float32{1, 0}, 10, nil)
	require.NoError(t, err)
	assert.Len(t, results, 2)

	// topK truncates.
	results, err = s.Search(ctx, []float32{1, 0}, 1, nil)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "a_chunk_0", results[0].Chunk.ID)
}

func TestMemoryStore_SearchFilter(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore("test", 2)
	require.NoError(t, s.Init(ctx))

	require.NoError(t, s.AddChunks(ctx, []types.ChunkRecord{
		record("a_chunk_0", "a", "0", []float32{1, 0}),
		record("b_chunk_0", "b", "0", []float32{1, 0}),
	}))

	results, err := s.Search(ctx, []float32{1, 0}, 5, map[string]string{types.MetaDocumentID: "b"})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "b_chunk_0", results[0].Chunk.ID)

	// A non-matching filter yields an empty result, not an error.
	results, err = s.Search(ctx, []float32{1, 0}, 5, map[string]string{types.MetaDocumentID: "zzz"})
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestMemoryStore_DeleteAndIDsByDocument(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore("test", 2)
	require.NoError(t, s.Init(ctx))

	require.NoError(t, s.AddChunks(ctx, []types.ChunkRecord{
		record("a_chunk_0", "a", "0", []float32{1, 0}),
		record("a_chunk_1", "a", "1", []float32{0, 1}),
		record("b_chunk_0", "b", "0", []float32{1, 0}),
	}))

	ids, err := s.IDsByDocument(ctx, "a")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"a_chunk_0", "a_chunk_1"}, ids)

	// Deleting nonexistent ids alongside real ones is not an error.
	require.NoError(t, s.DeleteByIDs(ctx, []string{"a_chunk_0", "a_chunk_1", "ghost"}))

	ids, err = s.IDsByDocument(ctx, "a")
	require.NoError(t, err)
	assert.Empty(t, ids)

	count, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestMemoryStore_Describe(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore("company_documents", 2)
	require.NoError(t, s.Init(ctx))

	info, err := s.Describe(ctx)
	require.NoError(t, err)
	assert.Equal(t, "company_documents", info.Name)
	assert.Equal(t, 0, info.Count)
}
