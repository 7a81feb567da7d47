package store

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"rag/types"
)

// MemoryStore is a brute-force in-memory VectorStorer using cosine
// distance. It backs the "memory" vector backend and the service tests.
type MemoryStore struct {
	mu          sync.RWMutex
	collection  string
	dimension   int
	records     []types.ChunkRecord
	initialized bool
}

func NewMemoryStore(collection string, dimension int) *MemoryStore {
	return &MemoryStore{
		collection: collection,
		dimension:  dimension,
	}
}

func (s *MemoryStore) Init(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.dimension <= 0 {
		return fmt.Errorf("invalid dimension %d", s.dimension)
	}
	s.initialized = true
	return nil
}

func (s *MemoryStore) AddChunks(_ context.Context, records []types.ChunkRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.initialized {
		return ErrNotInitialized
	}

	existing := make(map[string]struct{}, len(s.records))
	for _, r := range s.records {
		existing[r.ID] = struct{}{}
	}
	for _, r := range records {
		if _, ok := existing[r.ID]; ok {
			return fmt.Errorf("duplicate chunk id %s", r.ID)
		}
		if len(r.Embedding) != s.dimension {
			return fmt.Errorf("vector dimension mismatch for %s: got %d, want %d", r.ID, len(r.Embedding), s.dimension)
		}
		existing[r.ID] = struct{}{}
	}

	s.records = append(s.records, records...)
	return nil
}

func (s *MemoryStore) Search(_ context.Context, vector []float32, topK int, filter map[string]string) ([]types.SearchResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.initialized {
		return nil, ErrNotInitialized
	}
	if len(vector) == 0 {
		return nil, fmt.Errorf("empty query vector")
	}
	if topK <= 0 {
		return nil, nil
	}

	var results []types.SearchResult
	for _, r := range s.records {
		if !matchesFilter(r.Metadata, filter) {
			continue
		}
		results = append(results, types.SearchResult{
			Chunk:    r,
			Distance: cosineDistance(vector, r.Embedding),
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Distance < results[j].Distance
	})
	if len(results) > topK {
		results = results[:topK]
	}
	return results, nil
}

func (s *MemoryStore) DeleteByIDs(_ context.Context, ids []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.initialized {
		return ErrNotInitialized
	}

	drop := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		drop[id] = struct{}{}
	}

	kept := s.records[:0]
	for _, r := range s.records {
		if _, ok := drop[r.ID]; !ok {
			kept = append(kept, r)
		}
	}
	s.records = kept
	return nil
}

func (s *MemoryStore) IDsByDocument(_ context.Context, documentID string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.initialized {
		return nil, ErrNotInitialized
	}

	var ids []string
	for _, r := range s.records {
		if r.Metadata[types.MetaDocumentID] == documentID {
			ids = append(ids, r.ID)
		}
	}
	return ids, nil
}

func (s *MemoryStore) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.initialized {
		return 0, ErrNotInitialized
	}
	return len(s.records), nil
}

func (s *MemoryStore) Describe(ctx context.Context) (*types.CollectionInfo, error) {
	count, err := s.Count(ctx)
	if err != nil {
		return nil, err
	}
	return &types.CollectionInfo{Name: s.collection, Count: count}, nil
}

func matchesFilter(metadata, filter map[string]string) bool {
	for k, v := range filter {
		if metadata[k] != v {
			return false
		}
	}
	return true
}

// cosineDistance is 1 minus the cosine similarity, matching the metric
// the Postgres backend uses via <=>. Range [0, 2].
func cosineDistance(a, b []float32) float64 {
	var dot, normA, normB float64
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 1
	}
	return 1 - dot/(math.Sqrt(normA)*math.Sqrt(normB))
}
