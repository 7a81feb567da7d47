package store

import (
	"sync"

	"rag/types"
)

// Registry holds document-level metadata keyed by document id. It is
// process-lifetime only: the vector index persists chunks, while the
// registry is rebuilt empty on restart. Callers needing durability must
// persist and reload this map themselves.
type Registry struct {
	mu   sync.RWMutex
	docs map[string]types.Document
}

func NewRegistry() *Registry {
	return &Registry{
		docs: make(map[string]types.Document),
	}
}

func (r *Registry) Put(doc types.Document) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.docs[doc.ID] = doc
}

func (r *Registry) Get(id string) (types.Document, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	doc, ok := r.docs[id]
	return doc, ok
}

// List returns all registered documents in unspecified order.
func (r *Registry) List() []types.Document {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]types.Document, 0, len(r.docs))
	for _, doc := range r.docs {
		out = append(out, doc)
	}
	return out
}

func (r *Registry) Delete(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.docs, id)
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.docs)
}
