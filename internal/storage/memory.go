package storage

import (
	"context"
	"sync"

	"fintrack/internal/core"
)

// MemoryStore keeps the document in process. It starts out absent, so the
// first Load returns the default document.
type MemoryStore struct {
	mu    sync.Mutex
	doc   *core.Document
	saves int
}

// NewMemoryStore returns a store holding doc. A nil doc starts absent.
func NewMemoryStore(doc *core.Document) *MemoryStore {
	return &MemoryStore{doc: doc.Clone()}
}

func (s *MemoryStore) Load(ctx context.Context) (*core.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.doc == nil {
		return core.DefaultDocument(), nil
	}
	return s.doc.Clone(), nil
}

func (s *MemoryStore) Save(ctx context.Context, doc *core.Document) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.doc = doc.Clone()
	s.saves++
	return nil
}

// Saves reports how many times Save succeeded.
func (s *MemoryStore) Saves() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saves
}

func (s *MemoryStore) Close() error { return nil }
