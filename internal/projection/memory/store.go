// Package memory provides the in-memory read-model store.
package memory

import (
	"context"
	"sort"
	"sync"

	"doodledocs/internal/projection"
)

type store struct {
	mu   sync.RWMutex
	docs map[string]projection.Document
}

// NewStore creates an empty in-memory read-model store.
func NewStore() projection.Store {
	return &store{
		docs: make(map[string]projection.Document),
	}
}

func (s *store) Save(ctx context.Context, doc *projection.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs[doc.ID] = *doc
	return nil
}

func (s *store) Get(ctx context.Context, id string) (*projection.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, ok := s.docs[id]
	if !ok {
		return nil, projection.ErrNotFound
	}
	return &doc, nil
}

func (s *store) List(ctx context.Context) ([]*projection.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*projection.Document, 0, len(s.docs))
	for id := range s.docs {
		doc := s.docs[id]
		out = append(out, &doc)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].UpdatedAt.After(out[j].UpdatedAt)
	})
	return out, nil
}

func (s *store) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.docs, id)
	return nil
}

func (s *store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs = make(map[string]projection.Document)
	return nil
}
