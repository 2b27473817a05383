// Package memory provides the in-memory event log backend. It is the
// reference implementation of the store contract and the default for tests
// and single-process deployments.
package memory

import (
	"context"
	"sync"

	"doodledocs/internal/domain"
	"doodledocs/internal/eventstore"
)

type store struct {
	mu      sync.RWMutex
	streams map[string][]domain.Event
}

// NewStore creates an empty in-memory event log.
func NewStore() eventstore.Store {
	return &store{
		streams: make(map[string][]domain.Event),
	}
}

func (s *store) Append(ctx context.Context, documentID string, events []domain.Event) ([]domain.Event, error) {
	if len(events) == 0 {
		return nil, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	stream := s.streams[documentID]
	next := int64(len(stream))

	numbered := make([]domain.Event, len(events))
	for i, e := range events {
		next++
		e.Version = next
		e.DocumentID = documentID
		numbered[i] = e
	}

	// The batch lands whole or not at all; nothing below can fail.
	s.streams[documentID] = append(stream, numbered...)

	out := make([]domain.Event, len(numbered))
	copy(out, numbered)
	return out, nil
}

func (s *store) Read(ctx context.Context, documentID string) ([]domain.Event, error) {
	return s.ReadRange(ctx, documentID, 1, 0)
}

func (s *store) ReadRange(ctx context.Context, documentID string, from, to int64) ([]domain.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stream := s.streams[documentID]
	if from < 1 {
		from = 1
	}

	var out []domain.Event
	for _, e := range stream {
		if e.Version < from {
			continue
		}
		if to > 0 && e.Version > to {
			break
		}
		out = append(out, e)
	}
	return out, nil
}

func (s *store) ListStreams(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.streams))
	for id := range s.streams {
		ids = append(ids, id)
	}
	return ids, nil
}

func (s *store) Close(ctx context.Context) error {
	return nil
}
