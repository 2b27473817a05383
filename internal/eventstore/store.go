// Package eventstore defines the append-only event log: the single source of
// truth for document state. Each document has its own stream; versions are a
// gap-free 1-based sequence assigned at append time.
package eventstore

import (
	"context"
	"errors"

	"doodledocs/internal/domain"
)

var (
	// ErrVersionConflict is returned when an append would collide with an
	// already assigned version. With writers serialized per stream this
	// indicates a bug, not a normal race.
	ErrVersionConflict = errors.New("event version conflict")
)

// Store is the event log contract. Appends to different streams are
// independent; appends to the same stream must be serialized by the caller.
type Store interface {
	// Append assigns each event the next sequential version for the stream
	// and persists the batch atomically, in call order. It returns the
	// events with versions assigned.
	Append(ctx context.Context, documentID string, events []domain.Event) ([]domain.Event, error)

	// Read returns the full ordered history of a stream. An unknown
	// document yields an empty slice, not an error.
	Read(ctx context.Context, documentID string) ([]domain.Event, error)

	// ReadRange returns events with from <= version <= to, ordered by
	// version. A to of 0 means no upper bound.
	ReadRange(ctx context.Context, documentID string, from, to int64) ([]domain.Event, error)

	// ListStreams enumerates every document that has ever had events
	// appended, including deleted ones.
	ListStreams(ctx context.Context) ([]string, error)

	// Close releases backend resources.
	Close(ctx context.Context) error
}
