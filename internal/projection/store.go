// Package projection maintains the read side of the service: a denormalized
// current-state record per document, kept consistent with the event log by
// applying events in version order.
package projection

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a read-model record does not exist.
var ErrNotFound = errors.New("document not found")

// Document is the read-model record. It is always derivable by replaying
// the full event stream; any divergence is repaired by a full rebuild,
// never patched in place.
type Document struct {
	ID        string    `json:"id" bson:"_id"`
	Title     string    `json:"title" bson:"title"`
	Content   string    `json:"content" bson:"content"`
	CreatedAt time.Time `json:"createdAt" bson:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updated_at"`
}

// Store holds read-model records keyed by document ID.
type Store interface {
	// Save inserts or replaces a record.
	Save(ctx context.Context, doc *Document) error

	// Get returns a record or ErrNotFound.
	Get(ctx context.Context, id string) (*Document, error)

	// List returns all records ordered by most recently updated first.
	List(ctx context.Context) ([]*Document, error)

	// Delete removes a record. Deleting an absent record is not an error.
	Delete(ctx context.Context, id string) error

	// Reset discards every record. Used before a full rebuild.
	Reset(ctx context.Context) error
}
