package domain

import (
	"time"

	"github.com/google/uuid"
)

// Document is the aggregate root for a single document. It is reconstructed
// per command by replaying the document's event stream and discarded after
// the events it produced are committed; its only durable trace is the stream.
type Document struct {
	ID          string
	Title       string
	Content     string
	ContentType string
	CreatedAt   time.Time
	UpdatedAt   time.Time

	// Version counts committed events only. Commands do not advance it;
	// it moves when the aggregate is reconstructed from the stream.
	Version int64

	pending []Event
}

// New creates a fresh aggregate and records the Created event.
func New(id, title string) *Document {
	d := &Document{}
	d.record(id, Created{Title: title})
	return d
}

// FromEvents folds apply over an ordered event sequence starting from the
// zero aggregate. It is pure: the same sequence always yields the same
// state. Any non-empty prefix of a stream is a valid input, which is what
// point-in-time reads and undo/redo build on.
func FromEvents(events []Event) *Document {
	d := &Document{}
	for _, e := range events {
		d.apply(e)
		d.Version++
	}
	return d
}

// UpdateTitle records a TitleChanged event.
func (d *Document) UpdateTitle(newTitle string) {
	d.record(d.ID, TitleChanged{NewTitle: newTitle})
}

// UpdateContent records a ContentChanged event. An empty contentType
// defaults to text.
func (d *Document) UpdateContent(content, contentType string) {
	if contentType == "" {
		contentType = ContentTypeText
	}
	d.record(d.ID, ContentChanged{Content: content, ContentType: contentType})
}

// Delete records a Deleted event. The aggregate does not guard against
// further commands afterwards; the stream outlives the read-model record.
func (d *Document) Delete() {
	d.record(d.ID, Deleted{})
}

// AddComment records a CommentAdded event and returns the new comment ID.
func (d *Document) AddComment(text, author string) string {
	commentID := uuid.New().String()
	d.record(d.ID, CommentAdded{
		CommentID: commentID,
		Text:      text,
		Author:    author,
		Timestamp: time.Now().UTC(),
	})
	return commentID
}

// DeleteComment records a CommentDeleted event.
func (d *Document) DeleteComment(commentID string) {
	d.record(d.ID, CommentDeleted{
		CommentID: commentID,
		Timestamp: time.Now().UTC(),
	})
}

// PendingEvents returns the events recorded since the last commit marker.
// Versions are still zero; the event log assigns them at append time.
func (d *Document) PendingEvents() []Event {
	out := make([]Event, len(d.pending))
	copy(out, d.pending)
	return out
}

// MarkCommitted clears the pending buffer. Callers must only do this after
// the event log has accepted the events.
func (d *Document) MarkCommitted() {
	d.pending = nil
}

func (d *Document) record(documentID string, p Payload) {
	e := Event{
		ID:         uuid.New().String(),
		DocumentID: documentID,
		OccurredAt: time.Now().UTC(),
		Payload:    p,
	}
	d.apply(e)
	d.pending = append(d.pending, e)
}

// apply is the total state-transition function over the payload set.
func (d *Document) apply(e Event) {
	switch p := e.Payload.(type) {
	case Created:
		d.ID = e.DocumentID
		d.Title = p.Title
		d.Content = ""
		d.ContentType = ContentTypeText
		d.CreatedAt = e.OccurredAt
		d.UpdatedAt = e.OccurredAt
	case TitleChanged:
		d.Title = p.NewTitle
		d.UpdatedAt = e.OccurredAt
	case ContentChanged:
		d.Content = p.Content
		d.ContentType = p.ContentType
		d.UpdatedAt = e.OccurredAt
	case Deleted:
		d.UpdatedAt = e.OccurredAt
	case CommentAdded, CommentDeleted:
		// Comments live in the stream but do not alter document state.
	case Unknown:
		// Events from a newer schema replay as no-ops.
	}
}
