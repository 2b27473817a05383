package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func commentEvent(version int64, p Payload) Event {
	return Event{
		ID:         "evt",
		DocumentID: "doc-1",
		Version:    version,
		OccurredAt: time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
		Payload:    p,
	}
}

func TestCurrentComments(t *testing.T) {
	base := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	events := []Event{
		commentEvent(1, Created{Title: "T"}),
		commentEvent(2, CommentAdded{CommentID: "c2", Text: "second", Author: "bob", Timestamp: base.Add(2 * time.Minute)}),
		commentEvent(3, CommentAdded{CommentID: "c1", Text: "first", Author: "alice", Timestamp: base.Add(1 * time.Minute)}),
		commentEvent(4, CommentAdded{CommentID: "c3", Text: "third", Author: "carol", Timestamp: base.Add(3 * time.Minute)}),
		commentEvent(5, CommentDeleted{CommentID: "c2", Timestamp: base.Add(4 * time.Minute)}),
	}

	comments := CurrentComments(events)
	require.Len(t, comments, 2)
	assert.Equal(t, "c1", comments[0].ID, "ordered by timestamp, not stream order")
	assert.Equal(t, "c3", comments[1].ID)
}

func TestCurrentComments_Empty(t *testing.T) {
	assert.Empty(t, CurrentComments(nil))
	assert.Empty(t, CurrentComments([]Event{commentEvent(1, Created{Title: "T"})}))
}
