package domain

import (
	"sort"
	"time"
)

// Comment is the read-side shape of a live comment.
type Comment struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	Author    string    `json:"author"`
	Timestamp time.Time `json:"timestamp"`
}

// CurrentComments derives the live comment set from a document's history:
// every CommentAdded whose comment ID has no CommentDeleted in the stream,
// ordered by timestamp.
func CurrentComments(events []Event) []Comment {
	deleted := make(map[string]bool)
	for _, e := range events {
		if p, ok := e.Payload.(CommentDeleted); ok {
			deleted[p.CommentID] = true
		}
	}

	var comments []Comment
	for _, e := range events {
		p, ok := e.Payload.(CommentAdded)
		if !ok || deleted[p.CommentID] {
			continue
		}
		comments = append(comments, Comment{
			ID:        p.CommentID,
			Text:      p.Text,
			Author:    p.Author,
			Timestamp: p.Timestamp,
		})
	}

	sort.Slice(comments, func(i, j int) bool {
		return comments[i].Timestamp.Before(comments[j].Timestamp)
	})
	return comments
}
