// Package domain defines the canonical event schema for document streams and
// the aggregate that derives document state from them. All producers and
// consumers MUST use these types; the payload set is sealed so that every
// switch over it is reviewed when a variant is added.
package domain

import (
	"encoding/json"
	"fmt"
	"time"
)

// Kind identifies an event variant inside a stream.
type Kind string

const (
	KindCreated        Kind = "document.created"
	KindTitleChanged   Kind = "document.title_changed"
	KindContentChanged Kind = "document.content_changed"
	KindDeleted        Kind = "document.deleted"
	KindCommentAdded   Kind = "comment.added"
	KindCommentDeleted Kind = "comment.deleted"
)

// IsValid checks if the kind is one of the known variants.
func (k Kind) IsValid() bool {
	switch k {
	case KindCreated, KindTitleChanged, KindContentChanged, KindDeleted,
		KindCommentAdded, KindCommentDeleted:
		return true
	default:
		return false
	}
}

// ContentTypeText and ContentTypeDrawing are the content types the editor
// produces. The aggregate accepts any string for forward compatibility.
const (
	ContentTypeText    = "text"
	ContentTypeDrawing = "drawing"
)

// Payload is the sealed set of event variants. Only types in this package
// implement it.
type Payload interface {
	Kind() Kind
	isPayload()
}

// Created is the first event of every stream.
type Created struct {
	Title string `json:"title" bson:"title"`
}

// TitleChanged records a new document title.
type TitleChanged struct {
	NewTitle string `json:"newTitle" bson:"new_title"`
}

// ContentChanged records replaced document content (text or drawing).
type ContentChanged struct {
	Content     string `json:"content" bson:"content"`
	ContentType string `json:"contentType" bson:"content_type"`
}

// Deleted marks the document as deleted. The stream itself is retained.
type Deleted struct{}

// CommentAdded attaches a comment to the document's stream. Comments are
// derived on read and never projected into the document record.
type CommentAdded struct {
	CommentID string    `json:"commentId" bson:"comment_id"`
	Text      string    `json:"text" bson:"text"`
	Author    string    `json:"author" bson:"author"`
	Timestamp time.Time `json:"timestamp" bson:"timestamp"`
}

// CommentDeleted removes a previously added comment.
type CommentDeleted struct {
	CommentID string    `json:"commentId" bson:"comment_id"`
	Timestamp time.Time `json:"timestamp" bson:"timestamp"`
}

// Unknown carries an event decoded from a newer schema. Consumers apply it
// as a no-op.
type Unknown struct {
	RawKind Kind
	Data    []byte
}

func (Created) Kind() Kind        { return KindCreated }
func (TitleChanged) Kind() Kind   { return KindTitleChanged }
func (ContentChanged) Kind() Kind { return KindContentChanged }
func (Deleted) Kind() Kind        { return KindDeleted }
func (CommentAdded) Kind() Kind   { return KindCommentAdded }
func (CommentDeleted) Kind() Kind { return KindCommentDeleted }
func (u Unknown) Kind() Kind      { return u.RawKind }

func (Created) isPayload()        {}
func (TitleChanged) isPayload()   {}
func (ContentChanged) isPayload() {}
func (Deleted) isPayload()        {}
func (CommentAdded) isPayload()   {}
func (CommentDeleted) isPayload() {}
func (Unknown) isPayload()        {}

// Event is the immutable envelope persisted in a stream: the abstract layout
// is (documentId, version, kind, payload, occurredAt) for any backend.
// Version is 1-based within the stream and assigned only by the event log;
// producers leave it zero.
type Event struct {
	ID         string
	DocumentID string
	Version    int64
	OccurredAt time.Time
	Payload    Payload
}

// Kind returns the variant of the wrapped payload.
func (e Event) Kind() Kind {
	if e.Payload == nil {
		return ""
	}
	return e.Payload.Kind()
}

type jsonEnvelope struct {
	ID         string          `json:"eventId"`
	DocumentID string          `json:"documentId"`
	Version    int64           `json:"version"`
	OccurredAt time.Time       `json:"occurredAt"`
	Kind       Kind            `json:"kind"`
	Payload    json.RawMessage `json:"payload,omitempty"`
}

// MarshalJSON implements json.Marshaler.
func (e Event) MarshalJSON() ([]byte, error) {
	kind, raw, err := EncodePayloadJSON(e.Payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(jsonEnvelope{
		ID:         e.ID,
		DocumentID: e.DocumentID,
		Version:    e.Version,
		OccurredAt: e.OccurredAt,
		Kind:       kind,
		Payload:    raw,
	})
}

// UnmarshalJSON implements json.Unmarshaler.
func (e *Event) UnmarshalJSON(data []byte) error {
	var env jsonEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return err
	}
	payload, err := DecodePayloadJSON(env.Kind, env.Payload)
	if err != nil {
		return err
	}
	e.ID = env.ID
	e.DocumentID = env.DocumentID
	e.Version = env.Version
	e.OccurredAt = env.OccurredAt
	e.Payload = payload
	return nil
}

// EncodePayloadJSON serializes a payload for the JSON envelope.
func EncodePayloadJSON(p Payload) (Kind, json.RawMessage, error) {
	if p == nil {
		return "", nil, fmt.Errorf("event has no payload")
	}
	if u, ok := p.(Unknown); ok {
		return u.RawKind, json.RawMessage(u.Data), nil
	}
	raw, err := json.Marshal(p)
	if err != nil {
		return "", nil, fmt.Errorf("encode %s payload: %w", p.Kind(), err)
	}
	return p.Kind(), raw, nil
}

// DecodePayloadJSON deserializes a payload by kind. Unrecognized kinds are
// preserved as Unknown so old consumers can replay newer streams.
func DecodePayloadJSON(kind Kind, data []byte) (Payload, error) {
	switch kind {
	case KindCreated:
		var p Created
		return decodeInto(data, kind, &p)
	case KindTitleChanged:
		var p TitleChanged
		return decodeInto(data, kind, &p)
	case KindContentChanged:
		var p ContentChanged
		return decodeInto(data, kind, &p)
	case KindDeleted:
		return Deleted{}, nil
	case KindCommentAdded:
		var p CommentAdded
		return decodeInto(data, kind, &p)
	case KindCommentDeleted:
		var p CommentDeleted
		return decodeInto(data, kind, &p)
	default:
		return Unknown{RawKind: kind, Data: append([]byte(nil), data...)}, nil
	}
}

func decodeInto[P Payload](data []byte, kind Kind, dst *P) (Payload, error) {
	if len(data) > 0 {
		if err := json.Unmarshal(data, dst); err != nil {
			return nil, fmt.Errorf("decode %s payload: %w", kind, err)
		}
	}
	return *dst, nil
}
