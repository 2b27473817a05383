package realtime

import (
	"encoding/json"

	"doodledocs/internal/document"
)

// Message types
const (
	TypeSubscribe      = "subscribe"
	TypeSubscribeAck   = "subscribe_ack"
	TypeUnsubscribe    = "unsubscribe"
	TypeUnsubscribeAck = "unsubscribe_ack"
	TypeEvent          = "event"
	TypeError          = "error"
)

// BaseMessage is the envelope for all messages.
type BaseMessage struct {
	ID      string          `json:"id,omitempty"`
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// SubscribePayload selects which documents the client wants to hear about.
// An empty DocumentID subscribes to every document.
type SubscribePayload struct {
	DocumentID string `json:"documentId"`
}

// UnsubscribePayload names the subscription to drop.
type UnsubscribePayload struct {
	ID string `json:"id"`
}

// EventPayload (server -> client) delivers one write notification to one
// subscription.
type EventPayload struct {
	SubID        string                `json:"subId"`
	Notification document.Notification `json:"notification"`
}

// ErrorPayload (server -> client)
type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func mustMarshal(v interface{}) []byte {
	b, _ := json.Marshal(v) // internal types only
	return b
}
