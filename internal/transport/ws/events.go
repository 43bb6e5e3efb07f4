package ws

import (
	"encoding/json"
	"time"

	"github.com/warblerhq/warbler/internal/domain"
)

// Event types - Client → Server
const (
	EventTypeFeedSubscribe   = "feed.subscribe"
	EventTypeFeedUnsubscribe = "feed.unsubscribe"
	EventTypePing            = "ping"
)

// Event types - Server → Client
const (
	EventTypeMessageNew     = "message.new"
	EventTypeMessageDeleted = "message.deleted"
	EventTypePong           = "pong"
	EventTypeError          = "error"
)

// Event is the base envelope for all WebSocket messages. AuthorID scopes the
// event to one user's feed.
type Event struct {
	Type      string          `json:"type"`
	AuthorID  *int64          `json:"author_id,omitempty"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	Timestamp int64           `json:"ts,omitempty"`
}

// --- Client → Server payloads ---

type FeedPayload struct {
	AuthorID int64 `json:"author_id"`
}

// --- Server → Client payloads ---

type MessagePayload struct {
	domain.Message
}

type MessageDeletedPayload struct {
	ID int64 `json:"id"`
}

type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// NewEvent creates a server→client event with the current timestamp.
func NewEvent(eventType string, authorID *int64, payload any) (*Event, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return &Event{
		Type:      eventType,
		AuthorID:  authorID,
		Payload:   data,
		Timestamp: time.Now().Unix(),
	}, nil
}
