package ws

import (
	"encoding/json"
	"time"
)

// Client -> server event types.
const (
	EventSubscribe   = "chat:subscribe"
	EventUnsubscribe = "chat:unsubscribe"
	EventPing        = "ping"
)

// Server -> client event types.
const (
	EventPong  = "pong"
	EventError = "error"
)

// Event is the envelope for every frame in both directions. MatchID is
// the room the event belongs to; it is omitted for connection-level
// events like ping and error.
type Event struct {
	Type      string          `json:"type"`
	MatchID   int64           `json:"matchId,omitempty"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	Timestamp int64           `json:"ts,omitempty"`
}

type SubscribePayload struct {
	MatchID int64 `json:"matchId"`
}

type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func NewEvent(eventType string, matchID int64, payload any) (*Event, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return &Event{
		Type:      eventType,
		MatchID:   matchID,
		Payload:   data,
		Timestamp: time.Now().Unix(),
	}, nil
}
