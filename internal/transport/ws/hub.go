package ws

import (
	"encoding/json"

	"go.uber.org/zap"
)

// Hub owns every live connection and fans events out to the match
// rooms their owners subscribed to. One goroutine (Run) serializes all
// map access.
type Hub struct {
	clients map[int64]*Client

	register   chan *Client
	unregister chan *Client
	broadcast  chan *broadcastMsg

	logger *zap.Logger
}

type broadcastMsg struct {
	matchID int64
	data    []byte
}

func NewHub(logger *zap.Logger) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{
		clients:    make(map[int64]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan *broadcastMsg, 256),
		logger:     logger,
	}
}

// Run starts the hub event loop. Call it in its own goroutine.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			if old, ok := h.clients[client.userID]; ok {
				h.drop(old)
			}
			h.clients[client.userID] = client
			h.logger.Debug("ws client connected",
				zap.Int64("user_id", client.userID),
				zap.Int("total", len(h.clients)),
			)

		case client := <-h.unregister:
			if current, ok := h.clients[client.userID]; ok && current == client {
				h.drop(client)
				h.logger.Debug("ws client disconnected",
					zap.Int64("user_id", client.userID),
					zap.Int("total", len(h.clients)),
				)
			}

		case msg := <-h.broadcast:
			for _, client := range h.clients {
				if !client.IsSubscribed(msg.matchID) {
					continue
				}
				select {
				case client.send <- msg.data:
				default:
					// Slow consumer, cut it loose.
					h.drop(client)
				}
			}
		}
	}
}

func (h *Hub) drop(c *Client) {
	delete(h.clients, c.userID)
	close(c.send)
	close(c.done)
}

// Publish sends an event to every subscriber of a match room. It is
// fire and forget: marshal failures are logged and dropped, and a full
// hub queue never blocks the caller's request path.
func (h *Hub) Publish(room int64, event string, payload any) {
	evt, err := NewEvent(event, room, payload)
	if err != nil {
		h.logger.Warn("ws publish marshal failed", zap.Error(err))
		return
	}
	data, err := json.Marshal(evt)
	if err != nil {
		h.logger.Warn("ws publish marshal failed", zap.Error(err))
		return
	}
	select {
	case h.broadcast <- &broadcastMsg{matchID: room, data: data}:
	default:
		h.logger.Warn("ws broadcast queue full, event dropped",
			zap.Int64("match_id", room),
			zap.String("event", event),
		)
	}
}
