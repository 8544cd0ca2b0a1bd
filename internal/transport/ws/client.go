package ws

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"go.uber.org/zap"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"
)

const (
	writeWait     = 10 * time.Second
	pingInterval  = 30 * time.Second
	subscribeWait = 5 * time.Second
	sendBufSize   = 256
)

// RoomGate decides whether a user may join a match room and returns
// the canonical room id to subscribe to, which may differ from the one
// the client asked for. The chat service's per-request authorization
// check backs it, so a revoked match denies new subscriptions
// immediately.
type RoomGate interface {
	Authorize(ctx context.Context, userID, matchID int64) (int64, error)
}

// Client is a single authenticated WebSocket connection.
type Client struct {
	hub    *Hub
	conn   *websocket.Conn
	gate   RoomGate
	logger *zap.Logger
	userID int64

	rooms map[int64]struct{}
	mu    sync.RWMutex

	send chan []byte
	done chan struct{}
}

func NewClient(hub *Hub, conn *websocket.Conn, gate RoomGate, logger *zap.Logger, userID int64) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		hub:    hub,
		conn:   conn,
		gate:   gate,
		logger: logger,
		userID: userID,
		rooms:  make(map[int64]struct{}),
		send:   make(chan []byte, sendBufSize),
		done:   make(chan struct{}),
	}
}

func (c *Client) IsSubscribed(matchID int64) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.rooms[matchID]
	return ok
}

func (c *Client) subscribe(matchID int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.rooms[matchID] = struct{}{}
}

func (c *Client) unsubscribe(matchID int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.rooms, matchID)
}

// ReadPump reads frames until the connection drops, routing each one
// through handleEvent.
func (c *Client) ReadPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close(websocket.StatusNormalClosure, "")
	}()

	for {
		var event Event
		if err := wsjson.Read(context.Background(), c.conn, &event); err != nil {
			if websocket.CloseStatus(err) == -1 {
				c.logger.Debug("ws read failed",
					zap.Int64("user_id", c.userID),
					zap.Error(err),
				)
			}
			return
		}
		c.handleEvent(&event)
	}
}

// WritePump drains the send queue and keeps the connection alive with
// pings.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		c.conn.Close(websocket.StatusNormalClosure, "")
	}()

	for {
		select {
		case message, ok := <-c.send:
			if !ok {
				return
			}
			ctx, cancel := context.WithTimeout(context.Background(), writeWait)
			err := c.conn.Write(ctx, websocket.MessageText, message)
			cancel()
			if err != nil {
				return
			}

		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), writeWait)
			err := c.conn.Ping(ctx)
			cancel()
			if err != nil {
				return
			}

		case <-c.done:
			return
		}
	}
}

func (c *Client) handleEvent(event *Event) {
	switch event.Type {
	case EventSubscribe:
		matchID, ok := c.decodeRoom(event)
		if !ok {
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), subscribeWait)
		room, err := c.gate.Authorize(ctx, c.userID, matchID)
		cancel()
		if err != nil {
			c.sendError("SUBSCRIBE_DENIED", "you are not a participant of this match")
			return
		}
		c.subscribe(room)

	case EventUnsubscribe:
		matchID, ok := c.decodeRoom(event)
		if !ok {
			return
		}
		c.unsubscribe(matchID)

	case EventPing:
		c.sendPong()

	default:
		c.sendError("UNKNOWN_EVENT", "unknown event type: "+event.Type)
	}
}

func (c *Client) decodeRoom(event *Event) (int64, bool) {
	if event.MatchID > 0 {
		return event.MatchID, true
	}
	var p SubscribePayload
	if err := json.Unmarshal(event.Payload, &p); err != nil || p.MatchID <= 0 {
		c.sendError("INVALID_PAYLOAD", "matchId is required")
		return 0, false
	}
	return p.MatchID, true
}

func (c *Client) sendPong() {
	data, _ := json.Marshal(Event{Type: EventPong, Timestamp: time.Now().Unix()})
	select {
	case c.send <- data:
	default:
	}
}

func (c *Client) sendError(code, message string) {
	evt, err := NewEvent(EventError, 0, ErrorPayload{Code: code, Message: message})
	if err != nil {
		return
	}
	data, err := json.Marshal(evt)
	if err != nil {
		return
	}
	select {
	case c.send <- data:
	default:
	}
}
