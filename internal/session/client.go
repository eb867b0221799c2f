package session

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/coder/websocket"
)

const (
	writeWait = 10 * time.Second
	// One ping per pingPeriod keeps intermediaries from dropping idle
	// sketch sessions.
	pingPeriod = 30 * time.Second
	// Generous enough for a geom.insert of a large pasted construction.
	maxMsgSize = 64 * 1024
	outboxSize = 256
)

// Client is one websocket connection bound to a sketch room. Outbound
// messages flow through the outbox channel so room broadcasts never block on
// a slow peer; a client that cannot drain its outbox is disconnected rather
// than throttling the whole room.
type Client struct {
	hub    *Hub
	conn   *websocket.Conn
	outbox chan []byte

	UserID      string
	DisplayName string
	SketchID    string
	ClientID    string
}

func NewClient(hub *Hub, conn *websocket.Conn, userID, displayName, sketchID, clientID string) *Client {
	return &Client{
		hub:         hub,
		conn:        conn,
		outbox:      make(chan []byte, outboxSize),
		UserID:      userID,
		DisplayName: displayName,
		SketchID:    sketchID,
		ClientID:    clientID,
	}
}

// ReadPump decodes inbound messages and feeds them to the hub. It stamps each
// message with the connection's identity, so a client cannot speak for
// another user or room.
func (c *Client) ReadPump(ctx context.Context) {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close(websocket.StatusNormalClosure, "")
	}()

	c.conn.SetReadLimit(maxMsgSize)

	for {
		_, data, err := c.conn.Read(ctx)
		if err != nil {
			status := websocket.CloseStatus(err)
			if status != websocket.StatusNormalClosure && status != websocket.StatusGoingAway {
				slog.Debug("client read ended", "error", err, "user", c.UserID, "sketch", c.SketchID)
			}
			return
		}

		var msg Message
		if err := json.Unmarshal(data, &msg); err != nil {
			c.SendError("malformed message")
			continue
		}
		if msg.Type == "" {
			c.SendError("message type required")
			continue
		}

		msg.UserID = c.UserID
		msg.ClientID = c.ClientID
		msg.SketchID = c.SketchID

		c.hub.handleMessage(c, &msg)
	}
}

// WritePump drains the outbox onto the wire and keeps the connection alive
// with pings.
func (c *Client) WritePump(ctx context.Context) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close(websocket.StatusNormalClosure, "")
	}()

	for {
		select {
		case data, ok := <-c.outbox:
			if !ok {
				return
			}
			writeCtx, cancel := context.WithTimeout(ctx, writeWait)
			err := c.conn.Write(writeCtx, websocket.MessageText, data)
			cancel()
			if err != nil {
				slog.Debug("client write ended", "error", err, "user", c.UserID, "sketch", c.SketchID)
				return
			}

		case <-ticker.C:
			pingCtx, cancel := context.WithTimeout(ctx, writeWait)
			err := c.conn.Ping(pingCtx)
			cancel()
			if err != nil {
				return
			}

		case <-ctx.Done():
			return
		}
	}
}

// Send queues a message for delivery. A full outbox means the peer has
// fallen hopelessly behind the room's update stream; dropping individual
// geometry diffs would desync it, so the connection is closed instead and
// the client reconnects to a fresh snapshot.
func (c *Client) Send(msg *Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		slog.Error("marshal message", "error", err, "type", msg.Type)
		return
	}

	select {
	case c.outbox <- data:
	default:
		slog.Warn("client outbox full, disconnecting", "user", c.UserID, "sketch", c.SketchID)
		c.conn.Close(websocket.StatusPolicyViolation, "not keeping up with updates")
	}
}

func (c *Client) SendError(reason string) {
	payload, _ := json.Marshal(ErrorPayload{Reason: reason})
	c.Send(&Message{Type: TypeError, Payload: payload})
}
