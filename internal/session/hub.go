package session

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/adamnemecek/geometry-sketchpad/backend-go/internal/document"
	"github.com/adamnemecek/geometry-sketchpad/backend-go/internal/engine"
)

// DocLoader fetches the persisted document for a sketch when the first client
// opens it.
type DocLoader func(ctx context.Context, sketchID string) (*document.SketchDocument, error)

// DocSaver persists a room's document after it has been mutated.
type DocSaver func(ctx context.Context, sketchID string, doc *document.SketchDocument) error

type Hub struct {
	mu         sync.RWMutex
	rooms      map[string]*Room // sketchID -> room
	register   chan *Client
	unregister chan *Client

	loader DocLoader
	saver  DocSaver
}

func NewHub(loader DocLoader, saver DocSaver) *Hub {
	return &Hub{
		rooms:      make(map[string]*Room),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		loader:     loader,
		saver:      saver,
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.addClient(client)
		case client := <-h.unregister:
			h.removeClient(client)
		}
	}
}

func (h *Hub) Register(client *Client) {
	h.register <- client
}

// SaveDirtyRooms persists every room whose document changed since the last
// save. Called periodically and on shutdown.
func (h *Hub) SaveDirtyRooms(ctx context.Context) {
	h.mu.RLock()
	rooms := make(map[string]*Room, len(h.rooms))
	for id, room := range h.rooms {
		rooms[id] = room
	}
	h.mu.RUnlock()

	for id, room := range rooms {
		doc, dirty := room.TakeDirty()
		if !dirty {
			continue
		}
		if err := h.saver(ctx, id, doc); err != nil {
			slog.Error("save sketch failed", "sketch", id, "error", err)
		}
	}
}

func (h *Hub) addClient(client *Client) {
	h.mu.Lock()
	room, ok := h.rooms[client.SketchID]
	if !ok {
		doc, err := h.loader(context.Background(), client.SketchID)
		if err != nil {
			h.mu.Unlock()
			slog.Error("load sketch failed", "sketch", client.SketchID, "error", err)
			client.SendError("sketch unavailable")
			close(client.outbox)
			return
		}
		room, err = NewRoom(client.SketchID, doc)
		if err != nil {
			h.mu.Unlock()
			slog.Error("open room failed", "sketch", client.SketchID, "error", err)
			client.SendError("sketch unavailable")
			close(client.outbox)
			return
		}
		h.rooms[client.SketchID] = room
	}
	room.clients[client.ClientID] = client
	h.mu.Unlock()

	// Sync the full sketch state to the new client
	doc, vp, resolved := room.Snapshot()
	welcomePayload, _ := json.Marshal(WelcomePayload{
		ClientID: client.ClientID,
		Document: doc,
		Viewport: vp,
	})
	client.Send(&Message{Type: TypeWelcome, Payload: welcomePayload})

	updatePayload, _ := json.Marshal(GeomUpdatePayload{Updates: resolved})
	client.Send(&Message{Type: TypeGeomUpdate, Payload: updatePayload})

	stateMsg := room.presence.StateMessage()
	if stateMsg != nil {
		client.Send(stateMsg)
	}

	// Broadcast join to other clients
	joinPayload, _ := json.Marshal(PresenceJoinPayload{
		UserID:      client.UserID,
		DisplayName: client.DisplayName,
	})
	joinMsg := &Message{
		Type:    TypePresenceJoin,
		UserID:  client.UserID,
		Payload: joinPayload,
	}
	h.broadcastToRoom(client.SketchID, joinMsg, client.ClientID)

	slog.Info("client joined", "user", client.UserID, "sketch", client.SketchID)
}

func (h *Hub) removeClient(client *Client) {
	h.mu.Lock()
	room, ok := h.rooms[client.SketchID]
	if !ok {
		h.mu.Unlock()
		return
	}

	delete(room.clients, client.ClientID)
	close(client.outbox)
	room.presence.Remove(client.UserID)

	lastClient := len(room.clients) == 0
	if lastClient {
		delete(h.rooms, client.SketchID)
	}
	h.mu.Unlock()

	if lastClient {
		if doc, dirty := room.TakeDirty(); dirty {
			if err := h.saver(context.Background(), client.SketchID, doc); err != nil {
				slog.Error("save sketch failed", "sketch", client.SketchID, "error", err)
			}
		}
	}

	// Broadcast leave to remaining clients
	leavePayload, _ := json.Marshal(PresenceLeavePayload{
		UserID: client.UserID,
	})
	leaveMsg := &Message{
		Type:    TypePresenceLeave,
		UserID:  client.UserID,
		Payload: leavePayload,
	}
	h.broadcastToRoom(client.SketchID, leaveMsg, "")

	slog.Info("client left", "user", client.UserID, "sketch", client.SketchID)
}

func (h *Hub) handleMessage(sender *Client, msg *Message) {
	switch msg.Type {
	case TypeGeomInsert:
		h.handleGeomInsert(sender, msg)
	case TypeGeomRemove:
		h.handleGeomRemove(sender, msg)
	case TypeGeomMove:
		h.handleGeomMove(sender, msg)
	case TypeViewportSet:
		h.handleViewportSet(sender, msg)
	case TypeHitTest:
		h.handleHitTest(sender, msg)
	case TypePresenceUpdate:
		h.handlePresenceUpdate(sender, msg)
	default:
		slog.Warn("unknown message type", "type", msg.Type, "user", sender.UserID)
	}
}

func (h *Hub) handleGeomInsert(sender *Client, msg *Message) {
	room := h.roomOf(sender)
	if room == nil {
		return
	}

	var payload GeomInsertPayload
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		sender.SendError("invalid insert payload")
		return
	}
	if payload.Entity == "" {
		sender.SendError("entity id required")
		return
	}

	updates, err := room.Insert(payload.Entity, payload.Def)
	if err != nil {
		slog.Warn("insert rejected", "entity", payload.Entity, "error", err)
		sender.SendError(err.Error())
		return
	}
	h.broadcastUpdates(sender.SketchID, sender.UserID, updates)
}

func (h *Hub) handleGeomRemove(sender *Client, msg *Message) {
	room := h.roomOf(sender)
	if room == nil {
		return
	}

	var payload GeomRemovePayload
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		sender.SendError("invalid remove payload")
		return
	}

	updates, err := room.Remove(payload.Entity)
	if err != nil {
		sender.SendError(err.Error())
		return
	}
	h.broadcastUpdates(sender.SketchID, sender.UserID, updates)
}

func (h *Hub) handleGeomMove(sender *Client, msg *Message) {
	room := h.roomOf(sender)
	if room == nil {
		return
	}

	var payload GeomMovePayload
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		sender.SendError("invalid move payload")
		return
	}

	updates, err := room.Move(payload.Entity, payload.Position)
	if err != nil {
		sender.SendError(err.Error())
		return
	}
	h.broadcastUpdates(sender.SketchID, sender.UserID, updates)
}

func (h *Hub) handleViewportSet(sender *Client, msg *Message) {
	room := h.roomOf(sender)
	if room == nil {
		return
	}

	var payload ViewportSetPayload
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		sender.SendError("invalid viewport payload")
		return
	}
	if payload.Viewport.VirtualSize.X <= 0 || payload.Viewport.VirtualSize.Y <= 0 ||
		payload.Viewport.ActualSize.X <= 0 || payload.Viewport.ActualSize.Y <= 0 {
		sender.SendError("viewport sizes must be positive")
		return
	}

	room.SetViewport(payload.Viewport)
}

func (h *Hub) handleHitTest(sender *Client, msg *Message) {
	room := h.roomOf(sender)
	if room == nil {
		return
	}

	var payload HitTestPayload
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		sender.SendError("invalid hit test payload")
		return
	}

	hits := room.HitTest(payload.Point)
	resultPayload, _ := json.Marshal(HitResultPayload{
		Point:    payload.Point,
		Entities: hits,
	})
	sender.Send(&Message{Type: TypeHitResult, Seq: msg.Seq, Payload: resultPayload})
}

func (h *Hub) handlePresenceUpdate(sender *Client, msg *Message) {
	var presence PresencePayload
	if err := json.Unmarshal(msg.Payload, &presence); err != nil {
		slog.Warn("invalid presence payload", "error", err)
		return
	}

	presence.DisplayName = sender.DisplayName

	room := h.roomOf(sender)
	if room == nil {
		return
	}

	room.presence.Update(sender.UserID, &presence)

	// Broadcast to other clients in room
	outPayload, _ := json.Marshal(presence)
	outMsg := &Message{
		Type:    TypePresenceUpdate,
		UserID:  sender.UserID,
		Payload: outPayload,
	}
	h.broadcastToRoom(sender.SketchID, outMsg, sender.ClientID)
}

// broadcastUpdates sends a solve-frame diff to every client in the room,
// including the originator; the server's resolution is authoritative.
func (h *Hub) broadcastUpdates(sketchID, userID string, updates []engine.Update) {
	if len(updates) == 0 {
		return
	}
	payload, _ := json.Marshal(GeomUpdatePayload{Updates: updates})
	h.broadcastToRoom(sketchID, &Message{
		Type:    TypeGeomUpdate,
		UserID:  userID,
		Payload: payload,
	}, "")
}

func (h *Hub) roomOf(client *Client) *Room {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.rooms[client.SketchID]
}

func (h *Hub) broadcastToRoom(sketchID string, msg *Message, excludeClientID string) {
	h.mu.RLock()
	room, ok := h.rooms[sketchID]
	if !ok {
		h.mu.RUnlock()
		return
	}

	clients := make([]*Client, 0, len(room.clients))
	for _, c := range room.clients {
		if c.ClientID != excludeClientID {
			clients = append(clients, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range clients {
		c.Send(msg)
	}
}
