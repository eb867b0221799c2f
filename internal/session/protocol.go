package session

import (
	"encoding/json"

	"github.com/adamnemecek/geometry-sketchpad/backend-go/internal/document"
	"github.com/adamnemecek/geometry-sketchpad/backend-go/internal/engine"
	"github.com/adamnemecek/geometry-sketchpad/backend-go/internal/geom"
)

type Message struct {
	Type     string          `json:"type"`
	SketchID string          `json:"sketchId,omitempty"`
	ClientID string          `json:"clientId,omitempty"`
	UserID   string          `json:"userId,omitempty"`
	Seq      int64           `json:"seq,omitempty"`
	Payload  json.RawMessage `json:"payload"`
}

const (
	TypePresenceUpdate = "presence.update"
	TypePresenceState  = "presence.state"
	TypePresenceJoin   = "presence.join"
	TypePresenceLeave  = "presence.leave"
	TypeError          = "error"

	// Connection. The welcome message carries the full document, so a newly
	// joined client needs no separate sync round.
	TypeWelcome = "welcome"

	// Geometry mutation messages
	TypeGeomInsert = "geom.insert"
	TypeGeomRemove = "geom.remove"
	TypeGeomMove   = "geom.move"
	TypeGeomUpdate = "geom.update"

	// Viewport and queries
	TypeViewportSet = "viewport.set"
	TypeHitTest     = "hit.test"
	TypeHitResult   = "hit.result"
)

type PresencePayload struct {
	Cursor      *CursorPos `json:"cursor,omitempty"`
	Selection   []string   `json:"selection,omitempty"`
	DisplayName string     `json:"displayName,omitempty"`
}

type CursorPos struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type PresenceStatePayload struct {
	Presences map[string]*PresencePayload `json:"presences"`
}

type PresenceJoinPayload struct {
	UserID      string `json:"userId"`
	DisplayName string `json:"displayName"`
}

type PresenceLeavePayload struct {
	UserID string `json:"userId"`
}

// WelcomePayload is sent to a client right after it joins a room.
type WelcomePayload struct {
	ClientID string                   `json:"clientId"`
	Document *document.SketchDocument `json:"document"`
	Viewport engine.Viewport          `json:"viewport"`
}

// GeomInsertPayload defines a new entity symbolically. The entity ID is
// client-assigned; re-inserting an existing ID replaces its definition.
type GeomInsertPayload struct {
	Entity string            `json:"entity"`
	Def    engine.Definition `json:"def"`
}

type GeomRemovePayload struct {
	Entity string `json:"entity"`
}

// GeomMovePayload repositions a free point. Moves on any other entity kind
// are rejected.
type GeomMovePayload struct {
	Entity   string       `json:"entity"`
	Position geom.Vector2 `json:"position"`
}

// GeomUpdatePayload carries the resolved-geometry diff of one solve frame.
type GeomUpdatePayload struct {
	Updates []engine.Update `json:"updates"`
}

type ViewportSetPayload struct {
	Viewport engine.Viewport `json:"viewport"`
}

type HitTestPayload struct {
	Point geom.Vector2 `json:"point"`
}

type HitResultPayload struct {
	Point    geom.Vector2 `json:"point"`
	Entities []string     `json:"entities"`
}

type ErrorPayload struct {
	Reason string `json:"reason"`
}
