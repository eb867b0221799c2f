package engine

import (
	"github.com/adamnemecek/geometry-sketchpad/backend-go/internal/geom"
)

// EventKind tags an entity-level change notification from the authoring
// layer.
type EventKind string

const (
	// EventInserted introduces a new entity with its symbolic definition.
	EventInserted EventKind = "inserted"
	// EventRemoved retracts an entity. The definition rides along so the
	// engine can mirror exactly the dependency edges added at insertion.
	EventRemoved EventKind = "removed"
	// EventMoved carries a direct edit to a Free point's coordinate.
	EventMoved EventKind = "moved"
)

// Event is one entry of the inbound change stream. The engine drains its
// queue once per frame, in emission order.
type Event struct {
	Kind     EventKind    `json:"kind"`
	Entity   Entity       `json:"entity"`
	Def      Definition   `json:"def,omitempty"`
	Position geom.Vector2 `json:"position,omitempty"`
}

func Inserted(ent Entity, def Definition) Event {
	return Event{Kind: EventInserted, Entity: ent, Def: def}
}

func Removed(ent Entity, def Definition) Event {
	return Event{Kind: EventRemoved, Entity: ent, Def: def}
}

func Moved(ent Entity, pos geom.Vector2) Event {
	return Event{Kind: EventMoved, Entity: ent, Position: pos}
}
