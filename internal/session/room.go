package session

import (
	"fmt"
	"sync"

	"github.com/adamnemecek/geometry-sketchpad/backend-go/internal/document"
	"github.com/adamnemecek/geometry-sketchpad/backend-go/internal/engine"
	"github.com/adamnemecek/geometry-sketchpad/backend-go/internal/geom"
)

// Room holds the authoritative state for one sketch: the symbolic document,
// a live engine resolving it, and the connected clients. The engine is
// single-threaded, so every mutation goes through the room mutex and runs one
// full solve frame before the lock is released.
type Room struct {
	sketchID string
	clients  map[string]*Client // clientID -> client
	presence *PresenceManager

	mu     sync.Mutex
	doc    *document.SketchDocument
	engine *engine.Engine
	dirty  bool
}

func NewRoom(sketchID string, doc *document.SketchDocument) (*Room, error) {
	eng := engine.NewEngine(defaultViewport())
	if err := doc.LoadInto(eng); err != nil {
		return nil, fmt.Errorf("load sketch %s: %w", sketchID, err)
	}
	return &Room{
		sketchID: sketchID,
		clients:  make(map[string]*Client),
		presence: NewPresenceManager(),
		doc:      doc,
		engine:   eng,
	}, nil
}

func defaultViewport() engine.Viewport {
	return engine.Viewport{
		Center:      geom.Vec2(0, 0),
		VirtualSize: geom.Vec2(20, 15),
		ActualSize:  geom.Vec2(1280, 960),
	}
}

// Insert records the entity in the document and runs a solve frame. An insert
// that produces a dependency cycle is rolled back and rejected.
func (r *Room) Insert(id string, def engine.Definition) ([]engine.Update, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	prevDef, existed := r.doc.Entities[id]

	r.doc.Insert(id, def)
	r.engine.Queue(engine.Inserted(engine.Entity(id), def))
	updates, err := r.engine.Step()
	if err != nil {
		// Undo the insert so the room stays consistent. Re-inserting the
		// previous definition swaps the bad edges back out without touching
		// the entity's surviving dependents.
		if existed {
			r.doc.Insert(id, prevDef)
			r.engine.Queue(engine.Inserted(engine.Entity(id), prevDef))
		} else {
			r.doc.Remove(id)
			r.engine.Queue(engine.Removed(engine.Entity(id), def))
		}
		r.engine.Step()
		return nil, err
	}

	r.dirty = true
	return updates, nil
}

// Remove drops the entity. Dependents that referenced it become invalid in
// the same frame.
func (r *Room) Remove(id string) ([]engine.Update, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	def, ok := r.doc.Entities[id]
	if !ok {
		return nil, fmt.Errorf("entity not found: %s", id)
	}

	r.doc.Remove(id)
	r.engine.Queue(engine.Removed(engine.Entity(id), def))
	updates, err := r.engine.Step()
	if err != nil {
		return nil, err
	}

	r.dirty = true
	return updates, nil
}

// Move repositions a free point and resolves everything downstream of it.
func (r *Room) Move(id string, pos geom.Vector2) ([]engine.Update, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	def, ok := r.doc.Entities[id]
	if !ok {
		return nil, fmt.Errorf("entity not found: %s", id)
	}
	if def.Point == nil || def.Point.Kind != engine.PointFree {
		return nil, fmt.Errorf("entity %s is not a free point", id)
	}

	def.Point.Position = pos
	r.doc.Entities[id] = def
	r.engine.Queue(engine.Moved(engine.Entity(id), pos))
	updates, err := r.engine.Step()
	if err != nil {
		return nil, err
	}

	r.dirty = true
	return updates, nil
}

// SetViewport swaps the room viewport and re-indexes the spatial grid.
// Viewport changes don't touch the document, so the room stays clean.
func (r *Room) SetViewport(vp engine.Viewport) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.engine.SetViewport(vp)
}

// HitTest returns the entities indexed near the virtual-space point.
func (r *Room) HitTest(p geom.Vector2) []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	ents := r.engine.HitTest(p)
	out := make([]string, 0, len(ents))
	for _, e := range ents {
		out = append(out, string(e))
	}
	return out
}

// Snapshot returns a copy of the current document plus the resolved geometry
// of every valid entity, for syncing a newly joined client. The copy detaches
// from the live document, which other clients keep mutating.
func (r *Room) Snapshot() (*document.SketchDocument, engine.Viewport, []engine.Update) {
	r.mu.Lock()
	defer r.mu.Unlock()

	updates := make([]engine.Update, 0, len(r.doc.Order))
	for _, id := range r.doc.Order {
		ent := engine.Entity(id)
		def, ok := r.engine.Definition(ent)
		if !ok {
			continue
		}
		if g, ok := r.engine.Geometry(ent); ok {
			updates = append(updates, engine.Update{
				Entity:   ent,
				Kind:     g.Kind,
				Valid:    true,
				Geometry: &g,
			})
		} else {
			updates = append(updates, engine.Update{
				Entity: ent,
				Kind:   def.Kind(),
			})
		}
	}
	return r.doc.Clone(), r.engine.Viewport(), updates
}

// TakeDirty reports and clears the dirty flag, handing the caller a detached
// copy of the document to persist.
func (r *Room) TakeDirty() (*document.SketchDocument, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.dirty {
		return nil, false
	}
	r.dirty = false
	return r.doc.Clone(), true
}
