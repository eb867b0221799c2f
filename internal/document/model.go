package document

import (
	"fmt"

	"github.com/adamnemecek/geometry-sketchpad/backend-go/internal/engine"
)

// SketchDocument is the persisted form of a construction: sketch metadata
// plus the symbolic definition of every entity. Order preserves insertion
// order; definitions only ever reference entities that appear earlier, which
// keeps the dependency graph acyclic by construction.
type SketchDocument struct {
	Sketch   Sketch                       `json:"sketch"`
	Entities map[string]engine.Definition `json:"entities"`
	Order    []string                     `json:"order"`
}

type Sketch struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Version   int    `json:"version"`
	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`
}

// NewEmptyDocument creates an empty sketch document.
func NewEmptyDocument(sketchID, name string) *SketchDocument {
	return &SketchDocument{
		Sketch: Sketch{
			ID:      sketchID,
			Name:    name,
			Version: 1,
		},
		Entities: map[string]engine.Definition{},
		Order:    []string{},
	}
}

// Insert records an entity definition at the end of the construction order.
// Replacing an existing entity keeps its original position.
func (d *SketchDocument) Insert(id string, def engine.Definition) {
	if _, exists := d.Entities[id]; !exists {
		d.Order = append(d.Order, id)
	}
	d.Entities[id] = def
}

// Remove drops an entity from the document.
func (d *SketchDocument) Remove(id string) {
	if _, exists := d.Entities[id]; !exists {
		return
	}
	delete(d.Entities, id)
	for i, o := range d.Order {
		if o == id {
			d.Order = append(d.Order[:i], d.Order[i+1:]...)
			break
		}
	}
}

// Clone returns an independent deep copy. Callers that hand a document across
// a concurrency boundary (persistence, wire marshalling) clone first so the
// live document can keep mutating behind its owner's lock.
func (d *SketchDocument) Clone() *SketchDocument {
	out := &SketchDocument{
		Sketch:   d.Sketch,
		Entities: make(map[string]engine.Definition, len(d.Entities)),
		Order:    append([]string(nil), d.Order...),
	}
	for id, def := range d.Entities {
		out.Entities[id] = def.Clone()
	}
	return out
}

// LoadInto replays the document's construction into an engine, one insert
// event per entity in construction order, then runs a single solve frame.
func (d *SketchDocument) LoadInto(e *engine.Engine) error {
	for _, id := range d.Order {
		def, ok := d.Entities[id]
		if !ok {
			return fmt.Errorf("document order references unknown entity %q", id)
		}
		e.Queue(engine.Inserted(engine.Entity(id), def))
	}
	if _, err := e.Step(); err != nil {
		return fmt.Errorf("resolve document: %w", err)
	}
	return nil
}
