package engine

import (
	"log/slog"

	"github.com/adamnemecek/geometry-sketchpad/backend-go/internal/geom"
)

// Update reports one entity whose resolved geometry changed during a Step.
// Removed entities carry Removed=true; entities that currently have no
// resolvable value carry Valid=false and no geometry.
type Update struct {
	Entity   Entity       `json:"entity"`
	Kind     GeometryKind `json:"geometryKind"`
	Valid    bool         `json:"valid"`
	Removed  bool         `json:"removed,omitempty"`
	Geometry *Geometry    `json:"geometry,omitempty"`
}

// Engine is the symbolic-geometry resolution core. It owns the dependency
// graph, the resolved-geometry store and the spatial index, and advances them
// strictly in that order once per frame. All interaction is single-threaded:
// the host queues change events and invokes Step once per logical frame.
type Engine struct {
	graph    *DependencyGraph
	solver   *Solver
	spatial  *SpatialHashTable
	viewport Viewport

	inbox []Event
}

func NewEngine(vp Viewport) *Engine {
	e := &Engine{
		graph:    NewDependencyGraph(),
		solver:   NewSolver(),
		spatial:  NewSpatialHashTable(),
		viewport: vp,
	}
	e.spatial.InitViewport(vp)
	return e
}

// Viewport returns the current viewport.
func (e *Engine) Viewport() Viewport {
	return e.viewport
}

// SetViewport swaps the viewport, resizes and clears the spatial grid, and
// re-indexes every currently valid entity.
func (e *Engine) SetViewport(vp Viewport) {
	e.viewport = vp
	e.spatial.InitViewport(vp)
	for _, ent := range e.solver.Entities() {
		el, _ := e.solver.Element(ent)
		if el.Valid {
			e.index(ent, el)
		}
	}
}

// Queue appends a change event to the inbound stream. Events are applied in
// emission order by the next Step.
func (e *Engine) Queue(ev Event) {
	e.inbox = append(e.inbox, ev)
}

// Step processes the queued change events for one frame: dependency-graph
// edge maintenance, recomputation of the affected transitive closure in
// dependency order, then spatial re-indexing of everything that changed.
// Returns the resolved-geometry diff for downstream consumers.
func (e *Engine) Step() ([]Update, error) {
	changed := make(map[Entity]struct{})
	inserted := make(map[Entity]struct{})
	var updates []Update

	for _, ev := range e.inbox {
		switch ev.Kind {
		case EventInserted:
			// A re-insert replaces the definition, so the old definition's
			// edges must go before the new ones are added. Leaving them in
			// place would keep recomputing severed dependencies and could
			// fabricate a cycle out of an acyclic redefinition.
			if prev, ok := e.solver.Element(ev.Entity); ok {
				for _, dep := range prev.Def.Deps() {
					e.graph.RemoveDependent(dep, ev.Entity)
				}
			}
			e.solver.Insert(ev.Entity, ev.Def)
			for _, dep := range ev.Def.Deps() {
				e.graph.Add(dep, ev.Entity)
			}
			changed[ev.Entity] = struct{}{}
			inserted[ev.Entity] = struct{}{}

		case EventRemoved:
			// Dependents referencing the removed entity become dangling; put
			// them through the next solve pass so they surface as invalid.
			for _, dep := range e.graph.Dependents(ev.Entity) {
				changed[dep] = struct{}{}
			}
			e.graph.Remove(ev.Entity)
			for _, dep := range ev.Def.Deps() {
				e.graph.RemoveDependent(dep, ev.Entity)
			}
			e.solver.Remove(ev.Entity)
			e.spatial.RemoveFromAll(ev.Entity)
			delete(changed, ev.Entity)
			updates = append(updates, Update{
				Entity:  ev.Entity,
				Kind:    ev.Def.Kind(),
				Removed: true,
			})

		case EventMoved:
			if e.solver.SetFreePosition(ev.Entity, ev.Position) {
				changed[ev.Entity] = struct{}{}
			} else {
				slog.Warn("move event on non-free entity ignored", "entity", ev.Entity)
			}
		}
	}
	e.inbox = e.inbox[:0]

	if len(changed) == 0 {
		return updates, nil
	}

	seed := make([]Entity, 0, len(changed))
	for ent := range changed {
		seed = append(seed, ent)
	}
	order, err := e.graph.RecomputeOrder(seed)
	if err != nil {
		return nil, err
	}

	// Snapshot pre-resolve state so entities whose resolved value comes out
	// identical can be left alone: no reindex, no outbound update.
	prior := make(map[Entity]Element, len(order))
	for _, ent := range order {
		if el, ok := e.solver.Element(ent); ok {
			prior[ent] = *el
		}
	}

	e.solver.Resolve(order)

	for _, ent := range order {
		el, ok := e.solver.Element(ent)
		if !ok {
			continue
		}
		if _, fresh := inserted[ent]; !fresh {
			before := prior[ent]
			if before.Valid == el.Valid && (!el.Valid || before.Geometry == el.Geometry) {
				continue
			}
		}
		e.spatial.RemoveFromAll(ent)
		if el.Valid {
			e.index(ent, el)
			g := el.Geometry
			updates = append(updates, Update{
				Entity:   ent,
				Kind:     g.Kind,
				Valid:    true,
				Geometry: &g,
			})
		} else {
			updates = append(updates, Update{
				Entity: ent,
				Kind:   el.Def.Kind(),
			})
		}
	}

	return updates, nil
}

// HitTest returns the entities indexed near the given virtual-space point
// (its tile plus the 3x3 neighborhood). Nil when the point falls outside the
// viewport grid.
func (e *Engine) HitTest(p geom.Vector2) []Entity {
	return e.spatial.NeighborsOfPoint(p, e.viewport)
}

// QueryRegion returns the entities indexed in tiles overlapping the
// actual-space rectangle.
func (e *Engine) QueryRegion(box geom.AABB) []Entity {
	set := e.spatial.NeighborsOfAABB(box)
	out := make([]Entity, 0, len(set))
	for ent := range set {
		out = append(out, ent)
	}
	return out
}

// Geometry returns the entity's resolved geometry, if it currently has one.
func (e *Engine) Geometry(ent Entity) (Geometry, bool) {
	el, ok := e.solver.Element(ent)
	if !ok || !el.Valid {
		return Geometry{}, false
	}
	return el.Geometry, true
}

// Definition returns the entity's symbolic definition.
func (e *Engine) Definition(ent Entity) (Definition, bool) {
	el, ok := e.solver.Element(ent)
	if !ok {
		return Definition{}, false
	}
	return el.Def, true
}

// Entities lists every registered entity.
func (e *Engine) Entities() []Entity {
	return e.solver.Entities()
}

func (e *Engine) index(ent Entity, el *Element) {
	switch el.Geometry.Kind {
	case KindPoint:
		e.spatial.InsertPoint(ent, el.Geometry.Point, e.viewport)
	case KindLine:
		e.spatial.InsertLine(ent, el.Geometry.Line, e.viewport)
	case KindCircle:
		e.spatial.InsertCircle(ent, el.Geometry.Circle, e.viewport)
	}
}
