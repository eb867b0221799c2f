package engine

import "errors"

// ErrCycleDetected indicates a cycle in the dependency graph. Definitions may
// only reference entities that already exist, so the graph is acyclic by
// construction; hitting this is a programming error in edge maintenance, not a
// user-facing condition.
var ErrCycleDetected = errors.New("cycle detected in dependency graph")

// DependencyGraph records which entities' resolution depends on which. For
// each entity it stores the set of entities whose definitions reference it
// (its dependents). The graph is exclusively owned and mutated by the engine.
type DependencyGraph struct {
	dependents map[Entity]map[Entity]struct{}
}

func NewDependencyGraph() *DependencyGraph {
	return &DependencyGraph{
		dependents: make(map[Entity]map[Entity]struct{}),
	}
}

// Add records that dependent's definition references dependency. Idempotent.
func (g *DependencyGraph) Add(dependency, dependent Entity) {
	set, ok := g.dependents[dependency]
	if !ok {
		set = make(map[Entity]struct{})
		g.dependents[dependency] = set
	}
	set[dependent] = struct{}{}
}

// Remove deletes the entity's own dependent-set entry. It does not remove the
// entity from other entities' sets; that is RemoveDependent, called once per
// symbolic reference the entity held.
func (g *DependencyGraph) Remove(entity Entity) {
	delete(g.dependents, entity)
}

// RemoveDependent removes dependent from dependency's set.
func (g *DependencyGraph) RemoveDependent(dependency, dependent Entity) {
	if set, ok := g.dependents[dependency]; ok {
		delete(set, dependent)
	}
}

// Dependents returns the entities directly depending on the given entity.
func (g *DependencyGraph) Dependents(entity Entity) []Entity {
	set, ok := g.dependents[entity]
	if !ok {
		return nil
	}
	out := make([]Entity, 0, len(set))
	for e := range set {
		out = append(out, e)
	}
	return out
}

// RecomputeOrder returns every entity transitively reachable via dependent
// edges from the seed set, ordered so that no entity precedes one of its
// dependencies. Each entity appears at most once even when reachable along
// multiple paths. Returns ErrCycleDetected if the induced subgraph is not a
// DAG.
func (g *DependencyGraph) RecomputeOrder(seed []Entity) ([]Entity, error) {
	// Discover the reachable set breadth-first, remembering discovery order so
	// the result is stable for a given seed.
	reachable := make(map[Entity]struct{}, len(seed))
	var discovered []Entity
	queue := make([]Entity, 0, len(seed))
	for _, e := range seed {
		if _, seen := reachable[e]; seen {
			continue
		}
		reachable[e] = struct{}{}
		discovered = append(discovered, e)
		queue = append(queue, e)
	}
	for len(queue) > 0 {
		curr := queue[0]
		queue = queue[1:]
		for dep := range g.dependents[curr] {
			if _, seen := reachable[dep]; seen {
				continue
			}
			reachable[dep] = struct{}{}
			discovered = append(discovered, dep)
			queue = append(queue, dep)
		}
	}

	// Kahn's algorithm over the induced subgraph. Only edges between reachable
	// entities count toward in-degree.
	indeg := make(map[Entity]int, len(reachable))
	for _, e := range discovered {
		for dep := range g.dependents[e] {
			if _, in := reachable[dep]; in {
				indeg[dep]++
			}
		}
	}

	order := make([]Entity, 0, len(discovered))
	ready := make([]Entity, 0, len(discovered))
	for _, e := range discovered {
		if indeg[e] == 0 {
			ready = append(ready, e)
		}
	}
	for len(ready) > 0 {
		curr := ready[0]
		ready = ready[1:]
		order = append(order, curr)
		for dep := range g.dependents[curr] {
			if _, in := reachable[dep]; !in {
				continue
			}
			indeg[dep]--
			if indeg[dep] == 0 {
				ready = append(ready, dep)
			}
		}
	}

	if len(order) < len(discovered) {
		return nil, ErrCycleDetected
	}
	return order, nil
}
