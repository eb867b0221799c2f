package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func indexOf(order []Entity, e Entity) int {
	for i, o := range order {
		if o == e {
			return i
		}
	}
	return -1
}

func TestAddAndDependents(t *testing.T) {
	g := NewDependencyGraph()
	g.Add("a", "mid")
	g.Add("b", "mid")
	g.Add("a", "mid") // idempotent

	deps := g.Dependents("a")
	assert.Equal(t, []Entity{"mid"}, deps)
	assert.Empty(t, g.Dependents("mid"))
}

func TestRemoveDependent(t *testing.T) {
	g := NewDependencyGraph()
	g.Add("a", "mid")
	g.Add("a", "seg")
	g.RemoveDependent("a", "mid")

	assert.Equal(t, []Entity{"seg"}, g.Dependents("a"))
}

func TestRemoveDropsOwnEntry(t *testing.T) {
	g := NewDependencyGraph()
	g.Add("a", "mid")
	g.Add("mid", "seg")

	g.Remove("mid")
	assert.Empty(t, g.Dependents("mid"))
	// The edge a -> mid survives until RemoveDependent is called per
	// reference; Remove only drops the entity's own dependent set.
	assert.Equal(t, []Entity{"mid"}, g.Dependents("a"))
}

func TestRecomputeOrderRespectsDependencies(t *testing.T) {
	// a and b feed mid; mid and c feed seg.
	g := NewDependencyGraph()
	g.Add("a", "mid")
	g.Add("b", "mid")
	g.Add("mid", "seg")
	g.Add("c", "seg")

	order, err := g.RecomputeOrder([]Entity{"a"})
	require.NoError(t, err)

	require.Equal(t, 3, len(order))
	assert.Less(t, indexOf(order, "a"), indexOf(order, "mid"))
	assert.Less(t, indexOf(order, "mid"), indexOf(order, "seg"))
	// c is not reachable from a, so it stays out of the order.
	assert.Equal(t, -1, indexOf(order, "c"))
}

func TestRecomputeOrderDiamond(t *testing.T) {
	// a feeds l and r, both feed join. join must appear exactly once, last.
	g := NewDependencyGraph()
	g.Add("a", "l")
	g.Add("a", "r")
	g.Add("l", "join")
	g.Add("r", "join")

	order, err := g.RecomputeOrder([]Entity{"a"})
	require.NoError(t, err)

	require.Equal(t, 4, len(order))
	assert.Equal(t, Entity("a"), order[0])
	assert.Equal(t, Entity("join"), order[3])
}

func TestRecomputeOrderMultiSeed(t *testing.T) {
	g := NewDependencyGraph()
	g.Add("a", "mid")
	g.Add("b", "mid")

	order, err := g.RecomputeOrder([]Entity{"a", "b", "a"})
	require.NoError(t, err)

	require.Equal(t, 3, len(order))
	assert.Equal(t, Entity("mid"), order[2])
}

func TestRecomputeOrderEmptySeed(t *testing.T) {
	g := NewDependencyGraph()
	order, err := g.RecomputeOrder(nil)
	require.NoError(t, err)
	assert.Empty(t, order)
}

func TestRecomputeOrderCycle(t *testing.T) {
	g := NewDependencyGraph()
	g.Add("a", "b")
	g.Add("b", "c")
	g.Add("c", "a")

	_, err := g.RecomputeOrder([]Entity{"a"})
	assert.ErrorIs(t, err, ErrCycleDetected)
}

func TestRecomputeOrderCycleBeyondSeed(t *testing.T) {
	// The cycle is reachable from the seed but does not include it.
	g := NewDependencyGraph()
	g.Add("seed", "a")
	g.Add("a", "b")
	g.Add("b", "a")

	_, err := g.RecomputeOrder([]Entity{"seed"})
	assert.ErrorIs(t, err, ErrCycleDetected)
}
