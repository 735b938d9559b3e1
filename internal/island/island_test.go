package island

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meridianmobility/streetcore/internal/graph"
)

// chain builds n vertices connected 0->1->...->n-1 and back, all-mode
// permitted, each edge 10m long.
func chain(t *testing.T, sl *graph.StreetLayer, n int) []graph.VertexID {
	t.Helper()
	vs := make([]graph.VertexID, n)
	for i := 0; i < n; i++ {
		vs[i] = sl.Vertices.AddVertex(47.6+float64(i)*0.0001, -122.33)
	}
	flags := graph.FlagAllowsCar | graph.FlagAllowsBike | graph.FlagAllowsPedestrian
	for i := 0; i < n-1; i++ {
		forward, err := sl.Edges.AddEdgePair(vs[i], vs[i+1], 10000, int64(i))
		require.NoError(t, err)
		require.NoError(t, sl.Edges.SetFlags(forward, flags))
		require.NoError(t, sl.Edges.SetFlags(graph.Paired(forward), flags))
	}
	return vs
}

func TestPruneStripsSmallComponent(t *testing.T) {
	sl := graph.NewStreetLayer()
	chain(t, sl, MinComponentSize-5) // a connected chain smaller than the threshold

	require.NoError(t, Prune(sl, graph.ModeCar))

	n := sl.Edges.NEdges()
	for i := 0; i < n; i++ {
		assert.False(t, sl.Edges.Cursor(graph.EdgeID(i)).HasFlag(graph.FlagAllowsCar))
	}
}

func TestPruneKeepsLargeComponent(t *testing.T) {
	sl := graph.NewStreetLayer()
	chain(t, sl, MinComponentSize+5)

	require.NoError(t, Prune(sl, graph.ModeCar))

	n := sl.Edges.NEdges()
	for i := 0; i < n; i++ {
		assert.True(t, sl.Edges.Cursor(graph.EdgeID(i)).HasFlag(graph.FlagAllowsCar))
	}
}

func TestPruneIsIdempotent(t *testing.T) {
	sl := graph.NewStreetLayer()
	chain(t, sl, MinComponentSize-5)

	require.NoError(t, Prune(sl, graph.ModeCar))
	before := make([]graph.EdgeFlags, sl.Edges.NEdges())
	for i := range before {
		before[i] = sl.Edges.Cursor(graph.EdgeID(i)).Flags()
	}

	require.NoError(t, Prune(sl, graph.ModeCar))
	for i := range before {
		assert.Equal(t, before[i], sl.Edges.Cursor(graph.EdgeID(i)).Flags())
	}
}

// carBikeChain builds an n-vertex chain permitting only CAR and BIKE (no
// pedestrian permission at all), used to build the two regions in
// TestPruneAllWalkBeforeBikeOrderingMatters.
func carBikeChain(t *testing.T, sl *graph.StreetLayer, n int) []graph.VertexID {
	t.Helper()
	vs := make([]graph.VertexID, n)
	for i := 0; i < n; i++ {
		vs[i] = sl.Vertices.AddVertex(47.7+float64(i)*0.0001, -122.34)
	}
	flags := graph.FlagAllowsCar | graph.FlagAllowsBike
	for i := 0; i < n-1; i++ {
		forward, err := sl.Edges.AddEdgePair(vs[i], vs[i+1], 10000, int64(1000+i))
		require.NoError(t, err)
		require.NoError(t, sl.Edges.SetFlags(forward, flags))
		require.NoError(t, sl.Edges.SetFlags(graph.Paired(forward), flags))
	}
	return vs
}

// TestPruneAllWalkBeforeBikeOrderingMatters checks the pedestrian-before-
// bicycle ordering invariant: two bike-permitted regions, each below
// MinComponentSize on its own, joined only by a walk-only bridge. Pruning
// pedestrian before bicycle (the order PruneAll uses) makes the bridge
// invisible to bike connectivity once its pedestrian permission is
// stripped, so both regions are correctly identified as bike islands and
// lose bike permission; pruning in the opposite order would let the
// bridge's not-yet-stripped pedestrian permission bridge the two regions
// into one 40-vertex bike component, which is not below MinComponentSize,
// wrongly preserving bike
// permission everywhere.
func TestPruneAllWalkBeforeBikeOrderingMatters(t *testing.T) {
	regionSize := MinComponentSize - 20 // each region alone is below threshold

	sl := graph.NewStreetLayer()
	regionA := carBikeChain(t, sl, regionSize)
	regionB := carBikeChain(t, sl, regionSize)

	bridge, err := sl.Edges.AddEdgePair(regionA[len(regionA)-1], regionB[0], 10000, 9999)
	require.NoError(t, err)
	require.NoError(t, sl.Edges.SetFlags(bridge, graph.FlagAllowsPedestrian))
	require.NoError(t, sl.Edges.SetFlags(graph.Paired(bridge), graph.FlagAllowsPedestrian))

	require.NoError(t, PruneAll(sl))

	n := sl.Edges.NEdges()
	for i := 0; i < n; i++ {
		e := graph.EdgeID(i)
		if e == bridge || e == graph.Paired(bridge) {
			continue
		}
		assert.False(t, sl.Edges.Cursor(e).HasFlag(graph.FlagAllowsBike),
			"bike permission must be stripped from both undersized regions once pedestrian pruning has already removed the bridge's only bike-relevant connectivity")
	}

	// Running bicycle pruning before pedestrian pruning would instead let
	// the still-intact walk-only bridge join the two regions into one
	// bike component of exactly MinComponentSize vertices, which is kept,
	// wrongly preserving bike permission.
	wrongOrder := graph.NewStreetLayer()
	wrongA := carBikeChain(t, wrongOrder, regionSize)
	wrongB := carBikeChain(t, wrongOrder, regionSize)
	wrongBridge, err := wrongOrder.Edges.AddEdgePair(wrongA[len(wrongA)-1], wrongB[0], 10000, 9999)
	require.NoError(t, err)
	require.NoError(t, wrongOrder.Edges.SetFlags(wrongBridge, graph.FlagAllowsPedestrian))
	require.NoError(t, wrongOrder.Edges.SetFlags(graph.Paired(wrongBridge), graph.FlagAllowsPedestrian))

	require.NoError(t, Prune(wrongOrder, graph.ModeBike))
	require.NoError(t, Prune(wrongOrder, graph.ModeWalk))

	wn := wrongOrder.Edges.NEdges()
	stillBikePermitted := false
	for i := 0; i < wn; i++ {
		e := graph.EdgeID(i)
		if e == wrongBridge || e == graph.Paired(wrongBridge) {
			continue
		}
		if wrongOrder.Edges.Cursor(e).HasFlag(graph.FlagAllowsBike) {
			stillBikePermitted = true
		}
	}
	assert.True(t, stillBikePermitted, "pruning bicycle before pedestrian should wrongly preserve bike permission via the not-yet-stripped bridge")
}

func TestPruneAllKeepsSpurJoinedToLargeChain(t *testing.T) {
	// A one-vertex spur hangs off a chain of MinComponentSize+5 vertices by a
	// walk-and-bike edge pair, so for walk and bike the spur is part of the
	// chain's component rather than an island of its own.
	sl := graph.NewStreetLayer()
	bigChain := chain(t, sl, MinComponentSize+5)

	spur := sl.Vertices.AddVertex(47.61, -122.331)
	forward, err := sl.Edges.AddEdgePair(bigChain[0], spur, 10000, 100)
	require.NoError(t, err)
	require.NoError(t, sl.Edges.SetFlags(forward, graph.FlagAllowsPedestrian|graph.FlagAllowsBike))
	require.NoError(t, sl.Edges.SetFlags(graph.Paired(forward), graph.FlagAllowsPedestrian|graph.FlagAllowsBike))

	require.NoError(t, PruneAll(sl))

	// The combined component is above MinComponentSize for walk and bike;
	// the property under test is that PruneAll completes without error and
	// leaves the large chain's bike permission intact.
	for i := 0; i < len(bigChain)-1; i++ {
		e := graph.EdgeID(i * 2)
		assert.True(t, sl.Edges.Cursor(e).HasFlag(graph.FlagAllowsBike))
	}
}
