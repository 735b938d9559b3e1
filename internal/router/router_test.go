package router

import (
	"testing"

	"github.com/meridianmobility/streetcore/internal/costmodel"
	"github.com/meridianmobility/streetcore/internal/graph"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildLine builds a four-vertex straight line a-b-c-d, each segment
// 1000mm, walk/bike/car permitted, default speed.
func buildLine(t *testing.T) (*graph.StreetLayer, []graph.VertexID, []graph.EdgeID) {
	t.Helper()
	sl := graph.NewStreetLayer()
	var verts []graph.VertexID
	for i := 0; i < 4; i++ {
		verts = append(verts, sl.Vertices.AddVertex(float64(i)*0.01, 0))
	}

	var forwards []graph.EdgeID
	flags := graph.FlagAllowsPedestrian | graph.FlagAllowsBike | graph.FlagAllowsCar | graph.FlagLinkable
	for i := 0; i+1 < len(verts); i++ {
		f, err := sl.Edges.AddEdgePair(verts[i], verts[i+1], 1000, int64(i+1))
		require.NoError(t, err)
		require.NoError(t, sl.Edges.SetFlags(f, flags))
		require.NoError(t, sl.Edges.SetFlags(graph.Paired(f), flags))
		require.NoError(t, sl.Edges.SetSpeedMPS(f, 10))
		require.NoError(t, sl.Edges.SetSpeedMPS(graph.Paired(f), 10))
		forwards = append(forwards, f)
	}
	return sl, verts, forwards
}

func defaultRequest() costmodel.Request {
	return costmodel.Request{WalkSpeedMPS: 1.3, BikeSpeedMPS: 4}
}

func TestRouteReachesEveryVertexAlongLine(t *testing.T) {
	sl, verts, _ := buildLine(t)
	sr := New(sl, graph.ModeWalk, DominanceDuration, defaultRequest())
	sr.SetOriginVertex(verts[0])
	sr.Route()

	for _, v := range verts {
		w, ok := sr.TravelTimeToVertex(v)
		assert.True(t, ok)
		assert.GreaterOrEqual(t, w, 0.0)
	}

	// Monotonically increasing weight along the line.
	w0, _ := sr.TravelTimeToVertex(verts[0])
	w1, _ := sr.TravelTimeToVertex(verts[1])
	w2, _ := sr.TravelTimeToVertex(verts[2])
	assert.Less(t, w0, w1)
	assert.Less(t, w1, w2)
}

func TestRouteStopsAtDestination(t *testing.T) {
	sl, verts, _ := buildLine(t)
	sr := New(sl, graph.ModeWalk, DominanceDuration, defaultRequest())
	sr.SetOriginVertex(verts[0])
	sr.ToVertex = verts[2]
	sr.HasToVertex = true
	sr.Route()

	_, ok := sr.TravelTimeToVertex(verts[2])
	assert.True(t, ok)
}

func TestRouteRejectsModeWithoutPermission(t *testing.T) {
	sl, verts, forwards := buildLine(t)
	require.NoError(t, sl.Edges.SetFlags(forwards[0], graph.FlagAllowsPedestrian))
	require.NoError(t, sl.Edges.SetFlags(graph.Paired(forwards[0]), graph.FlagAllowsPedestrian))

	sr := New(sl, graph.ModeCar, DominanceDuration, defaultRequest())
	sr.SetOriginVertex(verts[0])
	sr.Route()

	_, ok := sr.TravelTimeToVertex(verts[1])
	assert.False(t, ok)
}

func TestRouteDistanceLimitStopsExpansion(t *testing.T) {
	sl, verts, _ := buildLine(t)
	sr := New(sl, graph.ModeWalk, DominanceDistance, defaultRequest())
	sr.SetOriginVertex(verts[0])
	sr.DistanceLimitMM = 1500 // reaches vertex 1 (1000mm) but not vertex 2 (2000mm)
	sr.Route()

	_, ok1 := sr.TravelTimeToVertex(verts[1])
	_, ok2 := sr.TravelTimeToVertex(verts[2])
	assert.True(t, ok1)
	assert.False(t, ok2)
}

func TestVisitorCanAbortSearch(t *testing.T) {
	sl, verts, _ := buildLine(t)
	sr := New(sl, graph.ModeWalk, DominanceDuration, defaultRequest())
	sr.SetOriginVertex(verts[0])

	visited := 0
	sr.Visitor = VisitorFunc(func(s *RoutingState) bool {
		visited++
		return s.Vertex == verts[1]
	})
	sr.Route()

	_, ok2 := sr.TravelTimeToVertex(verts[2])
	assert.False(t, ok2)
	assert.GreaterOrEqual(t, visited, 2)
}

func TestTurnRestrictionBlocksProhibitedSequence(t *testing.T) {
	sl, verts, forwards := buildLine(t)
	// Prohibit the sequence edge0 -> edge1 (a-b then b-c) for CAR.
	sl.Turns.Add([]graph.EdgeID{forwards[0], forwards[1]}, true)

	sr := New(sl, graph.ModeCar, DominanceDuration, defaultRequest())
	sr.SetOriginVertex(verts[0])
	sr.Route()

	_, okB := sr.TravelTimeToVertex(verts[1])
	_, okC := sr.TravelTimeToVertex(verts[2])
	assert.True(t, okB)
	assert.False(t, okC, "vertex c should be unreachable: the only path to it completes a prohibited turn")
}

func TestReachedBikeShares(t *testing.T) {
	sl, verts, _ := buildLine(t)
	require.NoError(t, sl.Vertices.AddFlags(verts[2], graph.VertexFlagBikeSharing))

	sr := New(sl, graph.ModeWalk, DominanceDuration, defaultRequest())
	sr.SetOriginVertex(verts[0])
	sr.Route()

	bikeShares := sr.ReachedBikeShares()
	_, ok := bikeShares[verts[2]]
	assert.True(t, ok)
	_, notBikeShare := bikeShares[verts[1]]
	assert.False(t, notBikeShare)
}

func TestReversePathReconstructsForwardOrder(t *testing.T) {
	sl, verts, forwards := buildLine(t)
	sr := New(sl, graph.ModeWalk, DominanceDuration, defaultRequest())
	sr.SetOriginVertex(verts[0])
	sr.Route()

	rec := sr.settled[verts[2]]
	require.NotNil(t, rec)
	steps := ReversePath(rec.chain[0], sl.Edges)

	require.Len(t, steps, 2)
	assert.Equal(t, forwards[0], steps[0].Edge)
	assert.Equal(t, forwards[1], steps[1].Edge)
	assert.Equal(t, verts[0], steps[0].From)
	assert.Equal(t, verts[2], steps[1].To)
}

func TestWalkTurnCostAppliesPerceivedSupplier(t *testing.T) {
	sl, verts, _ := buildLine(t)
	sr := New(sl, graph.ModeWalk, DominanceDuration, defaultRequest())
	require.NotNil(t, sr.PerceivedSupplier)
	sr.SetOriginVertex(verts[0])
	sr.Route()

	w1, _ := sr.TravelTimeToVertex(verts[1])
	w2, _ := sr.TravelTimeToVertex(verts[2])
	straightTraversal := w2 - w1

	// A straight-line walk still incurs WalkSupplier's 54m base turn cost
	// (converted at the standard 1.3 m/s walk speed) on top of plain
	// traversal time, since every intermediate vertex is a turn.
	assert.Greater(t, straightTraversal, w1)
}

func TestSetOriginLatLonSeedsBothEndpoints(t *testing.T) {
	sl, verts, forwards := buildLine(t)
	for _, f := range forwards {
		sl.IndexForwardEdge(f)
	}

	midLat := (sl.Vertices.LatDegrees(verts[0]) + sl.Vertices.LatDegrees(verts[1])) / 2
	sr := New(sl, graph.ModeWalk, DominanceDuration, defaultRequest())
	ok := sr.SetOriginLatLon(midLat, 0)
	require.True(t, ok)

	sr.Route()
	_, ok0 := sr.TravelTimeToVertex(verts[0])
	_, ok1 := sr.TravelTimeToVertex(verts[1])
	assert.True(t, ok0)
	assert.True(t, ok1)
}
