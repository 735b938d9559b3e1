package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildTestBaseline(t *testing.T) *StreetLayer {
	t.Helper()
	sl := NewStreetLayer()
	a := sl.Vertices.AddVertex(47.60, -122.33)
	b := sl.Vertices.AddVertex(47.61, -122.32)

	forward, err := sl.Edges.AddEdgePair(a, b, 1500, 1)
	require.NoError(t, err)
	require.NoError(t, sl.Edges.SetFlags(forward, FlagAllowsPedestrian|FlagAllowsBike|FlagAllowsCar))
	sl.IndexForwardEdge(forward)
	return sl
}

func TestStreetLayerIsBaseline(t *testing.T) {
	sl := buildTestBaseline(t)
	assert.True(t, sl.IsBaseline())

	overlay := sl.ExtendOnlyCopy()
	assert.False(t, overlay.IsBaseline())
}

func TestStreetLayerOverlayIsolation(t *testing.T) {
	sl := buildTestBaseline(t)
	baselineForward := EdgeID(0)
	baselineLen := sl.Edges.Cursor(baselineForward).LengthMM()

	overlay := sl.ExtendOnlyCopy()
	newV := overlay.Vertices.AddVertex(47.62, -122.31)
	toVertex := overlay.Edges.Cursor(baselineForward).To()
	newForward, err := overlay.Edges.AddEdgePair(toVertex, newV, 500, 2)
	require.NoError(t, err)
	overlay.AddTemporaryEdge(newForward)

	// Baseline is untouched by overlay activity.
	assert.Equal(t, 1, sl.Edges.NEdgePairs())
	assert.Equal(t, 2, sl.Vertices.NVertices())
	assert.Equal(t, baselineLen, sl.Edges.Cursor(baselineForward).LengthMM())

	// Overlay sees both the baseline edge and its own temporary edge.
	assert.Equal(t, 2, overlay.Edges.NEdgePairs())
	assert.Equal(t, 3, overlay.Vertices.NVertices())
}

func TestFindEdgesInEnvelopeUnionsTemporaryEdges(t *testing.T) {
	sl := buildTestBaseline(t)
	overlay := sl.ExtendOnlyCopy()

	c := sl.Edges.Cursor(EdgeID(0))
	toVertex := c.To()
	newV := overlay.Vertices.AddVertex(overlay.Vertices.LatDegrees(toVertex)+0.001, overlay.Vertices.LonDegrees(toVertex)+0.001)
	newForward, err := overlay.Edges.AddEdgePair(toVertex, newV, 200, 3)
	require.NoError(t, err)
	overlay.AddTemporaryEdge(newForward)

	env := EnvelopeOfGeometry(overlay.Edges.Cursor(newForward).FullGeometry(overlay.Vertices))
	found := overlay.FindEdgesInEnvelope(env)
	assert.Contains(t, found, newForward)

	// The shared baseline index itself must remain free of the temporary edge.
	baseFound := sl.Index.Query(env)
	assert.NotContains(t, baseFound, newForward)
}
