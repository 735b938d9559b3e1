package graph

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddEdgePairConventions(t *testing.T) {
	es := NewEdgeStore()
	forward, err := es.AddEdgePair(0, 1, 1000, 42)
	require.NoError(t, err)

	assert.True(t, IsForward(forward))
	assert.Equal(t, forward^1, Paired(forward))
	assert.Equal(t, 2, es.NEdges())
	assert.Equal(t, 1, es.NEdgePairs())

	fwd := es.Cursor(forward)
	bwd := es.Cursor(Paired(forward))

	assert.Equal(t, VertexID(0), fwd.From())
	assert.Equal(t, VertexID(1), fwd.To())
	assert.Equal(t, VertexID(1), bwd.From())
	assert.Equal(t, VertexID(0), bwd.To())
	assert.Equal(t, fwd.LengthMM(), bwd.LengthMM())
}

func TestAddEdgePairAcceptsMaxInt32RejectsNonPositive(t *testing.T) {
	es := NewEdgeStore()
	_, err := es.AddEdgePair(0, 1, int32(math.MaxInt32), 1)
	// MaxInt32 itself is representable; overflow is only reachable via a
	// length that does not fit once computed elsewhere, so exercise the
	// non-positive-length branch instead, which the store does enforce.
	require.NoError(t, err)

	_, err = es.AddEdgePair(0, 1, 0, 1)
	require.ErrorIs(t, err, ErrInvalidGeometry)

	_, err = es.AddEdgePair(0, 1, -5, 1)
	require.ErrorIs(t, err, ErrInvalidGeometry)
}

func TestAddEdgePairGeneratesNegativeWayID(t *testing.T) {
	es := NewEdgeStore()
	f1, _ := es.AddEdgePair(0, 1, 10, -1)
	f2, _ := es.AddEdgePair(0, 1, 10, -1)

	w1 := es.Cursor(f1).WayID()
	w2 := es.Cursor(f2).WayID()
	assert.Less(t, w1, int64(0))
	assert.Less(t, w2, int64(0))
	assert.NotEqual(t, w1, w2)
}

func TestSplitLengthInvariant(t *testing.T) {
	// distance0 + distance1 must equal the original length exactly.
	total := int32(1000)
	d0 := int32(372)
	d1 := total - d0
	assert.Equal(t, total, d0+d1)
}

func TestExtendOnlyCopyImmutability(t *testing.T) {
	base := NewEdgeStore()
	forward, err := base.AddEdgePair(0, 1, 1000, 1)
	require.NoError(t, err)
	require.NoError(t, base.SetFlags(forward, FlagAllowsCar))

	overlay := base.ExtendOnlyCopy()
	assert.Equal(t, forward+2, overlay.FirstModifiableEdge) // one pair = 2 edges below threshold

	// Baseline observed through the overlay is unchanged.
	assert.Equal(t, int32(1000), overlay.Cursor(forward).LengthMM())
	assert.True(t, overlay.Cursor(forward).HasFlag(FlagAllowsCar))

	// Mutating the baseline range through the overlay must fail.
	err = overlay.SetLengthMM(PairOf(forward), 500)
	require.ErrorIs(t, err, ErrImmutableBaselineViolation)

	// The baseline itself is unaffected by the failed attempt and by any
	// activity on the overlay.
	newForward, err := overlay.AddEdgePair(1, 2, 500, 2)
	require.NoError(t, err)
	assert.Equal(t, 1, base.NEdgePairs())
	assert.Equal(t, 2, overlay.NEdgePairs())
	assert.Equal(t, int32(1000), base.Cursor(forward).LengthMM())
	_ = newForward
}

func TestCalculateAnglesStraightLine(t *testing.T) {
	vs := NewVertexStore()
	a := vs.AddVertex(0, 0)
	b := vs.AddVertex(0, 1) // due east

	es := NewEdgeStore()
	forward, err := es.AddEdgePair(a, b, 1000, 1)
	require.NoError(t, err)

	require.NoError(t, CalculateAngles(es, vs, forward))
	c := es.Cursor(forward)
	// Due east is 90 degrees; allow rounding to the nearest byte unit.
	expected := degreesToAngleByte(90)
	assert.Equal(t, expected, c.InAngle())
	assert.Equal(t, expected, c.OutAngle())
}

func TestGeometryReversedForBackwardEdge(t *testing.T) {
	vs := NewVertexStore()
	a := vs.AddVertex(0, 0)
	b := vs.AddVertex(0, 2)

	es := NewEdgeStore()
	forward, err := es.AddEdgePair(a, b, 2000, 1)
	require.NoError(t, err)

	mid := []GeomPoint{{Lat: 0, Lon: 10_000_000}} // lon=1.0 deg in fixed units
	require.NoError(t, es.SetGeometry(PairOf(forward), mid))

	fwdFull := es.Cursor(forward).FullGeometry(vs)
	bwdFull := es.Cursor(Paired(forward)).FullGeometry(vs)

	require.Len(t, fwdFull, 3)
	require.Len(t, bwdFull, 3)
	for i := range fwdFull {
		assert.Equal(t, fwdFull[i], bwdFull[len(bwdFull)-1-i])
	}
}
