package speedtable

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/meridianmobility/streetcore/internal/costmodel"
	"github.com/meridianmobility/streetcore/internal/graph"
)

func TestCostFieldFallsThroughWhenNoOverride(t *testing.T) {
	es := graph.NewEdgeStore()
	forward, err := es.AddEdgePair(0, 1, 10000, 1)
	require.NoError(t, err)
	require.NoError(t, es.SetSpeedMPS(forward, 10))
	c := es.Cursor(forward)

	field := NewCostField(NewStore())
	got := field.AdditionalSeconds(c, graph.ModeCar, costmodel.Request{}, 42)
	require.Equal(t, 0, got)
}

func TestCostFieldAppliesOverride(t *testing.T) {
	es := graph.NewEdgeStore()
	forward, err := es.AddEdgePair(0, 1, 10000, 1) // 10m edge
	require.NoError(t, err)
	c := es.Cursor(forward)

	store := NewStore()
	table := NewTable()
	var bands [BinsPerDay]int16
	bands[0] = 36 // 10 m/s -> 1s for a 10m edge
	table.Speeds[forward] = bands
	store.Replace(table)

	field := NewCostField(store)
	req := costmodel.Request{FromTimeS: 0, ElapsedSeconds: 0}
	got := field.AdditionalSeconds(c, graph.ModeCar, req, 5) // base said 5s
	require.Equal(t, -4, got)                                // overridden 1s - base 5s
}
