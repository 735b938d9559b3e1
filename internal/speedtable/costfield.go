package speedtable

import (
	"github.com/meridianmobility/streetcore/internal/costmodel"
	"github.com/meridianmobility/streetcore/internal/graph"
)

// CostField adapts a Store's current table into a costmodel.CostField, so a
// StreetRouter wires it in the same way as any other additive cost
// transformation (costmodel.MultistageCalculator.Fields). It snapshots
// store.Current() once, at construction, so a single query is insulated
// from a concurrent table swap mid-search.
type CostField struct {
	table *Table
}

// NewCostField snapshots store's current table for use by one query.
func NewCostField(store *Store) CostField {
	return CostField{table: store.Current()}
}

// Name identifies this field for logging, matching costmodel.CostField.
func (f CostField) Name() string { return "time_banded_speed_override" }

// AdditionalSeconds returns the delta between the banded override's
// traversal time and the base traversal time already computed, or zero if
// no override exists for this edge/bin, in which case the edge falls
// through to the default calculator. Req.FromTimeS + req.ElapsedSeconds
// gives the time-of-day at which this edge is actually being entered.
func (f CostField) AdditionalSeconds(c graph.EdgeCursor, mode graph.Mode, req costmodel.Request, baseSeconds int) int {
	overridden, ok := f.table.TraversalSeconds(c.ID(), c.LengthMM(), req.FromTimeS, req.ElapsedSeconds)
	if !ok {
		return 0
	}
	return int(overridden) - baseSeconds
}
