package costmodel

import (
	"math"

	"github.com/meridianmobility/streetcore/internal/graph"
)

// CostField contributes an additive adjustment to an edge's base traversal
// time. Fields are applied in registration order; registration order is
// preserved purely for deterministic logging and debugging, since addition
// over the full set is commutative.
type CostField interface {
	Name() string
	AdditionalSeconds(c graph.EdgeCursor, mode graph.Mode, req Request, baseSeconds int) int
}

// MultistageCalculator wraps a base Calculator with an ordered list of
// CostFields. Traversal time is max(1, base + sum of field contributions);
// turn time delegates to the base calculator unchanged.
type MultistageCalculator struct {
	Base   Calculator
	Fields []CostField
}

// NewMultistageCalculator returns a calculator composing base with fields,
// applied in the given order.
func NewMultistageCalculator(base Calculator, fields ...CostField) *MultistageCalculator {
	return &MultistageCalculator{Base: base, Fields: fields}
}

// TraversalTimeSeconds computes the base time, then adds every field's
// contribution in registration order, clamped to at least one second.
func (m *MultistageCalculator) TraversalTimeSeconds(c graph.EdgeCursor, mode graph.Mode, req Request) int {
	base := m.Base.TraversalTimeSeconds(c, mode, req)
	total := base
	for _, f := range m.Fields {
		total += f.AdditionalSeconds(c, mode, req, base)
	}
	if total < 1 {
		total = 1
	}
	return total
}

// TurnTimeSeconds delegates to the base calculator unchanged.
func (m *MultistageCalculator) TurnTimeSeconds(fromOutAngle, toInAngle int8, mode graph.Mode, req Request) int {
	return m.Base.TurnTimeSeconds(fromOutAngle, toInAngle, mode, req)
}

// PerceivedLengthField adapts a PerceivedLengthSupplier into a CostField:
// for WALK/BIKE, its contribution is the perceived traversal time minus the
// base (speed-only) time the base calculator already counted, so the two
// compose into exactly the supplier's perceived total. CAR and any other
// mode contribute nothing.
type PerceivedLengthField struct {
	FieldName string
	Supplier  PerceivedLengthSupplier
	Mode      graph.Mode
	Attrs     AttributeSource
}

// Name returns the field's identifier, used for logging.
func (f PerceivedLengthField) Name() string { return f.FieldName }

// AdditionalSeconds returns the delta between the supplier's perceived
// traversal time (ceiling-rounded, matching the base calculator's own
// rounding) and the base time already computed, or zero if mode doesn't
// match this field's configured mode.
func (f PerceivedLengthField) AdditionalSeconds(c graph.EdgeCursor, mode graph.Mode, req Request, baseSeconds int) int {
	if mode != f.Mode {
		return 0
	}
	attrs := f.Attrs.Attributes(c.Pair())
	perceived := PerceivedTraversalSeconds(f.Supplier, c, attrs, mode, req)
	return int(math.Ceil(perceived)) - baseSeconds
}
