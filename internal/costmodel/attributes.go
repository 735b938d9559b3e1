package costmodel

import "github.com/meridianmobility/streetcore/internal/graph"

// CrosswalkType classifies the crossing control at an intersection, used by
// the walk perceived-length supplier's turn-cost ladder.
type CrosswalkType uint8

const (
	CrosswalkNone CrosswalkType = iota
	CrosswalkUnsignalized
	CrosswalkSignalized
)

// IntersectionControl classifies the traffic control at an edge's far
// endpoint, used by the bike supplier's turn-cost ladder.
type IntersectionControl uint8

const (
	ControlNone IntersectionControl = iota
	ControlStop
	ControlSignal
)

// BikeInfrastructure classifies the on-street bike facility present on a
// way, used by the bike perceived-length supplier.
type BikeInfrastructure uint8

const (
	BikeInfraNone BikeInfrastructure = iota
	BikeInfraBoulevard
	BikeInfraPath
)

// WayAttributes holds the OSM-tag-derived per-pair facts the production
// perceived-length suppliers need. It is looked up by PairID rather than
// stored as EdgeStore columns: these are cost-model-specific enrichment
// attributes, not core graph topology, and different deployments may
// enrich different subsets.
type WayAttributes struct {
	// SlopePercent10Plus is the fraction (0–1) of the way's length with a
	// grade of 10% or more (a continuous multiplier input, not a boolean
	// flag).
	SlopePercent10Plus float64
	UnpavedOrAlley     bool
	BusyRoad           bool

	CrosswalkType CrosswalkType
	// CrossTrafficAADT is the annual-average-daily-traffic volume of the
	// street being crossed at a STRAIGHT movement.
	CrossTrafficAADT int
	// SelfAADT and ParallelAADT are the volumes of the way itself and of
	// any street running parallel to a LEFT/RIGHT turn, respectively.
	SelfAADT     int
	ParallelAADT int

	BikeInfra  BikeInfrastructure
	Control    IntersectionControl
	Slope2To4  float64 // fraction of length in the 2-4% slope band
	Slope4To6  float64
	Slope6Plus float64
}

// AttributeSource looks up the WayAttributes for a pair, e.g. backed by a
// map populated at graph build time or a side table keyed by way id.
type AttributeSource interface {
	Attributes(pair graph.PairID) WayAttributes
}

// StaticAttributeSource is an in-memory AttributeSource keyed directly by
// pair id, suitable for a build-time-populated baseline layer.
type StaticAttributeSource map[graph.PairID]WayAttributes

// Attributes returns the stored attributes for pair, or the zero value if
// none were recorded.
func (s StaticAttributeSource) Attributes(pair graph.PairID) WayAttributes {
	return s[pair]
}
