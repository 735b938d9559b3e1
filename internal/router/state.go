// Package router implements the label-setting shortest-path search over a
// graph.StreetLayer: a per-query mutable object holding the layer, the
// request, and a min-priority queue of RoutingStates, implementing a
// multi-mode Dijkstra supporting two dominance variables and CAR
// turn-restriction state machines.
package router

import (
	"github.com/meridianmobility/streetcore/internal/graph"
)

// DominanceVariable selects which cumulative quantity the search minimizes
// and limits against.
type DominanceVariable uint8

const (
	DominanceDuration DominanceVariable = iota
	DominanceDistance
)

// UnreachedWeight is returned by TravelTimeToVertex for a vertex the search
// never reached.
const UnreachedWeight = -1

// RoutingState is one label on the search frontier: the vertex it reached,
// the edge it arrived on, cumulative time and distance, the chain of
// in-progress CAR turn restrictions, and a predecessor link for path
// reconstruction. NextState links states that are co-dominant at the same
// vertex (equal weight, differing active restriction sets) so every
// surviving variant is available for successor expansion.
type RoutingState struct {
	Vertex      graph.VertexID
	IncomingEdge graph.EdgeID
	HasIncoming  bool

	Weight        float64
	TimeSeconds   float64
	DistanceMM    int64

	RestrictionProgress map[graph.RestrictionID]int

	Predecessor *RoutingState
	NextState   *RoutingState

	queueIndex int
}

// cloneRestrictionProgress returns a shallow copy of a progress map, or nil
// if the source is empty, so states don't alias each other's maps.
func cloneRestrictionProgress(src map[graph.RestrictionID]int) map[graph.RestrictionID]int {
	if len(src) == 0 {
		return nil
	}
	out := make(map[graph.RestrictionID]int, len(src))
	for k, v := range src {
		out[k] = v
	}
	return out
}

// restrictionSetsEqual reports whether two states are tracking the exact
// same in-progress restrictions at the exact same stage — used to collapse
// true duplicates out of a co-dominant chain.
func restrictionSetsEqual(a, b map[graph.RestrictionID]int) bool {
	if len(a) != len(b) {
		return false
	}
	for k, v := range a {
		if bv, ok := b[k]; !ok || bv != v {
			return false
		}
	}
	return true
}
