package router

import "github.com/meridianmobility/streetcore/internal/graph"

// ReachedVertices returns every settled vertex mapped to its best-known
// weight (the dominance variable's value, not necessarily seconds).
func (sr *StreetRouter) ReachedVertices() map[graph.VertexID]float64 {
	out := make(map[graph.VertexID]float64, len(sr.settled))
	for v, rec := range sr.settled {
		out[v] = rec.minWeight
	}
	return out
}

// StopMapping resolves a vertex to its transit stop index, when one
// exists, used by ReachedStops to translate vertex-indexed results into a
// transit layer's indexing.
type StopMapping interface {
	StopForVertex(v graph.VertexID) (stopIndex int, ok bool)
}

// ReachedStops returns the best weight to every reached vertex that maps
// to a transit stop, keyed by stop index.
func (sr *StreetRouter) ReachedStops(stops StopMapping) map[int]float64 {
	out := make(map[int]float64)
	for v, rec := range sr.settled {
		if idx, ok := stops.StopForVertex(v); ok {
			out[idx] = rec.minWeight
		}
	}
	return out
}

// ReachedBikeShares returns the best weight to every reached vertex
// flagged VertexFlagBikeSharing.
func (sr *StreetRouter) ReachedBikeShares() map[graph.VertexID]float64 {
	out := make(map[graph.VertexID]float64)
	for v, rec := range sr.settled {
		if sr.Layer.Vertices.Flags(v).Has(graph.VertexFlagBikeSharing) {
			out[v] = rec.minWeight
		}
	}
	return out
}

// TravelTimeToVertex returns the best weight at v and true, or
// (UnreachedWeight, false) if v was never settled.
func (sr *StreetRouter) TravelTimeToVertex(v graph.VertexID) (float64, bool) {
	rec, ok := sr.settled[v]
	if !ok {
		return UnreachedWeight, false
	}
	return rec.minWeight, true
}

// StateAtSplit returns the better-weighted of the two endpoint states for
// a split produced by the linker, or nil if neither endpoint was reached.
func (sr *StreetRouter) StateAtSplit(fromVertex, toVertex graph.VertexID) *RoutingState {
	fromRec, fromOK := sr.settled[fromVertex]
	toRec, toOK := sr.settled[toVertex]

	switch {
	case fromOK && toOK:
		if fromRec.minWeight <= toRec.minWeight {
			return fromRec.chain[0]
		}
		return toRec.chain[0]
	case fromOK:
		return fromRec.chain[0]
	case toOK:
		return toRec.chain[0]
	default:
		return nil
	}
}
