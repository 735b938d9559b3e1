package router

import "github.com/meridianmobility/streetcore/internal/graph"

// PathStep is one directed edge traversal in a reconstructed path, in
// forward (origin-to-destination) order.
type PathStep struct {
	Edge graph.EdgeID
	From graph.VertexID
	To   graph.VertexID
}

// ReversePath walks a state's predecessor chain and returns the sequence
// of edges forming the path from the search's origin to state.Vertex, in
// forward order. Each step is the recorded IncomingEdge with the edge
// store's own endpoints; no edge is flipped. For a state produced by a
// backward search, use ReverseBackwardPath.
func ReversePath(state *RoutingState, es *graph.EdgeStore) []PathStep {
	var reversedSteps []PathStep

	for s := state; s != nil && s.HasIncoming; s = s.Predecessor {
		c := es.Cursor(s.IncomingEdge)
		reversedSteps = append(reversedSteps, PathStep{
			Edge: s.IncomingEdge,
			From: c.From(),
			To:   c.To(),
		})
	}

	steps := make([]PathStep, len(reversedSteps))
	for i, step := range reversedSteps {
		steps[len(reversedSteps)-1-i] = step
	}
	return steps
}

// ReverseBackwardPath is the state-reversal entry point for a search that
// ran backward from a destination: each recorded IncomingEdge was actually
// traversed in the paired (opposite) direction relative to how it should
// appear in a forward-read path, so every step is flipped via the edge
// store's XOR-1 pairing. A backward search's predecessor chain already runs
// from state.Vertex toward the destination, so the flipped steps are kept
// in chain order, which is forward order.
func ReverseBackwardPath(state *RoutingState, es *graph.EdgeStore) []PathStep {
	var steps []PathStep

	for s := state; s != nil && s.HasIncoming; s = s.Predecessor {
		paired := graph.Paired(s.IncomingEdge)
		c := es.Cursor(paired)
		steps = append(steps, PathStep{
			Edge: paired,
			From: c.From(),
			To:   c.To(),
		})
	}
	return steps
}
