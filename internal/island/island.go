// Package island implements the per-mode strong-component pruner: after a
// baseline graph is built, routing must not depend on small fragments that
// are only reachable from the rest of the network by construction noise
// (a dead-end spur clipped by the import bounding box, a service road with
// one broken connection). For each mode, island strips that mode's
// permission flag from every edge touching a strongly-connected component
// smaller than MinComponentSize.
package island

import "github.com/meridianmobility/streetcore/internal/graph"

// MinComponentSize is the strong-component size below which a mode's
// permission is stripped from every incident edge.
const MinComponentSize = 40

const sentinel = -1

// successorFlags returns the set of permission flags a successor edge must
// carry for mode during island detection. Bicycle may additionally
// traverse pedestrian-permitted edges (a cyclist can walk a bike through a
// sidewalk-only connector), so bike connectivity depends on which
// pedestrian edges survived pedestrian pruning — this is why Prune must run
// pedestrian before bicycle.
func successorFlags(mode graph.Mode) graph.EdgeFlags {
	if mode == graph.ModeBike {
		return graph.FlagAllowsBike | graph.FlagAllowsPedestrian
	}
	return mode.PermissionFlag()
}

func isSuccessorEdge(c graph.EdgeCursor, mode graph.Mode) bool {
	want := successorFlags(mode)
	if mode == graph.ModeBike {
		return c.Flags()&want != 0
	}
	return c.HasFlag(want)
}

// tarjanFrame is one entry of the explicit work stack: a vertex being
// processed, and how far through its successor list we'd gotten the last
// time it was popped (so re-scanning on the second visit resumes instead of
// restarting).
type tarjanFrame struct {
	vertex    graph.VertexID
	childIter int
}

// componentsOf runs Tarjan's strongly-connected-components algorithm over
// the directed graph restricted to edges matching mode's successor flags,
// using an explicit work stack in place of recursion so stack depth never
// scales with the graph. Returns, per vertex, the id of its component and
// that component's size.
func componentsOf(sl *graph.StreetLayer, mode graph.Mode) (componentOf []int, componentSize []int) {
	n := sl.Vertices.NVertices()
	discoveryIndex := make([]int, n)
	lowLink := make([]int, n)
	componentOf = make([]int, n)
	for i := range discoveryIndex {
		discoveryIndex[i] = sentinel
		lowLink[i] = sentinel
		componentOf[i] = sentinel
	}

	onTarjanStack := make([]bool, n)
	var tarjanStack []graph.VertexID
	nextIndex := 0
	nextComponent := 0
	var sizes []int

	es := sl.Edges
	successors := func(v graph.VertexID) []graph.VertexID {
		var out []graph.VertexID
		nEdges := es.NEdges()
		for i := 0; i < nEdges; i++ {
			e := graph.EdgeID(i)
			c := es.Cursor(e)
			if c.From() != v {
				continue
			}
			if isSuccessorEdge(c, mode) {
				out = append(out, c.To())
			}
		}
		return out
	}

	var workStack []tarjanFrame

	for start := graph.VertexID(0); int(start) < n; start++ {
		if discoveryIndex[start] != sentinel {
			continue
		}
		workStack = append(workStack, tarjanFrame{vertex: start})

		for len(workStack) > 0 {
			top := &workStack[len(workStack)-1]
			v := top.vertex

			if discoveryIndex[v] == sentinel {
				discoveryIndex[v] = nextIndex
				lowLink[v] = nextIndex
				nextIndex++
				tarjanStack = append(tarjanStack, v)
				onTarjanStack[v] = true
			}

			succ := successors(v)
			advanced := false
			for top.childIter < len(succ) {
				w := succ[top.childIter]
				top.childIter++
				if discoveryIndex[w] == sentinel {
					workStack = append(workStack, tarjanFrame{vertex: w})
					advanced = true
					break
				}
				if onTarjanStack[w] {
					if discoveryIndex[w] < lowLink[v] {
						lowLink[v] = discoveryIndex[w]
					}
				}
			}
			if advanced {
				continue
			}

			// All successors discovered: pop v and finalize.
			workStack = workStack[:len(workStack)-1]
			if len(workStack) > 0 {
				parent := &workStack[len(workStack)-1]
				if lowLink[v] < lowLink[parent.vertex] {
					lowLink[parent.vertex] = lowLink[v]
				}
			}

			if lowLink[v] == discoveryIndex[v] {
				compID := nextComponent
				nextComponent++
				size := 0
				for {
					w := tarjanStack[len(tarjanStack)-1]
					tarjanStack = tarjanStack[:len(tarjanStack)-1]
					onTarjanStack[w] = false
					componentOf[w] = compID
					size++
					if w == v {
						break
					}
				}
				sizes = append(sizes, size)
			}
		}
	}

	return componentOf, sizes
}

// Prune runs island detection for mode and strips mode's permission flag
// from every directed edge with either endpoint in a component smaller than
// MinComponentSize. It is idempotent: a second run against an
// already-pruned layer removes zero additional edges, since the pruned
// vertices no longer have mode-permitted edges to form a component around.
func Prune(sl *graph.StreetLayer, mode graph.Mode) error {
	componentOf, sizes := componentsOf(sl, mode)

	small := make([]bool, len(componentOf))
	for v, comp := range componentOf {
		if comp == sentinel {
			continue
		}
		if sizes[comp] < MinComponentSize {
			small[v] = true
		}
	}

	flag := mode.PermissionFlag()
	es := sl.Edges
	n := es.NEdges()
	for i := 0; i < n; i++ {
		e := graph.EdgeID(i)
		c := es.Cursor(e)
		if small[c.From()] || small[c.To()] {
			if err := es.ClearFlags(e, flag); err != nil {
				return err
			}
		}
	}
	return nil
}

// PruneAll runs island pruning for every mode in a fixed order: pedestrian
// first (bicycle connectivity depends on surviving pedestrian permissions),
// then bicycle, then car.
func PruneAll(sl *graph.StreetLayer) error {
	for _, mode := range []graph.Mode{graph.ModeWalk, graph.ModeBike, graph.ModeCar} {
		if err := Prune(sl, mode); err != nil {
			return err
		}
	}
	return nil
}
