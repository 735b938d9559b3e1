package router

import (
	"github.com/meridianmobility/streetcore/internal/costmodel"
	"github.com/meridianmobility/streetcore/internal/graph"
	"github.com/meridianmobility/streetcore/internal/linker"
)

// Visitor is invoked once per settled state during the search. Returning
// true aborts the search immediately (should_break_search).
type Visitor interface {
	Visit(s *RoutingState) (stop bool)
}

// VisitorFunc adapts a plain function to the Visitor interface.
type VisitorFunc func(s *RoutingState) bool

// Visit calls f.
func (f VisitorFunc) Visit(s *RoutingState) bool { return f(s) }

// DefaultMaxExploredStates bounds a single search to avoid runaway
// exploration when no destination or limit is supplied.
const DefaultMaxExploredStates = 200_000

// vertexRecord tracks the minimum weight seen at a vertex and the chain of
// mutually co-dominant states (equal weight, distinct restriction
// progress) settled there.
type vertexRecord struct {
	minWeight float64
	chain     []*RoutingState
}

// StreetRouter is a mutable per-query object that runs a label-setting
// search over a single StreetLayer for one mode and dominance variable.
type StreetRouter struct {
	Layer      *graph.StreetLayer
	Mode       graph.Mode
	Dominance  DominanceVariable
	Request    costmodel.Request
	Calculator costmodel.Calculator

	// Attributes supplies the OSM-tag-derived facts WalkSupplier/
	// BikeSupplier need to price a turn. PerceivedSupplier is consulted
	// only for WALK/BIKE (see turnCostSeconds); both are nil-safe (a nil
	// Attributes source yields the zero WayAttributes, a nil supplier
	// skips the perceived turn-cost formula entirely).
	Attributes        costmodel.AttributeSource
	PerceivedSupplier costmodel.PerceivedLengthSupplier

	// DistanceLimitMM / TimeLimitSeconds bound the search; zero means
	// unlimited. Only the limit matching Dominance is consulted.
	DistanceLimitMM  int64
	TimeLimitSeconds float64

	ToVertex    graph.VertexID
	HasToVertex bool

	Visitor Visitor

	MaxExploredStates int

	queue    *stateQueue
	settled  map[graph.VertexID]*vertexRecord
	explored int
}

// New returns a StreetRouter ready to accept SetOrigin* calls. The
// perceived-length supplier defaults to the production WALK/BIKE model for
// the given mode (costmodel.WalkSupplier / costmodel.BikeSupplier); CAR
// routing ignores it. Callers with their own AttributeSource should set
// Attributes before calling Route.
func New(sl *graph.StreetLayer, mode graph.Mode, dominance DominanceVariable, req costmodel.Request) *StreetRouter {
	return &StreetRouter{
		Layer:             sl,
		Mode:              mode,
		Dominance:         dominance,
		Request:           req,
		Calculator:        costmodel.NewMultistageCalculator(costmodel.BaseCalculator{}),
		PerceivedSupplier: defaultSupplier(mode),
		MaxExploredStates: DefaultMaxExploredStates,
		queue:             newStateQueue(),
		settled:           make(map[graph.VertexID]*vertexRecord),
	}
}

func defaultSupplier(mode graph.Mode) costmodel.PerceivedLengthSupplier {
	switch mode {
	case graph.ModeBike:
		return costmodel.BikeSupplier{}
	case graph.ModeCar:
		return nil
	default:
		return costmodel.WalkSupplier{}
	}
}

// SetOriginLatLon projects (lat, lon) onto the layer with a 300m radius and
// enqueues initial states for both endpoints of the split edge, weighted by
// each endpoint's distance along the edge. Returns false if no split was
// found within radius.
func (sr *StreetRouter) SetOriginLatLon(latDegrees, lonDegrees float64) bool {
	split, err := linker.Find(sr.Layer, latDegrees, lonDegrees, 300, sr.Mode)
	if err != nil {
		return false
	}

	c := sr.Layer.Edges.Cursor(split.Edge)
	fromV := c.From()
	toV := c.To()

	sr.enqueueOrigin(fromV, split.Distance0MM)
	sr.enqueueOrigin(toV, split.Distance1MM)
	return true
}

// enqueueOrigin seeds a single endpoint from a split, converting the
// partial-edge distance into the units the configured dominance variable
// tracks: distance directly in millimeters, or an estimated elapsed time
// assuming the edge's mode speed over that partial distance.
func (sr *StreetRouter) enqueueOrigin(v graph.VertexID, distanceMM int32) {
	distanceM := float64(distanceMM) / 1000
	timeSeconds := distanceM / sr.modeSpeedMPS()

	weight := timeSeconds
	if sr.Dominance == DominanceDistance {
		weight = distanceM
	}

	sr.push(&RoutingState{
		Vertex:      v,
		TimeSeconds: timeSeconds,
		DistanceMM:  int64(distanceMM),
		Weight:      weight,
	})
}

func (sr *StreetRouter) modeSpeedMPS() float64 {
	switch sr.Mode {
	case graph.ModeBike:
		return sr.Request.BikeSpeedMPS
	case graph.ModeCar:
		return 1 // CAR speed varies per edge; origin partial-distance estimate uses 1 m/s floor
	default:
		return sr.Request.WalkSpeedMPS
	}
}

// SetOriginVertex enqueues a single zero-weight state at vertex.
func (sr *StreetRouter) SetOriginVertex(vertex graph.VertexID) {
	sr.push(&RoutingState{Vertex: vertex})
}

// OriginState describes one entry of a multi-origin seed set (bike-share /
// park-and-ride initialization).
type OriginState struct {
	Vertex      graph.VertexID
	TimeSeconds float64
	DistanceMM  int64
}

// SetOriginStates enqueues one state per entry in states, each with
// switchTimeS added to elapsed time and switchCost added to the dominance
// weight — used to seed a search from several parked vehicles or shared
// bikes simultaneously.
func (sr *StreetRouter) SetOriginStates(states []OriginState, switchTimeS, switchCost float64) {
	for _, s := range states {
		totalTime := s.TimeSeconds + switchTimeS
		weight := totalTime
		if sr.Dominance == DominanceDistance {
			weight = float64(s.DistanceMM)/1000 + switchCost
		} else {
			weight += switchCost
		}
		sr.push(&RoutingState{
			Vertex:      s.Vertex,
			TimeSeconds: totalTime,
			DistanceMM:  s.DistanceMM,
			Weight:      weight,
		})
	}
}

func (sr *StreetRouter) push(s *RoutingState) {
	sr.queue.push(s)
}

// Route runs the label-setting search to completion (queue exhausted,
// destination reached, visitor-requested stop, or exploration/limit
// exhausted).
func (sr *StreetRouter) Route() {
	for sr.queue.Len() > 0 {
		current := sr.queue.pop()

		if sr.isDominated(current) {
			continue
		}

		if sr.exceedsLimit(current) {
			continue
		}

		sr.settle(current)
		sr.explored++

		if sr.HasToVertex && current.Vertex == sr.ToVertex {
			return
		}

		if sr.Visitor != nil && sr.Visitor.Visit(current) {
			return
		}

		if sr.explored >= sr.MaxExploredStates {
			return
		}

		sr.expand(current)
	}
}

// isDominated reports whether s is a stale or duplicate entry: a vertex
// already settled at a strictly lower weight, or at the same weight with
// an identical restriction-progress set already recorded.
func (sr *StreetRouter) isDominated(s *RoutingState) bool {
	rec, ok := sr.settled[s.Vertex]
	if !ok {
		return false
	}
	if s.Weight > rec.minWeight {
		return true
	}
	for _, existing := range rec.chain {
		if restrictionSetsEqual(existing.RestrictionProgress, s.RestrictionProgress) {
			return true
		}
	}
	return false
}

func (sr *StreetRouter) exceedsLimit(s *RoutingState) bool {
	switch sr.Dominance {
	case DominanceDistance:
		return sr.DistanceLimitMM > 0 && s.DistanceMM > sr.DistanceLimitMM
	default:
		return sr.TimeLimitSeconds > 0 && s.TimeSeconds > sr.TimeLimitSeconds
	}
}

func (sr *StreetRouter) settle(s *RoutingState) {
	rec, ok := sr.settled[s.Vertex]
	if !ok {
		sr.settled[s.Vertex] = &vertexRecord{minWeight: s.Weight, chain: []*RoutingState{s}}
		return
	}
	if s.Weight < rec.minWeight {
		rec.minWeight = s.Weight
		rec.chain = []*RoutingState{s}
		return
	}
	// s.Weight == rec.minWeight: link as a co-dominant sibling.
	if len(rec.chain) > 0 {
		s.NextState = rec.chain[len(rec.chain)-1]
	}
	rec.chain = append(rec.chain, s)
}

func (sr *StreetRouter) expand(current *RoutingState) {
	for _, out := range sr.outgoingEdges(current.Vertex) {
		c := sr.Layer.Edges.Cursor(out)
		if !c.HasFlag(sr.Mode.PermissionFlag()) {
			continue
		}

		progress, ok := sr.advanceRestrictions(current, out)
		if !ok {
			continue // completes a prohibited turn sequence
		}

		turnSeconds := sr.turnCostSeconds(current, out)
		req := sr.Request
		req.ElapsedSeconds = current.TimeSeconds
		traversalSeconds := float64(sr.Calculator.TraversalTimeSeconds(c, sr.Mode, req))

		nextTime := current.TimeSeconds + turnSeconds + traversalSeconds
		nextDistance := current.DistanceMM + int64(c.LengthMM())

		weight := nextTime
		if sr.Dominance == DominanceDistance {
			weight = float64(nextDistance) / 1000
		}

		next := &RoutingState{
			Vertex:              c.To(),
			IncomingEdge:        out,
			HasIncoming:         true,
			Weight:              weight,
			TimeSeconds:         nextTime,
			DistanceMM:          nextDistance,
			RestrictionProgress: progress,
			Predecessor:         current,
		}
		sr.push(next)
	}
}

// outgoingEdges returns every directed edge leaving v. The baseline graph
// has no adjacency index by design (only the spatial index and the
// from/to columns); the router instead scans every edge each time it
// expands a vertex, which is acceptable since a StreetRouter's lifetime is
// one query.
func (sr *StreetRouter) outgoingEdges(v graph.VertexID) []graph.EdgeID {
	es := sr.Layer.Edges
	var out []graph.EdgeID
	n := es.NEdges()
	for i := 0; i < n; i++ {
		e := graph.EdgeID(i)
		if es.Cursor(e).From() == v {
			out = append(out, e)
		}
	}
	return out
}

// turnCostSeconds computes the turn cost entering edge `out` from the
// current state's incoming edge. CAR turn cost comes from the calculator's
// angle ladder (ClassifyTurn/TurnDirection, drive-side-mirrored). WALK/BIKE
// turn cost bypasses the calculator entirely and comes from the perceived-
// length supplier's meter-denominated formula keyed by ClassifyMovement's
// geometric LEFT/RIGHT/STRAIGHT classification (see the internal/costmodel
// DESIGN.md entry for why these two schemes are kept separate).
func (sr *StreetRouter) turnCostSeconds(current *RoutingState, out graph.EdgeID) float64 {
	if !current.HasIncoming {
		return 0
	}
	fromCursor := sr.Layer.Edges.Cursor(current.IncomingEdge)
	toCursor := sr.Layer.Edges.Cursor(out)

	if sr.Mode != graph.ModeCar && sr.PerceivedSupplier != nil {
		movement := costmodel.ClassifyMovement(fromCursor.OutAngle(), toCursor.InAngle())
		var attrs costmodel.WayAttributes
		if sr.Attributes != nil {
			attrs = sr.Attributes.Attributes(toCursor.Pair())
		}
		return costmodel.PerceivedTurnSeconds(sr.PerceivedSupplier, attrs, movement, sr.Mode)
	}

	return float64(sr.Calculator.TurnTimeSeconds(fromCursor.OutAngle(), toCursor.InAngle(), sr.Mode, sr.Request))
}

// advanceRestrictions applies CAR-only turn-restriction bookkeeping: active
// restrictions advance if `out` is their next expected edge (rejecting the
// transition outright if that completes a prohibited sequence), freshly
// started restrictions are picked up from Turns.StartingAt(out), and any
// restriction not matched by `out` is dropped from the returned set.
func (sr *StreetRouter) advanceRestrictions(current *RoutingState, out graph.EdgeID) (map[graph.RestrictionID]int, bool) {
	if sr.Mode != graph.ModeCar {
		return nil, true
	}

	next := make(map[graph.RestrictionID]int)
	for id, progress := range current.RestrictionProgress {
		r := sr.Layer.Turns.Get(id)
		if progress >= len(r.EdgeSequence) || r.EdgeSequence[progress] != out {
			continue // sequence broken by this traversal
		}
		progress++
		if progress == len(r.EdgeSequence) {
			if r.Prohibited {
				return nil, false
			}
			continue // non-prohibited sequence completed; nothing left to track
		}
		next[id] = progress
	}

	for _, id := range sr.Layer.Turns.StartingAt(out) {
		r := sr.Layer.Turns.Get(id)
		if len(r.EdgeSequence) == 1 {
			if r.Prohibited {
				return nil, false
			}
			continue
		}
		next[id] = 1
	}

	return cloneRestrictionProgress(next), true
}
