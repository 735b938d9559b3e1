package graph

import (
	"errors"
	"math"

	"github.com/meridianmobility/streetcore/internal/geo"
)

// EdgeID addresses one directed edge. The forward edge of a pair is always
// even; its paired backward edge is forward XOR 1.
type EdgeID int32

// PairID addresses the attributes shared by both directions of an edge.
type PairID int32

// ErrInvalidGeometry is returned when an edge pair's length is non-positive
// or overflows the 32-bit millimeter representation.
var ErrInvalidGeometry = errors.New("graph: invalid edge geometry")

// Mode selects which per-direction permission flag and speed convention
// applies during routing.
type Mode uint8

const (
	ModeWalk Mode = iota
	ModeBike
	ModeCar
)

// PermissionFlag returns the EdgeFlags bit that must be set on a direction
// for Mode to traverse it.
func (m Mode) PermissionFlag() EdgeFlags {
	switch m {
	case ModeWalk:
		return FlagAllowsPedestrian
	case ModeBike:
		return FlagAllowsBike
	case ModeCar:
		return FlagAllowsCar
	default:
		return 0
	}
}

// NoThruTrafficFlag returns the mode-specific no-thru-traffic bit.
func (m Mode) NoThruTrafficFlag() EdgeFlags {
	switch m {
	case ModeWalk:
		return FlagNoThruTrafficPedestrian
	case ModeBike:
		return FlagNoThruTrafficBike
	case ModeCar:
		return FlagNoThruTrafficCar
	default:
		return 0
	}
}

// EdgeFlags is the per-direction permission and routing-attribute bitset.
type EdgeFlags uint32

const (
	FlagAllowsCar EdgeFlags = 1 << iota
	FlagAllowsBike
	FlagAllowsPedestrian
	FlagLink
	FlagLinkable
	FlagNoThruTraffic
	FlagNoThruTrafficCar
	FlagNoThruTrafficBike
	FlagNoThruTrafficPedestrian
)

func (f EdgeFlags) Has(other EdgeFlags) bool {
	return f&other == other
}

// HighwayClass loosely ranks the source way's road type. It is stored and
// copied onto split edges; no cost model reads it (the walk model's busy
// road factor comes from costmodel.WayAttributes.BusyRoad).
type HighwayClass uint8

const (
	HighwayOther HighwayClass = iota
	HighwayResidential
	HighwayTertiary
	HighwaySecondary
	HighwayPrimary
	HighwayTrunk
	HighwayMotorway
)

// GeomPoint is one intermediate shape point in fixed-degree units.
type GeomPoint struct {
	Lat, Lon geo.Fixed
}

// EdgeStore is a column-store of paired directed edges. Per-pair attributes
// (endpoints of the forward direction, length, geometry, way id, highway
// class, in/out angle) are indexed by PairID; per-direction attributes
// (speed, flags) are indexed by EdgeID, with n_edges == 2*n_edge_pairs.
type EdgeStore struct {
	// per-pair columns
	fromVertex *column[VertexID]
	toVertex   *column[VertexID]
	lengthMM   *column[int32]
	geometry   *column[[]GeomPoint]
	wayID      *column[int64]
	highway    *column[HighwayClass]
	inAngle    *column[int8]
	outAngle   *column[int8]

	// per-direction columns
	speedCmS *column[uint16]
	flags    *column[EdgeFlags]

	// FirstModifiableEdge is the baseline edge count at the moment this
	// store was produced by ExtendOnlyCopy; edges below it are immutable.
	// Zero for a true baseline store (nothing is immutable to itself).
	FirstModifiableEdge EdgeID

	// TemporarilyDeletedEdges holds baseline edge pairs that a scenario
	// overlay has logically removed (superseded by a split); the pair id
	// is recorded, covering both directions.
	TemporarilyDeletedEdges map[PairID]bool

	nextNegativeWayID int64
}

// NewEdgeStore returns an empty, baseline edge store.
func NewEdgeStore() *EdgeStore {
	return &EdgeStore{
		fromVertex:              newColumn[VertexID](),
		toVertex:                newColumn[VertexID](),
		lengthMM:                newColumn[int32](),
		geometry:                newColumn[[]GeomPoint](),
		wayID:                   newColumn[int64](),
		highway:                 newColumn[HighwayClass](),
		inAngle:                 newColumn[int8](),
		outAngle:                newColumn[int8](),
		speedCmS:                newColumn[uint16](),
		flags:                   newColumn[EdgeFlags](),
		TemporarilyDeletedEdges: make(map[PairID]bool),
		nextNegativeWayID:       -1,
	}
}

// NEdgePairs returns the number of edge pairs visible through this store.
func (es *EdgeStore) NEdgePairs() int {
	return es.fromVertex.Len()
}

// NEdges returns the number of directed edges, always 2*NEdgePairs.
func (es *EdgeStore) NEdges() int {
	return es.NEdgePairs() * 2
}

// defaultSpeedCmS is the initial traversal speed assigned to a new edge
// pair: 50 km/h, rounded to centimeters per second.
const defaultSpeedCmS = uint16((50*1000*100 + 1800) / 3600)

// AddEdgePair appends a new forward/backward edge pair and returns the
// forward edge's id. Initial speed is 50 km/h in both directions, flags are
// zero, and intermediate geometry is empty. If wayID is negative, a unique
// generated negative id is assigned instead (the convention for synthetic
// edges that have no source way, e.g. splitter connectors).
func (es *EdgeStore) AddEdgePair(from, to VertexID, lengthMM int32, wayID int64) (EdgeID, error) {
	if lengthMM <= 0 || int64(lengthMM) > math.MaxInt32 {
		return 0, ErrInvalidGeometry
	}
	if wayID < 0 {
		wayID = es.nextNegativeWayID
		es.nextNegativeWayID--
	}

	pair := es.fromVertex.Append(from)
	es.toVertex.Append(to)
	es.lengthMM.Append(lengthMM)
	es.geometry.Append(nil)
	es.wayID.Append(wayID)
	es.highway.Append(HighwayOther)
	es.inAngle.Append(0)
	es.outAngle.Append(0)

	es.speedCmS.Append(defaultSpeedCmS)
	es.speedCmS.Append(defaultSpeedCmS)
	es.flags.Append(0)
	es.flags.Append(0)

	return EdgeID(pair * 2), nil
}

// PairOf returns the pair id addressed by an edge id.
func PairOf(e EdgeID) PairID { return PairID(e / 2) }

// Paired returns the other direction of e's pair (e XOR 1).
func Paired(e EdgeID) EdgeID { return e ^ 1 }

// IsForward reports whether e is the even (forward) edge of its pair.
func IsForward(e EdgeID) bool { return e%2 == 0 }

// Valid reports whether e addresses an existing directed edge.
func (es *EdgeStore) Valid(e EdgeID) bool {
	return e >= 0 && int(e) < es.NEdges()
}

// SetLengthMM overwrites a pair's shared length. Used by the linker when
// shortening a mutable pair during a split.
func (es *EdgeStore) SetLengthMM(p PairID, lengthMM int32) error {
	if lengthMM <= 0 || int64(lengthMM) > math.MaxInt32 {
		return ErrInvalidGeometry
	}
	return es.lengthMM.Set(int(p), lengthMM)
}

// SetEndpoints overwrites a pair's forward from/to vertices. Used when
// retargeting a shortened pair during a split.
func (es *EdgeStore) SetEndpoints(p PairID, from, to VertexID) error {
	if err := es.fromVertex.Set(int(p), from); err != nil {
		return err
	}
	return es.toVertex.Set(int(p), to)
}

// SetGeometry overwrites a pair's intermediate geometry (forward-direction
// order, endpoints excluded).
func (es *EdgeStore) SetGeometry(p PairID, points []GeomPoint) error {
	return es.geometry.Set(int(p), points)
}

// SetSpeedMPS sets edge e's traversal speed given in meters per second,
// rounding to the stored cm/s resolution.
func (es *EdgeStore) SetSpeedMPS(e EdgeID, mps float64) error {
	cmS := uint16(math.Round(mps * 100))
	return es.speedCmS.Set(int(e), cmS)
}

// SetFlags overwrites edge e's per-direction flag bitset.
func (es *EdgeStore) SetFlags(e EdgeID, f EdgeFlags) error {
	return es.flags.Set(int(e), f)
}

// AddFlags ORs bits into edge e's existing flag bitset.
func (es *EdgeStore) AddFlags(e EdgeID, f EdgeFlags) error {
	return es.SetFlags(e, es.Flags(e)|f)
}

// ClearFlags clears bits from edge e's flag bitset.
func (es *EdgeStore) ClearFlags(e EdgeID, f EdgeFlags) error {
	return es.SetFlags(e, es.Flags(e)&^f)
}

// Flags returns edge e's per-direction flag bitset.
func (es *EdgeStore) Flags(e EdgeID) EdgeFlags {
	return es.flags.Get(int(e))
}

// SpeedMPS returns edge e's traversal speed in meters per second.
func (es *EdgeStore) SpeedMPS(e EdgeID) float64 {
	return float64(es.speedCmS.Get(int(e))) / 100
}

// SetInOutAngle sets the pair's forward in/out compass angles (signed
// 8-bit binary radians, i.e. 256 units per full turn).
func (es *EdgeStore) SetInOutAngle(p PairID, in, out int8) error {
	if err := es.inAngle.Set(int(p), in); err != nil {
		return err
	}
	return es.outAngle.Set(int(p), out)
}

// SetWayID overwrites a pair's source way id.
func (es *EdgeStore) SetWayID(p PairID, wayID int64) error {
	return es.wayID.Set(int(p), wayID)
}

// SetHighwayClass overwrites a pair's highway classification.
func (es *EdgeStore) SetHighwayClass(p PairID, class HighwayClass) error {
	return es.highway.Set(int(p), class)
}

// ExtendOnlyCopy returns a new EdgeStore whose columns overlay this store's
// columns. FirstModifiableEdge is frozen at this store's current edge
// count and TemporarilyDeletedEdges starts empty.
func (es *EdgeStore) ExtendOnlyCopy() *EdgeStore {
	return &EdgeStore{
		fromVertex:              es.fromVertex.ExtendOnlyCopy(),
		toVertex:                es.toVertex.ExtendOnlyCopy(),
		lengthMM:                es.lengthMM.ExtendOnlyCopy(),
		geometry:                es.geometry.ExtendOnlyCopy(),
		wayID:                   es.wayID.ExtendOnlyCopy(),
		highway:                 es.highway.ExtendOnlyCopy(),
		inAngle:                 es.inAngle.ExtendOnlyCopy(),
		outAngle:                es.outAngle.ExtendOnlyCopy(),
		speedCmS:                es.speedCmS.ExtendOnlyCopy(),
		flags:                   es.flags.ExtendOnlyCopy(),
		FirstModifiableEdge:     EdgeID(es.NEdges()),
		TemporarilyDeletedEdges: make(map[PairID]bool),
		nextNegativeWayID:       es.nextNegativeWayID,
	}
}

// IsImmutable reports whether pair p lies below this store's
// FirstModifiableEdge threshold (i.e. belongs to a frozen baseline).
func (es *EdgeStore) IsImmutable(p PairID) bool {
	return EdgeID(p*2) < es.FirstModifiableEdge
}
