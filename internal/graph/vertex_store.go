package graph

import "github.com/meridianmobility/streetcore/internal/geo"

// VertexID is a dense, non-negative index into a VertexStore.
type VertexID int32

// VertexFlags is a closed bitset of per-vertex attributes.
type VertexFlags uint8

const (
	VertexFlagTrafficSignal VertexFlags = 1 << iota
	VertexFlagParkAndRide
	VertexFlagBikeSharing
)

// Has reports whether all bits in other are set.
func (f VertexFlags) Has(other VertexFlags) bool {
	return f&other == other
}

// VertexStore is a column-store of vertices: latitude, longitude (stored as
// fixed-point integer degrees) and a flag bitset. Vertices are never
// destroyed; island pruning only strips edge permissions, never vertices.
type VertexStore struct {
	lat   *column[geo.Fixed]
	lon   *column[geo.Fixed]
	flags *column[VertexFlags]
}

// NewVertexStore returns an empty, baseline vertex store.
func NewVertexStore() *VertexStore {
	return &VertexStore{
		lat:   newColumn[geo.Fixed](),
		lon:   newColumn[geo.Fixed](),
		flags: newColumn[VertexFlags](),
	}
}

// NVertices returns the number of vertices visible through this store.
func (vs *VertexStore) NVertices() int {
	return vs.lat.Len()
}

// AddVertex appends a new vertex at the given coordinate and returns its
// dense id.
func (vs *VertexStore) AddVertex(latDegrees, lonDegrees float64) VertexID {
	idx := vs.lat.Append(geo.ToFixed(latDegrees))
	vs.lon.Append(geo.ToFixed(lonDegrees))
	vs.flags.Append(0)
	return VertexID(idx)
}

// LatDegrees returns the vertex's latitude as a float.
func (vs *VertexStore) LatDegrees(v VertexID) float64 {
	return vs.lat.Get(int(v)).ToFloat()
}

// LonDegrees returns the vertex's longitude as a float.
func (vs *VertexStore) LonDegrees(v VertexID) float64 {
	return vs.lon.Get(int(v)).ToFloat()
}

// LatFixed returns the vertex's latitude in fixed-point degrees.
func (vs *VertexStore) LatFixed(v VertexID) geo.Fixed {
	return vs.lat.Get(int(v))
}

// LonFixed returns the vertex's longitude in fixed-point degrees.
func (vs *VertexStore) LonFixed(v VertexID) geo.Fixed {
	return vs.lon.Get(int(v))
}

// Flags returns the vertex's flag bitset.
func (vs *VertexStore) Flags(v VertexID) VertexFlags {
	return vs.flags.Get(int(v))
}

// SetFlags overwrites the vertex's flag bitset. It fails with
// ErrImmutableBaselineViolation if v belongs to an overlay's immutable
// baseline range.
func (vs *VertexStore) SetFlags(v VertexID, f VertexFlags) error {
	return vs.flags.Set(int(v), f)
}

// AddFlags ORs the given bits into the vertex's existing flag bitset.
func (vs *VertexStore) AddFlags(v VertexID, f VertexFlags) error {
	return vs.SetFlags(v, vs.Flags(v)|f)
}

// Valid reports whether v addresses an existing vertex.
func (vs *VertexStore) Valid(v VertexID) bool {
	return v >= 0 && int(v) < vs.NVertices()
}

// ExtendOnlyCopy returns a new VertexStore whose columns are overlay-wrapped
// references to this store's columns. No vertex data is copied.
func (vs *VertexStore) ExtendOnlyCopy() *VertexStore {
	return &VertexStore{
		lat:   vs.lat.ExtendOnlyCopy(),
		lon:   vs.lon.ExtendOnlyCopy(),
		flags: vs.flags.ExtendOnlyCopy(),
	}
}
