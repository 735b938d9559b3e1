package graph

// StreetLayer bundles the vertex store, edge store, spatial index, and
// turn restrictions that together make up one routable graph — either the
// shared baseline or a per-query scenario overlay over it.
//
// Baseline layers are immutable after construction and safe for concurrent
// readers without synchronization. A scenario layer produced by
// ExtendOnlyCopy references the baseline's columns and spatial index by
// pointer and is never shared across threads.
type StreetLayer struct {
	Vertices *VertexStore
	Edges    *EdgeStore
	Index    *SpatialIndex
	Turns    *TurnRestrictions

	// temporaryEdges holds forward edge ids created by this layer's own
	// overlay that are not present in Index (see FindEdgesInEnvelope).
	// Nil on a baseline layer.
	temporaryEdges []EdgeID
}

// NewStreetLayer returns an empty baseline layer.
func NewStreetLayer() *StreetLayer {
	return &StreetLayer{
		Vertices: NewVertexStore(),
		Edges:    NewEdgeStore(),
		Index:    NewSpatialIndex(DefaultCellSizeDegrees),
		Turns:    NewTurnRestrictions(),
	}
}

// IndexForwardEdge inserts a forward edge's geometry envelope into the
// shared spatial index. Only called at baseline build time.
func (sl *StreetLayer) IndexForwardEdge(forward EdgeID) {
	c := sl.Edges.Cursor(forward)
	pts := c.FullGeometry(sl.Vertices)
	sl.Index.Insert(EnvelopeOfGeometry(pts), forward)
}

// ExtendOnlyCopy returns a new StreetLayer whose vertex and edge stores are
// extend-only overlays of this layer's stores. The spatial index and turn
// restrictions are shared by reference (read-only, never mutated by an
// overlay); the overlay's own temporary edges are tracked separately and
// unioned in at query time by FindEdgesInEnvelope.
func (sl *StreetLayer) ExtendOnlyCopy() *StreetLayer {
	return &StreetLayer{
		Vertices: sl.Vertices.ExtendOnlyCopy(),
		Edges:    sl.Edges.ExtendOnlyCopy(),
		Index:    sl.Index,
		Turns:    sl.Turns,
	}
}

// IsBaseline reports whether this layer is a true baseline (never
// overlaid), i.e. every edge is modifiable.
func (sl *StreetLayer) IsBaseline() bool {
	return sl.Edges.FirstModifiableEdge == 0
}

// AddTemporaryEdge records a forward edge created by this layer's overlay
// so FindEdgesInEnvelope can surface it without touching the shared index.
func (sl *StreetLayer) AddTemporaryEdge(forward EdgeID) {
	sl.temporaryEdges = append(sl.temporaryEdges, forward)
}

// FindEdgesInEnvelope returns every candidate forward edge whose indexed
// envelope (baseline) or recorded envelope (this overlay's temporary edges)
// intersects env. The baseline spatial index is queried as-is; temporary
// edges are post-unioned so scenario-aware queries stay complete without
// ever mutating the shared index.
func (sl *StreetLayer) FindEdgesInEnvelope(env Envelope) []EdgeID {
	out := sl.Index.Query(env)

	for _, forward := range sl.temporaryEdges {
		c := sl.Edges.Cursor(forward)
		pts := c.FullGeometry(sl.Vertices)
		edgeEnv := EnvelopeOfGeometry(pts)
		if envelopesIntersect(env, edgeEnv) {
			out = append(out, forward)
		}
	}
	return out
}

func envelopesIntersect(a, b Envelope) bool {
	return a.MinLat <= b.MaxLat && a.MaxLat >= b.MinLat &&
		a.MinLon <= b.MaxLon && a.MaxLon >= b.MinLon
}
