// Package linker projects geographic coordinates onto the street layer,
// splitting edges and allocating vertices as needed to attach an
// origin/destination or a transit stop to the routable graph.
package linker

import (
	"errors"
	"math"

	"github.com/meridianmobility/streetcore/internal/geo"
	"github.com/meridianmobility/streetcore/internal/graph"
)

// ErrNoSplitFound is returned by Find when no permitted, linkable edge lies
// within the search radius.
var ErrNoSplitFound = errors.New("linker: no edge found within radius")

// SnapRadiusMM is the distance below which a projected point is snapped to
// an existing endpoint vertex instead of creating a new splitter vertex.
const SnapRadiusMM = 5000

// defaultLinkRadiusM is the search radius used by GetOrCreateVertexNear.
// StreetRouter.SetOriginLatLon passes the same 300m value itself.
const defaultLinkRadiusM = 300.0

// Split describes the result of projecting a coordinate onto an edge: which
// directed pair it landed on, how far along the pair (in both directions),
// and how far away the original coordinate was.
type Split struct {
	Edge            graph.EdgeID
	DistanceToEdgeM float64
	Distance0MM     int32
	Distance1MM     int32
	Fraction        float64
	ProjectedLat    geo.Fixed
	ProjectedLon    geo.Fixed
}

// Find locates the nearest forward edge permitted for mode within radiusM of
// (lat, lon), skipping LINK edges and edges that are not LINKABLE or lack
// the mode's permission in either direction.
func Find(sl *graph.StreetLayer, latDegrees, lonDegrees, radiusM float64, mode graph.Mode) (*Split, error) {
	target := geo.Point{X: lonDegrees, Y: latDegrees}
	cosLat := geo.CosLat(latDegrees)
	if cosLat < 1e-6 {
		cosLat = 1e-6
	}

	dLat := radiusM / geo.MetersPerDegreeLat
	dLon := radiusM / (geo.MetersPerDegreeLat * cosLat)

	env := graph.Envelope{
		MinLat: geo.ToFixed(latDegrees - dLat),
		MaxLat: geo.ToFixed(latDegrees + dLat),
		MinLon: geo.ToFixed(lonDegrees - dLon),
		MaxLon: geo.ToFixed(lonDegrees + dLon),
	}

	candidates := sl.FindEdgesInEnvelope(env)
	radiusFixed := radiusM / geo.MetersPerDegreeLat * geo.FixedFactor

	var (
		bestSq     = math.MaxFloat64
		bestEdge   graph.EdgeID
		bestFound  bool
		bestSeg    int
		bestT      float64
	)

	for _, forward := range candidates {
		c := sl.Edges.Cursor(forward)
		if c.HasFlag(graph.FlagLink) {
			continue
		}
		if !pairIsLinkableForMode(c, mode) {
			continue
		}

		pts := c.FullGeometry(sl.Vertices)
		for seg := 0; seg+1 < len(pts); seg++ {
			a := geo.Point{X: pts[seg].Lon.ToFloat(), Y: pts[seg].Lat.ToFloat()}
			b := geo.Point{X: pts[seg+1].Lon.ToFloat(), Y: pts[seg+1].Lat.ToFloat()}
			segCosLat := geo.CosLat((a.Y + b.Y) / 2)

			t := geo.SegmentFraction(a, b, target, segCosLat)
			sq := geo.SquaredPlanarDistanceFixed(
				geo.Point{X: a.X * geo.FixedFactor, Y: a.Y * geo.FixedFactor},
				geo.Point{X: b.X * geo.FixedFactor, Y: b.Y * geo.FixedFactor},
				t,
				target.X*geo.FixedFactor, target.Y*geo.FixedFactor,
				segCosLat,
			)

			if sq < bestSq || (sq == bestSq && bestFound && forward < bestEdge) {
				bestSq = sq
				bestEdge = forward
				bestFound = true
				bestSeg = seg
				bestT = t
			}
		}
	}

	if !bestFound || bestSq > radiusFixed*radiusFixed {
		return nil, ErrNoSplitFound
	}

	return buildSplit(sl, bestEdge, bestSeg, bestT, math.Sqrt(bestSq)/geo.FixedFactor*geo.MetersPerDegreeLat)
}

// FindOnEdge performs the same projection math as Find against a single
// caller-supplied edge, without the spatial query or the permission/LINK
// filter — used when linking to a specific edge (e.g. park-and-ride).
func FindOnEdge(sl *graph.StreetLayer, latDegrees, lonDegrees float64, forward graph.EdgeID) (*Split, error) {
	c := sl.Edges.Cursor(forward)
	pts := c.FullGeometry(sl.Vertices)
	target := geo.Point{X: lonDegrees, Y: latDegrees}

	bestSq := math.MaxFloat64
	bestSeg := 0
	bestT := 0.0

	for seg := 0; seg+1 < len(pts); seg++ {
		a := geo.Point{X: pts[seg].Lon.ToFloat(), Y: pts[seg].Lat.ToFloat()}
		b := geo.Point{X: pts[seg+1].Lon.ToFloat(), Y: pts[seg+1].Lat.ToFloat()}
		segCosLat := geo.CosLat((a.Y + b.Y) / 2)

		t := geo.SegmentFraction(a, b, target, segCosLat)
		sq := geo.SquaredPlanarDistanceFixed(
			geo.Point{X: a.X * geo.FixedFactor, Y: a.Y * geo.FixedFactor},
			geo.Point{X: b.X * geo.FixedFactor, Y: b.Y * geo.FixedFactor},
			t,
			target.X*geo.FixedFactor, target.Y*geo.FixedFactor,
			segCosLat,
		)
		if sq < bestSq {
			bestSq = sq
			bestSeg = seg
			bestT = t
		}
	}

	return buildSplit(sl, forward, bestSeg, bestT, math.Sqrt(bestSq)/geo.FixedFactor*geo.MetersPerDegreeLat)
}

func buildSplit(sl *graph.StreetLayer, forward graph.EdgeID, seg int, t float64, distanceM float64) (*Split, error) {
	c := sl.Edges.Cursor(forward)
	pts := c.FullGeometry(sl.Vertices)

	var cumulativeM float64
	for i := 0; i < seg; i++ {
		cumulativeM += geo.PlanarDistanceMeters(pts[i].Lat.ToFloat(), pts[i].Lon.ToFloat(), pts[i+1].Lat.ToFloat(), pts[i+1].Lon.ToFloat())
	}
	segLenM := geo.PlanarDistanceMeters(pts[seg].Lat.ToFloat(), pts[seg].Lon.ToFloat(), pts[seg+1].Lat.ToFloat(), pts[seg+1].Lon.ToFloat())
	cumulativeM += segLenM * t

	lengthMM := c.LengthMM()
	distance0MM := int32(math.Round(cumulativeM * 1000))
	if distance0MM < 0 {
		distance0MM = 0
	}
	if distance0MM > lengthMM {
		distance0MM = lengthMM
	}
	distance1MM := lengthMM - distance0MM

	projLat := pts[seg].Lat + geo.Fixed(float64(pts[seg+1].Lat-pts[seg].Lat)*t)
	projLon := pts[seg].Lon + geo.Fixed(float64(pts[seg+1].Lon-pts[seg].Lon)*t)

	return &Split{
		Edge:            forward,
		DistanceToEdgeM: distanceM,
		Distance0MM:     distance0MM,
		Distance1MM:     distance1MM,
		Fraction:        t,
		ProjectedLat:    projLat,
		ProjectedLon:    projLon,
	}, nil
}

// pairIsLinkableForMode reports whether both directions of c's pair carry
// the LINKABLE flag and the mode's permission flag — the filter find()
// applies before considering an edge as a candidate for linking.
func pairIsLinkableForMode(c graph.EdgeCursor, mode graph.Mode) bool {
	permission := mode.PermissionFlag()
	fwdOK := c.HasFlag(graph.FlagLinkable) && c.HasFlag(permission)
	bwdOK := c.Paired().HasFlag(graph.FlagLinkable) && c.Paired().HasFlag(permission)
	return fwdOK && bwdOK
}

// GetOrCreateVertexNear finds the nearest permitted edge within 300m of
// (lat, lon) and returns a vertex at or near that point, splitting the edge
// pair if the projection doesn't land within SnapRadiusMM of an existing
// endpoint. Returns false if no split was found within radius.
func GetOrCreateVertexNear(sl *graph.StreetLayer, latDegrees, lonDegrees float64, mode graph.Mode) (graph.VertexID, bool) {
	split, err := Find(sl, latDegrees, lonDegrees, defaultLinkRadiusM, mode)
	if err != nil {
		return 0, false
	}
	return vertexForSplit(sl, split), true
}

func vertexForSplit(sl *graph.StreetLayer, split *Split) graph.VertexID {
	c := sl.Edges.Cursor(split.Edge)
	fromV := c.From()
	toV := c.To()

	if split.Distance0MM < SnapRadiusMM {
		return fromV
	}
	if split.Distance1MM < SnapRadiusMM {
		return toV
	}

	splitter := sl.Vertices.AddVertex(split.ProjectedLat.ToFloat(), split.ProjectedLon.ToFloat())
	splitPair(sl, split.Edge, splitter, split.Distance0MM, split.Distance1MM)
	return splitter
}

// splitPair performs the shorten-and-append mutation described for
// get_or_create_vertex_near: if the pair is mutable in this layer (baseline
// layer, or created by this overlay), it is shortened in place and a new
// trailing pair is appended. If the pair is immutable baseline inside an
// overlay, the original pair is left untouched, two fresh pairs are created
// to stand in for it, and the original is recorded as temporarily deleted.
func splitPair(sl *graph.StreetLayer, forward graph.EdgeID, splitter graph.VertexID, distance0MM, distance1MM int32) {
	es := sl.Edges
	pair := graph.PairOf(forward)
	c := es.Cursor(forward)
	fromV := c.From()
	toV := c.To()
	fwdFlags := c.Flags()
	bwdFlags := c.Paired().Flags()
	fwdSpeed := c.SpeedMPS()
	bwdSpeed := c.Paired().SpeedMPS()
	wayID := c.WayID()
	highway := c.HighwayClass()

	if !es.IsImmutable(pair) {
		_ = es.SetEndpoints(pair, fromV, splitter)
		_ = es.SetLengthMM(pair, distance0MM)
		_ = es.SetGeometry(pair, nil)

		newForward, err := es.AddEdgePair(splitter, toV, distance1MM, wayID)
		if err != nil {
			return
		}
		_ = es.SetFlags(newForward, fwdFlags)
		_ = es.SetFlags(graph.Paired(newForward), bwdFlags)
		_ = es.SetSpeedMPS(newForward, fwdSpeed)
		_ = es.SetSpeedMPS(graph.Paired(newForward), bwdSpeed)
		_ = es.SetHighwayClass(graph.PairOf(newForward), highway)
		return
	}

	firstForward, err := es.AddEdgePair(fromV, splitter, distance0MM, wayID)
	if err != nil {
		return
	}
	_ = es.SetFlags(firstForward, fwdFlags)
	_ = es.SetFlags(graph.Paired(firstForward), bwdFlags)
	_ = es.SetSpeedMPS(firstForward, fwdSpeed)
	_ = es.SetSpeedMPS(graph.Paired(firstForward), bwdSpeed)
	_ = es.SetHighwayClass(graph.PairOf(firstForward), highway)

	secondForward, err := es.AddEdgePair(splitter, toV, distance1MM, wayID)
	if err != nil {
		return
	}
	_ = es.SetFlags(secondForward, fwdFlags)
	_ = es.SetFlags(graph.Paired(secondForward), bwdFlags)
	_ = es.SetSpeedMPS(secondForward, fwdSpeed)
	_ = es.SetSpeedMPS(graph.Paired(secondForward), bwdSpeed)
	_ = es.SetHighwayClass(graph.PairOf(secondForward), highway)

	es.TemporarilyDeletedEdges[pair] = true
	sl.AddTemporaryEdge(firstForward)
	sl.AddTemporaryEdge(secondForward)
}

// CreateAndLinkVertex unconditionally appends a new vertex at (lat, lon) and
// connects it to the street side via GetOrCreateVertexNear with a
// 1mm LINK edge pair permitting every mode (the store rejects a zero
// length). Used for transit stops.
func CreateAndLinkVertex(sl *graph.StreetLayer, latDegrees, lonDegrees float64) (graph.VertexID, bool) {
	stopVertex := sl.Vertices.AddVertex(latDegrees, lonDegrees)

	streetVertex, ok := GetOrCreateVertexNear(sl, latDegrees, lonDegrees, graph.ModeWalk)
	if !ok {
		return stopVertex, false
	}

	forward, err := sl.Edges.AddEdgePair(stopVertex, streetVertex, 1, -1)
	if err != nil {
		return stopVertex, false
	}
	linkFlags := graph.FlagLink | graph.FlagAllowsCar | graph.FlagAllowsBike | graph.FlagAllowsPedestrian
	_ = sl.Edges.SetFlags(forward, linkFlags)
	_ = sl.Edges.SetFlags(graph.Paired(forward), linkFlags)

	if sl.Edges.IsImmutable(graph.PairOf(forward)) {
		sl.AddTemporaryEdge(forward)
	}

	return stopVertex, true
}
