package graph

import (
	"math"

	"github.com/meridianmobility/streetcore/internal/geo"
)

// EdgeCursor is a lightweight, direction-aware view over a single directed
// edge. It carries no state of its own beyond a store reference and an
// edge id; all accessors translate into indexed column reads, flipping
// endpoints, geometry order, and in/out angle for the odd (backward) member
// of a pair.
type EdgeCursor struct {
	store *EdgeStore
	id    EdgeID
}

// Cursor positions a read-only view over edge id; writes go through the
// EdgeStore's setters.
func (es *EdgeStore) Cursor(id EdgeID) EdgeCursor {
	return EdgeCursor{store: es, id: id}
}

// ID returns the cursor's edge id.
func (c EdgeCursor) ID() EdgeID { return c.id }

// Pair returns the cursor's pair id.
func (c EdgeCursor) Pair() PairID { return PairOf(c.id) }

// Paired returns a cursor over the other direction of this edge's pair.
func (c EdgeCursor) Paired() EdgeCursor { return EdgeCursor{store: c.store, id: Paired(c.id)} }

// From returns the direction-aware origin vertex: the pair's forward
// from-vertex for the even edge, its to-vertex for the odd edge.
func (c EdgeCursor) From() VertexID {
	if IsForward(c.id) {
		return c.store.fromVertex.Get(int(c.Pair()))
	}
	return c.store.toVertex.Get(int(c.Pair()))
}

// To returns the direction-aware destination vertex.
func (c EdgeCursor) To() VertexID {
	if IsForward(c.id) {
		return c.store.toVertex.Get(int(c.Pair()))
	}
	return c.store.fromVertex.Get(int(c.Pair()))
}

// LengthMM returns the pair's shared length in millimeters.
func (c EdgeCursor) LengthMM() int32 {
	return c.store.lengthMM.Get(int(c.Pair()))
}

// SpeedMPS returns this direction's traversal speed in meters per second.
func (c EdgeCursor) SpeedMPS() float64 {
	return c.store.SpeedMPS(c.id)
}

// HasFlag reports whether this direction has all bits of f set.
func (c EdgeCursor) HasFlag(f EdgeFlags) bool {
	return c.store.Flags(c.id).Has(f)
}

// Flags returns this direction's full flag bitset.
func (c EdgeCursor) Flags() EdgeFlags {
	return c.store.Flags(c.id)
}

// WayID returns the pair's source way id.
func (c EdgeCursor) WayID() int64 {
	return c.store.wayID.Get(int(c.Pair()))
}

// HighwayClass returns the pair's highway classification.
func (c EdgeCursor) HighwayClass() HighwayClass {
	return c.store.highway.Get(int(c.Pair()))
}

// InAngle returns this direction's inbound compass angle (signed 8-bit
// binary radians), swapped with OutAngle for the odd edge of a pair.
func (c EdgeCursor) InAngle() int8 {
	if IsForward(c.id) {
		return c.store.inAngle.Get(int(c.Pair()))
	}
	return c.store.outAngle.Get(int(c.Pair()))
}

// OutAngle returns this direction's outbound compass angle.
func (c EdgeCursor) OutAngle() int8 {
	if IsForward(c.id) {
		return c.store.outAngle.Get(int(c.Pair()))
	}
	return c.store.inAngle.Get(int(c.Pair()))
}

// Geometry returns the pair's intermediate points in this direction's
// order, reversed for the odd edge of a pair. The from and to vertices are
// not included; FullGeometry adds them.
func (c EdgeCursor) Geometry() []GeomPoint {
	mid := c.store.geometry.Get(int(c.Pair()))

	out := make([]GeomPoint, 0, len(mid)+2)
	if IsForward(c.id) {
		out = append(out, mid...)
	} else {
		for i := len(mid) - 1; i >= 0; i-- {
			out = append(out, mid[i])
		}
	}
	return out
}

// FullGeometry returns the cursor's complete geometry including endpoints,
// looking up from/to coordinates from vs.
func (c EdgeCursor) FullGeometry(vs *VertexStore) []GeomPoint {
	mid := c.Geometry()
	out := make([]GeomPoint, 0, len(mid)+2)
	out = append(out, GeomPoint{Lat: vs.LatFixed(c.From()), Lon: vs.LonFixed(c.From())})
	out = append(out, mid...)
	out = append(out, GeomPoint{Lat: vs.LatFixed(c.To()), Lon: vs.LonFixed(c.To())})
	return out
}

// ForEachSegment invokes fn(segIdx, lat0, lon0, lat1, lon1) in fixed degrees
// over the cursor's complete geometry (including endpoints).
func ForEachSegment(c EdgeCursor, vs *VertexStore, fn func(segIdx int, lat0, lon0, lat1, lon1 geo.Fixed)) {
	pts := c.FullGeometry(vs)
	for i := 0; i+1 < len(pts); i++ {
		fn(i, pts[i].Lat, pts[i].Lon, pts[i+1].Lat, pts[i+1].Lon)
	}
}

// degreesToAngleByte maps a compass angle in degrees [0, 360) to the
// signed 8-bit binary-radian encoding (256 units per full turn).
func degreesToAngleByte(deg float64) int8 {
	deg = math.Mod(deg, 360)
	if deg < 0 {
		deg += 360
	}
	scaled := int(math.Round(deg / 360 * 256))
	scaled &= 0xFF
	return int8(uint8(scaled))
}

// bearingDegrees returns the compass bearing from (lat0,lon0) to (lat1,lon1).
func bearingDegrees(lat0, lon0, lat1, lon1 geo.Fixed) float64 {
	y0, x0 := lat0.ToFloat()*math.Pi/180, lon0.ToFloat()*math.Pi/180
	y1, x1 := lat1.ToFloat()*math.Pi/180, lon1.ToFloat()*math.Pi/180

	dLon := x1 - x0
	by := math.Sin(dLon) * math.Cos(y1)
	bx := math.Cos(y0)*math.Sin(y1) - math.Sin(y0)*math.Cos(y1)*math.Cos(dLon)
	theta := math.Atan2(by, bx)

	deg := theta * 180 / math.Pi
	if deg < 0 {
		deg += 360
	}
	return deg
}

// CalculateAngles derives the pair's in/out compass angles from the first
// two and last two points of the forward edge's complete geometry, and
// stores them on the pair.
func CalculateAngles(es *EdgeStore, vs *VertexStore, forward EdgeID) error {
	c := es.Cursor(forward)
	pts := c.FullGeometry(vs)
	if len(pts) < 2 {
		return ErrInvalidGeometry
	}

	inDeg := bearingDegrees(pts[0].Lat, pts[0].Lon, pts[1].Lat, pts[1].Lon)
	outDeg := bearingDegrees(pts[len(pts)-2].Lat, pts[len(pts)-2].Lon, pts[len(pts)-1].Lat, pts[len(pts)-1].Lon)

	return es.SetInOutAngle(PairOf(forward), degreesToAngleByte(inDeg), degreesToAngleByte(outDeg))
}
