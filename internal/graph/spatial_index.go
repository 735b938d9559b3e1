package graph

import "github.com/meridianmobility/streetcore/internal/geo"

// Envelope is an axis-aligned bounding box in fixed-degree coordinates.
type Envelope struct {
	MinLat, MinLon geo.Fixed
	MaxLat, MaxLon geo.Fixed
}

// ExpandedByMeters returns a copy of env grown by radiusM meters in every
// direction, converting meters to fixed-degree units via the planar
// approximation (latitude directly, longitude compressed by cosLat at the
// envelope's center).
func (env Envelope) ExpandedByMeters(radiusM float64) Envelope {
	centerLat := (env.MinLat.ToFloat() + env.MaxLat.ToFloat()) / 2
	cosLat := geo.CosLat(centerLat)
	if cosLat < 1e-6 {
		cosLat = 1e-6
	}

	dLat := geo.ToFixed(radiusM / geo.MetersPerDegreeLat)
	dLon := geo.ToFixed(radiusM / (geo.MetersPerDegreeLat * cosLat))

	return Envelope{
		MinLat: env.MinLat - dLat,
		MaxLat: env.MaxLat + dLat,
		MinLon: env.MinLon - dLon,
		MaxLon: env.MaxLon + dLon,
	}
}

// EnvelopeOfPoint returns a zero-area envelope at a single point.
func EnvelopeOfPoint(lat, lon geo.Fixed) Envelope {
	return Envelope{MinLat: lat, MaxLat: lat, MinLon: lon, MaxLon: lon}
}

// EnvelopeOfGeometry returns the bounding envelope of a point sequence.
func EnvelopeOfGeometry(pts []GeomPoint) Envelope {
	env := EnvelopeOfPoint(pts[0].Lat, pts[0].Lon)
	for _, p := range pts[1:] {
		if p.Lat < env.MinLat {
			env.MinLat = p.Lat
		}
		if p.Lat > env.MaxLat {
			env.MaxLat = p.Lat
		}
		if p.Lon < env.MinLon {
			env.MinLon = p.Lon
		}
		if p.Lon > env.MaxLon {
			env.MaxLon = p.Lon
		}
	}
	return env
}

// cellKey identifies one bucket of the fixed-bucket hash grid.
type cellKey struct {
	cx, cy int32
}

// SpatialIndex is a fixed-bucket hash grid keyed on fixed-degree envelopes,
// used to find candidate forward edges near a query envelope. It may
// over-approximate (return edges whose envelope merely shares a cell with
// the query) but never under-approximates.
type SpatialIndex struct {
	cellSizeFixed int32
	cells         map[cellKey][]EdgeID
}

// DefaultCellSizeDegrees is ~0.005 degrees (~500m near the equator), chosen
// to keep typical nearest-edge queries within a handful of cells.
const DefaultCellSizeDegrees = 0.005

// NewSpatialIndex returns an empty grid with the given cell size in fixed
// degrees.
func NewSpatialIndex(cellSizeDegrees float64) *SpatialIndex {
	return &SpatialIndex{
		cellSizeFixed: int32(geo.ToFixed(cellSizeDegrees)),
		cells:         make(map[cellKey][]EdgeID),
	}
}

func (si *SpatialIndex) cellOf(lat, lon geo.Fixed) cellKey {
	return cellKey{
		cx: int32(lon) / si.cellSizeFixed,
		cy: int32(lat) / si.cellSizeFixed,
	}
}

// Insert adds id to every cell intersecting geometry's envelope. Only
// forward (even) edges from the baseline graph are expected to be inserted;
// temporary scenario edges are never indexed (see FindEdgesInEnvelope).
func (si *SpatialIndex) Insert(env Envelope, id EdgeID) {
	minCell := si.cellOf(env.MinLat, env.MinLon)
	maxCell := si.cellOf(env.MaxLat, env.MaxLon)

	for cy := minCell.cy; cy <= maxCell.cy; cy++ {
		for cx := minCell.cx; cx <= maxCell.cx; cx++ {
			key := cellKey{cx: cx, cy: cy}
			si.cells[key] = append(si.cells[key], id)
		}
	}
}

// Query returns the de-duplicated set of candidate edge ids for every cell
// intersecting env. The result may contain false positives.
func (si *SpatialIndex) Query(env Envelope) []EdgeID {
	minCell := si.cellOf(env.MinLat, env.MinLon)
	maxCell := si.cellOf(env.MaxLat, env.MaxLon)

	seen := make(map[EdgeID]bool)
	var out []EdgeID

	for cy := minCell.cy; cy <= maxCell.cy; cy++ {
		for cx := minCell.cx; cx <= maxCell.cx; cx++ {
			key := cellKey{cx: cx, cy: cy}
			for _, id := range si.cells[key] {
				if !seen[id] {
					seen[id] = true
					out = append(out, id)
				}
			}
		}
	}
	return out
}
