// Package transitstops turns a TransitStopTable, a sequence of (stop_id,
// lat, lon) records, into one vertex per stop linked to the baseline street
// graph via linker.CreateAndLinkVertex. It reads only stops.txt out of a
// GTFS feed; routes, trips, stop_times, and mode inference belong to the
// transit graph, which only consumes this package's stop->vertex mapping.
package transitstops

import (
	"archive/zip"
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"strconv"
	"strings"

	"github.com/meridianmobility/streetcore/internal/graph"
	"github.com/meridianmobility/streetcore/internal/linker"
)

// StopRecord is one row of a TransitStopTable.
type StopRecord struct {
	StopID string
	Lat    float64
	Lon    float64
}

// ParseStopsZip extracts stops.txt from a GTFS feed archive and returns one
// StopRecord per row with a valid stop_id/stop_lat/stop_lon. Malformed rows
// are skipped with a warning rather than failing the whole feed.
func ParseStopsZip(zipPath string) ([]StopRecord, error) {
	reader, err := zip.OpenReader(zipPath)
	if err != nil {
		return nil, fmt.Errorf("transitstops: open %s: %w", zipPath, err)
	}
	defer reader.Close()

	for _, file := range reader.File {
		if file.FileInfo().IsDir() || strings.ToLower(baseName(file.Name)) != "stops.txt" {
			continue
		}
		rc, err := file.Open()
		if err != nil {
			return nil, fmt.Errorf("transitstops: open stops.txt: %w", err)
		}
		defer rc.Close()
		return parseStopsFromReader(rc)
	}
	return nil, fmt.Errorf("transitstops: %s contains no stops.txt", zipPath)
}

// baseName strips any path prefix a zip entry carries (GTFS zips rarely
// nest stops.txt in a subdirectory, but entries can still carry one).
func baseName(name string) string {
	if idx := strings.LastIndexAny(name, "/\\"); idx >= 0 {
		return name[idx+1:]
	}
	return name
}

func parseStopsFromReader(reader io.Reader) ([]StopRecord, error) {
	csvReader := csv.NewReader(reader)
	csvReader.TrimLeadingSpace = true

	header, err := csvReader.Read()
	if err != nil {
		return nil, fmt.Errorf("transitstops: read stops.txt header: %w", err)
	}
	colMap := make(map[string]int, len(header))
	for i, col := range header {
		colMap[strings.TrimSpace(col)] = i
	}
	field := func(record []string, name string) string {
		if idx, ok := colMap[name]; ok && idx < len(record) {
			return strings.TrimSpace(record[idx])
		}
		return ""
	}

	var stops []StopRecord
	for {
		record, err := csvReader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			log.Printf("Warning: skipping malformed stops.txt row: %v", err)
			continue
		}

		stopID := field(record, "stop_id")
		latStr := field(record, "stop_lat")
		lonStr := field(record, "stop_lon")
		if stopID == "" || latStr == "" || lonStr == "" {
			log.Printf("Warning: skipping stop with missing required fields: %s", stopID)
			continue
		}

		lat, err := strconv.ParseFloat(latStr, 64)
		if err != nil {
			log.Printf("Warning: invalid latitude for stop %s: %v", stopID, err)
			continue
		}
		lon, err := strconv.ParseFloat(lonStr, 64)
		if err != nil {
			log.Printf("Warning: invalid longitude for stop %s: %v", stopID, err)
			continue
		}

		stops = append(stops, StopRecord{StopID: stopID, Lat: lat, Lon: lon})
	}
	return stops, nil
}

// LinkResult records the outcome of linking one stop to the street layer.
type LinkResult struct {
	StopID  string
	Vertex  graph.VertexID
	Linked  bool // false if no street-side edge could be found to attach to
}

// LinkAll appends one vertex per stop to sl and links it to the street side
// via linker.CreateAndLinkVertex, returning one LinkResult per input record
// in order.
func LinkAll(sl *graph.StreetLayer, stops []StopRecord) []LinkResult {
	results := make([]LinkResult, len(stops))
	for i, s := range stops {
		vertex, linked := linker.CreateAndLinkVertex(sl, s.Lat, s.Lon)
		results[i] = LinkResult{StopID: s.StopID, Vertex: vertex, Linked: linked}
	}
	return results
}

// StopVertexIndex builds the stop-id -> vertex lookup downstream consumers
// (egress table builder, router.ReachedStops via a router.StopMapping
// adapter) need from a batch of LinkResults.
func StopVertexIndex(results []LinkResult) map[string]graph.VertexID {
	index := make(map[string]graph.VertexID, len(results))
	for _, r := range results {
		if r.Linked {
			index[r.StopID] = r.Vertex
		}
	}
	return index
}

// PrecomputedDistanceTable is the boundary input the transit collaborator
// supplies: for each stop, nearby vertex -> distance in millimeters. This
// package only threads it through to callers; computing it is the transit
// layer's responsibility.
type PrecomputedDistanceTable map[string]map[graph.VertexID]int32

// StopIndex implements router.StopMapping over a batch of LinkResults,
// indexing stops by their position in the input slice so a transit layer
// can correlate router.ReachedStops' output back to its own stop list.
type StopIndex struct {
	StopIDs  []string
	vertexOf map[graph.VertexID]int
}

// NewStopIndex builds a StopIndex from LinkAll's output, in input order.
// Unlinked stops keep their slot in StopIDs but are never resolved by
// StopForVertex.
func NewStopIndex(results []LinkResult) *StopIndex {
	idx := &StopIndex{
		StopIDs:  make([]string, len(results)),
		vertexOf: make(map[graph.VertexID]int, len(results)),
	}
	for i, r := range results {
		idx.StopIDs[i] = r.StopID
		if r.Linked {
			idx.vertexOf[r.Vertex] = i
		}
	}
	return idx
}

// StopForVertex implements router.StopMapping.
func (idx *StopIndex) StopForVertex(v graph.VertexID) (int, bool) {
	i, ok := idx.vertexOf[v]
	return i, ok
}
