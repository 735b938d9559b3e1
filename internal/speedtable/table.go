// Package speedtable implements an optional time-banded traversal-time
// override that a real-time feed may swap in while queries run, shared by a
// reader/writer lock so any number of concurrent queries can read it
// lock-free for their lifetime while a background updater periodically
// replaces the whole table.
package speedtable

import (
	"sync"

	"github.com/meridianmobility/streetcore/internal/graph"
)

// BinsPerDay is the number of 15-minute time-of-day bins a Table indexes.
const BinsPerDay = 96

// secondsPerBin is the width of one time-of-day bin in seconds (15 minutes).
const secondsPerBin = 900

// Table maps an edge id to 96 speed values in km/h, one per 15-minute
// time-of-day bin. A zero entry at a given bin means "no override for this
// bin"; lookups fall through to the default calculator in that case.
type Table struct {
	Speeds map[graph.EdgeID][BinsPerDay]int16
}

// NewTable returns an empty table (every edge falls through to the default
// calculator).
func NewTable() *Table {
	return &Table{Speeds: make(map[graph.EdgeID][BinsPerDay]int16)}
}

// binIndex computes the 15-minute bin for a time-of-day offset:
// (fromTimeS + elapsedS) / 900 mod 96.
func binIndex(fromTimeS, elapsedS float64) int {
	bin := int((fromTimeS + elapsedS) / secondsPerBin)
	bin %= BinsPerDay
	if bin < 0 {
		bin += BinsPerDay
	}
	return bin
}

// TraversalSeconds returns the banded-override traversal time for edge e at
// the given query time-of-day, and whether an override exists. It converts
// the banded km/h speed to a traversal time in seconds with
// length_m * 3600 / speed_kmh / 1000, the unit this module's Calculator
// interface expects everywhere else.
func (t *Table) TraversalSeconds(e graph.EdgeID, lengthMM int32, fromTimeS, elapsedS float64) (float64, bool) {
	bins, ok := t.Speeds[e]
	if !ok {
		return 0, false
	}
	bin := binIndex(fromTimeS, elapsedS)
	speedKMH := bins[bin]
	if speedKMH <= 0 {
		return 0, false
	}
	lengthM := float64(lengthMM) / 1000
	seconds := lengthM * 3600 / float64(speedKMH) / 1000
	return seconds, true
}

// Store guards the current Table behind a sync.RWMutex: Current holds the
// read lock only while it reads the pointer, and a query keeps the snapshot
// it took at query start (Replace installs a new table and never mutates the
// old one); the background updater takes the write lock only for the
// instant it swaps the pointer.
type Store struct {
	mu    sync.RWMutex
	table *Table
}

// NewStore returns a Store seeded with an empty table.
func NewStore() *Store {
	return &Store{table: NewTable()}
}

// Current returns the table reference in effect right now. Callers should
// call this once per query and keep using the returned pointer, rather than
// calling it again mid-query, so an in-flight query is unaffected by a
// concurrent Replace.
func (s *Store) Current() *Table {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.table
}

// Replace atomically swaps in a newly-fetched table. Called only by the
// background updater.
func (s *Store) Replace(t *Table) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.table = t
}
