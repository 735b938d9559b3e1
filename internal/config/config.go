// Package config centralizes the environment-variable-driven tunables that
// would otherwise be scattered as one-off free functions: one Config struct,
// one LoadConfigFromEnv constructor, one getEnv family of helpers, following
// the same pattern internal/storeio and internal/speedtable use for their
// own connection configs.
package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds the street-routing core's tunables as read from the
// environment: search safety valves, island-pruning threshold, and the
// linker's search/snap radii. The router, island and linker packages do not
// read a Config; each uses its own constant with the same default
// (router.DefaultMaxExploredStates, island.MinComponentSize,
// linker.SnapRadiusMM and a 300m link radius). A loaded value takes effect
// only where a caller copies it in, as with StreetRouter.MaxExploredStates.
type Config struct {
	// MaxExploredStates is the state-count bound for a single
	// router.Route() call so a pathological query (disconnected
	// destination, huge limit) cannot explore unboundedly. Mirrors
	// MAX_EXPLORED_NODES.
	MaxExploredStates int

	// SearchTimeout is a wall-clock budget a caller may enforce around a
	// Route() call via context; the router itself is synchronous and
	// does not consult this directly. Mirrors ROUTE_TIMEOUT.
	SearchTimeout time.Duration

	// MinComponentSize is the strong-component size below which island.Prune
	// strips a mode's permission flags.
	MinComponentSize int

	// LinkRadiusM is the search radius for projecting a coordinate
	// (defaults to 300m, the radius GetOrCreateVertexNear and
	// StreetRouter.SetOriginLatLon use).
	LinkRadiusM float64

	// SnapRadiusMM is the distance below which a projection snaps to an
	// existing endpoint vertex instead of creating a splitter (defaults to
	// 5000mm).
	SnapRadiusMM int32
}

// LoadConfigFromEnv loads the core's tunables from the environment, falling
// back to sensible defaults for anything unset or unparsable.
func LoadConfigFromEnv() *Config {
	return &Config{
		MaxExploredStates: getEnvInt("STREETCORE_MAX_EXPLORED_STATES", 200_000),
		SearchTimeout:     getEnvDuration("STREETCORE_SEARCH_TIMEOUT", 10*time.Second),
		MinComponentSize:  getEnvInt("STREETCORE_MIN_COMPONENT_SIZE", 40),
		LinkRadiusM:       getEnvFloat("STREETCORE_LINK_RADIUS_M", 300.0),
		SnapRadiusMM:      int32(getEnvInt("STREETCORE_SNAP_RADIUS_MM", 5000)),
	}
}

func getEnvInt(key string, defaultValue int) int {
	if val := os.Getenv(key); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if val := os.Getenv(key); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return defaultValue
}
