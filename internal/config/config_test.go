package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadConfigFromEnvDefaults(t *testing.T) {
	cfg := LoadConfigFromEnv()
	require.Equal(t, 200_000, cfg.MaxExploredStates)
	require.Equal(t, 40, cfg.MinComponentSize)
	require.Equal(t, 300.0, cfg.LinkRadiusM)
	require.Equal(t, int32(5000), cfg.SnapRadiusMM)
}

func TestLoadConfigFromEnvOverride(t *testing.T) {
	t.Setenv("STREETCORE_MIN_COMPONENT_SIZE", "12")
	t.Setenv("STREETCORE_SNAP_RADIUS_MM", "1000")

	cfg := LoadConfigFromEnv()
	require.Equal(t, 12, cfg.MinComponentSize)
	require.Equal(t, int32(1000), cfg.SnapRadiusMM)
}
