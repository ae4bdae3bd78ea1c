package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mfreeman451/routepath/config"
)

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	cfg, err := config.Load(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	require.NoError(t, err)
	require.Equal(t, config.Default(), cfg)
}

func TestLoad_OverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "routepath.yaml")
	const body = `
overpass_url: "http://localhost:12345/interpreter"
delta: 25
bind_address: "0.0.0.0:9090"
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	cfg, err := config.Load(path)
	require.NoError(t, err)
	require.Equal(t, "http://localhost:12345/interpreter", cfg.OverpassURL)
	require.Equal(t, 25.0, cfg.Delta)
	require.Equal(t, "0.0.0.0:9090", cfg.BindAddress)
	// Untouched fields keep their defaults.
	require.Equal(t, config.Default().NearestNodeRadiusMeters, cfg.NearestNodeRadiusMeters)
}

func TestLoad_MalformedYAMLErrors(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("not: [valid yaml"), 0o644))

	_, err := config.Load(path)
	require.Error(t, err)
}
