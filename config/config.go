// Package config decodes the YAML configuration file accepted by the CLI
// and HTTP drivers, grounded on udisondev-la2go/internal/config's
// struct-plus-defaults pattern.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/mfreeman451/routepath/deltastep"
)

// Config holds every tunable the drivers need that spec.md leaves to the
// "out of scope" CLI/HTTP layer: the map-data endpoint, timeouts, the
// delta-stepping bucket width, the nearest-node search radius, and the
// HTTP server bind address.
type Config struct {
	// OverpassURL is the map-data query endpoint (spec.md §6).
	OverpassURL string `yaml:"overpass_url"`
	// HTTPTimeoutSeconds bounds the single-attempt map-data fetch.
	HTTPTimeoutSeconds int `yaml:"http_timeout_seconds"`
	// Delta is the default delta-stepping bucket width (spec.md §4.6).
	Delta float64 `yaml:"delta"`
	// NearestNodeRadiusMeters is the fixed search radius for the
	// nearest-node query (spec.md §6: "a fixed 50 m radius").
	NearestNodeRadiusMeters float64 `yaml:"nearest_node_radius_meters"`
	// BindAddress is where cmd/routeserver listens.
	BindAddress string `yaml:"bind_address"`
}

// Default returns the built-in configuration used when no file is given
// or the given path does not exist.
func Default() Config {
	return Config{
		OverpassURL:             "https://overpass-api.de/api/interpreter",
		HTTPTimeoutSeconds:      30,
		Delta:                   deltastep.DefaultDelta,
		NearestNodeRadiusMeters: 50.0,
		BindAddress:             "127.0.0.1:8080",
	}
}

// Load reads path as YAML over Default()'s values. A missing file is not
// an error: Load returns the defaults unchanged, matching the CLI's
// "-config is optional" contract.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("config: reading %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("config: parsing %s: %w", path, err)
	}

	return cfg, nil
}
