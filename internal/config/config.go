// Package config loads the Noise-Map service configuration: the repo
// layer registry, layer grouping and ingestion settings.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/Noise-unit/Noise-Map/internal/service"
)

// Config holds the application configuration.
type Config struct {
	// SourceEPSG is the reference system CSV coordinates are assumed to
	// be in. Defaults to 32620 (UTM Zone 20N, WGS84).
	SourceEPSG int `yaml:"source_epsg"`

	// Layers is the ordered repo layer registry.
	Layers []service.LayerConfig `yaml:"layers"`

	// Groups declares the panel presentation order.
	Groups []service.GroupDefinition `yaml:"groups"`
}

// Default returns the built-in configuration used when no config file is
// present: the standard repository registry for the island deployment.
func Default() *Config {
	return &Config{
		SourceEPSG: 32620,
		Layers: []service.LayerConfig{
			{ID: "municipalities", Name: "Municipalities", Type: service.TypeMunicipality, URL: "https://repo.noise-map.local/layers/municipalities.geojson"},
			{ID: "noise-zones", Name: "Noise Zones", Type: service.TypeZone, URL: "https://repo.noise-map.local/layers/noise-zones.geojson"},
			{ID: "quiet-areas", Name: "Quiet Areas", Type: service.TypeZone, URL: "https://repo.noise-map.local/layers/quiet-areas.geojson"},
			{ID: "roads", Name: "Road Network", Type: service.TypeRoads, URL: "https://repo.noise-map.local/layers/roads.geojson"},
		},
		Groups: []service.GroupDefinition{
			{ID: service.TypeMunicipality, Title: "Municipalities"},
			{ID: service.TypeZone, Title: "Noise Zones"},
			{ID: service.TypeOther, Title: "Other Layers"},
		},
	}
}

// Load reads a YAML configuration file. A missing file is not an error;
// the default configuration is returned instead.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks invariants the rest of the service relies on.
func (c *Config) Validate() error {
	seen := make(map[string]struct{}, len(c.Layers))
	roads := 0
	for _, l := range c.Layers {
		if l.ID == "" {
			return fmt.Errorf("layer %q has no id", l.Name)
		}
		if _, dup := seen[l.ID]; dup {
			return fmt.Errorf("duplicate layer id %q", l.ID)
		}
		seen[l.ID] = struct{}{}
		if l.Type == service.TypeRoads {
			roads++
		}
	}
	if roads > 1 {
		return fmt.Errorf("at most one roads layer is allowed, found %d", roads)
	}
	return nil
}
