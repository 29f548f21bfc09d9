// Package service contains the layer state management for the Noise-Map
// backend: the two-partition layer registry, repo layer preloading, label
// field resolution and layer grouping.
package service

import (
	"github.com/paulmach/orb/geojson"

	"github.com/Noise-unit/Noise-Map/internal/maplayer"
)

// Partition identifies one of the two disjoint registry collections.
type Partition string

const (
	// PartitionUploaded holds layers the user ingested from local files.
	PartitionUploaded Partition = "uploaded"

	// PartitionRepo holds layers preloaded from the configured repository.
	PartitionRepo Partition = "repo"
)

// Layer types used by the repo layer registry.
const (
	TypeMunicipality = "municipality"
	TypeZone         = "zone"
	TypeRoads        = "roads"
	TypeOther        = "other"
)

// RoadsLayerID is the reserved id of the road network repo layer. It is
// forced active after preloading and excluded from the grouped panel list.
const RoadsLayerID = "roads"

// Default opacities applied when entries are committed.
const (
	RoadsBaseOpacity       = 0.6
	DefaultRepoOpacity     = 0.7
	DefaultUploadedOpacity = 1.0
)

// LayerConfig declares one repository-provided layer. Configs are read
// from the YAML configuration and are read-only at runtime.
type LayerConfig struct {
	ID         string `json:"id" yaml:"id" doc:"Unique layer identifier" example:"municipalities"`
	Name       string `json:"name" yaml:"name" doc:"Display name" example:"Municipalities"`
	Type       string `json:"type" yaml:"type" enum:"municipality,zone,roads,other" doc:"Layer type"`
	URL        string `json:"url" yaml:"url" doc:"Source document URL"`
	LabelField string `json:"labelField,omitempty" yaml:"label_field" doc:"Explicit label property name"`
	MetaURL    string `json:"metaUrl,omitempty" yaml:"meta_url" doc:"Optional metadata document URL"`
}

// GroupDefinition declares a presentation-order bucket for repo layers.
type GroupDefinition struct {
	ID    string `json:"id" yaml:"id" doc:"Group identifier, matches a layer type"`
	Title string `json:"title" yaml:"title" doc:"Panel heading for the group"`
}

// LayerMeta holds resolved metadata for a registry entry.
type LayerMeta struct {
	Type       string `json:"type" doc:"Layer type"`
	Source     string `json:"source" doc:"Source URL or uploaded file name"`
	LabelField string `json:"labelField,omitempty" doc:"Resolved label property name"`
}

// Entry is one ingested layer in the registry. It is created only by a
// successful ingestion being committed, mutated only through the
// active/opacity setters, and removed only by explicit user action
// (uploaded partition only).
type Entry struct {
	ID       string              `json:"id"`
	Name     string              `json:"name"`
	Layer    maplayer.Renderable `json:"-"`
	Features []*geojson.Feature  `json:"-"`
	Active   bool                `json:"active"`
	Opacity  float64             `json:"opacity"`
	Meta     LayerMeta           `json:"meta"`
}
