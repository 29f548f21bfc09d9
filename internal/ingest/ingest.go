// Package ingest turns raw geospatial source files into renderable layers
// and feature lists. Each supported format has its own handler; all of them
// produce the same Result so the registry does not care where a layer came
// from.
package ingest

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/paulmach/orb/geojson"

	"github.com/Noise-unit/Noise-Map/internal/maplayer"
)

// Sentinel errors for the ingestion failure modes. Per-record problems
// (a bad CSV row, a feature outside the projection) are never surfaced as
// errors; they are dropped at the smallest scope.
var (
	// ErrParse indicates structurally invalid file content.
	ErrParse = errors.New("ingest: parse error")

	// ErrMissingDependency indicates a required external conversion
	// service is not available.
	ErrMissingDependency = errors.New("ingest: missing dependency")

	// ErrUnsupportedFormat indicates a file extension no handler accepts.
	ErrUnsupportedFormat = errors.New("ingest: unsupported format")
)

// Result is the uniform output of every format handler: a renderable layer
// handle plus the standard features it contains.
type Result struct {
	Layer    maplayer.Renderable
	Features []*geojson.Feature
}

// ZipConverter converts a zipped shapefile archive into GeoJSON. The
// converter resolves any embedded reference system definition itself.
// May be entirely absent (nil).
type ZipConverter interface {
	Convert(data []byte) (*geojson.FeatureCollection, error)
}

// Builder constructs a renderable layer from a parsed GeoJSON feature
// collection. The map integration owns the handle it returns.
type Builder func(name string, fc *geojson.FeatureCollection) maplayer.Renderable

// ShapeBuilder is the default Builder; it wraps the collection in a
// ShapeLayer handle.
func ShapeBuilder(name string, fc *geojson.FeatureCollection) maplayer.Renderable {
	return &maplayer.ShapeLayer{Collection: fc}
}

// Ingestor dispatches raw file payloads to the handler for their format.
// The zero value is not usable; construct with New.
type Ingestor struct {
	normalizer *Normalizer
	convert    ZipConverter
	build      Builder
}

// New creates an Ingestor. converter may be nil, in which case shapefile
// archives are rejected with ErrMissingDependency. build may be nil, in
// which case ShapeBuilder is used.
func New(normalizer *Normalizer, converter ZipConverter, build Builder) *Ingestor {
	if build == nil {
		build = ShapeBuilder
	}
	return &Ingestor{normalizer: normalizer, convert: converter, build: build}
}

// Ingest selects a handler by the file's extension and runs it.
// Unsupported extensions fail with ErrUnsupportedFormat so a caller
// processing a batch can skip the file and continue.
func (ing *Ingestor) Ingest(filename string, data []byte) (*Result, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv":
		return ing.ingestCSV(filename, data)
	case ".geojson", ".json":
		return ing.GeoJSON(filename, data)
	case ".zip":
		return ing.ingestShapefileZip(filename, data)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(filename))
	}
}
