package ingest

import (
	"fmt"

	"github.com/paulmach/orb/geojson"
)

// GeoJSON parses a standard FeatureCollection. The content is assumed to
// already be in geographic coordinates; no reprojection is performed.
// Used for both user uploads and repo layer documents.
func (ing *Ingestor) GeoJSON(filename string, data []byte) (*Result, error) {
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrParse, filename, err)
	}
	return ing.buildFromCollection(filename, fc), nil
}

// buildFromCollection runs the injected layer builder and tags every
// feature with its source file.
func (ing *Ingestor) buildFromCollection(filename string, fc *geojson.FeatureCollection) *Result {
	features := fc.Features
	if features == nil {
		features = []*geojson.Feature{}
	}
	for _, f := range features {
		if f.Properties == nil {
			f.Properties = geojson.Properties{}
		}
		f.Properties[PropSourceFile] = filename
	}
	return &Result{
		Layer:    ing.build(filename, fc),
		Features: features,
	}
}
