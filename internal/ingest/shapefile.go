package ingest

import (
	"fmt"
)

// ingestShapefileZip converts a zipped shapefile archive to GeoJSON via
// the injected converter and builds it like any other GeoJSON document.
// Without a converter the file is rejected whole; no partial layer is
// created.
func (ing *Ingestor) ingestShapefileZip(filename string, data []byte) (*Result, error) {
	if ing.convert == nil {
		return nil, fmt.Errorf("%w: %s: no shapefile converter configured", ErrMissingDependency, filename)
	}
	fc, err := ing.convert.Convert(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrParse, filename, err)
	}
	return ing.buildFromCollection(filename, fc), nil
}
