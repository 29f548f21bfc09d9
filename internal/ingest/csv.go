package ingest

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/Noise-unit/Noise-Map/internal/maplayer"
)

// AssumedCRS is the reference system CSV coordinates are assumed to be in.
const AssumedCRS = "EPSG:32620"

// Provenance property keys attached to every ingested feature.
const (
	PropSourceFile = "sourceFile"
	PropAssumedCRS = "assumedCRS"
)

// ingestCSV parses a tabular file with Easting/Northing columns into a
// point layer. Rows with non-finite coordinates or coordinates the
// normalizer rejects are silently dropped; all other row attributes are
// preserved as feature properties.
func (ing *Ingestor) ingestCSV(filename string, data []byte) (*Result, error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.TrimLeadingSpace = true
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrParse, filename, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: %s: empty file", ErrParse, filename)
	}

	header := records[0]
	eastIdx, northIdx := -1, -1
	for i, h := range header {
		switch strings.ToLower(strings.TrimSpace(h)) {
		case "easting":
			eastIdx = i
		case "northing":
			northIdx = i
		}
	}
	if eastIdx == -1 || northIdx == -1 {
		return nil, fmt.Errorf("%w: %s: Easting/Northing columns not found", ErrParse, filename)
	}

	var features []*geojson.Feature
	for _, row := range records[1:] {
		if eastIdx >= len(row) || northIdx >= len(row) {
			continue
		}
		easting, err1 := strconv.ParseFloat(strings.TrimSpace(row[eastIdx]), 64)
		northing, err2 := strconv.ParseFloat(strings.TrimSpace(row[northIdx]), 64)
		if err1 != nil || err2 != nil || !isFinite(easting) || !isFinite(northing) {
			continue
		}
		ll := ing.normalizer.Normalize(easting, northing)
		if ll == nil {
			continue
		}

		f := geojson.NewFeature(orb.Point{ll.Lon, ll.Lat})
		for i, name := range header {
			if i < len(row) {
				f.Properties[name] = row[i]
			}
		}
		f.Properties[PropSourceFile] = filename
		f.Properties[PropAssumedCRS] = AssumedCRS
		features = append(features, f)
	}

	return &Result{
		Layer:    &maplayer.MarkerGroup{Features: features},
		Features: features,
	}, nil
}
