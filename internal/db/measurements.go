package db

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// Measurement is one noise survey reading destined for the measurements
// table.
type Measurement struct {
	Site       string
	LAeq       float64
	Lat        float64
	Lon        float64
	SourceFile string
}

// MeasurementsFromFeatures extracts survey readings from ingested point
// features. A feature without an LAeq value is not a measurement and is
// skipped.
func MeasurementsFromFeatures(features []*geojson.Feature, sourceFile string) []Measurement {
	var out []Measurement
	for _, f := range features {
		if m, ok := measurementFromFeature(f, sourceFile); ok {
			out = append(out, m)
		}
	}
	return out
}

func measurementFromFeature(f *geojson.Feature, sourceFile string) (Measurement, bool) {
	pt, ok := f.Geometry.(orb.Point)
	if !ok {
		return Measurement{}, false
	}
	laeq, ok := floatProp(f.Properties, "laeq")
	if !ok {
		return Measurement{}, false
	}
	site, ok := stringProp(f.Properties, "site")
	if !ok {
		site, _ = stringProp(f.Properties, "name")
	}
	return Measurement{
		Site:       site,
		LAeq:       laeq,
		Lat:        pt.Lat(),
		Lon:        pt.Lon(),
		SourceFile: sourceFile,
	}, true
}

// propValue matches property names case-insensitively; CSV headers arrive
// with whatever casing the surveyor used.
func propValue(props geojson.Properties, name string) (interface{}, bool) {
	for k, v := range props {
		if strings.EqualFold(k, name) {
			return v, true
		}
	}
	return nil, false
}

func floatProp(props geojson.Properties, name string) (float64, bool) {
	v, ok := propValue(props, name)
	if !ok {
		return 0, false
	}
	switch val := v.(type) {
	case float64:
		return val, true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	}
	return 0, false
}

func stringProp(props geojson.Properties, name string) (string, bool) {
	v, ok := propValue(props, name)
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// InsertMeasurements appends survey readings to the measurements table.
func InsertMeasurements(ctx context.Context, conn *sql.DB, ms []Measurement) error {
	stmt, err := conn.PrepareContext(ctx,
		"INSERT INTO measurements (site, laeq, lat, lon, source_file) VALUES (?, ?, ?, ?, ?)")
	if err != nil {
		return fmt.Errorf("failed to prepare measurement insert: %w", err)
	}
	defer stmt.Close()

	for _, m := range ms {
		if _, err := stmt.ExecContext(ctx, m.Site, m.LAeq, m.Lat, m.Lon, m.SourceFile); err != nil {
			return fmt.Errorf("failed to insert measurement: %w", err)
		}
	}
	return nil
}
