package db

import (
	"testing"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

func surveyPoint(props map[string]interface{}) *geojson.Feature {
	f := geojson.NewFeature(orb.Point{-61.22, 13.16})
	for k, v := range props {
		f.Properties[k] = v
	}
	return f
}

func TestMeasurementsFromFeatures(t *testing.T) {
	line := geojson.NewFeature(orb.LineString{{-61.2, 13.1}, {-61.3, 13.2}})
	line.Properties["LAeq"] = "70"

	features := []*geojson.Feature{
		surveyPoint(map[string]interface{}{"Site": "harbour", "LAeq": "62.4"}),
		surveyPoint(map[string]interface{}{"name": "market", "laeq": 55.1}),
		surveyPoint(map[string]interface{}{"Site": "no reading"}),
		surveyPoint(map[string]interface{}{"Site": "bad", "LAeq": "loud"}),
		line,
	}

	ms := MeasurementsFromFeatures(features, "survey.csv")
	if len(ms) != 2 {
		t.Fatalf("expected 2 measurements, got %d", len(ms))
	}

	if ms[0].Site != "harbour" || ms[0].LAeq != 62.4 {
		t.Errorf("unexpected first measurement: %+v", ms[0])
	}
	if ms[1].Site != "market" || ms[1].LAeq != 55.1 {
		t.Errorf("site must fall back to the name property: %+v", ms[1])
	}
	for _, m := range ms {
		if m.SourceFile != "survey.csv" {
			t.Errorf("missing source file on %+v", m)
		}
		if m.Lat != 13.16 || m.Lon != -61.22 {
			t.Errorf("unexpected coordinates on %+v", m)
		}
	}
}
