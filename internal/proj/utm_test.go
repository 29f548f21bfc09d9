package proj

import (
	"math"
	"testing"
)

// Reference values computed with the standard Snyder UTM series for
// EPSG:32620 (UTM Zone 20N, WGS84).
var utmCases = []struct {
	name     string
	easting  float64
	northing float64
	lon      float64
	lat      float64
}{
	{"kingstown", 692408.820, 1455508.410, -61.2248, 13.1600},
	{"charlotte_amalie", 295977.370, 2029094.721, -64.9307, 18.3419},
	{"saint_john", 259716.589, 5017877.072, -66.0633, 45.2733},
	{"origin", 500000.0, 0.0, -63.0, 0.0},
}

func TestUTM20NToWGS84(t *testing.T) {
	p := &UTM20N{}
	for _, tc := range utmCases {
		lon, lat := p.ToWGS84(tc.easting, tc.northing)
		if math.Abs(lon-tc.lon) > 1e-5 || math.Abs(lat-tc.lat) > 1e-5 {
			t.Errorf("%s: ToWGS84(%f, %f) = (%f, %f), want (%f, %f)",
				tc.name, tc.easting, tc.northing, lon, lat, tc.lon, tc.lat)
		}
	}
}

func TestUTM20NRoundTrip(t *testing.T) {
	p := &UTM20N{}
	for _, tc := range utmCases {
		e, n := p.FromWGS84(tc.lon, tc.lat)
		lon, lat := p.ToWGS84(e, n)
		if math.Abs(lon-tc.lon) > 1e-8 || math.Abs(lat-tc.lat) > 1e-8 {
			t.Errorf("%s: round trip drifted to (%f, %f)", tc.name, lon, lat)
		}
	}
}

func TestForEPSG(t *testing.T) {
	if p := ForEPSG(32620); p == nil || p.EPSG() != 32620 {
		t.Error("expected UTM20N for EPSG 32620")
	}
	if p := ForEPSG(4326); p == nil || p.EPSG() != 4326 {
		t.Error("expected identity for EPSG 4326")
	}
	if p := ForEPSG(9999); p != nil {
		t.Errorf("expected nil for unsupported EPSG, got %v", p)
	}
}

func TestWGS84Identity(t *testing.T) {
	p := &WGS84Identity{}
	lon, lat := p.ToWGS84(-61.5, 13.2)
	if lon != -61.5 || lat != 13.2 {
		t.Errorf("identity changed coordinates: (%f, %f)", lon, lat)
	}
}
