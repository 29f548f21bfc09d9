package ingest

import (
	"errors"
	"fmt"
	"math"
	"testing"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/stretchr/testify/require"

	"github.com/Noise-unit/Noise-Map/internal/maplayer"
	"github.com/Noise-unit/Noise-Map/internal/proj"
)

func utmIngestor() *Ingestor {
	return New(NewNormalizer(proj.ForEPSG(32620)), nil, nil)
}

func TestIngestRejectsUnsupportedExtension(t *testing.T) {
	_, err := utmIngestor().Ingest("notes.txt", []byte("hello"))
	require.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestIngestCSV(t *testing.T) {
	csv := "Easting,Northing,LAeq,Site\n" +
		"692408.820,1455508.410,68.5,harbour\n" + // valid, Kingstown
		"NaN,1455508.410,70.0,dropped\n" + // non-finite easting
		"not-a-number,1455508.410,70.0,dropped\n" + // unparseable
		"692500.000,Inf,70.0,dropped\n" + // non-finite northing
		"692409.000,1455509.000,69.1,quay\n"

	res, err := utmIngestor().Ingest("survey.csv", []byte(csv))
	require.NoError(t, err)
	require.Len(t, res.Features, 2)

	f := res.Features[0]
	pt, ok := f.Geometry.(orb.Point)
	require.True(t, ok, "CSV rows become point features")
	require.InDelta(t, -61.2248, pt.Lon(), 1e-4)
	require.InDelta(t, 13.1600, pt.Lat(), 1e-4)

	// Original attributes and provenance tags are preserved.
	require.Equal(t, "harbour", f.Properties["Site"])
	require.Equal(t, "68.5", f.Properties["LAeq"])
	require.Equal(t, "survey.csv", f.Properties[PropSourceFile])
	require.Equal(t, AssumedCRS, f.Properties[PropAssumedCRS])

	_, isMarkers := res.Layer.(*maplayer.MarkerGroup)
	require.True(t, isMarkers)
}

func TestIngestCSVWithoutCoordinateColumns(t *testing.T) {
	_, err := utmIngestor().Ingest("bad.csv", []byte("a,b\n1,2\n"))
	require.ErrorIs(t, err, ErrParse)
}

func TestIngestCSVWithoutProjectionDropsAllRows(t *testing.T) {
	ing := New(NewNormalizer(nil), nil, nil)
	res, err := ing.Ingest("survey.csv", []byte("Easting,Northing\n692408,1455508\n"))
	require.NoError(t, err, "absent reprojection drops rows, it is not a file error")
	require.Empty(t, res.Features)
}

func TestIngestGeoJSON(t *testing.T) {
	doc := `{"type":"FeatureCollection","features":[
		{"type":"Feature","geometry":{"type":"Point","coordinates":[-61.2,13.1]},"properties":{"name":"a"}}
	]}`
	res, err := utmIngestor().Ingest("areas.geojson", []byte(doc))
	require.NoError(t, err)
	require.Len(t, res.Features, 1)
	require.Equal(t, "areas.geojson", res.Features[0].Properties[PropSourceFile])

	_, isShapes := res.Layer.(*maplayer.ShapeLayer)
	require.True(t, isShapes)
}

func TestIngestGeoJSONParseError(t *testing.T) {
	_, err := utmIngestor().Ingest("broken.json", []byte("{oops"))
	require.ErrorIs(t, err, ErrParse)
}

func TestIngestGeoJSONEmptyFeatures(t *testing.T) {
	res, err := utmIngestor().Ingest("empty.geojson", []byte(`{"type":"FeatureCollection"}`))
	require.NoError(t, err)
	require.NotNil(t, res.Features)
	require.Empty(t, res.Features)
}

func TestIngestCustomBuilder(t *testing.T) {
	var builtName string
	build := func(name string, fc *geojson.FeatureCollection) maplayer.Renderable {
		builtName = name
		return &maplayer.RoadsLayer{Collection: fc}
	}
	ing := New(NewNormalizer(nil), nil, build)
	res, err := ing.Ingest("roads.geojson", []byte(`{"type":"FeatureCollection","features":[]}`))
	require.NoError(t, err)
	require.Equal(t, "roads.geojson", builtName)
	require.Equal(t, "roads", res.Layer.Kind())
}

type fakeConverter struct {
	fc  *geojson.FeatureCollection
	err error
}

func (c *fakeConverter) Convert(data []byte) (*geojson.FeatureCollection, error) {
	return c.fc, c.err
}

func TestIngestZipWithoutConverter(t *testing.T) {
	_, err := utmIngestor().Ingest("parcels.zip", []byte("PK"))
	require.ErrorIs(t, err, ErrMissingDependency)
}

func TestIngestZipConversionFailure(t *testing.T) {
	ing := New(NewNormalizer(nil), &fakeConverter{err: fmt.Errorf("no .shp component")}, nil)
	_, err := ing.Ingest("parcels.zip", []byte("PK"))
	require.ErrorIs(t, err, ErrParse)
}

func TestIngestZipSuccess(t *testing.T) {
	fc := geojson.NewFeatureCollection()
	fc.Append(geojson.NewFeature(orb.Point{-61.2, 13.1}))
	ing := New(NewNormalizer(nil), &fakeConverter{fc: fc}, nil)

	res, err := ing.Ingest("parcels.zip", []byte("PK"))
	require.NoError(t, err)
	require.Len(t, res.Features, 1)
	require.Equal(t, "parcels.zip", res.Features[0].Properties[PropSourceFile])
}

type panickyProjection struct{}

func (panickyProjection) ToWGS84(x, y float64) (float64, float64)       { panic("projection crashed") }
func (panickyProjection) FromWGS84(lon, lat float64) (float64, float64) { return 0, 0 }
func (panickyProjection) EPSG() int                                     { return 0 }

type infiniteProjection struct{}

func (infiniteProjection) ToWGS84(x, y float64) (float64, float64)       { return math.Inf(1), 0 }
func (infiniteProjection) FromWGS84(lon, lat float64) (float64, float64) { return 0, 0 }
func (infiniteProjection) EPSG() int                                     { return 0 }

func TestNormalize(t *testing.T) {
	n := NewNormalizer(proj.ForEPSG(32620))
	ll := n.Normalize(692408.820, 1455508.410)
	require.NotNil(t, ll)
	require.InDelta(t, 13.1600, ll.Lat, 1e-4)
	require.InDelta(t, -61.2248, ll.Lon, 1e-4)

	require.Nil(t, n.Normalize(math.NaN(), 1455508.410))
	require.Nil(t, NewNormalizer(nil).Normalize(692408, 1455508), "absent service yields nil")
	require.Nil(t, NewNormalizer(panickyProjection{}).Normalize(1, 2), "a failing service yields nil, never panics")
	require.Nil(t, NewNormalizer(infiniteProjection{}).Normalize(1, 2), "non-finite output yields nil")
}

func TestErrorsAreDistinguishable(t *testing.T) {
	require.False(t, errors.Is(ErrParse, ErrMissingDependency))
	require.False(t, errors.Is(ErrUnsupportedFormat, ErrParse))
}
