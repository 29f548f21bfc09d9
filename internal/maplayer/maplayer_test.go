package maplayer

import (
	"testing"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

func TestOptionalCapabilities(t *testing.T) {
	var markers Renderable = &MarkerGroup{}
	var roads Renderable = &RoadsLayer{}

	if _, ok := markers.(OpacitySetter); !ok {
		t.Error("MarkerGroup should support SetOpacity")
	}
	if _, ok := markers.(ZoomStyler); ok {
		t.Error("MarkerGroup should not support UpdateZoomStyles")
	}
	if _, ok := roads.(ZoomStyler); !ok {
		t.Error("RoadsLayer should support UpdateZoomStyles")
	}
}

func TestMemorySurface(t *testing.T) {
	s := NewMemorySurface()
	fc := geojson.NewFeatureCollection()
	fc.Append(geojson.NewFeature(orb.LineString{{-61.2, 13.1}, {-61.3, 13.2}}))
	roads := &RoadsLayer{Collection: fc}

	if s.Has(roads) {
		t.Fatal("empty surface should not contain layer")
	}
	s.Add(roads)
	if !s.Has(roads) || s.Len() != 1 {
		t.Fatal("layer not attached")
	}

	// Adding twice is idempotent.
	s.Add(roads)
	if s.Len() != 1 {
		t.Fatalf("expected 1 layer, got %d", s.Len())
	}

	s.ApplyZoom(14)
	if roads.Zoom != 14 {
		t.Errorf("zoom not applied, got %d", roads.Zoom)
	}

	s.Remove(roads)
	if s.Has(roads) {
		t.Fatal("layer still attached after Remove")
	}
}
