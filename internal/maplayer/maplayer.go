// Package maplayer defines the contract between the layer registry and the
// map rendering surface. Renderable handles are opaque to the rest of the
// service; optional capabilities are discovered by interface assertion,
// never assumed.
package maplayer

import (
	"sync"

	"github.com/paulmach/orb/geojson"
)

// Renderable is the minimal handle every layer kind provides.
type Renderable interface {
	// Kind identifies the renderer used for this layer, e.g. "markers",
	// "shapes" or "roads".
	Kind() string
}

// OpacitySetter is an optional capability for handles that support
// client-side opacity adjustment.
type OpacitySetter interface {
	SetOpacity(value float64)
}

// ZoomStyler is an optional capability for handles that restyle themselves
// when the map zoom level changes.
type ZoomStyler interface {
	UpdateZoomStyles(zoom int)
}

// Surface is the map rendering surface renderable handles attach to.
type Surface interface {
	Add(layer Renderable)
	Remove(layer Renderable)
	Has(layer Renderable) bool
}

// MarkerGroup renders a set of point features as markers.
type MarkerGroup struct {
	Features []*geojson.Feature
	Opacity  float64
}

func (m *MarkerGroup) Kind() string { return "markers" }

func (m *MarkerGroup) SetOpacity(value float64) { m.Opacity = value }

// ShapeLayer renders polygon and line features from a GeoJSON document.
type ShapeLayer struct {
	Collection *geojson.FeatureCollection
	Opacity    float64
}

func (s *ShapeLayer) Kind() string { return "shapes" }

func (s *ShapeLayer) SetOpacity(value float64) { s.Opacity = value }

// RoadsLayer renders the road network with zoom-dependent line weights.
type RoadsLayer struct {
	Collection *geojson.FeatureCollection
	Opacity    float64
	Zoom       int
}

func (r *RoadsLayer) Kind() string { return "roads" }

func (r *RoadsLayer) SetOpacity(value float64) { r.Opacity = value }

func (r *RoadsLayer) UpdateZoomStyles(zoom int) { r.Zoom = zoom }

// MemorySurface is an in-process Surface implementation. The browser map
// mirrors it via the SSE event stream; tests use it directly.
type MemorySurface struct {
	mu     sync.Mutex
	layers map[Renderable]struct{}
}

// NewMemorySurface creates an empty surface.
func NewMemorySurface() *MemorySurface {
	return &MemorySurface{layers: make(map[Renderable]struct{})}
}

func (s *MemorySurface) Add(layer Renderable) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.layers[layer] = struct{}{}
}

func (s *MemorySurface) Remove(layer Renderable) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.layers, layer)
}

func (s *MemorySurface) Has(layer Renderable) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.layers[layer]
	return ok
}

// Len returns the number of attached layers.
func (s *MemorySurface) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.layers)
}

// ApplyZoom invokes UpdateZoomStyles on every attached layer that exposes
// the capability.
func (s *MemorySurface) ApplyZoom(zoom int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for layer := range s.layers {
		if zs, ok := layer.(ZoomStyler); ok {
			zs.UpdateZoomStyles(zoom)
		}
	}
}
