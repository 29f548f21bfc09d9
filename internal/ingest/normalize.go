package ingest

import (
	"math"

	"github.com/Noise-unit/Noise-Map/internal/proj"
)

// LatLon is a geographic coordinate pair in degrees.
type LatLon struct {
	Lat float64
	Lon float64
}

// Normalizer converts projected planar coordinates into geographic
// latitude/longitude using an injected projection. A nil projection, a
// panicking projection, or a non-finite result all yield nil — callers
// treat that as "skip this record", never as a fatal error.
type Normalizer struct {
	Projection proj.Projection
}

// NewNormalizer creates a Normalizer for the given projection, which may
// be nil.
func NewNormalizer(p proj.Projection) *Normalizer {
	return &Normalizer{Projection: p}
}

// Normalize converts an easting/northing pair to latitude/longitude.
// Returns nil when the conversion is unavailable or produced garbage.
func (n *Normalizer) Normalize(easting, northing float64) (result *LatLon) {
	if n == nil || n.Projection == nil {
		return nil
	}
	if !isFinite(easting) || !isFinite(northing) {
		return nil
	}
	// A misbehaving projection counts as "service unavailable".
	defer func() {
		if r := recover(); r != nil {
			result = nil
		}
	}()
	lon, lat := n.Projection.ToWGS84(easting, northing)
	if !isFinite(lon) || !isFinite(lat) {
		return nil
	}
	return &LatLon{Lat: lat, Lon: lon}
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
