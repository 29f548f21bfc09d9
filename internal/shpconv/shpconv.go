// Package shpconv converts zipped shapefile archives into GeoJSON feature
// collections using the go-shp reader.
package shpconv

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/jonas-p/go-shp"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// Converter extracts shapefile components from a zip archive and reads
// them with go-shp. It satisfies the ingest.ZipConverter contract.
type Converter struct{}

// New creates a Converter.
func New() *Converter {
	return &Converter{}
}

// Convert unpacks the archive to a temporary directory, locates the .shp
// component and converts every shape plus its attribute record into a
// GeoJSON feature. The archive's own .prj definition is taken as
// authoritative; coordinates are passed through unchanged.
func (c *Converter) Convert(data []byte) (*geojson.FeatureCollection, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("failed to open archive: %w", err)
	}

	tmpDir, err := os.MkdirTemp("", "shpconv-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	shpPath := ""
	for _, f := range zr.File {
		if f.FileInfo().IsDir() {
			continue
		}
		name := filepath.Base(f.Name)
		ext := strings.ToLower(filepath.Ext(name))
		switch ext {
		case ".shp", ".shx", ".dbf", ".prj", ".cpg":
		default:
			continue
		}
		dest := filepath.Join(tmpDir, name)
		if err := extractFile(f, dest); err != nil {
			return nil, fmt.Errorf("failed to extract %s: %w", name, err)
		}
		if ext == ".shp" {
			shpPath = dest
		}
	}
	if shpPath == "" {
		return nil, fmt.Errorf("archive contains no .shp component")
	}

	return convertShapefile(shpPath)
}

func extractFile(f *zip.File, dest string) error {
	rc, err := f.Open()
	if err != nil {
		return err
	}
	defer rc.Close()

	out, err := os.Create(dest)
	if err != nil {
		return err
	}
	defer out.Close()

	_, err = io.Copy(out, rc)
	return err
}

func convertShapefile(path string) (*geojson.FeatureCollection, error) {
	shape, err := shp.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open shapefile: %w", err)
	}
	defer shape.Close()

	fields := shape.Fields()
	fieldNames := make([]string, len(fields))
	for i, f := range fields {
		fieldNames[i] = f.String()
	}

	fc := geojson.NewFeatureCollection()
	for shape.Next() {
		n, p := shape.Shape()

		var geometry orb.Geometry
		switch s := p.(type) {
		case *shp.Null:
			continue
		case *shp.Point:
			geometry = orb.Point{s.X, s.Y}
		case *shp.PolyLine:
			geometry = convertPolyLine(s)
		case *shp.Polygon:
			geometry = convertPolygon(s)
		default:
			continue
		}

		f := geojson.NewFeature(geometry)
		for i, name := range fieldNames {
			f.Properties[name] = shape.ReadAttribute(n, i)
		}
		fc.Append(f)
	}
	if err := shape.Err(); err != nil {
		return nil, fmt.Errorf("error iterating shapes: %w", err)
	}
	return fc, nil
}

func convertPolyLine(s *shp.PolyLine) orb.MultiLineString {
	var multiline orb.MultiLineString
	for i := 0; i < int(s.NumParts); i++ {
		start := s.Parts[i]
		end := s.NumPoints
		if i < int(s.NumParts)-1 {
			end = s.Parts[i+1]
		}
		var line orb.LineString
		for j := start; j < end; j++ {
			line = append(line, orb.Point{s.Points[j].X, s.Points[j].Y})
		}
		multiline = append(multiline, line)
	}
	return multiline
}

func convertPolygon(s *shp.Polygon) orb.Polygon {
	// All parts become rings of a single polygon.
	var poly orb.Polygon
	for i := 0; i < int(s.NumParts); i++ {
		start := s.Parts[i]
		end := s.NumPoints
		if i < int(s.NumParts)-1 {
			end = s.Parts[i+1]
		}
		var ring orb.Ring
		for j := start; j < end; j++ {
			ring = append(ring, orb.Point{s.Points[j].X, s.Points[j].Y})
		}
		poly = append(poly, ring)
	}
	return poly
}
