package geometry

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/paulmach/orb/planar"
)

var (
	ErrTooFewVertices   = errors.New("polygon needs at least 3 vertices")
	ErrSelfIntersecting = errors.New("polygon ring self-intersects")
)

// Region is the analysis polygon. The engine only ever reads it; the caller
// keeps ownership of the geometry.
type Region struct {
	Name    string
	Polygon orb.Polygon
}

// NewRegion validates the outer ring and wraps it. Validation runs before any
// raster fetch so a bad polygon fails fast.
func NewRegion(name string, polygon orb.Polygon) (*Region, error) {
	if len(polygon) == 0 {
		return nil, fmt.Errorf("region %s: %w", name, ErrTooFewVertices)
	}
	ring := polygon[0]
	if distinctVertices(ring) < 3 {
		return nil, fmt.Errorf("region %s: %w", name, ErrTooFewVertices)
	}
	if ringSelfIntersects(ring) {
		return nil, fmt.Errorf("region %s: %w", name, ErrSelfIntersecting)
	}
	return &Region{Name: name, Polygon: polygon}, nil
}

func distinctVertices(ring orb.Ring) int {
	n := len(ring)
	if n > 1 && ring[0] == ring[n-1] {
		n--
	}
	return n
}

// ringSelfIntersects checks every non-adjacent segment pair. Quadratic, but
// drawn regions have tens of vertices, not thousands.
func ringSelfIntersects(ring orb.Ring) bool {
	closed := ring
	if len(ring) > 0 && ring[0] != ring[len(ring)-1] {
		closed = append(orb.Ring{}, ring...)
		closed = append(closed, ring[0])
	}
	n := len(closed) - 1
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			// Adjacent segments share an endpoint by construction.
			if j == i+1 || (i == 0 && j == n-1) {
				continue
			}
			if segmentsCross(closed[i], closed[i+1], closed[j], closed[j+1]) {
				return true
			}
		}
	}
	return false
}

func segmentsCross(a, b, c, d orb.Point) bool {
	d1 := cross(c, d, a)
	d2 := cross(c, d, b)
	d3 := cross(a, b, c)
	d4 := cross(a, b, d)
	return ((d1 > 0 && d2 < 0) || (d1 < 0 && d2 > 0)) &&
		((d3 > 0 && d4 < 0) || (d3 < 0 && d4 > 0))
}

func cross(a, b, p orb.Point) float64 {
	return (b[0]-a[0])*(p[1]-a[1]) - (b[1]-a[1])*(p[0]-a[0])
}

// Bound returns the lon/lat bounding box of the region.
func (r *Region) Bound() orb.Bound {
	return r.Polygon.Bound()
}

// Centroid returns the area-weighted centroid as (lat, lon).
func (r *Region) Centroid() (float64, float64) {
	centroid, _ := planar.CentroidArea(r.Polygon)
	return centroid[1], centroid[0]
}

// FromGeoJSON finds the named feature inside a GeoJSON file and returns its
// polygon as a validated region. Features are matched on the region_id
// property, falling back to the only feature when the file holds just one.
func FromGeoJSON(path, regionID string) (*Region, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("invalid GeoJSON in %s: %w", path, err)
	}
	name := strings.TrimSuffix(filepath.Base(path), ".geojson")
	if regionID != "" {
		name = name + "/" + regionID
	}
	for _, feature := range fc.Features {
		if regionID != "" && feature.Properties.MustString("region_id", "") != regionID {
			continue
		}
		polygon, err := polygonOf(feature.Geometry)
		if err != nil {
			return nil, fmt.Errorf("region %s: %w", name, err)
		}
		return NewRegion(name, polygon)
	}
	return nil, fmt.Errorf("region %q not found in %s", regionID, path)
}

func polygonOf(g orb.Geometry) (orb.Polygon, error) {
	switch geom := g.(type) {
	case orb.Polygon:
		return geom, nil
	case orb.MultiPolygon:
		if len(geom) > 0 {
			return geom[0], nil
		}
	}
	return nil, fmt.Errorf("feature geometry is %T, want Polygon", g)
}

// ListRegionIDs returns the region_id values present in a GeoJSON file, for
// the CLI catalog listing.
func ListRegionIDs(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var doc struct {
		Features []struct {
			Properties map[string]any `json:"properties"`
		} `json:"features"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("invalid GeoJSON in %s: %w", path, err)
	}
	ids := []string{}
	for _, feature := range doc.Features {
		if id, ok := feature.Properties["region_id"].(string); ok {
			ids = append(ids, id)
		}
	}
	return ids, nil
}
