package output

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/landwatch/landwatch-analysis-api/internal/analysis"
	"github.com/landwatch/landwatch-analysis-api/internal/geometry"
	"github.com/landwatch/landwatch-analysis-api/internal/properties"
	"github.com/paulmach/orb/geojson"
)

// WriteResultGeoJSON saves the analyzed region as a GeoJSON feature with the
// zonal statistics attached as properties, ready for a map client to style.
func WriteResultGeoJSON(region *geometry.Region, result *analysis.Result, name string) (string, error) {
	if !strings.HasSuffix(name, ".geojson") {
		name += ".geojson"
	}
	path := filepath.Join(properties.ResultsPath(), name)
	if err := os.MkdirAll(filepath.Dir(path), os.ModePerm); err != nil {
		return "", fmt.Errorf("failed to create results directory: %w", err)
	}

	feature := geojson.NewFeature(region.Polygon)
	feature.Properties["region"] = result.Region
	feature.Properties["kind"] = string(result.Kind)
	feature.Properties["date_range"] = result.Dates.String()
	feature.Properties["generated_at"] = result.GeneratedAt
	feature.Properties["no_data"] = result.Zonal.NoData
	feature.Properties["total_area_m2"] = result.Zonal.TotalArea
	feature.Properties["groups"] = result.Zonal.Groups
	if result.Zonal.Stats != nil {
		feature.Properties["stats"] = result.Zonal.Stats
	}

	fc := geojson.NewFeatureCollection()
	fc.Append(feature)

	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create GeoJSON file: %w", err)
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(fc); err != nil {
		return "", fmt.Errorf("failed to encode GeoJSON: %w", err)
	}
	return path, nil
}
