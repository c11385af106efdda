// Package provider implements the raster source contract against a
// Copernicus-style process API: it authenticates with client credentials,
// requests a clipped multi-band GeoTIFF for a polygon and date range, and
// decodes it into the engine's clip model. All network and disk I/O of the
// system lives here; the analysis engine never fetches anything itself.
package provider

import (
	"bytes"
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/landwatch/landwatch-analysis-api/internal/geometry"
	"github.com/landwatch/landwatch-analysis-api/internal/landcover"
	"github.com/landwatch/landwatch-analysis-api/internal/ndvi"
	"github.com/landwatch/landwatch-analysis-api/internal/properties"
	"github.com/landwatch/landwatch-analysis-api/internal/raster"
	"github.com/paulmach/orb/geojson"
	"golang.org/x/oauth2/clientcredentials"
)

const (
	maxEdgePixels = 2500
	fetchRetries  = 5
)

// Satellite band names behind the engine-level band aliases.
var sourceBands = map[string]string{
	ndvi.BandNIR:             "B08",
	ndvi.BandRed:             "B04",
	landcover.BandIGBP:       "LC_Type1",
	landcover.BandWorldCover: "Map",
}

// datasets maps engine bands to the provider collection that carries them.
var datasets = map[string]string{
	ndvi.BandNIR:             "sentinel-2-l2a",
	ndvi.BandRed:             "sentinel-2-l2a",
	landcover.BandIGBP:       "modis-mcd12q1",
	landcover.BandWorldCover: "esa-worldcover",
}

// Copernicus fetches clips over HTTP and keeps the downloaded GeoTIFFs under
// data/images so repeated analyses of the same window reuse them.
type Copernicus struct {
	cfg    properties.Config
	client *http.Client
}

func NewCopernicus(cfg properties.Config) (*Copernicus, error) {
	if cfg.ProviderClientID == "" || cfg.ProviderClientSecret == "" || cfg.ProviderTokenURL == "" {
		return nil, fmt.Errorf("missing required environment variables: PROVIDER_CLIENT_ID, PROVIDER_CLIENT_SECRET or PROVIDER_TOKEN_URL")
	}
	oauth := &clientcredentials.Config{
		ClientID:     cfg.ProviderClientID,
		ClientSecret: cfg.ProviderClientSecret,
		TokenURL:     cfg.ProviderTokenURL,
	}
	return &Copernicus{cfg: cfg, client: oauth.Client(context.Background())}, nil
}

// FetchClip satisfies raster.Source. The returned clip is clipped to the
// region, co-registered across bands, and pre-masked: cloudy and nodata
// pixels are already off in the validity mask.
func (c *Copernicus) FetchClip(ctx context.Context, region *geometry.Region, bands []string, dates raster.DateRange) (*raster.Clip, error) {
	if len(bands) == 0 {
		return nil, fmt.Errorf("no bands requested")
	}
	reflectance := isReflectance(bands[0])
	requested := append([]string{}, bands...)
	if reflectance {
		// The scene classification and cloud probability bands feed the
		// validity mask, never the statistics.
		requested = append(requested, "CLD", "SCL")
	}

	path, err := c.localPath(region, requested, dates)
	if err != nil {
		return nil, err
	}
	if _, err := os.Stat(path); err != nil {
		imageBytes, err := c.requestImage(ctx, region, requested, dates)
		if err != nil {
			return nil, fmt.Errorf("fetching %s for %s: %w", strings.Join(bands, ","), region.Name, err)
		}
		if err := os.MkdirAll(filepath.Dir(path), os.ModePerm); err != nil {
			return nil, fmt.Errorf("failed to create images directory: %w", err)
		}
		if err := os.WriteFile(path, imageBytes, 0644); err != nil {
			return nil, fmt.Errorf("failed to write image file: %w", err)
		}
	}

	clip, err := readClip(path, bands, requested, reflectance)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}
	return clip, nil
}

func isReflectance(band string) bool {
	return datasets[band] == "sentinel-2-l2a"
}

func (c *Copernicus) localPath(region *geometry.Region, bands []string, dates raster.DateRange) (string, error) {
	sum := sha1.Sum([]byte(fmt.Sprintf("%s_%s_%s", region.Name, strings.Join(bands, ","), dates)))
	name := fmt.Sprintf("%s_%s.tif", dates.Start.Format("2006-01-02"), hex.EncodeToString(sum[:8]))
	dir := strings.ReplaceAll(region.Name, "/", "_")
	return filepath.Join(properties.ImagesPath(), dir, name), nil
}

// calculateEdgePixels sizes the request grid from the bbox edge length in
// degrees at the native 10m resolution, clamped to the API limit.
func calculateEdgePixels(degrees float64) int {
	pixels := int(degrees * (111_000.0 / 10))
	if pixels < 1 {
		return 1
	}
	if pixels > maxEdgePixels {
		return maxEdgePixels
	}
	return pixels
}

func (c *Copernicus) requestImage(ctx context.Context, region *geometry.Region, bands []string, dates raster.DateRange) ([]byte, error) {
	bound := region.Bound()
	width := calculateEdgePixels(bound.Max[0] - bound.Min[0])
	height := calculateEdgePixels(bound.Max[1] - bound.Min[1])

	sources := make([]string, len(bands))
	for i, band := range bands {
		name, ok := sourceBands[band]
		if !ok {
			name = band
		}
		sources[i] = name
	}

	geometryJSON, err := geojson.NewGeometry(region.Polygon).MarshalJSON()
	if err != nil {
		return nil, fmt.Errorf("failed to export geometry to GeoJSON: %w", err)
	}
	var geometryMap map[string]interface{}
	if err := json.Unmarshal(geometryJSON, &geometryMap); err != nil {
		return nil, fmt.Errorf("failed to parse GeoJSON: %w", err)
	}

	payload := map[string]interface{}{
		"input": map[string]interface{}{
			"bounds": map[string]interface{}{
				"geometry": geometryMap,
			},
			"data": []map[string]interface{}{
				{
					"dataFilter": map[string]interface{}{
						"timeRange": map[string]string{
							"from": dates.Start.Format(time.RFC3339),
							"to":   dates.End.Format(time.RFC3339),
						},
					},
					"type": datasets[bands[0]],
				},
			},
		},
		"output": map[string]interface{}{
			"width":  width,
			"height": height,
			"responses": []map[string]interface{}{
				{
					"identifier": "default",
					"format":     map[string]string{"type": "image/tiff"},
				},
			},
		},
		"evalscript": evalscript(sources),
		"mosaicking": "mostRecent",
	}

	requestBody, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request payload: %w", err)
	}

	var lastErr error
	for attempt := 1; attempt <= fetchRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.ProviderProcessURL, bytes.NewReader(requestBody))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.client.Do(req)
		if err != nil {
			lastErr = err
			time.Sleep(2 * time.Second)
			continue
		}
		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = fmt.Errorf("failed to read response body: %w", err)
			continue
		}
		switch {
		case resp.StatusCode == http.StatusOK:
			return body, nil
		case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
			return nil, fmt.Errorf("unauthorized access, check your client ID and secret")
		default:
			lastErr = fmt.Errorf("provider returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
			time.Sleep(2 * time.Second)
		}
	}
	return nil, fmt.Errorf("failed to request image after %d attempts: %w", fetchRetries, lastErr)
}

func evalscript(sources []string) string {
	quoted := make([]string, len(sources))
	samples := make([]string, len(sources))
	for i, name := range sources {
		quoted[i] = fmt.Sprintf("%q", name)
		samples[i] = "sample." + name
	}
	return fmt.Sprintf(`
    //VERSION=3
    function setup() {
      return {
        input: [%s],
        output: {
          id: "default",
          bands: %d,
          sampleType: SampleType.FLOAT32,
        },
      }
    }

    function evaluatePixel(sample) {
      return [%s];
    }
  `, strings.Join(quoted, ", "), len(sources), strings.Join(samples, ", "))
}
