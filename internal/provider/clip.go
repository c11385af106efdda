package provider

import (
	"fmt"
	"math"

	"github.com/airbusgeo/godal"
	"github.com/landwatch/landwatch-analysis-api/internal/raster"
	"github.com/landwatch/landwatch-analysis-api/internal/utils"
	"github.com/schollz/progressbar/v3"
)

// Meters per degree of latitude, and of longitude at the equator.
const (
	metersPerDegreeLat = 110_540.0
	metersPerDegreeLon = 111_320.0
)

// readClip decodes a downloaded GeoTIFF into the engine's clip model. Band
// order in the file follows the order they were requested in; mask bands
// (CLD, SCL) feed the validity mask and are not exposed as data bands.
func readClip(path string, keep, requested []string, reflectance bool) (*raster.Clip, error) {
	var clip *raster.Clip
	var err error
	// godal is not safe for concurrent use; rolls read clips from many
	// workers at once.
	utils.WithGDALLock(func() {
		clip, err = readClipLocked(path, keep, requested, reflectance)
	})
	return clip, err
}

func readClipLocked(path string, keep, requested []string, reflectance bool) (*raster.Clip, error) {
	ds, err := godal.Open(path, godal.ErrLogger(func(ec godal.ErrorCategory, code int, msg string) error {
		if ec == godal.CE_Warning {
			return nil
		}
		return fmt.Errorf("gdal error %d: %s", code, msg)
	}))
	if err != nil {
		return nil, fmt.Errorf("failed to open TIFF file: %w", err)
	}
	defer ds.Close()

	width := ds.Structure().SizeX
	height := ds.Structure().SizeY
	fileBands := ds.Bands()
	if len(fileBands) < len(requested) {
		return nil, fmt.Errorf("file has %d bands, requested %d", len(fileBands), len(requested))
	}

	grids := make(map[string]*raster.Band, len(requested))
	bar := progressbar.Default(int64(len(requested)*height), "Reading clip")
	for i, name := range requested {
		grid := raster.NewBand(width, height)
		for y := 0; y < height; y++ {
			row := grid.Values[y*width : (y+1)*width]
			if err := fileBands[i].Read(0, y, row, width, 1); err != nil {
				return nil, fmt.Errorf("failed to read band %s: %w", name, err)
			}
			bar.Add(1)
		}
		grids[name] = grid
	}
	bar.Finish()

	area, err := pixelAreas(ds, width, height)
	if err != nil {
		return nil, err
	}

	clip := &raster.Clip{
		Width:  width,
		Height: height,
		Bands:  make(map[string]*raster.Band, len(keep)),
		Valid:  validMask(grids, keep, reflectance, width*height),
		Area:   area,
	}
	for _, name := range keep {
		clip.Bands[name] = grids[name]
	}
	return clip, nil
}

// pixelAreas converts the geotransform into per-pixel surface areas. On a
// geographic grid the east-west extent of a pixel shrinks with cos(lat), so
// area varies row by row; downstream aggregation weights by this field
// instead of assuming a nominal pixel size.
func pixelAreas(ds *godal.Dataset, width, height int) ([]float64, error) {
	gt, err := ds.GeoTransform()
	if err != nil {
		return nil, fmt.Errorf("failed to get GeoTransform: %w", err)
	}
	area := make([]float64, width*height)
	for y := 0; y < height; y++ {
		lat := gt[3] + gt[5]*(float64(y)+0.5)
		rowArea := math.Abs(gt[1]) * metersPerDegreeLon * math.Cos(lat*math.Pi/180) *
			math.Abs(gt[5]) * metersPerDegreeLat
		for x := 0; x < width; x++ {
			area[y*width+x] = rowArea
		}
	}
	return area, nil
}

// validMask pre-marks invalid pixels. For reflectance clips a pixel is
// dropped when the cloud probability band flags it, when the scene
// classification marks shadow, cloud or cirrus, or when every band is zero
// (outside the polygon the API fills with zeros). Categorical clips only
// drop the zero fill; unknown class codes stay valid and are bucketed as
// Unclassified downstream.
func validMask(grids map[string]*raster.Band, keep []string, reflectance bool, size int) []bool {
	valid := make([]bool, size)
	cld := grids["CLD"]
	scl := grids["SCL"]
	for i := 0; i < size; i++ {
		allZero := true
		for _, name := range keep {
			if grids[name].Values[i] != 0 {
				allZero = false
				break
			}
		}
		if allZero {
			continue
		}
		if reflectance {
			if cld != nil && cld.Values[i] > 0 {
				continue
			}
			if scl != nil && isMaskedSceneClass(scl.Values[i]) {
				continue
			}
		}
		valid[i] = true
	}
	return valid
}

func isMaskedSceneClass(code float64) bool {
	// SCL 3: cloud shadow, 8: cloud medium probability, 9: cloud high
	// probability, 10: thin cirrus.
	return code == 3 || code == 8 || code == 9 || code == 10
}
