package ndvi

import (
	"fmt"

	"github.com/landwatch/landwatch-analysis-api/internal/raster"
)

// Band names the raster source must supply for the NDVI product.
const (
	BandNIR = "NIR"
	BandRed = "RED"
)

// ComputeIndex calculates (nir-red)/(nir+red) per pixel and returns the index
// grid together with the surviving validity mask. Pixels where nir+red is
// zero, and pixels whose index lands outside [-1,1] (sensor artifacts), are
// dropped from the mask instead of being clamped or passed through as NaN, so
// they never reach the aggregation pass.
func ComputeIndex(nir, red *raster.Band, valid []bool) (*raster.Band, []bool, error) {
	if nir.Width != red.Width || nir.Height != red.Height {
		return nil, nil, fmt.Errorf("band grids differ: NIR %dx%d, RED %dx%d", nir.Width, nir.Height, red.Width, red.Height)
	}
	if len(valid) != len(nir.Values) {
		return nil, nil, fmt.Errorf("validity mask has %d entries for %d pixels", len(valid), len(nir.Values))
	}

	index := raster.NewBand(nir.Width, nir.Height)
	out := make([]bool, len(valid))
	for i, ok := range valid {
		if !ok {
			continue
		}
		sum := nir.Values[i] + red.Values[i]
		if sum == 0 {
			continue
		}
		v := (nir.Values[i] - red.Values[i]) / sum
		if v < -1 || v > 1 {
			continue
		}
		index.Values[i] = v
		out[i] = true
	}
	return index, out, nil
}

// ComputeClipIndex runs ComputeIndex against a clip's NIR and RED bands.
func ComputeClipIndex(clip *raster.Clip) (*raster.Band, []bool, error) {
	nir, err := clip.Band(BandNIR)
	if err != nil {
		return nil, nil, err
	}
	red, err := clip.Band(BandRed)
	if err != nil {
		return nil, nil, err
	}
	return ComputeIndex(nir, red, clip.Valid)
}
