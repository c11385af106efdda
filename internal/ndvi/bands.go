package ndvi

import "image/color"

// DensityBand is one interval of the fixed vegetation-density partition of
// [-1,1]. Lower bounds are inclusive, upper bounds exclusive, except the
// final band which includes 1.0 so the partition is total.
type DensityBand struct {
	ID          string
	Label       string
	Lo          float64
	Hi          float64
	RampColor   color.RGBA
	Description string
}

var densityBands = []DensityBand{
	{ID: "water_or_bare", Label: "Water bodies or bare soil", Lo: -1.0, Hi: 0.1, RampColor: color.RGBA{R: 0xd7, G: 0x30, B: 0x27, A: 0xff}, Description: "Water, rock, sand or snow"},
	{ID: "sparse_vegetation", Label: "Sparse vegetation", Lo: 0.1, Hi: 0.3, RampColor: color.RGBA{R: 0xfe, G: 0xe0, B: 0x8b, A: 0xff}, Description: "Shrub and grassland"},
	{ID: "moderate_vegetation", Label: "Moderate vegetation", Lo: 0.3, Hi: 0.6, RampColor: color.RGBA{R: 0xa6, G: 0xd9, B: 0x6a, A: 0xff}, Description: "Crops and mixed cover"},
	{ID: "dense_vegetation", Label: "Dense vegetation", Lo: 0.6, Hi: 1.0, RampColor: color.RGBA{R: 0x1a, G: 0x98, B: 0x50, A: 0xff}, Description: "Dense, healthy canopy"},
}

// DensityBands returns the partition in ascending order. The slice is shared
// read-only process-wide configuration; callers must not mutate it.
func DensityBands() []DensityBand {
	return densityBands
}

// AssignBand places an index value into its density band. The false return
// only fires for values outside [-1,1], which ComputeIndex already excludes;
// this is a defensive double check, not the primary filter.
func AssignBand(v float64) (DensityBand, bool) {
	if v < -1 || v > 1 {
		return DensityBand{}, false
	}
	for _, band := range densityBands {
		if v >= band.Lo && v < band.Hi {
			return band, true
		}
	}
	// v == 1.0 closes the final band.
	return densityBands[len(densityBands)-1], true
}
