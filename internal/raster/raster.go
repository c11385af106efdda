package raster

import (
	"fmt"
	"time"
)

// Band is a single-band grid of numeric values in row-major order.
type Band struct {
	Width  int
	Height int
	Values []float64
}

func NewBand(width, height int) *Band {
	return &Band{
		Width:  width,
		Height: height,
		Values: make([]float64, width*height),
	}
}

func (b *Band) At(x, y int) float64 {
	return b.Values[y*b.Width+x]
}

func (b *Band) Set(x, y int, v float64) {
	b.Values[y*b.Width+x] = v
}

// Clip is a set of co-registered bands covering one region for one date
// range. All bands share the same grid, the same validity mask and the same
// per-pixel surface area. Pixel areas are carried per pixel rather than as a
// single nominal size: on reprojected grids the area differs row by row.
type Clip struct {
	Width  int
	Height int
	Bands  map[string]*Band
	// Valid marks pixels that survived cloud and nodata masking.
	Valid []bool
	// Area is the surface area of each pixel in square meters.
	Area []float64
}

func (c *Clip) Band(name string) (*Band, error) {
	band, ok := c.Bands[name]
	if !ok {
		return nil, fmt.Errorf("clip has no band %q", name)
	}
	if band.Width != c.Width || band.Height != c.Height {
		return nil, fmt.Errorf("band %q is %dx%d, clip grid is %dx%d", name, band.Width, band.Height, c.Width, c.Height)
	}
	return band, nil
}

// ValidCount returns the number of unmasked pixels.
func (c *Clip) ValidCount() int {
	n := 0
	for _, ok := range c.Valid {
		if ok {
			n++
		}
	}
	return n
}

// DateRange is a half-open observation window [Start, End).
type DateRange struct {
	Start time.Time
	End   time.Time
}

func (r DateRange) String() string {
	return fmt.Sprintf("%s..%s", r.Start.Format("2006-01-02"), r.End.Format("2006-01-02"))
}

// Sample is one valid pixel reduced to the pair the aggregator consumes: a
// value (index or class code) and the pixel's surface area.
type Sample struct {
	Value float64
	Area  float64
}

// SamplesOf pairs the valid pixels of any band grid with per-pixel areas.
// Used for derived grids (an index band computed from a clip) that carry
// their own validity mask.
func SamplesOf(band *Band, valid []bool, area []float64) []Sample {
	samples := make([]Sample, 0, len(valid))
	for i, ok := range valid {
		if !ok {
			continue
		}
		samples = append(samples, Sample{Value: band.Values[i], Area: area[i]})
	}
	return samples
}

// Samples flattens one band of a clip into the valid samples, pairing each
// unmasked pixel value with its area. Masked pixels are dropped here, never
// carried as zero-area samples.
func (c *Clip) Samples(bandName string) ([]Sample, error) {
	band, err := c.Band(bandName)
	if err != nil {
		return nil, err
	}
	samples := make([]Sample, 0, len(c.Valid))
	for i, ok := range c.Valid {
		if !ok {
			continue
		}
		samples = append(samples, Sample{Value: band.Values[i], Area: c.Area[i]})
	}
	return samples, nil
}
