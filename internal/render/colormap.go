// Package render turns index grids and class grids into RGBA overlays for
// map display. Overlays are pure rendering artifacts and never feed back
// into the statistics.
package render

import (
	"image"
	"image/color"

	"github.com/landwatch/landwatch-analysis-api/internal/landcover"
	"github.com/landwatch/landwatch-analysis-api/internal/ndvi"
	"github.com/landwatch/landwatch-analysis-api/internal/raster"
)

// Transparent is the sentinel for masked and invalid pixels. Fully
// transparent, so it can never be confused with a data color.
var Transparent = color.RGBA{}

// Stop anchors a ramp color at an index value.
type Stop struct {
	Value float64
	Color color.RGBA
}

// Ramp is a continuous color ramp, linearly interpolated between stops.
type Ramp []Stop

// IndexRamp is the red→yellow→green NDVI ramp. Its stops sit on the density
// band boundaries so the continuous overlay and the banded statistics tell
// the same story.
func IndexRamp() Ramp {
	bands := ndvi.DensityBands()
	ramp := make(Ramp, 0, len(bands)+1)
	for _, band := range bands {
		ramp = append(ramp, Stop{Value: band.Lo, Color: band.RampColor})
	}
	ramp = append(ramp, Stop{Value: 1.0, Color: color.RGBA{R: 0x00, G: 0x68, B: 0x37, A: 0xff}})
	return ramp
}

// At interpolates the ramp at v. Values before the first stop or after the
// last clamp to the end colors; invalid values never reach a ramp because
// colorizing honors the validity mask first.
func (r Ramp) At(v float64) color.RGBA {
	if len(r) == 0 {
		return Transparent
	}
	if v <= r[0].Value {
		return r[0].Color
	}
	for i := 1; i < len(r); i++ {
		if v <= r[i].Value {
			span := r[i].Value - r[i-1].Value
			t := 0.0
			if span > 0 {
				t = (v - r[i-1].Value) / span
			}
			return lerp(r[i-1].Color, r[i].Color, t)
		}
	}
	return r[len(r)-1].Color
}

func lerp(a, b color.RGBA, t float64) color.RGBA {
	return color.RGBA{
		R: uint8(float64(a.R) + (float64(b.R)-float64(a.R))*t),
		G: uint8(float64(a.G) + (float64(b.G)-float64(a.G))*t),
		B: uint8(float64(a.B) + (float64(b.B)-float64(a.B))*t),
		A: uint8(float64(a.A) + (float64(b.A)-float64(a.A))*t),
	}
}

// ColorizeIndex maps a continuous index grid through the ramp, one output
// pixel per input pixel. Masked pixels get the transparent sentinel.
func ColorizeIndex(grid *raster.Band, valid []bool, ramp Ramp) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, grid.Width, grid.Height))
	for y := 0; y < grid.Height; y++ {
		for x := 0; x < grid.Width; x++ {
			i := y*grid.Width + x
			if !valid[i] {
				img.SetRGBA(x, y, Transparent)
				continue
			}
			img.SetRGBA(x, y, ramp.At(grid.Values[i]))
		}
	}
	return img
}

// ColorizeClasses maps a categorical code grid through a class lookup. The
// palette is fixed per table, so legends stay stable across requests.
func ColorizeClasses(grid *raster.Band, valid []bool, lookup func(int) landcover.Class) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, grid.Width, grid.Height))
	for y := 0; y < grid.Height; y++ {
		for x := 0; x < grid.Width; x++ {
			i := y*grid.Width + x
			if !valid[i] {
				img.SetRGBA(x, y, Transparent)
				continue
			}
			img.SetRGBA(x, y, lookup(int(grid.Values[i])).Color)
		}
	}
	return img
}
