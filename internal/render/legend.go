package render

import (
	"image"
	"strconv"

	"github.com/fogleman/gg"
	"github.com/landwatch/landwatch-analysis-api/internal/landcover"
)

const (
	legendRowHeight = 22
	legendSwatch    = 14
	legendWidth     = 300
)

// ClassLegend draws a swatch-and-label legend for a class table.
func ClassLegend(classes []landcover.Class) image.Image {
	dc := gg.NewContext(legendWidth, legendRowHeight*len(classes)+10)
	dc.SetRGB(1, 1, 1)
	dc.Clear()
	for i, class := range classes {
		y := float64(5 + i*legendRowHeight)
		dc.SetColor(class.Color)
		dc.DrawRectangle(8, y, legendSwatch, legendSwatch)
		dc.Fill()
		dc.SetRGB(0, 0, 0)
		dc.DrawString(class.Name, 8+legendSwatch+8, y+legendSwatch-3)
	}
	return dc.Image()
}

// RampLegend draws the continuous index ramp as a horizontal gradient bar
// with the stop values ticked underneath.
func RampLegend(ramp Ramp) image.Image {
	const barWidth, barHeight = 256, 18
	dc := gg.NewContext(barWidth+20, barHeight+26)
	dc.SetRGB(1, 1, 1)
	dc.Clear()
	if len(ramp) == 0 {
		return dc.Image()
	}
	lo := ramp[0].Value
	hi := ramp[len(ramp)-1].Value
	for px := 0; px < barWidth; px++ {
		v := lo + (hi-lo)*float64(px)/float64(barWidth-1)
		dc.SetColor(ramp.At(v))
		dc.DrawRectangle(float64(10+px), 4, 1, barHeight)
		dc.Fill()
	}
	dc.SetRGB(0, 0, 0)
	for _, stop := range ramp {
		x := 10 + (stop.Value-lo)/(hi-lo)*float64(barWidth-1)
		dc.DrawLine(x, 4+barHeight, x, 4+barHeight+4)
		dc.Stroke()
		dc.DrawStringAnchored(trimFloat(stop.Value), x, float64(4+barHeight+14), 0.5, 0.5)
	}
	return dc.Image()
}

func trimFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
