package analysis

import (
	"image"
	"time"

	"github.com/landwatch/landwatch-analysis-api/internal/raster"
	"github.com/landwatch/landwatch-analysis-api/internal/temporal"
	"github.com/landwatch/landwatch-analysis-api/internal/zonal"
)

// Kind selects the analytical product.
type Kind string

const (
	KindNDVI       Kind = "ndvi"
	KindIGBP       Kind = "igbp"
	KindWorldCover Kind = "worldcover"
)

// Result is the serializable outcome of one analysis request. The overlay is
// delivered alongside but excluded from serialization; the output writers
// persist it as a PNG next to the stats.
type Result struct {
	Region      string           `json:"region"`
	Dates       raster.DateRange `json:"date_range"`
	Kind        Kind             `json:"kind"`
	Zonal       *zonal.Result    `json:"zonal"`
	Overlay     *image.RGBA      `json:"-"`
	GeneratedAt time.Time        `json:"generated_at"`
}

// CombinedResult is the two-product answer the map UI shows side by side.
type CombinedResult struct {
	NDVI      *Result `json:"ndvi"`
	LandCover *Result `json:"land_cover"`
}

// TrendResult is a temporal roll assembled into one object.
type TrendResult struct {
	Region      string          `json:"region"`
	Kind        Kind            `json:"kind"`
	Series      temporal.Series `json:"-"`
	GeneratedAt time.Time       `json:"generated_at"`
}
