package analysis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/landwatch/landwatch-analysis-api/internal/geometry"
	"github.com/landwatch/landwatch-analysis-api/internal/landcover"
	"github.com/landwatch/landwatch-analysis-api/internal/ndvi"
	"github.com/landwatch/landwatch-analysis-api/internal/raster"
	"github.com/landwatch/landwatch-analysis-api/internal/render"
	"github.com/landwatch/landwatch-analysis-api/internal/temporal"
	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRegion(t *testing.T) *geometry.Region {
	t.Helper()
	region, err := geometry.NewRegion("test", orb.Polygon{orb.Ring{
		{123.2, 13.3}, {123.2, 13.2}, {123.3, 13.2}, {123.3, 13.3}, {123.2, 13.3},
	}})
	require.NoError(t, err)
	return region
}

func dateRange(year int) raster.DateRange {
	return raster.DateRange{
		Start: time.Date(year, 1, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(year+1, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func reflectanceClip(nir, red []float64, valid []bool, area float64) *raster.Clip {
	w := len(nir)
	clip := &raster.Clip{
		Width:  w,
		Height: 1,
		Bands: map[string]*raster.Band{
			ndvi.BandNIR: {Width: w, Height: 1, Values: nir},
			ndvi.BandRed: {Width: w, Height: 1, Values: red},
		},
		Valid: valid,
		Area:  make([]float64, w),
	}
	for i := range clip.Area {
		clip.Area[i] = area
	}
	return clip
}

func classClip(codes []float64, valid []bool, area float64) *raster.Clip {
	w := len(codes)
	clip := &raster.Clip{
		Width:  w,
		Height: 1,
		Bands: map[string]*raster.Band{
			landcover.BandIGBP: {Width: w, Height: 1, Values: codes},
		},
		Valid: valid,
		Area:  make([]float64, w),
	}
	for i := range clip.Area {
		clip.Area[i] = area
	}
	return clip
}

func allValid(n int) []bool {
	valid := make([]bool, n)
	for i := range valid {
		valid[i] = true
	}
	return valid
}

func TestAnalyzeNDVIDensityDistribution(t *testing.T) {
	source := raster.NewMemorySource()
	dates := dateRange(2023)
	source.Put(dates, reflectanceClip(
		[]float64{0.2, 0.6, 0.6, 0.8},
		[]float64{0.2, 0.2, 0.2, 0.2},
		allValid(4), 100,
	))
	orchestrator := NewOrchestrator(source, 2)

	result, err := orchestrator.AnalyzeNDVI(context.Background(), testRegion(t), dates)
	require.NoError(t, err)
	require.False(t, result.Zonal.NoData)
	assert.Equal(t, KindNDVI, result.Kind)

	// NDVI = [0, 0.5, 0.5, 0.6]: 0 falls in the water/bare band, not sparse.
	groups := result.Zonal.Groups
	require.Len(t, groups, 3)
	assert.Equal(t, "Water bodies or bare soil", groups[0].Key)
	assert.Equal(t, 1, groups[0].Pixels)
	assert.InDelta(t, 100.0, groups[0].Area, 1e-9)
	assert.InDelta(t, 25.0, groups[0].Percent, 1e-9)

	assert.Equal(t, "Moderate vegetation", groups[1].Key)
	assert.Equal(t, 2, groups[1].Pixels)
	assert.InDelta(t, 200.0, groups[1].Area, 1e-9)
	assert.InDelta(t, 50.0, groups[1].Percent, 1e-9)

	assert.Equal(t, "Dense vegetation", groups[2].Key)
	assert.Equal(t, 1, groups[2].Pixels)
	assert.InDelta(t, 25.0, groups[2].Percent, 1e-9)

	// Counts across bands partition the valid set exactly.
	totalPixels := 0
	for _, group := range groups {
		totalPixels += group.Pixels
	}
	assert.Equal(t, result.Zonal.TotalPixels, totalPixels)

	require.NotNil(t, result.Zonal.Stats)
	assert.InDelta(t, 0.4, result.Zonal.Stats.Mean, 1e-9)
	assert.Equal(t, 0.6, result.Zonal.Stats.Max)

	require.NotNil(t, result.Overlay)
	assert.Equal(t, 4, result.Overlay.Bounds().Dx())
}

func TestAnalyzeLandCoverUnknownCode(t *testing.T) {
	source := raster.NewMemorySource()
	dates := dateRange(2023)
	source.Put(dates, classClip([]float64{12, 12, 13, 99}, allValid(4), 50))
	orchestrator := NewOrchestrator(source, 2)

	result, err := orchestrator.AnalyzeLandCover(context.Background(), testRegion(t), dates)
	require.NoError(t, err)

	groups := result.Zonal.Groups
	require.Len(t, groups, 3)
	assert.Equal(t, "Croplands", groups[0].Key)
	assert.InDelta(t, 50.0, groups[0].Percent, 1e-9)
	assert.Equal(t, "Urban and Built-up Lands", groups[1].Key)
	assert.InDelta(t, 25.0, groups[1].Percent, 1e-9)
	assert.Equal(t, "Unclassified", groups[2].Key)
	assert.InDelta(t, 25.0, groups[2].Percent, 1e-9)

	total := 0.0
	for _, group := range groups {
		total += group.Percent
	}
	assert.InDelta(t, 100.0, total, 1e-6)
}

func TestAnalyzeNDVIFullyMasked(t *testing.T) {
	source := raster.NewMemorySource()
	dates := dateRange(2023)
	source.Put(dates, reflectanceClip(
		[]float64{0.2, 0.6},
		[]float64{0.2, 0.2},
		[]bool{false, false}, 100,
	))
	orchestrator := NewOrchestrator(source, 2)

	result, err := orchestrator.AnalyzeNDVI(context.Background(), testRegion(t), dates)
	require.NoError(t, err, "a fully clouded clip is a NoData result, not a failure")
	assert.True(t, result.Zonal.NoData)
	assert.Empty(t, result.Zonal.Groups)
	assert.Nil(t, result.Zonal.Stats)
	// The overlay is still produced, fully transparent.
	assert.Equal(t, render.Transparent, result.Overlay.RGBAAt(0, 0))
}

func TestAnalyzeNDVIFetchFailure(t *testing.T) {
	source := raster.NewMemorySource()
	dates := dateRange(2023)
	source.Fail(dates, errors.New("quota exceeded"))
	orchestrator := NewOrchestrator(source, 2)

	_, err := orchestrator.AnalyzeNDVI(context.Background(), testRegion(t), dates)
	require.Error(t, err)

	var stageErr *StageError
	require.ErrorAs(t, err, &stageErr)
	assert.Equal(t, StageFetching, stageErr.Stage)
}

func TestAnalyzeIdempotent(t *testing.T) {
	source := raster.NewMemorySource()
	dates := dateRange(2023)
	source.Put(dates, reflectanceClip(
		[]float64{0.21, 0.65, 0.44, 0.83},
		[]float64{0.2, 0.21, 0.19, 0.2},
		allValid(4), 97.3,
	))
	orchestrator := NewOrchestrator(source, 2)
	region := testRegion(t)

	first, err := orchestrator.AnalyzeNDVI(context.Background(), region, dates)
	require.NoError(t, err)
	second, err := orchestrator.AnalyzeNDVI(context.Background(), region, dates)
	require.NoError(t, err)

	assert.Equal(t, first.Zonal, second.Zonal)
	assert.Equal(t, first.Overlay.Pix, second.Overlay.Pix)
}

func TestAnalyzeAll(t *testing.T) {
	source := raster.NewMemorySource()
	dates := dateRange(2023)
	clip := reflectanceClip([]float64{0.6, 0.6}, []float64{0.2, 0.2}, allValid(2), 100)
	clip.Bands[landcover.BandIGBP] = &raster.Band{Width: 2, Height: 1, Values: []float64{12, 17}}
	source.Put(dates, clip)
	orchestrator := NewOrchestrator(source, 2)

	combined, err := orchestrator.AnalyzeAll(context.Background(), testRegion(t), dates)
	require.NoError(t, err)
	require.NotNil(t, combined.NDVI)
	require.NotNil(t, combined.LandCover)
	assert.Equal(t, KindIGBP, combined.LandCover.Kind)
}

func TestRollNDVIIsolatesFailedSlice(t *testing.T) {
	source := raster.NewMemorySource()
	slices := temporal.YearSlices(2020, 2022)

	good := reflectanceClip([]float64{0.6, 0.8}, []float64{0.2, 0.2}, allValid(2), 100)
	source.Put(slices[0].Dates, good)
	source.Fail(slices[1].Dates, errors.New("provider timeout"))
	source.Put(slices[2].Dates, good)

	orchestrator := NewOrchestrator(source, 3)
	trend, err := orchestrator.RollNDVI(context.Background(), testRegion(t), slices)
	require.NoError(t, err)
	require.Len(t, trend.Series, 3)

	assert.False(t, trend.Series[0].Failed())
	assert.True(t, trend.Series[1].Failed())
	assert.True(t, trend.Series[1].Result.NoData)
	assert.Contains(t, trend.Series[1].Err.Error(), "2021")
	assert.False(t, trend.Series[2].Failed())

	// Order is the caller's, not completion order.
	for i, entry := range trend.Series {
		assert.Equal(t, slices[i].Label, entry.Slice.Label)
	}
}
