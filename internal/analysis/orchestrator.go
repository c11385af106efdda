// Package analysis sequences fetch, index math, aggregation and rendering
// into complete analysis products. It holds no cross-request state beyond
// the injected collaborators, so one orchestrator serves concurrent
// requests.
package analysis

import (
	"context"
	"fmt"
	"time"

	"github.com/landwatch/landwatch-analysis-api/internal/geometry"
	"github.com/landwatch/landwatch-analysis-api/internal/landcover"
	"github.com/landwatch/landwatch-analysis-api/internal/ndvi"
	"github.com/landwatch/landwatch-analysis-api/internal/raster"
	"github.com/landwatch/landwatch-analysis-api/internal/render"
	"github.com/landwatch/landwatch-analysis-api/internal/temporal"
	"github.com/landwatch/landwatch-analysis-api/internal/zonal"
	"golang.org/x/sync/errgroup"
)

// Stage names the phase an analysis request is in. A request moves Fetching →
// Computing → Aggregating → Rendering → Done, or stops at Failed. Nothing is
// retried here; retry policy belongs to the raster source.
type Stage string

const (
	StageFetching    Stage = "fetching"
	StageComputing   Stage = "computing"
	StageAggregating Stage = "aggregating"
	StageRendering   Stage = "rendering"
	StageDone        Stage = "done"
	StageFailed      Stage = "failed"
)

// StageError records which stage sank a request, so slice failures inside a
// roll can be reported precisely.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("analysis failed while %s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

func failAt(stage Stage, err error) error {
	return &StageError{Stage: stage, Err: err}
}

// Orchestrator wires the computation chain to an injected raster source.
type Orchestrator struct {
	Source  raster.Source
	Workers int
}

func NewOrchestrator(source raster.Source, workers int) *Orchestrator {
	if workers < 1 {
		workers = 4
	}
	return &Orchestrator{Source: source, Workers: workers}
}

// densityKeyer buckets index values into the static density partition.
func densityKeyer(v float64) (string, bool) {
	band, ok := ndvi.AssignBand(v)
	if !ok {
		return "", false
	}
	return band.Label, true
}

func densityOrder() []string {
	bands := ndvi.DensityBands()
	order := make([]string, len(bands))
	for i, band := range bands {
		order[i] = band.Label
	}
	return order
}

func classKeyer(lookup func(int) landcover.Class) zonal.Keyer {
	return func(v float64) (string, bool) {
		return lookup(int(v)).Name, true
	}
}

func classOrder(classes []landcover.Class) []string {
	order := make([]string, 0, len(classes)+1)
	for _, class := range classes {
		order = append(order, class.Name)
	}
	return append(order, landcover.Unclassified.Name)
}

// AnalyzeNDVI produces the vegetation-health product for one region and date
// range: banded zonal statistics with the descriptive stats over raw index
// values, plus the continuous-ramp overlay.
func (o *Orchestrator) AnalyzeNDVI(ctx context.Context, region *geometry.Region, dates raster.DateRange) (*Result, error) {
	clip, err := o.Source.FetchClip(ctx, region, []string{ndvi.BandNIR, ndvi.BandRed}, dates)
	if err != nil {
		return nil, failAt(StageFetching, err)
	}

	index, valid, err := ndvi.ComputeClipIndex(clip)
	if err != nil {
		return nil, failAt(StageComputing, err)
	}

	samples := raster.SamplesOf(index, valid, clip.Area)
	result := zonal.AggregateWithStats(samples, densityKeyer, densityOrder())

	overlay := render.ColorizeIndex(index, valid, render.IndexRamp())

	return &Result{
		Region:      region.Name,
		Dates:       dates,
		Kind:        KindNDVI,
		Zonal:       result,
		Overlay:     overlay,
		GeneratedAt: time.Now().UTC(),
	}, nil
}

// AnalyzeLandCover produces the 17-class IGBP breakdown with its discrete
// overlay. Unknown codes land in the Unclassified group and stay in totals.
func (o *Orchestrator) AnalyzeLandCover(ctx context.Context, region *geometry.Region, dates raster.DateRange) (*Result, error) {
	return o.analyzeClasses(ctx, region, dates, KindIGBP, landcover.BandIGBP, landcover.LookupIGBP, landcover.IGBPClasses())
}

// AnalyzeWorldCover is the same categorical path against the 11-class ESA
// WorldCover table.
func (o *Orchestrator) AnalyzeWorldCover(ctx context.Context, region *geometry.Region, dates raster.DateRange) (*Result, error) {
	return o.analyzeClasses(ctx, region, dates, KindWorldCover, landcover.BandWorldCover, landcover.LookupWorldCover, landcover.WorldCoverClasses())
}

func (o *Orchestrator) analyzeClasses(ctx context.Context, region *geometry.Region, dates raster.DateRange, kind Kind, bandName string, lookup func(int) landcover.Class, classes []landcover.Class) (*Result, error) {
	clip, err := o.Source.FetchClip(ctx, region, []string{bandName}, dates)
	if err != nil {
		return nil, failAt(StageFetching, err)
	}

	codes, err := clip.Band(bandName)
	if err != nil {
		return nil, failAt(StageComputing, err)
	}

	samples := raster.SamplesOf(codes, clip.Valid, clip.Area)
	result := zonal.Aggregate(samples, classKeyer(lookup), classOrder(classes))

	overlay := render.ColorizeClasses(codes, clip.Valid, lookup)

	return &Result{
		Region:      region.Name,
		Dates:       dates,
		Kind:        kind,
		Zonal:       result,
		Overlay:     overlay,
		GeneratedAt: time.Now().UTC(),
	}, nil
}

// AnalyzeAll computes the NDVI and IGBP products concurrently; the two
// requests are independent, so either failure cancels the other.
func (o *Orchestrator) AnalyzeAll(ctx context.Context, region *geometry.Region, dates raster.DateRange) (*CombinedResult, error) {
	combined := &CombinedResult{}
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		result, err := o.AnalyzeNDVI(ctx, region, dates)
		combined.NDVI = result
		return err
	})
	g.Go(func() error {
		result, err := o.AnalyzeLandCover(ctx, region, dates)
		combined.LandCover = result
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return combined, nil
}

// RollNDVI repeats the NDVI analysis over the given slices, preserving slice
// order in the output series regardless of completion order or per-slice
// failures.
func (o *Orchestrator) RollNDVI(ctx context.Context, region *geometry.Region, slices []temporal.Slice) (*TrendResult, error) {
	roller := temporal.NewRoller(o.Workers)
	series, err := roller.Roll(ctx, slices, func(ctx context.Context, slice temporal.Slice) (*zonal.Result, error) {
		result, err := o.AnalyzeNDVI(ctx, region, slice.Dates)
		if err != nil {
			return nil, err
		}
		return result.Zonal, nil
	})
	if err != nil {
		return nil, err
	}
	return &TrendResult{
		Region:      region.Name,
		Kind:        KindNDVI,
		Series:      series,
		GeneratedAt: time.Now().UTC(),
	}, nil
}
