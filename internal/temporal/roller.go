// Package temporal repeats a zonal analysis across an ordered sequence of
// time slices and assembles the trend series.
package temporal

import (
	"context"
	"fmt"
	"time"

	"github.com/gammazero/workerpool"
	"github.com/landwatch/landwatch-analysis-api/internal/raster"
	"github.com/landwatch/landwatch-analysis-api/internal/zonal"
)

// Slice is one requested time window of a roll.
type Slice struct {
	Label string
	Dates raster.DateRange
}

// YearSlices builds calendar-year slices for [startYear, endYear], the
// windowing the yearly NDVI trend uses.
func YearSlices(startYear, endYear int) []Slice {
	slices := make([]Slice, 0, endYear-startYear+1)
	for year := startYear; year <= endYear; year++ {
		slices = append(slices, Slice{
			Label: fmt.Sprintf("%d", year),
			Dates: raster.DateRange{
				Start: time.Date(year, 1, 1, 0, 0, 0, 0, time.UTC),
				End:   time.Date(year+1, 1, 1, 0, 0, 0, 0, time.UTC),
			},
		})
	}
	return slices
}

// Entry pairs a slice with its zonal result. A failed slice keeps its
// position in the series with a NoData result and the error that sank it.
type Entry struct {
	Slice  Slice
	Result *zonal.Result
	Err    error
}

func (e Entry) Failed() bool {
	return e.Err != nil
}

// Series is the assembled trend, in the caller's requested slice order.
type Series []Entry

// AnalyzeFunc computes one slice. Implementations are expected to be safe to
// call concurrently.
type AnalyzeFunc func(ctx context.Context, slice Slice) (*zonal.Result, error)

// Roller fans slices out over a bounded worker pool. Slices are independent,
// so completion order is arbitrary; series order is imposed at assembly time
// by writing each result into its slice's position.
type Roller struct {
	Workers int
}

func NewRoller(workers int) *Roller {
	if workers < 1 {
		workers = 1
	}
	return &Roller{Workers: workers}
}

// Roll runs analyze for every slice and returns one entry per slice, in the
// requested order. One failed slice never aborts the others; the roll as a
// whole errors only when every slice failed, or when the context was
// cancelled; even then the entries finished so far are returned.
func (r *Roller) Roll(ctx context.Context, slices []Slice, analyze AnalyzeFunc) (Series, error) {
	series := make(Series, len(slices))
	wp := workerpool.New(r.Workers)
	for i, slice := range slices {
		i, slice := i, slice
		wp.Submit(func() {
			if err := ctx.Err(); err != nil {
				series[i] = Entry{Slice: slice, Result: &zonal.Result{NoData: true}, Err: err}
				return
			}
			result, err := analyze(ctx, slice)
			if err != nil {
				series[i] = Entry{
					Slice:  slice,
					Result: &zonal.Result{NoData: true},
					Err:    fmt.Errorf("slice %s (%s): %w", slice.Label, slice.Dates, err),
				}
				return
			}
			series[i] = Entry{Slice: slice, Result: result}
		})
	}
	wp.StopWait()

	if err := ctx.Err(); err != nil {
		return series, err
	}
	failed := 0
	var firstErr error
	for _, entry := range series {
		if entry.Failed() {
			failed++
			if firstErr == nil {
				firstErr = entry.Err
			}
		}
	}
	if len(slices) > 0 && failed == len(slices) {
		return series, fmt.Errorf("all %d slices failed: %w", failed, firstErr)
	}
	return series, nil
}
