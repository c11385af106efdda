// Package zonal computes area-weighted statistics over the valid pixels of a
// region. It is pure computation: no I/O, no shared state, safe to run for
// many regions concurrently.
package zonal

import (
	"sort"

	"github.com/landwatch/landwatch-analysis-api/internal/raster"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Keyer buckets a raw pixel value. A false return drops the sample from the
// result entirely.
type Keyer func(v float64) (key string, ok bool)

// Group is the rollup for one band or class key.
type Group struct {
	Key     string  `csv:"key" json:"key"`
	Pixels  int     `csv:"pixels" json:"pixels"`
	Area    float64 `csv:"area_m2" json:"area_m2"`
	Percent float64 `csv:"percent" json:"percent"`
}

// Stats are the descriptive statistics over raw (unbanded) index values.
// Quartiles use linear interpolation between closest ranks (gonum
// stat.LinInterp), fixed here so repeated runs are bit-reproducible.
type Stats struct {
	Mean   float64 `json:"mean"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Median float64 `json:"median"`
	Q1     float64 `json:"q1"`
	Q3     float64 `json:"q3"`
}

// Result is the zonal rollup for one region and date range. When the region
// has no valid pixels at all, NoData is set and Groups is empty; that is a
// well-formed answer, not a failure.
type Result struct {
	NoData      bool    `json:"no_data"`
	TotalPixels int     `json:"total_pixels"`
	TotalArea   float64 `json:"total_area_m2"`
	Groups      []Group `json:"groups"`
	Stats       *Stats  `json:"stats,omitempty"`
}

// Aggregate groups valid samples by key in a single pass, summing per-pixel
// areas. Percentages are of total valid area, so they account for varying
// pixel sizes on reprojected grids. Group order follows the order slice;
// keys outside it are appended alphabetically. Empty groups are omitted.
func Aggregate(samples []raster.Sample, keyer Keyer, order []string) *Result {
	type accum struct {
		pixels int
		area   float64
	}
	accums := make(map[string]*accum)
	totalArea := 0.0
	totalPixels := 0
	for _, s := range samples {
		key, ok := keyer(s.Value)
		if !ok {
			continue
		}
		a := accums[key]
		if a == nil {
			a = &accum{}
			accums[key] = a
		}
		a.pixels++
		a.area += s.Area
		totalArea += s.Area
		totalPixels++
	}

	if totalArea == 0 {
		return &Result{NoData: true, Groups: []Group{}}
	}

	result := &Result{
		TotalPixels: totalPixels,
		TotalArea:   totalArea,
		Groups:      make([]Group, 0, len(accums)),
	}
	emit := func(key string) {
		a, ok := accums[key]
		if !ok {
			return
		}
		result.Groups = append(result.Groups, Group{
			Key:     key,
			Pixels:  a.pixels,
			Area:    a.area,
			Percent: a.area / totalArea * 100,
		})
		delete(accums, key)
	}
	for _, key := range order {
		emit(key)
	}
	rest := make([]string, 0, len(accums))
	for key := range accums {
		rest = append(rest, key)
	}
	sort.Strings(rest)
	for _, key := range rest {
		emit(key)
	}
	return result
}

// AggregateWithStats runs Aggregate and adds descriptive statistics over the
// raw values of the same sample set the grouping pass saw.
func AggregateWithStats(samples []raster.Sample, keyer Keyer, order []string) *Result {
	result := Aggregate(samples, keyer, order)
	if result.NoData {
		return result
	}
	values := make([]float64, 0, len(samples))
	for _, s := range samples {
		if _, ok := keyer(s.Value); ok {
			values = append(values, s.Value)
		}
	}
	sort.Float64s(values)
	result.Stats = &Stats{
		Mean:   stat.Mean(values, nil),
		Min:    floats.Min(values),
		Max:    floats.Max(values),
		Median: stat.Quantile(0.50, stat.LinInterp, values, nil),
		Q1:     stat.Quantile(0.25, stat.LinInterp, values, nil),
		Q3:     stat.Quantile(0.75, stat.LinInterp, values, nil),
	}
	return result
}
