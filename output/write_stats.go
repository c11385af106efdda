package output

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gocarina/gocsv"
	"github.com/landwatch/landwatch-analysis-api/internal/analysis"
	"github.com/landwatch/landwatch-analysis-api/internal/properties"
)

// trendRow is one slice of a trend series flattened for CSV export.
type trendRow struct {
	Slice       string  `csv:"slice"`
	NoData      bool    `csv:"no_data"`
	Failed      bool    `csv:"failed"`
	TotalPixels int     `csv:"total_pixels"`
	TotalArea   float64 `csv:"total_area_m2"`
	Mean        float64 `csv:"mean"`
	Min         float64 `csv:"min"`
	Max         float64 `csv:"max"`
	Median      float64 `csv:"median"`
	Q1          float64 `csv:"q1"`
	Q3          float64 `csv:"q3"`
}

// WriteStatsCSV saves the per-group breakdown of a single analysis result.
func WriteStatsCSV(result *analysis.Result, name string) (string, error) {
	path, err := resultPath(name)
	if err != nil {
		return "", err
	}
	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create CSV file: %w", err)
	}
	defer file.Close()

	if err := gocsv.MarshalFile(&result.Zonal.Groups, file); err != nil {
		return "", fmt.Errorf("failed to write CSV: %w", err)
	}
	return path, nil
}

// WriteTrendCSV saves one row per slice of a trend series, in series order.
func WriteTrendCSV(trend *analysis.TrendResult, name string) (string, error) {
	path, err := resultPath(name)
	if err != nil {
		return "", err
	}
	rows := make([]trendRow, 0, len(trend.Series))
	for _, entry := range trend.Series {
		row := trendRow{
			Slice:       entry.Slice.Label,
			NoData:      entry.Result.NoData,
			Failed:      entry.Failed(),
			TotalPixels: entry.Result.TotalPixels,
			TotalArea:   entry.Result.TotalArea,
		}
		if stats := entry.Result.Stats; stats != nil {
			row.Mean = stats.Mean
			row.Min = stats.Min
			row.Max = stats.Max
			row.Median = stats.Median
			row.Q1 = stats.Q1
			row.Q3 = stats.Q3
		}
		rows = append(rows, row)
	}

	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create CSV file: %w", err)
	}
	defer file.Close()

	if err := gocsv.MarshalFile(&rows, file); err != nil {
		return "", fmt.Errorf("failed to write CSV: %w", err)
	}
	return path, nil
}

func resultPath(name string) (string, error) {
	if !strings.HasSuffix(name, ".csv") {
		name += ".csv"
	}
	path := filepath.Join(properties.ResultsPath(), name)
	if err := os.MkdirAll(filepath.Dir(path), os.ModePerm); err != nil {
		return "", fmt.Errorf("failed to create results directory: %w", err)
	}
	return path, nil
}
