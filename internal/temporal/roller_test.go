package temporal

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/landwatch/landwatch-analysis-api/internal/zonal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestYearSlices(t *testing.T) {
	slices := YearSlices(2020, 2022)
	require.Len(t, slices, 3)
	assert.Equal(t, "2020", slices[0].Label)
	assert.Equal(t, "2022", slices[2].Label)
	assert.Equal(t, 2021, slices[0].Dates.End.Year())
}

func TestRollPreservesCallerOrder(t *testing.T) {
	slices := YearSlices(2018, 2022)
	roller := NewRoller(4)

	// Later slices finish first; assembly must still follow request order.
	analyze := func(ctx context.Context, slice Slice) (*zonal.Result, error) {
		delay := time.Duration(2022-slice.Dates.Start.Year()) * 5 * time.Millisecond
		time.Sleep(delay)
		return &zonal.Result{TotalPixels: slice.Dates.Start.Year()}, nil
	}

	series, err := roller.Roll(context.Background(), slices, analyze)
	require.NoError(t, err)
	require.Len(t, series, 5)
	for i, entry := range series {
		assert.Equal(t, slices[i].Label, entry.Slice.Label)
		assert.Equal(t, 2018+i, entry.Result.TotalPixels)
	}
}

func TestRollIsolatesSliceFailure(t *testing.T) {
	slices := YearSlices(2020, 2022)
	roller := NewRoller(2)

	analyze := func(ctx context.Context, slice Slice) (*zonal.Result, error) {
		if slice.Label == "2021" {
			return nil, errors.New("provider quota exceeded")
		}
		return &zonal.Result{TotalPixels: 10}, nil
	}

	series, err := roller.Roll(context.Background(), slices, analyze)
	require.NoError(t, err, "one failed slice must not fail the roll")
	require.Len(t, series, 3)

	assert.False(t, series[0].Failed())
	assert.True(t, series[1].Failed())
	assert.True(t, series[1].Result.NoData)
	assert.Contains(t, series[1].Err.Error(), "2021")
	assert.Contains(t, series[1].Err.Error(), "quota")
	assert.False(t, series[2].Failed())
}

func TestRollFailsWhenAllSlicesFail(t *testing.T) {
	roller := NewRoller(2)
	analyze := func(ctx context.Context, slice Slice) (*zonal.Result, error) {
		return nil, fmt.Errorf("upstream down")
	}

	series, err := roller.Roll(context.Background(), YearSlices(2020, 2021), analyze)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "all 2 slices failed")
	require.Len(t, series, 2)
	for _, entry := range series {
		assert.True(t, entry.Result.NoData)
	}
}

func TestRollKeepsFinishedSlicesOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	roller := NewRoller(1)

	calls := 0
	analyze := func(ctx context.Context, slice Slice) (*zonal.Result, error) {
		calls++
		if calls == 1 {
			cancel()
		}
		return &zonal.Result{TotalPixels: calls}, nil
	}

	series, err := roller.Roll(ctx, YearSlices(2020, 2022), analyze)
	require.ErrorIs(t, err, context.Canceled)
	require.Len(t, series, 3)
	// The slice that finished before cancellation is kept.
	assert.False(t, series[0].Failed())
	assert.True(t, series[1].Failed())
	assert.True(t, series[2].Failed())
}

func TestRollEmpty(t *testing.T) {
	series, err := NewRoller(2).Roll(context.Background(), nil, nil)
	require.NoError(t, err)
	assert.Empty(t, series)
}
