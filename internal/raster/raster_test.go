package raster

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testClip() *Clip {
	band := NewBand(2, 2)
	copy(band.Values, []float64{1, 2, 3, 4})
	return &Clip{
		Width:  2,
		Height: 2,
		Bands:  map[string]*Band{"NIR": band},
		Valid:  []bool{true, false, true, true},
		Area:   []float64{100, 100, 90, 90},
	}
}

func TestClipSamplesExcludeMasked(t *testing.T) {
	clip := testClip()
	samples, err := clip.Samples("NIR")
	require.NoError(t, err)
	require.Len(t, samples, 3, "masked pixels are dropped, not zero-area")
	assert.Equal(t, Sample{Value: 1, Area: 100}, samples[0])
	assert.Equal(t, Sample{Value: 3, Area: 90}, samples[1])
	assert.Equal(t, Sample{Value: 4, Area: 90}, samples[2])

	assert.Equal(t, 3, clip.ValidCount())
}

func TestClipUnknownBand(t *testing.T) {
	clip := testClip()
	_, err := clip.Band("RED")
	require.Error(t, err)
	_, err = clip.Samples("RED")
	require.Error(t, err)
}

func TestDateRangeString(t *testing.T) {
	dates := DateRange{
		Start: time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	assert.Equal(t, "2023-01-01..2024-01-01", dates.String())
}

func TestMemorySource(t *testing.T) {
	source := NewMemorySource()
	dates := DateRange{
		Start: time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2023, 2, 1, 0, 0, 0, 0, time.UTC),
	}
	source.Put(dates, testClip())

	clip, err := source.FetchClip(context.Background(), nil, []string{"NIR"}, dates)
	require.NoError(t, err)
	assert.Equal(t, 2, clip.Width)

	_, err = source.FetchClip(context.Background(), nil, []string{"RED"}, dates)
	require.Error(t, err, "missing band must fail the fetch")

	other := DateRange{Start: dates.End, End: dates.End.AddDate(0, 1, 0)}
	_, err = source.FetchClip(context.Background(), nil, []string{"NIR"}, other)
	require.Error(t, err)

	source.Fail(other, errors.New("boom"))
	_, err = source.FetchClip(context.Background(), nil, []string{"NIR"}, other)
	require.ErrorContains(t, err, "boom")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = source.FetchClip(ctx, nil, []string{"NIR"}, dates)
	require.ErrorIs(t, err, context.Canceled)
}
