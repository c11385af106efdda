package ndvi

import (
	"testing"

	"github.com/landwatch/landwatch-analysis-api/internal/raster"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func bandOf(width, height int, values ...float64) *raster.Band {
	band := raster.NewBand(width, height)
	copy(band.Values, values)
	return band
}

func allValid(n int) []bool {
	valid := make([]bool, n)
	for i := range valid {
		valid[i] = true
	}
	return valid
}

func TestComputeIndex(t *testing.T) {
	nir := bandOf(2, 2, 0.2, 0.6, 0.6, 0.8)
	red := bandOf(2, 2, 0.2, 0.2, 0.2, 0.2)

	index, valid, err := ComputeIndex(nir, red, allValid(4))
	require.NoError(t, err)

	assert.Equal(t, []bool{true, true, true, true}, valid)
	assert.InDelta(t, 0.0, index.Values[0], 1e-9)
	assert.InDelta(t, 0.5, index.Values[1], 1e-9)
	assert.InDelta(t, 0.5, index.Values[2], 1e-9)
	assert.InDelta(t, 0.6, index.Values[3], 1e-9)
}

func TestComputeIndexZeroDenominator(t *testing.T) {
	nir := bandOf(2, 1, 0.0, 0.3)
	red := bandOf(2, 1, 0.0, 0.1)

	index, valid, err := ComputeIndex(nir, red, allValid(2))
	require.NoError(t, err)

	// nir+red == 0 is excluded, never NaN or Inf.
	assert.False(t, valid[0])
	assert.True(t, valid[1])
	assert.InDelta(t, 0.5, index.Values[1], 1e-9)
}

func TestComputeIndexOutOfRangeExcluded(t *testing.T) {
	// A negative reflectance artifact pushes the ratio outside [-1,1].
	nir := bandOf(2, 1, 0.6, 0.3)
	red := bandOf(2, 1, -0.2, 0.1)

	_, valid, err := ComputeIndex(nir, red, allValid(2))
	require.NoError(t, err)

	assert.False(t, valid[0], "out-of-range index must be excluded, not clamped")
	assert.True(t, valid[1])
}

func TestComputeIndexKeepsUpstreamMask(t *testing.T) {
	nir := bandOf(2, 1, 0.6, 0.6)
	red := bandOf(2, 1, 0.2, 0.2)

	_, valid, err := ComputeIndex(nir, red, []bool{false, true})
	require.NoError(t, err)
	assert.Equal(t, []bool{false, true}, valid)
}

func TestComputeIndexSizeMismatch(t *testing.T) {
	_, _, err := ComputeIndex(bandOf(2, 1, 0, 0), bandOf(1, 1, 0), allValid(2))
	require.Error(t, err)
}

func TestDensityBandsPartition(t *testing.T) {
	bands := DensityBands()
	require.Len(t, bands, 4)

	assert.Equal(t, -1.0, bands[0].Lo)
	assert.Equal(t, 1.0, bands[len(bands)-1].Hi)
	for i := 1; i < len(bands); i++ {
		assert.Equal(t, bands[i-1].Hi, bands[i].Lo, "bands must not gap or overlap")
	}
}

func TestAssignBandBoundaries(t *testing.T) {
	cases := []struct {
		value float64
		want  string
	}{
		{-1.0, "water_or_bare"},
		{0.0, "water_or_bare"},
		{0.0999, "water_or_bare"},
		{0.1, "sparse_vegetation"}, // lower bounds are inclusive
		{0.3, "moderate_vegetation"},
		{0.5, "moderate_vegetation"},
		{0.6, "dense_vegetation"},
		{1.0, "dense_vegetation"}, // final band is closed on both ends
	}
	for _, tc := range cases {
		band, ok := AssignBand(tc.value)
		require.True(t, ok, "value %v", tc.value)
		assert.Equal(t, tc.want, band.ID, "value %v", tc.value)
	}
}

func TestAssignBandOutOfRange(t *testing.T) {
	_, ok := AssignBand(1.5)
	assert.False(t, ok)
	_, ok = AssignBand(-1.0001)
	assert.False(t, ok)
}
