package factors

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestZScores_MeanZeroStdDevOne(t *testing.T) {
	inputs := [][]float64{
		{1, 2, 3, 4, 5},
		{-10, 0, 10},
		{0.001, 0.002, 0.004, 0.008},
		{100, -50, 3, 7, 7, 7, 200},
	}

	for _, values := range inputs {
		z := ZScores(values)
		require.Len(t, z, len(values))

		var sum float64
		for _, v := range z {
			sum += v
		}
		mean := sum / float64(len(z))
		assert.InDelta(t, 0.0, mean, 1e-9)

		var variance float64
		for _, v := range z {
			variance += (v - mean) * (v - mean)
		}
		variance /= float64(len(z))
		assert.InDelta(t, 1.0, math.Sqrt(variance), 1e-9)
	}
}

func TestZScores_KnownValues(t *testing.T) {
	// Population sigma of {1,2,3} is sqrt(2/3).
	z := ZScores([]float64{1, 2, 3})
	sigma := math.Sqrt(2.0 / 3.0)
	assert.InDelta(t, -1/sigma, z[0], 1e-9)
	assert.InDelta(t, 0, z[1], 1e-9)
	assert.InDelta(t, 1/sigma, z[2], 1e-9)
}

func TestZScores_DegenerateCrossSection(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
	}{
		{"all identical", []float64{7, 7, 7, 7}},
		{"single value", []float64{42}},
		{"all zeros", []float64{0, 0, 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			z := ZScores(tt.values)
			require.Len(t, z, len(tt.values))
			for _, v := range z {
				assert.Zero(t, v)
			}
		})
	}
}

func TestZScores_Empty(t *testing.T) {
	z := ZScores(nil)
	assert.Empty(t, z)

	z = ZScores([]float64{})
	assert.Empty(t, z)
}

func TestZScores_OrderPreserved(t *testing.T) {
	z := ZScores([]float64{3, 1, 2})
	assert.Greater(t, z[0], z[2])
	assert.Greater(t, z[2], z[1])
}
