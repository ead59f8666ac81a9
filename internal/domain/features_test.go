package domain

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPopulationDensity(t *testing.T) {
	t.Run("population per square mile", func(t *testing.T) {
		assert.InDelta(t, 250.0, PopulationDensity(10000, 40), 1e-9)
	})

	t.Run("missing inputs give NaN", func(t *testing.T) {
		assert.True(t, math.IsNaN(PopulationDensity(math.NaN(), 40)))
		assert.True(t, math.IsNaN(PopulationDensity(10000, math.NaN())))
	})

	t.Run("zero or negative area gives NaN", func(t *testing.T) {
		assert.True(t, math.IsNaN(PopulationDensity(10000, 0)))
		assert.True(t, math.IsNaN(PopulationDensity(10000, -3)))
	})
}

func TestMaskCompliance(t *testing.T) {
	tests := []struct {
		name                                         string
		never, rarely, sometimes, frequently, always float64
		expected                                     float64
	}{
		{"all never", 1, 0, 0, 0, 0, 0},
		{"all always", 0, 0, 0, 0, 1, 1},
		{"uniform", 0.2, 0.2, 0.2, 0.2, 0.2, 0.5},
		{"survey-like", 0.053, 0.074, 0.134, 0.295, 0.444, 0.053*0 + 0.074*0.25 + 0.134*0.5 + 0.295*0.75 + 0.444*1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MaskCompliance(tt.never, tt.rarely, tt.sometimes, tt.frequently, tt.always)
			assert.InDelta(t, tt.expected, got, 1e-12)
		})
	}

	t.Run("bounded for any shares summing to one", func(t *testing.T) {
		shares := [][5]float64{
			{1, 0, 0, 0, 0},
			{0, 0, 0, 0, 1},
			{0.5, 0.5, 0, 0, 0},
			{0, 0, 0, 0.5, 0.5},
			{0.1, 0.15, 0.2, 0.25, 0.3},
		}
		for _, s := range shares {
			got := MaskCompliance(s[0], s[1], s[2], s[3], s[4])
			assert.GreaterOrEqual(t, got, 0.0)
			assert.LessOrEqual(t, got, 1.0)
		}
	})

	t.Run("NaN propagates", func(t *testing.T) {
		assert.True(t, math.IsNaN(MaskCompliance(math.NaN(), 0, 0, 0, 1)))
		assert.True(t, math.IsNaN(MaskCompliance(0, 0, 0, 0, math.NaN())))
	})
}

func TestExcludedTerritory(t *testing.T) {
	for _, state := range []string{"Puerto Rico", "Virgin Islands", "Guam", "Northern Mariana Islands"} {
		assert.True(t, ExcludedTerritory(state), state)
	}
	for _, state := range []string{"Texas", "California", "District of Columbia", ""} {
		assert.False(t, ExcludedTerritory(state), state)
	}
}

func TestEnrichedRowComplete(t *testing.T) {
	full := EnrichedRow{
		PopulationDensity: 1, MaskCompliance: 0.5,
		NewCases: 2, NewDeaths: 0,
		RollAvgNewCases: 1.5, RollAvgNewDeaths: 0.1,
		FutureCases: 30, FutureDeaths: 2,
	}
	assert.True(t, full.Complete())

	missing := full
	missing.RollAvgNewDeaths = math.NaN()
	assert.False(t, missing.Complete())
}
