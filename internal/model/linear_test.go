package model

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

// syntheticDataset builds n rows of independent noise features with the
// target defined by fn over the feature row.
func syntheticDataset(n int, seed int64, fn func(x []float64) float64) Dataset {
	rng := rand.New(rand.NewSource(seed))
	p := len(FeatureNames)

	x := mat.NewDense(n, p, nil)
	y := make([]float64, n)
	row := make([]float64, p)

	for i := 0; i < n; i++ {
		for j := 0; j < p; j++ {
			row[j] = rng.NormFloat64() * 10
		}
		x.SetRow(i, row)
		y[i] = fn(row)
	}

	return Dataset{Names: FeatureNames, X: x, Y: y}
}

func TestFitLinearRecoversPlantedCoefficient(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	// future_cases = 2*cases + noise; every other predictor is irrelevant.
	ds := syntheticDataset(500, 3, func(x []float64) float64 {
		return 2*x[0] + rng.NormFloat64()*0.5
	})

	train, test, err := Split(ds.Len(), 0.8, rand.New(rand.NewSource(1)))
	require.NoError(t, err)

	fit, err := FitLinear(ds, train, test)
	require.NoError(t, err)

	byName := map[string]Coefficient{}
	for _, c := range fit.Coefficients {
		byName[c.Name] = c
	}

	assert.InDelta(t, 2.0, byName["cases"].Estimate, 0.05)
	for _, name := range FeatureNames[1:] {
		assert.InDelta(t, 0.0, byName[name].Estimate, 0.05, name)
	}

	// The planted term dominates the t-statistic ranking and is
	// overwhelmingly significant.
	assert.Equal(t, "cases", fit.Ranking[0])
	assert.Less(t, byName["cases"].PValue, 1e-6)
	assert.Greater(t, fit.R2, 0.99)
}

func TestFitLinearExactFit(t *testing.T) {
	ds := syntheticDataset(200, 5, func(x []float64) float64 {
		return 3 + 0.5*x[1] - 1.25*x[4]
	})

	train, test, err := Split(ds.Len(), 0.8, rand.New(rand.NewSource(2)))
	require.NoError(t, err)

	fit, err := FitLinear(ds, train, test)
	require.NoError(t, err)

	byName := map[string]Coefficient{}
	for _, c := range fit.Coefficients {
		byName[c.Name] = c
	}

	assert.InDelta(t, 3.0, byName["intercept"].Estimate, 1e-6)
	assert.InDelta(t, 0.5, byName["deaths"].Estimate, 1e-6)
	assert.InDelta(t, -1.25, byName["new_cases"].Estimate, 1e-6)

	assert.InDelta(t, 0.0, fit.TrainRMSE, 1e-6)
	assert.InDelta(t, 0.0, fit.TestRMSE, 1e-6)
	assert.InDelta(t, 1.0, fit.R2, 1e-9)
	assert.InDelta(t, 1.0, fit.AdjR2, 1e-9)
}

func TestFitLinearStatistics(t *testing.T) {
	rng := rand.New(rand.NewSource(17))
	ds := syntheticDataset(400, 9, func(x []float64) float64 {
		return 5*x[2] + rng.NormFloat64()
	})

	train, test, err := Split(ds.Len(), 0.8, rand.New(rand.NewSource(3)))
	require.NoError(t, err)

	fit, err := FitLinear(ds, train, test)
	require.NoError(t, err)

	require.Len(t, fit.Coefficients, len(FeatureNames)+1)
	assert.Equal(t, "intercept", fit.Coefficients[0].Name)

	for _, c := range fit.Coefficients {
		assert.False(t, math.IsNaN(c.StdErr), c.Name)
		assert.GreaterOrEqual(t, c.PValue, 0.0, c.Name)
		assert.LessOrEqual(t, c.PValue, 1.0, c.Name)
		if c.StdErr > 0 {
			assert.InDelta(t, c.Estimate/c.StdErr, c.TStat, 1e-9, c.Name)
		}
	}

	// Ranking covers every predictor exactly once, intercept excluded.
	assert.Len(t, fit.Ranking, len(FeatureNames))
	assert.Equal(t, "population_density", fit.Ranking[0])
	assert.NotContains(t, fit.Ranking, "intercept")

	// Test evaluation arrays line up with the test partition.
	assert.Len(t, fit.TestActual, len(test))
	assert.Len(t, fit.TestPredicted, len(test))
	assert.Greater(t, fit.TestRMSE, 0.0)
}

func TestFitLinearErrors(t *testing.T) {
	ds := syntheticDataset(12, 1, func(x []float64) float64 { return x[0] })

	t.Run("too few training rows", func(t *testing.T) {
		_, err := FitLinear(ds, []int{0, 1, 2, 3}, []int{4})
		assert.Error(t, err)
	})

	t.Run("empty test partition", func(t *testing.T) {
		train := []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11}
		_, err := FitLinear(ds, train, nil)
		assert.Error(t, err)
	})
}

func TestPredictMatchesCoefficients(t *testing.T) {
	ds := syntheticDataset(100, 21, func(x []float64) float64 { return 1 + x[0] })

	train, test, err := Split(ds.Len(), 0.8, rand.New(rand.NewSource(4)))
	require.NoError(t, err)

	fit, err := FitLinear(ds, train, test)
	require.NoError(t, err)

	features := make([]float64, len(FeatureNames))
	for j := range features {
		features[j] = float64(j + 1)
	}

	want := fit.Coefficients[0].Estimate
	for j, c := range fit.Coefficients[1:] {
		want += c.Estimate * features[j]
	}
	assert.InDelta(t, want, fit.Predict(features), 1e-12)
}
