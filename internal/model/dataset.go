// Package model fits and evaluates the two forecast models: an ordinary
// least squares regression and an ANOVA regression tree, both predicting
// the cumulative case count 14 days ahead.
package model

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/couchcryptid/county-covid-report/internal/domain"
)

// FeatureNames lists the predictors in column order. Identifying columns
// (fips, county, state, date) and the death-count target never enter the
// design matrix.
var FeatureNames = []string{
	"cases",
	"deaths",
	"population_density",
	"mask_compliance",
	"new_cases",
	"new_deaths",
	"roll_avg_new_cases",
	"roll_avg_new_deaths",
}

// Dataset is a numeric design matrix with the forecast target, detached
// from the identifying columns of the enriched rows.
type Dataset struct {
	Names []string
	X     *mat.Dense // n x len(Names)
	Y     []float64  // future cases, length n
}

// FromEnriched builds the modeling dataset from completed enriched rows.
// Rows with any NaN are rejected: the pipeline's drop step is responsible
// for filtering, and a NaN reaching the models is a bug.
func FromEnriched(rows []domain.EnrichedRow) (Dataset, error) {
	if len(rows) == 0 {
		return Dataset{}, fmt.Errorf("no rows to model")
	}

	p := len(FeatureNames)
	x := mat.NewDense(len(rows), p, nil)
	y := make([]float64, len(rows))

	for i, r := range rows {
		if !r.Complete() {
			return Dataset{}, fmt.Errorf("row %d (%s %s): incomplete row reached modeling", i, r.FIPS, r.Date.Format("2006-01-02"))
		}
		x.SetRow(i, []float64{
			r.Cases,
			r.Deaths,
			r.PopulationDensity,
			r.MaskCompliance,
			r.NewCases,
			r.NewDeaths,
			r.RollAvgNewCases,
			r.RollAvgNewDeaths,
		})
		y[i] = r.FutureCases
	}

	return Dataset{Names: FeatureNames, X: x, Y: y}, nil
}

// Len returns the number of rows.
func (d Dataset) Len() int {
	if d.X == nil {
		return 0
	}
	n, _ := d.X.Dims()
	return n
}

// RMSE returns the root mean squared error between two equal-length
// slices, or NaN for empty input.
func RMSE(actual, predicted []float64) float64 {
	if len(actual) == 0 || len(actual) != len(predicted) {
		return math.NaN()
	}
	sum := 0.0
	for i := range actual {
		d := actual[i] - predicted[i]
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(actual)))
}
