package model

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"
)

// Coefficient is one fitted regression term with its inference statistics.
type Coefficient struct {
	Name     string
	Estimate float64
	StdErr   float64
	TStat    float64
	PValue   float64
}

// LinearFit holds the fitted OLS model and its evaluation on both
// partitions.
type LinearFit struct {
	Coefficients []Coefficient // intercept first, then FeatureNames order
	R2           float64
	AdjR2        float64
	TrainRMSE    float64
	TestRMSE     float64

	// Ranking orders the predictors by |t|, largest first. The intercept
	// is not ranked.
	Ranking []string

	TestActual    []float64
	TestPredicted []float64
}

// FitLinear fits future cases on the full predictor set plus an intercept
// by ordinary least squares over the train partition and evaluates on both
// partitions. No regularization.
func FitLinear(ds Dataset, train, test []int) (*LinearFit, error) {
	p := len(ds.Names)
	m := p + 1 // with intercept

	if len(train) <= m {
		return nil, fmt.Errorf("need more than %d training rows for %d parameters, got %d", m, m, len(train))
	}
	if len(test) == 0 {
		return nil, fmt.Errorf("empty test partition")
	}

	x := designMatrix(ds, train)
	y := mat.NewVecDense(len(train), nil)
	for i, idx := range train {
		y.SetVec(i, ds.Y[idx])
	}

	beta, xtxInv, err := solveOLS(x, y)
	if err != nil {
		return nil, err
	}

	n := len(train)

	// Train residuals and fit statistics.
	var fitted mat.VecDense
	fitted.MulVec(x, beta)

	rss := 0.0
	mean := 0.0
	for i := 0; i < n; i++ {
		mean += y.AtVec(i)
	}
	mean /= float64(n)

	tss := 0.0
	for i := 0; i < n; i++ {
		r := y.AtVec(i) - fitted.AtVec(i)
		rss += r * r
		d := y.AtVec(i) - mean
		tss += d * d
	}

	dof := float64(n - m)
	sigma2 := rss / dof

	r2 := 0.0
	if tss > 0 {
		r2 = 1 - rss/tss
	}
	adjR2 := 1 - (1-r2)*float64(n-1)/dof

	tDist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: dof}
	coefs := make([]Coefficient, m)
	for j := 0; j < m; j++ {
		name := "intercept"
		if j > 0 {
			name = ds.Names[j-1]
		}

		est := beta.AtVec(j)
		se := math.Sqrt(sigma2 * xtxInv.At(j, j))

		var tstat, pval float64
		if se > 0 {
			tstat = est / se
			pval = 2 * tDist.Survival(math.Abs(tstat))
		} else {
			tstat = math.Inf(sign(est))
			pval = 0
		}

		coefs[j] = Coefficient{Name: name, Estimate: est, StdErr: se, TStat: tstat, PValue: pval}
	}

	fit := &LinearFit{
		Coefficients: coefs,
		R2:           r2,
		AdjR2:        adjR2,
		TrainRMSE:    math.Sqrt(rss / float64(n)),
		Ranking:      rankByT(coefs),
	}

	fit.TestActual, fit.TestPredicted = predictSubset(ds, test, beta)
	fit.TestRMSE = RMSE(fit.TestActual, fit.TestPredicted)

	return fit, nil
}

// Predict evaluates the fitted model on one feature vector ordered as
// Dataset.Names.
func (f *LinearFit) Predict(features []float64) float64 {
	v := f.Coefficients[0].Estimate
	for j, c := range f.Coefficients[1:] {
		v += c.Estimate * features[j]
	}
	return v
}

// designMatrix assembles the intercept-augmented design matrix for the
// given row subset.
func designMatrix(ds Dataset, rows []int) *mat.Dense {
	p := len(ds.Names)
	x := mat.NewDense(len(rows), p+1, nil)
	for i, idx := range rows {
		x.Set(i, 0, 1)
		for j := 0; j < p; j++ {
			x.Set(i, j+1, ds.X.At(idx, j))
		}
	}
	return x
}

// solveOLS computes beta = (X'X)^-1 X'y via the normal equations, falling
// back to an SVD least-squares solve when X'X is singular. The inverse is
// also returned for coefficient standard errors; in the SVD fallback it is
// the pseudoinverse of X'X.
func solveOLS(x *mat.Dense, y *mat.VecDense) (*mat.VecDense, *mat.Dense, error) {
	_, m := x.Dims()

	var xtx mat.Dense
	xtx.Mul(x.T(), x)

	var xtxInv mat.Dense
	if err := xtxInv.Inverse(&xtx); err != nil {
		// Degenerate design (constant column, perfectly collinear
		// predictors). Solve with SVD and pseudo-inverse.
		var svd mat.SVD
		if ok := svd.Factorize(&xtx, mat.SVDFull); !ok {
			return nil, nil, fmt.Errorf("design matrix is degenerate and SVD failed: %w", err)
		}
		var pinv mat.Dense
		if perr := pinvTo(&pinv, &svd, m); perr != nil {
			return nil, nil, fmt.Errorf("design matrix is degenerate: %w", perr)
		}
		xtxInv = pinv
	}

	var xty mat.VecDense
	xty.MulVec(x.T(), y)

	beta := mat.NewVecDense(m, nil)
	beta.MulVec(&xtxInv, &xty)
	return beta, &xtxInv, nil
}

// pinvTo writes the Moore-Penrose pseudoinverse of the factorized square
// matrix into dst.
func pinvTo(dst *mat.Dense, svd *mat.SVD, m int) error {
	const tol = 1e-12

	var u, v mat.Dense
	svd.UTo(&u)
	svd.VTo(&v)
	s := svd.Values(nil)

	sInv := mat.NewDense(m, m, nil)
	rank := 0
	for i, sv := range s {
		if sv > tol*s[0] {
			sInv.Set(i, i, 1/sv)
			rank++
		}
	}
	if rank == 0 {
		return fmt.Errorf("numerically zero design matrix")
	}

	var tmp mat.Dense
	tmp.Mul(&v, sInv)
	dst.Mul(&tmp, u.T())
	return nil
}

func predictSubset(ds Dataset, rows []int, beta *mat.VecDense) (actual, predicted []float64) {
	p := len(ds.Names)
	actual = make([]float64, len(rows))
	predicted = make([]float64, len(rows))
	for i, idx := range rows {
		v := beta.AtVec(0)
		for j := 0; j < p; j++ {
			v += beta.AtVec(j+1) * ds.X.At(idx, j)
		}
		actual[i] = ds.Y[idx]
		predicted[i] = v
	}
	return actual, predicted
}

// rankByT orders predictor names by t-statistic magnitude, largest first.
func rankByT(coefs []Coefficient) []string {
	predictors := append([]Coefficient(nil), coefs[1:]...)
	sort.SliceStable(predictors, func(i, j int) bool {
		return math.Abs(predictors[i].TStat) > math.Abs(predictors[j].TStat)
	})

	names := make([]string, len(predictors))
	for i, c := range predictors {
		names[i] = c.Name
	}
	return names
}

func sign(v float64) int {
	if v < 0 {
		return -1
	}
	return 1
}
