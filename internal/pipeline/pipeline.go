// Package pipeline joins the raw tables, engineers the per-county
// features, fits the two forecast models, and hands the result to the
// reporter. One run processes one full snapshot of each dataset; any
// failure aborts the run.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/couchcryptid/county-covid-report/internal/domain"
	"github.com/couchcryptid/county-covid-report/internal/model"
	"github.com/couchcryptid/county-covid-report/internal/observability"
)

// Source supplies the four raw tables. The HTTP adapter implements it with
// URLs bound from config; tests substitute fixtures.
type Source interface {
	Cases(ctx context.Context) ([]domain.CaseRow, error)
	Population(ctx context.Context) ([]domain.Population, error)
	LandArea(ctx context.Context) ([]domain.LandArea, error)
	MaskUse(ctx context.Context) ([]domain.MaskUse, error)
}

// Reporter renders the finished run. Pass nil to skip rendering.
type Reporter interface {
	Render(ctx context.Context, res *Result) error
}

// Params are the modeling knobs for one run. The two seeds feed separate
// random sources so the linear and tree test partitions are drawn
// independently.
type Params struct {
	TrainFraction float64
	LinearSeed    int64
	TreeSeed      int64
	Tree          model.TreeConfig
}

// Result is everything a run produces.
type Result struct {
	Join     JoinStats
	Features FeatureStats
	Rows     []domain.EnrichedRow
	Dataset  model.Dataset
	Linear   *model.LinearFit
	Tree     *model.TreeFit
	Duration time.Duration
}

// Pipeline wires the stages together.
type Pipeline struct {
	source   Source
	reporter Reporter
	params   Params
	logger   *slog.Logger
	metrics  *observability.Metrics
}

// New creates a Pipeline with the given stages and observability.
func New(source Source, reporter Reporter, params Params, logger *slog.Logger, metrics *observability.Metrics) *Pipeline {
	return &Pipeline{
		source:   source,
		reporter: reporter,
		params:   params,
		logger:   logger,
		metrics:  metrics,
	}
}

// Run executes one full fetch-join-enrich-fit-report cycle.
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	start := time.Now()

	cases, err := p.source.Cases(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch cases: %w", err)
	}
	p.metrics.RowsFetched.WithLabelValues("cases").Add(float64(len(cases)))

	pops, err := p.source.Population(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch population: %w", err)
	}
	p.metrics.RowsFetched.WithLabelValues("population").Add(float64(len(pops)))

	areas, err := p.source.LandArea(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch land area: %w", err)
	}
	p.metrics.RowsFetched.WithLabelValues("area").Add(float64(len(areas)))

	masks, err := p.source.MaskUse(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch mask use: %w", err)
	}
	p.metrics.RowsFetched.WithLabelValues("masks").Add(float64(len(masks)))

	joined, joinStats := Join(cases, pops, areas, masks)
	p.recordJoinStats(joinStats, len(cases))

	rows, featStats := BuildFeatures(joined)
	p.metrics.RowsDropped.Add(float64(featStats.Dropped))
	p.metrics.RowsExcluded.Add(float64(featStats.Excluded))
	p.metrics.ModelRows.Set(float64(featStats.ModelingRows))
	p.logger.Info("features engineered",
		"counties", featStats.Counties,
		"dropped", featStats.Dropped,
		"territory_excluded", featStats.Excluded,
		"modeling_rows", featStats.ModelingRows,
	)

	ds, err := model.FromEnriched(rows)
	if err != nil {
		return nil, fmt.Errorf("assemble dataset: %w", err)
	}

	linear, err := p.fitLinear(ds)
	if err != nil {
		return nil, err
	}

	tree, err := p.fitTree(ds)
	if err != nil {
		return nil, err
	}

	res := &Result{
		Join:     joinStats,
		Features: featStats,
		Rows:     rows,
		Dataset:  ds,
		Linear:   linear,
		Tree:     tree,
		Duration: time.Since(start),
	}
	p.metrics.RunDurationSecs.Set(res.Duration.Seconds())

	if p.reporter != nil {
		if err := p.reporter.Render(ctx, res); err != nil {
			return nil, fmt.Errorf("render report: %w", err)
		}
	}

	p.logger.Info("run complete",
		"duration", res.Duration,
		"linear_test_rmse", linear.TestRMSE,
		"tree_test_rmse", tree.TestRMSE,
	)
	return res, nil
}

func (p *Pipeline) fitLinear(ds model.Dataset) (*model.LinearFit, error) {
	rng := rand.New(rand.NewSource(p.params.LinearSeed))
	train, test, err := model.Split(ds.Len(), p.params.TrainFraction, rng)
	if err != nil {
		return nil, fmt.Errorf("split for linear model: %w", err)
	}

	fit, err := model.FitLinear(ds, train, test)
	if err != nil {
		return nil, fmt.Errorf("fit linear model: %w", err)
	}

	p.metrics.ModelRMSE.WithLabelValues("linear", "train").Set(fit.TrainRMSE)
	p.metrics.ModelRMSE.WithLabelValues("linear", "test").Set(fit.TestRMSE)
	p.logger.Info("linear model fitted",
		"train_rows", len(train),
		"test_rows", len(test),
		"adj_r2", fit.AdjR2,
		"train_rmse", fit.TrainRMSE,
		"test_rmse", fit.TestRMSE,
		"top_feature", fit.Ranking[0],
	)
	return fit, nil
}

func (p *Pipeline) fitTree(ds model.Dataset) (*model.TreeFit, error) {
	rng := rand.New(rand.NewSource(p.params.TreeSeed))
	train, test, err := model.Split(ds.Len(), p.params.TrainFraction, rng)
	if err != nil {
		return nil, fmt.Errorf("split for tree model: %w", err)
	}

	fit, err := model.FitTree(ds, train, test, p.params.Tree)
	if err != nil {
		return nil, fmt.Errorf("fit tree model: %w", err)
	}

	p.metrics.ModelRMSE.WithLabelValues("tree", "test").Set(fit.TestRMSE)
	p.logger.Info("tree model fitted",
		"train_rows", len(train),
		"test_rows", len(test),
		"nodes", fit.Nodes,
		"depth", fit.Depth,
		"test_rmse", fit.TestRMSE,
	)
	return fit, nil
}

// recordJoinStats feeds the match/miss counters and flags suspicious miss
// rates. A miss is not an error, but a large share of misses usually means
// a key-normalization regression rather than genuinely absent counties.
func (p *Pipeline) recordJoinStats(s JoinStats, total int) {
	type tableStat struct {
		name            string
		matches, misses int
	}
	for _, t := range []tableStat{
		{"population", s.PopulationMatches, s.PopulationMisses},
		{"area", s.AreaMatches, s.AreaMisses},
		{"masks", s.MaskMatches, s.MaskMisses},
	} {
		p.metrics.JoinMatches.WithLabelValues(t.name).Add(float64(t.matches))
		p.metrics.JoinMisses.WithLabelValues(t.name).Add(float64(t.misses))

		if total > 0 && float64(t.misses)/float64(total) > 0.1 {
			p.logger.Warn("high join miss rate",
				"table", t.name, "misses", t.misses, "case_rows", total)
		}
	}
	p.logger.Info("tables joined",
		"case_rows", total,
		"population_misses", s.PopulationMisses,
		"area_misses", s.AreaMisses,
		"mask_misses", s.MaskMisses,
	)
}
