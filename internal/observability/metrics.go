package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters and gauges for one report run.
// The job is one-shot, so the values are gathered at the end of the run and
// logged alongside the report rather than scraped.
type Metrics struct {
	RowsFetched *prometheus.CounterVec // label: source={cases,masks,population,area}
	JoinMatches *prometheus.CounterVec // label: table={population,area,masks}
	JoinMisses  *prometheus.CounterVec // label: table={population,area,masks}

	RowsDropped     prometheus.Counter   // rows removed by the missing-value filter
	RowsExcluded    prometheus.Counter   // rows removed by the territory filter
	ModelRows       prometheus.Gauge     // rows surviving into the modeling set
	ModelRMSE       *prometheus.GaugeVec // labels: model={linear,tree}, partition={train,test}
	RunDurationSecs prometheus.Gauge
}

// NewMetrics creates and registers all run metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.RowsFetched,
		m.JoinMatches,
		m.JoinMisses,
		m.RowsDropped,
		m.RowsExcluded,
		m.ModelRows,
		m.ModelRMSE,
		m.RunDurationSecs,
	)
	return m
}

// NewMetricsForTesting creates Metrics with unregistered collectors to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		RowsFetched: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "county_report",
			Name:      "rows_fetched_total",
			Help:      "Rows parsed from each raw dataset.",
		}, []string{"source"}),
		JoinMatches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "county_report",
			Name:      "join_matches_total",
			Help:      "Case rows that found a match in an auxiliary table.",
		}, []string{"table"}),
		JoinMisses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "county_report",
			Name:      "join_misses_total",
			Help:      "Case rows with no match in an auxiliary table.",
		}, []string{"table"}),
		RowsDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "county_report",
			Name:      "rows_dropped_total",
			Help:      "Enriched rows removed because a field was missing.",
		}),
		RowsExcluded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "county_report",
			Name:      "rows_excluded_total",
			Help:      "Enriched rows removed by the territory exclusion.",
		}),
		ModelRows: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "county_report",
			Name:      "model_rows",
			Help:      "Rows in the final modeling set.",
		}),
		ModelRMSE: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "county_report",
			Name:      "model_rmse",
			Help:      "Root mean squared error per model and partition.",
		}, []string{"model", "partition"}),
		RunDurationSecs: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "county_report",
			Name:      "run_duration_seconds",
			Help:      "Wall-clock duration of the full report run.",
		}),
	}
}
