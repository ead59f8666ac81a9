package report

import (
	"sort"
	"time"

	grob "github.com/MetalBlueberry/go-plotly/graph_objects"
	"github.com/MetalBlueberry/go-plotly/offline"

	"github.com/couchcryptid/county-covid-report/internal/domain"
)

// writeFitPlot renders an observed-versus-predicted scatter with the
// identity line for reference. Points on the line are perfect predictions.
func writeFitPlot(path, title string, actual, predicted []float64) {
	fig := &grob.Fig{
		Layout: &grob.Layout{
			Title: &grob.LayoutTitle{Text: title},
			Xaxis: &grob.LayoutXaxis{
				Title: &grob.LayoutXaxisTitle{Text: "observed future cases"},
			},
			Yaxis: &grob.LayoutYaxis{
				Title: &grob.LayoutYaxisTitle{Text: "predicted future cases"},
			},
		},
	}

	fig.AddTraces(&grob.Scatter{
		Name:   "test rows",
		X:      actual,
		Y:      predicted,
		Mode:   grob.ScatterModeMarkers,
		Marker: &grob.ScatterMarker{Color: "steelblue"},
	})

	lo, hi := floatRange(actual, predicted)
	fig.AddTraces(&grob.Scatter{
		Name: "perfect prediction",
		X:    []float64{lo, hi},
		Y:    []float64{lo, hi},
		Mode: grob.ScatterModeLines,
		Line: &grob.ScatterLine{Color: "gray"},
	})

	offline.ToHtml(fig, path)
}

// writeResidualPlot renders residuals against predictions. Structure in
// this plot means the model is missing something systematic.
func writeResidualPlot(path, title string, actual, predicted []float64) {
	residuals := make([]float64, len(actual))
	for i := range actual {
		residuals[i] = actual[i] - predicted[i]
	}

	fig := &grob.Fig{
		Layout: &grob.Layout{
			Title: &grob.LayoutTitle{Text: title},
			Xaxis: &grob.LayoutXaxis{
				Title: &grob.LayoutXaxisTitle{Text: "predicted future cases"},
			},
			Yaxis: &grob.LayoutYaxis{
				Title: &grob.LayoutYaxisTitle{Text: "residual"},
			},
		},
	}

	fig.AddTraces(&grob.Scatter{
		Name:   "test rows",
		X:      predicted,
		Y:      residuals,
		Mode:   grob.ScatterModeMarkers,
		Marker: &grob.ScatterMarker{Color: "indianred"},
	})

	lo, hi := floatRange(predicted, nil)
	fig.AddTraces(&grob.Scatter{
		Name: "zero",
		X:    []float64{lo, hi},
		Y:    []float64{0, 0},
		Mode: grob.ScatterModeLines,
		Line: &grob.ScatterLine{Color: "gray"},
	})

	offline.ToHtml(fig, path)
}

// writeSeriesPlot renders the daily new-case series for the largest few
// counties in the modeling set, one line per county.
func writeSeriesPlot(path string, rows []domain.EnrichedRow, maxCounties int) {
	type series struct {
		label string
		dates []string
		cases []float64
	}

	byFIPS := map[string]*series{}
	var order []string
	for _, r := range rows {
		s := byFIPS[r.FIPS]
		if s == nil {
			s = &series{label: r.County + ", " + r.State}
			byFIPS[r.FIPS] = s
			order = append(order, r.FIPS)
		}
		s.dates = append(s.dates, r.Date.Format(time.DateOnly))
		s.cases = append(s.cases, r.NewCases)
	}

	// Largest counties first, by final cumulative count.
	last := map[string]float64{}
	for _, r := range rows {
		if r.Cases > last[r.FIPS] {
			last[r.FIPS] = r.Cases
		}
	}
	sort.Slice(order, func(i, j int) bool { return last[order[i]] > last[order[j]] })
	if len(order) > maxCounties {
		order = order[:maxCounties]
	}

	fig := &grob.Fig{
		Layout: &grob.Layout{
			Title: &grob.LayoutTitle{Text: "Daily new cases, largest counties in the modeling set"},
			Yaxis: &grob.LayoutYaxis{
				Title: &grob.LayoutYaxisTitle{Text: "new cases"},
			},
		},
	}
	for _, fips := range order {
		s := byFIPS[fips]
		fig.AddTraces(&grob.Scatter{
			Name: s.label,
			X:    s.dates,
			Y:    s.cases,
			Mode: grob.ScatterModeLines,
		})
	}

	offline.ToHtml(fig, path)
}

func floatRange(a, b []float64) (lo, hi float64) {
	first := true
	for _, s := range [][]float64{a, b} {
		for _, v := range s {
			if first {
				lo, hi = v, v
				first = false
				continue
			}
			if v < lo {
				lo = v
			}
			if v > hi {
				hi = v
			}
		}
	}
	return lo, hi
}
