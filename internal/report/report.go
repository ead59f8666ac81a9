// Package report renders a pipeline run into a small bundle of artifacts:
// an HTML summary, interactive plotly figures, and CSVs of coefficients
// and test-set predictions.
package report

import (
	"context"
	"encoding/csv"
	"fmt"
	"html/template"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/couchcryptid/county-covid-report/internal/pipeline"
)

// Reporter writes run artifacts into a single output directory.
type Reporter struct {
	dir    string
	logger *slog.Logger
}

// New creates a Reporter that writes into dir, creating it if needed.
func New(dir string, logger *slog.Logger) *Reporter {
	return &Reporter{dir: dir, logger: logger}
}

// Render writes every artifact for one finished run.
func (r *Reporter) Render(_ context.Context, res *pipeline.Result) error {
	if err := os.MkdirAll(r.dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	if err := r.writeCoefficients(res); err != nil {
		return err
	}
	if err := r.writePredictions(res); err != nil {
		return err
	}

	writeFitPlot(filepath.Join(r.dir, "linear_fit.html"),
		"Linear regression: observed vs predicted (test set)",
		res.Linear.TestActual, res.Linear.TestPredicted)
	writeFitPlot(filepath.Join(r.dir, "tree_fit.html"),
		"Regression tree: observed vs predicted (test set)",
		res.Tree.TestActual, res.Tree.TestPredicted)
	writeResidualPlot(filepath.Join(r.dir, "linear_residuals.html"),
		"Linear regression residuals (test set)",
		res.Linear.TestActual, res.Linear.TestPredicted)
	writeSeriesPlot(filepath.Join(r.dir, "new_cases.html"), res.Rows, 5)

	if err := r.writeSummary(res); err != nil {
		return err
	}

	r.logger.Info("report written", "dir", r.dir)
	return nil
}

func (r *Reporter) writeCoefficients(res *pipeline.Result) error {
	f, err := os.Create(filepath.Join(r.dir, "coefficients.csv"))
	if err != nil {
		return fmt.Errorf("create coefficients.csv: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"feature", "estimate", "std_err", "t_stat", "p_value"}); err != nil {
		return err
	}
	for _, c := range res.Linear.Coefficients {
		rec := []string{
			c.Name,
			strconv.FormatFloat(c.Estimate, 'g', -1, 64),
			strconv.FormatFloat(c.StdErr, 'g', -1, 64),
			strconv.FormatFloat(c.TStat, 'g', -1, 64),
			strconv.FormatFloat(c.PValue, 'g', -1, 64),
		}
		if err := w.Write(rec); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func (r *Reporter) writePredictions(res *pipeline.Result) error {
	f, err := os.Create(filepath.Join(r.dir, "predictions.csv"))
	if err != nil {
		return fmt.Errorf("create predictions.csv: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"model", "actual", "predicted"}); err != nil {
		return err
	}

	write := func(model string, actual, predicted []float64) error {
		for i := range actual {
			rec := []string{
				model,
				strconv.FormatFloat(actual[i], 'g', -1, 64),
				strconv.FormatFloat(predicted[i], 'g', -1, 64),
			}
			if err := w.Write(rec); err != nil {
				return err
			}
		}
		return nil
	}
	if err := write("linear", res.Linear.TestActual, res.Linear.TestPredicted); err != nil {
		return err
	}
	if err := write("tree", res.Tree.TestActual, res.Tree.TestPredicted); err != nil {
		return err
	}
	w.Flush()
	return w.Error()
}

type summaryData struct {
	GeneratedAt time.Time
	Res         *pipeline.Result
	TopFeatures []string
	TreeUsage   []featureCount
}

type featureCount struct {
	Feature string
	Count   int
}

func (r *Reporter) writeSummary(res *pipeline.Result) error {
	// Show the three strongest predictors by |t|.
	top := res.Linear.Ranking
	if len(top) > 3 {
		top = top[:3]
	}

	usage := make([]featureCount, 0, len(res.Tree.FeatureUsage))
	for _, name := range res.Dataset.Names {
		if n := res.Tree.FeatureUsage[name]; n > 0 {
			usage = append(usage, featureCount{Feature: name, Count: n})
		}
	}

	data := summaryData{
		GeneratedAt: clock.Now().UTC(),
		Res:         res,
		TopFeatures: top,
		TreeUsage:   usage,
	}

	f, err := os.Create(filepath.Join(r.dir, "report.html"))
	if err != nil {
		return fmt.Errorf("create report.html: %w", err)
	}
	defer f.Close()

	if err := summaryTemplate.Execute(f, data); err != nil {
		return fmt.Errorf("render summary: %w", err)
	}
	return nil
}

var summaryTemplate = template.Must(template.New("summary").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>County COVID-19 Forecast Report</title>
<style>
body { font-family: sans-serif; max-width: 60em; margin: 2em auto; }
table { border-collapse: collapse; margin: 1em 0; }
th, td { border: 1px solid #ccc; padding: 0.3em 0.8em; text-align: right; }
th:first-child, td:first-child { text-align: left; }
</style>
</head>
<body>
<h1>County COVID-19 Forecast Report</h1>
<p>Generated {{.GeneratedAt.Format "2006-01-02 15:04:05 MST"}}.</p>

<h2>Dataset</h2>
<table>
<tr><th>Counties seen</th><td>{{.Res.Features.Counties}}</td></tr>
<tr><th>Modeling rows</th><td>{{.Res.Features.ModelingRows}}</td></tr>
<tr><th>Rows dropped (incomplete)</th><td>{{.Res.Features.Dropped}}</td></tr>
<tr><th>Rows excluded (territories)</th><td>{{.Res.Features.Excluded}}</td></tr>
<tr><th>Population join misses</th><td>{{.Res.Join.PopulationMisses}}</td></tr>
<tr><th>Land-area join misses</th><td>{{.Res.Join.AreaMisses}}</td></tr>
<tr><th>Mask-use join misses</th><td>{{.Res.Join.MaskMisses}}</td></tr>
</table>

<h2>Linear regression</h2>
<p>
R&sup2; {{printf "%.4f" .Res.Linear.R2}} (adjusted {{printf "%.4f" .Res.Linear.AdjR2}}),
train RMSE {{printf "%.2f" .Res.Linear.TrainRMSE}},
test RMSE {{printf "%.2f" .Res.Linear.TestRMSE}}.
Strongest predictors by |t|: {{range $i, $f := .TopFeatures}}{{if $i}}, {{end}}{{$f}}{{end}}.
</p>
<table>
<tr><th>Feature</th><th>Estimate</th><th>Std. err.</th><th>t</th><th>p</th></tr>
{{range .Res.Linear.Coefficients}}
<tr>
<td>{{.Name}}</td>
<td>{{printf "%.6g" .Estimate}}</td>
<td>{{printf "%.6g" .StdErr}}</td>
<td>{{printf "%.3f" .TStat}}</td>
<td>{{printf "%.3g" .PValue}}</td>
</tr>
{{end}}
</table>

<h2>Regression tree</h2>
<p>
{{.Res.Tree.Nodes}} nodes, depth {{.Res.Tree.Depth}},
test RMSE {{printf "%.2f" .Res.Tree.TestRMSE}}.
</p>
{{if .TreeUsage}}
<table>
<tr><th>Feature</th><th>Splits</th></tr>
{{range .TreeUsage}}<tr><td>{{.Feature}}</td><td>{{.Count}}</td></tr>
{{end}}
</table>
{{else}}
<p>The tree is a single leaf; no feature was worth splitting on.</p>
{{end}}

<h2>Figures</h2>
<ul>
<li><a href="linear_fit.html">Linear regression: observed vs predicted</a></li>
<li><a href="linear_residuals.html">Linear regression residuals</a></li>
<li><a href="tree_fit.html">Regression tree: observed vs predicted</a></li>
<li><a href="new_cases.html">Daily new cases, largest counties</a></li>
</ul>

<h2>Files</h2>
<ul>
<li><a href="coefficients.csv">coefficients.csv</a></li>
<li><a href="predictions.csv">predictions.csv</a></li>
</ul>
</body>
</html>
`))
