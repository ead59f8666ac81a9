// Command checkdata runs integrity checks over local copies of the four
// input datasets before a report run: key format, cumulative monotonicity,
// mask-share sums, cross-table join coverage, and series length. A silent
// join mismatch produces an empty or skewed report rather than an error,
// so this catches dataset-vintage drift early.
//
// Usage:
//
//	go run ./cmd/checkdata \
//	  -cases testdata/fixtures/cases.csv \
//	  -masks testdata/fixtures/mask-use.csv \
//	  -population testdata/fixtures/population.csv \
//	  -area testdata/fixtures/land-area.xlsx
package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"io"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/couchcryptid/county-covid-report/internal/adapter/fetch"
	"github.com/couchcryptid/county-covid-report/internal/domain"
)

// minSeriesDays is the shortest daily series that survives the feature
// windowing: one row for differencing plus fourteen for the lead target.
const minSeriesDays = 16

// phase tracks pass/fail for one validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func (p *phase) report() {
	if p.passed() {
		fmt.Printf("PASS  %s\n", p.name)
		return
	}
	fmt.Printf("FAIL  %s\n", p.name)
	for _, e := range p.errors {
		fmt.Printf("      - %s\n", e)
	}
}

type caseSeries struct {
	days         int
	nonMonotonic int
	lastCases    float64
	lastDeaths   float64
}

func main() {
	casesPath := flag.String("cases", "", "path to county case CSV")
	masksPath := flag.String("masks", "", "path to mask-use CSV")
	popPath := flag.String("population", "", "path to population estimate CSV")
	areaPath := flag.String("area", "", "path to land-area spreadsheet")
	popColumn := flag.String("pop-column", "POPESTIMATE2019", "population estimate column")
	areaState := flag.String("area-state-column", "STATEFP", "area sheet state code column")
	areaCounty := flag.String("area-county-column", "COUNTYFP", "area sheet county code column")
	areaLand := flag.String("area-land-column", "LND110210D", "area sheet land-area column")
	flag.Parse()

	if *casesPath == "" || *masksPath == "" || *popPath == "" || *areaPath == "" {
		flag.Usage()
		os.Exit(1)
	}

	cols := fetch.AreaColumns{
		StateFIPS:  *areaState,
		CountyFIPS: *areaCounty,
		LandArea:   *areaLand,
	}
	if code := run(*casesPath, *masksPath, *popPath, *areaPath, *popColumn, cols); code != 0 {
		os.Exit(code)
	}
}

func run(casesPath, masksPath, popPath, areaPath, popColumn string, cols fetch.AreaColumns) int {
	fmt.Println("=== County Dataset Integrity Checks ===")
	fmt.Println()

	series, skipped, err := loadCases(casesPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load cases: %v\n", err)
		return 1
	}
	maskFIPS, badShares, err := loadMasks(masksPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load mask use: %v\n", err)
		return 1
	}
	popFIPS, err := loadPopulation(popPath, popColumn)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load population: %v\n", err)
		return 1
	}
	areaFIPS, err := loadArea(areaPath, cols)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load land area: %v\n", err)
		return 1
	}

	phases := []*phase{
		checkCaseKeys(series, skipped),
		checkMonotonicity(series),
		checkMaskShares(badShares),
		checkCoverage("population coverage", series, popFIPS),
		checkCoverage("land-area coverage", series, areaFIPS),
		checkCoverage("mask-use coverage", series, maskFIPS),
		checkSeriesLength(series),
	}

	failed := 0
	for _, p := range phases {
		p.report()
		if !p.passed() {
			failed++
		}
	}

	fmt.Println()
	if failed > 0 {
		fmt.Printf("%d of %d phases failed\n", failed, len(phases))
		return 1
	}
	fmt.Printf("all %d phases passed\n", len(phases))
	return 0
}

func loadCases(path string) (map[string]*caseSeries, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, err
	}
	defer f.Close()

	cr := csv.NewReader(f)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, 0, err
	}
	col, err := columnIndex(header, "fips", "cases", "deaths")
	if err != nil {
		return nil, 0, err
	}

	series := map[string]*caseSeries{}
	skipped := 0
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, 0, err
		}

		fips, ok := domain.NormalizeFIPS(rec[col["fips"]])
		if !ok {
			skipped++
			continue
		}
		cases, _ := strconv.ParseFloat(rec[col["cases"]], 64)
		deaths, _ := strconv.ParseFloat(rec[col["deaths"]], 64)

		s := series[fips]
		if s == nil {
			s = &caseSeries{lastCases: math.Inf(-1), lastDeaths: math.Inf(-1)}
			series[fips] = s
		}
		// Rows arrive date-sorted per county in the published file.
		if cases < s.lastCases || deaths < s.lastDeaths {
			s.nonMonotonic++
		}
		s.lastCases, s.lastDeaths = cases, deaths
		s.days++
	}
	return series, skipped, nil
}

func loadMasks(path string) (map[string]bool, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, err
	}
	defer f.Close()

	cr := csv.NewReader(f)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, 0, err
	}
	col, err := columnIndex(header, "countyfp", "never", "rarely", "sometimes", "frequently", "always")
	if err != nil {
		return nil, 0, err
	}

	fipsSet := map[string]bool{}
	badShares := 0
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, 0, err
		}

		fips, ok := domain.NormalizeFIPS(rec[col["countyfp"]])
		if !ok {
			continue
		}
		fipsSet[fips] = true

		total := 0.0
		for _, name := range []string{"never", "rarely", "sometimes", "frequently", "always"} {
			v, _ := strconv.ParseFloat(rec[col[name]], 64)
			total += v
		}
		if total < 0.98 || total > 1.02 {
			badShares++
		}
	}
	return fipsSet, badShares, nil
}

func loadPopulation(path, popColumn string) (map[string]bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	cr := csv.NewReader(f)
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, err
	}
	col, err := columnIndex(header, "state", "county", popColumn)
	if err != nil {
		return nil, err
	}

	fipsSet := map[string]bool{}
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		county := rec[col["county"]]
		if county == "0" || county == "000" {
			continue
		}
		fips, err := domain.BuildFIPS(rec[col["state"]], county)
		if err != nil {
			continue
		}
		fipsSet[fips] = true
	}
	return fipsSet, nil
}

func loadArea(path string, cols fetch.AreaColumns) (map[string]bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	areas, err := fetch.ParseLandArea(f, cols)
	if err != nil {
		return nil, err
	}

	fipsSet := make(map[string]bool, len(areas))
	for _, a := range areas {
		fipsSet[a.FIPS] = true
	}
	return fipsSet, nil
}

// columnIndex maps each wanted header name (case-insensitive) to its position.
func columnIndex(header []string, names ...string) (map[string]int, error) {
	idx := make(map[string]int, len(header))
	for i, h := range header {
		idx[strings.ToLower(strings.TrimSpace(h))] = i
	}
	col := make(map[string]int, len(names))
	for _, name := range names {
		i, ok := idx[strings.ToLower(name)]
		if !ok {
			return nil, fmt.Errorf("missing column %q in header %v", name, header)
		}
		col[name] = i
	}
	return col, nil
}

func checkCaseKeys(series map[string]*caseSeries, skipped int) *phase {
	p := &phase{name: "case key integrity"}
	if len(series) == 0 {
		p.errorf("no usable case rows")
		return p
	}
	total := skipped
	for _, s := range series {
		total += s.days
	}
	if frac := float64(skipped) / float64(total); frac > 0.05 {
		p.errorf("%.1f%% of case rows have no usable FIPS (%d of %d)", frac*100, skipped, total)
	}
	return p
}

func checkMonotonicity(series map[string]*caseSeries) *phase {
	p := &phase{name: "cumulative monotonicity"}
	bad := 0
	for _, s := range series {
		bad += s.nonMonotonic
	}
	// The published series occasionally revises counts downward; only a
	// widespread pattern indicates a corrupt download.
	total := 0
	for _, s := range series {
		total += s.days
	}
	if total > 0 && float64(bad)/float64(total) > 0.01 {
		p.errorf("%d of %d county-day rows decrease a cumulative count", bad, total)
	}
	return p
}

func checkMaskShares(badShares int) *phase {
	p := &phase{name: "mask share sums"}
	if badShares > 0 {
		p.errorf("%d rows whose five shares do not sum to ~1", badShares)
	}
	return p
}

func checkCoverage(name string, series map[string]*caseSeries, aux map[string]bool) *phase {
	p := &phase{name: name}
	if len(series) == 0 {
		return p
	}

	var missing []string
	for fips := range series {
		if !aux[fips] {
			missing = append(missing, fips)
		}
	}
	covered := len(series) - len(missing)
	if frac := float64(covered) / float64(len(series)); frac < 0.9 {
		sort.Strings(missing)
		if len(missing) > 5 {
			missing = missing[:5]
		}
		p.errorf("only %.1f%% of case counties matched (missing e.g. %v)", frac*100, missing)
	}
	return p
}

func checkSeriesLength(series map[string]*caseSeries) *phase {
	p := &phase{name: "series length"}
	usable := 0
	for _, s := range series {
		if s.days >= minSeriesDays {
			usable++
		}
	}
	if usable == 0 {
		p.errorf("no county has the %d days needed to survive feature windowing", minSeriesDays)
	}
	return p
}
