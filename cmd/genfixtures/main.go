// Command genfixtures writes synthetic copies of the four input datasets
// so the report pipeline can be exercised offline: a county case table,
// a mask-use survey, a population estimate table, and a land-area
// spreadsheet. Output is deterministic for a given seed.
//
// Usage:
//
//	go run ./cmd/genfixtures -out testdata/fixtures -counties 12 -days 60
package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/xuri/excelize/v2"
)

var baseDate = time.Date(2020, time.June, 1, 0, 0, 0, 0, time.UTC)

// stateDef is a state to draw synthetic counties from. Puerto Rico is
// included deliberately so fixtures exercise the territory exclusion.
type stateDef struct {
	fips string
	name string
}

var states = []stateDef{
	{"01", "Alabama"},
	{"06", "California"},
	{"48", "Texas"},
	{"36", "New York"},
	{"72", "Puerto Rico"},
}

type county struct {
	stateFIPS  string
	countyFIPS string
	name       string
	state      string
	population float64
	sqMiles    float64
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	out := flag.String("out", "", "output directory for fixture files")
	nCounties := flag.Int("counties", 10, "number of synthetic counties")
	days := flag.Int("days", 60, "days of case history per county")
	seed := flag.Int64("seed", 1, "random seed")
	flag.Parse()

	if *out == "" {
		flag.Usage()
		return fmt.Errorf("missing required flag: -out")
	}
	if err := os.MkdirAll(*out, 0o755); err != nil {
		return err
	}

	rng := rand.New(rand.NewSource(*seed))
	counties := makeCounties(rng, *nCounties)

	if err := writeCases(filepath.Join(*out, "cases.csv"), rng, counties, *days); err != nil {
		return fmt.Errorf("write cases: %w", err)
	}
	if err := writeMasks(filepath.Join(*out, "mask-use.csv"), rng, counties); err != nil {
		return fmt.Errorf("write mask use: %w", err)
	}
	if err := writePopulation(filepath.Join(*out, "population.csv"), counties); err != nil {
		return fmt.Errorf("write population: %w", err)
	}
	if err := writeArea(filepath.Join(*out, "land-area.xlsx"), counties); err != nil {
		return fmt.Errorf("write land area: %w", err)
	}

	log.Printf("wrote fixtures for %d counties x %d days to %s", len(counties), *days, *out)
	return nil
}

func makeCounties(rng *rand.Rand, n int) []county {
	counties := make([]county, n)
	for i := range counties {
		st := states[i%len(states)]
		counties[i] = county{
			stateFIPS:  st.fips,
			countyFIPS: fmt.Sprintf("%03d", i+1),
			name:       fmt.Sprintf("County %d", i+1),
			state:      st.name,
			population: float64(20000 + rng.Intn(2000000)),
			sqMiles:    100 + rng.Float64()*2000,
		}
	}
	return counties
}

func writeCases(path string, rng *rand.Rand, counties []county, days int) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"date", "county", "state", "fips", "cases", "deaths"}); err != nil {
		return err
	}

	for _, c := range counties {
		// Cumulative counts: daily increments scale with population.
		scale := c.population / 10000
		cases, deaths := 0.0, 0.0
		for d := 0; d < days; d++ {
			cases += float64(rng.Intn(10)) * scale
			if rng.Float64() < 0.3 {
				deaths += float64(rng.Intn(3))
			}
			rec := []string{
				baseDate.AddDate(0, 0, d).Format("2006-01-02"),
				c.name,
				c.state,
				c.stateFIPS + c.countyFIPS,
				strconv.FormatFloat(cases, 'f', 0, 64),
				strconv.FormatFloat(deaths, 'f', 0, 64),
			}
			if err := w.Write(rec); err != nil {
				return err
			}
		}
	}

	// One row the joiner must skip: an unknown county with no FIPS.
	if err := w.Write([]string{
		baseDate.Format("2006-01-02"), "Unknown", "Alabama", "", "5", "0",
	}); err != nil {
		return err
	}

	w.Flush()
	return w.Error()
}

func writeMasks(path string, rng *rand.Rand, counties []county) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"COUNTYFP", "NEVER", "RARELY", "SOMETIMES", "FREQUENTLY", "ALWAYS"}); err != nil {
		return err
	}

	for _, c := range counties {
		// Five shares summing to 1.
		raw := make([]float64, 5)
		total := 0.0
		for i := range raw {
			raw[i] = rng.Float64()
			total += raw[i]
		}
		rec := []string{c.stateFIPS + c.countyFIPS}
		for _, v := range raw {
			rec = append(rec, strconv.FormatFloat(v/total, 'f', 3, 64))
		}
		if err := w.Write(rec); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

func writePopulation(path string, counties []county) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"STATE", "COUNTY", "STNAME", "CTYNAME", "POPESTIMATE2019"}); err != nil {
		return err
	}

	seen := map[string]bool{}
	for _, c := range counties {
		// State summary rows appear once per state with county code 000,
		// mirroring the real Census layout; the parser must skip them.
		if !seen[c.stateFIPS] {
			seen[c.stateFIPS] = true
			if err := w.Write([]string{c.stateFIPS, "000", c.state, c.state, "0"}); err != nil {
				return err
			}
		}
		rec := []string{
			c.stateFIPS,
			c.countyFIPS,
			c.state,
			c.name,
			strconv.FormatFloat(c.population, 'f', 0, 64),
		}
		if err := w.Write(rec); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

func writeArea(path string, counties []county) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	if err := f.SetSheetRow(sheet, "A1", &[]any{"STATEFP", "COUNTYFP", "LND110210D"}); err != nil {
		return err
	}
	for i, c := range counties {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []any{c.stateFIPS, c.countyFIPS, c.sqMiles}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}

	return f.SaveAs(path)
}
