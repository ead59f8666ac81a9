package fetch

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/couchcryptid/county-covid-report/internal/domain"
)

// FetchCases retrieves the NYT-style county case table:
// date,county,state,fips,cases,deaths with cumulative counts.
func (c *Client) FetchCases(ctx context.Context, url string) ([]domain.CaseRow, error) {
	body, err := c.get(ctx, url)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	rows, skipped, err := parseCases(body)
	if err != nil {
		return nil, fmt.Errorf("parse case data: %w", err)
	}

	c.logger.Info("fetched case data", "rows", len(rows), "skipped_no_fips", skipped)
	return rows, nil
}

func parseCases(r io.Reader) ([]domain.CaseRow, int, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, 0, fmt.Errorf("read header: %w", err)
	}

	col, err := columnIndex(header, "date", "county", "state", "fips", "cases", "deaths")
	if err != nil {
		return nil, 0, err
	}

	var rows []domain.CaseRow
	skipped := 0
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, 0, fmt.Errorf("line %d: %w", line, err)
		}

		// Rows without a FIPS ("Unknown" county, geographic exceptions)
		// cannot join to anything.
		fips, ok := domain.NormalizeFIPS(rec[col["fips"]])
		if !ok {
			skipped++
			continue
		}

		date, err := time.Parse("2006-01-02", rec[col["date"]])
		if err != nil {
			return nil, 0, fmt.Errorf("line %d: parse date %q: %w", line, rec[col["date"]], err)
		}
		cases, err := strconv.ParseFloat(rec[col["cases"]], 64)
		if err != nil {
			return nil, 0, fmt.Errorf("line %d: parse cases %q: %w", line, rec[col["cases"]], err)
		}
		deaths, err := strconv.ParseFloat(rec[col["deaths"]], 64)
		if err != nil {
			return nil, 0, fmt.Errorf("line %d: parse deaths %q: %w", line, rec[col["deaths"]], err)
		}

		rows = append(rows, domain.CaseRow{
			FIPS:   fips,
			Date:   date,
			County: rec[col["county"]],
			State:  rec[col["state"]],
			Cases:  cases,
			Deaths: deaths,
		})
	}

	if len(rows) == 0 {
		return nil, 0, fmt.Errorf("no usable case rows")
	}
	return rows, skipped, nil
}

// columnIndex maps each wanted header name (case-insensitive) to its column
// position, erroring on the first name that is absent.
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
