package fetch

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/couchcryptid/county-covid-report/internal/domain"
)

// FetchPopulation retrieves the Census county population estimate table.
// The STATE and COUNTY code columns are concatenated into the join key;
// the estimate is read from the configured year column (POPESTIMATE2019).
func (c *Client) FetchPopulation(ctx context.Context, url, estimateColumn string) ([]domain.Population, error) {
	body, err := c.get(ctx, url)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	rows, err := parsePopulation(body, estimateColumn)
	if err != nil {
		return nil, fmt.Errorf("parse population data: %w", err)
	}

	c.logger.Info("fetched population data", "rows", len(rows))
	return rows, nil
}

func parsePopulation(r io.Reader, estimateColumn string) ([]domain.Population, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	// The Census file carries many columns we ignore; don't enforce a fixed
	// record length.
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	col, err := columnIndex(header, "state", "county", estimateColumn)
	if err != nil {
		return nil, err
	}

	var rows []domain.Population
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		county := rec[col["county"]]
		if county == "0" || county == "000" {
			// State-level summary row.
			continue
		}

		fips, err := domain.BuildFIPS(rec[col["state"]], county)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		pop, err := strconv.ParseFloat(rec[col[estimateColumn]], 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: parse %s %q: %w", line, estimateColumn, rec[col[estimateColumn]], err)
		}

		rows = append(rows, domain.Population{FIPS: fips, Population: pop})
	}

	if len(rows) == 0 {
		return nil, fmt.Errorf("no population rows")
	}
	return rows, nil
}
