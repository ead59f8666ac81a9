package fetch

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/couchcryptid/county-covid-report/internal/domain"
)

// AreaColumns names the spreadsheet headers holding the state FIPS code,
// county FIPS code, and land area in square miles.
type AreaColumns struct {
	StateFIPS  string
	CountyFIPS string
	LandArea   string
}

// FetchLandArea retrieves the Census land-area spreadsheet and reads the
// first sheet. Summary rows (county code 000) are skipped.
func (c *Client) FetchLandArea(ctx context.Context, url string, cols AreaColumns) ([]domain.LandArea, error) {
	body, err := c.get(ctx, url)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	data, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("read area spreadsheet: %w", err)
	}

	rows, err := ParseLandArea(bytes.NewReader(data), cols)
	if err != nil {
		return nil, fmt.Errorf("parse area spreadsheet: %w", err)
	}

	c.logger.Info("fetched land-area data", "rows", len(rows))
	return rows, nil
}

// ParseLandArea reads county land areas from the first sheet of an xlsx
// workbook. Exported for the fixture generator and the data checker.
func ParseLandArea(r io.Reader, cols AreaColumns) ([]domain.LandArea, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, fmt.Errorf("workbook has no sheets")
	}

	cells, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	if len(cells) < 2 {
		return nil, fmt.Errorf("sheet %q has no data rows", sheet)
	}

	col, err := columnIndex(cells[0], cols.StateFIPS, cols.CountyFIPS, cols.LandArea)
	if err != nil {
		return nil, err
	}

	var rows []domain.LandArea
	for i, rec := range cells[1:] {
		line := i + 2

		// excelize trims trailing empty cells; treat short rows as empty.
		if len(rec) <= maxIndex(col) {
			continue
		}

		county := strings.TrimSpace(rec[col[cols.CountyFIPS]])
		if county == "0" || county == "000" {
			continue
		}

		fips, err := domain.BuildFIPS(rec[col[cols.StateFIPS]], county)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", line, err)
		}

		area, err := strconv.ParseFloat(strings.TrimSpace(rec[col[cols.LandArea]]), 64)
		if err != nil {
			return nil, fmt.Errorf("row %d: parse %s %q: %w", line, cols.LandArea, rec[col[cols.LandArea]], err)
		}

		rows = append(rows, domain.LandArea{FIPS: fips, SquareMiles: area})
	}

	if len(rows) == 0 {
		return nil, fmt.Errorf("no land-area rows")
	}
	return rows, nil
}

func maxIndex(col map[string]int) int {
	m := 0
	for _, i := range col {
		if i > m {
			m = i
		}
	}
	return m
}
