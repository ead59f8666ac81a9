package fetch

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/couchcryptid/county-covid-report/internal/domain"
)

// FetchMaskUse retrieves the mask-use survey table:
// COUNTYFP,NEVER,RARELY,SOMETIMES,FREQUENTLY,ALWAYS.
func (c *Client) FetchMaskUse(ctx context.Context, url string) ([]domain.MaskUse, error) {
	body, err := c.get(ctx, url)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	rows, err := parseMaskUse(body)
	if err != nil {
		return nil, fmt.Errorf("parse mask-use data: %w", err)
	}

	c.logger.Info("fetched mask-use data", "rows", len(rows))
	return rows, nil
}

func parseMaskUse(r io.Reader) ([]domain.MaskUse, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	col, err := columnIndex(header, "countyfp", "never", "rarely", "sometimes", "frequently", "always")
	if err != nil {
		return nil, err
	}

	var rows []domain.MaskUse
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		fips, ok := domain.NormalizeFIPS(rec[col["countyfp"]])
		if !ok {
			return nil, fmt.Errorf("line %d: bad county code %q", line, rec[col["countyfp"]])
		}

		shares := make([]float64, 5)
		for i, name := range []string{"never", "rarely", "sometimes", "frequently", "always"} {
			v, err := strconv.ParseFloat(rec[col[name]], 64)
			if err != nil {
				return nil, fmt.Errorf("line %d: parse %s %q: %w", line, name, rec[col[name]], err)
			}
			shares[i] = v
		}

		rows = append(rows, domain.MaskUse{
			FIPS:       fips,
			Never:      shares[0],
			Rarely:     shares[1],
			Sometimes:  shares[2],
			Frequently: shares[3],
			Always:     shares[4],
		})
	}

	if len(rows) == 0 {
		return nil, fmt.Errorf("no mask-use rows")
	}
	return rows, nil
}
