package pipeline

import (
	"math"

	"github.com/couchcryptid/county-covid-report/internal/domain"
)

// JoinStats counts match outcomes per auxiliary table. A high miss count is
// not an error, but it is the classic symptom of a key-normalization bug,
// so it is surfaced in metrics and logs.
type JoinStats struct {
	PopulationMatches int
	PopulationMisses  int
	AreaMatches       int
	AreaMisses        int
	MaskMatches       int
	MaskMisses        int
}

// Join left-joins the case table with the population, area, and mask tables
// on county FIPS. Every case row survives; auxiliary fields for unmatched
// rows are NaN. Each auxiliary table is indexed once and probed once per
// case row. Duplicate keys within an auxiliary table keep the last row.
func Join(
	cases []domain.CaseRow,
	pops []domain.Population,
	areas []domain.LandArea,
	masks []domain.MaskUse,
) ([]domain.JoinedRow, JoinStats) {
	popByFIPS := make(map[string]domain.Population, len(pops))
	for _, p := range pops {
		popByFIPS[p.FIPS] = p
	}
	areaByFIPS := make(map[string]domain.LandArea, len(areas))
	for _, a := range areas {
		areaByFIPS[a.FIPS] = a
	}
	maskByFIPS := make(map[string]domain.MaskUse, len(masks))
	for _, m := range masks {
		maskByFIPS[m.FIPS] = m
	}

	nan := math.NaN()
	joined := make([]domain.JoinedRow, 0, len(cases))
	var stats JoinStats

	for _, c := range cases {
		row := domain.JoinedRow{
			CaseRow:     c,
			Population:  nan,
			SquareMiles: nan,
			Never:       nan,
			Rarely:      nan,
			Sometimes:   nan,
			Frequently:  nan,
			Always:      nan,
		}

		if p, ok := popByFIPS[c.FIPS]; ok {
			row.Population = p.Population
			stats.PopulationMatches++
		} else {
			stats.PopulationMisses++
		}

		if a, ok := areaByFIPS[c.FIPS]; ok {
			row.SquareMiles = a.SquareMiles
			stats.AreaMatches++
		} else {
			stats.AreaMisses++
		}

		if m, ok := maskByFIPS[c.FIPS]; ok {
			row.Never = m.Never
			row.Rarely = m.Rarely
			row.Sometimes = m.Sometimes
			row.Frequently = m.Frequently
			row.Always = m.Always
			stats.MaskMatches++
		} else {
			stats.MaskMisses++
		}

		joined = append(joined, row)
	}

	return joined, stats
}
