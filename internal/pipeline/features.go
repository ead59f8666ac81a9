package pipeline

import (
	"math"
	"sort"

	"github.com/couchcryptid/county-covid-report/internal/domain"
)

const (
	// rollWindow is the width of the forward-looking rolling mean over
	// daily new counts: the current day plus the next six.
	rollWindow = 7

	// leadDays is the forecast horizon: targets are the cumulative counts
	// this many rows ahead in the county's daily series.
	leadDays = 14
)

// FeatureStats counts rows removed on the way to the modeling set.
type FeatureStats struct {
	Counties     int // county groups seen
	Dropped      int // rows with a missing field after windowing
	Excluded     int // rows in excluded territories
	ModelingRows int // rows surviving both filters
}

// BuildFeatures runs the per-county feature engineering over the joined
// table and returns the completed modeling rows.
//
// Within each county group, sorted by date ascending: population density
// and mask compliance are attached per row; daily new cases/deaths are
// first differences (first row has none); 7-day left-aligned rolling means
// require a full window (trailing six rows have none); the forecast targets
// are the cumulative counts 14 rows ahead (trailing fourteen rows have
// none). Rows with any missing field are then dropped, as are rows in the
// excluded territories. The drop step removes the first row and the last
// leadDays rows of every county (the rolling-mean losses sit inside the
// lead losses), so a county needs at least leadDays+2 daily rows before
// anything survives.
//
// Windows never cross county boundaries, and groups are processed in sorted
// FIPS order so the output is deterministic.
func BuildFeatures(joined []domain.JoinedRow) ([]domain.EnrichedRow, FeatureStats) {
	groups := make(map[string][]domain.JoinedRow)
	for _, row := range joined {
		groups[row.FIPS] = append(groups[row.FIPS], row)
	}

	fipsOrder := make([]string, 0, len(groups))
	for fips := range groups {
		fipsOrder = append(fipsOrder, fips)
	}
	sort.Strings(fipsOrder)

	var out []domain.EnrichedRow
	stats := FeatureStats{Counties: len(groups)}

	for _, fips := range fipsOrder {
		group := groups[fips]
		sort.Slice(group, func(i, j int) bool {
			return group[i].Date.Before(group[j].Date)
		})

		for _, row := range enrichGroup(group) {
			if !row.Complete() {
				stats.Dropped++
				continue
			}
			if domain.ExcludedTerritory(row.State) {
				stats.Excluded++
				continue
			}
			out = append(out, row)
		}
	}

	stats.ModelingRows = len(out)
	return out, stats
}

// enrichGroup computes every engineered feature for one county's
// date-sorted rows. Missing values are NaN; the caller filters them.
func enrichGroup(group []domain.JoinedRow) []domain.EnrichedRow {
	n := len(group)
	nan := math.NaN()

	rows := make([]domain.EnrichedRow, n)
	for i, jr := range group {
		rows[i] = domain.EnrichedRow{
			CaseRow:           jr.CaseRow,
			PopulationDensity: domain.PopulationDensity(jr.Population, jr.SquareMiles),
			MaskCompliance:    domain.MaskCompliance(jr.Never, jr.Rarely, jr.Sometimes, jr.Frequently, jr.Always),
			NewCases:          nan,
			NewDeaths:         nan,
			RollAvgNewCases:   nan,
			RollAvgNewDeaths:  nan,
			FutureCases:       nan,
			FutureDeaths:      nan,
		}
	}

	// First differences of the cumulative counts.
	for i := 1; i < n; i++ {
		rows[i].NewCases = group[i].Cases - group[i-1].Cases
		rows[i].NewDeaths = group[i].Deaths - group[i-1].Deaths
	}

	// Left-aligned rolling means over the differences. A window is valid
	// only when all rollWindow cells exist, so row 0 (no difference) and
	// the trailing rollWindow-1 rows stay NaN.
	for i := 0; i+rollWindow <= n; i++ {
		sumCases, sumDeaths := 0.0, 0.0
		valid := true
		for j := i; j < i+rollWindow; j++ {
			if math.IsNaN(rows[j].NewCases) || math.IsNaN(rows[j].NewDeaths) {
				valid = false
				break
			}
			sumCases += rows[j].NewCases
			sumDeaths += rows[j].NewDeaths
		}
		if valid {
			rows[i].RollAvgNewCases = sumCases / rollWindow
			rows[i].RollAvgNewDeaths = sumDeaths / rollWindow
		}
	}

	// Forecast targets: cumulative counts leadDays rows ahead.
	for i := 0; i+leadDays < n; i++ {
		rows[i].FutureCases = group[i+leadDays].Cases
		rows[i].FutureDeaths = group[i+leadDays].Deaths
	}

	return rows
}
