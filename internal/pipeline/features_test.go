package pipeline

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/county-covid-report/internal/domain"
)

// joinedSeries builds n daily joined rows for one county. Cumulative cases
// follow i*(i+1)/2 so daily new cases equal the day index, and deaths grow
// by 3 per day, which makes every engineered column easy to compute by hand.
func joinedSeries(fips, state string, n int) []domain.JoinedRow {
	start := time.Date(2020, 6, 1, 0, 0, 0, 0, time.UTC)
	rows := make([]domain.JoinedRow, n)
	for i := 0; i < n; i++ {
		rows[i] = domain.JoinedRow{
			CaseRow: domain.CaseRow{
				FIPS:   fips,
				Date:   start.AddDate(0, 0, i),
				County: "Test",
				State:  state,
				Cases:  float64(i*(i+1)) / 2,
				Deaths: float64(3 * i),
			},
			Population:  50000,
			SquareMiles: 500,
			Never:       0.1,
			Rarely:      0.1,
			Sometimes:   0.2,
			Frequently:  0.3,
			Always:      0.3,
		}
	}
	return rows
}

func TestBuildFeaturesHandComputedSeries(t *testing.T) {
	joined := joinedSeries("01001", "Alabama", 25)

	rows, stats := BuildFeatures(joined)

	// Row 0 loses the first difference and the last 14 rows lose the lead
	// target, leaving days 1 through 10.
	require.Len(t, rows, 10)
	assert.Equal(t, 1, stats.Counties)
	assert.Equal(t, 15, stats.Dropped)
	assert.Zero(t, stats.Excluded)
	assert.Equal(t, 10, stats.ModelingRows)

	wantCompliance := 0.25*0.1 + 0.5*0.2 + 0.75*0.3 + 1.0*0.3

	for k, row := range rows {
		i := k + 1 // day index in the source series
		assert.Equal(t, float64(i), row.NewCases, "day %d new cases", i)
		assert.Equal(t, 3.0, row.NewDeaths, "day %d new deaths", i)

		// Window i..i+6 of daily new cases is i, i+1, ..., i+6.
		assert.InDelta(t, float64(i+3), row.RollAvgNewCases, 1e-9, "day %d rolling cases", i)
		assert.InDelta(t, 3.0, row.RollAvgNewDeaths, 1e-9, "day %d rolling deaths", i)

		lead := i + 14
		assert.Equal(t, float64(lead*(lead+1))/2, row.FutureCases, "day %d future cases", i)
		assert.Equal(t, float64(3*lead), row.FutureDeaths, "day %d future deaths", i)

		assert.InDelta(t, 100.0, row.PopulationDensity, 1e-9)
		assert.InDelta(t, wantCompliance, row.MaskCompliance, 1e-9)
	}
}

func TestBuildFeaturesMinimumSeriesLength(t *testing.T) {
	tests := []struct {
		days int
		want int
	}{
		{days: 15, want: 0},
		{days: 16, want: 1},
		{days: 21, want: 6},
		{days: 30, want: 15},
	}
	for _, tt := range tests {
		rows, stats := BuildFeatures(joinedSeries("01001", "Alabama", tt.days))
		assert.Len(t, rows, tt.want, "%d-day series", tt.days)
		assert.Equal(t, tt.want, stats.ModelingRows, "%d-day series", tt.days)
	}
}

func TestBuildFeaturesNoCrossCountyWindows(t *testing.T) {
	// Two counties, each just long enough for one surviving row. If windows
	// leaked across the county boundary, the second county's differences
	// would be polluted by the first county's final cumulative count.
	joined := append(joinedSeries("01001", "Alabama", 16),
		joinedSeries("48113", "Texas", 16)...)

	rows, stats := BuildFeatures(joined)
	require.Len(t, rows, 2)
	assert.Equal(t, 2, stats.Counties)

	assert.Equal(t, "01001", rows[0].FIPS)
	assert.Equal(t, "48113", rows[1].FIPS)
	assert.Equal(t, 1.0, rows[0].NewCases)
	assert.Equal(t, 1.0, rows[1].NewCases, "second county restarts its own differences")
}

func TestBuildFeaturesSortsWithinCounty(t *testing.T) {
	joined := joinedSeries("01001", "Alabama", 16)
	// Shuffle deterministically: reverse the slice.
	for i, j := 0, len(joined)-1; i < j; i, j = i+1, j-1 {
		joined[i], joined[j] = joined[j], joined[i]
	}

	rows, _ := BuildFeatures(joined)
	require.Len(t, rows, 1)
	assert.Equal(t, 1.0, rows[0].NewCases, "date order is restored before differencing")
	assert.Equal(t, 15.0*16/2, rows[0].FutureCases)
}

func TestBuildFeaturesExcludesTerritories(t *testing.T) {
	joined := append(joinedSeries("72001", "Puerto Rico", 16),
		joinedSeries("01001", "Alabama", 16)...)

	rows, stats := BuildFeatures(joined)
	require.Len(t, rows, 1)
	assert.Equal(t, "01001", rows[0].FIPS)
	assert.Equal(t, 1, stats.Excluded)
	assert.Equal(t, 1, stats.ModelingRows)
}

func TestBuildFeaturesDropsUnjoinedCounty(t *testing.T) {
	joined := joinedSeries("01001", "Alabama", 16)
	for i := range joined {
		// Simulate a mask-table miss for the entire county.
		joined[i].Never = math.NaN()
		joined[i].Rarely = math.NaN()
		joined[i].Sometimes = math.NaN()
		joined[i].Frequently = math.NaN()
		joined[i].Always = math.NaN()
	}

	rows, stats := BuildFeatures(joined)
	assert.Empty(t, rows)
	assert.Equal(t, 16, stats.Dropped)
}

func TestBuildFeaturesEmptyInput(t *testing.T) {
	rows, stats := BuildFeatures(nil)
	assert.Empty(t, rows)
	assert.Equal(t, FeatureStats{}, stats)
}
