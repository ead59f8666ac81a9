package pipeline

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/county-covid-report/internal/domain"
)

func caseRow(fips string, day int, cases, deaths float64) domain.CaseRow {
	return domain.CaseRow{
		FIPS:   fips,
		Date:   time.Date(2020, 6, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, day),
		County: "Test",
		State:  "Alabama",
		Cases:  cases,
		Deaths: deaths,
	}
}

func TestJoinMatchesAllTables(t *testing.T) {
	cases := []domain.CaseRow{caseRow("01001", 0, 10, 1)}
	pops := []domain.Population{{FIPS: "01001", Population: 55000}}
	areas := []domain.LandArea{{FIPS: "01001", SquareMiles: 594.44}}
	masks := []domain.MaskUse{{
		FIPS: "01001", Never: 0.05, Rarely: 0.07, Sometimes: 0.2, Frequently: 0.3, Always: 0.38,
	}}

	joined, stats := Join(cases, pops, areas, masks)
	require.Len(t, joined, 1)

	row := joined[0]
	assert.Equal(t, "01001", row.FIPS)
	assert.Equal(t, 55000.0, row.Population)
	assert.Equal(t, 594.44, row.SquareMiles)
	assert.Equal(t, 0.38, row.Always)

	assert.Equal(t, 1, stats.PopulationMatches)
	assert.Equal(t, 1, stats.AreaMatches)
	assert.Equal(t, 1, stats.MaskMatches)
	assert.Zero(t, stats.PopulationMisses)
	assert.Zero(t, stats.AreaMisses)
	assert.Zero(t, stats.MaskMisses)
}

func TestJoinPreservesEveryCaseRow(t *testing.T) {
	cases := []domain.CaseRow{
		caseRow("01001", 0, 10, 1),
		caseRow("01001", 1, 12, 1),
		caseRow("48113", 0, 500, 9),
	}

	// No auxiliary table knows county 48113.
	pops := []domain.Population{{FIPS: "01001", Population: 55000}}
	areas := []domain.LandArea{{FIPS: "01001", SquareMiles: 594.44}}
	masks := []domain.MaskUse{{FIPS: "01001", Always: 1}}

	joined, stats := Join(cases, pops, areas, masks)
	require.Len(t, joined, 3, "left join must keep every case row")

	missed := joined[2]
	assert.Equal(t, "48113", missed.FIPS)
	assert.True(t, math.IsNaN(missed.Population))
	assert.True(t, math.IsNaN(missed.SquareMiles))
	assert.True(t, math.IsNaN(missed.Never))
	assert.True(t, math.IsNaN(missed.Always))
	assert.Equal(t, 500.0, missed.Cases, "case fields survive a miss")

	assert.Equal(t, 2, stats.PopulationMatches)
	assert.Equal(t, 1, stats.PopulationMisses)
	assert.Equal(t, 1, stats.AreaMisses)
	assert.Equal(t, 1, stats.MaskMisses)
}

func TestJoinMissesSingleTableOnly(t *testing.T) {
	cases := []domain.CaseRow{caseRow("01001", 0, 10, 1)}
	pops := []domain.Population{{FIPS: "01001", Population: 55000}}
	masks := []domain.MaskUse{{FIPS: "01001", Always: 1}}

	joined, stats := Join(cases, pops, nil, masks)
	require.Len(t, joined, 1)

	row := joined[0]
	assert.Equal(t, 55000.0, row.Population)
	assert.True(t, math.IsNaN(row.SquareMiles), "only the missing table is NaN")
	assert.Equal(t, 1.0, row.Always)

	assert.Equal(t, 1, stats.AreaMisses)
	assert.Zero(t, stats.PopulationMisses)
	assert.Zero(t, stats.MaskMisses)
}

func TestJoinDuplicateAuxiliaryKeysKeepLast(t *testing.T) {
	cases := []domain.CaseRow{caseRow("01001", 0, 10, 1)}
	pops := []domain.Population{
		{FIPS: "01001", Population: 1},
		{FIPS: "01001", Population: 55000},
	}

	joined, _ := Join(cases, pops, nil, nil)
	require.Len(t, joined, 1)
	assert.Equal(t, 55000.0, joined[0].Population)
}

func TestJoinEmptyCases(t *testing.T) {
	joined, stats := Join(nil,
		[]domain.Population{{FIPS: "01001", Population: 55000}}, nil, nil)
	assert.Empty(t, joined)
	assert.Equal(t, JoinStats{}, stats)
}
