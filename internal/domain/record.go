package domain

import (
	"math"
	"time"
)

// CaseRow is one county-day observation from the case table. Cases and
// Deaths are cumulative counts. FIPS plus Date form the natural key.
type CaseRow struct {
	FIPS   string
	Date   time.Time
	County string
	State  string
	Cases  float64
	Deaths float64
}

// Population is one county's estimated 2019 population.
type Population struct {
	FIPS       string
	Population float64
}

// LandArea is one county's land area in square miles.
type LandArea struct {
	FIPS        string
	SquareMiles float64
}

// MaskUse holds the five mask-survey response shares for one county.
// Each share is in [0,1] and the five sum to approximately 1.
type MaskUse struct {
	FIPS       string
	Never      float64
	Rarely     float64
	Sometimes  float64
	Frequently float64
	Always     float64
}

// JoinedRow is a case row left-joined with its auxiliary tables. Auxiliary
// fields are NaN when the county is absent from the corresponding table.
type JoinedRow struct {
	CaseRow

	Population  float64
	SquareMiles float64

	Never      float64
	Rarely     float64
	Sometimes  float64
	Frequently float64
	Always     float64
}

// EnrichedRow is a joined row with all engineered features attached.
// During construction any feature may be NaN; rows emitted by the pipeline
// carry no NaN in any field.
type EnrichedRow struct {
	CaseRow

	PopulationDensity float64
	MaskCompliance    float64
	NewCases          float64
	NewDeaths         float64
	RollAvgNewCases   float64
	RollAvgNewDeaths  float64
	FutureCases       float64
	FutureDeaths      float64
}

// Complete reports whether every engineered field is present (non-NaN).
func (r EnrichedRow) Complete() bool {
	for _, v := range []float64{
		r.PopulationDensity, r.MaskCompliance,
		r.NewCases, r.NewDeaths,
		r.RollAvgNewCases, r.RollAvgNewDeaths,
		r.FutureCases, r.FutureDeaths,
	} {
		if math.IsNaN(v) {
			return false
		}
	}
	return true
}
