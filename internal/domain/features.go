package domain

import "math"

// Mask-survey band weights: never counts for nothing, always counts fully.
const (
	weightNever      = 0.0
	weightRarely     = 0.25
	weightSometimes  = 0.5
	weightFrequently = 0.75
	weightAlways     = 1.0
)

// excludedTerritories are the non-state regions removed from the modeling
// set. They appear in the case data but lack survey and estimate coverage.
var excludedTerritories = map[string]bool{
	"Puerto Rico":              true,
	"Virgin Islands":           true,
	"Guam":                     true,
	"Northern Mariana Islands": true,
}

// PopulationDensity returns population per square mile, or NaN when either
// input is missing or the area is not positive.
func PopulationDensity(population, squareMiles float64) float64 {
	if math.IsNaN(population) || math.IsNaN(squareMiles) || squareMiles <= 0 {
		return math.NaN()
	}
	return population / squareMiles
}

// MaskCompliance collapses the five survey shares into a single score in
// [0,1]: 0 if everyone answered "never", 1 if everyone answered "always".
// NaN in any band propagates to the result.
func MaskCompliance(never, rarely, sometimes, frequently, always float64) float64 {
	if math.IsNaN(never) || math.IsNaN(rarely) || math.IsNaN(sometimes) ||
		math.IsNaN(frequently) || math.IsNaN(always) {
		return math.NaN()
	}
	return weightNever*never +
		weightRarely*rarely +
		weightSometimes*sometimes +
		weightFrequently*frequently +
		weightAlways*always
}

// ExcludedTerritory reports whether rows for the named state are dropped
// from the modeling set.
func ExcludedTerritory(state string) bool {
	return excludedTerritories[state]
}
