// Package domain models county-level COVID-19 surveillance data and the
// derived features used for forecasting.
//
// # Data Sources
//
// Four public datasets feed the report, all keyed by county FIPS code:
//
//   - Case/death counts: The New York Times covid-19-data repository,
//     us-counties.csv. One row per county per day with cumulative case and
//     death counts. Columns: date, county, state, fips, cases, deaths.
//   - Mask usage: The New York Times mask-use survey (July 2020),
//     mask-use-by-county.csv. One row per county with the estimated share of
//     residents answering never/rarely/sometimes/frequently/always to "how
//     often do you wear a mask in public?". The five shares sum to ~1.
//   - Population: US Census Bureau county population estimates
//     (co-est2019-alldata.csv), POPESTIMATE2019 column.
//   - Land area: US Census Bureau county land area table (spreadsheet, first
//     sheet), land area in square miles.
//
// # FIPS Conventions
//
// A county FIPS code is a 5-character string: a 2-digit state code followed
// by a 3-digit county code, both zero-padded ("06037" = Los Angeles County,
// CA). The case and mask tables carry a pre-built code; the population and
// area tables carry state and county codes separately, concatenated by
// [BuildFIPS]. Codes that pass through spreadsheet software frequently lose
// leading zeros or gain a ".0" suffix, which is the main source of silent
// join failure; [NormalizeFIPS] canonicalizes before any comparison.
//
// Rows at a state or national summary level use county code "000" and are
// skipped during ingestion. The NYT data also contains rows with an empty
// FIPS ("Unknown" county and some geographic exceptions); those cannot be
// joined and are skipped as well.
//
// # Territories
//
// Puerto Rico, the Virgin Islands, Guam, and the Northern Mariana Islands
// appear in the case data but lack comparable survey and estimate coverage;
// they are excluded unconditionally after feature computation. See
// [ExcludedTerritory].
//
// # Derived Features
//
// Within a county's date-sorted series the pipeline derives daily new case
// and death counts (first differences), 7-day forward-looking rolling means
// of those, and the cumulative counts 14 days ahead as forecast targets.
// Missing values are represented as NaN until the drop step removes any row
// that still carries one.
package domain
