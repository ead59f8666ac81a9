package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"
)

// Default dataset locations. The case and mask tables come from the New
// York Times covid-19-data repository; population and land area come from
// the Census Bureau.
const (
	defaultCasesURL = "https://raw.githubusercontent.com/nytimes/covid-19-data/master/us-counties.csv"
	defaultMaskURL  = "https://raw.githubusercontent.com/nytimes/covid-19-data/master/mask-use/mask-use-by-county.csv"
	defaultPopURL   = "https://www2.census.gov/programs-surveys/popest/datasets/2010-2019/counties/totals/co-est2019-alldata.csv"
	defaultAreaURL  = "https://www2.census.gov/programs-surveys/popest/geographies/2019/all-geocodes-v2019.xlsx"
)

// Config holds all report settings, populated from environment variables.
type Config struct {
	CasesURL      string
	MaskURL       string
	PopulationURL string
	AreaURL       string

	// Column headers, overridable when a dataset vintage renames them.
	PopulationColumn string
	AreaStateColumn  string
	AreaCountyColumn string
	AreaLandColumn   string

	HTTPTimeout time.Duration
	OutputDir   string
	LogLevel    string
	LogFormat   string

	TrainFraction float64
	LinearSeed    int64
	TreeSeed      int64
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	timeout, err := parseTimeout()
	if err != nil {
		return nil, err
	}

	frac, err := parseTrainFraction()
	if err != nil {
		return nil, err
	}

	linearSeed, err := parseSeed("LINEAR_SEED", 42)
	if err != nil {
		return nil, err
	}
	treeSeed, err := parseSeed("TREE_SEED", 1337)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		CasesURL:      envOrDefault("CASES_URL", defaultCasesURL),
		MaskURL:       envOrDefault("MASK_URL", defaultMaskURL),
		PopulationURL: envOrDefault("POPULATION_URL", defaultPopURL),
		AreaURL:       envOrDefault("AREA_URL", defaultAreaURL),

		PopulationColumn: envOrDefault("POPULATION_COLUMN", "POPESTIMATE2019"),
		AreaStateColumn:  envOrDefault("AREA_STATE_COLUMN", "STATEFP"),
		AreaCountyColumn: envOrDefault("AREA_COUNTY_COLUMN", "COUNTYFP"),
		AreaLandColumn:   envOrDefault("AREA_LAND_COLUMN", "LND110210D"),

		HTTPTimeout: timeout,
		OutputDir:   envOrDefault("OUTPUT_DIR", "report"),
		LogLevel:    envOrDefault("LOG_LEVEL", "info"),
		LogFormat:   envOrDefault("LOG_FORMAT", "json"),

		TrainFraction: frac,
		LinearSeed:    linearSeed,
		TreeSeed:      treeSeed,
	}

	if cfg.CasesURL == "" {
		return nil, errors.New("CASES_URL is required")
	}
	if cfg.MaskURL == "" {
		return nil, errors.New("MASK_URL is required")
	}
	if cfg.PopulationURL == "" {
		return nil, errors.New("POPULATION_URL is required")
	}
	if cfg.AreaURL == "" {
		return nil, errors.New("AREA_URL is required")
	}
	if cfg.OutputDir == "" {
		return nil, errors.New("OUTPUT_DIR is required")
	}

	return cfg, nil
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func parseTimeout() (time.Duration, error) {
	s := envOrDefault("HTTP_TIMEOUT", "2m")
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid HTTP_TIMEOUT %q", s)
	}
	return d, nil
}

func parseTrainFraction() (float64, error) {
	s := envOrDefault("TRAIN_FRACTION", "0.8")
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f <= 0 || f >= 1 {
		return 0, fmt.Errorf("invalid TRAIN_FRACTION %q: must be in (0,1)", s)
	}
	return f, nil
}

func parseSeed(key string, def int64) (int64, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q", key, s)
	}
	return n, nil
}
