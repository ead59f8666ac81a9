package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Contains(t, cfg.CasesURL, "nytimes/covid-19-data")
	assert.Contains(t, cfg.MaskURL, "mask-use-by-county")
	assert.Contains(t, cfg.PopulationURL, "census.gov")
	assert.Contains(t, cfg.AreaURL, ".xlsx")
	assert.Equal(t, "POPESTIMATE2019", cfg.PopulationColumn)
	assert.Equal(t, "STATEFP", cfg.AreaStateColumn)
	assert.Equal(t, "COUNTYFP", cfg.AreaCountyColumn)
	assert.Equal(t, "LND110210D", cfg.AreaLandColumn)
	assert.Equal(t, 2*time.Minute, cfg.HTTPTimeout)
	assert.Equal(t, "report", cfg.OutputDir)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, 0.8, cfg.TrainFraction)
	assert.Equal(t, int64(42), cfg.LinearSeed)
	assert.Equal(t, int64(1337), cfg.TreeSeed)
}

func TestLoad_CustomEnv(t *testing.T) {
	t.Setenv("CASES_URL", "http://localhost:8000/cases.csv")
	t.Setenv("MASK_URL", "http://localhost:8000/masks.csv")
	t.Setenv("POPULATION_URL", "http://localhost:8000/pop.csv")
	t.Setenv("AREA_URL", "http://localhost:8000/area.xlsx")
	t.Setenv("POPULATION_COLUMN", "POPESTIMATE2020")
	t.Setenv("AREA_LAND_COLUMN", "LAND_SQMI")
	t.Setenv("HTTP_TIMEOUT", "30s")
	t.Setenv("OUTPUT_DIR", "/tmp/out")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "text")
	t.Setenv("TRAIN_FRACTION", "0.7")
	t.Setenv("LINEAR_SEED", "11")
	t.Setenv("TREE_SEED", "-3")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:8000/cases.csv", cfg.CasesURL)
	assert.Equal(t, "http://localhost:8000/masks.csv", cfg.MaskURL)
	assert.Equal(t, "http://localhost:8000/pop.csv", cfg.PopulationURL)
	assert.Equal(t, "http://localhost:8000/area.xlsx", cfg.AreaURL)
	assert.Equal(t, "POPESTIMATE2020", cfg.PopulationColumn)
	assert.Equal(t, "LAND_SQMI", cfg.AreaLandColumn)
	assert.Equal(t, 30*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, "/tmp/out", cfg.OutputDir)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, 0.7, cfg.TrainFraction)
	assert.Equal(t, int64(11), cfg.LinearSeed)
	assert.Equal(t, int64(-3), cfg.TreeSeed)
}

func TestLoad_InvalidTimeout(t *testing.T) {
	t.Setenv("HTTP_TIMEOUT", "not-a-duration")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HTTP_TIMEOUT")
}

func TestLoad_NonPositiveTimeout(t *testing.T) {
	t.Setenv("HTTP_TIMEOUT", "-5s")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HTTP_TIMEOUT")
}

func TestLoad_InvalidTrainFraction(t *testing.T) {
	for _, bad := range []string{"0", "1", "1.5", "abc"} {
		t.Run(bad, func(t *testing.T) {
			t.Setenv("TRAIN_FRACTION", bad)

			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), "TRAIN_FRACTION")
		})
	}
}

func TestLoad_InvalidSeed(t *testing.T) {
	t.Setenv("LINEAR_SEED", "forty-two")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "LINEAR_SEED")
}
