package fetch

import (
	"context"
	"log/slog"

	"github.com/couchcryptid/county-covid-report/internal/config"
	"github.com/couchcryptid/county-covid-report/internal/domain"
)

// Source binds a Client to the configured dataset locations so the
// pipeline can ask for each table without knowing where it lives.
type Source struct {
	client *Client
	cfg    *config.Config
}

// NewSource creates a Source for the URLs and column names in cfg.
func NewSource(cfg *config.Config, logger *slog.Logger) *Source {
	return &Source{
		client: NewClient(cfg.HTTPTimeout, logger),
		cfg:    cfg,
	}
}

func (s *Source) Cases(ctx context.Context) ([]domain.CaseRow, error) {
	return s.client.FetchCases(ctx, s.cfg.CasesURL)
}

func (s *Source) Population(ctx context.Context) ([]domain.Population, error) {
	return s.client.FetchPopulation(ctx, s.cfg.PopulationURL, s.cfg.PopulationColumn)
}

func (s *Source) LandArea(ctx context.Context) ([]domain.LandArea, error) {
	return s.client.FetchLandArea(ctx, s.cfg.AreaURL, AreaColumns{
		StateFIPS:  s.cfg.AreaStateColumn,
		CountyFIPS: s.cfg.AreaCountyColumn,
		LandArea:   s.cfg.AreaLandColumn,
	})
}

func (s *Source) MaskUse(ctx context.Context) ([]domain.MaskUse, error) {
	return s.client.FetchMaskUse(ctx, s.cfg.MaskURL)
}
