package catalog

import (
	"context"
	"fmt"

	"github.com/hammamikhairi/ottobrew/internal/analytics"
	"github.com/hammamikhairi/ottobrew/internal/domain"
	"github.com/hammamikhairi/ottobrew/internal/events"
)

// Charts lists saved chart configurations.
func (s *Service) Charts(ctx context.Context) ([]*domain.ChartConfiguration, error) {
	return s.store.ListCharts(ctx)
}

// SaveChart validates both axes and stores the configuration. New charts
// get an id and creation time.
func (s *Service) SaveChart(ctx context.Context, cfg domain.ChartConfiguration) (*domain.ChartConfiguration, error) {
	v := &domain.ValidationError{}
	if _, err := analytics.AxisFor(cfg.XAxis); err != nil {
		v.Add("xAxis", err.Error())
	}
	if _, err := analytics.AxisFor(cfg.YAxis); err != nil {
		v.Add("yAxis", err.Error())
	}
	if err := v.Err(); err != nil {
		return nil, err
	}

	if cfg.ID == "" {
		cfg.ID = domain.NewID()
	}
	if cfg.CreatedAt.IsZero() {
		cfg.CreatedAt = s.now()
	}
	if err := s.store.SaveChart(ctx, &cfg); err != nil {
		return nil, fmt.Errorf("saving chart: %w", err)
	}
	s.publish(events.ChartSaved, cfg.ID)
	s.log.Info("saved chart %s (%s vs %s, %s)", cfg.ID, cfg.XAxis, cfg.YAxis, cfg.ChartType())
	return &cfg, nil
}

// DeleteChart removes a chart configuration.
func (s *Service) DeleteChart(ctx context.Context, id string) error {
	if err := s.store.DeleteChart(ctx, id); err != nil {
		return err
	}
	s.publish(events.ChartDeleted, id)
	return nil
}

// ChartData aggregates the brews matching q for a configuration.
func (s *Service) ChartData(ctx context.Context, cfg *domain.ChartConfiguration, q domain.BrewQuery) (*analytics.ChartData, error) {
	brews, err := s.store.ListBrews(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("loading brews: %w", err)
	}
	data, err := analytics.Build(cfg, brews, s.cal)
	if err != nil {
		return nil, err
	}
	s.log.Debug("chart %q: %d brew(s), %s", data.Title, len(brews), data.ChartType)
	return data, nil
}

// Stats summarizes the brews matching q.
func (s *Service) Stats(ctx context.Context, q domain.BrewQuery) (analytics.Summary, error) {
	brews, err := s.store.ListBrews(ctx, q)
	if err != nil {
		return analytics.Summary{}, fmt.Errorf("loading brews: %w", err)
	}
	return analytics.Summarize(brews), nil
}
