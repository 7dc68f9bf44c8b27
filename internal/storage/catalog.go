package storage

import (
	"context"
	"fmt"
	"sort"

	"github.com/hammamikhairi/ottobrew/internal/domain"
)

// SaveRecipe replaces the whole recipe, stages included.
func (s *MemoryStore) SaveRecipe(ctx context.Context, recipe *domain.Recipe) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.recipes[recipe.ID] = recipe.Clone()
	s.log.Debug("saved recipe %s (%d stages)", recipe.ID, len(recipe.Stages))
	return nil
}

// GetRecipe returns a copy of the recipe.
func (s *MemoryStore) GetRecipe(ctx context.Context, id string) (*domain.Recipe, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.recipes[id]
	if !ok {
		return nil, fmt.Errorf("recipe %q: %w", id, domain.ErrNotFound)
	}
	return r.Clone(), nil
}

// ListRecipes returns recipe summaries sorted by name.
func (s *MemoryStore) ListRecipes(ctx context.Context) ([]domain.RecipeSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.RecipeSummary, 0, len(s.recipes))
	for _, r := range s.recipes {
		out = append(out, r.Summary())
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// DeleteRecipe removes a recipe and its stages. Brews made from it keep
// their snapshot but lose their origin link.
func (s *MemoryStore) DeleteRecipe(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.recipes[id]; !ok {
		return fmt.Errorf("recipe %q: %w", id, domain.ErrNotFound)
	}
	delete(s.recipes, id)
	for bid, sb := range s.brews {
		if sb.recipeID == id {
			sb.recipeID = ""
			s.brews[bid] = sb
		}
	}
	return nil
}

// StagesForRecipe returns the recipe's stages ordered by OrderIndex.
func (s *MemoryStore) StagesForRecipe(ctx context.Context, recipeID string) ([]domain.Stage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.recipes[recipeID]
	if !ok {
		return nil, fmt.Errorf("recipe %q: %w", recipeID, domain.ErrNotFound)
	}
	stages := append([]domain.Stage(nil), r.Stages...)
	sort.SliceStable(stages, func(i, j int) bool { return stages[i].OrderIndex < stages[j].OrderIndex })
	return stages, nil
}

// SaveRoaster inserts or replaces a roaster.
func (s *MemoryStore) SaveRoaster(ctx context.Context, roaster *domain.Roaster) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.roasters[roaster.ID] = *roaster
	return nil
}

// GetRoaster returns a copy of the roaster.
func (s *MemoryStore) GetRoaster(ctx context.Context, id string) (*domain.Roaster, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.roasters[id]
	if !ok {
		return nil, fmt.Errorf("roaster %q: %w", id, domain.ErrNotFound)
	}
	return &r, nil
}

// ListRoasters returns roasters sorted by name, then id.
func (s *MemoryStore) ListRoasters(ctx context.Context) ([]*domain.Roaster, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*domain.Roaster, 0, len(s.roasters))
	for _, r := range s.roasters {
		r := r
		out = append(out, &r)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// DeleteRoaster removes a roaster and unlinks it from recipes.
func (s *MemoryStore) DeleteRoaster(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.roasters[id]; !ok {
		return fmt.Errorf("roaster %q: %w", id, domain.ErrNotFound)
	}
	delete(s.roasters, id)
	for _, r := range s.recipes {
		if r.RoasterID == id {
			r.RoasterID = ""
		}
	}
	return nil
}

// SaveGrinder inserts or replaces a grinder.
func (s *MemoryStore) SaveGrinder(ctx context.Context, grinder *domain.Grinder) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.grinders[grinder.ID] = *grinder
	return nil
}

// GetGrinder returns a copy of the grinder.
func (s *MemoryStore) GetGrinder(ctx context.Context, id string) (*domain.Grinder, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	g, ok := s.grinders[id]
	if !ok {
		return nil, fmt.Errorf("grinder %q: %w", id, domain.ErrNotFound)
	}
	return &g, nil
}

// ListGrinders returns grinders sorted by name, then id.
func (s *MemoryStore) ListGrinders(ctx context.Context) ([]*domain.Grinder, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*domain.Grinder, 0, len(s.grinders))
	for _, g := range s.grinders {
		g := g
		out = append(out, &g)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// DeleteGrinder removes a grinder and unlinks it from recipes.
func (s *MemoryStore) DeleteGrinder(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.grinders[id]; !ok {
		return fmt.Errorf("grinder %q: %w", id, domain.ErrNotFound)
	}
	delete(s.grinders, id)
	for _, r := range s.recipes {
		if r.GrinderID == id {
			r.GrinderID = ""
		}
	}
	return nil
}

// SaveBrew records a new brew. Brews are immutable, so an existing id is
// rejected with ErrAlreadyExists.
func (s *MemoryStore) SaveBrew(ctx context.Context, brew *domain.Brew) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.brews[brew.ID]; ok {
		return fmt.Errorf("brew %q: %w", brew.ID, domain.ErrAlreadyExists)
	}
	sb := storedBrew{brew: *brew, recipeID: brew.RecipeID()}
	sb.brew.Origin = nil
	s.brews[brew.ID] = sb
	return nil
}

// GetBrew returns the brew with its origin resolved.
func (s *MemoryStore) GetBrew(ctx context.Context, id string) (*domain.Brew, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sb, ok := s.brews[id]
	if !ok {
		return nil, fmt.Errorf("brew %q: %w", id, domain.ErrNotFound)
	}
	return s.materialize(sb), nil
}

// ListBrews returns matching brews, oldest first, with origins resolved.
func (s *MemoryStore) ListBrews(ctx context.Context, q domain.BrewQuery) ([]*domain.Brew, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*domain.Brew, 0, len(s.brews))
	for _, sb := range s.brews {
		b := s.materialize(sb)
		if q.Match(b) {
			out = append(out, b)
		}
	}
	sortBrews(out)
	return out, nil
}

// materialize must be called with the lock held.
func (s *MemoryStore) materialize(sb storedBrew) *domain.Brew {
	b := sb.brew
	if r, ok := s.recipes[sb.recipeID]; ok {
		origin := &domain.BrewOrigin{RecipeID: r.ID}
		if roaster, ok := s.roasters[r.RoasterID]; ok {
			origin.Roaster = &roaster
		}
		b.Origin = origin
	}
	return &b
}

// UpdateBrewReview changes a brew's rating and notes.
func (s *MemoryStore) UpdateBrewReview(ctx context.Context, id string, rating int, notes string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sb, ok := s.brews[id]
	if !ok {
		return fmt.Errorf("brew %q: %w", id, domain.ErrNotFound)
	}
	sb.brew.Rating = rating
	sb.brew.Notes = notes
	s.brews[id] = sb
	return nil
}

// DeleteBrew removes a brew.
func (s *MemoryStore) DeleteBrew(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.brews[id]; !ok {
		return fmt.Errorf("brew %q: %w", id, domain.ErrNotFound)
	}
	delete(s.brews, id)
	return nil
}

// SaveChart inserts or replaces a chart configuration.
func (s *MemoryStore) SaveChart(ctx context.Context, chart *domain.ChartConfiguration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.charts[chart.ID] = *chart
	return nil
}

// GetChart returns a copy of the chart configuration.
func (s *MemoryStore) GetChart(ctx context.Context, id string) (*domain.ChartConfiguration, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.charts[id]
	if !ok {
		return nil, fmt.Errorf("chart %q: %w", id, domain.ErrNotFound)
	}
	return &c, nil
}

// ListCharts returns charts in creation order.
func (s *MemoryStore) ListCharts(ctx context.Context) ([]*domain.ChartConfiguration, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*domain.ChartConfiguration, 0, len(s.charts))
	for _, c := range s.charts {
		c := c
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// DeleteChart removes a chart configuration.
func (s *MemoryStore) DeleteChart(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.charts[id]; !ok {
		return fmt.Errorf("chart %q: %w", id, domain.ErrNotFound)
	}
	delete(s.charts, id)
	return nil
}

// Count returns how many entities of kind are stored.
func (s *MemoryStore) Count(ctx context.Context, kind domain.EntityKind) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	switch kind {
	case domain.KindRecipe:
		return len(s.recipes), nil
	case domain.KindStage:
		n := 0
		for _, r := range s.recipes {
			n += len(r.Stages)
		}
		return n, nil
	case domain.KindBrew:
		return len(s.brews), nil
	case domain.KindRoaster:
		return len(s.roasters), nil
	case domain.KindGrinder:
		return len(s.grinders), nil
	case domain.KindChart:
		return len(s.charts), nil
	default:
		return 0, fmt.Errorf("unknown entity kind %q", kind)
	}
}

// sortBrews orders brews by date, oldest first, then by id.
func sortBrews(brews []*domain.Brew) {
	sort.Slice(brews, func(i, j int) bool {
		if !brews[i].Date.Equal(brews[j].Date) {
			return brews[i].Date.Before(brews[j].Date)
		}
		return brews[i].ID < brews[j].ID
	})
}
