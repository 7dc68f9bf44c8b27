// Package catalog is the editing and query surface over the stored
// recipes, roasters, grinders, brews and charts. Every save goes through
// the same validation the editors perform, and every change is announced
// on the event bus.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hammamikhairi/ottobrew/internal/analytics"
	"github.com/hammamikhairi/ottobrew/internal/domain"
	"github.com/hammamikhairi/ottobrew/internal/events"
	"github.com/hammamikhairi/ottobrew/internal/logger"
	"github.com/hammamikhairi/ottobrew/internal/recipe"
)

// Option configures the service.
type Option func(*Service)

// WithBus publishes catalog changes on bus.
func WithBus(bus *events.Bus) Option {
	return func(s *Service) {
		s.bus = bus
	}
}

// WithClock overrides the time source used for timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// WithCalendar sets the calendar used to bucket chart data.
func WithCalendar(cal analytics.Calendar) Option {
	return func(s *Service) {
		s.cal = cal
	}
}

// Service edits and queries the catalog.
type Service struct {
	store domain.Store
	bus   *events.Bus
	log   *logger.Logger
	now   func() time.Time
	cal   analytics.Calendar
}

// New creates a catalog service over store.
func New(store domain.Store, log *logger.Logger, opts ...Option) *Service {
	s := &Service{
		store: store,
		log:   log,
		now:   time.Now,
		cal:   analytics.DefaultCalendar(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Store exposes the underlying store for collaborators that need the raw
// ports, such as the session engine and import/export.
func (s *Service) Store() domain.Store { return s.store }

// Calendar returns the calendar used for chart bucketing.
func (s *Service) Calendar() analytics.Calendar { return s.cal }

func (s *Service) publish(typ events.Type, id string) {
	if s.bus != nil {
		s.bus.Publish(typ, id)
	}
}

// Seed loads the built-in recipes when no recipe is stored yet. It
// returns how many recipes were added.
func (s *Service) Seed(ctx context.Context) (int, error) {
	n, err := s.store.Count(ctx, domain.KindRecipe)
	if err != nil {
		return 0, fmt.Errorf("counting recipes: %w", err)
	}
	if n > 0 {
		s.log.Debug("catalog has %d recipe(s), skipping seed", n)
		return 0, nil
	}

	recipes, err := recipe.BuiltIn(s.now())
	if err != nil {
		return 0, fmt.Errorf("loading built-in recipes: %w", err)
	}
	for _, r := range recipes {
		if err := s.store.SaveRecipe(ctx, r); err != nil {
			return 0, fmt.Errorf("seeding recipe %q: %w", r.Name, err)
		}
		s.publish(events.RecipeSaved, r.ID)
	}
	s.log.Info("seeded %d built-in recipe(s)", len(recipes))
	return len(recipes), nil
}

// Recipes lists recipe summaries.
func (s *Service) Recipes(ctx context.Context) ([]domain.RecipeSummary, error) {
	return s.store.ListRecipes(ctx)
}

// Recipe returns a full recipe.
func (s *Service) Recipe(ctx context.Context, id string) (*domain.Recipe, error) {
	return s.store.GetRecipe(ctx, id)
}

// EditRecipe loads a stored recipe into a form for editing.
func (s *Service) EditRecipe(ctx context.Context, id string) (recipe.RecipeForm, error) {
	r, err := s.store.GetRecipe(ctx, id)
	if err != nil {
		return recipe.RecipeForm{}, err
	}
	return recipe.FormFromRecipe(r), nil
}

// RecipeBalance reports whether a stored recipe's stages add up to its
// water target.
func (s *Service) RecipeBalance(ctx context.Context, id string) (recipe.Balance, error) {
	r, err := s.store.GetRecipe(ctx, id)
	if err != nil {
		return recipe.Balance{}, err
	}
	return recipe.FormFromRecipe(r).Balance(), nil
}

// SaveRecipe validates the form and replaces the stored recipe with it.
// Validation problems, including links to unknown roasters or grinders,
// come back together as a *domain.ValidationError.
func (s *Service) SaveRecipe(ctx context.Context, form recipe.RecipeForm) (*domain.Recipe, error) {
	v := &domain.ValidationError{}
	if err := form.Validate(); err != nil {
		var ve *domain.ValidationError
		if !errors.As(err, &ve) {
			return nil, err
		}
		v.Problems = append(v.Problems, ve.Problems...)
	}
	if err := s.checkLink(ctx, v, "roasterId", form.RoasterID, func(ctx context.Context, id string) error {
		_, err := s.store.GetRoaster(ctx, id)
		return err
	}); err != nil {
		return nil, err
	}
	if err := s.checkLink(ctx, v, "grinderId", form.GrinderID, func(ctx context.Context, id string) error {
		_, err := s.store.GetGrinder(ctx, id)
		return err
	}); err != nil {
		return nil, err
	}
	if err := v.Err(); err != nil {
		return nil, err
	}

	r, err := form.Commit(s.now())
	if err != nil {
		return nil, err
	}
	if err := s.store.SaveRecipe(ctx, r); err != nil {
		return nil, fmt.Errorf("saving recipe: %w", err)
	}
	s.publish(events.RecipeSaved, r.ID)
	s.log.Info("saved recipe %q (v%d, %d stages)", r.Name, r.Version, len(r.Stages))
	return r, nil
}

// checkLink records a problem when id is set but does not resolve. Store
// failures other than not-found are returned.
func (s *Service) checkLink(ctx context.Context, v *domain.ValidationError, field, id string, get func(context.Context, string) error) error {
	if id == "" {
		return nil
	}
	err := get(ctx, id)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, domain.ErrNotFound):
		v.Add(field, "does not exist")
		return nil
	default:
		return fmt.Errorf("checking %s: %w", field, err)
	}
}

// DeleteRecipe removes a recipe. Brews made from it are kept.
func (s *Service) DeleteRecipe(ctx context.Context, id string) error {
	if err := s.store.DeleteRecipe(ctx, id); err != nil {
		return err
	}
	s.publish(events.RecipeDeleted, id)
	s.log.Info("deleted recipe %s", id)
	return nil
}

// Roasters lists roasters.
func (s *Service) Roasters(ctx context.Context) ([]*domain.Roaster, error) {
	return s.store.ListRoasters(ctx)
}

// SaveRoaster validates and stores a roaster.
func (s *Service) SaveRoaster(ctx context.Context, form recipe.RoasterForm) (*domain.Roaster, error) {
	r, err := form.Commit(s.now())
	if err != nil {
		return nil, err
	}
	if err := s.store.SaveRoaster(ctx, r); err != nil {
		return nil, fmt.Errorf("saving roaster: %w", err)
	}
	s.publish(events.RoasterSaved, r.ID)
	s.log.Info("saved roaster %q", r.Name)
	return r, nil
}

// DeleteRoaster removes a roaster and unlinks it from recipes.
func (s *Service) DeleteRoaster(ctx context.Context, id string) error {
	if err := s.store.DeleteRoaster(ctx, id); err != nil {
		return err
	}
	s.publish(events.RoasterDeleted, id)
	return nil
}

// Grinders lists grinders.
func (s *Service) Grinders(ctx context.Context) ([]*domain.Grinder, error) {
	return s.store.ListGrinders(ctx)
}

// SaveGrinder validates and stores a grinder.
func (s *Service) SaveGrinder(ctx context.Context, form recipe.GrinderForm) (*domain.Grinder, error) {
	g, err := form.Commit(s.now())
	if err != nil {
		return nil, err
	}
	if err := s.store.SaveGrinder(ctx, g); err != nil {
		return nil, fmt.Errorf("saving grinder: %w", err)
	}
	s.publish(events.GrinderSaved, g.ID)
	s.log.Info("saved grinder %q", g.Name)
	return g, nil
}

// DeleteGrinder removes a grinder and unlinks it from recipes.
func (s *Service) DeleteGrinder(ctx context.Context, id string) error {
	if err := s.store.DeleteGrinder(ctx, id); err != nil {
		return err
	}
	s.publish(events.GrinderDeleted, id)
	return nil
}

// Brews lists brews matching q, oldest first.
func (s *Service) Brews(ctx context.Context, q domain.BrewQuery) ([]*domain.Brew, error) {
	return s.store.ListBrews(ctx, q)
}

// ReviewBrew changes the rating and notes of a logged brew. Nothing else
// about a brew can change.
func (s *Service) ReviewBrew(ctx context.Context, id string, rating int, notes string) error {
	if err := (domain.BrewResult{Rating: rating}).Validate(); err != nil {
		return err
	}
	if err := s.store.UpdateBrewReview(ctx, id, rating, notes); err != nil {
		return err
	}
	s.publish(events.BrewUpdated, id)
	s.log.Info("updated review of brew %s (rating %d)", id, rating)
	return nil
}

// DeleteBrew removes a brew from history.
func (s *Service) DeleteBrew(ctx context.Context, id string) error {
	if err := s.store.DeleteBrew(ctx, id); err != nil {
		return err
	}
	s.publish(events.BrewDeleted, id)
	return nil
}
