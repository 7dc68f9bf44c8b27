package transfer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hammamikhairi/ottobrew/internal/domain"
	"github.com/hammamikhairi/ottobrew/internal/events"
	"github.com/hammamikhairi/ottobrew/internal/logger"
)

// Option configures the service.
type Option func(*Service)

// WithBus publishes a DataImported event after each import that wrote
// something.
func WithBus(bus *events.Bus) Option {
	return func(s *Service) {
		s.bus = bus
	}
}

// WithClock overrides the time source used for the export date.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// Service exports a store to a document and imports documents into it.
type Service struct {
	store domain.Store
	log   *logger.Logger
	bus   *events.Bus
	now   func() time.Time
}

// New creates a transfer service over store.
func New(store domain.Store, log *logger.Logger, opts ...Option) *Service {
	s := &Service{store: store, log: log, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Counts tallies one entity kind in an import.
type Counts struct {
	Imported int
	Ignored  int
}

// Report is the outcome of an import, per entity kind.
type Report struct {
	Roasters Counts
	Grinders Counts
	Recipes  Counts
	Brews    Counts
	Charts   Counts
}

// Imported is the total number of new entities written.
func (r Report) Imported() int {
	return r.Roasters.Imported + r.Grinders.Imported + r.Recipes.Imported + r.Brews.Imported + r.Charts.Imported
}

// Ignored is the total number of entities skipped because their id
// already existed.
func (r Report) Ignored() int {
	return r.Roasters.Ignored + r.Grinders.Ignored + r.Recipes.Ignored + r.Brews.Ignored + r.Charts.Ignored
}

// Export snapshots the whole store.
func (s *Service) Export(ctx context.Context) (*Document, error) {
	doc := &Document{
		Version:    Version,
		ExportDate: s.now().UTC(),
		Data: Data{
			Recipes:  []Recipe{},
			Brews:    []Brew{},
			Roasters: []Roaster{},
			Grinders: []Grinder{},
			Charts:   []Chart{},
		},
	}

	roasters, err := s.store.ListRoasters(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing roasters: %w", err)
	}
	for _, r := range roasters {
		doc.Data.Roasters = append(doc.Data.Roasters, fromRoaster(r))
	}

	grinders, err := s.store.ListGrinders(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing grinders: %w", err)
	}
	for _, g := range grinders {
		doc.Data.Grinders = append(doc.Data.Grinders, fromGrinder(g))
	}

	summaries, err := s.store.ListRecipes(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing recipes: %w", err)
	}
	for _, sum := range summaries {
		r, err := s.store.GetRecipe(ctx, sum.ID)
		if err != nil {
			return nil, fmt.Errorf("getting recipe %s: %w", sum.ID, err)
		}
		doc.Data.Recipes = append(doc.Data.Recipes, fromRecipe(r))
	}

	brews, err := s.store.ListBrews(ctx, domain.BrewQuery{})
	if err != nil {
		return nil, fmt.Errorf("listing brews: %w", err)
	}
	for _, b := range brews {
		doc.Data.Brews = append(doc.Data.Brews, fromBrew(b))
	}

	charts, err := s.store.ListCharts(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing charts: %w", err)
	}
	for _, c := range charts {
		doc.Data.Charts = append(doc.Data.Charts, fromChart(c))
	}

	s.log.Info("exported %d recipes, %d brews, %d roasters, %d grinders, %d charts",
		len(doc.Data.Recipes), len(doc.Data.Brews), len(doc.Data.Roasters), len(doc.Data.Grinders), len(doc.Data.Charts))
	return doc, nil
}

// Import writes every entity whose id is not in the store yet, in
// dependency order: roasters, grinders, recipes, brews, charts. Existing
// ids are left untouched and counted as ignored, so importing the same
// document twice is harmless.
func (s *Service) Import(ctx context.Context, doc *Document) (Report, error) {
	var rep Report
	if doc.Version != Version {
		return rep, formatErrorf("unsupported version %q", doc.Version)
	}
	if err := doc.validate(); err != nil {
		return rep, err
	}
	if err := s.checkStageOwners(ctx, doc); err != nil {
		return rep, err
	}

	for _, r := range doc.Data.Roasters {
		if err := s.put(&rep.Roasters, domain.KindRoaster, r.ID,
			func() error { _, err := s.store.GetRoaster(ctx, r.ID); return err },
			func() error { return s.store.SaveRoaster(ctx, r.toDomain()) },
		); err != nil {
			return rep, err
		}
	}
	for _, g := range doc.Data.Grinders {
		if err := s.put(&rep.Grinders, domain.KindGrinder, g.ID,
			func() error { _, err := s.store.GetGrinder(ctx, g.ID); return err },
			func() error { return s.store.SaveGrinder(ctx, g.toDomain()) },
		); err != nil {
			return rep, err
		}
	}
	for _, r := range doc.Data.Recipes {
		if err := s.put(&rep.Recipes, domain.KindRecipe, r.ID,
			func() error { _, err := s.store.GetRecipe(ctx, r.ID); return err },
			func() error { return s.store.SaveRecipe(ctx, r.toDomain()) },
		); err != nil {
			return rep, err
		}
	}
	for _, b := range doc.Data.Brews {
		if err := s.put(&rep.Brews, domain.KindBrew, b.ID,
			func() error { _, err := s.store.GetBrew(ctx, b.ID); return err },
			func() error { return s.store.SaveBrew(ctx, b.toDomain()) },
		); err != nil {
			return rep, err
		}
	}
	for _, c := range doc.Data.Charts {
		if err := s.put(&rep.Charts, domain.KindChart, c.ID,
			func() error { _, err := s.store.GetChart(ctx, c.ID); return err },
			func() error { return s.store.SaveChart(ctx, c.toDomain()) },
		); err != nil {
			return rep, err
		}
	}

	if s.bus != nil && rep.Imported() > 0 {
		s.bus.Publish(events.DataImported, "")
	}
	s.log.Info("import finished: %d imported, %d ignored", rep.Imported(), rep.Ignored())
	return rep, nil
}

// checkStageOwners rejects a document whose new recipes reuse a stage id
// that already belongs to a different stored recipe.
func (s *Service) checkStageOwners(ctx context.Context, doc *Document) error {
	if len(doc.Data.Recipes) == 0 {
		return nil
	}
	summaries, err := s.store.ListRecipes(ctx)
	if err != nil {
		return fmt.Errorf("listing recipes: %w", err)
	}
	owners := make(map[string]string)
	for _, sum := range summaries {
		stages, err := s.store.StagesForRecipe(ctx, sum.ID)
		if err != nil {
			return fmt.Errorf("listing stages of %s: %w", sum.ID, err)
		}
		for _, st := range stages {
			owners[st.ID] = sum.ID
		}
	}
	for _, r := range doc.Data.Recipes {
		for _, st := range r.Stages {
			if owner, ok := owners[st.ID]; ok && owner != r.ID {
				return formatErrorf("stage %s of recipe %s already belongs to recipe %s", st.ID, r.ID, owner)
			}
		}
	}
	return nil
}

// put saves one entity unless exists finds it already stored.
func (s *Service) put(c *Counts, kind domain.EntityKind, id string, exists, save func() error) error {
	err := exists()
	switch {
	case err == nil:
		c.Ignored++
		s.log.Debug("import: %s %s already exists", kind, id)
		return nil
	case !errors.Is(err, domain.ErrNotFound):
		return fmt.Errorf("checking %s %s: %w", kind, id, err)
	}

	if err := save(); err != nil {
		if errors.Is(err, domain.ErrAlreadyExists) {
			c.Ignored++
			return nil
		}
		return fmt.Errorf("importing %s %s: %w", kind, id, err)
	}
	c.Imported++
	return nil
}
