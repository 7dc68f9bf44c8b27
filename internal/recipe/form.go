package recipe

import (
	"fmt"
	"strings"
	"time"

	"github.com/hammamikhairi/ottobrew/internal/domain"
)

// RecipeForm is an editor's working copy of a recipe. Edits touch only the
// form; the stored recipe is replaced as a whole on Commit.
//
// Stages is a pointer, so a plain assignment shares the stage list between
// both values. Copy a form with Clone before editing the copy.
type RecipeForm struct {
	ID          string // empty for a new recipe
	Name        string
	Math        BrewMath
	Temperature float64
	GrindSize   int
	RoasterID   string
	GrinderID   string
	Stages      *Composition

	version   int
	createdAt time.Time
}

// NewRecipeForm starts a blank recipe with the given defaults.
func NewRecipeForm(grams int, ratio float64) RecipeForm {
	return RecipeForm{
		Math:   NewBrewMath(grams, ratio),
		Stages: NewComposition(nil),
	}
}

// FormFromRecipe loads a stored recipe into a form.
func FormFromRecipe(r *domain.Recipe) RecipeForm {
	return RecipeForm{
		ID:          r.ID,
		Name:        r.Name,
		Math:        BrewMathOf(r.Grams, r.Ratio, r.WaterAmount),
		Temperature: r.Temperature,
		GrindSize:   r.GrindSize,
		RoasterID:   r.RoasterID,
		GrinderID:   r.GrinderID,
		Stages:      NewComposition(r.Stages),
		version:     r.Version,
		createdAt:   r.CreatedAt,
	}
}

// Clone returns a form that shares nothing with f.
func (f RecipeForm) Clone() RecipeForm {
	c := f
	if f.Stages != nil {
		c.Stages = f.Stages.Clone()
	}
	return c
}

// Balance compares the stages against the form's water target.
func (f RecipeForm) Balance() Balance {
	return f.stages().Balance(f.Math.Water())
}

// Validate checks everything required before a save. It returns a
// *domain.ValidationError listing every problem, or nil.
func (f RecipeForm) Validate() error {
	v := &domain.ValidationError{}

	if strings.TrimSpace(f.Name) == "" {
		v.Add("name", "is required")
	}
	if f.Math.Grams() <= 0 {
		v.Add("grams", "must be greater than zero")
	}
	if f.Math.Ratio() <= 0 {
		v.Add("ratio", "must be greater than zero")
	}
	if f.Math.Water() <= 0 {
		v.Add("water", "must be greater than zero")
	}
	if f.Temperature < 0 || f.Temperature > 100 {
		v.Add("temperature", "must be between 0 and 100 °C")
	}
	if f.GrindSize < 0 {
		v.Add("grindSize", "must not be negative")
	}

	stages := f.stages()
	if stages.Len() == 0 {
		v.Add("stages", "at least one stage is required")
	}
	for _, s := range stages.Stages() {
		if s.WaterAmount < 0 || s.Seconds < 0 {
			v.Add("stages", fmt.Sprintf("stage %d has a negative amount", s.OrderIndex+1))
		}
	}
	if stages.Len() > 0 {
		if b := f.Balance(); !b.OK() {
			v.Add("stages", b.Message())
		}
	}

	return v.Err()
}

// Commit validates the form and returns the recipe to store. New recipes
// get an id; every commit bumps the version.
func (f RecipeForm) Commit(now time.Time) (*domain.Recipe, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}

	r := &domain.Recipe{
		ID:          f.ID,
		Name:        strings.TrimSpace(f.Name),
		Grams:       f.Math.Grams(),
		Ratio:       f.Math.Ratio(),
		WaterAmount: f.Math.Water(),
		Temperature: f.Temperature,
		GrindSize:   f.GrindSize,
		RoasterID:   f.RoasterID,
		GrinderID:   f.GrinderID,
		Stages:      f.Stages.Stages(),
		CreatedAt:   f.createdAt,
		UpdatedAt:   now,
		Version:     f.version + 1,
	}
	if r.ID == "" {
		r.ID = domain.NewID()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = now
	}
	return r, nil
}

func (f RecipeForm) stages() *Composition {
	if f.Stages == nil {
		return NewComposition(nil)
	}
	return f.Stages
}

// RoasterForm is an editor's working copy of a roaster.
type RoasterForm struct {
	ID      string
	Name    string
	Country string
	Website string

	createdAt time.Time
}

// FormFromRoaster loads a stored roaster into a form.
func FormFromRoaster(r *domain.Roaster) RoasterForm {
	return RoasterForm{ID: r.ID, Name: r.Name, Country: r.Country, Website: r.Website, createdAt: r.CreatedAt}
}

// Validate checks the roaster form.
func (f RoasterForm) Validate() error {
	v := &domain.ValidationError{}
	if strings.TrimSpace(f.Name) == "" {
		v.Add("name", "roaster name is required")
	}
	return v.Err()
}

// Commit validates the form and returns the roaster to store.
func (f RoasterForm) Commit(now time.Time) (*domain.Roaster, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}
	r := &domain.Roaster{
		ID:        f.ID,
		Name:      strings.TrimSpace(f.Name),
		Country:   strings.TrimSpace(f.Country),
		Website:   strings.TrimSpace(f.Website),
		CreatedAt: f.createdAt,
	}
	if r.ID == "" {
		r.ID = domain.NewID()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = now
	}
	return r, nil
}

// GrinderForm is an editor's working copy of a grinder.
type GrinderForm struct {
	ID          string
	Name        string
	GrinderType string
	BurrType    string
	Notes       string

	createdAt time.Time
}

// FormFromGrinder loads a stored grinder into a form.
func FormFromGrinder(g *domain.Grinder) GrinderForm {
	return GrinderForm{
		ID:          g.ID,
		Name:        g.Name,
		GrinderType: g.GrinderType,
		BurrType:    g.BurrType,
		Notes:       g.Notes,
		createdAt:   g.CreatedAt,
	}
}

// Validate checks the grinder form.
func (f GrinderForm) Validate() error {
	v := &domain.ValidationError{}
	if strings.TrimSpace(f.Name) == "" {
		v.Add("name", "grinder name is required")
	}
	return v.Err()
}

// Commit validates the form and returns the grinder to store.
func (f GrinderForm) Commit(now time.Time) (*domain.Grinder, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}
	g := &domain.Grinder{
		ID:          f.ID,
		Name:        strings.TrimSpace(f.Name),
		GrinderType: f.GrinderType,
		BurrType:    f.BurrType,
		Notes:       f.Notes,
		CreatedAt:   f.createdAt,
	}
	if g.ID == "" {
		g.ID = domain.NewID()
	}
	if g.CreatedAt.IsZero() {
		g.CreatedAt = now
	}
	return g, nil
}
