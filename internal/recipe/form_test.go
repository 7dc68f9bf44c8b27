package recipe

import (
	"errors"
	"testing"
	"time"

	"github.com/hammamikhairi/ottobrew/internal/domain"
)

func validForm() RecipeForm {
	f := NewRecipeForm(18, 16)
	f.Name = "Test V60"
	f.Temperature = 94
	f.Stages = v60()
	return f
}

func TestRecipeFormValidate(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(f *RecipeForm)
		wantField string
	}{
		{"valid", func(f *RecipeForm) {}, ""},
		{"missing name", func(f *RecipeForm) { f.Name = "  " }, "name"},
		{"zero grams", func(f *RecipeForm) { f.Math = BrewMathOf(0, 16, 288) }, "grams"},
		{"zero ratio", func(f *RecipeForm) { f.Math = BrewMathOf(18, 0, 288) }, "ratio"},
		{"no stages", func(f *RecipeForm) { f.Stages = NewComposition(nil) }, "stages"},
		{"nil stages", func(f *RecipeForm) { f.Stages = nil }, "stages"},
		{"unbalanced", func(f *RecipeForm) { f.Math.SetWater(289) }, "stages"},
		{"hot water", func(f *RecipeForm) { f.Temperature = 120 }, "temperature"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := validForm()
			tt.mutate(&f)

			err := f.Validate()
			if tt.wantField == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, domain.ErrValidation) {
				t.Fatalf("expected validation error, got %v", err)
			}
			var verr *domain.ValidationError
			if !errors.As(err, &verr) || !verr.Has(tt.wantField) {
				t.Fatalf("expected problem on %q, got %v", tt.wantField, err)
			}
		})
	}
}

func TestRecipeFormCommit(t *testing.T) {
	now := time.Date(2026, 5, 1, 7, 0, 0, 0, time.UTC)
	f := validForm()

	r, err := f.Commit(now)
	if err != nil {
		t.Fatalf("commit: %v", err)
	}
	if r.ID == "" || r.Version != 1 || !r.CreatedAt.Equal(now) {
		t.Fatalf("unexpected committed recipe: %+v", r)
	}
	if r.WaterAmount != 288 || len(r.Stages) != 4 {
		t.Fatalf("expected 288 ml over 4 stages, got %d over %d", r.WaterAmount, len(r.Stages))
	}

	// Editing the committed recipe through a new form bumps the version and
	// leaves the stored value untouched until commit.
	edit := FormFromRecipe(r)
	edit.Name = "Renamed"
	if r.Name != "Test V60" {
		t.Fatal("form edit leaked into recipe")
	}
	later := now.Add(time.Hour)
	r2, err := edit.Commit(later)
	if err != nil {
		t.Fatalf("second commit: %v", err)
	}
	if r2.ID != r.ID || r2.Version != 2 || !r2.CreatedAt.Equal(now) || !r2.UpdatedAt.Equal(later) {
		t.Fatalf("unexpected second commit: %+v", r2)
	}
}

func TestRecipeFormCommitRejectsUnbalanced(t *testing.T) {
	f := validForm()
	f.Math.SetWater(250)
	if _, err := f.Commit(time.Now()); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestRecipeFormClone(t *testing.T) {
	f := validForm()
	c := f.Clone()
	c.Stages.Append(domain.StageSlow, 10, 5)
	if f.Stages.Len() != 4 {
		t.Fatal("clone shares stages with original")
	}
}

func TestRecipeFormAssignmentSharesStages(t *testing.T) {
	f := validForm()
	shared := f
	shared.Stages.Append(domain.StageSlow, 10, 5)
	if f.Stages.Len() != 5 {
		t.Fatalf("plain copy: got %d stages on the original, want 5", f.Stages.Len())
	}

	f = validForm()
	edit := f.Clone()
	edit.Stages.Append(domain.StageSlow, 10, 5)
	edit.Name = "Edited"
	if f.Stages.Len() != 4 || f.Name == "Edited" {
		t.Fatal("edits to a clone reached the original")
	}
}

func TestRoasterAndGrinderForms(t *testing.T) {
	now := time.Now()

	if _, err := (RoasterForm{}).Commit(now); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected roaster name required, got %v", err)
	}
	r, err := RoasterForm{Name: " Onyx ", Country: "USA"}.Commit(now)
	if err != nil {
		t.Fatalf("roaster commit: %v", err)
	}
	if r.Name != "Onyx" || r.ID == "" {
		t.Fatalf("unexpected roaster: %+v", r)
	}

	if _, err := (GrinderForm{}).Commit(now); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected grinder name required, got %v", err)
	}
	g, err := GrinderForm{Name: "Comandante C40", GrinderType: "Hand", BurrType: "Conical"}.Commit(now)
	if err != nil {
		t.Fatalf("grinder commit: %v", err)
	}
	if FormFromGrinder(g).Name != "Comandante C40" {
		t.Fatal("grinder form round trip lost the name")
	}
}
