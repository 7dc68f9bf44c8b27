package recipe

import (
	"testing"
	"time"
)

func TestBuiltInRecipes(t *testing.T) {
	recipes, err := BuiltIn(time.Now())
	if err != nil {
		t.Fatalf("built-in: %v", err)
	}
	if len(recipes) < 3 {
		t.Fatalf("expected at least 3 built-in recipes, got %d", len(recipes))
	}

	seen := map[string]bool{}
	for _, r := range recipes {
		if seen[r.ID] {
			t.Fatalf("duplicate recipe id %s", r.ID)
		}
		seen[r.ID] = true

		c := NewComposition(r.Stages)
		if !c.IsBalanced(r.WaterAmount) {
			t.Fatalf("%s: stages pour %d ml, target %d", r.Name, c.TotalWater(), r.WaterAmount)
		}
	}
}

func TestParseSeedErrors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"bad yaml", "recipes: [oops"},
		{"bad stage type", `
recipes:
  - name: Broken
    grams: 10
    ratio: 10
    water: 100
    stages:
      - {type: swirl, seconds: 5, water: 100}
`},
		{"unbalanced", `
recipes:
  - name: Short
    grams: 10
    ratio: 10
    water: 100
    stages:
      - {type: fast, seconds: 5, water: 90}
`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseSeed([]byte(tt.yaml), time.Now()); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}
