package recipe

import (
	_ "embed"
	"fmt"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/hammamikhairi/ottobrew/internal/domain"
)

//go:embed seed.yaml
var seedYAML []byte

type seedFile struct {
	Recipes []seedRecipe `yaml:"recipes"`
}

type seedRecipe struct {
	ID          string      `yaml:"id"`
	Name        string      `yaml:"name"`
	Grams       int         `yaml:"grams"`
	Ratio       float64     `yaml:"ratio"`
	Water       int         `yaml:"water"`
	Temperature float64     `yaml:"temperature"`
	GrindSize   int         `yaml:"grindSize"`
	Stages      []seedStage `yaml:"stages"`
}

type seedStage struct {
	Type    string `yaml:"type"`
	Seconds int    `yaml:"seconds"`
	Water   int    `yaml:"water"`
}

// BuiltIn returns the built-in recipes. Every one of them passes the same
// validation a user-edited recipe must pass.
func BuiltIn(now time.Time) ([]*domain.Recipe, error) {
	return ParseSeed(seedYAML, now)
}

// ParseSeed decodes a YAML recipe list and validates each recipe.
func ParseSeed(data []byte, now time.Time) ([]*domain.Recipe, error) {
	var f seedFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing recipe seed: %w", err)
	}

	out := make([]*domain.Recipe, 0, len(f.Recipes))
	for _, sr := range f.Recipes {
		form := RecipeForm{
			ID:          sr.ID,
			Name:        sr.Name,
			Math:        BrewMathOf(sr.Grams, sr.Ratio, sr.Water),
			Temperature: sr.Temperature,
			GrindSize:   sr.GrindSize,
			Stages:      NewComposition(nil),
		}
		for _, ss := range sr.Stages {
			typ, ok := domain.StageTypeFromString(ss.Type)
			if !ok {
				return nil, fmt.Errorf("recipe %q: unknown stage type %q", sr.Name, ss.Type)
			}
			form.Stages.Append(typ, ss.Water, ss.Seconds)
		}

		r, err := form.Commit(now)
		if err != nil {
			return nil, fmt.Errorf("recipe %q: %w", sr.Name, err)
		}
		out = append(out, r)
	}
	return out, nil
}
