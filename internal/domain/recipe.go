// Package domain defines the core types and interfaces for the brewing companion.
// All other packages depend on domain; domain depends only on uuid.
package domain

import "time"

// StageType classifies a single step of a pour-over brew.
type StageType int

const (
	// StageFast is a quick, high-flow pour.
	StageFast StageType = iota
	// StageSlow is a gentle, controlled pour.
	StageSlow
	// StageWait is a pause with no water added (bloom rest, drawdown).
	StageWait
)

// String returns a human-readable stage type.
func (t StageType) String() string {
	switch t {
	case StageFast:
		return "fast"
	case StageSlow:
		return "slow"
	case StageWait:
		return "wait"
	default:
		return "unknown"
	}
}

// stageTypeNames maps names to StageType values.
var stageTypeNames = map[string]StageType{
	"fast": StageFast,
	"slow": StageSlow,
	"wait": StageWait,
}

// StageTypeFromString converts a stage type name to a StageType.
// The second return value is false for unrecognized names.
func StageTypeFromString(name string) (StageType, bool) {
	t, ok := stageTypeNames[name]
	return t, ok
}

// Stage is one pour or wait step of a recipe.
type Stage struct {
	ID          string
	Type        StageType
	OrderIndex  int // position within the recipe, contiguous from 0
	Seconds     int
	WaterAmount int // ml; zero for most wait stages
}

// Recipe is a complete pour-over recipe. Stages are owned by the recipe.
type Recipe struct {
	ID          string
	Name        string
	Grams       int
	Ratio       float64
	WaterAmount int // target total water in ml
	Temperature float64
	GrindSize   int
	RoasterID   string
	GrinderID   string
	Stages      []Stage
	CreatedAt   time.Time
	UpdatedAt   time.Time
	Version     int
}

// RecipeSummary is a lightweight view of a recipe for listing.
type RecipeSummary struct {
	ID          string
	Name        string
	Grams       int
	Ratio       float64
	WaterAmount int
	StageCount  int
}

// Summary returns the listing view of the recipe.
func (r *Recipe) Summary() RecipeSummary {
	return RecipeSummary{
		ID:          r.ID,
		Name:        r.Name,
		Grams:       r.Grams,
		Ratio:       r.Ratio,
		WaterAmount: r.WaterAmount,
		StageCount:  len(r.Stages),
	}
}

// Clone returns a deep copy of the recipe so callers never share the stage slice.
func (r *Recipe) Clone() *Recipe {
	if r == nil {
		return nil
	}
	c := *r
	c.Stages = append([]Stage(nil), r.Stages...)
	return &c
}

// Roaster is a coffee roaster the user buys beans from.
type Roaster struct {
	ID        string
	Name      string
	Country   string
	Website   string
	CreatedAt time.Time
}

// Grinder is a coffee grinder owned by the user.
type Grinder struct {
	ID          string
	Name        string
	GrinderType string // one of GrinderTypes, or free text
	BurrType    string // one of BurrTypes, or free text
	Notes       string
	CreatedAt   time.Time
}

// Dropdown options offered by editors.
var (
	// GrinderTypes lists the suggested grinder types.
	GrinderTypes = []string{
		"Hand",
		"Electric",
		"Portable Electric",
	}

	// BurrTypes lists the suggested burr types.
	BurrTypes = []string{
		"Conical",
		"Flat",
	}
)
