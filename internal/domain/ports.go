package domain

import "context"

// EntityKind names a persisted entity type.
type EntityKind string

const (
	KindRecipe  EntityKind = "recipe"
	KindStage   EntityKind = "stage"
	KindBrew    EntityKind = "brew"
	KindRoaster EntityKind = "roaster"
	KindGrinder EntityKind = "grinder"
	KindChart   EntityKind = "chart"
)

// RecipeStore persists recipes and their stages. Saving replaces the whole
// recipe, stages included.
type RecipeStore interface {
	SaveRecipe(ctx context.Context, recipe *Recipe) error
	GetRecipe(ctx context.Context, id string) (*Recipe, error)
	ListRecipes(ctx context.Context) ([]RecipeSummary, error)
	DeleteRecipe(ctx context.Context, id string) error
	// StagesForRecipe returns the recipe's stages ordered by OrderIndex.
	StagesForRecipe(ctx context.Context, recipeID string) ([]Stage, error)
}

// RoasterStore persists roasters.
type RoasterStore interface {
	SaveRoaster(ctx context.Context, roaster *Roaster) error
	GetRoaster(ctx context.Context, id string) (*Roaster, error)
	ListRoasters(ctx context.Context) ([]*Roaster, error)
	DeleteRoaster(ctx context.Context, id string) error
}

// GrinderStore persists grinders.
type GrinderStore interface {
	SaveGrinder(ctx context.Context, grinder *Grinder) error
	GetGrinder(ctx context.Context, id string) (*Grinder, error)
	ListGrinders(ctx context.Context) ([]*Grinder, error)
	DeleteGrinder(ctx context.Context, id string) error
}

// BrewStore persists brew history. ListBrews resolves each brew's Origin
// and returns brews ordered by date, oldest first.
type BrewStore interface {
	SaveBrew(ctx context.Context, brew *Brew) error
	GetBrew(ctx context.Context, id string) (*Brew, error)
	ListBrews(ctx context.Context, q BrewQuery) ([]*Brew, error)
	// UpdateBrewReview is the only mutation allowed on a stored brew.
	UpdateBrewReview(ctx context.Context, id string, rating int, notes string) error
	DeleteBrew(ctx context.Context, id string) error
}

// ChartStore persists chart configurations.
type ChartStore interface {
	SaveChart(ctx context.Context, chart *ChartConfiguration) error
	GetChart(ctx context.Context, id string) (*ChartConfiguration, error)
	ListCharts(ctx context.Context) ([]*ChartConfiguration, error)
	DeleteChart(ctx context.Context, id string) error
}

// Counter counts persisted entities.
type Counter interface {
	Count(ctx context.Context, kind EntityKind) (int, error)
}

// Store is the full persistence capability. Implementations can be
// in-memory, SQLite, or any other backend.
type Store interface {
	RecipeStore
	RoasterStore
	GrinderStore
	BrewStore
	ChartStore
	Counter
}

// SessionStore persists brew sessions.
type SessionStore interface {
	Save(ctx context.Context, session *Session) error
	Load(ctx context.Context, id string) (*Session, error)
	Delete(ctx context.Context, id string) error
	ListActive(ctx context.Context) ([]*Session, error)
}

// IntentParser converts raw user input into structured intents.
type IntentParser interface {
	Parse(ctx context.Context, input string, session *Session) (*Intent, error)
}

// Notifier delivers messages to the user.
type Notifier interface {
	Notify(ctx context.Context, message string) error
	NotifyUrgent(ctx context.Context, message string) error
}
