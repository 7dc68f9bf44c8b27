// Package transfer reads and writes the versioned JSON export document
// and imports it into a store, idempotently by UUID.
package transfer

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/hammamikhairi/ottobrew/internal/analytics"
	"github.com/hammamikhairi/ottobrew/internal/domain"
)

// Version is the only document version this package reads or writes.
const Version = "1.0"

// FormatError rejects a whole document. Nothing is imported when Decode
// or Import returns one.
type FormatError struct {
	Reason string
	Err    error
}

func (e *FormatError) Error() string {
	if e.Err != nil {
		return "import format: " + e.Reason + ": " + e.Err.Error()
	}
	return "import format: " + e.Reason
}

func (e *FormatError) Unwrap() error { return e.Err }

func formatErrorf(format string, a ...interface{}) *FormatError {
	return &FormatError{Reason: fmt.Sprintf(format, a...)}
}

// Document is the export file.
type Document struct {
	Version    string    `json:"version"`
	ExportDate time.Time `json:"exportDate"`
	Data       Data      `json:"data"`
}

// Data holds every exported entity.
type Data struct {
	Recipes  []Recipe  `json:"recipes"`
	Brews    []Brew    `json:"brews"`
	Roasters []Roaster `json:"roasters"`
	Grinders []Grinder `json:"grinders"`
	Charts   []Chart   `json:"charts"`
}

// Stage is an exported recipe stage.
type Stage struct {
	ID          string `json:"id"`
	Type        string `json:"type"`
	OrderIndex  int    `json:"orderIndex"`
	Seconds     int    `json:"seconds"`
	WaterAmount int    `json:"waterAmount"`
}

// Recipe is an exported recipe with its ordered stages.
type Recipe struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	CoffeeAmount int       `json:"coffeeAmount"`
	Ratio        float64   `json:"ratio"`
	WaterAmount  int       `json:"waterAmount"`
	Temperature  float64   `json:"temperature"`
	GrindSize    int       `json:"grindSize"`
	RoasterID    string    `json:"roasterId,omitempty"`
	GrinderID    string    `json:"grinderId,omitempty"`
	Version      int       `json:"version"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
	Stages       []Stage   `json:"stages"`
}

// Brew is an exported brew snapshot.
type Brew struct {
	ID                    string    `json:"id"`
	RecipeID              string    `json:"recipeId,omitempty"`
	RecipeName            string    `json:"recipeName"`
	CoffeeAmount          int       `json:"coffeeAmount"`
	WaterAmount           int       `json:"waterAmount"`
	Ratio                 float64   `json:"ratio"`
	Temperature           float64   `json:"temperature"`
	GrindSize             int       `json:"grindSize"`
	RoasterName           string    `json:"roasterName,omitempty"`
	GrinderName           string    `json:"grinderName,omitempty"`
	Rating                int       `json:"rating"`
	Acidity               *int      `json:"acidity,omitempty"`
	Bitterness            *int      `json:"bitterness,omitempty"`
	Body                  *int      `json:"body,omitempty"`
	Sweetness             *int      `json:"sweetness,omitempty"`
	TDS                   *float64  `json:"tds,omitempty"`
	Date                  time.Time `json:"date"`
	ActualDurationSeconds int       `json:"actualDurationSeconds"`
	Notes                 string    `json:"notes,omitempty"`
}

// Roaster is an exported roaster.
type Roaster struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Country   string    `json:"country,omitempty"`
	Website   string    `json:"website,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// Grinder is an exported grinder.
type Grinder struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	GrinderType string    `json:"grinderType,omitempty"`
	BurrType    string    `json:"burrType,omitempty"`
	Notes       string    `json:"notes,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Axis is an exported axis identity.
type Axis struct {
	Kind  string `json:"kind"`
	Field string `json:"field"`
}

// Chart is an exported chart configuration. ChartType is written for
// readers and ignored on import; it is always derived from the axes.
type Chart struct {
	ID              string    `json:"id"`
	Title           string    `json:"title,omitempty"`
	XAxis           Axis      `json:"xAxis"`
	YAxis           Axis      `json:"yAxis"`
	ChartType       string    `json:"chartType"`
	ShowAverageLine bool      `json:"showAverageLine"`
	ShowTrendLine   bool      `json:"showTrendLine"`
	CreatedAt       time.Time `json:"createdAt"`
}

var (
	topLevelKeys = []string{"version", "exportDate", "data"}
	dataKeys     = []string{"recipes", "brews", "roasters", "grinders", "charts"}
)

// Decode reads and validates a document. Any problem yields a
// *FormatError and no document.
func Decode(r io.Reader) (*Document, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading document: %w", err)
	}

	var top map[string]json.RawMessage
	if err := json.Unmarshal(raw, &top); err != nil {
		return nil, &FormatError{Reason: "invalid JSON", Err: err}
	}
	if err := requireKeys(top, topLevelKeys, ""); err != nil {
		return nil, err
	}
	var data map[string]json.RawMessage
	if err := json.Unmarshal(top["data"], &data); err != nil {
		return nil, &FormatError{Reason: "data is not an object", Err: err}
	}
	if err := requireKeys(data, dataKeys, "data."); err != nil {
		return nil, err
	}

	var version string
	if err := json.Unmarshal(top["version"], &version); err != nil || version != Version {
		return nil, formatErrorf("unsupported version %s", bytes.TrimSpace(top["version"]))
	}

	var doc Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, &FormatError{Reason: "malformed entity", Err: err}
	}
	if err := doc.validate(); err != nil {
		return nil, err
	}
	return &doc, nil
}

// checkOrder requires the stage order indexes of r to be exactly 0..N-1.
func checkOrder(r Recipe) error {
	seen := make([]bool, len(r.Stages))
	for _, st := range r.Stages {
		if st.OrderIndex < 0 || st.OrderIndex >= len(seen) {
			return formatErrorf("recipe %s: stage %s has orderIndex %d, want 0 to %d", r.ID, st.ID, st.OrderIndex, len(seen)-1)
		}
		if seen[st.OrderIndex] {
			return formatErrorf("recipe %s: orderIndex %d used twice", r.ID, st.OrderIndex)
		}
		seen[st.OrderIndex] = true
	}
	return nil
}

func requireKeys(m map[string]json.RawMessage, keys []string, prefix string) error {
	for _, k := range keys {
		v, ok := m[k]
		if !ok || string(bytes.TrimSpace(v)) == "null" {
			return formatErrorf("missing key %s%s", prefix, k)
		}
	}
	return nil
}

// Encode writes the document as indented JSON.
func Encode(w io.Writer, doc *Document) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encoding document: %w", err)
	}
	return nil
}

// validate checks every identity and enumerated value so that import
// never fails half way.
func (d *Document) validate() error {
	id := func(kind, v string) error {
		if !domain.ValidID(v) {
			return formatErrorf("%s has invalid id %q", kind, v)
		}
		return nil
	}
	optionalID := func(kind, field, v string) error {
		if v != "" && !domain.ValidID(v) {
			return formatErrorf("%s has invalid %s %q", kind, field, v)
		}
		return nil
	}

	for _, r := range d.Data.Roasters {
		if err := id("roaster", r.ID); err != nil {
			return err
		}
	}
	for _, g := range d.Data.Grinders {
		if err := id("grinder", g.ID); err != nil {
			return err
		}
	}
	stageIDs := make(map[string]string)
	for _, r := range d.Data.Recipes {
		if err := id("recipe", r.ID); err != nil {
			return err
		}
		if err := optionalID("recipe", "roasterId", r.RoasterID); err != nil {
			return err
		}
		if err := optionalID("recipe", "grinderId", r.GrinderID); err != nil {
			return err
		}
		for _, st := range r.Stages {
			if err := id("stage", st.ID); err != nil {
				return err
			}
			if _, ok := domain.StageTypeFromString(st.Type); !ok {
				return formatErrorf("stage %s has unknown type %q", st.ID, st.Type)
			}
			if owner, dup := stageIDs[st.ID]; dup {
				return formatErrorf("stage %s appears in recipes %s and %s", st.ID, owner, r.ID)
			}
			stageIDs[st.ID] = r.ID
		}
		if err := checkOrder(r); err != nil {
			return err
		}
	}
	for _, b := range d.Data.Brews {
		if err := id("brew", b.ID); err != nil {
			return err
		}
		if err := optionalID("brew", "recipeId", b.RecipeID); err != nil {
			return err
		}
	}
	for _, c := range d.Data.Charts {
		if err := id("chart", c.ID); err != nil {
			return err
		}
		if _, err := c.XAxis.ref(); err != nil {
			return &FormatError{Reason: fmt.Sprintf("chart %s x axis", c.ID), Err: err}
		}
		if _, err := c.YAxis.ref(); err != nil {
			return &FormatError{Reason: fmt.Sprintf("chart %s y axis", c.ID), Err: err}
		}
	}
	return nil
}

func (a Axis) ref() (domain.AxisRef, error) {
	kind, err := domain.ParseAxisKind(a.Kind)
	if err != nil {
		return domain.AxisRef{}, err
	}
	ref := domain.AxisRef{Kind: kind, Field: a.Field}
	if _, err := analytics.AxisFor(ref); err != nil {
		return domain.AxisRef{}, err
	}
	return ref, nil
}

func axisOf(ref domain.AxisRef) Axis {
	return Axis{Kind: ref.Kind.String(), Field: ref.Field}
}

// ── domain mapping ───────────────────────────────────────────────

func fromRecipe(r *domain.Recipe) Recipe {
	out := Recipe{
		ID: r.ID, Name: r.Name, CoffeeAmount: r.Grams, Ratio: r.Ratio,
		WaterAmount: r.WaterAmount, Temperature: r.Temperature, GrindSize: r.GrindSize,
		RoasterID: r.RoasterID, GrinderID: r.GrinderID, Version: r.Version,
		CreatedAt: r.CreatedAt.UTC(), UpdatedAt: r.UpdatedAt.UTC(),
		Stages: make([]Stage, 0, len(r.Stages)),
	}
	for _, st := range r.Stages {
		out.Stages = append(out.Stages, Stage{
			ID: st.ID, Type: st.Type.String(), OrderIndex: st.OrderIndex,
			Seconds: st.Seconds, WaterAmount: st.WaterAmount,
		})
	}
	return out
}

func (r Recipe) toDomain() *domain.Recipe {
	out := &domain.Recipe{
		ID: r.ID, Name: r.Name, Grams: r.CoffeeAmount, Ratio: r.Ratio,
		WaterAmount: r.WaterAmount, Temperature: r.Temperature, GrindSize: r.GrindSize,
		RoasterID: r.RoasterID, GrinderID: r.GrinderID, Version: r.Version,
		CreatedAt: r.CreatedAt, UpdatedAt: r.UpdatedAt,
	}
	if len(r.Stages) > 0 {
		out.Stages = make([]domain.Stage, len(r.Stages))
	}
	// Indexes are a permutation of 0..N-1 once validated.
	for _, st := range r.Stages {
		typ, _ := domain.StageTypeFromString(st.Type)
		out.Stages[st.OrderIndex] = domain.Stage{
			ID: st.ID, Type: typ, OrderIndex: st.OrderIndex,
			Seconds: st.Seconds, WaterAmount: st.WaterAmount,
		}
	}
	return out
}

func fromBrew(b *domain.Brew) Brew {
	return Brew{
		ID: b.ID, RecipeID: b.RecipeID(), RecipeName: b.RecipeName,
		CoffeeAmount: b.Grams, WaterAmount: b.Water, Ratio: b.Ratio,
		Temperature: b.Temperature, GrindSize: b.GrindSize,
		RoasterName: b.RoasterName, GrinderName: b.GrinderName,
		Rating: b.Rating, Acidity: b.Acidity, Bitterness: b.Bitterness,
		Body: b.Body, Sweetness: b.Sweetness, TDS: b.TDS,
		Date: b.Date.UTC(), ActualDurationSeconds: b.ActualDurationSeconds, Notes: b.Notes,
	}
}

func (b Brew) toDomain() *domain.Brew {
	out := &domain.Brew{
		ID: b.ID, RecipeName: b.RecipeName,
		Grams: b.CoffeeAmount, Water: b.WaterAmount, Ratio: b.Ratio,
		Temperature: b.Temperature, GrindSize: b.GrindSize,
		RoasterName: b.RoasterName, GrinderName: b.GrinderName,
		Rating: b.Rating, Acidity: b.Acidity, Bitterness: b.Bitterness,
		Body: b.Body, Sweetness: b.Sweetness, TDS: b.TDS,
		Date: b.Date, ActualDurationSeconds: b.ActualDurationSeconds, Notes: b.Notes,
	}
	if b.RecipeID != "" {
		out.Origin = &domain.BrewOrigin{RecipeID: b.RecipeID}
	}
	return out
}

func fromRoaster(r *domain.Roaster) Roaster {
	return Roaster{ID: r.ID, Name: r.Name, Country: r.Country, Website: r.Website, CreatedAt: r.CreatedAt.UTC()}
}

func (r Roaster) toDomain() *domain.Roaster {
	return &domain.Roaster{ID: r.ID, Name: r.Name, Country: r.Country, Website: r.Website, CreatedAt: r.CreatedAt}
}

func fromGrinder(g *domain.Grinder) Grinder {
	return Grinder{
		ID: g.ID, Name: g.Name, GrinderType: g.GrinderType, BurrType: g.BurrType,
		Notes: g.Notes, CreatedAt: g.CreatedAt.UTC(),
	}
}

func (g Grinder) toDomain() *domain.Grinder {
	return &domain.Grinder{
		ID: g.ID, Name: g.Name, GrinderType: g.GrinderType, BurrType: g.BurrType,
		Notes: g.Notes, CreatedAt: g.CreatedAt,
	}
}

func fromChart(c *domain.ChartConfiguration) Chart {
	return Chart{
		ID: c.ID, Title: c.Title, XAxis: axisOf(c.XAxis), YAxis: axisOf(c.YAxis),
		ChartType: c.ChartType().String(), ShowAverageLine: c.ShowAverageLine,
		ShowTrendLine: c.ShowTrendLine, CreatedAt: c.CreatedAt.UTC(),
	}
}

// toDomain assumes the chart passed validate.
func (c Chart) toDomain() *domain.ChartConfiguration {
	x, _ := c.XAxis.ref()
	y, _ := c.YAxis.ref()
	return &domain.ChartConfiguration{
		ID: c.ID, Title: c.Title, XAxis: x, YAxis: y,
		ShowAverageLine: c.ShowAverageLine, ShowTrendLine: c.ShowTrendLine,
		CreatedAt: c.CreatedAt,
	}
}
