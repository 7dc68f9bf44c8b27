package domain

import "time"

// Brew is an immutable record of one completed brew. Recipe fields are
// copied at creation time so later recipe edits never rewrite history.
type Brew struct {
	ID          string
	RecipeName  string
	Grams       int
	Water       int
	Ratio       float64
	Temperature float64
	GrindSize   int
	RoasterName string
	GrinderName string

	Rating     int  // 0-5
	Acidity    *int // 0-10, nil when not recorded
	Bitterness *int
	Body       *int
	Sweetness  *int
	TDS        *float64

	Date                  time.Time
	ActualDurationSeconds int
	Notes                 string

	// Origin links the brew to the recipe it was made from. Stores resolve
	// it when materializing brews; it is nil when the recipe is gone.
	Origin *BrewOrigin
}

// BrewOrigin is the live relationship brew -> recipe -> roaster.
type BrewOrigin struct {
	RecipeID string
	Roaster  *Roaster // nil when the recipe has no roaster
}

// Country returns the origin roaster's country, walking each link.
func (b *Brew) Country() (string, bool) {
	if b.Origin == nil || b.Origin.Roaster == nil || b.Origin.Roaster.Country == "" {
		return "", false
	}
	return b.Origin.Roaster.Country, true
}

// RecipeID returns the id of the recipe the brew was made from, if known.
func (b *Brew) RecipeID() string {
	if b.Origin == nil {
		return ""
	}
	return b.Origin.RecipeID
}

// Tasting groups the optional tasting attributes of a brew.
type Tasting struct {
	Acidity    *int
	Bitterness *int
	Body       *int
	Sweetness  *int
	TDS        *float64
}

// BrewResult is what the user reports after a brew finishes.
type BrewResult struct {
	Rating  int
	Tasting Tasting
	Notes   string
}

// Validate checks the 0-5 rating, the 0-10 tasting attributes and a
// non-negative TDS.
func (r BrewResult) Validate() error {
	v := &ValidationError{}
	if r.Rating < 0 || r.Rating > 5 {
		v.Add("rating", "must be between 0 and 5")
	}
	check := func(field string, p *int) {
		if p != nil && (*p < 0 || *p > 10) {
			v.Add(field, "must be between 0 and 10")
		}
	}
	check("acidity", r.Tasting.Acidity)
	check("bitterness", r.Tasting.Bitterness)
	check("body", r.Tasting.Body)
	check("sweetness", r.Tasting.Sweetness)
	if r.Tasting.TDS != nil && *r.Tasting.TDS < 0 {
		v.Add("tds", "must not be negative")
	}
	return v.Err()
}

// BrewQuery filters brews. Zero fields match everything.
type BrewQuery struct {
	Since     time.Time
	Until     time.Time
	RecipeID  string
	MinRating int
}

// Match reports whether the brew satisfies the query.
func (q BrewQuery) Match(b *Brew) bool {
	if !q.Since.IsZero() && b.Date.Before(q.Since) {
		return false
	}
	if !q.Until.IsZero() && !b.Date.Before(q.Until) {
		return false
	}
	if q.RecipeID != "" && b.RecipeID() != q.RecipeID {
		return false
	}
	if q.MinRating > 0 && b.Rating < q.MinRating {
		return false
	}
	return true
}

// IntPtr returns a pointer to v. Handy for optional tasting fields.
func IntPtr(v int) *int { return &v }

// FloatPtr returns a pointer to v.
func FloatPtr(v float64) *float64 { return &v }
