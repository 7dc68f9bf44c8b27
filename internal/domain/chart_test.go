package domain

import (
	"errors"
	"testing"
	"time"
)

func TestResolveChartType(t *testing.T) {
	tests := []struct {
		x, y AxisKind
		want ChartType
	}{
		{AxisNumeric, AxisNumeric, ChartScatter},
		{AxisCategorical, AxisNumeric, ChartBar},
		{AxisNumeric, AxisCategorical, ChartBar},
		{AxisTemporal, AxisNumeric, ChartTimeSeries},
		{AxisNumeric, AxisTemporal, ChartTimeSeries},
		{AxisCategorical, AxisCategorical, ChartBar},
		{AxisTemporal, AxisCategorical, ChartBar},
		{AxisCategorical, AxisTemporal, ChartBar},
		{AxisTemporal, AxisTemporal, ChartTimeSeries},
	}

	for _, tt := range tests {
		t.Run(tt.x.String()+"_"+tt.y.String(), func(t *testing.T) {
			if got := ResolveChartType(tt.x, tt.y); got != tt.want {
				t.Fatalf("ResolveChartType(%s, %s) = %s, want %s", tt.x, tt.y, got, tt.want)
			}
		})
	}
}

func TestChartTypeFollowsAxes(t *testing.T) {
	c := &ChartConfiguration{
		XAxis: AxisRef{Kind: AxisNumeric, Field: "ratio"},
		YAxis: AxisRef{Kind: AxisNumeric, Field: "rating"},
	}
	if c.ChartType() != ChartScatter {
		t.Fatalf("expected scatter, got %s", c.ChartType())
	}

	c.XAxis = AxisRef{Kind: AxisTemporal, Field: "brewWeek"}
	if c.ChartType() != ChartTimeSeries {
		t.Fatalf("expected time series after axis change, got %s", c.ChartType())
	}
}

func TestBrewQueryMatch(t *testing.T) {
	day := time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)
	brew := &Brew{Rating: 4, Date: day, Origin: &BrewOrigin{RecipeID: "r1"}}

	tests := []struct {
		name string
		q    BrewQuery
		want bool
	}{
		{"empty matches", BrewQuery{}, true},
		{"since before", BrewQuery{Since: day.Add(-time.Hour)}, true},
		{"since after", BrewQuery{Since: day.Add(time.Hour)}, false},
		{"until is exclusive", BrewQuery{Until: day}, false},
		{"recipe match", BrewQuery{RecipeID: "r1"}, true},
		{"recipe mismatch", BrewQuery{RecipeID: "r2"}, false},
		{"min rating met", BrewQuery{MinRating: 4}, true},
		{"min rating missed", BrewQuery{MinRating: 5}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.q.Match(brew); got != tt.want {
				t.Fatalf("Match = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestBrewCountryWalksLinks(t *testing.T) {
	b := &Brew{}
	if _, ok := b.Country(); ok {
		t.Fatal("expected no country without origin")
	}
	b.Origin = &BrewOrigin{RecipeID: "r1"}
	if _, ok := b.Country(); ok {
		t.Fatal("expected no country without roaster")
	}
	b.Origin.Roaster = &Roaster{Name: "Tim Wendelboe"}
	if _, ok := b.Country(); ok {
		t.Fatal("expected no country when roaster has none")
	}
	b.Origin.Roaster.Country = "Norway"
	if c, ok := b.Country(); !ok || c != "Norway" {
		t.Fatalf("expected Norway, got %q (%v)", c, ok)
	}
}

func TestValidationErrorIs(t *testing.T) {
	v := &ValidationError{}
	if v.Err() != nil {
		t.Fatal("expected nil error with no problems")
	}
	v.Add("name", "is required")
	err := v.Err()
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, ErrValidation) {
		t.Fatal("expected errors.Is to match ErrValidation")
	}
	if !v.Has("name") {
		t.Fatal("expected problem for name")
	}
	if err.Error() != "validation failed: name: is required" {
		t.Fatalf("unexpected message %q", err.Error())
	}
}

func TestBrewResultValidate(t *testing.T) {
	ok := BrewResult{Rating: 5, Tasting: Tasting{Acidity: IntPtr(10), TDS: FloatPtr(1.4)}}
	if err := ok.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	bad := BrewResult{Rating: 6, Tasting: Tasting{Body: IntPtr(11), TDS: FloatPtr(-1)}}
	err := bad.Validate()
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected *ValidationError, got %v", err)
	}
	for _, field := range []string{"rating", "body", "tds"} {
		if !ve.Has(field) {
			t.Fatalf("expected a problem for %s, got %v", field, ve)
		}
	}
}
