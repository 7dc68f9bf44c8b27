// Package analytics turns brew history into chart data: axes that extract
// values from brews, grouping and bucketing, and summary statistics.
//
// Every function here is pure. Callers pass already-materialized brews.
package analytics

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/hammamikhairi/ottobrew/internal/domain"
)

// Axis is a closed set of extraction rules: NumericAxis, CategoricalAxis
// and TemporalAxis. Dispatch with a type switch.
type Axis interface {
	Ref() domain.AxisRef
	Title() string
	isAxis()
}

// NumericField names a numeric axis.
type NumericField string

const (
	Rating       NumericField = "rating"
	GrindSize    NumericField = "grindSize"
	Temperature  NumericField = "temperature"
	CoffeeAmount NumericField = "coffeeAmount"
	WaterAmount  NumericField = "waterAmount"
	Ratio        NumericField = "ratio"
	BrewDuration NumericField = "brewDuration"
	Acidity      NumericField = "acidity"
	Bitterness   NumericField = "bitterness"
	Body         NumericField = "body"
	Sweetness    NumericField = "sweetness"
	TDS          NumericField = "tds"
)

// CategoricalField names a categorical axis.
type CategoricalField string

const (
	RoasterName    CategoricalField = "roasterName"
	GrinderName    CategoricalField = "grinderName"
	RecipeName     CategoricalField = "recipeName"
	Country        CategoricalField = "country"
	BrewMethod     CategoricalField = "brewMethod"
	RatingCategory CategoricalField = "ratingCategory"
)

// TemporalField names a temporal axis.
type TemporalField string

const (
	BrewDate  TemporalField = "brewDate"
	BrewWeek  TemporalField = "brewWeek"
	BrewMonth TemporalField = "brewMonth"
	DayOfWeek TemporalField = "dayOfWeek"
	TimeOfDay TemporalField = "timeOfDay"
)

var (
	numericFields = []NumericField{
		Rating, GrindSize, Temperature, CoffeeAmount, WaterAmount, Ratio,
		BrewDuration, Acidity, Bitterness, Body, Sweetness, TDS,
	}
	categoricalFields = []CategoricalField{
		RoasterName, GrinderName, RecipeName, Country, BrewMethod, RatingCategory,
	}
	temporalFields = []TemporalField{
		BrewDate, BrewWeek, BrewMonth, DayOfWeek, TimeOfDay,
	}
)

var titles = map[string]string{
	string(Rating):         "Rating",
	string(GrindSize):      "Grind Size",
	string(Temperature):    "Temperature (°C)",
	string(CoffeeAmount):   "Coffee (g)",
	string(WaterAmount):    "Water (ml)",
	string(Ratio):          "Ratio (1:N)",
	string(BrewDuration):   "Brew Time (s)",
	string(Acidity):        "Acidity",
	string(Bitterness):     "Bitterness",
	string(Body):           "Body",
	string(Sweetness):      "Sweetness",
	string(TDS):            "TDS (%)",
	string(RoasterName):    "Roaster",
	string(GrinderName):    "Grinder",
	string(RecipeName):     "Recipe",
	string(Country):        "Country",
	string(BrewMethod):     "Brew Method",
	string(RatingCategory): "Rating Category",
	string(BrewDate):       "Date",
	string(BrewWeek):       "Week",
	string(BrewMonth):      "Month",
	string(DayOfWeek):      "Day of Week",
	string(TimeOfDay):      "Time of Day",
}

// NumericAxis extracts a number from a brew.
type NumericAxis struct {
	Field NumericField
}

func (NumericAxis) isAxis() {}

// Ref returns the axis identity.
func (a NumericAxis) Ref() domain.AxisRef {
	return domain.AxisRef{Kind: domain.AxisNumeric, Field: string(a.Field)}
}

// Title returns the display title.
func (a NumericAxis) Title() string { return titles[string(a.Field)] }

// Value returns the axis value, or false when the brew did not record it.
func (a NumericAxis) Value(b *domain.Brew) (float64, bool) {
	switch a.Field {
	case Rating:
		return float64(b.Rating), true
	case GrindSize:
		return float64(b.GrindSize), true
	case Temperature:
		return b.Temperature, b.Temperature > 0
	case CoffeeAmount:
		return float64(b.Grams), b.Grams > 0
	case WaterAmount:
		return float64(b.Water), b.Water > 0
	case Ratio:
		return b.Ratio, b.Ratio > 0
	case BrewDuration:
		return float64(b.ActualDurationSeconds), b.ActualDurationSeconds > 0
	case Acidity:
		return optInt(b.Acidity)
	case Bitterness:
		return optInt(b.Bitterness)
	case Body:
		return optInt(b.Body)
	case Sweetness:
		return optInt(b.Sweetness)
	case TDS:
		if b.TDS == nil {
			return 0, false
		}
		return *b.TDS, true
	default:
		return 0, false
	}
}

func optInt(v *int) (float64, bool) {
	if v == nil {
		return 0, false
	}
	return float64(*v), true
}

// CategoricalAxis extracts a label from a brew.
type CategoricalAxis struct {
	Field CategoricalField
}

func (CategoricalAxis) isAxis() {}

// Ref returns the axis identity.
func (a CategoricalAxis) Ref() domain.AxisRef {
	return domain.AxisRef{Kind: domain.AxisCategorical, Field: string(a.Field)}
}

// Title returns the display title.
func (a CategoricalAxis) Title() string { return titles[string(a.Field)] }

// Value returns the axis label, or false when the brew has none.
func (a CategoricalAxis) Value(b *domain.Brew) (string, bool) {
	switch a.Field {
	case RoasterName:
		return nonEmpty(b.RoasterName)
	case GrinderName:
		return nonEmpty(b.GrinderName)
	case RecipeName:
		return nonEmpty(b.RecipeName)
	case Country:
		return b.Country()
	case BrewMethod:
		if strings.TrimSpace(b.RecipeName) == "" {
			return "", false
		}
		return MethodFor(b.RecipeName), true
	case RatingCategory:
		return RatingLabel(b.Rating), true
	default:
		return "", false
	}
}

func nonEmpty(s string) (string, bool) {
	s = strings.TrimSpace(s)
	return s, s != ""
}

// methodKeywords is checked in order; the first match wins.
var methodKeywords = []struct {
	keyword string
	label   string
}{
	{"v60", "V60"},
	{"chemex", "Chemex"},
	{"aeropress", "AeroPress"},
	{"french press", "French Press"},
	{"espresso", "Espresso"},
	{"pour over", "Pour Over"},
}

// MethodOther is the brew method of recipes matching no keyword.
const MethodOther = "Other"

// MethodFor infers the brew method from a recipe name.
func MethodFor(recipeName string) string {
	name := strings.ToLower(recipeName)
	for _, m := range methodKeywords {
		if strings.Contains(name, m.keyword) {
			return m.label
		}
	}
	return MethodOther
}

// RatingLabel buckets a 0-5 rating into a named category.
func RatingLabel(rating int) string {
	switch rating {
	case 0, 1:
		return "Poor"
	case 2:
		return "Fair"
	case 3:
		return "Good"
	case 4:
		return "Very Good"
	case 5:
		return "Excellent"
	default:
		return "Unrated"
	}
}

// TemporalAxis extracts a date from a brew.
type TemporalAxis struct {
	Field TemporalField
}

func (TemporalAxis) isAxis() {}

// Ref returns the axis identity.
func (a TemporalAxis) Ref() domain.AxisRef {
	return domain.AxisRef{Kind: domain.AxisTemporal, Field: string(a.Field)}
}

// Title returns the display title.
func (a TemporalAxis) Title() string { return titles[string(a.Field)] }

// Value returns the brew's date normalized for this axis: start of day,
// week or month for the period axes, the raw local time otherwise.
func (a TemporalAxis) Value(b *domain.Brew, cal Calendar) (time.Time, bool) {
	if b.Date.IsZero() {
		return time.Time{}, false
	}
	switch a.Field {
	case BrewDate:
		return cal.StartOfDay(b.Date), true
	case BrewWeek:
		return cal.StartOfWeek(b.Date), true
	case BrewMonth:
		return cal.StartOfMonth(b.Date), true
	case DayOfWeek, TimeOfDay:
		return cal.In(b.Date), true
	default:
		return time.Time{}, false
	}
}

// Label formats a value returned by Value.
func (a TemporalAxis) Label(t time.Time) string {
	switch a.Field {
	case BrewDate:
		return t.Format("Jan 2, 2006")
	case BrewWeek:
		return "Week of " + t.Format("Jan 2, 2006")
	case BrewMonth:
		return t.Format("January 2006")
	case DayOfWeek:
		return t.Weekday().String()
	case TimeOfDay:
		return TimeOfDayBand(t.Hour())
	default:
		return t.Format(time.RFC3339)
	}
}

// periodic reports whether values of this axis are merged by label rather
// than by date.
func (a TemporalAxis) periodic() bool {
	return a.Field == DayOfWeek || a.Field == TimeOfDay
}

// Value is an extracted axis value tagged with its kind.
type Value struct {
	Kind    domain.AxisKind
	Number  float64
	Label   string
	Time    time.Time
	Present bool
}

// Extract applies any axis to a brew. Missing data yields a Value with
// Present false; extraction never fails.
func Extract(a Axis, b *domain.Brew, cal Calendar) Value {
	switch ax := a.(type) {
	case NumericAxis:
		n, ok := ax.Value(b)
		return Value{Kind: domain.AxisNumeric, Number: n, Label: formatNumber(n), Present: ok}
	case CategoricalAxis:
		s, ok := ax.Value(b)
		return Value{Kind: domain.AxisCategorical, Label: s, Present: ok}
	case TemporalAxis:
		t, ok := ax.Value(b, cal)
		v := Value{Kind: domain.AxisTemporal, Time: t, Present: ok}
		if ok {
			v.Label = ax.Label(t)
		}
		return v
	default:
		return Value{}
	}
}

func formatNumber(n float64) string {
	if n == math.Trunc(n) {
		return fmt.Sprintf("%.0f", n)
	}
	return fmt.Sprintf("%.2f", n)
}

// AxisFor resolves an axis identity. Unknown kinds or fields are an error.
func AxisFor(ref domain.AxisRef) (Axis, error) {
	switch ref.Kind {
	case domain.AxisNumeric:
		for _, f := range numericFields {
			if string(f) == ref.Field {
				return NumericAxis{Field: f}, nil
			}
		}
	case domain.AxisCategorical:
		for _, f := range categoricalFields {
			if string(f) == ref.Field {
				return CategoricalAxis{Field: f}, nil
			}
		}
	case domain.AxisTemporal:
		for _, f := range temporalFields {
			if string(f) == ref.Field {
				return TemporalAxis{Field: f}, nil
			}
		}
	}
	return nil, fmt.Errorf("unknown axis %s", ref)
}

// ParseAxis resolves an axis from a field name such as "rating", or from
// "kind/field". Field names are unique across kinds.
func ParseAxis(s string) (Axis, error) {
	if kind, field, ok := strings.Cut(s, "/"); ok {
		k, err := domain.ParseAxisKind(kind)
		if err != nil {
			return nil, err
		}
		return AxisFor(domain.AxisRef{Kind: k, Field: field})
	}
	for _, a := range AllAxes() {
		if strings.EqualFold(a.Ref().Field, s) {
			return a, nil
		}
	}
	return nil, fmt.Errorf("unknown axis %q", s)
}

// AllAxes lists every axis: numeric, then categorical, then temporal.
func AllAxes() []Axis {
	out := make([]Axis, 0, len(numericFields)+len(categoricalFields)+len(temporalFields))
	for _, f := range numericFields {
		out = append(out, NumericAxis{Field: f})
	}
	for _, f := range categoricalFields {
		out = append(out, CategoricalAxis{Field: f})
	}
	for _, f := range temporalFields {
		out = append(out, TemporalAxis{Field: f})
	}
	return out
}
