package analytics

import (
	"sort"
	"time"

	"github.com/hammamikhairi/ottobrew/internal/domain"
)

// Point is one brew on a scatter plot.
type Point struct {
	BrewID string
	X      float64
	Y      float64
}

// Group is one bar: a category label with the mean of its members.
type Group struct {
	Label string
	Value float64 // mean of the numeric axis, or the count in count mode
	Count int
}

// Bucket is one time-series point.
type Bucket struct {
	Date  time.Time // start of the period, or the earliest member for periodic axes
	Label string
	Value float64
	Count int
}

// Scatter returns one point per brew that has both values. Brews missing
// either value are skipped.
func Scatter(x, y NumericAxis, brews []*domain.Brew) []Point {
	var out []Point
	for _, b := range brews {
		xv, ok := x.Value(b)
		if !ok {
			continue
		}
		yv, ok := y.Value(b)
		if !ok {
			continue
		}
		out = append(out, Point{BrewID: b.ID, X: xv, Y: yv})
	}
	return out
}

// accumulator sums values per key.
type accumulator struct {
	sum   float64
	count int
}

// GroupByCategory groups brews by the categorical label and averages the
// numeric axis per group. Groups are sorted by mean, highest first; ties
// sort by label.
func GroupByCategory(cat CategoricalAxis, num NumericAxis, brews []*domain.Brew) []Group {
	acc := map[string]*accumulator{}
	for _, b := range brews {
		label, ok := cat.Value(b)
		if !ok {
			continue
		}
		v, ok := num.Value(b)
		if !ok {
			continue
		}
		a := acc[label]
		if a == nil {
			a = &accumulator{}
			acc[label] = a
		}
		a.sum += v
		a.count++
	}
	return sortedGroups(acc, true)
}

// CountByCategory counts brews per label of cat among brews where other
// also has a value. Sorted by count, highest first.
func CountByCategory(cat CategoricalAxis, other Axis, brews []*domain.Brew, cal Calendar) []Group {
	acc := map[string]*accumulator{}
	for _, b := range brews {
		label, ok := cat.Value(b)
		if !ok {
			continue
		}
		if other != nil && !Extract(other, b, cal).Present {
			continue
		}
		a := acc[label]
		if a == nil {
			a = &accumulator{}
			acc[label] = a
		}
		a.count++
	}
	return sortedGroups(acc, false)
}

// sortedGroups turns accumulators into groups valued by their mean, or by
// their count when mean is false.
func sortedGroups(acc map[string]*accumulator, mean bool) []Group {
	out := make([]Group, 0, len(acc))
	for label, a := range acc {
		g := Group{Label: label, Value: float64(a.count), Count: a.count}
		if mean {
			g.Value = a.sum / float64(a.count)
		}
		out = append(out, g)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Value != out[j].Value {
			return out[i].Value > out[j].Value
		}
		return out[i].Label < out[j].Label
	})
	return out
}

// BucketByTime buckets brews by the temporal axis and averages the
// numeric axis per bucket, oldest bucket first. Day-of-week and
// time-of-day values are merged by label and ordered canonically.
func BucketByTime(t TemporalAxis, num NumericAxis, brews []*domain.Brew, cal Calendar) []Bucket {
	return bucket(t, brews, cal, true, func(b *domain.Brew) (float64, bool) {
		return num.Value(b)
	})
}

// CountByTime counts brews per bucket of t among brews where other also
// has a value.
func CountByTime(t TemporalAxis, other Axis, brews []*domain.Brew, cal Calendar) []Bucket {
	return bucket(t, brews, cal, false, func(b *domain.Brew) (float64, bool) {
		if other != nil && !Extract(other, b, cal).Present {
			return 0, false
		}
		return 1, true
	})
}

func bucket(t TemporalAxis, brews []*domain.Brew, cal Calendar, mean bool, value func(*domain.Brew) (float64, bool)) []Bucket {
	type entry struct {
		bucket Bucket
		acc    accumulator
	}
	byKey := map[string]*entry{}

	for _, b := range brews {
		date, ok := t.Value(b, cal)
		if !ok {
			continue
		}
		v, ok := value(b)
		if !ok {
			continue
		}

		label := t.Label(date)
		key := label
		if !t.periodic() {
			key = date.Format(time.RFC3339)
		}

		e := byKey[key]
		if e == nil {
			e = &entry{bucket: Bucket{Date: date, Label: label}}
			byKey[key] = e
		}
		if date.Before(e.bucket.Date) {
			e.bucket.Date = date
		}
		e.acc.sum += v
		e.acc.count++
	}

	out := make([]Bucket, 0, len(byKey))
	for _, e := range byKey {
		b := e.bucket
		b.Count = e.acc.count
		b.Value = float64(e.acc.count)
		if mean {
			b.Value = e.acc.sum / float64(e.acc.count)
		}
		out = append(out, b)
	}

	sort.Slice(out, func(i, j int) bool {
		if t.periodic() {
			return periodicOrder(t, out[i].Date, cal) < periodicOrder(t, out[j].Date, cal)
		}
		return out[i].Date.Before(out[j].Date)
	})
	return out
}

func periodicOrder(t TemporalAxis, date time.Time, cal Calendar) int {
	switch t.Field {
	case DayOfWeek:
		return cal.WeekdayOrdinal(date.Weekday())
	case TimeOfDay:
		return timeOfDayOrder[TimeOfDayBand(date.Hour())]
	default:
		return 0
	}
}
