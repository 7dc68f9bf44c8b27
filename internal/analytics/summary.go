package analytics

import (
	"sort"

	"github.com/hammamikhairi/ottobrew/internal/domain"
)

// Summary holds headline statistics over a brew history.
type Summary struct {
	TotalBrews      int
	AverageRating   float64
	AverageDuration float64 // seconds, over brews with a recorded duration
	MostBrewed      string  // recipe name
	MostBrewedCount int
	BestRated       string // recipe name with the highest mean rating
	BestRatedMean   float64
	Tasting         map[NumericField]float64 // mean of each recorded attribute
	RatingBreakdown []Group                  // counts per rating category
}

// HasBrews reports whether anything was summarized.
func (s Summary) HasBrews() bool { return s.TotalBrews > 0 }

// PercentAbove returns the share of brews, 0-100, whose rating category is
// at or above the category of rating. Returns 0 for an empty history.
func (s Summary) PercentAbove(rating int) float64 {
	if s.TotalBrews == 0 {
		return 0
	}
	threshold := ratingCategoryOrder(RatingLabel(rating))
	n := 0
	for _, g := range s.RatingBreakdown {
		if ratingCategoryOrder(g.Label) >= threshold {
			n += g.Count
		}
	}
	return float64(n) / float64(s.TotalBrews) * 100
}

// Summarize computes headline statistics. An empty history yields a zero
// Summary with an empty tasting map.
func Summarize(brews []*domain.Brew) Summary {
	s := Summary{Tasting: map[NumericField]float64{}}
	if len(brews) == 0 {
		return s
	}
	s.TotalBrews = len(brews)

	rating := NumericAxis{Field: Rating}
	duration := NumericAxis{Field: BrewDuration}

	var ratingSum, durSum float64
	durN := 0
	for _, b := range brews {
		v, _ := rating.Value(b)
		ratingSum += v
		if d, ok := duration.Value(b); ok {
			durSum += d
			durN++
		}
	}
	s.AverageRating = ratingSum / float64(len(brews))
	if durN > 0 {
		s.AverageDuration = durSum / float64(durN)
	}

	recipe := CategoricalAxis{Field: RecipeName}
	if counts := CountByCategory(recipe, nil, brews, Calendar{}); len(counts) > 0 {
		s.MostBrewed, s.MostBrewedCount = counts[0].Label, counts[0].Count
	}
	if means := GroupByCategory(recipe, rating, brews); len(means) > 0 {
		s.BestRated, s.BestRatedMean = means[0].Label, means[0].Value
	}

	for _, f := range []NumericField{Acidity, Bitterness, Body, Sweetness, TDS} {
		ax := NumericAxis{Field: f}
		var sum float64
		n := 0
		for _, b := range brews {
			if v, ok := ax.Value(b); ok {
				sum += v
				n++
			}
		}
		if n > 0 {
			s.Tasting[f] = sum / float64(n)
		}
	}

	s.RatingBreakdown = CountByCategory(CategoricalAxis{Field: RatingCategory}, nil, brews, Calendar{})
	sort.SliceStable(s.RatingBreakdown, func(i, j int) bool {
		return ratingCategoryOrder(s.RatingBreakdown[i].Label) > ratingCategoryOrder(s.RatingBreakdown[j].Label)
	})
	return s
}

func ratingCategoryOrder(label string) int {
	switch label {
	case "Excellent":
		return 5
	case "Very Good":
		return 4
	case "Good":
		return 3
	case "Fair":
		return 2
	case "Poor":
		return 1
	default:
		return 0
	}
}
