package analytics

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"

	"github.com/hammamikhairi/ottobrew/internal/domain"
)

func TestSummarizeEmpty(t *testing.T) {
	s := Summarize(nil)
	assert.False(t, s.HasBrews())
	assert.Empty(t, s.Tasting)
	assert.Empty(t, s.RatingBreakdown)
	assert.Equal(t, 0.0, s.PercentAbove(4))
}

func TestSummarize(t *testing.T) {
	brews := history()
	brews[0].ActualDurationSeconds = 180
	brews[2].ActualDurationSeconds = 240
	brews[0].Acidity = domain.IntPtr(6)
	brews[1].Acidity = domain.IntPtr(4)

	s := Summarize(brews)
	assert.True(t, s.HasBrews())
	assert.Equal(t, 3, s.TotalBrews)
	assert.InDelta(t, 11.0/3.0, s.AverageRating, 1e-9)
	assert.Equal(t, 210.0, s.AverageDuration)

	assert.Equal(t, "Hario V60 Classic", s.MostBrewed)
	assert.Equal(t, 2, s.MostBrewedCount)
	assert.Equal(t, "Chemex Weekend", s.BestRated)
	assert.Equal(t, 5.0, s.BestRatedMean)

	assert.Equal(t, 5.0, s.Tasting[Acidity])
	assert.InDelta(t, 1.3, s.Tasting[TDS], 1e-9)
	_, ok := s.Tasting[Body]
	assert.False(t, ok, "unrecorded attributes are left out")

	want := []Group{
		{Label: "Excellent", Value: 1, Count: 1},
		{Label: "Very Good", Value: 1, Count: 1},
		{Label: "Fair", Value: 1, Count: 1},
	}
	if diff := cmp.Diff(want, s.RatingBreakdown); diff != "" {
		t.Fatalf("breakdown (-want +got):\n%s", diff)
	}

	assert.InDelta(t, 200.0/3.0, s.PercentAbove(4), 1e-9)
	assert.Equal(t, 100.0, s.PercentAbove(0))
}
