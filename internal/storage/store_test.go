package storage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hammamikhairi/ottobrew/internal/domain"
)

var day = time.Date(2026, 3, 9, 8, 0, 0, 0, time.UTC)

func sampleRecipe(id, roasterID string) *domain.Recipe {
	return &domain.Recipe{
		ID:          id,
		Name:        "Hario V60 Classic",
		Grams:       18,
		Ratio:       16,
		WaterAmount: 288,
		Temperature: 93,
		GrindSize:   22,
		RoasterID:   roasterID,
		Stages: []domain.Stage{
			{ID: id + "-s0", Type: domain.StageFast, OrderIndex: 0, Seconds: 30, WaterAmount: 50},
			{ID: id + "-s1", Type: domain.StageWait, OrderIndex: 1, Seconds: 30},
			{ID: id + "-s2", Type: domain.StageSlow, OrderIndex: 2, Seconds: 60, WaterAmount: 238},
		},
		CreatedAt: day,
		UpdatedAt: day,
		Version:   1,
	}
}

func sampleBrew(id, recipeID string, rating int) *domain.Brew {
	return &domain.Brew{
		ID:                    id,
		RecipeName:            "Hario V60 Classic",
		Grams:                 18,
		Water:                 288,
		Ratio:                 16,
		Temperature:           93,
		GrindSize:             22,
		RoasterName:           "Onyx",
		GrinderName:           "Comandante",
		Rating:                rating,
		Acidity:               domain.IntPtr(6),
		TDS:                   domain.FloatPtr(1.35),
		Date:                  day,
		ActualDurationSeconds: 185,
		Notes:                 "bright",
		Origin:                &domain.BrewOrigin{RecipeID: recipeID},
	}
}

// runStoreContract exercises behavior every domain.Store must share.
func runStoreContract(t *testing.T, open func(t *testing.T) domain.Store) {
	ctx := context.Background()

	t.Run("recipe round trip", func(t *testing.T) {
		s := open(t)
		require.NoError(t, s.SaveRecipe(ctx, sampleRecipe("r1", "")))

		got, err := s.GetRecipe(ctx, "r1")
		require.NoError(t, err)
		assert.Equal(t, "Hario V60 Classic", got.Name)
		assert.Equal(t, 288, got.WaterAmount)
		assert.Equal(t, 16.0, got.Ratio)
		assert.True(t, got.CreatedAt.Equal(day))
		require.Len(t, got.Stages, 3)
		assert.Equal(t, domain.StageWait, got.Stages[1].Type)
		assert.Equal(t, 238, got.Stages[2].WaterAmount)

		_, err = s.GetRecipe(ctx, "nope")
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("save replaces stages", func(t *testing.T) {
		s := open(t)
		r := sampleRecipe("r1", "")
		require.NoError(t, s.SaveRecipe(ctx, r))

		r.Stages = []domain.Stage{
			{ID: "r1-new", Type: domain.StageFast, OrderIndex: 0, Seconds: 90, WaterAmount: 288},
		}
		r.Version = 2
		require.NoError(t, s.SaveRecipe(ctx, r))

		n, err := s.Count(ctx, domain.KindStage)
		require.NoError(t, err)
		assert.Equal(t, 1, n)

		got, err := s.GetRecipe(ctx, "r1")
		require.NoError(t, err)
		assert.Equal(t, 2, got.Version)
		assert.Equal(t, "r1-new", got.Stages[0].ID)
	})

	t.Run("stages ordered by index", func(t *testing.T) {
		s := open(t)
		r := sampleRecipe("r1", "")
		r.Stages[0], r.Stages[2] = r.Stages[2], r.Stages[0]
		require.NoError(t, s.SaveRecipe(ctx, r))

		stages, err := s.StagesForRecipe(ctx, "r1")
		require.NoError(t, err)
		for i, st := range stages {
			assert.Equal(t, i, st.OrderIndex)
		}

		_, err = s.StagesForRecipe(ctx, "nope")
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("list recipes sorted by name", func(t *testing.T) {
		s := open(t)
		a := sampleRecipe("r1", "")
		a.Name = "Chemex Weekend"
		b := sampleRecipe("r2", "")
		b.Name = "AeroPress Daily"
		b.Stages = b.Stages[:1]
		require.NoError(t, s.SaveRecipe(ctx, a))
		require.NoError(t, s.SaveRecipe(ctx, b))

		list, err := s.ListRecipes(ctx)
		require.NoError(t, err)
		require.Len(t, list, 2)
		assert.Equal(t, "AeroPress Daily", list[0].Name)
		assert.Equal(t, 1, list[0].StageCount)
		assert.Equal(t, 3, list[1].StageCount)
	})

	t.Run("brew origin resolves country", func(t *testing.T) {
		s := open(t)
		require.NoError(t, s.SaveRoaster(ctx, &domain.Roaster{ID: "ro1", Name: "Onyx", Country: "USA"}))
		require.NoError(t, s.SaveRecipe(ctx, sampleRecipe("r1", "ro1")))
		require.NoError(t, s.SaveBrew(ctx, sampleBrew("b1", "r1", 4)))

		b, err := s.GetBrew(ctx, "b1")
		require.NoError(t, err)
		country, ok := b.Country()
		require.True(t, ok)
		assert.Equal(t, "USA", country)
		assert.Equal(t, "r1", b.RecipeID())
		require.NotNil(t, b.Acidity)
		assert.Equal(t, 6, *b.Acidity)
		assert.Nil(t, b.Body)
		require.NotNil(t, b.TDS)
		assert.Equal(t, 1.35, *b.TDS)
		assert.True(t, b.Date.Equal(day))
	})

	t.Run("deleting links keeps brews", func(t *testing.T) {
		s := open(t)
		require.NoError(t, s.SaveRoaster(ctx, &domain.Roaster{ID: "ro1", Name: "Onyx", Country: "USA"}))
		require.NoError(t, s.SaveRecipe(ctx, sampleRecipe("r1", "ro1")))
		require.NoError(t, s.SaveBrew(ctx, sampleBrew("b1", "r1", 4)))

		require.NoError(t, s.DeleteRoaster(ctx, "ro1"))
		r, err := s.GetRecipe(ctx, "r1")
		require.NoError(t, err)
		assert.Empty(t, r.RoasterID)

		b, err := s.GetBrew(ctx, "b1")
		require.NoError(t, err)
		_, ok := b.Country()
		assert.False(t, ok)

		require.NoError(t, s.DeleteRecipe(ctx, "r1"))
		b, err = s.GetBrew(ctx, "b1")
		require.NoError(t, err)
		assert.Nil(t, b.Origin)
		assert.Equal(t, "Hario V60 Classic", b.RecipeName, "snapshot survives")

		assert.ErrorIs(t, s.DeleteRecipe(ctx, "r1"), domain.ErrNotFound)
	})

	t.Run("brews are immutable", func(t *testing.T) {
		s := open(t)
		require.NoError(t, s.SaveBrew(ctx, sampleBrew("b1", "", 3)))
		assert.ErrorIs(t, s.SaveBrew(ctx, sampleBrew("b1", "", 5)), domain.ErrAlreadyExists)

		require.NoError(t, s.UpdateBrewReview(ctx, "b1", 5, "better on day two"))
		b, err := s.GetBrew(ctx, "b1")
		require.NoError(t, err)
		assert.Equal(t, 5, b.Rating)
		assert.Equal(t, "better on day two", b.Notes)

		assert.ErrorIs(t, s.UpdateBrewReview(ctx, "nope", 1, ""), domain.ErrNotFound)
		require.NoError(t, s.DeleteBrew(ctx, "b1"))
		assert.ErrorIs(t, s.DeleteBrew(ctx, "b1"), domain.ErrNotFound)
	})

	t.Run("list brews filters and orders", func(t *testing.T) {
		s := open(t)
		require.NoError(t, s.SaveRecipe(ctx, sampleRecipe("r1", "")))
		for i, rating := range []int{2, 5, 4} {
			b := sampleBrew(string(rune('c'-i)), "r1", rating) // ids c, b, a
			b.Date = day.Add(time.Duration(i) * 24 * time.Hour)
			require.NoError(t, s.SaveBrew(ctx, b))
		}
		other := sampleBrew("z", "", 5)
		other.Date = day.Add(-time.Hour)
		require.NoError(t, s.SaveBrew(ctx, other))

		all, err := s.ListBrews(ctx, domain.BrewQuery{})
		require.NoError(t, err)
		require.Len(t, all, 4)
		assert.Equal(t, []string{"z", "c", "b", "a"}, brewIDs(all))

		got, err := s.ListBrews(ctx, domain.BrewQuery{RecipeID: "r1", MinRating: 4})
		require.NoError(t, err)
		assert.Equal(t, []string{"b", "a"}, brewIDs(got))

		got, err = s.ListBrews(ctx, domain.BrewQuery{Since: day, Until: day.Add(48 * time.Hour)})
		require.NoError(t, err)
		assert.Equal(t, []string{"c", "b"}, brewIDs(got))
	})

	t.Run("chart type is derived", func(t *testing.T) {
		s := open(t)
		c := &domain.ChartConfiguration{
			ID:              "c1",
			Title:           "Rating by roaster",
			XAxis:           domain.AxisRef{Kind: domain.AxisCategorical, Field: "roasterName"},
			YAxis:           domain.AxisRef{Kind: domain.AxisNumeric, Field: "rating"},
			ShowAverageLine: true,
			CreatedAt:       day,
		}
		require.NoError(t, s.SaveChart(ctx, c))

		got, err := s.GetChart(ctx, "c1")
		require.NoError(t, err)
		assert.Equal(t, domain.ChartBar, got.ChartType())
		assert.True(t, got.ShowAverageLine)
		assert.False(t, got.ShowTrendLine)

		got.YAxis = domain.AxisRef{Kind: domain.AxisNumeric, Field: "tds"}
		got.XAxis = domain.AxisRef{Kind: domain.AxisNumeric, Field: "temperature"}
		require.NoError(t, s.SaveChart(ctx, got))
		reread, err := s.GetChart(ctx, "c1")
		require.NoError(t, err)
		assert.Equal(t, domain.ChartScatter, reread.ChartType())

		list, err := s.ListCharts(ctx)
		require.NoError(t, err)
		assert.Len(t, list, 1)
		require.NoError(t, s.DeleteChart(ctx, "c1"))
		_, err = s.GetChart(ctx, "c1")
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("roasters and grinders", func(t *testing.T) {
		s := open(t)
		require.NoError(t, s.SaveRoaster(ctx, &domain.Roaster{ID: "ro2", Name: "Sey", Country: "USA"}))
		require.NoError(t, s.SaveRoaster(ctx, &domain.Roaster{ID: "ro1", Name: "Onyx", Country: "USA", Website: "onyx.coffee"}))
		require.NoError(t, s.SaveGrinder(ctx, &domain.Grinder{ID: "g1", Name: "Comandante", GrinderType: "Hand", BurrType: "Conical"}))

		roasters, err := s.ListRoasters(ctx)
		require.NoError(t, err)
		require.Len(t, roasters, 2)
		assert.Equal(t, "Onyx", roasters[0].Name)
		assert.Equal(t, "onyx.coffee", roasters[0].Website)

		g, err := s.GetGrinder(ctx, "g1")
		require.NoError(t, err)
		assert.Equal(t, "Conical", g.BurrType)

		grinders, err := s.ListGrinders(ctx)
		require.NoError(t, err)
		assert.Len(t, grinders, 1)

		require.NoError(t, s.DeleteGrinder(ctx, "g1"))
		_, err = s.GetGrinder(ctx, "g1")
		assert.ErrorIs(t, err, domain.ErrNotFound)
		_, err = s.GetRoaster(ctx, "missing")
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("same names list by id", func(t *testing.T) {
		s := open(t)
		ids := []string{"ro5", "ro3", "ro1", "ro4", "ro2"}
		for _, id := range ids {
			require.NoError(t, s.SaveRoaster(ctx, &domain.Roaster{ID: id, Name: "Onyx"}))
			require.NoError(t, s.SaveGrinder(ctx, &domain.Grinder{ID: "g" + id, Name: "Comandante"}))
		}

		roasters, err := s.ListRoasters(ctx)
		require.NoError(t, err)
		grinders, err := s.ListGrinders(ctx)
		require.NoError(t, err)
		require.Len(t, roasters, len(ids))
		require.Len(t, grinders, len(ids))
		for i, want := range []string{"ro1", "ro2", "ro3", "ro4", "ro5"} {
			assert.Equal(t, want, roasters[i].ID)
			assert.Equal(t, "g"+want, grinders[i].ID)
		}
	})

	t.Run("count per kind", func(t *testing.T) {
		s := open(t)
		require.NoError(t, s.SaveRecipe(ctx, sampleRecipe("r1", "")))
		require.NoError(t, s.SaveBrew(ctx, sampleBrew("b1", "r1", 4)))

		want := map[domain.EntityKind]int{
			domain.KindRecipe:  1,
			domain.KindStage:   3,
			domain.KindBrew:    1,
			domain.KindRoaster: 0,
			domain.KindGrinder: 0,
			domain.KindChart:   0,
		}
		for kind, n := range want {
			got, err := s.Count(ctx, kind)
			require.NoError(t, err)
			assert.Equal(t, n, got, string(kind))
		}
		_, err := s.Count(ctx, "flavour")
		assert.Error(t, err)
	})
}

func brewIDs(brews []*domain.Brew) []string {
	out := make([]string, 0, len(brews))
	for _, b := range brews {
		out = append(out, b.ID)
	}
	return out
}
