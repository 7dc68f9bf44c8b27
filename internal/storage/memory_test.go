package storage

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/hammamikhairi/ottobrew/internal/domain"
	"github.com/hammamikhairi/ottobrew/internal/logger"
)

func TestMemoryStoreSessionCRUD(t *testing.T) {
	log := logger.New(logger.LevelOff, nil)
	store := NewMemoryStore(log)
	ctx := context.Background()

	session := &domain.Session{
		ID:                "test-session-1",
		RecipeID:          "test-recipe",
		RecipeName:        "Test Recipe",
		Status:            domain.SessionActive,
		CurrentStageIndex: 0,
		StageStates:       make(map[int]*domain.StageState),
		StartedAt:         time.Now(),
		UpdatedAt:         time.Now(),
	}

	// Save.
	if err := store.Save(ctx, session); err != nil {
		t.Fatalf("save: %v", err)
	}

	// Load.
	loaded, err := store.Load(ctx, "test-session-1")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.ID != session.ID {
		t.Fatalf("expected ID %s, got %s", session.ID, loaded.ID)
	}

	// Load nonexistent.
	_, err = store.Load(ctx, "nonexistent")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	// ListActive.
	active, err := store.ListActive(ctx)
	if err != nil {
		t.Fatalf("list active: %v", err)
	}
	if len(active) != 1 {
		t.Fatalf("expected 1 active session, got %d", len(active))
	}

	// Delete.
	if err := store.Delete(ctx, "test-session-1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	_, err = store.Load(ctx, "test-session-1")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}

	// Delete nonexistent.
	if err := store.Delete(ctx, "nonexistent"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestMemoryStoreListActiveFilters(t *testing.T) {
	log := logger.New(logger.LevelOff, nil)
	store := NewMemoryStore(log)
	ctx := context.Background()

	base := time.Date(2026, 3, 9, 8, 0, 0, 0, time.UTC)
	sessions := []*domain.Session{
		{ID: "s1", Status: domain.SessionActive, StartedAt: base.Add(2 * time.Minute)},
		{ID: "s2", Status: domain.SessionPaused, StartedAt: base.Add(time.Minute)},
		{ID: "s3", Status: domain.SessionFinished, StartedAt: base},
		{ID: "s4", Status: domain.SessionLogged, StartedAt: base},
		{ID: "s5", Status: domain.SessionAbandoned, StartedAt: base},
	}

	for _, s := range sessions {
		if err := store.Save(ctx, s); err != nil {
			t.Fatalf("save %s: %v", s.ID, err)
		}
	}

	active, err := store.ListActive(ctx)
	if err != nil {
		t.Fatalf("list active: %v", err)
	}
	if len(active) != 3 {
		t.Fatalf("expected 3 sessions needing attention, got %d", len(active))
	}
	if active[0].ID != "s3" || active[2].ID != "s1" {
		t.Fatalf("expected oldest first, got %s..%s", active[0].ID, active[2].ID)
	}
}

func TestMemoryStoreRunsContract(t *testing.T) {
	runStoreContract(t, func(t *testing.T) domain.Store {
		return NewMemoryStore(logger.New(logger.LevelOff, nil))
	})
}

func TestMemoryStoreCopiesRecipes(t *testing.T) {
	store := NewMemoryStore(logger.New(logger.LevelOff, nil))
	ctx := context.Background()

	r := sampleRecipe("r1", "")
	if err := store.SaveRecipe(ctx, r); err != nil {
		t.Fatalf("save: %v", err)
	}
	r.Stages[0].WaterAmount = 999

	got, err := store.GetRecipe(ctx, "r1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Stages[0].WaterAmount == 999 {
		t.Fatal("store shares the caller's stage slice")
	}
}
