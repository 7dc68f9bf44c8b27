package engine

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/hammamikhairi/ottobrew/internal/domain"
	"github.com/hammamikhairi/ottobrew/internal/events"
	"github.com/hammamikhairi/ottobrew/internal/logger"
	"github.com/hammamikhairi/ottobrew/internal/storage"
)

// fakeClock is a manually advanced time source.
type fakeClock struct {
	t time.Time
}

func (c *fakeClock) Now() time.Time      { return c.t }
func (c *fakeClock) Add(d time.Duration) { c.t = c.t.Add(d) }

func newClock() *fakeClock {
	return &fakeClock{t: time.Date(2026, 3, 9, 8, 0, 0, 0, time.UTC)}
}

func stage(typ domain.StageType, order, sec, ml int) domain.Stage {
	return domain.Stage{ID: domain.NewID(), Type: typ, OrderIndex: order, Seconds: sec, WaterAmount: ml}
}

func setupEngine(t *testing.T, opts ...Option) (*Engine, *storage.MemoryStore, *fakeClock, context.Context) {
	t.Helper()
	log := logger.New(logger.LevelOff, nil)
	store := storage.NewMemoryStore(log)
	clock := newClock()
	ctx := context.Background()

	if err := store.SaveRoaster(ctx, &domain.Roaster{ID: "ro", Name: "Onyx", Country: "USA"}); err != nil {
		t.Fatalf("saving roaster: %v", err)
	}
	if err := store.SaveGrinder(ctx, &domain.Grinder{ID: "gr", Name: "Comandante"}); err != nil {
		t.Fatalf("saving grinder: %v", err)
	}
	v60 := &domain.Recipe{
		ID: "v60", Name: "Hario V60 Classic", Grams: 18, Ratio: 16, WaterAmount: 288,
		Temperature: 94, GrindSize: 22, RoasterID: "ro", GrinderID: "gr",
		// Stored out of order; the engine brews by OrderIndex.
		Stages: []domain.Stage{
			stage(domain.StageSlow, 2, 30, 238),
			stage(domain.StageFast, 0, 10, 50),
			stage(domain.StageWait, 1, 30, 0),
		},
	}
	empty := &domain.Recipe{ID: "empty", Name: "Nothing", Grams: 15, Ratio: 15, WaterAmount: 225}
	for _, r := range []*domain.Recipe{v60, empty} {
		if err := store.SaveRecipe(ctx, r); err != nil {
			t.Fatalf("saving recipe: %v", err)
		}
	}

	opts = append([]Option{WithClock(clock.Now)}, opts...)
	return New(store, store, log, opts...), store, clock, ctx
}

func TestStartSession(t *testing.T) {
	eng, _, _, ctx := setupEngine(t)

	tests := []struct {
		name     string
		recipeID string
		wantErr  error
	}{
		{"valid recipe", "v60", nil},
		{"recipe without stages", "empty", domain.ErrNoStages},
		{"unknown recipe", "nonexistent", domain.ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			session, err := eng.StartSession(ctx, tt.recipeID)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if session.ID == "" {
				t.Fatal("session ID is empty")
			}
			if session.Status != domain.SessionActive {
				t.Fatalf("expected active status, got %s", session.Status)
			}
			if session.TargetWater != 288 {
				t.Fatalf("expected target 288, got %d", session.TargetWater)
			}
			if session.StageStates[0].Status != domain.StageActive {
				t.Fatalf("expected first stage active, got %s", session.StageStates[0].Status)
			}
			if session.StageStates[0].Remaining != 10*time.Second {
				t.Fatalf("expected 10s on the bloom pour, got %s", session.StageStates[0].Remaining)
			}
		})
	}
}

func TestAdvanceStages(t *testing.T) {
	eng, _, _, ctx := setupEngine(t)

	session, err := eng.StartSession(ctx, "v60")
	if err != nil {
		t.Fatalf("starting session: %v", err)
	}

	wantTypes := []domain.StageType{domain.StageWait, domain.StageSlow}
	for i, want := range wantTypes {
		st, err := eng.Advance(ctx, session.ID)
		if err != nil {
			t.Fatalf("advance %d: %v", i+1, err)
		}
		if st.Type != want {
			t.Fatalf("stage %d: expected %s, got %s", i+2, want, st.Type)
		}
	}

	// One more advance finishes the session.
	_, err = eng.Advance(ctx, session.ID)
	if !errors.Is(err, domain.ErrNoMoreStages) {
		t.Fatalf("expected ErrNoMoreStages, got %v", err)
	}

	s, err := eng.Status(ctx, session.ID)
	if err != nil {
		t.Fatalf("getting status: %v", err)
	}
	if s.Status != domain.SessionFinished {
		t.Fatalf("expected finished, got %s", s.Status)
	}
	if s.FinishedAt.IsZero() {
		t.Fatal("expected FinishedAt to be set")
	}

	_, err = eng.Advance(ctx, session.ID)
	if !errors.Is(err, domain.ErrSessionNotActive) {
		t.Fatalf("expected ErrSessionNotActive after finishing, got %v", err)
	}
}

func TestSkip(t *testing.T) {
	eng, _, _, ctx := setupEngine(t)

	session, err := eng.StartSession(ctx, "v60")
	if err != nil {
		t.Fatalf("starting session: %v", err)
	}

	st, err := eng.Skip(ctx, session.ID)
	if err != nil {
		t.Fatalf("skip: %v", err)
	}
	if st.OrderIndex != 1 {
		t.Fatalf("expected stage 1 after skip, got %d", st.OrderIndex)
	}

	s, err := eng.Status(ctx, session.ID)
	if err != nil {
		t.Fatalf("getting status: %v", err)
	}
	if s.StageStates[0].Status != domain.StageSkipped {
		t.Fatalf("expected skipped, got %s", s.StageStates[0].Status)
	}
	if s.StageStates[0].Remaining != 10*time.Second {
		t.Fatalf("a skipped stage keeps its remaining time, got %s", s.StageStates[0].Remaining)
	}
}

func TestPauseResume(t *testing.T) {
	eng, _, _, ctx := setupEngine(t)

	session, err := eng.StartSession(ctx, "v60")
	if err != nil {
		t.Fatalf("starting session: %v", err)
	}

	if err := eng.Pause(ctx, session.ID); err != nil {
		t.Fatalf("pause: %v", err)
	}
	s, _ := eng.Status(ctx, session.ID)
	if s.Status != domain.SessionPaused {
		t.Fatalf("expected paused, got %s", s.Status)
	}

	// Can't advance while paused.
	_, err = eng.Advance(ctx, session.ID)
	if !errors.Is(err, domain.ErrSessionPaused) {
		t.Fatalf("expected ErrSessionPaused, got %v", err)
	}

	// Ticks don't count down a paused stage.
	res, err := eng.Tick(ctx, session.ID, 5*time.Second)
	if err != nil {
		t.Fatalf("tick: %v", err)
	}
	if res.Kind != TickIdle {
		t.Fatalf("expected idle tick while paused, got %d", res.Kind)
	}

	resumed, err := eng.Resume(ctx, session.ID)
	if err != nil {
		t.Fatalf("resume: %v", err)
	}
	if resumed.Status != domain.SessionActive {
		t.Fatalf("expected active after resume, got %s", resumed.Status)
	}
	if resumed.StageStates[0].Remaining != 10*time.Second {
		t.Fatalf("expected clock stopped while paused, got %s", resumed.StageStates[0].Remaining)
	}

	if _, err := eng.Resume(ctx, session.ID); !errors.Is(err, domain.ErrSessionNotActive) {
		t.Fatalf("expected ErrSessionNotActive resuming an active session, got %v", err)
	}
}

func TestAbandon(t *testing.T) {
	eng, _, _, ctx := setupEngine(t)

	session, err := eng.StartSession(ctx, "v60")
	if err != nil {
		t.Fatalf("starting session: %v", err)
	}

	if err := eng.Abandon(ctx, session.ID); err != nil {
		t.Fatalf("abandon: %v", err)
	}

	s, _ := eng.Status(ctx, session.ID)
	if s.Status != domain.SessionAbandoned {
		t.Fatalf("expected abandoned, got %s", s.Status)
	}
	if _, err := eng.Finish(ctx, session.ID); !errors.Is(err, domain.ErrSessionNotActive) {
		t.Fatalf("expected ErrSessionNotActive finishing an abandoned session, got %v", err)
	}
}

func TestTickAdvancesAndFinishes(t *testing.T) {
	eng, _, _, ctx := setupEngine(t)

	session, err := eng.StartSession(ctx, "v60")
	if err != nil {
		t.Fatalf("starting session: %v", err)
	}

	res, err := eng.Tick(ctx, session.ID, 4*time.Second)
	if err != nil {
		t.Fatalf("tick: %v", err)
	}
	if res.Kind != TickCounting || res.Remaining != 6*time.Second {
		t.Fatalf("expected 6s left, got kind %d remaining %s", res.Kind, res.Remaining)
	}

	res, err = eng.Tick(ctx, session.ID, 6*time.Second)
	if err != nil {
		t.Fatalf("tick: %v", err)
	}
	if res.Kind != TickAdvanced {
		t.Fatalf("expected advance, got %d", res.Kind)
	}
	if res.Stage.Type != domain.StageWait || res.StageNumber != 2 || res.StageCount != 3 {
		t.Fatalf("unexpected stage after tick: %+v", res)
	}
	if res.PourTo != 50 {
		t.Fatalf("the bloom rest holds at 50 ml, got %d", res.PourTo)
	}

	res, _ = eng.Tick(ctx, session.ID, 30*time.Second)
	if res.Kind != TickAdvanced || res.PourTo != 288 {
		t.Fatalf("expected the final pour to 288 ml, got %+v", res)
	}

	res, err = eng.Tick(ctx, session.ID, 30*time.Second)
	if err != nil {
		t.Fatalf("tick: %v", err)
	}
	if res.Kind != TickFinished {
		t.Fatalf("expected finish, got %d", res.Kind)
	}

	s, _ := eng.Status(ctx, session.ID)
	if s.Status != domain.SessionFinished {
		t.Fatalf("expected finished, got %s", s.Status)
	}
	for i, st := range s.StageStates {
		if st.Status != domain.StageDone {
			t.Fatalf("stage %d: expected done, got %s", i, st.Status)
		}
	}
}

func TestProgress(t *testing.T) {
	eng, _, clock, ctx := setupEngine(t)

	session, err := eng.StartSession(ctx, "v60")
	if err != nil {
		t.Fatalf("starting session: %v", err)
	}
	clock.Add(12 * time.Second)
	if _, err := eng.Advance(ctx, session.ID); err != nil {
		t.Fatalf("advance: %v", err)
	}
	if _, err := eng.Advance(ctx, session.ID); err != nil {
		t.Fatalf("advance: %v", err)
	}

	p, err := eng.Progress(ctx, session.ID)
	if err != nil {
		t.Fatalf("progress: %v", err)
	}
	if p.StageNumber != 3 || p.StageCount != 3 {
		t.Fatalf("expected stage 3/3, got %d/%d", p.StageNumber, p.StageCount)
	}
	if p.PourTo != 288 || p.TargetWater != 288 {
		t.Fatalf("expected pour to 288 of 288, got %d of %d", p.PourTo, p.TargetWater)
	}
	if p.Elapsed != 12*time.Second {
		t.Fatalf("expected 12s elapsed, got %s", p.Elapsed)
	}
}

func TestFinishEarly(t *testing.T) {
	eng, _, _, ctx := setupEngine(t)

	session, err := eng.StartSession(ctx, "v60")
	if err != nil {
		t.Fatalf("starting session: %v", err)
	}

	s, err := eng.Finish(ctx, session.ID)
	if err != nil {
		t.Fatalf("finish: %v", err)
	}
	if s.Status != domain.SessionFinished {
		t.Fatalf("expected finished, got %s", s.Status)
	}
	if s.StageStates[0].Status != domain.StageDone || s.StageStates[2].Status != domain.StageSkipped {
		t.Fatalf("expected current done and the rest skipped, got %s and %s", s.StageStates[0].Status, s.StageStates[2].Status)
	}

	// Finishing twice is harmless.
	if _, err := eng.Finish(ctx, session.ID); err != nil {
		t.Fatalf("second finish: %v", err)
	}
}

func TestLogBrew(t *testing.T) {
	log := logger.New(logger.LevelOff, nil)
	bus := events.NewBus(log)
	ch, cancel := bus.Subscribe(4)
	defer cancel()

	eng, store, clock, ctx := setupEngine(t, WithBus(bus))
	started := clock.Now()

	session, err := eng.StartSession(ctx, "v60")
	if err != nil {
		t.Fatalf("starting session: %v", err)
	}

	result := domain.BrewResult{Rating: 4, Tasting: domain.Tasting{Body: domain.IntPtr(6)}, Notes: "juicy"}
	if _, err := eng.LogBrew(ctx, session.ID, result); !errors.Is(err, domain.ErrSessionNotFinished) {
		t.Fatalf("expected ErrSessionNotFinished, got %v", err)
	}

	clock.Add(3*time.Minute + 400*time.Millisecond)
	if _, err := eng.Finish(ctx, session.ID); err != nil {
		t.Fatalf("finish: %v", err)
	}

	if _, err := eng.LogBrew(ctx, session.ID, domain.BrewResult{Rating: 9}); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}

	brew, err := eng.LogBrew(ctx, session.ID, result)
	if err != nil {
		t.Fatalf("log brew: %v", err)
	}
	if brew.RecipeName != "Hario V60 Classic" || brew.Water != 288 || brew.Grams != 18 {
		t.Fatalf("unexpected recipe snapshot: %+v", brew)
	}
	if brew.RoasterName != "Onyx" || brew.GrinderName != "Comandante" {
		t.Fatalf("expected roaster and grinder names, got %q and %q", brew.RoasterName, brew.GrinderName)
	}
	if !brew.Date.Equal(started) {
		t.Fatalf("expected brew dated at session start, got %s", brew.Date)
	}
	if brew.ActualDurationSeconds != 180 {
		t.Fatalf("expected 180s, got %d", brew.ActualDurationSeconds)
	}

	stored, err := store.GetBrew(ctx, brew.ID)
	if err != nil {
		t.Fatalf("get brew: %v", err)
	}
	if country, ok := stored.Country(); !ok || country != "USA" {
		t.Fatalf("expected origin country USA, got %q", country)
	}
	if *stored.Body != 6 || stored.Acidity != nil {
		t.Fatal("expected only body recorded")
	}

	s, _ := eng.Status(ctx, session.ID)
	if s.Status != domain.SessionLogged || s.BrewID != brew.ID {
		t.Fatalf("expected logged session pointing at brew, got %s %q", s.Status, s.BrewID)
	}

	select {
	case ev := <-ch:
		if ev.Type != events.BrewLogged || ev.EntityID != brew.ID {
			t.Fatalf("unexpected event %+v", ev)
		}
	default:
		t.Fatal("expected a brew.logged event")
	}

	// A session logs once.
	if _, err := eng.LogBrew(ctx, session.ID, result); !errors.Is(err, domain.ErrSessionNotFinished) {
		t.Fatalf("expected ErrSessionNotFinished on second log, got %v", err)
	}
}

func TestRemindDue(t *testing.T) {
	eng, _, clock, ctx := setupEngine(t)

	session, err := eng.StartSession(ctx, "v60")
	if err != nil {
		t.Fatalf("starting session: %v", err)
	}
	if _, due, _ := eng.RemindDue(ctx, session.ID, time.Minute); due {
		t.Fatal("active sessions are never due")
	}

	if _, err := eng.Finish(ctx, session.ID); err != nil {
		t.Fatalf("finish: %v", err)
	}
	if _, due, _ := eng.RemindDue(ctx, session.ID, time.Minute); due {
		t.Fatal("expected not due before the delay")
	}

	clock.Add(2 * time.Minute)
	s, due, err := eng.RemindDue(ctx, session.ID, time.Minute)
	if err != nil {
		t.Fatalf("remind: %v", err)
	}
	if !due || !s.Reminded {
		t.Fatal("expected a reminder after the delay")
	}
	if _, due, _ := eng.RemindDue(ctx, session.ID, time.Minute); due {
		t.Fatal("expected a single reminder per session")
	}
}

func TestStatusReturnsCopy(t *testing.T) {
	eng, _, _, ctx := setupEngine(t)

	session, err := eng.StartSession(ctx, "v60")
	if err != nil {
		t.Fatalf("starting session: %v", err)
	}
	session.StageStates[0].Remaining = 0
	session.Status = domain.SessionAbandoned

	s, _ := eng.Status(ctx, session.ID)
	if s.Status != domain.SessionActive || s.StageStates[0].Remaining != 10*time.Second {
		t.Fatal("caller mutations leaked into the engine")
	}
}
