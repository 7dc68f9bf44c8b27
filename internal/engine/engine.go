// Package engine implements the timed brew session state machine.
package engine

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/hammamikhairi/ottobrew/internal/domain"
	"github.com/hammamikhairi/ottobrew/internal/events"
	"github.com/hammamikhairi/ottobrew/internal/logger"
	"github.com/hammamikhairi/ottobrew/internal/recipe"
)

// Catalog is what the engine needs from the catalog store: recipes to
// brew, the linked roaster and grinder for the snapshot, and somewhere to
// record the finished brew.
type Catalog interface {
	GetRecipe(ctx context.Context, id string) (*domain.Recipe, error)
	GetRoaster(ctx context.Context, id string) (*domain.Roaster, error)
	GetGrinder(ctx context.Context, id string) (*domain.Grinder, error)
	SaveBrew(ctx context.Context, brew *domain.Brew) error
}

// Option configures the engine.
type Option func(*Engine)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

// WithBus publishes BrewLogged events on bus.
func WithBus(bus *events.Bus) Option {
	return func(e *Engine) {
		e.bus = bus
	}
}

// Engine manages brew sessions. It depends only on interfaces and is
// fully testable with in-memory stores.
//
// All session mutations go through the engine and are serialized by its
// mutex; callers receive copies.
type Engine struct {
	catalog Catalog
	store   domain.SessionStore
	log     *logger.Logger
	bus     *events.Bus
	now     func() time.Time

	mu sync.Mutex
}

// New creates a brew engine with the given dependencies and options.
func New(catalog Catalog, store domain.SessionStore, log *logger.Logger, opts ...Option) *Engine {
	e := &Engine{
		catalog: catalog,
		store:   store,
		log:     log,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// stagesOf returns the recipe's stages in pour order.
func stagesOf(r *domain.Recipe) []domain.Stage {
	return recipe.NewComposition(r.Stages).Stages()
}

// StartSession begins a new timed brew for the given recipe. The first
// stage starts immediately.
func (e *Engine) StartSession(ctx context.Context, recipeID string) (*domain.Session, error) {
	r, err := e.catalog.GetRecipe(ctx, recipeID)
	if err != nil {
		return nil, fmt.Errorf("getting recipe: %w", err)
	}
	stages := stagesOf(r)
	if len(stages) == 0 {
		return nil, domain.ErrNoStages
	}

	now := e.now()
	session := &domain.Session{
		ID:                domain.NewID(),
		RecipeID:          r.ID,
		RecipeName:        r.Name,
		TargetWater:       r.WaterAmount,
		CurrentStageIndex: 0,
		StageStates:       make(map[int]*domain.StageState, len(stages)),
		Status:            domain.SessionActive,
		StartedAt:         now,
		UpdatedAt:         now,
	}

	for i, st := range stages {
		d := time.Duration(st.Seconds) * time.Second
		session.StageStates[i] = &domain.StageState{
			Status:    domain.StagePending,
			Duration:  d,
			Remaining: d,
		}
	}
	session.StageStates[0].Status = domain.StageActive
	session.StageStates[0].StartedAt = now

	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.store.Save(ctx, session); err != nil {
		return nil, fmt.Errorf("saving session: %w", err)
	}

	e.log.Info("started session %s for recipe %q (%d stages, %d ml)", session.ID, r.Name, len(stages), r.WaterAmount)
	return session.Clone(), nil
}

// CurrentStage returns the current stage and its state.
func (e *Engine) CurrentStage(ctx context.Context, sessionID string) (*domain.Stage, *domain.StageState, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	session, stages, err := e.load(ctx, sessionID)
	if err != nil {
		return nil, nil, err
	}

	idx := session.CurrentStageIndex
	if idx >= len(stages) {
		return nil, nil, domain.ErrNoMoreStages
	}
	stage := stages[idx]
	state := *session.StageStates[idx]
	return &stage, &state, nil
}

// load returns the session and its recipe's stages. Must hold e.mu.
func (e *Engine) load(ctx context.Context, sessionID string) (*domain.Session, []domain.Stage, error) {
	session, err := e.store.Load(ctx, sessionID)
	if err != nil {
		return nil, nil, fmt.Errorf("loading session: %w", err)
	}
	r, err := e.catalog.GetRecipe(ctx, session.RecipeID)
	if err != nil {
		return nil, nil, fmt.Errorf("getting recipe: %w", err)
	}
	return session, stagesOf(r), nil
}

// requireActive maps a non-active status to its error.
func requireActive(session *domain.Session) error {
	switch session.Status {
	case domain.SessionActive:
		return nil
	case domain.SessionPaused:
		return domain.ErrSessionPaused
	default:
		return domain.ErrSessionNotActive
	}
}

// Advance completes the current stage and starts the next. After the last
// stage the session finishes and ErrNoMoreStages is returned.
func (e *Engine) Advance(ctx context.Context, sessionID string) (*domain.Stage, error) {
	return e.step(ctx, sessionID, domain.StageDone)
}

// Skip marks the current stage skipped and starts the next.
func (e *Engine) Skip(ctx context.Context, sessionID string) (*domain.Stage, error) {
	return e.step(ctx, sessionID, domain.StageSkipped)
}

func (e *Engine) step(ctx context.Context, sessionID string, mark domain.StageStatus) (*domain.Stage, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	session, stages, err := e.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if err := requireActive(session); err != nil {
		return nil, err
	}
	return e.moveOn(ctx, session, stages, mark)
}

// moveOn closes the current stage with mark and activates the next one,
// finishing the session after the last. Must hold e.mu.
func (e *Engine) moveOn(ctx context.Context, session *domain.Session, stages []domain.Stage, mark domain.StageStatus) (*domain.Stage, error) {
	now := e.now()
	current := session.StageStates[session.CurrentStageIndex]
	current.Status = mark
	current.CompletedAt = now
	if mark == domain.StageDone {
		current.Remaining = 0
	}

	nextIdx := session.CurrentStageIndex + 1
	if nextIdx >= len(stages) {
		e.finish(session, now)
		if err := e.store.Save(ctx, session); err != nil {
			return nil, fmt.Errorf("saving session: %w", err)
		}
		e.log.Info("session %s finished after %s", session.ID, session.Elapsed(now).Round(time.Second))
		return nil, domain.ErrNoMoreStages
	}

	session.CurrentStageIndex = nextIdx
	session.StageStates[nextIdx].Status = domain.StageActive
	session.StageStates[nextIdx].StartedAt = now
	session.UpdatedAt = now

	if err := e.store.Save(ctx, session); err != nil {
		return nil, fmt.Errorf("saving session: %w", err)
	}

	e.log.Debug("session %s %s to stage %d/%d", session.ID, mark, nextIdx+1, len(stages))
	stage := stages[nextIdx]
	return &stage, nil
}

func (e *Engine) finish(session *domain.Session, now time.Time) {
	session.Status = domain.SessionFinished
	session.FinishedAt = now
	session.UpdatedAt = now
}

// Tick counts elapsed time off the current stage of an active session.
// When the stage runs out it advances, and after the last stage the
// session finishes. Sessions that are not active are left alone.
func (e *Engine) Tick(ctx context.Context, sessionID string, elapsed time.Duration) (TickResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	session, stages, err := e.load(ctx, sessionID)
	if err != nil {
		return TickResult{}, err
	}
	if session.Status != domain.SessionActive {
		return TickResult{}, nil
	}

	state := session.StageStates[session.CurrentStageIndex]
	state.Remaining -= elapsed
	if state.Remaining > 0 {
		session.UpdatedAt = e.now()
		if err := e.store.Save(ctx, session); err != nil {
			return TickResult{}, fmt.Errorf("saving session: %w", err)
		}
		return TickResult{
			Kind:        TickCounting,
			Remaining:   state.Remaining,
			StageNumber: session.CurrentStageIndex + 1,
			StageCount:  len(stages),
		}, nil
	}

	next, err := e.moveOn(ctx, session, stages, domain.StageDone)
	switch {
	case errors.Is(err, domain.ErrNoMoreStages):
		return TickResult{Kind: TickFinished}, nil
	case err != nil:
		return TickResult{}, err
	}
	return TickResult{
		Kind:        TickAdvanced,
		Stage:       next,
		PourTo:      pourTo(stages, session.CurrentStageIndex),
		Remaining:   session.StageStates[session.CurrentStageIndex].Remaining,
		StageNumber: session.CurrentStageIndex + 1,
		StageCount:  len(stages),
	}, nil
}

// TickKind says what a tick did.
type TickKind int

const (
	// TickIdle means the session was not running.
	TickIdle TickKind = iota
	// TickCounting means the current stage still has time left.
	TickCounting
	// TickAdvanced means a new stage started.
	TickAdvanced
	// TickFinished means the last stage ended.
	TickFinished
)

// TickResult describes the outcome of a tick.
type TickResult struct {
	Kind        TickKind
	Stage       *domain.Stage // the new stage when Kind is TickAdvanced
	PourTo      int           // scale reading to reach by the end of Stage
	Remaining   time.Duration
	StageNumber int
	StageCount  int
}

// pourTo is the cumulative water through stage idx.
func pourTo(stages []domain.Stage, idx int) int {
	return recipe.NewComposition(stages).CumulativeWaterThrough(idx)
}

// Pause pauses an active session. The current stage's clock stops.
func (e *Engine) Pause(ctx context.Context, sessionID string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	session, err := e.store.Load(ctx, sessionID)
	if err != nil {
		return fmt.Errorf("loading session: %w", err)
	}
	if err := requireActive(session); err != nil {
		return err
	}

	session.Status = domain.SessionPaused
	session.UpdatedAt = e.now()
	if err := e.store.Save(ctx, session); err != nil {
		return fmt.Errorf("saving session: %w", err)
	}

	e.log.Info("session %s paused", sessionID)
	return nil
}

// Resume resumes a paused session.
func (e *Engine) Resume(ctx context.Context, sessionID string) (*domain.Session, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	session, err := e.store.Load(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("loading session: %w", err)
	}
	if session.Status != domain.SessionPaused {
		return nil, domain.ErrSessionNotActive
	}

	session.Status = domain.SessionActive
	session.UpdatedAt = e.now()
	if err := e.store.Save(ctx, session); err != nil {
		return nil, fmt.Errorf("saving session: %w", err)
	}

	e.log.Info("session %s resumed", sessionID)
	return session.Clone(), nil
}

// Status returns a copy of the full session state.
func (e *Engine) Status(ctx context.Context, sessionID string) (*domain.Session, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	session, err := e.store.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return session.Clone(), nil
}

// Abandon marks a session as abandoned. Nothing is logged.
func (e *Engine) Abandon(ctx context.Context, sessionID string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	session, err := e.store.Load(ctx, sessionID)
	if err != nil {
		return fmt.Errorf("loading session: %w", err)
	}
	if session.Status == domain.SessionLogged {
		return domain.ErrSessionNotActive
	}

	session.Status = domain.SessionAbandoned
	session.UpdatedAt = e.now()
	if err := e.store.Save(ctx, session); err != nil {
		return fmt.Errorf("saving session: %w", err)
	}

	e.log.Info("session %s abandoned", sessionID)
	return nil
}

// Progress is a snapshot of where a brew stands.
type Progress struct {
	StageNumber int // 1-based
	StageCount  int
	Stage       domain.Stage
	Remaining   time.Duration // left on the current stage
	PourTo      int           // scale reading to reach by the end of the current stage
	TargetWater int
	Elapsed     time.Duration
	Status      domain.SessionStatus
}

// Progress reports the current stage, the cumulative water target
// through it and the time spent so far.
func (e *Engine) Progress(ctx context.Context, sessionID string) (Progress, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	session, stages, err := e.load(ctx, sessionID)
	if err != nil {
		return Progress{}, err
	}

	idx := session.CurrentStageIndex
	if idx >= len(stages) {
		idx = len(stages) - 1
	}
	return Progress{
		StageNumber: idx + 1,
		StageCount:  len(stages),
		Stage:       stages[idx],
		Remaining:   session.StageStates[idx].Remaining,
		PourTo:      pourTo(stages, idx),
		TargetWater: session.TargetWater,
		Elapsed:     session.Elapsed(e.now()),
		Status:      session.Status,
	}, nil
}

// Finish stops the clock: the current stage is done, any later stages are
// skipped, and the session waits for its result.
func (e *Engine) Finish(ctx context.Context, sessionID string) (*domain.Session, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	session, err := e.store.Load(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("loading session: %w", err)
	}
	switch session.Status {
	case domain.SessionFinished:
		return session.Clone(), nil
	case domain.SessionActive, domain.SessionPaused:
	default:
		return nil, domain.ErrSessionNotActive
	}

	now := e.now()
	for i := session.CurrentStageIndex; i < len(session.StageStates); i++ {
		st := session.StageStates[i]
		if st == nil {
			continue
		}
		if i == session.CurrentStageIndex {
			st.Status = domain.StageDone
		} else {
			st.Status = domain.StageSkipped
		}
		st.CompletedAt = now
	}
	e.finish(session, now)

	if err := e.store.Save(ctx, session); err != nil {
		return nil, fmt.Errorf("saving session: %w", err)
	}
	e.log.Info("session %s finished by hand after %s", sessionID, session.Elapsed(now).Round(time.Second))
	return session.Clone(), nil
}

// LogBrew records the finished session as a brew. The brew copies the
// recipe, roaster and grinder as they are now, so later edits never
// rewrite history.
func (e *Engine) LogBrew(ctx context.Context, sessionID string, result domain.BrewResult) (*domain.Brew, error) {
	if err := result.Validate(); err != nil {
		return nil, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	session, err := e.store.Load(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("loading session: %w", err)
	}
	if session.Status != domain.SessionFinished {
		return nil, domain.ErrSessionNotFinished
	}

	r, err := e.catalog.GetRecipe(ctx, session.RecipeID)
	if err != nil {
		return nil, fmt.Errorf("getting recipe: %w", err)
	}

	brew := &domain.Brew{
		ID:                    domain.NewID(),
		RecipeName:            r.Name,
		Grams:                 r.Grams,
		Water:                 r.WaterAmount,
		Ratio:                 r.Ratio,
		Temperature:           r.Temperature,
		GrindSize:             r.GrindSize,
		Rating:                result.Rating,
		Acidity:               result.Tasting.Acidity,
		Bitterness:            result.Tasting.Bitterness,
		Body:                  result.Tasting.Body,
		Sweetness:             result.Tasting.Sweetness,
		TDS:                   result.Tasting.TDS,
		Date:                  session.StartedAt,
		ActualDurationSeconds: int(math.Round(session.Elapsed(e.now()).Seconds())),
		Notes:                 result.Notes,
		Origin:                &domain.BrewOrigin{RecipeID: r.ID},
	}
	if r.RoasterID != "" {
		if ro, err := e.catalog.GetRoaster(ctx, r.RoasterID); err == nil {
			brew.RoasterName = ro.Name
		} else {
			e.log.Warn("brew %s: roaster %s unavailable: %v", brew.ID, r.RoasterID, err)
		}
	}
	if r.GrinderID != "" {
		if g, err := e.catalog.GetGrinder(ctx, r.GrinderID); err == nil {
			brew.GrinderName = g.Name
		} else {
			e.log.Warn("brew %s: grinder %s unavailable: %v", brew.ID, r.GrinderID, err)
		}
	}

	if err := e.catalog.SaveBrew(ctx, brew); err != nil {
		return nil, fmt.Errorf("saving brew: %w", err)
	}

	session.Status = domain.SessionLogged
	session.BrewID = brew.ID
	session.UpdatedAt = e.now()
	if err := e.store.Save(ctx, session); err != nil {
		return nil, fmt.Errorf("saving session: %w", err)
	}
	if e.bus != nil {
		e.bus.Publish(events.BrewLogged, brew.ID)
	}

	e.log.Info("logged brew %s from session %s (rating %d, %ds)", brew.ID, sessionID, brew.Rating, brew.ActualDurationSeconds)
	return brew, nil
}

// RemindDue reports whether a finished, unlogged session has waited at
// least after for its result and has not been reminded yet. A true result
// marks the session reminded, so each session is nudged once.
func (e *Engine) RemindDue(ctx context.Context, sessionID string, after time.Duration) (*domain.Session, bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	session, err := e.store.Load(ctx, sessionID)
	if err != nil {
		return nil, false, fmt.Errorf("loading session: %w", err)
	}
	if session.Status != domain.SessionFinished || session.Reminded {
		return nil, false, nil
	}
	if e.now().Sub(session.FinishedAt) < after {
		return nil, false, nil
	}

	session.Reminded = true
	if err := e.store.Save(ctx, session); err != nil {
		return nil, false, fmt.Errorf("saving session: %w", err)
	}
	return session.Clone(), true, nil
}
