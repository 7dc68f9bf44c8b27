// Package timer implements the background supervisor that runs the clock
// of active brew sessions and announces each stage as it starts.
package timer

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/hammamikhairi/ottobrew/internal/domain"
	"github.com/hammamikhairi/ottobrew/internal/engine"
	"github.com/hammamikhairi/ottobrew/internal/logger"
)

// Brewer is the part of the engine the supervisor and watcher drive.
type Brewer interface {
	Tick(ctx context.Context, sessionID string, elapsed time.Duration) (engine.TickResult, error)
	RemindDue(ctx context.Context, sessionID string, after time.Duration) (*domain.Session, bool, error)
}

var _ Brewer = (*engine.Engine)(nil)

// Option configures the supervisor.
type Option func(*Supervisor)

// WithTickInterval sets how often the supervisor advances the clock.
func WithTickInterval(d time.Duration) Option {
	return func(s *Supervisor) {
		s.tickInterval = d
	}
}

// WithAlmostDoneThreshold sets how close to the end of a stage the
// supervisor warns that the next one is coming.
func WithAlmostDoneThreshold(d time.Duration) Option {
	return func(s *Supervisor) {
		s.almostDoneThreshold = d
	}
}

// WithWatcher enables the session watcher with the given options.
func WithWatcher(opts ...WatcherOption) Option {
	return func(s *Supervisor) {
		s.watch = true
		s.watcherOpts = opts
	}
}

// Supervisor runs in the background and ticks the current stage of every
// active session. Optionally runs a Watcher on a slower cycle.
type Supervisor struct {
	store               domain.SessionStore
	brewer              Brewer
	notifier            domain.Notifier
	log                 *logger.Logger
	tickInterval        time.Duration
	almostDoneThreshold time.Duration

	watch       bool
	watcherOpts []WatcherOption

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// New creates a supervisor with the given dependencies and options.
func New(store domain.SessionStore, brewer Brewer, notifier domain.Notifier, log *logger.Logger, opts ...Option) *Supervisor {
	s := &Supervisor{
		store:               store,
		brewer:              brewer,
		notifier:            notifier,
		log:                 log,
		tickInterval:        1 * time.Second,
		almostDoneThreshold: 5 * time.Second,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start begins the background supervisor loop. Non-blocking.
func (s *Supervisor) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		s.log.Warn("timer supervisor already running")
		return
	}

	childCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.running = true

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.loop(childCtx)
	}()

	if s.watch {
		w := NewWatcher(s.store, s.brewer, s.notifier, s.log, s.watcherOpts...)
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			w.Run(childCtx)
		}()
	}

	s.log.Info("timer supervisor started (tick=%s)", s.tickInterval)
}

// Stop shuts down the supervisor and waits for its goroutines to exit.
func (s *Supervisor) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.cancel()
	s.running = false
	s.mu.Unlock()

	s.wg.Wait()
	s.log.Info("timer supervisor stopped")
}

// loop is the main tick loop.
func (s *Supervisor) loop(ctx context.Context) {
	ticker := time.NewTicker(s.tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

// tick runs one cycle over every session that still needs attention.
func (s *Supervisor) tick(ctx context.Context) {
	sessions, err := s.store.ListActive(ctx)
	if err != nil {
		s.log.Error("supervisor: listing active sessions: %v", err)
		return
	}

	for _, session := range sessions {
		if session.Status != domain.SessionActive {
			continue
		}
		s.processSession(ctx, session.ID)
	}
}

// processSession ticks one session and announces what happened.
func (s *Supervisor) processSession(ctx context.Context, sessionID string) {
	res, err := s.brewer.Tick(ctx, sessionID, s.tickInterval)
	if err != nil {
		s.log.Error("supervisor: ticking session %s: %v", sessionID, err)
		return
	}

	switch res.Kind {
	case engine.TickCounting:
		// Warn once, on the tick that crosses the threshold.
		if res.Remaining <= s.almostDoneThreshold && res.Remaining+s.tickInterval > s.almostDoneThreshold {
			s.notify(ctx, fmt.Sprintf("[Brew] %s left on this stage.", formatRemaining(res.Remaining)))
		}
	case engine.TickAdvanced:
		s.notify(ctx, stageMessage(res))
	case engine.TickFinished:
		if err := s.notifier.NotifyUrgent(ctx, "[Brew] Drawdown done. How was it? Log your brew."); err != nil {
			s.log.Error("supervisor: notifying finish: %v", err)
		}
	}
}

func (s *Supervisor) notify(ctx context.Context, msg string) {
	if err := s.notifier.Notify(ctx, msg); err != nil {
		s.log.Error("supervisor: notify: %v", err)
	}
}

// stageMessage is the cue spoken when a new stage starts.
func stageMessage(res engine.TickResult) string {
	st := res.Stage
	dur := formatRemaining(time.Duration(st.Seconds) * time.Second)
	if st.Type == domain.StageWait {
		return fmt.Sprintf("[Brew] Stage %d/%d: wait %s. Scale stays at %d ml.", res.StageNumber, res.StageCount, dur, res.PourTo)
	}
	return fmt.Sprintf("[Brew] Stage %d/%d: %s pour to %d ml over %s.", res.StageNumber, res.StageCount, st.Type, res.PourTo, dur)
}

// formatRemaining returns a human-friendly spoken duration. Rounds to the
// nearest minute once there's at least 1 minute left.
func formatRemaining(d time.Duration) string {
	d = d.Round(time.Second)
	totalSec := int(d.Seconds())
	if totalSec < 60 {
		if totalSec == 1 {
			return "1 second"
		}
		return fmt.Sprintf("%d seconds", totalSec)
	}
	m := (totalSec + 30) / 60
	if m == 1 {
		return "1 minute"
	}
	return fmt.Sprintf("%d minutes", m)
}
