package timer

import (
	"context"
	"fmt"
	"time"

	"github.com/hammamikhairi/ottobrew/internal/domain"
	"github.com/hammamikhairi/ottobrew/internal/logger"
)

// WatcherOption configures the watcher.
type WatcherOption func(*Watcher)

// WithWatchInterval sets how often the watcher checks session state.
func WithWatchInterval(d time.Duration) WatcherOption {
	return func(w *Watcher) {
		w.interval = d
	}
}

// WithRateAfter sets how long a finished brew may go unrated before the
// watcher asks for a rating.
func WithRateAfter(d time.Duration) WatcherOption {
	return func(w *Watcher) {
		w.rateAfter = d
	}
}

// WithPausedNudge sets how long a session may stay paused before the
// watcher mentions it.
func WithPausedNudge(d time.Duration) WatcherOption {
	return func(w *Watcher) {
		w.pausedNudge = d
	}
}

// Watcher periodically inspects sessions that need the user: brews that
// finished but were never rated, and sessions left paused. Runs on a
// slower cycle than the supervisor (default: 1 minute).
type Watcher struct {
	store       domain.SessionStore
	brewer      Brewer
	notifier    domain.Notifier
	log         *logger.Logger
	interval    time.Duration
	rateAfter   time.Duration
	pausedNudge time.Duration
	now         func() time.Time
}

// NewWatcher creates a watcher with the given dependencies.
func NewWatcher(store domain.SessionStore, brewer Brewer, notifier domain.Notifier, log *logger.Logger, opts ...WatcherOption) *Watcher {
	w := &Watcher{
		store:       store,
		brewer:      brewer,
		notifier:    notifier,
		log:         log,
		interval:    1 * time.Minute,
		rateAfter:   2 * time.Minute,
		pausedNudge: 3 * time.Minute,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Run starts the watcher loop. Blocks until ctx is cancelled.
func (w *Watcher) Run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.log.Info("watcher started (interval=%s)", w.interval)

	for {
		select {
		case <-ctx.Done():
			w.log.Info("watcher stopped")
			return
		case <-ticker.C:
			w.check(ctx)
		}
	}
}

// check runs one watcher cycle.
func (w *Watcher) check(ctx context.Context) {
	sessions, err := w.store.ListActive(ctx)
	if err != nil {
		w.log.Error("watcher: listing active sessions: %v", err)
		return
	}

	for _, session := range sessions {
		w.inspect(ctx, session)
	}
}

// inspect examines a single session and decides what to say.
func (w *Watcher) inspect(ctx context.Context, session *domain.Session) {
	w.log.Debug("watcher: session=%s recipe=%q status=%s stage=%d/%d",
		session.ID, session.RecipeName, session.Status,
		session.CurrentStageIndex+1, len(session.StageStates))

	var msg string
	switch session.Status {
	case domain.SessionPaused:
		paused := w.now().Sub(session.UpdatedAt)
		if paused >= w.pausedNudge {
			msg = fmt.Sprintf("[Watcher] %s has been paused for %s. The bed is cooling.", session.RecipeName, paused.Round(time.Second))
		}
	case domain.SessionFinished:
		s, due, err := w.brewer.RemindDue(ctx, session.ID, w.rateAfter)
		if err != nil {
			w.log.Error("watcher: checking reminder for %s: %v", session.ID, err)
			return
		}
		if due {
			ago := w.now().Sub(s.FinishedAt).Round(time.Minute)
			msg = fmt.Sprintf("[Watcher] Your %s finished %s ago. How did it taste? Rate it before you forget.", s.RecipeName, ago)
		}
	}

	if msg == "" {
		return
	}
	if err := w.notifier.Notify(ctx, msg); err != nil {
		w.log.Error("watcher: notify: %v", err)
	}
}
