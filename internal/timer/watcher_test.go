package timer

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/hammamikhairi/ottobrew/internal/domain"
	"github.com/hammamikhairi/ottobrew/internal/logger"
)

func newTestWatcher(f *fixture, n *mockNotifier, opts ...WatcherOption) *Watcher {
	w := NewWatcher(f.store, f.eng, n, logger.New(logger.LevelOff, nil), opts...)
	w.now = f.clock
	return w
}

func TestWatcherRemindsUnratedBrewOnce(t *testing.T) {
	f := newFixture(t)
	notifier := &mockNotifier{}
	ctx := context.Background()
	session := f.start(t)

	if _, err := f.eng.Finish(ctx, session.ID); err != nil {
		t.Fatalf("finish: %v", err)
	}

	w := newTestWatcher(f, notifier, WithRateAfter(2*time.Minute))
	w.check(ctx)
	if messages, _ := notifier.snapshot(); len(messages) != 0 {
		t.Fatalf("expected no reminder yet, got %v", messages)
	}

	f.advance(5 * time.Minute)
	w.check(ctx)
	w.check(ctx)

	messages, _ := notifier.snapshot()
	if len(messages) != 1 {
		t.Fatalf("expected exactly one reminder, got %v", messages)
	}
	if !strings.Contains(messages[0], "Morning Brew finished 5m0s ago") {
		t.Fatalf("unexpected reminder %q", messages[0])
	}
}

func TestWatcherPausedSessionNudge(t *testing.T) {
	f := newFixture(t)
	notifier := &mockNotifier{}
	ctx := context.Background()
	session := f.start(t)

	if err := f.eng.Pause(ctx, session.ID); err != nil {
		t.Fatalf("pause: %v", err)
	}

	w := newTestWatcher(f, notifier, WithPausedNudge(3*time.Minute))
	w.check(ctx)
	if messages, _ := notifier.snapshot(); len(messages) != 0 {
		t.Fatalf("expected no nudge right after pausing, got %v", messages)
	}

	f.advance(4 * time.Minute)
	w.check(ctx)
	messages, _ := notifier.snapshot()
	if len(messages) != 1 || !strings.Contains(messages[0], "paused for 4m0s") {
		t.Fatalf("expected a paused nudge, got %v", messages)
	}
}

func TestWatcherIgnoresLoggedBrews(t *testing.T) {
	f := newFixture(t)
	notifier := &mockNotifier{}
	ctx := context.Background()
	session := f.start(t)

	if _, err := f.eng.Finish(ctx, session.ID); err != nil {
		t.Fatalf("finish: %v", err)
	}
	if _, err := f.eng.LogBrew(ctx, session.ID, domain.BrewResult{Rating: 4}); err != nil {
		t.Fatalf("log brew: %v", err)
	}

	f.advance(time.Hour)
	newTestWatcher(f, notifier).check(ctx)
	if messages, _ := notifier.snapshot(); len(messages) != 0 {
		t.Fatalf("expected silence for a logged brew, got %v", messages)
	}
}
