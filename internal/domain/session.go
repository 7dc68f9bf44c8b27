package domain

import "time"

// Session represents a brew in progress.
type Session struct {
	ID                string
	RecipeID          string
	RecipeName        string
	TargetWater       int
	CurrentStageIndex int
	StageStates       map[int]*StageState
	Status            SessionStatus
	Reminded          bool // set once the watcher nudged for a rating
	StartedAt         time.Time
	FinishedAt        time.Time
	UpdatedAt         time.Time
	BrewID            string // set once the brew is logged
}

// SessionStatus tracks the lifecycle of a brew session.
type SessionStatus int

const (
	SessionActive SessionStatus = iota
	SessionPaused
	SessionFinished // all stages done, waiting for the result
	SessionLogged   // brew recorded
	SessionAbandoned
)

// String returns a human-readable session status.
func (s SessionStatus) String() string {
	switch s {
	case SessionActive:
		return "active"
	case SessionPaused:
		return "paused"
	case SessionFinished:
		return "finished"
	case SessionLogged:
		return "logged"
	case SessionAbandoned:
		return "abandoned"
	default:
		return "unknown"
	}
}

// StageState tracks progress of a single stage within a session.
type StageState struct {
	Status      StageStatus
	Duration    time.Duration
	Remaining   time.Duration
	StartedAt   time.Time
	CompletedAt time.Time
}

// StageStatus tracks the state of a single stage.
type StageStatus int

const (
	StagePending StageStatus = iota
	StageActive
	StageDone
	StageSkipped
)

// String returns a human-readable stage status.
func (s StageStatus) String() string {
	switch s {
	case StagePending:
		return "pending"
	case StageActive:
		return "active"
	case StageDone:
		return "done"
	case StageSkipped:
		return "skipped"
	default:
		return "unknown"
	}
}

// Elapsed returns the brew time so far. Finished sessions report their
// total duration.
func (s *Session) Elapsed(now time.Time) time.Duration {
	if s.StartedAt.IsZero() {
		return 0
	}
	if !s.FinishedAt.IsZero() {
		return s.FinishedAt.Sub(s.StartedAt)
	}
	return now.Sub(s.StartedAt)
}

// Clone returns a deep copy of the session.
func (s *Session) Clone() *Session {
	c := *s
	c.StageStates = make(map[int]*StageState, len(s.StageStates))
	for i, st := range s.StageStates {
		if st == nil {
			continue
		}
		cp := *st
		c.StageStates[i] = &cp
	}
	return &c
}
