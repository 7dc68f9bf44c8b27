package domain

import (
	"errors"
	"strings"
)

// Sentinel errors used across layers.
var (
	ErrNotFound           = errors.New("not found")
	ErrAlreadyExists      = errors.New("already exists")
	ErrValidation         = errors.New("validation failed")
	ErrSessionNotActive   = errors.New("session is not active")
	ErrSessionPaused      = errors.New("session is paused")
	ErrSessionNotFinished = errors.New("session is not finished")
	ErrNoMoreStages       = errors.New("no more stages in recipe")
	ErrNoStages           = errors.New("recipe has no stages")
)

// ValidationError is a user-recoverable failure listing every problem
// found in a form. It matches ErrValidation with errors.Is.
type ValidationError struct {
	Problems []Problem
}

// Problem is a single invalid field.
type Problem struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Problems))
	for _, p := range e.Problems {
		parts = append(parts, p.Field+": "+p.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Is lets errors.Is(err, ErrValidation) match.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// Add records a problem.
func (e *ValidationError) Add(field, message string) {
	e.Problems = append(e.Problems, Problem{Field: field, Message: message})
}

// Has reports whether a problem was recorded for field.
func (e *ValidationError) Has(field string) bool {
	for _, p := range e.Problems {
		if p.Field == field {
			return true
		}
	}
	return false
}

// Err returns nil when no problems were recorded.
func (e *ValidationError) Err() error {
	if len(e.Problems) == 0 {
		return nil
	}
	return e
}
