package domain

import "github.com/google/uuid"

// NewID returns a fresh time-ordered UUID string for a new entity.
func NewID() string {
	return uuid.Must(uuid.NewV7()).String()
}

// ValidID reports whether s is a well-formed UUID.
func ValidID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}
