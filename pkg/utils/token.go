package utils

import "github.com/google/uuid"

// NewGuestToken returns a fresh opaque invitation token (uuid v4).
// Tokens are random and never derived from guest data.
func NewGuestToken() string {
	return uuid.NewString()
}

// IsGuestTokenShape reports whether s looks like a token we issued.
// Callers must still answer "not found" for any miss so that shape is never leaked.
func IsGuestTokenShape(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}
