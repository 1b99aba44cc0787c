package cache

import "github.com/google/uuid"

// NewSessionID returns a random (v4) UUID string.
func NewSessionID() string {
	return uuid.NewString()
}
