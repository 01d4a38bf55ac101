package core

import "github.com/google/uuid"

// GenerateID returns a time-ordered identifier: a millisecond timestamp prefix
// followed by random bits. Uniqueness is probabilistic and never checked.
func GenerateID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}
