package models

import "github.com/google/uuid"

// NewID returns a time-ordered UUID (v7), so ordering by id follows
// creation order within one process.
func NewID() uuid.UUID {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New()
	}
	return id
}
