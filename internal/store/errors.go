package store

import "errors"

var (
	// ErrNotFound is returned when a record does not exist.
	ErrNotFound = errors.New("not found")

	// ErrDuplicateID is returned when adding a Pokemon whose id already exists.
	ErrDuplicateID = errors.New("duplicate id")

	// ErrInvalidTransition is returned when an update would move a Pokemon
	// out of RESOLD or modify a resold record.
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrInvalidValue is returned for values the store refuses to persist,
	// such as a negative balance.
	ErrInvalidValue = errors.New("invalid value")
)
