package repository

import "errors"

var (
	// ErrNotFound is returned when no record matches the id and owner.
	ErrNotFound = errors.New("record not found")
	// ErrInvalidID is returned when a referenced id is malformed for the store.
	ErrInvalidID = errors.New("invalid record id")
)
