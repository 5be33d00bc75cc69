package store

import "errors"

var (
	// ErrDuplicate means a similar garment is already waiting for its owner.
	ErrDuplicate = errors.New("store: similar garment already registered")
	// ErrNotFound means no garment has the requested id.
	ErrNotFound = errors.New("store: garment not found")
)
