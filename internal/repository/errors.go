package repository

import "errors"

// Duplicate-identity errors are surfaced from the storage layer's unique
// constraints rather than pre-checked, so concurrent signups race safely.
var (
	ErrDuplicateUsername = errors.New("username already exists")
	ErrDuplicateEmail    = errors.New("email already exists")
)
