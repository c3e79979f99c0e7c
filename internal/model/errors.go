package model

import "errors"

var (
	// ErrNotFound is returned by stores when no row matches.
	ErrNotFound = errors.New("record not found")
	// ErrValidation wraps input errors that should be shown to the user as-is.
	ErrValidation = errors.New("invalid input")
)
