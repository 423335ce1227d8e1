package domain

import "errors"

// Common domain errors surfaced by the evaluation core.
var (
	// ErrNoText indicates that no text could be extracted from any of
	// the inputs of a request. This is terminal for the request.
	ErrNoText = errors.New("no text could be extracted from the provided documents")

	// ErrInvalidConfiguration indicates configuration failed validation.
	ErrInvalidConfiguration = errors.New("invalid configuration")
)
