package vetting

import "errors"

// ErrInvalidInput is returned when a caller hands the engine an empty or
// malformed domain, or a URL without a usable host.
var ErrInvalidInput = errors.New("invalid input")
