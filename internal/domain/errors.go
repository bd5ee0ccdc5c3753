package domain

import "errors"

var (
	// ErrNotFound signals a missing resource, such as an unknown run id.
	ErrNotFound = errors.New("not found")
	// ErrStorage signals that persistence could not complete. Callers may retry.
	ErrStorage = errors.New("storage unavailable")
	// ErrUpstreamUnavailable signals that the catalog source could not be reached.
	ErrUpstreamUnavailable = errors.New("catalog upstream unavailable")
	// ErrInvalidRequest signals a request that cannot be interpreted at all.
	ErrInvalidRequest = errors.New("invalid request")
)
