package domain

import "errors"

// Location resolution failures. Permission refusals and transient position
// failures are absorbed by callers: discovery degrades to a no-radius search
// instead of failing the whole query.
var (
	ErrPermissionDenied    = errors.New("location permission denied")
	ErrPositionUnavailable = errors.New("position unavailable")
	ErrLocationTimeout     = errors.New("location resolution timed out")
)

// ErrListingNotFound is returned when a listing ID does not exist.
var ErrListingNotFound = errors.New("listing not found")
