package pipeline

import "errors"

var (
	// ErrUnknownDirection is returned when a direction is not in the registry.
	ErrUnknownDirection = errors.New("unknown direction")
	// ErrEmptyInput is returned for empty or whitespace-only input.
	ErrEmptyInput = errors.New("empty input")
	// ErrMalformedInput is returned for input that is not valid UTF-8.
	ErrMalformedInput = errors.New("malformed input")
	// ErrConfiguration is returned by NewRegistry for missing or
	// contradictory resource settings.
	ErrConfiguration = errors.New("configuration error")
)
