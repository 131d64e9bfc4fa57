package domain

import "errors"

// Error kinds surfaced by the engine. Callers branch with errors.Is.
var (
	// ErrInvalidInput marks a missing or malformed scan record, or scan
	// output that cannot be parsed at all.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUpstreamUnavailable marks a failed vulnerability source call.
	// Sources degrade it to an empty result before it reaches callers.
	ErrUpstreamUnavailable = errors.New("upstream unavailable")

	// ErrNoDevicesFound is the terminal outcome of an ingest with nothing to store.
	ErrNoDevicesFound = errors.New("no devices found")

	// ErrStorageFailure marks an aborted transaction or failed write.
	ErrStorageFailure = errors.New("storage failure")

	// ErrUnauthorized marks a missing or invalid caller identity.
	ErrUnauthorized = errors.New("unauthorized")
)
