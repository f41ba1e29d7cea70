package config

import "errors"

// Configuration validation errors.
// These errors are returned by Config.Validate() so callers can use
// errors.Is() while still getting a readable message.
var (
	// ErrNoSeed is returned when no seed URL was given.
	ErrNoSeed = errors.New("no seed URL specified")

	// ErrNoOutputDir is returned when the output directory is empty.
	ErrNoOutputDir = errors.New("output directory must not be empty")

	// ErrInvalidTimeout is returned when a page or image timeout is not positive.
	ErrInvalidTimeout = errors.New("invalid timeout: must be positive")

	// ErrInvalidWorkers is returned when the download worker count is not positive.
	ErrInvalidWorkers = errors.New("invalid worker count: must be positive")

	// ErrInvalidRate is returned when the request rate is negative.
	// Use 0 to disable rate limiting.
	ErrInvalidRate = errors.New("invalid rate: must be non-negative")

	// ErrInvalidMaxBodySize is returned when the page body limit is negative.
	ErrInvalidMaxBodySize = errors.New("invalid max body size: must be non-negative")

	// ErrConflictingTransports is returned when both --proxy and --tor are set.
	ErrConflictingTransports = errors.New("conflicting transports: --proxy and --tor cannot be used together")
)
