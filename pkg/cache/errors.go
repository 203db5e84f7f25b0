package cache

import "errors"

// Sentinel errors for caching operations.
var (
	// ErrEmptyKey is returned when a caller passes an empty logical key.
	ErrEmptyKey = errors.New("cache key cannot be empty")

	// ErrNotDirectory is returned when the cache location exists but is not a directory.
	ErrNotDirectory = errors.New("cache location is not a directory")
)
