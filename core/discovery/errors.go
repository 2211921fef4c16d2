package discovery

import "errors"

var (
	// ErrCatalogMiss means no viable candidate was found for a title/artist
	// query after every search fallback.
	ErrCatalogMiss = errors.New("catalog miss: no viable candidate found")

	// ErrNoFilterMatch means the sampling budget ran out without an album
	// satisfying the active filters.
	ErrNoFilterMatch = errors.New("no album matched the active filters")

	// ErrEmptyPool means the library pool has no visible entries to sample.
	ErrEmptyPool = errors.New("library pool is empty")
)
