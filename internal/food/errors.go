package food

import "errors"

var (
	// ErrNotFound is returned by single-item lookups with no match,
	// so callers can tell "not there" from "try again".
	ErrNotFound = errors.New("not found")

	// ErrUpstreamUnavailable wraps provider network or HTTP failures.
	// It is isolated per source and never escapes the federation API.
	ErrUpstreamUnavailable = errors.New("upstream provider unavailable")

	// ErrConfigurationMissing is returned when an optional credential
	// is absent; the affected feature degrades to a no-op.
	ErrConfigurationMissing = errors.New("required configuration missing")

	// ErrScrapeItemInvalid marks a record lacking a name or resolvable
	// energy value. Such items are counted and skipped, never stored.
	ErrScrapeItemInvalid = errors.New("scraped item lacks required fields")
)
