package config

import "errors"

// Configuration validation errors.
// These errors are returned by Config.ValidateDiscover and Config.ValidateConvert
// so callers can match them with errors.Is.
var (
	// ErrNoStartURL is returned when discover is run without a start address.
	ErrNoStartURL = errors.New("no start URL specified")

	// ErrNoInput is returned when convert is run without a URL or URL list file.
	ErrNoInput = errors.New("no input specified: provide a URL or a text file with one URL per line")

	// ErrInvalidTimeout is returned when a navigation or wait timeout is not positive.
	ErrInvalidTimeout = errors.New("invalid timeout: must be positive")

	// ErrInvalidSettleDelay is returned when the settle delay is negative.
	// Use 0 to skip the pause after a page becomes ready.
	ErrInvalidSettleDelay = errors.New("invalid settle delay: must be non-negative")

	// ErrInvalidMaxPages is returned when the page cap is negative.
	ErrInvalidMaxPages = errors.New("invalid max pages: must be non-negative")

	// ErrEmptySelector is returned when the navigation or content selector is empty.
	ErrEmptySelector = errors.New("empty CSS selector")

	// ErrEmptyOutput is returned when the output file or directory is empty.
	ErrEmptyOutput = errors.New("empty output path")
)
