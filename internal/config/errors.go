package config

import "errors"

// Configuration validation errors.
// These errors are returned by Config.Validate() so callers can use
// errors.Is() while still printing a readable message.
var (
	// ErrNoFiles is returned when no markup file is given.
	ErrNoFiles = errors.New("no file specified: provide the path of a markup file")

	// ErrInvalidConcurrency is returned when the concurrency is not positive.
	ErrInvalidConcurrency = errors.New("invalid concurrency: must be positive")

	// ErrConflictingReportFormats is returned when both --json and --markdown
	// are specified.
	ErrConflictingReportFormats = errors.New("conflicting report formats: --json and --markdown cannot be used together")

	// ErrUnsupportedLanguage is returned when the language cannot be matched
	// to a supported one.
	ErrUnsupportedLanguage = errors.New("unsupported language")

	// ErrInvalidTagName is returned when an extra tag name could never be
	// captured by the tag patterns (it must be a letter followed by letters
	// or digits).
	ErrInvalidTagName = errors.New("invalid tag name")

	// ErrInvalidFormat is returned when the configuration file names an
	// unknown report format.
	ErrInvalidFormat = errors.New("invalid report format: must be text, json or markdown")

	// ErrTeeWithoutOutput is returned when --tee is given without --output.
	ErrTeeWithoutOutput = errors.New("--tee requires --output")
)
