// Package log provides the structured logger used by tagbalance, built on
// top of the standard slog package.
//
// The PathHandler wraps any slog.Handler and rewrites string attributes that
// start with the user's home directory to "~", so debug logs that mention the
// checked files can be pasted into an issue without exposing the account
// name.
//
// # Usage
//
//	logger := log.NewLogger(os.Stderr, verbose)
//	logger.Debug("loaded document", "file", "/home/alice/site/index.html")
//	// file=~/site/index.html
//
//	slog.SetDefault(logger)
package log
