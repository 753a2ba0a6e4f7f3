// Package database stores check results in SQLite so that later runs can
// be compared with earlier ones.
//
// HistoryDB keeps one row per saved check in the check_results table: the
// file path, the time of the check, the SHA3-256 hash of the content, the
// full result as JSON and a small summary of balanced and unbalanced tags.
// The pure-Go modernc.org/sqlite driver is used, so the binary needs no cgo.
package database
