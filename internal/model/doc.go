// Package model defines the data structures shared across tagbalance.
//
// This package contains the following main types:
//   - CheckResult: the outcome of checking one markup document
//   - TagCount: opening and closing occurrences of one element name
//   - Status: whether a tag (or a whole document) is balanced
//   - Summary: aggregate counts over a CheckResult
//
// Scanner, pipeline, report writers and the history database all exchange
// these types, so they live in a leaf package with no internal imports.
// Every type is serializable to JSON for report output and database storage.
package model
