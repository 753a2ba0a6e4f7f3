// Package main provides the entry point for the tagbalance CLI.
//
// tagbalance counts opening and closing occurrences of common markup
// elements in a document and reports, per element, whether the counts are
// balanced. It is a quick diagnostic for hand-written markup, not a
// validator: nesting order is never checked.
//
// Usage:
//
//	tagbalance <file> [file...]
//	tagbalance --lang ru page.html
//	tagbalance history page.html
//
// See --help for all available options.
package main

// main is the entry point for tagbalance.
func main() {
	Execute()
}
