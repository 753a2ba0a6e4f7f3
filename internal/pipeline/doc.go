// Package pipeline runs the check of a markup document as a sequence of
// steps: load the file, extract tag names with the three patterns, and tally
// them against the allow-list. Each step receives the CheckResult being
// built and fills in its part.
//
// Several documents are checked concurrently by a BatchProcessor, which
// bounds the number of running pipelines with errgroup and keeps results in
// the order the files were given.
package pipeline
