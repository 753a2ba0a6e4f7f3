package model

import (
	"maps"
	"slices"
	"time"
)

// CheckResult is the outcome of checking one markup document.
// It is filled step by step by the pipeline and then handed to report
// writers and, optionally, to the history database.
type CheckResult struct {
	// File is the path of the checked document as given by the user.
	File string `json:"file"`

	// CheckedAt is when the check was started.
	CheckedAt time.Time `json:"checked_at"`

	// ContentHash is the hex SHA3-256 digest of the document content.
	// It lets the history command tell whether a file changed between checks.
	ContentHash string `json:"content_hash,omitempty"`

	// Tags holds one entry per recognized element name, sorted by name.
	Tags []TagCount `json:"tags"`

	// SelfClosing is the tally of literal `<name .../>` forms.
	// It is recorded for completeness and never used by report lines;
	// self-closing forms are already included in TagCount.Open.
	SelfClosing map[string]int `json:"self_closing,omitempty"`

	// PerformedSteps lists the pipeline steps that completed, in order.
	PerformedSteps []StepRecord `json:"performed_steps,omitempty"`

	// Content is the raw document text. It is only held between the load
	// and tally steps and is never serialized.
	Content string `json:"-"`

	// Error is the error that stopped the check, if any.
	Error error `json:"-"`

	// ErrorMessage is the string form of Error, kept for JSON output.
	ErrorMessage string `json:"error,omitempty"`

	// Cancelled is true when the context was cancelled mid-check.
	Cancelled bool `json:"cancelled,omitempty"`
}

// StepRecord is one completed pipeline step and how long it took.
type StepRecord struct {
	Name    string        `json:"name"`
	Elapsed time.Duration `json:"elapsed_ns"`
}

// StepNames returns the names of the performed steps.
func (r *CheckResult) StepNames() []string {
	names := make([]string, len(r.PerformedSteps))
	for i, s := range r.PerformedSteps {
		names[i] = s.Name
	}
	return names
}

// Elapsed returns the total time spent in the performed steps.
func (r *CheckResult) Elapsed() time.Duration {
	var total time.Duration
	for _, s := range r.PerformedSteps {
		total += s.Elapsed
	}
	return total
}

// NewCheckResult creates an empty result for the given file.
func NewCheckResult(file string) *CheckResult {
	return &CheckResult{
		File:        file,
		CheckedAt:   time.Now(),
		Tags:        []TagCount{},
		SelfClosing: make(map[string]int),
	}
}

// SetTally replaces Tags with the union of names found in the open and
// close tallies, sorted ascending. Names missing from one map count as 0.
func (r *CheckResult) SetTally(open, closing map[string]int) {
	names := make(map[string]struct{}, len(open)+len(closing))
	for name := range open {
		names[name] = struct{}{}
	}
	for name := range closing {
		names[name] = struct{}{}
	}

	sorted := slices.Sorted(maps.Keys(names))
	tags := make([]TagCount, 0, len(sorted))
	for _, name := range sorted {
		tags = append(tags, TagCount{
			Name:  name,
			Open:  open[name],
			Close: closing[name],
		})
	}
	r.Tags = tags
}

// Lookup returns the count for name. The boolean is false if the tag was
// never seen in the document.
func (r *CheckResult) Lookup(name string) (TagCount, bool) {
	i, found := slices.BinarySearchFunc(r.Tags, name, func(c TagCount, n string) int {
		switch {
		case c.Name < n:
			return -1
		case c.Name > n:
			return 1
		default:
			return 0
		}
	})
	if !found {
		return TagCount{Name: name}, false
	}
	return r.Tags[i], true
}

// Unbalanced returns the tags whose counts differ, in name order.
func (r *CheckResult) Unbalanced() []TagCount {
	var out []TagCount
	for _, c := range r.Tags {
		if !c.Balanced() {
			out = append(out, c)
		}
	}
	return out
}

// Status returns StatusBalanced when every recognized tag is balanced.
// A document with no recognized tags is balanced.
func (r *CheckResult) Status() Status {
	for _, c := range r.Tags {
		if !c.Balanced() {
			return StatusUnbalanced
		}
	}
	return StatusBalanced
}

// Summary aggregates a CheckResult.
type Summary struct {
	// Total is the number of distinct recognized tags.
	Total int `json:"total"`

	// Balanced is the number of tags whose counts match.
	Balanced int `json:"balanced"`

	// Unbalanced is the number of tags whose counts differ.
	Unbalanced int `json:"unbalanced"`

	// OpenTotal is the sum of all open counts.
	OpenTotal int `json:"open_total"`

	// CloseTotal is the sum of all close counts.
	CloseTotal int `json:"close_total"`
}

// Summary computes aggregate counts over Tags.
func (r *CheckResult) Summary() Summary {
	s := Summary{Total: len(r.Tags)}
	for _, c := range r.Tags {
		if c.Balanced() {
			s.Balanced++
		} else {
			s.Unbalanced++
		}
		s.OpenTotal += c.Open
		s.CloseTotal += c.Close
	}
	return s
}
