package model

// TagCount holds the tally of one recognized element name.
type TagCount struct {
	// Name is the lower-cased element name.
	Name string `json:"name"`

	// Open is the number of opening-like occurrences, self-closing forms included.
	Open int `json:"open"`

	// Close is the number of closing occurrences.
	Close int `json:"close"`
}

// Diff returns Open minus Close.
func (c TagCount) Diff() int {
	return c.Open - c.Close
}

// Balanced reports whether Open equals Close.
func (c TagCount) Balanced() bool {
	return c.Open == c.Close
}

// Status returns StatusBalanced or StatusUnbalanced.
func (c TagCount) Status() Status {
	if c.Balanced() {
		return StatusBalanced
	}
	return StatusUnbalanced
}
