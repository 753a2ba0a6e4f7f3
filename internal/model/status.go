package model

// Status tells whether opening and closing occurrences of a tag match.
type Status int

const (
	// StatusBalanced means the open count equals the close count.
	StatusBalanced Status = iota

	// StatusUnbalanced means the counts differ.
	StatusUnbalanced
)

// String returns a lower-case name of the status.
func (s Status) String() string {
	switch s {
	case StatusBalanced:
		return "balanced"
	case StatusUnbalanced:
		return "unbalanced"
	default:
		return "unknown"
	}
}

// Marker returns the symbol printed at the end of a report line.
func (s Status) Marker() string {
	switch s {
	case StatusBalanced:
		return "✅"
	case StatusUnbalanced:
		return "❌"
	default:
		return "?"
	}
}
