package tagscan

import (
	"regexp"
	"strings"

	"github.com/nao1215/tagbalance/internal/model"
)

var (
	// openingPattern matches `<name` up to the next `>`. It is not anchored
	// against a trailing `/>`, so it also matches self-closing forms.
	openingPattern = regexp.MustCompile(`<([a-zA-Z][a-zA-Z0-9]*)[^>]*>`)

	// closingPattern matches the exact form `</name>`.
	closingPattern = regexp.MustCompile(`</([a-zA-Z][a-zA-Z0-9]*)>`)

	// selfClosingPattern matches `<name ... />`.
	selfClosingPattern = regexp.MustCompile(`<([a-zA-Z][a-zA-Z0-9]*)[^>]*/>`)

	namePattern = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9]*$`)
)

// Extraction holds the raw names captured by each pattern, in document
// order and with their original case.
type Extraction struct {
	Opening     []string
	Closing     []string
	SelfClosing []string
}

// Extract runs the three pattern scans over content.
func Extract(content string) Extraction {
	return Extraction{
		Opening:     captureNames(openingPattern, content),
		Closing:     captureNames(closingPattern, content),
		SelfClosing: captureNames(selfClosingPattern, content),
	}
}

// captureNames returns the first submatch of every non-overlapping match.
func captureNames(re *regexp.Regexp, content string) []string {
	matches := re.FindAllStringSubmatch(content, -1)
	names := make([]string, 0, len(matches))
	for _, m := range matches {
		names = append(names, m[1])
	}
	return names
}

// Tally maps lower-cased element names to occurrence counts.
// Every key is a member of the allow-list used to build it.
type Tally struct {
	Open        map[string]int
	Close       map[string]int
	SelfClosing map[string]int
}

// TagCounts returns one entry per name found in Open or Close, sorted by
// name. SelfClosing does not contribute.
func (t Tally) TagCounts() []model.TagCount {
	r := model.CheckResult{}
	r.SetTally(t.Open, t.Close)
	return r.Tags
}

// Scanner tallies tag names against an allow-list.
type Scanner struct {
	allow AllowList
}

// Option configures a Scanner.
type Option func(*Scanner)

// WithAllowList replaces the default allow-list.
func WithAllowList(allow AllowList) Option {
	return func(s *Scanner) {
		s.allow = allow
	}
}

// WithExtraTags widens the allow-list with additional names.
func WithExtraTags(names ...string) Option {
	return func(s *Scanner) {
		s.allow = s.allow.With(names...)
	}
}

// New creates a Scanner using the default allow-list unless overridden.
func New(opts ...Option) *Scanner {
	s := &Scanner{allow: DefaultAllowList()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AllowList returns the allow-list the scanner filters with.
func (s *Scanner) AllowList() AllowList {
	return s.allow
}

// Tally counts the extracted names that are in the allow-list.
func (s *Scanner) Tally(ex Extraction) Tally {
	return Tally{
		Open:        s.count(ex.Opening),
		Close:       s.count(ex.Closing),
		SelfClosing: s.count(ex.SelfClosing),
	}
}

// Scan extracts and tallies content in one call.
func (s *Scanner) Scan(content string) Tally {
	return s.Tally(Extract(content))
}

func (s *Scanner) count(names []string) map[string]int {
	counts := make(map[string]int)
	for _, name := range names {
		lower := strings.ToLower(name)
		if s.allow.Contains(lower) {
			counts[lower]++
		}
	}
	return counts
}
