package tagscan

import (
	"maps"
	"slices"
	"strings"
)

// defaultTags is the fixed set of element names tallied by default.
var defaultTags = []string{
	"div", "main", "nav", "section", "form", "button", "a", "ul", "li",
	"h1", "h2", "h3", "h4", "h5", "h6", "p", "span", "svg", "path",
}

// defaultAllowList is built once and shared; AllowList values are never mutated.
var defaultAllowList = NewAllowList(defaultTags...)

// AllowList is an immutable set of lower-case element names.
type AllowList struct {
	names map[string]struct{}
}

// NewAllowList returns an allow-list holding the lower-cased names.
// Empty names are ignored.
func NewAllowList(names ...string) AllowList {
	set := make(map[string]struct{}, len(names))
	for _, name := range names {
		name = strings.ToLower(strings.TrimSpace(name))
		if name == "" {
			continue
		}
		set[name] = struct{}{}
	}
	return AllowList{names: set}
}

// DefaultAllowList returns the built-in allow-list:
// div, main, nav, section, form, button, a, ul, li, h1-h6, p, span, svg, path.
func DefaultAllowList() AllowList {
	return defaultAllowList
}

// With returns a new allow-list containing the receiver's names plus extra.
// The receiver is left unchanged.
func (a AllowList) With(extra ...string) AllowList {
	if len(extra) == 0 {
		return a
	}
	merged := NewAllowList(extra...)
	for name := range a.names {
		merged.names[name] = struct{}{}
	}
	return merged
}

// Contains reports whether the lower-cased name is in the list.
// Callers pass names that are already lower-cased.
func (a AllowList) Contains(name string) bool {
	_, ok := a.names[name]
	return ok
}

// Len returns the number of names.
func (a AllowList) Len() int {
	return len(a.names)
}

// Names returns the names in ascending order.
func (a AllowList) Names() []string {
	return slices.Sorted(maps.Keys(a.names))
}

// IsValidName reports whether name could be captured by the tag patterns:
// an ASCII letter followed by ASCII letters or digits.
func IsValidName(name string) bool {
	return namePattern.MatchString(name)
}
