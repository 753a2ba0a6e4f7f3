// Package tagscan counts opening and closing occurrences of markup elements.
//
// The scanner is deliberately textual. It does not parse the document, build
// a tree or track nesting: three regular expressions are run over the whole
// buffer and the names they capture are tallied.
//
//   - opening-like: `<name ...>`, which also matches self-closing `<name/>`
//   - closing:      `</name>`
//   - self-closing: `<name .../>`
//
// Only names in the allow-list are tallied; everything else is dropped.
// A self-closing tag is therefore counted once as opening and never as
// closing, so `<p/>` reports p as unbalanced by +1. The self-closing tally is
// computed alongside the other two but no report line reads it.
//
// # Usage
//
//	content, err := tagscan.Load("index.html")
//	if errors.Is(err, tagscan.ErrFileNotFound) {
//	    // report and exit 1
//	}
//	tally := tagscan.New().Scan(content)
//	for _, c := range tally.TagCounts() {
//	    fmt.Println(c.Name, c.Open, c.Close)
//	}
package tagscan
