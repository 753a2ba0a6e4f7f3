package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/nao1215/tagbalance/internal/i18n"
	"github.com/nao1215/tagbalance/internal/model"
)

// separatorWidth is the number of '=' characters under the header.
const separatorWidth = 40

// SimpleWriter outputs the human-readable text report:
//
//	Tag analysis for file: index.html
//	========================================
//	div       :   2 open /   1 closed ❌ (difference:  +1)
//	p         :   1 open /   1 closed ✅
type SimpleWriter struct {
	baseWriter
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithLocalizer sets the language of labels.
func WithLocalizer(loc *i18n.Localizer) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.setLocalizer(loc)
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{baseWriter: newBaseWriter(output)}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Write outputs the report of one document.
func (w *SimpleWriter) Write(result *model.CheckResult) (int, error) {
	var sb strings.Builder
	w.writeResult(&sb, result)
	return io.WriteString(w.output, sb.String())
}

// WriteAll outputs each report followed by a blank line between documents.
func (w *SimpleWriter) WriteAll(results []*model.CheckResult) (int, error) {
	var sb strings.Builder
	for i, result := range results {
		if i > 0 {
			sb.WriteString("\n")
		}
		w.writeResult(&sb, result)
	}
	return io.WriteString(w.output, sb.String())
}

func (w *SimpleWriter) writeResult(sb *strings.Builder, result *model.CheckResult) {
	sb.WriteString(w.loc.Header(result.File))
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", separatorWidth))
	sb.WriteString("\n")

	for _, c := range result.Tags {
		sb.WriteString(w.formatLine(c))
		sb.WriteString("\n")
	}
}

// formatLine renders one tag line. Counts use fixed-width fields; the
// difference is signed and at least three characters wide.
func (w *SimpleWriter) formatLine(c model.TagCount) string {
	line := fmt.Sprintf("%-10s: %3d %s / %3d %s %s",
		c.Name,
		c.Open, w.loc.Text(i18n.KeyOpen),
		c.Close, w.loc.Text(i18n.KeyClosed),
		c.Status().Marker(),
	)
	if !c.Balanced() {
		line += fmt.Sprintf(" (%s: %+3d)", w.loc.Text(i18n.KeyDifference), c.Diff())
	}
	return line
}
