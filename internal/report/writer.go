package report

import (
	"io"

	"github.com/nao1215/tagbalance/internal/i18n"
	"github.com/nao1215/tagbalance/internal/model"
)

// Writer defines the interface for report output.
type Writer interface {
	// Write outputs the report of one checked document.
	// Returns the number of bytes written and any error encountered.
	Write(result *model.CheckResult) (int, error)

	// WriteAll outputs the reports of several documents, in order.
	WriteAll(results []*model.CheckResult) (int, error)
}

// MultiWriter writes to multiple Writers in sequence.
type MultiWriter struct {
	writers []Writer
}

// NewMultiWriter creates a Writer that writes to all provided Writers.
func NewMultiWriter(writers ...Writer) *MultiWriter {
	return &MultiWriter{writers: writers}
}

// Write outputs the report to all configured Writers.
// Returns the total bytes written across all writers.
// Stops on first error encountered.
func (m *MultiWriter) Write(result *model.CheckResult) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.Write(result)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// WriteAll outputs the reports to all configured Writers.
func (m *MultiWriter) WriteAll(results []*model.CheckResult) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.WriteAll(results)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// baseWriter provides common functionality for report writers.
type baseWriter struct {
	output io.Writer
	loc    *i18n.Localizer
}

// newBaseWriter creates a baseWriter with the given output destination.
func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output, loc: i18n.Default()}
}

// setLocalizer replaces the localizer unless loc is nil.
func (b *baseWriter) setLocalizer(loc *i18n.Localizer) {
	if loc != nil {
		b.loc = loc
	}
}
