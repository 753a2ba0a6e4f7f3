package report

import (
	"encoding/json"
	"io"
	"time"

	"github.com/nao1215/tagbalance/internal/model"
)

// JSONWriter outputs reports in JSON format.
type JSONWriter struct {
	baseWriter

	// indent enables pretty-printed JSON output.
	indent bool

	// indentPrefix is the prefix for each line in indented output.
	indentPrefix string

	// indentString is the indentation string (typically "  " or "\t").
	indentString string

	// version is included in the output when non-empty.
	version string
}

// JSONWriterOption configures a JSONWriter.
type JSONWriterOption func(*JSONWriter)

// WithIndent enables pretty-printed JSON output.
func WithIndent(prefix, indent string) JSONWriterOption {
	return func(w *JSONWriter) {
		w.indent = true
		w.indentPrefix = prefix
		w.indentString = indent
	}
}

// WithPrettyPrint enables pretty-printed JSON with two-space indentation.
func WithPrettyPrint() JSONWriterOption {
	return WithIndent("", "  ")
}

// WithVersion records the tool version in every document.
func WithVersion(version string) JSONWriterOption {
	return func(w *JSONWriter) {
		w.version = version
	}
}

// NewJSONWriter creates a JSONWriter that outputs to the given writer.
func NewJSONWriter(output io.Writer, opts ...JSONWriterOption) *JSONWriter {
	w := &JSONWriter{baseWriter: newBaseWriter(output)}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// JSONTag is one tag line in JSON output.
type JSONTag struct {
	Name     string `json:"name"`
	Open     int    `json:"open"`
	Close    int    `json:"close"`
	Diff     int    `json:"diff"`
	Balanced bool   `json:"balanced"`
}

// JSONReport is the JSON document written for one checked file.
type JSONReport struct {
	Version     string         `json:"version,omitempty"`
	File        string         `json:"file"`
	CheckedAt   time.Time      `json:"checked_at"`
	ContentHash string         `json:"content_hash,omitempty"`
	Status      string         `json:"status"`
	Summary     model.Summary  `json:"summary"`
	Tags        []JSONTag      `json:"tags"`
	SelfClosing map[string]int `json:"self_closing,omitempty"`
}

// NewJSONReport converts a CheckResult into its JSON form.
func NewJSONReport(result *model.CheckResult, version string) *JSONReport {
	tags := make([]JSONTag, len(result.Tags))
	for i, c := range result.Tags {
		tags[i] = JSONTag{
			Name:     c.Name,
			Open:     c.Open,
			Close:    c.Close,
			Diff:     c.Diff(),
			Balanced: c.Balanced(),
		}
	}
	return &JSONReport{
		Version:     version,
		File:        result.File,
		CheckedAt:   result.CheckedAt,
		ContentHash: result.ContentHash,
		Status:      result.Status().String(),
		Summary:     result.Summary(),
		Tags:        tags,
		SelfClosing: result.SelfClosing,
	}
}

// Write outputs one report as a JSON object.
func (w *JSONWriter) Write(result *model.CheckResult) (int, error) {
	return w.writeJSON(NewJSONReport(result, w.version))
}

// WriteAll outputs the reports as a JSON array.
func (w *JSONWriter) WriteAll(results []*model.CheckResult) (int, error) {
	reports := make([]*JSONReport, len(results))
	for i, r := range results {
		reports[i] = NewJSONReport(r, w.version)
	}
	return w.writeJSON(reports)
}

// writeJSON marshals the given value to JSON and writes it to the output.
func (w *JSONWriter) writeJSON(v any) (int, error) {
	var data []byte
	var err error

	if w.indent {
		data, err = json.MarshalIndent(v, w.indentPrefix, w.indentString)
	} else {
		data, err = json.Marshal(v)
	}
	if err != nil {
		return 0, err
	}

	data = append(data, '\n')
	return w.output.Write(data)
}
