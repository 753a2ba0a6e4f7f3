package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"
	"github.com/nao1215/tagbalance/internal/i18n"
	"github.com/nao1215/tagbalance/internal/model"
)

// MarkdownWriter outputs reports in GitHub Flavored Markdown, built with
// the nao1215/markdown library.
type MarkdownWriter struct {
	baseWriter

	// chart adds a mermaid pie chart of balanced and unbalanced tags.
	chart bool
}

// MarkdownWriterOption configures a MarkdownWriter.
type MarkdownWriterOption func(*MarkdownWriter)

// WithMarkdownLocalizer sets the language of headings and labels.
func WithMarkdownLocalizer(loc *i18n.Localizer) MarkdownWriterOption {
	return func(w *MarkdownWriter) {
		w.setLocalizer(loc)
	}
}

// WithPieChart enables or disables the pie chart. It is enabled by default.
func WithPieChart(enabled bool) MarkdownWriterOption {
	return func(w *MarkdownWriter) {
		w.chart = enabled
	}
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer, opts ...MarkdownWriterOption) *MarkdownWriter {
	w := &MarkdownWriter{
		baseWriter: newBaseWriter(output),
		chart:      true,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Write outputs the report of one document.
func (w *MarkdownWriter) Write(result *model.CheckResult) (int, error) {
	return w.WriteAll([]*model.CheckResult{result})
}

// WriteAll outputs one document with a section per checked file.
func (w *MarkdownWriter) WriteAll(results []*model.CheckResult) (int, error) {
	md := markdown.NewMarkdown(w.output)

	md.H1(w.loc.Text(i18n.KeyReportTitle))
	md.PlainText("")

	for _, result := range results {
		w.writeResult(md, result)
	}

	return len(md.String()), md.Build()
}

func (w *MarkdownWriter) writeResult(md *markdown.Markdown, result *model.CheckResult) {
	md.H2(w.loc.Header("`" + result.File + "`"))
	md.PlainText("")

	if len(result.Tags) == 0 {
		md.Note(w.loc.Text(i18n.KeyNoTags))
		md.PlainText("")
		return
	}

	w.writeTable(md, result)
	w.writeAlert(md, result)

	if w.chart {
		w.writePieChart(md, result)
	}
}

// writeTable writes one row per tag, in name order.
func (w *MarkdownWriter) writeTable(md *markdown.Markdown, result *model.CheckResult) {
	rows := make([][]string, len(result.Tags))
	for i, c := range result.Tags {
		rows[i] = []string{
			"`" + c.Name + "`",
			strconv.Itoa(c.Open),
			strconv.Itoa(c.Close),
			formatDiff(c.Diff()),
			c.Status().Marker() + " " + w.statusText(c.Status()),
		}
	}

	md.Table(markdown.TableSet{
		Header: []string{
			w.loc.Title(i18n.KeyTag),
			w.loc.Title(i18n.KeyOpen),
			w.loc.Title(i18n.KeyClosed),
			w.loc.Title(i18n.KeyDifference),
			w.loc.Title(i18n.KeyStatus),
		},
		Rows: rows,
	})
	md.PlainText("")
}

// writeAlert writes a tip when every tag is balanced and a warning listing
// the unbalanced tags otherwise.
func (w *MarkdownWriter) writeAlert(md *markdown.Markdown, result *model.CheckResult) {
	unbalanced := result.Unbalanced()
	if len(unbalanced) == 0 {
		md.Tip(w.loc.Text(i18n.KeyAllBalanced))
		md.PlainText("")
		return
	}

	names := make([]string, len(unbalanced))
	for i, c := range unbalanced {
		names[i] = fmt.Sprintf("%s (%+d)", c.Name, c.Diff())
	}
	md.Warningf("%s", w.loc.Text(i18n.KeyUnbalancedN, strings.Join(names, ", ")))
	md.PlainText("")
}

// writePieChart writes a mermaid pie chart of balanced vs unbalanced tags.
func (w *MarkdownWriter) writePieChart(md *markdown.Markdown, result *model.CheckResult) {
	summary := result.Summary()

	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle(w.loc.Text(i18n.KeyChartTitle)),
		piechart.WithShowData(true),
	)
	if summary.Balanced > 0 {
		chart.LabelAndIntValue(w.loc.Text(i18n.KeyBalanced), uint64(summary.Balanced))
	}
	if summary.Unbalanced > 0 {
		chart.LabelAndIntValue(w.loc.Text(i18n.KeyUnbalanced), uint64(summary.Unbalanced))
	}

	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

func (w *MarkdownWriter) statusText(s model.Status) string {
	if s == model.StatusBalanced {
		return w.loc.Text(i18n.KeyBalanced)
	}
	return w.loc.Text(i18n.KeyUnbalanced)
}

// formatDiff renders a difference with an explicit sign; zero has none.
func formatDiff(d int) string {
	if d == 0 {
		return "0"
	}
	return fmt.Sprintf("%+d", d)
}
