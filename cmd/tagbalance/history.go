package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"maps"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/nao1215/markdown"
	"github.com/nao1215/tagbalance/internal/config"
	"github.com/nao1215/tagbalance/internal/database"
	"github.com/nao1215/tagbalance/internal/i18n"
	"github.com/nao1215/tagbalance/internal/model"
	"github.com/spf13/cobra"
)

// Directions of a history comparison.
const (
	directionImproved  = "improved"
	directionWorsened  = "worsened"
	directionUnchanged = "unchanged"
)

// Change kinds of a single tag between two checks.
const (
	tagNew       = "new"
	tagRemoved   = "removed"
	tagChanged   = "changed"
	tagUnchanged = "unchanged"
)

// historyTimeFormat is used for check dates in text and Markdown output.
const historyTimeFormat = "2006-01-02 15:04:05"

// NewHistoryCmd creates the history command.
// It compares saved check results of a file with each other.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history [file]",
		Short: "Compare saved check results of a file",
		Long: `History shows how the tag counts of a file changed between checks.

Results are saved with 'tagbalance --save <file>'. By default the latest two
saved checks of the file are compared and the output shows:
- whether the content of the file changed
- tags that appeared or disappeared
- tags whose open or close counts changed
- whether the number of unbalanced tags went down or up

Examples:
  # Compare the latest two checks of a file
  tagbalance history index.html

  # List saved checks of a file
  tagbalance history --list index.html

  # Compare the latest check with a specific one by ID
  tagbalance history --with-id 3 index.html

  # Output comparison in JSON format
  tagbalance history --json index.html

  # List all files with saved checks
  tagbalance history --list-files`,
		Args: cobra.MaximumNArgs(1),
		RunE: runHistoryCmd,
	}

	cmd.Flags().BoolP("list", "l", false,
		"List saved checks of the specified file")
	cmd.Flags().BoolP("list-files", "L", false,
		"List all files with saved checks")
	cmd.Flags().Int64P("with-id", "i", 0,
		"Compare with a specific saved check by ID (use --list to see available IDs)")
	cmd.Flags().BoolP("json", "j", false,
		"Output comparison in JSON format")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output comparison in Markdown format")

	return cmd
}

// runHistoryCmd executes the history command.
func runHistoryCmd(cmd *cobra.Command, args []string) error {
	listFiles, err := cmd.Flags().GetBool("list-files")
	if err != nil {
		return err
	}

	// Validate arguments before opening the database.
	var file string
	if !listFiles {
		if len(args) == 0 {
			return &usageError{err: errors.New("file is required (use --list-files to see files with saved checks)")}
		}
		file = historyKey(args[0])
	}

	jsonOutput, err := cmd.Flags().GetBool("json")
	if err != nil {
		return err
	}
	markdownOutput, err := cmd.Flags().GetBool("markdown")
	if err != nil {
		return err
	}
	if jsonOutput && markdownOutput {
		return config.ErrConflictingReportFormats
	}

	db, err := database.Open(getDBDir(cmd), database.Options{CreateIfNotExists: false, EnableWAL: true})
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	if listFiles {
		return listCheckedFiles(ctx, out, db)
	}

	listHistory, err := cmd.Flags().GetBool("list")
	if err != nil {
		return err
	}
	if listHistory {
		return listCheckHistory(ctx, out, db, file)
	}

	withID, err := cmd.Flags().GetInt64("with-id")
	if err != nil {
		return err
	}

	current, err := db.GetLatestCheckResult(ctx, file)
	if err != nil {
		return fmt.Errorf("failed to get latest check: %w", err)
	}
	if current == nil {
		return fmt.Errorf("no saved checks found for %s", file)
	}

	comparison, err := buildComparison(ctx, db, current, withID)
	if errors.Is(err, errSingleCheck) {
		return outputSingleCheck(cmd, current, jsonOutput, markdownOutput)
	}
	if err != nil {
		return err
	}

	switch {
	case jsonOutput:
		return outputComparisonJSON(out, comparison)
	case markdownOutput:
		return outputComparisonMarkdown(out, comparison)
	default:
		return outputComparisonText(out, comparison)
	}
}

// outputSingleCheck prints the only saved check of a file as a regular
// report, with a notice on stderr that nothing can be compared yet.
func outputSingleCheck(cmd *cobra.Command, result *model.CheckResult, jsonOutput, markdownOutput bool) error {
	format := config.FormatText
	switch {
	case jsonOutput:
		format = config.FormatJSON
	case markdownOutput:
		format = config.FormatMarkdown
	}

	if _, err := newReportWriter(cmd.OutOrStdout(), format, i18n.Default()).Write(result); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	fmt.Fprintf(cmd.ErrOrStderr(),
		"Only one saved check of %s (%s); save another check to compare.\n",
		result.File, result.CheckedAt.Local().Format(historyTimeFormat))
	return nil
}

// getDBDir returns the --db-dir value, or the XDG data directory when the
// command runs without the root command's persistent flags.
func getDBDir(cmd *cobra.Command) string {
	dir, err := cmd.Flags().GetString("db-dir")
	if err != nil || dir == "" {
		return config.XDGDataDir()
	}
	return dir
}

// listCheckedFiles lists all files that have saved checks.
func listCheckedFiles(ctx context.Context, out io.Writer, db *database.HistoryDB) error {
	files, err := db.ListCheckedFiles(ctx)
	if err != nil {
		return fmt.Errorf("failed to list files: %w", err)
	}

	if len(files) == 0 {
		fmt.Fprintln(out, "No saved checks found in the database.")
		fmt.Fprintln(out, "\nUse 'tagbalance --save <file>' to save a check.")
		return nil
	}

	fmt.Fprintf(out, "Checked files (%d):\n\n", len(files))
	for _, f := range files {
		fmt.Fprintf(out, "  • %s\n", f)
	}
	fmt.Fprintln(out, "\nUse 'tagbalance history --list <file>' to see the saved checks of a file.")

	return nil
}

// listCheckHistory lists all saved checks of file.
func listCheckHistory(ctx context.Context, out io.Writer, db *database.HistoryDB, file string) error {
	checks, err := db.GetHistoryWithMetadata(ctx, file)
	if err != nil {
		return fmt.Errorf("failed to get history: %w", err)
	}

	if len(checks) == 0 {
		fmt.Fprintf(out, "No saved checks found for %s\n", file)
		fmt.Fprintln(out, "\nUse 'tagbalance --save <file>' to save a check.")
		return nil
	}

	fmt.Fprintf(out, "Check history for %s (%d checks):\n\n", file, len(checks))
	fmt.Fprintf(out, "  %-6s  %-20s  %-10s  %s\n", "ID", "Date", "Content", "Summary")
	fmt.Fprintln(out, "  "+strings.Repeat("-", 60))

	for _, meta := range checks {
		fmt.Fprintf(out, "  %-6d  %-20s  %-10s  %s\n",
			meta.ID,
			meta.Timestamp.Local().Format(historyTimeFormat),
			shortHash(meta.ContentHash),
			formatSummary(meta.Summary),
		)
	}

	fmt.Fprintln(out, "\nUse 'tagbalance history <file>' to compare the latest two checks.")
	fmt.Fprintln(out, "Use 'tagbalance history --with-id <id> <file>' to compare with a specific check.")

	return nil
}

// shortHash returns the first eight characters of a content hash.
func shortHash(hash string) string {
	if len(hash) > 8 {
		return hash[:8]
	}
	if hash == "" {
		return "-"
	}
	return hash
}

// formatSummary formats a summary as "tags:3 balanced:2 unbalanced:1".
func formatSummary(s model.Summary) string {
	return fmt.Sprintf("tags:%d balanced:%d unbalanced:%d", s.Total, s.Balanced, s.Unbalanced)
}

// errSingleCheck is returned by buildComparison when the latest check has
// nothing before it.
var errSingleCheck = errors.New("only one saved check")

// buildComparison finds the check to compare current with: the one saved
// just before it, or the check with ID withID when it is positive.
func buildComparison(ctx context.Context, db *database.HistoryDB, current *model.CheckResult, withID int64) (*HistoryComparison, error) {
	file := current.File

	if withID > 0 {
		r, err := db.GetCheckResultByID(ctx, withID)
		if err != nil {
			return nil, fmt.Errorf("failed to get check with ID %d: %w", withID, err)
		}
		if r == nil {
			return nil, fmt.Errorf("check with ID %d not found", withID)
		}
		if r.File != file {
			return nil, fmt.Errorf("check ID %d belongs to %s, not %s", withID, r.File, file)
		}
		return compareResults(r, current), nil
	}

	history, err := db.GetHistory(ctx, file)
	if err != nil {
		return nil, fmt.Errorf("failed to get history: %w", err)
	}
	if len(history) < 2 {
		return nil, errSingleCheck
	}

	return compareResults(history[1], current), nil
}

// HistoryComparison holds the result of comparing two checks of one file.
type HistoryComparison struct {
	// File is the absolute path of the checked file.
	File string `json:"file"`

	// Previous describes the older check.
	Previous CheckSnapshot `json:"previous"`

	// Current describes the newer check.
	Current CheckSnapshot `json:"current"`

	// ContentChanged is true when the content hashes differ.
	ContentChanged bool `json:"content_changed"`

	// Direction is "improved", "worsened" or "unchanged".
	Direction string `json:"direction"`

	// Tags lists every tag seen in either check, sorted by name.
	Tags []TagChange `json:"tags"`
}

// CheckSnapshot is the part of a check shown in a comparison.
type CheckSnapshot struct {
	CheckedAt   time.Time     `json:"checked_at"`
	ContentHash string        `json:"content_hash,omitempty"`
	Summary     model.Summary `json:"summary"`
}

// TagChange describes one tag in both checks.
type TagChange struct {
	Name string `json:"name"`

	// Change is "new", "removed", "changed" or "unchanged".
	Change string `json:"change"`

	PreviousOpen  int `json:"previous_open"`
	PreviousClose int `json:"previous_close"`
	CurrentOpen   int `json:"current_open"`
	CurrentClose  int `json:"current_close"`
}

// PreviousDiff returns open minus close in the previous check.
func (c TagChange) PreviousDiff() int {
	return c.PreviousOpen - c.PreviousClose
}

// CurrentDiff returns open minus close in the current check.
func (c TagChange) CurrentDiff() int {
	return c.CurrentOpen - c.CurrentClose
}

// compareResults compares two checks of the same file.
func compareResults(previous, current *model.CheckResult) *HistoryComparison {
	comparison := &HistoryComparison{
		File: current.File,
		Previous: CheckSnapshot{
			CheckedAt:   previous.CheckedAt,
			ContentHash: previous.ContentHash,
			Summary:     previous.Summary(),
		},
		Current: CheckSnapshot{
			CheckedAt:   current.CheckedAt,
			ContentHash: current.ContentHash,
			Summary:     current.Summary(),
		},
		ContentChanged: previous.ContentHash != current.ContentHash,
		Tags:           []TagChange{},
	}

	names := make(map[string]struct{})
	for _, c := range previous.Tags {
		names[c.Name] = struct{}{}
	}
	for _, c := range current.Tags {
		names[c.Name] = struct{}{}
	}

	for _, name := range slices.Sorted(maps.Keys(names)) {
		prev, inPrev := previous.Lookup(name)
		cur, inCur := current.Lookup(name)

		change := TagChange{
			Name:          name,
			PreviousOpen:  prev.Open,
			PreviousClose: prev.Close,
			CurrentOpen:   cur.Open,
			CurrentClose:  cur.Close,
		}
		switch {
		case !inPrev:
			change.Change = tagNew
		case !inCur:
			change.Change = tagRemoved
		case prev == cur:
			change.Change = tagUnchanged
		default:
			change.Change = tagChanged
		}
		comparison.Tags = append(comparison.Tags, change)
	}

	comparison.Direction = calculateDirection(comparison)

	return comparison
}

// calculateDirection compares the number of unbalanced tags, then the
// total absolute difference of all tags.
func calculateDirection(c *HistoryComparison) string {
	prevUnbalanced := c.Previous.Summary.Unbalanced
	curUnbalanced := c.Current.Summary.Unbalanced

	if curUnbalanced != prevUnbalanced {
		if curUnbalanced < prevUnbalanced {
			return directionImproved
		}
		return directionWorsened
	}

	var prevTotal, curTotal int
	for _, t := range c.Tags {
		prevTotal += abs(t.PreviousDiff())
		curTotal += abs(t.CurrentDiff())
	}

	switch {
	case curTotal < prevTotal:
		return directionImproved
	case curTotal > prevTotal:
		return directionWorsened
	default:
		return directionUnchanged
	}
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

// changedTags returns the tags whose counts differ between the checks.
func (c *HistoryComparison) changedTags() []TagChange {
	var out []TagChange
	for _, t := range c.Tags {
		if t.Change != tagUnchanged {
			out = append(out, t)
		}
	}
	return out
}

// outputComparisonJSON outputs the comparison in JSON format.
func outputComparisonJSON(out io.Writer, c *HistoryComparison) error {
	encoder := json.NewEncoder(out)
	encoder.SetIndent("", "  ")
	return encoder.Encode(c)
}

// outputComparisonText outputs the comparison in human-readable text format.
func outputComparisonText(out io.Writer, c *HistoryComparison) error {
	fmt.Fprintf(out, "Check Comparison: %s\n", c.File)
	fmt.Fprintln(out, strings.Repeat("=", 60))

	fmt.Fprintf(out, "\nStatus: %s\n", formatDirection(c.Direction))
	fmt.Fprintf(out, "Content changed: %s\n", formatYesNo(c.ContentChanged))

	fmt.Fprintf(out, "\nPrevious check: %s\n", c.Previous.CheckedAt.Local().Format(historyTimeFormat))
	fmt.Fprintf(out, "Current check:  %s\n", c.Current.CheckedAt.Local().Format(historyTimeFormat))

	fmt.Fprintln(out, "\nSummary:")
	fmt.Fprintf(out, "  %-12s  %-10s  %-10s  %-10s\n", "", "Previous", "Current", "Change")
	fmt.Fprintln(out, "  "+strings.Repeat("-", 48))
	for _, row := range summaryRows(c) {
		fmt.Fprintf(out, "  %-12s  %-10d  %-10d  %-10s\n", row.label, row.previous, row.current, formatDelta(row.current-row.previous))
	}

	changed := c.changedTags()
	if len(changed) > 0 {
		fmt.Fprintf(out, "\nChanged Tags (%d):\n", len(changed))
		for _, t := range changed {
			fmt.Fprintf(out, "  %s %-10s %s -> %s\n",
				changeMarker(t.Change), t.Name,
				formatCounts(t.PreviousOpen, t.PreviousClose),
				formatCounts(t.CurrentOpen, t.CurrentClose),
			)
		}
	}

	if unchanged := len(c.Tags) - len(changed); unchanged > 0 {
		fmt.Fprintf(out, "\nUnchanged: %d tags\n", unchanged)
	}

	return nil
}

// outputComparisonMarkdown outputs the comparison in Markdown format.
func outputComparisonMarkdown(out io.Writer, c *HistoryComparison) error {
	md := markdown.NewMarkdown(out)

	md.H1(fmt.Sprintf("Check Comparison: `%s`", c.File))
	md.PlainText("")
	md.PlainTextf("**Status:** %s", formatDirection(c.Direction))
	md.PlainText("")
	md.PlainTextf("**Content changed:** %s", formatYesNo(c.ContentChanged))
	md.PlainText("")

	rows := [][]string{{
		"Date",
		c.Previous.CheckedAt.Local().Format(historyTimeFormat),
		c.Current.CheckedAt.Local().Format(historyTimeFormat),
		"-",
	}}
	for _, row := range summaryRows(c) {
		rows = append(rows, []string{
			row.label,
			strconv.Itoa(row.previous),
			strconv.Itoa(row.current),
			formatDelta(row.current - row.previous),
		})
	}
	md.H2("Summary")
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"Metric", "Previous", "Current", "Change"},
		Rows:   rows,
	})
	md.PlainText("")

	changed := c.changedTags()
	if len(changed) > 0 {
		tagRows := make([][]string, len(changed))
		for i, t := range changed {
			tagRows[i] = []string{
				"`" + t.Name + "`",
				t.Change,
				formatCounts(t.PreviousOpen, t.PreviousClose),
				formatCounts(t.CurrentOpen, t.CurrentClose),
				formatDelta(t.PreviousDiff()) + " → " + formatDelta(t.CurrentDiff()),
			}
		}
		md.H2(fmt.Sprintf("Changed Tags (%d)", len(changed)))
		md.PlainText("")
		md.Table(markdown.TableSet{
			Header: []string{"Tag", "Change", "Previous", "Current", "Difference"},
			Rows:   tagRows,
		})
		md.PlainText("")
	}

	switch c.Direction {
	case directionImproved:
		md.Tip("Fewer unbalanced tags than in the previous check.")
	case directionWorsened:
		md.Warningf("More unbalanced tags than in the previous check.")
	default:
		md.Note("Tag balance did not change.")
	}

	return md.Build()
}

type summaryRow struct {
	label             string
	previous, current int
}

func summaryRows(c *HistoryComparison) []summaryRow {
	p, n := c.Previous.Summary, c.Current.Summary
	return []summaryRow{
		{"Tags", p.Total, n.Total},
		{"Balanced", p.Balanced, n.Balanced},
		{"Unbalanced", p.Unbalanced, n.Unbalanced},
		{"Opening", p.OpenTotal, n.OpenTotal},
		{"Closing", p.CloseTotal, n.CloseTotal},
	}
}

// formatDirection formats the direction for display.
func formatDirection(direction string) string {
	switch direction {
	case directionImproved:
		return "IMPROVED (tag balance got better)"
	case directionWorsened:
		return "WORSENED (tag balance got worse)"
	default:
		return "UNCHANGED"
	}
}

func formatYesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

// changeMarker returns a one-character marker for a tag change.
func changeMarker(change string) string {
	switch change {
	case tagNew:
		return "[+]"
	case tagRemoved:
		return "[-]"
	default:
		return "[~]"
	}
}

// formatCounts formats open and close counts as "open/close".
func formatCounts(open, closing int) string {
	return strconv.Itoa(open) + "/" + strconv.Itoa(closing)
}

// formatDelta formats a numeric delta with sign for display.
func formatDelta(delta int) string {
	if delta > 0 {
		return "+" + strconv.Itoa(delta)
	} else if delta < 0 {
		return strconv.Itoa(delta)
	}
	return "0"
}
