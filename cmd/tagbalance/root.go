package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/nao1215/tagbalance/internal/config"
	"github.com/nao1215/tagbalance/internal/tagscan"
	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command. Run with file arguments, it checks
// the files; subcommands manage configuration and history.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tagbalance <file> [file...]",
		Short: "Report opening and closing tag counts of markup documents",
		Long: `tagbalance counts the opening and closing occurrences of common markup
elements (div, main, nav, section, form, button, a, ul, li, h1-h6, p, span,
svg, path) and prints, for every element found, whether the two counts match.

Tag names are matched case-insensitively. Self-closing forms such as <p/>
count as opening occurrences only. Nesting order is not checked, so
<a><b></a></b> is reported as balanced.

Labels are English by default; --lang ru prints the classic Russian wording
("Анализ тегов для файла", "открыт", "закрыт", "разница").

The exit status is 0 whenever the files could be read, balanced or not,
1 when a file does not exist or cannot be read, and 2 when the command line
is invalid (no file, unknown flag).

Examples:
  # Check one file
  tagbalance index.html

  # Check several files, four at a time
  tagbalance -b 4 pages/*.html

  # Russian labels
  tagbalance --lang ru index.html

  # JSON or Markdown report written to a file
  tagbalance --json -o report.json index.html
  tagbalance --markdown -o report.md index.html

  # Write the report to a file and print it as well
  tagbalance -o report.txt --tee index.html

  # Save the result and compare it with the previous one later
  tagbalance --save index.html
  tagbalance history index.html

Configuration file (.tagbalance) example:
  lang: ru
  extraTags: [table, tr, td]
  concurrency: 8`,
		Version:       getVersion(),
		Args:          cobra.ArbitraryArgs,
		RunE:          runCheckCmd,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")
	cmd.PersistentFlags().Bool("log-json", false, "Write log records as JSON lines")
	cmd.PersistentFlags().String("db-dir", config.XDGDataDir(),
		"Directory of the history database")

	// Check flags
	cmd.Flags().StringP("lang", "l", config.DefaultLanguage,
		"Language of labels and messages: en, or ru for the Russian wording")
	cmd.Flags().IntP("concurrency", "b", config.DefaultConcurrency,
		"Number of files checked in parallel")
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .tagbalance in current or home directory)")
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON report (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown report (mutually exclusive with --json)")
	cmd.Flags().StringP("output", "o", "",
		"Write report to specified file path (creates directories if needed)")
	cmd.Flags().BoolP("tee", "t", false,
		"With --output, also print the report on standard output")
	cmd.Flags().BoolP("save", "s", false,
		"Save the results to the history database")

	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return &usageError{err: err}
	})

	cmd.AddCommand(NewHistoryCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command and exits with its status.
func Execute() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// Exit statuses of the command.
const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2
)

// usageError marks an invalid command line.
type usageError struct {
	err error
}

func (e *usageError) Error() string { return e.err.Error() }

func (e *usageError) Unwrap() error { return e.err }

// isUsageError reports whether err comes from an invalid command line.
func isUsageError(err error) bool {
	var ue *usageError
	return errors.As(err, &ue) || errors.Is(err, config.ErrNoFiles)
}

// run executes the command line and returns the exit status.
// A missing file has already been reported on stdout by the check, so it
// only sets the status.
func run(args []string, stdout, stderr io.Writer) int {
	cmd := NewRootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	err := cmd.Execute()
	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, tagscan.ErrFileNotFound):
		return exitError
	case isUsageError(err):
		fmt.Fprintln(stderr, err)
		fmt.Fprintf(stderr, "Usage: %s\nRun 'tagbalance --help' for details.\n", cmd.UseLine())
		return exitUsage
	default:
		fmt.Fprintln(stderr, err)
		return exitError
	}
}
