package config

import (
	"fmt"
	"path/filepath"

	"github.com/adrg/xdg"
	"github.com/nao1215/tagbalance/internal/i18n"
	"github.com/nao1215/tagbalance/internal/tagscan"
)

// Default configuration values.
const (
	// AppName is the application name used for XDG directory paths.
	AppName = "tagbalance"

	// DefaultLanguage is the language of report labels and messages.
	DefaultLanguage = i18n.DefaultLanguage

	// DefaultConcurrency is the number of files checked in parallel.
	// A single file is always checked on one goroutine.
	DefaultConcurrency = 4
)

// Format selects the report writer.
type Format string

const (
	// FormatText is the column-aligned plain text report.
	FormatText Format = "text"

	// FormatJSON is the indented JSON report.
	FormatJSON Format = "json"

	// FormatMarkdown is the GitHub Flavored Markdown report.
	FormatMarkdown Format = "markdown"
)

// ParseFormat converts a string to a Format. The empty string is FormatText.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case "", FormatText:
		return FormatText, nil
	case FormatJSON:
		return FormatJSON, nil
	case FormatMarkdown, "md":
		return FormatMarkdown, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidFormat, s)
	}
}

// Config holds all configuration options for tagbalance.
// It is populated from CLI flags and the configuration file and passed
// explicitly to the components that need it.
type Config struct {
	// Files are the markup documents to check, in the order given.
	Files []string

	// Lang is the BCP 47 language of labels and messages.
	Lang string

	// ExtraTags widens the built-in allow-list for this run.
	ExtraTags []string

	// Concurrency is the number of files checked in parallel.
	Concurrency int

	// Verbose enables debug logging on stderr.
	Verbose bool

	// JSONReport selects the JSON report. Mutually exclusive with MarkdownReport.
	JSONReport bool

	// MarkdownReport selects the Markdown report. Mutually exclusive with JSONReport.
	MarkdownReport bool

	// ReportFile is the output path for the report. Empty means stdout.
	ReportFile string

	// Tee also writes the report to stdout when ReportFile is set.
	Tee bool

	// ConfigFilePath is the configuration file given with --config.
	// If empty, .tagbalance is searched in the current and home directories.
	ConfigFilePath string

	// SaveToDB stores each check result in the history database.
	SaveToDB bool

	// DBDir is the directory holding the history database.
	// Defaults to the XDG data directory (~/.local/share/tagbalance on Linux).
	DBDir string
}

// NewConfig creates a new Config with default values.
func NewConfig() *Config {
	return &Config{
		Lang:        DefaultLanguage,
		Concurrency: DefaultConcurrency,
		DBDir:       XDGDataDir(),
	}
}

// Apply copies the values set in the configuration file onto c.
// Zero values in f leave c unchanged.
func (c *Config) Apply(f *File) error {
	if f == nil {
		return nil
	}
	if f.Lang != "" {
		c.Lang = f.Lang
	}
	if len(f.ExtraTags) > 0 {
		c.ExtraTags = append([]string(nil), f.ExtraTags...)
	}
	if f.Concurrency != 0 {
		c.Concurrency = f.Concurrency
	}
	if f.Format != "" {
		format, err := ParseFormat(f.Format)
		if err != nil {
			return err
		}
		c.JSONReport = format == FormatJSON
		c.MarkdownReport = format == FormatMarkdown
	}
	return nil
}

// Format returns the selected report format.
func (c *Config) Format() Format {
	switch {
	case c.JSONReport:
		return FormatJSON
	case c.MarkdownReport:
		return FormatMarkdown
	default:
		return FormatText
	}
}

// XDGDataDir returns the XDG data directory for tagbalance.
// On Linux: ~/.local/share/tagbalance
// On macOS: ~/Library/Application Support/tagbalance
// On Windows: %LOCALAPPDATA%\tagbalance
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for tagbalance.
// On Linux: ~/.config/tagbalance
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// Validate checks if the configuration is valid and returns the first
// problem found.
func (c *Config) Validate() error {
	if len(c.Files) == 0 {
		return ErrNoFiles
	}

	if c.Concurrency <= 0 {
		return ErrInvalidConcurrency
	}

	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}

	if c.Tee && c.ReportFile == "" {
		return ErrTeeWithoutOutput
	}

	if _, err := i18n.Match(c.Lang); err != nil {
		return fmt.Errorf("%w: %q", ErrUnsupportedLanguage, c.Lang)
	}

	for _, name := range c.ExtraTags {
		if !tagscan.IsValidName(name) {
			return fmt.Errorf("%w: %q", ErrInvalidTagName, name)
		}
	}

	return nil
}
