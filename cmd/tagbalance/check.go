package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/nao1215/tagbalance/internal/config"
	"github.com/nao1215/tagbalance/internal/database"
	"github.com/nao1215/tagbalance/internal/i18n"
	applog "github.com/nao1215/tagbalance/internal/log"
	"github.com/nao1215/tagbalance/internal/model"
	"github.com/nao1215/tagbalance/internal/pipeline"
	"github.com/nao1215/tagbalance/internal/report"
	"github.com/nao1215/tagbalance/internal/tagscan"
	"github.com/spf13/cobra"
)

// runCheckCmd executes the check of the files given as arguments.
func runCheckCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	loc, err := i18n.New(cfg.Lang)
	if err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := setupLogger(cmd, cfg.Verbose)
	slog.SetDefault(logger)

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-sigCh:
			logger.Info("received shutdown signal, cancelling...")
			cancel()
		case <-ctx.Done():
		}
	}()

	return runCheck(ctx, cmd.OutOrStdout(), cfg, loc, logger)
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// setupLogger creates the stderr logger. Paths under the home directory
// are shortened to ~ in every record.
func setupLogger(cmd *cobra.Command, verbose bool) *slog.Logger {
	asJSON, err := cmd.Flags().GetBool("log-json")
	if err != nil {
		asJSON = false
	}
	if asJSON {
		return applog.NewJSONLogger(cmd.ErrOrStderr(), verbose)
	}
	return applog.NewLogger(cmd.ErrOrStderr(), verbose)
}

// buildConfig creates a Config from the configuration file and cobra flags.
// Flags given on the command line override the file.
func buildConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.NewConfig()
	flags := cmd.Flags()

	var err error

	cfg.ConfigFilePath, err = flags.GetString("config")
	if err != nil {
		return nil, err
	}

	// An explicit --config path must exist; otherwise a missing file is fine.
	configPath := config.FindConfigFile(cfg.ConfigFilePath)
	if configPath != "" {
		file, err := config.LoadConfigFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
		if err := cfg.Apply(file); err != nil {
			return nil, fmt.Errorf("invalid config file %s: %w", configPath, err)
		}
	} else if cfg.ConfigFilePath != "" {
		return nil, fmt.Errorf("%w: %s", config.ErrConfigNotFound, cfg.ConfigFilePath)
	}

	if flags.Changed("lang") {
		if cfg.Lang, err = flags.GetString("lang"); err != nil {
			return nil, err
		}
	}

	if flags.Changed("concurrency") {
		if cfg.Concurrency, err = flags.GetInt("concurrency"); err != nil {
			return nil, err
		}
	}

	if flags.Changed("json") || flags.Changed("markdown") {
		if cfg.JSONReport, err = flags.GetBool("json"); err != nil {
			return nil, err
		}
		if cfg.MarkdownReport, err = flags.GetBool("markdown"); err != nil {
			return nil, err
		}
	}

	if cfg.ReportFile, err = flags.GetString("output"); err != nil {
		return nil, err
	}

	if cfg.Tee, err = flags.GetBool("tee"); err != nil {
		return nil, err
	}

	if cfg.SaveToDB, err = flags.GetBool("save"); err != nil {
		return nil, err
	}

	if cfg.DBDir, err = flags.GetString("db-dir"); err != nil {
		return nil, err
	}

	cfg.Verbose = getVerboseFlag(cmd)
	cfg.Files = args

	return cfg, nil
}

// runCheck checks every file and writes one report.
// All paths are checked for existence before any file is read; the first
// missing one is reported on out and nothing else is printed.
func runCheck(ctx context.Context, out io.Writer, cfg *config.Config, loc *i18n.Localizer, logger *slog.Logger) error {
	for _, file := range cfg.Files {
		if err := tagscan.Exists(file); err != nil {
			return reportMissing(out, loc, file, err)
		}
	}

	logger.Debug("starting check",
		"files", cfg.Files,
		"concurrency", cfg.Concurrency,
		"extraTags", cfg.ExtraTags,
	)

	scanner := tagscan.New(tagscan.WithExtraTags(cfg.ExtraTags...))
	bp := pipeline.NewBatchProcessor(
		func() *pipeline.Pipeline {
			return pipeline.DefaultPipeline(
				[]pipeline.Option{pipeline.WithLogger(logger)},
				pipeline.WithPipelineScanner(scanner),
			)
		},
		pipeline.WithConcurrency(cfg.Concurrency),
		pipeline.WithBatchLogger(logger),
	)

	results, err := bp.ProcessBatch(ctx, cfg.Files)
	if err != nil {
		return fmt.Errorf("check interrupted: %w", err)
	}

	for i, r := range results {
		if r == nil {
			return fmt.Errorf("check of %s did not run", cfg.Files[i])
		}
		if r.Error == nil {
			continue
		}
		if errors.Is(r.Error, tagscan.ErrFileNotFound) {
			return reportMissing(out, loc, r.File, r.Error)
		}
		return fmt.Errorf("failed to check %s: %w", r.File, r.Error)
	}

	if err := outputReport(out, cfg, loc, results); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	if cfg.SaveToDB {
		if err := saveResults(ctx, cfg.DBDir, results, logger); err != nil {
			return err
		}
	}

	return nil
}

// reportMissing prints the localized not-found notice on out and returns
// err, which wraps tagscan.ErrFileNotFound.
func reportMissing(out io.Writer, loc *i18n.Localizer, file string, err error) error {
	fmt.Fprintln(out, loc.NotFound(file))
	return err
}

// outputReport writes the results in the configured format to the report
// file or, when none is set, to out. With Tee the report goes to both.
func outputReport(out io.Writer, cfg *config.Config, loc *i18n.Localizer, results []*model.CheckResult) error {
	writer := newReportWriter(out, cfg.Format(), loc)

	if cfg.ReportFile != "" {
		dir := filepath.Dir(cfg.ReportFile)
		if dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0750); err != nil {
				return fmt.Errorf("failed to create output directory: %w", err)
			}
		}

		f, err := os.OpenFile(cfg.ReportFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()

		fileWriter := newReportWriter(f, cfg.Format(), loc)
		if cfg.Tee {
			writer = report.NewMultiWriter(fileWriter, writer)
		} else {
			writer = fileWriter
		}
	}

	if len(results) == 1 {
		_, err := writer.Write(results[0])
		return err
	}
	_, err := writer.WriteAll(results)
	return err
}

// newReportWriter selects the report writer for format.
func newReportWriter(out io.Writer, format config.Format, loc *i18n.Localizer) report.Writer {
	switch format {
	case config.FormatJSON:
		return report.NewJSONWriter(out, report.WithPrettyPrint(), report.WithVersion(getVersion()))
	case config.FormatMarkdown:
		return report.NewMarkdownWriter(out, report.WithMarkdownLocalizer(loc))
	default:
		return report.NewSimpleWriter(out, report.WithLocalizer(loc))
	}
}

// saveResults stores the results in the history database under their
// absolute paths.
func saveResults(ctx context.Context, dbDir string, results []*model.CheckResult, logger *slog.Logger) error {
	db, err := database.Open(dbDir, database.DefaultOptions())
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	logger.Debug("history database opened", "path", db.Path())

	for _, r := range results {
		stored := *r
		stored.File = historyKey(r.File)

		id, err := db.SaveCheckResult(ctx, &stored)
		if err != nil {
			return fmt.Errorf("failed to save check result: %w", err)
		}
		logger.Info("check result saved", "file", stored.File, "id", id, "database", db.Path())
	}
	return nil
}

// historyKey returns the path under which results of file are stored.
func historyKey(file string) string {
	abs, err := filepath.Abs(file)
	if err != nil {
		return file
	}
	return abs
}
