package pipeline

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/nao1215/tagbalance/internal/model"
	"golang.org/x/sync/errgroup"
)

// DefaultConcurrency is the number of documents checked at once when
// WithConcurrency is not given.
const DefaultConcurrency = 4

// BatchProcessor checks several documents concurrently.
// It uses errgroup to manage goroutines and respect the concurrency limit.
type BatchProcessor struct {
	// pipelineFactory creates a new pipeline for each document.
	// Steps keep per-document state, so pipelines are never shared.
	pipelineFactory func() *Pipeline

	// concurrency is the maximum number of concurrent checks.
	concurrency int

	// logger is used for batch-level logging.
	logger *slog.Logger

	// results stores completed check results in input order.
	results []*model.CheckResult
	mu      sync.Mutex
}

// BatchOption configures a BatchProcessor.
type BatchOption func(*BatchProcessor)

// WithBatchLogger sets a custom logger for batch processing.
func WithBatchLogger(logger *slog.Logger) BatchOption {
	return func(b *BatchProcessor) {
		b.logger = logger
	}
}

// WithConcurrency sets the maximum number of concurrent checks.
// Non-positive values keep the default.
func WithConcurrency(n int) BatchOption {
	return func(b *BatchProcessor) {
		if n > 0 {
			b.concurrency = n
		}
	}
}

// NewBatchProcessor creates a new BatchProcessor.
// pipelineFactory is called once per document.
func NewBatchProcessor(pipelineFactory func() *Pipeline, opts ...BatchOption) *BatchProcessor {
	bp := &BatchProcessor{
		pipelineFactory: pipelineFactory,
		concurrency:     DefaultConcurrency,
		results:         make([]*model.CheckResult, 0),
	}

	for _, opt := range opts {
		opt(bp)
	}

	if bp.logger == nil {
		bp.logger = slog.Default()
	}

	return bp
}

// ProcessBatch checks multiple files concurrently.
// Results are returned in the order of files, including results of failed
// checks, which carry their error in CheckResult.Error. The returned error
// is non-nil only when the context was cancelled; files that never started
// have a nil entry.
func (bp *BatchProcessor) ProcessBatch(ctx context.Context, files []string) ([]*model.CheckResult, error) {
	startTime := time.Now()
	bp.results = make([]*model.CheckResult, len(files))

	done := 0
	err := bp.ProcessBatchWithCallback(ctx, files, func(result *model.CheckResult, index int) {
		bp.mu.Lock()
		defer bp.mu.Unlock()

		bp.results[index] = result
		done++

		// Failed checks are reported by the caller from result.Error.
		bp.logger.Debug("check finished",
			"file", result.File,
			"done", done,
			"total", len(files),
			"elapsed", result.Elapsed(),
			"error", result.ErrorMessage,
		)
	})

	bp.logger.Debug("batch processing complete",
		"total_files", len(files),
		"elapsed", time.Since(startTime),
	)

	return bp.results, err
}

// ProcessBatchWithCallback checks multiple files and calls callback for
// each finished result with the index of its file, in completion order.
// The callback runs on the worker goroutine and must be safe for
// concurrent use.
func (bp *BatchProcessor) ProcessBatchWithCallback(
	ctx context.Context,
	files []string,
	callback func(result *model.CheckResult, index int),
) error {
	bp.logger.Debug("starting batch processing",
		"total_files", len(files),
		"concurrency", bp.concurrency,
	)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(bp.concurrency)

	for i, file := range files {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			result := model.NewCheckResult(file)
			// The error is kept in result; the other files go on.
			_ = bp.pipelineFactory().Execute(ctx, result) //nolint:errcheck // stored in result.Error

			callback(result, i)
			return nil
		})
	}

	return g.Wait()
}
