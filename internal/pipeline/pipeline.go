package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/nao1215/tagbalance/internal/model"
)

// Step is one stage of checking a document. Steps share state only
// through the CheckResult they are given.
type Step interface {
	// Do runs the step against result.
	Do(ctx context.Context, result *model.CheckResult) error

	// Name identifies the step in logs and in CheckResult.PerformedSteps.
	Name() string
}

// Pipeline runs its steps in order and stops at the first failure.
type Pipeline struct {
	steps  []Step
	logger *slog.Logger

	// now is replaced in tests to get deterministic step timings.
	now func() time.Time
}

// Option is a function that configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets a custom logger for the pipeline.
// A nil logger falls back to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// New creates an empty Pipeline.
func New(opts ...Option) *Pipeline {
	p := &Pipeline{now: time.Now}

	for _, opt := range opts {
		opt(p)
	}

	if p.logger == nil {
		p.logger = slog.Default()
	}

	return p
}

// AddStep appends a step to the pipeline.
func (p *Pipeline) AddStep(step Step) {
	p.steps = append(p.steps, step)
}

// AddSteps appends steps in the given order.
func (p *Pipeline) AddSteps(steps ...Step) {
	p.steps = append(p.steps, steps...)
}

// Execute runs every step against result.
//
// Each completed step is appended to result.PerformedSteps with its
// duration. A failing step stores its error in result.Error and
// result.ErrorMessage and ends the run. When ctx is done before a step
// starts, result.Cancelled is set and ctx.Err() is returned.
func (p *Pipeline) Execute(ctx context.Context, result *model.CheckResult) error {
	for _, step := range p.steps {
		if err := ctx.Err(); err != nil {
			p.logger.Warn("check cancelled",
				"file", result.File,
				"before", step.Name(),
				"reason", err,
			)
			result.Cancelled = true
			return err
		}

		start := p.now()
		err := step.Do(ctx, result)
		elapsed := p.now().Sub(start)

		if err != nil {
			p.logger.Debug("step failed",
				"step", step.Name(),
				"file", result.File,
				"elapsed", elapsed,
				"error", err,
			)
			result.Error = err
			result.ErrorMessage = err.Error()
			return err
		}

		p.logger.Debug("step done",
			"step", step.Name(),
			"file", result.File,
			"elapsed", elapsed,
		)
		result.PerformedSteps = append(result.PerformedSteps, model.StepRecord{
			Name:    step.Name(),
			Elapsed: elapsed,
		})
	}

	return nil
}

// StepCount returns the number of steps in the pipeline.
func (p *Pipeline) StepCount() int {
	return len(p.steps)
}

// StepNames returns the names of all steps in execution order.
func (p *Pipeline) StepNames() []string {
	names := make([]string, len(p.steps))
	for i, step := range p.steps {
		names[i] = step.Name()
	}
	return names
}
