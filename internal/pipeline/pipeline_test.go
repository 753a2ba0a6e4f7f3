package pipeline

import (
	"context"
	"errors"
	"slices"
	"testing"
	"time"

	"github.com/nao1215/tagbalance/internal/model"
)

// recordStep is a Step that appends its name to a shared trace and
// returns err.
type recordStep struct {
	name  string
	trace *[]string
	err   error
}

func (s *recordStep) Do(_ context.Context, _ *model.CheckResult) error {
	if s.trace != nil {
		*s.trace = append(*s.trace, s.name)
	}
	return s.err
}

func (s *recordStep) Name() string {
	return s.name
}

// mockStep is a Step whose behavior is given by doFunc.
type mockStep struct {
	name   string
	doFunc func(ctx context.Context, result *model.CheckResult) error
}

func (m *mockStep) Do(ctx context.Context, result *model.CheckResult) error {
	if m.doFunc != nil {
		return m.doFunc(ctx, result)
	}
	return nil
}

func (m *mockStep) Name() string {
	return m.name
}

// fakeClock returns a clock that advances by step on every call.
func fakeClock(step time.Duration) func() time.Time {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	return func() time.Time {
		now = now.Add(step)
		return now
	}
}

func TestPipelineSteps(t *testing.T) {
	t.Parallel()

	t.Run("new pipeline is empty", func(t *testing.T) {
		t.Parallel()

		p := New(WithLogger(nil))
		if p.StepCount() != 0 || len(p.StepNames()) != 0 {
			t.Errorf("expected no steps, got %v", p.StepNames())
		}
		if p.logger == nil {
			t.Error("expected default logger")
		}
	})

	t.Run("AddStep and AddSteps keep order", func(t *testing.T) {
		t.Parallel()

		p := New()
		p.AddStep(&recordStep{name: "load"})
		p.AddSteps(&recordStep{name: "extract"}, &recordStep{name: "tally"})

		want := []string{"load", "extract", "tally"}
		if got := p.StepNames(); !slices.Equal(got, want) {
			t.Errorf("expected %v, got %v", want, got)
		}
		if p.StepCount() != 3 {
			t.Errorf("expected 3 steps, got %d", p.StepCount())
		}
	})
}

func TestPipelineExecute(t *testing.T) {
	t.Parallel()

	t.Run("runs steps in order and records them", func(t *testing.T) {
		t.Parallel()

		var trace []string
		p := New()
		p.AddSteps(
			&recordStep{name: "first", trace: &trace},
			&recordStep{name: "second", trace: &trace},
		)

		result := model.NewCheckResult("index.html")
		if err := p.Execute(context.Background(), result); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		want := []string{"first", "second"}
		if !slices.Equal(trace, want) {
			t.Errorf("expected trace %v, got %v", want, trace)
		}
		if got := result.StepNames(); !slices.Equal(got, want) {
			t.Errorf("expected performed steps %v, got %v", want, got)
		}
	})

	t.Run("records step durations", func(t *testing.T) {
		t.Parallel()

		p := New()
		p.now = fakeClock(10 * time.Millisecond)
		p.AddSteps(&recordStep{name: "load"}, &recordStep{name: "tally"})

		result := model.NewCheckResult("index.html")
		if err := p.Execute(context.Background(), result); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		for _, s := range result.PerformedSteps {
			if s.Elapsed != 10*time.Millisecond {
				t.Errorf("step %s: expected 10ms, got %v", s.Name, s.Elapsed)
			}
		}
		if got := result.Elapsed(); got != 20*time.Millisecond {
			t.Errorf("expected 20ms in total, got %v", got)
		}
	})

	t.Run("stops at the first failing step", func(t *testing.T) {
		t.Parallel()

		errRead := errors.New("read failed")
		var trace []string

		p := New()
		p.AddSteps(
			&recordStep{name: "load", trace: &trace},
			&recordStep{name: "extract", trace: &trace, err: errRead},
			&recordStep{name: "tally", trace: &trace},
		)

		result := model.NewCheckResult("index.html")
		err := p.Execute(context.Background(), result)

		if !errors.Is(err, errRead) {
			t.Fatalf("expected %v, got %v", errRead, err)
		}
		if !slices.Equal(trace, []string{"load", "extract"}) {
			t.Errorf("tally must not run, trace %v", trace)
		}
		if got := result.StepNames(); !slices.Equal(got, []string{"load"}) {
			t.Errorf("only load completed, got %v", got)
		}
		if !errors.Is(result.Error, errRead) || result.ErrorMessage != "read failed" {
			t.Errorf("expected error in result, got %v / %q", result.Error, result.ErrorMessage)
		}
	})

	t.Run("cancelled context runs nothing", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		var trace []string
		p := New()
		p.AddStep(&recordStep{name: "load", trace: &trace})

		result := model.NewCheckResult("index.html")
		err := p.Execute(ctx, result)

		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
		if len(trace) != 0 {
			t.Errorf("expected no step to run, got %v", trace)
		}
		if !result.Cancelled {
			t.Error("expected result to be marked cancelled")
		}
	})

	t.Run("cancellation between steps", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		p := New()
		p.AddSteps(
			&mockStep{name: "load", doFunc: func(_ context.Context, _ *model.CheckResult) error {
				cancel()
				return nil
			}},
			&mockStep{name: "tally", doFunc: func(_ context.Context, _ *model.CheckResult) error {
				t.Error("tally must not run after cancellation")
				return nil
			}},
		)

		result := model.NewCheckResult("index.html")
		if err := p.Execute(ctx, result); !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
		if got := result.StepNames(); !slices.Equal(got, []string{"load"}) {
			t.Errorf("expected only load, got %v", got)
		}
	})
}

func TestDefaultPipelineSteps(t *testing.T) {
	t.Parallel()

	want := []string{"load", "extract", "tally"}
	if got := DefaultPipeline(nil).StepNames(); !slices.Equal(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}

	cfg := &DefaultPipelineConfig{}
	if cfg.Scanner != nil {
		t.Fatal("expected no scanner by default")
	}
}

func TestBatchProcessorOptions(t *testing.T) {
	t.Parallel()

	factory := func() *Pipeline { return New() }

	tests := []struct {
		name string
		opts []BatchOption
		want int
	}{
		{"default", nil, DefaultConcurrency},
		{"explicit", []BatchOption{WithConcurrency(5)}, 5},
		{"zero keeps default", []BatchOption{WithConcurrency(0)}, DefaultConcurrency},
		{"negative keeps default", []BatchOption{WithConcurrency(-3)}, DefaultConcurrency},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			bp := NewBatchProcessor(factory, tt.opts...)
			if bp.concurrency != tt.want {
				t.Errorf("expected concurrency %d, got %d", tt.want, bp.concurrency)
			}
		})
	}
}
