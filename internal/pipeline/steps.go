package pipeline

import (
	"context"
	"encoding/hex"
	"errors"
	"log/slog"

	"github.com/nao1215/tagbalance/internal/model"
	"github.com/nao1215/tagbalance/internal/tagscan"
	"golang.org/x/crypto/sha3"
)

// ErrNotLoaded is returned by ExtractStep when no LoadStep ran before it.
var ErrNotLoaded = errors.New("document content not loaded")

// LoadStep reads the document into the result and records its SHA3-256
// digest. A missing file fails with an error wrapping tagscan.ErrFileNotFound.
type LoadStep struct {
	logger *slog.Logger
}

// NewLoadStep creates a new load step.
func NewLoadStep(logger *slog.Logger) *LoadStep {
	if logger == nil {
		logger = slog.Default()
	}
	return &LoadStep{logger: logger}
}

// Name returns the step name.
func (s *LoadStep) Name() string {
	return "load"
}

// Do loads the file named by result.File.
func (s *LoadStep) Do(_ context.Context, result *model.CheckResult) error {
	content, err := tagscan.Load(result.File)
	if err != nil {
		return err
	}

	sum := sha3.Sum256([]byte(content))
	result.Content = content
	result.ContentHash = hex.EncodeToString(sum[:])

	s.logger.Debug("document loaded",
		"file", result.File,
		"bytes", len(content),
	)
	return nil
}

// ExtractStep runs the opening, closing and self-closing pattern scans.
// The raw matches are kept on the step for the following TallyStep.
type ExtractStep struct {
	logger *slog.Logger

	// extraction holds the last matches produced by Do.
	extraction tagscan.Extraction
}

// NewExtractStep creates a new extract step.
func NewExtractStep(logger *slog.Logger) *ExtractStep {
	if logger == nil {
		logger = slog.Default()
	}
	return &ExtractStep{logger: logger}
}

// Name returns the step name.
func (s *ExtractStep) Name() string {
	return "extract"
}

// Do scans result.Content.
func (s *ExtractStep) Do(_ context.Context, result *model.CheckResult) error {
	if result.Content == "" && result.ContentHash == "" {
		return ErrNotLoaded
	}

	s.extraction = tagscan.Extract(result.Content)

	s.logger.Debug("tags extracted",
		"file", result.File,
		"opening", len(s.extraction.Opening),
		"closing", len(s.extraction.Closing),
		"self_closing", len(s.extraction.SelfClosing),
	)
	return nil
}

// Extraction returns the matches of the last Do call.
func (s *ExtractStep) Extraction() tagscan.Extraction {
	return s.extraction
}

// TallyStep counts the extracted names against the scanner's allow-list,
// stores the sorted counts in the result and drops the document content.
type TallyStep struct {
	scanner *tagscan.Scanner
	source  *ExtractStep
	logger  *slog.Logger
}

// NewTallyStep creates a tally step reading the matches of source.
func NewTallyStep(scanner *tagscan.Scanner, source *ExtractStep, logger *slog.Logger) *TallyStep {
	if scanner == nil {
		scanner = tagscan.New()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &TallyStep{
		scanner: scanner,
		source:  source,
		logger:  logger,
	}
}

// Name returns the step name.
func (s *TallyStep) Name() string {
	return "tally"
}

// Do fills result.Tags and result.SelfClosing.
func (s *TallyStep) Do(_ context.Context, result *model.CheckResult) error {
	var tally tagscan.Tally
	if s.source != nil {
		tally = s.scanner.Tally(s.source.Extraction())
	} else {
		tally = s.scanner.Scan(result.Content)
	}

	result.SetTally(tally.Open, tally.Close)
	result.SelfClosing = tally.SelfClosing
	result.Content = ""

	s.logger.Debug("tags tallied",
		"file", result.File,
		"tags", len(result.Tags),
		"unbalanced", len(result.Unbalanced()),
	)
	return nil
}

// DefaultPipelineConfig holds configuration for the default pipeline.
type DefaultPipelineConfig struct {
	// Scanner is used by the tally step. A Scanner is read-only after New,
	// so one instance may serve every pipeline of a batch.
	// Nil selects a scanner with the built-in allow-list.
	Scanner *tagscan.Scanner
}

// DefaultPipelineOption configures a DefaultPipelineConfig.
type DefaultPipelineOption func(*DefaultPipelineConfig)

// WithPipelineScanner sets the scanner used by the tally step.
func WithPipelineScanner(scanner *tagscan.Scanner) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.Scanner = scanner
	}
}

// DefaultPipeline creates the load, extract and tally pipeline.
//
// The first parameter accepts pipeline options (WithLogger).
// The second accepts configuration options (WithPipelineScanner).
func DefaultPipeline(pipelineOpts []Option, configOpts ...DefaultPipelineOption) *Pipeline {
	p := New(pipelineOpts...)

	cfg := &DefaultPipelineConfig{}
	for _, opt := range configOpts {
		opt(cfg)
	}

	scanner := cfg.Scanner
	if scanner == nil {
		scanner = tagscan.New()
	}

	extract := NewExtractStep(p.logger)
	p.AddSteps(
		NewLoadStep(p.logger),
		extract,
		NewTallyStep(scanner, extract, p.logger),
	)

	return p
}
