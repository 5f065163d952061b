package run

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/futig/oportune/internal/entity"
	"github.com/futig/oportune/internal/metrics"
	"github.com/futig/oportune/internal/pkg/logger"
	"github.com/futig/oportune/internal/pkg/textnorm"
	"github.com/futig/oportune/internal/usecase/advisor"
	"github.com/google/uuid"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const rawPreviewLength = 500

type Config struct {
	Concurrency int
	TopK        int
	Policy      entity.FailurePolicy
	Timeout     time.Duration
}

func DefaultConfig() Config {
	return Config{
		Concurrency: 4,
		TopK:        5,
		Policy:      entity.FailurePolicySkip,
	}
}

// ProgressFunc is called once per finished direction; err is nil on success.
type ProgressFunc func(direction string, records int, err error)

type RunOption func(*runOptions)

type runOptions struct {
	progress ProgressFunc
	runID    string
}

func WithProgress(fn ProgressFunc) RunOption {
	return func(o *runOptions) {
		o.progress = fn
	}
}

// WithRunID fixes the run ID instead of generating one.
func WithRunID(id string) RunOption {
	return func(o *runOptions) {
		o.runID = id
	}
}

// Orchestrator runs the retrieve, generate and extract pipeline for every direction of a case.
type Orchestrator struct {
	retriever Retriever
	generator Generator
	extractor Extractor
	cfg       Config
}

func NewOrchestrator(retriever Retriever, generator Generator, extractor Extractor, cfg Config) *Orchestrator {
	def := DefaultConfig()
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = def.Concurrency
	}
	if cfg.TopK <= 0 {
		cfg.TopK = def.TopK
	}
	if !cfg.Policy.IsValid() {
		cfg.Policy = def.Policy
	}
	return &Orchestrator{
		retriever: retriever,
		generator: generator,
		extractor: extractor,
		cfg:       cfg,
	}
}

type directionResult struct {
	records []entity.Recommendation
	stage   entity.Stage
	err     error
}

// Run validates the input before any external call, then processes the
// directions concurrently. Records are returned in direction order.
func (o *Orchestrator) Run(ctx context.Context, tmpl entity.CaseTemplate, directions []string, opts ...RunOption) (*entity.RunResult, error) {
	start := time.Now()

	options := &runOptions{}
	for _, opt := range opts {
		opt(options)
	}

	tags, err := validateRun(tmpl, directions)
	if err != nil {
		return nil, err
	}

	runID := options.runID
	if runID == "" {
		runID = uuid.NewString()
	}
	ctx = logger.AddFields(ctx,
		zap.String("run_id", runID),
		zap.String("failure_policy", string(o.cfg.Policy)),
	)

	if o.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.cfg.Timeout)
		defer cancel()
	}

	ctxzap.Info(ctx, "starting run",
		zap.Strings("directions", tags),
		zap.Int("concurrency", o.cfg.Concurrency),
		zap.String("extractor", o.extractor.Name()),
	)

	results := make([]directionResult, len(tags))

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(o.cfg.Concurrency)

	for idx, tag := range tags {
		g.Go(func() error {
			desc := tmpl.WithDirection(tag)
			taskCtx := logger.AddFields(gCtx, zap.String("direction", tag))

			records, stage, err := o.runDirection(taskCtx, desc)
			results[idx] = directionResult{records: records, stage: stage, err: err}

			if err != nil {
				metrics.ObserveDirection(string(stage))
			} else {
				metrics.ObserveDirection("")
			}
			if options.progress != nil {
				options.progress(tag, len(records), err)
			}

			if err != nil && o.cfg.Policy == entity.FailurePolicyAbort {
				return &entity.RunError{Direction: tag, Stage: stage, Err: err}
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		metrics.ObserveRun(time.Since(start), metrics.OutcomeError, 0)
		ctxzap.Error(ctx, "run aborted", zap.Error(err))
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		metrics.ObserveRun(time.Since(start), metrics.OutcomeError, 0)
		ctxzap.Warn(ctx, "run interrupted", zap.Error(err))
		return nil, fmt.Errorf("run interrupted: %w", err)
	}

	result := &entity.RunResult{
		RunID:    runID,
		Records:  make([]entity.Recommendation, 0),
		Failures: make([]entity.TagFailure, 0),
	}
	for idx, res := range results {
		if res.err != nil {
			result.Failures = append(result.Failures, entity.NewTagFailure(tags[idx], res.stage, res.err))
			continue
		}
		result.Records = append(result.Records, res.records...)
	}
	result.Duration = time.Since(start)

	outcome := metrics.OutcomeSuccess
	switch {
	case len(result.Failures) > 0 && len(result.Records) == 0:
		outcome = metrics.OutcomeError
	case len(result.Failures) > 0:
		outcome = metrics.OutcomePartial
	}
	metrics.ObserveRun(result.Duration, outcome, len(result.Records))

	ctxzap.Info(ctx, "run finished",
		zap.Int("records", len(result.Records)),
		zap.Int("failed_directions", len(result.Failures)),
		zap.Duration("duration", result.Duration),
	)

	return result, nil
}

func (o *Orchestrator) runDirection(ctx context.Context, desc entity.CaseDescription) ([]entity.Recommendation, entity.Stage, error) {
	if err := ctx.Err(); err != nil {
		return nil, entity.StageRetrieve, err
	}

	passages, err := o.retriever.Retrieve(ctx, &entity.RetrieveRequest{
		Query: advisor.Question(desc),
		TopK:  o.cfg.TopK,
	})
	if err != nil {
		if !errors.Is(err, entity.ErrExternalService) && ctx.Err() == nil {
			err = &entity.ExternalServiceError{Service: "retriever", Err: err}
		}
		ctxzap.Error(ctx, "retrieval failed", zap.Error(err))
		return nil, entity.StageRetrieve, err
	}

	if err := ctx.Err(); err != nil {
		return nil, entity.StageGenerate, err
	}

	raw, err := o.generator.Generate(ctx, desc, passages)
	if err != nil {
		ctxzap.Error(ctx, "generation failed", zap.Error(err))
		return nil, entity.StageGenerate, err
	}

	if err := ctx.Err(); err != nil {
		return nil, entity.StageExtract, err
	}

	records, err := o.extractor.Extract(ctx, raw)
	metrics.ObserveExtraction(o.extractor.Name(), err)
	if err != nil {
		ctxzap.Error(ctx, "extraction failed",
			zap.Error(err),
			zap.String("raw", textnorm.Preview(raw, rawPreviewLength)),
		)
		return nil, entity.StageExtract, err
	}

	for i := range records {
		records[i].Direction = desc.Direction
	}

	ctxzap.Debug(ctx, "direction processed",
		zap.Int("passages", len(passages)),
		zap.Int("records", len(records)),
	)
	return records, "", nil
}

func validateRun(tmpl entity.CaseTemplate, directions []string) ([]string, error) {
	if err := tmpl.Validate(); err != nil {
		return nil, err
	}
	set := entity.NewDirectionSet(directions...)
	if set.Len() == 0 {
		return nil, entity.NewValidationError("directions", entity.ErrNoDirections)
	}
	return set.Tags(), nil
}
