package builder

import (
	"context"
	"fmt"

	"github.com/futig/oportune/internal/config"
	"github.com/futig/oportune/internal/entity"
	"github.com/futig/oportune/internal/integration/callback"
	"github.com/futig/oportune/internal/integration/llm"
	"github.com/futig/oportune/internal/integration/rag"
	"github.com/futig/oportune/internal/integration/sheets"
	"github.com/futig/oportune/internal/pkg/formatter"
	"github.com/futig/oportune/internal/repository"
	"github.com/futig/oportune/internal/usecase/advisor"
	"github.com/futig/oportune/internal/usecase/extractor"
	"github.com/futig/oportune/internal/usecase/run"
	"github.com/futig/oportune/internal/usecase/session"
	"go.uber.org/zap"
)

// Pipeline holds the wired use cases shared by the server and the CLI.
type Pipeline struct {
	Sessions     *session.SessionUsecase
	Orchestrator *run.Orchestrator
	Extractor    extractor.Extractor
	Repository   repository.SessionRepository
}

// NewPipeline wires connectors and use cases from the configuration.
func NewPipeline(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Pipeline, error) {
	var completer advisor.Completer
	var retriever run.Retriever

	if cfg.EnableMocks {
		logger.Info("Using mock connectors for external services")
		completer = llm.NewMockConnector(logger)
		retriever = rag.NewMockConnector(logger)
	} else {
		logger.Info("Using real connectors for external services",
			zap.String("llm_provider", cfg.LLMCfg.Provider),
		)
		switch cfg.LLMCfg.Provider {
		case config.LLMProviderLangchain:
			lc, err := llm.NewLangchainConnector(cfg.LLMCfg, logger)
			if err != nil {
				return nil, fmt.Errorf("setup langchain provider: %w", err)
			}
			completer = lc
		default:
			completer = llm.NewConnector(cfg.LLMCfg, logger)
		}
		retriever = rag.NewConnector(cfg.RAGCfg, logger)
	}

	ext, err := extractor.New(
		extractor.Strategy(cfg.ExtractorCfg.Strategy),
		completer,
		extractor.ModelConfig{
			Temperature:    cfg.ExtractorCfg.Temperature,
			MaxTokens:      cfg.ExtractorCfg.MaxTokens,
			RepairAttempts: cfg.ExtractorCfg.RepairAttempts,
		},
	)
	if err != nil {
		return nil, fmt.Errorf("setup extractor: %w", err)
	}

	generator := advisor.NewGenerator(completer, advisor.Config{
		Temperature:      cfg.LLMCfg.Temperature,
		MaxTokens:        cfg.LLMCfg.MaxTokens,
		MaxOpportunities: cfg.LLMCfg.MaxOpportunities,
	})

	orchestrator := run.NewOrchestrator(retriever, generator, ext, run.Config{
		Concurrency: cfg.RunCfg.Concurrency,
		TopK:        cfg.RunCfg.TopK,
		Policy:      entity.FailurePolicy(cfg.RunCfg.FailurePolicy),
		Timeout:     cfg.RunCfg.Timeout,
	})

	var publisher session.Publisher
	if cfg.SheetsCfg.Enabled {
		p, err := sheets.NewPublisher(ctx, cfg.SheetsCfg, logger)
		if err != nil {
			return nil, fmt.Errorf("setup sheets publisher: %w", err)
		}
		publisher = p
		logger.Info("Spreadsheet publishing enabled", zap.String("spreadsheet_id", cfg.SheetsCfg.SpreadsheetID))
	}

	repo := repository.NewSessionMemory(cfg.SessionCfg.TTL, cfg.SessionCfg.CleanupInterval)

	formatters := formatter.NewFactory(formatter.Options{
		MaxColumnWidth:   cfg.ExportCfg.MaxColumnWidth,
		PDFFontPath:      cfg.ExportCfg.PDFFontPath,
		OfficeLicenseKey: cfg.ExportCfg.OfficeLicenseKey,
	})

	sessions := session.NewUsecase(repo, orchestrator, ext, formatters, publisher, logger,
		session.WithNotifier(callback.NewConnector(cfg.CallbackCfg, logger)),
	)

	logger.Info("Pipeline initialized",
		zap.String("extractor", ext.Name()),
		zap.Int("concurrency", cfg.RunCfg.Concurrency),
		zap.String("failure_policy", cfg.RunCfg.FailurePolicy),
	)

	return &Pipeline{
		Sessions:     sessions,
		Orchestrator: orchestrator,
		Extractor:    ext,
		Repository:   repo,
	}, nil
}
