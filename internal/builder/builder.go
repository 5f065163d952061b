package builder

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/futig/oportune/internal/api"
	sessionapi "github.com/futig/oportune/internal/api/session"
	"github.com/futig/oportune/internal/config"
	"github.com/futig/oportune/internal/metrics"
	"github.com/futig/oportune/internal/pkg/validator"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

func Build() (*App, error) {
	ctx := context.Background()

	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := SetupLogger(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return nil, fmt.Errorf("setup logger: %w", err)
	}

	logger.Info("Building application",
		zap.String("environment", cfg.Environment),
		zap.String("server_addr", cfg.ServerAddr),
	)

	if err := metrics.Register(prometheus.DefaultRegisterer); err != nil {
		return nil, fmt.Errorf("register metrics: %w", err)
	}

	pipeline, err := NewPipeline(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	requestValidator := validator.NewValidator(cfg.ValidationCfg)

	sessionHandler := sessionapi.NewHandler(pipeline.Sessions, requestValidator)
	logger.Info("API handlers initialized")

	router := api.SetupRouter(sessionHandler, prometheus.DefaultGatherer, logger, cfg.WriteTimeout)
	logger.Info("HTTP router configured")

	server := &http.Server{
		Addr:         cfg.ServerAddr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	logger.Info("Application built successfully",
		zap.String("environment", cfg.Environment),
	)

	return &App{
		server:          server,
		logger:          logger,
		shutdownTimeout: cfg.ShutdownTimeout,
		drain:           pipeline.Sessions.Wait,
	}, nil
}
