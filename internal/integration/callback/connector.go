package callback

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/futig/oportune/internal/config"
	"github.com/futig/oportune/internal/entity"
	pkghttp "github.com/futig/oportune/pkg/http"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// Connector posts run events to client supplied webhook URLs.
type Connector struct {
	connector *pkghttp.Connector
	logger    *zap.Logger
	now       func() time.Time
}

func NewConnector(
	cfg config.CallbackConfig,
	logger *zap.Logger,
) *Connector {
	return &Connector{
		connector: pkghttp.NewConnector(
			&pkghttp.ConnectorConfig{
				Logger:       logger,
				RetryOptions: cfg.Retry.ToRetryOptions(),
			},
			pkghttp.WithRequestTimeout(cfg.RequestTimeout),
			pkghttp.WithConnClientTimeout(cfg.ConnTimeout),
			pkghttp.WithRequestLogging(),
		),
		logger: logger,
		now:    time.Now,
	}
}

// RunCompleted sends a run_completed event. Delivery errors are logged only.
func (c *Connector) RunCompleted(ctx context.Context, callbackURL, requestID string, data *entity.CallbackRunData) {
	err := c.Send(ctx, callbackURL, requestID, &entity.CallbackEvent{
		Event: entity.CallbackEventTypeRunCompleted,
		Data:  data,
	})
	if err != nil {
		ctxzap.Error(ctx, "failed to send run completed callback", zap.Error(err))
	}
}

// RunFailed sends a run_failed event. Delivery errors are logged only.
func (c *Connector) RunFailed(ctx context.Context, callbackURL, requestID, sessionID, message string) {
	err := c.Send(ctx, callbackURL, requestID, &entity.CallbackEvent{
		Event: entity.CallbackEventTypeRunFailed,
		Data: &entity.CallbackErrorData{
			SessionID: sessionID,
			Error:     entity.CallbackErrorDetails{Message: message},
		},
	})
	if err != nil {
		ctxzap.Error(ctx, "failed to send run failed callback", zap.Error(err))
	}
}

func (c *Connector) Send(ctx context.Context, callbackURL, requestID string, event *entity.CallbackEvent) error {
	if event.Timestamp == "" {
		event.Timestamp = c.now().UTC().Format(time.RFC3339)
	}

	ctxzap.Debug(ctx, "sending callback event",
		zap.String("event_type", string(event.Event)),
		zap.String("callback_url", callbackURL),
		zap.String("request_id", requestID),
	)

	err := c.connector.DoRequest(ctx, http.MethodPost, "", event, nil,
		pkghttp.WithHeader("X-Request-ID", requestID),
		pkghttp.WithURL(callbackURL),
	)
	if err != nil {
		return fmt.Errorf("failed to send callback, event_type: %s, url: %s: %w", event.Event, callbackURL, err)
	}

	ctxzap.Info(ctx, "callback sent",
		zap.String("event_type", string(event.Event)),
		zap.String("request_id", requestID),
	)
	return nil
}
