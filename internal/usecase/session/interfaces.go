package session

import (
	"context"

	"github.com/futig/oportune/internal/entity"
	"github.com/futig/oportune/internal/pkg/formatter"
	"github.com/futig/oportune/internal/usecase/run"
)

type Runner interface {
	Run(ctx context.Context, tmpl entity.CaseTemplate, directions []string, opts ...run.RunOption) (*entity.RunResult, error)
}

type Extractor interface {
	Extract(ctx context.Context, raw string) ([]entity.Recommendation, error)
	Name() string
}

type FormatterFactory interface {
	Create(format entity.ResultFormat) (formatter.Formatter, error)
}

type Publisher interface {
	Publish(ctx context.Context, records []entity.Recommendation) (*entity.PublishResponse, error)
}

// Notifier delivers run events to a client webhook.
type Notifier interface {
	RunCompleted(ctx context.Context, callbackURL, requestID string, data *entity.CallbackRunData)
	RunFailed(ctx context.Context, callbackURL, requestID, sessionID, message string)
}
