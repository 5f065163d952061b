package session

import (
	"context"

	"github.com/futig/oportune/internal/entity"
	"github.com/futig/oportune/internal/usecase/run"
)

type SessionUsecase interface {
	CreateSession(ctx context.Context, req *entity.CreateSessionRequest) (*entity.Session, error)
	GetSession(ctx context.Context, sessionID string) (*entity.Session, error)
	DeleteSession(ctx context.Context, sessionID string) error
	SetCase(ctx context.Context, sessionID string, tmpl entity.CaseTemplate) (*entity.Session, error)
	AddDirection(ctx context.Context, sessionID, direction string) (bool, *entity.Session, error)
	RemoveDirection(ctx context.Context, sessionID, direction string) (*entity.Session, error)
	Run(ctx context.Context, sessionID string, req *entity.RunRequest, opts ...run.RunOption) (*entity.RunResult, int, error)
	UpdateRecord(ctx context.Context, sessionID string, index int, patch entity.RecommendationPatch) (*entity.Recommendation, error)
	RemoveRecord(ctx context.Context, sessionID string, index int) (*entity.Session, error)
	ClearResults(ctx context.Context, sessionID string) (*entity.Session, error)
	Export(ctx context.Context, sessionID string, format entity.ResultFormat, filterExpr string) (*entity.ExportFile, error)
	Publish(ctx context.Context, sessionID, filterExpr string) (*entity.PublishResponse, error)
	Extract(ctx context.Context, text string) ([]entity.Recommendation, string, error)
}
