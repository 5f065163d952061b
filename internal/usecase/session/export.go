package session

import (
	"context"
	"fmt"

	"github.com/futig/oportune/internal/entity"
	"github.com/futig/oportune/internal/metrics"
	"github.com/futig/oportune/internal/pkg/filter"
	"github.com/futig/oportune/internal/pkg/formatter"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// Export renders the session results. It works on a copy, so a failed
// export leaves the session untouched and can be retried.
func (uc *SessionUsecase) Export(ctx context.Context, sessionID string, format entity.ResultFormat, filterExpr string) (*entity.ExportFile, error) {
	session, err := uc.sessionRepo.GetSessionByID(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}

	file, err := uc.Render(session.Results.Records(), format, filterExpr)
	metrics.ObserveExport(string(format), err)
	if err != nil {
		ctxzap.Error(ctx, "export failed", zap.String("format", string(format)), zap.Error(err))
		return nil, err
	}

	ctxzap.Info(ctx, "results exported",
		zap.String("format", string(format)),
		zap.Int("rows", file.Rows),
		zap.Int("bytes", len(file.Data)),
	)
	return file, nil
}

// Render filters and formats records without touching any session.
func (uc *SessionUsecase) Render(records []entity.Recommendation, format entity.ResultFormat, filterExpr string) (*entity.ExportFile, error) {
	if !format.IsValid() {
		return nil, fmt.Errorf("%w: %q", entity.ErrInvalidFormat, format)
	}

	records, err := applyFilter(records, filterExpr)
	if err != nil {
		return nil, err
	}

	f, err := uc.formatters.Create(format)
	if err != nil {
		return nil, err
	}

	data, err := f.Format(records)
	if err != nil {
		return nil, fmt.Errorf("format %s: %w", format, err)
	}

	return &entity.ExportFile{
		FileName:    formatter.FileName(f),
		ContentType: f.ContentType(),
		Data:        data,
		Rows:        len(records),
	}, nil
}

// Publish pushes the session results to the configured spreadsheet.
func (uc *SessionUsecase) Publish(ctx context.Context, sessionID, filterExpr string) (*entity.PublishResponse, error) {
	if uc.publisher == nil {
		return nil, entity.ErrPublishDisabled
	}

	session, err := uc.sessionRepo.GetSessionByID(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}

	records, err := applyFilter(session.Results.Records(), filterExpr)
	if err != nil {
		return nil, err
	}

	resp, err := uc.publisher.Publish(ctx, records)
	metrics.ObserveExport("sheets", err)
	if err != nil {
		return nil, fmt.Errorf("publish results: %w", err)
	}
	return resp, nil
}

func applyFilter(records []entity.Recommendation, expr string) ([]entity.Recommendation, error) {
	f, err := filter.Compile(expr)
	if err != nil {
		return nil, err
	}
	return f.Apply(records)
}
