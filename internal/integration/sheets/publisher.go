package sheets

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/avast/retry-go/v4"
	"github.com/futig/oportune/internal/config"
	"github.com/futig/oportune/internal/entity"
	pkgRetry "github.com/futig/oportune/internal/pkg/retry"
	"github.com/futig/oportune/internal/pkg/textnorm"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

const serviceName = "google-sheets"

// Publisher replaces the contents of a worksheet with a result set.
type Publisher struct {
	service       *sheets.Service
	spreadsheetID string
	sheetName     string
	retryOptions  []retry.Option
	logger        *zap.Logger
}

// NewPublisher authenticates with a service account key file.
func NewPublisher(ctx context.Context, cfg config.SheetsConfig, logger *zap.Logger) (*Publisher, error) {
	jsonKey, err := os.ReadFile(cfg.CredentialsFile)
	if err != nil {
		return nil, fmt.Errorf("read service account key: %w", err)
	}

	jwtConfig, err := google.JWTConfigFromJSON(jsonKey, sheets.SpreadsheetsScope)
	if err != nil {
		return nil, fmt.Errorf("parse service account key: %w", err)
	}

	return newPublisher(ctx, cfg, logger, option.WithHTTPClient(jwtConfig.Client(ctx)))
}

func newPublisher(ctx context.Context, cfg config.SheetsConfig, logger *zap.Logger, opts ...option.ClientOption) (*Publisher, error) {
	if cfg.Endpoint != "" {
		opts = append(opts, option.WithEndpoint(cfg.Endpoint))
	}

	service, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	sheetName := cfg.SheetName
	if sheetName == "" {
		sheetName = entity.ExportSheetName
	}

	return &Publisher{
		service:       service,
		spreadsheetID: cfg.SpreadsheetID,
		sheetName:     sheetName,
		retryOptions:  pkgRetry.DefaultRetryConfig().ToRetryOptions(),
		logger:        logger,
	}, nil
}

// Publish clears the worksheet and writes the header plus one row per record.
func (p *Publisher) Publish(ctx context.Context, records []entity.Recommendation) (*entity.PublishResponse, error) {
	sheetRange := quoteSheet(p.sheetName)

	ctxzap.Info(ctx, "publishing results to spreadsheet",
		zap.String("spreadsheet_id", p.spreadsheetID),
		zap.Int("records", len(records)),
	)

	err := p.withRetry(ctx, func() error {
		_, err := p.service.Spreadsheets.Values.
			Clear(p.spreadsheetID, sheetRange, &sheets.ClearValuesRequest{}).
			Context(ctx).
			Do()
		return err
	})
	if err != nil {
		return nil, &entity.ExternalServiceError{Service: serviceName, Err: fmt.Errorf("clear sheet: %w", err)}
	}

	var resp *sheets.UpdateValuesResponse
	err = p.withRetry(ctx, func() error {
		var err error
		resp, err = p.service.Spreadsheets.Values.
			Update(p.spreadsheetID, sheetRange+"!A1", &sheets.ValueRange{Values: toValues(records)}).
			ValueInputOption("RAW").
			Context(ctx).
			Do()
		return err
	})
	if err != nil {
		return nil, &entity.ExternalServiceError{Service: serviceName, Err: fmt.Errorf("write values: %w", err)}
	}

	ctxzap.Info(ctx, "results published",
		zap.String("range", resp.UpdatedRange),
		zap.Int64("updated_rows", resp.UpdatedRows),
	)

	return &entity.PublishResponse{
		SpreadsheetID: p.spreadsheetID,
		Range:         resp.UpdatedRange,
		UpdatedRows:   int(resp.UpdatedRows),
	}, nil
}

func (p *Publisher) withRetry(ctx context.Context, fn func() error) error {
	opts := append([]retry.Option{
		retry.Context(ctx),
		retry.LastErrorOnly(true),
		retry.RetryIf(isRetryable),
	}, p.retryOptions...)
	return retry.Do(fn, opts...)
}

func isRetryable(err error) bool {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		return apiErr.Code == http.StatusTooManyRequests || apiErr.Code >= http.StatusInternalServerError
	}
	return false
}

func toValues(records []entity.Recommendation) [][]any {
	values := make([][]any, 0, len(records)+1)
	values = append(values, toRow(entity.ExportHeader()))
	for _, r := range records {
		values = append(values, toRow(entity.ExportRow(r)))
	}
	return values
}

func toRow(cells []string) []any {
	row := make([]any, len(cells))
	for i, c := range cells {
		row[i] = textnorm.Cell(c)
	}
	return row
}

func quoteSheet(name string) string {
	return "'" + strings.ReplaceAll(name, "'", "''") + "'"
}
