package session

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/futig/oportune/internal/entity"
	"github.com/futig/oportune/internal/pkg/formatter"
	"github.com/futig/oportune/internal/repository"
	"github.com/futig/oportune/internal/usecase/extractor"
	"github.com/futig/oportune/internal/usecase/run"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

type fakeRunner struct {
	mu         sync.Mutex
	directions [][]string
	templates  []entity.CaseTemplate
	err        error
}

func (r *fakeRunner) Run(_ context.Context, tmpl entity.CaseTemplate, directions []string, _ ...run.RunOption) (*entity.RunResult, error) {
	r.mu.Lock()
	r.directions = append(r.directions, directions)
	r.templates = append(r.templates, tmpl)
	r.mu.Unlock()

	if r.err != nil {
		return nil, r.err
	}

	result := &entity.RunResult{RunID: "run-1"}
	for _, d := range directions {
		result.Records = append(result.Records, entity.Recommendation{
			Direction:   d,
			Opportunity: "Oportunidade " + d,
			Gains:       "Ganho " + d,
		})
	}
	return result, nil
}

type fakePublisher struct {
	records []entity.Recommendation
	err     error
}

func (p *fakePublisher) Publish(_ context.Context, records []entity.Recommendation) (*entity.PublishResponse, error) {
	p.records = records
	if p.err != nil {
		return nil, p.err
	}
	return &entity.PublishResponse{SpreadsheetID: "sheet", UpdatedRows: len(records) + 1}, nil
}

func testCase() *entity.CaseTemplate {
	return &entity.CaseTemplate{
		Sector:   "Varejo",
		Process:  "Compras",
		Activity: "Cotação",
		Event:    "Atraso na entrega",
		Cause:    "Fornecedor único",
	}
}

func newTestUsecase(runner Runner, publisher Publisher) *SessionUsecase {
	return NewUsecase(
		repository.NewSessionMemory(time.Hour, time.Minute),
		runner,
		extractor.NewRegexExtractor(),
		formatter.NewFactory(formatter.Options{}),
		publisher,
		zap.NewNop(),
	)
}

func TestCreateSession(t *testing.T) {
	uc := newTestUsecase(&fakeRunner{}, nil)
	ctx := context.Background()

	s, err := uc.CreateSession(ctx, &entity.CreateSessionRequest{
		Case:       testCase(),
		Directions: []string{"Custo", " Custo ", "", "Qualidade"},
	})
	require.NoError(t, err)
	assert.NotEmpty(t, s.ID)
	assert.Equal(t, *testCase(), s.Template)
	assert.Equal(t, []string{"Custo", "Qualidade"}, s.Directions.Tags())

	got, err := uc.GetSession(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, s.ID, got.ID)

	_, err = uc.GetSession(ctx, "missing")
	assert.ErrorIs(t, err, entity.ErrSessionNotFound)
}

func TestDirectionsEditing(t *testing.T) {
	uc := newTestUsecase(&fakeRunner{}, nil)
	ctx := context.Background()

	s, err := uc.CreateSession(ctx, &entity.CreateSessionRequest{})
	require.NoError(t, err)

	added, s, err := uc.AddDirection(ctx, s.ID, "Custo")
	require.NoError(t, err)
	assert.True(t, added)

	added, s, err = uc.AddDirection(ctx, s.ID, "Custo")
	require.NoError(t, err)
	assert.False(t, added)
	assert.Equal(t, 1, s.Directions.Len())

	s, err = uc.RemoveDirection(ctx, s.ID, "Custo")
	require.NoError(t, err)
	assert.Equal(t, 0, s.Directions.Len())

	_, err = uc.RemoveDirection(ctx, s.ID, "Custo")
	assert.NoError(t, err)
}

func TestRunAppendsResults(t *testing.T) {
	runner := &fakeRunner{}
	uc := newTestUsecase(runner, nil)
	ctx := context.Background()

	s, err := uc.CreateSession(ctx, &entity.CreateSessionRequest{Case: testCase(), Directions: []string{"Custo", "Qualidade"}})
	require.NoError(t, err)

	result, total, err := uc.Run(ctx, s.ID, &entity.RunRequest{})
	require.NoError(t, err)
	assert.Len(t, result.Records, 2)
	assert.Equal(t, 2, total)

	_, total, err = uc.Run(ctx, s.ID, &entity.RunRequest{Directions: []string{"Prazo"}})
	require.NoError(t, err)
	assert.Equal(t, 3, total)

	assert.Equal(t, [][]string{{"Custo", "Qualidade"}, {"Prazo"}}, runner.directions)
	assert.Equal(t, *testCase(), runner.templates[0])

	got, err := uc.GetSession(ctx, s.ID)
	require.NoError(t, err)
	records := got.Results.Records()
	require.Len(t, records, 3)
	assert.Equal(t, "Custo", records[0].Direction)
	assert.Equal(t, "Qualidade", records[1].Direction)
	assert.Equal(t, "Prazo", records[2].Direction)
}

func TestRunErrorLeavesResultsUntouched(t *testing.T) {
	runner := &fakeRunner{err: entity.NewValidationError("directions", entity.ErrNoDirections)}
	uc := newTestUsecase(runner, nil)
	ctx := context.Background()

	s, err := uc.CreateSession(ctx, &entity.CreateSessionRequest{Case: testCase()})
	require.NoError(t, err)

	_, _, err = uc.Run(ctx, s.ID, &entity.RunRequest{})
	assert.ErrorIs(t, err, entity.ErrNoDirections)

	got, err := uc.GetSession(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.Results.Len())

	_, _, err = uc.Run(ctx, "missing", &entity.RunRequest{})
	assert.ErrorIs(t, err, entity.ErrSessionNotFound)
}

func seededSession(t *testing.T, uc *SessionUsecase) string {
	t.Helper()
	ctx := context.Background()
	s, err := uc.CreateSession(ctx, &entity.CreateSessionRequest{Case: testCase(), Directions: []string{"Custo", "Qualidade", "Prazo"}})
	require.NoError(t, err)
	_, _, err = uc.Run(ctx, s.ID, &entity.RunRequest{})
	require.NoError(t, err)
	return s.ID
}

func TestRecordEditing(t *testing.T) {
	uc := newTestUsecase(&fakeRunner{}, nil)
	ctx := context.Background()
	id := seededSession(t, uc)

	solution := "Nova solução"
	rec, err := uc.UpdateRecord(ctx, id, 1, entity.RecommendationPatch{Solution: &solution})
	require.NoError(t, err)
	assert.Equal(t, "Nova solução", rec.Solution)
	assert.Equal(t, "Oportunidade Qualidade", rec.Opportunity)

	_, err = uc.UpdateRecord(ctx, id, 9, entity.RecommendationPatch{Solution: &solution})
	assert.ErrorIs(t, err, entity.ErrRecordNotFound)

	s, err := uc.RemoveRecord(ctx, id, 0)
	require.NoError(t, err)
	records := s.Results.Records()
	require.Len(t, records, 2)
	assert.Equal(t, "Qualidade", records[0].Direction)
	assert.Equal(t, "Nova solução", records[0].Solution)
	assert.Equal(t, "Prazo", records[1].Direction)

	s, err = uc.ClearResults(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 0, s.Results.Len())
}

func TestExport(t *testing.T) {
	uc := newTestUsecase(&fakeRunner{}, nil)
	ctx := context.Background()
	id := seededSession(t, uc)

	file, err := uc.Export(ctx, id, entity.FormatXLSX, `direction != "Prazo"`)
	require.NoError(t, err)
	assert.Equal(t, "oportunidade_melhoria.xlsx", file.FileName)
	assert.Equal(t, 2, file.Rows)

	wb, err := excelize.OpenReader(bytes.NewReader(file.Data))
	require.NoError(t, err)
	defer wb.Close()
	rows, err := wb.GetRows(entity.ExportSheetName)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "Custo", rows[1][0])
	assert.Equal(t, "Qualidade", rows[2][0])

	_, err = uc.Export(ctx, id, "csv", "")
	assert.ErrorIs(t, err, entity.ErrInvalidFormat)

	_, err = uc.Export(ctx, id, entity.FormatJSON, "direction ==")
	assert.ErrorIs(t, err, entity.ErrInvalidFilter)

	got, err := uc.GetSession(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 3, got.Results.Len())
}

func TestPublish(t *testing.T) {
	ctx := context.Background()

	disabled := newTestUsecase(&fakeRunner{}, nil)
	id := seededSession(t, disabled)
	_, err := disabled.Publish(ctx, id, "")
	assert.ErrorIs(t, err, entity.ErrPublishDisabled)

	publisher := &fakePublisher{}
	uc := newTestUsecase(&fakeRunner{}, publisher)
	id = seededSession(t, uc)

	resp, err := uc.Publish(ctx, id, `index < 2`)
	require.NoError(t, err)
	assert.Equal(t, 3, resp.UpdatedRows)
	assert.Len(t, publisher.records, 2)

	publisher.err = &entity.ExternalServiceError{Service: "google-sheets", Err: errors.New("quota")}
	_, err = uc.Publish(ctx, id, "")
	assert.ErrorIs(t, err, entity.ErrExternalService)
}

func TestExtract(t *testing.T) {
	uc := newTestUsecase(&fakeRunner{}, nil)

	records, strategy, err := uc.Extract(context.Background(), "**Oportunidade de Melhoria**: A\n**Ganhos**: B")
	require.NoError(t, err)
	assert.Equal(t, "regex", strategy)
	require.Len(t, records, 1)
	assert.Equal(t, "A", records[0].Opportunity)
	assert.Equal(t, "B", records[0].Gains)

	_, _, err = uc.Extract(context.Background(), "texto livre")
	assert.ErrorIs(t, err, entity.ErrNoStructureFound)
}

type fakeNotifier struct {
	mu        sync.Mutex
	completed []*entity.CallbackRunData
	failed    []string
	urls      []string
	requests  []string
}

func (n *fakeNotifier) RunCompleted(_ context.Context, callbackURL, requestID string, data *entity.CallbackRunData) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.urls = append(n.urls, callbackURL)
	n.requests = append(n.requests, requestID)
	n.completed = append(n.completed, data)
}

func (n *fakeNotifier) RunFailed(_ context.Context, callbackURL, requestID, _, message string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.urls = append(n.urls, callbackURL)
	n.requests = append(n.requests, requestID)
	n.failed = append(n.failed, message)
}

func TestRunCallbacks(t *testing.T) {
	notifier := &fakeNotifier{}
	runner := &fakeRunner{}
	uc := NewUsecase(
		repository.NewSessionMemory(time.Hour, time.Minute),
		runner,
		extractor.NewRegexExtractor(),
		formatter.NewFactory(formatter.Options{}),
		nil,
		zap.NewNop(),
		WithNotifier(notifier),
	)
	ctx := context.Background()

	s, err := uc.CreateSession(ctx, &entity.CreateSessionRequest{Case: testCase(), Directions: []string{"Custo"}})
	require.NoError(t, err)

	_, _, err = uc.Run(ctx, s.ID, &entity.RunRequest{})
	require.NoError(t, err)

	_, _, err = uc.Run(ctx, s.ID, &entity.RunRequest{CallbackURL: "http://hook.local/ok"})
	require.NoError(t, err)

	runner.err = errors.New("boom")
	_, _, err = uc.Run(ctx, s.ID, &entity.RunRequest{CallbackURL: "http://hook.local/fail"})
	require.Error(t, err)

	uc.Wait()

	require.Len(t, notifier.completed, 1)
	assert.Equal(t, s.ID, notifier.completed[0].SessionID)
	assert.Equal(t, 1, notifier.completed[0].AppendedRows)
	assert.Equal(t, 2, notifier.completed[0].TotalRows)
	assert.Equal(t, []string{"boom"}, notifier.failed)
	assert.ElementsMatch(t, []string{"http://hook.local/ok", "http://hook.local/fail"}, notifier.urls)

	require.Len(t, notifier.requests, 2)
	assert.Contains(t, notifier.requests, "run-1")
	for _, id := range notifier.requests {
		assert.NotEqual(t, s.ID, id)
		if id != "run-1" {
			_, err := uuid.Parse(id)
			assert.NoError(t, err, "failed run request id %q", id)
		}
	}
}
