package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/futig/oportune/internal/entity"
	"github.com/futig/oportune/internal/pkg/logger"
	"github.com/futig/oportune/internal/repository"
	"github.com/futig/oportune/internal/usecase/run"
	"github.com/google/uuid"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// SessionUsecase implements the advisory session flow: case form,
// direction tags, runs, result edits and exports.
type SessionUsecase struct {
	sessionRepo repository.SessionRepository
	runner      Runner
	extractor   Extractor
	formatters  FormatterFactory
	publisher   Publisher
	notifier    Notifier
	logger      *zap.Logger
	now         func() time.Time
	wg          sync.WaitGroup
}

type Option func(*SessionUsecase)

// WithNotifier enables run callbacks for requests that carry a callback URL.
func WithNotifier(n Notifier) Option {
	return func(uc *SessionUsecase) {
		uc.notifier = n
	}
}

// NewUsecase creates a new session use case. publisher may be nil when
// spreadsheet publishing is disabled.
func NewUsecase(
	sessionRepo repository.SessionRepository,
	runner Runner,
	extractor Extractor,
	formatters FormatterFactory,
	publisher Publisher,
	logger *zap.Logger,
	opts ...Option,
) *SessionUsecase {
	uc := &SessionUsecase{
		sessionRepo: sessionRepo,
		runner:      runner,
		extractor:   extractor,
		formatters:  formatters,
		publisher:   publisher,
		logger:      logger,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

// Wait blocks until pending run callbacks are delivered.
func (uc *SessionUsecase) Wait() {
	uc.wg.Wait()
}

// CreateSession stores a new session, optionally pre-filled with a case and directions.
func (uc *SessionUsecase) CreateSession(ctx context.Context, req *entity.CreateSessionRequest) (*entity.Session, error) {
	session := entity.NewSession(uuid.New().String(), uc.now())
	if req.Case != nil {
		session.Template = *req.Case
	}
	for _, d := range req.Directions {
		session.Directions.Add(d)
	}

	created, err := uc.sessionRepo.CreateSession(ctx, session)
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	ctxzap.Info(ctx, "session created",
		zap.String("session_id", created.ID),
		zap.Int("directions", created.Directions.Len()),
	)
	return created, nil
}

func (uc *SessionUsecase) GetSession(ctx context.Context, sessionID string) (*entity.Session, error) {
	session, err := uc.sessionRepo.GetSessionByID(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	return session, nil
}

func (uc *SessionUsecase) DeleteSession(ctx context.Context, sessionID string) error {
	if err := uc.sessionRepo.DeleteSession(ctx, sessionID); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// SetCase replaces the case form of the session.
func (uc *SessionUsecase) SetCase(ctx context.Context, sessionID string, tmpl entity.CaseTemplate) (*entity.Session, error) {
	session, err := uc.sessionRepo.UpdateSession(ctx, sessionID, func(s *entity.Session) error {
		s.Template = tmpl
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("set case: %w", err)
	}
	return session, nil
}

// AddDirection adds a tag to the session. added is false for blank or
// duplicate tags, which leave the set unchanged.
func (uc *SessionUsecase) AddDirection(ctx context.Context, sessionID, direction string) (bool, *entity.Session, error) {
	var added bool
	session, err := uc.sessionRepo.UpdateSession(ctx, sessionID, func(s *entity.Session) error {
		added = s.Directions.Add(direction)
		return nil
	})
	if err != nil {
		return false, nil, fmt.Errorf("add direction: %w", err)
	}
	return added, session, nil
}

func (uc *SessionUsecase) RemoveDirection(ctx context.Context, sessionID, direction string) (*entity.Session, error) {
	session, err := uc.sessionRepo.UpdateSession(ctx, sessionID, func(s *entity.Session) error {
		s.Directions.Remove(direction)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("remove direction: %w", err)
	}
	return session, nil
}

// Run generates recommendations for the session case and appends them to
// the session results. Explicit directions override the session set.
// The session is not locked while the run is in flight.
func (uc *SessionUsecase) Run(ctx context.Context, sessionID string, req *entity.RunRequest, opts ...run.RunOption) (*entity.RunResult, int, error) {
	ctx = logger.AddFields(ctx, zap.String("session_id", sessionID))

	session, err := uc.sessionRepo.GetSessionByID(ctx, sessionID)
	if err != nil {
		return nil, 0, fmt.Errorf("get session: %w", err)
	}

	directions := session.Directions.Tags()
	if len(req.Directions) > 0 {
		directions = req.Directions
	}

	runID := uuid.NewString()
	opts = append(opts, run.WithRunID(runID))

	result, err := uc.runner.Run(ctx, session.Template, directions, opts...)
	if err != nil {
		uc.notifyFailed(ctx, req.CallbackURL, runID, sessionID, err)
		return nil, 0, err
	}

	updated, err := uc.sessionRepo.UpdateSession(ctx, sessionID, func(s *entity.Session) error {
		s.Results.Append(result.Records...)
		return nil
	})
	if err != nil {
		uc.notifyFailed(ctx, req.CallbackURL, result.RunID, sessionID, err)
		return nil, 0, fmt.Errorf("store run results: %w", err)
	}

	ctxzap.Info(ctx, "run results stored",
		zap.String("run_id", result.RunID),
		zap.Int("appended", len(result.Records)),
		zap.Int("total_rows", updated.Results.Len()),
	)

	if req.CallbackURL != "" && uc.notifier != nil {
		data := &entity.CallbackRunData{
			SessionID:    sessionID,
			RunID:        result.RunID,
			AppendedRows: len(result.Records),
			TotalRows:    updated.Results.Len(),
			Failures:     result.Failures,
		}
		uc.notify(ctx, func(ctx context.Context) {
			uc.notifier.RunCompleted(ctx, req.CallbackURL, result.RunID, data)
		})
	}
	return result, updated.Results.Len(), nil
}

// notifyFailed reports under the same request ID a successful run would use.
func (uc *SessionUsecase) notifyFailed(ctx context.Context, callbackURL, runID, sessionID string, runErr error) {
	if callbackURL == "" || uc.notifier == nil {
		return
	}
	message := runErr.Error()
	uc.notify(ctx, func(ctx context.Context) {
		uc.notifier.RunFailed(ctx, callbackURL, runID, sessionID, message)
	})
}

// notify delivers in the background, detached from the request deadline.
func (uc *SessionUsecase) notify(ctx context.Context, send func(context.Context)) {
	ctx = context.WithoutCancel(ctx)
	uc.wg.Add(1)
	go func() {
		defer uc.wg.Done()
		send(ctx)
	}()
}

// UpdateRecord replaces the patched fields of one result row.
func (uc *SessionUsecase) UpdateRecord(ctx context.Context, sessionID string, index int, patch entity.RecommendationPatch) (*entity.Recommendation, error) {
	var record entity.Recommendation
	_, err := uc.sessionRepo.UpdateSession(ctx, sessionID, func(s *entity.Session) error {
		var err error
		record, err = s.Results.Update(index, patch)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("update record: %w", err)
	}
	return &record, nil
}

func (uc *SessionUsecase) RemoveRecord(ctx context.Context, sessionID string, index int) (*entity.Session, error) {
	session, err := uc.sessionRepo.UpdateSession(ctx, sessionID, func(s *entity.Session) error {
		return s.Results.Remove(index)
	})
	if err != nil {
		return nil, fmt.Errorf("remove record: %w", err)
	}
	return session, nil
}

func (uc *SessionUsecase) ClearResults(ctx context.Context, sessionID string) (*entity.Session, error) {
	session, err := uc.sessionRepo.UpdateSession(ctx, sessionID, func(s *entity.Session) error {
		s.Results.Clear()
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("clear results: %w", err)
	}
	return session, nil
}

// Extract structures a raw answer without touching any session.
func (uc *SessionUsecase) Extract(ctx context.Context, text string) ([]entity.Recommendation, string, error) {
	records, err := uc.extractor.Extract(ctx, text)
	if err != nil {
		return nil, uc.extractor.Name(), err
	}
	return records, uc.extractor.Name(), nil
}
