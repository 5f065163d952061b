package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/futig/oportune/internal/entity"
	"github.com/futig/oportune/internal/pkg/logger"
	"github.com/futig/oportune/internal/pkg/response"
	"github.com/futig/oportune/internal/pkg/validator"
	"github.com/go-chi/chi/v5"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

const maxBodyBytes = 1 << 20

type Handler struct {
	usecase   SessionUsecase
	validator *validator.Validator
}

func NewHandler(
	usecase SessionUsecase,
	validator *validator.Validator,
) *Handler {
	return &Handler{
		usecase:   usecase,
		validator: validator,
	}
}

// CreateSession handles POST /sessions
func (h *Handler) CreateSession(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "CreateSession")

	var req entity.CreateSessionRequest
	if err := decodeBody(r, &req, true); err != nil {
		h.respondError(ctx, w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	if err := h.validator.ValidateCreateSession(&req); err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	session, err := h.usecase.CreateSession(ctx, &req)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	h.respondJSON(w, http.StatusCreated, toSessionDTO(session))
}

// GetSession handles GET /sessions/{id}
func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "id")
	ctx := logger.WithSession(r.Context(), sessionID, "GetSession")

	ctxzap.Debug(ctx, "fetching session")

	session, err := h.usecase.GetSession(ctx, sessionID)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, toSessionDTO(session))
}

// DeleteSession handles DELETE /sessions/{id}
func (h *Handler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "id")
	ctx := logger.WithSession(r.Context(), sessionID, "DeleteSession")

	if err := h.usecase.DeleteSession(ctx, sessionID); err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// SetCase handles PUT /sessions/{id}/case
func (h *Handler) SetCase(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "id")
	ctx := logger.WithSession(r.Context(), sessionID, "SetCase")

	var tmpl entity.CaseTemplate
	if err := decodeBody(r, &tmpl, false); err != nil {
		h.respondError(ctx, w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	if err := h.validator.ValidateCase(&tmpl); err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	session, err := h.usecase.SetCase(ctx, sessionID, tmpl)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, toSessionDTO(session))
}

// AddDirection handles POST /sessions/{id}/directions
func (h *Handler) AddDirection(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "id")
	ctx := logger.WithSession(r.Context(), sessionID, "AddDirection")

	var req entity.AddDirectionRequest
	if err := decodeBody(r, &req, false); err != nil {
		h.respondError(ctx, w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	if err := h.validator.ValidateAddDirection(&req); err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	added, session, err := h.usecase.AddDirection(ctx, sessionID, req.Direction)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	status := http.StatusCreated
	if !added {
		status = http.StatusOK
	}
	h.respondJSON(w, status, entity.AddDirectionResponse{
		Added:      added,
		Directions: session.Directions.Tags(),
	})
}

// RemoveDirection handles DELETE /sessions/{id}/directions/{direction}
func (h *Handler) RemoveDirection(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "id")
	direction := chi.URLParam(r, "direction")
	if unescaped, err := url.PathUnescape(direction); err == nil {
		direction = unescaped
	}

	ctx := logger.WithSession(r.Context(), sessionID, "RemoveDirection",
		zap.String("direction", direction),
	)

	session, err := h.usecase.RemoveDirection(ctx, sessionID, direction)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, toSessionDTO(session))
}

// Run handles POST /sessions/{id}/runs. The run is synchronous; a run where
// every direction failed answers 502 with the failure list.
func (h *Handler) Run(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "id")
	ctx := logger.WithSession(r.Context(), sessionID, "Run")

	var req entity.RunRequest
	if err := decodeBody(r, &req, true); err != nil {
		h.respondError(ctx, w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	if err := h.validator.ValidateRun(&req); err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	result, totalRows, err := h.usecase.Run(ctx, sessionID, &req)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	status := http.StatusOK
	if len(result.Records) == 0 && len(result.Failures) > 0 {
		ctxzap.Warn(ctx, "every direction failed", zap.Int("failures", len(result.Failures)))
		status = http.StatusBadGateway
	}
	h.respondJSON(w, status, toRunResponse(result, totalRows))
}

// UpdateRecord handles PATCH /sessions/{id}/results/{index}
func (h *Handler) UpdateRecord(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "id")
	ctx := logger.WithSession(r.Context(), sessionID, "UpdateRecord")

	index, err := h.validator.ParseIndex(chi.URLParam(r, "index"))
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	var patch entity.RecommendationPatch
	if err := decodeBody(r, &patch, false); err != nil {
		h.respondError(ctx, w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	if err := h.validator.ValidatePatch(&patch); err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	record, err := h.usecase.UpdateRecord(ctx, sessionID, index, patch)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, record)
}

// RemoveRecord handles DELETE /sessions/{id}/results/{index}
func (h *Handler) RemoveRecord(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "id")
	ctx := logger.WithSession(r.Context(), sessionID, "RemoveRecord")

	index, err := h.validator.ParseIndex(chi.URLParam(r, "index"))
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	session, err := h.usecase.RemoveRecord(ctx, sessionID, index)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, toSessionDTO(session))
}

// ClearResults handles DELETE /sessions/{id}/results
func (h *Handler) ClearResults(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "id")
	ctx := logger.WithSession(r.Context(), sessionID, "ClearResults")

	session, err := h.usecase.ClearResults(ctx, sessionID)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, toSessionDTO(session))
}

// Export handles GET /sessions/{id}/export?format=xlsx&filter=<cel>
func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "id")

	formatParam := r.URL.Query().Get("format")
	if formatParam == "" {
		formatParam = string(entity.FormatXLSX)
	}
	format := entity.ResultFormat(formatParam)

	ctx := logger.WithSession(r.Context(), sessionID, "Export",
		zap.String("format", formatParam),
	)

	if !format.IsValid() {
		h.respondError(ctx, w, http.StatusBadRequest, "invalid format parameter",
			fmt.Errorf("format must be one of: xlsx, markdown, json, docx, pdf"))
		return
	}

	file, err := h.usecase.Export(ctx, sessionID, format, r.URL.Query().Get("filter"))
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	ctxzap.Info(ctx, "export ready", zap.Int("rows", file.Rows), zap.Int("bytes", len(file.Data)))
	response.File(w, file)
}

// Publish handles POST /sessions/{id}/publish?filter=<cel>
func (h *Handler) Publish(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "id")
	ctx := logger.WithSession(r.Context(), sessionID, "Publish")

	resp, err := h.usecase.Publish(ctx, sessionID, r.URL.Query().Get("filter"))
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, resp)
}

// Extract handles POST /extract
func (h *Handler) Extract(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "Extract")

	var req entity.ExtractRequest
	if err := decodeBody(r, &req, false); err != nil {
		h.respondError(ctx, w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	if err := h.validator.ValidateExtract(&req); err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	records, strategy, err := h.usecase.Extract(ctx, req.Text)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, entity.ExtractResponse{
		Strategy: strategy,
		Records:  records,
	})
}

// decodeBody reads a JSON body. allowEmpty accepts a missing body.
func decodeBody(r *http.Request, dst any, allowEmpty bool) error {
	err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(dst)
	if errors.Is(err, io.EOF) && allowEmpty {
		return nil
	}
	return err
}

func (h *Handler) respondJSON(w http.ResponseWriter, status int, data any) {
	response.JSON(w, status, data)
}

func (h *Handler) respondError(ctx context.Context, w http.ResponseWriter, status int, message string, err error) {
	if status >= http.StatusInternalServerError {
		ctxzap.Error(ctx, message, zap.Error(err))
	} else {
		ctxzap.Warn(ctx, message, zap.Error(err))
	}

	var field string
	var ve *entity.ValidationError
	if errors.As(err, &ve) {
		field = ve.Field
		message = fmt.Sprintf("%s: %s", message, ve.Error())
	}
	response.Error(w, status, message, field)
}

func (h *Handler) handleUsecaseError(ctx context.Context, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, entity.ErrValidation):
		h.respondError(ctx, w, http.StatusBadRequest, "validation failed", err)
	case errors.Is(err, entity.ErrSessionNotFound) || errors.Is(err, entity.ErrRecordNotFound):
		h.respondError(ctx, w, http.StatusNotFound, "resource not found", err)
	case errors.Is(err, entity.ErrInvalidParameter) || errors.Is(err, entity.ErrInvalidFormat) ||
		errors.Is(err, entity.ErrInvalidFilter) || errors.Is(err, entity.ErrMissingField):
		h.respondError(ctx, w, http.StatusBadRequest, "invalid parameter", err)
	case errors.Is(err, entity.ErrNoStructureFound) || errors.Is(err, entity.ErrParse):
		h.respondError(ctx, w, http.StatusUnprocessableEntity, "no recommendations found in text", err)
	case errors.Is(err, entity.ErrPublishDisabled):
		h.respondError(ctx, w, http.StatusConflict, "publishing is disabled", err)
	case errors.Is(err, context.DeadlineExceeded):
		h.respondError(ctx, w, http.StatusGatewayTimeout, "run timed out", err)
	case errors.Is(err, entity.ErrRunAborted) || errors.Is(err, entity.ErrExternalService) ||
		errors.Is(err, entity.ErrGeneration):
		h.respondError(ctx, w, http.StatusBadGateway, "upstream service failed", err)
	default:
		h.respondError(ctx, w, http.StatusInternalServerError, "internal server error", err)
	}
}
