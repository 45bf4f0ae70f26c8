package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/go-playground/validator/v10"
	"github.com/quilldesk/wordwar/internal/platform/logging"
	"github.com/quilldesk/wordwar/internal/usecase"
)

type Handler struct {
	warService   *usecase.WordWarService
	recapService *usecase.EventRecapService
	logger       *logging.Logger
	validator    *validator.Validate
}

func NewHandler(
	warService *usecase.WordWarService,
	recapService *usecase.EventRecapService,
	logger *logging.Logger,
) *Handler {
	if logger == nil {
		logger = logging.Default()
	}

	return &Handler{
		warService:   warService,
		recapService: recapService,
		logger:       logger,
		validator:    validator.New(),
	}
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Healthz")
	defer span.End()

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) CreateWordWar(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.CreateWordWar")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}

	eventID := strings.TrimSpace(r.PathValue("eventID"))

	var req createWordWarRequest
	decoder := sonic.ConfigDefault.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		writeError(ctx, w, fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err))
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	war, err := h.warService.Create(ctx, usecase.CreateWordWarInput{
		EventID:           eventID,
		RequestedByUserID: principal.UserID,
		DurationMinutes:   req.DurationMinutes,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "create word war failed", "event_id", eventID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusCreated, wordWarToDTO(war))
}

func (h *Handler) JoinWordWar(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.JoinWordWar")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}

	warID := strings.TrimSpace(r.PathValue("warID"))

	var req joinWordWarRequest
	decoder := sonic.ConfigDefault.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		writeError(ctx, w, fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err))
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	err := h.warService.Join(ctx, usecase.JoinWordWarInput{
		WarID:     warID,
		UserID:    principal.UserID,
		ProjectID: req.ProjectID,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "join word war failed", "war_id", warID, "user_id", principal.UserID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "joined"})
}

func (h *Handler) LeaveWordWar(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.LeaveWordWar")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}

	warID := strings.TrimSpace(r.PathValue("warID"))
	if err := h.warService.Leave(ctx, warID, principal.UserID); err != nil {
		h.logger.WarnContext(ctx, "leave word war failed", "war_id", warID, "user_id", principal.UserID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "left"})
}

func (h *Handler) StartWordWar(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.StartWordWar")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}

	warID := strings.TrimSpace(r.PathValue("warID"))
	if err := h.warService.Start(ctx, warID, principal.UserID); err != nil {
		h.logger.WarnContext(ctx, "start word war failed", "war_id", warID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "running"})
}

func (h *Handler) CheckpointWordWar(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.CheckpointWordWar")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}

	warID := strings.TrimSpace(r.PathValue("warID"))

	var req checkpointRequest
	decoder := sonic.ConfigDefault.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		writeError(ctx, w, fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err))
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	err := h.warService.Checkpoint(ctx, usecase.CheckpointInput{
		WarID:        warID,
		UserID:       principal.UserID,
		WordsInRound: req.WordsInRound,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "checkpoint failed", "war_id", warID, "user_id", principal.UserID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, map[string]any{
		"status":         "recorded",
		"words_in_round": req.WordsInRound,
	})
}

func (h *Handler) FinishWordWar(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.FinishWordWar")
	defer span.End()

	warID := strings.TrimSpace(r.PathValue("warID"))
	if err := h.warService.Finish(ctx, warID); err != nil {
		h.logger.WarnContext(ctx, "finish word war failed", "war_id", warID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "finished"})
}

func (h *Handler) GetScoreboard(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetScoreboard")
	defer span.End()

	warID := strings.TrimSpace(r.PathValue("warID"))
	board, err := h.warService.Scoreboard(ctx, warID)
	if err != nil {
		h.logger.WarnContext(ctx, "get scoreboard failed", "war_id", warID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, scoreboardToDTO(board))
}

func (h *Handler) GetEventRecap(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetEventRecap")
	defer span.End()

	eventID := strings.TrimSpace(r.PathValue("eventID"))
	recap, err := h.recapService.Recap(ctx, eventID)
	if err != nil {
		h.logger.WarnContext(ctx, "get event recap failed", "event_id", eventID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, recapToDTO(recap))
}

func (h *Handler) validateRequest(ctx context.Context, payload any) error {
	ctx, span := startSpan(ctx, "httpapi.Handler.validateRequest")
	defer span.End()

	if err := h.validator.StructCtx(ctx, payload); err != nil {
		return fmt.Errorf("%w: validation failed: %v", usecase.ErrInvalidInput, err)
	}

	return nil
}

type createWordWarRequest struct {
	DurationMinutes int `json:"duration_minutes" validate:"required,gt=0,lte=1440"`
}

type joinWordWarRequest struct {
	ProjectID string `json:"project_id" validate:"required"`
}

type checkpointRequest struct {
	WordsInRound int `json:"words_in_round" validate:"gte=0"`
}
