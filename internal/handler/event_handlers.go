package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/taskboardpro/automation/internal/domain"
	"github.com/taskboardpro/automation/internal/handler/dto"
)

// handleTriggerEvent accepts a board event and runs the automation engine.
// Unrecognized event types are dropped with a 422; per-rule action failures
// are reported in the outcomes, not as an HTTP error.
// @Summary Deliver a board event
// @Tags events
// @Accept json
// @Produce json
// @Param request body dto.TriggerEventRequest true "Domain event"
// @Success 200 {object} dto.EngineResultResponse
// @Failure 422 {object} dto.ErrorResponse
// @Security ServiceToken
// @Router /events/trigger [post]
func (h *Handler) handleTriggerEvent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req dto.TriggerEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	if req.ProjectID == "" {
		respondError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "project_id is required")
		return
	}

	raw := domain.RawEvent{
		Type:      req.Type,
		ProjectID: req.ProjectID,
		TaskID:    req.TaskID,
		ActorID:   req.ActorID,
		Payload:   req.Payload,
	}
	if req.Timestamp != "" {
		ts, err := time.Parse(time.RFC3339, req.Timestamp)
		if err != nil {
			respondError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "timestamp must be RFC 3339")
			return
		}
		raw.Timestamp = ts
	}

	result, err := h.eng.Handle(ctx, raw)
	if err != nil {
		if errors.Is(err, domain.ErrUnrecognizedEvent) {
			slog.Warn("event dropped", "event_type", req.Type, "project_id", req.ProjectID)
		}
		status, code, message := dto.MapDomainError(err)
		respondError(w, status, code, message)
		return
	}

	respondJSON(w, http.StatusOK, dto.ToEngineResultResponse(result))
}
