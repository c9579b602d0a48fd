package handler

import (
	"encoding/json"
	"net/http"

	"github.com/taskboardpro/automation/internal/domain"
	"github.com/taskboardpro/automation/internal/handler/dto"
	"github.com/taskboardpro/automation/internal/middleware"
	"github.com/taskboardpro/automation/internal/service"
)

// handleCreateRule creates a new automation rule on a project.
// @Summary Create an automation rule
// @Description Creates a rule after validating its condition and action value shapes.
// @Tags rules
// @Accept json
// @Produce json
// @Param projectId path string true "Project ID"
// @Param request body dto.RuleRequest true "Rule definition"
// @Success 201 {object} dto.RuleDetail
// @Failure 422 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /projects/{projectId}/rules [post]
func (h *Handler) handleCreateRule(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, err := middleware.GetUserIDFromContext(ctx)
	if err != nil {
		respondError(w, http.StatusUnauthorized, "INVALID_TOKEN", "Authentication required")
		return
	}

	projectID, ok := extractUUID(w, r, "projectId")
	if !ok {
		return
	}

	var req dto.RuleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	rule, err := h.ruleService.CreateRule(ctx, projectID, userID, ruleParams(req))
	if err != nil {
		status, code, message := dto.MapDomainError(err)
		respondError(w, status, code, message)
		return
	}

	respondJSON(w, http.StatusCreated, dto.ToRuleDetail(rule))
}

// handleListRules returns all rules of a project in creation order.
// @Summary List project rules
// @Tags rules
// @Produce json
// @Param projectId path string true "Project ID"
// @Success 200 {object} dto.RulesListResponse
// @Security BearerAuth
// @Router /projects/{projectId}/rules [get]
func (h *Handler) handleListRules(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	projectID, ok := extractUUID(w, r, "projectId")
	if !ok {
		return
	}

	rules, err := h.ruleService.ListProjectRules(ctx, projectID)
	if err != nil {
		status, code, message := dto.MapDomainError(err)
		respondError(w, status, code, message)
		return
	}

	respondJSON(w, http.StatusOK, dto.ToRulesListResponse(rules))
}

// handleGetRule retrieves a single rule.
// @Summary Get a rule
// @Tags rules
// @Produce json
// @Param id path string true "Rule ID"
// @Success 200 {object} dto.RuleDetail
// @Failure 404 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /rules/{id} [get]
func (h *Handler) handleGetRule(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	ruleID, ok := extractUUID(w, r, "id")
	if !ok {
		return
	}

	rule, err := h.ruleService.GetRule(ctx, ruleID)
	if err != nil {
		status, code, message := dto.MapDomainError(err)
		respondError(w, status, code, message)
		return
	}

	respondJSON(w, http.StatusOK, dto.ToRuleDetail(rule))
}

// handleReplaceRule performs a full edit of a rule's definition.
// @Summary Replace a rule
// @Description Full replace; the new definition is validated like a create.
// @Tags rules
// @Accept json
// @Produce json
// @Param id path string true "Rule ID"
// @Param request body dto.RuleRequest true "New rule definition"
// @Success 200 {object} dto.RuleDetail
// @Failure 422 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /rules/{id} [put]
func (h *Handler) handleReplaceRule(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	ruleID, ok := extractUUID(w, r, "id")
	if !ok {
		return
	}

	var req dto.RuleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	rule, err := h.ruleService.EditRule(ctx, ruleID, ruleParams(req))
	if err != nil {
		status, code, message := dto.MapDomainError(err)
		respondError(w, status, code, message)
		return
	}

	respondJSON(w, http.StatusOK, dto.ToRuleDetail(rule))
}

// handleSetRuleStatus toggles a rule between active and inactive.
// @Summary Toggle rule status
// @Tags rules
// @Accept json
// @Produce json
// @Param id path string true "Rule ID"
// @Param request body dto.SetRuleStatusRequest true "New status"
// @Success 204
// @Failure 422 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /rules/{id}/status [patch]
func (h *Handler) handleSetRuleStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	ruleID, ok := extractUUID(w, r, "id")
	if !ok {
		return
	}

	var req dto.SetRuleStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	if err := h.ruleService.SetRuleStatus(ctx, ruleID, domain.RuleStatus(req.Status)); err != nil {
		status, code, message := dto.MapDomainError(err)
		respondError(w, status, code, message)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// handleDeleteRule removes a single rule.
// @Summary Delete a rule
// @Tags rules
// @Param id path string true "Rule ID"
// @Success 204
// @Failure 404 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /rules/{id} [delete]
func (h *Handler) handleDeleteRule(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	ruleID, ok := extractUUID(w, r, "id")
	if !ok {
		return
	}

	if err := h.ruleService.DeleteRule(ctx, ruleID); err != nil {
		status, code, message := dto.MapDomainError(err)
		respondError(w, status, code, message)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// handleDeleteProjectRules removes every rule of a project. Called by the
// board backend as part of its project-deletion orchestration.
// @Summary Cascade delete project rules
// @Tags rules
// @Produce json
// @Param projectId path string true "Project ID"
// @Success 200 {object} dto.CascadeDeleteResponse
// @Security ServiceToken
// @Router /projects/{projectId}/rules [delete]
func (h *Handler) handleDeleteProjectRules(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	projectID, ok := extractUUID(w, r, "projectId")
	if !ok {
		return
	}

	deleted, err := h.ruleService.DeleteProjectRules(ctx, projectID)
	if err != nil {
		status, code, message := dto.MapDomainError(err)
		respondError(w, status, code, message)
		return
	}

	respondJSON(w, http.StatusOK, dto.CascadeDeleteResponse{Deleted: deleted})
}

// ruleParams converts the request body to service parameters.
func ruleParams(req dto.RuleRequest) service.RuleParams {
	return service.RuleParams{
		Name:        req.Name,
		TriggerType: domain.TriggerType(req.TriggerType),
		Condition:   req.Condition,
		ActionType:  domain.ActionType(req.ActionType),
		ActionValue: req.ActionValue,
		Status:      domain.RuleStatus(req.Status),
	}
}
