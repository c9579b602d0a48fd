package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/taskboardpro/automation/internal/client"
	"github.com/taskboardpro/automation/internal/engine"
	"github.com/taskboardpro/automation/internal/handler/dto"
	"github.com/taskboardpro/automation/internal/middleware"
	"github.com/taskboardpro/automation/internal/repository"
	"github.com/taskboardpro/automation/internal/service"
)

// Handler holds dependencies for HTTP handlers.
type Handler struct {
	pool           *pgxpool.Pool
	ruleService    *service.RuleService
	eng            *engine.Engine
	authMiddleware *middleware.AuthMiddleware
}

// New creates a new Handler instance with all dependencies.
func New(pool *pgxpool.Pool, board *client.Board, jwtSecret, serviceToken string) *Handler {
	// Create repositories
	ruleRepo := repository.NewRuleRepository(pool)
	executionRepo := repository.NewExecutionRepository(pool)

	// Create services; the board client serves as task, project, and
	// notification collaborator
	ruleService := service.NewRuleService(ruleRepo, board)
	executor := engine.NewExecutor(board, board)
	eng := engine.New(ruleRepo, executionRepo, executor)

	// Create middleware
	authMiddleware := middleware.NewAuthMiddleware(jwtSecret, serviceToken)

	return &Handler{
		pool:           pool,
		ruleService:    ruleService,
		eng:            eng,
		authMiddleware: authMiddleware,
	}
}

// RegisterRoutes registers all HTTP routes.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	// Health check
	mux.HandleFunc("GET /healthz", h.handleHealthz)

	// Rule authoring routes with user authentication
	auth := h.authMiddleware.Authenticate
	mux.Handle("POST /api/v1/projects/{projectId}/rules", auth(http.HandlerFunc(h.handleCreateRule)))
	mux.Handle("GET /api/v1/projects/{projectId}/rules", auth(http.HandlerFunc(h.handleListRules)))
	mux.Handle("GET /api/v1/rules/{id}", auth(http.HandlerFunc(h.handleGetRule)))
	mux.Handle("PUT /api/v1/rules/{id}", auth(http.HandlerFunc(h.handleReplaceRule)))
	mux.Handle("PATCH /api/v1/rules/{id}/status", auth(http.HandlerFunc(h.handleSetRuleStatus)))
	mux.Handle("DELETE /api/v1/rules/{id}", auth(http.HandlerFunc(h.handleDeleteRule)))

	// Service-to-service routes called by the board backend
	svc := h.authMiddleware.AuthenticateService
	mux.Handle("POST /api/v1/events/trigger", svc(http.HandlerFunc(h.handleTriggerEvent)))
	mux.Handle("DELETE /api/v1/projects/{projectId}/rules", svc(http.HandlerFunc(h.handleDeleteProjectRules)))
}

// handleHealthz returns 200 OK if the database is reachable.
func (h *Handler) handleHealthz(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := h.pool.Ping(ctx); err != nil {
		slog.Error("database health check failed", "error", err)
		http.Error(w, "database unavailable", http.StatusServiceUnavailable)
		return
	}

	w.WriteHeader(http.StatusOK)
}

// respondJSON writes a JSON response with the given status code.
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("failed to encode JSON response", "error", err)
	}
}

// respondError writes a standard error response.
func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, dto.NewErrorResponse(code, message))
}

// extractUUID extracts and validates a UUID path parameter.
// Returns (value, true) if valid, ("", false) if invalid (error already
// sent to client).
func extractUUID(w http.ResponseWriter, r *http.Request, param string) (string, bool) {
	value := r.PathValue(param)
	if value == "" {
		respondError(w, http.StatusBadRequest, "INVALID_REQUEST", param+" is required")
		return "", false
	}

	if _, err := uuid.Parse(value); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_REQUEST", param+" must be a valid UUID")
		return "", false
	}

	return value, true
}
