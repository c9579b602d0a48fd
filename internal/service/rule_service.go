package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/taskboardpro/automation/internal/domain"
)

// RuleStore is the persistence surface RuleService needs.
type RuleStore interface {
	Create(ctx context.Context, rule *domain.AutomationRule) (*domain.AutomationRule, error)
	Replace(ctx context.Context, rule *domain.AutomationRule) error
	SetStatus(ctx context.Context, ruleID string, status domain.RuleStatus) error
	Delete(ctx context.Context, ruleID string) error
	DeleteByProject(ctx context.Context, projectID string) (int64, error)
	GetByID(ctx context.Context, ruleID string) (*domain.AutomationRule, error)
	ListByProject(ctx context.Context, projectID string) ([]*domain.AutomationRule, error)
}

// ProjectDirectory answers whether a project exists. Projects live in the
// board backend's store, so existence is checked through the collaborator.
type ProjectDirectory interface {
	GetProjectMembers(ctx context.Context, projectID string) ([]string, error)
}

// RuleService coordinates rule authoring: shape validation before
// persisting, full-replace edits, status toggling, and cascade deletion.
type RuleService struct {
	rules    RuleStore
	projects ProjectDirectory
}

// NewRuleService creates a new RuleService.
func NewRuleService(rules RuleStore, projects ProjectDirectory) *RuleService {
	return &RuleService{
		rules:    rules,
		projects: projects,
	}
}

// RuleParams is the full definition of a rule as supplied by its author.
type RuleParams struct {
	Name        string
	TriggerType domain.TriggerType
	Condition   json.RawMessage
	ActionType  domain.ActionType
	ActionValue json.RawMessage
	Status      domain.RuleStatus
}

// validate rejects malformed rule definitions before they reach the store.
func (p RuleParams) validate() error {
	if p.Name == "" {
		return domain.ErrEmptyRuleName
	}
	if !p.TriggerType.IsValid() {
		return fmt.Errorf("%w: %q", domain.ErrInvalidTrigger, p.TriggerType)
	}
	if !p.ActionType.IsValid() {
		return fmt.Errorf("%w: %q", domain.ErrInvalidAction, p.ActionType)
	}
	if p.Status != "" && !p.Status.IsValid() {
		return fmt.Errorf("%w: %q", domain.ErrInvalidRuleStatus, p.Status)
	}
	if err := domain.ValidateCondition(p.TriggerType, p.Condition); err != nil {
		return err
	}
	return domain.ValidateActionValue(p.ActionType, p.ActionValue)
}

// CreateRule validates the definition and the owning project, then persists.
func (s *RuleService) CreateRule(
	ctx context.Context,
	projectID string,
	createdBy string,
	params RuleParams,
) (*domain.AutomationRule, error) {
	if err := params.validate(); err != nil {
		return nil, err
	}

	if err := s.checkProject(ctx, projectID); err != nil {
		return nil, err
	}

	status := params.Status
	if status == "" {
		status = domain.RuleStatusActive
	}

	rule, err := s.rules.Create(ctx, &domain.AutomationRule{
		ProjectID:   projectID,
		Name:        params.Name,
		TriggerType: params.TriggerType,
		Condition:   params.Condition,
		ActionType:  params.ActionType,
		ActionValue: params.ActionValue,
		Status:      status,
		CreatedBy:   createdBy,
	})
	if err != nil {
		return nil, err
	}

	slog.Info("automation rule created",
		"rule_id", rule.ID,
		"project_id", projectID,
		"trigger", rule.TriggerType,
		"action", rule.ActionType,
	)

	return rule, nil
}

// EditRule replaces a rule's definition in full, revalidating the new shape.
// Project ownership and authorship are immutable.
func (s *RuleService) EditRule(ctx context.Context, ruleID string, params RuleParams) (*domain.AutomationRule, error) {
	if err := params.validate(); err != nil {
		return nil, err
	}

	rule, err := s.rules.GetByID(ctx, ruleID)
	if err != nil {
		return nil, err
	}

	rule.Name = params.Name
	rule.TriggerType = params.TriggerType
	rule.Condition = params.Condition
	rule.ActionType = params.ActionType
	rule.ActionValue = params.ActionValue
	if params.Status != "" {
		rule.Status = params.Status
	}

	if err := s.rules.Replace(ctx, rule); err != nil {
		return nil, err
	}

	slog.Info("automation rule replaced", "rule_id", rule.ID)

	return rule, nil
}

// SetRuleStatus toggles a rule between active and inactive.
func (s *RuleService) SetRuleStatus(ctx context.Context, ruleID string, status domain.RuleStatus) error {
	if !status.IsValid() {
		return fmt.Errorf("%w: %q", domain.ErrInvalidRuleStatus, status)
	}
	if err := s.rules.SetStatus(ctx, ruleID, status); err != nil {
		return err
	}

	slog.Info("automation rule status changed", "rule_id", ruleID, "status", status)
	return nil
}

// DeleteRule removes a single rule.
func (s *RuleService) DeleteRule(ctx context.Context, ruleID string) error {
	if err := s.rules.Delete(ctx, ruleID); err != nil {
		return err
	}
	slog.Info("automation rule deleted", "rule_id", ruleID)
	return nil
}

// DeleteProjectRules removes every rule of a deleted project. This is the
// explicit orchestration step the board backend calls while tearing down a
// project; rules are not cleaned up by any implicit referential magic across
// services.
func (s *RuleService) DeleteProjectRules(ctx context.Context, projectID string) (int64, error) {
	deleted, err := s.rules.DeleteByProject(ctx, projectID)
	if err != nil {
		return 0, err
	}

	slog.Info("project rules deleted", "project_id", projectID, "count", deleted)
	return deleted, nil
}

// GetRule retrieves a rule by ID.
func (s *RuleService) GetRule(ctx context.Context, ruleID string) (*domain.AutomationRule, error) {
	return s.rules.GetByID(ctx, ruleID)
}

// ListProjectRules retrieves all rules for a project in creation order.
func (s *RuleService) ListProjectRules(ctx context.Context, projectID string) ([]*domain.AutomationRule, error) {
	return s.rules.ListByProject(ctx, projectID)
}

// checkProject verifies the owning project exists in the board backend.
func (s *RuleService) checkProject(ctx context.Context, projectID string) error {
	_, err := s.projects.GetProjectMembers(ctx, projectID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("%w: %s", domain.ErrProjectNotFound, projectID)
		}
		return fmt.Errorf("check project %s: %w", projectID, err)
	}
	return nil
}
