package dto

import (
	"encoding/json"
	"time"

	"github.com/taskboardpro/automation/internal/domain"
	"github.com/taskboardpro/automation/internal/engine"
)

// RuleDetail is the API representation of an automation rule.
type RuleDetail struct {
	ID          string          `json:"id"`
	ProjectID   string          `json:"project_id"`
	Name        string          `json:"name"`
	TriggerType string          `json:"trigger_type"`
	Condition   json.RawMessage `json:"condition,omitempty"`
	ActionType  string          `json:"action_type"`
	ActionValue json.RawMessage `json:"action_value,omitempty"`
	Status      string          `json:"status"`
	CreatedBy   string          `json:"created_by"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// ToRuleDetail converts a domain rule to its API representation.
func ToRuleDetail(rule *domain.AutomationRule) RuleDetail {
	return RuleDetail{
		ID:          rule.ID,
		ProjectID:   rule.ProjectID,
		Name:        rule.Name,
		TriggerType: string(rule.TriggerType),
		Condition:   rule.Condition,
		ActionType:  string(rule.ActionType),
		ActionValue: rule.ActionValue,
		Status:      string(rule.Status),
		CreatedBy:   rule.CreatedBy,
		CreatedAt:   rule.CreatedAt,
		UpdatedAt:   rule.UpdatedAt,
	}
}

// RulesListResponse wraps a project's rule listing.
type RulesListResponse struct {
	Rules []RuleDetail `json:"rules"`
	Total int          `json:"total"`
}

// ToRulesListResponse converts a rule slice to its API representation.
func ToRulesListResponse(rules []*domain.AutomationRule) RulesListResponse {
	out := RulesListResponse{Rules: make([]RuleDetail, len(rules)), Total: len(rules)}
	for i, rule := range rules {
		out.Rules[i] = ToRuleDetail(rule)
	}
	return out
}

// CascadeDeleteResponse reports how many rules a project deletion removed.
type CascadeDeleteResponse struct {
	Deleted int64 `json:"deleted"`
}

// EngineResultResponse is the outcome of handling one delivered event.
type EngineResultResponse struct {
	MatchedRuleCount int                  `json:"matched_rule_count"`
	ExecutedOutcomes []engine.RuleOutcome `json:"executed_outcomes"`
}

// ToEngineResultResponse converts an engine result to its API form.
func ToEngineResultResponse(result *engine.Result) EngineResultResponse {
	outcomes := result.Outcomes
	if outcomes == nil {
		outcomes = []engine.RuleOutcome{}
	}
	return EngineResultResponse{
		MatchedRuleCount: result.MatchedRuleCount,
		ExecutedOutcomes: outcomes,
	}
}
