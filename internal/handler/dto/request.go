package dto

import "encoding/json"

// RuleRequest is the body for creating or replacing an automation rule.
type RuleRequest struct {
	Name        string          `json:"name"`
	TriggerType string          `json:"trigger_type"`
	Condition   json.RawMessage `json:"condition,omitempty"`
	ActionType  string          `json:"action_type"`
	ActionValue json.RawMessage `json:"action_value,omitempty"`
	Status      string          `json:"status,omitempty"`
}

// SetRuleStatusRequest toggles a rule between active and inactive.
type SetRuleStatusRequest struct {
	Status string `json:"status"`
}

// TriggerEventRequest is the body the board backend delivers to the
// event-trigger endpoint.
type TriggerEventRequest struct {
	Type      string          `json:"type"`
	ProjectID string          `json:"project_id"`
	TaskID    string          `json:"task_id,omitempty"`
	ActorID   string          `json:"actor_id"`
	Timestamp string          `json:"timestamp,omitempty"`
	Payload   json.RawMessage `json:"payload,omitempty"`
}
