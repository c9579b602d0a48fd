package domain

import (
	"encoding/json"
	"time"
)

// TriggerType identifies the kind of board event a rule listens for.
type TriggerType string

const (
	TriggerStatusChange   TriggerType = "status_change"
	TriggerDueDate        TriggerType = "due_date"
	TriggerTaskCreated    TriggerType = "task_created"
	TriggerAssignedTo     TriggerType = "assigned_to"
	TriggerAssigneeChange TriggerType = "assignee_change"
	TriggerTaskCompleted  TriggerType = "task_completed"
	TriggerTaskUnassigned TriggerType = "task_unassigned"
	TriggerTaskDeleted    TriggerType = "task_deleted"
	TriggerTaskUpdated    TriggerType = "task_updated"
	TriggerTaskCommented  TriggerType = "task_commented"
)

// IsValid checks if the trigger type is one of the allowed values.
func (t TriggerType) IsValid() bool {
	switch t {
	case TriggerStatusChange, TriggerDueDate, TriggerTaskCreated,
		TriggerAssignedTo, TriggerAssigneeChange, TriggerTaskCompleted,
		TriggerTaskUnassigned, TriggerTaskDeleted, TriggerTaskUpdated,
		TriggerTaskCommented:
		return true
	default:
		return false
	}
}

// ActionType identifies the side effect a matched rule performs.
type ActionType string

const (
	ActionSendNotification ActionType = "send_notification"
	ActionChangeStatus     ActionType = "change_status"
	ActionAssignTask       ActionType = "assign_task"
	ActionAddComment       ActionType = "add_comment"
	ActionDeleteTask       ActionType = "delete_task"
	ActionUpdateTask       ActionType = "update_task"
)

// IsValid checks if the action type is one of the allowed values.
func (a ActionType) IsValid() bool {
	switch a {
	case ActionSendNotification, ActionChangeStatus, ActionAssignTask,
		ActionAddComment, ActionDeleteTask, ActionUpdateTask:
		return true
	default:
		return false
	}
}

// RuleStatus represents whether a rule participates in evaluation.
type RuleStatus string

const (
	RuleStatusActive   RuleStatus = "active"
	RuleStatusInactive RuleStatus = "inactive"
)

// IsValid checks if the rule status is one of the allowed values.
func (s RuleStatus) IsValid() bool {
	return s == RuleStatusActive || s == RuleStatusInactive
}

// AutomationRule binds a trigger and condition to an action on a project.
// Condition and ActionValue are JSON payloads whose shape is fixed by
// TriggerType and ActionType respectively, validated before persisting.
type AutomationRule struct {
	ID          string
	ProjectID   string
	Name        string
	TriggerType TriggerType
	Condition   json.RawMessage
	ActionType  ActionType
	ActionValue json.RawMessage
	Status      RuleStatus
	CreatedBy   string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// IsActive reports whether the rule participates in evaluation.
func (r *AutomationRule) IsActive() bool {
	return r.Status == RuleStatusActive
}
