package engine

import (
	"encoding/json"

	"github.com/taskboardpro/automation/internal/domain"
)

// Matches reports whether the rule's condition is satisfied by the event.
// Condition shapes are validated at rule creation, so this never errors for
// a well-formed event; a condition that fails to decode matches nothing.
func Matches(rule *domain.AutomationRule, event *domain.Event) bool {
	switch rule.TriggerType {
	case domain.TriggerStatusChange:
		var cond domain.StatusChangeCondition
		if !decodeCondition(rule.Condition, &cond) {
			return false
		}
		if cond.From != "" && cond.From != domain.Wildcard && cond.From != event.Payload.From {
			return false
		}
		return cond.To == event.Payload.To

	case domain.TriggerDueDate:
		var cond domain.DueDateCondition
		if !decodeCondition(rule.Condition, &cond) {
			return false
		}
		return event.Payload.HoursUntilDue <= float64(cond.WithinHours)

	case domain.TriggerAssignedTo, domain.TriggerAssigneeChange:
		var cond domain.AssigneeCondition
		if !decodeCondition(rule.Condition, &cond) {
			return false
		}
		if cond.UserID == "" || cond.UserID == domain.Wildcard {
			return true
		}
		return cond.UserID == event.Payload.AssigneeID

	case domain.TriggerTaskCreated, domain.TriggerTaskCompleted,
		domain.TriggerTaskUnassigned, domain.TriggerTaskDeleted,
		domain.TriggerTaskUpdated, domain.TriggerTaskCommented:
		var cond domain.TaskFilterCondition
		if !decodeCondition(rule.Condition, &cond) {
			return false
		}
		if cond.Tag != "" && cond.Tag != event.Payload.Tag {
			return false
		}
		if cond.Priority != "" && cond.Priority != event.Payload.Priority {
			return false
		}
		return true

	default:
		return false
	}
}

// decodeCondition unmarshals a condition payload, treating an absent payload
// as the zero value (match-all for triggers that allow it).
func decodeCondition(raw json.RawMessage, v any) bool {
	if len(raw) == 0 {
		return true
	}
	return json.Unmarshal(raw, v) == nil
}
