package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Wildcard in a condition field matches any event value.
const Wildcard = "*"

// StatusChangeCondition matches status transitions. From may be the
// wildcard or empty to match any source column; To is required.
type StatusChangeCondition struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// DueDateCondition matches tasks approaching their due date.
type DueDateCondition struct {
	WithinHours int `json:"within_hours"`
}

// AssigneeCondition matches assignment events for a specific user.
// UserID may be the wildcard or empty to match any assignee.
type AssigneeCondition struct {
	UserID string `json:"user_id"`
}

// TaskFilterCondition optionally narrows the match-all triggers
// (created, completed, unassigned, deleted, updated, commented) by task
// attributes. Empty fields do not narrow.
type TaskFilterCondition struct {
	Tag      string `json:"tag,omitempty"`
	Priority string `json:"priority,omitempty"`
}

// conditionEmpty reports whether raw is absent or an empty JSON object.
func conditionEmpty(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("{}")) || bytes.Equal(trimmed, []byte("null"))
}

// decodeStrict unmarshals raw into v, rejecting unknown fields so that a
// misspelled condition key fails at rule creation instead of silently
// matching everything.
func decodeStrict(raw json.RawMessage, v any) error {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

// ValidateCondition checks that raw is structurally valid for the trigger
// type. Returns an error wrapping ErrInvalidCondition otherwise.
func ValidateCondition(trigger TriggerType, raw json.RawMessage) error {
	switch trigger {
	case TriggerStatusChange:
		var cond StatusChangeCondition
		if conditionEmpty(raw) {
			return fmt.Errorf("%w: status_change requires a condition with 'to'", ErrInvalidCondition)
		}
		if err := decodeStrict(raw, &cond); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidCondition, err)
		}
		if cond.To == "" || cond.To == Wildcard {
			return fmt.Errorf("%w: status_change condition requires a concrete 'to' status", ErrInvalidCondition)
		}
		return nil

	case TriggerDueDate:
		var cond DueDateCondition
		if conditionEmpty(raw) {
			return fmt.Errorf("%w: due_date requires a condition with 'within_hours'", ErrInvalidCondition)
		}
		if err := decodeStrict(raw, &cond); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidCondition, err)
		}
		if cond.WithinHours <= 0 {
			return fmt.Errorf("%w: within_hours must be positive", ErrInvalidCondition)
		}
		return nil

	case TriggerAssignedTo, TriggerAssigneeChange:
		if conditionEmpty(raw) {
			return nil
		}
		var cond AssigneeCondition
		if err := decodeStrict(raw, &cond); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidCondition, err)
		}
		return nil

	case TriggerTaskCreated, TriggerTaskCompleted, TriggerTaskUnassigned,
		TriggerTaskDeleted, TriggerTaskUpdated, TriggerTaskCommented:
		if conditionEmpty(raw) {
			return nil
		}
		var cond TaskFilterCondition
		if err := decodeStrict(raw, &cond); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidCondition, err)
		}
		return nil

	default:
		return fmt.Errorf("%w: %q", ErrInvalidTrigger, trigger)
	}
}
