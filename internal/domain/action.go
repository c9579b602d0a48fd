package domain

import (
	"encoding/json"
	"fmt"
)

// Notification recipient conveniences resolved at execution time.
const (
	RecipientAssignee = "assignee" // the assignee carried by the event payload
	RecipientMembers  = "members"  // every member of the event's project
)

// NotificationValue configures a send_notification action. Recipient is a
// user ID or one of the convenience values above.
type NotificationValue struct {
	Recipient string `json:"recipient"`
	Message   string `json:"message"`
}

// ChangeStatusValue configures a change_status action. The status string is
// the board's vocabulary; the board rejects values it does not know.
type ChangeStatusValue struct {
	Status string `json:"status"`
}

// AssignValue configures an assign_task action.
type AssignValue struct {
	UserID string `json:"user_id"`
}

// CommentValue configures an add_comment action.
type CommentValue struct {
	Text string `json:"text"`
}

// UpdateValue configures an update_task action as a field-name to value map.
type UpdateValue struct {
	Fields map[string]string `json:"fields"`
}

// ValidateActionValue checks that raw is structurally valid for the action
// type. Returns an error wrapping ErrInvalidActionValue otherwise.
func ValidateActionValue(action ActionType, raw json.RawMessage) error {
	switch action {
	case ActionSendNotification:
		var v NotificationValue
		if conditionEmpty(raw) {
			return fmt.Errorf("%w: send_notification requires recipient and message", ErrInvalidActionValue)
		}
		if err := decodeStrict(raw, &v); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidActionValue, err)
		}
		if v.Recipient == "" {
			return fmt.Errorf("%w: recipient is required", ErrInvalidActionValue)
		}
		if v.Message == "" {
			return fmt.Errorf("%w: message is required", ErrInvalidActionValue)
		}
		return nil

	case ActionChangeStatus:
		var v ChangeStatusValue
		if conditionEmpty(raw) {
			return fmt.Errorf("%w: change_status requires a status", ErrInvalidActionValue)
		}
		if err := decodeStrict(raw, &v); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidActionValue, err)
		}
		if v.Status == "" {
			return fmt.Errorf("%w: status is required", ErrInvalidActionValue)
		}
		return nil

	case ActionAssignTask:
		var v AssignValue
		if conditionEmpty(raw) {
			return fmt.Errorf("%w: assign_task requires a user_id", ErrInvalidActionValue)
		}
		if err := decodeStrict(raw, &v); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidActionValue, err)
		}
		if v.UserID == "" {
			return fmt.Errorf("%w: user_id is required", ErrInvalidActionValue)
		}
		return nil

	case ActionAddComment:
		var v CommentValue
		if conditionEmpty(raw) {
			return fmt.Errorf("%w: add_comment requires text", ErrInvalidActionValue)
		}
		if err := decodeStrict(raw, &v); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidActionValue, err)
		}
		if v.Text == "" {
			return fmt.Errorf("%w: text is required", ErrInvalidActionValue)
		}
		return nil

	case ActionDeleteTask:
		// delete_task takes no configuration
		if !conditionEmpty(raw) {
			return fmt.Errorf("%w: delete_task takes no action value", ErrInvalidActionValue)
		}
		return nil

	case ActionUpdateTask:
		var v UpdateValue
		if conditionEmpty(raw) {
			return fmt.Errorf("%w: update_task requires a fields map", ErrInvalidActionValue)
		}
		if err := decodeStrict(raw, &v); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidActionValue, err)
		}
		if len(v.Fields) == 0 {
			return fmt.Errorf("%w: fields must not be empty", ErrInvalidActionValue)
		}
		return nil

	default:
		return fmt.Errorf("%w: %q", ErrInvalidAction, action)
	}
}
