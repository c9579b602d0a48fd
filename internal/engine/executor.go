package engine

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/taskboardpro/automation/internal/domain"
)

// Task is the slice of the board's task model the engine needs.
type Task struct {
	ID         string `json:"id"`
	ProjectID  string `json:"project_id"`
	Title      string `json:"title"`
	Status     string `json:"status"`
	AssigneeID string `json:"assignee_id,omitempty"`
}

// TaskService is the board backend's task and project surface. Calls fail
// with errors wrapping domain.ErrNotFound or domain.ErrPermission.
type TaskService interface {
	GetTask(ctx context.Context, taskID string) (*Task, error)
	UpdateTaskStatus(ctx context.Context, taskID, status string) error
	AssignTask(ctx context.Context, taskID, userID string) error
	AddComment(ctx context.Context, taskID, text string) error
	UpdateTask(ctx context.Context, taskID string, fields map[string]string) error
	DeleteTask(ctx context.Context, taskID string) error
	GetProjectMembers(ctx context.Context, projectID string) ([]string, error)
}

// NotificationService delivers user notifications. Send fails with errors
// wrapping domain.ErrDelivery.
type NotificationService interface {
	Send(ctx context.Context, recipientID, message string) error
}

// Executor performs the side effect a matched rule specifies, delegating to
// the board and notification collaborators. Failures wrap
// domain.ErrActionExecution and are reported, never retried here: the caller
// may re-deliver the event and rely on the idempotency guard.
type Executor struct {
	tasks    TaskService
	notifier NotificationService
}

// NewExecutor creates a new Executor.
func NewExecutor(tasks TaskService, notifier NotificationService) *Executor {
	return &Executor{tasks: tasks, notifier: notifier}
}

// Execute performs the rule's action against the event's target task.
func (x *Executor) Execute(ctx context.Context, rule *domain.AutomationRule, event *domain.Event) error {
	switch rule.ActionType {
	case domain.ActionSendNotification:
		var v domain.NotificationValue
		if err := json.Unmarshal(rule.ActionValue, &v); err != nil {
			return fmt.Errorf("%w: decode notification value: %w", domain.ErrActionExecution, err)
		}
		return x.sendNotification(ctx, v, event)

	case domain.ActionChangeStatus:
		var v domain.ChangeStatusValue
		if err := json.Unmarshal(rule.ActionValue, &v); err != nil {
			return fmt.Errorf("%w: decode status value: %w", domain.ErrActionExecution, err)
		}
		taskID, err := targetTask(event)
		if err != nil {
			return err
		}
		if err := x.tasks.UpdateTaskStatus(ctx, taskID, v.Status); err != nil {
			return fmt.Errorf("%w: change status of task %s: %w", domain.ErrActionExecution, taskID, err)
		}
		return nil

	case domain.ActionAssignTask:
		var v domain.AssignValue
		if err := json.Unmarshal(rule.ActionValue, &v); err != nil {
			return fmt.Errorf("%w: decode assign value: %w", domain.ErrActionExecution, err)
		}
		taskID, err := targetTask(event)
		if err != nil {
			return err
		}
		if err := x.tasks.AssignTask(ctx, taskID, v.UserID); err != nil {
			return fmt.Errorf("%w: assign task %s to %s: %w", domain.ErrActionExecution, taskID, v.UserID, err)
		}
		return nil

	case domain.ActionAddComment:
		var v domain.CommentValue
		if err := json.Unmarshal(rule.ActionValue, &v); err != nil {
			return fmt.Errorf("%w: decode comment value: %w", domain.ErrActionExecution, err)
		}
		taskID, err := targetTask(event)
		if err != nil {
			return err
		}
		if err := x.tasks.AddComment(ctx, taskID, v.Text); err != nil {
			return fmt.Errorf("%w: comment on task %s: %w", domain.ErrActionExecution, taskID, err)
		}
		return nil

	case domain.ActionDeleteTask:
		taskID, err := targetTask(event)
		if err != nil {
			return err
		}
		if err := x.tasks.DeleteTask(ctx, taskID); err != nil {
			return fmt.Errorf("%w: delete task %s: %w", domain.ErrActionExecution, taskID, err)
		}
		return nil

	case domain.ActionUpdateTask:
		var v domain.UpdateValue
		if err := json.Unmarshal(rule.ActionValue, &v); err != nil {
			return fmt.Errorf("%w: decode update value: %w", domain.ErrActionExecution, err)
		}
		taskID, err := targetTask(event)
		if err != nil {
			return err
		}
		if err := x.tasks.UpdateTask(ctx, taskID, v.Fields); err != nil {
			return fmt.Errorf("%w: update task %s: %w", domain.ErrActionExecution, taskID, err)
		}
		return nil

	default:
		return fmt.Errorf("%w: %w: %q", domain.ErrActionExecution, domain.ErrInvalidAction, rule.ActionType)
	}
}

// sendNotification resolves the recipient convenience values and delivers.
func (x *Executor) sendNotification(ctx context.Context, v domain.NotificationValue, event *domain.Event) error {
	switch v.Recipient {
	case domain.RecipientAssignee:
		if event.Payload.AssigneeID == "" {
			return fmt.Errorf("%w: event carries no assignee to notify", domain.ErrActionExecution)
		}
		if err := x.notifier.Send(ctx, event.Payload.AssigneeID, v.Message); err != nil {
			return fmt.Errorf("%w: notify assignee %s: %w", domain.ErrActionExecution, event.Payload.AssigneeID, err)
		}
		return nil

	case domain.RecipientMembers:
		members, err := x.tasks.GetProjectMembers(ctx, event.ProjectID)
		if err != nil {
			return fmt.Errorf("%w: list members of project %s: %w", domain.ErrActionExecution, event.ProjectID, err)
		}
		for _, member := range members {
			if err := x.notifier.Send(ctx, member, v.Message); err != nil {
				return fmt.Errorf("%w: notify member %s: %w", domain.ErrActionExecution, member, err)
			}
		}
		return nil

	default:
		if err := x.notifier.Send(ctx, v.Recipient, v.Message); err != nil {
			return fmt.Errorf("%w: notify %s: %w", domain.ErrActionExecution, v.Recipient, err)
		}
		return nil
	}
}

// targetTask returns the task the action applies to.
func targetTask(event *domain.Event) (string, error) {
	if event.TaskID == "" {
		return "", fmt.Errorf("%w: event %s carries no task id", domain.ErrActionExecution, event.Type)
	}
	return event.TaskID, nil
}
