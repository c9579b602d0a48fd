package engine_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskboardpro/automation/internal/domain"
	"github.com/taskboardpro/automation/internal/engine"
)

func notificationRule(value string) *domain.AutomationRule {
	return &domain.AutomationRule{
		ID:          "rule-1",
		ProjectID:   testProjectID,
		TriggerType: domain.TriggerStatusChange,
		ActionType:  domain.ActionSendNotification,
		ActionValue: json.RawMessage(value),
		Status:      domain.RuleStatusActive,
	}
}

func TestExecutorNotifiesLiteralRecipient(t *testing.T) {
	board := newFakeBoard()
	notifier := &fakeNotifier{}
	executor := engine.NewExecutor(board, notifier)

	rule := notificationRule(`{"recipient":"user-7","message":"heads up"}`)
	event := &domain.Event{Type: domain.TriggerStatusChange, ProjectID: testProjectID, TaskID: testTaskID}

	require.NoError(t, executor.Execute(context.Background(), rule, event))
	require.Len(t, notifier.sent, 1)
	assert.Equal(t, "user-7", notifier.sent[0].recipient)
	assert.Equal(t, "heads up", notifier.sent[0].message)
}

func TestExecutorResolvesAssigneeFromEvent(t *testing.T) {
	board := newFakeBoard()
	notifier := &fakeNotifier{}
	executor := engine.NewExecutor(board, notifier)

	rule := notificationRule(`{"recipient":"assignee","message":"your move"}`)
	event := &domain.Event{
		Type:      domain.TriggerAssignedTo,
		ProjectID: testProjectID,
		TaskID:    testTaskID,
		Payload:   domain.EventPayload{AssigneeID: "user-3"},
	}

	require.NoError(t, executor.Execute(context.Background(), rule, event))
	require.Len(t, notifier.sent, 1)
	assert.Equal(t, "user-3", notifier.sent[0].recipient)
}

func TestExecutorAssigneeRecipientWithoutAssignee(t *testing.T) {
	board := newFakeBoard()
	notifier := &fakeNotifier{}
	executor := engine.NewExecutor(board, notifier)

	rule := notificationRule(`{"recipient":"assignee","message":"your move"}`)
	event := &domain.Event{Type: domain.TriggerStatusChange, ProjectID: testProjectID, TaskID: testTaskID}

	err := executor.Execute(context.Background(), rule, event)
	require.ErrorIs(t, err, domain.ErrActionExecution)
	assert.Empty(t, notifier.sent)
}

func TestExecutorMemberNotificationStopsOnDeliveryFailure(t *testing.T) {
	board := newFakeBoard()
	board.members = []string{"user-1", "user-2"}
	notifier := &fakeNotifier{err: domain.ErrDelivery}
	executor := engine.NewExecutor(board, notifier)

	rule := notificationRule(`{"recipient":"members","message":"all hands"}`)
	event := &domain.Event{Type: domain.TriggerTaskCompleted, ProjectID: testProjectID, TaskID: testTaskID}

	err := executor.Execute(context.Background(), rule, event)
	require.ErrorIs(t, err, domain.ErrActionExecution)
}

func TestExecutorTaskActions(t *testing.T) {
	tests := []struct {
		name      string
		action    domain.ActionType
		value     string
		boardCall string
	}{
		{
			name:      "change status",
			action:    domain.ActionChangeStatus,
			value:     `{"status":"Done"}`,
			boardCall: "UpdateTaskStatus",
		},
		{
			name:      "assign task",
			action:    domain.ActionAssignTask,
			value:     `{"user_id":"user-2"}`,
			boardCall: "AssignTask",
		},
		{
			name:      "add comment",
			action:    domain.ActionAddComment,
			value:     `{"text":"auto note"}`,
			boardCall: "AddComment",
		},
		{
			name:      "update task",
			action:    domain.ActionUpdateTask,
			value:     `{"fields":{"priority":"high"}}`,
			boardCall: "UpdateTask",
		},
		{
			name:      "delete task",
			action:    domain.ActionDeleteTask,
			value:     `{}`,
			boardCall: "DeleteTask",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			board := newFakeBoard()
			executor := engine.NewExecutor(board, &fakeNotifier{})

			rule := &domain.AutomationRule{
				ID:          "rule-1",
				ProjectID:   testProjectID,
				TriggerType: domain.TriggerStatusChange,
				ActionType:  tt.action,
				ActionValue: json.RawMessage(tt.value),
				Status:      domain.RuleStatusActive,
			}
			event := &domain.Event{Type: domain.TriggerStatusChange, ProjectID: testProjectID, TaskID: testTaskID}

			require.NoError(t, executor.Execute(context.Background(), rule, event))
			assert.Equal(t, 1, board.callCount(tt.boardCall))
		})
	}
}
