package engine_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/taskboardpro/automation/internal/domain"
	"github.com/taskboardpro/automation/internal/engine"
)

func evalRule(trigger domain.TriggerType, condition string) *domain.AutomationRule {
	return &domain.AutomationRule{
		ID:          "rule-1",
		ProjectID:   testProjectID,
		TriggerType: trigger,
		Condition:   json.RawMessage(condition),
		Status:      domain.RuleStatusActive,
	}
}

func evalEvent(trigger domain.TriggerType, payload domain.EventPayload) *domain.Event {
	return &domain.Event{
		Type:      trigger,
		ProjectID: testProjectID,
		TaskID:    testTaskID,
		Payload:   payload,
	}
}

func TestMatchesStatusChange(t *testing.T) {
	tests := []struct {
		name      string
		condition string
		payload   domain.EventPayload
		want      bool
	}{
		{
			name:      "exact from and to",
			condition: `{"from":"To Do","to":"In Progress"}`,
			payload:   domain.EventPayload{From: "To Do", To: "In Progress"},
			want:      true,
		},
		{
			name:      "wildcard from",
			condition: `{"from":"*","to":"Done"}`,
			payload:   domain.EventPayload{From: "In Progress", To: "Done"},
			want:      true,
		},
		{
			name:      "omitted from matches any",
			condition: `{"to":"Done"}`,
			payload:   domain.EventPayload{From: "To Do", To: "Done"},
			want:      true,
		},
		{
			name:      "from mismatch",
			condition: `{"from":"To Do","to":"Done"}`,
			payload:   domain.EventPayload{From: "In Progress", To: "Done"},
			want:      false,
		},
		{
			name:      "to mismatch",
			condition: `{"from":"*","to":"Done"}`,
			payload:   domain.EventPayload{From: "To Do", To: "In Progress"},
			want:      false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rule := evalRule(domain.TriggerStatusChange, tt.condition)
			event := evalEvent(domain.TriggerStatusChange, tt.payload)
			assert.Equal(t, tt.want, engine.Matches(rule, event))
		})
	}
}

func TestMatchesDueDate(t *testing.T) {
	rule := evalRule(domain.TriggerDueDate, `{"within_hours":24}`)

	assert.True(t, engine.Matches(rule, evalEvent(domain.TriggerDueDate,
		domain.EventPayload{HoursUntilDue: 3})))
	assert.True(t, engine.Matches(rule, evalEvent(domain.TriggerDueDate,
		domain.EventPayload{HoursUntilDue: 24})), "boundary is inclusive")
	assert.False(t, engine.Matches(rule, evalEvent(domain.TriggerDueDate,
		domain.EventPayload{HoursUntilDue: 24.5})))
}

func TestMatchesAssigneeTriggers(t *testing.T) {
	event := evalEvent(domain.TriggerAssignedTo, domain.EventPayload{AssigneeID: "user-1"})

	assert.True(t, engine.Matches(evalRule(domain.TriggerAssignedTo, `{"user_id":"user-1"}`), event))
	assert.False(t, engine.Matches(evalRule(domain.TriggerAssignedTo, `{"user_id":"user-2"}`), event))
	assert.True(t, engine.Matches(evalRule(domain.TriggerAssignedTo, `{"user_id":"*"}`), event))
	assert.True(t, engine.Matches(evalRule(domain.TriggerAssignedTo, `{}`), event))
	assert.True(t, engine.Matches(evalRule(domain.TriggerAssigneeChange, ``), event))
}

func TestMatchesTaskFilterTriggers(t *testing.T) {
	event := evalEvent(domain.TriggerTaskCreated,
		domain.EventPayload{Tag: "bug", Priority: "high"})

	assert.True(t, engine.Matches(evalRule(domain.TriggerTaskCreated, `{}`), event))
	assert.True(t, engine.Matches(evalRule(domain.TriggerTaskCreated, `{"tag":"bug"}`), event))
	assert.True(t, engine.Matches(evalRule(domain.TriggerTaskCreated, `{"tag":"bug","priority":"high"}`), event))
	assert.False(t, engine.Matches(evalRule(domain.TriggerTaskCreated, `{"tag":"chore"}`), event))
	assert.False(t, engine.Matches(evalRule(domain.TriggerTaskCreated, `{"priority":"low"}`), event))
}

func TestMatchesUndecodableConditionMatchesNothing(t *testing.T) {
	rule := evalRule(domain.TriggerStatusChange, `{"to":`)
	event := evalEvent(domain.TriggerStatusChange, domain.EventPayload{To: "Done"})
	assert.False(t, engine.Matches(rule, event))
}
