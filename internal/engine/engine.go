// Package engine evaluates stored automation rules against board events and
// executes matched actions at most once per event fingerprint.
package engine

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/taskboardpro/automation/internal/domain"
)

// RuleSource loads rules for evaluation. Implementations must return rules
// in creation order so that execution outcomes are deterministic.
type RuleSource interface {
	GetActiveRulesForProject(ctx context.Context, projectID string, trigger domain.TriggerType) ([]*domain.AutomationRule, error)
}

// ExecutionStore persists execution records and enforces the at-most-once
// guarantee. Claim atomically reserves (ruleID, fingerprint): it returns
// false when a success or in-flight claim already holds the key, and
// re-claims a failed record so callers can retry failed rules by
// re-delivering the event.
type ExecutionStore interface {
	Claim(ctx context.Context, ruleID, fingerprint string) (bool, error)
	Finalize(ctx context.Context, ruleID, fingerprint string, result domain.ExecutionResult, detail string) error
}

// Outcome classifies what happened to one matched rule during Handle.
type Outcome string

const (
	OutcomeSuccess Outcome = "success"
	OutcomeFailed  Outcome = "failed"
	// OutcomeSkipped means the idempotency guard found a prior success or an
	// in-flight execution for the same (rule, fingerprint).
	OutcomeSkipped Outcome = "skipped"
)

// RuleOutcome reports the result for a single matched rule.
type RuleOutcome struct {
	RuleID  string  `json:"rule_id"`
	Outcome Outcome `json:"outcome"`
	Error   string  `json:"error,omitempty"`
}

// Result aggregates per-rule outcomes for one handled event.
type Result struct {
	MatchedRuleCount int           `json:"matched_rule_count"`
	Outcomes         []RuleOutcome `json:"executed_outcomes"`
}

// Engine orchestrates normalization, rule loading, condition evaluation,
// and action execution for incoming events.
type Engine struct {
	rules      RuleSource
	executions ExecutionStore
	executor   *Executor
}

// New creates a new Engine.
func New(rules RuleSource, executions ExecutionStore, executor *Executor) *Engine {
	return &Engine{
		rules:      rules,
		executions: executions,
		executor:   executor,
	}
}

// Handle processes one raw event: normalize, load active rules for the
// project and trigger, evaluate each in creation order, and execute matched
// actions under the idempotency guard.
//
// Rules are independent: a failed rule never aborts the remaining ones and
// nothing is rolled back. Only normalization and rule loading can fail;
// per-rule execution errors are captured in the returned outcomes.
func (e *Engine) Handle(ctx context.Context, raw domain.RawEvent) (*Result, error) {
	event, err := Normalize(raw)
	if err != nil {
		return nil, err
	}

	rules, err := e.rules.GetActiveRulesForProject(ctx, event.ProjectID, event.Type)
	if err != nil {
		return nil, fmt.Errorf("load rules for project %s: %w", event.ProjectID, err)
	}

	result := &Result{}
	for _, rule := range rules {
		if !Matches(rule, event) {
			continue
		}
		result.MatchedRuleCount++
		result.Outcomes = append(result.Outcomes, e.runRule(ctx, rule, event))
	}

	slog.Info("event handled",
		"event_type", event.Type,
		"project_id", event.ProjectID,
		"fingerprint", event.Fingerprint,
		"matched_rules", result.MatchedRuleCount,
	)

	return result, nil
}

// runRule executes a single matched rule under the idempotency claim.
func (e *Engine) runRule(ctx context.Context, rule *domain.AutomationRule, event *domain.Event) RuleOutcome {
	claimed, err := e.executions.Claim(ctx, rule.ID, event.Fingerprint)
	if err != nil {
		slog.Error("execution claim failed",
			"rule_id", rule.ID,
			"fingerprint", event.Fingerprint,
			"error", err,
		)
		return RuleOutcome{RuleID: rule.ID, Outcome: OutcomeFailed, Error: err.Error()}
	}
	if !claimed {
		slog.Debug("duplicate event delivery, rule skipped",
			"rule_id", rule.ID,
			"fingerprint", event.Fingerprint,
		)
		return RuleOutcome{RuleID: rule.ID, Outcome: OutcomeSkipped}
	}

	execErr := e.executor.Execute(ctx, rule, event)

	finalResult := domain.ExecutionSuccess
	detail := ""
	if execErr != nil {
		finalResult = domain.ExecutionFailed
		detail = execErr.Error()
	}
	if err := e.executions.Finalize(ctx, rule.ID, event.Fingerprint, finalResult, detail); err != nil {
		slog.Error("failed to record execution result",
			"rule_id", rule.ID,
			"fingerprint", event.Fingerprint,
			"result", finalResult,
			"error", err,
		)
	}

	if execErr != nil {
		slog.Warn("rule action failed",
			"rule_id", rule.ID,
			"action", rule.ActionType,
			"error", execErr,
		)
		return RuleOutcome{RuleID: rule.ID, Outcome: OutcomeFailed, Error: execErr.Error()}
	}

	slog.Info("rule action executed",
		"rule_id", rule.ID,
		"action", rule.ActionType,
		"task_id", event.TaskID,
	)
	return RuleOutcome{RuleID: rule.ID, Outcome: OutcomeSuccess}
}
