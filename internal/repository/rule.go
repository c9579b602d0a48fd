package repository

import (
	"context"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/taskboardpro/automation/internal/domain"
)

// ruleColumns is the shared list of columns for rule queries.
var ruleColumns = []string{
	"id", "project_id", "name", "trigger_type", "condition",
	"action_type", "action_value", "status", "created_by",
	"created_at", "updated_at",
}

// RuleRepository handles database operations for automation rules.
type RuleRepository struct {
	pool *pgxpool.Pool
}

// NewRuleRepository creates a new RuleRepository.
func NewRuleRepository(pool *pgxpool.Pool) *RuleRepository {
	return &RuleRepository{pool: pool}
}

// scanRule scans a single row into an AutomationRule struct.
func scanRule(row pgx.Row) (*domain.AutomationRule, error) {
	var rule domain.AutomationRule
	err := row.Scan(
		&rule.ID,
		&rule.ProjectID,
		&rule.Name,
		&rule.TriggerType,
		&rule.Condition,
		&rule.ActionType,
		&rule.ActionValue,
		&rule.Status,
		&rule.CreatedBy,
		&rule.CreatedAt,
		&rule.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrRuleNotFound
		}
		return nil, fmt.Errorf("scan rule: %w", err)
	}
	return &rule, nil
}

// scanRules scans multiple rows into a slice of AutomationRule structs.
func scanRules(rows pgx.Rows) ([]*domain.AutomationRule, error) {
	defer rows.Close()

	var rules []*domain.AutomationRule
	for rows.Next() {
		rule, err := scanRule(rows)
		if err != nil {
			return nil, err
		}
		rules = append(rules, rule)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}
	return rules, nil
}

// GetActiveRulesForProject retrieves active rules matching the trigger type,
// in creation order. The order is what makes action execution deterministic
// when several rules match the same event.
func (r *RuleRepository) GetActiveRulesForProject(
	ctx context.Context,
	projectID string,
	trigger domain.TriggerType,
) ([]*domain.AutomationRule, error) {
	query, args, err := psql.
		Select(ruleColumns...).
		From("automation_rules").
		Where(sq.Eq{
			"project_id":   projectID,
			"trigger_type": trigger,
			"status":       domain.RuleStatusActive,
		}).
		OrderBy("created_at ASC", "id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build GetActiveRulesForProject query: %w", err)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query active rules: %w", err)
	}

	return scanRules(rows)
}

// ListByProject retrieves all rules for a project, in creation order.
func (r *RuleRepository) ListByProject(ctx context.Context, projectID string) ([]*domain.AutomationRule, error) {
	query, args, err := psql.
		Select(ruleColumns...).
		From("automation_rules").
		Where(sq.Eq{"project_id": projectID}).
		OrderBy("created_at ASC", "id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build ListByProject query: %w", err)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query project rules: %w", err)
	}

	return scanRules(rows)
}

// GetByID retrieves a rule by ID.
func (r *RuleRepository) GetByID(ctx context.Context, ruleID string) (*domain.AutomationRule, error) {
	query, args, err := psql.
		Select(ruleColumns...).
		From("automation_rules").
		Where(sq.Eq{"id": ruleID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build GetByID query for rule: %w", err)
	}

	return scanRule(r.pool.QueryRow(ctx, query, args...))
}

// Create persists a new rule. The rule's shape must already be validated.
// Returns the rule with ID, CreatedAt, and UpdatedAt populated.
func (r *RuleRepository) Create(ctx context.Context, rule *domain.AutomationRule) (*domain.AutomationRule, error) {
	if rule.Status == "" {
		rule.Status = domain.RuleStatusActive
	}

	query, args, err := psql.
		Insert("automation_rules").
		Columns(
			"project_id", "name", "trigger_type", "condition",
			"action_type", "action_value", "status", "created_by",
		).
		Values(
			rule.ProjectID,
			rule.Name,
			rule.TriggerType,
			rule.Condition,
			rule.ActionType,
			rule.ActionValue,
			rule.Status,
			rule.CreatedBy,
		).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build Create query for rule: %w", err)
	}

	err = r.pool.QueryRow(ctx, query, args...).Scan(&rule.ID, &rule.CreatedAt, &rule.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("create rule: %w", err)
	}

	return rule, nil
}

// Replace performs a full edit of a rule's definition.
func (r *RuleRepository) Replace(ctx context.Context, rule *domain.AutomationRule) error {
	query, args, err := psql.
		Update("automation_rules").
		Set("name", rule.Name).
		Set("trigger_type", rule.TriggerType).
		Set("condition", rule.Condition).
		Set("action_type", rule.ActionType).
		Set("action_value", rule.ActionValue).
		Set("status", rule.Status).
		Set("updated_at", sq.Expr("NOW()")).
		Where(sq.Eq{"id": rule.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build Replace query for rule %s: %w", rule.ID, err)
	}

	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("replace rule: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrRuleNotFound
	}
	return nil
}

// SetStatus toggles a rule between active and inactive.
func (r *RuleRepository) SetStatus(ctx context.Context, ruleID string, status domain.RuleStatus) error {
	query, args, err := psql.
		Update("automation_rules").
		Set("status", status).
		Set("updated_at", sq.Expr("NOW()")).
		Where(sq.Eq{"id": ruleID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build SetStatus query for rule %s: %w", ruleID, err)
	}

	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("set rule status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrRuleNotFound
	}
	return nil
}

// Delete removes a rule. Execution records cascade in the schema.
func (r *RuleRepository) Delete(ctx context.Context, ruleID string) error {
	query, args, err := psql.
		Delete("automation_rules").
		Where(sq.Eq{"id": ruleID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build Delete query for rule %s: %w", ruleID, err)
	}

	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("delete rule: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrRuleNotFound
	}
	return nil
}

// DeleteByProject removes every rule owned by a project. Called by the
// project-deletion orchestration in the board backend.
func (r *RuleRepository) DeleteByProject(ctx context.Context, projectID string) (int64, error) {
	query, args, err := psql.
		Delete("automation_rules").
		Where(sq.Eq{"project_id": projectID}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build DeleteByProject query: %w", err)
	}

	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("delete project rules: %w", err)
	}
	return tag.RowsAffected(), nil
}
