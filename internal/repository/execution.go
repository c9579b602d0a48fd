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

// ExecutionRepository handles database operations for execution records.
type ExecutionRepository struct {
	pool *pgxpool.Pool
}

// NewExecutionRepository creates a new ExecutionRepository.
func NewExecutionRepository(pool *pgxpool.Pool) *ExecutionRepository {
	return &ExecutionRepository{pool: pool}
}

// Claim atomically reserves (ruleID, fingerprint) before the action runs.
// The unique key on (rule_id, event_fingerprint) makes this the idempotency
// guard: a prior success or an in-flight pending claim returns false, while
// a failed record is re-claimed in place so re-delivered events retry only
// previously-failed rules. Concurrent deliveries of the same event race on
// the conditional update and exactly one wins.
func (r *ExecutionRepository) Claim(ctx context.Context, ruleID, fingerprint string) (bool, error) {
	query, args, err := psql.
		Insert("rule_executions").
		Columns("rule_id", "event_fingerprint", "result").
		Values(ruleID, fingerprint, domain.ExecutionPending).
		Suffix(`ON CONFLICT (rule_id, event_fingerprint) DO UPDATE
			SET result = EXCLUDED.result, detail = '', executed_at = NULL
			WHERE rule_executions.result = ?`, domain.ExecutionFailed).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return false, fmt.Errorf("build Claim query: %w", err)
	}

	var id string
	err = r.pool.QueryRow(ctx, query, args...).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// Key held by a success or an in-flight execution.
			return false, nil
		}
		return false, fmt.Errorf("claim execution: %w", err)
	}
	return true, nil
}

// Finalize records the outcome of a claimed execution.
func (r *ExecutionRepository) Finalize(
	ctx context.Context,
	ruleID, fingerprint string,
	result domain.ExecutionResult,
	detail string,
) error {
	query, args, err := psql.
		Update("rule_executions").
		Set("result", result).
		Set("detail", detail).
		Set("executed_at", sq.Expr("NOW()")).
		Where(sq.Eq{
			"rule_id":           ruleID,
			"event_fingerprint": fingerprint,
			"result":            domain.ExecutionPending,
		}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build Finalize query: %w", err)
	}

	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("finalize execution: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("finalize execution: no pending claim for rule %s", ruleID)
	}
	return nil
}

// GetByRule retrieves execution records for a rule, newest first.
func (r *ExecutionRepository) GetByRule(ctx context.Context, ruleID string) ([]*domain.ExecutionRecord, error) {
	query, args, err := psql.
		Select("id", "rule_id", "event_fingerprint", "result", "detail", "created_at", "executed_at").
		From("rule_executions").
		Where(sq.Eq{"rule_id": ruleID}).
		OrderBy("created_at DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build GetByRule query: %w", err)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query executions: %w", err)
	}
	defer rows.Close()

	var records []*domain.ExecutionRecord
	for rows.Next() {
		var rec domain.ExecutionRecord
		err := rows.Scan(
			&rec.ID,
			&rec.RuleID,
			&rec.EventFingerprint,
			&rec.Result,
			&rec.Detail,
			&rec.CreatedAt,
			&rec.ExecutedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan execution: %w", err)
		}
		records = append(records, &rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}

	return records, nil
}
