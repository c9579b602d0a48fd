package domain

import "time"

// ExecutionResult is the recorded outcome of an action attempt.
type ExecutionResult string

const (
	// ExecutionPending marks a claimed execution whose action is in flight.
	ExecutionPending ExecutionResult = "pending"
	ExecutionSuccess ExecutionResult = "success"
	ExecutionFailed  ExecutionResult = "failed"
)

// ExecutionRecord is the persisted audit entry for one action attempt.
// At most one success exists per (RuleID, EventFingerprint); that uniqueness
// is what makes re-delivered events safe.
type ExecutionRecord struct {
	ID               string
	RuleID           string
	EventFingerprint string
	Result           ExecutionResult
	Detail           string
	CreatedAt        time.Time
	ExecutedAt       *time.Time
}
