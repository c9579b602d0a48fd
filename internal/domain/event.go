package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"
)

// fingerprintBucket is the timestamp granularity used for event
// deduplication. Re-delivered events carry the producer's original
// timestamp, so duplicates collapse into the same bucket.
const fingerprintBucket = time.Second

// RawEvent is the wire shape delivered by the board backend.
type RawEvent struct {
	Type      string          `json:"type"`
	ProjectID string          `json:"project_id"`
	TaskID    string          `json:"task_id,omitempty"`
	ActorID   string          `json:"actor_id"`
	Timestamp time.Time       `json:"timestamp"`
	Payload   json.RawMessage `json:"payload,omitempty"`
}

// EventPayload carries the event-specific fields conditions are evaluated
// against. Fields irrelevant to the event type are left zero.
type EventPayload struct {
	From          string  `json:"from,omitempty"`
	To            string  `json:"to,omitempty"`
	AssigneeID    string  `json:"assignee_id,omitempty"`
	HoursUntilDue float64 `json:"hours_until_due,omitempty"`
	Tag           string  `json:"tag,omitempty"`
	Priority      string  `json:"priority,omitempty"`
}

// Event is the canonical form of a board event after normalization.
// Events are ephemeral; only execution records are persisted.
type Event struct {
	Type        TriggerType
	ProjectID   string
	TaskID      string
	ActorID     string
	Timestamp   time.Time
	Payload     EventPayload
	Fingerprint string
}

// EventFingerprint derives the deterministic identifier used to deduplicate
// re-delivered events: type, the task ID (falling back to the project ID for
// project-scoped events), and the coarse timestamp.
func EventFingerprint(eventType TriggerType, projectID, taskID string, ts time.Time) string {
	scope := taskID
	if scope == "" {
		scope = projectID
	}
	bucket := ts.UTC().Truncate(fingerprintBucket).Unix()
	sum := sha256.Sum256(fmt.Appendf(nil, "%s|%s|%d", eventType, scope, bucket))
	return hex.EncodeToString(sum[:])
}
