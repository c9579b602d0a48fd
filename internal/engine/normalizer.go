package engine

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/taskboardpro/automation/internal/domain"
)

// Normalize converts a raw board event into its canonical form and computes
// the deduplication fingerprint. Fails with ErrUnrecognizedEvent if the event
// type is not a known trigger.
func Normalize(raw domain.RawEvent) (*domain.Event, error) {
	trigger := domain.TriggerType(raw.Type)
	if !trigger.IsValid() {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnrecognizedEvent, raw.Type)
	}

	var payload domain.EventPayload
	if len(raw.Payload) > 0 {
		if err := json.Unmarshal(raw.Payload, &payload); err != nil {
			return nil, fmt.Errorf("decode event payload: %w", err)
		}
	}

	ts := raw.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}

	return &domain.Event{
		Type:        trigger,
		ProjectID:   raw.ProjectID,
		TaskID:      raw.TaskID,
		ActorID:     raw.ActorID,
		Timestamp:   ts,
		Payload:     payload,
		Fingerprint: domain.EventFingerprint(trigger, raw.ProjectID, raw.TaskID, ts),
	}, nil
}
