package engine_test

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/taskboardpro/automation/internal/domain"
	"github.com/taskboardpro/automation/internal/engine"
)

// fakeRuleSource serves rules from memory, filtering and ordering the way
// the real repository does.
type fakeRuleSource struct {
	rules []*domain.AutomationRule
	err   error
}

func (f *fakeRuleSource) GetActiveRulesForProject(
	_ context.Context,
	projectID string,
	trigger domain.TriggerType,
) ([]*domain.AutomationRule, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []*domain.AutomationRule
	for _, rule := range f.rules {
		if rule.ProjectID == projectID && rule.TriggerType == trigger && rule.IsActive() {
			out = append(out, rule)
		}
	}
	return out, nil
}

// fakeExecutionStore reproduces the claim semantics of the Postgres
// repository: unique key per (rule, fingerprint), failed records
// re-claimable, success and pending records not.
type fakeExecutionStore struct {
	mu      sync.Mutex
	records map[string]*domain.ExecutionRecord
}

func newFakeExecutionStore() *fakeExecutionStore {
	return &fakeExecutionStore{records: make(map[string]*domain.ExecutionRecord)}
}

func executionKey(ruleID, fingerprint string) string {
	return ruleID + "|" + fingerprint
}

func (f *fakeExecutionStore) Claim(_ context.Context, ruleID, fingerprint string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	key := executionKey(ruleID, fingerprint)
	if rec, ok := f.records[key]; ok {
		if rec.Result == domain.ExecutionFailed {
			rec.Result = domain.ExecutionPending
			rec.Detail = ""
			rec.ExecutedAt = nil
			return true, nil
		}
		return false, nil
	}
	f.records[key] = &domain.ExecutionRecord{
		RuleID:           ruleID,
		EventFingerprint: fingerprint,
		Result:           domain.ExecutionPending,
		CreatedAt:        time.Now(),
	}
	return true, nil
}

func (f *fakeExecutionStore) Finalize(
	_ context.Context,
	ruleID, fingerprint string,
	result domain.ExecutionResult,
	detail string,
) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	rec, ok := f.records[executionKey(ruleID, fingerprint)]
	if !ok || rec.Result != domain.ExecutionPending {
		return fmt.Errorf("no pending claim for rule %s", ruleID)
	}
	now := time.Now()
	rec.Result = result
	rec.Detail = detail
	rec.ExecutedAt = &now
	return nil
}

func (f *fakeExecutionStore) record(ruleID, fingerprint string) *domain.ExecutionRecord {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.records[executionKey(ruleID, fingerprint)]
}

func (f *fakeExecutionStore) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.records)
}

// fakeBoard records collaborator calls and fails on demand.
type fakeBoard struct {
	mu      sync.Mutex
	calls   []string
	members []string
	errs    map[string]error
}

func newFakeBoard() *fakeBoard {
	return &fakeBoard{errs: make(map[string]error)}
}

func (f *fakeBoard) call(name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, name)
	return f.errs[name]
}

func (f *fakeBoard) callCount(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c == name {
			n++
		}
	}
	return n
}

func (f *fakeBoard) GetTask(_ context.Context, taskID string) (*engine.Task, error) {
	if err := f.call("GetTask"); err != nil {
		return nil, err
	}
	return &engine.Task{ID: taskID}, nil
}

func (f *fakeBoard) UpdateTaskStatus(_ context.Context, _, _ string) error {
	return f.call("UpdateTaskStatus")
}

func (f *fakeBoard) AssignTask(_ context.Context, _, _ string) error {
	return f.call("AssignTask")
}

func (f *fakeBoard) AddComment(_ context.Context, _, _ string) error {
	return f.call("AddComment")
}

func (f *fakeBoard) UpdateTask(_ context.Context, _ string, _ map[string]string) error {
	return f.call("UpdateTask")
}

func (f *fakeBoard) DeleteTask(_ context.Context, _ string) error {
	return f.call("DeleteTask")
}

func (f *fakeBoard) GetProjectMembers(_ context.Context, _ string) ([]string, error) {
	if err := f.call("GetProjectMembers"); err != nil {
		return nil, err
	}
	return f.members, nil
}

// fakeNotifier records sent notifications and fails on demand.
type fakeNotifier struct {
	mu   sync.Mutex
	sent []sentNotification
	err  error
}

type sentNotification struct {
	recipient string
	message   string
}

func (f *fakeNotifier) Send(_ context.Context, recipientID, message string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, sentNotification{recipient: recipientID, message: message})
	return nil
}

func (f *fakeNotifier) sentCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}
