// Package client implements the board backend collaborators over HTTP.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/sethvargo/go-retry"
	"github.com/taskboardpro/automation/internal/domain"
	"github.com/taskboardpro/automation/internal/engine"
)

const (
	defaultTimeout  = 10 * time.Second
	readMaxRetries  = 3
	readRetryBase   = 100 * time.Millisecond
	maxErrorBodyLen = 512
)

// Board is an HTTP client for the task-board backend. It satisfies both
// engine.TaskService and engine.NotificationService.
//
// Reads retry transient failures; mutations never do. Duplicate suppression
// for actions belongs to the engine's idempotency guard, and a retried
// mutation would sidestep it.
type Board struct {
	baseURL      string
	serviceToken string
	httpClient   *http.Client
}

// NewBoard creates a board client authenticated with a service token.
func NewBoard(baseURL, serviceToken string) *Board {
	return &Board{
		baseURL:      baseURL,
		serviceToken: serviceToken,
		httpClient:   &http.Client{Timeout: defaultTimeout},
	}
}

// APIError wraps non-2xx responses from the board backend.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("board api error: status=%d body=%s", e.StatusCode, e.Body)
}

// GetTask fetches a task by ID.
func (b *Board) GetTask(ctx context.Context, taskID string) (*engine.Task, error) {
	var task engine.Task
	endpoint := fmt.Sprintf("api/v1/tasks/%s", url.PathEscape(taskID))
	if err := b.get(ctx, endpoint, &task); err != nil {
		return nil, fmt.Errorf("get task %s: %w", taskID, err)
	}
	return &task, nil
}

// UpdateTaskStatus moves a task to another status column.
func (b *Board) UpdateTaskStatus(ctx context.Context, taskID, status string) error {
	endpoint := fmt.Sprintf("api/v1/tasks/%s/status", url.PathEscape(taskID))
	body := map[string]string{"status": status}
	if err := b.do(ctx, http.MethodPatch, endpoint, body, nil); err != nil {
		return fmt.Errorf("update status of task %s: %w", taskID, err)
	}
	return nil
}

// AssignTask sets the task's assignee.
func (b *Board) AssignTask(ctx context.Context, taskID, userID string) error {
	endpoint := fmt.Sprintf("api/v1/tasks/%s/assignee", url.PathEscape(taskID))
	body := map[string]string{"user_id": userID}
	if err := b.do(ctx, http.MethodPatch, endpoint, body, nil); err != nil {
		return fmt.Errorf("assign task %s: %w", taskID, err)
	}
	return nil
}

// AddComment appends a comment to the task.
func (b *Board) AddComment(ctx context.Context, taskID, text string) error {
	endpoint := fmt.Sprintf("api/v1/tasks/%s/comments", url.PathEscape(taskID))
	body := map[string]string{"text": text}
	if err := b.do(ctx, http.MethodPost, endpoint, body, nil); err != nil {
		return fmt.Errorf("comment on task %s: %w", taskID, err)
	}
	return nil
}

// UpdateTask patches arbitrary task fields.
func (b *Board) UpdateTask(ctx context.Context, taskID string, fields map[string]string) error {
	endpoint := fmt.Sprintf("api/v1/tasks/%s", url.PathEscape(taskID))
	body := map[string]any{"fields": fields}
	if err := b.do(ctx, http.MethodPatch, endpoint, body, nil); err != nil {
		return fmt.Errorf("update task %s: %w", taskID, err)
	}
	return nil
}

// DeleteTask removes the task from its board.
func (b *Board) DeleteTask(ctx context.Context, taskID string) error {
	endpoint := fmt.Sprintf("api/v1/tasks/%s", url.PathEscape(taskID))
	if err := b.do(ctx, http.MethodDelete, endpoint, nil, nil); err != nil {
		return fmt.Errorf("delete task %s: %w", taskID, err)
	}
	return nil
}

// GetProjectMembers lists the user IDs of a project's members.
func (b *Board) GetProjectMembers(ctx context.Context, projectID string) ([]string, error) {
	var resp struct {
		Members []string `json:"members"`
	}
	endpoint := fmt.Sprintf("api/v1/projects/%s/members", url.PathEscape(projectID))
	if err := b.get(ctx, endpoint, &resp); err != nil {
		return nil, fmt.Errorf("get members of project %s: %w", projectID, err)
	}
	return resp.Members, nil
}

// Send delivers an in-app notification to a user.
func (b *Board) Send(ctx context.Context, recipientID, message string) error {
	body := map[string]string{
		"recipient_id": recipientID,
		"message":      message,
	}
	if err := b.do(ctx, http.MethodPost, "api/v1/notifications", body, nil); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrDelivery, err)
	}
	return nil
}

// get performs a read with fibonacci backoff on transient failures.
func (b *Board) get(ctx context.Context, endpoint string, out any) error {
	backoff := retry.WithMaxRetries(readMaxRetries, retry.NewFibonacci(readRetryBase))
	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		err := b.do(ctx, http.MethodGet, endpoint, nil, out)
		if isTransient(err) {
			return retry.RetryableError(err)
		}
		return err
	})
}

// do performs one HTTP exchange, mapping status codes onto domain errors.
func (b *Board) do(ctx context.Context, method, endpoint string, body, out any) error {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
	}

	reqURL := b.baseURL + "/" + endpoint
	req, err := http.NewRequestWithContext(ctx, method, reqURL, &buf)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if b.serviceToken != "" {
		req.Header.Set("Authorization", "Bearer "+b.serviceToken)
	}

	resp, err := b.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("call board: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyLen))
		apiErr := &APIError{StatusCode: resp.StatusCode, Body: string(data)}
		switch resp.StatusCode {
		case http.StatusNotFound:
			return fmt.Errorf("%w: %w", domain.ErrNotFound, apiErr)
		case http.StatusUnauthorized, http.StatusForbidden:
			return fmt.Errorf("%w: %w", domain.ErrPermission, apiErr)
		default:
			return apiErr
		}
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

// isTransient reports whether a read failure is worth retrying: 5xx
// responses and transport errors. 4xx responses are definitive.
func isTransient(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return false
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode >= 500
	}
	// No APIError means the exchange itself never completed.
	return true
}
