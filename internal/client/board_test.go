package client_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskboardpro/automation/internal/client"
	"github.com/taskboardpro/automation/internal/domain"
)

func TestBoardGetTask(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/v1/tasks/task-1", r.URL.Path)
		assert.Equal(t, "Bearer svc-token", r.Header.Get("Authorization"))

		json.NewEncoder(w).Encode(map[string]string{
			"id":          "task-1",
			"project_id":  "project-1",
			"title":       "fix login",
			"status":      "In Progress",
			"assignee_id": "user-1",
		})
	}))
	defer server.Close()

	board := client.NewBoard(server.URL, "svc-token")

	task, err := board.GetTask(context.Background(), "task-1")
	require.NoError(t, err)
	assert.Equal(t, "task-1", task.ID)
	assert.Equal(t, "In Progress", task.Status)
	assert.Equal(t, "user-1", task.AssigneeID)
}

func TestBoardGetRetriesTransientFailures(t *testing.T) {
	var attempts int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		json.NewEncoder(w).Encode(map[string]any{"members": []string{"user-1", "user-2"}})
	}))
	defer server.Close()

	board := client.NewBoard(server.URL, "svc-token")

	members, err := board.GetProjectMembers(context.Background(), "project-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"user-1", "user-2"}, members)
	assert.Equal(t, 3, attempts)
}

func TestBoardGetDoesNotRetryNotFound(t *testing.T) {
	var attempts int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	board := client.NewBoard(server.URL, "svc-token")

	_, err := board.GetTask(context.Background(), "task-404")
	require.ErrorIs(t, err, domain.ErrNotFound)
	assert.Equal(t, 1, attempts, "4xx is definitive")
}

func TestBoardMutationDoesNotRetry(t *testing.T) {
	var attempts int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	board := client.NewBoard(server.URL, "svc-token")

	err := board.UpdateTaskStatus(context.Background(), "task-1", "Done")
	require.Error(t, err)

	var apiErr *client.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusInternalServerError, apiErr.StatusCode)
	assert.Equal(t, 1, attempts, "mutations must never retry")
}

func TestBoardUpdateTaskStatusSendsBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		assert.Equal(t, "/api/v1/tasks/task-1/status", r.URL.Path)

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "Done", body["status"])

		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	board := client.NewBoard(server.URL, "svc-token")
	require.NoError(t, board.UpdateTaskStatus(context.Background(), "task-1", "Done"))
}

func TestBoardAddComment(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v1/tasks/task-1/comments", r.URL.Path)

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "auto note", body["text"])

		w.WriteHeader(http.StatusCreated)
	}))
	defer server.Close()

	board := client.NewBoard(server.URL, "svc-token")
	require.NoError(t, board.AddComment(context.Background(), "task-1", "auto note"))
}

func TestBoardDeleteTaskPermissionDenied(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	board := client.NewBoard(server.URL, "svc-token")

	err := board.DeleteTask(context.Background(), "task-1")
	require.ErrorIs(t, err, domain.ErrPermission)
}

func TestBoardSendWrapsDeliveryError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/notifications", r.URL.Path)

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "user-1", body["recipient_id"])

		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	board := client.NewBoard(server.URL, "svc-token")

	err := board.Send(context.Background(), "user-1", "heads up")
	require.ErrorIs(t, err, domain.ErrDelivery)
}

func TestBoardSendSucceeds(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "user-1", body["recipient_id"])
		assert.Equal(t, "heads up", body["message"])

		w.WriteHeader(http.StatusCreated)
	}))
	defer server.Close()

	board := client.NewBoard(server.URL, "svc-token")
	require.NoError(t, board.Send(context.Background(), "user-1", "heads up"))
}
