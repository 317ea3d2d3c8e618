package handlers_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateTaskForcesDefaults(t *testing.T) {
	ta := newTestApp(t)
	aliceID, aliceToken := ta.signup(t, "alice", "s3cret", false)

	// completed in the request body is ignored; ownership is the caller's.
	resp := ta.request(t, "POST", "/tasks/", map[string]interface{}{
		"title":     "sneaky",
		"completed": true,
		"owner_id":  9999,
	}, aliceToken)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := decodeMap(t, resp)
	assert.Equal(t, "sneaky", body["title"])
	assert.Equal(t, false, body["completed"])
	assert.Equal(t, float64(aliceID), body["owner_id"])
	assert.Nil(t, body["description"])

	resp = ta.request(t, "POST", "/tasks/", map[string]interface{}{
		"title":       "documented",
		"description": "has details",
	}, aliceToken)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body = decodeMap(t, resp)
	assert.Equal(t, "has details", body["description"])
}

func TestCreateTaskValidation(t *testing.T) {
	ta := newTestApp(t)
	_, aliceToken := ta.signup(t, "alice", "s3cret", false)

	resp := ta.request(t, "POST", "/tasks/", map[string]interface{}{
		"description": "no title",
	}, aliceToken)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	resp.Body.Close()
}

func TestListTasksIsOwnerScoped(t *testing.T) {
	ta := newTestApp(t)

	_, aliceToken := ta.signup(t, "alice", "s3cret", false)
	_, bobToken := ta.signup(t, "bob", "s3cret", false)
	_, adminToken := ta.signup(t, "root", "s3cret", true)

	ta.createTask(t, aliceToken, "a1")
	ta.createTask(t, aliceToken, "a2")
	ta.createTask(t, bobToken, "b1")

	resp := ta.request(t, "GET", "/tasks/", nil, aliceToken)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	tasks := decodeList(t, resp)
	require.Len(t, tasks, 2)
	assert.Equal(t, "a1", tasks[0]["title"])
	assert.Equal(t, "a2", tasks[1]["title"])

	resp = ta.request(t, "GET", "/tasks/", nil, bobToken)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	tasks = decodeList(t, resp)
	require.Len(t, tasks, 1)
	assert.Equal(t, "b1", tasks[0]["title"])

	// The listing is owner-scoped even for admins.
	resp = ta.request(t, "GET", "/tasks/", nil, adminToken)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	tasks = decodeList(t, resp)
	assert.Empty(t, tasks)
}

func TestListTasksPaging(t *testing.T) {
	ta := newTestApp(t)
	_, aliceToken := ta.signup(t, "alice", "s3cret", false)

	for _, title := range []string{"t1", "t2", "t3"} {
		ta.createTask(t, aliceToken, title)
	}

	resp := ta.request(t, "GET", "/tasks/?skip=1&limit=1", nil, aliceToken)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	tasks := decodeList(t, resp)
	require.Len(t, tasks, 1)
	assert.Equal(t, "t2", tasks[0]["title"])
}

func TestGetTaskIsOwnerOnly(t *testing.T) {
	ta := newTestApp(t)

	_, aliceToken := ta.signup(t, "alice", "s3cret", false)
	_, bobToken := ta.signup(t, "bob", "s3cret", false)
	_, adminToken := ta.signup(t, "root", "s3cret", true)

	taskID := ta.createTask(t, aliceToken, "private")

	resp := ta.request(t, "GET", "/tasks/"+itoa(taskID), nil, aliceToken)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := decodeMap(t, resp)
	assert.Equal(t, "private", body["title"])

	resp = ta.request(t, "GET", "/tasks/"+itoa(taskID), nil, bobToken)
	require.Equal(t, http.StatusForbidden, resp.StatusCode)
	body = decodeMap(t, resp)
	assert.Equal(t, "Not authorized to view this task", body["detail"])

	// Reads are owner-only: being admin does not help here, unlike
	// update and delete.
	resp = ta.request(t, "GET", "/tasks/"+itoa(taskID), nil, adminToken)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp.Body.Close()

	// Existence is checked first, so a missing id is 404 for everyone.
	resp = ta.request(t, "GET", "/tasks/99999", nil, bobToken)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	body = decodeMap(t, resp)
	assert.Equal(t, "Task not found", body["detail"])
}

func TestGetTaskInvalidID(t *testing.T) {
	ta := newTestApp(t)
	_, aliceToken := ta.signup(t, "alice", "s3cret", false)

	resp := ta.request(t, "GET", "/tasks/abc", nil, aliceToken)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	body := decodeMap(t, resp)
	assert.Equal(t, "Invalid task ID", body["detail"])
}

func TestUpdateTaskPartial(t *testing.T) {
	ta := newTestApp(t)
	_, aliceToken := ta.signup(t, "alice", "s3cret", false)

	resp := ta.request(t, "POST", "/tasks/", map[string]interface{}{
		"title":       "original",
		"description": "keep me",
	}, aliceToken)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	created := decodeMap(t, resp)
	taskID := itoa(int(created["id"].(float64)))

	// Completing the task leaves everything else alone.
	resp = ta.request(t, "PUT", "/tasks/"+taskID, map[string]interface{}{
		"completed": true,
	}, aliceToken)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := decodeMap(t, resp)
	assert.Equal(t, true, body["completed"])
	assert.Equal(t, "original", body["title"])
	assert.Equal(t, "keep me", body["description"])

	// An explicit null reads the same as an absent field.
	resp = ta.request(t, "PUT", "/tasks/"+taskID, map[string]interface{}{
		"description": nil,
	}, aliceToken)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body = decodeMap(t, resp)
	assert.Equal(t, "keep me", body["description"])
	assert.Equal(t, true, body["completed"])
}

func TestUpdateTaskAuthorization(t *testing.T) {
	ta := newTestApp(t)

	_, aliceToken := ta.signup(t, "alice", "s3cret", false)
	_, bobToken := ta.signup(t, "bob", "s3cret", false)
	_, adminToken := ta.signup(t, "root", "s3cret", true)

	taskID := ta.createTask(t, aliceToken, "contested")

	resp := ta.request(t, "PUT", "/tasks/"+itoa(taskID), map[string]interface{}{
		"title": "bob was here",
	}, bobToken)
	require.Equal(t, http.StatusForbidden, resp.StatusCode)
	body := decodeMap(t, resp)
	assert.Equal(t, "Not authorized to update this task", body["detail"])

	// Admins may update tasks they cannot read.
	resp = ta.request(t, "PUT", "/tasks/"+itoa(taskID), map[string]interface{}{
		"title": "admin was here",
	}, adminToken)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body = decodeMap(t, resp)
	assert.Equal(t, "admin was here", body["title"])

	// Missing tasks are 404 before any permission check.
	resp = ta.request(t, "PUT", "/tasks/99999", map[string]interface{}{
		"title": "ghost",
	}, bobToken)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}

func TestDeleteTaskAuthorization(t *testing.T) {
	ta := newTestApp(t)

	_, aliceToken := ta.signup(t, "alice", "s3cret", false)
	_, bobToken := ta.signup(t, "bob", "s3cret", false)
	_, adminToken := ta.signup(t, "root", "s3cret", true)

	first := ta.createTask(t, aliceToken, "mine")
	second := ta.createTask(t, aliceToken, "also mine")

	resp := ta.request(t, "DELETE", "/tasks/"+itoa(first), nil, bobToken)
	require.Equal(t, http.StatusForbidden, resp.StatusCode)
	body := decodeMap(t, resp)
	assert.Equal(t, "Not authorized to delete this task", body["detail"])

	resp = ta.request(t, "DELETE", "/tasks/"+itoa(first), nil, aliceToken)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body = decodeMap(t, resp)
	assert.Equal(t, "Task deleted", body["detail"])

	resp = ta.request(t, "DELETE", "/tasks/"+itoa(second), nil, adminToken)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	// Both really gone; deleting again is a 404.
	resp = ta.request(t, "DELETE", "/tasks/"+itoa(first), nil, aliceToken)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()

	resp = ta.request(t, "GET", "/tasks/"+itoa(second), nil, aliceToken)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}
