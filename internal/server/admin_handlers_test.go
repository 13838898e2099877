package server

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fittrack/internal/models"
)

func seedBodyPart(t *testing.T, s *Server, name string) *models.BodyPart {
	t.Helper()
	bodyPart := &models.BodyPart{Name: name}
	require.NoError(t, s.db.Create(bodyPart).Error)
	return bodyPart
}

func TestAdminExerciseCRUD(t *testing.T) {
	s, app := newTestApp(t)
	createUser(t, s, "root", "passw0rd!", models.RoleAdmin)
	token := loginAs(t, s, "root", models.RoleAdmin)
	seedBodyPart(t, s, "chest")

	resp := doRequest(t, app, http.MethodPost, "/admin/exercises", token, map[string]any{
		"name": "bench press", "bodyPart": "chest",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Missing required fields", parseBody(t, resp)["error"])

	resp = doRequest(t, app, http.MethodPost, "/admin/exercises", token, map[string]any{
		"name": "bench press", "youtube_link": "https://youtu.be/x", "bodyPart": "wings", "description": "barbell press",
	})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "Body part not found", parseBody(t, resp)["error"])

	resp = doRequest(t, app, http.MethodPost, "/admin/exercises", token, map[string]any{
		"name": "bench press", "youtube_link": "https://youtu.be/x", "bodyPart": "chest", "description": "barbell press",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "Exercise added successfully", parseBody(t, resp)["message"])

	var exercise models.Exercise
	require.NoError(t, s.db.First(&exercise).Error)

	resp = doRequest(t, app, http.MethodPut,
		fmt.Sprintf("/admin/exercises/%d", exercise.ID), token, map[string]any{
			"name": "incline press", "youtube_link": "https://youtu.be/y", "bodyPart": "chest", "description": "incline barbell press",
		})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Exercise updated successfully", parseBody(t, resp)["message"])

	resp = doRequest(t, app, http.MethodPut, "/admin/exercises/9999", token, map[string]any{
		"name": "x", "youtube_link": "y", "bodyPart": "chest", "description": "z",
	})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "Exercise not found", parseBody(t, resp)["error"])

	resp = doRequest(t, app, http.MethodDelete,
		fmt.Sprintf("/admin/exercises/%d", exercise.ID), token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Exercise deleted successfully", parseBody(t, resp)["message"])

	resp = doRequest(t, app, http.MethodDelete,
		fmt.Sprintf("/admin/exercises/%d", exercise.ID), token, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "Exercise not found", parseBody(t, resp)["error"])
}

func TestAdminUserManagement(t *testing.T) {
	s, app := newTestApp(t)
	createUser(t, s, "root", "passw0rd!", models.RoleAdmin)
	alice := createUser(t, s, "alice", "passw0rd!", models.RoleDefault)
	token := loginAs(t, s, "root", models.RoleAdmin)

	resp := doRequest(t, app, http.MethodGet, "/admin/users", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	users := parseBodyList(t, resp)
	require.Len(t, users, 2)
	for _, user := range users {
		_, leaked := user["password"]
		assert.False(t, leaked, "password hashes must never serialize")
	}

	resp = doRequest(t, app, http.MethodPut,
		fmt.Sprintf("/admin/users/%d", alice.ID), token, map[string]any{})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Invalid input data", parseBody(t, resp)["error"])

	resp = doRequest(t, app, http.MethodPut, "/admin/users/9999", token, map[string]any{
		"email": "new@example.com",
	})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "User not found", parseBody(t, resp)["error"])

	resp = doRequest(t, app, http.MethodPut,
		fmt.Sprintf("/admin/users/%d", alice.ID), token, map[string]any{
			"new_username": "alicia", "email": "alicia@example.com", "age": 31,
		})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "User updated successfully", parseBody(t, resp)["message"])

	var updated models.User
	require.NoError(t, s.db.First(&updated, alice.ID).Error)
	assert.Equal(t, "alicia", updated.Username)
	assert.Equal(t, "alicia@example.com", updated.Email)
	assert.Equal(t, 31, updated.Age)

	resp = doRequest(t, app, http.MethodDelete,
		fmt.Sprintf("/admin/users/%d", alice.ID), token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "User deleted successfully", parseBody(t, resp)["message"])

	resp = doRequest(t, app, http.MethodDelete,
		fmt.Sprintf("/admin/users/%d", alice.ID), token, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "User not found", parseBody(t, resp)["error"])
}

func TestAdminLoggedInUsers(t *testing.T) {
	s, app := newTestApp(t)
	createUser(t, s, "root", "passw0rd!", models.RoleAdmin)
	createUser(t, s, "alice", "passw0rd!", models.RoleDefault)
	createUser(t, s, "bob", "passw0rd!", models.RoleDefault)

	adminToken := loginAs(t, s, "root", models.RoleAdmin)
	loginAs(t, s, "alice", models.RoleDefault)

	resp := doRequest(t, app, http.MethodGet, "/admin/loggedusers", adminToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	loggedIn := parseBodyList(t, resp)

	usernames := make([]string, 0, len(loggedIn))
	for _, user := range loggedIn {
		usernames = append(usernames, user["username"].(string))
	}
	// Bob never logged in, so only the two live sessions appear.
	assert.ElementsMatch(t, []string{"root", "alice"}, usernames)
}

func TestWorkoutExercises(t *testing.T) {
	s, app := newTestApp(t)
	createUser(t, s, "alice", "passw0rd!", models.RoleDefault)
	token := loginAs(t, s, "alice", models.RoleDefault)

	bodyPart := seedBodyPart(t, s, "legs")
	require.NoError(t, s.db.Create(&models.Exercise{
		Name: "squat", YoutubeLink: "https://youtu.be/z", BodyPartID: bodyPart.ID, Description: "barbell squat",
	}).Error)

	resp := doRequest(t, app, http.MethodGet, "/workouts/exercises/legs", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	exercises := parseBodyList(t, resp)
	require.Len(t, exercises, 1)
	assert.Equal(t, "squat", exercises[0]["name"])

	resp = doRequest(t, app, http.MethodGet, "/workouts/exercises/wings", token, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "Body part not found", parseBody(t, resp)["error"])
}
