package controllers

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	testutils "github.com/ssnnd0/Saxon-Scout/api/controllers/testing"
	"github.com/ssnnd0/Saxon-Scout/api/models"
	"github.com/ssnnd0/Saxon-Scout/storage"
)

func TestUserManagement(t *testing.T) {
	env := setupTestEnv(t)

	t.Run("Happy path - list never exposes password hashes", func(t *testing.T) {
		res := testutils.PerformRequest(env.router, http.MethodGet, "/api/users", nil, asAdmin(env))
		require.Equal(t, http.StatusOK, res.Code)

		assert.NotContains(t, res.Body.String(), "passwordHash")

		var users []models.UserResponse
		require.NoError(t, json.Unmarshal(res.Body.Bytes(), &users))
		assert.Len(t, users, 2)
	})

	t.Run("Unhappy path - scouts cannot manage users", func(t *testing.T) {
		res := testutils.PerformRequest(env.router, http.MethodGet, "/api/users", nil, asScout(env))
		require.Equal(t, http.StatusForbidden, res.Code)
	})

	t.Run("Happy path - create a user directly", func(t *testing.T) {
		res := testutils.PerformRequest(env.router, http.MethodPost, "/api/users", &models.CreateUserRequest{
			Username: "second-admin",
			Password: "secret123",
			Name:     "Second Admin",
			Role:     storage.RoleAdmin,
		}, asAdmin(env))
		require.Equal(t, http.StatusOK, res.Code)

		var user models.UserResponse
		require.NoError(t, json.Unmarshal(res.Body.Bytes(), &user))
		assert.Equal(t, storage.RoleAdmin, user.Role)
	})

	t.Run("Unhappy path - duplicate username", func(t *testing.T) {
		res := testutils.PerformRequest(env.router, http.MethodPost, "/api/users", &models.CreateUserRequest{
			Username: "scout",
			Password: "secret123",
			Name:     "Imposter",
			Role:     storage.RoleScout,
		}, asAdmin(env))
		require.Equal(t, http.StatusBadRequest, res.Code)
	})

	t.Run("Unhappy path - invalid role rejected by binding", func(t *testing.T) {
		res := testutils.PerformRequest(env.router, http.MethodPost, "/api/users", map[string]string{
			"username": "weird",
			"password": "secret123",
			"name":     "Weird",
			"role":     "superuser",
		}, asAdmin(env))
		require.Equal(t, http.StatusBadRequest, res.Code)
	})
}

func TestLastAdminGuards(t *testing.T) {
	env := setupTestEnv(t)
	scoutRole := storage.RoleScout

	t.Run("Unhappy path - demoting the only admin", func(t *testing.T) {
		res := testutils.PerformRequest(env.router, http.MethodPut, "/api/users/"+env.admin.ID, &models.UpdateUserRequest{
			Role: &scoutRole,
		}, asAdmin(env))
		require.Equal(t, http.StatusBadRequest, res.Code)

		var body models.ErrorResponse
		require.NoError(t, json.Unmarshal(res.Body.Bytes(), &body))
		assert.Equal(t, "cannot remove admin role from the last admin user", body.Error)
	})

	t.Run("Unhappy path - deleting your own account", func(t *testing.T) {
		res := testutils.PerformRequest(env.router, http.MethodDelete, "/api/users/"+env.admin.ID, nil, asAdmin(env))
		require.Equal(t, http.StatusBadRequest, res.Code)
	})

	t.Run("Happy path - demotion allowed once another admin exists", func(t *testing.T) {
		second := seedUser(t, env.users, "admin2", "secret123", storage.RoleAdmin)

		res := testutils.PerformRequest(env.router, http.MethodPut, "/api/users/"+second.ID, &models.UpdateUserRequest{
			Role: &scoutRole,
		}, asAdmin(env))
		require.Equal(t, http.StatusOK, res.Code)

		var user models.UserResponse
		require.NoError(t, json.Unmarshal(res.Body.Bytes(), &user))
		assert.Equal(t, storage.RoleScout, user.Role)
	})

	t.Run("Happy path - admin can delete a scout", func(t *testing.T) {
		res := testutils.PerformRequest(env.router, http.MethodDelete, "/api/users/"+env.scout.ID, nil, asAdmin(env))
		require.Equal(t, http.StatusOK, res.Code)
	})
}

func TestInvites(t *testing.T) {
	env := setupTestEnv(t)

	t.Run("Happy path - batch of codes with the invite alphabet", func(t *testing.T) {
		res := testutils.PerformRequest(env.router, http.MethodPost, "/api/users/invites", &models.CreateInviteRequest{
			Count: 3,
		}, asAdmin(env))
		require.Equal(t, http.StatusOK, res.Code)

		var invites []*storage.Invite
		require.NoError(t, json.Unmarshal(res.Body.Bytes(), &invites))
		require.Len(t, invites, 3)
		for _, invite := range invites {
			assert.Len(t, invite.Code, inviteLength)
			assert.Equal(t, storage.RoleScout, invite.Role, "role defaults to scout")
			assert.False(t, invite.Used)
			for _, r := range invite.Code {
				assert.Contains(t, inviteAlphabet, string(r))
			}
		}
	})

	t.Run("Unhappy path - zero count", func(t *testing.T) {
		res := testutils.PerformRequest(env.router, http.MethodPost, "/api/users/invites", &models.CreateInviteRequest{
			Count: 0,
		}, asAdmin(env))
		require.Equal(t, http.StatusBadRequest, res.Code)
	})

	t.Run("Unhappy path - bogus role", func(t *testing.T) {
		res := testutils.PerformRequest(env.router, http.MethodPost, "/api/users/invites", &models.CreateInviteRequest{
			Count: 1,
			Role:  "overlord",
		}, asAdmin(env))
		require.Equal(t, http.StatusBadRequest, res.Code)
	})

	t.Run("Happy path - list and delete invites", func(t *testing.T) {
		res := testutils.PerformRequest(env.router, http.MethodGet, "/api/users/invites", nil, asAdmin(env))
		require.Equal(t, http.StatusOK, res.Code)

		var invites []*storage.Invite
		require.NoError(t, json.Unmarshal(res.Body.Bytes(), &invites))
		require.NotEmpty(t, invites)

		delRes := testutils.PerformRequest(env.router, http.MethodDelete, "/api/users/invites/"+invites[0].Code, nil, asAdmin(env))
		require.Equal(t, http.StatusOK, delRes.Code)
	})

	t.Run("Unhappy path - deleting an unknown code", func(t *testing.T) {
		res := testutils.PerformRequest(env.router, http.MethodDelete, "/api/users/invites/NOPE4321", nil, asAdmin(env))
		require.Equal(t, http.StatusNotFound, res.Code)

		var body models.ErrorResponse
		require.NoError(t, json.Unmarshal(res.Body.Bytes(), &body))
		assert.Equal(t, "invite not found", body.Error)
	})
}
