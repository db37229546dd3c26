package server

import (
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListUsersOmitsCredentials(t *testing.T) {
	ts := newTestServer(t)
	_, adminToken := ts.createAdmin("admin")
	ts.register("alice", "alice@example.com", "super-secret-pw")

	resp := ts.request("GET", "/api/admin/users", nil, adminToken)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	resp.Body.Close()

	assert.NotContains(t, string(raw), "super-secret-pw")
	assert.NotContains(t, string(raw), "password")
	assert.Contains(t, string(raw), "alice@example.com")
}

func TestDeleteUser(t *testing.T) {
	ts := newTestServer(t)
	_, adminToken := ts.createAdmin("admin")
	ts.register("mortal", "mortal@example.com", "pw")
	target := ts.userByEmail("mortal@example.com")

	resp := ts.request("DELETE", fmt.Sprintf("/api/admin/users/%d", target.ID), nil, adminToken)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "User deleted", decodeBody(t, resp)["message"])

	resp = ts.request("DELETE", fmt.Sprintf("/api/admin/users/%d", target.ID), nil, adminToken)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestDeleteUserRefusesAdmins(t *testing.T) {
	ts := newTestServer(t)
	admin, adminToken := ts.createAdmin("admin")
	other, _ := ts.createAdmin("admin2")

	// Neither self-deletion nor deleting another admin goes through.
	for _, id := range []uint{admin.ID, other.ID} {
		resp := ts.request("DELETE", fmt.Sprintf("/api/admin/users/%d", id), nil, adminToken)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "Cannot delete admin user", decodeBody(t, resp)["error"])
	}
}

func TestRevealCredential(t *testing.T) {
	ts := newTestServer(t)
	_, adminToken := ts.createAdmin("admin")

	legacy := ts.createLegacyUser("legacy", "legacy@example.com", "still-in-the-clear")
	ts.register("hashed", "hashed@example.com", "properly-stored")
	hashed := ts.userByEmail("hashed@example.com")

	// Plaintext rows come back as stored.
	resp := ts.request("POST", fmt.Sprintf("/api/admin/users/%d/password", legacy.ID),
		map[string]string{"adminPassword": "admin-password"}, adminToken)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.Equal(t, "still-in-the-clear", body["password"])
	assert.Equal(t, "Password retrieved successfully", body["note"])

	// Hashed rows cannot be reversed; the response says so.
	resp = ts.request("POST", fmt.Sprintf("/api/admin/users/%d/password", hashed.ID),
		map[string]string{"adminPassword": "admin-password"}, adminToken)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	body = decodeBody(t, resp)
	assert.True(t, strings.HasPrefix(body["password"].(string), "[HASHED] "))
	assert.NotContains(t, body["password"], "properly-stored")
	assert.Equal(t, "Password is hashed and cannot be decrypted", body["note"])
}

func TestRevealCredentialRequiresReauth(t *testing.T) {
	ts := newTestServer(t)
	_, adminToken := ts.createAdmin("admin")
	legacy := ts.createLegacyUser("legacy", "legacy@example.com", "secret")

	resp := ts.request("POST", fmt.Sprintf("/api/admin/users/%d/password", legacy.ID),
		map[string]string{"adminPassword": "wrong"}, adminToken)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "Invalid admin password", decodeBody(t, resp)["error"])
}

func TestRevealCredentialMissingTarget(t *testing.T) {
	ts := newTestServer(t)
	_, adminToken := ts.createAdmin("admin")

	resp := ts.request("POST", "/api/admin/users/9999/password",
		map[string]string{"adminPassword": "admin-password"}, adminToken)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}
