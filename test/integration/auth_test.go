//go:build integration

package integration

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestUserLifecycleAgainstPostgres(t *testing.T) {
	server := newPostgresServer(t, 1000)
	username := uniqueUsername("member")

	resp, env := doJSON(t, http.MethodPost, server.URL+"/api/v1/users/register", map[string]string{
		"username": username,
		"password": "Password123!",
		"email":    username + "@example.com",
	}, "")
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var registered struct {
		UserID int64 `json:"user_id"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &registered))
	require.Positive(t, registered.UserID)

	resp, env = doJSON(t, http.MethodPost, server.URL+"/api/v1/users/register", map[string]string{
		"username": strings.ToUpper(username),
		"password": "whatever",
	}, "")
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	require.Equal(t, "REGISTRATION_FAILED", env.Error.Code)
	require.Equal(t, "Username already exists.", env.Error.Message)

	resp, env = doJSON(t, http.MethodPost, server.URL+"/api/v1/users/login", map[string]string{
		"username": username,
		"password": "Password123!",
	}, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var login struct {
		UserID int64  `json:"user_id"`
		Token  string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &login))
	require.Equal(t, registered.UserID, login.UserID)
	require.NotEmpty(t, login.Token)

	userURL := fmt.Sprintf("%s/api/v1/users/%d", server.URL, registered.UserID)

	resp, _ = doJSON(t, http.MethodPut, userURL, map[string]string{"phone": "555-0101"}, login.Token)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, env = doJSON(t, http.MethodGet, userURL, nil, login.Token)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, string(env.Data), `"phone":"555-0101"`)
	require.Contains(t, string(env.Data), username+"@example.com")

	resp, env = doJSON(t, http.MethodPost, userURL+"/change-password", map[string]string{
		"current_password": "wrong",
		"new_password":     "Next123!",
	}, login.Token)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	require.Equal(t, "WRONG_CURRENT_PASSWORD", env.Error.Code)

	resp, _ = doJSON(t, http.MethodPost, userURL+"/change-password", map[string]string{
		"current_password": "Password123!",
		"new_password":     "Next123!",
	}, login.Token)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, env = doJSON(t, http.MethodPost, server.URL+"/api/v1/users/login", map[string]string{
		"username": username,
		"password": "Password123!",
	}, "")
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	require.Equal(t, "Invalid username or password.", env.Error.Message)
}

func TestHealthAndRateLimitAgainstPostgres(t *testing.T) {
	server := newPostgresServer(t, 2)

	resp, env := doJSON(t, http.MethodGet, server.URL+"/health", nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, string(env.Data), `"ok":true`)

	body := map[string]string{"username": uniqueUsername("ghost"), "password": "pw"}
	for attempt := 0; attempt < 2; attempt++ {
		resp, _ = doJSON(t, http.MethodPost, server.URL+"/api/v1/users/login", body, "")
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	}

	resp, _ = doJSON(t, http.MethodPost, server.URL+"/api/v1/users/login", body, "")
	require.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	require.NotEmpty(t, resp.Header.Get("Retry-After"))
}
