package router

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-society-hub/internal/config"
	"go-society-hub/internal/handler"
	"go-society-hub/internal/middleware"
	"go-society-hub/internal/repository"
	"go-society-hub/internal/security"
	"go-society-hub/internal/service"
	"go-society-hub/internal/token"
)

func newTestRouter(t *testing.T, authRPM int) http.Handler {
	t.Helper()

	cfg := &config.Config{
		RequestTimeout:   5 * time.Second,
		StoreDriver:      config.StoreDriverMemory,
		JWTKey:           "router-test-signing-key-0123456789",
		JWTIssuer:        "society-hub",
		JWTAudience:      "society-hub-clients",
		CORSOrigins:      []string{"http://localhost:4200"},
		RateLimitRPM:     -1,
		AuthRateLimitRPM: authRPM,
	}

	authService := service.NewAuthService(repository.NewMemoryUserRepository(), security.NewHasher(), token.NewIssuer(cfg.JWT()))

	return New(cfg, middleware.NewAuthMiddleware(token.NewVerifier(cfg.JWT())), Handlers{
		User:   handler.NewUserHandler(authService),
		Docs:   handler.NewDocsHandler(),
		Health: handler.NewHealthHandler(nil),
	})
}

func postJSON(t *testing.T, h http.Handler, path string, body any, bearer string) *httptest.ResponseRecorder {
	t.Helper()

	payload, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestRouter_ProtectedRoutesRequireToken(t *testing.T) {
	h := newTestRouter(t, 100)

	rec := postJSON(t, h, "/api/v1/users/register", map[string]string{"username": "dave", "password": "pw"}, "")
	require.Equal(t, http.StatusCreated, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/users/1", nil)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = postJSON(t, h, "/api/v1/users/login", map[string]string{"username": "dave", "password": "pw"}, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var parsed struct {
		Data struct {
			Token string `json:"token"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &parsed))
	require.NotEmpty(t, parsed.Data.Token)

	req = httptest.NewRequest(http.MethodGet, "/api/v1/users/1", nil)
	req.Header.Set("Authorization", "Bearer "+parsed.Data.Token)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"username":"dave"`)
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	rec = postJSON(t, h, "/api/v1/users/1/change-password", map[string]string{"current_password": "pw", "new_password": "pw2"}, parsed.Data.Token)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRouter_LoginIsRateLimited(t *testing.T) {
	h := newTestRouter(t, 2)

	var last int
	for i := 0; i < 3; i++ {
		rec := postJSON(t, h, "/api/v1/users/login", map[string]string{"username": "ghost", "password": "pw"}, "")
		last = rec.Code
		if i < 2 {
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
		}
	}
	assert.Equal(t, http.StatusTooManyRequests, last)
}

func TestRouter_PublicEndpoints(t *testing.T) {
	h := newTestRouter(t, 100)

	for _, path := range []string{"/health", "/openapi.yaml", "/swagger"} {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusOK, rec.Code, path)
	}
}
