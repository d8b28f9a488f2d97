//go:build integration

package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"go-society-hub/internal/config"
	"go-society-hub/internal/database"
	"go-society-hub/internal/handler"
	"go-society-hub/internal/middleware"
	"go-society-hub/internal/repository"
	"go-society-hub/internal/router"
	"go-society-hub/internal/security"
	"go-society-hub/internal/service"
	"go-society-hub/internal/token"
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// newPostgresServer runs the full router against the database named by
// TEST_DATABASE_URL. Tests are skipped when it is unset.
func newPostgresServer(t *testing.T, authRPM int) *httptest.Server {
	t.Helper()

	databaseURL := os.Getenv("TEST_DATABASE_URL")
	if databaseURL == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	db, err := database.New(ctx, databaseURL, 4, 1)
	require.NoError(t, err)
	t.Cleanup(db.Close)
	require.NoError(t, db.EnsureSchema(ctx))

	cfg := &config.Config{
		RequestTimeout:   10 * time.Second,
		StoreDriver:      config.StoreDriverPostgres,
		DatabaseURL:      databaseURL,
		JWTKey:           "integration-signing-key-0123456789abcdef",
		JWTIssuer:        "society-hub",
		JWTAudience:      "society-hub-clients",
		CORSOrigins:      []string{"*"},
		RateLimitRPM:     1000,
		AuthRateLimitRPM: authRPM,
	}

	authService := service.NewAuthService(repository.NewUserRepository(db.Pool), security.NewHasher(), token.NewIssuer(cfg.JWT()))
	server := httptest.NewServer(router.New(cfg, middleware.NewAuthMiddleware(token.NewVerifier(cfg.JWT())), router.Handlers{
		User:   handler.NewUserHandler(authService),
		Docs:   handler.NewDocsHandler(),
		Health: handler.NewHealthHandler(db),
	}))
	t.Cleanup(server.Close)

	return server
}

func uniqueUsername(prefix string) string {
	return prefix + "_" + uuid.NewString()[:8]
}

func doJSON(t *testing.T, method string, url string, body any, bearer string) (*http.Response, envelope) {
	t.Helper()

	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		require.NoError(t, err)
	}

	req, err := http.NewRequest(method, url, bytes.NewReader(payload))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })

	var env envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	return resp, env
}
