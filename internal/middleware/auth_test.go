package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-society-hub/internal/token"
)

var testTokenConfig = token.Config{
	Key:      "middleware-test-signing-key-0123456789",
	Issuer:   "society-hub",
	Audience: "society-hub-clients",
}

func TestRequireAuth(t *testing.T) {
	issued, err := token.NewIssuer(testTokenConfig).Issue(42, "alice")
	require.NoError(t, err)

	mw := NewAuthMiddleware(token.NewVerifier(testTokenConfig))
	protected := mw.RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := ClaimsFromContext(r.Context())
		require.True(t, ok)
		assert.Equal(t, int64(42), claims.UserID)
		assert.Equal(t, "alice", claims.Username)
		w.WriteHeader(http.StatusNoContent)
	}))

	tests := []struct {
		name   string
		header string
		status int
	}{
		{name: "valid bearer", header: "Bearer " + issued, status: http.StatusNoContent},
		{name: "lowercase scheme", header: "bearer " + issued, status: http.StatusNoContent},
		{name: "missing header", header: "", status: http.StatusUnauthorized},
		{name: "wrong scheme", header: "Basic " + issued, status: http.StatusUnauthorized},
		{name: "garbage token", header: "Bearer not-a-jwt", status: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/users/42", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()

			protected.ServeHTTP(rec, req)

			assert.Equal(t, tt.status, rec.Code)
			if tt.status == http.StatusUnauthorized {
				assert.Contains(t, rec.Body.String(), `"code":"UNAUTHORIZED"`)
			}
		})
	}
}

func TestRequireAuth_ForeignKeyRejected(t *testing.T) {
	other := testTokenConfig
	other.Key = "some-other-signing-key-9876543210abcdef"
	issued, err := token.NewIssuer(other).Issue(1, "mallory")
	require.NoError(t, err)

	mw := NewAuthMiddleware(token.NewVerifier(testTokenConfig))
	called := false
	handler := mw.RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+issued)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.False(t, called)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestClaimsFromContext_Absent(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	claims, ok := ClaimsFromContext(req.Context())
	assert.False(t, ok)
	assert.Nil(t, claims)
}
