package server

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignupAndLoginFlow(t *testing.T) {
	_, app, _ := newTestServer(t)

	signupBody := map[string]any{
		"username": "newuser",
		"email":    "newuser@example.com",
		"password": "Password123!abc",
	}
	resp, body := doJSON(t, app, http.MethodPost, "/api/auth/signup", "", signupBody)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.NotEmpty(t, body["token"])

	user, ok := body["user"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "newuser", user["username"])
	assert.NotContains(t, user, "password", "password hash must never serialize")

	// Duplicate email.
	resp, _ = doJSON(t, app, http.MethodPost, "/api/auth/signup", "", signupBody)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	// Login with the right password.
	resp, body = doJSON(t, app, http.MethodPost, "/api/auth/login", "", map[string]any{
		"email":    "newuser@example.com",
		"password": "Password123!abc",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, body["token"])

	// Wrong password.
	resp, _ = doJSON(t, app, http.MethodPost, "/api/auth/login", "", map[string]any{
		"email":    "newuser@example.com",
		"password": "WrongPassword1!",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	// Unknown email.
	resp, _ = doJSON(t, app, http.MethodPost, "/api/auth/login", "", map[string]any{
		"email":    "nobody@example.com",
		"password": "Password123!abc",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestSignupValidation(t *testing.T) {
	_, app, _ := newTestServer(t)

	tests := []struct {
		name string
		body map[string]any
	}{
		{
			name: "missing fields",
			body: map[string]any{"username": "abc"},
		},
		{
			name: "weak password",
			body: map[string]any{"username": "abcuser", "email": "a@example.com", "password": "short"},
		},
		{
			name: "password without special characters",
			body: map[string]any{"username": "abcuser", "email": "a@example.com", "password": "Password12345"},
		},
		{
			name: "invalid username characters",
			body: map[string]any{"username": "bad user!", "email": "a@example.com", "password": "Password123!abc"},
		},
		{
			name: "invalid email",
			body: map[string]any{"username": "abcuser", "email": "not-an-email", "password": "Password123!abc"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, _ := doJSON(t, app, http.MethodPost, "/api/auth/signup", "", tt.body)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		})
	}
}

func TestAuthRequired(t *testing.T) {
	s, app, db := newTestServer(t)

	// No token.
	resp, _ := doJSON(t, app, http.MethodPost, "/api/polls", "", map[string]any{})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	// Garbage token.
	resp, _ = doJSON(t, app, http.MethodPost, "/api/polls", "not-a-jwt", map[string]any{})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	// Valid token passes the middleware (and fails later on validation).
	_, token := createTestUser(t, s, db, "alice")
	resp, _ = doJSON(t, app, http.MethodPost, "/api/polls", token, map[string]any{})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
