package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-at-least-32-characters"

func TestTokenRoundTrip(t *testing.T) {
	token, err := GenerateToken("user-123", "analyst@example.com", testSecret)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := ValidateToken(token, testSecret)
	require.NoError(t, err)
	assert.Equal(t, "user-123", claims.UserID)
	assert.Equal(t, "analyst@example.com", claims.Email)
}

func TestValidateTokenWrongSecret(t *testing.T) {
	token, err := GenerateToken("user-123", "analyst@example.com", testSecret)
	require.NoError(t, err)

	_, err = ValidateToken(token, "some-other-secret")
	assert.Error(t, err)
}

func TestValidateTokenGarbage(t *testing.T) {
	_, err := ValidateToken("not.a.token", testSecret)
	assert.Error(t, err)
}

func TestPasswordHashAndVerify(t *testing.T) {
	hash, err := HashPassword("hunter2hunter2")
	require.NoError(t, err)
	assert.NotEqual(t, "hunter2hunter2", hash)

	assert.True(t, VerifyPassword("hunter2hunter2", hash))
	assert.False(t, VerifyPassword("wrong-password", hash))
}

func TestAuthenticateMiddleware(t *testing.T) {
	m := NewMiddleware(testSecret)

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := UserFromContext(r.Context())
		require.True(t, ok)
		assert.Equal(t, "user-123", claims.UserID)
		w.WriteHeader(http.StatusOK)
	})

	token, err := GenerateToken("user-123", "analyst@example.com", testSecret)
	require.NoError(t, err)

	tests := []struct {
		name       string
		authHeader string
		wantCode   int
	}{
		{"valid token", "Bearer " + token, http.StatusOK},
		{"missing header", "", http.StatusUnauthorized},
		{"malformed header", "Token abc", http.StatusUnauthorized},
		{"invalid token", "Bearer abc.def.ghi", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)
			if tt.authHeader != "" {
				r.Header.Set("Authorization", tt.authHeader)
			}
			w := httptest.NewRecorder()

			m.Authenticate(next).ServeHTTP(w, r)
			assert.Equal(t, tt.wantCode, w.Code)
		})
	}
}
