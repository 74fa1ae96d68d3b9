package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	s, err := NewService("test-secret", time.Hour)
	require.NoError(t, err)
	return s
}

func TestGenerateAndValidate(t *testing.T) {
	s := newTestService(t)

	token, err := s.GenerateToken(User{ID: "user-1", Email: "a@example.com"})
	require.NoError(t, err)

	user, err := s.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, User{ID: "user-1", Email: "a@example.com"}, user)
}

func TestNewServiceRequiresSecret(t *testing.T) {
	_, err := NewService("", time.Hour)
	assert.Error(t, err)

	s, err := NewService("x", 0)
	require.NoError(t, err)
	assert.Equal(t, 24*time.Hour, s.expiration)
}

func TestGenerateRequiresUserID(t *testing.T) {
	_, err := newTestService(t).GenerateToken(User{})
	assert.Error(t, err)
}

func TestValidateRejects(t *testing.T) {
	s := newTestService(t)
	other, err := NewService("other-secret", time.Hour)
	require.NoError(t, err)
	foreign, err := other.GenerateToken(User{ID: "u"})
	require.NoError(t, err)

	expired := newTestService(t)
	expired.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	old, err := expired.GenerateToken(User{ID: "u"})
	require.NoError(t, err)

	none := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{UserID: "u"})
	unsigned, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	tests := map[string]string{
		"empty":        "",
		"garbage":      "not.a.token",
		"wrong secret": foreign,
		"expired":      old,
		"alg none":     unsigned,
	}
	for name, token := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := s.ValidateToken(token)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}

func TestMiddleware(t *testing.T) {
	s := newTestService(t)
	token, err := s.GenerateToken(User{ID: "user-1"})
	require.NoError(t, err)

	handler := func(w http.ResponseWriter, r *http.Request) {
		if user, ok := UserFrom(r.Context()); ok {
			_, _ = w.Write([]byte(user.ID))
			return
		}
		_, _ = w.Write([]byte("anonymous"))
	}

	tests := []struct {
		name     string
		required bool
		header   string
		status   int
		body     string
	}{
		{"required valid", true, "Bearer " + token, http.StatusOK, "user-1"},
		{"required lowercase scheme", true, "bearer " + token, http.StatusOK, "user-1"},
		{"required missing", true, "", http.StatusUnauthorized, ""},
		{"required invalid", true, "Bearer nope", http.StatusUnauthorized, ""},
		{"required wrong scheme", true, "Basic " + token, http.StatusUnauthorized, ""},
		{"optional valid", false, "Bearer " + token, http.StatusOK, "user-1"},
		{"optional missing", false, "", http.StatusOK, "anonymous"},
		{"optional invalid", false, "Bearer nope", http.StatusOK, "anonymous"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			s.Middleware(tt.required)(http.HandlerFunc(handler)).ServeHTTP(rec, req)

			assert.Equal(t, tt.status, rec.Code)
			if tt.body != "" {
				assert.Equal(t, tt.body, rec.Body.String())
			}
		})
	}
}

func TestUserFromEmptyContext(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	_, ok := UserFrom(req.Context())
	assert.False(t, ok)
}
