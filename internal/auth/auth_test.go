package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fintrack/internal/core"
)

const testSecret = "test-secret-0123456789"

func TestPasswordRoundTrip(t *testing.T) {
	hash, err := HashPassword("hunter22")
	require.NoError(t, err)
	assert.NotEqual(t, "hunter22", hash)
	assert.True(t, CheckPassword(hash, "hunter22"))
	assert.False(t, CheckPassword(hash, "hunter23"))
	assert.False(t, CheckPassword("not-a-hash", "hunter22"))
}

func TestTokenIssuer_IssueAndParse(t *testing.T) {
	issuer := NewTokenIssuer(testSecret, time.Hour)
	token, err := issuer.Issue(core.User{ID: 42, Name: "Alice"})
	require.NoError(t, err)

	claims, err := issuer.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, "Alice", claims.Name)
	id, err := claims.UserID()
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)
	require.NotNil(t, claims.IssuedAt)
	require.NotNil(t, claims.ExpiresAt)
	assert.Equal(t, time.Hour, claims.ExpiresAt.Sub(claims.IssuedAt.Time))
}

func TestTokenIssuer_Rejects(t *testing.T) {
	issuer := NewTokenIssuer(testSecret, time.Hour)
	valid, err := issuer.Issue(core.User{ID: 7, Name: "Bob"})
	require.NoError(t, err)

	t.Run("expired", func(t *testing.T) {
		past := NewTokenIssuer(testSecret, time.Minute)
		past.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
		old, err := past.Issue(core.User{ID: 7})
		require.NoError(t, err)
		_, err = issuer.Parse(old)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("wrong secret", func(t *testing.T) {
		other := NewTokenIssuer("another-secret-0123456", time.Hour)
		_, err := other.Parse(valid)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("none algorithm", func(t *testing.T) {
		unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{
			Subject:   "7",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		}).SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)
		_, err = issuer.Parse(unsigned)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := issuer.Parse("not.a.token")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}

func TestMiddleware(t *testing.T) {
	issuer := NewTokenIssuer(testSecret, time.Hour)
	token, err := issuer.Issue(core.User{ID: 9, Name: "Carol"})
	require.NoError(t, err)

	var seen int64
	h := Middleware(issuer)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = UserID(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	tests := []struct {
		name   string
		setup  func(r *http.Request)
		status int
		userID int64
	}{
		{
			name:   "bearer header",
			setup:  func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+token) },
			status: http.StatusNoContent,
			userID: 9,
		},
		{
			name:   "session cookie",
			setup:  func(r *http.Request) { r.AddCookie(&http.Cookie{Name: SessionCookie, Value: token}) },
			status: http.StatusNoContent,
			userID: 9,
		},
		{
			name:   "missing",
			setup:  func(r *http.Request) {},
			status: http.StatusUnauthorized,
		},
		{
			name:   "wrong scheme",
			setup:  func(r *http.Request) { r.Header.Set("Authorization", "Basic "+token) },
			status: http.StatusUnauthorized,
		},
		{
			name:   "tampered",
			setup:  func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+token+"x") },
			status: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seen = 0
			req := httptest.NewRequest(http.MethodGet, "/api/dashboard", nil)
			tt.setup(req)
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.userID, seen)
		})
	}
}
