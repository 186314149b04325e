package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fintrack/internal/auth"
	"fintrack/internal/core"
	"fintrack/internal/storage"
	"fintrack/internal/storage/memory"
)

func newAuthService() (*AuthService, *auth.TokenIssuer) {
	issuer := auth.NewTokenIssuer("services-test-secret-123", time.Hour)
	return NewAuthService(memory.NewStore(), issuer, nil), issuer
}

func TestAuthService_RegisterAndLogin(t *testing.T) {
	ctx := context.Background()
	svc, issuer := newAuthService()

	sess, err := svc.Register(ctx, " Alice ", "Alice@Example.com ", "secret1", "secret1")
	require.NoError(t, err)
	assert.Equal(t, "Alice", sess.User.Name)
	assert.Equal(t, "alice@example.com", sess.User.Email)
	assert.NotEqual(t, "secret1", sess.User.PasswordHash)

	claims, err := issuer.Parse(sess.Token)
	require.NoError(t, err)
	id, err := claims.UserID()
	require.NoError(t, err)
	assert.Equal(t, sess.User.ID, id)

	login, err := svc.Login(ctx, "ALICE@example.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, sess.User.ID, login.User.ID)
	assert.WithinDuration(t, time.Now().Add(time.Hour), login.ExpiresAt, time.Minute)
}

func TestAuthService_RegisterValidation(t *testing.T) {
	ctx := context.Background()
	svc, _ := newAuthService()

	tests := []struct {
		name                           string
		fullName, email, pass, confirm string
		want                           error
	}{
		{name: "short name", fullName: "A", email: "a@example.com", pass: "secret1", confirm: "secret1", want: core.ErrInvalidName},
		{name: "bad email", fullName: "Alice", email: "alice", pass: "secret1", confirm: "secret1", want: core.ErrInvalidEmail},
		{name: "weak password", fullName: "Alice", email: "a@example.com", pass: "abc", confirm: "abc", want: core.ErrWeakPassword},
		{name: "mismatch", fullName: "Alice", email: "a@example.com", pass: "secret1", confirm: "secret2", want: core.ErrPasswordMismatch},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Register(ctx, tt.fullName, tt.email, tt.pass, tt.confirm)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestAuthService_DuplicateEmail(t *testing.T) {
	ctx := context.Background()
	svc, _ := newAuthService()

	_, err := svc.Register(ctx, "Alice", "alice@example.com", "secret1", "secret1")
	require.NoError(t, err)

	_, err = svc.Register(ctx, "Alice Again", "ALICE@example.com", "secret2", "secret2")
	assert.ErrorIs(t, err, ErrEmailTaken)
	assert.ErrorIs(t, err, storage.ErrConflict)
}

func TestAuthService_LoginFailures(t *testing.T) {
	ctx := context.Background()
	svc, _ := newAuthService()
	_, err := svc.Register(ctx, "Alice", "alice@example.com", "secret1", "secret1")
	require.NoError(t, err)

	_, err = svc.Login(ctx, "alice@example.com", "wrong-password")
	assert.ErrorIs(t, err, core.ErrInvalidCredentials)

	_, err = svc.Login(ctx, "nobody@example.com", "secret1")
	assert.ErrorIs(t, err, core.ErrInvalidCredentials)
}
