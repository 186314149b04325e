package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"fintrack/internal/auth"
	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/storage"
)

var ErrEmailTaken = errors.New("email already registered")

// dummyHash keeps Login timing the same whether or not the email exists.
var dummyHash = sync.OnceValue(func() string {
	h, _ := auth.HashPassword("fintrack-placeholder")
	return h
})

// Session is what a successful register or login hands back.
type Session struct {
	User      core.User `json:"user"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

type AuthService struct {
	users  storage.UserStore
	issuer *auth.TokenIssuer
	logger *log.Logger
}

func NewAuthService(users storage.UserStore, issuer *auth.TokenIssuer, logger *log.Logger) *AuthService {
	if logger == nil {
		logger = log.Discard()
	}
	return &AuthService{users: users, issuer: issuer, logger: logger.WithComponent(log.ComponentAuth)}
}

// Register validates the form, stores the user and signs them in.
func (s *AuthService) Register(ctx context.Context, name, email, password, confirm string) (Session, error) {
	u := core.User{Name: strings.TrimSpace(name), Email: core.NormalizeEmail(email)}
	if err := u.Validate(); err != nil {
		return Session{}, err
	}
	if err := core.ValidatePassword(password, confirm); err != nil {
		return Session{}, err
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return Session{}, err
	}
	u.PasswordHash = hash

	created, err := s.users.CreateUser(ctx, u)
	if errors.Is(err, storage.ErrConflict) {
		return Session{}, fmt.Errorf("%w: %w", ErrEmailTaken, storage.ErrConflict)
	}
	if err != nil {
		return Session{}, fmt.Errorf("create user: %w", err)
	}

	s.logger.InfoContext(ctx, "User registered", log.FieldUserID, created.ID, log.FieldOperation, log.OpRegister)
	return s.session(created)
}

// Login checks credentials. Unknown email and wrong password return the
// same core.ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, email, password string) (Session, error) {
	u, err := s.users.GetUserByEmail(ctx, core.NormalizeEmail(email))
	if errors.Is(err, storage.ErrNotFound) {
		auth.CheckPassword(dummyHash(), password)
		return Session{}, core.ErrInvalidCredentials
	}
	if err != nil {
		return Session{}, fmt.Errorf("lookup user: %w", err)
	}
	if !auth.CheckPassword(u.PasswordHash, password) {
		s.logger.WarnContext(ctx, "Login failed", log.FieldUserID, u.ID, log.FieldOperation, log.OpLogin)
		return Session{}, core.ErrInvalidCredentials
	}

	s.logger.InfoContext(ctx, "User logged in", log.FieldUserID, u.ID, log.FieldOperation, log.OpLogin)
	return s.session(u)
}

func (s *AuthService) session(u core.User) (Session, error) {
	token, err := s.issuer.Issue(u)
	if err != nil {
		return Session{}, err
	}
	return Session{User: u, Token: token, ExpiresAt: time.Now().Add(s.issuer.TTL())}, nil
}
