package http

import (
	"net/http"
	"time"

	"fintrack/internal/auth"
	"fintrack/internal/services"
)

func sessionCookie(r *http.Request, value string, expires time.Time) *http.Cookie {
	c := &http.Cookie{
		Name:     auth.SessionCookie,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
		Expires:  expires,
	}
	if value == "" {
		c.MaxAge = -1
	}
	return c
}

// writeSession sets the cookie for browsers and returns the token for API clients.
func writeSession(w http.ResponseWriter, r *http.Request, status int, sess services.Session) {
	NewJSONResponse().
		Status(status).
		Cookie(sessionCookie(r, sess.Token, sess.ExpiresAt)).
		Data(sess).
		Write(w)
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	sess, err := s.auth.Register(r.Context(), req.Name, req.Email, req.Password, req.ConfirmPassword)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeSession(w, r, http.StatusCreated, sess)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	sess, err := s.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeSession(w, r, http.StatusOK, sess)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	NewJSONResponse().
		Status(http.StatusNoContent).
		Cookie(sessionCookie(r, "", time.Unix(0, 0))).
		Write(w)
}
