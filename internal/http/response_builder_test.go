package http

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"fintrack/internal/core"
	"fintrack/internal/services"
	"fintrack/internal/storage"
)

func TestJSONResponseBuilder(t *testing.T) {
	w := httptest.NewRecorder()
	NewJSONResponse().
		Status(http.StatusCreated).
		Header("Location", "/x").
		Data(map[string]int{"id": 1}).
		Write(w)

	if w.Code != http.StatusCreated {
		t.Errorf("Status code = %d, want %d", w.Code, http.StatusCreated)
	}
	if got := w.Header().Get("Content-Type"); got != "application/json" {
		t.Errorf("Content-Type = %q", got)
	}
	if got := w.Header().Get("Location"); got != "/x" {
		t.Errorf("Location = %q", got)
	}
	if got := w.Body.String(); got != "{\"id\":1}\n" {
		t.Errorf("Body = %q", got)
	}
}

func TestJSONResponseBuilder_NoBody(t *testing.T) {
	w := httptest.NewRecorder()
	NewJSONResponse().Status(http.StatusNoContent).Write(w)
	if w.Code != http.StatusNoContent || w.Body.Len() != 0 {
		t.Errorf("got %d %q, want empty 204", w.Code, w.Body.String())
	}
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"bad request", fmt.Errorf("%w: eof", errBadRequest), http.StatusBadRequest},
		{"validation", &core.ValidationError{Field: "amount", Err: core.ErrInvalidAmount}, http.StatusUnprocessableEntity},
		{"not found", fmt.Errorf("get: %w", storage.ErrNotFound), http.StatusNotFound},
		{"conflict", storage.ErrConflict, http.StatusConflict},
		{"email taken", fmt.Errorf("%w: %w", services.ErrEmailTaken, storage.ErrConflict), http.StatusConflict},
		{"credentials", core.ErrInvalidCredentials, http.StatusUnauthorized},
		{"other", errors.New("disk on fire"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := statusFor(tt.err); got != tt.want {
				t.Errorf("statusFor(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}

func TestWriteError_HidesInternalErrors(t *testing.T) {
	w := httptest.NewRecorder()
	writeError(w, httptest.NewRequest(http.MethodGet, "/", nil), errors.New("pq: password=hunter2"))

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", w.Code)
	}
	if got := w.Body.String(); got != "{\"error\":\"internal server error\"}\n" {
		t.Errorf("Body = %q", got)
	}
}
