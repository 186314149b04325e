// Package http serves the JSON API.
//
// This file implements the builder used by every handler to write JSON
// responses and the single mapping from error classes to status codes.
package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"fintrack/internal/auth"
	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/middleware/trace"
	"fintrack/internal/services"
	"fintrack/internal/storage"
)

// JSONResponseBuilder provides a fluent API for building JSON responses.
type JSONResponseBuilder struct {
	statusCode int
	headers    map[string]string
	cookies    []*http.Cookie
	data       any
}

func NewJSONResponse() *JSONResponseBuilder {
	return &JSONResponseBuilder{
		statusCode: http.StatusOK,
		headers:    make(map[string]string),
	}
}

func (b *JSONResponseBuilder) Status(code int) *JSONResponseBuilder {
	b.statusCode = code
	return b
}

func (b *JSONResponseBuilder) Header(name, value string) *JSONResponseBuilder {
	b.headers[name] = value
	return b
}

func (b *JSONResponseBuilder) Cookie(c *http.Cookie) *JSONResponseBuilder {
	b.cookies = append(b.cookies, c)
	return b
}

// Data sets the value encoded as the body. A nil value writes no body.
func (b *JSONResponseBuilder) Data(v any) *JSONResponseBuilder {
	b.data = v
	return b
}

func (b *JSONResponseBuilder) Write(w http.ResponseWriter) {
	for name, value := range b.headers {
		w.Header().Set(name, value)
	}
	for _, c := range b.cookies {
		http.SetCookie(w, c)
	}

	if b.data == nil {
		w.WriteHeader(b.statusCode)
		return
	}

	body, err := json.Marshal(b.data)
	if err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"internal server error"}`))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(b.statusCode)
	_, _ = w.Write(body)
	_, _ = w.Write([]byte("\n"))
}

// ErrorBody is the shape of every error response.
type ErrorBody struct {
	Error     string `json:"error"`
	Field     string `json:"field,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

func ErrorResponse(r *http.Request, statusCode int, message string) *JSONResponseBuilder {
	return NewJSONResponse().
		Status(statusCode).
		Data(ErrorBody{Error: message, RequestID: trace.GetRequestID(r.Context())})
}

var errBadRequest = errors.New("malformed request body")

// statusFor classifies err. Unknown errors are internal.
func statusFor(err error) int {
	var ve *core.ValidationError
	switch {
	case errors.Is(err, errBadRequest):
		return http.StatusBadRequest
	case errors.As(err, &ve):
		return http.StatusUnprocessableEntity
	case errors.Is(err, storage.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, services.ErrEmailTaken), errors.Is(err, storage.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, core.ErrInvalidCredentials), errors.Is(err, auth.ErrInvalidToken):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// writeError maps err to a status code. Internal errors are logged and
// replaced by a generic message.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	body := ErrorBody{Error: err.Error(), RequestID: trace.GetRequestID(r.Context())}

	var ve *core.ValidationError
	switch {
	case status == http.StatusInternalServerError:
		log.NewStructuredLogger(log.FromContext(r.Context())).
			LogError(r.Context(), "Request failed", err, log.ComponentHTTP, r.Method+" "+r.URL.Path, nil)
		body.Error = "internal server error"
	case status == http.StatusNotFound:
		body.Error = "not found"
	case status == http.StatusUnauthorized:
		body.Error = core.ErrInvalidCredentials.Error()
	case status == http.StatusConflict && errors.Is(err, services.ErrEmailTaken):
		body.Error = services.ErrEmailTaken.Error()
	case errors.As(err, &ve):
		body.Error = ve.Err.Error()
		body.Field = ve.Field
	}

	NewJSONResponse().Status(status).Data(body).Write(w)
}
