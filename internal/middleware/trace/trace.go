// Package trace assigns request IDs and keeps request counters.
package trace

import (
	"context"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

type ContextKey string

const (
	RequestIDKey ContextKey = "request_id"

	// HeaderRequestID is read from the request and echoed on the response.
	HeaderRequestID = "X-Request-ID"
)

type Middleware struct {
	total      atomic.Int64
	inFlight   atomic.Int64
	serverErrs atomic.Int64
	totalMicro atomic.Int64
}

// Metrics is a point-in-time copy of the counters.
type Metrics struct {
	TotalRequests       int64
	InFlight            int64
	ServerErrors        int64
	AverageResponseTime time.Duration
}

func NewMiddleware() *Middleware {
	return &Middleware{}
}

// Middleware tags the request with an ID and records its outcome.
func (m *Middleware) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		requestID := r.Header.Get(HeaderRequestID)
		if _, err := uuid.Parse(requestID); err != nil {
			requestID = GenerateRequestID()
		}
		w.Header().Set(HeaderRequestID, requestID)
		r = r.WithContext(WithRequestID(r.Context(), requestID))

		m.total.Add(1)
		m.inFlight.Add(1)
		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		defer func() {
			m.inFlight.Add(-1)
			m.totalMicro.Add(time.Since(start).Microseconds())
			if rw.statusCode >= 500 {
				m.serverErrs.Add(1)
			}
		}()

		next.ServeHTTP(rw, r)
	})
}

type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func GenerateRequestID() string {
	return uuid.NewString()
}

func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, RequestIDKey, id)
}

// GetRequestID returns "" outside a traced request.
func GetRequestID(ctx context.Context) string {
	if id, ok := ctx.Value(RequestIDKey).(string); ok {
		return id
	}
	return ""
}

// RequestIDFromRequest adapts GetRequestID for log.RequestIDMiddleware.
func RequestIDFromRequest(r *http.Request) string {
	return GetRequestID(r.Context())
}

func (m *Middleware) GetMetrics() Metrics {
	total := m.total.Load()
	var avg time.Duration
	if total > 0 {
		avg = time.Duration(m.totalMicro.Load()/total) * time.Microsecond
	}
	return Metrics{
		TotalRequests:       total,
		InFlight:            m.inFlight.Load(),
		ServerErrors:        m.serverErrs.Load(),
		AverageResponseTime: avg,
	}
}
