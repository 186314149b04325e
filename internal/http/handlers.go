package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"fintrack/internal/log"
)

func handleHealth(w http.ResponseWriter, r *http.Request) {
	NewJSONResponse().Data(map[string]string{"status": "ok"}).Write(w)
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := s.pinger.Ping(ctx); err != nil {
		log.FromContext(ctx).WarnContext(ctx, "Readiness check failed", log.FieldError, err)
		NewJSONResponse().
			Status(http.StatusServiceUnavailable).
			Data(map[string]string{"status": "unavailable"}).
			Write(w)
		return
	}
	NewJSONResponse().Data(map[string]string{"status": "ready"}).Write(w)
}

// handleMetrics writes the process counters in a plain "name value" format.
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	t := s.tracer.GetMetrics()
	rl := s.limiter.GetMetrics()

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprintf(w, "http_requests_total %d\n", t.TotalRequests)
	fmt.Fprintf(w, "http_requests_in_flight %d\n", t.InFlight)
	fmt.Fprintf(w, "http_server_errors_total %d\n", t.ServerErrors)
	fmt.Fprintf(w, "http_response_time_avg_ms %.3f\n", float64(t.AverageResponseTime.Microseconds())/1000)
	fmt.Fprintf(w, "ratelimit_rejections_total %d\n", rl.TotalHits)
	fmt.Fprintf(w, "ratelimit_clients %d\n", rl.ClientCount)
	fmt.Fprintf(w, "security_suspicious_requests_total %d\n", s.detector.SuspiciousRequests())
}
