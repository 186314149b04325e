package http

import (
	"net/http"

	"fintrack/internal/auth"
)

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserID(r.Context())
	d, err := s.analytics.Dashboard(r.Context(), userID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	NewJSONResponse().Data(d).Write(w)
}

func (s *Server) handleAnalytics(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserID(r.Context())
	report, err := s.analytics.Report(r.Context(), userID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	NewJSONResponse().Data(report).Write(w)
}

func (s *Server) handleInsights(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserID(r.Context())
	insights, err := s.analytics.Insights(r.Context(), userID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	NewJSONResponse().Data(map[string]any{"insights": insights}).Write(w)
}
