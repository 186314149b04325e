package http

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"fintrack/internal/auth"
	"fintrack/internal/log"
	"fintrack/internal/middleware/ratelimit"
	"fintrack/internal/middleware/security"
	"fintrack/internal/middleware/trace"
	"fintrack/internal/services"
)

// Pinger reports whether the store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Deps is everything the API needs from the rest of the process.
type Deps struct {
	Transactions *services.TransactionService
	Analytics    *services.AnalyticsService
	Auth         *services.AuthService
	Tokens       *auth.TokenIssuer
	Store        Pinger
	Logger       *log.Logger
	RateLimit    ratelimit.Config
	// TrustedProxies are CIDRs added to the detector's default proxy list.
	TrustedProxies []string
}

type Server struct {
	http.Server

	transactions *services.TransactionService
	analytics    *services.AnalyticsService
	auth         *services.AuthService
	pinger       Pinger
	logger       *log.Logger
	now          func() time.Time

	tracer   *trace.Middleware
	limiter  *ratelimit.Limiter
	detector *security.Detector

	shutdownOnce sync.Once
}

// NewServer wires the router and returns a server ready to ListenAndServe.
func NewServer(addr string, deps Deps) *Server {
	logger := deps.Logger
	if logger == nil {
		logger = log.Discard()
	}

	s := &Server{
		transactions: deps.Transactions,
		analytics:    deps.Analytics,
		auth:         deps.Auth,
		pinger:       deps.Store,
		logger:       logger.WithComponent(log.ComponentHTTP),
		now:          time.Now,
		tracer:       trace.NewMiddleware(),
		limiter:      ratelimit.NewLimiter(deps.RateLimit),
		detector:     security.NewDetector(),
	}
	for _, cidr := range deps.TrustedProxies {
		if err := s.detector.AddTrustedProxy(cidr); err != nil {
			s.logger.Warn("Ignoring trusted proxy", log.FieldError, err)
		}
	}

	s.Server = http.Server{
		Addr:              addr,
		Handler:           s.routes(deps.Tokens),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s
}

func (s *Server) routes(tokens *auth.TokenIssuer) http.Handler {
	r := chi.NewRouter()
	r.Use(s.tracer.Middleware)
	r.Use(log.Middleware(s.logger))
	r.Use(log.RequestIDMiddleware(trace.RequestIDFromRequest))
	r.Use(log.AccessLog(s.detector.ExtractClientIP))
	r.Use(chimw.Recoverer)
	r.Use(s.flagSuspicious)
	r.Use(security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware)
	r.Use(s.limiter.Middleware(s.detector.ExtractClientIP, s.onRateLimited))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		ErrorResponse(r, http.StatusNotFound, "not found").Write(w)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		ErrorResponse(r, http.StatusMethodNotAllowed, "method not allowed").Write(w)
	})

	r.Get("/healthz", handleHealth)
	r.Get("/readyz", s.handleReady)
	r.Get("/metrics", s.handleMetrics)

	r.Route("/api", func(r chi.Router) {
		r.Post("/register", s.handleRegister)
		r.Post("/login", s.handleLogin)
		r.Post("/logout", s.handleLogout)

		r.With(auth.Middleware(tokens)).Group(func(r chi.Router) {
			r.Get("/dashboard", s.handleDashboard)

			r.Get("/transactions", s.handleListTransactions)
			r.Post("/transactions", s.handleCreateTransaction)
			r.Get("/transactions/{id}", s.handleGetTransaction)
			r.Put("/transactions/{id}", s.handleUpdateTransaction)
			r.Delete("/transactions/{id}", s.handleDeleteTransaction)

			r.Get("/categories", s.handleCategories)

			r.Get("/analytics", s.handleAnalytics)
			r.Get("/analytics/insights", s.handleInsights)
		})
	})
	return r
}

func (s *Server) flagSuspicious(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.detector.DetectSuspiciousRequest(r) {
			log.FromContext(r.Context()).WarnContext(r.Context(), "Suspicious request",
				log.FieldMethod, r.Method,
				log.FieldPath, r.URL.Path,
				log.FieldClientIP, s.detector.ExtractClientIP(r),
				log.FieldUserAgent, r.Header.Get("User-Agent"))
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) onRateLimited(w http.ResponseWriter, r *http.Request, retry time.Duration) {
	log.FromContext(r.Context()).WithComponent(log.ComponentRateLimit).WarnContext(r.Context(), "Rate limit exceeded",
		log.FieldClientIP, s.detector.ExtractClientIP(r),
		log.FieldMethod, r.Method,
		log.FieldPath, r.URL.Path)
	ErrorResponse(r, http.StatusTooManyRequests, "rate limit exceeded").
		Header("Retry-After", strconv.Itoa(ratelimit.RetryAfterSeconds(retry))).
		Write(w)
}

// Shutdown stops background work and drains the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		s.limiter.Stop()
		err = s.Server.Shutdown(ctx)
	})
	return err
}

func formatID(id int64) string {
	return strconv.FormatInt(id, 10)
}
