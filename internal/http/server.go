// Package http exposes the ledger as a JSON API.
package http

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"budget/internal/log"
	"budget/internal/metrics"
	"budget/internal/middleware/ratelimit"
	"budget/internal/middleware/security"
	"budget/internal/services"
	"budget/internal/tax"
)

type Config struct {
	Addr               string
	RateLimitPerMinute int
	// TaxTable is served by GET /api/tax/table.
	TaxTable tax.Table
	Logger   *log.Logger
}

type Server struct {
	http.Server
	svc      *services.LedgerService
	taxTable tax.Table
	limiter  *ratelimit.Limiter
	clientIP *security.ClientIP
	logger   *log.Logger

	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run server.
// The rate limiter's cleanup goroutine runs until Shutdown.
func NewServer(svc *services.LedgerService, config Config) *Server {
	logger := config.Logger
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}

	s := &Server{
		Server: http.Server{
			Addr:              config.Addr,
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       15 * time.Second,
			WriteTimeout:      15 * time.Second,
			IdleTimeout:       60 * time.Second,
		},
		svc:      svc,
		taxTable: config.TaxTable,
		limiter:  ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: config.RateLimitPerMinute}),
		clientIP: security.NewClientIP(),
		logger:   logger.WithComponent(log.ComponentHTTP),
	}
	s.Handler = s.routes()
	return s
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()

	// chi's RealIP trusts any forwarding header, so client addresses go
	// through security.ClientIP instead.
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(log.RequestLogger(s.logger))
	r.Use(security.Headers(security.DefaultHeadersConfig()))
	r.Use(instrument)

	r.Get("/healthz", s.handleHealth)
	r.Get("/readyz", s.handleReady)
	r.Handle("/metrics", s.metricsHandler())

	r.Route("/api", func(r chi.Router) {
		r.Use(s.limiter.Middleware(s.clientIP.Extract, s.onRateLimited))

		r.Get("/ledger", s.handleLedger)

		r.Post("/expenses", s.handleAddExpense)
		r.Delete("/expenses/{id}", s.handleRemoveExpense)
		r.Post("/expenses/{id}/sub-expenses", s.handleAddSubExpense)
		r.Delete("/expenses/{id}/sub-expenses/{subID}", s.handleRemoveSubExpense)

		r.Post("/incomes", s.handleAddIncome)
		r.Delete("/incomes/{id}", s.handleRemoveIncome)

		r.Put("/salary", s.handleUpdateSalary)
		r.Put("/settings", s.handleUpdateSettings)

		r.Get("/tax/net", s.handleTaxNet)
		r.Get("/tax/table", s.handleTaxTable)

		r.Get("/groceries", s.handleListGroceries)
		r.Post("/groceries", s.handleAddGroceries)
		r.Delete("/groceries/{index}", s.handleRemoveGrocery)
	})

	return r
}

func (s *Server) onRateLimited(w http.ResponseWriter, r *http.Request) {
	metrics.RateLimited.Inc()
	log.FromContext(r.Context()).WarnContext(r.Context(), "Rate limit exceeded",
		log.FieldClientIP, s.clientIP.Extract(r),
		log.FieldMethod, r.Method,
		log.FieldPath, r.URL.Path)
}

func (s *Server) metricsHandler() http.Handler {
	h := promhttp.Handler()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		metrics.RateLimitClients.Set(float64(s.limiter.ActiveClients()))
		h.ServeHTTP(w, r)
	})
}

// instrument records request counts and latency by route pattern, so path
// parameters do not explode label cardinality.
func instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			route = rc.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		metrics.HTTPRequests.WithLabelValues(route, r.Method, strconv.Itoa(status)).Inc()
		metrics.HTTPDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	if err := s.svc.Ready(ctx); err != nil {
		log.FromContext(ctx).WarnContext(ctx, "Readiness check failed", log.FieldError, err)
		writeError(w, http.StatusServiceUnavailable, "storage unavailable")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// Shutdown stops the rate limiter and gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.limiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}
