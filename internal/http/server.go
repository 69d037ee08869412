// Package http serves the ledger as a JSON API.
package http

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"fintrack/internal/log"
	"fintrack/internal/metrics"
	"fintrack/internal/middleware/ratelimit"
	"fintrack/internal/middleware/security"
	"fintrack/internal/services"
)

// Server is the HTTP front end of a LedgerService.
type Server struct {
	http.Server
	svc     *services.LedgerService
	limiter *ratelimit.Limiter
	logger  *log.Logger
	started time.Time
	now     func() time.Time
}

// NewServer configures routes and middleware, returning a ready-to-run server.
func NewServer(addr string, svc *services.LedgerService, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Discard()
	}
	s := &Server{
		svc:     svc,
		limiter: ratelimit.NewLimiter(ratelimit.DefaultConfig()),
		logger:  logger.WithComponent(log.ComponentHTTP),
		started: time.Now(),
		now:     time.Now,
	}
	s.Server = http.Server{
		Addr:              addr,
		Handler:           s.routes(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	return s
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(log.Middleware(s.logger, func(r *http.Request) string {
		return middleware.GetReqID(r.Context())
	}))
	r.Use(middleware.Recoverer)
	r.Use(observe)
	r.Use(security.Headers(security.DefaultHeadersConfig()))

	r.Get("/healthz", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Use(s.limiter.Middleware(ratelimit.ClientIP, s.handleRateLimited))

		r.Get("/overview", s.handleOverview)
		r.Get("/selectors", s.handleSelectors)
		r.Get("/integrity", s.handleIntegrity)
		r.Put("/theme", s.handleTheme)

		r.Route("/accounts", func(r chi.Router) {
			r.Get("/", s.handleListAccounts)
			r.Post("/", s.handleCreateAccount)
			r.Delete("/{name}", s.handleDeleteAccount)
			r.Post("/{name}/funds", s.handleAddFunds)
		})
		r.Post("/transfers", s.handleTransfer)

		r.Route("/categories", func(r chi.Router) {
			r.Get("/", s.handleListCategories)
			r.Post("/", s.handleCreateCategory)
			r.Delete("/{name}", s.handleDeleteCategory)
		})
		r.Get("/budgets", s.handleListBudgets)
		r.Put("/budgets/{category}", s.handleSetBudget)
		r.Delete("/budgets/{category}", s.handleClearBudget)

		r.Route("/transactions", func(r chi.Router) {
			r.Get("/", s.handleListTransactions)
			r.Post("/", s.handleCreateTransaction)
			r.Put("/{id}", s.handleEditTransaction)
			r.Delete("/{id}", s.handleDeleteTransaction)
		})

		r.Route("/loans", func(r chi.Router) {
			r.Get("/", s.handleListLoans)
			r.Post("/", s.handleCreateLoan)
			r.Put("/{name}", s.handleEditLoan)
			r.Delete("/{name}", s.handleDeleteLoan)
		})
	})
	return r
}

// observe records request count and latency by route pattern.
func observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		metrics.ObserveHTTP(r.Method, route, status, time.Since(start))
	})
}

// Shutdown stops the rate limiter and drains the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.limiter.Stop()
	return s.Server.Shutdown(ctx)
}
