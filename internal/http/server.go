// Package http exposes the transaction and budget services as a JSON API
// with PNG chart export.
package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"fintrack/internal/cache"
	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/middleware/ratelimit"
	"fintrack/internal/middleware/security"
	"fintrack/internal/middleware/trace"
)

// TransactionAPI is the transaction use-case surface served over HTTP.
type TransactionAPI interface {
	Create(ctx context.Context, in core.TransactionInput) (core.Transaction, error)
	Get(ctx context.Context, id string) (core.Transaction, error)
	Update(ctx context.Context, id string, in core.TransactionInput) (core.Transaction, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) []core.Transaction
	Summary(ctx context.Context, ref time.Time) core.Summary
}

// BudgetAPI is the budget use-case surface served over HTTP.
type BudgetAPI interface {
	List(ctx context.Context) []core.Budget
	Add(ctx context.Context, b core.Budget) (core.Budget, error)
	Remove(ctx context.Context, category string) (int, error)
	Insights(ctx context.Context) []core.SpendingInsight
	Comparison(ctx context.Context) []core.BudgetComparison
}

// ReadinessCheck reports whether backing services can take traffic.
type ReadinessCheck func(ctx context.Context) error

// Options tunes the middleware chain. Zero values select defaults.
type Options struct {
	RateLimit      ratelimit.Config
	Headers        *security.HeadersConfig
	TrustedProxies []string
	Readiness      ReadinessCheck
	CacheStats     func() cache.Stats
}

type Server struct {
	http.Server

	transactions TransactionAPI
	budgets      BudgetAPI
	readiness    ReadinessCheck
	cacheStats   func() cache.Stats

	logger   *log.Logger
	sl       *log.StructuredLogger
	limiter  *ratelimit.Limiter
	detector *security.Detector
	tracer   *trace.Middleware

	startedAt    time.Time
	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run http.Server.
func NewServer(addr string, tx TransactionAPI, budgets BudgetAPI, logger *log.Logger, opts Options) *Server {
	if logger == nil {
		logger = log.Discard()
	}
	logger = logger.WithComponent(log.ComponentHTTP)

	rlCfg := opts.RateLimit
	if rlCfg.RequestsPerMinute <= 0 {
		rlCfg = ratelimit.DefaultConfig()
	}
	headers := security.DefaultHeadersConfig()
	if opts.Headers != nil {
		headers = *opts.Headers
	}

	detector := security.NewDetector()
	for _, cidr := range opts.TrustedProxies {
		if err := detector.AddTrustedProxy(cidr); err != nil {
			logger.Warn("Ignoring invalid trusted proxy", "cidr", cidr, log.FieldError, err)
		}
	}

	s := &Server{
		transactions: tx,
		budgets:      budgets,
		readiness:    opts.Readiness,
		cacheStats:   opts.CacheStats,
		logger:       logger,
		sl:           log.NewStructuredLogger(logger),
		limiter:      ratelimit.NewLimiter(rlCfg),
		detector:     detector,
		startedAt:    time.Now(),
	}
	s.tracer = trace.NewMiddleware(logger, detector.ExtractClientIP)

	mux := http.NewServeMux()
	s.routes(mux)

	var handler http.Handler = mux
	handler = s.limiter.Middleware(detector.ExtractClientIP, func(w http.ResponseWriter, r *http.Request) {
		log.FromContext(r.Context()).WarnContext(r.Context(), "Rate limit exceeded",
			log.FieldClientIP, detector.ExtractClientIP(r),
			log.FieldMethod, r.Method,
			log.FieldPath, r.URL.Path)
		TooManyRequestsError().Write(w)
	})(handler)
	handler = s.withSuspiciousRequestLogging(handler)
	handler = security.NewHeadersMiddleware(headers).Middleware(handler)
	handler = s.tracer.Middleware(handler)

	s.Server = http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	return s
}

func (s *Server) routes(mux *http.ServeMux) {
	mux.HandleFunc("/api/transactions", s.handleTransactions)
	mux.HandleFunc("/api/transactions/{id}", s.handleTransaction)
	mux.HandleFunc("/api/summary", s.handleSummary)
	mux.HandleFunc("/api/categories", s.handleCategories)

	mux.HandleFunc("/api/budgets", s.handleBudgets)
	mux.HandleFunc("/api/budgets/{category}", s.handleBudget)
	mux.HandleFunc("/api/budgets/insights", s.handleInsights)
	mux.HandleFunc("/api/budgets/comparison", s.handleComparison)

	mux.HandleFunc("/api/charts/monthly.png", s.handleMonthlyChart)
	mux.HandleFunc("/api/charts/categories.png", s.handleCategoryChart)
	mux.HandleFunc("/api/charts/budgets.png", s.handleBudgetChart)

	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/readyz", s.handleReady)
	mux.HandleFunc("/metrics", s.handleMetrics)

	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		NotFoundError("not found").Write(w)
	})
}

// withSuspiciousRequestLogging logs probing requests without blocking them.
func (s *Server) withSuspiciousRequestLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.detector.DetectSuspiciousRequest(r) {
			log.FromContext(r.Context()).WarnContext(r.Context(), "Suspicious request detected",
				log.FieldClientIP, s.detector.ExtractClientIP(r),
				log.FieldMethod, r.Method,
				log.FieldPath, r.URL.Path,
				log.FieldUserAgent, r.Header.Get("User-Agent"))
		}
		next.ServeHTTP(w, r)
	})
}

// Shutdown gracefully shuts down the server and the limiter cleanup loop.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.limiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}
