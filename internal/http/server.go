package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"bakery/internal/core"
	"bakery/internal/log"
	"bakery/internal/middleware/ratelimit"
	"bakery/internal/middleware/security"
	"bakery/internal/middleware/trace"
	"bakery/internal/summary"
)

// TransactionAPI is what the handlers need from the service layer.
type TransactionAPI interface {
	ListAll(ctx context.Context) ([]core.Transaction, error)
	Create(ctx context.Context, f core.TransactionFields) (core.Transaction, error)
	Update(ctx context.Context, id int64, f core.TransactionFields) (core.Transaction, error)
	Delete(ctx context.Context, id int64) error
	Dashboard(ctx context.Context, v summary.View) (summary.Dashboard, error)
	DefaultView() summary.View
	Ping(ctx context.Context) error
}

// Options configures the middleware stack.
type Options struct {
	Logger             *log.Logger
	RateLimitPerMinute int
	// CORSOrigins lists allowed origins; empty or "*" allows any origin.
	CORSOrigins []string
}

type Server struct {
	http.Server
	api      TransactionAPI
	logger   *log.Logger
	tracer   *trace.Middleware
	limiter  *ratelimit.Limiter
	detector *security.Detector
	started  time.Time

	shutdownOnce sync.Once
}

// NewServer builds the gin router and returns a ready-to-run http.Server.
func NewServer(addr string, api TransactionAPI, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	logger = logger.WithComponent(log.ComponentHTTP)

	s := &Server{
		api:      api,
		logger:   logger,
		tracer:   trace.NewMiddleware(),
		limiter:  ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: opts.RateLimitPerMinute}),
		detector: security.NewDetector(logger),
		started:  time.Now(),
	}

	r := gin.New()
	if err := r.SetTrustedProxies(security.TrustedProxies); err != nil {
		logger.Warn("Invalid trusted proxy list", log.FieldError, err)
	}
	r.Use(
		gin.Recovery(),
		s.tracer.Handler(),
		log.GinMiddleware(logger, trace.FromGin),
		security.Headers(security.DefaultHeadersConfig()),
		cors.New(corsConfig(opts.CORSOrigins)),
		s.detector.Handler(),
		s.limiter.Handler(),
	)

	r.GET("/healthz", s.handleHealth)
	r.GET("/readyz", s.handleReady)
	r.GET("/metrics", s.handleMetrics)

	// The same API is served at the root and under /api.
	for _, prefix := range []string{"", "/api"} {
		g := r.Group(prefix)
		g.GET("/transactions", s.handleListTransactions)
		g.POST("/transactions", s.handleCreateTransaction)
		g.PUT("/transactions/:id", s.handleUpdateTransaction)
		g.DELETE("/transactions/:id", s.handleDeleteTransaction)
		g.GET("/dashboard", s.handleDashboard)
		g.GET("/categories", s.handleCategories)
	}

	s.Server = http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", trace.HeaderRequestID},
		ExposeHeaders: []string{"Content-Length", trace.HeaderRequestID},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cfg
}

// Shutdown stops the middleware goroutines and drains the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.limiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}
