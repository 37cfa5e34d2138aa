package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/geo-optimizer/backend/analyzer"
	"github.com/geo-optimizer/backend/logging"
	"github.com/geo-optimizer/backend/mailer"
	"github.com/geo-optimizer/backend/middleware"
	"github.com/geo-optimizer/backend/monitoring"
	"github.com/geo-optimizer/backend/stats"
)

// Analyzer runs one analysis.
type Analyzer interface {
	Analyze(ctx context.Context, rawURL string) (*analyzer.Analysis, error)
}

// Deps are the collaborators of the HTTP server. Statistics, Storage and
// Metrics are optional.
type Deps struct {
	Analyzer    Analyzer
	Sender      mailer.Sender
	Statistics  *logging.Statistics
	Storage     *stats.Storage
	Metrics     *monitoring.Metrics
	RateLimiter *middleware.RateLimiter
	Logger      *zap.Logger
	Now         func() time.Time
}

// Server holds the dependencies for the HTTP server.
type Server struct {
	deps       Deps
	router     http.Handler
	httpServer *http.Server
}

// NewServer builds the server and its router.
func NewServer(deps Deps) *Server {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	s := &Server{deps: deps}
	s.router = s.setupRouter()
	return s
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler { return s.router }

// Start listens on addr until Shutdown is called.
func (s *Server) Start(addr string) error {
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      90 * time.Second,
	}
	s.deps.Logger.Info("server starting", zap.String("addr", addr))
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting connections and waits for in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}
