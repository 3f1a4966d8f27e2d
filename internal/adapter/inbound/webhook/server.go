package webhook

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jonny/stayhub/internal/adapter/inbound/webhook/middleware"
)

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port               int
	ReadTimeout        time.Duration
	WriteTimeout       time.Duration
	ShutdownTimeout    time.Duration
	RateLimitPerMinute int
	TrustProxy         bool
}

// Routes are the optional endpoints mounted by the server. A nil handler
// leaves its route unregistered.
type Routes struct {
	SMS      http.Handler
	SMSAuth  func(http.Handler) http.Handler
	Telegram http.Handler
}

// Server wraps an HTTP server with graceful shutdown support.
type Server struct {
	cfg    ServerConfig
	routes Routes
	logger *slog.Logger
	srv    *http.Server
}

// NewServer creates a new Server with the given config and routes.
func NewServer(cfg ServerConfig, routes Routes, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = 10 * time.Second
	}
	return &Server{
		cfg:    cfg,
		routes: routes,
		logger: logger.With("component", "webhook-server"),
	}
}

// SetupRoutes builds and returns an http.Handler with all middleware applied.
// Route layout:
//
//	GET  /health             - Liveness
//	POST /webhooks/sms       - SMS gateway callbacks
//	POST /webhooks/telegram  - Telegram bot updates
func (s *Server) SetupRoutes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	if s.routes.SMS != nil {
		h := s.routes.SMS
		if s.routes.SMSAuth != nil {
			h = s.routes.SMSAuth(h)
		}
		mux.Handle("POST /webhooks/sms", h)
	}
	if s.routes.Telegram != nil {
		mux.Handle("POST /webhooks/telegram", s.routes.Telegram)
	}

	// Outermost first: BodyReader -> SecurityHeaders -> Logging -> RateLimit.
	return middleware.Chain(mux,
		middleware.BodyReader,
		middleware.SecurityHeaders,
		middleware.Logging(s.logger),
		middleware.RateLimit(s.cfg.RateLimitPerMinute, s.cfg.TrustProxy),
	)
}

// Start starts the HTTP server and blocks until ctx is cancelled, then performs
// a graceful shutdown.
func (s *Server) Start(ctx context.Context) error {
	s.srv = &http.Server{
		Addr:              fmt.Sprintf(":%d", s.cfg.Port),
		Handler:           s.SetupRoutes(),
		ReadTimeout:       s.cfg.ReadTimeout,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      s.cfg.WriteTimeout,
	}
	return Serve(ctx, s.srv, s.cfg.ShutdownTimeout, s.logger)
}

// Serve runs srv until ctx is cancelled and then shuts it down within timeout.
func Serve(ctx context.Context, srv *http.Server, timeout time.Duration, logger *slog.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("http server shutdown: %w", err)
		}
		return nil
	case err := <-errCh:
		return err
	}
}
