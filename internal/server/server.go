// Package server exposes the JSON API consumed by the UI: recent logs,
// alert list/history/resolve, configuration, and printer proxies. It is
// thin I/O glue over the engines; no engine lock is held across printer
// calls.
package server

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/ultiview/printwatch/internal/alerting"
	"github.com/ultiview/printwatch/internal/config"
	"github.com/ultiview/printwatch/internal/grouping"
	"github.com/ultiview/printwatch/internal/metrics"
	"github.com/ultiview/printwatch/internal/printer"
)

// Server is the HTTP API server.
type Server struct {
	groups *grouping.Engine
	alerts *alerting.Service
	log    zerolog.Logger

	mu         sync.RWMutex
	cfg        *config.Config
	configPath string
	client     *printer.Ref

	httpServer *http.Server
}

// Options configures a Server.
type Options struct {
	Config     *config.Config
	ConfigPath string // where config updates are persisted; empty disables persistence
	Groups     *grouping.Engine
	Alerts     *alerting.Service
	Printer    *printer.Ref // shared with the poller; config updates swap the client
	Logger     zerolog.Logger
}

// New creates the API server.
func New(opts Options) *Server {
	s := &Server{
		groups:     opts.Groups,
		alerts:     opts.Alerts,
		log:        opts.Logger,
		cfg:        opts.Config,
		configPath: opts.ConfigPath,
		client:     opts.Printer,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/logs", s.handleLogs)
	mux.HandleFunc("GET /api/v1/alerts", s.handleAlerts)
	mux.HandleFunc("GET /api/v1/alerts/history", s.handleAlertHistory)
	mux.HandleFunc("POST /api/v1/alerts/{id}/resolve", s.handleAlertResolve)
	mux.HandleFunc("GET /api/v1/config", s.handleGetConfig)
	mux.HandleFunc("POST /api/v1/config", s.handleUpdateConfig)
	mux.HandleFunc("GET /api/v1/test-connection", s.handleTestConnection)
	mux.HandleFunc("GET /api/v1/events", s.handleEvents)
	mux.HandleFunc("GET /api/v1/print-jobs", s.handlePrintJobs)
	mux.HandleFunc("GET /api/v1/stats", s.handleStats)
	mux.HandleFunc("GET /camera/stream", s.handleCameraStream)
	mux.HandleFunc("GET /healthz", s.handleHealthz)
	mux.Handle("GET /metrics", metrics.Handler())

	s.httpServer = &http.Server{
		Addr:              opts.Config.Server.Listen,
		Handler:           s.logRequests(mux),
		ReadHeaderTimeout: 10 * time.Second,
	}

	return s
}

// Handler returns the server's HTTP handler, for tests.
func (s *Server) Handler() http.Handler { return s.httpServer.Handler }

// Run serves until ctx is canceled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.log.Info().Str("listen", s.httpServer.Addr).Msg("http server started")
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.httpServer.Shutdown(shutdownCtx)
	}
}

// printerClient returns the current client snapshot; config updates swap it.
func (s *Server) printerClient() *printer.Client {
	return s.client.Get()
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		metrics.HTTPRequests.WithLabelValues(r.URL.Path).Inc()
		s.log.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Dur("elapsed", time.Since(start)).
			Msg("request")
	})
}
