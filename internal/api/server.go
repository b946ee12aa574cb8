// Package api exposes the backtest core over HTTP.
package api

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rxtech-lab/argo-fund/internal/backtest/engine"
	"github.com/rxtech-lab/argo-fund/internal/logger"
	"github.com/rxtech-lab/argo-fund/internal/strategy"
	"go.uber.org/zap"
)

const defaultShutdownTimeout = 5 * time.Second

// Server serves the quant endpoints.
type Server struct {
	runner  engine.Runner
	signals *strategy.SignalRegistry
	log     *logger.Logger
	router  *mux.Router

	httpServer *http.Server
	listener   net.Listener
}

// NewServer wires the routes. A nil registry uses the default signal generators.
func NewServer(runner engine.Runner, signals *strategy.SignalRegistry, log *logger.Logger) *Server {
	if signals == nil {
		signals = strategy.DefaultSignalRegistry()
	}

	s := &Server{
		runner:     runner,
		signals:    signals,
		log:        logger.OrNop(log),
		router:     mux.NewRouter(),
		httpServer: nil,
		listener:   nil,
	}

	s.routes()

	return s
}

func (s *Server) routes() {
	s.router.Use(s.logRequests)

	s.router.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)

	api := s.router.PathPrefix("/api/quant").Subrouter()
	api.HandleFunc("/xalpha/backtest", s.handleBacktest).Methods(http.MethodPost)
	api.HandleFunc("/xalpha/metrics", s.handleMetrics).Methods(http.MethodPost)
	api.HandleFunc("/xalpha/grid", s.handleGrid).Methods(http.MethodPost)
	api.HandleFunc("/xalpha/scheduled", s.handleScheduled).Methods(http.MethodPost)
	api.HandleFunc("/xalpha/qdiipredict", s.handleQdiiPredict).Methods(http.MethodPost)
	api.HandleFunc("/macd", s.handleMacd).Methods(http.MethodPost)
	api.HandleFunc("/pytrader/backtest", s.handleSignalBacktest).Methods(http.MethodPost)
	api.HandleFunc("/pytrader/strategies", s.handleSignalList).Methods(http.MethodGet)
	api.HandleFunc("/fund-strategies/ts", s.handleFundSimulation).Methods(http.MethodPost)
	api.HandleFunc("/fund-strategies/compare", s.handleFundCompare).Methods(http.MethodPost)
}

// Handler returns the routed handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start listens on address and serves in the background.
// An empty address picks a free port.
func (s *Server) Start(address string) error {
	if address == "" {
		address = ":0"
	}

	listener, err := net.Listen("tcp", address)
	if err != nil {
		return fmt.Errorf("failed to create listener: %w", err)
	}

	s.listener = listener
	s.httpServer = &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := s.httpServer.Serve(listener); err != nil && err != http.ErrServerClosed {
			s.log.Error("HTTP server stopped", zap.Error(err))
		}
	}()

	s.log.Info("HTTP server listening", zap.String("address", listener.Addr().String()))

	return nil
}

// Address returns the address the server is listening on.
func (s *Server) Address() string {
	if s.listener == nil {
		return ""
	}

	return s.listener.Addr().String()
}

// Shutdown stops the server, waiting for in-flight requests until ctx ends.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}

	return s.httpServer.Shutdown(ctx)
}

// Serve starts the server and blocks until ctx is cancelled. In-flight
// requests get shutdownTimeout to finish, or five seconds when it is zero.
func (s *Server) Serve(ctx context.Context, address string, shutdownTimeout time.Duration) error {
	if shutdownTimeout <= 0 {
		shutdownTimeout = defaultShutdownTimeout
	}

	if err := s.Start(address); err != nil {
		return err
	}

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	return s.Shutdown(shutdownCtx)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		s.log.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("elapsed", time.Since(start)),
		)
	})
}
