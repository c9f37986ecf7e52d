package adminapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/nerrad567/edge-mapper/internal/infrastructure/localstate"
	"github.com/nerrad567/edge-mapper/internal/metrics"
	"github.com/nerrad567/edge-mapper/internal/rpcserver"
	"github.com/nerrad567/edge-mapper/internal/rpcserver/authtoken"
)

const gracefulShutdownTimeout = 10 * time.Second

// Logger is the minimal logging surface the admin server needs.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// NoopLogger is the default logger until a Logger is supplied to New.
var NoopLogger Logger = noopLogger{}

// Deps holds the dependencies required by the admin HTTP server.
type Deps struct {
	Addr       string           // listen address, e.g. "0.0.0.0:7777" (spec §5: bound to 0.0.0.0)
	APIVersion string           // e.g. "v1beta1", echoed into every envelope
	Mapper     *rpcserver.Server
	Logger     Logger
	Auth       *authtoken.Verifier // optional; nil or disabled means no bearer check
	LocalState *localstate.Cache   // optional; fills reads while a device is mid-restart
	Metrics    *metrics.Collector  // optional; shared with the mapper so /metrics reflects its counters too
}

// Server is the admin HTTP server (spec §4.I).
type Server struct {
	addr       string
	apiVersion string
	mapper     *rpcserver.Server
	logger     Logger
	auth       *authtoken.Verifier
	localState *localstate.Cache
	metrics    *metrics.Collector
	hub        *Hub
	startTime  time.Time
	httpServer *http.Server
	cancel     context.CancelFunc
}

// New builds a Server. The HTTP listener is not started until Start. Mapper
// may be left nil and supplied later via SetMapper, so callers whose mapper
// construction depends on the admin server's Hub (for device.Reporter
// fan-out) can break that cycle; Start refuses to run without one.
func New(deps Deps) (*Server, error) {
	logger := deps.Logger
	if logger == nil {
		logger = NoopLogger
	}
	apiVersion := deps.APIVersion
	if apiVersion == "" {
		apiVersion = "v1beta1"
	}
	metricsCollector := deps.Metrics
	if metricsCollector == nil {
		metricsCollector = metrics.New()
	}

	s := &Server{
		addr:       deps.Addr,
		apiVersion: apiVersion,
		mapper:     deps.Mapper,
		logger:     logger,
		auth:       deps.Auth,
		localState: deps.LocalState,
		metrics:    metricsCollector,
		hub:        newHub(logger),
		startTime:  time.Now(),
	}
	return s, nil
}

// Hub exposes the WebSocket broadcast hub so callers can wire it into
// device.NewFanOutReporter alongside the control-plane client.
func (s *Server) Hub() *Hub { return s.hub }

// SetMapper supplies the mapper server once it has been built. Needed when
// the mapper's own reporter wiring depends on this Server's Hub, which
// exists before the mapper does.
func (s *Server) SetMapper(mapper *rpcserver.Server) { s.mapper = mapper }

// Start begins listening for HTTP connections in a background goroutine.
func (s *Server) Start(ctx context.Context) error {
	if s.mapper == nil {
		return errors.New("adminapi: mapper server is required before Start")
	}
	var srvCtx context.Context
	srvCtx, s.cancel = context.WithCancel(ctx)
	go s.hub.run(srvCtx)

	s.httpServer = &http.Server{
		Addr:              s.addr,
		Handler:           s.buildRouter(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("adminapi: server error", "error", err)
		}
	}()

	s.logger.Info("adminapi: listening", "addr", s.addr)
	return nil
}

// Close gracefully shuts down the HTTP server and stops the watch hub.
func (s *Server) Close() error {
	if s.cancel != nil {
		s.cancel()
	}
	if s.httpServer == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), gracefulShutdownTimeout)
	defer cancel()
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("adminapi: shutdown: %w", err)
	}
	return nil
}
