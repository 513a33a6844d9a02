package transport

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/rs/cors"
	"go.uber.org/zap"

	"github.com/marketintel/decisiond/pkg/types"
)

// HealthChecker reports whether the store's underlying connection is alive.
// Implemented by internal/store.Store.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// Server is the control API: the pipeline's /orchestrate entry point, the
// store's read/write routes, the outbound snapshot feed (SSE + WebSocket),
// and a health probe. Metrics are served on their own listener by component
// H, not by this router.
type Server struct {
	logger     *zap.Logger
	router     *mux.Router
	httpServer *http.Server

	pipeline      ControlPipeline
	store         ControlStore
	health        HealthChecker
	replayHeader  string
	upgrader      websocket.Upgrader
}

// Config bundles a Server's collaborators and listen address.
type Config struct {
	Logger           *zap.Logger
	Pipeline         ControlPipeline
	Store            ControlStore
	Health           HealthChecker
	ListenAddr       string
	ReplayModeHeader string
}

// New builds a Server and wires its full route table.
func New(cfg Config) *Server {
	s := &Server{
		logger:       cfg.Logger.Named("transport"),
		router:       mux.NewRouter(),
		pipeline:     cfg.Pipeline,
		store:        cfg.Store,
		health:       cfg.Health,
		replayHeader: cfg.ReplayModeHeader,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
	s.routes()

	handler := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	}).Handler(s.router)

	s.httpServer = &http.Server{
		Addr:         cfg.ListenAddr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 0, // the SSE/WebSocket streams are long-lived
	}
	return s
}

// Start begins serving. Blocks until the listener stops; run it in a
// goroutine and call Stop for graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("control API listening", zap.String("addr", s.httpServer.Addr))
	err := s.httpServer.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Stop gracefully shuts the server down within ctx's deadline.
func (s *Server) Stop(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) routes() {
	s.router.HandleFunc("/orchestrate", s.handleOrchestrate).Methods(http.MethodPost)

	s.router.HandleFunc("/decisions", s.handleSaveDecision).Methods(http.MethodPost)
	s.router.HandleFunc("/decisions/snapshot", s.handleSnapshot).Methods(http.MethodGet)
	s.router.HandleFunc("/decisions/stream", s.handleSSEStream).Methods(http.MethodGet)
	s.router.HandleFunc("/decisions/ws", s.handleWebSocketStream).Methods(http.MethodGet)
	s.router.HandleFunc("/decisions/latest-regime", s.handleLatestRegime).Methods(http.MethodGet)
	s.router.HandleFunc("/decisions/recent/{symbol}", s.handleRecentDecisions).Methods(http.MethodGet)
	s.router.HandleFunc("/decisions/unresolved/{symbol}", s.handleUnresolvedDecisions).Methods(http.MethodGet)
	s.router.HandleFunc("/decisions/outcome/{traceId}", s.handleRecordOutcome).Methods(http.MethodPost)
	s.router.HandleFunc("/decisions/resolve-outcomes/{symbol}", s.handleResolveOutcomes).Methods(http.MethodPost)
	s.router.HandleFunc("/decisions/metrics/{symbol}", s.handleDecisionMetrics).Methods(http.MethodGet)

	s.router.HandleFunc("/agents/performance", s.handleAgentPerformance).Methods(http.MethodGet)
	s.router.HandleFunc("/agents/feedback", s.handleAgentFeedback).Methods(http.MethodGet)
	s.router.HandleFunc("/feedback-loop/status", s.handleFeedbackLoopStatus).Methods(http.MethodGet)

	s.router.HandleFunc("/market-state/{symbol}", s.handleMarketState).Methods(http.MethodGet)

	s.router.HandleFunc("/healthz", s.handleHealthz).Methods(http.MethodGet)
}

// isReplayMode inspects the configured replay-mode header.
func (s *Server) isReplayMode(r *http.Request) bool {
	header := s.replayHeader
	if header == "" {
		header = string(types.DefaultTransportConfig().ReplayModeHeader)
	}
	return r.Header.Get(header) == "true"
}
