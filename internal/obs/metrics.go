// Package obs wires the platform's Prometheus metrics and the standalone
// metrics listener. It never reads business state directly: every counter
// is fed by a call from the component that owns the event.
package obs

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Metrics bundles every counter/histogram/gauge the platform exports.
type Metrics struct {
	DecisionsProduced *prometheus.CounterVec
	GateFires         *prometheus.CounterVec
	StageLatency      *prometheus.HistogramVec
	SchedulerInterval *prometheus.GaugeVec
}

// New registers and returns the metric set against the default registry.
func New() *Metrics {
	return &Metrics{
		DecisionsProduced: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "decisiond_decisions_produced_total",
			Help: "Final decisions produced, partitioned by final signal.",
		}, []string{"signal"}),
		GateFires: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "decisiond_gate_fires_total",
			Help: "Gate chain activations that altered a decision, partitioned by gate name.",
		}, []string{"gate"}),
		StageLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "decisiond_pipeline_stage_latency_seconds",
			Help:    "Per-stage latency within one orchestration cycle.",
			Buckets: prometheus.DefBuckets,
		}, []string{"stage"}),
		SchedulerInterval: promauto.NewGaugeVec(prometheus.GaugeOpts{
			Name: "decisiond_scheduler_interval_seconds",
			Help: "Current adaptive scheduler interval, partitioned by symbol.",
		}, []string{"symbol"}),
	}
}

// ObserveStage records a stage's latency.
func (m *Metrics) ObserveStage(stage string, d time.Duration) {
	m.StageLatency.WithLabelValues(stage).Observe(d.Seconds())
}

// RecordDecision increments the per-signal decision counter.
func (m *Metrics) RecordDecision(signal string) {
	m.DecisionsProduced.WithLabelValues(signal).Inc()
}

// RecordGateFire increments a named gate's fire counter.
func (m *Metrics) RecordGateFire(gate string) {
	m.GateFires.WithLabelValues(gate).Inc()
}

// SetSchedulerInterval records the current per-symbol tempo.
func (m *Metrics) SetSchedulerInterval(symbol string, d time.Duration) {
	m.SchedulerInterval.WithLabelValues(symbol).Set(d.Seconds())
}

// Server exposes /metrics on its own listener, separate from the control
// API, so a slow scrape never competes with control-plane traffic.
type Server struct {
	logger     *zap.Logger
	httpServer *http.Server
}

// NewServer builds a metrics-only HTTP server bound to addr.
func NewServer(logger *zap.Logger, addr string) *Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	return &Server{
		logger:     logger.Named("metrics"),
		httpServer: &http.Server{Addr: addr, Handler: mux},
	}
}

// Start blocks until the listener stops.
func (s *Server) Start() error {
	s.logger.Info("metrics listening", zap.String("addr", s.httpServer.Addr))
	err := s.httpServer.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Stop gracefully shuts the metrics listener down.
func (s *Server) Stop(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
