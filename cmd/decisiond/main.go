// Command decisiond runs the decision-intelligence platform: either as the
// long-running daemon (scheduler + pipeline + control API) or as a one-shot
// replay driver over a list of historical triggers.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/marketintel/decisiond/internal/classify"
	"github.com/marketintel/decisiond/internal/config"
	"github.com/marketintel/decisiond/internal/logging"
	"github.com/marketintel/decisiond/internal/marketdata"
	"github.com/marketintel/decisiond/internal/obs"
	"github.com/marketintel/decisiond/internal/pipeline"
	"github.com/marketintel/decisiond/internal/scheduler"
	"github.com/marketintel/decisiond/internal/store"
	"github.com/marketintel/decisiond/internal/strategist"
	"github.com/marketintel/decisiond/internal/transport"
	"github.com/marketintel/decisiond/pkg/types"
)

var configDir string

func main() {
	root := &cobra.Command{
		Use:   "decisiond",
		Short: "Decision-intelligence platform for watched market symbols",
	}
	root.PersistentFlags().StringVar(&configDir, "config-dir", "", "directory holding config.toml/credentials.toml")

	root.AddCommand(serveCmd(), replayCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the scheduler, pipeline, and control API as a long-running daemon",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context())
		},
	}
}

func replayCmd() *cobra.Command {
	var triggersFile string
	cmd := &cobra.Command{
		Use:   "replay",
		Short: "Drive the pipeline directly over a list of historical triggers, bypassing scheduling and the strategist",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReplay(cmd.Context(), triggersFile)
		},
	}
	cmd.Flags().StringVar(&triggersFile, "triggers", "", "path to a JSON array of {symbol, triggeredAt, traceId} triggers")
	_ = cmd.MarkFlagRequired("triggers")
	return cmd
}

type components struct {
	logger       *zap.Logger
	cfg          types.Config
	store        *store.Store
	orchestrator *pipeline.Orchestrator
	metrics      *obs.Metrics
}

func bootstrap(ctx context.Context) (*components, error) {
	cfg, err := config.Load(configDir)
	if err != nil {
		return nil, fmt.Errorf("loading configuration: %w", err)
	}

	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("building logger: %w", err)
	}

	st, err := store.New(ctx, store.DefaultConfig(cfg.DatabaseURL), cfg.Feedback, logger)
	if err != nil {
		return nil, fmt.Errorf("opening store: %w", err)
	}

	metrics := obs.New()

	marketDataClient := marketdata.New(marketdata.Config{
		Logger:     logger,
		HTTPClient: transport.NewHTTPClient(cfg.Transport, cfg.HTTPTimeouts.MarketDataTimeout),
		BaseURL:    cfg.Collaborators.MarketDataBaseURL,
		MaxRetries: cfg.HTTPTimeouts.MarketDataMaxRetries,
		CacheTTL:   cfg.CacheTTL,
	})

	agentDispatch := transport.NewAgentDispatchClient(
		logger,
		transport.NewHTTPClient(cfg.Transport, cfg.HTTPTimeouts.AgentDispatchTimeout),
		cfg.Collaborators.AgentDispatchBaseURL,
	)

	notifier := transport.NewNotificationClient(
		logger,
		transport.NewHTTPClient(cfg.Transport, cfg.HTTPTimeouts.NotificationTimeout),
		cfg.Collaborators.NotificationSinkURL,
	)

	strat := strategist.New(strategist.Config{
		Logger:      logger,
		APIKey:      cfg.Collaborators.StrategistAPIKey,
		FastModel:   cfg.Collaborators.StrategistFastModel,
		DeepModel:   cfg.Collaborators.StrategistDeepModel,
		Enabled:     cfg.Collaborators.StrategistEnabled,
		Timeout:     cfg.HTTPTimeouts.StrategistTimeout,
		PeakTimeout: cfg.HTTPTimeouts.StrategistPeakTimeout,
	})

	orchestrator := pipeline.New(pipeline.Config{
		Logger:            logger,
		MarketData:        marketDataClient,
		Agents:            agentDispatch,
		Strategist:        strat,
		Store:             st,
		Notifier:          notifier,
		SessionClassifier: classify.NewTradingSessionClassifier(cfg.TimeZone),
		GateConfig:        cfg.Gate,
		Metrics:           metrics,
	})

	return &components{logger: logger, cfg: cfg, store: st, orchestrator: orchestrator, metrics: metrics}, nil
}

func runServe(ctx context.Context) error {
	c, err := bootstrap(ctx)
	if err != nil {
		return err
	}
	defer c.logger.Sync()
	defer c.store.Close()

	sched := scheduler.New(scheduler.Config{
		Logger:            c.logger,
		Pipeline:          c.orchestrator,
		RegimeReader:      c.store,
		Intervals:         c.metrics,
		SessionClassifier: classify.NewTradingSessionClassifier(c.cfg.TimeZone),
		Tempo:             c.cfg.Tempo,
	})

	controlServer := transport.New(transport.Config{
		Logger:           c.logger,
		Pipeline:         c.orchestrator,
		Store:            c.store,
		Health:           c.store,
		ListenAddr:       c.cfg.Transport.ListenAddr,
		ReplayModeHeader: c.cfg.Transport.ReplayModeHeader,
	})

	metricsServer := obs.NewServer(c.logger, c.cfg.Transport.MetricsListenAddr)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := controlServer.Start(); err != nil {
			c.logger.Error("control server error", zap.Error(err))
		}
	}()
	go func() {
		if err := metricsServer.Start(); err != nil {
			c.logger.Error("metrics server error", zap.Error(err))
		}
	}()

	sched.Start(c.cfg.WatchedSymbols)
	c.logger.Info("decisiond started",
		zap.Strings("watchedSymbols", c.cfg.WatchedSymbols),
		zap.String("listenAddr", c.cfg.Transport.ListenAddr),
		zap.String("metricsListenAddr", c.cfg.Transport.MetricsListenAddr),
	)

	<-sigCh
	c.logger.Info("shutdown signal received")

	sched.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := controlServer.Stop(shutdownCtx); err != nil {
		c.logger.Error("error stopping control server", zap.Error(err))
	}
	if err := metricsServer.Stop(shutdownCtx); err != nil {
		c.logger.Error("error stopping metrics server", zap.Error(err))
	}

	c.logger.Info("decisiond stopped")
	return nil
}

func runReplay(ctx context.Context, triggersFile string) error {
	c, err := bootstrap(ctx)
	if err != nil {
		return err
	}
	defer c.logger.Sync()
	defer c.store.Close()

	raw, err := os.ReadFile(triggersFile)
	if err != nil {
		return fmt.Errorf("reading triggers file: %w", err)
	}

	var requests []struct {
		Symbol      string    `json:"symbol"`
		TriggeredAt time.Time `json:"triggeredAt"`
		TraceID     string    `json:"traceId"`
	}
	if err := json.Unmarshal(raw, &requests); err != nil {
		return fmt.Errorf("parsing triggers file: %w", err)
	}

	for _, req := range requests {
		traceID := req.TraceID
		if traceID == "" {
			traceID = uuid.NewString()
		}
		trigger := types.Trigger{Symbol: req.Symbol, TriggeredAt: req.TriggeredAt, TraceID: traceID}

		decision, err := c.orchestrator.Orchestrate(ctx, trigger, true)
		if err != nil {
			c.logger.Error("replay trigger failed", zap.String("traceId", traceID), zap.Error(err))
			continue
		}
		c.logger.Info("replay trigger processed",
			zap.String("traceId", traceID), zap.String("symbol", trigger.Symbol),
			zap.String("finalSignal", string(decision.FinalSignal)))
	}

	return nil
}
