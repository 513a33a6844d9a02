package config

import (
	"fmt"

	"github.com/marketintel/decisiond/pkg/types"
)

// Validate enforces the range constraints the platform assumes hold for
// every tunable, catching a malformed config.toml before any component
// starts using it.
func Validate(cfg types.Config) error {
	if len(cfg.WatchedSymbols) == 0 {
		return fmt.Errorf("watched_symbols must list at least one symbol")
	}
	if cfg.TimeZone == "" {
		return fmt.Errorf("time_zone must not be empty")
	}
	if cfg.DatabaseURL == "" {
		return fmt.Errorf("database_url must not be empty")
	}

	for name, d := range map[string]int64{
		"tempo.off_hours_interval":            int64(cfg.Tempo.OffHoursInterval),
		"tempo.midday_consolidation_interval": int64(cfg.Tempo.MiddayConsolidationInterval),
		"tempo.volatile_interval":             int64(cfg.Tempo.VolatileInterval),
		"tempo.trending_interval":             int64(cfg.Tempo.TrendingInterval),
		"tempo.ranging_interval":              int64(cfg.Tempo.RangingInterval),
		"tempo.calm_interval":                 int64(cfg.Tempo.CalmInterval),
		"tempo.unknown_interval":              int64(cfg.Tempo.UnknownInterval),
		"cache_ttl.volatile_ttl":              int64(cfg.CacheTTL.VolatileTTL),
		"cache_ttl.trending_ttl":              int64(cfg.CacheTTL.TrendingTTL),
		"cache_ttl.ranging_ttl":               int64(cfg.CacheTTL.RangingTTL),
		"cache_ttl.calm_ttl":                  int64(cfg.CacheTTL.CalmTTL),
		"http_timeouts.market_data_timeout":   int64(cfg.HTTPTimeouts.MarketDataTimeout),
		"http_timeouts.agent_dispatch_timeout": int64(cfg.HTTPTimeouts.AgentDispatchTimeout),
		"http_timeouts.strategist_timeout":    int64(cfg.HTTPTimeouts.StrategistTimeout),
		"http_timeouts.strategist_peak_timeout": int64(cfg.HTTPTimeouts.StrategistPeakTimeout),
		"http_timeouts.notification_timeout":  int64(cfg.HTTPTimeouts.NotificationTimeout),
		"transport.idle_conn_timeout":         int64(cfg.Transport.IdleConnTimeout),
	} {
		if d <= 0 {
			return fmt.Errorf("%s must be positive, got %d", name, d)
		}
	}

	if cfg.HTTPTimeouts.MarketDataMaxRetries < 0 {
		return fmt.Errorf("http_timeouts.market_data_max_retries must not be negative")
	}

	for name, f := range map[string]float64{
		"gate.min_confidence_threshold":    cfg.Gate.MinConfidenceThreshold,
		"gate.divergence_penalty_factor":   cfg.Gate.DivergencePenaltyFactor,
		"gate.divergence_penalty_floor":    cfg.Gate.DivergencePenaltyFloor,
		"gate.consensus_override_min_conf": cfg.Gate.ConsensusOverrideMinConf,
		"feedback.profitable_threshold":    cfg.Feedback.ProfitableThreshold,
	} {
		if f < 0 || f > 1 {
			return fmt.Errorf("%s must be within [0,1], got %f", name, f)
		}
	}

	if cfg.Gate.DivergenceStreakForce <= 0 {
		return fmt.Errorf("gate.divergence_streak_force must be positive")
	}
	if cfg.Feedback.MinResolvedOutcomes <= 0 {
		return fmt.Errorf("feedback.min_resolved_outcomes must be positive")
	}
	if cfg.Feedback.OutcomeLookbackWindow <= 0 {
		return fmt.Errorf("feedback.outcome_lookback_window must be positive")
	}

	if cfg.Transport.ListenAddr == "" {
		return fmt.Errorf("transport.listen_addr must not be empty")
	}
	if cfg.Transport.MetricsListenAddr == "" {
		return fmt.Errorf("transport.metrics_listen_addr must not be empty")
	}
	if cfg.Transport.MaxConnsPerHost <= 0 {
		return fmt.Errorf("transport.max_conns_per_host must be positive")
	}
	if cfg.Transport.SnapshotBufferSize <= 0 {
		return fmt.Errorf("transport.snapshot_buffer_size must be positive")
	}
	if cfg.Transport.OutboundRatePerSec <= 0 {
		return fmt.Errorf("transport.outbound_rate_per_sec must be positive")
	}
	if cfg.Transport.OutboundBurst <= 0 {
		return fmt.Errorf("transport.outbound_burst must be positive")
	}

	if cfg.Collaborators.StrategistEnabled && cfg.Collaborators.StrategistAPIKey == "" {
		return fmt.Errorf("collaborators.strategist_api_key must be set when strategist_enabled is true")
	}

	return nil
}
