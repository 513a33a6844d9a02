package config

import (
	"github.com/spf13/viper"

	"github.com/marketintel/decisiond/pkg/types"
)

// setPlatformDefaults seeds v with the same literal values
// types.DefaultXConfig returns, so a config.toml that omits a section still
// produces a fully populated Config.
func setPlatformDefaults(v *viper.Viper) {
	v.SetDefault("watched_symbols", []string{"AAPL", "MSFT", "SPY"})
	v.SetDefault("time_zone", "America/New_York")
	v.SetDefault("log_level", "info")

	tempo := types.DefaultTempoConfig()
	v.SetDefault("tempo.off_hours_interval", tempo.OffHoursInterval)
	v.SetDefault("tempo.midday_consolidation_interval", tempo.MiddayConsolidationInterval)
	v.SetDefault("tempo.volatile_interval", tempo.VolatileInterval)
	v.SetDefault("tempo.trending_interval", tempo.TrendingInterval)
	v.SetDefault("tempo.ranging_interval", tempo.RangingInterval)
	v.SetDefault("tempo.calm_interval", tempo.CalmInterval)
	v.SetDefault("tempo.unknown_interval", tempo.UnknownInterval)

	cache := types.DefaultCacheTTLConfig()
	v.SetDefault("cache_ttl.volatile_ttl", cache.VolatileTTL)
	v.SetDefault("cache_ttl.trending_ttl", cache.TrendingTTL)
	v.SetDefault("cache_ttl.ranging_ttl", cache.RangingTTL)
	v.SetDefault("cache_ttl.calm_ttl", cache.CalmTTL)

	httpTimeouts := types.DefaultHTTPTimeoutConfig()
	v.SetDefault("http_timeouts.market_data_timeout", httpTimeouts.MarketDataTimeout)
	v.SetDefault("http_timeouts.market_data_max_retries", httpTimeouts.MarketDataMaxRetries)
	v.SetDefault("http_timeouts.agent_dispatch_timeout", httpTimeouts.AgentDispatchTimeout)
	v.SetDefault("http_timeouts.strategist_timeout", httpTimeouts.StrategistTimeout)
	v.SetDefault("http_timeouts.strategist_peak_timeout", httpTimeouts.StrategistPeakTimeout)
	v.SetDefault("http_timeouts.notification_timeout", httpTimeouts.NotificationTimeout)

	gate := types.DefaultGateConfig()
	v.SetDefault("gate.min_confidence_threshold", gate.MinConfidenceThreshold)
	v.SetDefault("gate.divergence_penalty_factor", gate.DivergencePenaltyFactor)
	v.SetDefault("gate.divergence_penalty_floor", gate.DivergencePenaltyFloor)
	v.SetDefault("gate.divergence_streak_force", gate.DivergenceStreakForce)
	v.SetDefault("gate.consensus_override_min_conf", gate.ConsensusOverrideMinConf)

	feedback := types.DefaultFeedbackConfig()
	v.SetDefault("feedback.min_resolved_outcomes", feedback.MinResolvedOutcomes)
	v.SetDefault("feedback.outcome_lookback_window", feedback.OutcomeLookbackWindow)
	v.SetDefault("feedback.profitable_threshold", feedback.ProfitableThreshold)

	transport := types.DefaultTransportConfig()
	v.SetDefault("transport.listen_addr", transport.ListenAddr)
	v.SetDefault("transport.metrics_listen_addr", transport.MetricsListenAddr)
	v.SetDefault("transport.max_conns_per_host", transport.MaxConnsPerHost)
	v.SetDefault("transport.idle_conn_timeout", transport.IdleConnTimeout)
	v.SetDefault("transport.snapshot_buffer_size", transport.SnapshotBufferSize)
	v.SetDefault("transport.replay_mode_header", transport.ReplayModeHeader)
	v.SetDefault("transport.outbound_rate_per_sec", transport.OutboundRatePerSec)
	v.SetDefault("transport.outbound_burst", transport.OutboundBurst)

	v.SetDefault("collaborators.market_data_base_url", "")
	v.SetDefault("collaborators.agent_dispatch_base_url", "")
	v.SetDefault("collaborators.notification_sink_url", "")
	v.SetDefault("collaborators.strategist_enabled", false)
	v.SetDefault("collaborators.strategist_fast_model", "gpt-4o-mini")
	v.SetDefault("collaborators.strategist_deep_model", "gpt-4o")
}
