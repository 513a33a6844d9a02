// Package types provides configuration types for the decision-intelligence platform.
package types

import "time"

// TempoConfig holds the scheduler's tempo policy durations.
type TempoConfig struct {
	OffHoursInterval            time.Duration `mapstructure:"off_hours_interval"`
	MiddayConsolidationInterval time.Duration `mapstructure:"midday_consolidation_interval"`
	VolatileInterval            time.Duration `mapstructure:"volatile_interval"`
	TrendingInterval            time.Duration `mapstructure:"trending_interval"`
	RangingInterval             time.Duration `mapstructure:"ranging_interval"`
	CalmInterval                time.Duration `mapstructure:"calm_interval"`
	UnknownInterval             time.Duration `mapstructure:"unknown_interval"`
}

// DefaultTempoConfig reproduces the spec's literal tempo policy.
func DefaultTempoConfig() TempoConfig {
	return TempoConfig{
		OffHoursInterval:            30 * time.Minute,
		MiddayConsolidationInterval: 15 * time.Minute,
		VolatileInterval:            30 * time.Second,
		TrendingInterval:            2 * time.Minute,
		RangingInterval:             5 * time.Minute,
		CalmInterval:                10 * time.Minute,
		UnknownInterval:             5 * time.Minute,
	}
}

// CacheTTLConfig holds the market-data cache TTL per regime.
type CacheTTLConfig struct {
	VolatileTTL time.Duration `mapstructure:"volatile_ttl"`
	TrendingTTL time.Duration `mapstructure:"trending_ttl"`
	RangingTTL  time.Duration `mapstructure:"ranging_ttl"`
	CalmTTL     time.Duration `mapstructure:"calm_ttl"`
}

// DefaultCacheTTLConfig reproduces the spec's literal cache TTL table.
func DefaultCacheTTLConfig() CacheTTLConfig {
	return CacheTTLConfig{
		VolatileTTL: 2 * time.Minute,
		TrendingTTL: 5 * time.Minute,
		RangingTTL:  7 * time.Minute,
		CalmTTL:     10 * time.Minute,
	}
}

// HTTPTimeoutConfig holds per-collaborator HTTP timeouts and retry budgets.
type HTTPTimeoutConfig struct {
	MarketDataTimeout      time.Duration `mapstructure:"market_data_timeout"`
	MarketDataMaxRetries   int           `mapstructure:"market_data_max_retries"`
	AgentDispatchTimeout   time.Duration `mapstructure:"agent_dispatch_timeout"`
	StrategistTimeout      time.Duration `mapstructure:"strategist_timeout"`
	StrategistPeakTimeout  time.Duration `mapstructure:"strategist_peak_timeout"`
	NotificationTimeout    time.Duration `mapstructure:"notification_timeout"`
}

// DefaultHTTPTimeoutConfig reproduces the spec's literal timeout budgets.
func DefaultHTTPTimeoutConfig() HTTPTimeoutConfig {
	return HTTPTimeoutConfig{
		MarketDataTimeout:     4 * time.Second,
		MarketDataMaxRetries:  3,
		AgentDispatchTimeout:  4 * time.Second,
		StrategistTimeout:     4 * time.Second,
		StrategistPeakTimeout: 1200 * time.Millisecond,
		NotificationTimeout:   2 * time.Second,
	}
}

// GateConfig holds the gate chain's tunable, previously-magic-number
// constants (spec Open Questions).
type GateConfig struct {
	MinConfidenceThreshold   float64 `mapstructure:"min_confidence_threshold"`    // 0.65
	DivergencePenaltyFactor  float64 `mapstructure:"divergence_penalty_factor"`   // 0.85
	DivergencePenaltyFloor   float64 `mapstructure:"divergence_penalty_floor"`    // 0.50
	DivergenceStreakForce    int     `mapstructure:"divergence_streak_force"`     // 2
	ConsensusOverrideMinConf float64 `mapstructure:"consensus_override_min_conf"` // 0.65
}

// DefaultGateConfig reproduces the spec's literal gate thresholds.
func DefaultGateConfig() GateConfig {
	return GateConfig{
		MinConfidenceThreshold:   0.65,
		DivergencePenaltyFactor:  0.85,
		DivergencePenaltyFloor:   0.50,
		DivergenceStreakForce:    2,
		ConsensusOverrideMinConf: 0.65,
	}
}

// FeedbackConfig holds the store's learning-loop tunables (spec Open
// Questions: both were "magic numbers" in the source, now configuration).
type FeedbackConfig struct {
	MinResolvedOutcomes   int     `mapstructure:"min_resolved_outcomes"`   // 5
	OutcomeLookbackWindow int     `mapstructure:"outcome_lookback_window"` // 200
	ProfitableThreshold   float64 `mapstructure:"profitable_threshold"`    // 0.10
}

// DefaultFeedbackConfig reproduces the spec's literal feedback thresholds.
func DefaultFeedbackConfig() FeedbackConfig {
	return FeedbackConfig{
		MinResolvedOutcomes:   5,
		OutcomeLookbackWindow: 200,
		ProfitableThreshold:   0.10,
	}
}

// TransportConfig configures the HTTP control API and outbound client pool.
type TransportConfig struct {
	ListenAddr          string        `mapstructure:"listen_addr"`
	MetricsListenAddr   string        `mapstructure:"metrics_listen_addr"`
	MaxConnsPerHost     int           `mapstructure:"max_conns_per_host"`
	IdleConnTimeout     time.Duration `mapstructure:"idle_conn_timeout"`
	SnapshotBufferSize  int           `mapstructure:"snapshot_buffer_size"`
	ReplayModeHeader    string        `mapstructure:"replay_mode_header"`
	OutboundRatePerSec  float64       `mapstructure:"outbound_rate_per_sec"`
	OutboundBurst       int           `mapstructure:"outbound_burst"`
}

// DefaultTransportConfig reproduces the spec's literal transport constants.
func DefaultTransportConfig() TransportConfig {
	return TransportConfig{
		ListenAddr:         ":8080",
		MetricsListenAddr:  ":9090",
		MaxConnsPerHost:    500,
		IdleConnTimeout:    45 * time.Second,
		SnapshotBufferSize: 64,
		ReplayModeHeader:   "X-Replay-Mode",
		OutboundRatePerSec: 20,
		OutboundBurst:      10,
	}
}

// CollaboratorConfig holds the base URLs/credentials of external collaborators
// described only at the interface level by the spec.
type CollaboratorConfig struct {
	MarketDataBaseURL    string `mapstructure:"market_data_base_url"`
	AgentDispatchBaseURL string `mapstructure:"agent_dispatch_base_url"`
	NotificationSinkURL  string `mapstructure:"notification_sink_url"`
	StrategistEnabled    bool   `mapstructure:"strategist_enabled"`
	StrategistAPIKey     string `mapstructure:"strategist_api_key"`
	StrategistFastModel  string `mapstructure:"strategist_fast_model"`
	StrategistDeepModel  string `mapstructure:"strategist_deep_model"`
}

// Config is the fully assembled, validated application configuration.
type Config struct {
	WatchedSymbols []string            `mapstructure:"watched_symbols"`
	TimeZone       string              `mapstructure:"time_zone"`
	LogLevel       string              `mapstructure:"log_level"`
	DatabaseURL    string              `mapstructure:"database_url"`
	Tempo          TempoConfig         `mapstructure:"-"`
	CacheTTL       CacheTTLConfig      `mapstructure:"-"`
	HTTPTimeouts   HTTPTimeoutConfig   `mapstructure:"-"`
	Gate           GateConfig          `mapstructure:"-"`
	Feedback       FeedbackConfig      `mapstructure:"-"`
	Transport      TransportConfig     `mapstructure:"-"`
	Collaborators  CollaboratorConfig  `mapstructure:"-"`
}
