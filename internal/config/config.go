// Package config loads the platform's layered configuration: defaults, a
// platform-wide config.toml, a separate credentials.toml, then environment
// variable overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	"github.com/marketintel/decisiond/pkg/types"
)

// DefaultConfigDir returns the directory config.toml/credentials.toml live
// in when none is supplied.
func DefaultConfigDir() string {
	if dir := os.Getenv("DECISIOND_CONFIG_DIR"); dir != "" {
		return dir
	}
	return "./config"
}

// Load assembles a validated types.Config from configDir (defaulted if
// empty), then applies environment variable overrides.
func Load(configDir string) (types.Config, error) {
	if configDir == "" {
		configDir = DefaultConfigDir()
	}

	cfg := types.Config{
		Tempo:        types.DefaultTempoConfig(),
		CacheTTL:     types.DefaultCacheTTLConfig(),
		HTTPTimeouts: types.DefaultHTTPTimeoutConfig(),
		Gate:         types.DefaultGateConfig(),
		Feedback:     types.DefaultFeedbackConfig(),
		Transport:    types.DefaultTransportConfig(),
	}

	if err := loadPlatformConfig(configDir, &cfg); err != nil {
		return types.Config{}, fmt.Errorf("loading config.toml: %w", err)
	}
	if err := loadCredentials(configDir, &cfg); err != nil {
		return types.Config{}, fmt.Errorf("loading credentials.toml: %w", err)
	}

	applyEnvOverrides(&cfg)

	if err := Validate(cfg); err != nil {
		return types.Config{}, fmt.Errorf("validating config: %w", err)
	}
	return cfg, nil
}

func loadPlatformConfig(configDir string, cfg *types.Config) error {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(configDir)
	setPlatformDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return createTemplateConfig(configDir)
		}
		return err
	}

	cfg.WatchedSymbols = v.GetStringSlice("watched_symbols")
	cfg.TimeZone = v.GetString("time_zone")
	cfg.LogLevel = v.GetString("log_level")

	cfg.Tempo.OffHoursInterval = v.GetDuration("tempo.off_hours_interval")
	cfg.Tempo.MiddayConsolidationInterval = v.GetDuration("tempo.midday_consolidation_interval")
	cfg.Tempo.VolatileInterval = v.GetDuration("tempo.volatile_interval")
	cfg.Tempo.TrendingInterval = v.GetDuration("tempo.trending_interval")
	cfg.Tempo.RangingInterval = v.GetDuration("tempo.ranging_interval")
	cfg.Tempo.CalmInterval = v.GetDuration("tempo.calm_interval")
	cfg.Tempo.UnknownInterval = v.GetDuration("tempo.unknown_interval")

	cfg.CacheTTL.VolatileTTL = v.GetDuration("cache_ttl.volatile_ttl")
	cfg.CacheTTL.TrendingTTL = v.GetDuration("cache_ttl.trending_ttl")
	cfg.CacheTTL.RangingTTL = v.GetDuration("cache_ttl.ranging_ttl")
	cfg.CacheTTL.CalmTTL = v.GetDuration("cache_ttl.calm_ttl")

	cfg.HTTPTimeouts.MarketDataTimeout = v.GetDuration("http_timeouts.market_data_timeout")
	cfg.HTTPTimeouts.MarketDataMaxRetries = v.GetInt("http_timeouts.market_data_max_retries")
	cfg.HTTPTimeouts.AgentDispatchTimeout = v.GetDuration("http_timeouts.agent_dispatch_timeout")
	cfg.HTTPTimeouts.StrategistTimeout = v.GetDuration("http_timeouts.strategist_timeout")
	cfg.HTTPTimeouts.StrategistPeakTimeout = v.GetDuration("http_timeouts.strategist_peak_timeout")
	cfg.HTTPTimeouts.NotificationTimeout = v.GetDuration("http_timeouts.notification_timeout")

	cfg.Gate.MinConfidenceThreshold = v.GetFloat64("gate.min_confidence_threshold")
	cfg.Gate.DivergencePenaltyFactor = v.GetFloat64("gate.divergence_penalty_factor")
	cfg.Gate.DivergencePenaltyFloor = v.GetFloat64("gate.divergence_penalty_floor")
	cfg.Gate.DivergenceStreakForce = v.GetInt("gate.divergence_streak_force")
	cfg.Gate.ConsensusOverrideMinConf = v.GetFloat64("gate.consensus_override_min_conf")

	cfg.Feedback.MinResolvedOutcomes = v.GetInt("feedback.min_resolved_outcomes")
	cfg.Feedback.OutcomeLookbackWindow = v.GetInt("feedback.outcome_lookback_window")
	cfg.Feedback.ProfitableThreshold = v.GetFloat64("feedback.profitable_threshold")

	cfg.Transport.ListenAddr = v.GetString("transport.listen_addr")
	cfg.Transport.MetricsListenAddr = v.GetString("transport.metrics_listen_addr")
	cfg.Transport.MaxConnsPerHost = v.GetInt("transport.max_conns_per_host")
	cfg.Transport.IdleConnTimeout = v.GetDuration("transport.idle_conn_timeout")
	cfg.Transport.SnapshotBufferSize = v.GetInt("transport.snapshot_buffer_size")
	cfg.Transport.ReplayModeHeader = v.GetString("transport.replay_mode_header")
	cfg.Transport.OutboundRatePerSec = v.GetFloat64("transport.outbound_rate_per_sec")
	cfg.Transport.OutboundBurst = v.GetInt("transport.outbound_burst")

	cfg.Collaborators.MarketDataBaseURL = v.GetString("collaborators.market_data_base_url")
	cfg.Collaborators.AgentDispatchBaseURL = v.GetString("collaborators.agent_dispatch_base_url")
	cfg.Collaborators.NotificationSinkURL = v.GetString("collaborators.notification_sink_url")
	cfg.Collaborators.StrategistEnabled = v.GetBool("collaborators.strategist_enabled")
	cfg.Collaborators.StrategistFastModel = v.GetString("collaborators.strategist_fast_model")
	cfg.Collaborators.StrategistDeepModel = v.GetString("collaborators.strategist_deep_model")

	return nil
}

func loadCredentials(configDir string, cfg *types.Config) error {
	v := viper.New()
	v.SetConfigName("credentials")
	v.SetConfigType("toml")
	v.AddConfigPath(configDir)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return createTemplateCredentials(configDir)
		}
		return err
	}

	cfg.DatabaseURL = v.GetString("database_url")
	cfg.Collaborators.StrategistAPIKey = v.GetString("strategist_api_key")
	return nil
}

func applyEnvOverrides(cfg *types.Config) {
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.DatabaseURL = v
	}
	if v := os.Getenv("STRATEGIST_API_KEY"); v != "" {
		cfg.Collaborators.StrategistAPIKey = v
	}
	if v := os.Getenv("WATCHED_SYMBOLS"); v != "" {
		cfg.WatchedSymbols = splitAndTrim(v)
	}
}

func splitAndTrim(csv string) []string {
	var out []string
	start := 0
	for i := 0; i <= len(csv); i++ {
		if i == len(csv) || csv[i] == ',' {
			if seg := trimSpace(csv[start:i]); seg != "" {
				out = append(out, seg)
			}
			start = i + 1
		}
	}
	return out
}

func trimSpace(s string) string {
	for len(s) > 0 && (s[0] == ' ' || s[0] == '\t') {
		s = s[1:]
	}
	for len(s) > 0 && (s[len(s)-1] == ' ' || s[len(s)-1] == '\t') {
		s = s[:len(s)-1]
	}
	return s
}

func ensureDir(configDir string) error {
	return os.MkdirAll(configDir, 0755)
}

func templatePath(configDir, name string) string {
	return filepath.Join(configDir, name)
}
