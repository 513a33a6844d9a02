package scheduler

import (
	"time"

	"github.com/marketintel/decisiond/pkg/types"
)

// nextInterval is the scheduler's tempo policy: a pure function of the last
// observed regime and the current trading session. Session overrides win
// over the regime bucket regardless of regime.
func nextInterval(cfg types.TempoConfig, regime types.MarketRegime, session types.TradingSession) time.Duration {
	switch session {
	case types.SessionOffHours:
		return cfg.OffHoursInterval
	case types.SessionMiddayConsolidation:
		return cfg.MiddayConsolidationInterval
	}

	switch regime {
	case types.RegimeVolatile:
		return cfg.VolatileInterval
	case types.RegimeTrending:
		return cfg.TrendingInterval
	case types.RegimeRanging:
		return cfg.RangingInterval
	case types.RegimeCalm:
		return cfg.CalmInterval
	default:
		return cfg.UnknownInterval
	}
}
