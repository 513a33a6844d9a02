// Package scoring computes adaptive per-agent weights, the performance-weighted
// consensus guardrail, and the discipline gate chain applied to the
// strategist's signal before it becomes a FinalDecision.
package scoring

import (
	"github.com/marketintel/decisiond/pkg/types"
)

// regimeBoostTable replaces the original name-substring regime boost with an
// explicit (capability, regime) lookup.
var regimeBoostTable = map[types.AgentCapability]map[types.MarketRegime]float64{
	types.CapabilityTrend: {
		types.RegimeTrending: 0.20,
	},
	types.CapabilityRisk: {
		types.RegimeVolatile: 0.20,
	},
	types.CapabilityPortfolio: {
		types.RegimeRanging: 0.15,
	},
}

// AgentScoreCalculator derives the adaptive weight clamp for one agent from
// its historical performance, market-truth feedback, and capability/regime
// affinity.
type AgentScoreCalculator struct{}

// Compute returns the clamped [0.1, 2.0] weight for one agent in the given
// regime. performance and feedback may each be nil when no record exists yet.
func (AgentScoreCalculator) Compute(
	capability types.AgentCapability,
	regime types.MarketRegime,
	performance *types.AgentPerformanceModel,
	feedback *types.AgentFeedback,
) float64 {
	base := baseWeight(performance)
	boost := feedbackBoost(feedback)
	regimeBoost := regimeBoostTable[capability][regime]

	weight := base + boost + regimeBoost
	return clamp(weight, 0.1, 2.0)
}

// baseWeight defaults to 1.0 when no performance record exists.
func baseWeight(performance *types.AgentPerformanceModel) float64 {
	if performance == nil {
		return 1.0
	}
	raw := 0.5*performance.HistoricalAccuracyScore - 0.2*performance.LatencyWeight
	return clampMin(raw, 0.1)
}

// feedbackBoost is zero when feedback is missing.
func feedbackBoost(feedback *types.AgentFeedback) float64 {
	if feedback == nil {
		return 0
	}
	return 0.4*feedback.WinRate + 0.3*feedback.AvgConfidence - 0.2*feedback.NormalizedLatency
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampMin(v, lo float64) float64 {
	if v < lo {
		return lo
	}
	return v
}
