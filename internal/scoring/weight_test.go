package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/marketintel/decisiond/pkg/types"
)

func TestAgentScoreCalculator_Compute(t *testing.T) {
	var calc AgentScoreCalculator

	t.Run("no performance or feedback defaults base weight to 1.0", func(t *testing.T) {
		got := calc.Compute(types.CapabilityDiscipline, types.RegimeCalm, nil, nil)
		assert.InDelta(t, 1.0, got, 0.0001)
	})

	t.Run("regime boost applies only for matching capability and regime", func(t *testing.T) {
		got := calc.Compute(types.CapabilityTrend, types.RegimeTrending, nil, nil)
		assert.InDelta(t, 1.20, got, 0.0001)

		got = calc.Compute(types.CapabilityTrend, types.RegimeRanging, nil, nil)
		assert.InDelta(t, 1.0, got, 0.0001)
	})

	t.Run("weight is always clamped to [0.1, 2.0]", func(t *testing.T) {
		perf := &types.AgentPerformanceModel{HistoricalAccuracyScore: 10, LatencyWeight: 0}
		feedback := &types.AgentFeedback{WinRate: 1, AvgConfidence: 1, NormalizedLatency: 0}
		got := calc.Compute(types.CapabilityRisk, types.RegimeVolatile, perf, feedback)
		assert.LessOrEqual(t, got, 2.0)

		perf = &types.AgentPerformanceModel{HistoricalAccuracyScore: -10, LatencyWeight: 10}
		feedback = &types.AgentFeedback{WinRate: 0, AvgConfidence: 0, NormalizedLatency: 1}
		got = calc.Compute(types.CapabilityDiscipline, types.RegimeCalm, perf, feedback)
		assert.GreaterOrEqual(t, got, 0.1)
	})

	t.Run("base weight floors at 0.1 before boosts are added", func(t *testing.T) {
		perf := &types.AgentPerformanceModel{HistoricalAccuracyScore: 0, LatencyWeight: 1}
		got := calc.Compute(types.CapabilityDiscipline, types.RegimeCalm, perf, nil)
		assert.InDelta(t, 0.1, got, 0.0001)
	})
}
