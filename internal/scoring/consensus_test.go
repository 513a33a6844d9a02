package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/marketintel/decisiond/pkg/types"
)

func TestConsensusEngine_Compute(t *testing.T) {
	var engine ConsensusEngine

	t.Run("empty results is the guard pattern HOLD 0.0", func(t *testing.T) {
		got := engine.Compute(nil, map[string]float64{})
		assert.Equal(t, types.SignalHold, got.FinalSignal)
		assert.Equal(t, 0.0, got.NormalizedConfidence)
	})

	t.Run("unanimous BUY at equal weight yields BUY", func(t *testing.T) {
		results := []types.AnalysisResult{
			{AgentName: "a1", Signal: types.SignalBuy},
			{AgentName: "a2", Signal: types.SignalBuy},
		}
		weights := map[string]float64{"a1": 1.0, "a2": 1.0}
		got := engine.Compute(results, weights)
		assert.Equal(t, types.SignalBuy, got.FinalSignal)
		assert.InDelta(t, 1.0, got.NormalizedConfidence, 0.0001)
	})

	t.Run("mixed BUY and HOLD votes above the BUY threshold yield BUY", func(t *testing.T) {
		results := []types.AnalysisResult{
			{AgentName: "a1", Signal: types.SignalBuy},
			{AgentName: "a2", Signal: types.SignalHold},
		}
		weights := map[string]float64{"a1": 1.0, "a2": 1.0}
		// rawScore = (1*1 + 0*1) / 2 = 0.5 > 0.3 -> BUY
		got := engine.Compute(results, weights)
		assert.Equal(t, types.SignalBuy, got.FinalSignal)
	})

	t.Run("missing weight defaults to 1.0", func(t *testing.T) {
		results := []types.AnalysisResult{
			{AgentName: "unweighted", Signal: types.SignalSell},
		}
		got := engine.Compute(results, map[string]float64{})
		assert.Equal(t, types.SignalSell, got.FinalSignal)
		assert.Equal(t, float64(1.0), got.PerAgentWeights["unweighted"])
	})

	t.Run("low positive score yields WATCH", func(t *testing.T) {
		results := []types.AnalysisResult{
			{AgentName: "a1", Signal: types.SignalWatch},
			{AgentName: "a2", Signal: types.SignalHold},
		}
		weights := map[string]float64{"a1": 1.0, "a2": 1.0}
		// rawScore = (0.5 + 0) / 2 = 0.25 -> WATCH band
		got := engine.Compute(results, weights)
		assert.Equal(t, types.SignalWatch, got.FinalSignal)
	})

	t.Run("strong SELL weighting yields SELL", func(t *testing.T) {
		results := []types.AnalysisResult{
			{AgentName: "a1", Signal: types.SignalSell},
			{AgentName: "a2", Signal: types.SignalSell},
		}
		weights := map[string]float64{"a1": 1.0, "a2": 1.0}
		got := engine.Compute(results, weights)
		assert.Equal(t, types.SignalSell, got.FinalSignal)
	})
}
