package scoring

import (
	"github.com/marketintel/decisiond/pkg/types"
)

// signalScore maps a signal to the consensus engine's linear-combination score.
var signalScore = map[types.Signal]float64{
	types.SignalBuy:   1.0,
	types.SignalSell:  -1.0,
	types.SignalHold:  0.0,
	types.SignalWatch: 0.5,
}

// ConsensusEngine is the performance-weighted guardrail: a linear combination
// of agent signals, used downstream as a downgrade-only override of the
// strategist's output. Never consulted directly by callers with an empty
// result list without the guard below — the guard still fires defensively.
type ConsensusEngine struct{}

// Compute derives the consensus result from agent results and their adaptive
// weights. An empty results slice returns {HOLD, 0.0} without touching the
// weights map.
func (ConsensusEngine) Compute(results []types.AnalysisResult, weights map[string]float64) types.ConsensusResult {
	if len(results) == 0 {
		return types.ConsensusResult{FinalSignal: types.SignalHold, NormalizedConfidence: 0.0}
	}

	perAgentWeights := make(map[string]float64, len(results))
	var weightedSum, totalWeight float64
	for _, r := range results {
		w, ok := weights[r.AgentName]
		if !ok {
			w = 1.0
		}
		perAgentWeights[r.AgentName] = w
		weightedSum += signalScore[r.Signal] * w
		totalWeight += w
	}

	var rawScore float64
	if totalWeight > 0 {
		rawScore = weightedSum / totalWeight
	}

	normalizedConfidence := (rawScore + 1) / 2

	var finalSignal types.Signal
	switch {
	case rawScore > 0.3:
		finalSignal = types.SignalBuy
	case rawScore < -0.3:
		finalSignal = types.SignalSell
	case rawScore > 0.0:
		finalSignal = types.SignalWatch
	default:
		finalSignal = types.SignalHold
	}

	return types.ConsensusResult{
		FinalSignal:          finalSignal,
		NormalizedConfidence: normalizedConfidence,
		PerAgentWeights:      perAgentWeights,
	}
}
