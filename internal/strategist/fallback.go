package strategist

import (
	"fmt"

	"github.com/marketintel/decisiond/pkg/types"
)

// fallback produces a majority-vote decision over the agent signals with
// mean confidence. Always succeeds; never invoked concurrently with an LLM
// call for the same trigger.
func fallback(dc types.DecisionContext) types.StrategistDecision {
	counts := map[types.Signal]int{}
	var confidenceSum float64
	for _, r := range dc.AgentResults {
		counts[r.Signal]++
		confidenceSum += r.Confidence
	}

	majority := types.SignalHold
	best := -1
	for _, signal := range []types.Signal{types.SignalBuy, types.SignalSell, types.SignalHold, types.SignalWatch} {
		if counts[signal] > best {
			best = counts[signal]
			majority = signal
		}
	}

	confidence := 0.5
	if len(dc.AgentResults) > 0 {
		confidence = confidenceSum / float64(len(dc.AgentResults))
	}

	return types.StrategistDecision{
		FinalSignal:  majority,
		Confidence:   confidence,
		Reasoning:    fmt.Sprintf("rule-based fallback: majority vote %s across %d agents", majority, len(dc.AgentResults)),
		UsedFallback: true,
		ModelLabel:   "rule-based-fallback",
	}
}
