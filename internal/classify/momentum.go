package classify

import (
	"github.com/marketintel/decisiond/pkg/types"
)

// DecisionSample is the minimal per-decision view MomentumStateCalculator
// needs from the last N <= 8 decisions for a symbol.
type DecisionSample struct {
	Signal         types.Signal
	Confidence     float64
	DivergenceFlag bool
	Regime         types.MarketRegime
}

// MomentumStateCalculator derives the four-state MarketState from a recent
// window of decision samples, newest-first.
type MomentumStateCalculator struct{}

// Calculate resolves the market state per the spec's priority-ordered rules.
// A window shorter than 3 samples always yields CALM.
func (MomentumStateCalculator) Calculate(samples []DecisionSample) types.MarketState {
	if len(samples) < 3 {
		return types.StateCalm
	}
	if len(samples) > 8 {
		samples = samples[:8]
	}

	alignment := signalAlignment(samples)
	trend := confidenceTrend(samples)
	divergenceRatio := divergenceRatio(samples)
	stable := regimeStable(samples)

	switch {
	case alignment >= 0.80 && trend >= -0.03 && divergenceRatio < 0.40 && stable:
		return types.StateConfirmed
	case alignment >= 0.65 && (trend < -0.03 || divergenceRatio >= 0.40):
		return types.StateWeakening
	case alignment >= 0.65 && trend >= -0.03 && divergenceRatio < 0.40:
		// BUILDING proper requires trend > 0.02; softened to trend >= -0.03
		// when no stronger condition above has matched.
		return types.StateBuilding
	default:
		return types.StateCalm
	}
}

func signalAlignment(samples []DecisionSample) float64 {
	counts := map[types.Signal]int{}
	for _, s := range samples {
		counts[s.Signal]++
	}
	var maxCount int
	for _, c := range counts {
		if c > maxCount {
			maxCount = c
		}
	}
	return float64(maxCount) / float64(len(samples))
}

// confidenceTrend computes the least-squares slope of confidence over the
// sample window, indexed oldest-to-newest (samples arrive newest-first, so
// index i in the regression corresponds to position len-1-i in samples).
func confidenceTrend(samples []DecisionSample) float64 {
	n := len(samples)
	if n < 2 {
		return 0
	}

	xs := make([]float64, n)
	ys := make([]float64, n)
	for i := 0; i < n; i++ {
		xs[i] = float64(i)
		ys[i] = samples[n-1-i].Confidence
	}
	return leastSquaresSlope(xs, ys)
}

func leastSquaresSlope(xs, ys []float64) float64 {
	n := float64(len(xs))
	if n == 0 {
		return 0
	}
	var sumX, sumY, sumXY, sumXX float64
	for i := range xs {
		sumX += xs[i]
		sumY += ys[i]
		sumXY += xs[i] * ys[i]
		sumXX += xs[i] * xs[i]
	}
	denom := n*sumXX - sumX*sumX
	if denom == 0 {
		return 0
	}
	return (n*sumXY - sumX*sumY) / denom
}

func divergenceRatio(samples []DecisionSample) float64 {
	var divergent int
	for _, s := range samples {
		if s.DivergenceFlag {
			divergent++
		}
	}
	return float64(divergent) / float64(len(samples))
}

func regimeStable(samples []DecisionSample) bool {
	if len(samples) == 0 {
		return false
	}
	first := samples[0].Regime
	for _, s := range samples[1:] {
		if s.Regime != first {
			return false
		}
	}
	return true
}

// LeadingDivergenceStreak counts the leading (newest-first) run of
// divergenceFlag=true entries, used by the pipeline's ComputeDivergenceStreak
// stage.
func LeadingDivergenceStreak(entries []types.MemoryEntry) int {
	var streak int
	for _, e := range entries {
		if !e.DivergenceFlag {
			break
		}
		streak++
	}
	return streak
}
