package store

import "github.com/marketintel/decisiond/pkg/types"

// decisionPoint is the minimal newest-first view of one persisted decision
// the per-symbol metrics upsert needs.
type decisionPoint struct {
	Confidence     float64
	DivergenceFlag bool
	FinalSignal    types.Signal
}

// confidenceSlope5 computes the least-squares slope of confidence across
// the given window (expected: last <= 5 decisions, newest-first).
func confidenceSlope5(points []decisionPoint) float64 {
	n := len(points)
	if n < 2 {
		return 0
	}
	xs := make([]float64, n)
	ys := make([]float64, n)
	for i := 0; i < n; i++ {
		xs[i] = float64(i)
		ys[i] = points[n-1-i].Confidence
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

// leadingDivergenceStreak counts the newest-first run of DivergenceFlag=true
// entries.
func leadingDivergenceStreak(points []decisionPoint) int {
	var streak int
	for _, p := range points {
		if !p.DivergenceFlag {
			break
		}
		streak++
	}
	return streak
}

// leadingMomentumStreak counts the newest-first run of decisions sharing the
// most recent decision's final signal, the continuity counterpart to the
// divergence streak.
func leadingMomentumStreak(points []decisionPoint) int {
	if len(points) == 0 {
		return 0
	}
	current := points[0].FinalSignal
	var streak int
	for _, p := range points {
		if p.FinalSignal != current {
			break
		}
		streak++
	}
	return streak
}
