// Package classify holds the platform's pure classification functions: no
// I/O, no implicit clock reads. Every function takes its inputs, including
// time where relevant, as explicit parameters so the replay harness can
// replay historical timestamps through the exact same logic.
package classify

import (
	"math"

	"github.com/marketintel/decisiond/pkg/types"
)

// MarketRegimeClassifier classifies recent price behaviour into a regime.
// Grounded on the structural shape of the reference regime detector, reduced
// to the deterministic stdev/SMA thresholds this platform specifies — the
// reference's HMM forward algorithm solves a different (probabilistic state
// inference) problem and has no role here.
type MarketRegimeClassifier struct {
	VolatileStdevThreshold float64
	CalmStdevThreshold     float64
}

// NewMarketRegimeClassifier returns a classifier using the spec's literal
// thresholds.
func NewMarketRegimeClassifier() MarketRegimeClassifier {
	return MarketRegimeClassifier{
		VolatileStdevThreshold: 7.0,
		CalmStdevThreshold:     3.0,
	}
}

// Classify derives the market regime from a newest-first slice of recent
// closing prices and the latest close. Empty/nil prices yield UNKNOWN.
func (c MarketRegimeClassifier) Classify(prices []float64, latestClose float64) types.MarketRegime {
	if len(prices) == 0 {
		return types.RegimeUnknown
	}

	sd := stdev(prices)
	switch {
	case sd > c.VolatileStdevThreshold:
		return types.RegimeVolatile
	case latestClose > sma(prices, 50) && latestClose > sma(prices, 20):
		return types.RegimeTrending
	case sd < c.CalmStdevThreshold:
		return types.RegimeCalm
	default:
		return types.RegimeRanging
	}
}

// sma computes the simple moving average over the leading min(n, len(prices))
// elements of prices (prices is newest-first, so this is the most recent n).
func sma(prices []float64, n int) float64 {
	if len(prices) == 0 {
		return 0
	}
	if n > len(prices) {
		n = len(prices)
	}
	var sum float64
	for i := 0; i < n; i++ {
		sum += prices[i]
	}
	return sum / float64(n)
}

// stdev computes the population standard deviation of prices.
func stdev(prices []float64) float64 {
	if len(prices) == 0 {
		return 0
	}
	mean := mean(prices)
	var sumSq float64
	for _, p := range prices {
		d := p - mean
		sumSq += d * d
	}
	return math.Sqrt(sumSq / float64(len(prices)))
}

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}
