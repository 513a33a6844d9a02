package store

import (
	"github.com/shopspring/decimal"

	"github.com/marketintel/decisiond/pkg/types"
)

// computeOutcomePercent returns the percentage move from entryPrice to
// currentPrice, sign-flipped for SELL so a favorable move is always
// positive regardless of trade direction.
func computeOutcomePercent(entryPrice, currentPrice decimal.Decimal, signal types.Signal) float64 {
	if entryPrice.IsZero() {
		return 0
	}
	pct, _ := currentPrice.Sub(entryPrice).Div(entryPrice).Mul(decimal.NewFromInt(100)).Float64()
	if signal == types.SignalSell {
		return -pct
	}
	return pct
}

// priceCrossed reports whether currentPrice has moved to or past level in
// the direction implied by signal. Evaluated once against a single
// point-in-time price read, not an intrabar high/low.
func priceCrossed(signal types.Signal, currentPrice, level decimal.Decimal, favorable bool) bool {
	if level.IsZero() {
		return false
	}
	switch {
	case signal == types.SignalBuy && favorable:
		return currentPrice.GreaterThanOrEqual(level)
	case signal == types.SignalBuy && !favorable:
		return currentPrice.LessThanOrEqual(level)
	case signal == types.SignalSell && favorable:
		return currentPrice.LessThanOrEqual(level)
	case signal == types.SignalSell && !favorable:
		return currentPrice.GreaterThanOrEqual(level)
	default:
		return false
	}
}

// deriveOutcomeLabel assigns the quality label per the spec's priority
// order: a realized target/stop crossing dominates, then timing-qualified
// wins, else NO_EDGE.
func deriveOutcomeLabel(outcomePercent float64, holdMinutes int, reachedTarget, reachedStop bool) types.OutcomeLabel {
	switch {
	case reachedTarget:
		return types.OutcomeTargetHit
	case reachedStop:
		return types.OutcomeStopOut
	case outcomePercent > 0 && holdMinutes < 5:
		return types.OutcomeFastWin
	case outcomePercent > 0 && holdMinutes >= 15:
		return types.OutcomeSlowWin
	default:
		return types.OutcomeNoEdge
	}
}

// isProfitable applies the feedback config's profitability threshold used
// by market-truth agent re-scoring, the edge-condition update and agent
// feedback; quality labels do not use it.
func isProfitable(outcomePercent float64, threshold float64) bool {
	return outcomePercent > threshold
}
