package classify

import "github.com/marketintel/decisiond/pkg/types"

// TrendVotes is the 5-vote input the trend agent contributes for
// DirectionalBiasCalculator: each field is a bullish/bearish vote on one
// trend signal.
type TrendVotes struct {
	TrendSlopeBullish      bool
	MACDHistogramBullish   bool
	PriceAboveSMA20        bool
	PriceAboveEMA12        bool
	FiveCandleMomentumUp   bool
}

// bullishCount returns how many of the 5 votes are bullish.
func (v TrendVotes) bullishCount() int {
	count := 0
	for _, bullish := range []bool{
		v.TrendSlopeBullish,
		v.MACDHistogramBullish,
		v.PriceAboveSMA20,
		v.PriceAboveEMA12,
		v.FiveCandleMomentumUp,
	} {
		if bullish {
			count++
		}
	}
	return count
}

// DirectionalBiasCalculator derives a five-point directional bias from a
// majority vote across five trend indicators.
type DirectionalBiasCalculator struct{}

// Calculate maps the bullish-vote count to the DirectionalBias enum per the
// spec's literal table: 5->STRONG_BULLISH, 4->BULLISH, 2-3->NEUTRAL,
// 1->BEARISH, 0->STRONG_BEARISH.
func (DirectionalBiasCalculator) Calculate(votes TrendVotes) types.DirectionalBias {
	switch votes.bullishCount() {
	case 5:
		return types.BiasStrongBullish
	case 4:
		return types.BiasBullish
	case 2, 3:
		return types.BiasNeutral
	case 1:
		return types.BiasBearish
	default:
		return types.BiasStrongBearish
	}
}
