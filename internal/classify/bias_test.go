package classify

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/marketintel/decisiond/pkg/types"
)

func TestDirectionalBiasCalculator_Calculate(t *testing.T) {
	var calc DirectionalBiasCalculator

	tests := []struct {
		name  string
		votes TrendVotes
		want  types.DirectionalBias
	}{
		{
			name:  "all five bullish is strong bullish",
			votes: TrendVotes{true, true, true, true, true},
			want:  types.BiasStrongBullish,
		},
		{
			name:  "four of five bullish is bullish",
			votes: TrendVotes{true, true, true, true, false},
			want:  types.BiasBullish,
		},
		{
			name:  "three of five bullish is neutral",
			votes: TrendVotes{true, true, true, false, false},
			want:  types.BiasNeutral,
		},
		{
			name:  "two of five bullish is neutral",
			votes: TrendVotes{true, true, false, false, false},
			want:  types.BiasNeutral,
		},
		{
			name:  "one of five bullish is bearish",
			votes: TrendVotes{true, false, false, false, false},
			want:  types.BiasBearish,
		},
		{
			name:  "zero of five bullish is strong bearish",
			votes: TrendVotes{false, false, false, false, false},
			want:  types.BiasStrongBearish,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, calc.Calculate(tt.votes))
		})
	}
}

func TestDirectionalBias_FamilyHelpers(t *testing.T) {
	assert.True(t, types.BiasBullish.BullishFamily())
	assert.True(t, types.BiasStrongBullish.BullishFamily())
	assert.False(t, types.BiasNeutral.BullishFamily())

	assert.True(t, types.BiasBearish.BearishFamily())
	assert.True(t, types.BiasStrongBearish.BearishFamily())
	assert.False(t, types.BiasNeutral.BearishFamily())
}
