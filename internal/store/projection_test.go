package store

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/marketintel/decisiond/pkg/types"
)

func TestConfidenceSlope5(t *testing.T) {
	t.Run("fewer than two points yields zero", func(t *testing.T) {
		assert.Equal(t, 0.0, confidenceSlope5([]decisionPoint{{Confidence: 0.5}}))
	})

	t.Run("newest-first rising confidence yields positive slope", func(t *testing.T) {
		// newest-first: 0.9, 0.8, 0.7, 0.6, 0.5 -> oldest-to-newest is rising.
		points := []decisionPoint{
			{Confidence: 0.9}, {Confidence: 0.8}, {Confidence: 0.7}, {Confidence: 0.6}, {Confidence: 0.5},
		}
		assert.Greater(t, confidenceSlope5(points), 0.0)
	})

	t.Run("newest-first falling confidence yields negative slope", func(t *testing.T) {
		points := []decisionPoint{
			{Confidence: 0.5}, {Confidence: 0.6}, {Confidence: 0.7}, {Confidence: 0.8}, {Confidence: 0.9},
		}
		assert.Less(t, confidenceSlope5(points), 0.0)
	})
}

func TestLeadingDivergenceStreak(t *testing.T) {
	points := []decisionPoint{
		{DivergenceFlag: true}, {DivergenceFlag: true}, {DivergenceFlag: false}, {DivergenceFlag: true},
	}
	assert.Equal(t, 2, leadingDivergenceStreak(points))
	assert.Equal(t, 0, leadingDivergenceStreak([]decisionPoint{{DivergenceFlag: false}}))
}

func TestLeadingMomentumStreak(t *testing.T) {
	points := []decisionPoint{
		{FinalSignal: types.SignalBuy}, {FinalSignal: types.SignalBuy}, {FinalSignal: types.SignalHold},
	}
	assert.Equal(t, 2, leadingMomentumStreak(points))
	assert.Equal(t, 0, leadingMomentumStreak(nil))
}
