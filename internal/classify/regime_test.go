package classify

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/marketintel/decisiond/pkg/types"
)

func TestMarketRegimeClassifier_Classify(t *testing.T) {
	c := NewMarketRegimeClassifier()

	tests := []struct {
		name        string
		prices      []float64
		latestClose float64
		want        types.MarketRegime
	}{
		{
			name:        "empty prices yields unknown",
			prices:      nil,
			latestClose: 100,
			want:        types.RegimeUnknown,
		},
		{
			name:        "high stdev is volatile regardless of trend",
			prices:      []float64{100, 130, 70, 140, 60, 150, 50},
			latestClose: 150,
			want:        types.RegimeVolatile,
		},
		{
			name:        "low stdev is calm",
			prices:      []float64{100, 100.5, 99.8, 100.2, 100.1, 99.9, 100},
			latestClose: 100,
			want:        types.RegimeCalm,
		},
		{
			// Newest-first arithmetic run: index 0 (latest close) is the
			// highest price, trending down to the oldest. Spread is wide
			// enough to clear the calm threshold but narrow enough to stay
			// under the volatile one.
			name: "close above both SMAs with moderate stdev is trending",
			prices: []float64{
				114.5, 114.0, 113.5, 113.0, 112.5, 112.0, 111.5, 111.0, 110.5, 110.0,
				109.5, 109.0, 108.5, 108.0, 107.5, 107.0, 106.5, 106.0, 105.5, 105.0,
				104.5, 104.0, 103.5, 103.0, 102.5, 102.0, 101.5, 101.0, 100.5, 100.0,
			},
			latestClose: 114.5,
			want:        types.RegimeTrending,
		},
		{
			name:        "moderate stdev without trend condition is ranging",
			prices:      []float64{100, 108, 95, 106, 97, 104, 96},
			latestClose: 100,
			want:        types.RegimeRanging,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := c.Classify(tt.prices, tt.latestClose)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestStdevAndSMAHelpers(t *testing.T) {
	assert.Equal(t, 0.0, stdev(nil))
	assert.Equal(t, 0.0, sma(nil, 5))
	assert.InDelta(t, 2.0, sma([]float64{1, 2, 3}, 10), 0.0001)
}
