package scheduler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/marketintel/decisiond/pkg/types"
)

func TestNextInterval_SessionOverridesWinOverRegime(t *testing.T) {
	cfg := types.DefaultTempoConfig()

	assert.Equal(t, 30*time.Minute, nextInterval(cfg, types.RegimeVolatile, types.SessionOffHours))
	assert.Equal(t, 15*time.Minute, nextInterval(cfg, types.RegimeVolatile, types.SessionMiddayConsolidation))
}

func TestNextInterval_VolatileUnderOpeningBurst(t *testing.T) {
	cfg := types.DefaultTempoConfig()

	got := nextInterval(cfg, types.RegimeVolatile, types.SessionOpeningBurst)
	assert.Equal(t, 30*time.Second, got)
}

func TestNextInterval_RegimeBuckets(t *testing.T) {
	cfg := types.DefaultTempoConfig()

	cases := []struct {
		regime types.MarketRegime
		want   time.Duration
	}{
		{types.RegimeTrending, 2 * time.Minute},
		{types.RegimeRanging, 5 * time.Minute},
		{types.RegimeCalm, 10 * time.Minute},
		{types.RegimeUnknown, 5 * time.Minute},
	}
	for _, c := range cases {
		got := nextInterval(cfg, c.regime, types.SessionPowerHour)
		assert.Equal(t, c.want, got, "regime %s", c.regime)
	}
}
