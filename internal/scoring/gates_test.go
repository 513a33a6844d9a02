package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/marketintel/decisiond/pkg/types"
)

func TestGateChain_CleanOpeningBuyPassesAllGates(t *testing.T) {
	in := GateInput{
		StrategistSignal:     types.SignalBuy,
		StrategistConfidence: 0.78,
		ConsensusSignal:      types.SignalBuy,
		ConsensusConfidence:  0.70,
		Session:              types.SessionOpeningBurst,
		Regime:               types.RegimeTrending,
		Bias:                 types.BiasStrongBullish,
		DivergenceFlag:       false,
		DivergenceStreak:     0,
		Config:               types.DefaultGateConfig(),
	}

	out := GateChain{}.Run(in)

	assert.Equal(t, types.SignalBuy, out.Signal)
	assert.InDelta(t, 0.78, out.Confidence, 0.0001)
	assert.Empty(t, out.Reasoning)
	assert.False(t, out.DivergenceFlag)
}

func TestGateChain_DivergenceOverrideReplacesSignalWithConsensus(t *testing.T) {
	in := GateInput{
		StrategistSignal:     types.SignalBuy,
		StrategistConfidence: 0.70,
		ConsensusSignal:      types.SignalSell,
		ConsensusConfidence:  0.80,
		Session:              types.SessionOpeningBurst,
		Regime:               types.RegimeVolatile,
		Bias:                 types.BiasNeutral, // not bearish -> BiasGate should force WATCH
		DivergenceFlag:       true,
		DivergenceStreak:     2,
		Config:               types.DefaultGateConfig(),
	}

	out := GateChain{}.Run(in)

	// AuthorityChain replaces signal/confidence with consensus values first.
	// BiasGate then downgrades SELL (bias is not bearish family) to WATCH.
	assert.Equal(t, types.SignalWatch, out.Signal)
	assert.True(t, out.DivergenceFlag)
	assert.Contains(t, out.Reasoning, "[OVERRIDE: ConsensusAuthority]")
}

func TestGateChain_QuietMiddaySessionForcesWatch(t *testing.T) {
	in := GateInput{
		StrategistSignal:     types.SignalBuy,
		StrategistConfidence: 0.82,
		ConsensusSignal:      types.SignalBuy,
		ConsensusConfidence:  0.60,
		Session:              types.SessionMiddayConsolidation,
		Regime:               types.RegimeCalm,
		Bias:                 types.BiasBullish,
		DivergenceFlag:       false,
		DivergenceStreak:     0,
		Config:               types.DefaultGateConfig(),
	}

	out := GateChain{}.Run(in)

	assert.Equal(t, types.SignalWatch, out.Signal)
	assert.Contains(t, out.Reasoning, "[GATE: SessionGate->WATCH]")
}

func TestGateChain_OffHoursForcesHold(t *testing.T) {
	in := GateInput{
		StrategistSignal:     types.SignalSell,
		StrategistConfidence: 0.90,
		ConsensusSignal:      types.SignalSell,
		ConsensusConfidence:  0.90,
		Session:              types.SessionOffHours,
		Regime:               types.RegimeCalm,
		Bias:                 types.BiasStrongBearish,
		DivergenceFlag:       false,
		Config:               types.DefaultGateConfig(),
	}

	out := GateChain{}.Run(in)

	assert.Equal(t, types.SignalHold, out.Signal)
}

func TestGateChain_DivergencePenaltyDiscountsConfidence(t *testing.T) {
	in := GateInput{
		StrategistSignal:     types.SignalWatch,
		StrategistConfidence: 0.90,
		ConsensusSignal:      types.SignalHold,
		ConsensusConfidence:  0.10, // below override threshold, AuthorityChain won't fire
		Session:              types.SessionOpeningBurst,
		Regime:               types.RegimeTrending,
		Bias:                 types.BiasBullish,
		DivergenceFlag:       true,
		DivergenceStreak:     0,
		Config:               types.DefaultGateConfig(),
	}

	out := GateChain{}.Run(in)

	assert.InDelta(t, 0.90*0.85, out.Confidence, 0.0001)
	assert.Contains(t, out.Reasoning, "[PENALTY: Divergence]")
}

func TestGateChain_DivergencePenaltyFloorsConfidence(t *testing.T) {
	in := GateInput{
		StrategistSignal:     types.SignalWatch,
		StrategistConfidence: 0.50,
		ConsensusSignal:      types.SignalHold,
		ConsensusConfidence:  0.10,
		Session:              types.SessionOpeningBurst,
		Regime:               types.RegimeTrending,
		Bias:                 types.BiasBullish,
		DivergenceFlag:       true,
		DivergenceStreak:     0,
		Config:               types.DefaultGateConfig(),
	}

	out := GateChain{}.Run(in)

	assert.GreaterOrEqual(t, out.Confidence, types.DefaultGateConfig().DivergencePenaltyFloor)
}

func TestGateChain_DivergenceStreakForcesWatch(t *testing.T) {
	in := GateInput{
		StrategistSignal:     types.SignalWatch,
		StrategistConfidence: 0.90,
		ConsensusSignal:      types.SignalHold,
		ConsensusConfidence:  0.10,
		Session:              types.SessionOpeningBurst,
		Regime:               types.RegimeTrending,
		Bias:                 types.BiasBullish,
		DivergenceFlag:       true,
		DivergenceStreak:     2,
		Config:               types.DefaultGateConfig(),
	}

	out := GateChain{}.Run(in)

	assert.Equal(t, types.SignalWatch, out.Signal)
	assert.Contains(t, out.Reasoning[len(out.Reasoning)-1], "DivergenceStreak")
}

func TestGateChain_MultiFilterRejectsLowConfidenceBuy(t *testing.T) {
	in := GateInput{
		StrategistSignal:     types.SignalBuy,
		StrategistConfidence: 0.50,
		ConsensusSignal:      types.SignalBuy,
		ConsensusConfidence:  0.50,
		Session:              types.SessionOpeningBurst,
		Regime:               types.RegimeTrending,
		Bias:                 types.BiasStrongBullish,
		DivergenceFlag:       false,
		Config:               types.DefaultGateConfig(),
	}

	out := GateChain{}.Run(in)

	assert.Equal(t, types.SignalWatch, out.Signal)
}

func TestGateChain_EligibilityGuardRejectsSellOutsideVolatileOpeningBurst(t *testing.T) {
	in := GateInput{
		StrategistSignal:     types.SignalSell,
		StrategistConfidence: 0.80,
		ConsensusSignal:      types.SignalSell,
		ConsensusConfidence:  0.80,
		Session:              types.SessionPowerHour, // wrong session for SELL eligibility
		Regime:               types.RegimeVolatile,
		Bias:                 types.BiasStrongBearish,
		DivergenceFlag:       false,
		Config:               types.DefaultGateConfig(),
	}

	out := GateChain{}.Run(in)

	assert.Equal(t, types.SignalWatch, out.Signal)
}

func TestGateChain_NeverUpgradesPastStrategistSignalOnDowngrade(t *testing.T) {
	// AuthorityChain must never let a WATCH consensus upgrade a HOLD strategist.
	in := GateInput{
		StrategistSignal:     types.SignalHold,
		StrategistConfidence: 0.40,
		ConsensusSignal:      types.SignalWatch,
		ConsensusConfidence:  0.90,
		Session:              types.SessionOpeningBurst,
		Regime:               types.RegimeTrending,
		Bias:                 types.BiasBullish,
		DivergenceFlag:       true,
		DivergenceStreak:     0,
		Config:               types.DefaultGateConfig(),
	}

	out := GateChain{}.Run(in)

	assert.Equal(t, types.SignalHold, out.Signal)
}
