package scoring

import (
	"fmt"

	"github.com/marketintel/decisiond/pkg/types"
)

// GateInput is the discipline gate chain's read-only view of one decision in
// progress. DivergenceFlag reflects the pre-gate strategist/consensus
// disagreement and is never altered by the chain.
type GateInput struct {
	StrategistSignal     types.Signal
	StrategistConfidence float64
	ConsensusSignal      types.Signal
	ConsensusConfidence  float64
	Session              types.TradingSession
	Regime               types.MarketRegime
	Bias                 types.DirectionalBias
	DivergenceFlag       bool
	DivergenceStreak     int
	Config               types.GateConfig
}

// GateOutput is the mutable (signal, confidence, reasoning) triple the chain
// threads through each gate, plus the unaltered pre-gate divergence flag.
type GateOutput struct {
	Signal         types.Signal
	Confidence     float64
	Reasoning      []string
	DivergenceFlag bool
}

// GateChain applies the platform's discipline gates in a fixed order. Each
// gate operates on the output of the previous one; a gate that fires appends
// a tag to Reasoning but never clears a tag a prior gate appended.
type GateChain struct{}

// Run executes the full chain: AuthorityChain, SessionGate, BiasGate,
// DivergencePenalty, MultiFilter, EligibilityGuard.
func (GateChain) Run(in GateInput) GateOutput {
	out := GateOutput{
		Signal:         in.StrategistSignal,
		Confidence:     in.StrategistConfidence,
		DivergenceFlag: in.DivergenceFlag,
	}

	out = authorityChain(in, out)
	out = sessionGate(in, out)
	out = biasGate(in, out)
	out = divergencePenalty(in, out)
	out = multiFilter(in, out)
	out = eligibilityGuard(in, out)

	return out
}

// authorityChain lets consensus force a downgrade-only override of the
// strategist's signal: never an upgrade. Activity ordering is
// HOLD < WATCH < {BUY, SELL}, per types.Signal.MoreActiveThan.
func authorityChain(in GateInput, out GateOutput) GateOutput {
	if !in.DivergenceFlag {
		return out
	}
	if in.ConsensusConfidence < in.Config.ConsensusOverrideMinConf {
		return out
	}
	if in.ConsensusSignal.MoreActiveThan(in.StrategistSignal) {
		return out
	}

	out.Signal = in.ConsensusSignal
	out.Confidence = in.ConsensusConfidence
	out.Reasoning = append(out.Reasoning, "[OVERRIDE: ConsensusAuthority]")
	return out
}

// sessionGate forces inactive-session BUY/SELL down to WATCH (OFF_HOURS goes
// all the way to HOLD).
func sessionGate(in GateInput, out GateOutput) GateOutput {
	if out.Signal != types.SignalBuy && out.Signal != types.SignalSell {
		return out
	}

	switch in.Session {
	case types.SessionOffHours:
		out.Signal = types.SignalHold
		out.Reasoning = append(out.Reasoning, "[GATE: SessionGate->HOLD]")
	case types.SessionMiddayConsolidation:
		out.Signal = types.SignalWatch
		out.Reasoning = append(out.Reasoning, "[GATE: SessionGate->WATCH]")
	}
	return out
}

// biasGate requires BUY to be backed by a bullish-family bias and SELL by a
// bearish-family bias.
func biasGate(in GateInput, out GateOutput) GateOutput {
	switch out.Signal {
	case types.SignalBuy:
		if !in.Bias.BullishFamily() {
			out.Signal = types.SignalWatch
			out.Reasoning = append(out.Reasoning, "[GATE: BiasGate->WATCH]")
		}
	case types.SignalSell:
		if !in.Bias.BearishFamily() {
			out.Signal = types.SignalWatch
			out.Reasoning = append(out.Reasoning, "[GATE: BiasGate->WATCH]")
		}
	}
	return out
}

// divergencePenalty discounts confidence on disagreement and forces WATCH
// once the streak reaches the configured force threshold.
func divergencePenalty(in GateInput, out GateOutput) GateOutput {
	if !in.DivergenceFlag {
		return out
	}

	out.Confidence = clampMin(out.Confidence*in.Config.DivergencePenaltyFactor, in.Config.DivergencePenaltyFloor)
	out.Reasoning = append(out.Reasoning, "[PENALTY: Divergence]")

	if in.DivergenceStreak >= in.Config.DivergenceStreakForce {
		out.Signal = types.SignalWatch
		out.Reasoning = append(out.Reasoning, fmt.Sprintf("[GATE: DivergenceStreak>=%d->WATCH]", in.Config.DivergenceStreakForce))
	}
	return out
}

// multiFilter forces WATCH on low confidence, any divergence, or an inactive
// session.
func multiFilter(in GateInput, out GateOutput) GateOutput {
	if out.Confidence < in.Config.MinConfidenceThreshold || in.DivergenceFlag || !in.Session.Active() {
		if out.Signal == types.SignalBuy || out.Signal == types.SignalSell {
			out.Signal = types.SignalWatch
			out.Reasoning = append(out.Reasoning, "[GATE: MultiFilter->WATCH]")
		}
	}
	return out
}

// eligibilityGuard is the hard final check before a BUY or SELL can reach the
// caller.
func eligibilityGuard(in GateInput, out GateOutput) GateOutput {
	switch out.Signal {
	case types.SignalBuy:
		if !(in.Session == types.SessionOpeningBurst || in.Session == types.SessionPowerHour) ||
			!(in.Regime == types.RegimeVolatile || in.Regime == types.RegimeTrending) ||
			!in.Bias.BullishFamily() ||
			out.Confidence < in.Config.MinConfidenceThreshold ||
			in.DivergenceFlag {
			out.Signal = types.SignalWatch
			out.Reasoning = append(out.Reasoning, "[GATE: EligibilityGuard->WATCH]")
		}
	case types.SignalSell:
		if in.Session != types.SessionOpeningBurst ||
			in.Regime != types.RegimeVolatile ||
			!in.Bias.BearishFamily() ||
			out.Confidence < in.Config.MinConfidenceThreshold ||
			in.DivergenceFlag {
			out.Signal = types.SignalWatch
			out.Reasoning = append(out.Reasoning, "[GATE: EligibilityGuard->WATCH]")
		}
	}
	return out
}
