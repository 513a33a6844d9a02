// Package pipeline implements the orchestration pipeline (component E):
// the per-trigger flow from a raw market trigger to one persisted,
// gate-disciplined FinalDecision.
package pipeline

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/marketintel/decisiond/internal/classify"
	"github.com/marketintel/decisiond/internal/scoring"
	"github.com/marketintel/decisiond/pkg/types"
)

const maxPriceWindow = 50
const strategyMemoryWindow = 3
const momentumWindow = 8

// Orchestrator runs one trigger through the full pipeline. Safe for
// concurrent use across symbols and across concurrent triggers for the same
// symbol: all per-invocation state lives in a local DecisionContext.
type Orchestrator struct {
	logger *zap.Logger

	marketData MarketDataClient
	agents     AgentDispatcher
	strategist Strategist
	store      FeedbackStore
	notifier   NotificationSink

	regimeClassifier  classify.MarketRegimeClassifier
	sessionClassifier classify.TradingSessionClassifier
	weightCalculator  scoring.AgentScoreCalculator
	consensusEngine   scoring.ConsensusEngine
	gateChain         scoring.GateChain

	gateConfig types.GateConfig
	metrics    MetricsRecorder
}

type noopMetrics struct{}

func (noopMetrics) ObserveStage(string, time.Duration) {}
func (noopMetrics) RecordDecision(string)               {}
func (noopMetrics) RecordGateFire(string)                {}

// Config bundles the collaborators and policy thresholds an Orchestrator
// needs. All fields are required except GateConfig and Metrics, which default.
type Config struct {
	Logger            *zap.Logger
	MarketData        MarketDataClient
	Agents            AgentDispatcher
	Strategist        Strategist
	Store             FeedbackStore
	Notifier          NotificationSink
	SessionClassifier classify.TradingSessionClassifier
	GateConfig        types.GateConfig
	Metrics           MetricsRecorder
}

// New constructs an Orchestrator from its collaborators.
func New(cfg Config) *Orchestrator {
	gateConfig := cfg.GateConfig
	if gateConfig == (types.GateConfig{}) {
		gateConfig = types.DefaultGateConfig()
	}
	metrics := cfg.Metrics
	if metrics == nil {
		metrics = noopMetrics{}
	}
	return &Orchestrator{
		logger:            cfg.Logger.Named("pipeline"),
		marketData:        cfg.MarketData,
		agents:            cfg.Agents,
		strategist:        cfg.Strategist,
		store:             cfg.Store,
		notifier:          cfg.Notifier,
		regimeClassifier:  classify.NewMarketRegimeClassifier(),
		sessionClassifier: cfg.SessionClassifier,
		weightCalculator:  scoring.AgentScoreCalculator{},
		consensusEngine:   scoring.ConsensusEngine{},
		gateChain:         scoring.GateChain{},
		gateConfig:        gateConfig,
		metrics:           metrics,
	}
}

// Orchestrate runs all 16 stages for one trigger and returns exactly one
// FinalDecision, or ErrUpstreamUnavailable if market data or agent dispatch
// could not be reached.
func (o *Orchestrator) Orchestrate(ctx context.Context, trigger types.Trigger, replayMode bool) (types.FinalDecision, error) {
	start := time.Now()
	log := o.logger.With(zap.String("traceId", trigger.TraceID), zap.String("symbol", trigger.Symbol))

	// 1. FetchMarketData
	quote, err := o.marketData.Quote(ctx, trigger.Symbol)
	if err != nil {
		log.Error("fetch market data failed", zap.Error(err))
		return types.FinalDecision{}, fmt.Errorf("%w: market data: %v", ErrUpstreamUnavailable, err)
	}
	prices := quote.RecentClosingPrices
	if len(prices) > maxPriceWindow {
		prices = prices[:maxPriceWindow]
	}

	// 2. ClassifyRegime
	regime := o.regimeClassifier.Classify(prices, quote.LatestClose.InexactFloat64())
	log.Debug("classified regime", zap.String("regime", string(regime)))

	// 3. ClassifySession
	session := o.sessionClassifier.Classify(trigger.TriggeredAt)
	log.Debug("classified session", zap.String("session", string(session)))

	// 4. ResolveOpenOutcomes (fire-and-forget)
	go func() {
		resolveCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := o.store.ResolveOutcomes(resolveCtx, trigger.Symbol, quote.LatestClose); err != nil {
			log.Warn("resolve open outcomes failed", zap.Error(err))
		}
	}()

	// 5. RunAgents
	agentResults, err := o.agents.Dispatch(ctx, AgentRequest{
		Symbol:    trigger.Symbol,
		Timestamp: trigger.TriggeredAt.Format(time.RFC3339),
		Prices:    prices,
		TraceID:   trigger.TraceID,
	})
	if err != nil {
		log.Error("agent dispatch failed", zap.Error(err))
		return types.FinalDecision{}, fmt.Errorf("%w: agent dispatch: %v", ErrUpstreamUnavailable, err)
	}

	// 6. ExtractDirectionalBias
	bias := extractDirectionalBias(agentResults)

	// 7. FetchPerformance & Feedback (parallel reads, defaults on error)
	performance, feedback := o.fetchPerformanceAndFeedback(ctx, log)

	// 8. ComputeAdaptiveWeights
	weights := o.computeAdaptiveWeights(agentResults, regime, performance, feedback)

	// 10. FetchStrategyMemory (skipped in replay mode). The momentum window
	// (<=8) is a superset of the strategist's own memory window (3), so one
	// store read serves both.
	var recent []types.MemoryEntry
	if !replayMode {
		recent, err = o.store.GetRecentDecisions(ctx, trigger.Symbol, momentumWindow)
		if err != nil {
			log.Warn("fetch strategy memory failed, continuing with empty memory", zap.Error(err))
			recent = nil
		}
	}
	memory := recent
	if len(memory) > strategyMemoryWindow {
		memory = memory[:strategyMemoryWindow]
	}

	momentum := types.StateCalm
	if len(recent) > 0 {
		samples := make([]classify.DecisionSample, len(recent))
		for i, e := range recent {
			samples[i] = classify.DecisionSample{
				Signal: e.FinalSignal, Confidence: e.Confidence,
				DivergenceFlag: e.DivergenceFlag, Regime: e.Regime,
			}
		}
		momentum = classify.MomentumStateCalculator{}.Calculate(samples)
	}

	// 9. AssembleContext
	dc := types.AssembleDecisionContext(
		trigger.Symbol, trigger.TriggeredAt, trigger.TraceID,
		regime, session, quote.LatestClose, agentResults, weights, bias, momentum,
	)

	// 13. ComputeDivergenceStreak (computed ahead of step 11 since peakMode
	// needs it and it only depends on memory, not on the strategist).
	var divergenceStreak int
	if !replayMode {
		divergenceStreak = classify.LeadingDivergenceStreak(memory)
	}
	peakMode := session.Active() && regime == types.RegimeVolatile && divergenceStreak == 0

	// 11. EvaluateStrategist (skipped in replay mode)
	var strategistDecisionPtr *types.StrategistDecision
	if !replayMode {
		strategistDecision := o.strategist.Evaluate(ctx, dc, memory, peakMode)
		strategistDecisionPtr = &strategistDecision
	}

	// 12. ComputeConsensus, over the context's defensively-copied agent
	// results and weights so the gate chain and the final decision consume
	// exactly what dc captured at assembly time.
	consensus := o.consensusEngine.Compute(dc.AgentResults, dc.AdaptiveWeights)

	var divergenceFlag bool
	var modelLabel string
	if strategistDecisionPtr != nil {
		divergenceFlag = strategistDecisionPtr.FinalSignal != consensus.FinalSignal
		modelLabel = strategistDecisionPtr.ModelLabel
	}

	dc = dc.WithStrategy(strategistDecisionPtr, &consensus, divergenceFlag, modelLabel, divergenceStreak, peakMode)

	var strategistDecision types.StrategistDecision
	if dc.StrategistDecision != nil {
		strategistDecision = *dc.StrategistDecision
	}

	var finalSignal types.Signal
	var confidence float64
	if replayMode {
		finalSignal = dc.ConsensusScore.FinalSignal
		confidence = dc.ConsensusScore.NormalizedConfidence
	} else {
		finalSignal = strategistDecision.FinalSignal
		confidence = strategistDecision.Confidence
	}

	// 14. GateChain
	gateOut := o.gateChain.Run(scoring.GateInput{
		StrategistSignal:     finalSignal,
		StrategistConfidence: confidence,
		ConsensusSignal:      dc.ConsensusScore.FinalSignal,
		ConsensusConfidence:  dc.ConsensusScore.NormalizedConfidence,
		Session:              dc.TradingSession,
		Regime:               dc.Regime,
		Bias:                 dc.DirectionalBias,
		DivergenceFlag:       *dc.DivergenceFlag,
		DivergenceStreak:     dc.DivergenceStreak,
		Config:               o.gateConfig,
	})

	tradeDirection := types.DirectionFlat
	switch gateOut.Signal {
	case types.SignalBuy:
		tradeDirection = types.DirectionLong
	case types.SignalSell:
		tradeDirection = types.DirectionShort
	}

	// 15. BuildDecision, reading consensus/agent/weight state back off dc
	// rather than the pre-assembly locals.
	decision := types.FinalDecision{
		Symbol:               dc.Symbol,
		Timestamp:            trigger.TriggeredAt,
		Agents:               dc.AgentResults,
		FinalSignal:          gateOut.Signal,
		Confidence:           gateOut.Confidence,
		Metadata:             map[string]any{"reasoning": gateOut.Reasoning},
		TraceID:              dc.TraceID,
		DecisionVersion:      types.DecisionSchemaVersion,
		OrchestratorVersion:  types.OrchestratorVersion,
		AgentCount:           len(dc.AgentResults),
		DecisionLatencyMs:    time.Since(start).Milliseconds(),
		ConsensusScore:       dc.ConsensusScore.NormalizedConfidence,
		AgentWeightSnapshot:  dc.AdaptiveWeights,
		AdaptiveAgentWeights: dc.AdaptiveWeights,
		MarketRegime:         dc.Regime,
		AIReasoning:          strategistDecision.Reasoning,
		DivergenceFlag:       *dc.DivergenceFlag,
		TradingSession:       dc.TradingSession,
		EntryPrice:           strategistDecision.EntryPrice,
		TargetPrice:          strategistDecision.TargetPrice,
		StopLoss:             strategistDecision.StopLoss,
		EstimatedHoldMinutes: strategistDecision.EstimatedHoldMinutes,
		TradeDirection:       tradeDirection,
		DirectionalBias:      dc.DirectionalBias,
	}
	if dc.ModelLabel != "" {
		decision.Metadata["modelLabel"] = dc.ModelLabel
	}

	// 16. Publish (two fire-and-forget branches)
	mode := types.ModeLive
	if replayMode {
		mode = types.ModeReplayConsensusOnly
	}
	go func() {
		saveCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if _, err := o.store.Save(saveCtx, decision, mode); err != nil {
			log.Warn("persist decision failed", zap.Error(err))
		}
	}()
	go func() {
		notifyCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		o.notifier.Notify(notifyCtx, decision)
	}()

	o.metrics.ObserveStage("orchestrate", time.Since(start))
	o.metrics.RecordDecision(string(decision.FinalSignal))
	for _, gate := range firedGateNames(gateOut.Reasoning) {
		o.metrics.RecordGateFire(gate)
	}

	return decision, nil
}

// firedGateNames extracts gate identifiers from the chain's bracketed
// reasoning tags, e.g. "[GATE: SessionGate->HOLD]" -> "SessionGate".
func firedGateNames(reasoning []string) []string {
	var names []string
	for _, tag := range reasoning {
		trimmed := strings.Trim(tag, "[]")
		parts := strings.SplitN(trimmed, ":", 2)
		if len(parts) != 2 {
			continue
		}
		name := strings.TrimSpace(parts[1])
		if idx := strings.Index(name, "->"); idx != -1 {
			name = name[:idx]
		}
		names = append(names, name)
	}
	return names
}

func extractDirectionalBias(results []types.AnalysisResult) types.DirectionalBias {
	for _, r := range results {
		if raw, ok := r.Metadata["directionalBias"]; ok {
			if s, ok := raw.(string); ok {
				if bias := types.DirectionalBias(s); bias.BullishFamily() || bias.BearishFamily() || bias == types.BiasNeutral {
					return bias
				}
			}
		}
	}
	return types.BiasNeutral
}

// fetchPerformanceAndFeedback runs both store reads concurrently via
// errgroup. Neither read's failure is fatal to the pipeline: each leg
// swallows its own error into a warning log and leaves its result at its
// zero value, so g.Wait() never actually returns an error here.
func (o *Orchestrator) fetchPerformanceAndFeedback(ctx context.Context, log *zap.Logger) (map[string]types.AgentPerformanceModel, map[string]types.AgentFeedback) {
	var g errgroup.Group
	var performance map[string]types.AgentPerformanceModel
	var feedback map[string]types.AgentFeedback

	g.Go(func() error {
		p, err := o.store.GetAgentPerformance(ctx)
		if err != nil {
			log.Warn("fetch agent performance failed, using defaults", zap.Error(err))
			return nil
		}
		performance = p
		return nil
	})
	g.Go(func() error {
		f, err := o.store.GetAgentFeedback(ctx)
		if err != nil {
			log.Warn("fetch agent feedback failed, using defaults", zap.Error(err))
			return nil
		}
		feedback = f
		return nil
	})
	_ = g.Wait()

	return performance, feedback
}

func (o *Orchestrator) computeAdaptiveWeights(
	results []types.AnalysisResult,
	regime types.MarketRegime,
	performance map[string]types.AgentPerformanceModel,
	feedback map[string]types.AgentFeedback,
) map[string]float64 {
	weights := make(map[string]float64, len(results))
	for _, r := range results {
		capability := agentCapability(r)
		var perf *types.AgentPerformanceModel
		if p, ok := performance[r.AgentName]; ok {
			perf = &p
		}
		var fb *types.AgentFeedback
		if f, ok := feedback[r.AgentName]; ok {
			fb = &f
		}
		weights[r.AgentName] = o.weightCalculator.Compute(capability, regime, perf, fb)
	}
	return weights
}

// agentCapability reads the agent-declared capability out of its result
// metadata, defaulting to DISCIPLINE (no regime boost) when absent.
func agentCapability(r types.AnalysisResult) types.AgentCapability {
	if raw, ok := r.Metadata["capability"]; ok {
		if s, ok := raw.(string); ok {
			return types.AgentCapability(s)
		}
	}
	return types.CapabilityDiscipline
}
