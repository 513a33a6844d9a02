// Package types provides the domain model shared across the decision-intelligence
// platform: signals, market classification enums, and the decision records that
// flow from the orchestration pipeline into the feedback store.
package types

import (
	"time"

	"github.com/shopspring/decimal"
)

// Signal is the four-way trade signal every agent, the strategist, and the
// consensus engine produce.
type Signal string

const (
	SignalBuy   Signal = "BUY"
	SignalSell  Signal = "SELL"
	SignalHold  Signal = "HOLD"
	SignalWatch Signal = "WATCH"
)

// Valid reports whether s is one of the four recognised signal values.
func (s Signal) Valid() bool {
	switch s {
	case SignalBuy, SignalSell, SignalHold, SignalWatch:
		return true
	default:
		return false
	}
}

// activityRank externalises the "HOLD < WATCH < BUY/SELL" ordering the gate
// chain depends on (spec Open Questions: this was inferred, not explicit, in
// the source — made an explicit table here rather than an inline comparison).
var activityRank = map[Signal]int{
	SignalHold:  0,
	SignalWatch: 1,
	SignalBuy:   2,
	SignalSell:  2,
}

// MoreActiveThan reports whether s ranks strictly above other on the
// HOLD < WATCH < {BUY,SELL} activity ordering.
func (s Signal) MoreActiveThan(other Signal) bool {
	return activityRank[s] > activityRank[other]
}

// MarketRegime classifies recent price behaviour for a symbol.
type MarketRegime string

const (
	RegimeTrending MarketRegime = "TRENDING"
	RegimeRanging  MarketRegime = "RANGING"
	RegimeVolatile MarketRegime = "VOLATILE"
	RegimeCalm     MarketRegime = "CALM"
	RegimeUnknown  MarketRegime = "UNKNOWN"
)

// TradingSession is a pure function of wall-clock time in a configured zone.
type TradingSession string

const (
	SessionOpeningBurst        TradingSession = "OPENING_BURST"
	SessionPowerHour           TradingSession = "POWER_HOUR"
	SessionMiddayConsolidation TradingSession = "MIDDAY_CONSOLIDATION"
	SessionOffHours            TradingSession = "OFF_HOURS"
)

// Active reports whether BUY/SELL signals are eligible to survive the gate
// chain during this session.
func (s TradingSession) Active() bool {
	return s == SessionOpeningBurst || s == SessionPowerHour
}

// MarketState summarises a short window of recent decisions for a symbol.
type MarketState string

const (
	StateCalm       MarketState = "CALM"
	StateBuilding   MarketState = "BUILDING"
	StateConfirmed  MarketState = "CONFIRMED"
	StateWeakening  MarketState = "WEAKENING"
)

// DirectionalBias is a five-point ordinal derived by majority vote among
// trend indicators.
type DirectionalBias string

const (
	BiasStrongBullish DirectionalBias = "STRONG_BULLISH"
	BiasBullish       DirectionalBias = "BULLISH"
	BiasNeutral       DirectionalBias = "NEUTRAL"
	BiasBearish       DirectionalBias = "BEARISH"
	BiasStrongBearish DirectionalBias = "STRONG_BEARISH"
)

// BullishFamily reports whether the bias is bullish-leaning enough to
// support a BUY signal.
func (b DirectionalBias) BullishFamily() bool {
	return b == BiasBullish || b == BiasStrongBullish
}

// BearishFamily reports whether the bias is bearish-leaning enough to
// support a SELL signal.
func (b DirectionalBias) BearishFamily() bool {
	return b == BiasBearish || b == BiasStrongBearish
}

// TradeDirection is the position sense implied by a final decision.
type TradeDirection string

const (
	DirectionLong TradeDirection = "LONG"
	DirectionShort TradeDirection = "SHORT"
	DirectionFlat TradeDirection = "FLAT"
)

// AgentCapability replaces name-substring matching for the regime-boost
// lookup table: agents declare a capability, not a name pattern.
type AgentCapability string

const (
	CapabilityTrend      AgentCapability = "TREND"
	CapabilityRisk       AgentCapability = "RISK"
	CapabilityPortfolio  AgentCapability = "PORTFOLIO"
	CapabilityDiscipline AgentCapability = "DISCIPLINE"
)

// DecisionMode tags whether a persisted row participates in the learning
// loop (LIVE) or was produced by the replay harness (REPLAY_CONSENSUS_ONLY).
type DecisionMode string

const (
	ModeLive                  DecisionMode = "LIVE"
	ModeReplayConsensusOnly   DecisionMode = "REPLAY_CONSENSUS_ONLY"
)

// OutcomeLabel qualifies a resolved trade outcome.
type OutcomeLabel string

const (
	OutcomeTargetHit OutcomeLabel = "TARGET_HIT"
	OutcomeStopOut   OutcomeLabel = "STOP_OUT"
	OutcomeFastWin   OutcomeLabel = "FAST_WIN"
	OutcomeSlowWin   OutcomeLabel = "SLOW_WIN"
	OutcomeNoEdge    OutcomeLabel = "NO_EDGE"
)

// Trigger is the immutable unit of work the scheduler hands to the
// orchestration pipeline. Consumed exactly once.
type Trigger struct {
	Symbol      string    `json:"symbol"`
	TriggeredAt time.Time `json:"triggeredAt"`
	TraceID     string    `json:"traceId"`
}

// AnalysisResult is one agent's contribution for one cycle.
type AnalysisResult struct {
	AgentName  string         `json:"agentName"`
	Summary    string         `json:"summary"`
	Signal     Signal         `json:"signal"`
	Confidence float64        `json:"confidence"`
	Metadata   map[string]any `json:"metadata"`
}

// Quote is the market-data provider's point-in-time response for a symbol.
type Quote struct {
	Symbol             string          `json:"symbol"`
	LatestClose        decimal.Decimal `json:"latestClose"`
	Open                decimal.Decimal `json:"open"`
	High                decimal.Decimal `json:"high"`
	Low                 decimal.Decimal `json:"low"`
	Volume              decimal.Decimal `json:"volume"`
	RecentClosingPrices []float64       `json:"recentClosingPrices"` // newest-first, <=50
	FetchedAt           time.Time       `json:"fetchedAt"`
}

// StrategistDecision is returned by the primary LLM strategist or its
// deterministic rule-based fallback.
type StrategistDecision struct {
	FinalSignal          Signal           `json:"finalSignal"`
	Confidence            float64          `json:"confidence"`
	Reasoning             string           `json:"reasoning"`
	EntryPrice            *decimal.Decimal `json:"entryPrice,omitempty"`
	TargetPrice           *decimal.Decimal `json:"targetPrice,omitempty"`
	StopLoss              *decimal.Decimal `json:"stopLoss,omitempty"`
	EstimatedHoldMinutes  *int             `json:"estimatedHoldMinutes,omitempty"`
	TradeDirection        *TradeDirection  `json:"tradeDirection,omitempty"`
	UsedFallback          bool             `json:"usedFallback"`
	ModelLabel            string           `json:"modelLabel"`
}

// ConsensusResult is the performance-weighted guardrail output.
type ConsensusResult struct {
	FinalSignal         Signal             `json:"finalSignal"`
	NormalizedConfidence float64           `json:"normalizedConfidence"`
	PerAgentWeights     map[string]float64 `json:"perAgentWeights"`
}

// MemoryEntry is the 4-field strategy-memory projection read from the store.
type MemoryEntry struct {
	FinalSignal    Signal       `json:"finalSignal"`
	Confidence     float64      `json:"confidence"`
	DivergenceFlag bool         `json:"divergenceFlag"`
	Regime         MarketRegime `json:"regime"`
}

// DecisionContext is the pipeline-local, immutable, copy-on-enrich state
// threaded through one trigger's processing. Never shared across concurrent
// triggers; enrichment methods return a new value rather than mutating.
type DecisionContext struct {
	// Pre-strategy fields.
	Symbol          string
	Timestamp       time.Time
	TraceID         string
	Regime          MarketRegime
	TradingSession  TradingSession
	LatestClose     decimal.Decimal
	AgentResults    []AnalysisResult
	AdaptiveWeights map[string]float64
	DirectionalBias DirectionalBias
	MomentumState   MarketState

	// Post-strategy fields, nullable until EnrichWithStrategy runs.
	StrategistDecision *StrategistDecision
	ConsensusScore     *ConsensusResult
	DivergenceFlag     *bool
	ModelLabel         string
	DivergenceStreak   int
	PeakMode           bool
}

// AssembleDecisionContext builds the pre-strategy DecisionContext, defensively
// copying agentResults and weights so later mutation of the source slices/maps
// is invisible to this context (spec [C] invariant).
func AssembleDecisionContext(
	symbol string,
	timestamp time.Time,
	traceID string,
	regime MarketRegime,
	session TradingSession,
	latestClose decimal.Decimal,
	agentResults []AnalysisResult,
	weights map[string]float64,
	bias DirectionalBias,
	momentum MarketState,
) DecisionContext {
	resultsCopy := make([]AnalysisResult, len(agentResults))
	copy(resultsCopy, agentResults)

	weightsCopy := make(map[string]float64, len(weights))
	for k, v := range weights {
		weightsCopy[k] = v
	}

	return DecisionContext{
		Symbol:          symbol,
		Timestamp:       timestamp,
		TraceID:         traceID,
		Regime:          regime,
		TradingSession:  session,
		LatestClose:     latestClose,
		AgentResults:    resultsCopy,
		AdaptiveWeights: weightsCopy,
		DirectionalBias: bias,
		MomentumState:   momentum,
	}
}

// WithStrategy returns a copy of dc enriched with post-strategy fields. dc
// itself is left untouched (copy-on-enrich, per the spec's immutability note).
func (dc DecisionContext) WithStrategy(
	decision *StrategistDecision,
	consensus *ConsensusResult,
	divergenceFlag bool,
	modelLabel string,
	divergenceStreak int,
	peakMode bool,
) DecisionContext {
	next := dc
	next.StrategistDecision = decision
	next.ConsensusScore = consensus
	next.DivergenceFlag = &divergenceFlag
	next.ModelLabel = modelLabel
	next.DivergenceStreak = divergenceStreak
	next.PeakMode = peakMode
	return next
}

// FinalDecision is the versioned, persisted output of one pipeline invocation.
const DecisionSchemaVersion = 9
const OrchestratorVersion = "decisiond-1"

type FinalDecision struct {
	Symbol               string            `json:"symbol"`
	Timestamp            time.Time         `json:"timestamp"`
	Agents               []AnalysisResult  `json:"agents"`
	FinalSignal          Signal            `json:"finalSignal"`
	Confidence           float64           `json:"confidence"`
	Metadata             map[string]any    `json:"metadata"`
	TraceID              string            `json:"traceId"`
	DecisionVersion       int               `json:"decisionVersion"`
	OrchestratorVersion   string            `json:"orchestratorVersion"`
	AgentCount            int               `json:"agentCount"`
	DecisionLatencyMs     int64             `json:"decisionLatencyMs"`
	ConsensusScore        float64           `json:"consensusScore"`
	AgentWeightSnapshot   map[string]float64 `json:"agentWeightSnapshot"`
	AdaptiveAgentWeights  map[string]float64 `json:"adaptiveAgentWeights"`
	MarketRegime          MarketRegime      `json:"marketRegime"`
	AIReasoning           string            `json:"aiReasoning"`
	DivergenceFlag        bool              `json:"divergenceFlag"`
	TradingSession        TradingSession    `json:"tradingSession"`
	EntryPrice            *decimal.Decimal  `json:"entryPrice,omitempty"`
	TargetPrice           *decimal.Decimal  `json:"targetPrice,omitempty"`
	StopLoss              *decimal.Decimal  `json:"stopLoss,omitempty"`
	EstimatedHoldMinutes  *int              `json:"estimatedHoldMinutes,omitempty"`
	TradeDirection        TradeDirection    `json:"tradeDirection"`
	DirectionalBias       DirectionalBias   `json:"directionalBias"`
}

// DecisionRecord is the persisted form of FinalDecision with store-owned
// bookkeeping and outcome-resolution fields.
type DecisionRecord struct {
	FinalDecision
	ID                  string       `json:"id"`
	SavedAt             time.Time    `json:"savedAt"`
	OutcomePercent      *float64     `json:"outcomePercent,omitempty"`
	OutcomeHoldMinutes  *int         `json:"outcomeHoldMinutes,omitempty"`
	OutcomeResolved     bool         `json:"outcomeResolved"`
	OutcomeLabel        *OutcomeLabel `json:"outcomeLabel,omitempty"`
	DecisionMode        DecisionMode `json:"decisionMode"`
}

// SnapshotProjection is the 15-field projection broadcast over SSE/WebSocket
// and served by findLatestPerSymbol.
type SnapshotProjection struct {
	Symbol          string          `json:"symbol"`
	Timestamp       time.Time       `json:"timestamp"`
	FinalSignal     Signal          `json:"finalSignal"`
	Confidence      float64         `json:"confidence"`
	MarketRegime    MarketRegime    `json:"marketRegime"`
	TradingSession  TradingSession  `json:"tradingSession"`
	DirectionalBias DirectionalBias `json:"directionalBias"`
	TradeDirection  TradeDirection  `json:"tradeDirection"`
	DivergenceFlag  bool            `json:"divergenceFlag"`
	ConsensusScore  float64         `json:"consensusScore"`
	AgentCount      int             `json:"agentCount"`
	AIReasoning     string          `json:"aiReasoning"`
	TraceID         string          `json:"traceId"`
	DecisionMode    DecisionMode    `json:"decisionMode"`
	SavedAt         time.Time       `json:"savedAt"`
}

// AgentPerformanceSnapshot is the persisted, keyed-by-agent running
// performance record driving adaptive weighting.
type AgentPerformanceSnapshot struct {
	AgentName       string  `json:"agentName"`
	TotalDecisions  int64   `json:"totalDecisions"`
	SumConfidence   float64 `json:"sumConfidence"`
	SumLatencyMs    int64   `json:"sumLatencyMs"`
	SumWins         int64   `json:"sumWins"`
}

// AvgConfidence returns the running mean confidence, or 0 when no decisions
// have been recorded yet.
func (s AgentPerformanceSnapshot) AvgConfidence() float64 {
	if s.TotalDecisions == 0 {
		return 0
	}
	return s.SumConfidence / float64(s.TotalDecisions)
}

// AvgLatencyMs returns the running mean latency in milliseconds.
func (s AgentPerformanceSnapshot) AvgLatencyMs() float64 {
	if s.TotalDecisions == 0 {
		return 0
	}
	return float64(s.SumLatencyMs) / float64(s.TotalDecisions)
}

// WinRate returns sumWins/totalDecisions, 0 when no decisions recorded.
func (s AgentPerformanceSnapshot) WinRate() float64 {
	if s.TotalDecisions == 0 {
		return 0
	}
	return float64(s.SumWins) / float64(s.TotalDecisions)
}

// AgentPerformanceModel is the read-side view returned by getAgentPerformance,
// adding the accuracy score and the cross-agent-normalized latency weight.
type AgentPerformanceModel struct {
	AgentName              string  `json:"agentName"`
	AvgConfidence          float64 `json:"avgConfidence"`
	AvgLatencyMs           float64 `json:"avgLatencyMs"`
	WinRate                float64 `json:"winRate"`
	LatencyWeight          float64 `json:"latencyWeight"`
	HistoricalAccuracyScore float64 `json:"historicalAccuracyScore"`
}

// AgentFeedback is the market-truth-weighted feedback read by the pipeline's
// ComputeAdaptiveWeights stage.
type AgentFeedback struct {
	AgentName         string  `json:"agentName"`
	WinRate           float64 `json:"winRate"`
	AvgConfidence     float64 `json:"avgConfidence"`
	NormalizedLatency float64 `json:"normalizedLatency"`
	SampleSize        int     `json:"sampleSize"`
	UsedFallback      bool    `json:"usedFallback"` // true when < min-outcomes threshold
}

// DecisionMetricsProjection is the per-symbol pre-aggregated metrics row.
type DecisionMetricsProjection struct {
	Symbol           string  `json:"symbol"`
	LastConfidence   float64 `json:"lastConfidence"`
	ConfidenceSlope5 float64 `json:"confidenceSlope5"`
	DivergenceStreak int     `json:"divergenceStreak"`
	MomentumStreak   int     `json:"momentumStreak"`
}

// EdgeConditionKey is the composite key identifying an edge condition.
type EdgeConditionKey struct {
	Session TradingSession
	Regime  MarketRegime
	Bias    DirectionalBias
	Signal  Signal
}

// EdgeCondition tracks win-rate counters for one composite key, populated
// only from LIVE-mode records.
type EdgeCondition struct {
	EdgeConditionKey
	WinCount   int64 `json:"winCount"`
	TotalCount int64 `json:"totalCount"`
}
