package pipeline

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/marketintel/decisiond/pkg/types"
)

// MarketDataClient fetches the latest quote and recent close window for a
// symbol. Implemented by internal/marketdata.
type MarketDataClient interface {
	Quote(ctx context.Context, symbol string) (types.Quote, error)
}

// AgentRequest is the payload sent to the agent dispatch collaborator.
type AgentRequest struct {
	Symbol    string
	Timestamp string
	Prices    []float64
	TraceID   string
}

// AgentDispatcher calls out to the external multi-agent analysis service.
// Implemented by internal/transport.
type AgentDispatcher interface {
	Dispatch(ctx context.Context, req AgentRequest) ([]types.AnalysisResult, error)
}

// Strategist evaluates the enriched decision context, either via the LLM or
// its deterministic rule-based fallback. Implemented by internal/strategist.
type Strategist interface {
	Evaluate(ctx context.Context, dc types.DecisionContext, memory []types.MemoryEntry, peakMode bool) types.StrategistDecision
}

// NotificationSink fire-and-forget dispatches a final decision downstream.
// Implemented by internal/transport.
type NotificationSink interface {
	Notify(ctx context.Context, decision types.FinalDecision)
}

// MetricsRecorder is the subset of obs.Metrics the pipeline reports against.
// Optional: a nil Metrics field in Config disables all recording.
type MetricsRecorder interface {
	ObserveStage(stage string, d time.Duration)
	RecordDecision(signal string)
	RecordGateFire(gate string)
}

// FeedbackStore is the subset of internal/store's Store the pipeline
// depends on, named here so the pipeline package can be tested against a
// fake without importing the store package.
type FeedbackStore interface {
	ResolveOutcomes(ctx context.Context, symbol string, currentPrice decimal.Decimal) error
	GetAgentPerformance(ctx context.Context) (map[string]types.AgentPerformanceModel, error)
	GetAgentFeedback(ctx context.Context) (map[string]types.AgentFeedback, error)
	GetRecentDecisions(ctx context.Context, symbol string, limit int) ([]types.MemoryEntry, error)
	Save(ctx context.Context, decision types.FinalDecision, mode types.DecisionMode) (types.DecisionRecord, error)
}
