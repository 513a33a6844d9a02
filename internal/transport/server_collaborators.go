package transport

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/marketintel/decisiond/pkg/types"
)

// ControlPipeline is the subset of the orchestration pipeline the control
// API drives directly via POST /orchestrate.
type ControlPipeline interface {
	Orchestrate(ctx context.Context, trigger types.Trigger, replayMode bool) (types.FinalDecision, error)
}

// ControlStore is the subset of the feedback & projection store the control
// API reads and writes. Implemented by internal/store.Store.
type ControlStore interface {
	FindLatestPerSymbol(ctx context.Context) ([]types.SnapshotProjection, error)
	GetAgentPerformance(ctx context.Context) (map[string]types.AgentPerformanceModel, error)
	GetAgentFeedback(ctx context.Context) (map[string]types.AgentFeedback, error)
	GetDecisionMetrics(ctx context.Context, symbol string) (types.DecisionMetricsProjection, error)
	GetLatestRegime(ctx context.Context, symbol string) (types.MarketRegime, error)
	GetRecentDecisions(ctx context.Context, symbol string, limit int) ([]types.MemoryEntry, error)
	GetUnresolvedDecisions(ctx context.Context, symbol string, sinceMins int) ([]types.DecisionRecord, error)
	RecordOutcome(ctx context.Context, traceID string, outcomePercent float64, holdMinutes int) error
	ResolveOutcomes(ctx context.Context, symbol string, currentPrice decimal.Decimal) error
	Save(ctx context.Context, decision types.FinalDecision, mode types.DecisionMode) (types.DecisionRecord, error)
	SubscribeSnapshots() (<-chan types.SnapshotProjection, func())
}
