package pipeline

import (
	"context"
	"sync/atomic"

	"github.com/shopspring/decimal"

	"github.com/marketintel/decisiond/pkg/types"
)

type fakeMarketData struct {
	quote types.Quote
	err   error
}

func (f fakeMarketData) Quote(ctx context.Context, symbol string) (types.Quote, error) {
	return f.quote, f.err
}

type fakeAgents struct {
	results []types.AnalysisResult
	err     error
}

func (f fakeAgents) Dispatch(ctx context.Context, req AgentRequest) ([]types.AnalysisResult, error) {
	return f.results, f.err
}

type fakeStrategist struct {
	decision types.StrategistDecision
	calls    atomic.Int32
}

func (f *fakeStrategist) Evaluate(ctx context.Context, dc types.DecisionContext, memory []types.MemoryEntry, peakMode bool) types.StrategistDecision {
	f.calls.Add(1)
	return f.decision
}

type savedCall struct {
	decision types.FinalDecision
	mode     types.DecisionMode
}

type fakeStore struct {
	recent  []types.MemoryEntry
	savedCh chan savedCall
}

func newFakeStore() *fakeStore {
	return &fakeStore{savedCh: make(chan savedCall, 1)}
}

func (f *fakeStore) ResolveOutcomes(ctx context.Context, symbol string, currentPrice decimal.Decimal) error {
	return nil
}

func (f *fakeStore) GetAgentPerformance(ctx context.Context) (map[string]types.AgentPerformanceModel, error) {
	return nil, nil
}

func (f *fakeStore) GetAgentFeedback(ctx context.Context) (map[string]types.AgentFeedback, error) {
	return nil, nil
}

func (f *fakeStore) GetRecentDecisions(ctx context.Context, symbol string, limit int) ([]types.MemoryEntry, error) {
	return f.recent, nil
}

func (f *fakeStore) Save(ctx context.Context, decision types.FinalDecision, mode types.DecisionMode) (types.DecisionRecord, error) {
	record := types.DecisionRecord{FinalDecision: decision, DecisionMode: mode}
	f.savedCh <- savedCall{decision: decision, mode: mode}
	return record, nil
}

type fakeNotifier struct {
	notifiedCh chan types.FinalDecision
}

func newFakeNotifier() *fakeNotifier {
	return &fakeNotifier{notifiedCh: make(chan types.FinalDecision, 1)}
}

func (f *fakeNotifier) Notify(ctx context.Context, decision types.FinalDecision) {
	f.notifiedCh <- decision
}
