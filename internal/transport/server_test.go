package transport

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/marketintel/decisiond/pkg/types"
)

type fakeControlPipeline struct {
	decision types.FinalDecision
	err      error
}

func (f fakeControlPipeline) Orchestrate(ctx context.Context, trigger types.Trigger, replayMode bool) (types.FinalDecision, error) {
	return f.decision, f.err
}

type fakeControlStore struct{}

func (fakeControlStore) FindLatestPerSymbol(ctx context.Context) ([]types.SnapshotProjection, error) {
	return []types.SnapshotProjection{{Symbol: "AAPL"}}, nil
}
func (fakeControlStore) GetAgentPerformance(ctx context.Context) (map[string]types.AgentPerformanceModel, error) {
	return map[string]types.AgentPerformanceModel{}, nil
}
func (fakeControlStore) GetAgentFeedback(ctx context.Context) (map[string]types.AgentFeedback, error) {
	return map[string]types.AgentFeedback{}, nil
}
func (fakeControlStore) GetDecisionMetrics(ctx context.Context, symbol string) (types.DecisionMetricsProjection, error) {
	return types.DecisionMetricsProjection{Symbol: symbol}, nil
}
func (fakeControlStore) GetLatestRegime(ctx context.Context, symbol string) (types.MarketRegime, error) {
	return types.RegimeCalm, nil
}
func (fakeControlStore) GetRecentDecisions(ctx context.Context, symbol string, limit int) ([]types.MemoryEntry, error) {
	return []types.MemoryEntry{
		{FinalSignal: types.SignalBuy, Confidence: 0.8, Regime: types.RegimeCalm},
		{FinalSignal: types.SignalBuy, Confidence: 0.75, Regime: types.RegimeCalm},
		{FinalSignal: types.SignalBuy, Confidence: 0.7, Regime: types.RegimeCalm},
	}, nil
}
func (fakeControlStore) GetUnresolvedDecisions(ctx context.Context, symbol string, sinceMins int) ([]types.DecisionRecord, error) {
	return nil, nil
}
func (fakeControlStore) RecordOutcome(ctx context.Context, traceID string, outcomePercent float64, holdMinutes int) error {
	return nil
}
func (fakeControlStore) ResolveOutcomes(ctx context.Context, symbol string, currentPrice decimal.Decimal) error {
	return nil
}
func (fakeControlStore) Save(ctx context.Context, decision types.FinalDecision, mode types.DecisionMode) (types.DecisionRecord, error) {
	return types.DecisionRecord{FinalDecision: decision, DecisionMode: mode}, nil
}
func (fakeControlStore) SubscribeSnapshots() (<-chan types.SnapshotProjection, func()) {
	ch := make(chan types.SnapshotProjection)
	return ch, func() {}
}

func newTestServer() *Server {
	return New(Config{
		Logger:   zap.NewNop(),
		Pipeline: fakeControlPipeline{decision: types.FinalDecision{TraceID: "trace-1", FinalSignal: types.SignalBuy}},
		Store:    fakeControlStore{},
	})
}

func TestServer_HandleOrchestrate(t *testing.T) {
	srv := newTestServer()
	body := `{"symbol":"AAPL"}`
	req := httptest.NewRequest(http.MethodPost, "/orchestrate", strings.NewReader(body))
	w := httptest.NewRecorder()

	srv.router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var decision types.FinalDecision
	require.NoError(t, json.NewDecoder(w.Body).Decode(&decision))
	assert.Equal(t, types.SignalBuy, decision.FinalSignal)
}

func TestServer_HandleSnapshot(t *testing.T) {
	srv := newTestServer()
	req := httptest.NewRequest(http.MethodGet, "/decisions/snapshot", nil)
	w := httptest.NewRecorder()

	srv.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestServer_HandleMarketState(t *testing.T) {
	srv := newTestServer()
	req := httptest.NewRequest(http.MethodGet, "/market-state/AAPL", nil)
	w := httptest.NewRecorder()

	srv.router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var out map[string]any
	require.NoError(t, json.NewDecoder(w.Body).Decode(&out))
	assert.Equal(t, "AAPL", out["symbol"])
}

func TestServer_HandleHealthzWithoutChecker(t *testing.T) {
	srv := newTestServer()
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	w := httptest.NewRecorder()

	srv.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}
