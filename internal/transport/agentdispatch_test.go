package transport

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/marketintel/decisiond/internal/pipeline"
	"github.com/marketintel/decisiond/pkg/types"
)

func TestAgentDispatchClient_DecodesResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "trace-1", r.Header.Get("X-Trace-Id"))
		var body agentDispatchRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "AAPL", body.Symbol)

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode([]types.AnalysisResult{
			{AgentName: "trend", Signal: types.SignalBuy, Confidence: 0.7},
		})
	}))
	defer srv.Close()

	client := NewAgentDispatchClient(zap.NewNop(), srv.Client(), srv.URL)
	results, err := client.Dispatch(context.Background(), pipeline.AgentRequest{
		Symbol: "AAPL", Timestamp: time.Now().Format(time.RFC3339), Prices: []float64{100, 101}, TraceID: "trace-1",
	})

	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, types.SignalBuy, results[0].Signal)
}

func TestAgentDispatchClient_StampsLatencyWhenAgentOmitsIt(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode([]types.AnalysisResult{
			{AgentName: "trend", Signal: types.SignalBuy, Confidence: 0.7},
			{AgentName: "momentum", Signal: types.SignalHold, Confidence: 0.5, Metadata: map[string]any{"latencyMs": 42.0}},
		})
	}))
	defer srv.Close()

	client := NewAgentDispatchClient(zap.NewNop(), srv.Client(), srv.URL)
	results, err := client.Dispatch(context.Background(), pipeline.AgentRequest{Symbol: "AAPL", TraceID: "trace-3"})

	require.NoError(t, err)
	require.Len(t, results, 2)

	latency, ok := results[0].Metadata["latencyMs"].(float64)
	require.True(t, ok, "dispatch client should backfill latencyMs as a float64")
	assert.GreaterOrEqual(t, latency, 0.0)

	assert.Equal(t, 42.0, results[1].Metadata["latencyMs"], "an agent-reported latency must not be overwritten")
}

func TestAgentDispatchClient_NonOKStatusIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	client := NewAgentDispatchClient(zap.NewNop(), srv.Client(), srv.URL)
	_, err := client.Dispatch(context.Background(), pipeline.AgentRequest{Symbol: "AAPL", TraceID: "trace-2"})

	require.Error(t, err)
}
