package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/marketintel/decisiond/internal/pipeline"
	"github.com/marketintel/decisiond/pkg/types"
)

// AgentDispatchClient implements pipeline.AgentDispatcher over HTTP. A
// per-agent failure is expected to come back as a degraded AnalysisResult
// from the dispatch service itself; this client only reports an error when
// the service as a whole is unreachable or returns a malformed response.
type AgentDispatchClient struct {
	logger  *zap.Logger
	client  *http.Client
	baseURL string
}

// NewAgentDispatchClient constructs a dispatch client against baseURL.
func NewAgentDispatchClient(logger *zap.Logger, client *http.Client, baseURL string) *AgentDispatchClient {
	return &AgentDispatchClient{logger: logger.Named("agentdispatch"), client: client, baseURL: baseURL}
}

type agentDispatchRequest struct {
	Symbol    string    `json:"symbol"`
	Timestamp string    `json:"timestamp"`
	Prices    []float64 `json:"prices"`
	TraceID   string    `json:"traceId"`
}

// Dispatch implements pipeline.AgentDispatcher.
func (c *AgentDispatchClient) Dispatch(ctx context.Context, req pipeline.AgentRequest) ([]types.AnalysisResult, error) {
	body, err := json.Marshal(agentDispatchRequest{
		Symbol: req.Symbol, Timestamp: req.Timestamp, Prices: req.Prices, TraceID: req.TraceID,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal agent dispatch request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build agent dispatch request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("X-Trace-Id", req.TraceID)

	start := time.Now()
	resp, err := c.client.Do(httpReq)
	roundTripMs := float64(time.Since(start).Milliseconds())
	if err != nil {
		return nil, fmt.Errorf("agent dispatch request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("agent dispatch returned status %d", resp.StatusCode)
	}

	var results []types.AnalysisResult
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return nil, fmt.Errorf("decode agent dispatch response: %w", err)
	}

	// The dispatch service may report each agent's own processing latency in
	// its metadata; fall back to the round-trip time for whichever agents
	// don't so sum_latency_ms is never silently starved of data.
	for i := range results {
		if results[i].Metadata == nil {
			results[i].Metadata = map[string]any{}
		}
		if _, ok := results[i].Metadata["latencyMs"]; !ok {
			results[i].Metadata["latencyMs"] = roundTripMs
		}
	}
	return results, nil
}
