// Package strategist evaluates an enriched DecisionContext and produces a
// StrategistDecision, either via a chat-completion LLM call or a
// deterministic rule-based fallback when the LLM is unavailable, slow, or
// returns something unparseable.
package strategist

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/marketintel/decisiond/pkg/types"
)

// Config wires the strategist's model selection and timeout budget.
type Config struct {
	Logger      *zap.Logger
	APIKey      string
	BaseURL     string // override for tests; empty uses the OpenAI default.
	FastModel   string
	DeepModel   string
	Enabled     bool
	Timeout     time.Duration
	PeakTimeout time.Duration
}

// Strategist implements pipeline.Strategist: an LLM primary path with an
// always-succeeding rule-based fallback.
type Strategist struct {
	logger      *zap.Logger
	client      *openai.Client
	enabled     bool
	fastModel   string
	deepModel   string
	timeout     time.Duration
	peakTimeout time.Duration
}

// New builds a Strategist. When cfg.Enabled is false (no API key configured),
// every Evaluate call goes straight to the rule-based fallback.
func New(cfg Config) *Strategist {
	var client *openai.Client
	if cfg.Enabled && cfg.APIKey != "" {
		clientConfig := openai.DefaultConfig(cfg.APIKey)
		if cfg.BaseURL != "" {
			clientConfig.BaseURL = cfg.BaseURL
		}
		client = openai.NewClientWithConfig(clientConfig)
	}
	return &Strategist{
		logger:      cfg.Logger.Named("strategist"),
		client:      client,
		enabled:     cfg.Enabled && client != nil,
		fastModel:   cfg.FastModel,
		deepModel:   cfg.DeepModel,
		timeout:     cfg.Timeout,
		peakTimeout: cfg.PeakTimeout,
	}
}

// Evaluate invokes the LLM with the regime-dependent model/prompt, falling
// back to a rule-based decision on any failure. Never stalls past the
// configured timeout and never returns an error — the fallback always
// succeeds.
func (s *Strategist) Evaluate(ctx context.Context, dc types.DecisionContext, memory []types.MemoryEntry, peakMode bool) types.StrategistDecision {
	if !s.enabled {
		return fallback(dc)
	}

	model := s.deepModel
	if dc.Regime == types.RegimeVolatile || peakMode {
		model = s.fastModel
	}

	timeout := s.timeout
	if peakMode {
		timeout = s.peakTimeout
	}

	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	decision, err := s.complete(callCtx, model, systemPromptFor(peakMode), buildPrompt(dc, memory, peakMode))
	if err != nil {
		s.logger.Warn("strategist call failed, using rule-based fallback",
			zap.String("trace_id", dc.TraceID), zap.Error(err))
		return fallback(dc)
	}
	decision.ModelLabel = model
	decision.UsedFallback = false
	return decision
}

func (s *Strategist) complete(ctx context.Context, model, system, prompt string) (types.StrategistDecision, error) {
	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{Type: openai.ChatCompletionResponseFormatTypeJSONObject},
	})
	if err != nil {
		return types.StrategistDecision{}, fmt.Errorf("openai completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return types.StrategistDecision{}, fmt.Errorf("no response from openai")
	}

	var decision types.StrategistDecision
	if err := json.Unmarshal([]byte(resp.Choices[0].Message.Content), &decision); err != nil {
		return types.StrategistDecision{}, fmt.Errorf("malformed strategist response: %w", err)
	}
	if !decision.FinalSignal.Valid() {
		return types.StrategistDecision{}, fmt.Errorf("strategist returned invalid signal %q", decision.FinalSignal)
	}
	return decision, nil
}
