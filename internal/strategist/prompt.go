package strategist

import (
	"fmt"
	"strings"

	"github.com/marketintel/decisiond/pkg/types"
)

const systemPrompt = `You are a disciplined trading strategist. Given market context, recent ` +
	`agent signals, and memory of recent decisions for the same symbol, respond with a single ` +
	`JSON object and nothing else: {"finalSignal":"BUY|SELL|HOLD|WATCH","confidence":0.0-1.0,` +
	`"reasoning":"...","entryPrice":null,"targetPrice":null,"stopLoss":null,` +
	`"estimatedHoldMinutes":null,"tradeDirection":"LONG|SHORT|FLAT|null"}. ` +
	`Never include any text outside the JSON object.`

const shortSystemPrompt = `Trading strategist, peak mode. Respond only with the JSON object: ` +
	`{"finalSignal":"BUY|SELL|HOLD|WATCH","confidence":0.0-1.0,"reasoning":"...",` +
	`"tradeDirection":"LONG|SHORT|FLAT|null"}.`

// systemPromptFor selects the full or short-form system prompt.
func systemPromptFor(peakMode bool) string {
	if peakMode {
		return shortSystemPrompt
	}
	return systemPrompt
}

// buildPrompt composes the user-turn prompt from the decision context,
// strategy memory, and regime/session/bias/mood signals. peakMode selects
// a shorter variant.
func buildPrompt(dc types.DecisionContext, memory []types.MemoryEntry, peakMode bool) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Symbol: %s\nRegime: %s\nSession: %s\nDirectional bias: %s\nMomentum: %s\n",
		dc.Symbol, dc.Regime, dc.TradingSession, dc.DirectionalBias, dc.MomentumState)
	fmt.Fprintf(&b, "Latest close: %s\n", dc.LatestClose.String())

	b.WriteString("Agent results:\n")
	for _, r := range dc.AgentResults {
		fmt.Fprintf(&b, "- %s: %s (confidence %.2f) %s\n", r.AgentName, r.Signal, r.Confidence, r.Summary)
	}

	if !peakMode && len(memory) > 0 {
		b.WriteString("Recent decisions for this symbol:\n")
		for _, m := range memory {
			fmt.Fprintf(&b, "- %s (confidence %.2f, regime %s, divergence=%t)\n",
				m.FinalSignal, m.Confidence, m.Regime, m.DivergenceFlag)
		}
	}

	if peakMode {
		b.WriteString("Peak mode: respond quickly, favour the dominant agent signal.\n")
	}

	return b.String()
}
