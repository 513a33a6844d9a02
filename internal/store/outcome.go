package store

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/marketintel/decisiond/pkg/types"
)

// unresolvedOutcomeCandidate is the minimal view resolveOutcomes needs for
// one unresolved BUY/SELL decision with a recorded entry price.
type unresolvedOutcomeCandidate struct {
	TraceID    string
	Symbol     string
	SavedAt    time.Time
	EntryPrice decimal.Decimal
}

// RecordOutcome locates the decision by traceID, sets its outcome fields,
// and triggers market-truth agent re-scoring plus the edge-condition
// update for that single decision.
func (s *Store) RecordOutcome(ctx context.Context, traceID string, outcomePercent float64, holdMinutes int) error {
	record, err := s.loadDecisionByTraceID(ctx, traceID)
	if err != nil {
		return fmt.Errorf("load decision %s: %w", traceID, err)
	}

	profitable := isProfitable(outcomePercent, s.feedback.ProfitableThreshold)
	label := deriveOutcomeLabel(outcomePercent, holdMinutes, false, false)

	if _, err := s.pool.Exec(ctx, `
		UPDATE decision_history SET
			outcome_resolved = TRUE, outcome_percent = $2,
			outcome_hold_minutes = $3, outcome_label = $4
		WHERE trace_id = $1`,
		traceID, outcomePercent, holdMinutes, label,
	); err != nil {
		return fmt.Errorf("update outcome for %s: %w", traceID, err)
	}

	return s.rescoreAndUpdateEdge(ctx, record, outcomePercent, profitable)
}

// ResolveOutcomes batch-resolves unresolved BUY/SELL decisions for symbol
// saved in the last 10 minutes that have a recorded entry price, comparing
// each against currentPrice.
func (s *Store) ResolveOutcomes(ctx context.Context, symbol string, currentPrice decimal.Decimal) error {
	candidates, err := s.unresolvedCandidates(ctx, symbol)
	if err != nil {
		return fmt.Errorf("load unresolved candidates for %s: %w", symbol, err)
	}

	for _, c := range candidates {
		if err := s.resolveOne(ctx, c, currentPrice); err != nil {
			s.logger.Warn("failed to resolve outcome",
				zap.String("traceId", c.TraceID), zap.Error(err))
		}
	}
	return nil
}

func (s *Store) resolveOne(ctx context.Context, c unresolvedOutcomeCandidate, currentPrice decimal.Decimal) error {
	record, err := s.loadDecisionByTraceID(ctx, c.TraceID)
	if err != nil {
		return err
	}

	outcomePercent := computeOutcomePercent(c.EntryPrice, currentPrice, record.FinalSignal)
	holdMinutes := int(time.Since(c.SavedAt).Minutes())

	var reachedTarget, reachedStop bool
	if record.TargetPrice != nil {
		reachedTarget = priceCrossed(record.FinalSignal, currentPrice, *record.TargetPrice, true)
	}
	if record.StopLoss != nil {
		reachedStop = priceCrossed(record.FinalSignal, currentPrice, *record.StopLoss, false)
	}
	label := deriveOutcomeLabel(outcomePercent, holdMinutes, reachedTarget, reachedStop)
	profitable := isProfitable(outcomePercent, s.feedback.ProfitableThreshold)

	if _, err := s.pool.Exec(ctx, `
		UPDATE decision_history SET
			outcome_resolved = TRUE, outcome_percent = $2,
			outcome_hold_minutes = $3, outcome_label = $4
		WHERE trace_id = $1`,
		c.TraceID, outcomePercent, holdMinutes, label,
	); err != nil {
		return fmt.Errorf("update outcome for %s: %w", c.TraceID, err)
	}

	return s.rescoreAndUpdateEdge(ctx, record, outcomePercent, profitable)
}

// rescoreAndUpdateEdge performs market-truth agent re-scoring and the
// edge-condition upsert for one resolved decision. LIVE-mode only.
func (s *Store) rescoreAndUpdateEdge(ctx context.Context, record types.DecisionRecord, outcomePercent float64, profitable bool) error {
	if record.DecisionMode != types.ModeLive {
		return nil
	}

	for _, agent := range record.Agents {
		win := 0
		if agentWinsByMarketTruth(agent.Signal, record.FinalSignal, profitable) {
			win = 1
		}
		if _, err := s.pool.Exec(ctx, `
			INSERT INTO agent_performance_snapshot (agent_name, total_decisions, sum_confidence, sum_latency_ms, sum_wins)
			VALUES ($1, 0, 0, 0, $2)
			ON CONFLICT (agent_name) DO UPDATE SET
				sum_wins = agent_performance_snapshot.sum_wins + EXCLUDED.sum_wins`,
			agent.AgentName, win,
		); err != nil {
			return fmt.Errorf("re-score agent %s: %w", agent.AgentName, err)
		}
	}

	win := 0
	if profitable {
		win = 1
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO edge_conditions (session, regime, bias, signal, win_count, total_count)
		VALUES ($1, $2, $3, $4, $5, 1)
		ON CONFLICT (session, regime, bias, signal) DO UPDATE SET
			win_count   = edge_conditions.win_count + EXCLUDED.win_count,
			total_count = edge_conditions.total_count + 1`,
		record.TradingSession, record.MarketRegime, record.DirectionalBias, record.FinalSignal, win,
	)
	if err != nil {
		return fmt.Errorf("upsert edge_conditions: %w", err)
	}
	return nil
}

func (s *Store) loadDecisionByTraceID(ctx context.Context, traceID string) (types.DecisionRecord, error) {
	row := s.pool.QueryRow(ctx, `SELECT payload FROM decision_history WHERE trace_id = $1`, traceID)
	return scanDecisionRecordPayload(row)
}

func (s *Store) unresolvedCandidates(ctx context.Context, symbol string) ([]unresolvedOutcomeCandidate, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT trace_id, symbol, saved_at, entry_price
		FROM decision_history
		WHERE symbol = $1
			AND outcome_resolved = FALSE
			AND final_signal IN ($2, $3)
			AND entry_price IS NOT NULL
			AND saved_at >= $4`,
		symbol, types.SignalBuy, types.SignalSell, time.Now().Add(-10*time.Minute),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []unresolvedOutcomeCandidate
	for rows.Next() {
		var c unresolvedOutcomeCandidate
		if err := rows.Scan(&c.TraceID, &c.Symbol, &c.SavedAt, &c.EntryPrice); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
