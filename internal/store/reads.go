package store

import (
	"context"
	"fmt"

	"github.com/marketintel/decisiond/pkg/types"
)

// FindLatestPerSymbol returns one snapshot projection per distinct symbol,
// the most recent by savedAt.
func (s *Store) FindLatestPerSymbol(ctx context.Context) ([]types.SnapshotProjection, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT DISTINCT ON (symbol)
			symbol, final_signal, confidence, market_regime, trading_session,
			directional_bias, trade_direction, divergence_flag, trace_id,
			decision_mode, saved_at
		FROM decision_history
		ORDER BY symbol, saved_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("query latest per symbol: %w", err)
	}
	defer rows.Close()

	var out []types.SnapshotProjection
	for rows.Next() {
		var p types.SnapshotProjection
		if err := rows.Scan(&p.Symbol, &p.FinalSignal, &p.Confidence, &p.MarketRegime,
			&p.TradingSession, &p.DirectionalBias, &p.TradeDirection, &p.DivergenceFlag,
			&p.TraceID, &p.DecisionMode, &p.SavedAt); err != nil {
			return nil, fmt.Errorf("scan snapshot projection: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// GetAgentPerformance reads the performance projection for every known
// agent, normalizing latencyWeight across the set so the slowest agent maps
// to 1.0.
func (s *Store) GetAgentPerformance(ctx context.Context) (map[string]types.AgentPerformanceModel, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT agent_name, total_decisions, sum_confidence, sum_latency_ms, sum_wins
		FROM agent_performance_snapshot`)
	if err != nil {
		return nil, fmt.Errorf("query agent_performance_snapshot: %w", err)
	}
	defer rows.Close()

	var snapshots []types.AgentPerformanceSnapshot
	for rows.Next() {
		var snap types.AgentPerformanceSnapshot
		if err := rows.Scan(&snap.AgentName, &snap.TotalDecisions, &snap.SumConfidence,
			&snap.SumLatencyMs, &snap.SumWins); err != nil {
			return nil, fmt.Errorf("scan agent_performance_snapshot: %w", err)
		}
		snapshots = append(snapshots, snap)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	var maxLatency float64
	for _, snap := range snapshots {
		if l := snap.AvgLatencyMs(); l > maxLatency {
			maxLatency = l
		}
	}

	out := make(map[string]types.AgentPerformanceModel, len(snapshots))
	for _, snap := range snapshots {
		latencyWeight := 0.0
		if maxLatency > 0 {
			latencyWeight = snap.AvgLatencyMs() / maxLatency
		}
		out[snap.AgentName] = types.AgentPerformanceModel{
			AgentName:               snap.AgentName,
			AvgConfidence:           snap.AvgConfidence(),
			AvgLatencyMs:            snap.AvgLatencyMs(),
			WinRate:                 snap.WinRate(),
			LatencyWeight:           latencyWeight,
			HistoricalAccuracyScore: snap.WinRate(),
		}
	}
	return out, nil
}

// GetAgentFeedback returns market-truth feedback per agent, falling back to
// a neutral 0.5 win rate when an agent has fewer than the configured
// minimum resolved outcomes within the lookback window. Replay-mode
// decisions never contribute.
func (s *Store) GetAgentFeedback(ctx context.Context) (map[string]types.AgentFeedback, error) {
	perf, err := s.GetAgentPerformance(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := s.pool.Query(ctx, `
		SELECT payload
		FROM decision_history
		WHERE (decision_mode IS NULL OR decision_mode = $1) AND outcome_resolved = TRUE
		ORDER BY saved_at DESC
		LIMIT $2`, types.ModeLive, s.feedback.OutcomeLookbackWindow)
	if err != nil {
		return nil, fmt.Errorf("query resolved decisions: %w", err)
	}
	defer rows.Close()

	resolvedByAgent := map[string]int{}
	winsByAgent := map[string]int{}
	for rows.Next() {
		record, err := scanDecisionRecordPayload(rows)
		if err != nil {
			return nil, err
		}
		if record.OutcomePercent == nil {
			continue
		}
		profitable := isProfitable(*record.OutcomePercent, s.feedback.ProfitableThreshold)
		for _, agent := range record.Agents {
			resolvedByAgent[agent.AgentName]++
			if agentWinsByMarketTruth(agent.Signal, record.FinalSignal, profitable) {
				winsByAgent[agent.AgentName]++
			}
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	out := make(map[string]types.AgentFeedback, len(perf))
	for name, model := range perf {
		sampleSize := resolvedByAgent[name]
		feedback := types.AgentFeedback{
			AgentName:         name,
			NormalizedLatency: model.LatencyWeight,
			SampleSize:        sampleSize,
			AvgConfidence:     model.AvgConfidence,
		}
		if sampleSize >= s.feedback.MinResolvedOutcomes {
			feedback.WinRate = float64(winsByAgent[name]) / float64(sampleSize)
		} else {
			feedback.WinRate = 0.5
			feedback.UsedFallback = true
		}
		out[name] = feedback
	}
	return out, nil
}

// agentWinsByMarketTruth reports whether an agent's own signal direction
// aligned with the realized profitable/unprofitable outcome, independent of
// whether that agent's vote matched the final decision.
func agentWinsByMarketTruth(agentSignal, finalSignal types.Signal, profitable bool) bool {
	switch agentSignal {
	case types.SignalBuy:
		return (finalSignal == types.SignalBuy) == profitable
	case types.SignalSell:
		return (finalSignal == types.SignalSell) == profitable
	default:
		return false
	}
}

// GetDecisionMetrics is a direct key lookup on the per-symbol projection.
func (s *Store) GetDecisionMetrics(ctx context.Context, symbol string) (types.DecisionMetricsProjection, error) {
	var m types.DecisionMetricsProjection
	m.Symbol = symbol
	err := s.pool.QueryRow(ctx, `
		SELECT last_confidence, confidence_slope_5, divergence_streak, momentum_streak
		FROM decision_metrics_projection WHERE symbol = $1`, symbol,
	).Scan(&m.LastConfidence, &m.ConfidenceSlope5, &m.DivergenceStreak, &m.MomentumStreak)
	if err != nil {
		return types.DecisionMetricsProjection{Symbol: symbol}, nil
	}
	return m, nil
}

// GetLatestRegime returns the most recently observed regime for symbol, or
// UNKNOWN if no decisions have been recorded yet.
func (s *Store) GetLatestRegime(ctx context.Context, symbol string) (types.MarketRegime, error) {
	var regime types.MarketRegime
	err := s.pool.QueryRow(ctx, `
		SELECT market_regime FROM decision_history
		WHERE symbol = $1 ORDER BY saved_at DESC LIMIT 1`, symbol,
	).Scan(&regime)
	if err != nil {
		return types.RegimeUnknown, nil
	}
	return regime, nil
}

// GetRecentDecisions returns up to limit (capped at 10) of the most recent
// decisions for symbol as 4-field memory entries, newest-first.
func (s *Store) GetRecentDecisions(ctx context.Context, symbol string, limit int) ([]types.MemoryEntry, error) {
	if limit > 10 {
		limit = 10
	}
	rows, err := s.pool.Query(ctx, `
		SELECT final_signal, confidence, divergence_flag, market_regime
		FROM decision_history
		WHERE symbol = $1
		ORDER BY saved_at DESC
		LIMIT $2`, symbol, limit)
	if err != nil {
		return nil, fmt.Errorf("query recent decisions for %s: %w", symbol, err)
	}
	defer rows.Close()

	var out []types.MemoryEntry
	for rows.Next() {
		var e types.MemoryEntry
		if err := rows.Scan(&e.FinalSignal, &e.Confidence, &e.DivergenceFlag, &e.Regime); err != nil {
			return nil, fmt.Errorf("scan memory entry: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// GetUnresolvedDecisions returns decisions for symbol saved within the last
// sinceMins minutes whose outcome has not yet been resolved, newest-first.
func (s *Store) GetUnresolvedDecisions(ctx context.Context, symbol string, sinceMins int) ([]types.DecisionRecord, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT payload FROM decision_history
		WHERE symbol = $1 AND outcome_resolved = FALSE
		  AND saved_at >= now() - make_interval(mins => $2)
		ORDER BY saved_at DESC`, symbol, sinceMins)
	if err != nil {
		return nil, fmt.Errorf("query unresolved decisions for %s: %w", symbol, err)
	}
	defer rows.Close()

	var out []types.DecisionRecord
	for rows.Next() {
		record, err := scanDecisionRecordPayload(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, record)
	}
	return out, rows.Err()
}

// SubscribeSnapshots registers a new snapshot listener; the returned
// function unsubscribes and closes the channel.
func (s *Store) SubscribeSnapshots() (<-chan types.SnapshotProjection, func()) {
	return s.broadcast.Subscribe()
}
