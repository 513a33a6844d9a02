package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/marketintel/decisiond/pkg/types"
)

// Save persists one FinalDecision, emits a snapshot event to subscribers,
// and then runs the non-fatal projection pipeline. A projection failure is
// logged but never rolls back the save.
func (s *Store) Save(ctx context.Context, decision types.FinalDecision, mode types.DecisionMode) (types.DecisionRecord, error) {
	record := types.DecisionRecord{
		FinalDecision: decision,
		ID:            uuid.NewString(),
		SavedAt:       time.Now(),
		DecisionMode:  mode,
	}

	payload, err := json.Marshal(record)
	if err != nil {
		return types.DecisionRecord{}, fmt.Errorf("marshal decision payload: %w", err)
	}

	_, err = s.pool.Exec(ctx, `
		INSERT INTO decision_history (
			id, symbol, trace_id, final_signal, confidence, market_regime,
			trading_session, directional_bias, trade_direction, divergence_flag,
			entry_price, target_price, stop_loss, estimated_hold_minutes,
			decision_mode, payload, saved_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17
		)`,
		record.ID, record.Symbol, record.TraceID, record.FinalSignal, record.Confidence,
		record.MarketRegime, record.TradingSession, record.DirectionalBias, record.TradeDirection,
		record.DivergenceFlag, record.EntryPrice, record.TargetPrice, record.StopLoss,
		record.EstimatedHoldMinutes, record.DecisionMode, payload, record.SavedAt,
	)
	if err != nil {
		return types.DecisionRecord{}, fmt.Errorf("insert decision_history: %w", err)
	}

	s.broadcast.Publish(types.SnapshotProjection{
		Symbol:          record.Symbol,
		Timestamp:       record.Timestamp,
		FinalSignal:     record.FinalSignal,
		Confidence:      record.Confidence,
		MarketRegime:    record.MarketRegime,
		TradingSession:  record.TradingSession,
		DirectionalBias: record.DirectionalBias,
		TradeDirection:  record.TradeDirection,
		DivergenceFlag:  record.DivergenceFlag,
		ConsensusScore:  record.ConsensusScore,
		AgentCount:      record.AgentCount,
		AIReasoning:     record.AIReasoning,
		TraceID:         record.TraceID,
		DecisionMode:    record.DecisionMode,
		SavedAt:         record.SavedAt,
	})

	if err := s.upsertAgentSnapshots(ctx, record.Agents, record.FinalSignal); err != nil {
		s.logger.Warn("agent snapshot projection failed", zap.Error(err))
	}
	if err := s.upsertSymbolMetrics(ctx, record.Symbol); err != nil {
		s.logger.Warn("symbol metrics projection failed", zap.Error(err))
	}

	return record, nil
}

// upsertAgentSnapshots increments each participating agent's running
// counters. latencyWeight is not stored; GetAgentPerformance derives it at
// read time.
func (s *Store) upsertAgentSnapshots(ctx context.Context, agents []types.AnalysisResult, finalSignal types.Signal) error {
	for _, agent := range agents {
		win := 0
		if agent.Signal == finalSignal {
			win = 1
		}
		latencyFloat, _ := agent.Metadata["latencyMs"].(float64)
		latencyMs := int64(latencyFloat)

		_, err := s.pool.Exec(ctx, `
			INSERT INTO agent_performance_snapshot (agent_name, total_decisions, sum_confidence, sum_latency_ms, sum_wins)
			VALUES ($1, 1, $2, $3, $4)
			ON CONFLICT (agent_name) DO UPDATE SET
				total_decisions = agent_performance_snapshot.total_decisions + 1,
				sum_confidence  = agent_performance_snapshot.sum_confidence + EXCLUDED.sum_confidence,
				sum_latency_ms  = agent_performance_snapshot.sum_latency_ms + EXCLUDED.sum_latency_ms,
				sum_wins        = agent_performance_snapshot.sum_wins + EXCLUDED.sum_wins`,
			agent.AgentName, agent.Confidence, latencyMs, win,
		)
		if err != nil {
			return fmt.Errorf("upsert agent_performance_snapshot for %s: %w", agent.AgentName, err)
		}
	}
	return nil
}

// upsertSymbolMetrics recomputes the last-5-decision window for symbol and
// upserts the per-symbol projection row.
func (s *Store) upsertSymbolMetrics(ctx context.Context, symbol string) error {
	points, err := s.recentDecisionPoints(ctx, symbol, 5)
	if err != nil {
		return fmt.Errorf("load recent decision points for %s: %w", symbol, err)
	}
	if len(points) == 0 {
		return nil
	}

	lastConfidence := points[0].Confidence
	slope := confidenceSlope5(points)
	divergenceStreak := leadingDivergenceStreak(points)
	momentumStreak := leadingMomentumStreak(points)

	_, err = s.pool.Exec(ctx, `
		INSERT INTO decision_metrics_projection (symbol, last_confidence, confidence_slope_5, divergence_streak, momentum_streak)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (symbol) DO UPDATE SET
			last_confidence    = EXCLUDED.last_confidence,
			confidence_slope_5 = EXCLUDED.confidence_slope_5,
			divergence_streak  = EXCLUDED.divergence_streak,
			momentum_streak    = EXCLUDED.momentum_streak`,
		symbol, lastConfidence, slope, divergenceStreak, momentumStreak,
	)
	if err != nil {
		return fmt.Errorf("upsert decision_metrics_projection for %s: %w", symbol, err)
	}
	return nil
}

func (s *Store) recentDecisionPoints(ctx context.Context, symbol string, limit int) ([]decisionPoint, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT confidence, divergence_flag, final_signal
		FROM decision_history
		WHERE symbol = $1
		ORDER BY saved_at DESC
		LIMIT $2`, symbol, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var points []decisionPoint
	for rows.Next() {
		var p decisionPoint
		if err := rows.Scan(&p.Confidence, &p.DivergenceFlag, &p.FinalSignal); err != nil {
			return nil, err
		}
		points = append(points, p)
	}
	return points, rows.Err()
}
