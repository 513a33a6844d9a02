package store

import (
	"context"
	"fmt"
)

// runMigrations creates the four primary tables and the one composite index
// the spec requires, idempotently.
func (s *Store) runMigrations(ctx context.Context) error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS decision_history (
			id                     UUID PRIMARY KEY,
			symbol                 VARCHAR(20) NOT NULL,
			trace_id               VARCHAR(64) NOT NULL,
			final_signal           VARCHAR(10) NOT NULL,
			confidence             DOUBLE PRECISION NOT NULL,
			market_regime          VARCHAR(20) NOT NULL,
			trading_session        VARCHAR(24) NOT NULL,
			directional_bias       VARCHAR(16) NOT NULL,
			trade_direction        VARCHAR(8) NOT NULL,
			divergence_flag        BOOLEAN NOT NULL DEFAULT FALSE,
			entry_price            NUMERIC(20, 8),
			target_price           NUMERIC(20, 8),
			stop_loss              NUMERIC(20, 8),
			estimated_hold_minutes INT,
			decision_mode          VARCHAR(24) NOT NULL DEFAULT 'LIVE',
			payload                JSONB NOT NULL,
			saved_at               TIMESTAMPTZ NOT NULL DEFAULT now(),
			outcome_resolved       BOOLEAN NOT NULL DEFAULT FALSE,
			outcome_percent        DOUBLE PRECISION,
			outcome_hold_minutes   INT,
			outcome_label          VARCHAR(16)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_decision_history_symbol_saved_at
			ON decision_history (symbol, saved_at DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_decision_history_unresolved
			ON decision_history (symbol, saved_at)
			WHERE outcome_resolved = FALSE`,

		`CREATE TABLE IF NOT EXISTS agent_performance_snapshot (
			agent_name      VARCHAR(100) PRIMARY KEY,
			total_decisions BIGINT NOT NULL DEFAULT 0,
			sum_confidence  DOUBLE PRECISION NOT NULL DEFAULT 0,
			sum_latency_ms  BIGINT NOT NULL DEFAULT 0,
			sum_wins        BIGINT NOT NULL DEFAULT 0
		)`,

		`CREATE TABLE IF NOT EXISTS decision_metrics_projection (
			symbol             VARCHAR(20) PRIMARY KEY,
			last_confidence    DOUBLE PRECISION NOT NULL DEFAULT 0,
			confidence_slope_5 DOUBLE PRECISION NOT NULL DEFAULT 0,
			divergence_streak  INT NOT NULL DEFAULT 0,
			momentum_streak    INT NOT NULL DEFAULT 0
		)`,

		`CREATE TABLE IF NOT EXISTS edge_conditions (
			session     VARCHAR(24) NOT NULL,
			regime      VARCHAR(20) NOT NULL,
			bias        VARCHAR(16) NOT NULL,
			signal      VARCHAR(10) NOT NULL,
			win_count   BIGINT NOT NULL DEFAULT 0,
			total_count BIGINT NOT NULL DEFAULT 0,
			PRIMARY KEY (session, regime, bias, signal)
		)`,
	}

	for i, migration := range migrations {
		if _, err := s.pool.Exec(ctx, migration); err != nil {
			return fmt.Errorf("migration %d: %w", i+1, err)
		}
	}
	return nil
}
