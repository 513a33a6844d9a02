// Package store is the feedback & projection store: Postgres-backed
// persistence for decisions, derived per-agent and per-symbol projections,
// outcome resolution, and the snapshot broadcast consumed by the transport
// layer's SSE/WebSocket feeds.
package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/marketintel/decisiond/pkg/types"
)

// Store is the feedback & projection store (component D). Safe for
// concurrent use: the pool handles connection-level concurrency, the
// broadcaster guards its own subscriber list.
type Store struct {
	pool      *pgxpool.Pool
	logger    *zap.Logger
	feedback  types.FeedbackConfig
	broadcast *snapshotBroadcaster
}

// Config configures the Postgres connection pool backing the store.
type Config struct {
	DatabaseURL     string
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
}

// DefaultConfig mirrors the reference connection-pool sizing.
func DefaultConfig(databaseURL string) Config {
	return Config{
		DatabaseURL:     databaseURL,
		MaxConns:        25,
		MinConns:        5,
		MaxConnLifetime: time.Hour,
		MaxConnIdleTime: 30 * time.Minute,
	}
}

// New opens the connection pool, pings it, and runs migrations.
func New(ctx context.Context, cfg Config, feedback types.FeedbackConfig, logger *zap.Logger) (*Store, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	poolConfig.MaxConns = cfg.MaxConns
	poolConfig.MinConns = cfg.MinConns
	poolConfig.MaxConnLifetime = cfg.MaxConnLifetime
	poolConfig.MaxConnIdleTime = cfg.MaxConnIdleTime

	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(connectCtx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}
	if err := pool.Ping(connectCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	s := &Store{
		pool:      pool,
		logger:    logger.Named("store"),
		feedback:  feedback,
		broadcast: newSnapshotBroadcaster(64),
	}

	if err := s.runMigrations(connectCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return s, nil
}

// Close releases the connection pool.
func (s *Store) Close() {
	s.pool.Close()
}

// HealthCheck pings the database.
func (s *Store) HealthCheck(ctx context.Context) error {
	return s.pool.Ping(ctx)
}
