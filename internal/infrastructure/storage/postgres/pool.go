// Package postgres is the PostgreSQL side of shoppos: the pool, the
// transaction manager, migrations, the outbox and idempotency stores.
package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"shoppos/pkg/logger"
)

type PoolConfig struct {
	DSN             string
	ApplicationName string // shows up in pg_stat_activity
	// TimeZone sets the session zone; "today" summaries start at its
	// midnight. Empty keeps the server default.
	TimeZone        string
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration

	// AcquireTimeout bounds the wait for a free connection inside
	// RunInTransaction. Exceeding it yields STORE_UNAVAILABLE.
	AcquireTimeout time.Duration
	// StatementTimeout is set per transaction with SET LOCAL.
	StatementTimeout time.Duration

	// ConnectAttempts is how many times NewPool pings before giving up,
	// doubling the pause each time. Containers often start before the
	// database accepts connections.
	ConnectAttempts int
	ConnectBackoff  time.Duration
}

// DefaultPoolConfig sizes the pool for one shop with a handful of tills.
func DefaultPoolConfig(dsn string) PoolConfig {
	return PoolConfig{
		DSN:              dsn,
		ApplicationName:  "shoppos",
		MaxConns:         25,
		MinConns:         2,
		MaxConnLifetime:  time.Hour,
		MaxConnIdleTime:  30 * time.Minute,
		AcquireTimeout:   5 * time.Second,
		StatementTimeout: 30 * time.Second,
		ConnectAttempts:  5,
		ConnectBackoff:   500 * time.Millisecond,
	}
}

// Pool is a pgxpool.Pool that remembers the timeouts TxManager applies.
type Pool struct {
	*pgxpool.Pool
	cfg PoolConfig
}

// NewPool connects and pings the database.
func NewPool(ctx context.Context, cfg PoolConfig) (*Pool, error) {
	pc, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	if cfg.MaxConns > 0 {
		pc.MaxConns = cfg.MaxConns
	}
	pc.MinConns = cfg.MinConns
	pc.MaxConnLifetime = cfg.MaxConnLifetime
	pc.MaxConnIdleTime = cfg.MaxConnIdleTime
	if cfg.ApplicationName != "" {
		pc.ConnConfig.RuntimeParams["application_name"] = cfg.ApplicationName
	}
	if cfg.TimeZone != "" {
		pc.ConnConfig.RuntimeParams["timezone"] = cfg.TimeZone
	}

	pool, err := pgxpool.NewWithConfig(ctx, pc)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}
	if err := pingWithRetry(ctx, pool, cfg); err != nil {
		pool.Close()
		return nil, err
	}
	return &Pool{Pool: pool, cfg: cfg}, nil
}

func pingWithRetry(ctx context.Context, pool *pgxpool.Pool, cfg PoolConfig) error {
	attempts := max(cfg.ConnectAttempts, 1)
	pause := cfg.ConnectBackoff

	var err error
	for i := 1; ; i++ {
		if err = pool.Ping(ctx); err == nil {
			return nil
		}
		if i == attempts {
			return fmt.Errorf("ping database after %d attempts: %w", attempts, err)
		}
		logger.Warn(ctx, "database not ready", "attempt", i, "retry_in", pause.String(), "error", err)
		select {
		case <-ctx.Done():
			return fmt.Errorf("ping database: %w", ctx.Err())
		case <-time.After(pause):
		}
		pause *= 2
	}
}

// Unwrap returns the underlying pgxpool.Pool.
func (p *Pool) Unwrap() *pgxpool.Pool {
	return p.Pool
}

func (p *Pool) Close() {
	if p.Pool != nil {
		p.Pool.Close()
	}
}

// LogStats writes a pool utilisation line. A pool with every connection
// checked out is reported at warn level, since new sales then queue behind
// AcquireTimeout.
func (p *Pool) LogStats(ctx context.Context) {
	s := p.Stat()
	kv := []any{
		"total", s.TotalConns(),
		"acquired", s.AcquiredConns(),
		"idle", s.IdleConns(),
		"max", s.MaxConns(),
		"empty_acquires", s.EmptyAcquireCount(),
		"canceled_acquires", s.CanceledAcquireCount(),
	}
	if s.AcquiredConns() >= s.MaxConns() {
		logger.Warn(ctx, "database pool saturated", kv...)
		return
	}
	logger.Info(ctx, "database pool stats", kv...)
}
