package store

import (
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Store provides Postgres-backed persistence for orders, cabinets and
// payout transactions.
type Store struct {
	db     *pgxpool.Pool
	logger *slog.Logger

	retryAttempts int
	retryDelay    time.Duration
}

// Option configures a Store.
type Option func(*Store)

// New creates a Store on top of an existing connection pool.
func New(db *pgxpool.Pool, logger *slog.Logger, opts ...Option) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Store{
		db:            db,
		logger:        logger,
		retryAttempts: 3,
		retryDelay:    2 * time.Second,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// WithRetry sets the unreachable-server retry configuration.
func WithRetry(attempts int, initialDelay time.Duration) Option {
	return func(s *Store) {
		s.retryAttempts = attempts
		s.retryDelay = initialDelay
	}
}
