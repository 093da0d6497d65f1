package store

import (
	"context"
	"errors"
	"fmt"
	"net"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
)

// ErrStoreUnreachable is returned once retries against an unreachable
// database server are exhausted.
var ErrStoreUnreachable = errors.New("store: server unreachable")

// isUnreachable reports whether err indicates the database server cannot
// be reached, as opposed to the server rejecting the operation.
func isUnreachable(err error) bool {
	if err == nil {
		return false
	}

	var connErr *pgconn.ConnectError
	if errors.As(err, &connErr) {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}

	return errors.Is(err, syscall.ECONNREFUSED) || errors.Is(err, syscall.ECONNRESET)
}

// withRetry runs fn, retrying with exponential backoff (x1.5 growth) when
// the server is unreachable. Any other error propagates unchanged after
// the first attempt.
func (s *Store) withRetry(ctx context.Context, op string, fn func(ctx context.Context) error) error {
	delay := s.retryDelay
	var lastErr error

	for attempt := 1; attempt <= s.retryAttempts; attempt++ {
		err := fn(ctx)
		if err == nil {
			return nil
		}
		if !isUnreachable(err) {
			return err
		}
		lastErr = err

		if attempt == s.retryAttempts {
			break
		}

		s.logger.Warn("store unreachable, retrying",
			"op", op,
			"attempt", attempt,
			"delay", delay,
			"err", err,
		)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}

		delay = delay * 3 / 2
	}

	return fmt.Errorf("%w: %s: %v", ErrStoreUnreachable, op, lastErr)
}
