package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/rgordeev/payout-sync/internal/model"
)

// PendingOrders returns all orders still awaiting processing, oldest
// first.
func (s *Store) PendingOrders(ctx context.Context) ([]model.SyncOrder, error) {
	var orders []model.SyncOrder

	err := s.withRetry(ctx, "pending orders", func(ctx context.Context) error {
		rows, err := s.db.Query(ctx, `
			SELECT id, cabinet_id, status, pages, started_at, finished_at, result, created_at
			FROM sync_orders
			WHERE status = $1
			ORDER BY created_at
		`, model.StatusPending)
		if err != nil {
			return err
		}
		defer rows.Close()

		orders = orders[:0]
		for rows.Next() {
			order, err := scanOrder(rows)
			if err != nil {
				return err
			}
			orders = append(orders, order)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}

	return orders, nil
}

// ClaimOrder transitions an order PENDING -> IN_PROGRESS and stamps its
// start time. Returns false when the order was no longer pending.
func (s *Store) ClaimOrder(ctx context.Context, id uuid.UUID) (bool, error) {
	var claimed bool

	err := s.withRetry(ctx, "claim order", func(ctx context.Context) error {
		ct, err := s.db.Exec(ctx, `
			UPDATE sync_orders
			SET status = $1, started_at = now()
			WHERE id = $2 AND status = $3
		`, model.StatusInProgress, id, model.StatusPending)
		if err != nil {
			return err
		}
		claimed = ct.RowsAffected() == 1
		return nil
	})
	if err != nil {
		return false, err
	}

	return claimed, nil
}

// CompleteOrder transitions an order to COMPLETED with its aggregated
// per-cabinet result.
func (s *Store) CompleteOrder(ctx context.Context, id uuid.UUID, result []model.CabinetResult) error {
	return s.finishOrder(ctx, id, model.StatusCompleted, result)
}

// FailOrder transitions an order to FAILED, recording the error message
// as its result.
func (s *Store) FailOrder(ctx context.Context, id uuid.UUID, message string) error {
	return s.withRetry(ctx, "fail order", func(ctx context.Context) error {
		resultJSON, err := json.Marshal(map[string]string{"error": message})
		if err != nil {
			return fmt.Errorf("marshal order error: %w", err)
		}
		_, err = s.db.Exec(ctx, `
			UPDATE sync_orders
			SET status = $1, finished_at = now(), result = $2
			WHERE id = $3
		`, model.StatusFailed, resultJSON, id)
		return err
	})
}

func (s *Store) finishOrder(ctx context.Context, id uuid.UUID, status model.OrderStatus, result []model.CabinetResult) error {
	return s.withRetry(ctx, "finish order", func(ctx context.Context) error {
		resultJSON, err := json.Marshal(result)
		if err != nil {
			return fmt.Errorf("marshal order result: %w", err)
		}
		_, err = s.db.Exec(ctx, `
			UPDATE sync_orders
			SET status = $1, finished_at = now(), result = $2
			WHERE id = $3
		`, status, resultJSON, id)
		return err
	})
}

// scanOrder reads one sync_orders row.
func scanOrder(row pgx.Row) (model.SyncOrder, error) {
	var (
		order      model.SyncOrder
		status     string
		pages      []int32
		resultJSON []byte
		started    *time.Time
		finished   *time.Time
	)

	if err := row.Scan(&order.ID, &order.CabinetID, &status, &pages,
		&started, &finished, &resultJSON, &order.CreatedAt); err != nil {
		return model.SyncOrder{}, fmt.Errorf("scan order: %w", err)
	}

	order.Status = model.OrderStatus(status)
	order.StartedAt = started
	order.FinishedAt = finished
	for _, p := range pages {
		order.Pages = append(order.Pages, int(p))
	}
	if len(resultJSON) > 0 {
		// Best effort: FAILED orders store an error object, not an array.
		_ = json.Unmarshal(resultJSON, &order.Result)
	}

	return order, nil
}
