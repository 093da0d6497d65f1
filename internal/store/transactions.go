package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/rgordeev/payout-sync/internal/model"
)

// localTimeOffset converts the platform's approval/expiry timestamps to
// local display time.
const localTimeOffset = 3 * time.Hour

// transactionRow is a payout transaction normalized for insertion.
type transactionRow struct {
	ExternalID      int64
	CabinetID       uuid.UUID
	PaymentMethodID int64
	Wallet          string
	Amount          string // exact decimal text, NUMERIC column
	Total           string // exact decimal text, NUMERIC column
	Status          int
	ApprovedAt      *time.Time
	ExpiredAt       *time.Time
	CreatedAtRaw    string
	UpdatedAtRaw    string
	Extra           []byte // unrecognized feed fields, JSONB
}

// newTransactionRow normalizes a feed record for a cabinet. Ids stay
// 64-bit wide, amounts keep exact decimal text, approval/expiry shift by
// the local offset and raw feed timestamps are preserved verbatim.
func newTransactionRow(cabinetID uuid.UUID, tx model.RemoteTransaction) (transactionRow, error) {
	row := transactionRow{
		ExternalID:      tx.ID,
		CabinetID:       cabinetID,
		PaymentMethodID: tx.PaymentMethodID,
		Wallet:          tx.Wallet,
		Amount:          tx.Amount.String(),
		Total:           tx.Total.String(),
		Status:          tx.Status,
		CreatedAtRaw:    tx.CreatedAt,
		UpdatedAtRaw:    tx.UpdatedAt,
	}

	if tx.ApprovedAt != nil {
		shifted := tx.ApprovedAt.Add(localTimeOffset)
		row.ApprovedAt = &shifted
	}
	if tx.ExpiredAt != nil {
		shifted := tx.ExpiredAt.Add(localTimeOffset)
		row.ExpiredAt = &shifted
	}

	if len(tx.Extra) > 0 {
		blob, err := json.Marshal(tx.Extra)
		if err != nil {
			return transactionRow{}, fmt.Errorf("marshal extra fields: %w", err)
		}
		row.Extra = blob
	}

	return row, nil
}

// ExistingExternalIDs returns which of the given external ids are already
// persisted for the cabinet, in a single bulk read.
func (s *Store) ExistingExternalIDs(ctx context.Context, cabinetID uuid.UUID, externalIDs []int64) (map[int64]bool, error) {
	if len(externalIDs) == 0 {
		return map[int64]bool{}, nil
	}

	existing := make(map[int64]bool, len(externalIDs))

	err := s.withRetry(ctx, "existing external ids", func(ctx context.Context) error {
		rows, err := s.db.Query(ctx, `
			SELECT external_id
			FROM payout_transactions
			WHERE cabinet_id = $1 AND external_id = ANY($2)
		`, cabinetID, externalIDs)
		if err != nil {
			return err
		}
		defer rows.Close()

		clear(existing)
		for rows.Next() {
			var id int64
			if err := rows.Scan(&id); err != nil {
				return fmt.Errorf("scan external id: %w", err)
			}
			existing[id] = true
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}

	return existing, nil
}

// SaveNewTransactions persists the records whose (external_id, cabinet_id)
// pair is not yet present and returns the ones actually created. Existing
// pairs are read once up front; the remaining inserts run concurrently
// since they target disjoint unique keys. ON CONFLICT DO NOTHING backstops
// the unique constraint.
func (s *Store) SaveNewTransactions(ctx context.Context, cabinetID uuid.UUID, txs []model.RemoteTransaction) ([]model.RemoteTransaction, error) {
	if len(txs) == 0 {
		return nil, nil
	}

	ids := make([]int64, 0, len(txs))
	for _, tx := range txs {
		ids = append(ids, tx.ID)
	}

	existing, err := s.ExistingExternalIDs(ctx, cabinetID, ids)
	if err != nil {
		return nil, err
	}

	var (
		mu      sync.Mutex
		created []model.RemoteTransaction
		g       errgroup.Group
	)

	for _, tx := range txs {
		if existing[tx.ID] {
			continue
		}

		g.Go(func() error {
			row, err := newTransactionRow(cabinetID, tx)
			if err != nil {
				return err
			}
			inserted, err := s.insertTransaction(ctx, row)
			if err != nil {
				s.logger.Error("insert transaction failed",
					"external_id", tx.ID,
					"cabinet_id", cabinetID,
					"err", err,
				)
				return err
			}
			if inserted {
				mu.Lock()
				created = append(created, tx)
				mu.Unlock()
			}
			return nil
		})
	}

	// Inserts are independent: siblings run to completion even when one
	// fails, only the first error is reported.
	err = g.Wait()

	return created, err
}

// insertTransaction writes one row, reporting false on a dedup conflict.
func (s *Store) insertTransaction(ctx context.Context, row transactionRow) (bool, error) {
	var inserted bool

	err := s.withRetry(ctx, "insert transaction", func(ctx context.Context) error {
		ct, err := s.db.Exec(ctx, `
			INSERT INTO payout_transactions (
				external_id, cabinet_id, payment_method_id, wallet,
				amount, total, status, approved_at, expired_at,
				created_at_raw, updated_at_raw, extra
			)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
			ON CONFLICT (external_id, cabinet_id) DO NOTHING
		`, row.ExternalID, row.CabinetID, row.PaymentMethodID, row.Wallet,
			row.Amount, row.Total, row.Status, row.ApprovedAt, row.ExpiredAt,
			row.CreatedAtRaw, row.UpdatedAtRaw, row.Extra)
		if err != nil {
			return err
		}
		inserted = ct.RowsAffected() == 1
		return nil
	})
	if err != nil {
		return false, err
	}

	return inserted, nil
}
