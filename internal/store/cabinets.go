package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/rgordeev/payout-sync/internal/model"
)

// ErrCabinetNotFound is returned when an order targets a cabinet id that
// does not exist.
var ErrCabinetNotFound = errors.New("store: cabinet not found")

// Cabinets returns every configured cabinet.
func (s *Store) Cabinets(ctx context.Context) ([]model.Cabinet, error) {
	var cabinets []model.Cabinet

	err := s.withRetry(ctx, "list cabinets", func(ctx context.Context) error {
		rows, err := s.db.Query(ctx, `
			SELECT id, external_id, login, password
			FROM cabinets
			ORDER BY created_at
		`)
		if err != nil {
			return err
		}
		defer rows.Close()

		cabinets = cabinets[:0]
		for rows.Next() {
			var c model.Cabinet
			if err := rows.Scan(&c.ID, &c.ExternalID, &c.Login, &c.Password); err != nil {
				return fmt.Errorf("scan cabinet: %w", err)
			}
			cabinets = append(cabinets, c)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}

	return cabinets, nil
}

// CabinetByID returns a single cabinet, or ErrCabinetNotFound.
func (s *Store) CabinetByID(ctx context.Context, id uuid.UUID) (model.Cabinet, error) {
	var cabinet model.Cabinet

	err := s.withRetry(ctx, "cabinet by id", func(ctx context.Context) error {
		err := s.db.QueryRow(ctx, `
			SELECT id, external_id, login, password
			FROM cabinets
			WHERE id = $1
		`, id).Scan(&cabinet.ID, &cabinet.ExternalID, &cabinet.Login, &cabinet.Password)
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("%w: %s", ErrCabinetNotFound, id)
		}
		return err
	})
	if err != nil {
		return model.Cabinet{}, err
	}

	return cabinet, nil
}
