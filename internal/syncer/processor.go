package syncer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/rgordeev/payout-sync/internal/model"
)

// ErrNoCabinets is returned when an all-cabinet order finds no cabinets
// configured.
var ErrNoCabinets = errors.New("syncer: no cabinets configured")

// Platform is the remote payout platform surface the processor needs.
type Platform interface {
	Login(ctx context.Context, login, password string) (model.Session, error)
	GetPayoutsPage(ctx context.Context, session model.Session, page int) ([]model.RemoteTransaction, error)
}

// Store is the persistence surface the processor needs.
type Store interface {
	ClaimOrder(ctx context.Context, id uuid.UUID) (bool, error)
	CompleteOrder(ctx context.Context, id uuid.UUID, result []model.CabinetResult) error
	FailOrder(ctx context.Context, id uuid.UUID, message string) error
	Cabinets(ctx context.Context) ([]model.Cabinet, error)
	CabinetByID(ctx context.Context, id uuid.UUID) (model.Cabinet, error)
	ExistingExternalIDs(ctx context.Context, cabinetID uuid.UUID, externalIDs []int64) (map[int64]bool, error)
	SaveNewTransactions(ctx context.Context, cabinetID uuid.UUID, txs []model.RemoteTransaction) ([]model.RemoteTransaction, error)
}

// Config holds processor settings.
type Config struct {
	DefaultPages int           // page count when an order requests none (default: 10)
	PageDelay    time.Duration // pause between page fetches (default: 1s)
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		DefaultPages: 10,
		PageDelay:    time.Second,
	}
}

// Processor runs sync orders one at a time, one cabinet at a time. All
// work is sequential to respect the platform's rate limits; only the
// final insert step within a batch fans out.
type Processor struct {
	cfg      Config
	store    Store
	platform Platform
	logger   *slog.Logger
}

// New creates a Processor.
func New(cfg Config, store Store, platform Platform, logger *slog.Logger) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.DefaultPages == 0 {
		cfg.DefaultPages = 10
	}
	return &Processor{
		cfg:      cfg,
		store:    store,
		platform: platform,
		logger:   logger,
	}
}

// Process runs one sync order to a terminal state. Cabinet-level failures
// are recorded in the result and do not fail the order; an order-level
// failure (cabinet resolution, store errors) marks the order FAILED and
// is returned for logging.
func (p *Processor) Process(ctx context.Context, order model.SyncOrder) error {
	if order.Status.Terminal() {
		p.logger.Debug("skipping terminal order", "order_id", order.ID, "status", order.Status)
		return nil
	}

	claimed, err := p.store.ClaimOrder(ctx, order.ID)
	if err != nil {
		return fmt.Errorf("claim order %s: %w", order.ID, err)
	}
	if !claimed {
		p.logger.Debug("order no longer pending", "order_id", order.ID)
		return nil
	}

	start := time.Now()
	p.logger.Info("processing order",
		"order_id", order.ID,
		"cabinet_id", order.CabinetID,
		"pages", order.Pages,
	)

	cabinets, err := p.resolveCabinets(ctx, order)
	if err != nil {
		return p.fail(ctx, order.ID, err)
	}

	results := make([]model.CabinetResult, 0, len(cabinets))
	for i, cabinet := range cabinets {
		pages := pageCount(order.Pages, i, p.cfg.DefaultPages)
		results = append(results, p.syncCabinet(ctx, cabinet, pages))
	}

	if err := p.store.CompleteOrder(ctx, order.ID, results); err != nil {
		// Best effort: an order must still reach a terminal state when the
		// result write fails, or it stays IN_PROGRESS forever.
		return p.fail(ctx, order.ID, fmt.Errorf("complete order: %w", err))
	}

	p.logger.Info("order completed",
		"order_id", order.ID,
		"cabinets", len(results),
		"duration", time.Since(start),
	)
	return nil
}

// fail marks the order FAILED with the error message, keeping the
// original error for the caller.
func (p *Processor) fail(ctx context.Context, id uuid.UUID, cause error) error {
	if err := p.store.FailOrder(ctx, id, cause.Error()); err != nil {
		p.logger.Error("failed to mark order failed", "order_id", id, "err", err)
	}
	return fmt.Errorf("order %s: %w", id, cause)
}

// resolveCabinets returns the order's explicit cabinet, or every cabinet
// when the order targets all.
func (p *Processor) resolveCabinets(ctx context.Context, order model.SyncOrder) ([]model.Cabinet, error) {
	if order.CabinetID != nil {
		cabinet, err := p.store.CabinetByID(ctx, *order.CabinetID)
		if err != nil {
			return nil, err
		}
		return []model.Cabinet{cabinet}, nil
	}

	cabinets, err := p.store.Cabinets(ctx)
	if err != nil {
		return nil, err
	}
	if len(cabinets) == 0 {
		return nil, ErrNoCabinets
	}
	return cabinets, nil
}

// syncCabinet logs in, fetches up to pages of the feed and persists the
// unseen records. Any failure becomes the cabinet's error entry.
func (p *Processor) syncCabinet(ctx context.Context, cabinet model.Cabinet, pages int) model.CabinetResult {
	session, err := p.platform.Login(ctx, cabinet.Login, cabinet.Password)
	if err != nil {
		p.logger.Warn("cabinet login failed", "cabinet_id", cabinet.ID, "err", err)
		return model.CabinetResult{CabinetID: cabinet.ID, Error: err.Error()}
	}

	total, unseen, err := p.fetchNew(ctx, cabinet.ID, session, pages)
	if err != nil {
		p.logger.Warn("cabinet fetch failed", "cabinet_id", cabinet.ID, "err", err)
		return model.CabinetResult{CabinetID: cabinet.ID, Error: err.Error()}
	}

	created, err := p.store.SaveNewTransactions(ctx, cabinet.ID, unseen)
	if err != nil {
		p.logger.Warn("cabinet persist failed", "cabinet_id", cabinet.ID, "err", err)
		return model.CabinetResult{CabinetID: cabinet.ID, Error: err.Error()}
	}

	p.logger.Info("cabinet synced",
		"cabinet_id", cabinet.ID,
		"transactions", total,
		"new_transactions", len(created),
	)

	return model.CabinetResult{
		CabinetID:       cabinet.ID,
		Transactions:    total,
		NewTransactions: len(created),
	}
}
