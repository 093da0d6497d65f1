package poller

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/rgordeev/payout-sync/internal/model"
)

// OrderSource provides pending sync orders.
type OrderSource interface {
	PendingOrders(ctx context.Context) ([]model.SyncOrder, error)
}

// OrderProcessor runs one order to a terminal state.
type OrderProcessor interface {
	Process(ctx context.Context, order model.SyncOrder) error
}

// OrderProcessorFunc is a function adapter for OrderProcessor.
type OrderProcessorFunc func(ctx context.Context, order model.SyncOrder) error

func (f OrderProcessorFunc) Process(ctx context.Context, order model.SyncOrder) error {
	return f(ctx, order)
}

// Config holds poll loop configuration.
type Config struct {
	Interval time.Duration // poll interval (default: 10s)
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		Interval: 10 * time.Second,
	}
}

// Stats describes the loop's progress, exposed for health reporting.
type Stats struct {
	Cycles          int64
	OrdersProcessed int64
	OrderErrors     int64
	LastCycleAt     time.Time
}

// Poller repeatedly checks for pending orders and dispatches them. A
// single loop goroutine processes everything sequentially; iterations
// never overlap.
type Poller struct {
	cfg       Config
	orders    OrderSource
	processor OrderProcessor
	logger    *slog.Logger

	mu    sync.Mutex
	stats Stats

	// ctx only gates scheduling: loop-top checks and the ticker select.
	// In-flight order processing runs under procCtx, which survives Stop
	// until the grace window expires.
	ctx        context.Context
	cancel     context.CancelFunc
	procCtx    context.Context
	procCancel context.CancelFunc
	wg         sync.WaitGroup
}

// New creates a Poller.
func New(cfg Config, orders OrderSource, processor OrderProcessor, logger *slog.Logger) *Poller {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Interval == 0 {
		cfg.Interval = 10 * time.Second
	}
	return &Poller{
		cfg:       cfg,
		orders:    orders,
		processor: processor,
		logger:    logger,
	}
}

// Start begins the polling loop.
func (p *Poller) Start(ctx context.Context) error {
	p.ctx, p.cancel = context.WithCancel(ctx)

	// Processing is deliberately detached from ctx: cancellation must
	// stop scheduling, not interrupt an order mid-cabinet.
	p.procCtx, p.procCancel = context.WithCancel(context.Background())

	p.wg.Add(1)
	go p.run()

	p.logger.Info("order poller started", "interval", p.cfg.Interval)
	return nil
}

// Stop shuts the poller down. No new cycle is scheduled once called; the
// in-flight order keeps its own context and drains undisturbed until ctx
// expires, at which point processing is forcibly cancelled.
func (p *Poller) Stop(ctx context.Context) error {
	if p.cancel != nil {
		p.cancel()
	}

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		if p.procCancel != nil {
			p.procCancel()
		}
		p.logger.Info("order poller stopped")
		return nil
	case <-ctx.Done():
		if p.procCancel != nil {
			p.procCancel()
		}
		p.logger.Warn("order poller stop timed out, cancelling in-flight work")
		return ctx.Err()
	}
}

// Stats returns a snapshot of loop progress.
func (p *Poller) Stats() Stats {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stats
}

// run is the main polling loop.
func (p *Poller) run() {
	defer p.wg.Done()

	ticker := time.NewTicker(p.cfg.Interval)
	defer ticker.Stop()

	// Check immediately on start.
	p.cycle()

	for {
		select {
		case <-p.ctx.Done():
			return
		case <-ticker.C:
			p.cycle()
		}
	}
}

// cycle runs one poll iteration. Errors are logged, never fatal to the
// loop.
func (p *Poller) cycle() {
	start := time.Now()

	orders, err := p.orders.PendingOrders(p.procCtx)
	if err != nil {
		p.logger.Error("failed to query pending orders", "err", err)
		p.recordCycle(0, 0)
		return
	}

	if len(orders) == 0 {
		p.logger.Debug("no pending orders")
		p.recordCycle(0, 0)
		return
	}

	p.logger.Info("dispatching pending orders", "count", len(orders))

	var processed, failed int64
	for _, order := range orders {
		select {
		case <-p.ctx.Done():
			p.recordCycle(processed, failed)
			return
		default:
		}

		if err := p.processor.Process(p.procCtx, order); err != nil {
			p.logger.Error("order processing failed", "order_id", order.ID, "err", err)
			failed++
			continue
		}
		processed++
	}

	p.recordCycle(processed, failed)
	p.logger.Info("poll cycle complete",
		"orders", len(orders),
		"processed", processed,
		"failed", failed,
		"duration", time.Since(start),
	)
}

func (p *Poller) recordCycle(processed, failed int64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stats.Cycles++
	p.stats.OrdersProcessed += processed
	p.stats.OrderErrors += failed
	p.stats.LastCycleAt = time.Now()
}
