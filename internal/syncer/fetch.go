package syncer

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/rgordeev/payout-sync/internal/model"
)

// fetchNew walks up to pages of the payout feed sequentially and returns
// the records not yet known to the store, plus the total seen. Pages are
// spaced by the inter-page delay (skipped before page 1) to stay under
// the platform's rate limiter.
//
// Once a page yields zero unseen records the walk stops: the feed is
// newest-first, so a fully-known page means the remainder is assumed
// known too. Known limitation: out-of-order insertion upstream can make
// that assumption wrong, and such records are missed until a later order.
//
// A page fetch error skips that page and continues; a store error is
// fatal to the cabinet.
func (p *Processor) fetchNew(ctx context.Context, cabinetID uuid.UUID, session model.Session, pages int) (total int, unseen []model.RemoteTransaction, err error) {
	for page := 1; page <= pages; page++ {
		if page > 1 && p.cfg.PageDelay > 0 {
			select {
			case <-ctx.Done():
				return total, unseen, ctx.Err()
			case <-time.After(p.cfg.PageDelay):
			}
		}

		records, err := p.platform.GetPayoutsPage(ctx, session, page)
		if err != nil {
			p.logger.Warn("page fetch failed, skipping",
				"cabinet_id", cabinetID,
				"page", page,
				"err", err,
			)
			continue
		}
		total += len(records)

		ids := make([]int64, 0, len(records))
		for _, r := range records {
			ids = append(ids, r.ID)
		}

		existing, err := p.store.ExistingExternalIDs(ctx, cabinetID, ids)
		if err != nil {
			return total, unseen, err
		}

		fresh := 0
		for _, r := range records {
			if existing[r.ID] {
				continue
			}
			unseen = append(unseen, r)
			fresh++
		}

		if fresh == 0 {
			p.logger.Debug("feed caught up, stopping early",
				"cabinet_id", cabinetID,
				"page", page,
			)
			break
		}
	}

	return total, unseen, nil
}
