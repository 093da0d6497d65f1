// Package syncer implements per-order processing.
//
// The processor:
//   - Claims a pending order (PENDING -> IN_PROGRESS)
//   - Resolves the target cabinet, or all cabinets when none is set
//   - Per cabinet: logs in, walks payout pages with early termination,
//     persists unseen transactions
//   - Aggregates per-cabinet outcomes and finishes the order
//     (COMPLETED, or FAILED on an order-level error)
//
// Cabinet failures never fail the order; they become error entries in the
// aggregated result.
package syncer
