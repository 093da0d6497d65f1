// Package store implements Postgres persistence for the sync daemon.
//
// The store:
//   - Reads and transitions sync orders (PENDING -> IN_PROGRESS -> terminal)
//   - Resolves cabinets for an order
//   - Persists payout transactions deduplicated on (external_id, cabinet_id)
//
// Every operation runs through a retry wrapper that backs off and retries
// when the server is unreachable; all other errors surface immediately.
package store
