// Package database provides the PostgreSQL connection pool for the sync
// daemon. One pool serves sync orders, cabinets and payout transactions.
package database
