// Package model defines the core types shared across the sync daemon:
// sync orders and their status machine, cabinets, platform sessions and
// payout transactions.
package model
