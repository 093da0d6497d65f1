package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderStatus is the lifecycle state of a sync order.
type OrderStatus string

const (
	StatusPending    OrderStatus = "PENDING"
	StatusInProgress OrderStatus = "IN_PROGRESS"
	StatusCompleted  OrderStatus = "COMPLETED"
	StatusFailed     OrderStatus = "FAILED"
)

// Terminal reports whether the status permits no further processing.
func (s OrderStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// SyncOrder is a unit of work requesting payout synchronization for one
// cabinet (CabinetID set) or for every cabinet (CabinetID nil).
//
// Allowed transitions: PENDING -> IN_PROGRESS -> {COMPLETED, FAILED}.
type SyncOrder struct {
	ID        uuid.UUID
	CabinetID *uuid.UUID // nil = every cabinet in the store
	Status    OrderStatus

	// Pages holds requested page counts, indexed by cabinet position.
	// Empty means the default count; the last value repeats for overflow
	// indexes.
	Pages []int

	StartedAt  *time.Time
	FinishedAt *time.Time

	// Result holds per-cabinet outcome entries once processing ends.
	Result []CabinetResult

	CreatedAt time.Time
}

// CabinetResult is one entry of an order's aggregated result. Either the
// counters are meaningful, or Error carries the failure message.
type CabinetResult struct {
	CabinetID       uuid.UUID `json:"cabinet_id"`
	Transactions    int       `json:"transactions"`
	NewTransactions int       `json:"new_transactions"`
	Error           string    `json:"error,omitempty"`
}

// Cabinet is a credentialed account on the remote payout platform.
// Read-only to the sync core.
type Cabinet struct {
	ID         uuid.UUID
	ExternalID string // platform-assigned account id
	Login      string
	Password   string
}

// Session is the cookie pair required by authenticated platform calls.
// Fetched fresh per cabinet per order, never persisted.
type Session struct {
	SessionID string
	RefreshID string
}

// RemoteTransaction is one payout record from the platform feed. Fields
// the sync core does not recognize are preserved verbatim in Extra.
type RemoteTransaction struct {
	ID              int64
	PaymentMethodID int64
	Wallet          string
	Amount          decimal.Decimal
	Total           decimal.Decimal
	Status          int
	ApprovedAt      *time.Time
	ExpiredAt       *time.Time
	CreatedAt       string // raw feed timestamp, kept verbatim
	UpdatedAt       string // raw feed timestamp, kept verbatim

	Extra map[string]json.RawMessage
}

// knownTransactionFields lists the top-level feed fields parsed into
// typed columns. Everything else lands in Extra.
var knownTransactionFields = map[string]bool{
	"id":                true,
	"payment_method_id": true,
	"wallet":            true,
	"amount":            true,
	"total":             true,
	"status":            true,
	"approved_at":       true,
	"expired_at":        true,
	"created_at":        true,
	"updated_at":        true,
}

// UnmarshalJSON parses the known fields and collects the remainder into
// Extra. Amounts decode through decimal to avoid float rounding; ids
// decode as int64 since platform ids exceed 32-bit range.
func (t *RemoteTransaction) UnmarshalJSON(data []byte) error {
	var known struct {
		ID              int64           `json:"id"`
		PaymentMethodID int64           `json:"payment_method_id"`
		Wallet          string          `json:"wallet"`
		Amount          decimal.Decimal `json:"amount"`
		Total           decimal.Decimal `json:"total"`
		Status          int             `json:"status"`
		ApprovedAt      *time.Time      `json:"approved_at"`
		ExpiredAt       *time.Time      `json:"expired_at"`
		CreatedAt       string          `json:"created_at"`
		UpdatedAt       string          `json:"updated_at"`
	}
	if err := json.Unmarshal(data, &known); err != nil {
		return err
	}

	var all map[string]json.RawMessage
	if err := json.Unmarshal(data, &all); err != nil {
		return err
	}

	t.ID = known.ID
	t.PaymentMethodID = known.PaymentMethodID
	t.Wallet = known.Wallet
	t.Amount = known.Amount
	t.Total = known.Total
	t.Status = known.Status
	t.ApprovedAt = known.ApprovedAt
	t.ExpiredAt = known.ExpiredAt
	t.CreatedAt = known.CreatedAt
	t.UpdatedAt = known.UpdatedAt

	t.Extra = nil
	for k, v := range all {
		if knownTransactionFields[k] {
			continue
		}
		if t.Extra == nil {
			t.Extra = make(map[string]json.RawMessage)
		}
		t.Extra[k] = v
	}

	return nil
}
