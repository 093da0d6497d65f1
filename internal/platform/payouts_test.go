package platform

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rgordeev/payout-sync/internal/model"
)

const payoutJSON = `{
	"id": 9007199254740993,
	"payment_method_id": 42,
	"wallet": "WALLET-1",
	"amount": "150.75",
	"total": "155.00",
	"status": 2,
	"approved_at": "2026-08-01T10:00:00Z",
	"created_at": "2026-08-01 09:58:12",
	"updated_at": "2026-08-01 10:00:03",
	"operator_note": "manual review",
	"fee": {"kind": "flat", "value": "4.25"}
}`

func testSession() model.Session {
	return model.Session{SessionID: "sess-1", RefreshID: "ref-1"}
}

func TestGetPayoutsPageFlatShape(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("page"); got != "3" {
			t.Errorf("page = %q, want %q", got, "3")
		}

		if ck, err := r.Cookie(SessionCookie); err != nil || ck.Value != "sess-1" {
			t.Errorf("session cookie missing or wrong: %v", ck)
		}
		if ck, err := r.Cookie(RefreshCookie); err != nil || ck.Value != "ref-1" {
			t.Errorf("refresh cookie missing or wrong: %v", ck)
		}

		w.Write([]byte(`{"data":[` + payoutJSON + `]}`))
	}))
	defer server.Close()

	client := NewClient(server.URL)

	txs, err := client.GetPayoutsPage(context.Background(), testSession(), 3)
	if err != nil {
		t.Fatalf("GetPayoutsPage failed: %v", err)
	}
	if len(txs) != 1 {
		t.Fatalf("len(txs) = %d, want 1", len(txs))
	}

	tx := txs[0]
	if tx.ID != 9007199254740993 {
		t.Errorf("ID = %d, want 9007199254740993", tx.ID)
	}
	if tx.Amount.String() != "150.75" {
		t.Errorf("Amount = %s, want 150.75", tx.Amount)
	}
	if tx.CreatedAt != "2026-08-01 09:58:12" {
		t.Errorf("CreatedAt = %q, want raw string preserved", tx.CreatedAt)
	}
	if _, ok := tx.Extra["operator_note"]; !ok {
		t.Error("Extra missing operator_note")
	}
	if _, ok := tx.Extra["fee"]; !ok {
		t.Error("Extra missing fee")
	}
	if _, ok := tx.Extra["amount"]; ok {
		t.Error("Extra should not contain known field amount")
	}
}

func TestGetPayoutsPageNestedShape(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"response":{"payouts":{"data":[` + payoutJSON + `]}}}`))
	}))
	defer server.Close()

	client := NewClient(server.URL)

	txs, err := client.GetPayoutsPage(context.Background(), testSession(), 1)
	if err != nil {
		t.Fatalf("GetPayoutsPage failed: %v", err)
	}
	if len(txs) != 1 {
		t.Fatalf("len(txs) = %d, want 1", len(txs))
	}
	if txs[0].Wallet != "WALLET-1" {
		t.Errorf("Wallet = %q, want WALLET-1", txs[0].Wallet)
	}
}

func TestGetPayoutsPageEmptyPage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":[]}`))
	}))
	defer server.Close()

	client := NewClient(server.URL)

	txs, err := client.GetPayoutsPage(context.Background(), testSession(), 1)
	if err != nil {
		t.Fatalf("GetPayoutsPage failed: %v", err)
	}
	if len(txs) != 0 {
		t.Errorf("len(txs) = %d, want 0", len(txs))
	}
}

func TestGetPayoutsPageUnexpectedShape(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"payouts":[1,2,3]}`))
	}))
	defer server.Close()

	client := NewClient(server.URL)

	_, err := client.GetPayoutsPage(context.Background(), testSession(), 1)
	if !errors.Is(err, ErrUnexpectedResponseShape) {
		t.Errorf("err = %v, want ErrUnexpectedResponseShape", err)
	}
}
