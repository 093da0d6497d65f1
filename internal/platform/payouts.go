package platform

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/rgordeev/payout-sync/internal/model"
)

const payoutsPath = "/api/payouts"

// GetPayoutsPage fetches one page of the payout feed using an active
// session. The feed is newest-first; page 1 is the most recent slice.
func (c *Client) GetPayoutsPage(ctx context.Context, session model.Session, page int) ([]model.RemoteTransaction, error) {
	query := url.Values{}
	query.Set("page", strconv.Itoa(page))

	cookies := []*http.Cookie{
		{Name: SessionCookie, Value: session.SessionID},
		{Name: RefreshCookie, Value: session.RefreshID},
	}

	resp, err := c.do(ctx, http.MethodGet, payoutsPath, query, nil, cookies)
	if err != nil {
		return nil, fmt.Errorf("get payouts page %d: %w", page, err)
	}

	txs, err := decodePayoutsBody(resp.body)
	if err != nil {
		return nil, fmt.Errorf("payouts page %d: %w", page, err)
	}

	return txs, nil
}

// decodePayoutsBody extracts the transaction list from either known
// envelope: a flat {data:[...]} or the nested
// {response:{payouts:{data:[...]}}}.
func decodePayoutsBody(body []byte) ([]model.RemoteTransaction, error) {
	var flat struct {
		Data []model.RemoteTransaction `json:"data"`
	}
	if err := json.Unmarshal(body, &flat); err == nil && flat.Data != nil {
		return flat.Data, nil
	}

	var nested struct {
		Response struct {
			Payouts struct {
				Data []model.RemoteTransaction `json:"data"`
			} `json:"payouts"`
		} `json:"response"`
	}
	if err := json.Unmarshal(body, &nested); err == nil && nested.Response.Payouts.Data != nil {
		return nested.Response.Payouts.Data, nil
	}

	return nil, ErrUnexpectedResponseShape
}
