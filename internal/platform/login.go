package platform

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/rgordeev/payout-sync/internal/model"
)

// Cookie names issued by the login endpoint. Both are required on every
// authenticated call.
const (
	SessionCookie = "sessionid"
	RefreshCookie = "refreshid"
)

const loginPath = "/api/auth/login"

// Login exchanges cabinet credentials for a session cookie pair. The
// session is not cached; callers fetch a fresh one per cabinet per order.
func (c *Client) Login(ctx context.Context, login, password string) (model.Session, error) {
	payload, err := json.Marshal(map[string]string{
		"login":    login,
		"password": password,
	})
	if err != nil {
		return model.Session{}, fmt.Errorf("marshal credentials: %w", err)
	}

	resp, err := c.do(ctx, http.MethodPost, loginPath, nil, payload, nil)
	if err != nil {
		return model.Session{}, fmt.Errorf("login: %w", err)
	}

	if len(resp.cookies) == 0 {
		return model.Session{}, fmt.Errorf("%w: no cookies in login response", ErrAuthenticationFailed)
	}

	var session model.Session
	for _, ck := range resp.cookies {
		switch ck.Name {
		case SessionCookie:
			session.SessionID = ck.Value
		case RefreshCookie:
			session.RefreshID = ck.Value
		}
	}

	if session.SessionID == "" || session.RefreshID == "" {
		return model.Session{}, fmt.Errorf("%w: incomplete cookie pair (%s, %s required)",
			ErrAuthenticationFailed, SessionCookie, RefreshCookie)
	}

	return session, nil
}
