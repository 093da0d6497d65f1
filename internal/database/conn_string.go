package database

import (
	"fmt"
	"net/url"

	"github.com/rgordeev/payout-sync/internal/config"
)

// appName labels our connections in pg_stat_activity so the daemon's
// sessions are distinguishable from ad-hoc clients.
const appName = "payout-syncd"

// BuildConnString builds a PostgreSQL connection URL from config.
// Credentials are URL-escaped so passwords with special characters
// survive parsing.
func BuildConnString(cfg config.DBConfig) string {
	sslMode := cfg.SSLMode
	if sslMode == "" {
		sslMode = "prefer"
	}

	q := url.Values{}
	q.Set("sslmode", sslMode)
	q.Set("application_name", appName)

	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(cfg.User, cfg.Password),
		Host:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Path:     "/" + cfg.Name,
		RawQuery: q.Encode(),
	}
	return u.String()
}
