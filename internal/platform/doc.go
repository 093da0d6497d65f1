// Package platform implements the HTTP client for the remote payout
// platform.
//
// The client:
//   - Retries HTTP 429 responses with server-supplied or exponential
//     backoff, capped at a fixed number of attempts
//   - Exchanges cabinet credentials for a session cookie pair via the
//     login endpoint
//   - Fetches single pages of the payout feed using an active session
//
// All other non-2xx responses fail immediately without retry.
package platform
