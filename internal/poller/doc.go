// Package poller implements the outer poll loop.
//
// The loop:
//   - Queries pending sync orders on a fixed interval (default: 10s)
//   - Dispatches them to the order processor sequentially, one at a time
//   - Logs and swallows cycle errors, continuing on the next tick
//
// Stop cancels scheduling; an in-flight order finishes within the grace
// context passed to Stop.
package poller
