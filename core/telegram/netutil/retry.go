// Package netutil classifies transport errors from Telegram API calls.
package netutil

import (
	"context"
	"errors"
	"io"
	"net"
	"syscall"
	"time"
)

// ShouldRetry reports whether err looks transient: timeouts, refused or
// reset connections, and truncated responses. Cancellation never retries.
func ShouldRetry(err error) bool {
	switch {
	case err == nil:
		return false
	case errors.Is(err, context.Canceled):
		return false
	case errors.Is(err, context.DeadlineExceeded):
		return true
	case errors.Is(err, syscall.ECONNREFUSED), errors.Is(err, syscall.ECONNRESET):
		return true
	case errors.Is(err, io.ErrUnexpectedEOF):
		return true
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) && opErr.Op == "dial" {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// Backoff grows base linearly with attempt (1-based) and caps it at max.
// A non-positive max means no cap.
func Backoff(base time.Duration, attempt int, max time.Duration) time.Duration {
	if base <= 0 || attempt <= 0 {
		return 0
	}
	d := base * time.Duration(attempt)
	if max > 0 && d > max {
		return max
	}
	return d
}

// Sleep waits for d or until ctx is done, returning ctx's error in that case.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
