package rabbit

import (
	"context"
	"errors"
	"time"
)

// isRecoverableError returns true if a failed publish is worth retrying
func isRecoverableError(err error) bool {
	return !oneOf(err, context.Canceled, context.DeadlineExceeded, errUnmarshalable)
}

func oneOf(err error, targets ...error) bool {
	for _, t := range targets {
		if errors.Is(err, t) {
			return true
		}
	}
	return false
}

// retry calls fn up to n times, stopping early on success, an unrecoverable error or ctx cancellation.
func retry(ctx context.Context, n int, sleep time.Duration, fn func() error) error {
	var err error
	for i := range n {
		if err = fn(); err == nil || !isRecoverableError(err) {
			return err
		}
		if i == n-1 {
			break
		}

		select {
		case <-ctx.Done():
			return errors.Join(err, ctx.Err())
		case <-time.After(sleep):
		}
	}
	return err
}
