package store

import (
	"context"
	"errors"
	"time"
)

// retryableError marks a failure as transient.
type retryableError struct{ err error }

func (e *retryableError) Error() string { return e.err.Error() }
func (e *retryableError) Unwrap() error { return e.err }

// retryable wraps err so that retry attempts the operation again.
func retryable(err error) error {
	if err == nil {
		return nil
	}
	return &retryableError{err: err}
}

func isRetryable(err error) bool {
	return errors.As(err, new(*retryableError))
}

// retry executes fn up to MaxRetries times with exponential backoff starting
// at RetryDelay. Only errors wrapped with retryable are retried; others are
// returned immediately. It returns the last error if all attempts fail, or
// ctx.Err() if cancelled while waiting.
func (s *Store) retry(ctx context.Context, op, path string, fn func() error) error {
	attempts := max(s.opts.MaxRetries, 1)
	delay := s.opts.RetryDelay
	var lastErr error

	for i := range attempts {
		if err := fn(); err == nil {
			return nil
		} else if lastErr = err; !isRetryable(err) {
			return err
		}

		if i < attempts-1 {
			s.log.Warn("transient I/O failure, retrying", "op", op, "path", path, "attempt", i+1, "err", lastErr)
			s.hooks().OnRetry(ctx, op, path, i+1, lastErr)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
				delay *= 2
			}
		}
	}
	return lastErr
}
