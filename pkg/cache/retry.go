package cache

import (
	"context"
	"errors"
	"io"
	"net"
	"time"
)

// ErrNetwork marks a failed round trip to a remote cache backend.
var ErrNetwork = errors.New("network error")

type retryable struct{ error }

func (r retryable) Unwrap() error { return r.error }

// Retryable marks err as worth another attempt. It returns nil for nil.
func Retryable(err error) error {
	if err == nil {
		return nil
	}
	return retryable{err}
}

// IsRetryable reports whether err, or an error it wraps, was marked with
// [Retryable].
func IsRetryable(err error) bool {
	var r retryable
	return errors.As(err, &r)
}

// transient classifies a backend error. Connection drops and timeouts are
// retried as ErrNetwork; anything the server answered, such as a WRONGTYPE
// reply, is returned as is.
func transient(err error) error {
	var ne net.Error
	if errors.As(err, &ne) || errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return Retryable(errors.Join(ErrNetwork, err))
	}
	return err
}

var (
	retryAttempts  = 3
	retryBaseDelay = 200 * time.Millisecond
)

// RetryWithBackoff calls fn until it succeeds, returns an error not marked
// with [Retryable], or has been tried retryAttempts times. The wait starts at
// retryBaseDelay and doubles between attempts.
func RetryWithBackoff(ctx context.Context, fn func() error) error {
	wait := retryBaseDelay
	for attempt := 1; ; attempt++ {
		err := fn()
		if err == nil || !IsRetryable(err) || attempt == retryAttempts {
			return err
		}

		t := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			t.Stop()
			return ctx.Err()
		case <-t.C:
		}
		wait *= 2
	}
}
