package hardware

import (
	"context"
	"errors"
	"time"

	"github.com/nerrad567/gray-logic-onoff/internal/infrastructure/mqtt"
)

// RetryPolicy controls how a bridge command is re-published after a
// transient broker failure.
type RetryPolicy struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
}

// DefaultRetryPolicy keeps the worst case well under a second so a relay
// command never stalls the caller for long.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts:  3,
		InitialDelay: 100 * time.Millisecond,
		MaxDelay:     400 * time.Millisecond,
		Multiplier:   2.0,
	}
}

// retryable reports whether a publish error may clear on its own.
func retryable(err error) bool {
	return errors.Is(err, mqtt.ErrNotConnected) || errors.Is(err, mqtt.ErrPublishFailed)
}

// do runs fn until it succeeds, fails permanently, or attempts run out.
// The last error is returned.
func (rp RetryPolicy) do(ctx context.Context, fn func() error) error {
	attempts := rp.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}
	delay := rp.InitialDelay

	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err = fn(); err == nil || !retryable(err) || attempt == attempts {
			return err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}

		delay = time.Duration(float64(delay) * rp.Multiplier)
		if delay > rp.MaxDelay {
			delay = rp.MaxDelay
		}
	}
	return err
}
