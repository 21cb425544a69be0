package listener

import (
	"context"
	"time"
)

const maxRetryDelay = 8 * time.Second

// retry runs fn up to attempts times, doubling the delay between tries
// up to maxRetryDelay. The context ends the wait early.
func retry(ctx context.Context, attempts int, delay time.Duration, fn func(context.Context) error) error {
	if attempts < 1 {
		attempts = 1
	}
	if delay <= 0 {
		delay = 100 * time.Millisecond
	}

	var err error
	for attempt := 1; ; attempt++ {
		if err = fn(ctx); err == nil {
			return nil
		}
		if attempt == attempts {
			return err
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}

		delay *= 2
		if delay > maxRetryDelay {
			delay = maxRetryDelay
		}
	}
}
