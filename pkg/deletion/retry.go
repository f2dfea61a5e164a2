package deletion

import (
	"context"
	"io"
	"time"

	"github.com/sirupsen/logrus"
)

// Backoff computes the wait before the next commit attempt.
type Backoff interface {
	Next(attempt int) time.Duration
}

// ExponentialBackoff doubles the delay on every attempt, capped at Max.
type ExponentialBackoff struct {
	Base time.Duration
	Max  time.Duration
}

// Next returns the delay after the given attempt (1-based).
func (b ExponentialBackoff) Next(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	base := b.Base
	if base <= 0 {
		return 0
	}
	delay := base << (attempt - 1)
	if b.Max > 0 && delay > b.Max {
		return b.Max
	}
	return delay
}

// DefaultBackoff is used when a Coordinator is built without WithRetry.
func DefaultBackoff() Backoff {
	return ExponentialBackoff{
		Base: 200 * time.Millisecond,
		Max:  2 * time.Second,
	}
}

// RetryPolicy bounds how hard a commit is attempted before it is abandoned.
type RetryPolicy struct {
	Attempts int
	Backoff  Backoff
}

// DefaultRetryPolicy tries a commit three times.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{Attempts: 3, Backoff: DefaultBackoff()}
}

func (p RetryPolicy) run(ctx context.Context, clock Clock, log *logrus.Entry, op func(context.Context) error) error {
	attempts := p.Attempts
	if attempts < 1 {
		attempts = 1
	}
	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err = op(ctx); err == nil {
			return nil
		}
		if attempt == attempts {
			break
		}
		var wait time.Duration
		if p.Backoff != nil {
			wait = p.Backoff.Next(attempt)
		}
		log.WithError(err).WithFields(logrus.Fields{
			"attempt": attempt,
			"wait":    wait,
		}).Warn("commit failed, retrying")
		if err := sleep(ctx, clock, wait); err != nil {
			return err
		}
	}
	return err
}

// sleep waits d on clock. With a ManualClock the wait ends when another
// goroutine advances the clock past it.
func sleep(ctx context.Context, clock Clock, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	elapsed := make(chan struct{})
	t := clock.AfterFunc(d, func() { close(elapsed) })
	select {
	case <-ctx.Done():
		t.Stop()
		return ctx.Err()
	case <-elapsed:
		return nil
	}
}

func discardLogger() *logrus.Entry {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return logrus.NewEntry(l)
}
