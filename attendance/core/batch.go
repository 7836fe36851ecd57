package core

import (
	"context"
	"time"

	"axiapac.com/attendance/utils"
)

const (
	DefaultBatchSize  = 10
	DefaultBatchPause = 500 * time.Millisecond
)

// RetryPolicy controls how often a failing batch is re-attempted and how long
// to wait between attempts. Delay receives the attempt number that just failed.
// Retryable reports whether an error is worth another attempt; nil retries
// every error.
type RetryPolicy struct {
	MaxAttempts int
	Delay       func(attempt int) time.Duration
	Retryable   func(err error) bool
}

func (p RetryPolicy) retry(err error) bool {
	return p.Retryable == nil || p.Retryable(err)
}

func ConstantDelay(d time.Duration) func(int) time.Duration {
	return func(int) time.Duration { return d }
}

// ExponentialDelay doubles base after every failed attempt, capped at max.
func ExponentialDelay(base, max time.Duration) func(int) time.Duration {
	return func(attempt int) time.Duration {
		d := base
		for i := 1; i < attempt; i++ {
			d *= 2
			if d >= max {
				return max
			}
		}
		return d
	}
}

// NoRetry runs each batch once.
var NoRetry = RetryPolicy{MaxAttempts: 1}

type BatchOptions struct {
	Size  int
	Pause time.Duration
	Retry RetryPolicy
	// Sleep waits for d or until ctx is done. Defaults to a timer-based wait.
	Sleep func(ctx context.Context, d time.Duration) error
}

type BatchResult[T any] struct {
	Index    int
	Items    []T
	Attempts int
	Err      error
}

// RunBatches calls fn for consecutive batches of items, one at a time,
// pausing between batches. A batch failing after all retry attempts is
// recorded in its result and the remaining batches still run. Only context
// cancellation stops the loop early; the returned error is then ctx.Err().
func RunBatches[T any](ctx context.Context, items []T, opts BatchOptions, fn func(context.Context, []T) error) ([]BatchResult[T], error) {
	size := opts.Size
	if size < 1 {
		size = DefaultBatchSize
	}
	attempts := opts.Retry.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}
	sleep := opts.Sleep
	if sleep == nil {
		sleep = sleepContext
	}

	batches := utils.Chunk(items, size)
	results := make([]BatchResult[T], 0, len(batches))
	for i, batch := range batches {
		if i > 0 && opts.Pause > 0 {
			if err := sleep(ctx, opts.Pause); err != nil {
				return results, err
			}
		}

		res := BatchResult[T]{Index: i, Items: batch}
		for attempt := 1; attempt <= attempts; attempt++ {
			res.Attempts = attempt
			res.Err = fn(ctx, batch)
			if res.Err == nil || attempt == attempts || !opts.Retry.retry(res.Err) {
				break
			}
			if opts.Retry.Delay != nil {
				if err := sleep(ctx, opts.Retry.Delay(attempt)); err != nil {
					results = append(results, res)
					return results, err
				}
			}
		}
		results = append(results, res)
	}
	return results, nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
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
