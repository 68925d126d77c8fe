// Package retrypoll composes the two retry layers used while waiting for a
// remote job: a bounded retry for transient failures and an unbounded poll
// for results that are not ready yet.
package retrypoll

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sethvargo/go-retry"
)

const (
	// DefaultStep is added to Interval once per transient attempt.
	DefaultStep = 2 * time.Second
	// DefaultMaxTransientRetries caps retries of a transiently failing call.
	DefaultMaxTransientRetries = 5
	// DefaultLabel prefixes the attempt-numbered progress message.
	DefaultLabel = "Checking operation"
)

var errNotReady = errors.New("result not ready")

// Policy parameterises one Transient, UntilReady or Poll call.
type Policy[T any] struct {
	// Interval is the fixed wait between not-ready polls and the base of
	// the transient backoff.
	Interval time.Duration
	Step     time.Duration
	// MaxTransientRetries of 0 means DefaultMaxTransientRetries.
	MaxTransientRetries int
	IsTransient         func(error) bool
	// IsReady reports whether a successful result ends the poll. A nil
	// IsReady treats every result as ready.
	IsReady func(T) bool
	Label   string
	// Report receives "<Label> #N" before each wait, where N numbers the
	// attempt about to run (2 for the first retry).
	Report func(string)
}

func (p Policy[T]) withDefaults() Policy[T] {
	if p.Step <= 0 {
		p.Step = DefaultStep
	}
	if p.MaxTransientRetries <= 0 {
		p.MaxTransientRetries = DefaultMaxTransientRetries
	}
	if p.Label == "" {
		p.Label = DefaultLabel
	}
	return p
}

func (p Policy[T]) report(attempt int) {
	if p.Report != nil {
		p.Report(fmt.Sprintf("%s #%d", p.Label, attempt))
	}
}

// ExhaustedError is returned when a transient failure persists past the
// retry cap. Err is the last failure observed.
type ExhaustedError struct {
	Attempts int
	Err      error
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("gave up after %d attempts: %v", e.Attempts, e.Err)
}

func (e *ExhaustedError) Unwrap() error { return e.Err }

// Transient calls op and retries it while IsTransient classifies its error as
// retryable. Attempt n (the first call is attempt 1) is followed by a wait of
// Interval + (n+1)*Step, so the first retry waits Interval + 2*Step. Other
// errors are returned at once.
func Transient[T any](ctx context.Context, p Policy[T], op func(context.Context) (T, error)) (T, error) {
	p = p.withDefaults()

	var (
		result    T
		retries   int
		exhausted bool
	)
	backoff := retry.BackoffFunc(func() (time.Duration, bool) {
		if retries >= p.MaxTransientRetries {
			exhausted = true
			return 0, true
		}
		retries++
		attempt := retries + 1
		p.report(attempt)
		return p.Interval + time.Duration(attempt)*p.Step, false
	})

	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		value, err := op(ctx)
		if err != nil {
			if p.IsTransient != nil && p.IsTransient(err) {
				return retry.RetryableError(err)
			}
			return err
		}
		result = value
		return nil
	})
	if err != nil {
		var zero T
		if exhausted {
			return zero, &ExhaustedError{Attempts: retries + 1, Err: err}
		}
		return zero, err
	}
	return result, nil
}

// UntilReady calls op until IsReady accepts its result, waiting Interval
// between calls. There is no attempt cap; ctx bounds the wait. Errors from op
// end the poll immediately.
func UntilReady[T any](ctx context.Context, p Policy[T], op func(context.Context) (T, error)) (T, error) {
	p = p.withDefaults()

	var (
		result T
		polls  int
	)
	backoff := retry.BackoffFunc(func() (time.Duration, bool) {
		polls++
		p.report(polls + 1)
		return p.Interval, false
	})

	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		value, err := op(ctx)
		if err != nil {
			return err
		}
		if p.IsReady != nil && !p.IsReady(value) {
			return retry.RetryableError(errNotReady)
		}
		result = value
		return nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return result, nil
}

// Poll wraps every UntilReady attempt in Transient, so a single status check
// may fail transiently (bounded retries), succeed without a result (polled
// again forever) or return the result.
func Poll[T any](ctx context.Context, p Policy[T], op func(context.Context) (T, error)) (T, error) {
	return UntilReady(ctx, p, func(ctx context.Context) (T, error) {
		return Transient(ctx, p, op)
	})
}
