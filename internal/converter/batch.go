package converter

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"

	"deepart/internal/deepart"
	"deepart/internal/files"
	"deepart/internal/logging"
)

type outcome uint8

const (
	outcomeNotStarted outcome = iota
	outcomeConverted
	outcomeFailed
	outcomeCancelled
)

// BatchResult counts file outcomes of a ConvertFiles call.
type BatchResult struct {
	Converted int
	Failed    int
	Cancelled int
}

// ConvertFiles converts all files with effect. It returns nil when every file
// converted, ErrBatchTimeout when the configured deadline fired, an error
// wrapping ErrCancelled when ctx was cancelled, and a *BatchError listing
// each failed file otherwise.
func (c *Converter) ConvertFiles(ctx context.Context, batch []files.Descriptor, effect deepart.Effect, sink ProgressSink) error {
	_, err := c.ConvertBatch(ctx, batch, effect, sink)
	return err
}

// ConvertBatch is ConvertFiles that also returns per-outcome counts.
func (c *Converter) ConvertBatch(ctx context.Context, batch []files.Descriptor, effect deepart.Effect, sink ProgressSink) (BatchResult, error) {
	if sink == nil {
		sink = discardSink{}
	}
	if len(batch) == 0 {
		return BatchResult{}, nil
	}

	var (
		runCtx context.Context
		cancel context.CancelFunc
	)
	if c.opts.Timeout > 0 {
		runCtx, cancel = context.WithTimeoutCause(ctx, c.opts.Timeout, ErrBatchTimeout)
	} else {
		runCtx, cancel = context.WithCancel(ctx)
	}
	defer cancel()

	limit := c.opts.Parallelism
	if limit <= 0 || limit > len(batch) {
		limit = len(batch)
	}

	started := time.Now()
	c.logger.Info("batch started",
		logging.String(logging.FieldEventType, "batch_start"),
		logging.Int("files", len(batch)),
		logging.Int("parallelism", limit),
		logging.String("effect", effect.Name),
	)

	var (
		group    errgroup.Group
		stop     atomic.Bool
		results  = make([]error, len(batch))
		outcomes = make([]outcome, len(batch))
	)
	group.SetLimit(limit)

	convert := func(i int, recheck bool) func() error {
		return func() error {
			// A slot that frees up after a failure must not start new work.
			if recheck && (stop.Load() || runCtx.Err() != nil) {
				return nil
			}
			file := batch[i]
			err := c.ConvertFile(runCtx, file, effect, func(state string) {
				sink.Report(Progress{File: file, State: state})
			})
			cancelled := isCancellation(runCtx, err)
			sink.Report(Progress{File: file, Completed: true, Cancelled: cancelled, Err: err})
			switch {
			case err == nil:
				outcomes[i] = outcomeConverted
			case cancelled:
				outcomes[i] = outcomeCancelled
			default:
				outcomes[i] = outcomeFailed
				results[i] = err
				stop.Store(true)
			}
			return nil
		}
	}

	for i := range batch {
		if stop.Load() || runCtx.Err() != nil {
			break
		}
		if group.TryGo(convert(i, false)) {
			continue
		}
		group.Go(convert(i, true))
	}
	_ = group.Wait()

	var (
		result BatchResult
		errs   error
	)
	for i, file := range batch {
		switch outcomes[i] {
		case outcomeNotStarted:
			result.Cancelled++
			sink.Report(Progress{File: file, Completed: true, Cancelled: true})
		case outcomeConverted:
			result.Converted++
		case outcomeCancelled:
			result.Cancelled++
		case outcomeFailed:
			result.Failed++
			errs = multierr.Append(errs, results[i])
		}
	}

	c.logger.Info("batch finished",
		logging.String(logging.FieldEventType, "batch_complete"),
		logging.Int("converted", result.Converted),
		logging.Int("failed", result.Failed),
		logging.Int("cancelled", result.Cancelled),
		logging.Duration("elapsed", time.Since(started)),
	)

	interrupted := result.Cancelled > 0
	switch {
	case interrupted && ctx.Err() != nil:
		return result, fmt.Errorf("%w: %w", ErrCancelled, ctx.Err())
	case interrupted && errors.Is(context.Cause(runCtx), ErrBatchTimeout):
		return result, fmt.Errorf("%w after %s", ErrBatchTimeout, c.opts.Timeout)
	case errs != nil:
		return result, &BatchError{Total: len(batch), Err: errs}
	}
	return result, nil
}
