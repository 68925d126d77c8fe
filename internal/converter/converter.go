package converter

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"

	"deepart/internal/alphamap"
	"deepart/internal/deepart"
	"deepart/internal/fileutil"
	"deepart/internal/files"
	"deepart/internal/logging"
	"deepart/internal/marker"
	"deepart/internal/retrypoll"
)

// Options tunes a Converter.
type Options struct {
	Reports marker.Reports
	// Parallelism bounds concurrent pipelines. 0 means one per file.
	Parallelism  int
	Timeout      time.Duration
	PollInterval time.Duration
	PollStep     time.Duration
	Logger       *slog.Logger
}

// Converter runs conversions against one remote service. It holds no
// per-file state and is safe for concurrent use.
type Converter struct {
	service deepart.Service
	store   marker.Store
	opts    Options
	logger  *slog.Logger
}

// New constructs a Converter. A nil store disables markers.
func New(service deepart.Service, store marker.Store, opts Options) *Converter {
	if opts.Parallelism < 0 {
		opts.Parallelism = 0
	}
	return &Converter{
		service: service,
		store:   store,
		opts:    opts,
		logger:  logging.NewComponentLogger(opts.Logger, "converter"),
	}
}

// pipeline carries the state of one ConvertFile call.
type pipeline struct {
	c      *Converter
	file   files.Descriptor
	marker *marker.Marker
	report func(string)
	logger *slog.Logger
}

// ConvertFile runs the pipeline for one file. report, if non-nil, receives
// a short label as each step starts and finishes.
func (c *Converter) ConvertFile(ctx context.Context, file files.Descriptor, effect deepart.Effect, report func(string)) error {
	if report == nil {
		report = func(string) {}
	}
	p := &pipeline{
		c:      c,
		file:   file,
		marker: marker.New(file.Target, c.store, c.opts.Reports),
		report: report,
		logger: c.logger.With(logging.String(logging.FieldFile, file.String())),
	}

	if err := p.marker.Restore(ctx); err != nil {
		return &StepError{File: file.String(), Step: StepRestore, Err: err}
	}
	restored := p.marker.Record

	var (
		alpha  *alphamap.Map
		source []byte
	)
	if err := p.run(ctx, StepReadAlpha, func(context.Context) error {
		data, err := os.ReadFile(file.Source)
		if err != nil {
			return &alphamap.DecodeError{Err: err}
		}
		alpha, err = alphamap.Extract(data)
		source = data
		return err
	}); err != nil {
		return err
	}

	uploaded := false
	if restored.MediaID == uuid.Nil {
		p.marker.MediaID = uuid.Nil
		p.marker.OperationID = uuid.Nil
		if err := p.run(ctx, StepUpload, func(ctx context.Context) error {
			mime := deepart.DetectMIME(source, file.Name())
			id, err := c.service.AddMedia(ctx, source, file.Name(), mime)
			if err != nil {
				return err
			}
			if id == uuid.Nil {
				return fmt.Errorf("%w: unable to receive source media id", ErrRemoteContract)
			}
			p.marker.MediaID = id
			return nil
		}); err != nil {
			return err
		}
		uploaded = true
	}

	submitted := false
	if uploaded ||
		restored.OperationID == uuid.Nil ||
		restored.EffectID != effect.ID ||
		restored.State == marker.Failure {
		p.marker.EffectID = effect.ID
		p.marker.OperationID = uuid.Nil
		if err := p.run(ctx, StepSubmit, func(ctx context.Context) error {
			if p.marker.MediaID == uuid.Nil {
				return fmt.Errorf("%w: no source media id", ErrInvalidState)
			}
			if effect.ID == uuid.Nil {
				return fmt.Errorf("%w: effect %q has no id", ErrInvalidState, effect.Name)
			}
			id, err := c.service.StartOperation(ctx, p.marker.MediaID, effect.ID)
			if err != nil {
				return err
			}
			if id == uuid.Nil {
				return fmt.Errorf("%w: unable to receive operation id", ErrRemoteContract)
			}
			p.marker.OperationID = id
			return nil
		}); err != nil {
			return err
		}
		submitted = true
	}

	if submitted || restored.State != marker.Success {
		if err := p.run(ctx, StepWait, p.wait); err != nil {
			return err
		}
	} else {
		p.logger.Debug("conversion already completed, reusing result",
			logging.String("operation_id", restored.OperationID.String()))
		p.marker.SetSuccess()
		if err := p.marker.Persist(ctx); err != nil {
			return &StepError{File: file.String(), Step: StepWait, Err: err}
		}
	}

	if !p.marker.IsSuccess() {
		return nil
	}
	if !alpha.HasOpacity() {
		report("No alpha map to apply")
		return nil
	}
	return p.run(ctx, StepApplyAlpha, func(ctx context.Context) error {
		return alphamap.ApplyFile(ctx, alpha, file.Target)
	})
}

// wait polls until the operation result is available and writes it to the
// target path.
func (p *pipeline) wait(ctx context.Context) error {
	opID := p.marker.OperationID
	if opID == uuid.Nil {
		return fmt.Errorf("%w: no operation id", ErrInvalidState)
	}
	policy := retrypoll.Policy[[]byte]{
		Interval:    p.c.opts.PollInterval,
		Step:        p.c.opts.PollStep,
		IsTransient: deepart.IsTransient,
		IsReady:     func(b []byte) bool { return len(b) > 0 },
		Report:      p.report,
	}
	data, err := retrypoll.Poll(ctx, policy, func(ctx context.Context) ([]byte, error) {
		return p.c.service.OperationResult(ctx, opID)
	})
	if err != nil {
		return err
	}
	if len(data) == 0 {
		return fmt.Errorf("%w: unable to receive result media", ErrRemoteContract)
	}
	if err := fileutil.WriteBytesAtomic(p.file.Target, data, 0o644); err != nil {
		return fmt.Errorf("save converted file: %w", err)
	}
	return nil
}

// run executes one step: mark in progress, persist, do the work, record the
// outcome and persist again. A cancelled step leaves the marker in progress.
func (p *pipeline) run(ctx context.Context, step Step, fn func(context.Context) error) error {
	text := stepTexts[step]
	logger := p.logger.With(logging.String(logging.FieldStep, string(step)))

	p.marker.SetInProgress()
	if err := p.marker.Persist(ctx); err != nil {
		return &StepError{File: p.file.String(), Step: step, Err: err}
	}
	p.report(text.start)
	logger.Debug("step started", logging.String(logging.FieldEventType, "step_start"))
	started := time.Now()

	stepErr := fn(ctx)
	switch {
	case stepErr == nil:
		if step == StepWait || step == StepApplyAlpha {
			p.marker.SetSuccess()
		}
	case isCancellation(ctx, stepErr):
		// Keep the in-progress marker so the step is re-entered on resume.
	default:
		p.marker.SetFailure(stepErr.Error())
	}

	// Persist even after cancellation so the record matches what happened.
	persistErr := p.marker.Persist(context.WithoutCancel(ctx))

	if stepErr != nil {
		if !isCancellation(ctx, stepErr) {
			logger.Warn("step failed",
				logging.String(logging.FieldEventType, "step_failure"),
				logging.Duration("elapsed", time.Since(started)),
				logging.Error(stepErr),
			)
		}
		if persistErr != nil {
			logger.Warn("failed to persist marker", logging.Error(persistErr))
		}
		return &StepError{File: p.file.String(), Step: step, Err: stepErr}
	}
	if persistErr != nil {
		return &StepError{File: p.file.String(), Step: step, Err: persistErr}
	}

	p.report(text.done)
	logger.Debug("step completed",
		logging.String(logging.FieldEventType, "step_complete"),
		logging.Duration("elapsed", time.Since(started)),
	)
	return nil
}

// isCancellation reports whether err was caused by ctx ending. A failure
// that merely races the deadline is still a failure.
func isCancellation(ctx context.Context, err error) bool {
	if err == nil || ctx.Err() == nil {
		return false
	}
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
