package converter

import (
	"errors"
	"fmt"
	"strings"

	"go.uber.org/multierr"
)

var (
	// ErrRemoteContract means the service answered without a usable identifier.
	ErrRemoteContract = errors.New("remote service contract violated")
	// ErrInvalidState means a step ran without its prerequisite.
	ErrInvalidState = errors.New("invalid conversion state")
	// ErrBatchTimeout means the batch deadline fired before every file finished.
	ErrBatchTimeout = errors.New("conversion timeout exceeded")
	// ErrCancelled means the batch was cancelled by its caller.
	ErrCancelled = errors.New("conversion cancelled")
)

// StepError reports which pipeline step failed for which file.
type StepError struct {
	File string
	Step Step
	Err  error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("%s: failed to %s: %v", e.File, e.Step.action(), e.Err)
}

func (e *StepError) Unwrap() error { return e.Err }

// BatchError aggregates the terminal failures of a batch.
type BatchError struct {
	Total int
	Err   error
}

func (e *BatchError) Error() string {
	failures := multierr.Errors(e.Err)
	lines := make([]string, 0, len(failures))
	for _, err := range failures {
		lines = append(lines, err.Error())
	}
	return fmt.Sprintf("failed to convert %d of %d file(s): %s", len(failures), e.Total, strings.Join(lines, "; "))
}

func (e *BatchError) Unwrap() error { return e.Err }

// Failures returns the per-file errors.
func (e *BatchError) Failures() []error { return multierr.Errors(e.Err) }
