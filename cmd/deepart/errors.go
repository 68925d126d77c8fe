package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"deepart/internal/apperr"
	"deepart/internal/converter"
)

// printError writes err for the user, one line per failed file for batch
// failures.
func printError(w io.Writer, err error) {
	var batchErr *converter.BatchError
	if errors.As(err, &batchErr) {
		failures := batchErr.Failures()
		fmt.Fprintf(w, "Error: failed to convert %d of %d file(s)\n", len(failures), batchErr.Total)
		for _, failure := range failures {
			fmt.Fprintf(w, "  %v\n", failure)
		}
		return
	}
	fmt.Fprintf(w, "Error: %v\n", err)
}

// classify tags err with code unless the command context was cancelled, in
// which case cancellation wins.
func classify(ctx context.Context, code apperr.Code, message string, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return apperr.Wrap(apperr.CodeCancelled, "cancelled", ctxErr)
	}
	return apperr.Wrap(code, message, err)
}
