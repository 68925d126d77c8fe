// Package apperr classifies command failures into process exit codes.
package apperr

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Code is a process exit status.
type Code int

const (
	CodeOK               Code = 0
	CodeUnknown          Code = 1
	CodeInvalidSettings  Code = 101
	CodeConvertingError  Code = 102
	CodeInputsNotFound   Code = 110
	CodeGetEffectsFailed Code = 111
	CodeEffectListEmpty  Code = 112
	CodeEffectNotFound   Code = 113
	CodeTimeout          Code = 114
	CodeCancelled        Code = 130
)

var descriptions = []struct {
	code Code
	text string
}{
	{CodeUnknown, "unknown error"},
	{CodeInvalidSettings, "invalid settings or arguments"},
	{CodeConvertingError, "one or more files failed to convert"},
	{CodeInputsNotFound, "no input files found"},
	{CodeGetEffectsFailed, "failed to get the list of effects"},
	{CodeEffectListEmpty, "no effects available"},
	{CodeEffectNotFound, "requested effect not found or not unique"},
	{CodeTimeout, "conversion timeout exceeded"},
	{CodeCancelled, "cancelled"},
}

// Describe renders the exit code table for help output.
func Describe() string {
	var b strings.Builder
	for _, d := range descriptions {
		fmt.Fprintf(&b, "  %3d  %s\n", d.code, d.text)
	}
	return b.String()
}

// Error tags an error with the exit code it should produce.
type Error struct {
	Code    Code
	Message string
	Err     error
}

func (e *Error) Error() string {
	switch {
	case e.Message != "" && e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	case e.Message != "":
		return e.Message
	case e.Err != nil:
		return e.Err.Error()
	default:
		return fmt.Sprintf("exit code %d", e.Code)
	}
}

func (e *Error) Unwrap() error { return e.Err }

// Wrap attaches code to err with a short message. A nil err still yields an
// error carrying the message.
func Wrap(code Code, message string, err error) error {
	return &Error{Code: code, Message: strings.TrimSpace(message), Err: err}
}

// New is Wrap without a cause.
func New(code Code, message string) error {
	return Wrap(code, message, nil)
}

// ExitCode maps err onto a process exit status.
func ExitCode(err error) int {
	if err == nil {
		return int(CodeOK)
	}
	var appErr *Error
	if errors.As(err, &appErr) {
		return int(appErr.Code)
	}
	if errors.Is(err, context.Canceled) {
		return int(CodeCancelled)
	}
	return int(CodeUnknown)
}
