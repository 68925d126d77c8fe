package alphamap

import (
	"errors"
	"fmt"
)

// ErrOutOfRange reports a coordinate outside the dimensions captured at
// extraction time. It indicates a caller bug rather than bad image data.
var ErrOutOfRange = errors.New("alphamap: coordinate out of range")

// DecodeError reports that source bytes could not be read as an image.
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("read alpha channel: %v", e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// ApplyError reports a failure while restoring alpha into a converted image.
type ApplyError struct {
	Err error
}

func (e *ApplyError) Error() string {
	return fmt.Sprintf("apply alpha channel: %v", e.Err)
}

func (e *ApplyError) Unwrap() error { return e.Err }
