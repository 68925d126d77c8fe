package converter

import "deepart/internal/files"

// Progress is a point-in-time report about one file.
type Progress struct {
	File files.Descriptor
	// State is a short label of the running step. Empty once Completed.
	State     string
	Completed bool
	Cancelled bool
	Err       error
}

// ProgressSink receives Progress reports from concurrent pipelines and must
// be safe for concurrent use.
type ProgressSink interface {
	Report(Progress)
}

// SinkFunc adapts a function to ProgressSink.
type SinkFunc func(Progress)

func (f SinkFunc) Report(p Progress) { f(p) }

type discardSink struct{}

func (discardSink) Report(Progress) {}
