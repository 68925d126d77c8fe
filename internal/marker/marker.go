package marker

import (
	"context"
	"fmt"
	"strings"
)

// Reports selects which outcomes are written to durable storage.
type Reports uint8

const (
	// ReportsNone disables all durable I/O.
	ReportsNone Reports = iota
	// ReportsFailures keeps only failure records.
	ReportsFailures
	// ReportsAll keeps every record, which is what makes resume possible.
	ReportsAll
)

// ParseReports maps the config value onto a Reports mode.
func ParseReports(value string) (Reports, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "none":
		return ReportsNone, nil
	case "failures", "failuresonly", "failures_only":
		return ReportsFailures, nil
	case "all":
		return ReportsAll, nil
	default:
		return ReportsNone, fmt.Errorf("unknown reports mode %q", value)
	}
}

func (r Reports) String() string {
	switch r {
	case ReportsFailures:
		return "failures"
	case ReportsAll:
		return "all"
	default:
		return "none"
	}
}

// DefaultFailureMessage replaces an empty failure message.
const DefaultFailureMessage = "conversion failed"

// Marker tracks the pipeline state of one target file.
type Marker struct {
	Record

	target  string
	store   Store
	reports Reports
}

// New returns an in-progress marker for target.
func New(target string, store Store, reports Reports) *Marker {
	if store == nil {
		reports = ReportsNone
	}
	return &Marker{target: target, store: store, reports: reports}
}

// Target is the output path the marker is keyed by.
func (m *Marker) Target() string { return m.target }

// Restore loads a previously persisted record, if any. It is a no-op when
// durable tracking is disabled.
func (m *Marker) Restore(ctx context.Context) error {
	if m.reports == ReportsNone {
		return nil
	}
	rec, ok, err := m.store.Load(ctx, m.target)
	if err != nil {
		return fmt.Errorf("restore marker for %s: %w", m.target, err)
	}
	if ok {
		m.Record = rec
	}
	return nil
}

// Persist replaces the durable record with the current state. In failures
// mode a non-failure state only clears the old record. Cleanup errors are
// ignored; write errors are returned.
func (m *Marker) Persist(ctx context.Context) error {
	if m.reports == ReportsNone {
		return nil
	}
	if m.reports == ReportsFailures && !m.IsFailure() {
		_ = m.store.Delete(ctx, m.target)
		return nil
	}
	if err := m.store.Save(ctx, m.target, m.Record); err != nil {
		return fmt.Errorf("persist marker for %s: %w", m.target, err)
	}
	return nil
}

func (m *Marker) SetInProgress() {
	m.State = InProgress
	m.Message = ""
}

func (m *Marker) SetSuccess() {
	m.State = Success
	m.Message = ""
}

// SetFailure records a failure. The message may contain line breaks.
func (m *Marker) SetFailure(message string) {
	if strings.TrimSpace(message) == "" {
		message = DefaultFailureMessage
	}
	m.State = Failure
	m.Message = message
}

// IsCompleted is true once the last attempt reached success or failure.
func (m *Marker) IsCompleted() bool { return m.State != InProgress }

func (m *Marker) IsSuccess() bool { return m.State == Success }

func (m *Marker) IsFailure() bool { return m.State == Failure }
