package marker

import (
	"strings"

	"github.com/google/uuid"
)

// State is the outcome of the last pipeline attempt for a file.
type State uint8

const (
	InProgress State = iota
	Success
	Failure
)

func (s State) String() string {
	switch s {
	case Success:
		return "success"
	case Failure:
		return "failure"
	default:
		return "in_progress"
	}
}

const (
	successLine   = "SUCCESS"
	failurePrefix = "FAILURE: "
)

// Record is the durable part of a Marker. uuid.Nil means "not assigned yet".
type Record struct {
	MediaID     uuid.UUID
	EffectID    uuid.UUID
	OperationID uuid.UUID
	State       State
	Message     string
}

// outcomeLine renders the fourth positional field.
func (r Record) outcomeLine() string {
	switch r.State {
	case Success:
		return successLine
	case Failure:
		return failurePrefix + r.Message
	default:
		return ""
	}
}

// parseOutcome is the inverse of outcomeLine. Any non-empty value that is not
// the success literal counts as a failure.
func parseOutcome(value string) (State, string) {
	switch {
	case value == "":
		return InProgress, ""
	case value == successLine:
		return Success, ""
	default:
		return Failure, strings.TrimPrefix(value, failurePrefix)
	}
}

func formatID(id uuid.UUID) string {
	if id == uuid.Nil {
		return ""
	}
	return id.String()
}

func parseID(value string) uuid.UUID {
	id, err := uuid.Parse(strings.TrimSpace(value))
	if err != nil {
		return uuid.Nil
	}
	return id
}

// encode writes the record as four positional lines: media id, effect id,
// operation id, outcome. A failure message keeps its own line breaks, so it
// may span the remaining lines.
func (r Record) encode() []byte {
	lines := []string{
		formatID(r.MediaID),
		formatID(r.EffectID),
		formatID(r.OperationID),
		r.outcomeLine(),
	}
	return []byte(strings.Join(lines, "\n") + "\n")
}

// decodeRecord tolerates short records: missing trailing fields are absent.
func decodeRecord(data []byte) Record {
	text := strings.ReplaceAll(string(data), "\r\n", "\n")
	text = strings.TrimSuffix(text, "\n")
	if text == "" {
		return Record{}
	}
	lines := strings.Split(text, "\n")

	var rec Record
	if len(lines) > 0 {
		rec.MediaID = parseID(lines[0])
	}
	if len(lines) > 1 {
		rec.EffectID = parseID(lines[1])
	}
	if len(lines) > 2 {
		rec.OperationID = parseID(lines[2])
	}
	if len(lines) > 3 {
		rec.State, rec.Message = parseOutcome(strings.Join(lines[3:], "\n"))
	}
	return rec
}
