package apperr

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, 0},
		{"plain", errors.New("boom"), 1},
		{"tagged", Wrap(CodeTimeout, "conversion timeout exceeded", context.DeadlineExceeded), 114},
		{"wrapped tag", fmt.Errorf("run: %w", New(CodeEffectNotFound, "no such effect")), 113},
		{"cancelled", fmt.Errorf("convert: %w", context.Canceled), 130},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExitCode(tt.err); got != tt.want {
				t.Fatalf("ExitCode(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}

func TestErrorMessageAndUnwrap(t *testing.T) {
	cause := errors.New("dial tcp: refused")
	err := Wrap(CodeGetEffectsFailed, "failed to get available effects", cause)
	if err.Error() != "failed to get available effects: dial tcp: refused" {
		t.Fatalf("unexpected message %q", err.Error())
	}
	if !errors.Is(err, cause) {
		t.Fatal("expected cause to be reachable")
	}
}

func TestDescribeListsCodes(t *testing.T) {
	text := Describe()
	for _, code := range []string{"101", "102", "110", "114", "130"} {
		if !strings.Contains(text, code) {
			t.Fatalf("expected %s in %q", code, text)
		}
	}
}
