package runlock_test

import (
	"errors"
	"path/filepath"
	"testing"

	"deepart/internal/runlock"
)

func TestAcquireIsExclusive(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state", "deepart.lock")

	first, err := runlock.Acquire(path)
	if err != nil {
		t.Fatalf("first acquire: %v", err)
	}
	if first.Path() != path {
		t.Fatalf("path = %q, want %q", first.Path(), path)
	}

	if _, err := runlock.Acquire(path); !errors.Is(err, runlock.ErrLocked) {
		t.Fatalf("second acquire err = %v, want ErrLocked", err)
	}

	if err := first.Release(); err != nil {
		t.Fatalf("release: %v", err)
	}

	again, err := runlock.Acquire(path)
	if err != nil {
		t.Fatalf("acquire after release: %v", err)
	}
	if err := again.Release(); err != nil {
		t.Fatalf("release: %v", err)
	}
}

func TestReleaseNil(t *testing.T) {
	var lock *runlock.Lock
	if err := lock.Release(); err != nil {
		t.Fatalf("release nil: %v", err)
	}
}
