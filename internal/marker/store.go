package marker

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"go.uber.org/multierr"

	"deepart/internal/fileutil"
)

// Store persists one Record per target path.
type Store interface {
	// Load returns the record for target. ok is false when none exists.
	Load(ctx context.Context, target string) (rec Record, ok bool, err error)
	// Save replaces any existing record for target.
	Save(ctx context.Context, target string, rec Record) error
	// Delete removes the record for target, if any.
	Delete(ctx context.Context, target string) error
}

// File extensions appended to the target path by FileStore.
const (
	ExtInProgress = ".converting"
	ExtSuccess    = ".converted"
	ExtFailure    = ".failed"
)

// Path returns the FileStore location for a target in the given state.
func Path(target string, state State) string {
	switch state {
	case Success:
		return target + ExtSuccess
	case Failure:
		return target + ExtFailure
	default:
		return target + ExtInProgress
	}
}

func candidatePaths(target string) []string {
	return []string{
		target + ExtInProgress,
		target + ExtSuccess,
		target + ExtFailure,
	}
}

// FileStore keeps records as small text files next to the target.
type FileStore struct{}

// NewFileStore returns the default marker store.
func NewFileStore() *FileStore { return &FileStore{} }

// Load reads the first existing marker file for target.
func (s *FileStore) Load(ctx context.Context, target string) (Record, bool, error) {
	for _, path := range candidatePaths(target) {
		if err := ctx.Err(); err != nil {
			return Record{}, false, err
		}
		data, err := os.ReadFile(path)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return Record{}, false, fmt.Errorf("read marker %s: %w", path, err)
		}
		return decodeRecord(data), true, nil
	}
	return Record{}, false, nil
}

// Save removes every marker file for target, then writes the one matching
// rec.State. Cleanup failures are ignored; a failed write is returned.
func (s *FileStore) Save(ctx context.Context, target string, rec Record) error {
	_ = s.Delete(ctx, target)
	if err := ctx.Err(); err != nil {
		return err
	}
	path := Path(target, rec.State)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create marker directory: %w", err)
	}
	if err := fileutil.WriteBytesAtomic(path, rec.encode(), 0o644); err != nil {
		return fmt.Errorf("write marker: %w", err)
	}
	return nil
}

// Delete removes all three marker files for target.
func (s *FileStore) Delete(_ context.Context, target string) error {
	var errs error
	for _, path := range candidatePaths(target) {
		if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			errs = multierr.Append(errs, err)
		}
	}
	return errs
}
