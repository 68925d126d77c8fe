package marker

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sethvargo/go-retry"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

//go:embed schema.sql
var schemaSQL string

// schemaVersion is bumped whenever schema.sql changes incompatibly.
const schemaVersion = 1

// ErrSchemaMismatch indicates the database was created by an incompatible version.
var ErrSchemaMismatch = errors.New("marker schema version mismatch")

const (
	busyRetries             = 4
	busyRetryInitialBackoff = 10 * time.Millisecond
	busyRetryMaxBackoff     = 200 * time.Millisecond
)

// SQLiteStore keeps one row per target path in a SQLite database.
type SQLiteStore struct {
	db   *sql.DB
	path string
}

// OpenSQLite opens or creates the marker database at path.
func OpenSQLite(ctx context.Context, path string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create marker db directory: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.ExecContext(ctx, pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &SQLiteStore{db: db, path: path}
	if err := store.initSchema(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Path returns the database file location.
func (s *SQLiteStore) Path() string { return s.path }

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *SQLiteStore) initSchema(ctx context.Context) error {
	var tableExists int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	).Scan(&tableExists)
	if err != nil {
		return fmt.Errorf("check schema_version table: %w", err)
	}
	if tableExists == 0 {
		return s.createSchema(ctx)
	}

	var version int
	if err := s.db.QueryRowContext(ctx, "SELECT version FROM schema_version LIMIT 1").Scan(&version); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if version != schemaVersion {
		return fmt.Errorf("%w: database has version %d, expected %d (delete %s to reset)",
			ErrSchemaMismatch, version, schemaVersion, s.path)
	}
	return nil
}

func (s *SQLiteStore) createSchema(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "INSERT INTO schema_version (version) VALUES (?)", schemaVersion); err != nil {
		return fmt.Errorf("record schema version: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema: %w", err)
	}
	return nil
}

// Load fetches the row for target.
func (s *SQLiteStore) Load(ctx context.Context, target string) (Record, bool, error) {
	var (
		mediaID, effectID, operationID, message sql.NullString
		outcome                                 string
	)
	err := retryOnBusy(ctx, func() error {
		return s.db.QueryRowContext(ctx,
			`SELECT media_id, effect_id, operation_id, outcome, message
             FROM markers WHERE target_path = ?`,
			target,
		).Scan(&mediaID, &effectID, &operationID, &outcome, &message)
	})
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, false, nil
	}
	if err != nil {
		return Record{}, false, fmt.Errorf("load marker: %w", err)
	}

	rec := Record{
		MediaID:     parseID(mediaID.String),
		EffectID:    parseID(effectID.String),
		OperationID: parseID(operationID.String),
		State:       parseState(outcome),
		Message:     message.String,
	}
	return rec, true, nil
}

// Save deletes and re-inserts the row for target in one transaction.
func (s *SQLiteStore) Save(ctx context.Context, target string, rec Record) error {
	return retryOnBusy(ctx, func() error {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin marker tx: %w", err)
		}
		defer func() { _ = tx.Rollback() }()

		if _, err := tx.ExecContext(ctx, "DELETE FROM markers WHERE target_path = ?", target); err != nil {
			return fmt.Errorf("delete marker: %w", err)
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO markers (target_path, media_id, effect_id, operation_id, outcome, message, updated_at)
             VALUES (?, ?, ?, ?, ?, ?, ?)`,
			target,
			nullableID(rec.MediaID),
			nullableID(rec.EffectID),
			nullableID(rec.OperationID),
			rec.State.String(),
			nullableString(rec.Message),
			time.Now().UTC().Format(time.RFC3339Nano),
		)
		if err != nil {
			return fmt.Errorf("insert marker: %w", err)
		}
		return tx.Commit()
	})
}

// Delete removes the row for target.
func (s *SQLiteStore) Delete(ctx context.Context, target string) error {
	return retryOnBusy(ctx, func() error {
		_, err := s.db.ExecContext(ctx, "DELETE FROM markers WHERE target_path = ?", target)
		return err
	})
}

func parseState(value string) State {
	switch value {
	case "success":
		return Success
	case "failure":
		return Failure
	default:
		return InProgress
	}
}

func nullableID(id uuid.UUID) any {
	if id == uuid.Nil {
		return nil
	}
	return id.String()
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

// isSQLiteBusy reports lock contention, including extended result codes
// such as SQLITE_BUSY_SNAPSHOT.
func isSQLiteBusy(err error) bool {
	if err == nil {
		return false
	}
	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() & 0xff {
		case sqlite3.SQLITE_BUSY, sqlite3.SQLITE_LOCKED:
			return true
		}
		return false
	}
	return strings.Contains(err.Error(), "database is locked")
}

// retryOnBusy runs op, retrying with capped exponential backoff while the
// database reports lock contention. Other errors end the loop at once.
func retryOnBusy(ctx context.Context, op func() error) error {
	backoff := retry.WithMaxRetries(busyRetries,
		retry.WithCappedDuration(busyRetryMaxBackoff, retry.NewExponential(busyRetryInitialBackoff)))
	return retry.Do(ctx, backoff, func(context.Context) error {
		err := op()
		if isSQLiteBusy(err) {
			return retry.RetryableError(err)
		}
		return err
	})
}
