// Package sqlite implements donations storage on SQLite. Lifecycle policy is
// enforced twice: the store issues conditional writes, and schema triggers
// reject any row change that is not a legal transition.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	sqlitemigrate "github.com/louisbranch/foodshare/internal/platform/storage/sqlitemigrate"
	"github.com/louisbranch/foodshare/internal/services/donations/storage"
	"github.com/louisbranch/foodshare/internal/services/donations/storage/sqlite/migrations"
	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"
)

// writeDeniedMarker prefixes every RAISE message in the schema triggers.
const writeDeniedMarker = "donation write denied"

// Store provides SQLite-backed persistence for donations state.
type Store struct {
	sqlDB *sql.DB
}

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

func nullMillis(value *time.Time) sql.NullInt64 {
	if value == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: toMillis(*value), Valid: true}
}

func timePtr(value sql.NullInt64) *time.Time {
	if !value.Valid {
		return nil
	}
	t := fromMillis(value.Int64)
	return &t
}

// Open opens a donations SQLite store at path, creating parent directories
// and applying migrations.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}

	cleanPath := filepath.Clean(path)
	if dir := filepath.Dir(cleanPath); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create storage dir: %w", err)
		}
	}
	// modernc.org/sqlite only honours settings passed as _pragma; each one
	// runs on every pooled connection.
	dsn := cleanPath + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)&_pragma=foreign_keys(ON)&_txlock=immediate"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := ensureForeignKeysEnabled(sqlDB); err != nil {
		_ = sqlDB.Close()
		return nil, err
	}

	store := &Store{sqlDB: sqlDB}
	if err := sqlitemigrate.ApplyMigrations(context.Background(), sqlDB, migrations.FS, ""); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return store, nil
}

// Close closes the underlying SQLite database.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// DB exposes the raw handle for storage-policy tests and maintenance tools.
func (s *Store) DB() *sql.DB {
	if s == nil {
		return nil
	}
	return s.sqlDB
}

func (s *Store) ready(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	return nil
}

func ensureForeignKeysEnabled(db *sql.DB) error {
	var enabled int
	if err := db.QueryRow("PRAGMA foreign_keys").Scan(&enabled); err != nil {
		return fmt.Errorf("check sqlite foreign key pragma: %w", err)
	}
	if enabled != 1 {
		return fmt.Errorf("sqlite foreign keys are disabled")
	}
	return nil
}

// classifyError maps driver errors onto storage sentinels, keeping the
// original text for logs.
func classifyError(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("%s: %w", op, err)
	}
	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() & 0xff {
		case sqlite3lib.SQLITE_BUSY, sqlite3lib.SQLITE_LOCKED:
			return fmt.Errorf("%s: %w: %v", op, storage.ErrUnavailable, err)
		}
		switch sqliteErr.Code() {
		case sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3lib.SQLITE_CONSTRAINT_UNIQUE:
			return fmt.Errorf("%s: %w: %v", op, storage.ErrAlreadyExists, err)
		}
	}
	message := strings.ToLower(err.Error())
	switch {
	case strings.Contains(message, writeDeniedMarker):
		return fmt.Errorf("%s: %w: %v", op, storage.ErrWriteDenied, err)
	case strings.Contains(message, "unique constraint failed"):
		return fmt.Errorf("%s: %w: %v", op, storage.ErrAlreadyExists, err)
	case strings.Contains(message, "check constraint failed"),
		strings.Contains(message, "foreign key constraint failed"),
		strings.Contains(message, "not null constraint failed"):
		return fmt.Errorf("%s: %w: %v", op, storage.ErrWriteDenied, err)
	case strings.Contains(message, "database is locked"), strings.Contains(message, "database is busy"):
		return fmt.Errorf("%s: %w: %v", op, storage.ErrUnavailable, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}

func rollback(tx *sql.Tx, cause error) error {
	rollbackErr := tx.Rollback()
	if rollbackErr == nil || errors.Is(rollbackErr, sql.ErrTxDone) {
		return cause
	}
	if cause == nil {
		return fmt.Errorf("rollback: %w", rollbackErr)
	}
	return fmt.Errorf("%w: rollback: %v", cause, rollbackErr)
}

var (
	_ storage.DonationStore = (*Store)(nil)
	_ storage.ChangeFeed    = (*Store)(nil)
	_ storage.ProfileStore  = (*Store)(nil)
	_ storage.InboxStore    = (*Store)(nil)
	_ storage.CursorStore   = (*Store)(nil)
)
