package sqlitemigrate

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"testing/fstest"

	_ "modernc.org/sqlite"
)

func TestApplyMigrationsRunsOnce(t *testing.T) {
	db := openInMemoryDB(t)
	migrations := fstest.MapFS{
		"001_create.sql": &fstest.MapFile{Data: []byte("-- +migrate Up\nCREATE TABLE items(id TEXT PRIMARY KEY);\n-- +migrate Down\nDROP TABLE items;")},
	}

	for i := 0; i < 2; i++ {
		if err := ApplyMigrations(context.Background(), db, migrations, ""); err != nil {
			t.Fatalf("apply migrations (pass %d): %v", i, err)
		}
	}
	if got := queryInt64(t, db, "SELECT COUNT(*) FROM schema_migrations"); got != 1 {
		t.Fatalf("migration rows = %d, want 1", got)
	}
	if got := queryInt64(t, db, "SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='items'"); got != 1 {
		t.Fatalf("items table count = %d, want 1", got)
	}
}

func TestApplyMigrationsAppliesTriggers(t *testing.T) {
	db := openInMemoryDB(t)
	migrations := fstest.MapFS{
		"001_guard.sql": &fstest.MapFile{Data: []byte(`-- +migrate Up
CREATE TABLE items(id TEXT PRIMARY KEY);
CREATE TRIGGER items_no_delete BEFORE DELETE ON items
BEGIN
    SELECT RAISE(ABORT, 'items are append-only');
END;
`)},
	}
	if err := ApplyMigrations(context.Background(), db, migrations, "."); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	if _, err := db.Exec("INSERT INTO items(id) VALUES ('a')"); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if _, err := db.Exec("DELETE FROM items"); err == nil {
		t.Fatal("expected trigger to reject delete")
	}
}

func TestApplyMigrationsDoesNotRecordFailure(t *testing.T) {
	db := openInMemoryDB(t)
	bad := fstest.MapFS{"001_bad.sql": &fstest.MapFile{Data: []byte("CREAT table things(id INT);")}}
	if err := ApplyMigrations(context.Background(), db, bad, ""); err == nil {
		t.Fatal("expected bad migration to fail")
	}
	if got := queryInt64(t, db, "SELECT COUNT(*) FROM schema_migrations"); got != 0 {
		t.Fatalf("migration rows = %d, want 0", got)
	}
}

func TestApplyMigrationsKeysByRoot(t *testing.T) {
	db := openInMemoryDB(t)
	migrations := fstest.MapFS{
		"ledger/001_rows.sql": &fstest.MapFile{Data: []byte("CREATE TABLE rows_a(id TEXT PRIMARY KEY);")},
	}
	if err := ApplyMigrations(context.Background(), db, migrations, "ledger"); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	var key string
	if err := db.QueryRow("SELECT name FROM schema_migrations").Scan(&key); err != nil {
		t.Fatalf("query key: %v", err)
	}
	if key != "ledger/001_rows.sql" {
		t.Fatalf("key = %q, want %q", key, "ledger/001_rows.sql")
	}
}

func TestIsAlreadyExistsError(t *testing.T) {
	t.Parallel()
	if IsAlreadyExistsError(nil) {
		t.Fatal("nil should not match")
	}
	if !IsAlreadyExistsError(errors.New("table x already exists")) {
		t.Fatal("expected match")
	}
	if got := ExtractUpMigration("CREATE TABLE t(x);"); got != "CREATE TABLE t(x);" {
		t.Fatalf("ExtractUpMigration = %q", got)
	}
}

func openInMemoryDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open in-memory db: %v", err)
	}
	// Each pooled connection would otherwise get its own private database.
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func queryInt64(t *testing.T, db *sql.DB, query string) int64 {
	t.Helper()
	var value int64
	if err := db.QueryRow(query).Scan(&value); err != nil {
		t.Fatalf("query %q: %v", query, err)
	}
	return value
}
