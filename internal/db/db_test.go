package db

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"
)

func TestEnsureSchemaIdempotent(t *testing.T) {
	database := NewTestDB(t)

	if err := EnsureSchema(database); err != nil {
		t.Fatalf("second EnsureSchema: %v", err)
	}

	var count int
	err := database.QueryRow(
		`SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name IN ('pokemon', 'balance', 'ledger', 'settings', 'revoked_tokens')`,
	).Scan(&count)
	if err != nil {
		t.Fatalf("counting tables: %v", err)
	}
	if count != 5 {
		t.Errorf("expected 5 tables, got %d", count)
	}
}

func TestBalanceRejectsNegative(t *testing.T) {
	database := NewTestDB(t)

	if _, err := database.Exec(`INSERT INTO balance (id, tokens) VALUES (1, -1)`); err == nil {
		t.Error("expected CHECK constraint to reject negative balance")
	}
	if _, err := database.Exec(`INSERT INTO balance (id, tokens) VALUES (2, 5)`); err == nil {
		t.Error("expected CHECK constraint to reject a second balance row")
	}
}

func TestCheckpointOnFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "zbirka.sqlite3")
	database, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer database.Close()

	if err := EnsureSchema(database); err != nil {
		t.Fatalf("EnsureSchema: %v", err)
	}
	if err := Checkpoint(context.Background(), database); err != nil {
		t.Fatalf("Checkpoint: %v", err)
	}
}

func TestPragmasOnEveryConnection(t *testing.T) {
	database, err := Open(filepath.Join(t.TempDir(), "zbirka.sqlite3"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer database.Close()

	ctx := context.Background()
	first, err := database.Conn(ctx)
	if err != nil {
		t.Fatalf("first conn: %v", err)
	}
	defer first.Close()
	second, err := database.Conn(ctx)
	if err != nil {
		t.Fatalf("second conn: %v", err)
	}
	defer second.Close()

	for i, conn := range []*sql.Conn{first, second} {
		var timeout int
		if err := conn.QueryRowContext(ctx, "PRAGMA busy_timeout").Scan(&timeout); err != nil {
			t.Fatalf("conn %d: reading busy_timeout: %v", i, err)
		}
		if timeout != 5000 {
			t.Errorf("conn %d: expected busy_timeout 5000, got %d", i, timeout)
		}
		var mode string
		if err := conn.QueryRowContext(ctx, "PRAGMA journal_mode").Scan(&mode); err != nil {
			t.Fatalf("conn %d: reading journal_mode: %v", i, err)
		}
		if mode != "wal" {
			t.Errorf("conn %d: expected wal journal mode, got %q", i, mode)
		}
	}
}

func TestWriteWaitsForLock(t *testing.T) {
	database, err := Open(filepath.Join(t.TempDir(), "zbirka.sqlite3"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer database.Close()

	if err := EnsureSchema(database); err != nil {
		t.Fatalf("EnsureSchema: %v", err)
	}
	if _, err := database.Exec(`INSERT INTO balance (id, tokens) VALUES (1, 10)`); err != nil {
		t.Fatalf("seeding balance: %v", err)
	}

	ctx := context.Background()
	holder, err := database.Conn(ctx)
	if err != nil {
		t.Fatalf("conn: %v", err)
	}
	defer holder.Close()

	tx, err := holder.BeginTx(ctx, nil)
	if err != nil {
		t.Fatalf("BeginTx: %v", err)
	}
	if _, err := tx.Exec(`UPDATE balance SET tokens = 20 WHERE id = 1`); err != nil {
		t.Fatalf("locking write: %v", err)
	}

	const hold = 300 * time.Millisecond
	go func() {
		time.Sleep(hold)
		tx.Commit()
	}()

	start := time.Now()
	if _, err := database.ExecContext(ctx, `UPDATE balance SET tokens = 30 WHERE id = 1`); err != nil {
		t.Fatalf("write while locked: %v", err)
	}
	if waited := time.Since(start); waited < hold/2 {
		t.Errorf("expected the write to wait for the lock, returned after %s", waited)
	}

	var tokens int64
	if err := database.QueryRow(`SELECT tokens FROM balance WHERE id = 1`).Scan(&tokens); err != nil {
		t.Fatalf("reading balance: %v", err)
	}
	if tokens != 30 {
		t.Errorf("expected the waiting write to land last, got %d", tokens)
	}
}
