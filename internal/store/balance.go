package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/erazemk/zbirka/internal/model"
)

// InitBalance stores the starting balance on first run. An existing balance
// is never overwritten.
func InitBalance(ctx context.Context, db *sql.DB, tokens int64) error {
	if tokens < 0 {
		return fmt.Errorf("initial balance %d: %w", tokens, ErrInvalidValue)
	}
	_, err := db.ExecContext(ctx,
		`INSERT OR IGNORE INTO balance (id, tokens) VALUES (1, ?)`, tokens,
	)
	if err != nil {
		return fmt.Errorf("initializing balance: %w", err)
	}
	return nil
}

// GetBalance returns the current token balance. A database that was never
// initialized holds zero tokens.
func GetBalance(ctx context.Context, db *sql.DB) (int64, error) {
	var tokens int64
	err := db.QueryRowContext(ctx, `SELECT tokens FROM balance WHERE id = 1`).Scan(&tokens)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("getting balance: %w", err)
	}
	return tokens, nil
}

// SetBalance overwrites the token balance.
func SetBalance(ctx context.Context, db *sql.DB, tokens int64) error {
	if tokens < 0 {
		return fmt.Errorf("balance %d: %w", tokens, ErrInvalidValue)
	}
	return setBalance(ctx, db, tokens)
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func setBalance(ctx context.Context, ex execer, tokens int64) error {
	_, err := ex.ExecContext(ctx,
		`INSERT INTO balance (id, tokens) VALUES (1, ?)
		 ON CONFLICT (id) DO UPDATE SET tokens = excluded.tokens, updated_at = CURRENT_TIMESTAMP`,
		tokens,
	)
	if err != nil {
		return fmt.Errorf("setting balance: %w", err)
	}
	return nil
}

// ApplyResell marks p as resold and stores the credited balance in a single
// transaction, so neither write is visible without the other.
func ApplyResell(ctx context.Context, db *sql.DB, p model.Pokemon, tokens int64) error {
	if tokens < 0 {
		return fmt.Errorf("balance %d: %w", tokens, ErrInvalidValue)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if err := updatePokemonTx(ctx, tx, p); err != nil {
		return err
	}
	if err := setBalance(ctx, tx, tokens); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing resell: %w", err)
	}
	return nil
}
