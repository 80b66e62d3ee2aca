package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/erazemk/zbirka/internal/model"
)

// RecordLedger appends a balance movement to the ledger.
func RecordLedger(ctx context.Context, db *sql.DB, kind string, amount, balance int64, pokemonID string) (*model.LedgerEntry, error) {
	now := time.Now().UTC()
	entry := &model.LedgerEntry{
		ID:        ulid.MustNewDefault(now).String(),
		Kind:      kind,
		Amount:    amount,
		Balance:   balance,
		PokemonID: pokemonID,
		CreatedAt: now,
	}

	var pid sql.NullString
	if pokemonID != "" {
		pid = sql.NullString{String: pokemonID, Valid: true}
	}

	_, err := db.ExecContext(ctx,
		`INSERT INTO ledger (id, kind, amount, balance, pokemon_id, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		entry.ID, entry.Kind, entry.Amount, entry.Balance, pid, entry.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("recording ledger entry: %w", err)
	}
	return entry, nil
}

// ListLedger returns the most recent ledger entries, newest first. A limit of
// zero or less returns everything.
func ListLedger(ctx context.Context, db *sql.DB, limit int) ([]model.LedgerEntry, error) {
	query := `SELECT id, kind, amount, balance, pokemon_id, created_at FROM ledger ORDER BY id DESC`
	var args []any
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing ledger: %w", err)
	}
	defer rows.Close()

	var entries []model.LedgerEntry
	for rows.Next() {
		var e model.LedgerEntry
		var pid sql.NullString
		if err := rows.Scan(&e.ID, &e.Kind, &e.Amount, &e.Balance, &pid, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning ledger entry: %w", err)
		}
		e.PokemonID = pid.String
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
