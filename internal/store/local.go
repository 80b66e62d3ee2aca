package store

import (
	"context"
	"database/sql"

	"github.com/erazemk/zbirka/internal/model"
)

// Local exposes the SQLite store as a value the game coordinator can hold.
type Local struct {
	DB *sql.DB
}

// NewLocal returns a Local backed by db.
func NewLocal(db *sql.DB) *Local {
	return &Local{DB: db}
}

func (l *Local) ListPokemon(ctx context.Context) ([]model.Pokemon, error) {
	return ListPokemon(ctx, l.DB)
}

func (l *Local) AddPokemon(ctx context.Context, p model.Pokemon) error {
	return AddPokemon(ctx, l.DB, p)
}

func (l *Local) UpdatePokemon(ctx context.Context, p model.Pokemon) error {
	return UpdatePokemon(ctx, l.DB, p)
}

func (l *Local) GetBalance(ctx context.Context) (int64, error) {
	return GetBalance(ctx, l.DB)
}

func (l *Local) SetBalance(ctx context.Context, tokens int64) error {
	return SetBalance(ctx, l.DB, tokens)
}

func (l *Local) ApplyResell(ctx context.Context, p model.Pokemon, tokens int64) error {
	return ApplyResell(ctx, l.DB, p, tokens)
}

func (l *Local) RecordLedger(ctx context.Context, kind string, amount, balance int64, pokemonID string) error {
	_, err := RecordLedger(ctx, l.DB, kind, amount, balance, pokemonID)
	return err
}
