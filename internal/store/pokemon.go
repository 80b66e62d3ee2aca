package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/erazemk/zbirka/internal/model"
)

const pokemonColumns = `id, name, rarity, type, attack, attack_name, pv, image_base64, generated_at, status`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPokemon(row rowScanner) (*model.Pokemon, error) {
	p := &model.Pokemon{}
	if err := row.Scan(&p.ID, &p.Name, &p.Rarity, &p.Type, &p.Attack, &p.AttackName,
		&p.PV, &p.ImageBase64, &p.GeneratedAt, &p.Status); err != nil {
		return nil, err
	}
	return p, nil
}

// ListPokemon returns the whole collection in the order it was persisted.
func ListPokemon(ctx context.Context, db *sql.DB) ([]model.Pokemon, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT `+pokemonColumns+` FROM pokemon ORDER BY seq`,
	)
	if err != nil {
		return nil, fmt.Errorf("listing pokemon: %w", err)
	}
	defer rows.Close()

	var collection []model.Pokemon
	for rows.Next() {
		p, err := scanPokemon(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning pokemon: %w", err)
		}
		collection = append(collection, *p)
	}
	return collection, rows.Err()
}

// GetPokemon returns a Pokemon by id.
func GetPokemon(ctx context.Context, db *sql.DB, id string) (*model.Pokemon, error) {
	p, err := scanPokemon(db.QueryRowContext(ctx,
		`SELECT `+pokemonColumns+` FROM pokemon WHERE id = ?`, id,
	))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("pokemon %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("getting pokemon: %w", err)
	}
	return p, nil
}

// AddPokemon persists a new Pokemon. It fails with ErrDuplicateID if the id
// is already taken.
func AddPokemon(ctx context.Context, db *sql.DB, p model.Pokemon) error {
	if !p.Status.Valid() || !p.Rarity.Valid() {
		return fmt.Errorf("adding pokemon %s: %w", p.ID, ErrInvalidValue)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	var exists bool
	err = tx.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM pokemon WHERE id = ?)`, p.ID,
	).Scan(&exists)
	if err != nil {
		return fmt.Errorf("checking pokemon id: %w", err)
	}
	if exists {
		return fmt.Errorf("adding pokemon %s: %w", p.ID, ErrDuplicateID)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO pokemon (`+pokemonColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.Name, p.Rarity, p.Type, p.Attack, p.AttackName, p.PV, p.ImageBase64, p.GeneratedAt.UTC(), p.Status,
	)
	if err != nil {
		return fmt.Errorf("inserting pokemon: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing pokemon: %w", err)
	}
	return nil
}

// UpdatePokemon replaces a stored Pokemon. A resold Pokemon can never go
// back to owned, and nothing else about it may change.
func UpdatePokemon(ctx context.Context, db *sql.DB, p model.Pokemon) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if err := updatePokemonTx(ctx, tx, p); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing pokemon update: %w", err)
	}
	return nil
}

func updatePokemonTx(ctx context.Context, tx *sql.Tx, p model.Pokemon) error {
	if !p.Status.Valid() || !p.Rarity.Valid() {
		return fmt.Errorf("updating pokemon %s: %w", p.ID, ErrInvalidValue)
	}

	current, err := scanPokemon(tx.QueryRowContext(ctx,
		`SELECT `+pokemonColumns+` FROM pokemon WHERE id = ?`, p.ID,
	))
	if err == sql.ErrNoRows {
		return fmt.Errorf("updating pokemon %s: %w", p.ID, ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("loading pokemon: %w", err)
	}

	if current.Status == model.StatusResold && !sameRecord(*current, p) {
		return fmt.Errorf("updating pokemon %s from %s to %s: %w", p.ID, current.Status, p.Status, ErrInvalidTransition)
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE pokemon SET name = ?, rarity = ?, type = ?, attack = ?, attack_name = ?, pv = ?,
		        image_base64 = ?, generated_at = ?, status = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ?`,
		p.Name, p.Rarity, p.Type, p.Attack, p.AttackName, p.PV, p.ImageBase64, p.GeneratedAt.UTC(), p.Status, p.ID,
	)
	if err != nil {
		return fmt.Errorf("updating pokemon: %w", err)
	}
	return nil
}

func sameRecord(a, b model.Pokemon) bool {
	return a.ID == b.ID && a.Name == b.Name && a.Rarity == b.Rarity && a.Type == b.Type &&
		a.Attack == b.Attack && a.AttackName == b.AttackName && a.PV == b.PV &&
		a.ImageBase64 == b.ImageBase64 && a.GeneratedAt.Equal(b.GeneratedAt) && a.Status == b.Status
}
