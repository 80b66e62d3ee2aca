package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/erazemk/zbirka/internal/db"
	"github.com/erazemk/zbirka/internal/model"
)

func testPokemon(id string, rarity model.Rarity) model.Pokemon {
	return model.Pokemon{
		ID:          id,
		Name:        "Pika-" + id,
		Rarity:      rarity,
		Type:        "Electric",
		Attack:      42,
		AttackName:  "Thunderbolt",
		PV:          120,
		ImageBase64: "aW1hZ2U=",
		GeneratedAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		Status:      model.StatusOwned,
	}
}

func TestAddAndGetPokemon(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	want := testPokemon("p1", model.RarityA)
	if err := AddPokemon(ctx, database, want); err != nil {
		t.Fatalf("AddPokemon: %v", err)
	}

	got, err := GetPokemon(ctx, database, "p1")
	if err != nil {
		t.Fatalf("GetPokemon: %v", err)
	}
	if !sameRecord(*got, want) {
		t.Errorf("stored pokemon differs:\n got %+v\nwant %+v", *got, want)
	}
}

func TestGetPokemonNotFound(t *testing.T) {
	database := db.NewTestDB(t)

	_, err := GetPokemon(context.Background(), database, "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestAddPokemonDuplicate(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	if err := AddPokemon(ctx, database, testPokemon("p1", model.RarityF)); err != nil {
		t.Fatalf("AddPokemon: %v", err)
	}
	err := AddPokemon(ctx, database, testPokemon("p1", model.RarityS))
	if !errors.Is(err, ErrDuplicateID) {
		t.Fatalf("expected ErrDuplicateID, got %v", err)
	}

	// The original record must be untouched.
	got, _ := GetPokemon(ctx, database, "p1")
	if got.Rarity != model.RarityF {
		t.Errorf("expected rarity F to survive duplicate add, got %s", got.Rarity)
	}
}

func TestAddPokemonInvalid(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	bad := testPokemon("p1", model.RarityA)
	bad.Status = "LOST"
	if err := AddPokemon(ctx, database, bad); !errors.Is(err, ErrInvalidValue) {
		t.Errorf("expected ErrInvalidValue for bad status, got %v", err)
	}

	bad = testPokemon("p2", "Z")
	if err := AddPokemon(ctx, database, bad); !errors.Is(err, ErrInvalidValue) {
		t.Errorf("expected ErrInvalidValue for bad rarity, got %v", err)
	}
}

func TestListPokemonPersistedOrder(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	ids := []string{"zeta", "alpha", "mu"}
	for _, id := range ids {
		if err := AddPokemon(ctx, database, testPokemon(id, model.RarityC)); err != nil {
			t.Fatalf("AddPokemon(%s): %v", id, err)
		}
	}

	collection, err := ListPokemon(ctx, database)
	if err != nil {
		t.Fatalf("ListPokemon: %v", err)
	}
	if len(collection) != len(ids) {
		t.Fatalf("expected %d pokemon, got %d", len(ids), len(collection))
	}
	for i, id := range ids {
		if collection[i].ID != id {
			t.Errorf("position %d: expected %s, got %s", i, id, collection[i].ID)
		}
	}
}

func TestUpdatePokemonResell(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	p := testPokemon("p1", model.RarityB)
	AddPokemon(ctx, database, p)

	p.Status = model.StatusResold
	if err := UpdatePokemon(ctx, database, p); err != nil {
		t.Fatalf("UpdatePokemon: %v", err)
	}

	got, _ := GetPokemon(ctx, database, "p1")
	if got.Status != model.StatusResold {
		t.Errorf("expected RESOLD, got %s", got.Status)
	}
}

func TestUpdatePokemonNotFound(t *testing.T) {
	database := db.NewTestDB(t)

	err := UpdatePokemon(context.Background(), database, testPokemon("ghost", model.RarityB))
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestUpdatePokemonRejectsUnresell(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	p := testPokemon("p1", model.RarityB)
	p.Status = model.StatusResold
	AddPokemon(ctx, database, p)

	back := p
	back.Status = model.StatusOwned
	if err := UpdatePokemon(ctx, database, back); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("expected ErrInvalidTransition for RESOLD -> OWNED, got %v", err)
	}

	renamed := p
	renamed.Name = "Changed"
	if err := UpdatePokemon(ctx, database, renamed); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("expected ErrInvalidTransition for modifying a resold record, got %v", err)
	}

	got, _ := GetPokemon(ctx, database, "p1")
	if got.Status != model.StatusResold || got.Name != p.Name {
		t.Errorf("resold record changed: %+v", got)
	}
}
