package store

import (
	"context"
	"testing"

	"github.com/erazemk/zbirka/internal/db"
	"github.com/erazemk/zbirka/internal/model"
)

func TestRecordAndListLedger(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	if _, err := RecordLedger(ctx, database, model.LedgerDebit, -10, 90, ""); err != nil {
		t.Fatalf("RecordLedger debit: %v", err)
	}
	if _, err := RecordLedger(ctx, database, model.LedgerCredit, 18, 108, "p1"); err != nil {
		t.Fatalf("RecordLedger credit: %v", err)
	}

	entries, err := ListLedger(ctx, database, 0)
	if err != nil {
		t.Fatalf("ListLedger: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].Kind != model.LedgerCredit || entries[0].PokemonID != "p1" {
		t.Errorf("expected newest entry to be the credit, got %+v", entries[0])
	}
	if entries[1].PokemonID != "" {
		t.Errorf("expected empty pokemon id on debit, got %q", entries[1].PokemonID)
	}

	limited, _ := ListLedger(ctx, database, 1)
	if len(limited) != 1 {
		t.Errorf("expected 1 entry with limit, got %d", len(limited))
	}
}

func TestRecordLedgerRejectsUnknownKind(t *testing.T) {
	database := db.NewTestDB(t)

	if _, err := RecordLedger(context.Background(), database, "bonus", 5, 5, ""); err == nil {
		t.Error("expected CHECK constraint to reject unknown kind")
	}
}
