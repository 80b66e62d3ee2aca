package model

import "time"

// LedgerEntry records one movement of the token balance.
type LedgerEntry struct {
	ID        string    `json:"id"`
	Kind      string    `json:"kind"`
	Amount    int64     `json:"amount"`
	Balance   int64     `json:"balance"`
	PokemonID string    `json:"pokemon_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Ledger entry kinds. Amount is negative for debits.
const (
	LedgerDebit  = "debit"
	LedgerRefund = "refund"
	LedgerCredit = "credit"
)
