package game

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/erazemk/zbirka/internal/model"
)

// Store is the durable state the coordinator reads and writes.
type Store interface {
	ListPokemon(ctx context.Context) ([]model.Pokemon, error)
	AddPokemon(ctx context.Context, p model.Pokemon) error
	UpdatePokemon(ctx context.Context, p model.Pokemon) error
	GetBalance(ctx context.Context) (int64, error)
	SetBalance(ctx context.Context, tokens int64) error
}

// ResellApplier is implemented by stores that can mark a Pokemon resold and
// set the balance in one transaction.
type ResellApplier interface {
	ApplyResell(ctx context.Context, p model.Pokemon, tokens int64) error
}

// LedgerRecorder is implemented by stores that keep a history of balance
// movements.
type LedgerRecorder interface {
	RecordLedger(ctx context.Context, kind string, amount, balance int64, pokemonID string) error
}

// Generator produces new Pokemon.
type Generator interface {
	Generate(ctx context.Context) (*model.Pokemon, error)
}

// Coordinator runs the generate and resell flows against the store and
// keeps an in-memory mirror of the balance and collection for rendering.
type Coordinator struct {
	store Store
	gen   Generator
	cost  int64

	// flow serializes generate and resell end to end.
	flow sync.Mutex

	mu         sync.RWMutex
	balance    int64
	collection []model.Pokemon
	sortOrder  model.SortOrder
	stage      Stage
}

// New creates a Coordinator charging cost tokens per generation. Call Load
// before serving any flow.
func New(store Store, gen Generator, cost int64) *Coordinator {
	return &Coordinator{
		store:     store,
		gen:       gen,
		cost:      cost,
		sortOrder: model.DefaultSortOrder,
		stage:     StageIdle,
	}
}

// Load replaces the mirror with the store's balance and collection.
func (c *Coordinator) Load(ctx context.Context) error {
	balance, err := c.store.GetBalance(ctx)
	if err != nil {
		return fmt.Errorf("loading balance: %w", err)
	}
	collection, err := c.store.ListPokemon(ctx)
	if err != nil {
		return fmt.Errorf("loading collection: %w", err)
	}
	if collection == nil {
		collection = []model.Pokemon{}
	}

	c.commit(patch{balance: &balance, collection: collection})
	return nil
}

// State returns a snapshot of the mirror with the collection in the current
// sort order and the score recomputed.
func (c *Coordinator) State() State {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return State{
		Balance:    c.balance,
		Cost:       c.cost,
		Score:      model.Score(c.collection),
		SortOrder:  c.sortOrder,
		Stage:      c.stage,
		Collection: model.Sorted(c.collection, c.sortOrder),
	}
}

// Pokemon returns the Pokemon with the given id from the mirror.
func (c *Coordinator) Pokemon(id string) (model.Pokemon, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.find(id)
}

// SetSortOrder changes the order State returns the collection in.
func (c *Coordinator) SetSortOrder(order model.SortOrder) error {
	if !order.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidSortOrder, order)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.sortOrder = order
	return nil
}

// find looks up id in the mirror. The caller holds c.mu.
func (c *Coordinator) find(id string) (model.Pokemon, bool) {
	for _, p := range c.collection {
		if p.ID == id {
			return p, true
		}
	}
	return model.Pokemon{}, false
}

func (c *Coordinator) currentBalance() int64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.balance
}

func (c *Coordinator) setStage(s Stage) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stage = s
}

// record appends to the ledger when the store keeps one. Failures are logged
// and never fail the flow.
func (c *Coordinator) record(ctx context.Context, kind string, amount, balance int64, pokemonID string) {
	ledger, ok := c.store.(LedgerRecorder)
	if !ok {
		return
	}
	if err := ledger.RecordLedger(ctx, kind, amount, balance, pokemonID); err != nil {
		slog.WarnContext(ctx, "failed to record ledger entry", "kind", kind, "amount", amount, "error", err)
	}
}
