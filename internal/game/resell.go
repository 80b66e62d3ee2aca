package game

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/erazemk/zbirka/internal/model"
)

// Resell marks an owned Pokemon as resold and credits its resell value.
// The mirror is only patched once the store has accepted both writes.
func (c *Coordinator) Resell(ctx context.Context, id string) (*model.Pokemon, error) {
	c.flow.Lock()
	defer c.flow.Unlock()
	defer c.setStage(StageIdle)

	ctx = context.WithoutCancel(ctx)

	c.setStage(StageValidating)
	c.mu.RLock()
	target, ok := c.find(id)
	balance := c.balance
	c.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: unknown pokemon %q", ErrNotResellable, id)
	}
	if target.Status != model.StatusOwned {
		return nil, fmt.Errorf("%w: pokemon %q is already resold", ErrNotResellable, id)
	}

	credit := model.ResellValue(target.Rarity)
	credited := balance + credit
	resold := target
	resold.Status = model.StatusResold

	c.setStage(StageCrediting)
	if err := c.credit(ctx, resold, credited); err != nil {
		slog.WarnContext(ctx, "flow failed", "flow", FlowResell, "stage", StageCrediting,
			"pokemon", id, "error", err)
		return nil, &FlowError{Flow: FlowResell, Stage: StageCrediting, Err: err}
	}

	c.commit(patch{update: &resold, balance: &credited})
	c.record(ctx, model.LedgerCredit, credit, credited, id)

	slog.InfoContext(ctx, "pokemon resold", "pokemon", id, "rarity", resold.Rarity,
		"credit", credit, "balance", credited)
	return &resold, nil
}

// credit writes the resold record and the new balance. Stores that support
// it apply both in one transaction. Otherwise the status is written first and
// a failed balance write leaves the record resold without the credit; the
// mirror is then reloaded so it matches the store.
func (c *Coordinator) credit(ctx context.Context, resold model.Pokemon, balance int64) error {
	if applier, ok := c.store.(ResellApplier); ok {
		return applier.ApplyResell(ctx, resold, balance)
	}

	if err := c.store.UpdatePokemon(ctx, resold); err != nil {
		return err
	}
	if err := c.store.SetBalance(ctx, balance); err != nil {
		slog.ErrorContext(ctx, "pokemon resold without credit", "pokemon", resold.ID, "error", err)
		if loadErr := c.Load(ctx); loadErr != nil {
			slog.ErrorContext(ctx, "failed to reload state", "error", loadErr)
		}
		return err
	}
	return nil
}
