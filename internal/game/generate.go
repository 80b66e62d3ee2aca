package game

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/erazemk/zbirka/internal/generator"
	"github.com/erazemk/zbirka/internal/model"
)

// compensation undoes one completed step of a saga.
type compensation struct {
	name string
	undo func(ctx context.Context) error
}

// saga tracks the current stage of a flow and the compensations for the
// steps that have completed so far.
type saga struct {
	c     *Coordinator
	flow  Flow
	stage Stage
	undo  []compensation
}

func (s *saga) enter(stage Stage) {
	s.stage = stage
	s.c.setStage(stage)
}

func (s *saga) onFailure(name string, undo func(ctx context.Context) error) {
	s.undo = append(s.undo, compensation{name: name, undo: undo})
}

// abort runs the registered compensations in reverse order and returns the
// original cause annotated with the failed stage.
func (s *saga) abort(ctx context.Context, cause error) *FlowError {
	fe := &FlowError{Flow: s.flow, Stage: s.stage, Err: cause}
	if len(s.undo) == 0 {
		slog.WarnContext(ctx, "flow failed", "flow", s.flow, "stage", s.stage, "error", cause)
		return fe
	}

	s.c.setStage(StageRollingBack)
	for i := len(s.undo) - 1; i >= 0; i-- {
		if err := s.undo[i].undo(ctx); err != nil && fe.RollbackErr == nil {
			fe.RollbackErr = fmt.Errorf("%s: %w", s.undo[i].name, err)
		}
	}
	fe.Refunded = fe.RollbackErr == nil

	if fe.RollbackErr != nil {
		slog.ErrorContext(ctx, "flow rollback failed", "flow", s.flow, "stage", s.stage,
			"error", cause, "rollback_error", fe.RollbackErr)
	} else {
		slog.WarnContext(ctx, "flow rolled back", "flow", s.flow, "stage", s.stage, "error", cause)
	}
	return fe
}

// Generate spends the generation cost, asks the generator for a new Pokemon
// and saves it. Any failure after the debit refunds the tokens before the
// error is returned.
func (c *Coordinator) Generate(ctx context.Context) (*model.Pokemon, error) {
	c.flow.Lock()
	defer c.flow.Unlock()
	defer c.setStage(StageIdle)

	// A started flow runs to completion even if the caller goes away.
	ctx = context.WithoutCancel(ctx)

	before := c.currentBalance()
	if before < c.cost {
		return nil, fmt.Errorf("%w: have %d, need %d", ErrInsufficientFunds, before, c.cost)
	}
	debited := before - c.cost

	s := &saga{c: c, flow: FlowGenerate}

	s.enter(StageDebiting)
	if err := c.store.SetBalance(ctx, debited); err != nil {
		return nil, s.abort(ctx, err)
	}
	c.commit(setBalance(debited))
	c.record(ctx, model.LedgerDebit, -c.cost, debited, "")

	s.onFailure("refund tokens", func(ctx context.Context) error {
		if err := c.store.SetBalance(ctx, before); err != nil {
			return err
		}
		c.commit(setBalance(before))
		c.record(ctx, model.LedgerRefund, c.cost, before, "")
		return nil
	})

	s.enter(StageCalling)
	p, err := c.gen.Generate(ctx)
	if err != nil {
		return nil, s.abort(ctx, err)
	}
	if p == nil {
		return nil, s.abort(ctx, fmt.Errorf("%w: empty result", generator.ErrMalformedResponse))
	}
	p.Status = model.StatusOwned

	s.enter(StagePersisting)
	if err := c.store.AddPokemon(ctx, *p); err != nil {
		return nil, s.abort(ctx, err)
	}
	c.commit(patch{add: p})

	slog.InfoContext(ctx, "pokemon generated", "pokemon", p.ID, "name", p.Name,
		"rarity", p.Rarity, "balance", debited)
	return p, nil
}
