package game

import (
	"errors"
	"fmt"

	"github.com/erazemk/zbirka/internal/generator"
	"github.com/erazemk/zbirka/internal/store"
)

var (
	// ErrInsufficientFunds is returned when the balance does not cover a generation.
	ErrInsufficientFunds = errors.New("insufficient tokens")

	// ErrNotResellable is returned when the target is unknown or already resold.
	ErrNotResellable = errors.New("pokemon cannot be resold")

	// ErrPersistence matches a generate flow that failed while saving the new Pokemon.
	ErrPersistence = errors.New("failed to save pokemon")

	// ErrInvalidSortOrder is returned by SetSortOrder for unknown orders.
	ErrInvalidSortOrder = errors.New("invalid sort order")
)

// Flow names a coordinator operation.
type Flow string

const (
	FlowGenerate Flow = "generate"
	FlowResell   Flow = "resell"
)

// Stage is a step of a flow.
type Stage string

const (
	StageIdle        Stage = "idle"
	StageDebiting    Stage = "debiting"
	StageCalling     Stage = "calling"
	StagePersisting  Stage = "persisting"
	StageRollingBack Stage = "rolling back"
	StageValidating  Stage = "validating"
	StageCrediting   Stage = "crediting"
)

// FlowError reports the stage at which a flow failed. It unwraps to the
// original cause so callers can match generator and store errors directly.
type FlowError struct {
	Flow  Flow
	Stage Stage
	Err   error

	// Refunded is set when a debit was made and then restored.
	Refunded bool

	// RollbackErr is the first compensation failure, if any.
	RollbackErr error
}

func (e *FlowError) Error() string {
	msg := fmt.Sprintf("%s failed while %s: %v", e.Flow, e.Stage, e.Err)
	switch {
	case e.RollbackErr != nil:
		msg += fmt.Sprintf(" (refund failed: %v)", e.RollbackErr)
	case e.Refunded:
		msg += " (tokens refunded)"
	}
	return msg
}

func (e *FlowError) Unwrap() error {
	return e.Err
}

// Is makes a failure during the persisting stage match ErrPersistence.
func (e *FlowError) Is(target error) bool {
	return target == ErrPersistence && e.Flow == FlowGenerate && e.Stage == StagePersisting
}

// Refunded reports whether err carries a completed token refund.
func Refunded(err error) bool {
	var fe *FlowError
	return errors.As(err, &fe) && fe.Refunded
}

// Kind maps err to its name in the game's error taxonomy.
func Kind(err error) string {
	var (
		remote  *generator.RemoteError
		unknown *generator.UnknownError
	)

	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrInsufficientFunds):
		return "InsufficientFunds"
	case errors.Is(err, ErrNotResellable):
		return "NotResellable"
	case errors.Is(err, generator.ErrTimeout):
		return "Timeout"
	case errors.Is(err, generator.ErrNetworkUnavailable):
		return "NetworkUnavailable"
	case errors.As(err, &remote):
		return "RemoteError"
	case errors.Is(err, generator.ErrMalformedResponse):
		return "MalformedResponse"
	case errors.As(err, &unknown):
		return "UnknownError"
	case errors.Is(err, store.ErrDuplicateID):
		return "DuplicateId"
	case errors.Is(err, store.ErrNotFound):
		return "NotFound"
	case errors.Is(err, store.ErrInvalidTransition):
		return "InvalidTransition"
	case errors.Is(err, store.ErrInvalidValue), errors.Is(err, ErrInvalidSortOrder):
		return "InvalidValue"
	}
	return "Internal"
}
