package game

import (
	"errors"
	"fmt"
)

var (
	// ErrMoveRejected is returned when a move could not be carried out. The state is unchanged.
	ErrMoveRejected = errors.New("move rejected")
	// ErrIllegalMove is a rejection because the move is not in the legal move set.
	ErrIllegalMove = fmt.Errorf("%w: illegal move", ErrMoveRejected)
	ErrNotFinished = errors.New("game not finished")
	ErrNoHistory   = errors.New("no move to undo")
	ErrNoRedo      = errors.New("no move to redo")
	ErrBadCount    = errors.New("negative move count")
)

// MoveError records the move that caused a rejection.
type MoveError struct {
	Move Move
	Err  error
}

func (e *MoveError) Error() string {
	return fmt.Sprintf("%v: %+v", e.Err, e.Move)
}

func (e *MoveError) Unwrap() error {
	return e.Err
}

func rejected(move Move, err error) error {
	return &MoveError{Move: move, Err: err}
}
