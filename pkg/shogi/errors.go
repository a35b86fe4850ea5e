package shogi

import (
	"errors"
	"fmt"
)

// ErrInvalidSquare marks a coordinate token outside the 9x9 board. Moves with
// out-of-range squares are rejected, never clamped.
var ErrInvalidSquare = errors.New("square out of range")

// ErrUnsupportedPosition marks a position command with an unknown header
// keyword. The caller must not assume any partial result.
var ErrUnsupportedPosition = errors.New("unsupported position header")

// ParseError is a fatal notation error. A failed parse leaves the caller with
// no usable partial value; a default board is never substituted.
type ParseError struct {
	Input  string
	Reason string
	Err    error
}

func (e *ParseError) Error() string {
	if e.Input == "" {
		return "parse: " + e.Reason
	}
	return fmt.Sprintf("parse %q: %s", e.Input, e.Reason)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// MoveErrorKind classifies why the applicator rejected a move.
type MoveErrorKind int

const (
	// WrongOwner: the source square is empty or holds the opponent's piece.
	WrongOwner MoveErrorKind = iota
	// OccupiedBySelf: the destination holds the mover's own piece.
	OccupiedBySelf
	// NoPieceInHand: the dropped kind has a zero hand count.
	NoPieceInHand
	// OccupiedSquare: the drop destination is not empty.
	OccupiedSquare
	// RestrictedDropRank: pawn/lance on the last rank, knight on the last two.
	RestrictedDropRank
	// BadPromotion: promoting a kind with no promoted form (King, Gold).
	BadPromotion
)

var moveErrorNames = [...]string{
	WrongOwner:         "source is not a piece of the side to move",
	OccupiedBySelf:     "destination occupied by own piece",
	NoPieceInHand:      "no such piece in hand",
	OccupiedSquare:     "drop destination occupied",
	RestrictedDropRank: "piece cannot be dropped on that rank",
	BadPromotion:       "piece cannot promote",
}

// MoveError reports a rejected move. It is recoverable: the Position the move
// was applied to is unchanged and the caller may simply try another move.
type MoveError struct {
	Kind MoveErrorKind
	Move Move
}

func (e *MoveError) Error() string {
	return fmt.Sprintf("move %s: %s", e.Move, moveErrorNames[e.Kind])
}

// ReplayError reports the ply at which a timeline replay failed.
type ReplayError struct {
	Ply  int    // 1-based ply of the rejected move
	Move string // the offending token
	Err  error
}

func (e *ReplayError) Error() string {
	return fmt.Sprintf("ply %d (%s): %v", e.Ply, e.Move, e.Err)
}

func (e *ReplayError) Unwrap() error {
	return e.Err
}
