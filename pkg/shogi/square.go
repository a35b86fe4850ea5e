package shogi

import "fmt"

// Square is a board coordinate in display space: X runs 0..8 left to right,
// Y runs 0..8 top to bottom. USI files (9..1) and ranks (a..i) exist only at
// the codec boundary; everything else works in these coordinates.
type Square struct {
	X int
	Y int
}

// InBounds reports whether the square lies on the 9x9 board.
func (s Square) InBounds() bool {
	return s.X >= 0 && s.X < 9 && s.Y >= 0 && s.Y < 9
}

// File returns the USI file (9..1) for the square.
func (s Square) File() int {
	return 9 - s.X
}

// Rank returns the USI rank (1..9, rank a = 1) for the square.
func (s Square) Rank() int {
	return s.Y + 1
}

func (s Square) String() string {
	return fmt.Sprintf("%d%c", s.File(), byte('a'+s.Y))
}

// ParseSquare reads a two-character USI square like "7g".
func ParseSquare(text string) (Square, error) {
	if len(text) != 2 {
		return Square{}, &ParseError{Input: text, Reason: "square must be two characters", Err: ErrInvalidSquare}
	}
	file := int(text[0] - '0')
	if file < 1 || file > 9 {
		return Square{}, &ParseError{Input: text, Reason: "file out of range", Err: ErrInvalidSquare}
	}
	rank := int(text[1]-'a') + 1
	if rank < 1 || rank > 9 {
		return Square{}, &ParseError{Input: text, Reason: "rank out of range", Err: ErrInvalidSquare}
	}
	return Square{X: 9 - file, Y: rank - 1}, nil
}
