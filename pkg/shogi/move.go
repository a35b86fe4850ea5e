package shogi

import "strings"

// Move is one half-move: either a board move (From -> To, optional
// promotion) or a drop of a hand piece onto To. Moves are ephemeral; only
// the resulting Position snapshots are retained.
type Move struct {
	From    Square
	To      Square
	Promote bool
	Drop    bool
	Piece   Kind // dropped kind, only meaningful when Drop is set
}

// ParseMove reads a USI move token: "7g7f", "8h2b+" or a drop like "P*5e".
// Coordinates outside the board are rejected, never clamped.
func ParseMove(token string) (Move, error) {
	if i := strings.IndexByte(token, '*'); i >= 0 {
		if i != 1 {
			return Move{}, &ParseError{Input: token, Reason: "malformed drop"}
		}
		kind, ok := KindFromLetter(rune(token[0]))
		if !ok || kind == King {
			return Move{}, &ParseError{Input: token, Reason: "unknown drop piece"}
		}
		to, err := ParseSquare(token[2:])
		if err != nil {
			return Move{}, err
		}
		return Move{Drop: true, Piece: kind, To: to}, nil
	}
	if len(token) != 4 && len(token) != 5 {
		return Move{}, &ParseError{Input: token, Reason: "malformed move"}
	}
	from, err := ParseSquare(token[0:2])
	if err != nil {
		return Move{}, err
	}
	to, err := ParseSquare(token[2:4])
	if err != nil {
		return Move{}, err
	}
	promote := false
	if len(token) == 5 {
		if token[4] != '+' {
			return Move{}, &ParseError{Input: token, Reason: "invalid promotion marker"}
		}
		promote = true
	}
	return Move{From: from, To: to, Promote: promote}, nil
}

// FormatMove is the exact inverse of ParseMove.
func FormatMove(m Move) string {
	if m.Drop {
		return string(m.Piece.Letter()) + "*" + m.To.String()
	}
	s := m.From.String() + m.To.String()
	if m.Promote {
		s += "+"
	}
	return s
}

func (m Move) String() string {
	return FormatMove(m)
}
