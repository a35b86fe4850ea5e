package shogi

import "strings"

// Color identifies the side a piece belongs to or the side to move.
type Color int

const (
	Sente Color = iota // first player, moves up the board
	Gote               // second player, moves down
)

// Flip returns the opposing side.
func (c Color) Flip() Color {
	if c == Sente {
		return Gote
	}
	return Sente
}

func (c Color) String() string {
	if c == Sente {
		return "sente"
	}
	return "gote"
}

// Kind is the base kind of a piece, independent of promotion.
type Kind int

const (
	Pawn Kind = iota
	Lance
	Knight
	Silver
	Gold
	Bishop
	Rook
	King
)

var kindLetters = [...]byte{'P', 'L', 'N', 'S', 'G', 'B', 'R', 'K'}

// HandOrder is the canonical serialization order for hand pieces.
var HandOrder = [...]Kind{Rook, Bishop, Gold, Silver, Knight, Lance, Pawn}

// Letter returns the uppercase SFEN letter for the kind.
func (k Kind) Letter() byte {
	return kindLetters[k]
}

func (k Kind) String() string {
	return string(kindLetters[k])
}

// KindFromLetter maps an SFEN piece letter (either case) to its kind.
func KindFromLetter(r rune) (Kind, bool) {
	switch r {
	case 'p', 'P':
		return Pawn, true
	case 'l', 'L':
		return Lance, true
	case 'n', 'N':
		return Knight, true
	case 's', 'S':
		return Silver, true
	case 'g', 'G':
		return Gold, true
	case 'b', 'B':
		return Bishop, true
	case 'r', 'R':
		return Rook, true
	case 'k', 'K':
		return King, true
	default:
		return 0, false
	}
}

// Promotable reports whether the kind has a promoted form.
func (k Kind) Promotable() bool {
	return k != Gold && k != King
}

// Piece is an immutable board piece value. Promoting or demoting produces a
// new value; a Piece is never mutated in place.
type Piece struct {
	Kind     Kind
	Owner    Color
	Promoted bool
}

// Promote returns the promoted form of the piece. Gold and King have no
// promoted form and are returned unchanged.
func (p Piece) Promote() Piece {
	if !p.Kind.Promotable() {
		return p
	}
	p.Promoted = true
	return p
}

// Demote returns the unpromoted form, used when a piece is captured.
func (p Piece) Demote() Piece {
	p.Promoted = false
	return p
}

// Notation returns the SFEN token for the piece: uppercase for Sente,
// lowercase for Gote, with a leading + for the promoted form.
func (p Piece) Notation() string {
	s := string(p.Kind.Letter())
	if p.Owner == Gote {
		s = strings.ToLower(s)
	}
	if p.Promoted {
		s = "+" + s
	}
	return s
}
