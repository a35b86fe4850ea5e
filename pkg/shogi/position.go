package shogi

// Board is the 9x9 grid, indexed [y][x] in display coordinates. A nil cell is
// empty. Cells hold copies; pieces are never shared between boards.
type Board [9][9]*Piece

// PieceAt returns the piece on the square, or nil for an empty or
// out-of-bounds square.
func (b *Board) PieceAt(sq Square) *Piece {
	if !sq.InBounds() {
		return nil
	}
	return b[sq.Y][sq.X]
}

// Set places a copy of the piece on the square, or clears it when piece is
// nil. Out-of-bounds squares are ignored.
func (b *Board) Set(sq Square, piece *Piece) {
	if !sq.InBounds() {
		return
	}
	if piece == nil {
		b[sq.Y][sq.X] = nil
		return
	}
	p := *piece
	b[sq.Y][sq.X] = &p
}

// Clone returns a deep copy of the board.
func (b *Board) Clone() Board {
	var out Board
	for y := 0; y < 9; y++ {
		for x := 0; x < 9; x++ {
			if b[y][x] == nil {
				continue
			}
			p := *b[y][x]
			out[y][x] = &p
		}
	}
	return out
}

// Hands holds each side's captured pieces available to drop, keyed by base
// kind. Kings never enter a hand. Counts are always >= 0; a zero count is
// removed from the map.
type Hands map[Color]map[Kind]int

// NewHands returns empty hands for both sides.
func NewHands() Hands {
	return Hands{Sente: {}, Gote: {}}
}

// Count returns the hand count for the side and kind.
func (h Hands) Count(c Color, k Kind) int {
	return h[c][k]
}

func (h Hands) add(c Color, k Kind, n int) {
	h[c][k] += n
}

func (h Hands) remove(c Color, k Kind) {
	h[c][k]--
	if h[c][k] <= 0 {
		delete(h[c], k)
	}
}

// Clone returns a deep copy of both hands.
func (h Hands) Clone() Hands {
	out := NewHands()
	for color, hand := range h {
		for kind, n := range hand {
			out[color][kind] = n
		}
	}
	return out
}

// Position is the board + hands + side-to-move aggregate. It owns its board
// and hands exclusively; Clone before speculative mutation and keep the old
// value until the new one is accepted.
type Position struct {
	board Board
	hands Hands
	turn  Color
}

// NewPosition returns an empty position with Sente to move.
func NewPosition() *Position {
	return &Position{hands: NewHands()}
}

const startSFEN = "lnsgkgsnl/1r5b1/ppppppppp/9/9/9/PPPPPPPPP/1B5R1/LNSGKGSNL b - 1"

// StartPosition returns the canonical starting setup.
func StartPosition() *Position {
	pos, _, err := ParsePosition("startpos")
	if err != nil {
		panic("startpos: " + err.Error()) // unreachable, the layout is a constant
	}
	return pos
}

// Clone returns a deep value copy. Mutating the clone never affects the
// receiver.
func (p *Position) Clone() *Position {
	return &Position{
		board: p.board.Clone(),
		hands: p.hands.Clone(),
		turn:  p.turn,
	}
}

// Board returns the position's board for read-only movement queries.
func (p *Position) Board() *Board {
	return &p.board
}

// PieceAt returns the piece on the square, or nil.
func (p *Position) PieceAt(sq Square) *Piece {
	return p.board.PieceAt(sq)
}

// HandCount returns the number of captured pieces of the kind held by side.
func (p *Position) HandCount(c Color, k Kind) int {
	return p.hands.Count(c, k)
}

// Turn returns the side to move.
func (p *Position) Turn() Color {
	return p.turn
}

// SetTurn overrides the side to move. Intended for position setup.
func (p *Position) SetTurn(c Color) {
	p.turn = c
}

// SetPiece places a piece during position setup.
func (p *Position) SetPiece(sq Square, piece Piece) {
	p.board.Set(sq, &piece)
}

// ClearSquare empties a square during position setup.
func (p *Position) ClearSquare(sq Square) {
	p.board.Set(sq, nil)
}

// SetHand overrides a hand count during position setup.
func (p *Position) SetHand(c Color, k Kind, n int) {
	if n <= 0 {
		delete(p.hands[c], k)
		return
	}
	p.hands[c][k] = n
}

// Equal reports whether two positions have the same board, hands and turn.
func (p *Position) Equal(q *Position) bool {
	if p.turn != q.turn {
		return false
	}
	for y := 0; y < 9; y++ {
		for x := 0; x < 9; x++ {
			a, b := p.board[y][x], q.board[y][x]
			if (a == nil) != (b == nil) {
				return false
			}
			if a != nil && *a != *b {
				return false
			}
		}
	}
	for _, c := range []Color{Sente, Gote} {
		for _, k := range HandOrder {
			if p.hands.Count(c, k) != q.hands.Count(c, k) {
				return false
			}
		}
	}
	return true
}
