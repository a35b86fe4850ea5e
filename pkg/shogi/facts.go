package shogi

import "sort"

// Per-move facts for the explanation and training surfaces. Everything here
// is derived from the movement generator and the applicator; nothing peeks
// at engine output.

// KindValue is the rough exchange value of a piece, used to rank captures
// and hanging pieces for training hints.
func KindValue(p Piece) int {
	if p.Promoted {
		switch p.Kind {
		case Pawn, Lance, Knight:
			return 5
		case Silver:
			return 6
		case Bishop:
			return 10
		case Rook:
			return 12
		}
	}
	switch p.Kind {
	case Pawn:
		return 1
	case Lance, Knight:
		return 3
	case Silver:
		return 5
	case Gold:
		return 6
	case Bishop:
		return 8
	case Rook:
		return 10
	}
	return 0
}

// MoveFacts are the observable properties of one applied move.
type MoveFacts struct {
	Drop          bool
	Capture       bool
	Promotion     bool
	CapturedKind  Kind // base kind added to the mover's hand, when Capture
	CapturedValue int
	LineOpened    bool // big-piece coverage grew noticeably
}

// bigPieceCoverage counts squares covered by the side's bishops and rooks,
// promoted forms included.
func bigPieceCoverage(b *Board, side Color) int {
	set := SquareSet{}
	for y := 0; y < 9; y++ {
		for x := 0; x < 9; x++ {
			piece := b[y][x]
			if piece == nil || piece.Owner != side {
				continue
			}
			if piece.Kind != Bishop && piece.Kind != Rook {
				continue
			}
			for _, sq := range attackTargets(b, Square{X: x, Y: y}, *piece) {
				set[sq] = struct{}{}
			}
		}
	}
	return len(set)
}

// ComputeFacts applies the move to a clone of the position and reports what
// happened. The input position is never modified. A rejected move returns
// the applicator's error.
func ComputeFacts(p *Position, m Move) (MoveFacts, error) {
	mover := p.turn
	captured := p.board.PieceAt(m.To)

	before := bigPieceCoverage(&p.board, mover)
	next := p.Clone()
	if err := next.Apply(m); err != nil {
		return MoveFacts{}, err
	}
	after := bigPieceCoverage(&next.board, mover)

	facts := MoveFacts{
		Drop:       m.Drop,
		Promotion:  m.Promote,
		LineOpened: after-before >= 2,
	}
	if !m.Drop && captured != nil {
		facts.Capture = true
		facts.CapturedKind = captured.Kind
		facts.CapturedValue = KindValue(*captured)
	}
	return facts, nil
}

// HangingPieces lists the squares of side's pieces that are attacked by the
// opponent and not defended by another piece of side, most valuable first.
// The training mini-game uses this to ask "which piece is hanging?".
func HangingPieces(b *Board, side Color) []Square {
	threatened := AttackSet(b, side.Flip())
	var out []Square
	for y := 0; y < 9; y++ {
		for x := 0; x < 9; x++ {
			piece := b[y][x]
			if piece == nil || piece.Owner != side {
				continue
			}
			sq := Square{X: x, Y: y}
			if !threatened.Contains(sq) {
				continue
			}
			if IsDefended(b, sq, side) {
				continue
			}
			out = append(out, sq)
		}
	}
	// Most valuable first; stable on equal value by scan order.
	sort.SliceStable(out, func(i, j int) bool {
		return KindValue(*b.PieceAt(out[i])) > KindValue(*b.PieceAt(out[j]))
	})
	return out
}
