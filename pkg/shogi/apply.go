package shogi

// Move application. Apply validates before touching any state, so a rejected
// move always leaves the Position exactly as it was.

// Apply applies one move for the side to move and flips the turn. Board
// moves check ownership and destination occupancy; captures revert the
// captured piece to its unpromoted kind and add it to the mover's hand.
// Drops check the hand count, destination emptiness and the drop-rank
// restrictions. Deeper legality (two pawns per file, drop checkmate, leaving
// the king in check) is deliberately not enforced.
func (p *Position) Apply(m Move) error {
	if m.Drop {
		return p.applyDrop(m)
	}
	return p.applyBoardMove(m)
}

// ApplyUSI parses a USI move token and applies it.
func (p *Position) ApplyUSI(token string) error {
	m, err := ParseMove(token)
	if err != nil {
		return err
	}
	return p.Apply(m)
}

func (p *Position) applyBoardMove(m Move) error {
	piece := p.board.PieceAt(m.From)
	if piece == nil || piece.Owner != p.turn {
		return &MoveError{Kind: WrongOwner, Move: m}
	}
	if m.Promote && !piece.Kind.Promotable() {
		return &MoveError{Kind: BadPromotion, Move: m}
	}
	captured := p.board.PieceAt(m.To)
	if captured != nil && captured.Owner == p.turn {
		return &MoveError{Kind: OccupiedBySelf, Move: m}
	}

	if captured != nil {
		// Captured pieces always revert to their unpromoted kind.
		p.hands.add(p.turn, captured.Kind, 1)
	}
	moved := *piece
	if m.Promote {
		moved = moved.Promote()
	}
	p.board.Set(m.From, nil)
	p.board.Set(m.To, &moved)
	p.turn = p.turn.Flip()
	return nil
}

func (p *Position) applyDrop(m Move) error {
	if p.hands.Count(p.turn, m.Piece) == 0 {
		return &MoveError{Kind: NoPieceInHand, Move: m}
	}
	if p.board.PieceAt(m.To) != nil {
		return &MoveError{Kind: OccupiedSquare, Move: m}
	}
	if restrictedDropRank(m.Piece, p.turn, m.To) {
		return &MoveError{Kind: RestrictedDropRank, Move: m}
	}

	p.hands.remove(p.turn, m.Piece)
	p.board.Set(m.To, &Piece{Kind: m.Piece, Owner: p.turn})
	p.turn = p.turn.Flip()
	return nil
}

// restrictedDropRank reports whether the drop would leave the piece with no
// forward move: pawns and lances on the farthest rank, knights on the two
// farthest ranks.
func restrictedDropRank(kind Kind, owner Color, to Square) bool {
	forward := to.Y // distance to Sente's far edge
	if owner == Gote {
		forward = 8 - to.Y
	}
	switch kind {
	case Pawn, Lance:
		return forward == 0
	case Knight:
		return forward <= 1
	}
	return false
}

// CanPromote reports whether a board move of piece from->to may carry the
// promotion flag: the piece has a promoted form, is not already promoted,
// and either endpoint lies in the mover's promotion zone (the three ranks
// nearest the opposing back rank). This is informational; Apply only rejects
// promotion of pieces with no promoted form.
func CanPromote(piece Piece, from, to Square) bool {
	if piece.Promoted || !piece.Kind.Promotable() {
		return false
	}
	return inPromotionZone(piece.Owner, from) || inPromotionZone(piece.Owner, to)
}

func inPromotionZone(owner Color, sq Square) bool {
	if owner == Sente {
		return sq.Y <= 2
	}
	return sq.Y >= 6
}
