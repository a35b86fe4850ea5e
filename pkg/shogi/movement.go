package shogi

// Movement patterns. Deltas are defined for Sente, whose forward direction is
// -y (toward the top of the display grid); Gote mirrors on the y axis.
//
// Two views share the same tables and the same slider walk:
//   - attack coverage: every square a piece bears on, including occupied
//     ones (a friendly occupant on a covered square counts as defended);
//   - movement: attack coverage minus friendly-occupied squares.

type delta struct {
	dx int
	dy int
}

var (
	goldSteps = []delta{{0, -1}, {-1, -1}, {1, -1}, {-1, 0}, {1, 0}, {0, 1}}

	silverSteps = []delta{{0, -1}, {-1, -1}, {1, -1}, {-1, 1}, {1, 1}}

	pawnSteps = []delta{{0, -1}}

	knightSteps = []delta{{-1, -2}, {1, -2}}

	kingSteps = []delta{
		{-1, -1}, {0, -1}, {1, -1},
		{-1, 0}, {1, 0},
		{-1, 1}, {0, 1}, {1, 1},
	}

	orthoDirs = []delta{{1, 0}, {-1, 0}, {0, 1}, {0, -1}}
	diagDirs  = []delta{{1, 1}, {1, -1}, {-1, 1}, {-1, -1}}
)

func mirror(d delta, owner Color) delta {
	if owner == Gote {
		d.dy = -d.dy
	}
	return d
}

func addSteps(out []Square, from Square, owner Color, deltas []delta) []Square {
	for _, d := range deltas {
		d = mirror(d, owner)
		to := Square{X: from.X + d.dx, Y: from.Y + d.dy}
		if to.InBounds() {
			out = append(out, to)
		}
	}
	return out
}

// addSlide walks one direction, stopping at and including the first occupied
// square. This is the single blocking rule shared by every sliding piece.
func addSlide(out []Square, b *Board, from Square, owner Color, dir delta) []Square {
	dir = mirror(dir, owner)
	to := Square{X: from.X + dir.dx, Y: from.Y + dir.dy}
	for to.InBounds() {
		out = append(out, to)
		if b.PieceAt(to) != nil {
			break
		}
		to = Square{X: to.X + dir.dx, Y: to.Y + dir.dy}
	}
	return out
}

func addSlides(out []Square, b *Board, from Square, owner Color, dirs []delta) []Square {
	for _, dir := range dirs {
		out = addSlide(out, b, from, owner, dir)
	}
	return out
}

// attackTargets returns every square the piece bears on, occupied or not.
func attackTargets(b *Board, from Square, piece Piece) []Square {
	owner := piece.Owner
	if piece.Promoted {
		switch piece.Kind {
		case Pawn, Lance, Knight, Silver:
			return addSteps(nil, from, owner, goldSteps)
		case Bishop: // horse: bishop slides plus orthogonal steps
			out := addSlides(nil, b, from, owner, diagDirs)
			return addSteps(out, from, owner, orthoDirs)
		case Rook: // dragon: rook slides plus diagonal steps
			out := addSlides(nil, b, from, owner, orthoDirs)
			return addSteps(out, from, owner, diagDirs)
		}
	}
	switch piece.Kind {
	case Pawn:
		return addSteps(nil, from, owner, pawnSteps)
	case Lance:
		return addSlide(nil, b, from, owner, delta{0, -1})
	case Knight:
		// The only kind never blocked by an intervening piece.
		return addSteps(nil, from, owner, knightSteps)
	case Silver:
		return addSteps(nil, from, owner, silverSteps)
	case Gold:
		return addSteps(nil, from, owner, goldSteps)
	case King:
		return addSteps(nil, from, owner, kingSteps)
	case Bishop:
		return addSlides(nil, b, from, owner, diagDirs)
	case Rook:
		return addSlides(nil, b, from, owner, orthoDirs)
	}
	return nil
}

// Reachable returns the squares the piece on from could move to on this
// board snapshot. The slice is generated fresh per call; the function is pure
// in (board, square, piece) and keeps no state between calls. A square
// occupied by an enemy piece is reachable (a capture); friendly-occupied
// squares are excluded.
func Reachable(b *Board, from Square, piece Piece) []Square {
	targets := attackTargets(b, from, piece)
	out := targets[:0]
	for _, to := range targets {
		if occ := b.PieceAt(to); occ != nil && occ.Owner == piece.Owner {
			continue
		}
		out = append(out, to)
	}
	return out
}

// SquareSet is a set of board squares.
type SquareSet map[Square]struct{}

// Contains reports set membership.
func (s SquareSet) Contains(sq Square) bool {
	_, ok := s[sq]
	return ok
}

// AttackSet returns the union of attack coverage over every piece of side on
// the board: "which squares does side currently attack". Membership has no
// notion of turn order.
func AttackSet(b *Board, side Color) SquareSet {
	set := SquareSet{}
	for y := 0; y < 9; y++ {
		for x := 0; x < 9; x++ {
			piece := b[y][x]
			if piece == nil || piece.Owner != side {
				continue
			}
			for _, sq := range attackTargets(b, Square{X: x, Y: y}, *piece) {
				set[sq] = struct{}{}
			}
		}
	}
	return set
}

// IsDefended reports whether some piece of owner other than the occupant of
// sq itself bears on sq. This is the "is this piece hanging" predicate: a
// piece with no defender loses material when captured.
func IsDefended(b *Board, sq Square, owner Color) bool {
	for y := 0; y < 9; y++ {
		for x := 0; x < 9; x++ {
			if x == sq.X && y == sq.Y {
				continue
			}
			piece := b[y][x]
			if piece == nil || piece.Owner != owner {
				continue
			}
			for _, to := range attackTargets(b, Square{X: x, Y: y}, *piece) {
				if to == sq {
					return true
				}
			}
		}
	}
	return false
}
