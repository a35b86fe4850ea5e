package shogi_test

import (
	"testing"

	"shogi/pkg/shogi"
)

func squareSet(squares []shogi.Square) map[shogi.Square]bool {
	set := make(map[shogi.Square]bool, len(squares))
	for _, sq := range squares {
		set[sq] = true
	}
	return set
}

func TestReachable_PawnFromStart(t *testing.T) {
	pos := shogi.StartPosition()
	from := shogi.Square{X: 2, Y: 6}
	piece := pos.PieceAt(from)
	got := shogi.Reachable(pos.Board(), from, *piece)
	if len(got) != 1 || got[0] != (shogi.Square{X: 2, Y: 5}) {
		t.Fatalf("pawn moves = %v, want [{2 5}]", got)
	}
}

// TestReachable_LanceBlockedByOwnPawn: the slider stops before a friendly
// piece, so only the gap square is reachable.
func TestReachable_LanceBlockedByOwnPawn(t *testing.T) {
	pos := shogi.StartPosition()
	from := shogi.Square{X: 0, Y: 8}
	piece := pos.PieceAt(from)
	got := shogi.Reachable(pos.Board(), from, *piece)
	if len(got) != 1 || got[0] != (shogi.Square{X: 0, Y: 7}) {
		t.Fatalf("lance moves = %v, want [{0 7}]", got)
	}
}

// TestReachable_KnightBlockedDestinations: a knight jumps over pieces, but in
// the starting position both landing squares hold its own pawns.
func TestReachable_KnightBlockedDestinations(t *testing.T) {
	pos := shogi.StartPosition()
	from := shogi.Square{X: 1, Y: 8}
	piece := pos.PieceAt(from)
	if got := shogi.Reachable(pos.Board(), from, *piece); len(got) != 0 {
		t.Fatalf("knight moves = %v, want none", got)
	}
}

// TestReachable_BishopAfterPawnAdvance: 7g7f opens the long diagonal up to
// and including the first enemy piece.
func TestReachable_BishopAfterPawnAdvance(t *testing.T) {
	pos := shogi.StartPosition()
	if err := pos.ApplyUSI("7g7f"); err != nil {
		t.Fatalf("apply: %v", err)
	}
	from := shogi.Square{X: 1, Y: 7}
	piece := pos.PieceAt(from)
	got := squareSet(shogi.Reachable(pos.Board(), from, *piece))
	want := []shogi.Square{
		{X: 2, Y: 6}, {X: 3, Y: 5}, {X: 4, Y: 4}, {X: 5, Y: 3}, {X: 6, Y: 2},
	}
	if len(got) != len(want) {
		t.Fatalf("bishop moves = %v, want %v", got, want)
	}
	for _, sq := range want {
		if !got[sq] {
			t.Errorf("missing %v", sq)
		}
	}
	// 3c holds a gote pawn: capturable, but the slide stops there.
	if got[shogi.Square{X: 7, Y: 1}] {
		t.Error("bishop slid past an enemy piece")
	}
}

func TestReachable_RookStopsAtEnemy(t *testing.T) {
	pos := shogi.NewPosition()
	pos.SetPiece(shogi.Square{X: 4, Y: 4}, shogi.Piece{Kind: shogi.Rook, Owner: shogi.Sente})
	pos.SetPiece(shogi.Square{X: 4, Y: 2}, shogi.Piece{Kind: shogi.Pawn, Owner: shogi.Gote})

	got := squareSet(shogi.Reachable(pos.Board(), shogi.Square{X: 4, Y: 4}, shogi.Piece{Kind: shogi.Rook, Owner: shogi.Sente}))
	if !got[shogi.Square{X: 4, Y: 3}] || !got[shogi.Square{X: 4, Y: 2}] {
		t.Error("rook should reach up to and including the enemy pawn")
	}
	if got[shogi.Square{X: 4, Y: 1}] {
		t.Error("rook slid past the enemy pawn")
	}
}

// TestReachable_Dragon: a promoted rook adds the four diagonal steps to the
// orthogonal slides.
func TestReachable_Dragon(t *testing.T) {
	pos := shogi.NewPosition()
	dragon := shogi.Piece{Kind: shogi.Rook, Owner: shogi.Sente, Promoted: true}
	pos.SetPiece(shogi.Square{X: 4, Y: 4}, dragon)

	got := shogi.Reachable(pos.Board(), shogi.Square{X: 4, Y: 4}, dragon)
	if len(got) != 20 {
		t.Fatalf("dragon moves = %d squares, want 20", len(got))
	}
}

func TestReachable_Horse(t *testing.T) {
	pos := shogi.NewPosition()
	horse := shogi.Piece{Kind: shogi.Bishop, Owner: shogi.Gote, Promoted: true}
	pos.SetPiece(shogi.Square{X: 4, Y: 4}, horse)

	got := shogi.Reachable(pos.Board(), shogi.Square{X: 4, Y: 4}, horse)
	if len(got) != 20 {
		t.Fatalf("horse moves = %d squares, want 20", len(got))
	}
}

// TestReachable_PromotedSilverMovesLikeGold covers the gold-movement group.
func TestReachable_PromotedSilverMovesLikeGold(t *testing.T) {
	pos := shogi.NewPosition()
	promoted := shogi.Piece{Kind: shogi.Silver, Owner: shogi.Sente, Promoted: true}
	gold := shogi.Piece{Kind: shogi.Gold, Owner: shogi.Sente}
	from := shogi.Square{X: 4, Y: 4}
	pos.SetPiece(from, promoted)

	a := squareSet(shogi.Reachable(pos.Board(), from, promoted))
	b := squareSet(shogi.Reachable(pos.Board(), from, gold))
	if len(a) != len(b) {
		t.Fatalf("promoted silver %d squares, gold %d", len(a), len(b))
	}
	for sq := range b {
		if !a[sq] {
			t.Errorf("promoted silver missing gold square %v", sq)
		}
	}
}

func TestReachable_GoteMirrored(t *testing.T) {
	pos := shogi.NewPosition()
	pawn := shogi.Piece{Kind: shogi.Pawn, Owner: shogi.Gote}
	from := shogi.Square{X: 4, Y: 2}
	pos.SetPiece(from, pawn)

	got := shogi.Reachable(pos.Board(), from, pawn)
	if len(got) != 1 || got[0] != (shogi.Square{X: 4, Y: 3}) {
		t.Fatalf("gote pawn moves = %v, want [{4 3}]", got)
	}
}

func TestAttackSet_StartPosition(t *testing.T) {
	pos := shogi.StartPosition()
	attacks := shogi.AttackSet(pos.Board(), shogi.Sente)

	// Every pawn's forward square is attacked.
	for x := 0; x < 9; x++ {
		if !attacks.Contains(shogi.Square{X: x, Y: 5}) {
			t.Errorf("rank f square {%d 5} not attacked", x)
		}
	}
	// Friendly-occupied squares still count as covered.
	if !attacks.Contains(shogi.Square{X: 2, Y: 6}) {
		t.Error("pawn on 7g should be covered by the 8i knight")
	}
}

// TestIsDefended_KnightGuardsPawn: coverage of a friendly square counts as
// defense even though the square is not a legal destination.
func TestIsDefended_KnightGuardsPawn(t *testing.T) {
	pos := shogi.StartPosition()
	if !shogi.IsDefended(pos.Board(), shogi.Square{X: 2, Y: 6}, shogi.Sente) {
		t.Error("7g pawn should be defended by the 8i knight")
	}
	if !shogi.IsDefended(pos.Board(), shogi.Square{X: 7, Y: 6}, shogi.Sente) {
		t.Error("2g pawn should be defended by the rook behind it")
	}
	if shogi.IsDefended(pos.Board(), shogi.Square{X: 4, Y: 6}, shogi.Sente) {
		t.Error("5g pawn has no defender in the starting position")
	}
}

func TestIsDefended_LonePiece(t *testing.T) {
	pos := shogi.NewPosition()
	pos.SetPiece(shogi.Square{X: 4, Y: 4}, shogi.Piece{Kind: shogi.Rook, Owner: shogi.Sente})
	if shogi.IsDefended(pos.Board(), shogi.Square{X: 4, Y: 4}, shogi.Sente) {
		t.Error("lone rook has no defender")
	}
}
