package shogi_test

import (
	"errors"
	"testing"

	"shogi/pkg/shogi"
)

func TestBuildTimeline(t *testing.T) {
	timeline, err := shogi.BuildTimeline("position startpos moves 7g7f 3c3d 7f7e")
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if timeline.Len() != 4 {
		t.Fatalf("len = %d, want 4", timeline.Len())
	}
	if !timeline.At(0).Equal(shogi.StartPosition()) {
		t.Error("ply 0 should be the starting position")
	}
	final := timeline.At(3)
	if piece := final.PieceAt(shogi.Square{X: 2, Y: 4}); piece == nil || piece.Kind != shogi.Pawn {
		t.Errorf("7e = %+v, want sente pawn", piece)
	}
	if final.Turn() != shogi.Gote {
		t.Errorf("turn = %v, want gote", final.Turn())
	}

	// Snapshots are independent: mutating one leaves the others alone.
	timeline.At(1).SetHand(shogi.Sente, shogi.Pawn, 5)
	if timeline.At(2).HandCount(shogi.Sente, shogi.Pawn) != 0 {
		t.Error("snapshots share hand state")
	}
}

// TestBuildTimeline_FailsWithPly: a rejected move reports its 1-based ply and
// yields no partial timeline.
func TestBuildTimeline_FailsWithPly(t *testing.T) {
	timeline, err := shogi.BuildTimeline("startpos moves 7g7f 7g7f")
	if timeline != nil {
		t.Fatal("expected no partial timeline")
	}
	var replayErr *shogi.ReplayError
	if !errors.As(err, &replayErr) {
		t.Fatalf("err = %v, want *ReplayError", err)
	}
	if replayErr.Ply != 2 || replayErr.Move != "7g7f" {
		t.Errorf("ply/move = %d/%s, want 2/7g7f", replayErr.Ply, replayErr.Move)
	}
	var moveErr *shogi.MoveError
	if !errors.As(err, &moveErr) || moveErr.Kind != shogi.WrongOwner {
		t.Errorf("wrapped error = %v, want WrongOwner move error", err)
	}
}

func TestBuildTimeline_ParseErrorPropagates(t *testing.T) {
	_, err := shogi.BuildTimeline("position fen whatever")
	if !errors.Is(err, shogi.ErrUnsupportedPosition) {
		t.Fatalf("err = %v, want ErrUnsupportedPosition", err)
	}
}

func TestTimeline_AtOutOfRange(t *testing.T) {
	timeline, err := shogi.BuildTimeline("startpos")
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if timeline.At(-1) != nil || timeline.At(1) != nil {
		t.Error("out-of-range plies should be nil")
	}
}
