package shogi_test

import (
	"errors"
	"testing"

	"shogi/pkg/shogi"
)

func TestParseMove_BoardMove(t *testing.T) {
	m, err := shogi.ParseMove("7g7f")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if m.From != (shogi.Square{X: 2, Y: 6}) {
		t.Errorf("from = %+v, want {2 6}", m.From)
	}
	if m.To != (shogi.Square{X: 2, Y: 5}) {
		t.Errorf("to = %+v, want {2 5}", m.To)
	}
	if m.Promote || m.Drop {
		t.Errorf("unexpected flags: %+v", m)
	}
}

func TestParseMove_Promotion(t *testing.T) {
	m, err := shogi.ParseMove("8h2b+")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if !m.Promote {
		t.Error("promote flag not set")
	}
	if got := shogi.FormatMove(m); got != "8h2b+" {
		t.Errorf("round trip = %q", got)
	}
}

func TestParseMove_Drop(t *testing.T) {
	m, err := shogi.ParseMove("P*5e")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if !m.Drop || m.Piece != shogi.Pawn {
		t.Errorf("drop = %+v", m)
	}
	if m.To != (shogi.Square{X: 4, Y: 4}) {
		t.Errorf("to = %+v, want {4 4}", m.To)
	}
	if got := shogi.FormatMove(m); got != "P*5e" {
		t.Errorf("round trip = %q", got)
	}
}

func TestParseMove_Errors(t *testing.T) {
	cases := []string{
		"K*5e",  // kings never enter a hand
		"X*5e",  // not a piece letter
		"7g7",   // truncated
		"7g7f5", // bad promotion marker
		"0a1a",  // file out of range
		"7j7f",  // rank out of range
		"**5e",  // malformed drop
		"",
	}
	for _, token := range cases {
		if _, err := shogi.ParseMove(token); err == nil {
			t.Errorf("expected error for %q", token)
		}
	}
}

// TestParseMove_OutOfRangeIsInvalidSquare ensures coordinate errors are
// identifiable through the sentinel.
func TestParseMove_OutOfRangeIsInvalidSquare(t *testing.T) {
	_, err := shogi.ParseMove("0a1a")
	if !errors.Is(err, shogi.ErrInvalidSquare) {
		t.Fatalf("err = %v, want ErrInvalidSquare", err)
	}
}

func TestParseSquare(t *testing.T) {
	sq, err := shogi.ParseSquare("1a")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if sq != (shogi.Square{X: 8, Y: 0}) {
		t.Errorf("1a = %+v, want {8 0}", sq)
	}
	if sq.String() != "1a" {
		t.Errorf("round trip = %q", sq.String())
	}
	if sq.File() != 1 || sq.Rank() != 1 {
		t.Errorf("file/rank = %d/%d", sq.File(), sq.Rank())
	}
}
