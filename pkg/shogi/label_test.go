package shogi_test

import (
	"testing"

	"shogi/pkg/shogi"
)

func mustMove(t *testing.T, token string) shogi.Move {
	t.Helper()
	m, err := shogi.ParseMove(token)
	if err != nil {
		t.Fatalf("parse %s: %v", token, err)
	}
	return m
}

func TestMoveLabel(t *testing.T) {
	start := shogi.StartPosition()
	cases := []struct {
		token string
		mover shogi.Color
		want  string
	}{
		{"7g7f", shogi.Sente, "▲7六歩"},
		{"3c3d", shogi.Gote, "△3四歩"},
		{"2h5h", shogi.Sente, "▲5八飛"},
	}
	for _, tc := range cases {
		m := mustMove(t, tc.token)
		if got := shogi.MoveLabel(m, start.Board(), tc.mover); got != tc.want {
			t.Errorf("label(%s) = %q, want %q", tc.token, got, tc.want)
		}
	}
}

func TestMoveLabel_Drop(t *testing.T) {
	start := shogi.StartPosition()
	m := mustMove(t, "P*5e")
	if got := shogi.MoveLabel(m, start.Board(), shogi.Sente); got != "▲5五歩打" {
		t.Errorf("label = %q, want ▲5五歩打", got)
	}
	g := mustMove(t, "G*5e")
	if got := shogi.MoveLabel(g, start.Board(), shogi.Gote); got != "△5五金打" {
		t.Errorf("label = %q, want △5五金打", got)
	}
}

// TestMoveLabel_Promotion names the base kind with an explicit 成 suffix.
func TestMoveLabel_Promotion(t *testing.T) {
	pos := shogi.NewPosition()
	pos.SetPiece(shogi.Square{X: 1, Y: 7}, shogi.Piece{Kind: shogi.Bishop, Owner: shogi.Sente})
	m := mustMove(t, "8h2b+")
	if got := shogi.MoveLabel(m, pos.Board(), shogi.Sente); got != "▲2二角成" {
		t.Errorf("label = %q, want ▲2二角成", got)
	}
}

func TestNameJP(t *testing.T) {
	cases := []struct {
		piece shogi.Piece
		want  string
	}{
		{shogi.Piece{Kind: shogi.Pawn}, "歩"},
		{shogi.Piece{Kind: shogi.Pawn, Promoted: true}, "と"},
		{shogi.Piece{Kind: shogi.Rook, Promoted: true}, "龍"},
		{shogi.Piece{Kind: shogi.Lance, Promoted: true}, "成香"},
		{shogi.Piece{Kind: shogi.King}, "玉"},
		{shogi.Piece{Kind: shogi.Gold}, "金"},
	}
	for _, tc := range cases {
		if got := tc.piece.NameJP(); got != tc.want {
			t.Errorf("NameJP(%+v) = %q, want %q", tc.piece, got, tc.want)
		}
	}
}
