package shogi_test

import (
	"errors"
	"path/filepath"
	"testing"

	"shogi/pkg/shogi"
)

func evenGameLines() []string {
	return []string{
		"先手：山田太郎(1500)",
		"後手：鈴木花子(1450)",
		"手合割：平手",
		"手数----指手---------消費時間--",
		"   1 ７六歩(77)   ( 0:01/00:00:01)",
		"   2 ３四歩(33)   ( 0:02/00:00:02)",
		"   3 ２二角成(88)   ( 0:03/00:00:06)",
		"   4 同　銀(31)   ( 0:04/00:00:06)",
		"   5 投了",
	}
}

func TestParseKIF_EvenGame(t *testing.T) {
	game, err := shogi.ParseKIF(evenGameLines())
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	want := []string{"7g7f", "3c3d", "8h2b+", "3a2b"}
	if len(game.Moves) != len(want) {
		t.Fatalf("moves = %v, want %v", game.Moves, want)
	}
	for i := range want {
		if game.Moves[i] != want[i] {
			t.Errorf("move %d = %s, want %s", i+1, game.Moves[i], want[i])
		}
	}
	if !game.Initial.Equal(shogi.StartPosition()) {
		t.Error("平手 should start from the standard setup")
	}
	if game.Players.SenteName != "山田太郎" || game.Players.SenteRating != 1500 {
		t.Errorf("sente = %q(%d)", game.Players.SenteName, game.Players.SenteRating)
	}
	if game.Players.GoteName != "鈴木花子" || game.Players.GoteRating != 1450 {
		t.Errorf("gote = %q(%d)", game.Players.GoteName, game.Players.GoteRating)
	}
	if game.Result != "gote_win" || game.WinReason != "投了" {
		t.Errorf("result = %s/%s, want gote_win/投了", game.Result, game.WinReason)
	}
	if game.FoulEnd {
		t.Error("not a foul ending")
	}
}

// TestLoadKIF_File reads the same game from a file, exercising the
// encoding-detecting loader.
func TestLoadKIF_File(t *testing.T) {
	game, err := shogi.LoadKIF(filepath.Join("testdata", "even_game.kif"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(game.Moves) != 4 || game.Moves[2] != "8h2b+" {
		t.Fatalf("moves = %v", game.Moves)
	}
	if game.Players.SenteName != "山田太郎" {
		t.Errorf("sente = %q", game.Players.SenteName)
	}
}

func TestCollectKIF(t *testing.T) {
	files, err := shogi.CollectKIF("testdata")
	if err != nil {
		t.Fatalf("collect: %v", err)
	}
	if len(files) != 1 || filepath.Base(files[0]) != "even_game.kif" {
		t.Fatalf("files = %v", files)
	}
}

func TestParseKIF_Replay(t *testing.T) {
	game, err := shogi.ParseKIF(evenGameLines())
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	timeline, err := game.Timeline()
	if err != nil {
		t.Fatalf("replay: %v", err)
	}
	if timeline.Len() != 5 {
		t.Fatalf("len = %d, want 5", timeline.Len())
	}
	final := timeline.At(4)
	silver := final.PieceAt(shogi.Square{X: 7, Y: 1})
	if silver == nil || silver.Kind != shogi.Silver || silver.Owner != shogi.Gote {
		t.Errorf("2b = %+v, want gote silver", silver)
	}
	if final.HandCount(shogi.Sente, shogi.Bishop) != 1 {
		t.Error("sente should hold the exchanged bishop")
	}
	if final.HandCount(shogi.Gote, shogi.Bishop) != 1 {
		t.Error("gote should hold the exchanged bishop")
	}
}

// TestParseKIF_BoardDiagram parses a problem-style header with a board
// diagram, hand lines and an explicit side to move.
func TestParseKIF_BoardDiagram(t *testing.T) {
	lines := []string{
		"後手の持駒：歩二",
		"  ９ ８ ７ ６ ５ ４ ３ ２ １",
		"+---------------------------+",
		"| ・ ・ ・ ・v玉 ・ ・ ・ ・|",
		"| ・ ・ ・ ・ ・ ・ ・ ・ ・|",
		"| ・ ・ ・ ・ ・ ・ ・ ・ ・|",
		"| ・ ・ ・ ・ ・ ・ ・ ・ ・|",
		"| ・ ・ ・ ・ 龍 ・ ・ ・ ・|",
		"| ・ ・ ・ ・ ・ ・ ・ ・ ・|",
		"| ・ ・ ・ ・ ・ ・ ・ ・ ・|",
		"| ・ ・ ・ ・ ・ ・ ・ ・ ・|",
		"| ・ ・ ・ ・ 玉 ・ ・ ・ ・|",
		"+---------------------------+",
		"先手の持駒：飛 歩三",
		"手番：後手",
	}
	game, err := shogi.ParseKIF(lines)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	pos := game.Initial
	if pos.Turn() != shogi.Gote {
		t.Errorf("turn = %v, want gote", pos.Turn())
	}
	goteKing := pos.PieceAt(shogi.Square{X: 4, Y: 0})
	if goteKing == nil || goteKing.Kind != shogi.King || goteKing.Owner != shogi.Gote {
		t.Errorf("5a = %+v, want gote king", goteKing)
	}
	dragon := pos.PieceAt(shogi.Square{X: 4, Y: 4})
	if dragon == nil || dragon.Kind != shogi.Rook || !dragon.Promoted || dragon.Owner != shogi.Sente {
		t.Errorf("5e = %+v, want sente dragon", dragon)
	}
	senteKing := pos.PieceAt(shogi.Square{X: 4, Y: 8})
	if senteKing == nil || senteKing.Kind != shogi.King || senteKing.Owner != shogi.Sente {
		t.Errorf("5i = %+v, want sente king", senteKing)
	}
	if got := pos.HandCount(shogi.Gote, shogi.Pawn); got != 2 {
		t.Errorf("gote pawns in hand = %d, want 2", got)
	}
	if got := pos.HandCount(shogi.Sente, shogi.Rook); got != 1 {
		t.Errorf("sente rooks in hand = %d, want 1", got)
	}
	if got := pos.HandCount(shogi.Sente, shogi.Pawn); got != 3 {
		t.Errorf("sente pawns in hand = %d, want 3", got)
	}
}

func TestParseKIF_DropMove(t *testing.T) {
	lines := []string{
		"手合割：平手",
		"   1 ７六歩(77)   ( 0:01/00:00:01)",
		"   2 ３四歩(33)   ( 0:01/00:00:02)",
		"   3 ５五歩打   ( 0:01/00:00:03)",
	}
	game, err := shogi.ParseKIF(lines)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(game.Moves) != 3 || game.Moves[2] != "P*5e" {
		t.Fatalf("moves = %v, want last P*5e", game.Moves)
	}
}

// TestParseKIF_PromotedPieceMove moves an already promoted silver; the USI
// token must not carry a promotion marker.
func TestParseKIF_PromotedPieceMove(t *testing.T) {
	lines := []string{
		"後手の持駒：なし",
		"  ９ ８ ７ ６ ５ ４ ３ ２ １",
		"+---------------------------+",
		"| ・ ・ ・ ・v玉 ・ ・ ・ ・|",
		"| ・ ・ ・ ・ ・ ・ ・ ・ ・|",
		"| ・ ・ ・ ・ ・ ・ ・ ・ ・|",
		"| ・ ・ ・ ・ ・ ・ ・ ・ ・|",
		"| ・ ・ ・ ・成銀 ・ ・ ・ ・|",
		"| ・ ・ ・ ・ ・ ・ ・ ・ ・|",
		"| ・ ・ ・ ・ ・ ・ ・ ・ ・|",
		"| ・ ・ ・ ・ ・ ・ ・ ・ ・|",
		"| ・ ・ ・ ・ 玉 ・ ・ ・ ・|",
		"+---------------------------+",
		"先手の持駒：なし",
		"手番：先手",
		"   1 ５四成銀(55)   ( 0:01/00:00:01)",
	}
	game, err := shogi.ParseKIF(lines)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(game.Moves) != 1 || game.Moves[0] != "5e5d" {
		t.Fatalf("moves = %v, want [5e5d]", game.Moves)
	}
	timeline, err := game.Timeline()
	if err != nil {
		t.Fatalf("replay: %v", err)
	}
	moved := timeline.At(1).PieceAt(shogi.Square{X: 4, Y: 3})
	if moved == nil || moved.Kind != shogi.Silver || !moved.Promoted {
		t.Errorf("5d = %+v, want promoted silver", moved)
	}
}

// TestParseKIF_Malformed types garbage input as a notation error.
func TestParseKIF_Malformed(t *testing.T) {
	_, err := shogi.ParseKIF([]string{"this is not a kif file"})
	if err == nil {
		t.Fatal("expected an error")
	}
	var parseErr *shogi.ParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("err = %T (%v), want *ParseError", err, err)
	}
}

func TestParseKIF_FoulEnd(t *testing.T) {
	lines := []string{
		"手合割：平手",
		"   1 ７六歩(77)   ( 0:01/00:00:01)",
		"   2 反則負け",
	}
	game, err := shogi.ParseKIF(lines)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if !game.FoulEnd {
		t.Error("foul ending not detected")
	}
	if game.Result != "sente_win" {
		t.Errorf("result = %s, want sente_win", game.Result)
	}
}
