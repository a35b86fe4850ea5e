package usi

import (
	"strings"
	"testing"
)

func TestParseLine(t *testing.T) {
	cases := []struct {
		line string
		want Event
	}{
		{"usiok", Event{Type: EventUSIOK}},
		{"readyok", Event{Type: EventReadyOK}},
		{"id name TestEngine 1.0", Event{Type: EventID, Key: "name", Value: "TestEngine 1.0"}},
		{"bestmove 7g7f", Event{Type: EventBestMove, Move: "7g7f"}},
		{"bestmove 7g7f ponder 3c3d", Event{Type: EventBestMove, Move: "7g7f", Ponder: "3c3d"}},
		{"info depth 10 score cp 42 pv 7g7f", Event{Type: EventInfo, Raw: "info depth 10 score cp 42 pv 7g7f"}},
		{"unknown line", Event{Type: EventUnknown, Raw: "unknown line"}},
	}
	for _, tc := range cases {
		got, err := ParseLine(tc.line)
		if err != nil {
			t.Errorf("ParseLine(%q): %v", tc.line, err)
			continue
		}
		if got != tc.want {
			t.Errorf("ParseLine(%q) = %+v, want %+v", tc.line, got, tc.want)
		}
	}
}

func TestParseLine_Errors(t *testing.T) {
	for _, line := range []string{"", "  ", "id name", "bestmove"} {
		if _, err := ParseLine(line); err == nil {
			t.Errorf("expected error for %q", line)
		}
	}
}

func TestReader_Next(t *testing.T) {
	r := NewReader(strings.NewReader("usiok\nbestmove 7g7f\n"))
	first, err := r.Next()
	if err != nil || first.Type != EventUSIOK {
		t.Fatalf("first = %+v, %v", first, err)
	}
	second, err := r.Next()
	if err != nil || second.Move != "7g7f" {
		t.Fatalf("second = %+v, %v", second, err)
	}
	if _, err := r.Next(); err == nil {
		t.Fatal("expected EOF")
	}
}

func TestParseInfo(t *testing.T) {
	info, ok := parseInfo("info depth 12 seldepth 16 multipv 2 score cp -85 nodes 12345 pv 3c3d 2g2f 8c8d")
	if !ok {
		t.Fatal("line not recognized")
	}
	if info.depth != 12 {
		t.Errorf("depth = %d, want 12", info.depth)
	}
	if info.multiPV != 2 {
		t.Errorf("multipv = %d, want 2", info.multiPV)
	}
	if !info.haveScore || info.score != (Score{Kind: "cp", Value: -85}) {
		t.Errorf("score = %+v", info.score)
	}
	if len(info.pv) != 3 || info.pv[0] != "3c3d" {
		t.Errorf("pv = %v", info.pv)
	}
}

func TestParseInfo_Mate(t *testing.T) {
	info, ok := parseInfo("info depth 5 score mate 3 pv 5e5c+")
	if !ok || info.score.Kind != "mate" || info.score.Value != 3 {
		t.Fatalf("info = %+v, ok=%v", info, ok)
	}
}

func TestParseInfo_NoScore(t *testing.T) {
	info, ok := parseInfo("info string verbose engine chatter")
	if !ok {
		t.Fatal("info line should be recognized")
	}
	if info.haveScore {
		t.Error("no score expected")
	}
	if _, ok := parseInfo("bestmove 7g7f"); ok {
		t.Error("non-info line should be rejected")
	}
}

func TestScoreString(t *testing.T) {
	if got := (Score{Kind: "cp", Value: -20}).String(); got != "cp -20" {
		t.Errorf("String() = %q", got)
	}
	if got := (Score{Kind: "mate", Value: 5}).String(); got != "mate 5" {
		t.Errorf("String() = %q", got)
	}
	if got := (Score{}).String(); got != "unknown" {
		t.Errorf("String() = %q", got)
	}
}
