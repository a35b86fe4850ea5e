package shogi

import (
	"strconv"
	"strings"
)

// ParseBoard reads the SFEN board layout: 9 "/"-separated rows from the top
// (Gote's back rank), each a mix of empty-run digits and piece letters with
// an optional + prefix for the promoted form. Uppercase is Sente, lowercase
// Gote. SFEN lists file 9 first, which is display x = 0, so rows read
// straight into display coordinates.
func ParseBoard(layout string) (Board, error) {
	var board Board
	rows := strings.Split(layout, "/")
	if len(rows) != 9 {
		return Board{}, &ParseError{Input: layout, Reason: "board must have 9 rows, got " + strconv.Itoa(len(rows))}
	}
	for y, row := range rows {
		x := 0
		runes := []rune(row)
		for i := 0; i < len(runes); i++ {
			r := runes[i]
			if r >= '1' && r <= '9' {
				x += int(r - '0')
				continue
			}
			promoted := false
			if r == '+' {
				promoted = true
				i++
				if i >= len(runes) {
					return Board{}, &ParseError{Input: row, Reason: "dangling promotion marker"}
				}
				r = runes[i]
			}
			kind, ok := KindFromLetter(r)
			if !ok {
				return Board{}, &ParseError{Input: row, Reason: "unknown piece letter " + string(r)}
			}
			owner := Sente
			if r >= 'a' && r <= 'z' {
				owner = Gote
			}
			if x > 8 {
				return Board{}, &ParseError{Input: row, Reason: "row expands past 9 cells"}
			}
			board[y][x] = &Piece{Kind: kind, Owner: owner, Promoted: promoted}
			x++
		}
		if x != 9 {
			return Board{}, &ParseError{Input: row, Reason: "row expands to " + strconv.Itoa(x) + " cells"}
		}
	}
	return board, nil
}

// FormatBoard is the exact inverse of ParseBoard.
func FormatBoard(b *Board) string {
	var rows [9]string
	for y := 0; y < 9; y++ {
		var sb strings.Builder
		empty := 0
		flush := func() {
			if empty > 0 {
				sb.WriteString(strconv.Itoa(empty))
				empty = 0
			}
		}
		for x := 0; x < 9; x++ {
			piece := b[y][x]
			if piece == nil {
				empty++
				continue
			}
			flush()
			sb.WriteString(piece.Notation())
		}
		flush()
		rows[y] = sb.String()
	}
	return strings.Join(rows[:], "/")
}

// ParseHands reads the SFEN hands token: "-" for empty, otherwise runs of an
// optional decimal count followed by a piece letter. A missing count means 1.
func ParseHands(token string) (Hands, error) {
	hands := NewHands()
	if token == "-" {
		return hands, nil
	}
	count := 0
	for _, r := range token {
		if r >= '0' && r <= '9' {
			count = count*10 + int(r-'0')
			continue
		}
		kind, ok := KindFromLetter(r)
		if !ok || kind == King {
			return nil, &ParseError{Input: token, Reason: "unknown hand piece " + string(r)}
		}
		owner := Sente
		if r >= 'a' && r <= 'z' {
			owner = Gote
		}
		if count == 0 {
			count = 1
		}
		hands.add(owner, kind, count)
		count = 0
	}
	if count != 0 {
		return nil, &ParseError{Input: token, Reason: "trailing hand count"}
	}
	return hands, nil
}

// FormatHands is the inverse of ParseHands. Kinds follow the canonical hand
// order (R B G S N L P), Sente's block before Gote's, for determinism.
func FormatHands(h Hands) string {
	var sb strings.Builder
	for _, owner := range []Color{Sente, Gote} {
		for _, kind := range HandOrder {
			count := h.Count(owner, kind)
			if count == 0 {
				continue
			}
			if count > 1 {
				sb.WriteString(strconv.Itoa(count))
			}
			letter := string(kind.Letter())
			if owner == Gote {
				letter = strings.ToLower(letter)
			}
			sb.WriteString(letter)
		}
	}
	if sb.Len() == 0 {
		return "-"
	}
	return sb.String()
}

// ParsePosition reads a position command: the bare "startpos" alias or an
// explicit "sfen <board> <side> <hands> [movecount]" header, either with an
// optional leading "position" keyword and an optional trailing
// "moves <m1> <m2> ...". It returns the header position and the raw move
// tokens; the moves are not applied (see BuildTimeline).
func ParsePosition(command string) (*Position, []string, error) {
	fields := strings.Fields(command)
	if len(fields) > 0 && fields[0] == "position" {
		fields = fields[1:]
	}
	if len(fields) == 0 {
		return nil, nil, &ParseError{Input: command, Reason: "empty position command"}
	}

	var moves []string
	for i, f := range fields {
		if f == "moves" {
			moves = fields[i+1:]
			fields = fields[:i]
			break
		}
	}

	pos := NewPosition()
	switch fields[0] {
	case "startpos":
		if len(fields) != 1 {
			return nil, nil, &ParseError{Input: command, Reason: "unexpected tokens after startpos"}
		}
		sfenFields := strings.Fields(startSFEN)
		board, err := ParseBoard(sfenFields[0])
		if err != nil {
			return nil, nil, err
		}
		pos.board = board
	case "sfen":
		if len(fields) < 2 {
			return nil, nil, &ParseError{Input: command, Reason: "sfen header without board"}
		}
		board, err := ParseBoard(fields[1])
		if err != nil {
			return nil, nil, err
		}
		pos.board = board
		if len(fields) >= 3 && fields[2] == "w" {
			pos.turn = Gote
		}
		if len(fields) >= 4 {
			hands, err := ParseHands(fields[3])
			if err != nil {
				return nil, nil, err
			}
			pos.hands = hands
		}
		// fields[4], the move counter, carries no position state.
	default:
		return nil, nil, &ParseError{Input: command, Reason: "unknown header " + fields[0], Err: ErrUnsupportedPosition}
	}
	return pos, moves, nil
}

// FormatSFEN serializes the position as "<board> <side> <hands> <moveNumber>".
func FormatSFEN(p *Position, moveNumber int) string {
	side := "b"
	if p.turn == Gote {
		side = "w"
	}
	return FormatBoard(&p.board) + " " + side + " " + FormatHands(p.hands) + " " + strconv.Itoa(moveNumber)
}
