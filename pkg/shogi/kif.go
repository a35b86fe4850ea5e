package shogi

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/transform"
)

// KIF import: reads Japanese game records (Shift-JIS or UTF-8) into a typed
// starting Position plus USI move tokens, so imported games flow through the
// same applicator and timeline as everything else.

var (
	kifMoveLineRe     = regexp.MustCompile(`^\s*(\d+)\s+(.+?)\s+\(`)
	kifTerminalLineRe = regexp.MustCompile(`^\s*(\d+)\s+(.+?)\s*$`)
	kifFromSquareRe   = regexp.MustCompile(`\((\d)(\d)\)`)
	kifNameRatingRe   = regexp.MustCompile(`^(.+?)\((\d+)\)$`)
)

// KIFPlayers holds the player headers of a KIF record.
type KIFPlayers struct {
	SenteName   string
	SenteRating int
	GoteName    string
	GoteRating  int
}

// KIFGame is a parsed game record: the initial position, the move list in
// USI form, and the metadata the learning product shows alongside a game.
type KIFGame struct {
	Initial   *Position
	Moves     []string
	Players   KIFPlayers
	Result    string
	WinReason string
	FoulEnd   bool
}

// Timeline replays the game into per-ply snapshots.
func (g *KIFGame) Timeline() (*Timeline, error) {
	return Replay(g.Initial, g.Moves)
}

// LoadKIF reads and parses one KIF file.
func LoadKIF(path string) (*KIFGame, error) {
	lines, err := readKIFLines(path)
	if err != nil {
		return nil, err
	}
	return ParseKIF(lines)
}

// ParseKIF parses the lines of a KIF record. Malformed input fails with a
// *ParseError, like the other codecs.
func ParseKIF(lines []string) (*KIFGame, error) {
	initial, err := kifInitialPosition(lines)
	if err != nil {
		return nil, &ParseError{Reason: "kif: " + err.Error(), Err: err}
	}
	moves, err := parseKIFMoves(lines)
	if err != nil {
		return nil, &ParseError{Reason: "kif: " + err.Error(), Err: err}
	}
	game := &KIFGame{
		Initial: initial,
		Moves:   moves,
		Players: kifPlayers(lines),
		FoulEnd: kifFoulEnd(lines),
	}
	game.Result, game.WinReason = kifResult(lines)
	return game, nil
}

// CollectKIF walks root and returns every .kif file path, sorted.
func CollectKIF(root string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if strings.EqualFold(filepath.Ext(path), ".kif") {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}

func readKIFLines(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	text, err := decodeKIF(data)
	if err != nil {
		return nil, err
	}
	lines := strings.Split(text, "\n")
	for i := range lines {
		lines[i] = strings.TrimRight(lines[i], "\r")
	}
	return lines, nil
}

func decodeKIF(data []byte) (string, error) {
	if bytes.HasPrefix(data, []byte{0xEF, 0xBB, 0xBF}) {
		data = data[3:]
	}
	if utf8.Valid(data) {
		return string(data), nil
	}
	reader := transform.NewReader(bytes.NewReader(data), japanese.ShiftJIS.NewDecoder())
	decoded, err := io.ReadAll(reader)
	if err != nil {
		return "", err
	}
	if !utf8.Valid(decoded) {
		return "", errors.New("failed to decode Shift-JIS KIF")
	}
	return string(decoded), nil
}

// kifSquare converts KIF file/rank digits (1..9 each) to display coordinates.
func kifSquare(file, rank int) Square {
	return Square{X: 9 - file, Y: rank - 1}
}

func parseKIFMoves(lines []string) ([]string, error) {
	var moves []string
	var prevDest *Square
	for i, line := range lines {
		match := kifMoveLineRe.FindStringSubmatch(line)
		if len(match) == 0 {
			continue
		}
		text := strings.TrimSpace(match[2])
		if text == "" {
			continue
		}
		token, dest, end, err := parseKIFMoveToken(text, prevDest)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", i+1, err)
		}
		if end {
			break
		}
		moves = append(moves, token)
		prevDest = dest
	}
	return moves, nil
}

func parseKIFMoveToken(token string, prevDest *Square) (string, *Square, bool, error) {
	if kifTerminalToken(token) {
		return "", nil, true, nil
	}
	work := strings.TrimSpace(token)
	var dest Square
	if strings.HasPrefix(work, "同") {
		if prevDest == nil {
			return "", nil, false, errors.New("same-square move without previous destination")
		}
		dest = *prevDest
		work = strings.TrimSpace(strings.TrimLeft(strings.TrimPrefix(work, "同"), " 　"))
	} else {
		runes := []rune(work)
		if len(runes) < 2 {
			return "", nil, false, fmt.Errorf("invalid move token: %s", token)
		}
		file, ok := kifFileRune(runes[0])
		if !ok {
			return "", nil, false, fmt.Errorf("invalid destination file in %s", token)
		}
		rank, ok := kifRankRune(runes[1])
		if !ok {
			return "", nil, false, fmt.Errorf("invalid destination rank in %s", token)
		}
		dest = kifSquare(file, rank)
		work = strings.TrimSpace(string(runes[2:]))
	}

	from, hasFrom := parseKIFFromSquare(work)
	if hasFrom {
		work = kifFromSquareRe.ReplaceAllString(work, "")
	}

	noPromote := strings.HasSuffix(work, "不成")
	if noPromote {
		work = strings.TrimSuffix(work, "不成")
	}
	// 成 after the piece name promotes on this move; 成 before the name is
	// part of an already promoted piece's name (成銀 and friends), which
	// moves without a promotion marker.
	promote := false
	if !noPromote && strings.HasSuffix(work, "成") && !strings.HasPrefix(work, "成") {
		promote = true
		work = strings.TrimSuffix(work, "成")
	}

	drop := strings.Contains(work, "打")
	if drop {
		work = strings.Replace(work, "打", "", 1)
	}

	kind, promotedPiece, err := parseKIFPiece(work)
	if err != nil {
		return "", nil, false, err
	}
	if drop {
		if promotedPiece {
			return "", nil, false, errors.New("cannot drop promoted piece")
		}
		m := Move{Drop: true, Piece: kind, To: dest}
		return FormatMove(m), &dest, false, nil
	}
	if !hasFrom {
		return "", nil, false, errors.New("missing source square")
	}
	m := Move{From: from, To: dest, Promote: promote}
	return FormatMove(m), &dest, false, nil
}

func kifTerminalToken(token string) bool {
	switch token {
	case "投了", "中断", "持将棋", "千日手", "詰み", "切れ負け", "反則勝ち", "反則負け", "入玉勝ち", "勝ち宣言":
		return true
	default:
		return false
	}
}

// kifFoulEnd reports a 反則勝ち/反則負け ending. The final move of such a
// game produced an illegal position that should not be evaluated.
func kifFoulEnd(lines []string) bool {
	terminal, _ := kifFindTerminal(lines)
	return terminal == "反則勝ち" || terminal == "反則負け"
}

func parseKIFFromSquare(text string) (Square, bool) {
	match := kifFromSquareRe.FindStringSubmatch(text)
	if len(match) != 3 {
		return Square{}, false
	}
	file := int(match[1][0] - '0')
	rank := int(match[2][0] - '0')
	if file < 1 || file > 9 || rank < 1 || rank > 9 {
		return Square{}, false
	}
	return kifSquare(file, rank), true
}

func kifFileRune(r rune) (int, bool) {
	if r >= '1' && r <= '9' {
		return int(r - '0'), true
	}
	if r >= '１' && r <= '９' {
		return int(r-'１') + 1, true
	}
	return 0, false
}

func kifRankRune(r rune) (int, bool) {
	for i := 1; i <= 9; i++ {
		if string(r) == kanjiNum[i] {
			return i, true
		}
	}
	return 0, false
}

type kifPieceDef struct {
	name     string
	kind     Kind
	promoted bool
}

var kifPieceDefs = []kifPieceDef{
	{name: "成銀", kind: Silver, promoted: true},
	{name: "成桂", kind: Knight, promoted: true},
	{name: "成香", kind: Lance, promoted: true},
	{name: "と", kind: Pawn, promoted: true},
	{name: "馬", kind: Bishop, promoted: true},
	{name: "龍", kind: Rook, promoted: true},
	{name: "竜", kind: Rook, promoted: true},
	{name: "王", kind: King},
	{name: "玉", kind: King},
	{name: "飛", kind: Rook},
	{name: "角", kind: Bishop},
	{name: "金", kind: Gold},
	{name: "銀", kind: Silver},
	{name: "桂", kind: Knight},
	{name: "香", kind: Lance},
	{name: "歩", kind: Pawn},
}

func parseKIFPiece(text string) (Kind, bool, error) {
	clean := strings.TrimSpace(text)
	for _, def := range kifPieceDefs {
		if strings.HasPrefix(clean, def.name) {
			return def.kind, def.promoted, nil
		}
	}
	return 0, false, fmt.Errorf("unknown piece in %s", text)
}

// kifInitialPosition builds the starting position from the record header:
// 平手 (even game) means the standard setup, otherwise a board diagram plus
// hand lines describe a handicap or problem position.
func kifInitialPosition(lines []string) (*Position, error) {
	for _, line := range lines {
		trim := strings.TrimSpace(line)
		if strings.HasPrefix(trim, "手合割") && strings.Contains(trim, "平手") {
			return StartPosition(), nil
		}
	}

	boardLines := collectKIFBoardLines(lines)
	if len(boardLines) == 0 {
		return nil, errors.New("no board definition found")
	}
	board, err := parseKIFBoard(boardLines)
	if err != nil {
		return nil, err
	}
	pos := NewPosition()
	pos.board = board
	pos.turn = parseKIFTurn(lines)
	if err := parseKIFHands(lines, pos.hands); err != nil {
		return nil, err
	}
	return pos, nil
}

func collectKIFBoardLines(lines []string) []string {
	var board []string
	for _, line := range lines {
		trim := strings.TrimSpace(line)
		if strings.HasPrefix(trim, "|") && strings.HasSuffix(trim, "|") {
			board = append(board, trim)
		}
	}
	return board
}

func parseKIFBoard(lines []string) (Board, error) {
	var board Board
	if len(lines) < 9 {
		return board, fmt.Errorf("board must be 9 rows, got %d", len(lines))
	}
	for y := 0; y < 9; y++ {
		if err := parseKIFBoardRow(&board, y, lines[y]); err != nil {
			return Board{}, fmt.Errorf("row %d: %w", y+1, err)
		}
	}
	return board, nil
}

// parseKIFBoardRow fills one diagram row. Cells read left to right are file
// 9 down to 1, which is display x 0..8.
func parseKIFBoardRow(board *Board, y int, line string) error {
	trim := strings.TrimSpace(line)
	trim = strings.TrimPrefix(trim, "|")
	trim = strings.TrimSuffix(trim, "|")
	runes := []rune(trim)
	x := 0
	for i := 0; i < len(runes); {
		r := runes[i]
		if r == ' ' || r == '\t' || r == '　' {
			i++
			continue
		}
		if x > 8 {
			return errors.New("more than 9 cells")
		}
		if r == '・' {
			x++
			i++
			continue
		}
		owner := Sente
		if r == 'v' {
			owner = Gote
			i++
			if i >= len(runes) {
				return errors.New("dangling gote marker")
			}
		}
		piece, consumed, err := parseKIFBoardPiece(runes[i:])
		if err != nil {
			return err
		}
		piece.Owner = owner
		board[y][x] = &piece
		x++
		i += consumed
	}
	if x != 9 {
		return fmt.Errorf("expected 9 cells, got %d", x)
	}
	return nil
}

func parseKIFBoardPiece(runes []rune) (Piece, int, error) {
	if len(runes) == 0 {
		return Piece{}, 0, errors.New("missing piece")
	}
	switch runes[0] {
	case 'と':
		return Piece{Kind: Pawn, Promoted: true}, 1, nil
	case '馬':
		return Piece{Kind: Bishop, Promoted: true}, 1, nil
	case '龍', '竜':
		return Piece{Kind: Rook, Promoted: true}, 1, nil
	case '成':
		if len(runes) < 2 {
			return Piece{}, 0, errors.New("missing promoted piece")
		}
		switch runes[1] {
		case '銀':
			return Piece{Kind: Silver, Promoted: true}, 2, nil
		case '桂':
			return Piece{Kind: Knight, Promoted: true}, 2, nil
		case '香':
			return Piece{Kind: Lance, Promoted: true}, 2, nil
		case '歩':
			return Piece{Kind: Pawn, Promoted: true}, 2, nil
		}
		return Piece{}, 0, fmt.Errorf("unknown promoted piece %c", runes[1])
	default:
		for _, def := range kifPieceDefs {
			if def.promoted {
				continue
			}
			if []rune(def.name)[0] == runes[0] {
				return Piece{Kind: def.kind}, 1, nil
			}
		}
		return Piece{}, 0, fmt.Errorf("unknown piece %c", runes[0])
	}
}

func parseKIFTurn(lines []string) Color {
	for _, line := range lines {
		trim := strings.TrimSpace(line)
		if strings.HasPrefix(trim, "手番") {
			if strings.Contains(trim, "後手") {
				return Gote
			}
			return Sente
		}
	}
	return Sente
}

func parseKIFHands(lines []string, hands Hands) error {
	for _, line := range lines {
		trim := strings.TrimSpace(line)
		var owner Color
		switch {
		case strings.HasPrefix(trim, "先手の持駒"):
			owner = Sente
		case strings.HasPrefix(trim, "後手の持駒"):
			owner = Gote
		default:
			continue
		}
		if err := parseKIFHandLine(trim, owner, hands); err != nil {
			return err
		}
	}
	return nil
}

func parseKIFHandLine(line string, owner Color, hands Hands) error {
	parts := strings.SplitN(line, "：", 2)
	if len(parts) != 2 {
		parts = strings.SplitN(line, ":", 2)
	}
	if len(parts) != 2 {
		return fmt.Errorf("invalid hand line: %s", line)
	}
	text := strings.TrimSpace(parts[1])
	if text == "なし" {
		return nil
	}
	runes := []rune(text)
	for len(runes) > 0 {
		if runes[0] == ' ' || runes[0] == '　' {
			runes = runes[1:]
			continue
		}
		var kind Kind
		found := false
		for _, def := range kifPieceDefs {
			if def.promoted {
				continue
			}
			if []rune(def.name)[0] == runes[0] {
				kind = def.kind
				found = true
				break
			}
		}
		if !found || kind == King {
			return fmt.Errorf("unknown hand piece %c", runes[0])
		}
		count, consumed := parseKIFCount(runes[1:])
		if consumed == 0 {
			count = 1
		}
		hands.add(owner, kind, count)
		runes = runes[1+consumed:]
	}
	return nil
}

// parseKIFCount reads a decimal or kanji count (十八 = 18 and so on).
func parseKIFCount(runes []rune) (int, int) {
	if len(runes) == 0 {
		return 0, 0
	}
	if runes[0] >= '0' && runes[0] <= '9' {
		value := 0
		i := 0
		for i < len(runes) && runes[i] >= '0' && runes[i] <= '9' {
			value = value*10 + int(runes[i]-'0')
			i++
		}
		return value, i
	}
	value := 0
	consumed := 0
	for consumed < len(runes) {
		n, ok := kanjiDigit(runes[consumed])
		if !ok {
			break
		}
		if n == 10 {
			if value == 0 {
				value = 1
			}
			value *= 10
		} else {
			value += n
		}
		consumed++
	}
	if value == 0 {
		return 0, 0
	}
	return value, consumed
}

func kanjiDigit(r rune) (int, bool) {
	if r == '十' {
		return 10, true
	}
	for i := 1; i <= 9; i++ {
		if string(r) == kanjiNum[i] {
			return i, true
		}
	}
	return 0, false
}

func kifPlayers(lines []string) KIFPlayers {
	sente := kifHeaderValue(lines, "先手")
	gote := kifHeaderValue(lines, "後手")
	players := KIFPlayers{}
	players.SenteName, players.SenteRating = splitNameRating(sente)
	players.GoteName, players.GoteRating = splitNameRating(gote)
	return players
}

func kifHeaderValue(lines []string, key string) string {
	prefixes := []string{key + "：", key + ":"}
	for _, line := range lines {
		trim := strings.TrimSpace(line)
		for _, prefix := range prefixes {
			if strings.HasPrefix(trim, prefix) {
				return strings.TrimSpace(strings.TrimPrefix(trim, prefix))
			}
		}
	}
	return ""
}

func splitNameRating(raw string) (string, int) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", 0
	}
	match := kifNameRatingRe.FindStringSubmatch(raw)
	if len(match) == 3 {
		rating := 0
		fmt.Sscanf(match[2], "%d", &rating)
		return strings.TrimSpace(match[1]), rating
	}
	return raw, 0
}

func kifResult(lines []string) (string, string) {
	terminal, ply := kifFindTerminal(lines)
	if terminal == "" {
		return "unknown", ""
	}
	switch terminal {
	case "中断":
		return "abort", terminal
	case "持将棋", "千日手":
		return "draw", terminal
	case "反則勝ち", "詰み":
		return kifWinner(ply), terminal
	case "投了", "切れ負け", "反則負け":
		return kifWinner(ply + 1), terminal
	default:
		return "unknown", terminal
	}
}

func kifFindTerminal(lines []string) (string, int) {
	ply := 0
	for _, line := range lines {
		match := kifMoveLineRe.FindStringSubmatch(line)
		if len(match) == 0 {
			// Terminal markers have no clock parenthesis.
			match = kifTerminalLineRe.FindStringSubmatch(line)
		}
		if len(match) == 0 {
			continue
		}
		text := strings.TrimSpace(match[2])
		if text == "" {
			continue
		}
		ply++
		if kifTerminalToken(text) {
			return text, ply
		}
	}
	return "", 0
}

func kifWinner(ply int) string {
	if ply%2 == 1 {
		return "sente_win"
	}
	return "gote_win"
}
