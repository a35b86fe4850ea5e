package shogi

import "strconv"

// Japanese move labels for the analysis viewer and lesson text, e.g. ▲7六歩.

var kanjiNum = [...]string{"", "一", "二", "三", "四", "五", "六", "七", "八", "九"}

var kindNamesJP = map[Kind]string{
	Pawn: "歩", Lance: "香", Knight: "桂", Silver: "銀",
	Gold: "金", Bishop: "角", Rook: "飛", King: "玉",
}

var promotedNamesJP = map[Kind]string{
	Pawn: "と", Lance: "成香", Knight: "成桂", Silver: "成銀",
	Bishop: "馬", Rook: "龍",
}

// NameJP returns the Japanese name of the piece (promoted form included).
func (p Piece) NameJP() string {
	if p.Promoted {
		if name, ok := promotedNamesJP[p.Kind]; ok {
			return name
		}
	}
	return kindNamesJP[p.Kind]
}

// MoveLabel renders a move as Japanese notation against the board the move
// is about to be played on. mover is the side making the move: ▲ for Sente,
// △ for Gote.
func MoveLabel(m Move, before *Board, mover Color) string {
	prefix := "▲"
	if mover == Gote {
		prefix = "△"
	}
	dest := strconv.Itoa(m.To.File()) + kanjiNum[m.To.Rank()]

	if m.Drop {
		piece := Piece{Kind: m.Piece, Owner: mover}
		return prefix + dest + piece.NameJP() + "打"
	}

	piece := before.PieceAt(m.From)
	if piece == nil {
		return prefix + dest
	}
	if m.Promote {
		// Name the base kind and make the promotion explicit, e.g. 角成.
		return prefix + dest + kindNamesJP[piece.Kind] + "成"
	}
	return prefix + dest + piece.NameJP()
}
