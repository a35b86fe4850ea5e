package shogi

import (
	"encoding/hex"
	"fmt"
)

// Compact position packing. A full-material position fits exactly 256 bits:
// one turn bit, two 7-bit king squares, prefix-coded board cells, then
// prefix-coded hand pieces. The packed form is canonical and is used as the
// evaluation-cache key; positions with missing material (handicap games) do
// not fill the stream and fail to pack, in which case callers fall back to
// the SFEN string.

// Packed256 is the 256-bit canonical encoding of a Position.
type Packed256 struct {
	Words [4]uint64
}

// Key returns the packed position as a fixed-width hex string.
func (p Packed256) Key() string {
	buf := make([]byte, 0, 32)
	for _, w := range p.Words {
		for i := 0; i < 8; i++ {
			buf = append(buf, byte(w>>(8*i)))
		}
	}
	return hex.EncodeToString(buf)
}

type packCode struct {
	kind    Kind
	bits    uint64
	bitLen  int
	isEmpty bool
}

type packBook struct {
	byLen  map[int]map[uint64]packCode
	maxLen int
}

var boardCodes = []packCode{
	{bits: 0b0, bitLen: 1, isEmpty: true},
	{kind: Pawn, bits: 0b01, bitLen: 2},
	{kind: Lance, bits: 0b0011, bitLen: 4},
	{kind: Knight, bits: 0b1011, bitLen: 4},
	{kind: Silver, bits: 0b0111, bitLen: 4},
	{kind: Gold, bits: 0b01111, bitLen: 5},
	{kind: Bishop, bits: 0b011111, bitLen: 6},
	{kind: Rook, bits: 0b111111, bitLen: 6},
}

var handCodes = []packCode{
	{kind: Pawn, bits: 0b0, bitLen: 1},
	{kind: Lance, bits: 0b001, bitLen: 3},
	{kind: Knight, bits: 0b101, bitLen: 3},
	{kind: Silver, bits: 0b011, bitLen: 3},
	{kind: Gold, bits: 0b0111, bitLen: 4},
	{kind: Bishop, bits: 0b01111, bitLen: 5},
	{kind: Rook, bits: 0b11111, bitLen: 5},
}

var boardBook = buildPackBook(boardCodes)
var handBook = buildPackBook(handCodes)

func buildPackBook(codes []packCode) packBook {
	book := packBook{byLen: map[int]map[uint64]packCode{}}
	for _, code := range codes {
		if book.byLen[code.bitLen] == nil {
			book.byLen[code.bitLen] = map[uint64]packCode{}
		}
		book.byLen[code.bitLen][code.bits] = code
		if code.bitLen > book.maxLen {
			book.maxLen = code.bitLen
		}
	}
	return book
}

func squareFromIndex(idx int) Square {
	return Square{X: idx % 9, Y: idx / 9}
}

// PackPosition encodes a full-material position into 256 bits.
func PackPosition(pos *Position) (Packed256, error) {
	w := &bitWriter256{}

	turnBit := uint64(0)
	if pos.turn == Gote {
		turnBit = 1
	}
	if err := w.writeBit(turnBit); err != nil {
		return Packed256{}, err
	}

	senteKing, goteKing, err := kingSquares(pos)
	if err != nil {
		return Packed256{}, err
	}
	if err := w.writeBits(uint64(senteKing), 7); err != nil {
		return Packed256{}, err
	}
	if err := w.writeBits(uint64(goteKing), 7); err != nil {
		return Packed256{}, err
	}

	for idx := 0; idx < 81; idx++ {
		if idx == senteKing || idx == goteKing {
			continue
		}
		piece := pos.board.PieceAt(squareFromIndex(idx))
		if piece == nil {
			if err := w.writeEmpty(); err != nil {
				return Packed256{}, err
			}
			continue
		}
		if piece.Kind == King {
			return Packed256{}, fmt.Errorf("unexpected king at square %d", idx)
		}
		if err := w.writeCode(boardBook, piece.Kind); err != nil {
			return Packed256{}, err
		}
		if err := w.writeColor(piece.Owner); err != nil {
			return Packed256{}, err
		}
		if piece.Kind.Promotable() {
			promoBit := uint64(0)
			if piece.Promoted {
				promoBit = 1
			}
			if err := w.writeBit(promoBit); err != nil {
				return Packed256{}, err
			}
		}
	}

	for _, owner := range []Color{Sente, Gote} {
		for _, kind := range []Kind{Pawn, Lance, Knight, Silver, Gold, Bishop, Rook} {
			count := pos.hands.Count(owner, kind)
			for i := 0; i < count; i++ {
				if err := w.writeCode(handBook, kind); err != nil {
					return Packed256{}, err
				}
				if err := w.writeColor(owner); err != nil {
					return Packed256{}, err
				}
				if kind.Promotable() {
					if err := w.writeBit(0); err != nil {
						return Packed256{}, err
					}
				}
			}
		}
	}

	if w.pos != 256 {
		return Packed256{}, fmt.Errorf("packed length is %d bits, expected 256", w.pos)
	}
	return Packed256{Words: w.words}, nil
}

// UnpackPosition decodes a Packed256 back into a Position.
func UnpackPosition(p Packed256) (*Position, error) {
	r := &bitReader256{words: p.Words}

	turnBit, err := r.readBit()
	if err != nil {
		return nil, err
	}
	pos := NewPosition()
	if turnBit == 1 {
		pos.turn = Gote
	}

	senteKing, err := r.readBits(7)
	if err != nil {
		return nil, err
	}
	goteKing, err := r.readBits(7)
	if err != nil {
		return nil, err
	}
	if senteKing == goteKing {
		return nil, fmt.Errorf("kings share square %d", senteKing)
	}
	pos.board.Set(squareFromIndex(int(senteKing)), &Piece{Kind: King, Owner: Sente})
	pos.board.Set(squareFromIndex(int(goteKing)), &Piece{Kind: King, Owner: Gote})

	for idx := 0; idx < 81; idx++ {
		if idx == int(senteKing) || idx == int(goteKing) {
			continue
		}
		code, err := r.readCode(boardBook)
		if err != nil {
			return nil, err
		}
		if code.isEmpty {
			continue
		}
		owner, err := r.readColor()
		if err != nil {
			return nil, err
		}
		promoted := false
		if code.kind.Promotable() {
			promoBit, err := r.readBit()
			if err != nil {
				return nil, err
			}
			promoted = promoBit == 1
		}
		pos.board.Set(squareFromIndex(idx), &Piece{Kind: code.kind, Owner: owner, Promoted: promoted})
	}

	for r.pos < 256 {
		code, err := r.readCode(handBook)
		if err != nil {
			return nil, err
		}
		owner, err := r.readColor()
		if err != nil {
			return nil, err
		}
		if code.kind.Promotable() {
			promoBit, err := r.readBit()
			if err != nil {
				return nil, err
			}
			if promoBit != 0 {
				return nil, fmt.Errorf("promoted piece in hand: %s", code.kind)
			}
		}
		pos.hands.add(owner, code.kind, 1)
	}

	return pos, nil
}

func kingSquares(pos *Position) (int, int, error) {
	sente, gote := -1, -1
	for idx := 0; idx < 81; idx++ {
		piece := pos.board.PieceAt(squareFromIndex(idx))
		if piece == nil || piece.Kind != King {
			continue
		}
		if piece.Owner == Sente {
			if sente != -1 {
				return 0, 0, fmt.Errorf("multiple sente kings")
			}
			sente = idx
		} else {
			if gote != -1 {
				return 0, 0, fmt.Errorf("multiple gote kings")
			}
			gote = idx
		}
	}
	if sente == -1 || gote == -1 {
		return 0, 0, fmt.Errorf("missing king")
	}
	return sente, gote, nil
}

type bitWriter256 struct {
	words [4]uint64
	pos   int
}

type bitReader256 struct {
	words [4]uint64
	pos   int
}

func (w *bitWriter256) writeBit(bit uint64) error {
	if w.pos >= 256 {
		return fmt.Errorf("bitstream overflow")
	}
	word := w.pos / 64
	offset := uint(w.pos % 64)
	if bit != 0 {
		w.words[word] |= 1 << offset
	}
	w.pos++
	return nil
}

func (w *bitWriter256) writeBits(value uint64, bitLen int) error {
	for i := 0; i < bitLen; i++ {
		if err := w.writeBit((value >> i) & 1); err != nil {
			return err
		}
	}
	return nil
}

func (w *bitWriter256) writeEmpty() error {
	for _, code := range boardCodes {
		if code.isEmpty {
			return w.writeBits(code.bits, code.bitLen)
		}
	}
	return fmt.Errorf("no empty code")
}

func (w *bitWriter256) writeCode(book packBook, kind Kind) error {
	for _, entries := range book.byLen {
		for _, code := range entries {
			if !code.isEmpty && code.kind == kind {
				return w.writeBits(code.bits, code.bitLen)
			}
		}
	}
	return fmt.Errorf("unknown piece code: %s", kind)
}

func (w *bitWriter256) writeColor(owner Color) error {
	bit := uint64(0)
	if owner == Gote {
		bit = 1
	}
	return w.writeBit(bit)
}

func (r *bitReader256) readBit() (uint64, error) {
	if r.pos >= 256 {
		return 0, fmt.Errorf("bitstream underflow")
	}
	word := r.pos / 64
	offset := uint(r.pos % 64)
	bit := (r.words[word] >> offset) & 1
	r.pos++
	return bit, nil
}

func (r *bitReader256) readBits(bitLen int) (uint64, error) {
	var value uint64
	for i := 0; i < bitLen; i++ {
		bit, err := r.readBit()
		if err != nil {
			return 0, err
		}
		value |= bit << i
	}
	return value, nil
}

func (r *bitReader256) readCode(book packBook) (packCode, error) {
	var value uint64
	for length := 1; length <= book.maxLen; length++ {
		bit, err := r.readBit()
		if err != nil {
			return packCode{}, err
		}
		value |= bit << (length - 1)
		if entry, ok := book.byLen[length][value]; ok {
			return entry, nil
		}
	}
	return packCode{}, fmt.Errorf("invalid code")
}

func (r *bitReader256) readColor() (Color, error) {
	bit, err := r.readBit()
	if err != nil {
		return Sente, err
	}
	if bit == 1 {
		return Gote, nil
	}
	return Sente, nil
}

// PositionKey returns a stable cache key: the packed encoding when the
// position has full material, otherwise its SFEN with a fixed move number.
func PositionKey(pos *Position) string {
	if packed, err := PackPosition(pos); err == nil {
		return packed.Key()
	}
	return FormatSFEN(pos, 1)
}
