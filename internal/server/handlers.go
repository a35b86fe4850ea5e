package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"shogi/pkg/shogi"
)

// JSON views of the core types. Board cells are nil when empty; owners are
// the side names "sente" and "gote".

type cellView struct {
	Kind     string `json:"kind"`
	Owner    string `json:"owner"`
	Promoted bool   `json:"promoted,omitempty"`
}

type positionView struct {
	SFEN  string                    `json:"sfen"`
	Turn  string                    `json:"turn"`
	Board [9][9]*cellView           `json:"board"`
	Hands map[string]map[string]int `json:"hands"`
}

func viewPosition(pos *shogi.Position) positionView {
	view := positionView{
		SFEN:  shogi.FormatSFEN(pos, 1),
		Turn:  pos.Turn().String(),
		Hands: map[string]map[string]int{"sente": {}, "gote": {}},
	}
	for y := 0; y < 9; y++ {
		for x := 0; x < 9; x++ {
			piece := pos.PieceAt(shogi.Square{X: x, Y: y})
			if piece == nil {
				continue
			}
			view.Board[y][x] = &cellView{
				Kind:     string(piece.Kind.Letter()),
				Owner:    piece.Owner.String(),
				Promoted: piece.Promoted,
			}
		}
	}
	for _, owner := range []shogi.Color{shogi.Sente, shogi.Gote} {
		for _, kind := range shogi.HandOrder {
			if n := pos.HandCount(owner, kind); n > 0 {
				view.Hands[owner.String()][string(kind.Letter())] = n
			}
		}
	}
	return view
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type errorResponse struct {
	Error string `json:"error"`
	Ply   int    `json:"ply,omitempty"`
}

// writeError maps domain errors to status codes: malformed notation is a 400,
// a well-formed but unplayable move list is a 422.
func (a *Application) writeError(w http.ResponseWriter, err error) {
	var parseErr *shogi.ParseError
	var replayErr *shogi.ReplayError
	switch {
	case errors.As(err, &replayErr):
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: err.Error(), Ply: replayErr.Ply})
	case errors.As(err, &parseErr):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
	default:
		a.logger.Error("request failed", "err", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
	}
}

func (a *Application) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON body"})
		return false
	}
	if err := a.validate.Struct(v); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return false
	}
	return true
}

type positionRequest struct {
	Position string `json:"position" validate:"required"`
}

// handlePosition parses a position command, replays its move list and
// returns the resulting position.
func (a *Application) handlePosition(w http.ResponseWriter, r *http.Request) {
	var req positionRequest
	if !a.decode(w, r, &req) {
		return
	}
	timeline, err := shogi.BuildTimeline(req.Position)
	if err != nil {
		a.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, viewPosition(timeline.At(timeline.Len()-1)))
}

type reachableRequest struct {
	Position string `json:"position" validate:"required"`
	Square   string `json:"square" validate:"required,len=2"`
}

type reachableSquare struct {
	Square     string `json:"square"`
	CanPromote bool   `json:"can_promote"`
}

type reachableResponse struct {
	Piece   *cellView         `json:"piece"`
	Squares []reachableSquare `json:"squares"`
}

// handleReachable returns the destinations reachable by the piece on the
// given square, each flagged with promotion eligibility.
func (a *Application) handleReachable(w http.ResponseWriter, r *http.Request) {
	var req reachableRequest
	if !a.decode(w, r, &req) {
		return
	}
	timeline, err := shogi.BuildTimeline(req.Position)
	if err != nil {
		a.writeError(w, err)
		return
	}
	from, err := shogi.ParseSquare(req.Square)
	if err != nil {
		a.writeError(w, err)
		return
	}
	pos := timeline.At(timeline.Len() - 1)
	piece := pos.PieceAt(from)
	if piece == nil {
		writeJSON(w, http.StatusOK, reachableResponse{Squares: []reachableSquare{}})
		return
	}

	resp := reachableResponse{
		Piece: &cellView{
			Kind:     string(piece.Kind.Letter()),
			Owner:    piece.Owner.String(),
			Promoted: piece.Promoted,
		},
		Squares: []reachableSquare{},
	}
	for _, to := range shogi.Reachable(pos.Board(), from, *piece) {
		resp.Squares = append(resp.Squares, reachableSquare{
			Square:     to.String(),
			CanPromote: shogi.CanPromote(*piece, from, to),
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

type moveFactsView struct {
	Drop          bool   `json:"drop,omitempty"`
	Capture       bool   `json:"capture,omitempty"`
	Promotion     bool   `json:"promotion,omitempty"`
	CapturedKind  string `json:"captured_kind,omitempty"`
	CapturedValue int    `json:"captured_value,omitempty"`
	LineOpened    bool   `json:"line_opened,omitempty"`
}

type timelineEntry struct {
	Ply   int            `json:"ply"`
	Move  string         `json:"move,omitempty"`
	Label string         `json:"label,omitempty"`
	SFEN  string         `json:"sfen"`
	Facts *moveFactsView `json:"facts,omitempty"`
}

type timelineResponse struct {
	Entries []timelineEntry `json:"entries"`
}

// handleTimeline replays a position command and returns every snapshot with
// its Japanese move label. Entry 0 is the header position.
func (a *Application) handleTimeline(w http.ResponseWriter, r *http.Request) {
	var req positionRequest
	if !a.decode(w, r, &req) {
		return
	}
	timeline, err := shogi.BuildTimeline(req.Position)
	if err != nil {
		a.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, timelineResponse{Entries: timelineEntries(timeline)})
}

func timelineEntries(timeline *shogi.Timeline) []timelineEntry {
	entries := make([]timelineEntry, 0, timeline.Len())
	entries = append(entries, timelineEntry{Ply: 0, SFEN: shogi.FormatSFEN(timeline.At(0), 1)})
	for i, token := range timeline.Moves {
		before := timeline.At(i)
		entry := timelineEntry{
			Ply:  i + 1,
			Move: token,
			SFEN: shogi.FormatSFEN(timeline.At(i+1), i+2),
		}
		if m, err := shogi.ParseMove(token); err == nil {
			entry.Label = shogi.MoveLabel(m, before.Board(), before.Turn())
			if facts, err := shogi.ComputeFacts(before, m); err == nil {
				view := moveFactsView{
					Drop:          facts.Drop,
					Capture:       facts.Capture,
					Promotion:     facts.Promotion,
					CapturedValue: facts.CapturedValue,
					LineOpened:    facts.LineOpened,
				}
				if facts.Capture {
					view.CapturedKind = string(facts.CapturedKind.Letter())
				}
				entry.Facts = &view
			}
		}
		entries = append(entries, entry)
	}
	return entries
}
