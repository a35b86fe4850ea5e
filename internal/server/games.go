package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"shogi/internal/storage"
	"shogi/pkg/shogi"
)

type importGameRequest struct {
	KIF string `json:"kif" validate:"required"`
}

type importGameResponse struct {
	GameID    string `json:"game_id"`
	MoveCount int    `json:"move_count"`
	Result    string `json:"result"`
}

// handleImportGame parses a KIF document, replays it and stores the game
// with one SFEN snapshot per ply.
func (a *Application) handleImportGame(w http.ResponseWriter, r *http.Request) {
	var req importGameRequest
	if !a.decode(w, r, &req) {
		return
	}
	game, err := shogi.ParseKIF(strings.Split(req.KIF, "\n"))
	if err != nil {
		a.writeError(w, err)
		return
	}
	timeline, err := game.Timeline()
	if err != nil {
		a.writeError(w, err)
		return
	}

	record := storage.GameRecord{
		SenteName:   game.Players.SenteName,
		SenteRating: game.Players.SenteRating,
		GoteName:    game.Players.GoteName,
		GoteRating:  game.Players.GoteRating,
		Result:      game.Result,
		WinReason:   game.WinReason,
		InitialSFEN: shogi.FormatSFEN(game.Initial, 1),
	}
	for i, token := range timeline.Moves {
		move := storage.MoveRecord{
			Ply:       i + 1,
			MoveUSI:   token,
			SFENAfter: shogi.FormatSFEN(timeline.At(i+1), i+2),
		}
		if m, err := shogi.ParseMove(token); err == nil {
			before := timeline.At(i)
			move.LabelJP = shogi.MoveLabel(m, before.Board(), before.Turn())
		}
		record.Moves = append(record.Moves, move)
	}

	gameID, err := a.store.SaveGame(r.Context(), record)
	if err != nil {
		a.writeError(w, err)
		return
	}
	a.logger.Info("game imported", "game_id", gameID, "moves", len(record.Moves))
	writeJSON(w, http.StatusCreated, importGameResponse{
		GameID:    gameID,
		MoveCount: len(record.Moves),
		Result:    game.Result,
	})
}

type gameSummaryView struct {
	GameID     string `json:"game_id"`
	SenteName  string `json:"sente_name"`
	GoteName   string `json:"gote_name"`
	Result     string `json:"result"`
	MoveCount  int    `json:"move_count"`
	ImportedAt string `json:"imported_at"`
}

func (a *Application) handleListGames(w http.ResponseWriter, r *http.Request) {
	games, err := a.store.ListGames(r.Context(), 50)
	if err != nil {
		a.writeError(w, err)
		return
	}
	out := make([]gameSummaryView, 0, len(games))
	for _, g := range games {
		out = append(out, gameSummaryView{
			GameID:     g.GameID,
			SenteName:  g.SenteName,
			GoteName:   g.GoteName,
			Result:     g.Result,
			MoveCount:  g.MoveCount,
			ImportedAt: g.ImportedAt,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"games": out})
}

type gameMoveView struct {
	Ply     int    `json:"ply"`
	MoveUSI string `json:"move_usi"`
	LabelJP string `json:"label_jp,omitempty"`
	SFEN    string `json:"sfen"`
}

type gameDetailView struct {
	GameID      string         `json:"game_id"`
	SenteName   string         `json:"sente_name"`
	SenteRating int            `json:"sente_rating,omitempty"`
	GoteName    string         `json:"gote_name"`
	GoteRating  int            `json:"gote_rating,omitempty"`
	Result      string         `json:"result"`
	WinReason   string         `json:"win_reason,omitempty"`
	InitialSFEN string         `json:"initial_sfen"`
	Moves       []gameMoveView `json:"moves"`
}

func (a *Application) handleGetGame(w http.ResponseWriter, r *http.Request) {
	gameID := mux.Vars(r)["id"]
	game, err := a.store.GetGame(r.Context(), gameID)
	if errors.Is(err, storage.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "game not found"})
		return
	}
	if err != nil {
		a.writeError(w, err)
		return
	}
	view := gameDetailView{
		GameID:      game.GameID,
		SenteName:   game.SenteName,
		SenteRating: game.SenteRating,
		GoteName:    game.GoteName,
		GoteRating:  game.GoteRating,
		Result:      game.Result,
		WinReason:   game.WinReason,
		InitialSFEN: game.InitialSFEN,
		Moves:       make([]gameMoveView, 0, len(game.Moves)),
	}
	for _, move := range game.Moves {
		view.Moves = append(view.Moves, gameMoveView{
			Ply:     move.Ply,
			MoveUSI: move.MoveUSI,
			LabelJP: move.LabelJP,
			SFEN:    move.SFENAfter,
		})
	}
	writeJSON(w, http.StatusOK, view)
}
