package server

import (
	"errors"
	"net/http"

	"github.com/gorilla/websocket"

	"shogi/internal/storage"
	"shogi/pkg/shogi"
	"shogi/pkg/usi"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The CORS middleware does not cover websocket upgrades; any origin may
	// open the analysis stream.
	CheckOrigin: func(r *http.Request) bool { return true },
}

type analysisUpdate struct {
	Type       string `json:"type"` // "eval", "done" or "error"
	Ply        int    `json:"ply,omitempty"`
	Move       string `json:"move,omitempty"`
	SFEN       string `json:"sfen,omitempty"`
	ScoreType  string `json:"score_type,omitempty"`
	ScoreValue int    `json:"score_value,omitempty"`
	BestMove   string `json:"best_move,omitempty"`
	Cached     bool   `json:"cached,omitempty"`
	Error      string `json:"error,omitempty"`
}

// handleAnalysisWS replays the position command given in the "position"
// query parameter and streams one evaluation per ply. Cached evaluations are
// served from the store without touching the engine.
func (a *Application) handleAnalysisWS(w http.ResponseWriter, r *http.Request) {
	notation := r.URL.Query().Get("position")
	if notation == "" {
		http.Error(w, "missing position parameter", http.StatusBadRequest)
		return
	}
	timeline, err := shogi.BuildTimeline(notation)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		a.logger.Error("websocket upgrade failed", "err", err)
		return
	}
	defer conn.Close()

	for ply := 0; ply < timeline.Len(); ply++ {
		pos := timeline.At(ply)
		update, err := a.evaluatePly(r, pos)
		if err != nil {
			_ = conn.WriteJSON(analysisUpdate{Type: "error", Ply: ply, Error: err.Error()})
			return
		}
		update.Ply = ply
		if ply > 0 {
			update.Move = timeline.Moves[ply-1]
		}
		update.SFEN = shogi.FormatSFEN(pos, ply+1)
		if err := conn.WriteJSON(update); err != nil {
			return
		}
	}
	_ = conn.WriteJSON(analysisUpdate{Type: "done"})
}

func (a *Application) evaluatePly(r *http.Request, pos *shogi.Position) (analysisUpdate, error) {
	key := shogi.PositionKey(pos)
	cached, err := a.store.GetEval(r.Context(), key)
	if err == nil {
		return analysisUpdate{
			Type:       "eval",
			ScoreType:  cached.ScoreType,
			ScoreValue: cached.ScoreValue,
			BestMove:   cached.BestMove,
			Cached:     true,
		}, nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return analysisUpdate{}, err
	}

	sess, err := a.session(r.Context())
	if err != nil {
		return analysisUpdate{}, err
	}
	score, bestMove, err := a.evaluateLocked(sess, r, pos)
	if err != nil {
		return analysisUpdate{}, err
	}
	_ = a.store.PutEval(r.Context(), storage.CachedEval{
		PositionKey: key,
		ScoreType:   score.Kind,
		ScoreValue:  score.Value,
		BestMove:    bestMove,
	})
	return analysisUpdate{
		Type:       "eval",
		ScoreType:  score.Kind,
		ScoreValue: score.Value,
		BestMove:   bestMove,
	}, nil
}

// evaluateLocked serializes engine access; one USI process cannot search two
// positions at once.
func (a *Application) evaluateLocked(sess *usi.Session, r *http.Request, pos *shogi.Position) (usi.Score, string, error) {
	a.engineMu.Lock()
	defer a.engineMu.Unlock()
	return sess.Evaluate(r.Context(), shogi.FormatSFEN(pos, 1), a.cfg.Millis)
}
