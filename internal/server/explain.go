package server

import (
	"errors"
	"net/http"

	"shogi/pkg/shogi"
	"shogi/pkg/usi"
)

type candidateView struct {
	Rank       int      `json:"rank"`
	Move       string   `json:"move"`
	Label      string   `json:"label,omitempty"`
	ScoreType  string   `json:"score_type"`
	ScoreValue int      `json:"score_value"`
	Depth      int      `json:"depth"`
	PV         []string `json:"pv"`
}

type explainResponse struct {
	SFEN       string          `json:"sfen"`
	Candidates []candidateView `json:"candidates"`
}

// handleExplain runs a MultiPV search on the final position of the command
// and returns the ranked candidate lines with their Japanese labels. Without
// a configured engine the endpoint reports 503.
func (a *Application) handleExplain(w http.ResponseWriter, r *http.Request) {
	var req positionRequest
	if !a.decode(w, r, &req) {
		return
	}
	timeline, err := shogi.BuildTimeline(req.Position)
	if err != nil {
		a.writeError(w, err)
		return
	}
	pos := timeline.At(timeline.Len() - 1)

	sess, err := a.session(r.Context())
	if err != nil {
		if errors.Is(err, errNoEngine) {
			writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: err.Error()})
			return
		}
		a.writeError(w, err)
		return
	}
	candidates, err := a.candidatesLocked(sess, r, pos)
	if err != nil {
		a.writeError(w, err)
		return
	}

	resp := explainResponse{
		SFEN:       shogi.FormatSFEN(pos, 1),
		Candidates: make([]candidateView, 0, len(candidates)),
	}
	for _, c := range candidates {
		view := candidateView{
			Rank:       c.Rank,
			Move:       c.Move,
			ScoreType:  c.Score.Kind,
			ScoreValue: c.Score.Value,
			Depth:      c.Depth,
			PV:         c.PV,
		}
		if m, err := shogi.ParseMove(c.Move); err == nil {
			view.Label = shogi.MoveLabel(m, pos.Board(), pos.Turn())
		}
		resp.Candidates = append(resp.Candidates, view)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (a *Application) candidatesLocked(sess *usi.Session, r *http.Request, pos *shogi.Position) ([]usi.Candidate, error) {
	a.engineMu.Lock()
	defer a.engineMu.Unlock()
	return sess.EvaluateCandidates(r.Context(), shogi.FormatSFEN(pos, 1), a.cfg.Millis, a.cfg.MultiPV)
}
