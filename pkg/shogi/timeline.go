package shogi

// Timeline is the replayed game: one Position snapshot per ply (ply 0 is the
// header position) and the parallel move tokens that produced each
// transition. Built once per notation string and immutable afterwards; the
// UI rebuilds it whenever the source notation changes.
type Timeline struct {
	Positions []*Position
	Moves     []string
}

// Len returns the number of snapshots (plies + 1).
func (t *Timeline) Len() int {
	return len(t.Positions)
}

// At returns the snapshot after the given ply, or nil when out of range.
func (t *Timeline) At(ply int) *Position {
	if ply < 0 || ply >= len(t.Positions) {
		return nil
	}
	return t.Positions[ply]
}

// BuildTimeline parses a position command and folds the move applicator over
// its move list, snapshotting after every successful application. A move the
// applicator rejects fails the whole build with a *ReplayError carrying the
// 1-based ply index; no partial timeline is returned.
func BuildTimeline(notation string) (*Timeline, error) {
	pos, moves, err := ParsePosition(notation)
	if err != nil {
		return nil, err
	}
	return Replay(pos, moves)
}

// Replay applies moves from a parsed starting position, returning snapshots
// the same way BuildTimeline does. Used by callers that already hold a
// Position (KIF import, storage replay).
func Replay(start *Position, moves []string) (*Timeline, error) {
	timeline := &Timeline{
		Positions: make([]*Position, 0, len(moves)+1),
		Moves:     moves,
	}
	timeline.Positions = append(timeline.Positions, start.Clone())
	current := timeline.Positions[0]
	for i, token := range moves {
		next := current.Clone()
		if err := next.ApplyUSI(token); err != nil {
			return nil, &ReplayError{Ply: i + 1, Move: token, Err: err}
		}
		timeline.Positions = append(timeline.Positions, next)
		current = next
	}
	return timeline, nil
}
