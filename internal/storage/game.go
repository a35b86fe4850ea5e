package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// ErrNotFound is returned when a lookup matches no row.
var ErrNotFound = errors.New("not found")

// GameRecord is one imported game with its replayed move list.
type GameRecord struct {
	GameID      string
	SenteName   string
	SenteRating int
	GoteName    string
	GoteRating  int
	Result      string
	WinReason   string
	InitialSFEN string
	Moves       []MoveRecord
}

// MoveRecord is one ply of an imported game.
type MoveRecord struct {
	Ply       int
	MoveUSI   string
	SFENAfter string
	LabelJP   string
}

// SaveGame stores a game and its moves in one transaction. An empty GameID
// gets a fresh UUID; the assigned ID is returned.
func (s *Store) SaveGame(ctx context.Context, game GameRecord) (string, error) {
	if game.GameID == "" {
		game.GameID = uuid.NewString()
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `INSERT INTO games (
		game_id, sente_name, sente_rating, gote_name, gote_rating,
		result, win_reason, initial_sfen, move_count
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		game.GameID, game.SenteName, game.SenteRating, game.GoteName, game.GoteRating,
		game.Result, game.WinReason, game.InitialSFEN, len(game.Moves),
	)
	if err != nil {
		return "", fmt.Errorf("insert game: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO moves (game_id, ply, move_usi, sfen_after, label_jp) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return "", fmt.Errorf("prepare moves: %w", err)
	}
	defer stmt.Close()
	for _, move := range game.Moves {
		if _, err := stmt.ExecContext(ctx, game.GameID, move.Ply, move.MoveUSI, move.SFENAfter, move.LabelJP); err != nil {
			return "", fmt.Errorf("insert move %d: %w", move.Ply, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("commit: %w", err)
	}
	return game.GameID, nil
}

// GetGame loads a game and its moves by ID.
func (s *Store) GetGame(ctx context.Context, gameID string) (GameRecord, error) {
	var game GameRecord
	err := s.db.QueryRowContext(ctx, `SELECT
		game_id, sente_name, sente_rating, gote_name, gote_rating,
		result, win_reason, initial_sfen
	FROM games WHERE game_id = ?`, gameID).Scan(
		&game.GameID, &game.SenteName, &game.SenteRating, &game.GoteName, &game.GoteRating,
		&game.Result, &game.WinReason, &game.InitialSFEN,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return GameRecord{}, ErrNotFound
	}
	if err != nil {
		return GameRecord{}, fmt.Errorf("query game: %w", err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT ply, move_usi, sfen_after, label_jp FROM moves WHERE game_id = ? ORDER BY ply`, gameID)
	if err != nil {
		return GameRecord{}, fmt.Errorf("query moves: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var move MoveRecord
		if err := rows.Scan(&move.Ply, &move.MoveUSI, &move.SFENAfter, &move.LabelJP); err != nil {
			return GameRecord{}, fmt.Errorf("scan move: %w", err)
		}
		game.Moves = append(game.Moves, move)
	}
	if err := rows.Err(); err != nil {
		return GameRecord{}, fmt.Errorf("iterate moves: %w", err)
	}
	return game, nil
}

// GameSummary is the list view of a stored game, without its moves.
type GameSummary struct {
	GameID     string
	SenteName  string
	GoteName   string
	Result     string
	MoveCount  int
	ImportedAt string
}

// ListGames returns summaries of the most recently imported games.
func (s *Store) ListGames(ctx context.Context, limit int) ([]GameSummary, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, `SELECT
		game_id, sente_name, gote_name, result, move_count, imported_at
	FROM games ORDER BY imported_at DESC, game_id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query games: %w", err)
	}
	defer rows.Close()

	var out []GameSummary
	for rows.Next() {
		var g GameSummary
		if err := rows.Scan(&g.GameID, &g.SenteName, &g.GoteName, &g.Result, &g.MoveCount, &g.ImportedAt); err != nil {
			return nil, fmt.Errorf("scan game: %w", err)
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

// CachedEval is one engine evaluation keyed by a canonical position key.
type CachedEval struct {
	PositionKey string
	ScoreType   string
	ScoreValue  int
	BestMove    string
}

// GetEval looks up a cached evaluation. Returns ErrNotFound on a miss.
func (s *Store) GetEval(ctx context.Context, positionKey string) (CachedEval, error) {
	var eval CachedEval
	err := s.db.QueryRowContext(ctx,
		`SELECT position_key, score_type, score_value, best_move FROM eval_cache WHERE position_key = ?`,
		positionKey).Scan(&eval.PositionKey, &eval.ScoreType, &eval.ScoreValue, &eval.BestMove)
	if errors.Is(err, sql.ErrNoRows) {
		return CachedEval{}, ErrNotFound
	}
	if err != nil {
		return CachedEval{}, fmt.Errorf("query eval: %w", err)
	}
	return eval, nil
}

// PutEval stores or refreshes a cached evaluation.
func (s *Store) PutEval(ctx context.Context, eval CachedEval) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO eval_cache
		(position_key, score_type, score_value, best_move)
	VALUES (?, ?, ?, ?)
	ON CONFLICT(position_key) DO UPDATE SET
		score_type = excluded.score_type,
		score_value = excluded.score_value,
		best_move = excluded.best_move,
		created_at = datetime('now')`,
		eval.PositionKey, eval.ScoreType, eval.ScoreValue, eval.BestMove)
	if err != nil {
		return fmt.Errorf("upsert eval: %w", err)
	}
	return nil
}
