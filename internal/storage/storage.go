package storage

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// Store wraps the SQLite database holding imported games and the engine
// evaluation cache.
type Store struct {
	db *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS games (
	game_id      TEXT PRIMARY KEY,
	sente_name   TEXT NOT NULL,
	sente_rating INTEGER NOT NULL DEFAULT 0,
	gote_name    TEXT NOT NULL,
	gote_rating  INTEGER NOT NULL DEFAULT 0,
	result       TEXT NOT NULL,
	win_reason   TEXT NOT NULL,
	initial_sfen TEXT NOT NULL,
	move_count   INTEGER NOT NULL,
	imported_at  TEXT NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS moves (
	game_id    TEXT NOT NULL REFERENCES games(game_id) ON DELETE CASCADE,
	ply        INTEGER NOT NULL,
	move_usi   TEXT NOT NULL,
	sfen_after TEXT NOT NULL,
	label_jp   TEXT NOT NULL DEFAULT '',
	PRIMARY KEY (game_id, ply)
);

CREATE TABLE IF NOT EXISTS eval_cache (
	position_key TEXT PRIMARY KEY,
	score_type   TEXT NOT NULL,
	score_value  INTEGER NOT NULL,
	best_move    TEXT NOT NULL,
	created_at   TEXT NOT NULL DEFAULT (datetime('now'))
);
`

// Open opens (or creates) the database at path and ensures the schema exists.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}
