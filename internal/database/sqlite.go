package database

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3" // SQLite driver

	"hextrade/internal/game"
	"hextrade/pkg/logger"
)

// schema creates the finished-game table. The full state lives in a JSON
// column; the summary columns exist for querying without unmarshaling.
const schema = `
CREATE TABLE IF NOT EXISTS finished_games (
	code         TEXT PRIMARY KEY,
	game_id      TEXT NOT NULL,
	winner_id    TEXT NOT NULL,
	player_count INTEGER NOT NULL,
	turn_count   INTEGER NOT NULL,
	finished_at  TIMESTAMP NOT NULL,
	state        TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_finished_games_winner ON finished_games(winner_id);
`

// SQLiteStore persists finished games to a SQLite database
type SQLiteStore struct {
	db     *sql.DB
	logger *logger.ColoredLogger
}

// NewSQLiteStore opens (creating if needed) the database at path and applies
// the schema.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	store := &SQLiteStore{db: db, logger: logger.DatabaseLogger}
	store.logger.Info("Finished-game store ready at %s", path)
	return store, nil
}

// Close releases the database handle
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// SaveFinished writes one finished game
func (s *SQLiteStore) SaveFinished(state *game.Game) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to serialize game %s: %w", state.Code, err)
	}

	finishedAt := state.FinishedAt
	if finishedAt.IsZero() {
		finishedAt = time.Now()
	}

	_, err = s.db.Exec(
		`INSERT OR REPLACE INTO finished_games
		 (code, game_id, winner_id, player_count, turn_count, finished_at, state)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		state.Code, state.ID, state.WinnerID, len(state.Players), state.TurnNumber, finishedAt, string(data),
	)
	if err != nil {
		return fmt.Errorf("failed to store game %s: %w", state.Code, err)
	}

	s.logger.Info("Stored finished game %s (winner %s)", state.Code, state.WinnerID)
	return nil
}

// LoadGame reads a stored game back by code. A missing code yields nil
// without error.
func (s *SQLiteStore) LoadGame(code string) (*game.Game, error) {
	var data string
	err := s.db.QueryRow(`SELECT state FROM finished_games WHERE code = ?`, code).Scan(&data)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load game %s: %w", code, err)
	}

	var state game.Game
	if err := json.Unmarshal([]byte(data), &state); err != nil {
		return nil, fmt.Errorf("failed to deserialize game %s: %w", code, err)
	}
	return &state, nil
}
