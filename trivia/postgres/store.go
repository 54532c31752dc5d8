// Package postgres implements the durable game snapshot store on top of a
// Postgres database.
package postgres

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/jaredblack/trivia-wizard-2/trivia"
	"github.com/jaredblack/trivia-wizard-2/wlog"
)

var logger = wlog.NewPrefixLogger("postgres")

type gameStore struct {
	db *sql.DB
}

// NewGameStore creates a trivia.GameStore backed by Postgres.
func NewGameStore(db *sql.DB) trivia.GameStore {
	return &gameStore{db: db}
}

// SaveGame upserts a game snapshot for (userID, gameCode).
func (s *gameStore) SaveGame(userID string, gameCode string, snapshot []byte) error {
	if !json.Valid(snapshot) {
		return fmt.Errorf("postgres: refusing to save non-JSON snapshot for game %s", gameCode)
	}

	return transact(s.db, func(tx *sql.Tx) error {
		_, err := tx.Exec(`
			INSERT INTO games (user_id, game_code, state, updated_at)
			VALUES ($1, $2, $3, now())
			ON CONFLICT (user_id, game_code)
			DO UPDATE SET state = EXCLUDED.state, updated_at = now();
		`, userID, gameCode, snapshot)
		if err != nil {
			return err
		}
		logger.Debug("saved game state for %s/%s", userID, gameCode)
		return nil
	})
}

// LoadGame fetches the stored snapshot for (userID, gameCode), or (nil, nil)
// when none exists.
func (s *gameStore) LoadGame(userID string, gameCode string) ([]byte, error) {
	var state []byte
	err := s.db.QueryRow(`
		SELECT state FROM games WHERE user_id = $1 AND game_code = $2;
	`, userID, gameCode).Scan(&state)
	if err != nil {
		if err == sql.ErrNoRows {
			logger.Debug("no saved game state for %s/%s", userID, gameCode)
			return nil, nil
		}
		return nil, err
	}

	logger.Debug("loaded game state for %s/%s", userID, gameCode)
	return state, nil
}
