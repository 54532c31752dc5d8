// Package mock provides in-memory implementations of the trivia service
// interfaces for testing and for running the server locally without its
// cloud dependencies.
package mock

import (
	"sync"

	"github.com/jaredblack/trivia-wizard-2/trivia"
)

// Store is an in-memory game snapshot store.
type Store struct {
	mu        sync.Mutex
	snapshots map[string][]byte
}

// NewStore creates an empty in-memory store.
func NewStore() *Store {
	return &Store{snapshots: make(map[string][]byte)}
}

func storeKey(userID string, gameCode string) string {
	return userID + "/" + gameCode
}

// SaveGame stores a snapshot, replacing any previous one for the key.
func (s *Store) SaveGame(userID string, gameCode string, snapshot []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data := make([]byte, len(snapshot))
	copy(data, snapshot)
	s.snapshots[storeKey(userID, gameCode)] = data
	return nil
}

// LoadGame returns the stored snapshot, or (nil, nil) if there is none.
func (s *Store) LoadGame(userID string, gameCode string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot, ok := s.snapshots[storeKey(userID, gameCode)]
	if !ok {
		return nil, nil
	}
	data := make([]byte, len(snapshot))
	copy(data, snapshot)
	return data, nil
}

// StaticValidator resolves tokens from a fixed map. Unknown tokens fail.
type StaticValidator struct {
	Tokens map[string]trivia.AuthResult
}

// NewStaticValidator creates a validator over a fixed token table.
func NewStaticValidator(tokens map[string]trivia.AuthResult) *StaticValidator {
	return &StaticValidator{Tokens: tokens}
}

// Validate looks the token up in the table.
func (v *StaticValidator) Validate(token string) (*trivia.AuthResult, error) {
	result, ok := v.Tokens[token]
	if !ok {
		return nil, trivia.ErrTokenInvalid
	}
	return &result, nil
}
