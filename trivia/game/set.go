package game

import (
	"math/rand"
	"sync"

	"github.com/jaredblack/trivia-wizard-2/trivia"
)

// GameSet owns every running game. A single lock serializes all state
// transitions across the process: handlers and timer tasks lock the set,
// mutate a game and collect the messages to send, release the lock, and
// only then perform sends and persistence.
type GameSet struct {
	// gamesLock guards games and everything reachable through them.
	gamesLock sync.Mutex

	// games maps game codes to running games.
	games map[string]*Game

	store trivia.GameStore
	idle  *IdleTimer
}

// NewGameSet creates an empty set backed by the given snapshot store and
// idle-shutdown supervisor.
func NewGameSet(store trivia.GameStore, idle *IdleTimer) *GameSet {
	return &GameSet{
		games: make(map[string]*Game),
		store: store,
		idle:  idle,
	}
}

const gameCodeLetters = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// generateCode picks an unused four letter game code. Must be called while
// holding the set lock.
func (set *GameSet) generateCode() string {
	for {
		code := make([]byte, 4)
		for i := range code {
			code[i] = gameCodeLetters[rand.Intn(len(gameCodeLetters))]
		}
		if _, ok := set.games[string(code)]; !ok {
			return string(code)
		}
	}
}

// Get returns the game for a code. Must be called while holding the set lock.
func (set *GameSet) Get(gameCode string) (*Game, bool) {
	game, ok := set.games[gameCode]
	return game, ok
}

// Insert adds a game to the set. Must be called while holding the set lock.
func (set *GameSet) Insert(g *Game) {
	set.games[g.Code] = g
}

// CheckIdle starts the idle-shutdown supervisor if no game has a host
// attached. Called by the acceptor after every connection handler exits.
func (set *GameSet) CheckIdle() {
	set.gamesLock.Lock()
	for _, g := range set.games {
		if g.HasHost() {
			set.gamesLock.Unlock()
			return
		}
	}
	set.gamesLock.Unlock()

	logger.Info("all hosts disconnected")
	set.idle.Start()
}
