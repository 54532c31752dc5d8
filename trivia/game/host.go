package game

import (
	"encoding/json"

	"github.com/jaredblack/trivia-wizard-2/trivia"
	"github.com/jaredblack/trivia-wizard-2/trivia/game/message"
	"github.com/jaredblack/trivia-wizard-2/trivia/validate"
)

// hostEntry resolves a CreateGame into one of: conflict error, reclaim of an
// in-memory game, restore from a persisted snapshot, or a fresh game. On
// success it runs the host loop until the connection dies.
func (h *handler) hostEntry(conn *Conn, auth *trivia.AuthResult, action *message.CreateGame) {
	if auth == nil || !auth.IsHost {
		conn.Send(message.NewError("not authorized as a host"))
		return
	}

	if action.GameCode != nil && !validate.IsGameCode(*action.GameCode) {
		conn.Send(message.NewErrorf("Invalid game code '%s'", *action.GameCode))
		return
	}

	h.set.idle.Cancel()

	// First pass under the lock: conflict checks and reclaim. Loading from
	// the store is I/O and happens outside the lock.
	var gameCode string
	var needsLoad bool

	h.set.gamesLock.Lock()
	if action.GameCode != nil {
		gameCode = *action.GameCode
	} else {
		gameCode = h.set.generateCode()
	}

	if existing, ok := h.set.Get(gameCode); ok {
		switch {
		case existing.HasHost():
			h.set.gamesLock.Unlock()
			logger.Info("cannot create/reclaim game %s: host already connected", gameCode)
			conn.Send(message.NewErrorf("Game '%s' already has an active host", gameCode))
			return
		case existing.HostUserID != auth.UserID:
			h.set.gamesLock.Unlock()
			logger.Info("user %s tried to claim game %s owned by another host", auth.UserID, gameCode)
			conn.Send(message.NewError("game code already exists"))
			return
		default:
			logger.Info("host reclaiming existing game: %s", gameCode)
			existing.SetHostConn(conn)
			sends := planHostState(existing)
			h.set.gamesLock.Unlock()
			deliver(sends)
			h.hostLoop(conn, auth.UserID, gameCode)
			return
		}
	}
	h.set.gamesLock.Unlock()
	needsLoad = action.GameCode != nil

	var g *Game
	if needsLoad {
		snapshot, err := h.set.store.LoadGame(auth.UserID, gameCode)
		if err != nil {
			logger.Warn("failed to load game %s for user %s: %s", gameCode, auth.UserID, err)
			conn.Send(message.NewError(err.Error()))
			return
		}
		if snapshot != nil {
			state := &message.GameState{}
			if err := json.Unmarshal(snapshot, state); err != nil {
				logger.Warn("failed to decode snapshot for game %s: %s", gameCode, err)
				conn.Send(message.NewError(trivia.ErrSnapshotIncompatible.Error()))
				return
			}
			logger.Info("restored game %s from saved state", gameCode)
			g = RestoreGame(state, auth.UserID, conn)
		}
	}
	if g == nil {
		g = NewGame(gameCode, auth.UserID, conn)
		logger.Info("game created: %s", gameCode)
	}

	h.set.gamesLock.Lock()
	if _, ok := h.set.Get(gameCode); ok {
		// Another connection raced us onto the same code while we were
		// loading. Treat it like the conflict it is.
		h.set.gamesLock.Unlock()
		conn.Send(message.NewErrorf("Game '%s' already has an active host", gameCode))
		return
	}
	h.set.Insert(g)
	sends := planHostState(g)
	h.set.gamesLock.Unlock()
	deliver(sends)

	h.hostLoop(conn, auth.UserID, gameCode)
}

// hostLoop reads host actions until the connection dies, then clears the
// host channel and schedules a final snapshot save.
func (h *handler) hostLoop(conn *Conn, userID string, gameCode string) {
	for {
		text, err := conn.ReadText()
		if err != nil {
			break
		}
		if text == "" {
			logger.Warn("received empty message")
			continue
		}
		h.processHostMessage(conn, userID, gameCode, text)
	}

	logger.Info("host disconnected from game %s, clearing host channel", gameCode)
	var snapshot []byte
	h.set.gamesLock.Lock()
	if g, ok := h.set.Get(gameCode); ok {
		g.ClearHostConn()
		snapshot = encodeSnapshot(g)
	} else {
		logger.Error("game %s not found when host disconnected", gameCode)
	}
	h.set.gamesLock.Unlock()

	if snapshot != nil {
		go func() {
			if err := h.set.store.SaveGame(userID, gameCode, snapshot); err != nil {
				logger.Warn("failed to save game %s on host disconnect: %s", gameCode, err)
			}
		}()
	}
}

// hostActionResult is what one host action produced under the lock: the
// messages to send after release, and whether to persist a snapshot.
type hostActionResult struct {
	sends    []outbound
	persist  bool
	snapshot []byte
}

func (h *handler) processHostMessage(conn *Conn, userID string, gameCode string, text string) {
	// Parse before taking the lock.
	decoded, err := message.DecodeClientMessage([]byte(text))
	if err != nil {
		logger.Warn("failed to parse host message: %s", err)
		conn.Send(message.NewError("Server error: Failed to parse message"))
		return
	}

	h.set.gamesLock.Lock()
	g, ok := h.set.Get(gameCode)
	if !ok {
		h.set.gamesLock.Unlock()
		logger.Error("game %s not found while processing host message", gameCode)
		return
	}
	result := h.processHostAction(decoded, g)
	if result.persist {
		result.snapshot = encodeSnapshot(g)
	}
	h.set.gamesLock.Unlock()

	deliver(result.sends)

	if result.persist && result.snapshot != nil {
		if err := h.set.store.SaveGame(userID, gameCode, result.snapshot); err != nil {
			logger.Warn("failed to save game %s: %s", gameCode, err)
			conn.Send(message.NewErrorf("Failed to save game: %s", err))
		}
	}
}

// processHostAction mutates the game under the set lock and returns the
// fan-out plan. It must not block or perform I/O.
func (h *handler) processHostAction(decoded interface{}, g *Game) hostActionResult {
	errorToHost := func(msg *message.ServerMessage) hostActionResult {
		if g.hostConn == nil {
			return hostActionResult{}
		}
		return hostActionResult{sends: []outbound{{conn: g.hostConn, data: message.MustEncodeBytes(msg)}}}
	}

	switch action := decoded.(type) {
	case *message.CreateGame:
		return errorToHost(message.NewError("Game already created"))

	case *message.StartTimer:
		g.StartTimer(h.set)
		return hostActionResult{sends: planStateBroadcast(g, true)}

	case *message.PauseTimer:
		g.StopTimer()
		return hostActionResult{sends: planStateBroadcast(g, true)}

	case *message.ResetTimer:
		g.ResetTimer()
		return hostActionResult{sends: planStateBroadcast(g, true)}

	case *message.NextQuestion:
		g.NextQuestion()
		return hostActionResult{sends: planStateBroadcast(g, true), persist: true}

	case *message.PrevQuestion:
		if err := g.PrevQuestion(); err != nil {
			return errorToHost(message.NewError(err.Error()))
		}
		return hostActionResult{sends: planStateBroadcast(g, true), persist: true}

	case *message.ScoreAnswer:
		if !g.ScoreAnswer(action.QuestionNumber, action.TeamName, action.Score) {
			return errorToHost(message.NewErrorf("Failed to score answer for team '%s'", action.TeamName))
		}
		return hostActionResult{sends: planStateBroadcast(g, true)}

	case *message.OverrideTeamScore:
		if !g.OverrideTeamScore(action.TeamName, action.OverridePoints) {
			return errorToHost(message.NewErrorf("Team '%s' not found", action.TeamName))
		}
		return hostActionResult{sends: planStateBroadcast(g, true)}

	case *message.UpdateGameSettings:
		g.UpdateGameSettings(action.GameSettings)
		return hostActionResult{sends: planStateBroadcast(g, true)}

	case *message.UpdateQuestionSettings:
		err := g.UpdateQuestionSettings(
			action.QuestionNumber,
			action.TimerDuration,
			action.QuestionPoints,
			action.BonusIncrement,
			action.QuestionType,
			action.SpeedBonusEnabled,
		)
		if err != nil {
			return errorToHost(message.NewError(err.Error()))
		}
		return hostActionResult{sends: planStateBroadcast(g, true)}

	case *message.UpdateTypeSpecificSettings:
		if err := g.UpdateTypeSpecificSettings(action.QuestionNumber, action.QuestionConfig); err != nil {
			return errorToHost(message.NewError(err.Error()))
		}
		return hostActionResult{sends: planStateBroadcast(g, true)}
	}

	logger.Warn("got unexpected message type when host message expected")
	return errorToHost(message.NewError("Unexpected message type: expected Host message"))
}

// encodeSnapshot serializes the host view for persistence. Must be called
// while holding the set lock.
func encodeSnapshot(g *Game) []byte {
	snapshot, err := json.Marshal(g.HostView())
	if err != nil {
		logger.Error("failed to encode snapshot for game %s: %s", g.Code, err)
		return nil
	}
	return snapshot
}
