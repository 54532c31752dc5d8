package game

import (
	"github.com/jaredblack/trivia-wizard-2/trivia/game/message"
)

// watcherEntry subscribes a read-only scoreboard watcher. Watchers send
// nothing after the initial WatchGame; incoming frames are drained and
// ignored until the connection dies.
func (h *handler) watcherEntry(conn *Conn, action *message.WatchGame) {
	h.set.gamesLock.Lock()
	g, ok := h.set.Get(action.GameCode)
	if !ok {
		h.set.gamesLock.Unlock()
		logger.Info("watcher tried to connect to non-existent game %s", action.GameCode)
		conn.Send(message.NewErrorf("Game code %s not found", action.GameCode))
		return
	}

	logger.Info("watcher %s connected to game %s", conn.ID, g.Code)
	g.AddWatcher(conn.ID, conn)
	data := message.MustEncodeBytes(message.NewScoreboardData(g.ScoreboardView()))
	h.set.gamesLock.Unlock()

	conn.SendBytes(data)

	for {
		text, err := conn.ReadText()
		if err != nil {
			break
		}
		logger.Debug("ignoring message from watcher %s: %s", conn.ID, text)
	}

	logger.Info("watcher %s disconnected from game %s", conn.ID, action.GameCode)
	h.set.gamesLock.Lock()
	if g, ok := h.set.Get(action.GameCode); ok {
		g.RemoveWatcher(conn.ID)
	}
	h.set.gamesLock.Unlock()
}
