package game

import (
	"time"

	"github.com/jaredblack/trivia-wizard-2/trivia/game/message"
	"github.com/jaredblack/trivia-wizard-2/trivia/null"
)

// tickPeriod is the wall-clock interval between countdown decrements.
const tickPeriod = time.Second

// StartTimer opens submissions and spawns the tick task. A timer that is
// already running is restarted. An expired or unset countdown is reloaded
// from the current question's duration. Must be called while holding the
// set lock.
func (g *Game) StartTimer(set *GameSet) {
	g.StopTimer()

	if !g.SecondsRemaining.Valid || g.SecondsRemaining.Int64 == 0 {
		g.SecondsRemaining = null.NewInt64(int64(g.CurrentQuestion().TimerDuration))
	}

	g.TimerRunning = true

	if g.SecondsRemaining.Int64 > 0 {
		stop := make(chan struct{})
		g.timerStop = stop
		go tickLoop(set, g.Code, stop)
	}
}

// StopTimer cancels the tick task and closes submissions. The remaining
// seconds are preserved. Must be called while holding the set lock.
func (g *Game) StopTimer() {
	if g.timerStop != nil {
		close(g.timerStop)
		g.timerStop = nil
	}
	g.TimerRunning = false
}

// ResetTimer stops the countdown and restores the current question's full
// duration. Must be called while holding the set lock.
func (g *Game) ResetTimer() {
	g.StopTimer()
	g.SecondsRemaining = null.NewInt64(int64(g.CurrentQuestion().TimerDuration))
}

// tickLoop decrements a game's countdown once per second. The task holds no
// reference to the game; it re-looks it up under the set lock on every tick
// so that cancellation, navigation, and pausing never race it.
func tickLoop(set *GameSet, gameCode string, stop chan struct{}) {
	ticker := time.NewTicker(tickPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
		}

		set.gamesLock.Lock()

		g, ok := set.games[gameCode]
		if !ok {
			set.gamesLock.Unlock()
			logger.Error("tried to tick game timer, but game %s no longer exists", gameCode)
			return
		}
		if g.timerStop != stop {
			// A newer timer task has replaced this one.
			set.gamesLock.Unlock()
			return
		}
		if !g.TimerRunning {
			set.gamesLock.Unlock()
			logger.Error("tried to tick game timer for %s, but timer is not running", gameCode)
			return
		}
		if !g.SecondsRemaining.Valid || g.SecondsRemaining.Int64 == 0 {
			set.gamesLock.Unlock()
			logger.Error("tried to tick game timer for %s, but no time remains", gameCode)
			return
		}

		remaining := g.SecondsRemaining.Int64 - 1
		g.SecondsRemaining = null.NewInt64(remaining)

		var sends []outbound
		expired := remaining == 0
		if expired {
			// Timer expired: submissions close and everyone gets the full
			// authoritative state, not just a tick.
			g.TimerRunning = false
			g.timerStop = nil
			sends = planStateBroadcast(g, false)
		} else {
			tick := message.MustEncodeBytes(message.NewTimerTick(int(remaining)))
			if g.hostConn != nil {
				sends = append(sends, outbound{conn: g.hostConn, data: tick})
			}
			for _, team := range g.Teams {
				if team.conn != nil {
					sends = append(sends, outbound{conn: team.conn, data: tick})
				}
			}
		}

		set.gamesLock.Unlock()

		deliver(sends)

		if expired {
			return
		}
	}
}
