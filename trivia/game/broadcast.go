package game

import (
	"github.com/jaredblack/trivia-wizard-2/trivia/game/message"
)

// outbound is one queued send: encoded bytes bound for one connection.
// Plans of these are computed under the set lock and delivered after it is
// released.
type outbound struct {
	conn *Conn
	data []byte
}

// planStateBroadcast builds the full-state fan-out for a game: GameState to
// the host, each team's TeamGameState to that team, and, when
// includeWatchers is set, ScoreboardData to every watcher. Must be called
// while holding the set lock.
func planStateBroadcast(g *Game, includeWatchers bool) []outbound {
	var sends []outbound

	if g.hostConn != nil {
		hostData := message.MustEncodeBytes(message.NewGameState(g.HostView()))
		sends = append(sends, outbound{conn: g.hostConn, data: hostData})
	}

	for _, team := range g.Teams {
		if team.conn == nil {
			continue
		}
		view := g.TeamView(team.Name)
		if view == nil {
			continue
		}
		sends = append(sends, outbound{conn: team.conn, data: message.MustEncodeBytes(message.NewTeamGameState(view))})
	}

	if includeWatchers && len(g.watchers) > 0 {
		data := message.MustEncodeBytes(message.NewScoreboardData(g.ScoreboardView()))
		for _, watcher := range g.watchers {
			sends = append(sends, outbound{conn: watcher, data: data})
		}
	}

	return sends
}

// planHostState builds just the host's GameState send. Must be called while
// holding the set lock.
func planHostState(g *Game) []outbound {
	if g.hostConn == nil {
		return nil
	}
	data := message.MustEncodeBytes(message.NewGameState(g.HostView()))
	return []outbound{{conn: g.hostConn, data: data}}
}

// planScoreboard builds the watcher fan-out. Must be called while holding
// the set lock.
func planScoreboard(g *Game) []outbound {
	if len(g.watchers) == 0 {
		return nil
	}
	data := message.MustEncodeBytes(message.NewScoreboardData(g.ScoreboardView()))
	var sends []outbound
	for _, watcher := range g.watchers {
		sends = append(sends, outbound{conn: watcher, data: data})
	}
	return sends
}

// deliver enqueues a plan's sends. Never called while holding the set lock.
func deliver(sends []outbound) {
	for _, send := range sends {
		send.conn.SendBytes(send.data)
	}
}
