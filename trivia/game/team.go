package game

import (
	"github.com/jaredblack/trivia-wizard-2/trivia"
	"github.com/jaredblack/trivia-wizard-2/trivia/game/message"
	"github.com/jaredblack/trivia-wizard-2/trivia/validate"
)

// teamEntry runs the two step join protocol. ValidateJoin either authorizes
// a rejoin immediately, or hands back JoinValidated and waits for the
// JoinGame that carries the team's color and roster.
func (h *handler) teamEntry(conn *Conn, action *message.ValidateJoin) {
	if !validate.IsTeamName(action.TeamName) {
		conn.Send(message.NewError("Invalid team name"))
		return
	}

	h.set.gamesLock.Lock()
	g, ok := h.set.Get(action.GameCode)
	if !ok {
		h.set.gamesLock.Unlock()
		logger.Info("team %s tried to join game %s, but it doesn't exist", action.TeamName, action.GameCode)
		conn.Send(message.NewErrorf("Game code %s not found", action.GameCode))
		return
	}

	team := g.FindTeam(action.TeamName)
	if team != nil && team.Connected {
		h.set.gamesLock.Unlock()
		conn.Send(message.NewError("Team name already in use"))
		return
	}

	if team != nil {
		// Known but disconnected team: this is a rejoin, no second message.
		logger.Info("team %s rejoining game %s", team.Name, g.Code)
		g.RejoinTeam(team.Name, conn)
		teamName := team.Name
		sends := []outbound{{conn: conn, data: message.MustEncodeBytes(message.NewTeamGameState(g.TeamView(teamName)))}}
		sends = append(sends, planHostState(g)...)
		sends = append(sends, planScoreboard(g)...)
		h.set.gamesLock.Unlock()
		deliver(sends)
		h.teamLoop(conn, action.GameCode, teamName)
		return
	}
	h.set.gamesLock.Unlock()

	conn.Send(message.NewJoinValidated())

	text, err := conn.ReadText()
	if err != nil {
		return
	}
	decoded, err := message.DecodeClientMessage([]byte(text))
	if err != nil {
		logger.Warn("failed to parse join message: %s", err)
		conn.Send(message.NewError("Server error: Failed to parse message"))
		return
	}
	join, ok := decoded.(*message.JoinGame)
	if !ok {
		conn.Send(message.NewError("Expected joinGame after validation"))
		return
	}

	h.set.gamesLock.Lock()
	g, ok = h.set.Get(join.GameCode)
	if !ok {
		h.set.gamesLock.Unlock()
		conn.Send(message.NewErrorf("Game code %s not found", join.GameCode))
		return
	}
	if existing := g.FindTeam(join.TeamName); existing != nil && existing.Connected {
		// Someone grabbed the name between validation and join.
		h.set.gamesLock.Unlock()
		conn.Send(message.NewError("Team name already in use"))
		return
	}

	logger.Info("team %s joined game %s", join.TeamName, g.Code)
	color := trivia.TeamColor{HexCode: join.ColorHex, Name: join.ColorName}
	g.AddTeam(join.TeamName, conn, color, join.TeamMembers)

	teamName := g.FindTeam(join.TeamName).Name
	sends := []outbound{{conn: conn, data: message.MustEncodeBytes(message.NewTeamGameState(g.TeamView(teamName)))}}
	sends = append(sends, planHostState(g)...)
	sends = append(sends, planScoreboard(g)...)
	h.set.gamesLock.Unlock()
	deliver(sends)

	h.teamLoop(conn, join.GameCode, teamName)
}

// teamLoop reads team actions until the connection dies, then marks the
// team disconnected and tells the host and the watchers.
func (h *handler) teamLoop(conn *Conn, gameCode string, teamName string) {
	for {
		text, err := conn.ReadText()
		if err != nil {
			break
		}
		if text == "" {
			logger.Warn("received empty message")
			continue
		}
		h.processTeamMessage(conn, gameCode, teamName, text)
	}

	logger.Info("team %s disconnected from game %s", teamName, gameCode)
	var sends []outbound
	h.set.gamesLock.Lock()
	if g, ok := h.set.Get(gameCode); ok {
		g.SetTeamConnected(teamName, false)
		g.ClearTeamConn(teamName)
		sends = append(sends, planHostState(g)...)
		sends = append(sends, planScoreboard(g)...)
	}
	h.set.gamesLock.Unlock()
	deliver(sends)
}

func (h *handler) processTeamMessage(conn *Conn, gameCode string, teamName string, text string) {
	// Parse before taking the lock.
	decoded, err := message.DecodeClientMessage([]byte(text))
	if err != nil {
		logger.Warn("failed to parse team message: %s", err)
		conn.Send(message.NewError("Server error: Failed to parse message"))
		return
	}

	h.set.gamesLock.Lock()
	g, ok := h.set.Get(gameCode)
	if !ok {
		h.set.gamesLock.Unlock()
		logger.Error("game %s not found while processing message from team %s", gameCode, teamName)
		return
	}
	sends := processTeamAction(decoded, g, conn, teamName)
	h.set.gamesLock.Unlock()

	deliver(sends)
}

// processTeamAction mutates the game under the set lock and returns the
// fan-out plan. It must not block or perform I/O.
func processTeamAction(decoded interface{}, g *Game, conn *Conn, teamName string) []outbound {
	errorToTeam := func(msg *message.ServerMessage) []outbound {
		logger.Warn("sending error response '%s' back to team %s", msg.Message, teamName)
		return []outbound{{conn: conn, data: message.MustEncodeBytes(msg)}}
	}

	switch action := decoded.(type) {
	case *message.ValidateJoin:
		return errorToTeam(message.NewError("Already validated"))

	case *message.JoinGame:
		return errorToTeam(message.NewError("Game already joined"))

	case *message.SubmitAnswer:
		// Submissions are open exactly while the timer runs. This check,
		// made under the lock, is the only gate.
		if !g.TimerRunning {
			return errorToTeam(message.NewError("Submissions are closed"))
		}
		if !g.AddAnswer(teamName, action.Answer) {
			return errorToTeam(message.NewError("Answer already submitted"))
		}
		// Auto-scoring may have changed other teams' scores, so everyone
		// gets a fresh view.
		return planStateBroadcast(g, true)
	}

	return errorToTeam(message.NewError("Unexpected message type: expected Team message"))
}
