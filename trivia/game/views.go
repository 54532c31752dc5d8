package game

import (
	"github.com/jaredblack/trivia-wizard-2/trivia/game/message"
)

// HostView builds the full authoritative projection sent to the host. The
// same shape is serialized as the persisted game snapshot.
func (g *Game) HostView() *message.GameState {
	teams := make([]message.TeamData, 0, len(g.Teams))
	for _, team := range g.Teams {
		teams = append(teams, teamData(team))
	}

	questions := make([]message.Question, 0, len(g.Questions))
	for _, question := range g.Questions {
		answers := make([]message.TeamQuestion, 0, len(question.Answers))
		for _, answer := range question.Answers {
			answers = append(answers, message.TeamQuestion{
				TeamName:       answer.TeamName,
				Score:          answer.Score,
				QuestionType:   answer.Kind,
				QuestionConfig: answer.Config,
				Content:        answer.Content,
			})
		}
		questions = append(questions, message.Question{
			TimerDuration:     question.TimerDuration,
			QuestionPoints:    question.QuestionPoints,
			BonusIncrement:    question.BonusIncrement,
			SpeedBonusEnabled: question.SpeedBonusEnabled,
			QuestionType:      question.Kind,
			QuestionConfig:    question.Config,
			Answers:           answers,
		})
	}

	return &message.GameState{
		GameCode:              g.Code,
		CurrentQuestionNumber: g.CurrentQuestionNumber,
		TimerRunning:          g.TimerRunning,
		SecondsRemaining:      g.SecondsRemaining,
		Teams:                 teams,
		Questions:             questions,
		Settings:              g.Settings,
	}
}

// TeamView builds a single team's filtered projection: the game header, the
// team's own record, and per question only that team's answer (content nil
// when it did not submit). Returns nil for an unknown team.
func (g *Game) TeamView(teamName string) *message.TeamGameState {
	team := g.FindTeam(teamName)
	if team == nil {
		return nil
	}

	questions := make([]message.TeamQuestion, 0, len(g.Questions))
	for _, question := range g.Questions {
		entry := message.TeamQuestion{
			TeamName:       team.Name,
			QuestionType:   question.Kind,
			QuestionConfig: question.Config,
		}
		if answer := findAnswer(question, team.Name); answer != nil {
			entry.Score = answer.Score
			entry.QuestionType = answer.Kind
			entry.QuestionConfig = answer.Config
			entry.Content = answer.Content
		}
		questions = append(questions, entry)
	}

	return &message.TeamGameState{
		GameCode:              g.Code,
		CurrentQuestionNumber: g.CurrentQuestionNumber,
		TimerRunning:          g.TimerRunning,
		SecondsRemaining:      g.SecondsRemaining,
		Team:                  teamData(team),
		Questions:             questions,
	}
}

// ScoreboardView builds the watcher projection: teams and totals only.
func (g *Game) ScoreboardView() *message.ScoreboardData {
	teams := make([]message.TeamData, 0, len(g.Teams))
	for _, team := range g.Teams {
		teams = append(teams, teamData(team))
	}
	return &message.ScoreboardData{
		GameCode:              g.Code,
		CurrentQuestionNumber: g.CurrentQuestionNumber,
		TimerRunning:          g.TimerRunning,
		SecondsRemaining:      g.SecondsRemaining,
		Teams:                 teams,
	}
}

func teamData(team *Team) message.TeamData {
	return message.TeamData{
		TeamName:    team.Name,
		TeamMembers: team.Members,
		TeamColor:   team.Color,
		Score:       team.Score,
		Connected:   team.Connected,
	}
}

// RestoreGame rebuilds a game from a persisted host-view snapshot. Teams
// come back disconnected with no channels and the timer stopped.
func RestoreGame(state *message.GameState, hostUserID string, hostConn *Conn) *Game {
	g := &Game{
		Code:                  state.GameCode,
		HostUserID:            hostUserID,
		CurrentQuestionNumber: state.CurrentQuestionNumber,
		TimerRunning:          false,
		SecondsRemaining:      state.SecondsRemaining,
		Teams:                 make([]*Team, 0, len(state.Teams)),
		Settings:              state.Settings,
		hostConn:              hostConn,
		watchers:              make(map[string]*Conn),
	}

	for _, teamState := range state.Teams {
		g.Teams = append(g.Teams, &Team{
			Name:      teamState.TeamName,
			Members:   teamState.TeamMembers,
			Color:     teamState.TeamColor,
			Score:     teamState.Score,
			Connected: false,
		})
	}

	g.Questions = make([]*Question, 0, len(state.Questions))
	for _, questionState := range state.Questions {
		question := &Question{
			TimerDuration:     questionState.TimerDuration,
			QuestionPoints:    questionState.QuestionPoints,
			BonusIncrement:    questionState.BonusIncrement,
			SpeedBonusEnabled: questionState.SpeedBonusEnabled,
			Kind:              questionState.QuestionType,
			Config:            questionState.QuestionConfig,
			Answers:           make([]*Answer, 0, len(questionState.Answers)),
		}
		for _, answerState := range questionState.Answers {
			question.Answers = append(question.Answers, &Answer{
				TeamName: answerState.TeamName,
				Score:    answerState.Score,
				Content:  answerState.Content,
				Kind:     answerState.QuestionType,
				Config:   answerState.QuestionConfig,
			})
		}
		g.Questions = append(g.Questions, question)
	}

	if len(g.Questions) == 0 {
		g.Questions = append(g.Questions, newQuestion(g.Settings))
	}
	if g.CurrentQuestionNumber < 1 || g.CurrentQuestionNumber > len(g.Questions) {
		g.CurrentQuestionNumber = 1
	}

	return g
}
