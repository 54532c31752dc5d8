package game

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jaredblack/trivia-wizard-2/trivia"
	"github.com/jaredblack/trivia-wizard-2/trivia/null"
	"github.com/jaredblack/trivia-wizard-2/wlog"
)

var logger = wlog.NewPrefixLogger("game")

// ErrGameNotFound is returned when trying to use a game code that does not exist.
var ErrGameNotFound = errors.New("no game with the given code was found")

// Team is a participating team. The record outlives the team's connection:
// a disconnect only clears the send channel and the connected flag.
type Team struct {
	// Name preserves the case the team joined with. All lookups go through
	// the lowercased name.
	Name      string
	Members   []string
	Color     trivia.TeamColor
	Score     trivia.ScoreData
	Connected bool

	conn *Conn
}

// Answer is one team's submission on one question, kept in submission order
// on the question. The question kind and config are snapshotted at
// submission time.
type Answer struct {
	TeamName string
	Score    trivia.ScoreData
	Content  *trivia.AnswerContent
	Kind     trivia.QuestionKind
	Config   trivia.QuestionConfig
}

// Question is one question slot: per-question settings plus the answers
// submitted so far. A question with any answers is locked for settings edits.
type Question struct {
	TimerDuration     int
	QuestionPoints    int
	BonusIncrement    int
	SpeedBonusEnabled bool
	Kind              trivia.QuestionKind
	Config            trivia.QuestionConfig
	Answers           []*Answer
}

// Locked returns true once the question has answers and its settings can no
// longer be edited.
func (q *Question) Locked() bool {
	return len(q.Answers) > 0
}

// Game is the authoritative in-memory state of one running game. Every
// access happens while holding the owning GameSet's lock.
type Game struct {
	Code       string
	HostUserID string

	Questions             []*Question
	CurrentQuestionNumber int

	TimerRunning     bool
	SecondsRemaining null.Int64

	Teams    []*Team
	Settings trivia.GameSettings

	hostConn *Conn
	watchers map[string]*Conn

	// timerStop is non-nil exactly while a tick task is running; closing it
	// cancels the task.
	timerStop chan struct{}
}

// NewGame creates a game with a single empty question built from the
// default settings.
func NewGame(code string, hostUserID string, hostConn *Conn) *Game {
	settings := trivia.DefaultGameSettings()
	g := &Game{
		Code:                  code,
		HostUserID:            hostUserID,
		Questions:             []*Question{newQuestion(settings)},
		CurrentQuestionNumber: 1,
		TimerRunning:          false,
		SecondsRemaining:      null.NewInt64(int64(settings.DefaultTimerDuration)),
		Teams:                 make([]*Team, 0),
		Settings:              settings,
		hostConn:              hostConn,
		watchers:              make(map[string]*Conn),
	}
	return g
}

func newQuestion(settings trivia.GameSettings) *Question {
	return &Question{
		TimerDuration:     settings.DefaultTimerDuration,
		QuestionPoints:    settings.DefaultQuestionPoints,
		BonusIncrement:    settings.DefaultBonusIncrement,
		SpeedBonusEnabled: settings.SpeedBonusEnabled,
		Kind:              settings.DefaultQuestionType,
		Config:            trivia.DefaultQuestionConfig(settings.DefaultQuestionType, settings.DefaultMcConfig),
		Answers:           make([]*Answer, 0),
	}
}

func normalizeTeamName(name string) string {
	return strings.ToLower(name)
}

// SetHostConn attaches the host send channel. Only one host can be attached
// at a time; the caller checks HasHost first.
func (g *Game) SetHostConn(conn *Conn) {
	g.hostConn = conn
}

// ClearHostConn detaches the host send channel.
func (g *Game) ClearHostConn() {
	g.hostConn = nil
}

// HasHost returns true if a host connection is currently attached.
func (g *Game) HasHost() bool {
	return g.hostConn != nil
}

// FindTeam returns the team with the given name, matched case-insensitively.
func (g *Game) FindTeam(name string) *Team {
	key := normalizeTeamName(name)
	for _, team := range g.Teams {
		if normalizeTeamName(team.Name) == key {
			return team
		}
	}
	return nil
}

// AddTeam registers a team. If a team with the same name already exists the
// call is treated as a reconnect: color and members are refreshed and the
// send channel replaced.
func (g *Game) AddTeam(name string, conn *Conn, color trivia.TeamColor, members []string) {
	if team := g.FindTeam(name); team != nil {
		team.Color = color
		team.Members = members
		team.Connected = true
		team.conn = conn
		return
	}

	g.Teams = append(g.Teams, &Team{
		Name:      name,
		Members:   members,
		Color:     color,
		Connected: true,
		conn:      conn,
	})
}

// RejoinTeam reattaches a channel to an existing team. Returns false if no
// team with the name exists.
func (g *Game) RejoinTeam(name string, conn *Conn) bool {
	team := g.FindTeam(name)
	if team == nil {
		return false
	}
	team.Connected = true
	team.conn = conn
	return true
}

// SetTeamConnected flips a team's connected flag.
func (g *Game) SetTeamConnected(name string, connected bool) {
	if team := g.FindTeam(name); team != nil {
		team.Connected = connected
	}
}

// ClearTeamConn drops a team's send channel without removing the team.
func (g *Game) ClearTeamConn(name string) {
	if team := g.FindTeam(name); team != nil {
		team.conn = nil
	}
}

// AddWatcher registers a watcher send channel under its connection id.
func (g *Game) AddWatcher(id string, conn *Conn) {
	g.watchers[id] = conn
}

// RemoveWatcher drops a watcher send channel.
func (g *Game) RemoveWatcher(id string) {
	delete(g.watchers, id)
}

// CurrentQuestion returns the question the game is currently on.
func (g *Game) CurrentQuestion() *Question {
	return g.Questions[g.CurrentQuestionNumber-1]
}

// QuestionAt returns the 1-based numbered question, or nil when out of range.
func (g *Game) QuestionAt(number int) *Question {
	if number < 1 || number > len(g.Questions) {
		return nil
	}
	return g.Questions[number-1]
}

// NextQuestion stops the timer and advances, appending a fresh question
// built from the current settings when moving past the last one.
func (g *Game) NextQuestion() {
	g.StopTimer()
	g.CurrentQuestionNumber++
	if g.CurrentQuestionNumber > len(g.Questions) {
		g.Questions = append(g.Questions, newQuestion(g.Settings))
	}
	g.SecondsRemaining = null.NewInt64(int64(g.CurrentQuestion().TimerDuration))
}

// PrevQuestion stops the timer and moves back one question.
func (g *Game) PrevQuestion() error {
	if g.CurrentQuestionNumber <= 1 {
		return errors.New("Cannot go back from the first question")
	}
	g.StopTimer()
	g.CurrentQuestionNumber--
	g.SecondsRemaining = null.NewInt64(int64(g.CurrentQuestion().TimerDuration))
	return nil
}

// AddAnswer records a team's submission on the current question and applies
// the auto-scoring rule. The caller has already verified that submissions
// are open. Returns false if the team is unknown, already answered, or the
// question kind does not accept single submissions.
func (g *Game) AddAnswer(teamName string, text string) bool {
	team := g.FindTeam(teamName)
	if team == nil {
		return false
	}

	question := g.CurrentQuestion()
	if question.Kind == trivia.QuestionMultiAnswer {
		return false
	}

	key := normalizeTeamName(team.Name)
	for _, answer := range question.Answers {
		if normalizeTeamName(answer.TeamName) == key {
			return false
		}
	}

	content := &trivia.AnswerContent{Kind: question.Kind}
	switch question.Kind {
	case trivia.QuestionStandard:
		content.AnswerText = text
	case trivia.QuestionMultipleChoice:
		content.Selected = text
	}

	answer := &Answer{
		TeamName: team.Name,
		Content:  content,
		Kind:     question.Kind,
		Config:   question.Config,
	}
	question.Answers = append(question.Answers, answer)

	if autoScoreNewAnswer(question, answer) {
		recomputeSpeedBonuses(g, question)
		g.recomputeTeamScores()
	}
	return true
}

// ScoreAnswer writes question and bonus points onto a team's answer, then
// propagates the same score to every matching answer on the question.
// Returns false if the question or answer does not exist.
func (g *Game) ScoreAnswer(questionNumber int, teamName string, score trivia.ScoreData) bool {
	question := g.QuestionAt(questionNumber)
	if question == nil {
		return false
	}

	target := findAnswer(question, teamName)
	if target == nil {
		return false
	}

	target.Score.QuestionPoints = score.QuestionPoints
	target.Score.BonusPoints = score.BonusPoints

	propagateScore(question, target)
	recomputeSpeedBonuses(g, question)
	g.recomputeTeamScores()
	return true
}

// ClearAnswerScore zeroes a team's answer score, clearing matching answers
// along with it.
func (g *Game) ClearAnswerScore(questionNumber int, teamName string) bool {
	return g.ScoreAnswer(questionNumber, teamName, trivia.ScoreData{})
}

// OverrideTeamScore writes a team's manual adjustment. The other score
// components are untouched.
func (g *Game) OverrideTeamScore(teamName string, overridePoints int) bool {
	team := g.FindTeam(teamName)
	if team == nil {
		return false
	}
	team.Score.OverridePoints = overridePoints
	return true
}

// UpdateGameSettings replaces the game settings and pushes the new
// per-question defaults onto every question that has no answers yet.
func (g *Game) UpdateGameSettings(settings trivia.GameSettings) {
	g.Settings = settings

	for _, question := range g.Questions {
		if question.Locked() {
			continue
		}
		question.TimerDuration = settings.DefaultTimerDuration
		question.QuestionPoints = settings.DefaultQuestionPoints
		question.BonusIncrement = settings.DefaultBonusIncrement
		question.SpeedBonusEnabled = settings.SpeedBonusEnabled
		question.Kind = settings.DefaultQuestionType
		question.Config = trivia.DefaultQuestionConfig(settings.DefaultQuestionType, settings.DefaultMcConfig)
	}

	current := g.CurrentQuestion()
	if !current.Locked() && !g.TimerRunning {
		g.SecondsRemaining = null.NewInt64(int64(current.TimerDuration))
	}
}

// UpdateQuestionSettings edits one question's settings. A question that has
// answers can no longer be edited.
func (g *Game) UpdateQuestionSettings(questionNumber int, timerDuration int, questionPoints int, bonusIncrement int, kind trivia.QuestionKind, speedBonusEnabled bool) error {
	question := g.QuestionAt(questionNumber)
	if question == nil {
		return fmt.Errorf("Question %d not found", questionNumber)
	}
	if question.Locked() {
		return errors.New("Cannot modify settings of a question that has answers")
	}

	if question.Kind != kind {
		question.Config = trivia.DefaultQuestionConfig(kind, g.Settings.DefaultMcConfig)
	}
	question.Kind = kind
	question.TimerDuration = timerDuration
	question.QuestionPoints = questionPoints
	question.BonusIncrement = bonusIncrement
	question.SpeedBonusEnabled = speedBonusEnabled

	if questionNumber == g.CurrentQuestionNumber && !g.TimerRunning {
		g.SecondsRemaining = null.NewInt64(int64(timerDuration))
	}
	return nil
}

// UpdateTypeSpecificSettings replaces one question's kind-specific config.
func (g *Game) UpdateTypeSpecificSettings(questionNumber int, config trivia.QuestionConfig) error {
	question := g.QuestionAt(questionNumber)
	if question == nil {
		return fmt.Errorf("Question %d not found", questionNumber)
	}
	if question.Locked() {
		return errors.New("Cannot modify settings of a question that has answers")
	}
	if question.Kind != config.Kind {
		return errors.New("Question config type does not match question type")
	}
	question.Config = config
	return nil
}

func findAnswer(question *Question, teamName string) *Answer {
	key := normalizeTeamName(teamName)
	for _, answer := range question.Answers {
		if normalizeTeamName(answer.TeamName) == key {
			return answer
		}
	}
	return nil
}
