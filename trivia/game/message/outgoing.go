package message

import (
	"encoding/json"
	"fmt"

	"github.com/jaredblack/trivia-wizard-2/trivia"
	"github.com/jaredblack/trivia-wizard-2/trivia/null"
)

// outgoing message tags:
const (
	TagGameState      = "gameState"
	TagTeamGameState  = "teamGameState"
	TagScoreboardData = "scoreboardData"
	TagJoinValidated  = "joinValidated"
	TagTimerTick      = "timerTick"
	TagError          = "error"
)

// ServerMessage is the envelope for every server-to-client frame. At most
// one payload field is populated, selected by Type.
type ServerMessage struct {
	Type             string          `json:"type"`
	State            json.RawMessage `json:"state,omitempty"`
	Data             json.RawMessage `json:"data,omitempty"`
	SecondsRemaining *int            `json:"secondsRemaining,omitempty"`
	Message          string          `json:"message,omitempty"`
}

// TeamData is one team as seen by the host and the scoreboard.
type TeamData struct {
	TeamName    string           `json:"teamName"`
	TeamMembers []string         `json:"teamMembers"`
	TeamColor   trivia.TeamColor `json:"teamColor"`
	Score       trivia.ScoreData `json:"score"`
	Connected   bool             `json:"connected"`
}

// TeamQuestion is one team's submission and score on one question. Content
// is null when the team did not submit.
type TeamQuestion struct {
	TeamName       string                `json:"teamName"`
	Score          trivia.ScoreData      `json:"score"`
	QuestionType   trivia.QuestionKind   `json:"questionType"`
	QuestionConfig trivia.QuestionConfig `json:"questionConfig"`
	Content        *trivia.AnswerContent `json:"content"`
}

// Question is one question slot with its settings and every submitted
// answer, in submission order.
type Question struct {
	TimerDuration     int                   `json:"timerDuration"`
	QuestionPoints    int                   `json:"questionPoints"`
	BonusIncrement    int                   `json:"bonusIncrement"`
	SpeedBonusEnabled bool                  `json:"speedBonusEnabled"`
	QuestionType      trivia.QuestionKind   `json:"questionType"`
	QuestionConfig    trivia.QuestionConfig `json:"questionConfig"`
	Answers           []TeamQuestion        `json:"answers"`
}

// GameState is the full authoritative view sent to the host, and the shape
// persisted as the game snapshot.
type GameState struct {
	GameCode              string              `json:"gameCode"`
	CurrentQuestionNumber int                 `json:"currentQuestionNumber"`
	TimerRunning          bool                `json:"timerRunning"`
	SecondsRemaining      null.Int64          `json:"secondsRemaining"`
	Teams                 []TeamData          `json:"teams"`
	Questions             []Question          `json:"questions"`
	Settings              trivia.GameSettings `json:"settings"`
}

// TeamGameState is a single team's filtered view: the same game header, but
// only that team's record and answers.
type TeamGameState struct {
	GameCode              string         `json:"gameCode"`
	CurrentQuestionNumber int            `json:"currentQuestionNumber"`
	TimerRunning          bool           `json:"timerRunning"`
	SecondsRemaining      null.Int64     `json:"secondsRemaining"`
	Team                  TeamData       `json:"team"`
	Questions             []TeamQuestion `json:"questions"`
}

// ScoreboardData is the minimal projection for watchers: teams and totals,
// no answers.
type ScoreboardData struct {
	GameCode              string     `json:"gameCode"`
	CurrentQuestionNumber int        `json:"currentQuestionNumber"`
	TimerRunning          bool       `json:"timerRunning"`
	SecondsRemaining      null.Int64 `json:"secondsRemaining"`
	Teams                 []TeamData `json:"teams"`
}

func mustRaw(payload interface{}) json.RawMessage {
	b, err := json.Marshal(payload)
	if err != nil {
		panic(fmt.Sprintf("message: attempted to encode unencodeable payload: %s", err))
	}
	return b
}

// NewGameState wraps a host view into a server message.
func NewGameState(state *GameState) *ServerMessage {
	return &ServerMessage{Type: TagGameState, State: mustRaw(state)}
}

// NewTeamGameState wraps a team view into a server message.
func NewTeamGameState(state *TeamGameState) *ServerMessage {
	return &ServerMessage{Type: TagTeamGameState, State: mustRaw(state)}
}

// NewScoreboardData wraps a scoreboard view into a server message.
func NewScoreboardData(data *ScoreboardData) *ServerMessage {
	return &ServerMessage{Type: TagScoreboardData, Data: mustRaw(data)}
}

// NewJoinValidated builds the reply to a successful ValidateJoin for a new
// team name.
func NewJoinValidated() *ServerMessage {
	return &ServerMessage{Type: TagJoinValidated}
}

// NewTimerTick builds a countdown tick message.
func NewTimerTick(secondsRemaining int) *ServerMessage {
	return &ServerMessage{Type: TagTimerTick, SecondsRemaining: &secondsRemaining}
}

// NewError builds a user-visible error message.
func NewError(text string) *ServerMessage {
	return &ServerMessage{Type: TagError, Message: text}
}

// NewErrorf builds a user-visible error message with formatting.
func NewErrorf(format string, values ...interface{}) *ServerMessage {
	return NewError(fmt.Sprintf(format, values...))
}

// MustEncodeBytes encodes a server message as bytes and panics if an error occurs.
func MustEncodeBytes(msg *ServerMessage) []byte {
	b, err := json.Marshal(msg)
	if err != nil {
		panic(fmt.Sprintf("message: error occurred while encoding server message: %s", err))
	}
	return b
}
