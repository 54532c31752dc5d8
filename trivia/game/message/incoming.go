package message

import (
	"github.com/jaredblack/trivia-wizard-2/trivia"
)

// incoming action tags:
const (
	tagCreateGame                 = "createGame"
	tagStartTimer                 = "startTimer"
	tagPauseTimer                 = "pauseTimer"
	tagResetTimer                 = "resetTimer"
	tagNextQuestion               = "nextQuestion"
	tagPrevQuestion               = "prevQuestion"
	tagScoreAnswer                = "scoreAnswer"
	tagOverrideTeamScore          = "overrideTeamScore"
	tagUpdateGameSettings         = "updateGameSettings"
	tagUpdateQuestionSettings     = "updateQuestionSettings"
	tagUpdateTypeSpecificSettings = "updateTypeSpecificSettings"

	tagValidateJoin = "validateJoin"
	tagJoinGame     = "joinGame"
	tagSubmitAnswer = "submitAnswer"

	tagWatchGame = "watchGame"
)

// CreateGame is the first host action on a connection. A missing game code
// asks the server to generate one; a provided code reclaims or creates that
// specific game.
type CreateGame struct {
	GameCode *string `json:"gameCode,omitempty"`
}

// StartTimer opens submissions and starts the countdown on the current question.
type StartTimer struct{}

// PauseTimer stops the countdown and closes submissions, preserving the
// remaining time.
type PauseTimer struct{}

// ResetTimer stops the countdown and restores the current question's full duration.
type ResetTimer struct{}

// NextQuestion advances to the next question, appending a fresh one when
// moving past the last.
type NextQuestion struct{}

// PrevQuestion moves back one question. Fails on the first question.
type PrevQuestion struct{}

// ScoreAnswer writes a score onto one team's answer for a question.
type ScoreAnswer struct {
	QuestionNumber int              `json:"questionNumber"`
	TeamName       string           `json:"teamName"`
	Score          trivia.ScoreData `json:"score"`
}

// OverrideTeamScore writes a team's manual score adjustment.
type OverrideTeamScore struct {
	TeamName       string `json:"teamName"`
	OverridePoints int    `json:"overridePoints"`
}

// UpdateGameSettings replaces the game-wide defaults.
type UpdateGameSettings struct {
	trivia.GameSettings
}

// UpdateQuestionSettings edits one question's settings. Rejected once the
// question has answers.
type UpdateQuestionSettings struct {
	QuestionNumber    int                 `json:"questionNumber"`
	TimerDuration     int                 `json:"timerDuration"`
	QuestionPoints    int                 `json:"questionPoints"`
	BonusIncrement    int                 `json:"bonusIncrement"`
	QuestionType      trivia.QuestionKind `json:"questionType"`
	SpeedBonusEnabled bool                `json:"speedBonusEnabled"`
}

// UpdateTypeSpecificSettings replaces one question's kind-specific config.
// The config's kind must match the question's kind.
type UpdateTypeSpecificSettings struct {
	QuestionNumber int                   `json:"questionNumber"`
	QuestionConfig trivia.QuestionConfig `json:"questionConfig"`
}

// ValidateJoin is the first team action on a connection: it checks the game
// code and whether the team name is free, taken, or reclaimable.
type ValidateJoin struct {
	TeamName string `json:"teamName"`
	GameCode string `json:"gameCode"`
}

// JoinGame registers a new team after a successful ValidateJoin.
type JoinGame struct {
	TeamName    string   `json:"teamName"`
	GameCode    string   `json:"gameCode"`
	ColorHex    string   `json:"colorHex"`
	ColorName   string   `json:"colorName"`
	TeamMembers []string `json:"teamMembers"`
}

// SubmitAnswer submits the team's answer to the current question.
type SubmitAnswer struct {
	TeamName string `json:"teamName"`
	Answer   string `json:"answer"`
}

// WatchGame subscribes a read-only watcher to a game's scoreboard.
type WatchGame struct {
	GameCode string `json:"gameCode"`
}
