package trivia

import (
	"errors"
)

// QuestionKind discriminates the kinds of questions a host can run.
type QuestionKind string

// question kinds:
const (
	QuestionStandard       = QuestionKind("standard")
	QuestionMultiAnswer    = QuestionKind("multiAnswer")
	QuestionMultipleChoice = QuestionKind("multipleChoice")
)

// Valid returns true if k is one of the known question kinds.
func (k QuestionKind) Valid() bool {
	switch k {
	case QuestionStandard, QuestionMultiAnswer, QuestionMultipleChoice:
		return true
	}
	return false
}

// ScoreData is the four component score vector attached to every answer and,
// in aggregate, to every team. Total is always the sum of the components.
type ScoreData struct {
	QuestionPoints   int `json:"questionPoints"`
	BonusPoints      int `json:"bonusPoints"`
	SpeedBonusPoints int `json:"speedBonusPoints"`
	OverridePoints   int `json:"overridePoints"`
}

// Total sums all four score components.
func (s ScoreData) Total() int {
	return s.QuestionPoints + s.BonusPoints + s.SpeedBonusPoints + s.OverridePoints
}

// TeamColor is the display color a team picked when joining.
type TeamColor struct {
	HexCode string `json:"hexCode"`
	Name    string `json:"name"`
}

// McConfig holds the settings specific to multiple choice questions.
type McConfig struct {
	// Choices are the selectable choice labels, in display order.
	Choices []string `json:"choices"`
}

// DefaultMcConfig returns the multiple choice configuration applied to
// questions that are switched to multiple choice without further setup.
func DefaultMcConfig() McConfig {
	return McConfig{Choices: []string{"A", "B", "C", "D"}}
}

// GameSettings are the game-wide defaults applied to newly created questions
// and to questions that nobody has answered yet.
type GameSettings struct {
	DefaultTimerDuration   int          `json:"defaultTimerDuration"`
	DefaultQuestionPoints  int          `json:"defaultQuestionPoints"`
	DefaultBonusIncrement  int          `json:"defaultBonusIncrement"`
	DefaultQuestionType    QuestionKind `json:"defaultQuestionType"`
	DefaultMcConfig        McConfig     `json:"defaultMcConfig"`
	SpeedBonusEnabled      bool         `json:"speedBonusEnabled"`
	SpeedBonusNumTeams     int          `json:"speedBonusNumTeams"`
	SpeedBonusFirstPlace   int          `json:"speedBonusFirstPlacePoints"`
}

// DefaultGameSettings returns the settings a brand new game starts with.
func DefaultGameSettings() GameSettings {
	return GameSettings{
		DefaultTimerDuration:  30,
		DefaultQuestionPoints: 50,
		DefaultBonusIncrement: 5,
		DefaultQuestionType:   QuestionStandard,
		DefaultMcConfig:       DefaultMcConfig(),
		SpeedBonusEnabled:     false,
		SpeedBonusNumTeams:    2,
		SpeedBonusFirstPlace:  10,
	}
}

// AuthResult is the identity extracted from a validated connection token.
type AuthResult struct {
	UserID string
	IsHost bool
}

// A TokenValidator checks a bearer token presented during the websocket
// handshake and resolves it to a user identity.
type TokenValidator interface {
	// Validate returns the identity carried by the token, or an error if the
	// token is malformed, expired, or otherwise untrusted.
	Validate(token string) (*AuthResult, error)
}

// A GameStore durably persists serialized host-view snapshots of games,
// keyed by the owning user and the game code.
type GameStore interface {
	// SaveGame stores a snapshot, replacing any previous one for the key.
	SaveGame(userID string, gameCode string, snapshot []byte) error

	// LoadGame returns the stored snapshot, or (nil, nil) if there is none.
	LoadGame(userID string, gameCode string) ([]byte, error)
}

// ErrTokenInvalid is returned by a token validator when a provided token has
// an invalid format or fails verification.
var ErrTokenInvalid = errors.New("malformed or unverifiable token")

// ErrSnapshotIncompatible is reported to the host when a stored snapshot
// exists but can no longer be decoded by this server version.
var ErrSnapshotIncompatible = errors.New("this saved game is no longer compatible with the current server version")
