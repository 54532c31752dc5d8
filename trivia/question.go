package trivia

import (
	"encoding/json"
	"fmt"
)

// QuestionConfig is the kind-specific configuration attached to a question.
// It is a tagged union on the wire: {"type": "standard"},
// {"type": "multiAnswer"}, or {"type": "multipleChoice", "mcConfig": {...}}.
type QuestionConfig struct {
	Kind QuestionKind

	// Mc is present iff Kind is QuestionMultipleChoice.
	Mc *McConfig
}

// DefaultQuestionConfig returns the configuration a question receives when
// it is created with, or switched to, the given kind.
func DefaultQuestionConfig(kind QuestionKind, mc McConfig) QuestionConfig {
	if kind == QuestionMultipleChoice {
		mcCopy := mc
		return QuestionConfig{Kind: kind, Mc: &mcCopy}
	}
	return QuestionConfig{Kind: kind}
}

type questionConfigJSON struct {
	Type     QuestionKind `json:"type"`
	McConfig *McConfig    `json:"mcConfig,omitempty"`
}

// MarshalJSON encodes the config with its "type" tag.
func (c QuestionConfig) MarshalJSON() ([]byte, error) {
	return json.Marshal(questionConfigJSON{Type: c.Kind, McConfig: c.Mc})
}

// UnmarshalJSON decodes a tagged config object.
func (c *QuestionConfig) UnmarshalJSON(data []byte) error {
	var raw questionConfigJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if !raw.Type.Valid() {
		return fmt.Errorf("trivia: unknown question config type '%s'", raw.Type)
	}
	if raw.Type == QuestionMultipleChoice && raw.McConfig == nil {
		return fmt.Errorf("trivia: multiple choice config requires mcConfig")
	}
	if raw.Type != QuestionMultipleChoice {
		raw.McConfig = nil
	}
	c.Kind = raw.Type
	c.Mc = raw.McConfig
	return nil
}

// AnswerContent is a team's submitted answer, shaped by the kind of the
// question it was submitted to. Tagged union on the wire like QuestionConfig.
type AnswerContent struct {
	Kind QuestionKind

	// AnswerText is the free-form answer for standard questions.
	AnswerText string

	// Selected is the chosen label for multiple choice questions.
	Selected string

	// AnswerTexts are the answers for multi-answer questions.
	AnswerTexts []string
}

type answerContentJSON struct {
	Type        QuestionKind `json:"type"`
	AnswerText  *string      `json:"answerText,omitempty"`
	Selected    *string      `json:"selected,omitempty"`
	AnswerTexts []string     `json:"answerTexts,omitempty"`
}

// MarshalJSON encodes the content with its "type" tag.
func (a AnswerContent) MarshalJSON() ([]byte, error) {
	raw := answerContentJSON{Type: a.Kind}
	switch a.Kind {
	case QuestionStandard:
		text := a.AnswerText
		raw.AnswerText = &text
	case QuestionMultipleChoice:
		selected := a.Selected
		raw.Selected = &selected
	case QuestionMultiAnswer:
		raw.AnswerTexts = a.AnswerTexts
	}
	return json.Marshal(raw)
}

// UnmarshalJSON decodes a tagged content object.
func (a *AnswerContent) UnmarshalJSON(data []byte) error {
	var raw answerContentJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if !raw.Type.Valid() {
		return fmt.Errorf("trivia: unknown answer content type '%s'", raw.Type)
	}

	*a = AnswerContent{Kind: raw.Type}
	switch raw.Type {
	case QuestionStandard:
		if raw.AnswerText != nil {
			a.AnswerText = *raw.AnswerText
		}
	case QuestionMultipleChoice:
		if raw.Selected != nil {
			a.Selected = *raw.Selected
		}
	case QuestionMultiAnswer:
		a.AnswerTexts = raw.AnswerTexts
	}
	return nil
}
