// Package message defines the websocket wire protocol: tagged-union client
// actions grouped by role, and tagged server messages carrying game state
// projections.
package message

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrNoRole is returned when a client message selects none of the host,
// team, or watcher roles.
var ErrNoRole = errors.New("message: client message must carry a host, team, or watcher action")

type clientEnvelope struct {
	Host    *json.RawMessage `json:"host"`
	Team    *json.RawMessage `json:"team"`
	Watcher *json.RawMessage `json:"watcher"`
}

type actionTag struct {
	Type string `json:"type"`
}

// DecodeClientMessage decodes an incoming frame into one of the typed
// actions. The outer object selects the role; the inner object's "type" tag
// selects the action.
func DecodeClientMessage(data []byte) (interface{}, error) {
	envelope := clientEnvelope{}
	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil, err
	}

	switch {
	case envelope.Host != nil:
		return decodeHostAction(*envelope.Host)
	case envelope.Team != nil:
		return decodeTeamAction(*envelope.Team)
	case envelope.Watcher != nil:
		return decodeWatcherAction(*envelope.Watcher)
	}
	return nil, ErrNoRole
}

func decodeTagged(raw json.RawMessage, target interface{}) error {
	return json.Unmarshal(raw, target)
}

func decodeHostAction(raw json.RawMessage) (interface{}, error) {
	tag := actionTag{}
	if err := json.Unmarshal(raw, &tag); err != nil {
		return nil, err
	}

	var msg interface{}
	switch tag.Type {
	case tagCreateGame:
		msg = &CreateGame{}
	case tagStartTimer:
		msg = &StartTimer{}
	case tagPauseTimer:
		msg = &PauseTimer{}
	case tagResetTimer:
		msg = &ResetTimer{}
	case tagNextQuestion:
		msg = &NextQuestion{}
	case tagPrevQuestion:
		msg = &PrevQuestion{}
	case tagScoreAnswer:
		msg = &ScoreAnswer{}
	case tagOverrideTeamScore:
		msg = &OverrideTeamScore{}
	case tagUpdateGameSettings:
		msg = &UpdateGameSettings{}
	case tagUpdateQuestionSettings:
		msg = &UpdateQuestionSettings{}
	case tagUpdateTypeSpecificSettings:
		msg = &UpdateTypeSpecificSettings{}
	default:
		return nil, fmt.Errorf("message: unknown host action type '%s'", tag.Type)
	}
	if err := decodeTagged(raw, msg); err != nil {
		return nil, err
	}
	return msg, nil
}

func decodeTeamAction(raw json.RawMessage) (interface{}, error) {
	tag := actionTag{}
	if err := json.Unmarshal(raw, &tag); err != nil {
		return nil, err
	}

	var msg interface{}
	switch tag.Type {
	case tagValidateJoin:
		msg = &ValidateJoin{}
	case tagJoinGame:
		msg = &JoinGame{}
	case tagSubmitAnswer:
		msg = &SubmitAnswer{}
	default:
		return nil, fmt.Errorf("message: unknown team action type '%s'", tag.Type)
	}
	if err := decodeTagged(raw, msg); err != nil {
		return nil, err
	}
	return msg, nil
}

func decodeWatcherAction(raw json.RawMessage) (interface{}, error) {
	tag := actionTag{}
	if err := json.Unmarshal(raw, &tag); err != nil {
		return nil, err
	}

	var msg interface{}
	switch tag.Type {
	case tagWatchGame:
		msg = &WatchGame{}
	default:
		return nil, fmt.Errorf("message: unknown watcher action type '%s'", tag.Type)
	}
	if err := decodeTagged(raw, msg); err != nil {
		return nil, err
	}
	return msg, nil
}
