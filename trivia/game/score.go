package game

import (
	"strings"

	"github.com/jaredblack/trivia-wizard-2/trivia"
)

// answerKey normalizes an answer's content to the key used for equivalence
// scoring: trimmed, lowercased text. Multi-answer submissions have no key
// and never participate.
func answerKey(answer *Answer) (string, bool) {
	if answer.Content == nil {
		return "", false
	}
	switch answer.Kind {
	case trivia.QuestionStandard:
		return strings.TrimSpace(strings.ToLower(answer.Content.AnswerText)), true
	case trivia.QuestionMultipleChoice:
		return strings.TrimSpace(strings.ToLower(answer.Content.Selected)), true
	}
	return "", false
}

// autoScoreNewAnswer applies the submission-time equivalence rule: if any
// existing answer on the question is scored fully correct and normalizes to
// the same key, the new answer inherits its question and bonus points.
// Returns true if the new answer was scored.
func autoScoreNewAnswer(question *Question, answer *Answer) bool {
	fullPoints := question.QuestionPoints
	if fullPoints <= 0 {
		return false
	}

	key, ok := answerKey(answer)
	if !ok {
		return false
	}

	for _, other := range question.Answers {
		if other == answer || other.Score.QuestionPoints != fullPoints {
			continue
		}
		otherKey, ok := answerKey(other)
		if !ok || otherKey != key {
			continue
		}
		answer.Score.QuestionPoints = other.Score.QuestionPoints
		answer.Score.BonusPoints = other.Score.BonusPoints
		return true
	}
	return false
}

// propagateScore applies the manual-scoring equivalence rule: every other
// answer on the question whose key matches the target is brought to the
// target's question and bonus points. This propagates both marking correct
// and clearing back to zero.
func propagateScore(question *Question, target *Answer) {
	key, ok := answerKey(target)
	if !ok {
		return
	}

	for _, other := range question.Answers {
		if other == target {
			continue
		}
		otherKey, ok := answerKey(other)
		if !ok || otherKey != key {
			continue
		}
		if other.Score.QuestionPoints == target.Score.QuestionPoints &&
			other.Score.BonusPoints == target.Score.BonusPoints {
			continue
		}
		other.Score.QuestionPoints = target.Score.QuestionPoints
		other.Score.BonusPoints = target.Score.BonusPoints
	}
}

// recomputeSpeedBonuses rewrites every answer's speed bonus on the question
// from submission-order placement among correctly scored answers. Placement
// parameters come from the game settings at computation time.
func recomputeSpeedBonuses(g *Game, question *Question) {
	if !question.SpeedBonusEnabled {
		for _, answer := range question.Answers {
			answer.Score.SpeedBonusPoints = 0
		}
		return
	}

	numTeams := g.Settings.SpeedBonusNumTeams
	firstPlace := g.Settings.SpeedBonusFirstPlace

	place := 0
	for _, answer := range question.Answers {
		if answer.Score.QuestionPoints <= 0 {
			answer.Score.SpeedBonusPoints = 0
			continue
		}
		if place < numTeams && numTeams > 0 {
			answer.Score.SpeedBonusPoints = (firstPlace * (numTeams - place)) / numTeams
		} else {
			answer.Score.SpeedBonusPoints = 0
		}
		place++
	}
}

// recomputeTeamScores rewrites every team's derived score components from
// its answers across all questions. Override points are left alone.
func (g *Game) recomputeTeamScores() {
	for _, team := range g.Teams {
		key := normalizeTeamName(team.Name)
		var questionPoints, bonusPoints, speedBonusPoints int
		for _, question := range g.Questions {
			for _, answer := range question.Answers {
				if normalizeTeamName(answer.TeamName) != key {
					continue
				}
				questionPoints += answer.Score.QuestionPoints
				bonusPoints += answer.Score.BonusPoints
				speedBonusPoints += answer.Score.SpeedBonusPoints
			}
		}
		team.Score.QuestionPoints = questionPoints
		team.Score.BonusPoints = bonusPoints
		team.Score.SpeedBonusPoints = speedBonusPoints
	}
}
