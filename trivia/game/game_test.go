package game

import (
	"testing"

	"github.com/jaredblack/trivia-wizard-2/trivia"
)

func newTestGame(teamNames ...string) *Game {
	g := NewGame("ABCD", "test-host-user", nil)
	for _, name := range teamNames {
		g.AddTeam(name, nil, trivia.TeamColor{HexCode: "#DC2626", Name: "Red"}, []string{"Test Player"})
	}
	return g
}

func scoreOf(t *testing.T, g *Game, questionNumber int, teamName string) trivia.ScoreData {
	t.Helper()
	question := g.QuestionAt(questionNumber)
	if question == nil {
		t.Fatalf("question %d does not exist", questionNumber)
	}
	answer := findAnswer(question, teamName)
	if answer == nil {
		t.Fatalf("no answer from team %s on question %d", teamName, questionNumber)
	}
	return answer.Score
}

func TestScoringCorrectAutoScoresMatchingAnswers(t *testing.T) {
	g := newTestGame("Team1", "Team2", "Team3")

	if !g.AddAnswer("Team1", "Steve") {
		t.Fatal("Team1's answer should have been accepted")
	}
	if !g.AddAnswer("Team2", "Martin") {
		t.Fatal("Team2's answer should have been accepted")
	}
	if !g.AddAnswer("Team3", "Steve") {
		t.Fatal("Team3's answer should have been accepted")
	}

	if !g.ScoreAnswer(1, "Team1", trivia.ScoreData{QuestionPoints: 50, BonusPoints: 10}) {
		t.Fatal("scoring Team1 should have succeeded")
	}

	team1 := scoreOf(t, g, 1, "Team1")
	if team1.QuestionPoints != 50 || team1.BonusPoints != 10 {
		t.Errorf("Team1 has wrong score: %+v", team1)
	}

	// Team3's matching answer gets the same question and bonus points.
	team3 := scoreOf(t, g, 1, "Team3")
	if team3.QuestionPoints != 50 || team3.BonusPoints != 10 {
		t.Errorf("Team3 should have been auto-scored to match Team1: %+v", team3)
	}

	team2 := scoreOf(t, g, 1, "Team2")
	if team2.QuestionPoints != 0 || team2.BonusPoints != 0 {
		t.Errorf("Team2 submitted a different answer and should be unscored: %+v", team2)
	}

	if total := g.FindTeam("Team1").Score.Total(); total != 60 {
		t.Errorf("Team1 total should be 60, got %d", total)
	}
	if total := g.FindTeam("Team3").Score.Total(); total != 60 {
		t.Errorf("Team3 total should be 60, got %d", total)
	}
	if total := g.FindTeam("Team2").Score.Total(); total != 0 {
		t.Errorf("Team2 total should be 0, got %d", total)
	}
}

func TestAutoScoringIsCaseInsensitiveAndTrimsWhitespace(t *testing.T) {
	g := newTestGame("Team1", "Team2", "Team3")

	g.AddAnswer("Team1", "Steve")
	g.AddAnswer("Team2", "  STEVE  ")
	g.AddAnswer("Team3", "sTeVe")

	g.ScoreAnswer(1, "Team1", trivia.ScoreData{QuestionPoints: 50})

	for _, teamName := range []string{"Team1", "Team2", "Team3"} {
		score := scoreOf(t, g, 1, teamName)
		if score.QuestionPoints != 50 {
			t.Errorf("%s should have been auto-scored, got %+v", teamName, score)
		}
	}
}

func TestClearingScoreClearsMatchingAnswers(t *testing.T) {
	g := newTestGame("Team1", "Team2")

	g.AddAnswer("Team1", "Answer")
	g.AddAnswer("Team2", "Answer")

	g.ScoreAnswer(1, "Team1", trivia.ScoreData{QuestionPoints: 50})
	if score := scoreOf(t, g, 1, "Team2"); score.QuestionPoints != 50 {
		t.Fatalf("Team2 should have been auto-scored first: %+v", score)
	}

	g.ClearAnswerScore(1, "Team1")

	if score := scoreOf(t, g, 1, "Team1"); score.QuestionPoints != 0 || score.BonusPoints != 0 {
		t.Errorf("Team1's score should be cleared: %+v", score)
	}
	if score := scoreOf(t, g, 1, "Team2"); score.QuestionPoints != 0 || score.BonusPoints != 0 {
		t.Errorf("clearing Team1 should clear the matching Team2 answer: %+v", score)
	}
	if total := g.FindTeam("Team2").Score.Total(); total != 0 {
		t.Errorf("Team2 total should return to 0, got %d", total)
	}
}

func TestNewSubmissionInheritsScoreFromMatchingCorrectAnswer(t *testing.T) {
	g := newTestGame("Team1", "Team2")

	g.AddAnswer("Team1", "steve")
	g.ScoreAnswer(1, "Team1", trivia.ScoreData{QuestionPoints: 50, BonusPoints: 5})

	// Submitted after Team1 was marked fully correct, with different casing.
	g.AddAnswer("Team2", "STEVE")

	score := scoreOf(t, g, 1, "Team2")
	if score.QuestionPoints != 50 {
		t.Errorf("Team2 should have been auto-scored on submission: %+v", score)
	}
	if score.BonusPoints != 5 {
		t.Errorf("auto-scored submissions inherit the matched answer's bonus: %+v", score)
	}
	if total := g.FindTeam("Team2").Score.Total(); total != 55 {
		t.Errorf("Team2 total should be 55, got %d", total)
	}
}

func TestPartialPointsDoNotTriggerAutoScoring(t *testing.T) {
	g := newTestGame("Team1", "Team2")

	g.AddAnswer("Team1", "Answer")
	g.ScoreAnswer(1, "Team1", trivia.ScoreData{QuestionPoints: 25})

	g.AddAnswer("Team2", "Answer")

	if score := scoreOf(t, g, 1, "Team2"); score.QuestionPoints != 0 {
		t.Errorf("partial points should not trigger auto-scoring on submit: %+v", score)
	}
}

func TestDifferentAnswersNotAffectedByPropagation(t *testing.T) {
	g := newTestGame("Team1", "Team2", "Team3")

	g.AddAnswer("Team1", "Apple")
	g.AddAnswer("Team2", "Banana")
	g.AddAnswer("Team3", "Cherry")

	g.ScoreAnswer(1, "Team1", trivia.ScoreData{QuestionPoints: 50})

	if score := scoreOf(t, g, 1, "Team2"); score.QuestionPoints != 0 {
		t.Errorf("Team2 should be untouched: %+v", score)
	}
	if score := scoreOf(t, g, 1, "Team3"); score.QuestionPoints != 0 {
		t.Errorf("Team3 should be untouched: %+v", score)
	}
}

func TestPropagationOverwritesPreviouslyScoredMatches(t *testing.T) {
	g := newTestGame("Team1", "Team2")

	g.AddAnswer("Team1", "Answer")
	g.AddAnswer("Team2", "Answer")

	g.ScoreAnswer(1, "Team2", trivia.ScoreData{QuestionPoints: 50, BonusPoints: 15})
	g.ScoreAnswer(1, "Team1", trivia.ScoreData{QuestionPoints: 50, BonusPoints: 5})

	// Matching answers always end up with equal question and bonus points.
	team1 := scoreOf(t, g, 1, "Team1")
	team2 := scoreOf(t, g, 1, "Team2")
	if team1.QuestionPoints != team2.QuestionPoints || team1.BonusPoints != team2.BonusPoints {
		t.Errorf("matching answers diverged: %+v vs %+v", team1, team2)
	}
	if team2.BonusPoints != 5 {
		t.Errorf("Team2 should have been brought to the target's bonus: %+v", team2)
	}
}

func TestSpeedBonusPlacement(t *testing.T) {
	g := newTestGame("A", "B", "C", "D")
	settings := g.Settings
	settings.SpeedBonusEnabled = true
	settings.SpeedBonusNumTeams = 3
	settings.SpeedBonusFirstPlace = 10
	g.UpdateGameSettings(settings)

	g.AddAnswer("A", "right")
	g.AddAnswer("B", "wrong")
	g.AddAnswer("C", "close")
	g.AddAnswer("D", "nope")

	g.ScoreAnswer(1, "A", trivia.ScoreData{QuestionPoints: 50})
	g.ScoreAnswer(1, "B", trivia.ScoreData{QuestionPoints: 50})
	g.ScoreAnswer(1, "C", trivia.ScoreData{QuestionPoints: 50})
	g.ScoreAnswer(1, "D", trivia.ScoreData{QuestionPoints: 50})

	// 10*(3-place)/3 with integer truncation: 10, 6, 3, then nothing.
	expected := map[string]int{"A": 10, "B": 6, "C": 3, "D": 0}
	for teamName, want := range expected {
		score := scoreOf(t, g, 1, teamName)
		if score.SpeedBonusPoints != want {
			t.Errorf("%s speed bonus should be %d, got %d", teamName, want, score.SpeedBonusPoints)
		}
	}
}

func TestSpeedBonusSkipsIncorrectAnswers(t *testing.T) {
	g := newTestGame("A", "B")
	settings := g.Settings
	settings.SpeedBonusEnabled = true
	settings.SpeedBonusNumTeams = 2
	settings.SpeedBonusFirstPlace = 10
	g.UpdateGameSettings(settings)

	g.AddAnswer("A", "wrong")
	g.AddAnswer("B", "right")

	// Only B is correct; B takes first place despite submitting second.
	g.ScoreAnswer(1, "B", trivia.ScoreData{QuestionPoints: 50})

	if score := scoreOf(t, g, 1, "A"); score.SpeedBonusPoints != 0 {
		t.Errorf("unscored answer should have no speed bonus: %+v", score)
	}
	if score := scoreOf(t, g, 1, "B"); score.SpeedBonusPoints != 10 {
		t.Errorf("first correct answer should take first place: %+v", score)
	}
}

func TestSpeedBonusDisabledZeroesBonuses(t *testing.T) {
	g := newTestGame("A", "B")
	settings := g.Settings
	settings.SpeedBonusEnabled = true
	g.UpdateGameSettings(settings)

	g.AddAnswer("A", "right")
	g.AddAnswer("B", "right")
	g.ScoreAnswer(1, "A", trivia.ScoreData{QuestionPoints: 50})

	if score := scoreOf(t, g, 1, "A"); score.SpeedBonusPoints == 0 {
		t.Fatalf("expected a speed bonus while enabled: %+v", score)
	}

	// Disabling on the question zeroes every speed bonus on recompute.
	g.CurrentQuestion().SpeedBonusEnabled = false
	g.ScoreAnswer(1, "A", trivia.ScoreData{QuestionPoints: 50})

	for _, teamName := range []string{"A", "B"} {
		if score := scoreOf(t, g, 1, teamName); score.SpeedBonusPoints != 0 {
			t.Errorf("%s speed bonus should be zeroed when disabled: %+v", teamName, score)
		}
	}
}

func TestTeamAggregatesAcrossQuestions(t *testing.T) {
	g := newTestGame("Team1")

	g.AddAnswer("Team1", "one")
	g.ScoreAnswer(1, "Team1", trivia.ScoreData{QuestionPoints: 50, BonusPoints: 5})

	g.NextQuestion()
	g.AddAnswer("Team1", "two")
	g.ScoreAnswer(2, "Team1", trivia.ScoreData{QuestionPoints: 25})

	g.OverrideTeamScore("Team1", -10)

	team := g.FindTeam("Team1")
	if team.Score.QuestionPoints != 75 {
		t.Errorf("aggregate question points should be 75, got %d", team.Score.QuestionPoints)
	}
	if team.Score.BonusPoints != 5 {
		t.Errorf("aggregate bonus points should be 5, got %d", team.Score.BonusPoints)
	}
	if team.Score.OverridePoints != -10 {
		t.Errorf("override points should be -10, got %d", team.Score.OverridePoints)
	}
	if team.Score.Total() != 70 {
		t.Errorf("total should be 70, got %d", team.Score.Total())
	}
}

func TestOverrideDoesNotDisturbDerivedComponents(t *testing.T) {
	g := newTestGame("Team1")
	g.AddAnswer("Team1", "one")
	g.ScoreAnswer(1, "Team1", trivia.ScoreData{QuestionPoints: 50})

	g.OverrideTeamScore("Team1", 100)

	team := g.FindTeam("Team1")
	if team.Score.QuestionPoints != 50 || team.Score.OverridePoints != 100 {
		t.Errorf("override must be independent of derived points: %+v", team.Score)
	}

	if g.OverrideTeamScore("Nobody", 5) {
		t.Error("overriding an unknown team should fail")
	}
}

func TestQuestionNavigation(t *testing.T) {
	g := newTestGame()

	if err := g.PrevQuestion(); err == nil {
		t.Error("prev from the first question should fail")
	}

	g.NextQuestion()
	if g.CurrentQuestionNumber != 2 {
		t.Fatalf("expected question 2, got %d", g.CurrentQuestionNumber)
	}
	if len(g.Questions) != 2 {
		t.Fatalf("advancing past the end should append a question, have %d", len(g.Questions))
	}
	if !g.SecondsRemaining.Valid || g.SecondsRemaining.Int64 != int64(g.CurrentQuestion().TimerDuration) {
		t.Errorf("navigation should reset remaining seconds, got %+v", g.SecondsRemaining)
	}

	if err := g.PrevQuestion(); err != nil {
		t.Fatalf("prev from question 2 should succeed: %v", err)
	}
	if g.CurrentQuestionNumber != 1 {
		t.Errorf("expected question 1, got %d", g.CurrentQuestionNumber)
	}
	if len(g.Questions) != 2 {
		t.Errorf("going back should not drop questions, have %d", len(g.Questions))
	}
}

func TestDuplicateAnswerRejected(t *testing.T) {
	g := newTestGame("Team1")

	if !g.AddAnswer("Team1", "first") {
		t.Fatal("first answer should be accepted")
	}
	if g.AddAnswer("Team1", "second") {
		t.Error("second answer from the same team should be rejected")
	}
	if g.AddAnswer("TEAM1", "third") {
		t.Error("team name matching is case-insensitive")
	}
	if g.AddAnswer("Nobody", "fourth") {
		t.Error("answers from unknown teams should be rejected")
	}
	if len(g.CurrentQuestion().Answers) != 1 {
		t.Errorf("question should hold exactly one answer, has %d", len(g.CurrentQuestion().Answers))
	}
}

func TestMultiAnswerQuestionsRejectSubmissions(t *testing.T) {
	g := newTestGame("Team1")
	settings := g.Settings
	settings.DefaultQuestionType = trivia.QuestionMultiAnswer
	g.UpdateGameSettings(settings)

	if g.AddAnswer("Team1", "anything") {
		t.Error("multi-answer questions do not accept single submissions")
	}
}

func TestTeamJoinIsCaseInsensitiveReconnect(t *testing.T) {
	g := newTestGame("The Quizzards")

	g.SetTeamConnected("The Quizzards", false)
	g.AddTeam("the quizzards", nil, trivia.TeamColor{HexCode: "#2563EB", Name: "Blue"}, []string{"Someone"})

	if len(g.Teams) != 1 {
		t.Fatalf("joining with a different case should reconnect, not add: %d teams", len(g.Teams))
	}
	team := g.FindTeam("THE QUIZZARDS")
	if team == nil {
		t.Fatal("team lookup should be case-insensitive")
	}
	if team.Name != "The Quizzards" {
		t.Errorf("the original display name is preserved, got %s", team.Name)
	}
	if !team.Connected {
		t.Error("reconnect should mark the team connected")
	}
	if team.Color.Name != "Blue" {
		t.Errorf("reconnect should refresh the color, got %s", team.Color.Name)
	}
}

func TestQuestionSettingsLockedAfterAnswer(t *testing.T) {
	g := newTestGame("Team1")
	g.AddAnswer("Team1", "anything")

	err := g.UpdateQuestionSettings(1, 60, 100, 10, trivia.QuestionStandard, false)
	if err == nil {
		t.Error("a question with answers cannot have its settings changed")
	}

	err = g.UpdateTypeSpecificSettings(1, trivia.DefaultQuestionConfig(trivia.QuestionStandard, g.Settings.DefaultMcConfig))
	if err == nil {
		t.Error("a question with answers cannot have its config changed")
	}
}

func TestUpdateQuestionSettings(t *testing.T) {
	g := newTestGame()

	if err := g.UpdateQuestionSettings(3, 60, 100, 10, trivia.QuestionStandard, false); err == nil {
		t.Error("editing a missing question should fail")
	}

	err := g.UpdateQuestionSettings(1, 60, 100, 10, trivia.QuestionMultipleChoice, true)
	if err != nil {
		t.Fatalf("editing an unanswered question should succeed: %v", err)
	}

	question := g.CurrentQuestion()
	if question.TimerDuration != 60 || question.QuestionPoints != 100 || question.BonusIncrement != 10 {
		t.Errorf("question settings not applied: %+v", question)
	}
	if !question.SpeedBonusEnabled {
		t.Errorf("speed bonus flag not applied")
	}
	if question.Kind != trivia.QuestionMultipleChoice {
		t.Errorf("question kind not applied: %s", question.Kind)
	}
	if question.Config.Kind != trivia.QuestionMultipleChoice || question.Config.Mc == nil {
		t.Errorf("kind change should install the default config for the new kind: %+v", question.Config)
	}
	if !g.SecondsRemaining.Valid || g.SecondsRemaining.Int64 != 60 {
		t.Errorf("editing the current question with a stopped timer resets remaining seconds: %+v", g.SecondsRemaining)
	}
}

func TestUpdateTypeSpecificSettingsKindMismatch(t *testing.T) {
	g := newTestGame()

	mc := trivia.DefaultQuestionConfig(trivia.QuestionMultipleChoice, g.Settings.DefaultMcConfig)
	if err := g.UpdateTypeSpecificSettings(1, mc); err == nil {
		t.Error("config kind must match the question kind")
	}

	standard := trivia.DefaultQuestionConfig(trivia.QuestionStandard, g.Settings.DefaultMcConfig)
	if err := g.UpdateTypeSpecificSettings(1, standard); err != nil {
		t.Errorf("matching config should apply: %v", err)
	}
}

func TestUpdateGameSettingsPropagatesToUnansweredQuestions(t *testing.T) {
	g := newTestGame("Team1")

	g.AddAnswer("Team1", "locked in")
	g.NextQuestion()

	settings := g.Settings
	settings.DefaultTimerDuration = 90
	settings.DefaultQuestionPoints = 100
	settings.SpeedBonusEnabled = true
	g.UpdateGameSettings(settings)

	locked := g.QuestionAt(1)
	if locked.TimerDuration == 90 || locked.QuestionPoints == 100 {
		t.Errorf("questions with answers must keep their settings: %+v", locked)
	}
	if locked.SpeedBonusEnabled {
		t.Errorf("speed bonus must not propagate to answered questions")
	}

	open := g.QuestionAt(2)
	if open.TimerDuration != 90 || open.QuestionPoints != 100 || !open.SpeedBonusEnabled {
		t.Errorf("unanswered questions take the new defaults: %+v", open)
	}

	if !g.SecondsRemaining.Valid || g.SecondsRemaining.Int64 != 90 {
		t.Errorf("current unanswered question resets remaining seconds: %+v", g.SecondsRemaining)
	}
}

func TestTeamViewFiltersOtherTeamsAnswers(t *testing.T) {
	g := newTestGame("Team1", "Team2")

	g.AddAnswer("Team1", "42")
	g.ScoreAnswer(1, "Team1", trivia.ScoreData{QuestionPoints: 50})

	view := g.TeamView("Team1")
	if view == nil {
		t.Fatal("team view should exist")
	}
	if len(view.Questions) != 1 {
		t.Fatalf("expected 1 question in view, got %d", len(view.Questions))
	}
	if view.Questions[0].Content == nil || view.Questions[0].Content.AnswerText != "42" {
		t.Errorf("team view should carry the team's own answer: %+v", view.Questions[0].Content)
	}
	if view.Questions[0].Score.QuestionPoints != 50 {
		t.Errorf("team view should carry the team's score: %+v", view.Questions[0].Score)
	}

	other := g.TeamView("Team2")
	if other.Questions[0].Content != nil {
		t.Errorf("a team that did not submit sees null content: %+v", other.Questions[0].Content)
	}

	if g.TeamView("Nobody") != nil {
		t.Error("unknown teams have no view")
	}
}

func TestScoreboardViewHasTeamsOnly(t *testing.T) {
	g := newTestGame("Team1", "Team2")
	g.AddAnswer("Team1", "secret")

	view := g.ScoreboardView()
	if len(view.Teams) != 2 {
		t.Errorf("scoreboard should list both teams, got %d", len(view.Teams))
	}
	if view.GameCode != "ABCD" {
		t.Errorf("scoreboard carries the game code, got %s", view.GameCode)
	}
}

func TestRestoreGameFromSnapshot(t *testing.T) {
	g := newTestGame("Team1", "Team2")
	g.AddAnswer("Team1", "persisted")
	g.ScoreAnswer(1, "Team1", trivia.ScoreData{QuestionPoints: 50, BonusPoints: 5})
	g.NextQuestion()

	restored := RestoreGame(g.HostView(), g.HostUserID, nil)

	if restored.Code != "ABCD" || restored.HostUserID != "test-host-user" {
		t.Errorf("restored identity wrong: %s / %s", restored.Code, restored.HostUserID)
	}
	if restored.CurrentQuestionNumber != 2 || len(restored.Questions) != 2 {
		t.Errorf("restored navigation state wrong: question %d of %d", restored.CurrentQuestionNumber, len(restored.Questions))
	}
	if restored.TimerRunning {
		t.Error("restored games start with the timer stopped")
	}
	for _, team := range restored.Teams {
		if team.Connected {
			t.Errorf("restored teams start disconnected: %s", team.Name)
		}
	}
	score := scoreOf(t, restored, 1, "Team1")
	if score.QuestionPoints != 50 || score.BonusPoints != 5 {
		t.Errorf("restored answer score wrong: %+v", score)
	}
	if total := restored.FindTeam("Team1").Score.Total(); total != 55 {
		t.Errorf("restored team total wrong: %d", total)
	}
}
