package game

import (
	"testing"
	"time"

	"github.com/jaredblack/trivia-wizard-2/trivia"
)

func newTestSet(t *testing.T) *GameSet {
	t.Helper()
	shutdownChan := make(chan struct{}, 1)
	idle := NewIdleTimer(shutdownChan, time.Hour)
	return NewGameSet(newMemStore(), idle)
}

// memStore is a minimal local store for the model and timer tests; the
// end-to-end tests in server_test.go use mock.Store instead.
type memStore struct {
	snapshots map[string][]byte
}

func newMemStore() *memStore {
	return &memStore{snapshots: make(map[string][]byte)}
}

func (s *memStore) SaveGame(userID string, gameCode string, snapshot []byte) error {
	s.snapshots[userID+"/"+gameCode] = snapshot
	return nil
}

func (s *memStore) LoadGame(userID string, gameCode string) ([]byte, error) {
	return s.snapshots[userID+"/"+gameCode], nil
}

func insertTestGame(set *GameSet, teamNames ...string) *Game {
	g := newTestGame(teamNames...)
	set.gamesLock.Lock()
	set.Insert(g)
	set.gamesLock.Unlock()
	return g
}

func TestTimerStateMachine(t *testing.T) {
	set := newTestSet(t)
	g := insertTestGame(set)

	set.gamesLock.Lock()
	g.StartTimer(set)
	if !g.TimerRunning {
		t.Error("start should mark the timer running")
	}
	if !g.SecondsRemaining.Valid || g.SecondsRemaining.Int64 != 30 {
		t.Errorf("start should keep the question duration, got %+v", g.SecondsRemaining)
	}
	if g.timerStop == nil {
		t.Error("a running timer has a tick task")
	}

	g.StopTimer()
	if g.TimerRunning {
		t.Error("pause should stop the timer")
	}
	if g.timerStop != nil {
		t.Error("pause should cancel the tick task")
	}
	if !g.SecondsRemaining.Valid || g.SecondsRemaining.Int64 != 30 {
		t.Errorf("pause preserves remaining seconds, got %+v", g.SecondsRemaining)
	}

	g.SecondsRemaining.Int64 = 7
	g.ResetTimer()
	if g.TimerRunning {
		t.Error("reset should leave the timer stopped")
	}
	if g.SecondsRemaining.Int64 != 30 {
		t.Errorf("reset restores the full duration, got %+v", g.SecondsRemaining)
	}
	set.gamesLock.Unlock()
}

func TestStartTimerWhileRunningRestarts(t *testing.T) {
	set := newTestSet(t)
	g := insertTestGame(set)

	set.gamesLock.Lock()
	g.StartTimer(set)
	firstStop := g.timerStop
	g.StartTimer(set)
	if g.timerStop == firstStop {
		t.Error("restart should replace the tick task")
	}
	if !g.TimerRunning {
		t.Error("restart leaves the timer running")
	}
	g.StopTimer()
	set.gamesLock.Unlock()
}

func TestStartTimerReloadsExpiredCountdown(t *testing.T) {
	set := newTestSet(t)
	g := insertTestGame(set)

	set.gamesLock.Lock()
	g.SecondsRemaining.Int64 = 0
	g.StartTimer(set)
	if g.SecondsRemaining.Int64 != int64(g.CurrentQuestion().TimerDuration) {
		t.Errorf("starting at zero reloads the question duration, got %+v", g.SecondsRemaining)
	}
	g.StopTimer()
	set.gamesLock.Unlock()
}

func TestTimerExpiryClosesSubmissions(t *testing.T) {
	set := newTestSet(t)
	g := insertTestGame(set, "Team1")

	set.gamesLock.Lock()
	if err := g.UpdateQuestionSettings(1, 1, 50, 5, trivia.QuestionStandard, false); err != nil {
		set.gamesLock.Unlock()
		t.Fatalf("failed to shorten question timer: %v", err)
	}
	g.StartTimer(set)
	set.gamesLock.Unlock()

	time.Sleep(1500 * time.Millisecond)

	set.gamesLock.Lock()
	defer set.gamesLock.Unlock()
	if g.TimerRunning {
		t.Error("the timer should have expired")
	}
	if !g.SecondsRemaining.Valid || g.SecondsRemaining.Int64 != 0 {
		t.Errorf("expiry leaves zero seconds remaining, got %+v", g.SecondsRemaining)
	}
	if g.timerStop != nil {
		t.Error("expiry clears the tick task handle")
	}
}

func TestTickDecrementsEachSecond(t *testing.T) {
	set := newTestSet(t)
	g := insertTestGame(set)

	set.gamesLock.Lock()
	if err := g.UpdateQuestionSettings(1, 5, 50, 5, trivia.QuestionStandard, false); err != nil {
		set.gamesLock.Unlock()
		t.Fatalf("failed to set question timer: %v", err)
	}
	g.StartTimer(set)
	set.gamesLock.Unlock()

	time.Sleep(1200 * time.Millisecond)

	set.gamesLock.Lock()
	remaining := g.SecondsRemaining.Int64
	g.StopTimer()
	set.gamesLock.Unlock()

	if remaining != 4 {
		t.Errorf("after ~1.2s the countdown should be at 4, got %d", remaining)
	}
}
