package session

import (
	"testing"
	"time"

	"github.com/enemsprint/sprint-backend/internal/model"
)

func sampleTest() *model.Test {
	return &model.Test{Code: 101, Name: "ENEM 2023 - Dia 1", Kind: "regular"}
}

func sampleQuestions() []model.Question {
	return []model.Question{
		{ID: 1, Number: 1, Subject: "Matematica", Options: []model.AnswerOption{
			{Code: 10, Correct: true}, {Code: 11},
		}},
		{ID: 2, Number: 2, Subject: "Linguagens", Options: []model.AnswerOption{
			{Code: 20}, {Code: 21, Correct: true},
		}},
	}
}

func TestMachine_InitialState(t *testing.T) {
	m := NewMachine()
	state := m.State()

	if state.Test != nil || state.Questions != nil || state.Results != nil {
		t.Fatalf("initial state not empty: %+v", state)
	}
	if state.Answers == nil || len(state.Answers) != 0 {
		t.Fatalf("initial answers = %v, want empty map", state.Answers)
	}
	if state.TimerSet() {
		t.Fatal("timer must not be set initially")
	}
}

func TestMachine_TransitionsAreIsolated(t *testing.T) {
	m := NewMachine()
	start := time.Now()

	m.SetTest(sampleTest())
	m.SetQuestions(sampleQuestions())
	m.SetAnswer(1, 10)
	m.SetTimer(start, 7200)

	state := m.State()
	if state.Test == nil || state.Test.Code != 101 {
		t.Fatalf("test not retained: %+v", state.Test)
	}
	if len(state.Questions) != 2 {
		t.Fatalf("questions = %d, want 2", len(state.Questions))
	}
	if state.Answers[1] != 10 {
		t.Fatalf("answers = %v, want {1:10}", state.Answers)
	}
	if !state.TimerSet() || state.DurationSeconds != 7200 {
		t.Fatalf("timer not configured: startedAt=%v duration=%d", state.StartedAt, state.DurationSeconds)
	}

	// Replacing the question list leaves every other field alone.
	m.SetQuestions(sampleQuestions()[:1])
	state = m.State()
	if len(state.Questions) != 1 || state.Answers[1] != 10 || !state.TimerSet() {
		t.Fatal("SetQuestions must not disturb answers or timer")
	}
}

func TestMachine_SetAnswerOverwrites(t *testing.T) {
	m := NewMachine()
	m.SetAnswer(1, 10)
	m.SetAnswer(2, 21)
	m.SetAnswer(1, 11)

	answers := m.State().Answers
	if len(answers) != 2 || answers[1] != 11 || answers[2] != 21 {
		t.Fatalf("answers = %v, want {1:11, 2:21}", answers)
	}
}

func TestMachine_SnapshotIsolation(t *testing.T) {
	m := NewMachine()
	m.SetAnswer(1, 10)

	before := m.State()
	m.SetAnswer(1, 11)
	m.SetAnswer(2, 20)

	if before.Answers[1] != 10 {
		t.Fatalf("earlier snapshot mutated: answers[1] = %d, want 10", before.Answers[1])
	}
	if _, ok := before.Answers[2]; ok {
		t.Fatal("earlier snapshot picked up a later answer")
	}
}

func TestMachine_Reset(t *testing.T) {
	m := NewMachine()
	m.SetTest(sampleTest())
	m.SetQuestions(sampleQuestions())
	m.SetAnswer(1, 10)
	m.SetTimer(time.Now(), 7200)
	m.SetResults(&model.TestResults{Correct: 1})

	m.Reset()

	state := m.State()
	if state.Test != nil || state.Questions != nil || state.Results != nil {
		t.Fatalf("reset left residue: %+v", state)
	}
	if len(state.Answers) != 0 || state.TimerSet() {
		t.Fatal("reset must clear answers and timer")
	}
}

func TestMachine_RestartKeepsOnlyTestAndTimer(t *testing.T) {
	m := NewMachine()
	m.SetTest(sampleTest())
	m.SetQuestions(sampleQuestions())
	m.SetAnswer(1, 10)
	m.SetResults(&model.TestResults{Correct: 1})

	start := time.Now()
	m.Restart(sampleTest(), start, 5400)

	state := m.State()
	if state.Test == nil || state.Test.Code != 101 {
		t.Fatalf("restart must re-select the test, got %+v", state.Test)
	}
	if state.Questions != nil || len(state.Answers) != 0 || state.Results != nil {
		t.Fatal("restart must not leak answers, questions or results")
	}
	if !state.StartedAt.Equal(start) || state.DurationSeconds != 5400 {
		t.Fatalf("restart timer anchor = %v/%d, want %v/5400",
			state.StartedAt, state.DurationSeconds, start)
	}
}

func TestState_TimerSet(t *testing.T) {
	tests := []struct {
		name  string
		state State
		want  bool
	}{
		{"zero state", State{}, false},
		{"start only", State{StartedAt: time.Now()}, false},
		{"duration only", State{DurationSeconds: 7200}, false},
		{"both", State{StartedAt: time.Now(), DurationSeconds: 7200}, true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.state.TimerSet(); got != tc.want {
				t.Fatalf("TimerSet() = %v, want %v", got, tc.want)
			}
		})
	}
}
