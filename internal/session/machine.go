// Package session holds the mutable state of one exam attempt behind a
// reducer-style machine: every transition replaces the whole state value,
// computed from the prior state plus the transition payload. The machine is a
// dumb, total container — payload validation is the caller's job — and keeps
// exactly one canonical state at a time.
package session

import (
	"sync"
	"time"

	"github.com/enemsprint/sprint-backend/internal/model"
)

// State is the complete attempt state at one point in time. Snapshots handed
// out by the machine are values; the maps and slices they reference are never
// mutated in place by later transitions.
//
// StartedAt and DurationSeconds are set and cleared together: the timer is
// configured iff TimerSet reports true.
type State struct {
	Test            *model.Test
	Questions       []model.Question
	Answers         map[int]int
	StartedAt       time.Time
	DurationSeconds int
	Results         *model.TestResults
}

// TimerSet reports whether the timer anchor has been configured.
func (s State) TimerSet() bool {
	return !s.StartedAt.IsZero() && s.DurationSeconds > 0
}

func initialState() State {
	return State{Answers: map[int]int{}}
}

// Machine serializes all transitions and snapshot reads behind one mutex.
// This is the single mutual-exclusion boundary the engine relies on: one
// writer at a time, readers always see the latest committed state.
type Machine struct {
	mu    sync.RWMutex
	state State
}

// NewMachine returns a machine in the initial empty state.
func NewMachine() *Machine {
	return &Machine{state: initialState()}
}

// State returns a snapshot of the current state.
func (m *Machine) State() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

// SetTest replaces the selected test. Answers, timer and results are untouched.
func (m *Machine) SetTest(t *model.Test) {
	m.mu.Lock()
	defer m.mu.Unlock()
	next := m.state
	next.Test = t
	m.state = next
}

// SetQuestions replaces the question list only.
func (m *Machine) SetQuestions(questions []model.Question) {
	m.mu.Lock()
	defer m.mu.Unlock()
	next := m.state
	next.Questions = questions
	m.state = next
}

// SetAnswer upserts one entry in the answer map. Answering the same question
// again overwrites the prior choice; answers stay mutable until finish.
func (m *Machine) SetAnswer(questionID, optionCode int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	next := m.state
	answers := make(map[int]int, len(m.state.Answers)+1)
	for k, v := range m.state.Answers {
		answers[k] = v
	}
	answers[questionID] = optionCode
	next.Answers = answers
	m.state = next
}

// SetTimer atomically sets the start instant and the configured duration.
func (m *Machine) SetTimer(start time.Time, durationSeconds int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	next := m.state
	next.StartedAt = start
	next.DurationSeconds = durationSeconds
	m.state = next
}

// SetResults freezes the computed outcome. Once non-nil it is the
// authoritative value for display, superseding live recomputation.
func (m *Machine) SetResults(results *model.TestResults) {
	m.mu.Lock()
	defer m.mu.Unlock()
	next := m.state
	next.Results = results
	m.state = next
}

// Reset returns the machine to the initial empty state.
func (m *Machine) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = initialState()
}

// Restart resets and immediately re-selects a test with a fresh timer anchor
// in one critical section, so a retake never exposes an intermediate empty
// state to concurrent readers.
func (m *Machine) Restart(t *model.Test, start time.Time, durationSeconds int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	next := initialState()
	next.Test = t
	next.StartedAt = start
	next.DurationSeconds = durationSeconds
	m.state = next
}
