// Package service orchestrates the attempt lifecycle: selection, timed
// execution, finish and persistence. It is the only writer driving the
// session machine, so every mutation funnels through one serialized path.
package service

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/enemsprint/sprint-backend/internal/history"
	"github.com/enemsprint/sprint-backend/internal/model"
	"github.com/enemsprint/sprint-backend/internal/scoring"
	"github.com/enemsprint/sprint-backend/internal/session"
	"github.com/enemsprint/sprint-backend/internal/timer"
)

// ErrNoTestSelected is returned by Retake when no attempt has been started.
var ErrNoTestSelected = errors.New("no test selected")

// AttemptService owns one live attempt at a time: the session machine, its
// timer controller and the handoff of finished attempts to the history store.
type AttemptService struct {
	machine *session.Machine
	timer   *timer.Controller
	history *history.Store
	log     zerolog.Logger
	now     func() time.Time

	// mu serializes start, finish and retake so a timer expiry racing a
	// user-triggered finish settles on exactly one persisted record.
	mu          sync.Mutex
	attemptID   string
	lastAttempt *model.StoredAttempt
}

// NewAttemptService wires a fresh session machine and timer controller.
// tickInterval <= 0 falls back to the one-second default.
func NewAttemptService(store *history.Store, tickInterval time.Duration, log zerolog.Logger) *AttemptService {
	s := &AttemptService{
		machine: session.NewMachine(),
		history: store,
		log:     log.With().Str("component", "attempt_service").Logger(),
		now:     time.Now,
	}
	s.timer = timer.NewController(s.machine, tickInterval, log)
	return s
}

// Start begins a new attempt for a test. Any previous attempt is discarded:
// the machine is restarted with the test and a fresh timer anchor in one
// step, and a new attempt identifier is issued. When durationSeconds is not
// positive the test's default sitting length applies.
//
// The timer loop outlives the HTTP request that started the attempt, so it
// runs on a background context and is canceled by the next Start/Retake or
// by Stop on shutdown.
func (s *AttemptService) Start(test *model.Test, durationSeconds int) (string, session.State) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if durationSeconds <= 0 {
		name := ""
		if test != nil {
			name = test.Name
		}
		durationSeconds = model.DefaultDurationSeconds(name)
	}

	s.attemptID = uuid.NewString()
	s.lastAttempt = nil
	s.machine.Restart(test, s.now(), durationSeconds)
	s.timer.Start(context.Background(), s.expireFunc(s.attemptID))

	event := s.log.Info().Str("attempt_id", s.attemptID).Int("duration_seconds", durationSeconds)
	if test != nil {
		event = event.Int("test_code", test.Code)
	}
	event.Msg("Attempt started")

	return s.attemptID, s.machine.State()
}

// Retake restarts the current test: same selection, fresh answers, fresh
// timer anchor, fresh attempt identifier.
func (s *AttemptService) Retake() (string, session.State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	test := s.machine.State().Test
	if test == nil {
		return "", session.State{}, ErrNoTestSelected
	}

	s.attemptID = uuid.NewString()
	s.lastAttempt = nil
	s.machine.Restart(test, s.now(), model.DefaultDurationSeconds(test.Name))
	s.timer.Start(context.Background(), s.expireFunc(s.attemptID))

	s.log.Info().Str("attempt_id", s.attemptID).Int("test_code", test.Code).Msg("Attempt restarted")
	return s.attemptID, s.machine.State(), nil
}

// SetQuestions stores the question set delivered by the catalog collaborator.
func (s *AttemptService) SetQuestions(questions []model.Question) {
	s.machine.SetQuestions(questions)
}

// Answer records one selection. Repeats overwrite the prior choice.
func (s *AttemptService) Answer(questionID, optionCode int) {
	s.machine.SetAnswer(questionID, optionCode)
}

// State returns a snapshot of the live session.
func (s *AttemptService) State() session.State {
	return s.machine.State()
}

// AttemptID returns the identifier of the current attempt, empty before the
// first Start.
func (s *AttemptService) AttemptID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.attemptID
}

// Remaining evaluates the seconds left on the running timer.
func (s *AttemptService) Remaining() (int, bool) {
	return s.timer.Remaining()
}

// Results returns the outcome to display: the frozen value when finish has
// run, otherwise a transparent recompute over the live answers. The third
// return is false when there is nothing to show yet.
func (s *AttemptService) Results() (*model.TestResults, scoring.Ranking, bool) {
	state := s.machine.State()

	results := state.Results
	if results == nil {
		if len(state.Questions) == 0 {
			return nil, scoring.Ranking{}, false
		}
		results = scoring.Compute(state.Questions, state.Answers)
	}

	ranking := scoring.Rank(scoring.SubjectAccuracies(results.Subjects))
	return results, ranking, true
}

// Finish grades the attempt, freezes the results in the session, and hands
// the immutable record to the history store. Calling it again (user retry or
// timer expiry racing an explicit finish) returns the already-frozen outcome
// without recomputing or persisting twice.
func (s *AttemptService) Finish(ctx context.Context) (*model.TestResults, *model.StoredAttempt) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.finishLocked(ctx)
}

// finishLocked carries the finish flow. Callers must hold s.mu.
func (s *AttemptService) finishLocked(ctx context.Context) (*model.TestResults, *model.StoredAttempt) {
	state := s.machine.State()
	if state.Results != nil {
		return state.Results, s.lastAttempt
	}

	now := s.now()
	results := scoring.Compute(state.Questions, state.Answers)
	elapsed := timer.Elapsed(state, now)
	results.ElapsedSeconds = &elapsed

	s.machine.SetResults(results)
	s.timer.Stop()

	attempt := s.buildAttempt(state, results, now)
	s.history.Add(ctx, attempt)
	s.lastAttempt = &attempt

	s.log.Info().
		Str("attempt_id", attempt.AttemptID).
		Str("test_code", attempt.TestCode).
		Float64("score_percent", attempt.Totals.ScorePercent).
		Int("elapsed_seconds", elapsed).
		Msg("Attempt finished")

	return results, &attempt
}

// expireFunc builds the timer callback for one attempt. The returned func
// re-checks, under the lifecycle mutex, that the attempt it was issued for is
// still the live one: a stale loop that outlives a start or retake finds a
// different attempt ID and backs off instead of finishing the new attempt's
// state.
func (s *AttemptService) expireFunc(attemptID string) func() {
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()

		if s.attemptID != attemptID {
			s.log.Debug().Str("attempt_id", attemptID).Msg("Ignoring expiry from a superseded attempt")
			return
		}
		s.finishLocked(context.Background())
	}
}

func (s *AttemptService) buildAttempt(state session.State, results *model.TestResults, now time.Time) model.StoredAttempt {
	var testCode, testName, institution string
	if state.Test != nil {
		testCode = strconv.Itoa(state.Test.Code)
		testName = state.Test.Name
		institution = state.Test.Institution
	}

	total := results.TotalQuestions()

	return model.StoredAttempt{
		AttemptID:       s.attemptID,
		TestCode:        testCode,
		TestName:        testName,
		Category:        model.ResolveExamCategory(testName, institution),
		CreatedAt:       now.UTC().Format(time.RFC3339),
		DurationSeconds: state.DurationSeconds,
		Totals: model.AttemptTotals{
			Total:        total,
			Correct:      results.Correct,
			Wrong:        results.Wrong,
			Blank:        results.Blank,
			ScorePercent: scoring.ScorePercent(results.Correct, total),
		},
		Subjects: scoring.SubjectAccuracies(results.Subjects),
	}
}

// Stop cancels the timer loop; used on shutdown.
func (s *AttemptService) Stop() {
	s.timer.Stop()
}
