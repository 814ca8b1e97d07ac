// Package history keeps the durable log of completed attempts. Persistence is
// best-effort, not transactional: every storage failure degrades to an empty
// read or a dropped write, and no operation ever surfaces an error to its
// caller — history is a convenience feature, not a system of record.
package history

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/enemsprint/sprint-backend/internal/kv"
	"github.com/enemsprint/sprint-backend/internal/model"
)

// StorageKey is the single fixed key the whole attempt collection lives
// under. The collection is replaced wholesale on every write.
const StorageKey = "enemsprint.history.v1"

// Store owns the persisted attempt collection. Callers only submit new
// immutable records or request deletion; they never mutate what is stored.
type Store struct {
	medium kv.Store
	log    zerolog.Logger

	// mu serializes read-modify-write cycles so two concurrent Adds cannot
	// lose each other's record.
	mu sync.Mutex
}

// NewStore creates a history store on top of a persistence medium.
func NewStore(medium kv.Store, log zerolog.Logger) *Store {
	return &Store{
		medium: medium,
		log:    log.With().Str("component", "history").Logger(),
	}
}

// List returns every valid stored attempt, most recent first. Malformed
// entries are dropped silently; medium failures yield an empty slice.
func (s *Store) List(ctx context.Context) []model.StoredAttempt {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(ctx)
}

// Add persists a new attempt record. A record whose attempt ID is already
// present is ignored, which makes retried finish flows idempotent.
func (s *Store) Add(ctx context.Context, attempt model.StoredAttempt) {
	s.mu.Lock()
	defer s.mu.Unlock()

	attempts := s.load(ctx)
	for i := range attempts {
		if attempts[i].AttemptID == attempt.AttemptID {
			return
		}
	}

	attempts = append(attempts, attempt)
	sortByCreatedAtDesc(attempts)
	s.save(ctx, attempts)
}

// Delete removes one record by attempt ID; a no-op when absent.
func (s *Store) Delete(ctx context.Context, attemptID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	attempts := s.load(ctx)
	kept := attempts[:0]
	for i := range attempts {
		if attempts[i].AttemptID != attemptID {
			kept = append(kept, attempts[i])
		}
	}
	s.save(ctx, kept)
}

// Clear empties the collection.
func (s *Store) Clear(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.save(ctx, []model.StoredAttempt{})
}

// LastAttempt returns the most recent attempt for a test code, or nil.
func (s *Store) LastAttempt(ctx context.Context, testCode string) *model.StoredAttempt {
	for _, a := range s.List(ctx) {
		if a.TestCode == testCode {
			found := a
			return &found
		}
	}
	return nil
}

// BestAttempt returns the attempt with the highest score percent for a test
// code, ties broken by the most recent creation timestamp. Nil when no
// attempt matches.
func (s *Store) BestAttempt(ctx context.Context, testCode string) *model.StoredAttempt {
	var best *model.StoredAttempt
	for _, a := range s.List(ctx) {
		if a.TestCode != testCode {
			continue
		}
		candidate := a
		if best == nil {
			best = &candidate
			continue
		}
		if candidate.Totals.ScorePercent > best.Totals.ScorePercent {
			best = &candidate
			continue
		}
		if candidate.Totals.ScorePercent == best.Totals.ScorePercent &&
			candidate.CreatedAt > best.CreatedAt {
			best = &candidate
		}
	}
	return best
}

// TestSummary is the per-test overview row for dashboard listings.
type TestSummary struct {
	TestCode string               `json:"test_code"`
	TestName string               `json:"test_name"`
	Category model.ExamCategory   `json:"category"`
	Attempts int                  `json:"attempts"`
	Best     *model.StoredAttempt `json:"best,omitempty"`
	Last     *model.StoredAttempt `json:"last,omitempty"`
}

// Summary groups the history by test code, ordered by each test's most recent
// attempt. Name and category come from the latest record for the test.
func (s *Store) Summary(ctx context.Context) []TestSummary {
	attempts := s.List(ctx)

	index := make(map[string]int)
	summaries := []TestSummary{}

	for i := range attempts {
		a := attempts[i]
		idx, ok := index[a.TestCode]
		if !ok {
			// First hit is the most recent attempt for this test.
			last := a
			index[a.TestCode] = len(summaries)
			summaries = append(summaries, TestSummary{
				TestCode: a.TestCode,
				TestName: a.TestName,
				Category: a.Category,
				Last:     &last,
			})
			idx = index[a.TestCode]
		}

		row := &summaries[idx]
		row.Attempts++
		candidate := a
		if row.Best == nil ||
			candidate.Totals.ScorePercent > row.Best.Totals.ScorePercent ||
			(candidate.Totals.ScorePercent == row.Best.Totals.ScorePercent &&
				candidate.CreatedAt > row.Best.CreatedAt) {
			row.Best = &candidate
		}
	}

	return summaries
}

// load reads and validates the whole collection. Must be called under mu
// (or via List, which locks).
func (s *Store) load(ctx context.Context) []model.StoredAttempt {
	data, ok, err := s.medium.Read(ctx, StorageKey)
	if err != nil {
		s.log.Warn().Err(err).Msg("History read failed, returning empty collection")
		return []model.StoredAttempt{}
	}
	if !ok {
		return []model.StoredAttempt{}
	}

	var raws []json.RawMessage
	if err := json.Unmarshal(data, &raws); err != nil {
		s.log.Warn().Err(err).Msg("History payload corrupted, returning empty collection")
		return []model.StoredAttempt{}
	}

	attempts := make([]model.StoredAttempt, 0, len(raws))
	dropped := 0
	for _, raw := range raws {
		attempt, valid := decodeAttempt(raw)
		if !valid {
			dropped++
			continue
		}
		attempts = append(attempts, attempt)
	}
	if dropped > 0 {
		s.log.Warn().Int("dropped", dropped).Msg("Skipped malformed history entries")
	}

	sortByCreatedAtDesc(attempts)
	return attempts
}

// save rewrites the whole collection. Write failures are logged and dropped.
func (s *Store) save(ctx context.Context, attempts []model.StoredAttempt) {
	data, err := json.Marshal(attempts)
	if err != nil {
		s.log.Warn().Err(err).Msg("History marshal failed, dropping write")
		return
	}
	if err := s.medium.Write(ctx, StorageKey, data); err != nil {
		s.log.Warn().Err(err).Msg("History write failed, dropping write")
	}
}

func sortByCreatedAtDesc(attempts []model.StoredAttempt) {
	sort.SliceStable(attempts, func(i, j int) bool {
		ti := parseCreatedAt(attempts[i].CreatedAt)
		tj := parseCreatedAt(attempts[j].CreatedAt)
		return ti.After(tj)
	})
}

// parseCreatedAt is safe on validated records; decodeAttempt rejects entries
// whose timestamp does not parse.
func parseCreatedAt(value string) time.Time {
	t, _ := time.Parse(time.RFC3339, value)
	return t
}
