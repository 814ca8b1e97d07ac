package history

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/enemsprint/sprint-backend/internal/kv"
	"github.com/enemsprint/sprint-backend/internal/model"
)

func newTestStore() (*Store, *kv.MemoryStore) {
	medium := kv.NewMemoryStore()
	return NewStore(medium, zerolog.Nop()), medium
}

func attempt(id string, testCode string, createdAt string, scorePercent float64) model.StoredAttempt {
	return model.StoredAttempt{
		AttemptID:       id,
		TestCode:        testCode,
		TestName:        "ENEM 2023 - Dia 1",
		Category:        model.CategoryENEM,
		CreatedAt:       createdAt,
		DurationSeconds: 7200,
		Totals: model.AttemptTotals{
			Total:        90,
			Correct:      int(float64(90) * scorePercent / 100),
			ScorePercent: scorePercent,
		},
	}
}

func TestStore_EmptyList(t *testing.T) {
	store, _ := newTestStore()
	attempts := store.List(context.Background())
	if len(attempts) != 0 {
		t.Fatalf("List = %d attempts, want 0", len(attempts))
	}
}

func TestStore_AddAndList(t *testing.T) {
	store, _ := newTestStore()
	ctx := context.Background()

	store.Add(ctx, attempt("a1", "101", "2026-08-29T10:00:00Z", 50))
	store.Add(ctx, attempt("a2", "101", "2026-08-30T10:00:00Z", 60))
	store.Add(ctx, attempt("a3", "102", "2026-08-28T10:00:00Z", 70))

	attempts := store.List(ctx)
	if len(attempts) != 3 {
		t.Fatalf("List = %d attempts, want 3", len(attempts))
	}

	// Most recent first regardless of insertion order.
	wantOrder := []string{"a2", "a1", "a3"}
	for i, want := range wantOrder {
		if attempts[i].AttemptID != want {
			t.Fatalf("List[%d] = %q, want %q", i, attempts[i].AttemptID, want)
		}
	}
}

func TestStore_AddIsIdempotent(t *testing.T) {
	store, _ := newTestStore()
	ctx := context.Background()

	record := attempt("a1", "101", "2026-08-30T10:00:00Z", 50)
	store.Add(ctx, record)
	store.Add(ctx, record)

	if got := len(store.List(ctx)); got != 1 {
		t.Fatalf("List = %d attempts after duplicate Add, want 1", got)
	}
}

func TestStore_Delete(t *testing.T) {
	store, _ := newTestStore()
	ctx := context.Background()

	store.Add(ctx, attempt("a1", "101", "2026-08-29T10:00:00Z", 50))
	store.Add(ctx, attempt("a2", "101", "2026-08-30T10:00:00Z", 60))

	store.Delete(ctx, "a1")
	attempts := store.List(ctx)
	if len(attempts) != 1 || attempts[0].AttemptID != "a2" {
		t.Fatalf("List after delete = %+v, want only a2", attempts)
	}

	// Deleting an absent ID is a no-op.
	store.Delete(ctx, "missing")
	if got := len(store.List(ctx)); got != 1 {
		t.Fatalf("List = %d after deleting missing ID, want 1", got)
	}
}

func TestStore_Clear(t *testing.T) {
	store, _ := newTestStore()
	ctx := context.Background()

	store.Add(ctx, attempt("a1", "101", "2026-08-30T10:00:00Z", 50))
	store.Clear(ctx)

	if got := len(store.List(ctx)); got != 0 {
		t.Fatalf("List = %d after Clear, want 0", got)
	}
}

func TestStore_BestAttempt(t *testing.T) {
	store, _ := newTestStore()
	ctx := context.Background()

	store.Add(ctx, attempt("a1", "101", "2026-08-28T10:00:00Z", 70))
	store.Add(ctx, attempt("a2", "101", "2026-08-29T10:00:00Z", 90))
	store.Add(ctx, attempt("a3", "101", "2026-08-30T10:00:00Z", 90))
	store.Add(ctx, attempt("a4", "102", "2026-08-30T11:00:00Z", 95))

	best := store.BestAttempt(ctx, "101")
	if best == nil {
		t.Fatal("BestAttempt = nil, want a3")
	}
	// Score tie resolved towards the most recent attempt.
	if best.AttemptID != "a3" {
		t.Fatalf("BestAttempt = %q, want a3", best.AttemptID)
	}

	if got := store.BestAttempt(ctx, "999"); got != nil {
		t.Fatalf("BestAttempt for unknown test = %+v, want nil", got)
	}
}

func TestStore_LastAttempt(t *testing.T) {
	store, _ := newTestStore()
	ctx := context.Background()

	store.Add(ctx, attempt("a1", "101", "2026-08-29T10:00:00Z", 70))
	store.Add(ctx, attempt("a2", "101", "2026-08-30T10:00:00Z", 40))

	last := store.LastAttempt(ctx, "101")
	if last == nil || last.AttemptID != "a2" {
		t.Fatalf("LastAttempt = %+v, want a2", last)
	}
	if got := store.LastAttempt(ctx, "999"); got != nil {
		t.Fatalf("LastAttempt for unknown test = %+v, want nil", got)
	}
}

func TestStore_Summary(t *testing.T) {
	store, _ := newTestStore()
	ctx := context.Background()

	store.Add(ctx, attempt("a1", "101", "2026-08-28T10:00:00Z", 70))
	store.Add(ctx, attempt("a2", "101", "2026-08-30T10:00:00Z", 50))
	store.Add(ctx, attempt("a3", "102", "2026-08-29T10:00:00Z", 95))

	summaries := store.Summary(ctx)
	if len(summaries) != 2 {
		t.Fatalf("Summary = %d rows, want 2", len(summaries))
	}

	// Ordered by each test's most recent attempt.
	first := summaries[0]
	if first.TestCode != "101" || first.Attempts != 2 {
		t.Fatalf("Summary[0] = %+v, want test 101 with 2 attempts", first)
	}
	if first.Last == nil || first.Last.AttemptID != "a2" {
		t.Fatalf("Summary[0].Last = %+v, want a2", first.Last)
	}
	if first.Best == nil || first.Best.AttemptID != "a1" {
		t.Fatalf("Summary[0].Best = %+v, want a1", first.Best)
	}

	if summaries[1].TestCode != "102" || summaries[1].Attempts != 1 {
		t.Fatalf("Summary[1] = %+v, want test 102 with 1 attempt", summaries[1])
	}
}

func TestStore_DropsMalformedEntries(t *testing.T) {
	store, medium := newTestStore()
	ctx := context.Background()

	valid, err := json.Marshal(attempt("a1", "101", "2026-08-30T10:00:00Z", 50))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	entries := []string{
		string(valid),
		`{"attempt_id":"a2"}`, // missing nearly everything
		`{"attempt_id":"a3","test_code":"101","test_name":"T","category":"ENEM","created_at":"2026-08-30T10:00:00Z","duration_seconds":7200,"totals":{"total":10,"wrong":1,"blank":1,"score_percent":80}}`, // totals.correct missing
		`{"attempt_id":"","test_code":"101","test_name":"T","category":"ENEM","created_at":"2026-08-30T10:00:00Z","duration_seconds":7200,"totals":{"total":10,"correct":8,"wrong":1,"blank":1,"score_percent":80}}`, // empty ID
		`{"attempt_id":"a4","test_code":"101","test_name":"T","category":"ENEM","created_at":"yesterday","duration_seconds":7200,"totals":{"total":10,"correct":8,"wrong":1,"blank":1,"score_percent":80}}`,          // bad timestamp
		`"not an object"`,
	}

	payload := "[" + strings.Join(entries, ",") + "]"
	if err := medium.Write(ctx, StorageKey, []byte(payload)); err != nil {
		t.Fatalf("seed medium: %v", err)
	}

	attempts := store.List(ctx)
	if len(attempts) != 1 || attempts[0].AttemptID != "a1" {
		t.Fatalf("List = %+v, want only the valid record", attempts)
	}
}

func TestStore_UnknownCategoryNormalized(t *testing.T) {
	store, medium := newTestStore()
	ctx := context.Background()

	raw := `[{"attempt_id":"a1","test_code":"101","test_name":"T","category":"VESTIBULAR","created_at":"2026-08-30T10:00:00Z","duration_seconds":7200,"totals":{"total":10,"correct":8,"wrong":1,"blank":1,"score_percent":80}}]`
	if err := medium.Write(ctx, StorageKey, []byte(raw)); err != nil {
		t.Fatalf("seed medium: %v", err)
	}

	attempts := store.List(ctx)
	if len(attempts) != 1 {
		t.Fatalf("List = %d attempts, want 1", len(attempts))
	}
	if attempts[0].Category != model.CategoryUnknown {
		t.Fatalf("Category = %q, want %q", attempts[0].Category, model.CategoryUnknown)
	}
}

func TestStore_CorruptedPayloadYieldsEmpty(t *testing.T) {
	store, medium := newTestStore()
	ctx := context.Background()

	if err := medium.Write(ctx, StorageKey, []byte(`{not json`)); err != nil {
		t.Fatalf("seed medium: %v", err)
	}

	if got := len(store.List(ctx)); got != 0 {
		t.Fatalf("List = %d on corrupted payload, want 0", got)
	}
}

// failingStore simulates an unavailable medium.
type failingStore struct{}

func (failingStore) Read(context.Context, string) ([]byte, bool, error) {
	return nil, false, errors.New("medium down")
}

func (failingStore) Write(context.Context, string, []byte) error {
	return errors.New("medium down")
}

func TestStore_MediumFailuresAreAbsorbed(t *testing.T) {
	store := NewStore(failingStore{}, zerolog.Nop())
	ctx := context.Background()

	if got := len(store.List(ctx)); got != 0 {
		t.Fatalf("List = %d on failing medium, want 0", got)
	}

	// None of these may panic or surface an error.
	store.Add(ctx, attempt("a1", "101", "2026-08-30T10:00:00Z", 50))
	store.Delete(ctx, "a1")
	store.Clear(ctx)
	if got := store.BestAttempt(ctx, "101"); got != nil {
		t.Fatalf("BestAttempt on failing medium = %+v, want nil", got)
	}
}
