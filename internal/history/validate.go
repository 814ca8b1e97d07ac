package history

import (
	"encoding/json"
	"time"

	"github.com/enemsprint/sprint-backend/internal/model"
)

// attemptSchema mirrors model.StoredAttempt with pointer fields so a missing
// key is distinguishable from a zero value. Deserialized records are only
// trusted after this explicit schema check — a half-written or hand-edited
// entry must never crash the reader.
type attemptSchema struct {
	AttemptID       *string                 `json:"attempt_id"`
	TestCode        *string                 `json:"test_code"`
	TestName        *string                 `json:"test_name"`
	Category        *string                 `json:"category"`
	CreatedAt       *string                 `json:"created_at"`
	DurationSeconds *int                    `json:"duration_seconds"`
	Totals          *totalsSchema           `json:"totals"`
	Subjects        []model.SubjectAccuracy `json:"subjects"`
}

type totalsSchema struct {
	Total        *int     `json:"total"`
	Correct      *int     `json:"correct"`
	Wrong        *int     `json:"wrong"`
	Blank        *int     `json:"blank"`
	ScorePercent *float64 `json:"score_percent"`
}

// decodeAttempt parses one raw history entry, reporting false for malformed
// records: wrong JSON shape, missing required fields, or an unparseable
// creation timestamp (every ordering rule depends on it).
func decodeAttempt(raw json.RawMessage) (model.StoredAttempt, bool) {
	var s attemptSchema
	if err := json.Unmarshal(raw, &s); err != nil {
		return model.StoredAttempt{}, false
	}

	if s.AttemptID == nil || s.TestCode == nil || s.TestName == nil ||
		s.Category == nil || s.CreatedAt == nil || s.DurationSeconds == nil ||
		s.Totals == nil {
		return model.StoredAttempt{}, false
	}
	t := s.Totals
	if t.Total == nil || t.Correct == nil || t.Wrong == nil || t.Blank == nil || t.ScorePercent == nil {
		return model.StoredAttempt{}, false
	}
	if *s.AttemptID == "" {
		return model.StoredAttempt{}, false
	}
	if _, err := time.Parse(time.RFC3339, *s.CreatedAt); err != nil {
		return model.StoredAttempt{}, false
	}

	return model.StoredAttempt{
		AttemptID:       *s.AttemptID,
		TestCode:        *s.TestCode,
		TestName:        *s.TestName,
		Category:        normalizeCategory(*s.Category),
		CreatedAt:       *s.CreatedAt,
		DurationSeconds: *s.DurationSeconds,
		Totals: model.AttemptTotals{
			Total:        *t.Total,
			Correct:      *t.Correct,
			Wrong:        *t.Wrong,
			Blank:        *t.Blank,
			ScorePercent: *t.ScorePercent,
		},
		Subjects: s.Subjects,
	}, true
}

// normalizeCategory collapses anything outside the known closed set to the
// unknown category.
func normalizeCategory(raw string) model.ExamCategory {
	switch c := model.ExamCategory(raw); c {
	case model.CategoryENEM, model.CategoryIFTM, model.CategoryUFU:
		return c
	default:
		return model.CategoryUnknown
	}
}
