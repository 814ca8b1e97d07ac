package model

// AttemptTotals is the score summary persisted with a stored attempt.
// ScorePercent is a one-decimal percent, unlike TestResults.Percentage which
// is rounded to an integer for display.
type AttemptTotals struct {
	Total        int     `json:"total"`
	Correct      int     `json:"correct"`
	Wrong        int     `json:"wrong"`
	Blank        int     `json:"blank"`
	ScorePercent float64 `json:"score_percent"`
}

// SubjectAccuracy is one per-subject row persisted with a stored attempt.
// Accuracy is a one-decimal percent, 0 when Total is 0.
type SubjectAccuracy struct {
	Subject  string  `json:"subject"`
	Total    int     `json:"total"`
	Correct  int     `json:"correct"`
	Wrong    int     `json:"wrong"`
	Blank    int     `json:"blank"`
	Accuracy float64 `json:"accuracy"`
}

// StoredAttempt is the immutable history record of one completed attempt.
// Created once at finish time; never mutated afterwards, only deleted.
// CreatedAt is an ISO-8601 (RFC 3339) instant.
type StoredAttempt struct {
	AttemptID       string            `json:"attempt_id"`
	TestCode        string            `json:"test_code"`
	TestName        string            `json:"test_name"`
	Category        ExamCategory      `json:"category"`
	CreatedAt       string            `json:"created_at"`
	DurationSeconds int               `json:"duration_seconds"`
	Totals          AttemptTotals     `json:"totals"`
	Subjects        []SubjectAccuracy `json:"subjects,omitempty"`
}
