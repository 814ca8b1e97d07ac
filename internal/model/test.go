package model

import "strings"

// Test identifies a practice exam. Immutable once delivered by the catalog
// collaborator; the engine never fetches or mutates it.
type Test struct {
	Code          int    `json:"code"`
	Name          string `json:"name"`
	Kind          string `json:"kind,omitempty"`
	AppliedAt     string `json:"applied_at,omitempty"`
	Institution   string `json:"institution,omitempty"`
	PaperLink     string `json:"paper_link,omitempty"`
	AnswerKeyLink string `json:"answer_key_link,omitempty"`
}

// ExamCategory is the coarse classification of which program a test belongs to.
type ExamCategory string

const (
	CategoryENEM    ExamCategory = "ENEM"
	CategoryIFTM    ExamCategory = "IFTM"
	CategoryUFU     ExamCategory = "UFU"
	CategoryUnknown ExamCategory = "UNKNOWN"
)

// ResolveExamCategory derives the exam category from the test name and the
// institution that authored it. Matching is a lowercased substring check.
func ResolveExamCategory(testName, institution string) ExamCategory {
	name := strings.ToLower(testName)
	inst := strings.ToLower(institution)

	switch {
	case strings.Contains(name, "enem") || strings.Contains(inst, "inep"):
		return CategoryENEM
	case strings.Contains(name, "iftm") || strings.Contains(inst, "iftm"):
		return CategoryIFTM
	case strings.Contains(name, "ufu") || strings.Contains(inst, "ufu"):
		return CategoryUFU
	default:
		return CategoryUnknown
	}
}

// Full ENEM sittings run longer than the generic two-hour default.
const (
	durationDayOne  = 19800 // 5h30
	durationDayTwo  = 18000 // 5h00
	durationDefault = 7200  // 2h00
)

// DefaultDurationSeconds returns the configured sitting length for a test,
// inferred from its display name.
func DefaultDurationSeconds(testName string) int {
	name := strings.ToLower(testName)
	switch {
	case strings.Contains(name, "dia 1"):
		return durationDayOne
	case strings.Contains(name, "dia 2"):
		return durationDayTwo
	default:
		return durationDefault
	}
}
