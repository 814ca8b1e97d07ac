package scoring

import (
	"sort"
	"strings"

	"github.com/enemsprint/sprint-backend/internal/model"
)

const (
	// MinQuestionsForRanking is how many questions a subject needs before it
	// is eligible for the strengths/weaknesses ranking.
	MinQuestionsForRanking = 3
	// MinSubjectsForRanking is how many eligible subjects are needed before
	// any ranking is shown at all.
	MinSubjectsForRanking = 2

	rankingLimit = 3
)

// uncategorizedLabel replaces the grader's internal no-subject sentinel in
// user-facing subject rows.
const uncategorizedLabel = "Sem categoria"

// NormalizeSubjectLabel maps empty or sentinel subject labels to the
// user-facing uncategorized label.
func NormalizeSubjectLabel(raw string) string {
	label := strings.TrimSpace(raw)
	if label == "" || strings.EqualFold(label, model.NoSubjectLabel) {
		return uncategorizedLabel
	}
	return label
}

// SubjectAccuracies converts grading counters into the per-subject accuracy
// rows persisted with an attempt, sorted by accuracy descending with ties
// broken by question count descending.
func SubjectAccuracies(stats []model.SubjectStats) []model.SubjectAccuracy {
	rows := make([]model.SubjectAccuracy, 0, len(stats))
	for _, s := range stats {
		rows = append(rows, model.SubjectAccuracy{
			Subject:  NormalizeSubjectLabel(s.Subject),
			Total:    s.Total,
			Correct:  s.Correct,
			Wrong:    s.Wrong,
			Blank:    s.Blank,
			Accuracy: ScorePercent(s.Correct, s.Total),
		})
	}

	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Accuracy != rows[j].Accuracy {
			return rows[i].Accuracy > rows[j].Accuracy
		}
		return rows[i].Total > rows[j].Total
	})

	return rows
}

// Ranking is the strengths/weaknesses view derived from subject accuracy
// rows. HasData is false when fewer than MinSubjectsForRanking subjects carry
// enough questions, in which case both lists are empty.
type Ranking struct {
	HasData    bool                    `json:"has_data"`
	Strengths  []model.SubjectAccuracy `json:"strengths"`
	Weaknesses []model.SubjectAccuracy `json:"weaknesses"`
}

// Rank selects the top and bottom subjects by accuracy among those with at
// least MinQuestionsForRanking questions. Each list is capped at three
// entries; ties are broken by question count descending.
func Rank(rows []model.SubjectAccuracy) Ranking {
	eligible := make([]model.SubjectAccuracy, 0, len(rows))
	for _, r := range rows {
		if r.Total >= MinQuestionsForRanking {
			eligible = append(eligible, r)
		}
	}

	if len(eligible) < MinSubjectsForRanking {
		return Ranking{Strengths: []model.SubjectAccuracy{}, Weaknesses: []model.SubjectAccuracy{}}
	}

	strengths := make([]model.SubjectAccuracy, len(eligible))
	copy(strengths, eligible)
	sort.SliceStable(strengths, func(i, j int) bool {
		if strengths[i].Accuracy != strengths[j].Accuracy {
			return strengths[i].Accuracy > strengths[j].Accuracy
		}
		return strengths[i].Total > strengths[j].Total
	})

	weaknesses := make([]model.SubjectAccuracy, len(eligible))
	copy(weaknesses, eligible)
	sort.SliceStable(weaknesses, func(i, j int) bool {
		if weaknesses[i].Accuracy != weaknesses[j].Accuracy {
			return weaknesses[i].Accuracy < weaknesses[j].Accuracy
		}
		return weaknesses[i].Total > weaknesses[j].Total
	})

	if len(strengths) > rankingLimit {
		strengths = strengths[:rankingLimit]
	}
	if len(weaknesses) > rankingLimit {
		weaknesses = weaknesses[:rankingLimit]
	}

	return Ranking{HasData: true, Strengths: strengths, Weaknesses: weaknesses}
}
