// Package scoring grades a question set against an answer selection map.
// Compute is a pure function: it never mutates its inputs and produces a
// fresh results value on every call, so callers that need a stable outcome
// across renders must freeze the first value in the session state.
package scoring

import (
	"math"

	"github.com/enemsprint/sprint-backend/internal/model"
)

// Compute grades questions in input order against the answer map.
// A question with no flagged-correct option has a nil correct code, so any
// chosen answer for it is classified wrong rather than crashing the grader.
func Compute(questions []model.Question, answers map[int]int) *model.TestResults {
	results := &model.TestResults{
		Subjects:  []model.SubjectStats{},
		Questions: make([]model.QuestionResult, 0, len(questions)),
	}

	subjectIdx := make(map[string]int)

	for i := range questions {
		q := &questions[i]

		correctCode := q.CorrectOptionCode()

		var chosenCode *int
		if code, ok := answers[q.ID]; ok {
			chosen := code
			chosenCode = &chosen
		}

		isCorrect := chosenCode != nil && correctCode != nil && *chosenCode == *correctCode

		switch {
		case chosenCode == nil:
			results.Blank++
		case isCorrect:
			results.Correct++
		default:
			results.Wrong++
		}

		subject := q.Subject
		if subject == "" {
			subject = model.NoSubjectLabel
		}

		idx, ok := subjectIdx[subject]
		if !ok {
			idx = len(results.Subjects)
			subjectIdx[subject] = idx
			results.Subjects = append(results.Subjects, model.SubjectStats{Subject: subject})
		}

		stats := &results.Subjects[idx]
		stats.Total++
		switch {
		case chosenCode == nil:
			stats.Blank++
		case isCorrect:
			stats.Correct++
		default:
			stats.Wrong++
		}

		results.Questions = append(results.Questions, model.QuestionResult{
			QuestionID:  q.ID,
			Number:      q.Number,
			Subject:     subject,
			Body:        q.Body,
			Attachments: q.Attachments,
			Options:     q.Options,
			CorrectCode: correctCode,
			ChosenCode:  chosenCode,
			Correct:     isCorrect,
		})
	}

	if len(questions) > 0 {
		results.Percentage = int(math.Round(float64(results.Correct) / float64(len(questions)) * 100))
	}

	return results
}

// ScorePercent returns the one-decimal percent used in stored attempt totals,
// 0 when total is 0.
func ScorePercent(correct, total int) float64 {
	if total == 0 {
		return 0
	}
	return math.Round(float64(correct)/float64(total)*1000) / 10
}
