package model

// NoSubjectLabel buckets questions that arrive without a subject label.
const NoSubjectLabel = "Sem materia"

// QuestionResult is the graded outcome of one question, carrying everything
// the review screen needs to replay it. Exactly one of correct, wrong or
// blank holds: blank when ChosenCode is nil, correct when Correct is true,
// wrong otherwise.
type QuestionResult struct {
	QuestionID  int            `json:"question_id"`
	Number      int            `json:"number"`
	Subject     string         `json:"subject"`
	Body        string         `json:"body"`
	Attachments []Attachment   `json:"attachments,omitempty"`
	Options     []AnswerOption `json:"options"`
	CorrectCode *int           `json:"correct_code"`
	ChosenCode  *int           `json:"chosen_code"`
	Correct     bool           `json:"correct"`
}

// SubjectStats aggregates grading counters for one subject label.
type SubjectStats struct {
	Subject string `json:"subject"`
	Correct int    `json:"correct"`
	Wrong   int    `json:"wrong"`
	Blank   int    `json:"blank"`
	Total   int    `json:"total"`
}

// TestResults is the full computed outcome of an attempt.
// ElapsedSeconds is frozen at finish time; nil while the attempt is live.
type TestResults struct {
	Correct        int              `json:"correct"`
	Wrong          int              `json:"wrong"`
	Blank          int              `json:"blank"`
	Percentage     int              `json:"percentage"`
	Subjects       []SubjectStats   `json:"subjects"`
	Questions      []QuestionResult `json:"questions"`
	ElapsedSeconds *int             `json:"elapsed_seconds,omitempty"`
}

// TotalQuestions returns the number of graded questions.
func (r *TestResults) TotalQuestions() int {
	return r.Correct + r.Wrong + r.Blank
}
