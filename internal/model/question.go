package model

// Attachment is a reference to a media file displayed alongside a question
// or an answer option.
type Attachment struct {
	Link string `json:"link"`
}

// AnswerOption is one selectable choice on a multiple-choice question.
// Exactly one option per question should carry Correct=true; the engine does
// not enforce that upstream and simply uses the first flagged option it finds.
type AnswerOption struct {
	Code        int          `json:"code"`
	Text        string       `json:"text"`
	Correct     bool         `json:"correct"`
	Attachments []Attachment `json:"attachments,omitempty"`
}

// Question is a single exam question, already deserialized by the catalog
// collaborator. Body carries sanitized markup for rendering.
type Question struct {
	ID          int            `json:"id"`
	Number      int            `json:"number"`
	Subject     string         `json:"subject"`
	Body        string         `json:"body"`
	Attachments []Attachment   `json:"attachments,omitempty"`
	Options     []AnswerOption `json:"options"`
}

// CorrectOptionCode returns the code of the first option flagged correct,
// or nil when no option is flagged.
func (q *Question) CorrectOptionCode() *int {
	for i := range q.Options {
		if q.Options[i].Correct {
			code := q.Options[i].Code
			return &code
		}
	}
	return nil
}
