package model

// StartAttemptRequest is the payload for beginning a new attempt. When
// DurationSeconds is omitted the test's default sitting length applies.
type StartAttemptRequest struct {
	Test            Test `json:"test" binding:"required"`
	DurationSeconds int  `json:"duration_seconds" binding:"omitempty,min=60,max=86400"`
}

// SetQuestionsRequest delivers the already-deserialized question set for the
// selected test. The engine never fetches questions itself.
type SetQuestionsRequest struct {
	Questions []Question `json:"questions" binding:"required,dive"`
}

// AnswerRequest upserts one answer selection. Answering the same question
// again overwrites the prior choice. Pointer fields so that a legitimate
// identifier or code of 0 is not conflated with an absent key.
type AnswerRequest struct {
	QuestionID *int `json:"question_id" binding:"required"`
	OptionCode *int `json:"option_code" binding:"required"`
}
