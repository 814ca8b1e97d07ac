package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/enemsprint/sprint-backend/internal/model"
	"github.com/enemsprint/sprint-backend/internal/response"
	"github.com/enemsprint/sprint-backend/internal/scoring"
	"github.com/enemsprint/sprint-backend/internal/service"
	"github.com/enemsprint/sprint-backend/internal/validator"
)

// AttemptHandler exposes the attempt lifecycle over HTTP.
type AttemptHandler struct {
	attempts *service.AttemptService
	log      zerolog.Logger
}

// NewAttemptHandler creates a new AttemptHandler.
func NewAttemptHandler(attempts *service.AttemptService, log zerolog.Logger) *AttemptHandler {
	return &AttemptHandler{
		attempts: attempts,
		log:      log.With().Str("component", "attempt_handler").Logger(),
	}
}

// bindJSON binds and validates the request body, replying on failure:
// INVALID_PAYLOAD for bodies that are not valid JSON, VALIDATION_ERROR for
// field-level failures. Returns false when the request was rejected.
func bindJSON(c *gin.Context, dst interface{}) bool {
	fields := validator.Bind(c, dst)
	if fields == nil {
		return true
	}

	code := response.ErrValidation
	if _, ok := fields["detail"]; ok {
		code = response.ErrInvalidPayload
	}
	response.FailWithFields(c, http.StatusBadRequest, code, fields)
	return false
}

// stateResponse is the session snapshot returned to the presentation layer.
// Instants cross the API boundary as epoch milliseconds.
type stateResponse struct {
	AttemptID        string           `json:"attempt_id,omitempty"`
	Test             *model.Test      `json:"test"`
	Questions        []model.Question `json:"questions"`
	Answers          map[int]int      `json:"answers"`
	StartedAtMs      int64            `json:"started_at_ms,omitempty"`
	DurationSeconds  int              `json:"duration_seconds,omitempty"`
	RemainingSeconds int              `json:"remaining_seconds"`
	TimerSet         bool             `json:"timer_set"`
	Finished         bool             `json:"finished"`
}

func (h *AttemptHandler) buildState() stateResponse {
	state := h.attempts.State()
	remaining, timerSet := h.attempts.Remaining()

	resp := stateResponse{
		AttemptID:        h.attempts.AttemptID(),
		Test:             state.Test,
		Questions:        state.Questions,
		Answers:          state.Answers,
		DurationSeconds:  state.DurationSeconds,
		RemainingSeconds: remaining,
		TimerSet:         timerSet,
		Finished:         state.Results != nil,
	}
	if resp.Questions == nil {
		resp.Questions = []model.Question{}
	}
	if timerSet {
		resp.StartedAtMs = state.StartedAt.UnixMilli()
	}
	return resp
}

// StartAttempt godoc
// POST /api/v1/attempt/start
// Begins a new attempt: resets any previous session, selects the test and
// anchors the timer. Returns the fresh attempt ID and initial state.
func (h *AttemptHandler) StartAttempt(c *gin.Context) {
	var req model.StartAttemptRequest
	if !bindJSON(c, &req) {
		return
	}

	attemptID, _ := h.attempts.Start(&req.Test, req.DurationSeconds)

	response.Success(c, http.StatusCreated, gin.H{
		"attempt_id": attemptID,
		"state":      h.buildState(),
	})
}

// SetQuestions godoc
// PUT /api/v1/attempt/questions
// Stores the question set delivered by the catalog collaborator.
func (h *AttemptHandler) SetQuestions(c *gin.Context) {
	var req model.SetQuestionsRequest
	if !bindJSON(c, &req) {
		return
	}

	h.attempts.SetQuestions(req.Questions)
	response.Success(c, http.StatusOK, gin.H{"questions": len(req.Questions)})
}

// Answer godoc
// PUT /api/v1/attempt/answer
// Upserts one answer selection.
func (h *AttemptHandler) Answer(c *gin.Context) {
	var req model.AnswerRequest
	if !bindJSON(c, &req) {
		return
	}

	h.attempts.Answer(*req.QuestionID, *req.OptionCode)
	response.Success(c, http.StatusOK, gin.H{
		"question_id": *req.QuestionID,
		"option_code": *req.OptionCode,
	})
}

// Finish godoc
// POST /api/v1/attempt/finish
// Grades the attempt, freezes the results and persists the history record.
// Idempotent: a retried finish returns the already-frozen outcome.
func (h *AttemptHandler) Finish(c *gin.Context) {
	results, attempt := h.attempts.Finish(c.Request.Context())

	ranking := scoring.Rank(scoring.SubjectAccuracies(results.Subjects))
	response.Success(c, http.StatusOK, gin.H{
		"results": results,
		"ranking": ranking,
		"attempt": attempt,
	})
}

// Retake godoc
// POST /api/v1/attempt/retake
// Restarts the currently selected test with fresh answers and timer.
func (h *AttemptHandler) Retake(c *gin.Context) {
	attemptID, _, err := h.attempts.Retake()
	if err != nil {
		response.Fail(c, http.StatusConflict, response.ErrNoTestSelected)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{
		"attempt_id": attemptID,
		"state":      h.buildState(),
	})
}

// GetState godoc
// GET /api/v1/attempt/state
// Returns the live session snapshot, covering page reloads.
func (h *AttemptHandler) GetState(c *gin.Context) {
	response.Success(c, http.StatusOK, h.buildState())
}

// GetResults godoc
// GET /api/v1/attempt/results
// Returns the frozen results when finish has run; otherwise recomputes
// transparently over the live answers. 404 when nothing can be shown yet.
func (h *AttemptHandler) GetResults(c *gin.Context) {
	results, ranking, ok := h.attempts.Results()
	if !ok {
		response.Fail(c, http.StatusNotFound, response.ErrNoResults)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"results": results,
		"ranking": ranking,
	})
}
