package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/enemsprint/sprint-backend/internal/history"
	"github.com/enemsprint/sprint-backend/internal/response"
)

// HistoryHandler exposes the attempt history over HTTP.
type HistoryHandler struct {
	store *history.Store
	log   zerolog.Logger
}

// NewHistoryHandler creates a new HistoryHandler.
func NewHistoryHandler(store *history.Store, log zerolog.Logger) *HistoryHandler {
	return &HistoryHandler{
		store: store,
		log:   log.With().Str("component", "history_handler").Logger(),
	}
}

// ListAttempts godoc
// GET /api/v1/history
// Returns every valid stored attempt, most recent first.
func (h *HistoryHandler) ListAttempts(c *gin.Context) {
	attempts := h.store.List(c.Request.Context())
	response.Success(c, http.StatusOK, gin.H{"attempts": attempts})
}

// DeleteAttempt godoc
// DELETE /api/v1/history/:attempt_id
// Removes one record; a no-op when the ID is absent.
func (h *HistoryHandler) DeleteAttempt(c *gin.Context) {
	attemptID := c.Param("attempt_id")
	if attemptID == "" {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	h.store.Delete(c.Request.Context(), attemptID)
	response.Success(c, http.StatusOK, gin.H{"deleted": attemptID})
}

// ClearHistory godoc
// DELETE /api/v1/history
// Empties the whole collection.
func (h *HistoryHandler) ClearHistory(c *gin.Context) {
	h.store.Clear(c.Request.Context())
	response.Success(c, http.StatusOK, gin.H{"cleared": true})
}

// GetBestAttempt godoc
// GET /api/v1/history/tests/:test_code/best
// Returns the highest-scoring attempt for a test, ties going to the most
// recent one.
func (h *HistoryHandler) GetBestAttempt(c *gin.Context) {
	attempt := h.store.BestAttempt(c.Request.Context(), c.Param("test_code"))
	if attempt == nil {
		response.Fail(c, http.StatusNotFound, response.ErrAttemptNotFound)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"attempt": attempt})
}

// GetLastAttempt godoc
// GET /api/v1/history/tests/:test_code/last
// Returns the most recent attempt for a test.
func (h *HistoryHandler) GetLastAttempt(c *gin.Context) {
	attempt := h.store.LastAttempt(c.Request.Context(), c.Param("test_code"))
	if attempt == nil {
		response.Fail(c, http.StatusNotFound, response.ErrAttemptNotFound)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"attempt": attempt})
}

// GetSummary godoc
// GET /api/v1/history/summary
// Returns the per-test overview (attempt count, best and last) for
// dashboard listings.
func (h *HistoryHandler) GetSummary(c *gin.Context) {
	summary := h.store.Summary(c.Request.Context())
	response.Success(c, http.StatusOK, gin.H{"tests": summary})
}
