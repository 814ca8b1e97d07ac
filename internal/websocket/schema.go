package websocket

// ─── Events (Server → Client) ───────────────────────────────────────

type Event string

const (
	EventTick     Event = "tick"
	EventFinished Event = "finished"
	EventError    Event = "error"
)

// TickResponse carries one remaining-time evaluation of the live attempt.
type TickResponse struct {
	Event            Event `json:"event"`
	RemainingSeconds int   `json:"remaining_seconds"`
	Answered         int   `json:"answered"`
	TotalQuestions   int   `json:"total_questions"`
}

// FinishedResponse is the final frame sent once the attempt has results.
type FinishedResponse struct {
	Event          Event `json:"event"`
	Percentage     int   `json:"percentage"`
	ElapsedSeconds int   `json:"elapsed_seconds"`
}

// ErrorResponse reports a stream-level failure before closing.
type ErrorResponse struct {
	Event Event  `json:"event"`
	Error string `json:"error"`
}
