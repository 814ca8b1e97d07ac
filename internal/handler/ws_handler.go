package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/enemsprint/sprint-backend/internal/service"
	ws "github.com/enemsprint/sprint-backend/internal/websocket"
)

// buildUpgrader creates a WebSocket upgrader with origin validation.
// An empty allowedOrigins slice permits all origins (development mode).
func buildUpgrader(allowedOrigins []string) websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			if len(allowedOrigins) == 0 {
				return true
			}
			origin := r.Header.Get("Origin")
			for _, allowed := range allowedOrigins {
				if strings.EqualFold(allowed, origin) {
					return true
				}
			}
			return false
		},
	}
}

// WSHandler streams the live timer over WebSocket.
type WSHandler struct {
	attempts *service.AttemptService
	interval time.Duration
	log      zerolog.Logger
	upgrader websocket.Upgrader
}

// NewWSHandler creates a new WSHandler ticking at the given cadence.
func NewWSHandler(attempts *service.AttemptService, interval time.Duration, log zerolog.Logger, allowedOrigins []string) *WSHandler {
	if interval <= 0 {
		interval = time.Second
	}
	return &WSHandler{
		attempts: attempts,
		interval: interval,
		log:      log.With().Str("component", "ws_handler").Logger(),
		upgrader: buildUpgrader(allowedOrigins),
	}
}

// AttemptStream godoc
// WS /ws/v1/attempt/stream
// Pushes one remaining-time snapshot per tick while the attempt is live,
// then a final finished frame once results are frozen.
func (h *WSHandler) AttemptStream(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	defer conn.Close()

	// A stream opened with no attempt in progress has nothing to tick.
	if h.attempts.State().Test == nil {
		_ = ws.WriteError(conn, "no attempt in progress")
		return
	}

	// Discard inbound frames; their only purpose is surfacing a closed peer.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	for {
		select {
		case <-closed:
			return
		case <-c.Request.Context().Done():
			return
		case <-ticker.C:
			state := h.attempts.State()

			if state.Results != nil {
				elapsed := 0
				if state.Results.ElapsedSeconds != nil {
					elapsed = *state.Results.ElapsedSeconds
				}
				_ = ws.WriteTyped(conn, ws.FinishedResponse{
					Event:          ws.EventFinished,
					Percentage:     state.Results.Percentage,
					ElapsedSeconds: elapsed,
				})
				return
			}

			remaining, _ := h.attempts.Remaining()
			if err := ws.WriteTyped(conn, ws.TickResponse{
				Event:            ws.EventTick,
				RemainingSeconds: remaining,
				Answered:         len(state.Answers),
				TotalQuestions:   len(state.Questions),
			}); err != nil {
				return
			}
		}
	}
}
