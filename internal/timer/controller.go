// Package timer derives remaining attempt time from the session's fixed start
// instant and configured duration. Remaining time is never stored; it is
// recomputed from the anchor on every evaluation, so a missed tick cannot
// drift the clock.
package timer

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/enemsprint/sprint-backend/internal/session"
)

// DefaultTickInterval is the cadence at which the controller re-evaluates
// remaining time while an attempt is live.
const DefaultTickInterval = time.Second

// Remaining returns the seconds left at instant now, and false when the
// session timer has not been configured. Never negative.
func Remaining(state session.State, now time.Time) (int, bool) {
	if !state.TimerSet() {
		return 0, false
	}
	elapsed := int(now.Sub(state.StartedAt) / time.Second)
	remaining := state.DurationSeconds - elapsed
	if remaining < 0 {
		remaining = 0
	}
	return remaining, true
}

// Elapsed returns whole seconds since the attempt started, clamped to the
// configured duration — a finished attempt never reports more elapsed time
// than was allotted. Returns 0 when the timer is unset.
func Elapsed(state session.State, now time.Time) int {
	if !state.TimerSet() {
		return 0
	}
	elapsed := int(now.Sub(state.StartedAt) / time.Second)
	if elapsed < 0 {
		elapsed = 0
	}
	if elapsed > state.DurationSeconds {
		elapsed = state.DurationSeconds
	}
	return elapsed
}

// Controller runs the periodic re-evaluation loop for one attempt and fires
// the expiry callback exactly once when remaining time reaches zero. The loop
// never fires before questions have loaded, and never after results have been
// frozen.
type Controller struct {
	machine  *session.Machine
	interval time.Duration
	log      zerolog.Logger
	now      func() time.Time

	mu     sync.Mutex
	cancel context.CancelFunc
}

// NewController creates a controller bound to one session machine.
func NewController(machine *session.Machine, interval time.Duration, log zerolog.Logger) *Controller {
	if interval <= 0 {
		interval = DefaultTickInterval
	}
	return &Controller{
		machine:  machine,
		interval: interval,
		log:      log.With().Str("component", "timer").Logger(),
		now:      time.Now,
	}
}

// Start launches the tick loop for a fresh attempt with its own expiry
// callback. Any loop from a previous attempt is canceled first; each loop
// carries its own fired flag, so a superseded loop can never spend the new
// loop's single expiry.
func (c *Controller) Start(ctx context.Context, onExpire func()) {
	c.mu.Lock()
	if c.cancel != nil {
		c.cancel()
	}
	loopCtx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	c.mu.Unlock()

	go c.run(loopCtx, onExpire)
}

// Stop cancels the tick loop. Safe to call when no loop is running.
func (c *Controller) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
}

// Remaining evaluates the current remaining time from the live session state.
func (c *Controller) Remaining() (int, bool) {
	return Remaining(c.machine.State(), c.now())
}

func (c *Controller) run(ctx context.Context, onExpire func()) {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	fired := false
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if c.evaluate(ctx, onExpire, &fired) {
				return
			}
		}
	}
}

// evaluate runs one tick of the loop owning ctx. Returns true when the loop
// should stop.
func (c *Controller) evaluate(ctx context.Context, onExpire func(), fired *bool) bool {
	state := c.machine.State()

	// Attempt already finished elsewhere; nothing left to watch.
	if state.Results != nil {
		return true
	}

	// Not ticking yet: timer unconfigured or questions still loading.
	if !state.TimerSet() || len(state.Questions) == 0 {
		return false
	}

	remaining, _ := Remaining(state, c.now())
	if remaining > 0 {
		return false
	}

	if *fired {
		return true
	}

	// A loop superseded between the state snapshot and this point must not
	// finish the next attempt's state.
	if ctx.Err() != nil {
		return true
	}
	*fired = true

	c.log.Info().
		Int("duration_seconds", state.DurationSeconds).
		Msg("Attempt time expired, triggering finish")

	if onExpire != nil {
		onExpire()
	}
	return true
}
