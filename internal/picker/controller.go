// Package picker owns the picker lifecycle: one trigger in, at most one
// surface up, and at most one injection sequence out.
package picker

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/hpungsan/easypass/internal/autotype"
	"github.com/hpungsan/easypass/internal/credential"
	"github.com/hpungsan/easypass/internal/hook"
)

// Store is the read side of the credential store.
type Store interface {
	// ListAll returns every credential ordered by group then name.
	ListAll(ctx context.Context) ([]credential.Credential, error)
}

// Surface presents a session and reports the choice through Callbacks.
type Surface interface {
	// Show presents s. It is called on the UI thread and may block until
	// the user chooses or dismisses. When ctx is done the surface must
	// close (or not open at all) and return.
	Show(ctx context.Context, s Session, cb Callbacks) error
}

// Dispatcher runs funcs on the UI thread.
type Dispatcher interface {
	Post(fn func())
	PostAfter(d time.Duration, fn func())
}

// State is the controller's position in the trigger flow.
type State int32

const (
	StateIdle State = iota
	StateFetching
	StateBuilt
	StateVisible
	StateDismissed
	StateSelected
	StateInjecting
)

var stateNames = [...]string{"idle", "fetching", "built", "visible", "dismissed", "selected", "injecting"}

func (s State) String() string {
	if int(s) < len(stateNames) {
		return stateNames[s]
	}
	return "unknown"
}

// Timing holds the fixed delays of the flow.
type Timing struct {
	// Show delays the surface so focus changes caused by the click settle.
	Show time.Duration
	// OneClick is the pause before a username/next-field/secret/submit sequence.
	OneClick time.Duration
	// SingleField is the pause before typing only a username or a secret.
	SingleField time.Duration
}

// DefaultTiming fills the zero fields of the Timing given to NewController.
var DefaultTiming = Timing{
	Show:        50 * time.Millisecond,
	OneClick:    50 * time.Millisecond,
	SingleField: 100 * time.Millisecond,
}

// Stats counts what the controller did.
type Stats struct {
	Triggers  uint64 `json:"triggers"`
	Shown     uint64 `json:"shown"`
	Dismissed uint64 `json:"dismissed"`
	Injected  uint64 `json:"injected"`
	Failures  uint64 `json:"failures"`
	Stale     uint64 `json:"stale"`
}

// Controller turns triggers into a picker and a picker choice into
// keystrokes. OnTrigger, the delayed show and injection all run on the UI
// thread via the Dispatcher; Interrupt, State and ActiveSessions may be
// called from anywhere.
type Controller struct {
	store    Store
	surface  Surface
	dispatch Dispatcher
	injector autotype.Injector
	timing   Timing
	logger   *slog.Logger

	// current is the one live session, nil when none.
	current atomic.Pointer[Session]
	// selected is a session whose choice is waiting out its pre-injection delay.
	selected atomic.Pointer[Session]
	state    atomic.Int32

	triggers, shown, dismissed, injected, failures, stale atomic.Uint64
}

// NewController wires a controller. Zero fields in timing keep their defaults.
func NewController(store Store, surface Surface, dispatch Dispatcher, injector autotype.Injector, timing Timing) *Controller {
	if timing.Show == 0 {
		timing.Show = DefaultTiming.Show
	}
	if timing.OneClick == 0 {
		timing.OneClick = DefaultTiming.OneClick
	}
	if timing.SingleField == 0 {
		timing.SingleField = DefaultTiming.SingleField
	}
	return &Controller{
		store:    store,
		surface:  surface,
		dispatch: dispatch,
		injector: injector,
		timing:   timing,
		logger:   slog.With("component", "picker"),
	}
}

// State returns the current state.
func (c *Controller) State() State { return State(c.state.Load()) }

// ActiveSessions returns 1 while a session is live and 0 otherwise.
func (c *Controller) ActiveSessions() int {
	if c.current.Load() != nil {
		return 1
	}
	return 0
}

// Current returns the live session, or nil.
func (c *Controller) Current() *Session { return c.current.Load() }

// Stats returns a snapshot of the counters.
func (c *Controller) Stats() Stats {
	return Stats{
		Triggers:  c.triggers.Load(),
		Shown:     c.shown.Load(),
		Dismissed: c.dismissed.Load(),
		Injected:  c.injected.Load(),
		Failures:  c.failures.Load(),
		Stale:     c.stale.Load(),
	}
}

// Interrupt retires the live session, which closes its surface, so a
// modal surface frees the UI thread for the next trigger. A delayed show
// of the retired session is dropped. Safe from any goroutine.
//
// A retired Built or Visible session leaves the controller Idle. Selected
// and Injecting belong to a choice already made and are left alone.
func (c *Controller) Interrupt() {
	if old := c.current.Swap(nil); old != nil {
		old.cancel()
		c.settleIdle()
	}
}

// settleIdle moves a Built or Visible controller with no live session to Idle.
func (c *Controller) settleIdle() {
	if c.state.CompareAndSwap(int32(StateVisible), int32(StateIdle)) {
		return
	}
	c.state.CompareAndSwap(int32(StateBuilt), int32(StateIdle))
}

// OnTrigger handles one trigger. UI thread only. It never panics or
// returns an error: every failure is logged and leaves the controller idle.
func (c *Controller) OnTrigger(ctx context.Context, ev hook.TriggerEvent) {
	defer c.guard("trigger")
	c.triggers.Add(1)
	c.setState(StateFetching)

	creds, err := c.store.ListAll(ctx)

	// Whatever came before is torn down first, even when the fetch failed.
	c.teardown()

	if err != nil {
		c.fail("credential fetch failed", err)
		return
	}

	s := newSession(ctx, ev.Position, creds)
	c.current.Store(s)
	c.setState(StateBuilt)
	c.logger.Debug("picker built", "session", s.ID, "groups", len(s.Groups), "credentials", len(creds))

	c.dispatch.PostAfter(c.timing.Show, func() { c.show(s) })
}

// teardown closes the live session and drops any choice still waiting for
// its injection delay. An injection that already started is not affected.
func (c *Controller) teardown() {
	if old := c.current.Swap(nil); old != nil {
		old.cancel()
		c.logger.Debug("picker torn down", "session", old.ID)
	}
	c.selected.Store(nil)
}

func (c *Controller) show(s *Session) {
	defer c.guard("show")
	if c.current.Load() != s {
		c.stale.Add(1)
		c.logger.Debug("dropping stale show", "session", s.ID)
		return
	}

	c.setState(StateVisible)
	c.shown.Add(1)
	if err := c.surface.Show(s.ctx, *s, c.callbacks(s)); err != nil {
		if c.current.CompareAndSwap(s, nil) {
			s.cancel()
			c.fail("picker show failed", err)
			return
		}
	}
	// Retired while shown, without the surface reporting a dismissal.
	if c.current.Load() != s {
		c.settleIdle()
	}
}

func (c *Controller) callbacks(s *Session) Callbacks {
	return Callbacks{
		OneClick: func(username, secret string) {
			c.choose(s, autotype.ActionOneClick, username, secret)
		},
		Username: func(username string) {
			c.choose(s, autotype.ActionUsername, username, "")
		},
		Password: func(secret string) {
			c.choose(s, autotype.ActionPassword, "", secret)
		},
		Dismiss: func() {
			if !c.current.CompareAndSwap(s, nil) {
				return
			}
			s.cancel()
			c.dismissed.Add(1)
			c.setState(StateDismissed)
			c.setState(StateIdle)
		},
	}
}

func (c *Controller) choose(s *Session, action autotype.Action, username, secret string) {
	// Only the live session may choose; a torn-down surface reporting late is ignored.
	if !c.current.CompareAndSwap(s, nil) {
		return
	}
	s.cancel()
	c.setState(StateSelected)
	c.selected.Store(s)

	delay := c.timing.SingleField
	if action == autotype.ActionOneClick {
		delay = c.timing.OneClick
	}
	steps := autotype.Plan(action, username, secret)

	c.dispatch.PostAfter(delay, func() {
		if !c.selected.CompareAndSwap(s, nil) {
			c.logger.Debug("selection superseded before typing", "session", s.ID)
			return
		}
		c.inject(s, action, steps)
	})
}

func (c *Controller) inject(s *Session, action autotype.Action, steps []autotype.Step) {
	defer c.guard("inject")
	c.setState(StateInjecting)
	if err := autotype.Run(c.injector, steps); err != nil {
		c.fail("auto-type failed", err, "action", action.String())
		return
	}
	c.injected.Add(1)
	c.logger.Debug("auto-type done", "session", s.ID, "action", action.String(), "steps", len(steps))
	c.setState(StateIdle)
}

func (c *Controller) fail(msg string, err error, args ...any) {
	c.failures.Add(1)
	c.logger.Warn(msg, append([]any{"error", err}, args...)...)
	c.setState(StateIdle)
}

// guard turns a panic in one step of the flow into a logged failure.
func (c *Controller) guard(step string) {
	if r := recover(); r != nil {
		if old := c.current.Swap(nil); old != nil {
			old.cancel()
		}
		c.fail("picker step panicked", fmt.Errorf("%v", r), "step", step)
	}
}

func (c *Controller) setState(s State) {
	c.state.Store(int32(s))
}
