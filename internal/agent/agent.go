// Package agent wires the input hook, the handoff queue, the UI loop and
// the picker controller into one background service.
package agent

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/hpungsan/easypass/internal/autotype"
	"github.com/hpungsan/easypass/internal/config"
	"github.com/hpungsan/easypass/internal/errors"
	"github.com/hpungsan/easypass/internal/handoff"
	"github.com/hpungsan/easypass/internal/hook"
	"github.com/hpungsan/easypass/internal/picker"
	"github.com/hpungsan/easypass/internal/surface"
	"github.com/hpungsan/easypass/internal/uiloop"
)

const (
	// DefaultDiagnosticsInterval is how often hook faults and coalesced
	// triggers are checked and logged.
	DefaultDiagnosticsInterval = 5 * time.Second

	// stopTimeout bounds how long Stop waits for the UI thread, which may
	// be finishing an injection.
	stopTimeout = 5 * time.Second
)

// Agent is the background service behind `easypass run`. Create it with
// New, then Start once and Stop once.
type Agent struct {
	cfg      *config.Config
	store    picker.Store
	hook     hook.Hook
	surface  picker.Surface
	injector autotype.Injector
	cursor   hook.CursorFunc
	diagEach time.Duration
	logger   *slog.Logger

	queue   *handoff.Queue
	monitor *hook.Monitor
	loop    *uiloop.Loop
	ctrl    *picker.Controller

	mu         sync.Mutex
	started    bool
	installed  bool
	windowOnly bool
	cancel     context.CancelFunc
	pumpCancel context.CancelFunc
	pumpDone   chan struct{}
	diagDone   chan struct{}
	stopOnce   sync.Once
}

// Option configures the agent.
type Option func(*Agent)

// WithHook replaces the platform input hook.
func WithHook(h hook.Hook) Option {
	return func(a *Agent) { a.hook = h }
}

// WithSurface replaces the platform picker surface.
func WithSurface(s picker.Surface) Option {
	return func(a *Agent) { a.surface = s }
}

// WithInjector replaces the platform keystroke injector.
func WithInjector(inj autotype.Injector) Option {
	return func(a *Agent) { a.injector = inj }
}

// WithCursor replaces the cursor position query.
func WithCursor(fn hook.CursorFunc) Option {
	return func(a *Agent) { a.cursor = fn }
}

// WithDiagnosticsInterval sets how often diagnostics are logged.
func WithDiagnosticsInterval(d time.Duration) Option {
	return func(a *Agent) { a.diagEach = d }
}

// New creates an agent reading credentials from store. Platform backends
// are used unless replaced by options.
func New(store picker.Store, cfg *config.Config, opts ...Option) *Agent {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	a := &Agent{
		cfg:      cfg,
		store:    store,
		diagEach: DefaultDiagnosticsInterval,
		logger:   slog.With("component", "agent"),
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.hook == nil {
		a.hook = hook.NewSystem(cfg.TriggerModifier)
	}
	if a.surface == nil {
		a.surface = surface.NewSystem()
	}
	if a.injector == nil {
		a.injector = autotype.NewSystem()
	}
	if a.cursor == nil {
		a.cursor = hook.CursorPos
	}
	return a
}

// Start installs the hook and starts the UI loop and the trigger pump.
//
// When the hook cannot be installed the agent keeps running without the
// hotkey if allow_window_only is set, and fails with HOOK_INSTALL_FAILED
// otherwise.
func (a *Agent) Start(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.started {
		return errors.NewInvalidRequest("agent already started")
	}

	runCtx, cancel := context.WithCancel(ctx)

	a.queue = handoff.NewQueue(a.cfg.TriggerQueueSize)
	a.monitor = hook.NewMonitor(a.queue, a.cursor)
	a.loop = uiloop.New()
	a.ctrl = picker.NewController(a.store, a.surface, a.loop, a.injector, picker.Timing{
		Show:        a.cfg.ShowDelay(),
		OneClick:    a.cfg.OneClickDelay(),
		SingleField: a.cfg.SingleFieldDelay(),
	})

	go a.loop.Run(runCtx)

	if err := a.hook.Install(a.monitor); err != nil {
		if !a.cfg.WindowOnlyAllowed() {
			a.loop.Stop()
			cancel()
			return err
		}
		a.logger.Warn("input hook unavailable, running window-only", "error", err)
		a.windowOnly = true
	} else {
		a.installed = true
	}

	pumpCtx, pumpCancel := context.WithCancel(runCtx)
	a.cancel = cancel
	a.pumpCancel = pumpCancel
	a.pumpDone = make(chan struct{})
	a.diagDone = make(chan struct{})
	a.started = true

	go a.pump(runCtx, pumpCtx)
	go a.diagnostics(pumpCtx)

	a.logger.Info("agent started",
		"modifier", a.cfg.TriggerModifier,
		"window_only", a.windowOnly,
		"queue_size", a.cfg.TriggerQueueSize,
	)
	return nil
}

// pump moves triggers from the hook side to the UI thread. Each trigger
// first interrupts the live picker so a modal surface returns and the UI
// thread can take the new trigger.
func (a *Agent) pump(runCtx, pumpCtx context.Context) {
	defer close(a.pumpDone)
	for {
		ev, ok := a.queue.Receive(pumpCtx)
		if !ok {
			return
		}
		a.ctrl.Interrupt()
		a.loop.Post(func() { a.ctrl.OnTrigger(runCtx, ev) })
	}
}

// diagnostics logs hook faults and coalesced triggers. The hook callback
// itself never logs.
func (a *Agent) diagnostics(ctx context.Context) {
	defer close(a.diagDone)
	if a.diagEach <= 0 {
		<-ctx.Done()
		return
	}

	ticker := time.NewTicker(a.diagEach)
	defer ticker.Stop()

	var faults, coalesced uint64
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		if n := a.monitor.Faults(); n > faults {
			a.logger.Warn("input hook callback faults", "new", n-faults, "total", n, "last", a.monitor.LastFault())
			faults = n
		}
		if n := a.queue.Coalesced(); n > coalesced {
			a.logger.Info("triggers coalesced", "new", n-coalesced, "total", n)
			coalesced = n
		}
	}
}

// Stop uninstalls the hook, stops the pump and drains the UI thread.
// Only the first call does anything.
func (a *Agent) Stop() {
	a.stopOnce.Do(func() {
		a.mu.Lock()
		defer a.mu.Unlock()
		if !a.started {
			return
		}

		if a.installed {
			if err := a.hook.Uninstall(); err != nil {
				a.logger.Warn("input hook uninstall failed", "error", err)
			}
			a.installed = false
		}

		a.pumpCancel()
		<-a.pumpDone
		<-a.diagDone

		// Close a visible picker, then release the surface on its own thread.
		a.ctrl.Interrupt()
		a.loop.Post(func() {
			surface.Close(a.surface)
			a.loop.Stop()
		})
		select {
		case <-a.loop.Done():
		case <-time.After(stopTimeout):
			a.logger.Warn("UI thread did not stop in time")
		}
		a.cancel()

		a.logger.Info("agent stopped", "triggers", a.monitor.Triggers(), "faults", a.monitor.Faults())
	})
}

// Status is a point-in-time view of the agent.
type Status struct {
	WindowOnly bool         `json:"window_only"`
	Hooked     bool         `json:"hooked"`
	Triggers   uint64       `json:"triggers"`
	Faults     uint64       `json:"faults"`
	Coalesced  uint64       `json:"coalesced"`
	State      string       `json:"state"`
	Sessions   int          `json:"active_sessions"`
	Picker     picker.Stats `json:"picker"`
}

// Status reports counters and state. Zero before Start.
func (a *Agent) Status() Status {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.ctrl == nil {
		return Status{State: picker.StateIdle.String()}
	}
	return Status{
		WindowOnly: a.windowOnly,
		Hooked:     a.installed,
		Triggers:   a.monitor.Triggers(),
		Faults:     a.monitor.Faults(),
		Coalesced:  a.queue.Coalesced(),
		State:      a.ctrl.State().String(),
		Sessions:   a.ctrl.ActiveSessions(),
		Picker:     a.ctrl.Stats(),
	}
}
