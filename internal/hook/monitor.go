// Package hook recognizes the trigger gesture (modifier held + secondary
// button press) inside the OS input callback and hands it off without
// blocking.
package hook

import (
	"sync/atomic"

	"github.com/hpungsan/easypass/internal/errors"
)

// Point is an absolute screen position in pixels.
type Point struct {
	X int32 `json:"x"`
	Y int32 `json:"y"`
}

// TriggerEvent is produced once per recognized gesture.
type TriggerEvent struct {
	Position Point
}

// Sink receives triggers on the hook thread. Offer must never block.
type Sink interface {
	Offer(TriggerEvent)
}

// Button identifies the pointer button of an event.
type Button int

const (
	ButtonNone Button = iota
	ButtonPrimary
	ButtonSecondary
	ButtonMiddle
)

// PointerEvent is one low-level pointer event as seen by the hook.
type PointerEvent struct {
	Button   Button
	Down     bool
	Position Point
}

// Verdict tells the OS what to do with an intercepted event.
type Verdict int

const (
	// Pass forwards the event unchanged to the next hook and the target window.
	Pass Verdict = iota
	// Swallow drops the event; no other application sees it.
	Swallow
)

func (v Verdict) String() string {
	if v == Swallow {
		return "swallow"
	}
	return "pass"
}

// CursorFunc reports the current cursor position. ok is false when the
// position could not be read.
type CursorFunc func() (p Point, ok bool)

// Monitor holds the gesture state shared between the keyboard and pointer
// callbacks. All fields are atomics: the callbacks run on the hook thread
// while diagnostics are read from elsewhere.
type Monitor struct {
	sink   Sink
	cursor CursorFunc

	// heldKeys is a bitset over virtual-key codes of the modifier keys
	// currently down. Left and right variants are tracked apart.
	heldKeys [4]atomic.Uint64
	// swallowUp is set after a swallowed press so the matching release is
	// swallowed too and the target never sees half a click. Any later
	// secondary press clears it, so a lost release cannot eat a real one.
	swallowUp atomic.Bool

	triggers  atomic.Uint64
	faults    atomic.Uint64
	lastFault atomic.Pointer[errors.EasyPassError]
}

// NewMonitor creates a Monitor emitting into sink. cursor may be nil, in
// which case the event's own coordinates are used.
func NewMonitor(sink Sink, cursor CursorFunc) *Monitor {
	return &Monitor{sink: sink, cursor: cursor}
}

// OnModifierDown records that the modifier key vk is held. Auto-repeat
// downs are harmless.
func (m *Monitor) OnModifierDown(vk uint32) {
	word, bit := keyBit(vk)
	m.heldKeys[word].Or(bit)
}

// OnModifierUp records that the modifier key vk was released.
func (m *Monitor) OnModifierUp(vk uint32) {
	word, bit := keyBit(vk)
	m.heldKeys[word].And(^bit)
}

// ModifierHeld reports whether any modifier key is down.
func (m *Monitor) ModifierHeld() bool {
	for i := range m.heldKeys {
		if m.heldKeys[i].Load() != 0 {
			return true
		}
	}
	return false
}

func keyBit(vk uint32) (int, uint64) {
	vk &= 0xFF
	return int(vk >> 6), 1 << (vk & 63)
}

// HandlePointer is the interception callback. It never panics: any fault
// inside is recovered, counted, and turned into Pass so system-wide input
// can never wedge.
func (m *Monitor) HandlePointer(ev PointerEvent) (verdict Verdict) {
	defer func() {
		if r := recover(); r != nil {
			m.faults.Add(1)
			m.lastFault.Store(errors.NewHookCallbackFault(r))
			verdict = Pass
		}
	}()
	return m.handle(ev)
}

func (m *Monitor) handle(ev PointerEvent) Verdict {
	if ev.Button != ButtonSecondary {
		return Pass
	}
	if !ev.Down {
		if m.swallowUp.CompareAndSwap(true, false) {
			return Swallow
		}
		return Pass
	}

	m.swallowUp.Store(false)

	// Latched here: a release racing the emit below does not cancel it.
	if !m.ModifierHeld() {
		return Pass
	}

	pos := ev.Position
	if m.cursor != nil {
		if p, ok := m.cursor(); ok {
			pos = p
		}
	}

	m.sink.Offer(TriggerEvent{Position: pos})
	m.triggers.Add(1)
	m.swallowUp.Store(true)
	return Swallow
}

// Triggers returns how many gestures were recognized.
func (m *Monitor) Triggers() uint64 { return m.triggers.Load() }

// Faults returns how many callback faults were recovered.
func (m *Monitor) Faults() uint64 { return m.faults.Load() }

// LastFault returns the most recent recovered fault, or nil.
func (m *Monitor) LastFault() *errors.EasyPassError { return m.lastFault.Load() }

// Hook is an OS backend delivering input events to a Monitor.
type Hook interface {
	// Install starts delivering events. It returns a HOOK_INSTALL_FAILED
	// error when the OS refuses the hook.
	Install(m *Monitor) error
	// Uninstall stops delivery. Calling it more than once is a no-op.
	Uninstall() error
}
