// Package handoff carries triggers from the input hook thread to the UI
// thread without ever blocking the hook.
package handoff

import (
	"context"
	"sync/atomic"

	"github.com/hpungsan/easypass/internal/hook"
)

// DefaultSize is the buffer used when NewQueue gets a non-positive size.
const DefaultSize = 16

// Queue is a single-producer single-consumer trigger queue.
//
// Offer writes into a bounded channel. When the channel is full the event
// goes to a one-element overflow slot instead, replacing whatever was
// there. Every buffered event is older than the overflow event, so the
// consumer sees triggers in order and always sees the newest one.
type Queue struct {
	ch       chan hook.TriggerEvent
	overflow atomic.Pointer[hook.TriggerEvent]
	wake     chan struct{}

	offered   atomic.Uint64
	coalesced atomic.Uint64
}

// NewQueue creates a queue buffering up to size triggers.
func NewQueue(size int) *Queue {
	if size <= 0 {
		size = DefaultSize
	}
	return &Queue{
		ch:   make(chan hook.TriggerEvent, size),
		wake: make(chan struct{}, 1),
	}
}

// Offer enqueues ev. It never blocks.
func (q *Queue) Offer(ev hook.TriggerEvent) {
	q.offered.Add(1)

	// Once overflow is in use, keep writing there so ordering holds.
	if q.overflow.Load() == nil {
		select {
		case q.ch <- ev:
			return
		default:
		}
	}

	if old := q.overflow.Swap(&ev); old != nil {
		q.coalesced.Add(1)
	}
	select {
	case q.wake <- struct{}{}:
	default:
	}
}

// Receive returns the next trigger, waiting until one arrives or ctx is
// done. ok is false only when ctx ended.
func (q *Queue) Receive(ctx context.Context) (ev hook.TriggerEvent, ok bool) {
	for {
		select {
		case ev = <-q.ch:
			return ev, true
		default:
		}

		if p := q.overflow.Swap(nil); p != nil {
			return *p, true
		}

		select {
		case ev = <-q.ch:
			return ev, true
		case <-q.wake:
		case <-ctx.Done():
			return hook.TriggerEvent{}, false
		}
	}
}

// Len reports how many triggers are waiting.
func (q *Queue) Len() int {
	n := len(q.ch)
	if q.overflow.Load() != nil {
		n++
	}
	return n
}

// Offered returns the number of Offer calls.
func (q *Queue) Offered() uint64 { return q.offered.Load() }

// Coalesced returns how many triggers were replaced in the overflow slot
// before the consumer reached them.
func (q *Queue) Coalesced() uint64 { return q.coalesced.Load() }
