// Package uiloop runs the single UI thread: every picker, surface and
// injection call happens on it, one posted func at a time.
package uiloop

import (
	"context"
	"log/slog"
	"runtime"
	"sync"
	"time"
)

// Loop executes posted funcs in FIFO order on one OS-locked goroutine.
type Loop struct {
	logger *slog.Logger

	mu      sync.Mutex
	mailbox []func()
	signal  chan struct{}

	stopOnce sync.Once
	stop     chan struct{}
	done     chan struct{}

	panics int
}

// New creates a Loop. It does nothing until Run is called.
func New() *Loop {
	return &Loop{
		logger: slog.With("component", "uiloop"),
		signal: make(chan struct{}, 1),
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
	}
}

// Post queues fn. It never waits for the UI thread.
func (l *Loop) Post(fn func()) {
	l.mu.Lock()
	l.mailbox = append(l.mailbox, fn)
	l.mu.Unlock()

	select {
	case l.signal <- struct{}{}:
	default:
	}
}

// PostAfter queues fn once d has elapsed.
func (l *Loop) PostAfter(d time.Duration, fn func()) {
	if d <= 0 {
		l.Post(fn)
		return
	}
	time.AfterFunc(d, func() { l.Post(fn) })
}

// Run processes posted funcs until ctx is done or Stop is called. Funcs
// still queued at that point are dropped.
func (l *Loop) Run(ctx context.Context) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()
	defer close(l.done)

	for {
		select {
		case <-ctx.Done():
			return
		case <-l.stop:
			return
		case <-l.signal:
		}

		for {
			fn := l.next()
			if fn == nil {
				break
			}
			l.call(fn)

			select {
			case <-l.stop:
				return
			default:
			}
		}
	}
}

// Stop ends Run. Safe to call more than once and from any goroutine.
func (l *Loop) Stop() {
	l.stopOnce.Do(func() { close(l.stop) })
}

// Done is closed when Run returns.
func (l *Loop) Done() <-chan struct{} {
	return l.done
}

// Pending reports how many funcs are waiting.
func (l *Loop) Pending() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.mailbox)
}

func (l *Loop) next() func() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.mailbox) == 0 {
		return nil
	}
	fn := l.mailbox[0]
	l.mailbox[0] = nil
	l.mailbox = l.mailbox[1:]
	return fn
}

// call runs fn, keeping the loop alive if it panics.
func (l *Loop) call(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			l.panics++
			l.logger.Error("posted func panicked", "panic", r)
		}
	}()
	fn()
}
