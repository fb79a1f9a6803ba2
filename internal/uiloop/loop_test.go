package uiloop

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func startLoop(t *testing.T) *Loop {
	t.Helper()
	l := New()
	go l.Run(context.Background())
	t.Cleanup(func() {
		l.Stop()
		<-l.Done()
	})
	return l
}

func TestLoop_FIFO(t *testing.T) {
	l := startLoop(t)

	var (
		mu  sync.Mutex
		got []int
	)
	done := make(chan struct{})
	for i := 0; i < 50; i++ {
		i := i
		l.Post(func() {
			mu.Lock()
			got = append(got, i)
			mu.Unlock()
			if i == 49 {
				close(done)
			}
		})
	}

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("posted funcs did not run")
	}

	mu.Lock()
	defer mu.Unlock()
	for i, v := range got {
		require.Equal(t, i, v)
	}
}

func TestLoop_SingleThreaded(t *testing.T) {
	l := startLoop(t)

	var (
		active  int
		maxSeen int
		wg      sync.WaitGroup
	)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		l.Post(func() {
			defer wg.Done()
			active++
			if active > maxSeen {
				maxSeen = active
			}
			time.Sleep(time.Millisecond)
			active--
		})
	}
	wg.Wait()
	require.Equal(t, 1, maxSeen)
}

func TestLoop_PanicDoesNotKillLoop(t *testing.T) {
	l := startLoop(t)

	l.Post(func() { panic("boom") })

	ran := make(chan struct{})
	l.Post(func() { close(ran) })

	select {
	case <-ran:
	case <-time.After(2 * time.Second):
		t.Fatal("loop died after panic")
	}
}

func TestLoop_PostAfter(t *testing.T) {
	l := startLoop(t)

	start := time.Now()
	ran := make(chan time.Duration, 1)
	l.PostAfter(30*time.Millisecond, func() { ran <- time.Since(start) })

	select {
	case elapsed := <-ran:
		require.GreaterOrEqual(t, elapsed, 30*time.Millisecond)
	case <-time.After(2 * time.Second):
		t.Fatal("delayed func did not run")
	}
}

func TestLoop_StopIdempotent(t *testing.T) {
	l := New()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go l.Run(ctx)
	l.Stop()
	l.Stop()

	select {
	case <-l.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after Stop")
	}
}

func TestLoop_ContextCancel(t *testing.T) {
	l := New()
	ctx, cancel := context.WithCancel(context.Background())
	go l.Run(ctx)
	cancel()

	select {
	case <-l.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
