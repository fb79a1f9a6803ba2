package handoff

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/hpungsan/easypass/internal/hook"
)

func trig(x int32) hook.TriggerEvent {
	return hook.TriggerEvent{Position: hook.Point{X: x}}
}

func TestQueue_FIFO(t *testing.T) {
	q := NewQueue(4)
	for i := int32(1); i <= 3; i++ {
		q.Offer(trig(i))
	}
	require.Equal(t, 3, q.Len())

	ctx := context.Background()
	for i := int32(1); i <= 3; i++ {
		ev, ok := q.Receive(ctx)
		require.True(t, ok)
		require.Equal(t, i, ev.Position.X)
	}
	require.Equal(t, uint64(0), q.Coalesced())
}

func TestQueue_OverflowKeepsNewestAndOrder(t *testing.T) {
	q := NewQueue(2)
	for i := int32(1); i <= 5; i++ {
		q.Offer(trig(i))
	}

	// 1 and 2 buffered, 3 and 4 replaced in overflow by 5
	require.Equal(t, uint64(2), q.Coalesced())
	require.Equal(t, uint64(5), q.Offered())
	require.Equal(t, 3, q.Len())

	ctx := context.Background()
	var got []int32
	for i := 0; i < 3; i++ {
		ev, ok := q.Receive(ctx)
		require.True(t, ok)
		got = append(got, ev.Position.X)
	}
	require.Equal(t, []int32{1, 2, 5}, got)
	require.Equal(t, 0, q.Len())
}

func TestQueue_ReceiveWaitsForOffer(t *testing.T) {
	q := NewQueue(1)

	done := make(chan hook.TriggerEvent, 1)
	go func() {
		ev, _ := q.Receive(context.Background())
		done <- ev
	}()

	time.Sleep(10 * time.Millisecond)
	q.Offer(trig(42))

	select {
	case ev := <-done:
		require.Equal(t, int32(42), ev.Position.X)
	case <-time.After(2 * time.Second):
		t.Fatal("Receive did not return after Offer")
	}
}

func TestQueue_ReceiveCancelled(t *testing.T) {
	q := NewQueue(1)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, ok := q.Receive(ctx)
	require.False(t, ok)
}

func TestQueue_OfferNeverBlocks(t *testing.T) {
	q := NewQueue(1)

	done := make(chan struct{})
	go func() {
		for i := int32(0); i < 10000; i++ {
			q.Offer(trig(i))
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Offer blocked with no consumer")
	}

	// The newest trigger always survives
	var last hook.TriggerEvent
	for q.Len() > 0 {
		last, _ = q.Receive(context.Background())
	}
	require.Equal(t, int32(9999), last.Position.X)
}

func TestQueue_ConcurrentProducerConsumerOrdered(t *testing.T) {
	q := NewQueue(4)
	const n = 2000

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := int32(1); i <= n; i++ {
			q.Offer(trig(i))
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	prev := int32(0)
	for prev != n {
		ev, ok := q.Receive(ctx)
		require.True(t, ok, "timed out waiting for trigger %d", n)
		require.Greater(t, ev.Position.X, prev, "out of order")
		prev = ev.Position.X
	}
	wg.Wait()
}

func TestNewQueue_DefaultSize(t *testing.T) {
	q := NewQueue(0)
	require.Equal(t, DefaultSize, cap(q.ch))
}
