package actor

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestMailboxFIFOWithinPriorityBand(t *testing.T) {
	t.Parallel()

	mb := NewMailbox()
	e1, e2, e3 := &Envelope{}, &Envelope{}, &Envelope{}

	_, ok := mb.PushBack(e1, PriorityNormal)
	require.True(t, ok)
	_, ok = mb.PushBack(e2, PriorityNormal)
	require.True(t, ok)
	_, ok = mb.PushBack(e3, PriorityNormal)
	require.True(t, ok)

	got, ok := mb.TryPop()
	require.True(t, ok)
	require.Same(t, e1, got)

	got, ok = mb.TryPop()
	require.True(t, ok)
	require.Same(t, e2, got)

	got, ok = mb.TryPop()
	require.True(t, ok)
	require.Same(t, e3, got)

	_, ok = mb.TryPop()
	require.False(t, ok)
}

func TestMailboxHighPriorityPreemptsNormal(t *testing.T) {
	t.Parallel()

	mb := NewMailbox()
	normal1, high, normal2 := &Envelope{}, &Envelope{}, &Envelope{}

	_, ok := mb.PushBack(normal1, PriorityNormal)
	require.True(t, ok)
	_, ok = mb.PushBack(high, PriorityHigh)
	require.True(t, ok)
	_, ok = mb.PushBack(normal2, PriorityNormal)
	require.True(t, ok)

	got, ok := mb.TryPop()
	require.True(t, ok)
	require.Same(t, high, got, "high-priority band must drain first")

	got, ok = mb.TryPop()
	require.True(t, ok)
	require.Same(t, normal1, got)

	got, ok = mb.TryPop()
	require.True(t, ok)
	require.Same(t, normal2, got)
}

func TestMailboxRejectsPushAfterClose(t *testing.T) {
	t.Parallel()

	mb := NewMailbox()
	mb.MarkConsumerDone()
	require.True(t, mb.IsClosed())

	e := &Envelope{}
	rejected, ok := mb.PushBack(e, PriorityNormal)
	require.False(t, ok)
	require.Same(t, e, rejected, "the caller's own envelope is handed back so it can recycle it")
}

func TestMailboxMarkConsumerDoneIsIdempotent(t *testing.T) {
	t.Parallel()

	mb := NewMailbox()
	mb.MarkConsumerDone()
	mb.MarkConsumerDone()
	require.True(t, mb.IsClosed())
}

func TestMailboxBlockUntilNonEmptyWakesOnPush(t *testing.T) {
	t.Parallel()

	mb := NewMailbox()
	done := make(chan struct{})
	go func() {
		mb.BlockUntilNonEmpty(time.Time{})
		close(done)
	}()

	time.Sleep(10 * time.Millisecond)
	select {
	case <-done:
		t.Fatal("BlockUntilNonEmpty returned before anything was pushed")
	default:
	}

	_, ok := mb.PushBack(&Envelope{}, PriorityNormal)
	require.True(t, ok)

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("BlockUntilNonEmpty did not wake on push")
	}
}

func TestMailboxBlockUntilNonEmptyRespectsDeadline(t *testing.T) {
	t.Parallel()

	mb := NewMailbox()
	start := time.Now()
	mb.BlockUntilNonEmpty(start.Add(20 * time.Millisecond))
	require.WithinDuration(t, start.Add(20*time.Millisecond), time.Now(), 200*time.Millisecond)
}

func TestMailboxCacheAppendAndDrainPreservesOrder(t *testing.T) {
	t.Parallel()

	mb := NewMailbox()
	e1, e2 := &Envelope{}, &Envelope{}
	mb.CacheAppend(e1)
	mb.CacheAppend(e2)
	require.Equal(t, 2, mb.CacheLen())

	drained := mb.CacheDrain()
	require.Equal(t, []*Envelope{e1, e2}, drained)
	require.Equal(t, 0, mb.CacheLen())
}
