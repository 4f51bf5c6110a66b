package actor

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestTimerServiceFiresAfterDuration(t *testing.T) {
	t.Parallel()

	ts := newTimerService(SystemClock{})
	defer ts.Stop()

	fired := make(chan struct{})
	ts.Schedule(20*time.Millisecond, func() { close(fired) })

	select {
	case <-fired:
	case <-time.After(time.Second):
		t.Fatal("timer never fired")
	}
}

func TestTimerServiceStopCancelsPendingFire(t *testing.T) {
	t.Parallel()

	ts := newTimerService(SystemClock{})
	defer ts.Stop()

	fired := make(chan struct{}, 1)
	h := ts.Schedule(100*time.Millisecond, func() { fired <- struct{}{} })
	ok := h.Stop()
	require.True(t, ok)

	select {
	case <-fired:
		t.Fatal("a stopped timer must not fire")
	case <-time.After(200 * time.Millisecond):
	}
}

func TestTimerServiceZeroDurationFiresSynchronously(t *testing.T) {
	t.Parallel()

	ts := newTimerService(SystemClock{})
	defer ts.Stop()

	var fired bool
	ts.Schedule(0, func() { fired = true })
	require.True(t, fired, "a non-positive duration fires immediately on the calling goroutine")
}

func TestTimerServiceOrdersByDeadline(t *testing.T) {
	t.Parallel()

	ts := newTimerService(SystemClock{})
	defer ts.Stop()

	var order []int
	done := make(chan struct{})
	ts.Schedule(30*time.Millisecond, func() { order = append(order, 2) })
	ts.Schedule(10*time.Millisecond, func() { order = append(order, 1) })
	ts.Schedule(50*time.Millisecond, func() {
		order = append(order, 3)
		close(done)
	})

	select {
	case <-done:
		require.Equal(t, []int{1, 2, 3}, order)
	case <-time.After(time.Second):
		t.Fatal("timers never all fired")
	}
}

// TestBehaviorTimeoutFiresWhenNothingMatches covers P7: a behavior's
// timeout fires if no clause matches within the duration.
func TestBehaviorTimeoutFiresWhenNothingMatches(t *testing.T) {
	t.Parallel()

	rt := New(WithQuantum(4))
	defer rt.Stop()

	firedCh := make(chan struct{}, 1)
	rt.Spawn(func(ctx *ActorContext) *Behavior {
		b := WithTimeout(NewBehavior(
			On(TypedValue("never-sent")).Do(rt, func(*ActorContext, Mapping, *Tuple) (*Tuple, error) { return nil, nil }),
		), 30*time.Millisecond, func() {
			firedCh <- struct{}{}
		})
		return b
	})

	select {
	case <-firedCh:
	case <-time.After(2 * time.Second):
		t.Fatal("behavior timeout never fired")
	}
}

// TestBehaviorTimeoutStaleEpochDropped covers the stale-firing half of P7:
// Become-ing away from a timed-out behavior before it fires must suppress
// the old timer's callback.
func TestBehaviorTimeoutStaleEpochDropped(t *testing.T) {
	t.Parallel()

	rt := New(WithQuantum(4))
	defer rt.Stop()

	var staleFired bool
	becameCh := make(chan struct{})
	rt.Spawn(func(ctx *ActorContext) *Behavior {
		stale := WithTimeout(NewBehavior(), 30*time.Millisecond, func() {
			staleFired = true
		})
		ctx.Become(stale, PolicyDiscard)

		fresh := NewBehavior(
			On(TypedValue("ping")).Do(rt, func(ctx *ActorContext, _ Mapping, _ *Tuple) (*Tuple, error) {
				close(becameCh)
				return nil, nil
			}),
		)
		ctx.Become(fresh, PolicyDiscard)
		return nil
	})

	time.Sleep(80 * time.Millisecond)
	require.False(t, staleFired, "a superseded behavior's timeout must be dropped as stale")
}
