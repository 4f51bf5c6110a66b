package actor

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// TestRequestAwaitPingPong is the runtime's canonical worked example: a
// blocking actor requests "ping" from a pong actor and awaits "pong"
// synchronously, inline in its own constructor.
func TestRequestAwaitPingPong(t *testing.T) {
	t.Parallel()

	rt := New(WithQuantum(4))
	defer rt.Stop()

	pong := rt.Spawn(func(ctx *ActorContext) *Behavior {
		return NewBehavior(
			On(TypedValue("ping")).Do(rt, func(ctx *ActorContext, _ Mapping, _ *Tuple) (*Tuple, error) {
				ctx.Quit(ExitNormal)
				return ctx.NewTuple("pong"), nil
			}),
		)
	})

	var gotPong bool
	ping := rt.SpawnBlocking(func(ctx *ActorContext) *Behavior {
		req, err := ctx.Request(pong, "ping")
		require.NoError(t, err)
		require.Equal(t, 1, ctx.Pending())

		b := NewBehavior(
			On(TypedValue("pong")).Do(rt, func(ctx *ActorContext, _ Mapping, _ *Tuple) (*Tuple, error) {
				gotPong = true
				ctx.Quit(ExitNormal)
				return nil, nil
			}),
		)
		req.Await(b)
		require.Equal(t, 0, ctx.Pending(), "the response must have been resolved by the time Await returns")
		return b
	})

	select {
	case <-ping.cell.terminatedCh:
	case <-time.After(2 * time.Second):
		t.Fatal("ping actor never terminated")
	}
	select {
	case <-pong.cell.terminatedCh:
	case <-time.After(2 * time.Second):
		t.Fatal("pong actor never terminated")
	}
	require.True(t, gotPong)
}

// TestTimedRequestSyncTimeoutResolvesPending exercises P3: once a
// TimedRequest's deadline elapses with no response, the id leaves the
// pending set and the installed sync-failure callback observes it.
func TestTimedRequestSyncTimeoutResolvesPending(t *testing.T) {
	t.Parallel()

	rt := New(WithQuantum(4))
	defer rt.Stop()

	// silent never replies to anything.
	silent := rt.Spawn(func(ctx *ActorContext) *Behavior {
		return NewBehavior(
			On(TypedValue("unused")).Do(rt, func(*ActorContext, Mapping, *Tuple) (*Tuple, error) { return nil, nil }),
		)
	})

	failed := make(chan error, 1)
	requester := rt.Spawn(func(ctx *ActorContext) *Behavior {
		ctx.OnSyncFailure(func(id MessageID, err error) {
			failed <- err
		})
		req, err := ctx.TimedRequest(silent, 30*time.Millisecond, "hello")
		require.NoError(t, err)
		b := NewBehavior(
			On(TypedValue("never")).Do(rt, func(*ActorContext, Mapping, *Tuple) (*Tuple, error) { return nil, nil }),
		)
		req.Then(b)
		return b
	})
	_ = requester

	select {
	case err := <-failed:
		require.Error(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("sync-failure callback was never invoked")
	}
}

// TestRequestCancelRemovesPendingEntry verifies that cancelling a pending
// request removes it from the pending set.
func TestRequestCancelRemovesPendingEntry(t *testing.T) {
	t.Parallel()

	rt := New(WithQuantum(4))
	defer rt.Stop()

	replyLater := rt.Spawn(func(ctx *ActorContext) *Behavior {
		return NewBehavior(
			On(TypedValue("go")).Do(rt, func(ctx *ActorContext, _ Mapping, _ *Tuple) (*Tuple, error) {
				return ctx.NewTuple("late"), nil
			}),
		)
	})

	done := make(chan int, 1)
	rt.Spawn(func(ctx *ActorContext) *Behavior {
		req, err := ctx.Request(replyLater, "go")
		require.NoError(t, err)
		ctx.CancelRequest(req.id)
		done <- ctx.Pending()
		ctx.Quit(ExitNormal)
		return NewBehavior(On(Rest()).Do(rt, func(*ActorContext, Mapping, *Tuple) (*Tuple, error) { return nil, nil }))
	})

	select {
	case n := <-done:
		require.Equal(t, 0, n)
	case <-time.After(2 * time.Second):
		t.Fatal("requester never ran")
	}
}
