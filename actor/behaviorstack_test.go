package actor

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestBehaviorStackBecomeUnbecomeRoundTrip(t *testing.T) {
	t.Parallel()

	b1 := NewBehavior()
	s := newBehaviorStack(b1)
	require.Equal(t, 1, s.depth())

	b2 := NewBehavior()
	s.become(b2, PolicyKeep)
	require.Equal(t, 2, s.depth())
	require.Same(t, b2, s.top().behavior)

	ok := s.unbecome()
	require.True(t, ok)
	require.Equal(t, 1, s.depth())
	require.Same(t, b1, s.top().behavior)
}

func TestBehaviorStackUnbecomeNeverEmptiesStack(t *testing.T) {
	t.Parallel()

	s := newBehaviorStack(NewBehavior())
	ok := s.unbecome()
	require.False(t, ok)
	require.Equal(t, 1, s.depth())
}

func TestBehaviorStackDiscardReplacesTopInPlace(t *testing.T) {
	t.Parallel()

	s := newBehaviorStack(NewBehavior())
	b2 := NewBehavior()
	s.become(b2, PolicyDiscard)
	require.Equal(t, 1, s.depth())
	require.Same(t, b2, s.top().behavior)
}

func TestBehaviorStackEpochsAreMonotonicAndDistinct(t *testing.T) {
	t.Parallel()

	timedout := WithTimeout(NewBehavior(), time.Second, func() {})
	s := newBehaviorStack(timedout)
	firstEpoch := s.top().timeoutEpoch
	require.NotZero(t, firstEpoch)

	epoch := s.become(WithTimeout(NewBehavior(), time.Second, func() {}), PolicyDiscard)
	require.NotEqual(t, firstEpoch, epoch)
}

func TestBehaviorStackResponseWaitingEntryResistsUnbecome(t *testing.T) {
	t.Parallel()

	s := newBehaviorStack(NewBehavior())
	s.becomeWaitingFor(NewBehavior(), MessageID(42))
	require.Equal(t, 2, s.depth())

	ok := s.unbecome()
	require.False(t, ok, "a response-waiting entry only pops via popResponseWaiting")
	require.Equal(t, 2, s.depth())

	ok = s.popResponseWaiting(MessageID(1))
	require.False(t, ok, "wrong id must not pop the entry")

	ok = s.popResponseWaiting(MessageID(42))
	require.True(t, ok)
	require.Equal(t, 1, s.depth())
}
