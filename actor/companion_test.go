package actor

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestCompanionPushPoll(t *testing.T) {
	t.Parallel()

	rt := New()
	defer rt.Stop()

	comp := NewCompanion(rt, 4)
	require.False(t, comp.Handle().IsZero())

	ok := comp.Push("from-outside", 7)
	require.True(t, ok)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	msg, err := comp.Poll(ctx)
	require.NoError(t, err)
	require.Equal(t, 2, msg.Size())
	require.Equal(t, "from-outside", msg.ElementAt(0))
	require.Equal(t, 7, msg.ElementAt(1))
}

func TestCompanionPollRespectsContextCancellation(t *testing.T) {
	t.Parallel()

	rt := New()
	defer rt.Stop()

	comp := NewCompanion(rt, 4)
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := comp.Poll(ctx)
	require.ErrorIs(t, err, context.DeadlineExceeded)
}
