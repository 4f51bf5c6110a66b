package actor

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// TestBehaviorCandidatesCachesStaticTypeShapes exercises the two-clause
// behavior from the runtime's worked example: [on(i32,str)->f1, on(str)->f2],
// first dispatching (7,"x") then ("y"), and checks the cache produces the
// right candidate set both times — once built, once served from cache.
func TestBehaviorCandidatesCachesStaticTypeShapes(t *testing.T) {
	t.Parallel()

	rt := New()
	defer rt.Stop()

	clause1 := On(Typed[int](), Typed[string]()).Do(rt, func(*ActorContext, Mapping, *Tuple) (*Tuple, error) { return nil, nil })
	clause2 := On(Typed[string]()).Do(rt, func(*ActorContext, Mapping, *Tuple) (*Tuple, error) { return nil, nil })
	b := NewBehavior(clause1, clause2)

	first := rt.NewStaticTuple(7, "x")
	cands := b.candidates(first)
	require.Equal(t, []int{0}, cands)

	second := rt.NewStaticTuple("y")
	cands = b.candidates(second)
	require.Equal(t, []int{1}, cands)

	// Re-dispatching the same shape must hit the now-populated cache and
	// return the identical candidate set.
	third := rt.NewStaticTuple(7, "z")
	cands = b.candidates(third)
	require.Equal(t, []int{0}, cands)
}

func TestBehaviorCandidatesBypassesCacheForDynamicTuples(t *testing.T) {
	t.Parallel()

	rt := New()
	defer rt.Stop()

	clause := On(Typed[int]()).Do(rt, func(*ActorContext, Mapping, *Tuple) (*Tuple, error) { return nil, nil })
	b := NewBehavior(clause)

	dyn := rt.NewTuple(7)
	require.False(t, dyn.Static())
	cands := b.candidates(dyn)
	require.Equal(t, []int{0}, cands, "a dynamic tuple still evaluates every clause, just without caching")
}

func TestMatchCacheInsertKeepsEntriesSorted(t *testing.T) {
	t.Parallel()

	c := newMatchCache()
	c.insert(30, []int{3})
	c.insert(10, []int{1})
	c.insert(20, []int{2})

	for i := 1; i < len(c.entries); i++ {
		require.Less(t, c.entries[i-1].token, c.entries[i].token)
	}

	got, ok := c.lookup(20)
	require.True(t, ok)
	require.Equal(t, []int{2}, got)
}
