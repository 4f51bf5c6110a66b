package actor

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/markInTheAbyss/go-actor/actor/aerrors"
	"github.com/markInTheAbyss/go-actor/actor/internal/registry"
)

func TestNewPatternRejectsMoreThanTwoWildcards(t *testing.T) {
	t.Parallel()

	reg := registry.New(0)
	_, err := NewPattern(reg, Rest(), Typed[int](), Rest(), Typed[string](), Rest())
	require.ErrorIs(t, err, aerrors.ErrInvalidPattern)
}

func TestMatchNoneTopology(t *testing.T) {
	t.Parallel()

	reg := registry.New(0)
	p, err := NewPattern(reg, Typed[int](), Typed[string]())
	require.NoError(t, err)

	tup := NewTuple(reg, 7, "x")
	mv, ok := Match(p, tup)
	require.True(t, ok)
	require.Equal(t, Mapping{0, 1}, mv)

	require.False(t, MatchShape(p, NewTuple(reg, "x", 7)))
	require.False(t, MatchShape(p, NewTuple(reg, 7)))
}

func TestMatchTrailingTopology(t *testing.T) {
	t.Parallel()

	reg := registry.New(0)
	p, err := NewPattern(reg, Typed[int](), Rest())
	require.NoError(t, err)

	mv, ok := Match(p, NewTuple(reg, 1, "a", "b"))
	require.True(t, ok)
	require.Equal(t, Mapping{0}, mv)

	// k=0 trailing wildcard accepts any payload, including empty.
	restOnly, err := NewPattern(reg, Rest())
	require.NoError(t, err)
	_, ok = Match(restOnly, NewTuple(reg))
	require.True(t, ok)
	_, ok = Match(restOnly, NewTuple(reg, 1, 2, 3))
	require.True(t, ok)
}

func TestMatchLeadingTopology(t *testing.T) {
	t.Parallel()

	reg := registry.New(0)
	p, err := NewPattern(reg, Rest(), Typed[string]())
	require.NoError(t, err)

	mv, ok := Match(p, NewTuple(reg, 1, 2, "tail"))
	require.True(t, ok)
	require.Equal(t, Mapping{2}, mv)

	_, ok = Match(p, NewTuple(reg, 1, 2, 3))
	require.False(t, ok)
}

func TestMatchInBetweenTopology(t *testing.T) {
	t.Parallel()

	reg := registry.New(0)
	p, err := NewPattern(reg, Typed[int](), Rest(), Typed[string]())
	require.NoError(t, err)

	mv, ok := Match(p, NewTuple(reg, 1, "middle1", "middle2", "tail"))
	require.True(t, ok)
	require.Equal(t, Mapping{0, 3}, mv)

	_, ok = Match(p, NewTuple(reg, 1))
	require.False(t, ok)
}

func TestMatchMultipleTopology(t *testing.T) {
	t.Parallel()

	reg := registry.New(0)
	p, err := NewPattern(reg, Rest(), Typed[int](), Rest())
	require.NoError(t, err)

	mv, ok := Match(p, NewTuple(reg, "a", "b", 42, "c"))
	require.True(t, ok)
	require.Equal(t, Mapping{2}, mv)

	_, ok = Match(p, NewTuple(reg, "a", "b", "c"))
	require.False(t, ok, "no int element anywhere in the payload")
}

func TestTypedValueSlotChecksEquality(t *testing.T) {
	t.Parallel()

	reg := registry.New(0)
	p, err := NewPattern(reg, TypedValue("ping"))
	require.NoError(t, err)

	_, ok := Match(p, NewTuple(reg, "ping"))
	require.True(t, ok)

	_, ok = Match(p, NewTuple(reg, "pong"))
	require.False(t, ok)

	require.True(t, MatchShape(p, NewTuple(reg, "pong")), "shape-only match ignores the value predicate")
}

func TestAnySlotBindsAnyValueOfAnyType(t *testing.T) {
	t.Parallel()

	reg := registry.New(0)
	p, err := NewPattern(reg, Any(), Any())
	require.NoError(t, err)

	_, ok := Match(p, NewTuple(reg, 1, "mixed"))
	require.True(t, ok)
	_, ok = Match(p, NewTuple(reg, 1))
	require.False(t, ok, "Any still binds exactly one element; arity must match")
}
