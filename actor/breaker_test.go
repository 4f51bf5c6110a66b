package actor

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/markInTheAbyss/go-actor/actor/aerrors"
)

func TestBreakerSetTripsAfterConsecutiveFailures(t *testing.T) {
	t.Parallel()

	bs := NewBreakerSet("test", 2, time.Minute)
	dest := Handle{} // zero handle is fine as a map key for this unit test

	done, err := bs.allow(dest)
	require.NoError(t, err)
	done(false)

	done, err = bs.allow(dest)
	require.NoError(t, err)
	done(false)

	_, err = bs.allow(dest)
	require.ErrorIs(t, err, aerrors.ErrBreakerOpen)
}

func TestBreakerSetResetsOnSuccess(t *testing.T) {
	t.Parallel()

	bs := NewBreakerSet("test", 2, time.Minute)
	dest := Handle{}

	done, err := bs.allow(dest)
	require.NoError(t, err)
	done(false)

	done, err = bs.allow(dest)
	require.NoError(t, err)
	done(true)

	done, err = bs.allow(dest)
	require.NoError(t, err)
	done(false)

	_, err = bs.allow(dest)
	require.NoError(t, err, "a success in between must reset the consecutive-failure streak")
}
