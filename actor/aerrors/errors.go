// Package aerrors declares the sentinel error kinds the actor runtime can
// surface to application code. Outcomes that stay internal to the kernel
// (pattern-no-match, which is routed to the mailbox cache rather than
// reported) have no error value here.
package aerrors

import "errors"

var (
	// ErrSyncTimeout is passed to the OnSyncFailure callback when a
	// TimedRequest's deadline elapsed before a matching response was
	// dispatched.
	ErrSyncTimeout = errors.New("actor: sync request timed out")

	// ErrSyncFailure names the sync-failure error kind. No code path in the
	// runtime produces it: a request to an already-terminated destination
	// fails with ErrMailboxClosed, and a destination that terminates without
	// answering leaves the request pending until its sync-timeout, if any.
	ErrSyncFailure = errors.New("actor: sync request failed")

	// ErrHandlerPanicked marks an actor whose planned exit reason was set
	// because a user handler panicked. The recovered value is wrapped.
	ErrHandlerPanicked = errors.New("actor: handler panicked")

	// ErrMailboxClosed is returned to a producer whose send raced with (or
	// followed) the destination actor's termination.
	ErrMailboxClosed = errors.New("actor: mailbox closed")

	// ErrBreakerOpen is returned by TimedRequest when an attached circuit
	// breaker has tripped for the destination and is refusing new requests.
	ErrBreakerOpen = errors.New("actor: circuit breaker open for destination")

	// ErrInvalidPattern is returned by pattern construction when the
	// variadic-wildcard arity rules are violated (more than
	// two wildcards, or two adjacent wildcards).
	ErrInvalidPattern = errors.New("actor: invalid pattern")

	// ErrEmptyBehavior is the value ActorContext.Become panics with when
	// handed a behavior with no clauses and no timeout.
	ErrEmptyBehavior = errors.New("actor: behavior has no clauses or timeout")
)
