package actor

import (
	"sync"
	"time"

	"github.com/gammazero/deque"
)

// Priority selects the band an Envelope is enqueued on: the
// consumer always drains the high-priority band first when both are
// non-empty.
type Priority uint8

const (
	PriorityNormal Priority = iota
	PriorityHigh
)

// Mailbox is the MPSC queue : many producers call PushBack
// concurrently, exactly one consumer (the owning actor) calls TryPop,
// BlockUntilNonEmpty, and the cache accessors. It is backed by a
// gammazero/deque.Deque per band — an existing dependency, here
// playing the role its mailboxWorker used a hand-rolled ring buffer queue[T]
// for, generalized to two bands and a set-aside cache.
type Mailbox struct {
	mu sync.Mutex
	high deque.Deque[*Envelope]
	norm deque.Deque[*Envelope]
	cache []*Envelope

	closed bool
	notify chan struct{} // capacity 1, non-blocking "something changed" signal
}

// NewMailbox returns an empty, open Mailbox.
func NewMailbox() *Mailbox {
	return &Mailbox{notify: make(chan struct{}, 1)}
}

func (mb *Mailbox) wake() {
	select {
	case mb.notify <- struct{}{}:
	default:
	}
}

// PushBack is the producer-side enqueue. It fails (returns false) once the
// owner has marked the mailbox terminal (mark_consumer_done); the caller
// gets its Envelope back so it can synthesize whatever DOWN/EXIT delivery it
// owed instead of leaking the message.
func (mb *Mailbox) PushBack(e *Envelope, priority Priority) (*Envelope, bool) {
	mb.mu.Lock()
	if mb.closed {
		mb.mu.Unlock()
		return e, false
	}
	if priority == PriorityHigh {
		mb.high.PushBack(e)
	} else {
		mb.norm.PushBack(e)
	}
	mb.mu.Unlock()
	mb.wake()
	return nil, true
}

// TryPop is the consumer-side dequeue. The high-priority band is always
// drained first (spec P2).
func (mb *Mailbox) TryPop() (*Envelope, bool) {
	mb.mu.Lock()
	defer mb.mu.Unlock()
	if mb.high.Len() > 0 {
		return mb.high.PopFront(), true
	}
	if mb.norm.Len() > 0 {
		return mb.norm.PopFront(), true
	}
	return nil, false
}

// Empty reports whether both bands are empty; the cache is not counted.
// Used by the scheduler to decide whether an actor goes idle after a batch.
func (mb *Mailbox) Empty() bool {
	mb.mu.Lock()
	defer mb.mu.Unlock()
	return mb.high.Len() == 0 && mb.norm.Len() == 0
}

// BlockUntilNonEmpty waits until either band gains an entry, the mailbox is
// closed, or deadline passes (a zero deadline waits forever). It is racy
// safe: callers must recheck TryPop themselves after it returns, since
// another consumer goroutine can never exist (single-consumer) but a spurious
// wake from an unrelated PushBack batch still needs re-checking.
func (mb *Mailbox) BlockUntilNonEmpty(deadline time.Time) {
	for {
		if !mb.Empty() || mb.IsClosed() {
			return
		}
		if deadline.IsZero() {
			<-mb.notify
			continue
		}
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return
		}
		select {
		case <-mb.notify:
		case <-time.After(remaining):
			return
		}
	}
}

// MarkConsumerDone is idempotent; it rejects subsequent producers and wakes
// any blocked consumer so it can observe termination.
func (mb *Mailbox) MarkConsumerDone() {
	mb.mu.Lock()
	if mb.closed {
		mb.mu.Unlock()
		return
	}
	mb.closed = true
	mb.mu.Unlock()
	mb.wake()
}

// IsClosed reports whether MarkConsumerDone has been called.
func (mb *Mailbox) IsClosed() bool {
	mb.mu.Lock()
	defer mb.mu.Unlock()
	return mb.closed
}

// CacheAppend sets e aside in arrival order, to be retried against the next
// behavior.
func (mb *Mailbox) CacheAppend(e *Envelope) {
	mb.mu.Lock()
	mb.cache = append(mb.cache, e)
	mb.mu.Unlock()
}

// CacheDrain removes and returns every cached envelope, in arrival order,
// clearing the cache. Called by become before taking fresh mailbox
// envelopes (spec P6).
func (mb *Mailbox) CacheDrain() []*Envelope {
	mb.mu.Lock()
	c := mb.cache
	mb.cache = nil
	mb.mu.Unlock()
	return c
}

// CacheLen reports how many envelopes are currently set aside.
func (mb *Mailbox) CacheLen() int {
	mb.mu.Lock()
	defer mb.mu.Unlock()
	return len(mb.cache)
}
