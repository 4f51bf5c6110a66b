package actor

import "sync"

// Envelope is the queueable record ("MailboxElement"): a sender
// handle (possibly the zero Handle for messages with no actor origin), a
// correlation id, and a payload Tuple. Envelopes are recycled through a
// per-Runtime free list (envelopePool) to keep the hot send/dispatch path
// allocation-light, mirroring the source's per-thread free list.
type Envelope struct {
	Sender Handle
	ID MessageID
	Payload *Tuple

	// set by the dispatcher while a handler invocation is in flight, to
	// support the recursion guard of "skip" outcome.
	processing bool

	next *Envelope // pool free-list linkage only; never touched by consumers
}

// envelopePool is a thread-safe free list of *Envelope, sized lazily. A
// sync.Pool would reclaim under GC pressure at moments we can't control and
// would not preserve the "recycle deterministically on Release" contract
// callers rely on for benchmarking; a manual mutex-guarded free list (the
// shape its single-threaded ring buffer already hints at) keeps
// that contract explicit.
type envelopePool struct {
	mu sync.Mutex
	head *Envelope
}

func newEnvelopePool() *envelopePool {
	return &envelopePool{}
}

func (p *envelopePool) get() *Envelope {
	p.mu.Lock()
	e := p.head
	if e != nil {
		p.head = e.next
	}
	p.mu.Unlock()
	if e == nil {
		return &Envelope{}
	}
	e.next = nil
	return e
}

func (p *envelopePool) put(e *Envelope) {
	if e.Payload != nil {
		e.Payload.Release()
	}
	*e = Envelope{next: nil}
	p.mu.Lock()
	e.next = p.head
	p.head = e
	p.mu.Unlock()
}
