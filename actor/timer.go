package actor

import (
	"container/heap"
	"sync"
	"time"
)

// timerItem is one entry in the timer service's min-heap. No
// third-party priority-queue library appears anywhere in the example pack
// (gammazero/deque is a double-ended queue, not heap-ordered), so this is
// the one place the kernel reaches for container/heap from the standard
// library — see DESIGN.md for the explicit justification.
type timerItem struct {
	deadline time.Time
	fire func()
	index int
}

type timerHeap []*timerItem

func (h timerHeap) Len() int { return len(h) }
func (h timerHeap) Less(i, j int) bool { return h[i].deadline.Before(h[j].deadline) }
func (h timerHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}
func (h *timerHeap) Push(x any) {
	item := x.(*timerItem)
	item.index = len(*h)
	*h = append(*h, item)
}
func (h *timerHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	item.index = -1
	*h = old[:n-1]
	return item
}

// timerService is the single priority queue driving every
// timeout-bearing message: behavior timeouts and sync-request timeouts. A
// dedicated goroutine (not a borrowed scheduler worker) pops expired
// entries and invokes their fire callback, which for all our callers
// enqueues a synthetic envelope on a target mailbox. It waits on the
// injected Clock's AfterFunc, so a fake Clock controls when entries expire.
type timerService struct {
	clock Clock

	mu sync.Mutex
	h timerHeap
	wake chan struct{}
	stop chan struct{}
	stopped sync.Once
}

func newTimerService(clock Clock) *timerService {
	ts := &timerService{
		clock: clock,
		wake: make(chan struct{}, 1),
		stop: make(chan struct{}),
	}
	go ts.run()
	return ts
}

// Schedule arms fire to run once after d elapses, returning a Timer whose
// Stop cancels it if it hasn't fired yet. A non-positive d fires
// synchronously on the calling goroutine ("fires immediately"
// zero-duration-timeout boundary behavior).
func (ts *timerService) Schedule(d time.Duration, fire func()) Timer {
	if d <= 0 {
		fire()
		return noopTimer{}
	}
	item := &timerItem{deadline: ts.clock.Now().Add(d), fire: fire}
	ts.mu.Lock()
	heap.Push(&ts.h, item)
	ts.mu.Unlock()
	ts.wakeUp()
	return &timerHandle{ts: ts, item: item}
}

func (ts *timerService) wakeUp() {
	select {
	case ts.wake <- struct{}{}:
	default:
	}
}

func (ts *timerService) run() {
	for {
		ts.mu.Lock()
		var wait time.Duration
		if ts.h.Len() == 0 {
			wait = time.Hour
		} else {
			wait = ts.h[0].deadline.Sub(ts.clock.Now())
		}
		ts.mu.Unlock()
		if wait < 0 {
			wait = 0
		}
		alarm := ts.clock.AfterFunc(wait, ts.wakeUp)
		select {
		case <-ts.wake:
		case <-ts.stop:
			alarm.Stop()
			return
		}
		alarm.Stop()
		ts.drainExpired()
	}
}

func (ts *timerService) drainExpired() {
	now := ts.clock.Now()
	for {
		ts.mu.Lock()
		if ts.h.Len() == 0 || ts.h[0].deadline.After(now) {
			ts.mu.Unlock()
			return
		}
		item := heap.Pop(&ts.h).(*timerItem)
		ts.mu.Unlock()
		item.fire()
	}
}

// Stop shuts the timer service's background goroutine down. Intended for
// Runtime.Stop() / tests using goleak.
func (ts *timerService) Stop() {
	ts.stopped.Do(func() { close(ts.stop) })
}

type timerHandle struct {
	ts *timerService
	item *timerItem
}

func (h *timerHandle) Stop() bool {
	h.ts.mu.Lock()
	defer h.ts.mu.Unlock()
	if h.item.index < 0 {
		return false
	}
	heap.Remove(&h.ts.h, h.item.index)
	return true
}

type noopTimer struct{}

func (noopTimer) Stop() bool { return false }
