package actor

import (
	"runtime"
	"sync"
)

// scheduler is the cooperative worker pool of fairness
// paragraph: N workers consume a shared runnable queue; no actor may
// monopolize a worker beyond one quantum. Only EventBased actors are ever
// enqueued here — Blocking actors own a dedicated goroutine started at
// spawn time and never touch the shared pool.
type scheduler struct {
	rt *Runtime
	runnable chan *actorCell
	stop chan struct{}
	wg sync.WaitGroup
	workers int
}

func newScheduler(rt *Runtime, workers int) *scheduler {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &scheduler{
		rt: rt,
		runnable: make(chan *actorCell, 4096),
		stop: make(chan struct{}),
		workers: workers,
	}
}

func (s *scheduler) start() {
	for i := 0; i < s.workers; i++ {
		s.wg.Add(1)
		go s.loop()
	}
}

// stopAndWait signals every worker to return after its current pickup and
// blocks until they have (intended for Runtime.Stop() / goleak-clean tests).
func (s *scheduler) stopAndWait() {
	close(s.stop)
	s.wg.Wait()
}

func (s *scheduler) loop() {
	defer s.wg.Done()
	for {
		select {
		case <-s.stop:
			return
		case c := <-s.runnable:
			s.runCell(c)
		}
	}
}

// markRunnable transitions an idle actor to runnable and enqueues it,
// exactly once per idle→runnable edge. A cell already runnable/running/waiting needs no
// action: it is either already queued or will re-observe its own mailbox
// before yielding.
func (s *scheduler) markRunnable(c *actorCell) {
	if c.casState(StateIdle, StateRunnable) {
		s.enqueue(c)
	}
}

func (s *scheduler) enqueue(c *actorCell) {
	select {
	case s.runnable <- c:
	default:
		// Queue momentarily full; this never blocks a producer's send path
		// forever since it hands off to its own goroutine rather than the
		// caller's.
		go func() { s.runnable <- c }()
	}
}

// runCell executes at most one quantum for c, then re-establishes whichever
// of {idle, runnable} state applies, racing correctly against concurrent
// PushBack calls via the same idle→runnable CAS markRunnable uses.
func (s *scheduler) runCell(c *actorCell) {
	if !c.casState(StateRunnable, StateRunning) {
		return
	}
	c.strategy.runQuantum(c)

	if reason, planned := c.plannedReason(); planned {
		s.rt.terminate(c, reason)
		return
	}

	if c.mailbox.Empty() {
		if c.casState(StateRunning, StateIdle) {
			return
		}
	}
	c.setState(StateRunnable)
	s.enqueue(c)
}

// driveBlocking is the dedicated goroutine body for a Blocking actor
//: it owns c outright, alternating between blocking on its
// mailbox and draining everything currently available, until a planned
// exit is observed.
func (s *scheduler) driveBlocking(c *actorCell) {
	for {
		c.setState(StateRunning)
		c.strategy.runQuantum(c)
		if reason, planned := c.plannedReason(); planned {
			s.rt.terminate(c, reason)
			return
		}
		c.setState(StateIdle)
	}
}
