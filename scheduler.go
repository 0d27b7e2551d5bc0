package actor

import (
	"time"

	"github.com/ehrlich-b/actorcore/internal/reactor"
)

// Scheduler is the cooperative, priority-ordered dispatcher: one FIFO
// ready queue per priority level. Draining CRITICAL before HIGH before
// NORMAL before LOW, and always popping from the front of whichever
// queue is non-empty, gives round-robin-within-a-band, strict-priority-
// across-bands dispatch without needing a separate cursor: a requeued
// actor goes to the back of its band's line.
type Scheduler struct {
	rt     *Runtime
	ready  [numPriorities][]ActorId
	queued map[ActorId]bool
}

func newScheduler(rt *Runtime) *Scheduler {
	return &Scheduler{rt: rt, queued: make(map[ActorId]bool)}
}

// onReady enqueues an actor that just became READY (new spawn, mailbox
// wake, bus wake, voluntary yield). A no-op if already queued.
func (s *Scheduler) onReady(a *Actor) {
	if s.queued[a.id] {
		return
	}
	s.queued[a.id] = true
	s.ready[a.priority] = append(s.ready[a.priority], a.id)
}

// priorityScanOrder is the fixed CRITICAL→HIGH→NORMAL→LOW dispatch
// order, independent of the Priority constants' numeric values (Normal
// is 0 so it's the SpawnConfig zero-value default; this table is what
// actually decides scan precedence).
var priorityScanOrder = [numPriorities]Priority{Critical, High, Normal, Low}

func (s *Scheduler) popNext() (ActorId, bool) {
	for _, p := range priorityScanOrder {
		q := s.ready[p]
		if len(q) == 0 {
			continue
		}
		id := q[0]
		s.ready[p] = q[1:]
		delete(s.queued, id)
		return id, true
	}
	return InvalidActorID, false
}

func (s *Scheduler) anyReady() bool {
	for _, p := range priorityScanOrder {
		if len(s.ready[p]) > 0 {
			return true
		}
	}
	return false
}

// runOne dispatches a single actor through one baton round-trip:
// resume it, wait for it to yield control back, then classify the
// result.
func (s *Scheduler) runOne(id ActorId) {
	a := s.rt.table.get(id)
	if a == nil || a.state != Ready {
		return
	}
	a.state = Running
	s.rt.running = a
	a.ctx.resume <- struct{}{}
	<-a.ctx.yielded
	s.rt.running = nil

	if !a.region.GuardsOK() {
		a.state = Dead
		a.exitReason = ReasonCrashStack
		s.rt.cleanupDeath(a)
		return
	}

	switch a.state {
	case Running:
		// Voluntary Yield(): demote and go to the back of the line.
		a.state = Ready
		s.onReady(a)
	case Dead:
		s.rt.cleanupDeath(a)
	case Waiting:
		// Left WAITING; a future send/publish/timer fire will re-queue it.
	}
}

// drainReactor polls the shared reactor once, delivering any due timer
// (and, on platforms wiring it, network) events before the next
// dispatch. WAKEUP events need no handling beyond being drained: their
// only job is unblocking a Wait() call from outside this goroutine.
func (s *Scheduler) drainReactor(timeout time.Duration) {
	if s.rt.reactor == nil {
		return
	}
	events, err := s.rt.reactor.Wait(timeout)
	if err != nil {
		return
	}
	wc, ok := s.rt.timers.(*wallClockTimers)
	for _, ev := range events {
		if ev.Kind == reactor.Timer && ok {
			wc.onReactorEvent(TimerId(ev.UserData))
		}
	}
}

// Run dispatches actors until none are left alive (every slot DEAD),
// blocking in the reactor between dispatch rounds when nothing is
// READY.
func (s *Scheduler) Run() {
	for {
		if !s.anyReady() {
			if len(s.rt.table.all()) == 0 {
				return
			}
			s.drainReactor(PollTimeout)
			continue
		}
		id, ok := s.popNext()
		if !ok {
			continue
		}
		s.runOne(id)
		s.drainReactor(0)
	}
}

// RunUntilBlocked dispatches every currently READY actor (and any that
// becomes READY as a side effect) and returns as soon as none remain
// READY, without blocking in the reactor. This is what lets a host loop
// drive the scheduler itself — e.g. pumping AdvanceTime between calls
// under the simulated timer backend.
func (s *Scheduler) RunUntilBlocked() {
	for {
		id, ok := s.popNext()
		if !ok {
			return
		}
		s.runOne(id)
	}
}
