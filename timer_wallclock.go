package actor

import (
	"time"

	"github.com/ehrlich-b/actorcore/internal/pool"
	"github.com/ehrlich-b/actorcore/internal/reactor"
)

// wallClockTimers is the default timer backend: every armed timer is a
// real timerfd registered with the runtime's reactor, so the scheduler's
// ordinary poll loop delivers expirations without any dedicated timer
// thread.
type wallClockTimers struct {
	rt       *Runtime
	records  *pool.Pool[timerRecord]
	fdToID   map[int]TimerId
	epoch    time.Time
}

func newWallClockTimers(rt *Runtime, capacity int) *wallClockTimers {
	return &wallClockTimers{
		rt:      rt,
		records: pool.New[timerRecord](capacity),
		fdToID:  make(map[int]TimerId),
		epoch:   time.Now(),
	}
}

func (w *wallClockTimers) now() int64 {
	return time.Since(w.epoch).Microseconds()
}

func (w *wallClockTimers) arm(owner ActorId, tag Tag, deltaUs int64, periodic bool) (TimerId, Status) {
	deltaUs = clampDelta(deltaUs)
	h, rec, ok := w.records.Alloc()
	if !ok {
		return InvalidTimerID, status(NOMEM, "timer: timer pool exhausted")
	}
	interval := time.Duration(0)
	if periodic {
		interval = time.Duration(deltaUs) * time.Microsecond
	}
	fd, err := reactor.NewTimerFD(time.Duration(deltaUs)*time.Microsecond, interval)
	if err != nil {
		w.records.Free(h)
		return InvalidTimerID, status(IO, "timer: timerfd setup failed")
	}
	id := TimerId(h)
	*rec = timerRecord{owner: owner, tag: tag, periodic: periodic, intervalUs: deltaUs, fd: fd, active: true}
	w.fdToID[fd] = id
	if w.rt.reactor != nil {
		w.rt.reactor.Register(fd, reactor.Timer, uint64(id))
	}
	return id, StatusOK
}

func (w *wallClockTimers) cancel(id TimerId) Status {
	rec := w.records.Get(pool.Handle(id))
	if rec == nil || !rec.active {
		return status(INVALID, "timer: no such timer")
	}
	w.teardown(id, rec)
	return StatusOK
}

func (w *wallClockTimers) teardown(id TimerId, rec *timerRecord) {
	if w.rt.reactor != nil {
		w.rt.reactor.Unregister(rec.fd)
	}
	reactor.CloseFD(rec.fd)
	delete(w.fdToID, rec.fd)
	w.records.Free(pool.Handle(id))
}

// onReactorEvent is invoked by the scheduler for every Timer-kind event
// the reactor reports (identified by the TimerId carried as the event's
// UserData): drain the expiration counter, fire the message, and retire
// one-shot timers (periodic ones stay armed — the kernel re-arms the
// timerfd itself on its own interval).
func (w *wallClockTimers) onReactorEvent(id TimerId) {
	rec := w.records.Get(pool.Handle(id))
	if rec == nil {
		return
	}
	reactor.DrainTimerFD(rec.fd)
	w.rt.fireTimer(id, rec)
	if !rec.periodic {
		w.teardown(id, rec)
	}
}

func (w *wallClockTimers) close() {
	for fd := range w.fdToID {
		if w.rt.reactor != nil {
			w.rt.reactor.Unregister(fd)
		}
		reactor.CloseFD(fd)
	}
	w.fdToID = make(map[int]TimerId)
}
