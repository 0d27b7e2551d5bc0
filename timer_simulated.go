package actor

import (
	"sort"

	"github.com/ehrlich-b/actorcore/internal/pool"
)

// simulatedTimers is the deterministic timer backend: the virtual clock
// only moves when the host calls AdvanceTime, which is what lets a test
// or an embedded scheduler drive actor timeouts without sleeping real
// wall-clock time.
type simulatedTimers struct {
	rt      *Runtime
	records *pool.Pool[timerRecord]
	clock   int64
}

func newSimulatedTimers(rt *Runtime, capacity int) *simulatedTimers {
	return &simulatedTimers{rt: rt, records: pool.New[timerRecord](capacity)}
}

func (s *simulatedTimers) now() int64 { return s.clock }

func (s *simulatedTimers) arm(owner ActorId, tag Tag, deltaUs int64, periodic bool) (TimerId, Status) {
	deltaUs = clampDelta(deltaUs)
	h, rec, ok := s.records.Alloc()
	if !ok {
		return InvalidTimerID, status(NOMEM, "timer: timer pool exhausted")
	}
	*rec = timerRecord{
		owner:      owner,
		tag:        tag,
		periodic:   periodic,
		intervalUs: deltaUs,
		deadlineUs: s.clock + deltaUs,
		active:     true,
	}
	return TimerId(h), StatusOK
}

func (s *simulatedTimers) cancel(id TimerId) Status {
	rec := s.records.Get(pool.Handle(id))
	if rec == nil || !rec.active {
		return status(INVALID, "timer: no such timer")
	}
	s.records.Free(pool.Handle(id))
	return StatusOK
}

func (s *simulatedTimers) close() {}

// AdvanceTime moves the simulated clock forward by deltaUs microseconds
// and fires, in deadline order, every timer due at or before the new
// clock value. A periodic timer is re-armed from its old deadline (not
// from "now"), so a caller advancing time in large steps still observes
// the correct number of periodic firings.
func (rt *Runtime) AdvanceTime(deltaUs int64) {
	sim, ok := rt.timers.(*simulatedTimers)
	if !ok || deltaUs <= 0 {
		return
	}
	target := sim.clock + deltaUs
	for {
		id, rec := sim.nextDue(target)
		if rec == nil {
			break
		}
		sim.clock = rec.deadlineUs
		rt.fireTimer(id, rec)
		if rec.periodic {
			rec.deadlineUs += rec.intervalUs
		} else {
			sim.records.Free(pool.Handle(id))
		}
	}
	sim.clock = target
}

// nextDue returns the active, armed record with the earliest deadline
// at or before horizon, breaking ties by id for determinism.
func (s *simulatedTimers) nextDue(horizon int64) (TimerId, *timerRecord) {
	var bestID TimerId
	var best *timerRecord
	ids := make([]uint32, 0)
	for id := uint32(1); id <= uint32(s.records.Cap()); id++ {
		if rec := s.records.Get(pool.Handle(id)); rec != nil && rec.active {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	for _, id := range ids {
		rec := s.records.Get(pool.Handle(id))
		if rec.deadlineUs > horizon {
			continue
		}
		if best == nil || rec.deadlineUs < best.deadlineUs {
			best = rec
			bestID = TimerId(id)
		}
	}
	return bestID, best
}
