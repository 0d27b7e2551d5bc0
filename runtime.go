package actor

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/ehrlich-b/actorcore/internal/arena"
	"github.com/ehrlich-b/actorcore/internal/constants"
	"github.com/ehrlich-b/actorcore/internal/logging"
	"github.com/ehrlich-b/actorcore/internal/pool"
	"github.com/ehrlich-b/actorcore/internal/reactor"
)

// Runtime is one embeddable actor runtime instance:
// every pool, table, and subsystem an actor can touch lives here, and
// nothing here is safe to share across goroutines except through the
// actor primitives themselves — see the package doc comment for why a
// single live goroutine at a time makes that safe without locks.
type Runtime struct {
	table *actorTable

	entries     *pool.Pool[mailboxEntry]
	payloads    *pool.Pool[payloadBuffer]
	busPayloads *pool.Pool[payloadBuffer]
	links       *pool.Pool[linkRecord]
	monitors    *pool.Pool[monitorRecord]

	registry *registry
	arena    *arena.Arena
	reactor  *reactor.Reactor
	timers   timerBackend
	scheduler *Scheduler

	buses        map[BusId]*Bus
	busIDCounter uint32
	maxBuses     int

	tagCounter uint32

	running *Actor

	// instanceID distinguishes log lines from concurrently-embedded
	// Runtime instances in a host process that creates more than one.
	instanceID string
	log        *logging.Logger
}

// RuntimeConfig carries New's construction options. Zero values pick
// the defaults in internal/constants.
type RuntimeConfig struct {
	ArenaSize     uint64 // 0 => constants.ArenaSize
	MaxBuses      int    // 0 => constants.MaxBuses
	SimulatedTime bool   // true => deterministic AdvanceTime-driven clock, no reactor required
}

// InitFunc runs synchronously in the spawning actor's context before the
// new actor's goroutine starts, producing the args its EntryFunc
// receives. A nil InitFunc passes initArgs through unchanged.
type InitFunc func(rt *Runtime, self ActorId, initArgs any) (any, Status)

// New constructs a Runtime. On failure, every subsystem already
// initialized is unwound in reverse order before the error is returned.
func New(cfg RuntimeConfig) (*Runtime, error) {
	arenaSize := cfg.ArenaSize
	if arenaSize == 0 {
		arenaSize = constants.ArenaSize
	}
	maxBuses := cfg.MaxBuses
	if maxBuses == 0 {
		maxBuses = constants.MaxBuses
	}

	instanceID := uuid.NewString()
	rt := &Runtime{
		table:       newActorTable(),
		entries:     pool.New[mailboxEntry](constants.MailboxEntryPoolSize),
		payloads:    pool.New[payloadBuffer](constants.MailboxEntryPoolSize),
		busPayloads: pool.New[payloadBuffer](constants.MailboxEntryPoolSize),
		links:       pool.New[linkRecord](constants.LinkPoolSize),
		monitors:    pool.New[monitorRecord](constants.MonitorPoolSize),
		registry:    newRegistry(),
		arena:       arena.New(arenaSize),
		buses:       make(map[BusId]*Bus),
		maxBuses:    maxBuses,
		instanceID:  instanceID,
		log:         logging.Default().With("runtime_id", instanceID),
	}
	rt.scheduler = newScheduler(rt)

	if cfg.SimulatedTime {
		rt.timers = newSimulatedTimers(rt, constants.TimerPoolSize)
		rt.log.Info("runtime started", "arena_bytes", arenaSize, "max_buses", maxBuses, "clock", "simulated")
		return rt, nil
	}

	rc, err := reactor.New()
	if err != nil {
		return nil, fmt.Errorf("actorcore: new runtime: %w", err)
	}
	rt.reactor = rc
	rt.timers = newWallClockTimers(rt, constants.TimerPoolSize)
	rt.log.Info("runtime started", "arena_bytes", arenaSize, "max_buses", maxBuses, "clock", "wallclock")
	return rt, nil
}

// Close releases the reactor and any backend timer resources. Actors
// still alive are not torn down; callers are expected to bring the
// runtime to quiescence (or discard it) before calling Close.
func (rt *Runtime) Close() error {
	rt.log.Info("runtime closing")
	rt.timers.close()
	if rt.reactor != nil {
		return rt.reactor.Close()
	}
	return nil
}

// Spawn creates a new actor. init, if non-nil, runs synchronously
// in the caller's context and produces the args the new actor's
// EntryFunc receives; its failure aborts the spawn and frees everything
// already reserved.
func (rt *Runtime) Spawn(entry EntryFunc, init InitFunc, initArgs any, cfg SpawnConfig) (ActorId, Status) {
	if cfg.AutoRegister && cfg.Name == "" {
		return InvalidActorID, status(INVALID, "spawn: AutoRegister requires Name")
	}
	idx := rt.table.findFreeSlot()
	if idx == -1 {
		return InvalidActorID, status(NOMEM, "spawn: actor table full")
	}
	stackSize := cfg.StackSize
	if stackSize == 0 {
		stackSize = DefaultStackSize
	}
	var region arena.Region
	if cfg.MallocStack {
		// Heap stack: not charged to the arena, but still guard-checked.
		region = arena.Region{Size: uint64(stackSize), GuardLow: constants.StackGuardLow, GuardHigh: constants.StackGuardHigh}
	} else {
		var ok bool
		region, ok = rt.arena.Alloc(uint64(stackSize))
		if !ok {
			return InvalidActorID, status(NOMEM, "spawn: stack arena exhausted")
		}
	}

	id := rt.table.allocID()
	a := &rt.table.slots[idx]
	*a = Actor{
		id:          id,
		state:       Ready,
		priority:    cfg.Priority,
		name:        cfg.Name,
		stackSize:   stackSize,
		mallocStack: cfg.MallocStack,
		region:      region,
		ctx:         newBaton(),
		entry:       entry,
	}
	a.sibs = []SpawnInfo{{ID: id, Name: cfg.Name}}
	rt.table.bind(idx, id)

	if init != nil {
		prevRunning := rt.running
		rt.running = a
		args, st := init(rt, id, initArgs)
		rt.running = prevRunning
		if !st.Ok() {
			rt.arena.Free(region)
			rt.table.release(id)
			return InvalidActorID, st
		}
		a.args = args
	} else {
		a.args = initArgs
	}

	if cfg.AutoRegister {
		if st := rt.registry.Register(cfg.Name, id); !st.Ok() {
			rt.arena.Free(region)
			rt.table.release(id)
			if st.Code == INVALID {
				// Name is non-empty here (checked above), so the only way
				// Register reports INVALID is a duplicate: auto_register
				// surfaces that as EXISTS rather than the registry's own
				// generic duplicate-name code.
				return InvalidActorID, status(EXISTS, "spawn: name already registered")
			}
			return InvalidActorID, st
		}
	}

	go rt.runEntry(a)
	rt.scheduler.onReady(a)
	rt.log.WithActor(uint32(id)).Debug("spawned", "priority", a.priority.String(), "name", cfg.Name)
	return id, StatusOK
}

// runEntry is the goroutine body backing every actor. It waits for its first dispatch, runs the entry function,
// and whatever ends that function — Exit(), an uncaught panic, or a
// plain return — funnels through the same deferred recover so DEAD is
// always reached by exactly one path.
func (rt *Runtime) runEntry(a *Actor) {
	<-a.ctx.resume
	defer func() {
		if r := recover(); r != nil {
			if sig, ok := r.(exitSignal); ok {
				a.exitReason = sig.reason
			} else {
				a.exitReason = ReasonCrash
			}
			a.state = Dead
		}
		a.ctx.yielded <- struct{}{}
	}()
	a.entry(rt, a.id, a.args, a.sibs)
	// Entry returned without calling Exit(): treated as a crash.
	a.exitReason = ReasonCrash
	a.state = Dead
}

// Run is sugar for rt.scheduler.Run(), started after the first actors
// have been spawned.
func (rt *Runtime) Run() { rt.scheduler.Run() }

// RunUntilBlocked is sugar for rt.scheduler.RunUntilBlocked().
func (rt *Runtime) RunUntilBlocked() { rt.scheduler.RunUntilBlocked() }
