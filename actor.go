package actor

import (
	"github.com/ehrlich-b/actorcore/internal/arena"
	"github.com/ehrlich-b/actorcore/internal/pool"
)

// EntryFunc is the function an actor runs. args is whatever Init (or the
// caller) produced; siblings describes every actor spawned together with
// this one (a one-element slice for a standalone spawn).
type EntryFunc func(rt *Runtime, self ActorId, args any, siblings []SpawnInfo)

// SpawnInfo describes one sibling of a (possibly group) spawn, handed to
// every EntryFunc.
type SpawnInfo struct {
	ID   ActorId
	Name string
}

// SpawnConfig carries the recognized spawn options.
type SpawnConfig struct {
	StackSize    uint32   // 0 => DefaultStackSize
	Priority     Priority // defaults to Normal
	Name         string   // borrowed, nullable; used for debug and registry
	MallocStack  bool     // false => arena, true => heap (budget accounting only)
	AutoRegister bool     // requires Name; failure => EXISTS
}

// baton is the channel pair standing in for the context-switch
// contract: the scheduler goroutine sends on resume to let the actor
// goroutine run, and blocks on yielded until the actor hands control
// back. Because both channels are unbuffered and every send is paired
// with an immediate receive, at most one of {scheduler, actor} goroutine
// is ever doing work — the "exactly one RUNNING actor" invariant
// holds without any lock on the data structures below the scheduler.
type baton struct {
	resume  chan struct{}
	yielded chan struct{}
}

func newBaton() *baton {
	return &baton{resume: make(chan struct{}), yielded: make(chan struct{})}
}

// Actor is one scheduled execution context.
type Actor struct {
	id       ActorId
	state    State
	priority Priority
	name     string

	stackSize   uint32
	mallocStack bool
	region      arena.Region // guard words + logical extent, budget accounting only

	ctx *baton

	mb        mailbox
	active    pool.Handle // current "active message" entry handle, 0 if none
	waitSrcs  []Source    // recorded while WAITING on select(); nil otherwise
	subBuses  []BusId     // buses this actor currently subscribes to

	links    []pool.Handle // handles into Runtime.links
	monitors []pool.Handle // handles into Runtime.monitors (records this actor owns)

	exitReason ExitReason

	entry EntryFunc
	args  any
	sibs  []SpawnInfo
}

func (a *Actor) ID() ActorId      { return a.id }
func (a *Actor) State() State     { return a.state }
func (a *Actor) Priority() Priority { return a.priority }
func (a *Actor) Name() string     { return a.name }

// Self returns the currently RUNNING actor on rt, or nil if called outside
// an actor's execution context (e.g. from the scheduler's own goroutine).
func (rt *Runtime) Self() *Actor { return rt.running }

// Yield voluntarily relinquishes the CPU; the scheduler demotes the actor
// from RUNNING back to READY and will dispatch it again in its turn.
func (rt *Runtime) Yield() {
	a := rt.running
	a.ctx.yielded <- struct{}{}
	<-a.ctx.resume
}

// blockAndYield marks the running actor WAITING and hands control back to
// the scheduler; it returns once the scheduler resumes the actor.
func (rt *Runtime) blockAndYield() {
	a := rt.running
	a.state = Waiting
	a.ctx.yielded <- struct{}{}
	<-a.ctx.resume
}

// Exit terminates the calling actor with ReasonNormal and never returns.
// It unwinds the actor's goroutine stack back to runEntry (the
// Go-native stand-in for the crash-trampoline contract), which
// performs the final state transition and the last resume/yielded
// handshake with the scheduler.
func (rt *Runtime) Exit() {
	panic(exitSignal{reason: ReasonNormal})
}

// exitSignal unwinds the actor goroutine's stack back to runEntry, which
// recovers it and finalizes the DEAD transition with the carried reason.
type exitSignal struct{ reason ExitReason }

// Kill transitions target to DEAD with ReasonKilled and runs the
// death-cleanup pass (cleanupDeath) immediately, before returning. It
// returns INVALID when target is not alive or is the calling actor
// itself; it may be called from another actor or from host code.
func (rt *Runtime) Kill(target ActorId) Status {
	t := rt.table.get(target)
	if t == nil || t.state == Dead {
		return status(INVALID, "kill: target not alive")
	}
	if rt.running != nil && target == rt.running.id {
		return status(INVALID, "kill: cannot kill self, use Exit")
	}
	t.state = Dead
	t.exitReason = ReasonKilled
	rt.log.WithActor(uint32(target)).Info("killed")
	rt.cleanupDeath(t)
	return StatusOK
}

// Alive reports whether id refers to a non-DEAD slot.
func (rt *Runtime) Alive(id ActorId) bool {
	t := rt.table.get(id)
	return t != nil && t.state != Dead
}
