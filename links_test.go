package actor

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestKillDeliversExitToLinkedPeer(t *testing.T) {
	rt := newTestRuntime(t)

	exitInfo := make(chan ExitInfo, 1)
	var idVictim ActorId

	watcher := func(rt *Runtime, self ActorId, args any, sibs []SpawnInfo) {
		rt.Link(idVictim)
		msg, st := rt.RecvMatch(idVictim, ClassExit, TagWildcard, -1)
		if st.Ok() {
			exitInfo <- DecodeExitInfo(msg.Data)
		}
		rt.Exit()
	}
	victim := func(rt *Runtime, self ActorId, args any, sibs []SpawnInfo) {
		rt.Recv(-1) // block forever until Killed
	}

	idVictim, st := rt.Spawn(victim, nil, nil, SpawnConfig{})
	require.True(t, st.Ok())
	idWatcher, st := rt.Spawn(watcher, nil, nil, SpawnConfig{})
	require.True(t, st.Ok())
	_ = idWatcher

	rt.RunUntilBlocked() // both actors park WAITING; link established

	st = rt.Kill(idVictim)
	require.True(t, st.Ok())
	rt.RunUntilBlocked()

	info := <-exitInfo
	require.Equal(t, idVictim, info.Actor)
	require.Equal(t, ReasonKilled, info.Reason)
	require.False(t, rt.Alive(idVictim))
}

func TestMonitorFiresOnceOnDeath(t *testing.T) {
	rt := newTestRuntime(t)

	notified := make(chan ExitInfo, 1)
	var idTarget ActorId

	watcher := func(rt *Runtime, self ActorId, args any, sibs []SpawnInfo) {
		ref, st := rt.Monitor(idTarget)
		require.True(t, st.Ok())
		_ = ref
		msg, st := rt.RecvMatch(idTarget, ClassExit, TagWildcard, -1)
		if st.Ok() {
			notified <- DecodeExitInfo(msg.Data)
		}
		rt.Exit()
	}
	target := func(rt *Runtime, self ActorId, args any, sibs []SpawnInfo) {
		rt.Exit()
	}

	idTarget, st := rt.Spawn(target, nil, nil, SpawnConfig{Priority: Low})
	require.True(t, st.Ok())
	_, st = rt.Spawn(watcher, nil, nil, SpawnConfig{})
	require.True(t, st.Ok())

	rt.RunUntilBlocked()

	info := <-notified
	require.Equal(t, idTarget, info.Actor)
	require.Equal(t, ReasonNormal, info.Reason)
}

func TestCleanupDeathFreesArenaAndMailbox(t *testing.T) {
	rt := newTestRuntime(t)

	before := rt.arena.Allocated()

	victim := func(rt *Runtime, self ActorId, args any, sibs []SpawnInfo) {
		rt.Exit()
	}
	id, st := rt.Spawn(victim, nil, nil, SpawnConfig{})
	require.True(t, st.Ok())
	require.Greater(t, rt.arena.Allocated(), before)

	rt.RunUntilBlocked()

	require.Equal(t, before, rt.arena.Allocated())
	require.False(t, rt.Alive(id))
	require.Nil(t, rt.table.get(id))
}
