package actor

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAfterFiresOnAdvanceTime(t *testing.T) {
	rt := newTestRuntime(t)

	fired := make(chan struct{}, 1)
	waiter := func(rt *Runtime, self ActorId, args any, sibs []SpawnInfo) {
		rt.After(1000, Tag(7))
		_, st := rt.RecvMatch(WildcardActorID, ClassTimer, Tag(7), -1)
		if st.Ok() {
			fired <- struct{}{}
		}
		rt.Exit()
	}
	_, st := rt.Spawn(waiter, nil, nil, SpawnConfig{})
	require.True(t, st.Ok())

	rt.RunUntilBlocked()
	select {
	case <-fired:
		t.Fatal("timer fired before AdvanceTime")
	default:
	}

	rt.AdvanceTime(1000)
	rt.RunUntilBlocked()

	select {
	case <-fired:
	default:
		t.Fatal("expected timer to fire after AdvanceTime")
	}
}

func TestEveryFiresRepeatedly(t *testing.T) {
	rt := newTestRuntime(t)

	count := make(chan struct{}, 10)
	waiter := func(rt *Runtime, self ActorId, args any, sibs []SpawnInfo) {
		rt.Every(100, Tag(3))
		for i := 0; i < 3; i++ {
			_, st := rt.RecvMatch(WildcardActorID, ClassTimer, Tag(3), -1)
			if !st.Ok() {
				return
			}
			count <- struct{}{}
		}
		rt.Exit()
	}
	_, st := rt.Spawn(waiter, nil, nil, SpawnConfig{})
	require.True(t, st.Ok())
	rt.RunUntilBlocked()

	rt.AdvanceTime(350)
	rt.RunUntilBlocked()

	require.Len(t, count, 3)
}

func TestTimerMessageSenderIsOwner(t *testing.T) {
	rt := newTestRuntime(t)

	type result struct {
		self, sender ActorId
	}
	results := make(chan result, 1)
	waiter := func(rt *Runtime, self ActorId, args any, sibs []SpawnInfo) {
		rt.After(1000, Tag(9))
		msg, st := rt.RecvMatch(WildcardActorID, ClassTimer, Tag(9), -1)
		if st.Ok() {
			results <- result{self: self, sender: msg.Sender}
		}
		rt.Exit()
	}
	_, st := rt.Spawn(waiter, nil, nil, SpawnConfig{})
	require.True(t, st.Ok())
	rt.RunUntilBlocked()

	rt.AdvanceTime(1000)
	rt.RunUntilBlocked()

	got := <-results
	require.Equal(t, got.self, got.sender)
}

func TestSelectTimeoutReturnsTimeoutStatus(t *testing.T) {
	rt := newTestRuntime(t)

	result := make(chan Status, 1)
	waiter := func(rt *Runtime, self ActorId, args any, sibs []SpawnInfo) {
		_, st := rt.RecvMatch(WildcardActorID, ClassNotify, TagWildcard, 5)
		result <- st
		rt.Exit()
	}
	_, st := rt.Spawn(waiter, nil, nil, SpawnConfig{})
	require.True(t, st.Ok())
	rt.RunUntilBlocked()

	rt.AdvanceTime(5 * 1000)
	rt.RunUntilBlocked()

	got := <-result
	require.Equal(t, TIMEOUT, got.Code)
}
