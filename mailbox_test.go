package actor

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestRuntime(t *testing.T) *Runtime {
	t.Helper()
	rt, err := New(RuntimeConfig{SimulatedTime: true})
	require.NoError(t, err)
	t.Cleanup(func() { rt.Close() })
	return rt
}

func TestSendRecvRoundTrip(t *testing.T) {
	rt := newTestRuntime(t)

	received := make(chan string, 1)
	echoer := func(rt *Runtime, self ActorId, args any, sibs []SpawnInfo) {
		msg, st := rt.Recv(-1)
		if !st.Ok() {
			received <- "ERROR:" + st.Error()
			return
		}
		received <- string(msg.Data)
		rt.Exit()
	}
	idB, st := rt.Spawn(echoer, nil, nil, SpawnConfig{})
	require.True(t, st.Ok())

	sender := func(rt *Runtime, self ActorId, args any, sibs []SpawnInfo) {
		rt.Notify(idB, Tag(1), []byte("hello"))
		rt.Exit()
	}
	_, st = rt.Spawn(sender, nil, nil, SpawnConfig{})
	require.True(t, st.Ok())

	rt.RunUntilBlocked()

	require.Equal(t, "hello", <-received)
}

func TestMailboxFindMatchFIFOFirstMatchWins(t *testing.T) {
	rt := newTestRuntime(t)

	results := make(chan Tag, 3)
	recver := func(rt *Runtime, self ActorId, args any, sibs []SpawnInfo) {
		for i := 0; i < 3; i++ {
			msg, st := rt.Recv(-1)
			if !st.Ok() {
				return
			}
			results <- msg.Tag
		}
		rt.Exit()
	}
	idR, st := rt.Spawn(recver, nil, nil, SpawnConfig{})
	require.True(t, st.Ok())

	sender := func(rt *Runtime, self ActorId, args any, sibs []SpawnInfo) {
		rt.Notify(idR, Tag(1), []byte("a"))
		rt.Notify(idR, Tag(2), []byte("b"))
		rt.Notify(idR, Tag(3), []byte("c"))
		rt.Exit()
	}
	_, st = rt.Spawn(sender, nil, nil, SpawnConfig{})
	require.True(t, st.Ok())

	rt.RunUntilBlocked()

	require.Equal(t, Tag(1), <-results)
	require.Equal(t, Tag(2), <-results)
	require.Equal(t, Tag(3), <-results)
}

func TestRecvMatchFiltersBySender(t *testing.T) {
	rt := newTestRuntime(t)

	var gotFrom ActorId
	done := make(chan struct{})

	var idSenderA, idSenderB ActorId

	recver := func(rt *Runtime, self ActorId, args any, sibs []SpawnInfo) {
		msg, st := rt.RecvMatch(idSenderB, ClassAny, TagWildcard, -1)
		if st.Ok() {
			gotFrom = msg.Sender
		}
		close(done)
		rt.Exit()
	}
	idR, st := rt.Spawn(recver, nil, nil, SpawnConfig{})
	require.True(t, st.Ok())

	senderA := func(rt *Runtime, self ActorId, args any, sibs []SpawnInfo) {
		idSenderA = self
		rt.Notify(idR, Tag(1), []byte("from-a"))
		rt.Exit()
	}
	idSenderA, st = rt.Spawn(senderA, nil, nil, SpawnConfig{})
	require.True(t, st.Ok())

	senderB := func(rt *Runtime, self ActorId, args any, sibs []SpawnInfo) {
		idSenderB = self
		rt.Notify(idR, Tag(2), []byte("from-b"))
		rt.Exit()
	}
	idSenderB, st = rt.Spawn(senderB, nil, nil, SpawnConfig{})
	require.True(t, st.Ok())

	rt.RunUntilBlocked()

	<-done
	require.Equal(t, idSenderB, gotFrom)
}
