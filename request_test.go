package actor

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRequestReplyRoundTrip(t *testing.T) {
	rt := newTestRuntime(t)

	reply := make(chan string, 1)
	var idServer ActorId

	server := func(rt *Runtime, self ActorId, args any, sibs []SpawnInfo) {
		msg, st := rt.RecvMatch(WildcardActorID, ClassRequest, TagWildcard, -1)
		if !st.Ok() {
			return
		}
		rt.Reply(msg, []byte("pong:"+string(msg.Data)))
	}
	client := func(rt *Runtime, self ActorId, args any, sibs []SpawnInfo) {
		msg, st := rt.Request(idServer, []byte("ping"), -1)
		if st.Ok() {
			reply <- string(msg.Data)
		}
		rt.Exit()
	}

	idServer, st := rt.Spawn(server, nil, nil, SpawnConfig{})
	require.True(t, st.Ok())
	_, st = rt.Spawn(client, nil, nil, SpawnConfig{})
	require.True(t, st.Ok())

	rt.RunUntilBlocked()

	require.Equal(t, "pong:ping", <-reply)
}

func TestRequestReturnsClosedWhenTargetExitsMidCall(t *testing.T) {
	rt := newTestRuntime(t)

	result := make(chan Status, 1)
	var idServer ActorId

	server := func(rt *Runtime, self ActorId, args any, sibs []SpawnInfo) {
		_, st := rt.RecvMatch(WildcardActorID, ClassRequest, TagWildcard, -1)
		if !st.Ok() {
			return
		}
		rt.Exit() // dies instead of replying
	}
	client := func(rt *Runtime, self ActorId, args any, sibs []SpawnInfo) {
		_, st := rt.Request(idServer, []byte("ping"), -1)
		result <- st
	}

	idServer, st := rt.Spawn(server, nil, nil, SpawnConfig{})
	require.True(t, st.Ok())
	_, st = rt.Spawn(client, nil, nil, SpawnConfig{})
	require.True(t, st.Ok())

	rt.RunUntilBlocked()

	got := <-result
	require.False(t, got.Ok())
	require.Equal(t, CLOSED, got.Code)
}
