package actor

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSpawnAutoRegisterDuplicateNameReturnsExists(t *testing.T) {
	rt := newTestRuntime(t)

	entry := func(rt *Runtime, self ActorId, args any, sibs []SpawnInfo) {
		rt.Recv(-1)
	}

	_, st := rt.Spawn(entry, nil, nil, SpawnConfig{Name: "worker", AutoRegister: true})
	require.True(t, st.Ok())

	_, st = rt.Spawn(entry, nil, nil, SpawnConfig{Name: "worker", AutoRegister: true})
	require.False(t, st.Ok())
	require.Equal(t, EXISTS, st.Code)
}

func TestRegisterDuplicateNameReturnsInvalid(t *testing.T) {
	r := newRegistry()
	require.True(t, r.Register("alice", ActorId(1)).Ok())

	st := r.Register("alice", ActorId(2))
	require.False(t, st.Ok())
	require.Equal(t, INVALID, st.Code)
}
