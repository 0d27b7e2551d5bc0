package actor

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWriteReadHeaderRoundTrip(t *testing.T) {
	buf := make([]byte, MessageHeaderSize)
	writeHeader(buf, ClassRequest, Tag(1234))

	class, tag := readHeader(buf)
	require.Equal(t, ClassRequest, class)
	require.Equal(t, Tag(1234), tag)
}

func TestFilterMatches(t *testing.T) {
	f := Filter{Sender: ActorId(5), Class: ClassNotify, Tag: Tag(1)}
	require.True(t, f.matches(ActorId(5), ClassNotify, Tag(1)))
	require.False(t, f.matches(ActorId(6), ClassNotify, Tag(1)))
	require.False(t, f.matches(ActorId(5), ClassRequest, Tag(1)))
	require.False(t, f.matches(ActorId(5), ClassNotify, Tag(2)))
}

func TestAnyFilterMatchesEverything(t *testing.T) {
	f := AnyFilter()
	require.True(t, f.matches(ActorId(999), ClassExit, Tag(42)))
	require.True(t, f.matches(WildcardActorID, ClassTimer, TagWildcard))
}
