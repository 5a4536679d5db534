package zobrist

import (
	"testing"

	"github.com/stretchr/testify/require"

	"quarto_go/internal/board"
)

func TestKeysNonZeroAndDistinct(t *testing.T) {
	seen := map[uint64]bool{}
	add := func(k uint64) {
		require.NotZero(t, k)
		require.False(t, seen[k], "duplicate key %x", k)
		seen[k] = true
	}
	for c := range Keys {
		for p := range Keys[c] {
			add(Keys[c][p])
		}
	}
	for _, k := range KindKey {
		add(k)
	}
	for _, k := range Pending {
		add(k)
	}
}

func TestHashBoardIsOrderIndependent(t *testing.T) {
	a, b := board.New(), board.New()
	require.NoError(t, a.Place(0, 5))
	require.NoError(t, a.Place(7, 12))
	require.NoError(t, b.Place(7, 12))
	require.NoError(t, b.Place(0, 5))
	require.Equal(t, HashBoard(&a), HashBoard(&b))

	empty := board.New()
	h := Toggle(Toggle(HashBoard(&empty), 0, 5), 7, 12)
	require.Equal(t, HashBoard(&a), h)
}

func TestHashNodeSeparatesKindAndPending(t *testing.T) {
	s := board.New()
	require.NoError(t, s.Place(3, 3))
	choose := HashNode(&s, 0, -1)
	require.NotEqual(t, choose, HashNode(&s, 2, -1))
	require.NotEqual(t, HashNode(&s, 1, 4), HashNode(&s, 1, 6))
	require.NotEqual(t, choose, HashNode(&s, 1, 4))
}

func TestNodeKeyFromToggledBoard(t *testing.T) {
	s := board.New()
	h := HashBoard(&s)
	for _, mv := range [][2]int8{{4, 9}, {12, 0}, {24, 31}} {
		require.NoError(t, s.Place(mv[0], mv[1]))
		h = Toggle(h, mv[0], mv[1])
		require.Equal(t, HashNode(&s, 1, 17), NodeKey(h, 1, 17))
		require.Equal(t, HashNode(&s, 3, -1), NodeKey(h, 3, -1))
	}
}
