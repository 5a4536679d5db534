package tree

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"quarto_go/internal/board"
)

// rowThreat 第 1 行放 1,3,5,_,7（共享第 0 位），(1,3) 为空
func rowThreat(t *testing.T) board.State {
	t.Helper()
	s := board.New()
	for c, p := range map[int]int8{0: 1, 1: 3, 2: 5, 4: 7} {
		require.NoError(t, s.Place(board.CellIndex(1, c), p))
	}
	return s
}

func TestActionKeysNeverCollide(t *testing.T) {
	seen := map[Key]bool{}
	for p := int8(0); p < board.Pieces; p++ {
		require.False(t, seen[ChooseKey(p)])
		seen[ChooseKey(p)] = true
	}
	for cell := int8(0); cell < board.Cells; cell++ {
		for p := int8(0); p < board.Pieces; p++ {
			k := MoveKey(cell, p)
			require.False(t, seen[k], "cell %d piece %d", cell, p)
			seen[k] = true
		}
	}
}

func TestKindCycle(t *testing.T) {
	k := MaxChoose
	want := []Kind{MinMove, MinChoose, MaxMove, MaxChoose}
	for _, w := range want {
		k = k.Next()
		require.Equal(t, w, k)
	}
	require.Equal(t, board.Max, MaxMove.Role())
	require.Equal(t, board.Min, MinChoose.Role())
	require.Panics(t, func() { Terminal.Next() })
}

func TestExpandStopsAtWinningMove(t *testing.T) {
	for _, tc := range []struct {
		kind  Kind
		value int8
	}{
		{MaxMove, 1},
		{MinMove, -1},
	} {
		t.Run(tc.kind.String(), func(t *testing.T) {
			n := NewRoot(tc.kind, rowThreat(t), 9)
			before := Probes()
			n.Expand()

			require.True(t, n.Solved)
			require.True(t, n.IsExpanded())
			require.Empty(t, n.Children())
			require.NotNil(t, n.SolvedRef)
			require.Equal(t, Terminal, n.SolvedRef.Kind)
			require.Equal(t, tc.value, n.SolvedRef.Value)
			require.Equal(t, board.CellIndex(1, 3), n.SolvedRef.Cell)
			// 第 0 行五格 + 获胜格；之后的格子一个都没有试探
			require.Equal(t, uint64(6), Probes()-before)
			require.Equal(t, 1, n.Count())
		})
	}
}

func TestGetOrCreateChildSolvesOnWinningAction(t *testing.T) {
	n := NewRoot(MaxMove, rowThreat(t), 9)
	n.Visits, n.UtilitySum = 4, -2

	c := n.GetOrCreateChild(Action{Cell: 0, Piece: 9})
	require.Equal(t, MaxChoose, c.Kind)
	require.Same(t, c, n.GetOrCreateChild(Action{Cell: 0, Piece: 9}))

	win := n.GetOrCreateChild(Action{Cell: board.CellIndex(1, 3), Piece: 9})
	require.Equal(t, Terminal, win.Kind)
	require.True(t, n.Solved)
	require.Empty(t, n.Children())
	require.Equal(t, float64(4), n.UtilitySum)
	require.Same(t, n.SolvedRef, n.GetOrCreateChild(Action{Cell: 2, Piece: 9}))
}

func TestGetOrCreateChildRejectsIllegalActions(t *testing.T) {
	n := NewRoot(MaxMove, rowThreat(t), 9)
	require.Panics(t, func() { n.GetOrCreateChild(Action{Cell: board.CellIndex(1, 0), Piece: 9}) })
	require.Panics(t, func() { n.GetOrCreateChild(Action{Cell: 0, Piece: 10}) })

	c := NewRoot(MinChoose, rowThreat(t), -1)
	require.Panics(t, func() { c.GetOrCreateChild(Action{Cell: -1, Piece: 1}) })
	require.Panics(t, func() { c.GetOrCreateChild(Action{Cell: -1, Piece: 40}) })
}

func TestChildBoardMatchesAppliedAction(t *testing.T) {
	s := rowThreat(t)
	n := NewRoot(MinMove, s, 20)
	c := n.GetOrCreateChild(Action{Cell: 17, Piece: 20})

	want := s
	require.NoError(t, want.Place(17, 20))
	require.Equal(t, want, c.Board)
	require.Equal(t, MinChoose, c.Kind)
	require.Equal(t, s, n.Board)
}

func TestExpandChooseNode(t *testing.T) {
	s := rowThreat(t)
	n := NewRoot(MaxChoose, s, -1)
	n.Expand()
	require.False(t, n.Solved)
	require.True(t, n.IsExpanded())
	require.Len(t, n.Children(), s.PiecesRemaining())

	prev := int8(-1)
	for _, c := range n.Children() {
		require.Equal(t, MinMove, c.Kind)
		require.Greater(t, c.Piece, prev)
		require.False(t, s.IsPiecePlayed(c.Piece))
		prev = c.Piece
	}

	first := n.Children()[0]
	n.Expand()
	require.Same(t, first, n.Children()[0])
	require.Len(t, n.Children(), s.PiecesRemaining())
}

func TestExpandRandomEventuallyExhausts(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	s := board.New()
	n := NewRoot(MinMove, s, 0)
	seen := map[int8]bool{}
	for !n.IsExpanded() {
		c := n.ExpandRandom(rng)
		require.False(t, seen[c.Cell])
		seen[c.Cell] = true
	}
	require.Len(t, seen, board.Cells)
	require.Panics(t, func() { n.ExpandRandom(rng) })
	require.Panics(t, func() { newTerminal(0, 0, 1).ExpandRandom(rng) })
}

type constRand int

func (c constRand) Intn(int) int { return int(c) }

func TestExpandRandomFallsBackToScan(t *testing.T) {
	n := NewRoot(MaxChoose, board.New(), -1)
	require.Equal(t, int8(0), n.ExpandRandom(constRand(0)).Piece)
	// 随机源永远命中已物化的 0 号棋子，只能线性扫描
	require.Equal(t, int8(1), n.ExpandRandom(constRand(0)).Piece)
	require.Equal(t, int8(2), n.ExpandRandom(constRand(1)).Piece)
}

func TestTerminalNodes(t *testing.T) {
	term := newTerminal(3, 9, -1)
	require.True(t, term.IsExpanded())
	require.Equal(t, 1, term.Visits)
	require.Equal(t, float64(-1), term.UtilitySum)
	require.Panics(t, func() { term.Expand() })
	require.Panics(t, func() { term.GetOrCreateChild(Action{Cell: 0, Piece: 0}) })
	it := term.Iter()
	_, ok := it.Next()
	require.False(t, ok)
}

func TestIterDoesNotTouchPersistentChildren(t *testing.T) {
	s := rowThreat(t)
	n := NewRoot(MaxMove, s, 9)
	it := n.Iter()
	count, wins := 0, 0
	for c, ok := it.Next(); ok; c, ok = it.Next() {
		count++
		if c.Kind == Terminal && c.Value == 1 {
			wins++
		}
	}
	require.Equal(t, s.EmptyCells(), count)
	require.Equal(t, 1, wins)
	require.Empty(t, n.Children())
	require.False(t, n.Solved)

	choose := NewRoot(MinChoose, s, -1)
	it = choose.Iter()
	count = 0
	for _, ok := it.Next(); ok; _, ok = it.Next() {
		count++
	}
	require.Equal(t, s.PiecesRemaining(), count)
}

func TestCollapseRewritesSolvedSlot(t *testing.T) {
	parent := NewRoot(MinChoose, rowThreat(t), -1)
	child := parent.GetOrCreateChild(Action{Cell: -1, Piece: 9})
	require.Equal(t, MaxMove, child.Kind)
	child.Expand()
	require.True(t, child.Solved)

	term := parent.Collapse(child)
	require.Equal(t, Terminal, term.Kind)
	require.Equal(t, int8(1), term.Value)
	require.Equal(t, int8(9), term.Piece)
	got, ok := parent.Child(ChooseKey(9))
	require.True(t, ok)
	require.Same(t, term, got)
	require.Equal(t, 2, parent.Count())

	// 未解节点原样返回
	other := parent.GetOrCreateChild(Action{Cell: -1, Piece: 0})
	require.Same(t, other, parent.Collapse(other))
}

func TestRecordAndMean(t *testing.T) {
	n := NewRoot(MaxChoose, board.New(), -1)
	require.Equal(t, 0.0, n.Mean())
	n.Record(1)
	n.Record(-1)
	n.Record(1)
	require.Equal(t, 3, n.Visits)
	require.InDelta(t, 1.0/3, n.Mean(), 1e-9)
}
