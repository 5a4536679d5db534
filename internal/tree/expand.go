// File internal/tree/expand.go
package tree

import (
	"fmt"

	"quarto_go/internal/board"
)

// ---------------- 单步物化 ----------------

// materialize 在副本上执行一次落子并判定。
// 返回子节点，以及该动作是否让行动方直接获胜。
func (n *Node) materialize(cell int8) (*Node, bool) {
	role := n.Kind.Role()
	b := n.Board
	out := b.EvaluateAfterMove(role, cell, n.Piece)
	probes.Add(1)
	if out.Decided {
		return newTerminal(cell, n.Piece, out.Value), out.Wins(role)
	}
	return &Node{Kind: n.Kind.Next(), Board: b, Cell: cell, Piece: n.Piece}, false
}

// choose 挑子不改变棋盘
func (n *Node) choose(p int8) *Node {
	return &Node{Kind: n.Kind.Next(), Board: n.Board, Cell: -1, Piece: p}
}

// solve 找到必胜动作：标记已解，丢弃全部子节点
func (n *Node) solve(t *Node) {
	n.Solved = true
	n.SolvedRef = t
	n.kids = nil
	n.index = nil
	n.UtilitySum = float64(t.Value) * float64(n.Visits)
}

// ---------------- 全量展开 ----------------

// Expand 物化全部合法动作；幂等。
// move 节点按格子升序试探，一旦行动方直接获胜立即停止并标记已解。
func (n *Node) Expand() {
	if n.Kind == Terminal {
		panic("tree: expand on terminal node")
	}
	if n.IsExpanded() {
		return
	}
	if n.Kind.IsMove() {
		for cell := int8(0); cell < board.Cells; cell++ {
			if !n.Board.IsCellEmpty(cell) {
				continue
			}
			k := MoveKey(cell, n.Piece)
			if _, ok := n.index[k]; ok {
				continue
			}
			child, won := n.materialize(cell)
			if won {
				n.solve(child)
				return
			}
			n.addChild(k, child)
		}
		return
	}
	for p := int8(0); p < board.Pieces; p++ {
		if n.Board.IsPiecePlayed(p) {
			continue
		}
		k := ChooseKey(p)
		if _, ok := n.index[k]; !ok {
			n.addChild(k, n.choose(p))
		}
	}
}

// GetOrCreateChild 按动作取子节点，没有就只物化这一个。
// 已解节点直接返回其终局事实；非法动作 panic。
func (n *Node) GetOrCreateChild(a Action) *Node {
	if n.Kind == Terminal {
		panic("tree: child of terminal node")
	}
	if n.Solved {
		return n.SolvedRef
	}
	if n.Kind.IsMove() {
		if a.Piece != n.Piece {
			panic(fmt.Sprintf("tree: %s node holds piece %d, got %d", n.Kind, n.Piece, a.Piece))
		}
		if !board.ValidCell(a.Cell) || !n.Board.IsCellEmpty(a.Cell) {
			panic(fmt.Sprintf("tree: illegal cell %d", a.Cell))
		}
		k := MoveKey(a.Cell, a.Piece)
		if c, ok := n.Child(k); ok {
			return c
		}
		child, won := n.materialize(a.Cell)
		if won {
			n.solve(child)
			return child
		}
		n.addChild(k, child)
		return child
	}
	if !board.ValidPiece(a.Piece) || n.Board.IsPiecePlayed(a.Piece) {
		panic(fmt.Sprintf("tree: illegal piece %d", a.Piece))
	}
	k := ChooseKey(a.Piece)
	if c, ok := n.Child(k); ok {
		return c
	}
	child := n.choose(a.Piece)
	n.addChild(k, child)
	return child
}

// ExpandRandom 物化一个尚未存在的随机动作：
// 先随机 Attempts 次，再线性扫描。对已展开或终局节点调用属于调用方 bug。
func (n *Node) ExpandRandom(rng board.Rand) *Node {
	if n.Kind == Terminal || n.IsExpanded() {
		panic(fmt.Sprintf("tree: expand-random on exhausted node (%s)", n))
	}
	if n.Kind.IsMove() {
		for i := 0; i < board.Attempts; i++ {
			cell := int8(rng.Intn(board.Cells))
			if n.untriedCell(cell) {
				return n.GetOrCreateChild(Action{Cell: cell, Piece: n.Piece})
			}
		}
		for cell := int8(0); cell < board.Cells; cell++ {
			if n.untriedCell(cell) {
				return n.GetOrCreateChild(Action{Cell: cell, Piece: n.Piece})
			}
		}
	} else {
		for i := 0; i < board.Attempts; i++ {
			p := int8(rng.Intn(board.Pieces))
			if n.untriedPiece(p) {
				return n.GetOrCreateChild(Action{Cell: -1, Piece: p})
			}
		}
		for p := int8(0); p < board.Pieces; p++ {
			if n.untriedPiece(p) {
				return n.GetOrCreateChild(Action{Cell: -1, Piece: p})
			}
		}
	}
	panic(fmt.Sprintf("tree: no untried action on %s", n))
}

func (n *Node) untriedCell(cell int8) bool {
	if !n.Board.IsCellEmpty(cell) {
		return false
	}
	_, ok := n.index[MoveKey(cell, n.Piece)]
	return !ok
}

func (n *Node) untriedPiece(p int8) bool {
	if n.Board.IsPiecePlayed(p) {
		return false
	}
	_, ok := n.index[ChooseKey(p)]
	return !ok
}

// ---------------- 已解子节点改写 ----------------

// Collapse 把已解子节点在父节点中的槽位改写为单个终局事实；返回改写后的节点。
// 终局事实沿用该子节点当前的统计量。
func (n *Node) Collapse(child *Node) *Node {
	if !child.Solved {
		return child
	}
	i, ok := n.index[child.Key()]
	if !ok || n.kids[i] != child {
		panic("tree: collapse of a node that is not a child")
	}
	t := &Node{
		Kind:       Terminal,
		Cell:       child.Cell,
		Piece:      child.Piece,
		Value:      child.SolvedRef.Value,
		Visits:     child.Visits,
		UtilitySum: child.UtilitySum,
	}
	n.kids[i] = t
	return t
}
