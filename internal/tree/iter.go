// File internal/tree/iter.go
package tree

import "quarto_go/internal/board"

// Iter 惰性子节点序列，只供穷举搜索使用。
// 每一步新建节点，不写入持久的子节点表，与 Expand 构造的树互不共享。
type Iter struct {
	n    *Node
	next int8
}

// Iter 从头开始的惰性序列；终局节点为空序列
func (n *Node) Iter() Iter { return Iter{n: n} }

// Next 返回下一个子节点（新建的节点或终局事实）；序列结束返回 false
func (it *Iter) Next() (*Node, bool) {
	n := it.n
	if n.Kind == Terminal {
		return nil, false
	}
	if n.Kind.IsMove() {
		for ; it.next < board.Cells; it.next++ {
			if n.Board.IsCellEmpty(it.next) {
				child, _ := n.materialize(it.next)
				it.next++
				return child, true
			}
		}
		return nil, false
	}
	for ; it.next < board.Pieces; it.next++ {
		if !n.Board.IsPiecePlayed(it.next) {
			child := n.choose(it.next)
			it.next++
			return child, true
		}
	}
	return nil, false
}
