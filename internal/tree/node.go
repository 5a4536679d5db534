// File internal/tree/node.go
package tree

import (
	"fmt"
	"sync/atomic"

	"quarto_go/internal/board"
)

// Kind 节点类型：四种 角色/阶段 + 终局
//
//	MaxChoose → MinMove → MinChoose → MaxMove → MaxChoose …
type Kind uint8

const (
	MaxChoose Kind = iota // Max 为 Min 挑子
	MinMove               // Min 放下 Max 挑的子
	MinChoose             // Min 为 Max 挑子
	MaxMove               // Max 放下 Min 挑的子
	Terminal
)

var kindNames = [...]string{"max-choose", "min-move", "min-choose", "max-move", "terminal"}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("kind(%d)", k)
}

func (k Kind) IsMax() bool  { return k == MaxChoose || k == MaxMove }
func (k Kind) IsMove() bool { return k == MinMove || k == MaxMove }

// Role 该节点的行动方
func (k Kind) Role() board.Role {
	if k.IsMax() {
		return board.Max
	}
	return board.Min
}

// Next 非终局子节点的类型
func (k Kind) Next() Kind {
	switch k {
	case MaxChoose:
		return MinMove
	case MinMove:
		return MinChoose
	case MinChoose:
		return MaxMove
	case MaxMove:
		return MaxChoose
	}
	panic("tree: terminal node has no successor kind")
}

// ——————————————————— 动作键 ———————————————————

// Key 子节点键。choose 动作只含棋子（0..31），
// move 动作 = (cell+1)<<5 | piece（≥32），两者不会相撞。
type Key uint16

func ChooseKey(piece int8) Key     { return Key(piece) }
func MoveKey(cell, piece int8) Key { return Key(cell+1)<<5 | Key(piece) }

// Action 到达某节点的动作；choose 动作 Cell = -1
type Action struct {
	Cell  int8
	Piece int8
}

func (a Action) Key() Key {
	if a.Cell >= 0 {
		return MoveKey(a.Cell, a.Piece)
	}
	return ChooseKey(a.Piece)
}

// ——————————————————— 节点 ———————————————————

// Node 博弈树节点。不保存父指针：重新定根时由调用方按键查找。
type Node struct {
	Kind  Kind
	Board board.State

	// Cell/Piece 描述到达本节点的动作：
	// move 节点的 Piece 是待放置的棋子（由父节点挑出），
	// choose 节点与 Terminal 的 Cell/Piece 是刚刚落下的位置与棋子。
	Cell  int8
	Piece int8
	Value int8 // 仅 Terminal：-1 / 0 / +1

	Visits     int
	UtilitySum float64

	Solved    bool
	SolvedRef *Node // Solved 时唯一的终局事实

	kids  []*Node     // 稳定插入顺序
	index map[Key]int // 键 → kids 下标
}

// probes 记录真实落子判定次数（EvaluateAfterMove）
var probes atomic.Uint64

// Probes 全局试探计数，用于测试和吞吐统计
func Probes() uint64 { return probes.Load() }

// NewRoot 新建根节点；choose 根传 piece = -1
func NewRoot(kind Kind, b board.State, piece int8) *Node {
	if kind == Terminal {
		panic("tree: root cannot be terminal")
	}
	return &Node{Kind: kind, Board: b, Cell: -1, Piece: piece}
}

func newTerminal(cell, piece, value int8) *Node {
	return &Node{
		Kind:       Terminal,
		Cell:       cell,
		Piece:      piece,
		Value:      value,
		Visits:     1,
		UtilitySum: float64(value),
	}
}

// Action 到达本节点的动作
func (n *Node) Action() Action { return Action{Cell: n.Cell, Piece: n.Piece} }

// Key 本节点在父节点中的键
func (n *Node) Key() Key { return n.Action().Key() }

// Children 已物化的子节点，稳定顺序；调用方不得修改
func (n *Node) Children() []*Node { return n.kids }

// Child 按键查找已物化的子节点
func (n *Node) Child(k Key) (*Node, bool) {
	i, ok := n.index[k]
	if !ok {
		return nil, false
	}
	return n.kids[i], true
}

func (n *Node) addChild(k Key, child *Node) {
	if n.index == nil {
		n.index = make(map[Key]int, n.maxChildren())
	}
	if _, dup := n.index[k]; dup {
		panic(fmt.Sprintf("tree: duplicate child key %d", k))
	}
	n.index[k] = len(n.kids)
	n.kids = append(n.kids, child)
}

// Clear 释放整棵子树（终局搜索在根子节点评分后调用）
func (n *Node) Clear() {
	n.kids = nil
	n.index = nil
}

// maxChildren 合法动作数：move 节点 = 空格数，choose 节点 = 剩余棋子数
func (n *Node) maxChildren() int {
	switch {
	case n.Kind == Terminal:
		return 0
	case n.Kind.IsMove():
		return n.Board.EmptyCells()
	default:
		return n.Board.PiecesRemaining()
	}
}

// IsExpanded 已求解，或者全部合法动作都已物化
func (n *Node) IsExpanded() bool {
	if n.Kind == Terminal || n.Solved {
		return true
	}
	return len(n.kids) == n.maxChildren()
}

// Record 回传一次模拟结果
func (n *Node) Record(v int8) {
	n.Visits++
	n.UtilitySum += float64(v)
}

// Mean 平均收益（Max 视角）；未访问返回 0
func (n *Node) Mean() float64 {
	if n.Visits == 0 {
		return 0
	}
	return n.UtilitySum / float64(n.Visits)
}

// Count 子树节点数；已求解节点计为 1
func (n *Node) Count() int {
	if n.Kind == Terminal || n.Solved {
		return 1
	}
	c := 1
	for _, k := range n.kids {
		c += k.Count()
	}
	return c
}

func (n *Node) String() string {
	if n.Kind == Terminal {
		return fmt.Sprintf("%s cell=%d piece=%s ==> %d (%.0f/%d)",
			n.Kind, n.Cell, board.PieceString(n.Piece), n.Value, n.UtilitySum, n.Visits)
	}
	return fmt.Sprintf("%s cell=%d piece=%s (%.0f/%d = %.3f) solved=%v children=%d/%d",
		n.Kind, n.Cell, board.PieceString(n.Piece), n.UtilitySum, n.Visits, n.Mean(),
		n.Solved, len(n.kids), n.maxChildren())
}
