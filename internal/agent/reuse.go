// File: internal/agent/reuse.go
package agent

import (
	"fmt"
	"sort"

	"github.com/rs/zerolog/log"
	"github.com/samber/lo"

	"quarto_go/internal/board"
	"quarto_go/internal/tree"
)

// Candidate 根节点某个子节点的统计
type Candidate struct {
	Piece  int8    `json:"piece"`
	Cell   int8    `json:"cell"`
	Visits int     `json:"visits"`
	Mean   float64 `json:"mean"`
	Solved bool    `json:"solved"`
}

// acquireRoot 复用保留的树，或者新建根。
// move 阶段保留的根是 MinChoose：先沿“对手挑给我们的子”下降一层。
// 局面对不上时一律丢弃，保证根的棋盘与真实棋盘逐字节一致。
func (a *Agent) acquireRoot(t Turn) *tree.Node {
	n := a.root
	if n != nil && t.Phase == Move && n.Kind == tree.MinChoose {
		n = descend(n, tree.MinChoose, tree.ChooseKey(t.Piece))
	}
	want := tree.MaxChoose
	if t.Phase == Move {
		want = tree.MaxMove
	}
	if n != nil && n.Kind == want && n.Board == t.Board && (t.Phase == Choose || n.Piece == t.Piece) {
		log.Debug().Int("visits", n.Visits).Int("children", len(n.Children())).Msg("tree-reused")
		return n
	}
	if a.root != nil {
		log.Debug().Msg("tree-discarded")
	}
	return freshRoot(t)
}

// descend 沿键下降一层；节点类型不对、已解、槽位缺失或已是终局都返回 nil
func descend(n *tree.Node, kind tree.Kind, k tree.Key) *tree.Node {
	if n == nil || n.Kind != kind || n.Solved {
		return nil
	}
	c, ok := n.Child(k)
	if !ok || c.Kind == tree.Terminal {
		return nil
	}
	return c
}

// Observe 外部提交了一次落子后调用：把保留的树重新定根到对应的子节点。
//
//	Max 落子：MaxMove   ─(cell,piece)→ MaxChoose
//	Min 落子：MaxChoose ─piece→ MinMove ─(cell,piece)→ MinChoose
//
// 找不到对应节点时丢弃整棵树，下次决策重新建树。
func (a *Agent) Observe(role board.Role, cell, piece int8) error {
	if !board.ValidCell(cell) || !board.ValidPiece(piece) {
		return fmt.Errorf("%w: cell %d piece %d", board.ErrOutOfRange, cell, piece)
	}
	if a.root == nil {
		return nil
	}
	switch role {
	case board.Max:
		a.root = descend(a.root, tree.MaxMove, tree.MoveKey(cell, piece))
	case board.Min:
		n := descend(a.root, tree.MaxChoose, tree.ChooseKey(piece))
		a.root = descend(n, tree.MinMove, tree.MoveKey(cell, piece))
	default:
		return fmt.Errorf("agent: unknown role %d", role)
	}
	ev := log.Debug().Str("role", role.String()).Str("cell", board.CellString(cell)).Str("piece", board.PieceString(piece))
	if a.root == nil {
		ev.Msg("observe-discard")
	} else {
		ev.Int("visits", a.root.Visits).Msg("observe-reroot")
	}
	return nil
}

// candidates 根的子节点统计，按访问次数降序
func candidates(root *tree.Node) []Candidate {
	out := lo.Map(lo.Filter(root.Children(), func(c *tree.Node, _ int) bool {
		return c.Visits > 0
	}), func(c *tree.Node, _ int) Candidate {
		return Candidate{
			Piece:  c.Piece,
			Cell:   c.Cell,
			Visits: c.Visits,
			Mean:   c.Mean(),
			Solved: c.Kind == tree.Terminal,
		}
	})
	sort.SliceStable(out, func(i, j int) bool { return out[i].Visits > out[j].Visits })
	return out
}
