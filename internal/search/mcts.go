// internal/search/mcts.go
package search

import (
	"github.com/rs/zerolog/log"

	"quarto_go/internal/board"
	"quarto_go/internal/rollout"
	"quarto_go/internal/tree"
)

// DefaultRootBoost 根节点的子节点探索常数放大倍数
const DefaultRootBoost = 5.0

// MCTS 选择 → 扩展 → 模拟 → 回传。单线程；路径保存在递归栈上，不需要父指针。
type MCTS struct {
	Exploration float64
	RootBoost   float64

	rng    board.Rand
	policy *rollout.Policy
	token  cancelToken

	simulations int
	solvedSeen  int
}

func NewMCTS(exploration, rootBoost float64, rng board.Rand) *MCTS {
	return &MCTS{
		Exploration: exploration,
		RootBoost:   rootBoost,
		rng:         rng,
		policy:      rollout.New(rng),
	}
}

// Abort 让正在进行的 Run 在当前迭代结束后返回
func (m *MCTS) Abort() { m.token.Abort() }

// Run 至少迭代一次，之后每次迭代结束检查 expired；
// 根节点已解或收到中止时提前结束。返回迭代次数。
func (m *MCTS) Run(root *tree.Node, expired func() bool) int {
	m.token.Reset()
	m.simulations, m.solvedSeen = 0, 0
	for {
		m.Iterate(root)
		if root.Solved || m.token.IsAborted() || expired() {
			break
		}
	}
	log.Debug().
		Int("simulations", m.simulations).
		Int("solved", m.solvedSeen).
		Int("root-visits", root.Visits).
		Bool("root-solved", root.Solved).
		Msg("mcts-done")
	return m.simulations
}

// Iterate 一次完整的 选择-扩展-模拟-回传
func (m *MCTS) Iterate(root *tree.Node) int8 {
	m.simulations++
	return m.visit(root, true)
}

func (m *MCTS) visit(n *tree.Node, atRoot bool) int8 {
	if n.Kind == tree.Terminal {
		n.Record(n.Value)
		return n.Value
	}
	if n.Solved {
		v := n.SolvedRef.Value
		n.Record(v)
		return v
	}

	var v int8
	if !n.IsExpanded() {
		child := n.ExpandRandom(m.rng)
		if n.Solved {
			// 新物化的动作直接获胜
			m.solvedSeen++
			v = n.SolvedRef.Value
		} else {
			v = m.policy.Play(child)
			child.Record(v)
		}
	} else {
		c := m.Exploration
		if atRoot {
			c *= m.RootBoost
		}
		child := SelectUCB(n, c)
		v = m.visit(child, false)
		if child.Solved {
			n.Collapse(child)
		}
	}
	n.Record(v)
	return v
}

// Best 关闭探索项后的最终选择；根已解时返回其终局事实
func (m *MCTS) Best(root *tree.Node) *tree.Node {
	if root.Solved {
		return root.SolvedRef
	}
	return BestChild(root)
}
