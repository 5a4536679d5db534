// internal/search/alphabeta.go
package search

import (
	"github.com/rs/zerolog/log"

	"quarto_go/internal/tree"
	"quarto_go/internal/tt"
	"quarto_go/internal/zobrist"
)

// Solver 终局穷举：全宽 alpha-beta，窗口 [-1, 1]，fail-soft。
// 子节点由 Node.Iter 临时生成，不写入持久树；取值记在置换表里。
type Solver struct {
	tt    *tt.Table // nil 表示不用置换表
	token cancelToken
	nodes uint64
}

// NewSolver table 可以为 nil
func NewSolver(table *tt.Table) *Solver {
	return &Solver{tt: table}
}

// Abort 中止正在进行的 Solve；Solve 返回 ErrAborted
func (s *Solver) Abort() { s.token.Abort() }

// Nodes 上一次 Solve 访问的内部节点数
func (s *Solver) Nodes() uint64 { return s.nodes }

// Solve 对根节点求精确值并返回最佳子节点。
// 根不剪枝（每个子节点都要精确值），但一旦找到必胜子节点立即停止；
// 每个根子节点评分后释放其子树。
func (s *Solver) Solve(root *tree.Node) (best *tree.Node, value int8, err error) {
	s.token.Reset()
	s.nodes = 0

	root.Expand()
	if root.Solved {
		return root.SolvedRef, root.SolvedRef.Value, nil
	}

	win := int8(root.Kind.Role())
	rootHash := zobrist.HashBoard(&root.Board)
	for _, child := range root.Children() {
		v := s.alphaBeta(child, childHash(root, child, rootHash), -1, 1)
		child.Clear()
		if s.token.IsAborted() {
			if s.tt != nil {
				s.tt.Clear()
			}
			return nil, 0, ErrAborted
		}
		if best == nil || better(root.Kind.IsMax(), v, value) {
			best, value = child, v
		}
		if v == win {
			break
		}
	}
	if s.tt != nil {
		hits, stores := s.tt.Stats()
		log.Debug().Uint64("nodes", s.nodes).Uint64("tt-hits", hits).Uint64("tt-stores", stores).
			Int8("value", value).Msg("exact-done")
	} else {
		log.Debug().Uint64("nodes", s.nodes).Int8("value", value).Msg("exact-done")
	}
	return best, value, nil
}

// Value 单独求一个节点的精确值（不做根特判）
func (s *Solver) Value(n *tree.Node) int8 {
	return s.alphaBeta(n, zobrist.HashBoard(&n.Board), -1, 1)
}

// childHash move 节点的子节点多了一颗落下的子；choose 节点的子节点盘面不变
func childHash(parent, child *tree.Node, boardHash uint64) uint64 {
	if parent.Kind.IsMove() {
		return zobrist.Toggle(boardHash, child.Cell, child.Piece)
	}
	return boardHash
}

func better(max bool, v, cur int8) bool {
	if max {
		return v > cur
	}
	return v < cur
}

// boardHash 是 n.Board 的 zobrist 盘面哈希，由调用方沿搜索路径增量维护
func (s *Solver) alphaBeta(n *tree.Node, boardHash uint64, alpha, beta int8) int8 {
	if n.Kind == tree.Terminal {
		return n.Value
	}
	if n.Solved {
		return n.SolvedRef.Value
	}
	s.nodes++
	if s.nodes&pollMask == 0 && s.token.IsAborted() {
		return 0
	}

	/* --- TT Probe --- */
	var hash uint64
	alphaOrig, betaOrig := alpha, beta
	if s.tt != nil {
		pending := int8(-1)
		if n.Kind.IsMove() {
			pending = n.Piece
		}
		hash = zobrist.NodeKey(boardHash, uint8(n.Kind), pending)
		if hit, v, flag := s.tt.Probe(hash); hit {
			switch flag {
			case tt.Exact:
				return v
			case tt.Lower:
				alpha = max(alpha, v)
			case tt.Upper:
				beta = min(beta, v)
			}
			if alpha >= beta {
				return v
			}
		}
	}

	var best int8
	it := n.Iter()
	if n.Kind.IsMax() {
		best = -2
		for c, ok := it.Next(); ok; c, ok = it.Next() {
			v := s.alphaBeta(c, childHash(n, c, boardHash), alpha, beta)
			if v > best {
				best = v
			}
			if best > alpha {
				alpha = best
			}
			if alpha >= beta {
				break
			}
		}
	} else {
		best = 2
		for c, ok := it.Next(); ok; c, ok = it.Next() {
			v := s.alphaBeta(c, childHash(n, c, boardHash), alpha, beta)
			if v < best {
				best = v
			}
			if best < beta {
				beta = best
			}
			if alpha >= beta {
				break
			}
		}
	}

	/* --- TT Store --- */
	if s.tt != nil && !s.token.IsAborted() {
		s.tt.Store(hash, best, tt.FlagFor(best, alphaOrig, betaOrig))
	}
	return best
}
