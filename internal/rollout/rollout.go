// File internal/rollout/rollout.go
package rollout

import (
	"quarto_go/internal/board"
	"quarto_go/internal/tree"
)

// Policy 贪心 + 随机的模拟策略。
// scratch 是可复用的草稿棋盘；一个 Policy 只能由一个 goroutine 使用，
// 并行模拟时每个 worker 各持有一个。
type Policy struct {
	rng     board.Rand
	scratch board.State
	safe    [board.Pieces]int8
	all     [board.Pieces]int8
}

func New(rng board.Rand) *Policy {
	return &Policy{rng: rng}
}

// Play 从节点的局面开始模拟到终局，返回 Max 视角的结果（-1 / 0 / +1）。
// 节点本身不会被修改。
func (p *Policy) Play(n *tree.Node) int8 {
	if n.Kind == tree.Terminal {
		return n.Value
	}
	if n.Solved {
		return n.SolvedRef.Value
	}
	p.scratch = n.Board
	kind, piece := n.Kind, n.Piece
	for {
		if kind.IsMove() {
			role := kind.Role()
			cell := p.moveCell(piece)
			if out := p.scratch.EvaluateAfterMove(role, cell, piece); out.Decided {
				return out.Value
			}
		} else {
			piece = p.choosePiece()
		}
		kind = kind.Next()
	}
}

// moveCell 能直接成线就走那一格，否则随机空格
func (p *Policy) moveCell(piece int8) int8 {
	if cell := p.scratch.WinningCell(piece); cell >= 0 {
		return cell
	}
	return p.scratch.RandomEmptyCell(p.rng)
}

// choosePiece 优先在“不给对手送胜”的棋子里随机；全是送胜子时退回全部棋子随机。
func (p *Policy) choosePiece() int8 {
	ns, na := 0, 0
	for piece := int8(0); piece < board.Pieces; piece++ {
		if p.scratch.IsPiecePlayed(piece) {
			continue
		}
		p.all[na] = piece
		na++
		if p.scratch.WinningCell(piece) < 0 {
			p.safe[ns] = piece
			ns++
		}
	}
	if ns > 0 {
		return p.safe[p.rng.Intn(ns)]
	}
	return p.all[p.rng.Intn(na)]
}
