// File: internal/zobrist/zobrist.go
package zobrist

import (
	"math/rand"

	"quarto_go/internal/board"
)

const (
	Kinds = 4 // 四种非终局节点
	seed  = 0x5A17
)

var (
	Keys    [board.Cells][board.Pieces]uint64 // (格子, 棋子)
	KindKey [Kinds]uint64                     // 轮到谁、哪个阶段
	Pending [board.Pieces]uint64              // 待放置的棋子（move 节点）
)

func init() {
	// 固定种子：同一局面在不同进程里哈希一致，便于复现
	rng := rand.New(rand.NewSource(seed))
	next := func() uint64 {
		// 避免生成 0（XOR 不起作用；0 也被 tt 视为空槽）
		v := rng.Uint64()
		for v == 0 {
			v = rng.Uint64()
		}
		return v
	}
	for c := 0; c < board.Cells; c++ {
		for p := 0; p < board.Pieces; p++ {
			Keys[c][p] = next()
		}
	}
	for k := range KindKey {
		KindKey[k] = next()
	}
	for p := range Pending {
		Pending[p] = next()
	}
}

// Toggle 对 (cell, piece) 的键做一次 XOR，并返回新哈希。
func Toggle(hash uint64, cell, piece int8) uint64 {
	return hash ^ Keys[cell][piece]
}

// HashBoard 整盘哈希；空格忽略。
func HashBoard(s *board.State) uint64 {
	var h uint64
	for cell := int8(0); cell < board.Cells; cell++ {
		if p := s.CellAt(cell); p != board.Empty {
			h ^= Keys[cell][p]
		}
	}
	return h
}

// HashNode 局面 + 节点类型 + 待放棋子（pending < 0 表示没有）
func HashNode(s *board.State, kind uint8, pending int8) uint64 {
	return NodeKey(HashBoard(s), kind, pending)
}

// NodeKey 在已知的盘面哈希上叠加节点类型与待放棋子。
// 搜索时盘面哈希随落子用 Toggle 增量维护，不必每个节点重扫整盘。
func NodeKey(boardHash uint64, kind uint8, pending int8) uint64 {
	h := boardHash ^ KindKey[kind]
	if pending >= 0 {
		h ^= Pending[pending]
	}
	return h
}
