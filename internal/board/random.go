package board

// Rand 随机源；frand.RNG 与 math/rand.Rand 都满足
type Rand interface {
	Intn(n int) int
}

// RandomUnplayedPiece 先随机尝试 Attempts 次，再线性扫描保证终止。
// 没有剩余棋子时返回 -1。
func (s *State) RandomUnplayedPiece(rng Rand) int8 {
	for i := 0; i < Attempts; i++ {
		p := int8(rng.Intn(Pieces))
		if !s.IsPiecePlayed(p) {
			return p
		}
	}
	for p := int8(0); p < Pieces; p++ {
		if !s.IsPiecePlayed(p) {
			return p
		}
	}
	return -1
}

// RandomEmptyCell 同上，针对空格
func (s *State) RandomEmptyCell(rng Rand) int8 {
	for i := 0; i < Attempts; i++ {
		cell := int8(rng.Intn(Cells))
		if s.cells[cell] == Empty {
			return cell
		}
	}
	for cell := int8(0); cell < Cells; cell++ {
		if s.cells[cell] == Empty {
			return cell
		}
	}
	return -1
}
