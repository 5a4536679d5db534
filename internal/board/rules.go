// File internal/board/rules.go
package board

// ---------------- 结果三态 -----------------

// Outcome 一步之后的结果：Decided=false 表示对局继续。
// Value 从 Max 视角：+1 Max 胜，-1 Min 胜，0 和棋。
type Outcome struct {
	Decided bool
	Value   int8
}

// Ongoing 对局未结束
var Ongoing = Outcome{}

func Decided(v int8) Outcome { return Outcome{Decided: true, Value: v} }

// Wins 对 role 而言是否是胜局
func (o Outcome) Wins(r Role) bool { return o.Decided && o.Value == int8(r) }

// ---------------- 线 -----------------

// lines[i] 五格一线：0-4 行，5-9 列，10 主对角，11 副对角
var lines [12][5]int8

// cellLines[cell] 经过该格的线（3 或 4 条），-1 结尾
var cellLines [Cells][4]int8

func init() {
	for r := 0; r < Rows; r++ {
		for c := 0; c < Columns; c++ {
			lines[r][c] = CellIndex(r, c)
			lines[Rows+c][r] = CellIndex(r, c)
		}
	}
	for i := 0; i < Rows; i++ {
		lines[10][i] = CellIndex(i, i)
		lines[11][i] = CellIndex(i, Columns-1-i)
	}
	for cell := int8(0); cell < Cells; cell++ {
		r, c := Coords(cell)
		ls := [4]int8{int8(r), int8(Rows + c), -1, -1}
		n := 2
		if r == c {
			ls[n] = 10
			n++
		}
		if r+c == Columns-1 {
			ls[n] = 11
		}
		cellLines[cell] = ls
	}
}

// lineWins 五格全满，且 AND != 0（共有 1）或 OR != 11111（共有 0）
func lineWins(a, b, c, d, e int8) bool {
	if a == Empty || b == Empty || c == Empty || d == Empty || e == Empty {
		return false
	}
	and := a & b & c & d & e
	or := a | b | c | d | e
	return and != 0 || or != attrMask
}

func (s *State) lineWins(l int8) bool {
	ln := &lines[l]
	return lineWins(s.cells[ln[0]], s.cells[ln[1]], s.cells[ln[2]], s.cells[ln[3]], s.cells[ln[4]])
}

// wins 只检查经过 cell 的行、列以及（若在其上）对角线
func (s *State) wins(cell int8) bool {
	for _, l := range cellLines[cell] {
		if l < 0 {
			break
		}
		if s.lineWins(l) {
			return true
		}
	}
	return false
}

// HasWinningLine 全盘扫描 12 条线
func (s *State) HasWinningLine() bool {
	for l := int8(0); l < int8(len(lines)); l++ {
		if s.lineWins(l) {
			return true
		}
	}
	return false
}

// --------------- 落子 + 判定 ----------------

// EvaluateAfterMove 真正落子，然后判定：
// 成线 → role 的胜值；无空格 → 和棋；否则 Ongoing。
func (s *State) EvaluateAfterMove(r Role, cell, p int8) Outcome {
	s.set(cell, p)
	if s.wins(cell) {
		return Decided(int8(r))
	}
	if s.empty == 0 {
		return Decided(0)
	}
	return Ongoing
}

// ProbeWin 试放不提交：放下、判定、恢复。棋盘前后逐字节一致。
func (s *State) ProbeWin(cell, p int8) bool {
	if !ValidCell(cell) || !ValidPiece(p) || s.cells[cell] != Empty || s.IsPiecePlayed(p) {
		panic("board: ProbeWin precondition violated")
	}
	s.cells[cell] = p
	w := s.wins(cell)
	s.cells[cell] = Empty
	return w
}

// WinningCell 找到 p 能立即成线的第一格，没有返回 -1
func (s *State) WinningCell(p int8) int8 {
	for cell := int8(0); cell < Cells; cell++ {
		if s.cells[cell] == Empty && s.ProbeWin(cell, p) {
			return cell
		}
	}
	return -1
}
