package board

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

const nullToken = "null"

// PieceString 5 位二进制，例如 26 → "11010"
func PieceString(p int8) string {
	return fmt.Sprintf("%05b", uint8(p))
}

// ParsePiece 解析 5 位二进制棋子编码
func ParsePiece(s string) (int8, error) {
	s = strings.TrimSpace(s)
	if len(s) != 5 {
		return -1, fmt.Errorf("%w: piece %q", ErrMalformed, s)
	}
	v, err := strconv.ParseUint(s, 2, 8)
	if err != nil {
		return -1, fmt.Errorf("%w: piece %q", ErrMalformed, s)
	}
	return int8(v), nil
}

// CellString "row,col"
func CellString(cell int8) string {
	r, c := Coords(cell)
	return fmt.Sprintf("%d,%d", r, c)
}

// ParseCell 解析 "row,col"
func ParseCell(s string) (int8, error) {
	parts := strings.Split(strings.TrimSpace(s), ",")
	if len(parts) != 2 {
		return -1, fmt.Errorf("%w: cell %q", ErrMalformed, s)
	}
	r, err1 := strconv.Atoi(strings.TrimSpace(parts[0]))
	c, err2 := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err1 != nil || err2 != nil || r < 0 || r >= Rows || c < 0 || c >= Columns {
		return -1, fmt.Errorf("%w: cell %q", ErrMalformed, s)
	}
	return CellIndex(r, c), nil
}

// Attributes 第 4..0 位：高/矮、实心/空心、白/黑、木/金属、圆/方
func Attributes(p int8) [5]string {
	pick := func(bit uint, yes, no string) string {
		if p&(1<<bit) != 0 {
			return yes
		}
		return no
	}
	return [5]string{
		pick(4, "tall", "short"),
		pick(3, "solid", "hollow"),
		pick(2, "white", "black"),
		pick(1, "wood", "metal"),
		pick(0, "round", "square"),
	}
}

// ——————————————————— 文本棋盘 ———————————————————

// Parse 读取文本棋盘：5 行，每行 5 个 token（null 或 5 位二进制），空行跳过。
// 已经存在成线的棋盘直接拒绝。
func Parse(r io.Reader) (State, error) {
	var grid [Rows][Columns]int8
	row := 0
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		if row >= Rows {
			return State{}, fmt.Errorf("%w: more than %d rows", ErrMalformed, Rows)
		}
		toks := strings.Fields(line)
		if len(toks) != Columns {
			return State{}, fmt.Errorf("%w: row %d has %d tokens", ErrMalformed, row, len(toks))
		}
		for c, tok := range toks {
			if tok == nullToken {
				grid[row][c] = Empty
				continue
			}
			p, err := ParsePiece(tok)
			if err != nil {
				return State{}, fmt.Errorf("row %d: %w", row, err)
			}
			grid[row][c] = p
		}
		row++
	}
	if err := sc.Err(); err != nil {
		return State{}, err
	}
	for ; row < Rows; row++ { // 缺省行视为空
		for c := range grid[row] {
			grid[row][c] = Empty
		}
	}
	s, err := FromCells(grid)
	if err != nil {
		if err == ErrWinningBoard {
			return State{}, err
		}
		return State{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return s, nil
}

// LoadFile 从文件加载；path 为空返回空棋盘
func LoadFile(path string) (State, error) {
	if path == "" {
		return New(), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return State{}, err
	}
	defer f.Close()
	return Parse(f)
}

// String 与 Parse 互逆的文本格式
func (s State) String() string {
	var sb strings.Builder
	for r := 0; r < Rows; r++ {
		for c := 0; c < Columns; c++ {
			if c > 0 {
				sb.WriteByte(' ')
			}
			if p := s.At(r, c); p == Empty {
				sb.WriteString(nullToken)
			} else {
				sb.WriteString(PieceString(p))
			}
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}
