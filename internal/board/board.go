// File internal/board/board.go
package board

import (
	"errors"
	"fmt"
	"math/bits"
)

const (
	Rows    = 5
	Columns = 5
	Cells   = Rows * Columns // 可落子格子数
	Pieces  = 32             // 棋子 0..31，每一位是一个二值属性

	// PieceSurplus 剩余棋子 = 空格 + 7（25 格 / 32 子，每回合同时消耗一格一子）
	PieceSurplus = Pieces - Cells

	Empty    = int8(-1)
	allMask  = uint32(0xFFFFFFFF)
	attrMask = int8(0x1F)

	// Attempts 随机抽样次数，失败后退回线性扫描
	Attempts = 20
)

var (
	ErrOutOfRange   = errors.New("board: index out of range")
	ErrCellOccupied = errors.New("board: cell already occupied")
	ErrPiecePlayed  = errors.New("board: piece already played")
	ErrWinningBoard = errors.New("board: position already contains a winning line")
	ErrMalformed    = errors.New("board: malformed board")
)

// Role 行动方：Max = +1（本方），Min = -1（对手）
type Role int8

const (
	Min Role = -1
	Max Role = 1
)

func (r Role) Opponent() Role { return -r }

func (r Role) String() string {
	if r == Max {
		return "max"
	}
	return "min"
}

// State 棋盘快照。值语义：直接赋值即为深拷贝。
type State struct {
	cells  [Cells]int8 // -1 表示空格
	pieces uint32      // 第 i 位为 1 表示棋子 i 尚未打出
	empty  int8        // 空格数
}

// --------------------- 构造 & 初始化 ------------------------

// New 返回空棋盘
func New() State {
	var s State
	for i := range s.cells {
		s.cells[i] = Empty
	}
	s.pieces = allMask
	s.empty = Cells
	return s
}

// FromCells 由 5×5 网格构造棋盘并校验：非法编号、重复棋子、已成线都拒绝。
func FromCells(grid [Rows][Columns]int8) (State, error) {
	s := New()
	for r := 0; r < Rows; r++ {
		for c := 0; c < Columns; c++ {
			p := grid[r][c]
			if p == Empty {
				continue
			}
			if err := s.Place(int8(r*Columns+c), p); err != nil {
				return State{}, fmt.Errorf("cell %d,%d: %w", r, c, err)
			}
		}
	}
	if s.HasWinningLine() {
		return State{}, ErrWinningBoard
	}
	return s, nil
}

// -------------------- 公共工具 -----------------------------

// CellAt 读格子；空格返回 Empty
func (s *State) CellAt(cell int8) int8 { return s.cells[cell] }

// At 按行列读格子
func (s *State) At(row, col int) int8 { return s.cells[row*Columns+col] }

// Grid 导出 5×5 网格
func (s *State) Grid() [Rows][Columns]int8 {
	var g [Rows][Columns]int8
	for i, p := range s.cells {
		g[i/Columns][i%Columns] = p
	}
	return g
}

func (s *State) EmptyCells() int { return int(s.empty) }

// PiecesRemaining 恒等于 EmptyCells()+7
func (s *State) PiecesRemaining() int { return bits.OnesCount32(s.pieces) }

func (s *State) IsPiecePlayed(p int8) bool { return s.pieces&(1<<uint(p)) == 0 }

func (s *State) IsCellEmpty(cell int8) bool { return s.cells[cell] == Empty }

// Place 落子；格子已占、棋子已用、越界都返回错误，棋盘不变。
func (s *State) Place(cell, p int8) error {
	if !ValidCell(cell) || !ValidPiece(p) {
		return ErrOutOfRange
	}
	if s.cells[cell] != Empty {
		return ErrCellOccupied
	}
	if s.IsPiecePlayed(p) {
		return ErrPiecePlayed
	}
	s.set(cell, p)
	return nil
}

// set 内部落子，前置条件破坏即 panic（调用方的 bug，不可恢复）
func (s *State) set(cell, p int8) {
	if !ValidCell(cell) || !ValidPiece(p) || s.cells[cell] != Empty || s.IsPiecePlayed(p) {
		panic(fmt.Sprintf("board: illegal placement of piece %d on cell %d", p, cell))
	}
	s.cells[cell] = p
	s.pieces ^= 1 << uint(p)
	s.empty--
}

func ValidCell(cell int8) bool { return cell >= 0 && cell < Cells }

func ValidPiece(p int8) bool { return p >= 0 && p < Pieces }

// CellIndex / Coords 行列与格子索引互转
func CellIndex(row, col int) int8 { return int8(row*Columns + col) }

func Coords(cell int8) (row, col int) { return int(cell) / Columns, int(cell) % Columns }
