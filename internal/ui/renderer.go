// internal/ui/renderer.go
package ui

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"quarto_go/internal/board"
	"quarto_go/internal/match"
)

// ────────────────────── 布局 ──────────────────────

const (
	cellSize   = 110
	boardLeft  = 30
	boardTop   = 30
	traySize   = 60
	trayLeft   = 610
	trayTop    = 40
	trayCols   = 4
	trayGutter = 4
)

var (
	cellCenters [board.Cells][2]int
	trayCenters [board.Pieces][2]int

	colBackground = color.RGBA{0x1E, 0x28, 0x32, 0xFF}
	colCell       = color.RGBA{0x2D, 0x3C, 0x4B, 0xFF}
	colTray       = color.RGBA{0x28, 0x32, 0x3C, 0xFF}
	colHighlight  = color.RGBA{0xF0, 0xC8, 0x32, 0xFF}
	colWinLine    = color.RGBA{0x32, 0xC8, 0x64, 0xFF}
)

func init() {
	for c := int8(0); c < board.Cells; c++ {
		row, col := board.Coords(c)
		cellCenters[c] = [2]int{boardLeft + col*cellSize + cellSize/2, boardTop + row*cellSize + cellSize/2}
	}
	step := traySize + trayGutter
	for p := 0; p < board.Pieces; p++ {
		trayCenters[p] = [2]int{trayLeft + (p%trayCols)*step + traySize/2, trayTop + (p/trayCols)*step + traySize/2}
	}
}

// ────────────────────── renderer ──────────────────────
type renderer struct{}

func newRenderer() *renderer { return &renderer{} }

func (r *renderer) drawBoard(screen *ebiten.Image, gl *GameLoop) {
	m := gl.match
	b := m.Board()

	// 1) 背景与格子
	screen.Fill(colBackground)
	for c := int8(0); c < board.Cells; c++ {
		x, y := float32(cellCenters[c][0]-cellSize/2), float32(cellCenters[c][1]-cellSize/2)
		vector.DrawFilledRect(screen, x+3, y+3, cellSize-6, cellSize-6, colCell, false)
	}
	if m.Stage() == match.Over && m.Winner() != match.Nobody {
		vector.StrokeRect(screen, boardLeft, boardTop, 5*cellSize, 5*cellSize, 4, colWinLine, false)
	}

	// 2) 已落下的棋子（跳过正在滑动的那颗）
	for c := int8(0); c < board.Cells; c++ {
		p := b.CellAt(c)
		if p == board.Empty || (gl.animating != nil && gl.animating.cell == c) {
			continue
		}
		drawPiece(screen, p, float32(cellCenters[c][0]), float32(cellCenters[c][1]), cellSize, colCell)
	}

	// 3) 托盘：尚未打出的棋子
	for p := int8(0); p < board.Pieces; p++ {
		x, y := float32(trayCenters[p][0]-traySize/2), float32(trayCenters[p][1]-traySize/2)
		vector.DrawFilledRect(screen, x, y, traySize, traySize, colTray, false)
		if b.IsPiecePlayed(p) || p == m.Pending() {
			continue
		}
		drawPiece(screen, p, float32(trayCenters[p][0]), float32(trayCenters[p][1]), traySize, colTray)
	}

	// 4) 高亮：待放下的子 / 悬停的子
	if p := m.Pending(); p >= 0 {
		drawPiece(screen, p, float32(trayCenters[p][0]), float32(trayCenters[p][1]), traySize, colTray)
		highlight(screen, trayCenters[p], traySize)
	}
	if h := gl.input.hover; h >= 0 && m.Stage() == match.HumanChoose && !b.IsPiecePlayed(h) {
		highlight(screen, trayCenters[h], traySize)
	}

	// 5) 动画棋子（覆盖最上层）
	if a := gl.animating; a != nil {
		x, y, _ := a.screenXY()
		drawPiece(screen, a.piece, float32(x), float32(y), cellSize, colCell)
	}
}

func highlight(screen *ebiten.Image, center [2]int, size int) {
	x, y := float32(center[0]-size/2), float32(center[1]-size/2)
	vector.StrokeRect(screen, x, y, float32(size), float32(size), 3, colHighlight, false)
}
