package ui

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"quarto_go/internal/board"
)

type inputHandler struct {
	hover int8 // 鼠标下的托盘棋子；-1 表示没有
}

// track 更新悬停的托盘棋子
func (h *inputHandler) track() {
	x, y := ebiten.CursorPosition()
	h.hover = pixelToPiece(x, y)
}

// click 本帧的左键点击落在哪个格子或哪颗托盘棋子上；都没有返回 -1
func (h *inputHandler) click() (cell, piece int8) {
	if !inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		return -1, -1
	}
	x, y := ebiten.CursorPosition()
	return pixelToCell(x, y), pixelToPiece(x, y)
}

/* ---------- 像素坐标 -> 格子 / 棋子 ---------- */

func pixelToCell(x, y int) int8 {
	for c := int8(0); c < board.Cells; c++ {
		dx := x - cellCenters[c][0]
		dy := y - cellCenters[c][1]
		if abs(dx) <= cellSize/2 && abs(dy) <= cellSize/2 {
			return c
		}
	}
	return -1
}

func pixelToPiece(x, y int) int8 {
	for p := int8(0); p < board.Pieces; p++ {
		dx := x - trayCenters[p][0]
		dy := y - trayCenters[p][1]
		if abs(dx) <= traySize/2 && abs(dy) <= traySize/2 {
			return p
		}
	}
	return -1
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
