package ui

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

// 棋子 5 个属性各自对应一种画法：
// 高/矮 → 大小，实心/空心 → 中间是否挖洞，白/黑 + 木/金属 → 颜色，圆/方 → 形状。
const (
	bitTall  = 1 << 4
	bitSolid = 1 << 3
	bitWhite = 1 << 2
	bitWood  = 1 << 1
	bitRound = 1 << 0
)

var (
	colWhiteWood  = color.RGBA{0xEB, 0xC8, 0x96, 0xFF}
	colWhiteMetal = color.RGBA{0xE1, 0xE1, 0xEB, 0xFF}
	colBlackWood  = color.RGBA{0x6E, 0x3C, 0x1E, 0xFF}
	colBlackMetal = color.RGBA{0x3C, 0x3C, 0x4B, 0xFF}
	colOutline    = color.RGBA{0x14, 0x14, 0x14, 0xFF}
)

func pieceColor(p int8) color.Color {
	switch {
	case p&bitWhite != 0 && p&bitWood != 0:
		return colWhiteWood
	case p&bitWhite != 0:
		return colWhiteMetal
	case p&bitWood != 0:
		return colBlackWood
	}
	return colBlackMetal
}

// drawPiece 以 (cx, cy) 为中心画棋子；span 是可用的边长
func drawPiece(screen *ebiten.Image, p int8, cx, cy, span float32, hole color.Color) {
	r := span * 0.26
	if p&bitTall != 0 {
		r = span * 0.40
	}
	fill := pieceColor(p)
	if p&bitRound != 0 {
		vector.DrawFilledCircle(screen, cx, cy, r, fill, true)
		vector.StrokeCircle(screen, cx, cy, r, 2, colOutline, true)
	} else {
		vector.DrawFilledRect(screen, cx-r, cy-r, 2*r, 2*r, fill, false)
		vector.StrokeRect(screen, cx-r, cy-r, 2*r, 2*r, 2, colOutline, false)
	}
	if p&bitSolid == 0 {
		vector.DrawFilledCircle(screen, cx, cy, r*0.4, hole, true)
		vector.StrokeCircle(screen, cx, cy, r*0.4, 1, colOutline, true)
	}
}
