// File internal/ui/anim.go
package ui

import (
	"math"
	"time"

	"quarto_go/internal/match"
)

const moveDur = 300 * time.Millisecond // 动画时长

// pieceAnim 一颗棋子从托盘滑到格子
type pieceAnim struct {
	piece int8
	cell  int8
	start time.Time
}

// screenXY 在托盘位置与格子中心之间线性插值
func (a *pieceAnim) screenXY() (x, y float64, done bool) {
	t := float64(time.Since(a.start)) / float64(moveDur)
	from := trayCenters[a.piece]
	to := cellCenters[a.cell]
	if t >= 1 {
		return float64(to[0]), float64(to[1]), true
	}
	p := math.Min(t, 1)
	x0, y0 := float64(from[0]), float64(from[1])
	return x0 + (float64(to[0])-x0)*p, y0 + (float64(to[1])-y0)*p, false
}

func (gl *GameLoop) startAnimation(p match.Placement) {
	gl.animating = &pieceAnim{piece: p.Piece, cell: p.Cell, start: time.Now()}
	gl.lockInput = true
}
