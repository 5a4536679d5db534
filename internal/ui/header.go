package ui

import (
	"fmt"
	"image/color"
	"strings"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text"
	"golang.org/x/image/font/basicfont"

	"quarto_go/internal/board"
	"quarto_go/internal/match"
)

type headerUI struct{}

func newHeaderUI() *headerUI { return &headerUI{} }

var colWhite = color.White

func (h *headerUI) draw(screen *ebiten.Image, gl *GameLoop) {
	m := gl.match
	y := 600 + 40
	x := 10

	state := m.Stage().String()
	if m.Thinking() {
		state = "thinking..."
	}
	if m.Stage() == match.Over {
		state = "OVER | winner " + m.Winner().String()
	}
	pending := "-"
	if p := m.Pending(); p >= 0 {
		attrs := board.Attributes(p)
		pending = board.PieceString(p) + " " + strings.Join(attrs[:], "/")
	}
	d := gl.lastDecision()
	strs := []string{
		fmt.Sprintf("Turns | %d", m.Turns()),
		fmt.Sprintf("State | %s", state),
		fmt.Sprintf("Piece | %s", pending),
	}
	for _, s := range strs {
		text.Draw(screen, s, basicfont.Face7x13, x, y, colWhite)
		x += len(s)*7 + 30
	}

	engine := fmt.Sprintf("Engine | %s  value %.2f  sims %d  %s", d.Method, d.Value, d.Simulations, d.Elapsed.Round(time.Millisecond))
	if gl.lastErr != nil {
		engine = "Error | " + gl.lastErr.Error()
	}
	text.Draw(screen, engine, basicfont.Face7x13, 10, y+30, colWhite)
}
