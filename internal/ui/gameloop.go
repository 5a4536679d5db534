// File: internal/ui/gameloop.go
package ui

import (
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/rs/zerolog/log"

	"quarto_go/internal/agent"
	"quarto_go/internal/match"
)

const (
	maxFPS  = 30
	screenW = 880
	screenH = 600 + 100
)

type GameLoop struct {
	match  *match.Match
	rend   *renderer
	input  *inputHandler
	header *headerUI

	animating *pieceAnim
	lockInput bool
	lastErr   error
}

func NewGameLoop(engine match.Engine, budget time.Duration) *GameLoop {
	return &GameLoop{
		match:  match.New(engine, budget),
		rend:   newRenderer(),
		input:  &inputHandler{hover: -1},
		header: newHeaderUI(),
	}
}

func (gl *GameLoop) Update() error {
	// ① Esc 退出
	if ebiten.IsKeyPressed(ebiten.KeyEscape) {
		gl.match.Close()
		return ebiten.Termination
	}

	// ② 动画阶段 ────────────────────────────
	if a := gl.animating; a != nil {
		if _, _, done := a.screenXY(); done {
			gl.animating = nil
		}
		gl.lockInput = gl.animating != nil
		return nil
	}

	// ③ 引擎在后台思考，这里只取结果 ────────
	placed, err := gl.match.Poll()
	if err != nil {
		gl.lastErr = err
		log.Error().Err(err).Msg("engine-failed")
	}
	if placed != nil {
		gl.startAnimation(*placed)
		return nil
	}

	// ④ 玩家点击 ─────────────────────────────
	gl.input.track()
	if gl.lockInput || gl.match.Thinking() {
		return nil
	}
	switch cell, piece := gl.input.click(); {
	case cell >= 0 && gl.match.Stage() == match.HumanMove:
		p, err := gl.match.PlacePiece(cell)
		if err != nil {
			log.Debug().Err(err).Msg("place-rejected")
			return nil
		}
		gl.startAnimation(p)
	case piece >= 0 && gl.match.Stage() == match.HumanChoose:
		if err := gl.match.ChoosePiece(piece); err != nil {
			log.Debug().Err(err).Msg("choose-rejected")
		}
	}
	return nil
}

func (gl *GameLoop) Draw(screen *ebiten.Image) {
	gl.rend.drawBoard(screen, gl)
	gl.header.draw(screen, gl)
}

func (gl *GameLoop) Layout(_, _ int) (int, int) { return screenW, screenH }

// lastDecision 引擎上一次的决策，header 显示用
func (gl *GameLoop) lastDecision() agent.Decision { return gl.match.LastDecision() }

func Run(g *GameLoop) error {
	ebiten.SetWindowSize(screenW, screenH)
	ebiten.SetWindowTitle("Quarto-Go (Ebiten)")
	ebiten.SetTPS(maxFPS)
	if err := ebiten.RunGame(g); err != nil && err != ebiten.Termination {
		return err
	}
	return nil
}
