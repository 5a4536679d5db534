// File: internal/match/match.go
package match

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"quarto_go/internal/agent"
	"quarto_go/internal/board"
)

var (
	ErrNotYourTurn = errors.New("match: not your turn")
	ErrOver        = errors.New("match: game is over")
)

// Stage 人机对局进行到哪一步。引擎先为人挑子。
type Stage uint8

const (
	EngineChoose Stage = iota // 引擎挑子给人
	HumanMove                 // 人放下引擎挑的子
	HumanChoose               // 人挑子给引擎
	EngineMove                // 引擎放下人挑的子
	Over
)

func (s Stage) String() string {
	switch s {
	case EngineChoose:
		return "engine choosing"
	case HumanMove:
		return "your move"
	case HumanChoose:
		return "choose a piece"
	case EngineMove:
		return "engine moving"
	case Over:
		return "over"
	}
	return fmt.Sprintf("stage(%d)", s)
}

type Side int8

const (
	Nobody Side = iota
	Human
	Computer
)

func (s Side) String() string {
	switch s {
	case Human:
		return "human"
	case Computer:
		return "engine"
	}
	return "draw"
}

// Placement 一次落子，UI 用来播放动画
type Placement struct {
	Cell  int8
	Piece int8
	By    Side
}

// Engine *agent.Agent 满足
type Engine interface {
	Decide(ctx context.Context, t agent.Turn) (agent.Decision, error)
	Observe(role board.Role, cell, piece int8) error
}

type outcome struct {
	d   agent.Decision
	err error
}

// Match 人机对局状态机。引擎在后台 goroutine 思考，
// Poll 在每帧非阻塞地取回结果；除 Poll 外的方法都不会阻塞。
type Match struct {
	engine Engine
	budget time.Duration
	ctx    context.Context
	cancel context.CancelFunc

	board   board.State
	stage   Stage
	pending int8 // 等待放下的子；没有为 -1
	winner  Side
	turns   int

	thinking bool
	result   chan outcome
	last     agent.Decision
}

func New(engine Engine, budget time.Duration) *Match {
	ctx, cancel := context.WithCancel(context.Background())
	return &Match{
		engine:  engine,
		budget:  budget,
		ctx:     ctx,
		cancel:  cancel,
		board:   board.New(),
		stage:   EngineChoose,
		pending: -1,
		result:  make(chan outcome, 1),
	}
}

func (m *Match) Board() board.State { return m.board }
func (m *Match) Stage() Stage       { return m.stage }
func (m *Match) Pending() int8      { return m.pending }
func (m *Match) Winner() Side       { return m.winner }
func (m *Match) Turns() int         { return m.turns }
func (m *Match) Thinking() bool     { return m.thinking }

// LastDecision 引擎上一次的决策
func (m *Match) LastDecision() agent.Decision { return m.last }

// Close 放弃正在进行的思考
func (m *Match) Close() { m.cancel() }

// Poll 轮到引擎时启动思考；思考结束时应用结果。
// 引擎落子时返回对应的 Placement。
func (m *Match) Poll() (*Placement, error) {
	if m.thinking {
		select {
		case r := <-m.result:
			m.thinking = false
			if r.err != nil {
				m.stage = Over
				return nil, fmt.Errorf("engine: %w", r.err)
			}
			m.last = r.d
			return m.applyEngine(r.d)
		default:
			return nil, nil
		}
	}
	switch m.stage {
	case EngineChoose:
		m.think(agent.Turn{Board: m.board, Phase: agent.Choose, Budget: m.budget})
	case EngineMove:
		m.think(agent.Turn{Board: m.board, Phase: agent.Move, Piece: m.pending, Budget: m.budget})
	}
	return nil, nil
}

func (m *Match) think(t agent.Turn) {
	m.thinking = true
	go func() {
		d, err := m.engine.Decide(m.ctx, t)
		m.result <- outcome{d: d, err: err}
	}()
}

func (m *Match) applyEngine(d agent.Decision) (*Placement, error) {
	switch m.stage {
	case EngineChoose:
		if !board.ValidPiece(d.Piece) || m.board.IsPiecePlayed(d.Piece) {
			m.stage = Over
			return nil, fmt.Errorf("engine chose %d: %w", d.Piece, board.ErrPiecePlayed)
		}
		m.pending = d.Piece
		m.stage = HumanMove
		return nil, nil
	case EngineMove:
		p, err := m.place(Computer, d.Cell)
		if err != nil {
			m.stage = Over
			return nil, err
		}
		return &p, nil
	}
	return nil, ErrNotYourTurn
}

// ChoosePiece 人为引擎挑子
func (m *Match) ChoosePiece(p int8) error {
	if m.stage == Over {
		return ErrOver
	}
	if m.stage != HumanChoose {
		return ErrNotYourTurn
	}
	if !board.ValidPiece(p) {
		return board.ErrOutOfRange
	}
	if m.board.IsPiecePlayed(p) {
		return board.ErrPiecePlayed
	}
	m.pending = p
	m.stage = EngineMove
	return nil
}

// PlacePiece 人放下引擎挑的子
func (m *Match) PlacePiece(cell int8) (Placement, error) {
	if m.stage == Over {
		return Placement{}, ErrOver
	}
	if m.stage != HumanMove {
		return Placement{}, ErrNotYourTurn
	}
	return m.place(Human, cell)
}

func (m *Match) place(by Side, cell int8) (Placement, error) {
	if !board.ValidCell(cell) {
		return Placement{}, board.ErrOutOfRange
	}
	if !m.board.IsCellEmpty(cell) {
		return Placement{}, board.ErrCellOccupied
	}
	p := Placement{Cell: cell, Piece: m.pending, By: by}
	out := m.board.EvaluateAfterMove(board.Max, cell, m.pending)
	m.turns++
	m.pending = -1
	if out.Decided {
		m.stage = Over
		if out.Value != 0 {
			m.winner = by
		}
		log.Info().Str("winner", m.winner.String()).Int("turns", m.turns).Msg("match-over")
		return p, nil
	}

	// 引擎视角：自己落子是 Max，人落子是 Min
	role := board.Min
	m.stage = HumanChoose
	if by == Computer {
		role = board.Max
		m.stage = EngineChoose
	}
	if err := m.engine.Observe(role, cell, p.Piece); err != nil {
		return p, err
	}
	return p, nil
}
