package match

import (
	"context"
	"errors"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"quarto_go/internal/agent"
	"quarto_go/internal/board"
	"quarto_go/internal/config"
)

// scripted 挑最小的子、放最小的空格；记录 Observe
type scripted struct {
	observed []board.Role
	fail     error
}

func (s *scripted) Decide(_ context.Context, t agent.Turn) (agent.Decision, error) {
	if s.fail != nil {
		return agent.Decision{}, s.fail
	}
	if t.Phase == agent.Choose {
		for p := int8(0); p < board.Pieces; p++ {
			if !t.Board.IsPiecePlayed(p) {
				return agent.Decision{Phase: agent.Choose, Piece: p, Cell: -1}, nil
			}
		}
	}
	for c := int8(0); c < board.Cells; c++ {
		if t.Board.IsCellEmpty(c) {
			return agent.Decision{Phase: agent.Move, Piece: t.Piece, Cell: c}, nil
		}
	}
	return agent.Decision{}, errors.New("scripted: board full")
}

func (s *scripted) Observe(role board.Role, _, _ int8) error {
	s.observed = append(s.observed, role)
	return nil
}

// settle 反复 Poll 直到引擎不再思考
func settle(t *testing.T, m *Match) *Placement {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	var placed *Placement
	for {
		p, err := m.Poll()
		require.NoError(t, err)
		if p != nil {
			placed = p
		}
		if !m.Thinking() && m.Stage() != EngineChoose && m.Stage() != EngineMove {
			return placed
		}
		require.True(t, time.Now().Before(deadline), "engine never answered")
		time.Sleep(time.Millisecond)
	}
}

func TestTurnSequence(t *testing.T) {
	eng := &scripted{}
	m := New(eng, time.Second)
	defer m.Close()
	require.Equal(t, EngineChoose, m.Stage())

	// 引擎挑子前人不能动
	_, err := m.PlacePiece(0)
	require.ErrorIs(t, err, ErrNotYourTurn)
	require.ErrorIs(t, m.ChoosePiece(3), ErrNotYourTurn)

	require.Nil(t, settle(t, m))
	require.Equal(t, HumanMove, m.Stage())
	require.Equal(t, int8(0), m.Pending())

	p, err := m.PlacePiece(board.CellIndex(4, 4))
	require.NoError(t, err)
	require.Equal(t, Placement{Cell: board.CellIndex(4, 4), Piece: 0, By: Human}, p)
	require.Equal(t, HumanChoose, m.Stage())
	require.Equal(t, int8(-1), m.Pending())

	require.ErrorIs(t, m.ChoosePiece(0), board.ErrPiecePlayed)
	require.ErrorIs(t, m.ChoosePiece(32), board.ErrOutOfRange)
	require.NoError(t, m.ChoosePiece(6))
	require.Equal(t, EngineMove, m.Stage())

	// 引擎落子后紧接着又轮到它挑子
	placed := settle(t, m)
	require.NotNil(t, placed)
	require.Equal(t, Placement{Cell: 0, Piece: 6, By: Computer}, *placed)
	require.Equal(t, HumanMove, m.Stage())
	require.Equal(t, int8(1), m.Pending())
	require.Equal(t, 2, m.Turns())
	require.Equal(t, []board.Role{board.Min, board.Max}, eng.observed)

	_, err = m.PlacePiece(board.CellIndex(4, 4))
	require.ErrorIs(t, err, board.ErrCellOccupied)
	_, err = m.PlacePiece(25)
	require.ErrorIs(t, err, board.ErrOutOfRange)
}

func TestEngineFailureEndsMatch(t *testing.T) {
	m := New(&scripted{fail: agent.ErrInternal}, time.Second)
	defer m.Close()
	_, err := m.Poll()
	require.NoError(t, err)
	require.True(t, m.Thinking())

	deadline := time.Now().Add(5 * time.Second)
	for m.Thinking() {
		_, err = m.Poll()
		require.True(t, time.Now().Before(deadline))
		time.Sleep(time.Millisecond)
	}
	require.ErrorIs(t, err, agent.ErrInternal)
	require.Equal(t, Over, m.Stage())
	require.ErrorIs(t, m.ChoosePiece(1), ErrOver)
}

// 人随机下，对手是真正的 agent；对局必须正常结束且棋盘一致
func TestFullMatchAgainstAgent(t *testing.T) {
	cfg := config.Default().Engine
	cfg.SafetyMarginMs = 0
	cfg.EndgameEmpty = 4
	cfg.TTPow = 14
	rng := rand.New(rand.NewSource(5))
	m := New(agent.New(cfg, agent.WithRand(rand.New(rand.NewSource(6)))), 5*time.Millisecond)
	defer m.Close()

	for m.Stage() != Over {
		settle(t, m)
		b := m.Board()
		switch m.Stage() {
		case HumanMove:
			_, err := m.PlacePiece(b.RandomEmptyCell(rng))
			require.NoError(t, err)
		case HumanChoose:
			require.NoError(t, m.ChoosePiece(b.RandomUnplayedPiece(rng)))
		}
	}

	b := m.Board()
	require.Equal(t, board.Cells-b.EmptyCells(), m.Turns())
	if m.Winner() == Nobody {
		require.Zero(t, b.EmptyCells())
		require.False(t, b.HasWinningLine())
	} else {
		require.True(t, b.HasWinningLine())
	}
}

func TestSideString(t *testing.T) {
	require.Equal(t, "human", Human.String())
	require.Equal(t, "engine", Computer.String())
	require.Equal(t, "draw", Nobody.String())
	var _ Engine = (*agent.Agent)(nil)
}
