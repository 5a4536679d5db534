// File: internal/protocol/session.go
package protocol

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"quarto_go/internal/agent"
	"quarto_go/internal/board"
)

// GameOver 裁判宣布结束；Message 是 GAME_OVER: 之后的原文
type GameOver struct {
	Message string
}

func (g *GameOver) Error() string { return "game over: " + g.Message }

// Decider 会话所需的决策者；*agent.Agent 满足
type Decider interface {
	Decide(ctx context.Context, t agent.Turn) (agent.Decision, error)
	Observe(role board.Role, cell, piece int8) error
}

// Session 一局对弈：读裁判指令 → 决策 → 应答 → 同步棋盘与搜索树
type Session struct {
	c   *Client
	dec Decider

	Board     board.State
	Player    int
	TimeLimit time.Duration
}

func NewSession(c *Client, dec Decider, initial board.State) *Session {
	return &Session{c: c, dec: dec, Board: initial, TimeLimit: 10 * time.Second}
}

// Play 直到 GAME_OVER。正常结束返回裁判的结束信息。
func (s *Session) Play(ctx context.Context) (*GameOver, error) {
	err := s.play(ctx)
	var over *GameOver
	if errors.As(err, &over) {
		log.Info().Str("result", over.Message).Msg("game-over")
		return over, nil
	}
	return nil, err
}

func (s *Session) play(ctx context.Context) error {
	n, err := s.expectInt(HeaderPlayer)
	if err != nil {
		return err
	}
	s.Player = n
	ms, err := s.expectInt(HeaderTimeLimit)
	if err != nil {
		return err
	}
	s.TimeLimit = time.Duration(ms) * time.Millisecond
	log.Info().Int("player", s.Player).Dur("limit", s.TimeLimit).Msg("session-start")

	// 2 号玩家先挑子
	if s.Player == 2 {
		if err := s.pieceTurn(ctx); err != nil {
			return err
		}
	}
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := s.moveTurn(ctx); err != nil {
			return err
		}
		if err := s.pieceTurn(ctx); err != nil {
			return err
		}
	}
}

// pieceTurn 挑子给对手，然后接收对手的落子
func (s *Session) pieceTurn(ctx context.Context) error {
	if _, err := s.expect(HeaderPiece); err != nil {
		return err
	}
	d, err := s.dec.Decide(ctx, agent.Turn{Board: s.Board, Phase: agent.Choose, Budget: s.TimeLimit})
	if err != nil {
		return fmt.Errorf("choose piece: %w", err)
	}
	if err := s.c.Send(board.PieceString(d.Piece)); err != nil {
		return err
	}

	m, err := s.expect(HeaderAckPiece, HeaderErrPiece)
	if err != nil {
		return err
	}
	if m.Header == HeaderErrPiece {
		log.Warn().Str("sent", board.PieceString(d.Piece)).Str("used", strings.Join(m.Args, " ")).Msg("piece-rejected")
	}
	piece, err := pieceArg(m)
	if err != nil {
		return err
	}

	m, err = s.expect(HeaderOppMove)
	if err != nil {
		return err
	}
	cell, err := cellArg(m)
	if err != nil {
		return err
	}
	return s.apply(board.Min, cell, piece)
}

// moveTurn 放下对手挑给我们的子
func (s *Session) moveTurn(ctx context.Context) error {
	m, err := s.expect(HeaderMove)
	if err != nil {
		return err
	}
	piece, err := pieceArg(m)
	if err != nil {
		return err
	}
	d, err := s.dec.Decide(ctx, agent.Turn{Board: s.Board, Phase: agent.Move, Piece: piece, Budget: s.TimeLimit})
	if err != nil {
		return fmt.Errorf("place piece: %w", err)
	}
	if err := s.c.Send(board.CellString(d.Cell)); err != nil {
		return err
	}

	m, err = s.expect(HeaderAckMove, HeaderErrMove)
	if err != nil {
		return err
	}
	if m.Header == HeaderErrMove {
		log.Warn().Str("sent", board.CellString(d.Cell)).Str("used", strings.Join(m.Args, " ")).Msg("move-rejected")
	}
	cell, err := cellArg(m)
	if err != nil {
		return err
	}
	return s.apply(board.Max, cell, piece)
}

// apply 把裁判确认的动作落到本地棋盘，再通知决策者重新定根
func (s *Session) apply(role board.Role, cell, piece int8) error {
	if err := s.Board.Place(cell, piece); err != nil {
		return fmt.Errorf("apply %s move %s: %w", role, board.CellString(cell), err)
	}
	return s.dec.Observe(role, cell, piece)
}

// ———————————————————————————— 解析 ————————————————————————————

func (s *Session) expect(headers ...string) (Message, error) {
	m, err := s.c.Read()
	if err != nil {
		return Message{}, err
	}
	if m.Header == HeaderGameOver {
		return m, &GameOver{Message: strings.Join(m.Args, " ")}
	}
	for _, h := range headers {
		if m.Header == h {
			return m, nil
		}
	}
	return m, fmt.Errorf("%w: want %s, got %q", ErrTurnOrder, strings.Join(headers, "|"), m.String())
}

func (s *Session) expectInt(header string) (int, error) {
	m, err := s.expect(header)
	if err != nil {
		return 0, err
	}
	a, err := m.Arg(0)
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(a)
	if err != nil {
		return 0, fmt.Errorf("%w: %s %q", ErrMalformed, header, a)
	}
	return n, nil
}

func pieceArg(m Message) (int8, error) {
	a, err := m.Arg(0)
	if err != nil {
		return -1, err
	}
	p, err := board.ParsePiece(a)
	if err != nil {
		return -1, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return p, nil
}

func cellArg(m Message) (int8, error) {
	a, err := m.Arg(0)
	if err != nil {
		return -1, err
	}
	c, err := board.ParseCell(a)
	if err != nil {
		return -1, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return c, nil
}
