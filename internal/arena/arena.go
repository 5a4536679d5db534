// File: internal/arena/arena.go
package arena

import (
	"context"
	"encoding/binary"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"
	"lukechampine.com/frand"

	"quarto_go/internal/agent"
	"quarto_go/internal/board"
	"quarto_go/internal/config"
)

// Draw 和棋时 Result.Winner 的取值
const Draw = -1

// Turn 自对弈中的一步，推给观察者
type Turn struct {
	Game        int           `json:"game"`
	Number      int           `json:"number"`
	Seat        int           `json:"seat"`
	Phase       string        `json:"phase"`
	Piece       int8          `json:"piece"`
	Cell        int8          `json:"cell"`
	Method      agent.Method  `json:"method"`
	Value       float64       `json:"value"`
	Simulations int           `json:"simulations"`
	Elapsed     time.Duration `json:"elapsed_ns"`
}

type Result struct {
	Game   int         `json:"game"`
	Winner int         `json:"winner"` // 0 / 1 座位，Draw 表示和棋
	Turns  int         `json:"turns"`
	Board  board.State `json:"-"`
}

// Observer 每一步回调；Run 并行时会被多个 goroutine 同时调用
type Observer func(Turn)

// seededRand 每局确定性的随机源
func seededRand(seed int64, seat int) *frand.RNG {
	var key [32]byte
	binary.LittleEndian.PutUint64(key[:8], uint64(seed))
	binary.LittleEndian.PutUint64(key[8:16], uint64(seat))
	return frand.NewCustom(key[:], 1024, 12)
}

// PlayGame 两个互不共享状态的 agent 对弈一局。
// 座位 1 先挑子；放子的一方随后为对手挑子。
func PlayGame(ctx context.Context, cfg config.Config, game int, seed int64, obs Observer) (Result, error) {
	budget := time.Duration(cfg.Arena.BudgetMs) * time.Millisecond
	seats := [2]*agent.Agent{
		agent.New(cfg.Engine, agent.WithRand(seededRand(seed, 0))),
		agent.New(cfg.Engine, agent.WithRand(seededRand(seed, 1))),
	}
	b := board.New()
	res := Result{Game: game, Winner: Draw}
	chooser := 1
	number := 0

	emit := func(seat int, d agent.Decision) {
		number++
		if obs == nil {
			return
		}
		obs(Turn{
			Game: game, Number: number, Seat: seat, Phase: d.Phase.String(),
			Piece: d.Piece, Cell: d.Cell, Method: d.Method, Value: d.Value,
			Simulations: d.Simulations, Elapsed: d.Elapsed,
		})
	}

	for {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		placer := 1 - chooser

		c, err := seats[chooser].Decide(ctx, agent.Turn{Board: b, Phase: agent.Choose, Budget: budget})
		if err != nil {
			return res, fmt.Errorf("game %d seat %d choose: %w", game, chooser, err)
		}
		emit(chooser, c)

		m, err := seats[placer].Decide(ctx, agent.Turn{Board: b, Phase: agent.Move, Piece: c.Piece, Budget: budget})
		if err != nil {
			return res, fmt.Errorf("game %d seat %d move: %w", game, placer, err)
		}
		emit(placer, m)

		if !b.IsCellEmpty(m.Cell) || b.IsPiecePlayed(c.Piece) {
			return res, fmt.Errorf("game %d: illegal move %s/%s", game, board.CellString(m.Cell), board.PieceString(c.Piece))
		}
		out := b.EvaluateAfterMove(board.Max, m.Cell, c.Piece)
		res.Turns++
		if out.Decided {
			if out.Value != 0 {
				res.Winner = placer
			}
			res.Board = b
			log.Debug().Int("game", game).Int("winner", res.Winner).Int("turns", res.Turns).Msg("game-done")
			return res, nil
		}

		if err := seats[placer].Observe(board.Max, m.Cell, c.Piece); err != nil {
			return res, err
		}
		if err := seats[chooser].Observe(board.Min, m.Cell, c.Piece); err != nil {
			return res, err
		}
		chooser = placer
	}
}

// ———————————————————————————— 批量 ————————————————————————————

type Summary struct {
	Games int    `json:"games"`
	Wins  [2]int `json:"wins"`
	Draws int    `json:"draws"`
}

func Summarize(results []Result) Summary {
	return Summary{
		Games: len(results),
		Wins: [2]int{
			lo.CountBy(results, func(r Result) bool { return r.Winner == 0 }),
			lo.CountBy(results, func(r Result) bool { return r.Winner == 1 }),
		},
		Draws: lo.CountBy(results, func(r Result) bool { return r.Winner == Draw }),
	}
}

// Run 并行下 cfg.Arena.Games 局，最多 cfg.Arena.Workers 个 worker；
// 每局各自持有 agent、随机源和模拟草稿盘。
func Run(ctx context.Context, cfg config.Config, obs Observer) (Summary, []Result, error) {
	results := make([]Result, cfg.Arena.Games)
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, cfg.Arena.Workers))
	for i := range results {
		i := i
		g.Go(func() error {
			r, err := PlayGame(ctx, cfg, i, cfg.Arena.Seed+int64(i), obs)
			if err != nil {
				return err
			}
			results[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Summary{}, nil, err
	}
	s := Summarize(results)
	log.Info().Int("games", s.Games).Ints("wins", s.Wins[:]).Int("draws", s.Draws).Msg("arena-done")
	return s, results, nil
}
