// File: internal/agent/agent.go
package agent

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"lukechampine.com/frand"

	"quarto_go/internal/board"
	"quarto_go/internal/config"
	"quarto_go/internal/search"
	"quarto_go/internal/tree"
	"quarto_go/internal/tt"
)

var (
	ErrInternal = errors.New("agent: internal error")
	ErrPhase    = errors.New("agent: unknown phase")
	ErrPiece    = errors.New("agent: piece not available")
	ErrGameOver = errors.New("agent: board is full")
)

// Phase 本回合要做什么：挑子给对手，或放下对手挑的子
type Phase uint8

const (
	Choose Phase = iota
	Move
)

func (p Phase) String() string {
	switch p {
	case Choose:
		return "choose"
	case Move:
		return "move"
	}
	return fmt.Sprintf("phase(%d)", p)
}

func ParsePhase(s string) (Phase, error) {
	switch s {
	case "choose":
		return Choose, nil
	case "move":
		return Move, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrPhase, s)
}

// Method 本回合的决策方式
type Method string

const (
	MethodRandom Method = "random"
	MethodExact  Method = "exact"
	MethodMCTS   Method = "mcts"
	MethodSolved Method = "solved"
)

// Turn 一次决策的输入；Board 必须已经过校验
type Turn struct {
	Board  board.State
	Phase  Phase
	Piece  int8          // Move 阶段要放的棋子
	Budget time.Duration // 0 表示用配置里的默认预算
}

type Decision struct {
	Phase       Phase
	Piece       int8 // Choose：挑给对手的子；Move：放下的子
	Cell        int8 // Move：落子格；Choose 为 -1
	Method      Method
	Value       float64 // exact/solved：精确值；mcts：最佳子节点均值
	Simulations int
	Nodes       uint64 // exact：穷举访问的内部节点数
	Elapsed     time.Duration
	Candidates  []Candidate // mcts：根的子节点统计
}

func (d Decision) Row() int {
	r, _ := board.Coords(d.Cell)
	return r
}

func (d Decision) Col() int {
	_, c := board.Coords(d.Cell)
	return c
}

// Agent 回合调度器：按空格数选择 随机 / MCTS / 穷举，并跨回合保留统计树。
// 不是并发安全的：同一时刻只能有一个 Decide 或 Observe。
type Agent struct {
	cfg config.EngineConfig
	rng board.Rand
	now func() time.Time

	mcts   *search.MCTS
	solver *search.Solver
	root   *tree.Node
}

type Option func(*Agent)

// WithRand 指定随机源（测试用固定种子）
func WithRand(r board.Rand) Option { return func(a *Agent) { a.rng = r } }

// WithClock 指定时钟
func WithClock(now func() time.Time) Option { return func(a *Agent) { a.now = now } }

func New(cfg config.EngineConfig, opts ...Option) *Agent {
	a := &Agent{cfg: cfg, now: time.Now}
	for _, o := range opts {
		o(a)
	}
	if a.rng == nil {
		a.rng = frand.New()
	}
	a.mcts = search.NewMCTS(cfg.Exploration, cfg.RootBoost, a.rng)
	return a
}

// Root 当前保留的统计树根；nil 表示没有
func (a *Agent) Root() *tree.Node { return a.root }

// Reset 丢弃保留的树
func (a *Agent) Reset() { a.root = nil }

// Abort 让正在进行的搜索尽快返回（可从其他 goroutine 调用）
func (a *Agent) Abort() {
	a.mcts.Abort()
	if s := a.solver; s != nil {
		s.Abort()
	}
}

func (a *Agent) exactSolver() *search.Solver {
	if a.solver == nil {
		var table *tt.Table
		if a.cfg.UseTT {
			table = tt.New(a.cfg.TTPow)
		}
		a.solver = search.NewSolver(table)
	}
	return a.solver
}

// ———————————————————————————— 决策 ————————————————————————————

// Decide 为一个回合给出动作。核心里的不变式被破坏（panic）时丢弃保留的树，
// 以 ErrInternal 返回，不带着损坏的状态继续。
func (a *Agent) Decide(ctx context.Context, t Turn) (d Decision, err error) {
	defer func() {
		if r := recover(); r != nil {
			a.root = nil
			err = fmt.Errorf("%w: %v", ErrInternal, r)
			log.Error().Str("phase", t.Phase.String()).Interface("panic", r).Msg("decide-failed")
		}
	}()
	if err := validate(t); err != nil {
		return Decision{}, err
	}
	if err := ctx.Err(); err != nil {
		return Decision{}, err
	}

	start := a.now()
	budget := t.Budget
	if budget <= 0 {
		budget = a.cfg.TurnBudget()
	}
	deadline := start.Add(budget - a.cfg.SafetyMargin())
	empty := t.Board.EmptyCells()

	switch {
	case empty > a.cfg.OpeningEmpty:
		// 开局高度对称，不值得建树
		a.root = nil
		d = a.random(t)
	case empty <= a.cfg.EndgameEmpty:
		a.root = nil
		d, err = a.exact(ctx, t)
	default:
		d = a.statistical(ctx, t, deadline)
	}
	if err != nil {
		return Decision{}, err
	}
	d.Phase = t.Phase
	d.Elapsed = a.now().Sub(start)

	ev := log.Info().
		Str("phase", t.Phase.String()).
		Str("method", string(d.Method)).
		Int("empty", empty).
		Float64("value", d.Value).
		Int("simulations", d.Simulations).
		Uint64("nodes", d.Nodes).
		Dur("elapsed", d.Elapsed)
	if t.Phase == Choose {
		ev.Str("piece", board.PieceString(d.Piece))
	} else {
		ev.Str("cell", board.CellString(d.Cell))
	}
	ev.Msg("decision")
	return d, nil
}

func validate(t Turn) error {
	if t.Board.HasWinningLine() {
		return board.ErrWinningBoard
	}
	if t.Board.EmptyCells() == 0 {
		return ErrGameOver
	}
	switch t.Phase {
	case Choose:
	case Move:
		if !board.ValidPiece(t.Piece) || t.Board.IsPiecePlayed(t.Piece) {
			return fmt.Errorf("%w: %d", ErrPiece, t.Piece)
		}
	default:
		return fmt.Errorf("%w: %d", ErrPhase, t.Phase)
	}
	return nil
}

func (a *Agent) random(t Turn) Decision {
	if t.Phase == Choose {
		return Decision{Piece: t.Board.RandomUnplayedPiece(a.rng), Cell: -1, Method: MethodRandom}
	}
	return Decision{Piece: t.Piece, Cell: t.Board.RandomEmptyCell(a.rng), Method: MethodRandom}
}

func (a *Agent) exact(ctx context.Context, t Turn) (Decision, error) {
	solver := a.exactSolver()
	stop := context.AfterFunc(ctx, solver.Abort)
	defer stop()

	root := freshRoot(t)
	best, v, err := solver.Solve(root)
	if err != nil {
		return Decision{}, fmt.Errorf("exact search: %w", err)
	}
	d := action(t, best)
	d.Method = MethodExact
	if root.Solved {
		d.Method = MethodSolved
	}
	d.Value = float64(v)
	d.Nodes = solver.Nodes()
	return d, nil
}

func (a *Agent) statistical(ctx context.Context, t Turn, deadline time.Time) Decision {
	root := a.acquireRoot(t)
	root.Expand()
	a.root = root
	if root.Solved {
		d := action(t, root.SolvedRef)
		d.Method = MethodSolved
		d.Value = float64(root.SolvedRef.Value)
		return d
	}

	n := a.mcts.Run(root, func() bool {
		return ctx.Err() != nil || !a.now().Before(deadline)
	})
	best := a.mcts.Best(root)
	d := action(t, best)
	d.Method = MethodMCTS
	d.Simulations = n
	if best.Kind == tree.Terminal && root.Solved {
		d.Method = MethodSolved
		d.Value = float64(best.Value)
	} else {
		d.Value = best.Mean()
	}
	d.Candidates = candidates(root)
	return d
}

func action(t Turn, n *tree.Node) Decision {
	if t.Phase == Choose {
		return Decision{Piece: n.Piece, Cell: -1}
	}
	return Decision{Piece: t.Piece, Cell: n.Cell}
}

func freshRoot(t Turn) *tree.Node {
	if t.Phase == Choose {
		return tree.NewRoot(tree.MaxChoose, t.Board, -1)
	}
	return tree.NewRoot(tree.MaxMove, t.Board, t.Piece)
}
