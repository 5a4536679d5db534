package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"quarto_go/internal/agent"
	"quarto_go/internal/arena"
	"quarto_go/internal/board"
	"quarto_go/internal/config"
	"quarto_go/internal/logging"
	"quarto_go/internal/protocol"
	"quarto_go/internal/server"
	"quarto_go/internal/ui"
)

func main() {
	// ──────── 命令行参数 ────────
	var (
		cfgPath  = flag.String("config", "", "JSON config file (defaults are used when empty)")
		mode     = flag.String("mode", "agent", "agent | selfplay | serve | gui")
		addr     = flag.String("addr", "", "arbiter address for -mode agent")
		state    = flag.String("state", "", "initial board file for -mode agent")
		budget   = flag.Int("budget", 0, "per-turn budget in ms (0 keeps the config value)")
		games    = flag.Int("games", 0, "self-play games")
		workers  = flag.Int("workers", 0, "self-play workers")
		seed     = flag.Int64("seed", 0, "self-play seed")
		listen   = flag.String("listen", "", "listen address for -mode serve")
		logLevel = flag.String("log-level", "", "trace | debug | info | warn | error")
		jsonLog  = flag.Bool("json-log", false, "log as JSON lines")
	)
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	// ──────── 命令行覆盖配置文件 ────────
	set := map[string]bool{}
	flag.Visit(func(f *flag.Flag) { set[f.Name] = true })
	if *addr != "" {
		cfg.Agent.Address = *addr
	}
	if *state != "" {
		cfg.Agent.StateFile = *state
	}
	if *budget > 0 {
		cfg.Engine.TurnBudgetMs = *budget
		cfg.Arena.BudgetMs = *budget
	}
	if *games > 0 {
		cfg.Arena.Games = *games
	}
	if *workers > 0 {
		cfg.Arena.Workers = *workers
	}
	if set["seed"] {
		cfg.Arena.Seed = *seed
	}
	if *listen != "" {
		cfg.Server.Listen = *listen
	}
	if *logLevel != "" {
		cfg.Log.Level = *logLevel
	}
	if set["json-log"] {
		cfg.Log.JSON = *jsonLog
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	logging.Setup(cfg.Log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch *mode {
	case "agent":
		err = runAgent(ctx, cfg)
	case "selfplay":
		err = runSelfPlay(ctx, cfg)
	case "serve":
		err = server.New(config.NewStore(cfg)).ListenAndServe(ctx)
	case "gui":
		err = ui.Run(ui.NewGameLoop(agent.New(cfg.Engine), cfg.Engine.TurnBudget()))
	default:
		err = fmt.Errorf("unknown mode %q", *mode)
	}
	if err != nil {
		log.Error().Err(err).Str("mode", *mode).Msg("exit")
		os.Exit(1)
	}
}

// runAgent 连接裁判下一整局
func runAgent(ctx context.Context, cfg config.Config) error {
	initial := board.New()
	if cfg.Agent.StateFile != "" {
		s, err := board.LoadFile(cfg.Agent.StateFile)
		if err != nil {
			return err
		}
		initial = s
	}
	c, err := protocol.Dial(ctx, cfg.Agent.Address, cfg.Agent.Retries)
	if err != nil {
		return err
	}
	defer c.Close()

	s := protocol.NewSession(c, agent.New(cfg.Engine), initial)
	over, err := s.Play(ctx)
	if err != nil {
		return err
	}
	fmt.Println(over.Message)
	return nil
}

func runSelfPlay(ctx context.Context, cfg config.Config) error {
	start := time.Now()
	sum, _, err := arena.Run(ctx, cfg, func(t arena.Turn) {
		log.Debug().Int("game", t.Game).Int("n", t.Number).Int("seat", t.Seat).
			Str("phase", t.Phase).Str("method", string(t.Method)).Msg("turn")
	})
	if err != nil {
		return err
	}
	fmt.Printf("games %d | seat0 %d | seat1 %d | draws %d | %s\n",
		sum.Games, sum.Wins[0], sum.Wins[1], sum.Draws, time.Since(start).Round(time.Millisecond))
	return nil
}
