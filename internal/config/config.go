// File: internal/config/config.go
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"sync"
	"time"
)

var ErrInvalid = errors.New("config: invalid value")

type Config struct {
	Engine EngineConfig `json:"engine"`
	Agent  AgentConfig  `json:"agent"`
	Server ServerConfig `json:"server"`
	Arena  ArenaConfig  `json:"arena"`
	Log    LogConfig    `json:"log"`
}

// EngineConfig 搜索与阶段切换
type EngineConfig struct {
	OpeningEmpty   int     `json:"opening_empty"`    // 空格数大于此值：随机开局
	EndgameEmpty   int     `json:"endgame_empty"`    // 空格数不超过此值：穷举
	SafetyMarginMs int     `json:"safety_margin_ms"` // 为通信预留的时间
	TurnBudgetMs   int     `json:"turn_budget_ms"`   // 未指定预算时使用
	Exploration    float64 `json:"exploration"`
	RootBoost      float64 `json:"root_boost"`
	UseTT          bool    `json:"use_tt"`
	TTPow          uint8   `json:"tt_pow"`
}

// AgentConfig 连接裁判服务器
type AgentConfig struct {
	Address   string `json:"address"`
	StateFile string `json:"state_file"` // 可选的初始棋盘
	Retries   int    `json:"retries"`
}

type ServerConfig struct {
	Listen      string `json:"listen"`
	MaxBudgetMs int    `json:"max_budget_ms"`
}

type ArenaConfig struct {
	Games    int   `json:"games"`
	Workers  int   `json:"workers"`
	BudgetMs int   `json:"budget_ms"`
	Seed     int64 `json:"seed"`
}

type LogConfig struct {
	Level string `json:"level"`
	JSON  bool   `json:"json"`
}

func Default() Config {
	return Config{
		Engine: EngineConfig{
			OpeningEmpty:   23,
			EndgameEmpty:   6,
			SafetyMarginMs: 2000,
			TurnBudgetMs:   10000,
			Exploration:    1 / math.Sqrt2,
			RootBoost:      5,
			UseTT:          true,
			TTPow:          20, // 2^20 槽
		},
		Agent: AgentConfig{
			Address: "localhost:4321",
		},
		Server: ServerConfig{
			Listen:      ":8080",
			MaxBudgetMs: 10000,
		},
		Arena: ArenaConfig{
			Games:    10,
			Workers:  2,
			BudgetMs: 500,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load 在默认值之上覆盖 JSON 文件；path 为空直接返回默认值
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("config: %w", err)
	}
	if err := json.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("config: parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	e := c.Engine
	switch {
	case e.EndgameEmpty < 0 || e.EndgameEmpty > 8:
		return fmt.Errorf("%w: endgame_empty %d (0..8)", ErrInvalid, e.EndgameEmpty)
	case e.OpeningEmpty < e.EndgameEmpty || e.OpeningEmpty > 25:
		return fmt.Errorf("%w: opening_empty %d", ErrInvalid, e.OpeningEmpty)
	case e.SafetyMarginMs < 0:
		return fmt.Errorf("%w: safety_margin_ms %d", ErrInvalid, e.SafetyMarginMs)
	case e.TurnBudgetMs <= 0:
		return fmt.Errorf("%w: turn_budget_ms %d", ErrInvalid, e.TurnBudgetMs)
	case e.Exploration <= 0 || e.RootBoost <= 0:
		return fmt.Errorf("%w: exploration %.3f / root_boost %.3f", ErrInvalid, e.Exploration, e.RootBoost)
	case e.UseTT && (e.TTPow < 10 || e.TTPow > 28):
		return fmt.Errorf("%w: tt_pow %d (10..28)", ErrInvalid, e.TTPow)
	case c.Arena.Games < 0 || c.Arena.Workers < 1:
		return fmt.Errorf("%w: arena games %d workers %d", ErrInvalid, c.Arena.Games, c.Arena.Workers)
	case c.Server.MaxBudgetMs <= 0:
		return fmt.Errorf("%w: max_budget_ms %d", ErrInvalid, c.Server.MaxBudgetMs)
	}
	return nil
}

func (e EngineConfig) SafetyMargin() time.Duration {
	return time.Duration(e.SafetyMarginMs) * time.Millisecond
}

func (e EngineConfig) TurnBudget() time.Duration {
	return time.Duration(e.TurnBudgetMs) * time.Millisecond
}

// ——————————————————— 运行期可更新的配置 ———————————————————

type Store struct {
	mu     sync.RWMutex
	config Config
}

func NewStore(c Config) *Store { return &Store{config: c} }

func (s *Store) Get() Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.config
}

// Update 校验通过才替换
func (s *Store) Update(c Config) error {
	if err := c.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	s.config = c
	s.mu.Unlock()
	return nil
}
