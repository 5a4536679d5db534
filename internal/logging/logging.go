// File: internal/logging/logging.go
package logging

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"quarto_go/internal/config"
)

// Setup 设置全局 zerolog：级别 + 控制台/JSON 输出。未知级别按 info 处理。
func Setup(c config.LogConfig) {
	SetupWriter(c, os.Stderr)
}

func SetupWriter(c config.LogConfig, w io.Writer) {
	level, err := zerolog.ParseLevel(c.Level)
	if err != nil || c.Level == "" {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	zerolog.TimeFieldFormat = time.RFC3339Nano
	if c.JSON {
		log.Logger = zerolog.New(w).With().Timestamp().Logger()
		return
	}
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: w, TimeFormat: "15:04:05.000"}).
		With().Timestamp().Logger()
}
