package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Setup 初始化全局 zerolog
// format: console（开发环境，彩色输出）/ json（生产环境）
func Setup(level, format string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)
	zerolog.TimeFieldFormat = time.RFC3339

	var w io.Writer = os.Stdout
	if format != "json" {
		w = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: "2006-01-02 15:04:05"}
	}

	l := zerolog.New(w).With().Timestamp().Logger()
	log.Logger = l
	return l
}

// Nop 测试用
func Nop() zerolog.Logger {
	return zerolog.Nop()
}
