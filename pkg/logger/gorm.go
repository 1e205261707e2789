package logger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// GormLogger 把 GORM 的 SQL 日志转到 zerolog
type GormLogger struct {
	zl            zerolog.Logger
	level         gormlogger.LogLevel
	slowThreshold time.Duration
}

// NewGormLogger level: silent / error / warn / info
func NewGormLogger(zl zerolog.Logger, level string) *GormLogger {
	return &GormLogger{
		zl:            zl.With().Str("component", "gorm").Logger(),
		level:         ParseGormLevel(level),
		slowThreshold: 200 * time.Millisecond,
	}
}

// ParseGormLevel 配置字符串转 GORM 日志级别，未知值按 warn 处理
func ParseGormLevel(level string) gormlogger.LogLevel {
	switch level {
	case "silent":
		return gormlogger.Silent
	case "error":
		return gormlogger.Error
	case "info":
		return gormlogger.Info
	default:
		return gormlogger.Warn
	}
}

func (l *GormLogger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	nl := *l
	nl.level = level
	return &nl
}

func (l *GormLogger) Info(ctx context.Context, msg string, args ...interface{}) {
	if l.level >= gormlogger.Info {
		l.zl.Info().Msg(fmt.Sprintf(msg, args...))
	}
}

func (l *GormLogger) Warn(ctx context.Context, msg string, args ...interface{}) {
	if l.level >= gormlogger.Warn {
		l.zl.Warn().Msg(fmt.Sprintf(msg, args...))
	}
}

func (l *GormLogger) Error(ctx context.Context, msg string, args ...interface{}) {
	if l.level >= gormlogger.Error {
		l.zl.Error().Msg(fmt.Sprintf(msg, args...))
	}
}

// Trace 每条 SQL 执行后回调
// 记录不存在属于正常业务分支，不按错误打印
func (l *GormLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.level <= gormlogger.Silent {
		return
	}

	elapsed := time.Since(begin)
	switch {
	case err != nil && l.level >= gormlogger.Error && !errors.Is(err, gorm.ErrRecordNotFound):
		sql, rows := fc()
		l.zl.Error().Err(err).Dur("elapsed", elapsed).Int64("rows", rows).Str("sql", sql).Msg("sql error")
	case elapsed > l.slowThreshold && l.level >= gormlogger.Warn:
		sql, rows := fc()
		l.zl.Warn().Dur("elapsed", elapsed).Int64("rows", rows).Str("sql", sql).Msg("slow sql")
	case l.level >= gormlogger.Info:
		sql, rows := fc()
		l.zl.Info().Dur("elapsed", elapsed).Int64("rows", rows).Str("sql", sql).Msg("sql")
	}
}
