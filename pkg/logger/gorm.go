package logger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// GormLogger routes gorm's SQL trace into slog, tagged with the request id of the
// HTTP call that issued the query.
type GormLogger struct {
	level         gormlogger.LogLevel
	slowThreshold time.Duration
}

func NewGormLogger(level gormlogger.LogLevel, slowThreshold time.Duration) *GormLogger {
	return &GormLogger{level: level, slowThreshold: slowThreshold}
}

func (l *GormLogger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	clone := *l
	clone.level = level
	return &clone
}

func (l *GormLogger) Info(ctx context.Context, msg string, data ...any) {
	l.log(ctx, gormlogger.Info, slog.LevelInfo, fmt.Sprintf(msg, data...))
}

func (l *GormLogger) Warn(ctx context.Context, msg string, data ...any) {
	l.log(ctx, gormlogger.Warn, slog.LevelWarn, fmt.Sprintf(msg, data...))
}

func (l *GormLogger) Error(ctx context.Context, msg string, data ...any) {
	l.log(ctx, gormlogger.Error, slog.LevelError, fmt.Sprintf(msg, data...))
}

func (l *GormLogger) Trace(ctx context.Context, begin time.Time, fc func() (sql string, rowsAffected int64), err error) {
	if l.level <= gormlogger.Silent {
		return
	}

	elapsed := time.Since(begin)
	sql, rows := fc()
	attrs := []any{
		slog.String("sql", sql),
		slog.Int64("rows", rows),
		slog.Duration("elapsed", elapsed),
	}

	switch {
	// a missing row is an answer, not a failure
	case err != nil && !errors.Is(err, gorm.ErrRecordNotFound):
		l.log(ctx, gormlogger.Error, slog.LevelError, "sql error", append(attrs, Err(err))...)
	case l.slowThreshold > 0 && elapsed > l.slowThreshold:
		l.log(ctx, gormlogger.Warn, slog.LevelWarn, "slow sql", attrs...)
	default:
		l.log(ctx, gormlogger.Info, slog.LevelDebug, "sql", attrs...)
	}
}

func (l *GormLogger) log(ctx context.Context, enabled gormlogger.LogLevel, level slog.Level, msg string, attrs ...any) {
	if l.level < enabled {
		return
	}
	if id := RequestID(ctx); id != "" {
		attrs = append(attrs, slog.String("request_id", id))
	}
	Log.Log(ctx, level, msg, attrs...)
}
