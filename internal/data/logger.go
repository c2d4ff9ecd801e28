package data

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-kratos/kratos/v2/log"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// GormLogger implements gorm.logger.Interface on top of a kratos logger.
type GormLogger struct {
	log           *log.Helper
	slowThreshold time.Duration
}

// NewGormLogger creates a gorm logger writing through logger.
func NewGormLogger(l log.Logger) *GormLogger {
	return &GormLogger{
		log:           log.NewHelper(log.With(l, "module", "gorm")),
		slowThreshold: 200 * time.Millisecond,
	}
}

func (l *GormLogger) LogMode(level logger.LogLevel) logger.Interface {
	return l
}

func (l *GormLogger) Info(ctx context.Context, msg string, data ...interface{}) {
	l.log.WithContext(ctx).Info(fmt.Sprintf(msg, data...))
}

func (l *GormLogger) Warn(ctx context.Context, msg string, data ...interface{}) {
	l.log.WithContext(ctx).Warn(fmt.Sprintf(msg, data...))
}

func (l *GormLogger) Error(ctx context.Context, msg string, data ...interface{}) {
	l.log.WithContext(ctx).Error(fmt.Sprintf(msg, data...))
}

func (l *GormLogger) Trace(ctx context.Context, begin time.Time, fc func() (sql string, rowsAffected int64), err error) {
	elapsed := time.Since(begin)
	sql, rows := fc()
	h := l.log.WithContext(ctx)

	switch {
	// Misses are reported to callers as ErrMovieNotFound.
	case err != nil && !errors.Is(err, gorm.ErrRecordNotFound):
		h.Errorw("msg", "gorm error", "error", err, "sql", sql, "rows", rows, "elapsed", elapsed)
	case elapsed > l.slowThreshold:
		h.Warnw("msg", "gorm slow query", "sql", sql, "rows", rows, "elapsed", elapsed)
	default:
		h.Debugw("msg", "gorm query", "sql", sql, "rows", rows, "elapsed", elapsed)
	}
}
