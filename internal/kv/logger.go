package kv

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"
	gorm_logger "gorm.io/gorm/logger"
)

// slowQuery is the duration above which a cache query is logged as a warning.
const slowQuery = 200 * time.Millisecond

// logger sends gorm logs to zerolog.
type logger struct {
	Logger zerolog.Logger
}

func (l *logger) LogMode(gorm_logger.LogLevel) gorm_logger.Interface {
	return l
}

func (l *logger) Info(_ context.Context, s string, args ...interface{}) {
	l.Logger.Info().Msgf(s, args...)
}

func (l *logger) Warn(_ context.Context, s string, args ...interface{}) {
	l.Logger.Warn().Msgf(s, args...)
}

func (l *logger) Error(_ context.Context, s string, args ...interface{}) {
	l.Logger.Error().Msgf(s, args...)
}

// Trace logs every statement. Missing keys are expected and not logged as
// errors.
func (l *logger) Trace(_ context.Context, begin time.Time, fc func() (string, int64), err error) {
	elapsed := time.Since(begin)
	sql, rows := fc()

	var e *zerolog.Event
	switch {
	case err != nil && !errors.Is(err, gorm.ErrRecordNotFound):
		e = l.Logger.Error().Err(err)
	case elapsed > slowQuery:
		e = l.Logger.Warn()
	default:
		e = l.Logger.Trace()
	}

	e.Str("sql", sql).Int64("rows", rows).Dur("duration", elapsed).Msg("[GORM] query")
}

// badgerLogger sends badger logs to zerolog. Badger's info messages are
// logged at debug level.
type badgerLogger struct {
	zerolog.Logger
}

func (l badgerLogger) Errorf(s string, args ...interface{}) {
	l.Logger.Error().Msgf(strings.TrimSpace(s), args...)
}

func (l badgerLogger) Warningf(s string, args ...interface{}) {
	l.Logger.Warn().Msgf(strings.TrimSpace(s), args...)
}

func (l badgerLogger) Infof(s string, args ...interface{}) {
	l.Logger.Debug().Msgf(strings.TrimSpace(s), args...)
}

func (l badgerLogger) Debugf(s string, args ...interface{}) {
	l.Logger.Trace().Msgf(strings.TrimSpace(s), args...)
}
