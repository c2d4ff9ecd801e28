// Package zlog adapts zerolog to the kratos log.Logger interface.
package zlog

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/rs/zerolog"
)

var _ log.Logger = (*Logger)(nil)

// Logger writes kratos key/value log records as zerolog events.
type Logger struct {
	log zerolog.Logger
}

// New creates a Logger writing to w. format "console" selects the
// human-readable writer, anything else emits JSON lines.
func New(w io.Writer, format, level string) *Logger {
	if format == "console" {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen}
	}
	return &Logger{
		log: zerolog.New(w).Level(ParseLevel(level)),
	}
}

// ParseLevel converts a config level name to a zerolog level; unknown names
// mean info.
func ParseLevel(level string) zerolog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "fatal":
		return zerolog.FatalLevel
	default:
		return zerolog.InfoLevel
	}
}

func (l *Logger) Log(level log.Level, keyvals ...interface{}) error {
	var event *zerolog.Event
	switch level {
	case log.LevelDebug:
		event = l.log.Debug()
	case log.LevelWarn:
		event = l.log.Warn()
	case log.LevelError:
		event = l.log.Error()
	case log.LevelFatal:
		// WithLevel does not exit; kratos decides what fatal means.
		event = l.log.WithLevel(zerolog.FatalLevel)
	default:
		event = l.log.Info()
	}
	if event == nil {
		return nil
	}

	if len(keyvals)%2 != 0 {
		keyvals = append(keyvals, "KEYVALS UNPAIRED")
	}
	for i := 0; i < len(keyvals); i += 2 {
		key := fmt.Sprint(keyvals[i])
		switch v := keyvals[i+1].(type) {
		case error:
			event = event.AnErr(key, v)
		case fmt.Stringer:
			event = event.Str(key, v.String())
		default:
			event = event.Interface(key, v)
		}
	}
	event.Send()
	return nil
}
