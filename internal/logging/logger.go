package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Logger provides leveled key/value logging with an optional component name.
// It keeps the Info(msg, keyvals...) call shape used across the service and
// delegates encoding to zerolog.
type Logger struct {
	zl zerolog.Logger
}

// New builds a root logger writing to stdout.
// level is one of debug, info, warn, error; format is json or console.
func New(level, format string) (*Logger, error) {
	return NewWithWriter(os.Stdout, level, format)
}

// NewWithWriter builds a root logger writing to w.
func NewWithWriter(w io.Writer, level, format string) (*Logger, error) {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	if lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}

	var out io.Writer
	switch strings.ToLower(format) {
	case "", "json":
		out = w
	case "console":
		out = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	default:
		return nil, fmt.Errorf("unsupported log format %q", format)
	}

	return &Logger{zl: zerolog.New(out).With().Timestamp().Logger().Level(lvl)}, nil
}

// Nop returns a logger that discards everything.
func Nop() *Logger {
	return &Logger{zl: zerolog.Nop()}
}

// Named returns a child logger tagged with the given component.
func (l *Logger) Named(component string) *Logger {
	return &Logger{zl: l.zl.With().Str("component", component).Logger()}
}

// Debug logs a debug message
func (l *Logger) Debug(msg string, keyvals ...interface{}) {
	write(l.zl.Debug(), msg, keyvals)
}

// Info logs an informational message
func (l *Logger) Info(msg string, keyvals ...interface{}) {
	write(l.zl.Info(), msg, keyvals)
}

// Warn logs a warning message
func (l *Logger) Warn(msg string, keyvals ...interface{}) {
	write(l.zl.Warn(), msg, keyvals)
}

// Error logs an error message
func (l *Logger) Error(msg string, keyvals ...interface{}) {
	write(l.zl.Error(), msg, keyvals)
}

// write attaches key/value pairs to the event. A trailing key without a value
// is dropped.
func write(e *zerolog.Event, msg string, keyvals []interface{}) {
	if e == nil {
		return
	}
	for i := 0; i+1 < len(keyvals); i += 2 {
		key, ok := keyvals[i].(string)
		if !ok {
			key = fmt.Sprint(keyvals[i])
		}
		switch v := keyvals[i+1].(type) {
		case error:
			e = e.AnErr(key, v)
		case time.Duration:
			e = e.Str(key, v.String())
		default:
			e = e.Interface(key, v)
		}
	}
	e.Msg(msg)
}
