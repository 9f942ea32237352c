package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Logger es la interfaz de logging de la aplicación
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
	Debug(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
	With(keysAndValues ...interface{}) Logger
}

// Options configura el logger
type Options struct {
	Level  string // debug, info, warn, error
	Format string // console o json
	Out    io.Writer
}

// ZeroLogger implementa Logger sobre zerolog
type ZeroLogger struct {
	zl zerolog.Logger
}

// NewLogger crea una nueva instancia de Logger
func NewLogger(opts Options) Logger {
	return &ZeroLogger{zl: NewZerolog(opts)}
}

// NewZerolog crea el zerolog.Logger base, también usado como logger global
func NewZerolog(opts Options) zerolog.Logger {
	out := opts.Out
	if out == nil {
		out = os.Stdout
	}
	if strings.EqualFold(opts.Format, "console") {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}
	level, err := zerolog.ParseLevel(strings.ToLower(opts.Level))
	if err != nil || opts.Level == "" {
		level = zerolog.InfoLevel
	}
	return zerolog.New(out).Level(level).With().Timestamp().Logger()
}

// Nop devuelve un logger que descarta todo
func Nop() Logger {
	return &ZeroLogger{zl: zerolog.Nop()}
}

// Info registra un mensaje informativo
func (l *ZeroLogger) Info(msg string, keysAndValues ...interface{}) {
	l.zl.Info().Fields(keysAndValues).Msg(msg)
}

// Error registra un mensaje de error
func (l *ZeroLogger) Error(msg string, keysAndValues ...interface{}) {
	l.zl.Error().Fields(keysAndValues).Msg(msg)
}

// Debug registra un mensaje de depuración
func (l *ZeroLogger) Debug(msg string, keysAndValues ...interface{}) {
	l.zl.Debug().Fields(keysAndValues).Msg(msg)
}

// Warn registra una advertencia
func (l *ZeroLogger) Warn(msg string, keysAndValues ...interface{}) {
	l.zl.Warn().Fields(keysAndValues).Msg(msg)
}

// With devuelve un logger hijo con campos fijos
func (l *ZeroLogger) With(keysAndValues ...interface{}) Logger {
	return &ZeroLogger{zl: l.zl.With().Fields(keysAndValues).Logger()}
}
