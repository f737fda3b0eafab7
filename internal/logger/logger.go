// Package logger is a thin structured logging layer over zerolog.
package logger

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Logger wraps zerolog so the rest of DocDeck never imports it directly.
type Logger struct {
	zlog zerolog.Logger
}

// Fields are structured key/value pairs attached to one entry.
// Keys are written in sorted order.
type Fields map[string]interface{}

// Config holds logger configuration
type Config struct {
	Level      string // debug, info, warn, error
	Format     string // json, console
	TimeFormat string // rfc3339, unix, unixms, unixmicro
	Output     io.Writer
}

// DefaultConfig returns production defaults: JSON lines on stdout at info.
func DefaultConfig() *Config {
	return &Config{
		Level:      "info",
		Format:     "json",
		TimeFormat: "rfc3339",
		Output:     os.Stdout,
	}
}

// ValidLevel reports whether level is understood by New.
func ValidLevel(level string) bool {
	switch level {
	case "debug", "info", "warn", "error", "fatal":
		return true
	}
	return false
}

// ValidFormat reports whether format is understood by New.
func ValidFormat(format string) bool {
	return format == "json" || format == "console"
}

// New creates a logger from cfg. A nil cfg means DefaultConfig.
// The level applies to the logger itself, so a quiet logger and a verbose
// one can coexist in tests.
func New(cfg *Config) *Logger {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	out := cfg.Output
	if out == nil {
		out = os.Stdout
	}

	zerolog.TimeFieldFormat = timeFormat(cfg.TimeFormat)

	var zlog zerolog.Logger
	if cfg.Format == "console" {
		zlog = zerolog.New(zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}).
			With().Timestamp().Logger()
	} else {
		zlog = zerolog.New(out).With().Timestamp().Caller().Logger()
	}

	return &Logger{zlog: zlog.Level(parseLevel(cfg.Level))}
}

// Nop returns a logger that discards everything. Handy in tests.
func Nop() *Logger {
	return &Logger{zlog: zerolog.Nop()}
}

// WithContext stores l in ctx for FromContext.
func (l *Logger) WithContext(ctx context.Context) context.Context {
	return l.zlog.WithContext(ctx)
}

// FromContext retrieves the logger stored by WithContext, falling back to
// the global logger.
func FromContext(ctx context.Context) *Logger {
	zlog := zerolog.Ctx(ctx)
	if zlog.GetLevel() == zerolog.Disabled {
		return global
	}
	return &Logger{zlog: *zlog}
}

// With starts a child logger carrying extra fields on every entry.
func (l *Logger) With() *Context {
	return &Context{ctx: l.zlog.With()}
}

// Component is shorthand for a child logger tagged with the subsystem name.
func (l *Logger) Component(name string) *Logger {
	return l.With().Str("component", name).Logger()
}

// Context builds a child logger.
type Context struct {
	ctx zerolog.Context
}

func (c *Context) Str(key, val string) *Context {
	c.ctx = c.ctx.Str(key, val)
	return c
}

func (c *Context) Int(key string, val int) *Context {
	c.ctx = c.ctx.Int(key, val)
	return c
}

func (c *Context) Bool(key string, val bool) *Context {
	c.ctx = c.ctx.Bool(key, val)
	return c
}

func (c *Context) Logger() *Logger {
	return &Logger{zlog: c.ctx.Logger()}
}

func (l *Logger) Debug(msg string) { l.zlog.Debug().Msg(msg) }
func (l *Logger) Info(msg string)  { l.zlog.Info().Msg(msg) }
func (l *Logger) Warn(msg string)  { l.zlog.Warn().Msg(msg) }
func (l *Logger) Error(msg string) { l.zlog.Error().Msg(msg) }

// DebugWith logs msg with fields at debug level.
func (l *Logger) DebugWith(msg string, fields Fields) {
	l.zlog.Debug().Fields(map[string]interface{}(fields)).Msg(msg)
}

// InfoWith logs msg with fields at info level.
func (l *Logger) InfoWith(msg string, fields Fields) {
	l.zlog.Info().Fields(map[string]interface{}(fields)).Msg(msg)
}

// WarnWith logs msg, err and fields at warn level.
func (l *Logger) WarnWith(msg string, err error, fields Fields) {
	l.zlog.Warn().Err(err).Fields(map[string]interface{}(fields)).Msg(msg)
}

// ErrorWith logs msg, err and fields at error level.
func (l *Logger) ErrorWith(msg string, err error, fields Fields) {
	l.zlog.Error().Err(err).Fields(map[string]interface{}(fields)).Msg(msg)
}

func parseLevel(level string) zerolog.Level {
	switch level {
	case "debug":
		return zerolog.DebugLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "fatal":
		return zerolog.FatalLevel
	default:
		return zerolog.InfoLevel
	}
}

func timeFormat(format string) string {
	switch format {
	case "unix":
		return zerolog.TimeFormatUnix
	case "unixms":
		return zerolog.TimeFormatUnixMs
	case "unixmicro":
		return zerolog.TimeFormatUnixMicro
	default:
		return time.RFC3339
	}
}

var global = New(nil)

// SetGlobal replaces the process-wide fallback logger.
func SetGlobal(l *Logger) {
	global = l
}

// Global returns the process-wide fallback logger.
func Global() *Logger {
	return global
}
