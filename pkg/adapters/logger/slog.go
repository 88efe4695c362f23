package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	slogmulti "github.com/samber/slog-multi"
	"github.com/user/ainspire/pkg/ports"
)

// SlogLogger adapts a *slog.Logger to ports.Logger. It is used when a log
// file is configured: text goes to stderr and JSON records to the file.
type SlogLogger struct {
	logger    *slog.Logger
	translate TranslateFunc
}

// NewFileLogger creates a logger that writes text to stderr and JSON lines
// to logFile. The returned cleanup closes the file.
func NewFileLogger(logFile string, level ports.LogLevel) (*SlogLogger, func() error, error) {
	file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	return NewSlogWithWriters(os.Stderr, file, level), file.Close, nil
}

// NewSlogWithWriters fans records out to a text handler on console and a
// JSON handler on file.
func NewSlogWithWriters(console, file io.Writer, level ports.LogLevel) *SlogLogger {
	opts := &slog.HandlerOptions{Level: slogLevel(level)}
	handler := slogmulti.Fanout(
		slog.NewTextHandler(console, opts),
		slog.NewJSONHandler(file, opts),
	)
	return &SlogLogger{logger: slog.New(handler), translate: sprintf}
}

// WithTranslator returns a copy of the logger that translates with fn.
func (l *SlogLogger) WithTranslator(fn TranslateFunc) *SlogLogger {
	return &SlogLogger{logger: l.logger, translate: fn}
}

func (l *SlogLogger) Debug(msg string, args ...interface{}) {
	l.log(slog.LevelDebug, msg, args...)
}

func (l *SlogLogger) Info(msg string, args ...interface{}) {
	l.log(slog.LevelInfo, msg, args...)
}

func (l *SlogLogger) Warn(msg string, args ...interface{}) {
	l.log(slog.LevelWarn, msg, args...)
}

func (l *SlogLogger) Error(msg string, args ...interface{}) {
	l.log(slog.LevelError, msg, args...)
}

// WithComponent adds a component attribute to every record.
func (l *SlogLogger) WithComponent(component string) ports.Logger {
	return &SlogLogger{
		logger:    l.logger.With("component", component),
		translate: l.translate,
	}
}

func (l *SlogLogger) log(level slog.Level, msg string, args ...interface{}) {
	ctx := context.Background()
	if !l.logger.Enabled(ctx, level) {
		return
	}
	l.logger.Log(ctx, level, l.translate(msg, args...))
}

// slogLevel maps LevelQuiet above every slog level.
func slogLevel(level ports.LogLevel) slog.Level {
	switch level {
	case ports.LevelDebug:
		return slog.LevelDebug
	case ports.LevelInfo:
		return slog.LevelInfo
	case ports.LevelWarn:
		return slog.LevelWarn
	case ports.LevelError:
		return slog.LevelError
	default:
		return slog.LevelError + 4
	}
}

var _ ports.Logger = (*SlogLogger)(nil)
