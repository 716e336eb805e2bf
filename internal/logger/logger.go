package logger

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"

	"example.com/spahttpd/internal/config"
)

// LogFields carries structured context attached to a single log entry.
type LogFields map[string]interface{}

// Logger bundles the error log and the optional access log. Both are
// zerolog-backed; the error log honours the configured minimum level, the
// access log writes one entry per handled connection.
type Logger struct {
	errorLog  zerolog.Logger
	accessLog *zerolog.Logger

	// files opened for file targets, closed by CloseLogFiles.
	files []*os.File
}

// NewLogger creates and configures a new Logger instance.
func NewLogger(cfg *config.LoggingConfig) (*Logger, error) {
	if cfg == nil {
		return nil, fmt.Errorf("logging configuration cannot be nil")
	}

	l := &Logger{}

	errorTarget := "stderr"
	if cfg.ErrorLog != nil && cfg.ErrorLog.Target != "" {
		errorTarget = cfg.ErrorLog.Target
	}
	errorOut, err := l.openTarget(errorTarget)
	if err != nil {
		return nil, fmt.Errorf("failed to open error log target %s: %w", errorTarget, err)
	}
	l.errorLog = zerolog.New(errorOut).
		Level(zerologLevel(cfg.LogLevel)).
		With().Timestamp().Logger()

	if cfg.AccessLog != nil && (cfg.AccessLog.Enabled == nil || *cfg.AccessLog.Enabled) {
		accessTarget := "stdout"
		if cfg.AccessLog.Target != "" {
			accessTarget = cfg.AccessLog.Target
		}
		accessOut, err := l.openTarget(accessTarget)
		if err != nil {
			l.CloseLogFiles()
			return nil, fmt.Errorf("failed to open access log target %s: %w", accessTarget, err)
		}
		if cfg.AccessLog.Format != "" && cfg.AccessLog.Format != "json" {
			accessOut = zerolog.ConsoleWriter{Out: accessOut, NoColor: true, TimeFormat: time.RFC3339}
		}
		al := zerolog.New(accessOut).With().Timestamp().Logger()
		l.accessLog = &al
	}

	return l, nil
}

// NewDiscardLogger returns a Logger that drops everything. Intended for tests
// and as a safety net when a component is handed a nil logger.
func NewDiscardLogger() *Logger {
	l := &Logger{errorLog: zerolog.New(io.Discard)}
	return l
}

// NewWriterLogger returns a Logger emitting both error and access entries to
// w at DEBUG level. Intended for tests that inspect log output.
func NewWriterLogger(w io.Writer) *Logger {
	el := zerolog.New(w).Level(zerolog.DebugLevel).With().Timestamp().Logger()
	al := zerolog.New(w).With().Timestamp().Logger()
	return &Logger{errorLog: el, accessLog: &al}
}

func (l *Logger) openTarget(target string) (io.Writer, error) {
	switch target {
	case "stdout":
		return os.Stdout, nil
	case "stderr":
		return os.Stderr, nil
	}
	f, err := os.OpenFile(target, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, err
	}
	l.files = append(l.files, f)
	return f, nil
}

func zerologLevel(level config.LogLevel) zerolog.Level {
	switch level {
	case config.LogLevelDebug:
		return zerolog.DebugLevel
	case config.LogLevelInfo:
		return zerolog.InfoLevel
	case config.LogLevelWarning:
		return zerolog.WarnLevel
	case config.LogLevelError:
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

func applyFields(ev *zerolog.Event, fields LogFields) *zerolog.Event {
	for k, v := range fields {
		ev = ev.Interface(k, v)
	}
	return ev
}

func (l *Logger) Debug(msg string, fields LogFields) {
	applyFields(l.errorLog.Debug(), fields).Msg(msg)
}

func (l *Logger) Info(msg string, fields LogFields) {
	applyFields(l.errorLog.Info(), fields).Msg(msg)
}

func (l *Logger) Warn(msg string, fields LogFields) {
	applyFields(l.errorLog.Warn(), fields).Msg(msg)
}

func (l *Logger) Error(msg string, fields LogFields) {
	applyFields(l.errorLog.Error(), fields).Msg(msg)
}

// Access writes one access log entry for a handled connection.
func (l *Logger) Access(remoteAddr, path string, status int, responseBytes int64, duration time.Duration) {
	if l.accessLog == nil {
		return
	}
	l.accessLog.Log().
		Str("remote_addr", remoteAddr).
		Str("path", path).
		Int("status", status).
		Int64("resp_bytes", responseBytes).
		Dur("duration", duration).
		Send()
}

// CloseLogFiles closes any file-backed log targets. Called during shutdown.
func (l *Logger) CloseLogFiles() {
	for _, f := range l.files {
		f.Close()
	}
	l.files = nil
}
