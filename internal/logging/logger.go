package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	clog "github.com/charmbracelet/log"

	"github.com/cristianoliveira/appfeed/internal/colors"
)

// Logger is the structured logging interface.
type Logger interface {
	// Debug logs a debug message.
	Debug(msg string, args ...any)
	// Info logs an informational message.
	Info(msg string, args ...any)
	// Warn logs a warning message.
	Warn(msg string, args ...any)
	// Error logs an error message.
	Error(msg string, args ...any)
	// With returns a new logger with additional key-value pairs.
	With(args ...any) Logger
	// Shutdown flushes any buffered logs and releases resources.
	Shutdown() error
}

// loggerImpl is the charmbracelet/log based implementation.
type loggerImpl struct {
	mu       *sync.Mutex
	clogger  *clog.Logger
	file     *os.File
	redactor *redactor
	fields   []any
	path     string
}

// Init creates a Logger for cfg. A disabled config yields a no-op logger.
// With cfg.Console set, lines go to that writer in text form; otherwise a
// new JSON log file is opened under LogDir after rotating old ones.
func Init(cfg Config) (Logger, error) {
	if !cfg.Enabled {
		return noopLogger{}, nil
	}
	if cfg.Console != nil {
		clogger := clog.NewWithOptions(cfg.Console, clog.Options{
			ReportTimestamp: true,
			TimeFormat:      time.DateTime,
			Level:           parseLevel(cfg.Level),
			Prefix:          cfg.Command,
		})
		return &loggerImpl{mu: &sync.Mutex{}, clogger: clogger, redactor: newRedactor()}, nil
	}

	logDir, err := LogDir()
	if err != nil {
		return nil, fmt.Errorf("failed to determine log directory: %w", err)
	}
	if err := rotate(logDir, cfg.MaxFiles); err != nil {
		fmt.Fprintf(os.Stderr, "log rotation failed: %v\n", err)
	}
	fname := fmt.Sprintf("%s%s_PID%d_%s.log",
		filePrefix,
		time.Now().Format("20060102_150405"),
		cfg.PID,
		strings.ReplaceAll(cfg.Command, " ", "_"))
	path := filepath.Join(logDir, fname)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}

	clogger := clog.NewWithOptions(f, clog.Options{
		ReportTimestamp: true,
		TimeFormat:      time.RFC3339Nano,
		Level:           parseLevel(cfg.Level),
		Formatter:       clog.JSONFormatter,
	})
	clogger = clogger.With("pid", cfg.PID, "command", cfg.Command)
	return &loggerImpl{
		mu:       &sync.Mutex{},
		clogger:  clogger,
		file:     f,
		redactor: newRedactor(),
		path:     path,
	}, nil
}

func parseLevel(level string) clog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return clog.DebugLevel
	case "warn", "warning":
		return clog.WarnLevel
	case "error":
		return clog.ErrorLevel
	default:
		return clog.InfoLevel
	}
}

func (l *loggerImpl) Debug(msg string, args ...any) { l.log(clog.DebugLevel, msg, args) }
func (l *loggerImpl) Info(msg string, args ...any)  { l.log(clog.InfoLevel, msg, args) }
func (l *loggerImpl) Warn(msg string, args ...any)  { l.log(clog.WarnLevel, msg, args) }
func (l *loggerImpl) Error(msg string, args ...any) { l.log(clog.ErrorLevel, msg, args) }

func (l *loggerImpl) log(level clog.Level, msg string, args []any) {
	all := make([]any, 0, len(l.fields)+len(args))
	all = append(all, l.fields...)
	all = append(all, args...)

	l.mu.Lock()
	defer l.mu.Unlock()
	l.clogger.Log(level, msg, l.redactor.redact(all)...)
}

// With returns a child logger sharing the same sink.
func (l *loggerImpl) With(args ...any) Logger {
	fields := make([]any, 0, len(l.fields)+len(args))
	fields = append(fields, l.fields...)
	fields = append(fields, args...)
	child := *l
	child.fields = fields
	return &child
}

func (l *loggerImpl) Shutdown() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file == nil {
		return nil
	}
	err := l.file.Close()
	l.file = nil
	return err
}

// noopLogger is a logger that discards all output.
type noopLogger struct{}

func (n noopLogger) Debug(msg string, args ...any) {}
func (n noopLogger) Info(msg string, args ...any)  {}
func (n noopLogger) Warn(msg string, args ...any)  {}
func (n noopLogger) Error(msg string, args ...any) {}
func (n noopLogger) With(args ...any) Logger       { return n }
func (n noopLogger) Shutdown() error               { return nil }

var (
	globalLogger     Logger
	globalLoggerOnce sync.Once
	globalLoggerMu   sync.RWMutex
)

// InitGlobal initializes the global logger from the global configuration.
// Only the first call has an effect.
func InitGlobal() error {
	var err error
	globalLoggerOnce.Do(func() {
		var l Logger
		l, err = Init(FromGlobalConfig())
		if err == nil {
			SetGlobal(l)
		}
	})
	if err == nil {
		if path := CurrentLogFile(); path != "" {
			colors.Debug("Logging to file:", path)
		}
	}
	return err
}

// SetGlobal installs l as the global logger, mirrors console output into it
// and returns the previous logger. A nil l restores the no-op logger.
func SetGlobal(l Logger) Logger {
	globalLoggerMu.Lock()
	prev := globalLogger
	globalLogger = l
	globalLoggerMu.Unlock()

	colors.SetLogger(l)
	if prev == nil {
		return noopLogger{}
	}
	return prev
}

// GetGlobal returns the global logger, or a no-op logger if not initialized.
func GetGlobal() Logger {
	globalLoggerMu.RLock()
	defer globalLoggerMu.RUnlock()
	if globalLogger == nil {
		return noopLogger{}
	}
	return globalLogger
}

// Debug logs a debug message using the global logger.
func Debug(msg string, args ...any) {
	GetGlobal().Debug(msg, args...)
}

// Info logs an info message using the global logger.
func Info(msg string, args ...any) {
	GetGlobal().Info(msg, args...)
}

// Warn logs a warning message using the global logger.
func Warn(msg string, args ...any) {
	GetGlobal().Warn(msg, args...)
}

// Error logs an error message using the global logger.
func Error(msg string, args ...any) {
	GetGlobal().Error(msg, args...)
}

// With returns a new global logger with additional key-value pairs.
func With(args ...any) Logger {
	return GetGlobal().With(args...)
}

// ShutdownGlobal shuts down the global logger.
func ShutdownGlobal() error {
	return GetGlobal().Shutdown()
}

// CurrentLogFile returns the path of the active log file, or "" when the
// global logger does not write to a file.
func CurrentLogFile() string {
	if impl, ok := GetGlobal().(*loggerImpl); ok {
		return impl.path
	}
	return ""
}
