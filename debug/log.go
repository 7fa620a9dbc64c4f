package debug

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	mu      sync.Mutex
	logger  = zap.NewNop()
	file    *os.File
	enabled bool
)

// DefaultPath is where Enable writes when no path is given.
func DefaultPath() string {
	homeDir, _ := os.UserHomeDir()
	return filepath.Join(homeDir, ".config", "apcmini", "debug.log")
}

func encoderConfig() zapcore.EncoderConfig {
	cfg := zap.NewDevelopmentEncoderConfig()
	cfg.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05.000")
	cfg.EncodeLevel = zapcore.CapitalLevelEncoder
	cfg.EncodeCaller = nil
	return cfg
}

// Enable starts debug logging to path (truncated), or DefaultPath if empty.
func Enable(path string) error {
	mu.Lock()
	defer mu.Unlock()

	if enabled {
		return nil
	}
	if path == "" {
		path = DefaultPath()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create log dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return err
	}

	core := zapcore.NewCore(zapcore.NewConsoleEncoder(encoderConfig()), zapcore.Lock(f), zapcore.DebugLevel)
	logger = zap.New(core)
	file = f
	enabled = true
	logger.Info("=== Debug logging started ===", zap.String("category", "debug"))
	return nil
}

// EnableConsole logs to stderr at the given level ("debug", "info", "warn", "error").
func EnableConsole(level string) error {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("log level: %w", err)
	}
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(encoderConfig()), zapcore.Lock(os.Stderr), lvl)
	SetLogger(zap.New(core))
	return nil
}

// SetLogger replaces the backing logger. Passing nil disables logging.
func SetLogger(l *zap.Logger) {
	mu.Lock()
	defer mu.Unlock()
	if l == nil {
		logger, enabled = zap.NewNop(), false
		return
	}
	logger, enabled = l, true
}

// Logger returns the current backing logger.
func Logger() *zap.Logger {
	mu.Lock()
	defer mu.Unlock()
	return logger
}

// Disable stops debug logging
func Disable() {
	mu.Lock()
	defer mu.Unlock()

	_ = logger.Sync()
	if file != nil {
		file.Close()
		file = nil
	}
	logger = zap.NewNop()
	enabled = false
}

func current() (*zap.Logger, bool) {
	mu.Lock()
	defer mu.Unlock()
	return logger, enabled
}

// Log writes a debug message under category.
func Log(category, format string, args ...any) {
	l, ok := current()
	if !ok || !l.Core().Enabled(zapcore.DebugLevel) {
		return
	}
	l.Debug(fmt.Sprintf(format, args...), zap.String("category", category))
}

// Warn writes a warning under category. Used for failures that are swallowed.
func Warn(category, format string, args ...any) {
	l, ok := current()
	if !ok {
		return
	}
	l.Warn(fmt.Sprintf(format, args...), zap.String("category", category))
}

// LogEvery logs only every N calls (use for high-frequency events)
var counters = make(map[string]int)

func LogEvery(n int, category, format string, args ...any) {
	mu.Lock()
	key := category + format
	counters[key]++
	count := counters[key]
	mu.Unlock()

	if n > 0 && count%n == 0 {
		Log(category, format+" (every %d, count=%d)", append(args, n, count)...)
	}
}
