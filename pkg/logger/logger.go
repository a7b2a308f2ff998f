package logger

import (
	"fmt"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	global *zap.Logger
	mu     sync.RWMutex
)

func init() { // a usable logger must exist before Init runs
	global = zap.NewNop()
}

// Options controls how the global logger is built.
type Options struct {
	Level    string // debug, info, warn, error
	Encoding string // json (default) or console
}

// Init builds and installs the global logger.
func Init(opts Options) error {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(opts.Level)); err != nil {
		level = zapcore.InfoLevel
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(level)
	if opts.Encoding == "console" {
		cfg.Encoding = "console"
		cfg.EncoderConfig = zap.NewDevelopmentEncoderConfig()
	}

	built, err := cfg.Build()
	if err != nil {
		return fmt.Errorf("logger: build: %w", err)
	}

	mu.Lock()
	defer mu.Unlock()
	global = built
	return nil
}

// L returns the configured global logger.
func L() *zap.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return global
}

// WithModule returns a child logger annotated with the module name.
func WithModule(module string) *zap.Logger {
	return L().With(zap.String("module", module))
}

// Sync flushes buffered log entries.
func Sync() error {
	return L().Sync()
}

// ReplaceForTest installs a custom logger and returns a restore function.
func ReplaceForTest(l *zap.Logger) func() {
	mu.Lock()
	previous := global
	global = l
	mu.Unlock()

	return func() {
		mu.Lock()
		global = previous
		mu.Unlock()
	}
}
