package logger

import (
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	global *zap.Logger
	mu     sync.RWMutex
)

func init() { // a usable no-op logger must exist before Init runs
	global = zap.NewNop()
}

// Init builds the global production logger at the requested level.
// Unknown level strings fall back to info.
func Init(level string) error {
	cfg := zap.NewProductionConfig()

	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = zapcore.InfoLevel
	}
	cfg.Level = zap.NewAtomicLevelAt(lvl)

	built, err := cfg.Build()
	if err != nil {
		return err
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
