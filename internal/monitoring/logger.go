// Package monitoring owns the process logger. Call sites that only need a
// formatted line use Logf; call sites that attach fields use L.
package monitoring

import (
	"fmt"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	logMu sync.RWMutex
	log   = zap.NewNop()
)

// Logf is the package-level diagnostic logger. Init points it at the zap
// sugared logger; SetLogger may replace it. Tests can redirect or mute it.
var Logf func(format string, v ...interface{}) = func(format string, v ...interface{}) {
	L().Sugar().Infof(format, v...)
}

// SetLogger replaces Logf. Passing nil will set a no-op logger.
func SetLogger(f func(format string, v ...interface{})) {
	if f == nil {
		Logf = func(string, ...interface{}) {}
		return
	}
	Logf = f
}

// Init builds a production (JSON) or development (console) zap logger at the
// given level and installs it as the package and zap global logger.
func Init(level string, development bool) error {
	cfg := zap.NewProductionConfig()
	if development {
		cfg = zap.NewDevelopmentConfig()
	}
	cfg.EncoderConfig.TimeKey = "timestamp"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	if level != "" {
		lvl, err := zapcore.ParseLevel(level)
		if err != nil {
			return fmt.Errorf("log level: %w", err)
		}
		cfg.Level = zap.NewAtomicLevelAt(lvl)
	}

	l, err := cfg.Build()
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	Use(l)
	return nil
}

// Use installs l as the package and zap global logger and routes Logf to it.
func Use(l *zap.Logger) {
	logMu.Lock()
	old := log
	log = l
	logMu.Unlock()

	_ = old.Sync()
	zap.ReplaceGlobals(l)
	sugar := l.Sugar()
	SetLogger(sugar.Infof)
}

// L returns the structured logger. It is never nil.
func L() *zap.Logger {
	logMu.RLock()
	defer logMu.RUnlock()
	return log
}

// Sync flushes buffered log entries.
func Sync() {
	_ = L().Sync()
}
