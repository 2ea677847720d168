package logger

import (
	"os"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Level represents logging level
type Level int

const (
	LevelError Level = iota
	LevelInfo
	LevelDebug
)

var (
	mu      sync.RWMutex
	enabled bool
	level   Level = LevelError
	base          = zap.NewNop()
)

// Init configures logger from environment variables.
// Supported vars:
//
//	LOG=1            -> enable at info level
//	LOG_LEVEL=debug  -> enable at debug level (info/error also supported)
func Init() {
	on, lv := false, LevelError
	if os.Getenv("LOG") == "1" {
		on = true
		lv = LevelInfo
	}
	if v := strings.ToLower(strings.TrimSpace(os.Getenv("LOG_LEVEL"))); v != "" {
		on = true
		switch v {
		case "debug":
			lv = LevelDebug
		case "info":
			lv = LevelInfo
		case "error":
			lv = LevelError
		case "off", "none", "0":
			on = false
		default:
			// unknown -> keep enabled but at error level
			lv = LevelError
		}
	}
	Set(on, lv)
}

// Set replaces the active configuration.
func Set(on bool, lv Level) {
	l := zap.NewNop()
	if on {
		cfg := zap.NewProductionConfig()
		cfg.Level = zap.NewAtomicLevelAt(lv.zapLevel())
		cfg.DisableStacktrace = true
		if built, err := cfg.Build(); err == nil {
			l = built
		}
	}
	Use(on, lv, l)
}

// Use installs l as the underlying logger. Tests use it with zaptest/observer.
func Use(on bool, lv Level, l *zap.Logger) {
	mu.Lock()
	defer mu.Unlock()
	enabled, level, base = on, lv, l
}

func (l Level) zapLevel() zapcore.Level {
	switch l {
	case LevelDebug:
		return zapcore.DebugLevel
	case LevelInfo:
		return zapcore.InfoLevel
	default:
		return zapcore.ErrorLevel
	}
}

func Enabled() bool {
	mu.RLock()
	defer mu.RUnlock()
	return enabled
}

// L returns the structured logger. It is a no-op logger while logging is off.
func L() *zap.Logger {
	mu.RLock()
	defer mu.RUnlock()
	if !enabled {
		return zap.NewNop()
	}
	return base
}

func Sync() {
	_ = L().Sync()
}

func allowed(lv Level) bool {
	mu.RLock()
	defer mu.RUnlock()
	return enabled && level >= lv
}

func Debugf(format string, v ...any) {
	if !allowed(LevelDebug) {
		return
	}
	L().Sugar().Debugf(format, v...)
}

func Infof(format string, v ...any) {
	if !allowed(LevelInfo) {
		return
	}
	L().Sugar().Infof(format, v...)
}

func Errorf(format string, v ...any) {
	if !allowed(LevelError) {
		return
	}
	L().Sugar().Errorf(format, v...)
}
