package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger is the sugared zap logger every package takes by injection.
type Logger = zap.SugaredLogger

// New returns a console logger tagged with the service name. Debug lowers the
// level and adds caller info.
func New(service string, debug bool) *Logger {
	cfg := zap.NewDevelopmentConfig()
	cfg.Encoding = "console"
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.DisableStacktrace = true
	if debug {
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	} else {
		cfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
		cfg.DisableCaller = true
	}

	l, err := cfg.Build()
	if err != nil {
		l = zap.NewExample()
	}
	return l.Named(service).Sugar()
}

// Nop discards everything. Tests and headless runs use it.
func Nop() *Logger {
	return zap.NewNop().Sugar()
}
