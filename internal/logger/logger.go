package logger

import (
	"os"

	"github.com/toolpedia-hq/toolpedia-harvester/internal/config"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger defines the logging surface components rely on.
type Logger interface {
	InfoObj(msg, key string, obj interface{})
	DebugObj(msg, key string, obj interface{})
	WarnObj(msg, key string, obj interface{})
	ErrorObj(msg, key string, obj interface{})
}

// Package-level logger to be used across packages after Init.
var S *zap.SugaredLogger

// Init initializes a zap SugaredLogger using settings from config and returns
// a Logger for injection.
func Init(cfg *config.Config) (Logger, error) {
	var level zapcore.Level
	switch cfg.LogLevel {
	case "debug":
		level = zapcore.DebugLevel
	case "info":
		level = zapcore.InfoLevel
	case "warn", "warning":
		level = zapcore.WarnLevel
	case "error":
		level = zapcore.ErrorLevel
	default:
		level = zapcore.InfoLevel
	}

	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "ts"
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderCfg),
		zapcore.AddSync(zapcore.Lock(os.Stdout)),
		level,
	)

	logger := zap.New(core, zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel))
	S = logger.Sugar()
	return &ZapLogger{s: S}, nil
}

// Close flushes any buffered loggers.
func Close() error {
	if S == nil {
		return nil
	}
	return S.Sync()
}

// ZapLogger adapts a zap SugaredLogger to the Logger interface.
type ZapLogger struct {
	s *zap.SugaredLogger
}

func (z *ZapLogger) log(level zapcore.Level, msg, key string, obj interface{}) {
	if z == nil || z.s == nil {
		return
	}
	switch level {
	case zapcore.DebugLevel:
		z.s.Desugar().Debug(msg, zap.Any(key, obj))
	case zapcore.WarnLevel:
		z.s.Desugar().Warn(msg, zap.Any(key, obj))
	case zapcore.ErrorLevel:
		z.s.Desugar().Error(msg, zap.Any(key, obj))
	default:
		z.s.Desugar().Info(msg, zap.Any(key, obj))
	}
}

func (z *ZapLogger) InfoObj(msg, key string, obj interface{})  { z.log(zapcore.InfoLevel, msg, key, obj) }
func (z *ZapLogger) DebugObj(msg, key string, obj interface{}) { z.log(zapcore.DebugLevel, msg, key, obj) }
func (z *ZapLogger) WarnObj(msg, key string, obj interface{})  { z.log(zapcore.WarnLevel, msg, key, obj) }
func (z *ZapLogger) ErrorObj(msg, key string, obj interface{}) { z.log(zapcore.ErrorLevel, msg, key, obj) }

// NopLogger discards everything; useful as a default in constructors and tests.
type NopLogger struct{}

func (NopLogger) InfoObj(string, string, interface{})  {}
func (NopLogger) DebugObj(string, string, interface{}) {}
func (NopLogger) WarnObj(string, string, interface{})  {}
func (NopLogger) ErrorObj(string, string, interface{}) {}

// Minimal object logging helpers -------------------------------------------------
// These log the given object as a structured field named `key` via the
// package-level logger; safe to call before Init.
func InfoObj(msg, key string, obj interface{}) {
	if S == nil {
		return
	}
	S.Desugar().Info(msg, zap.Any(key, obj))
}

func DebugObj(msg, key string, obj interface{}) {
	if S == nil {
		return
	}
	S.Desugar().Debug(msg, zap.Any(key, obj))
}

func WarnObj(msg, key string, obj interface{}) {
	if S == nil {
		return
	}
	S.Desugar().Warn(msg, zap.Any(key, obj))
}

func ErrorObj(msg, key string, obj interface{}) {
	if S == nil {
		return
	}
	S.Desugar().Error(msg, zap.Any(key, obj))
}
