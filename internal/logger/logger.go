package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/probehq/apiprobe/internal/config"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger defines the structured logging surface shared across the harness.
// Implementations log a message together with one named object.
type Logger interface {
	InfoObj(msg, key string, obj interface{})
	DebugObj(msg, key string, obj interface{})
	WarnObj(msg, key string, obj interface{})
	ErrorObj(msg, key string, obj interface{})
}

// NopLogger discards all output. Constructors fall back to it when no
// logger is supplied.
type NopLogger struct{}

func (*NopLogger) InfoObj(string, string, interface{})  {}
func (*NopLogger) DebugObj(string, string, interface{}) {}
func (*NopLogger) WarnObj(string, string, interface{})  {}
func (*NopLogger) ErrorObj(string, string, interface{}) {}

// Package-level logger to be used across packages after Init.
var S *zap.SugaredLogger

// ZapLogger is the zap-backed Logger returned by Init.
type ZapLogger struct {
	base    *zap.Logger
	runFile string
}

// Init initializes a zap logger using settings from config: a console core
// at the configured level plus, when LogDir is set, a per-run file core at
// debug under <dir>/YYYY-MM-DD/run_HHMMSS.log.
func Init(cfg *config.Config) (*ZapLogger, error) {
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

	cores := []zapcore.Core{zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderCfg),
		zapcore.AddSync(zapcore.Lock(os.Stdout)),
		level,
	)}

	var runFile string
	if cfg.LogDir != "" {
		f, path, err := openRunFile(cfg.LogDir, time.Now())
		if err != nil {
			return nil, fmt.Errorf("open run log file: %w", err)
		}
		cores = append(cores, zapcore.NewCore(
			zapcore.NewJSONEncoder(encoderCfg),
			zapcore.AddSync(f),
			zapcore.DebugLevel,
		))
		runFile = path
	}

	base := zap.New(zapcore.NewTee(cores...), zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel))
	S = base.Sugar()
	return &ZapLogger{base: base, runFile: runFile}, nil
}

// openRunFile creates <dir>/<YYYY-MM-DD>/run_<HHMMSS>.log for appending.
func openRunFile(dir string, now time.Time) (*os.File, string, error) {
	day := filepath.Join(dir, now.Format("2006-01-02"))
	if err := os.MkdirAll(day, 0o755); err != nil {
		return nil, "", err
	}
	path := filepath.Join(day, fmt.Sprintf("run_%s.log", now.Format("150405")))
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, "", err
	}
	return f, path, nil
}

// RunFile reports the path of the per-run log file, empty when file
// logging is disabled.
func (l *ZapLogger) RunFile() string {
	if l == nil {
		return ""
	}
	return l.runFile
}

func (l *ZapLogger) InfoObj(msg, key string, obj interface{}) {
	if l == nil || l.base == nil {
		return
	}
	l.base.Info(msg, zap.Any(key, obj))
}

func (l *ZapLogger) DebugObj(msg, key string, obj interface{}) {
	if l == nil || l.base == nil {
		return
	}
	l.base.Debug(msg, zap.Any(key, obj))
}

func (l *ZapLogger) WarnObj(msg, key string, obj interface{}) {
	if l == nil || l.base == nil {
		return
	}
	l.base.Warn(msg, zap.Any(key, obj))
}

func (l *ZapLogger) ErrorObj(msg, key string, obj interface{}) {
	if l == nil || l.base == nil {
		return
	}
	l.base.Error(msg, zap.Any(key, obj))
}

// Close flushes any buffered loggers.
func Close() error {
	if S == nil {
		return nil
	}
	return S.Sync()
}

// Minimal object logging helpers -------------------------------------------------
// These are tiny wrappers that log the given object as a structured field named
// `key` and do not attempt to parse arbitrary kv arrays.
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
