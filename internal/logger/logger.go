package logger

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger is the structured logging surface shared across packages.
type Logger interface {
	InfoObj(msg, key string, obj interface{})
	DebugObj(msg, key string, obj interface{})
	WarnObj(msg, key string, obj interface{})
	ErrorObj(msg, key string, obj interface{})
}

// zapLogger implements Logger on top of a zap core.
type zapLogger struct {
	log *zap.Logger
}

// Init initializes a zap-backed Logger at the given level.
func Init(level string) (Logger, error) {
	var lvl zapcore.Level
	switch level {
	case "debug":
		lvl = zapcore.DebugLevel
	case "info":
		lvl = zapcore.InfoLevel
	case "warn", "warning":
		lvl = zapcore.WarnLevel
	case "error":
		lvl = zapcore.ErrorLevel
	default:
		lvl = zapcore.InfoLevel
	}

	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "ts"
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderCfg),
		zapcore.AddSync(zapcore.Lock(os.Stdout)),
		lvl,
	)

	log := zap.New(core, zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel))
	return &zapLogger{log: log}, nil
}

func (z *zapLogger) InfoObj(msg, key string, obj interface{}) {
	z.log.Info(msg, zap.Any(key, obj))
}

func (z *zapLogger) DebugObj(msg, key string, obj interface{}) {
	z.log.Debug(msg, zap.Any(key, obj))
}

func (z *zapLogger) WarnObj(msg, key string, obj interface{}) {
	z.log.Warn(msg, zap.Any(key, obj))
}

func (z *zapLogger) ErrorObj(msg, key string, obj interface{}) {
	z.log.Error(msg, zap.Any(key, obj))
}

// Sync flushes buffered log entries when the underlying implementation
// supports it.
func Sync(l Logger) error {
	if z, ok := l.(*zapLogger); ok {
		return z.log.Sync()
	}
	return nil
}

// NopLogger discards everything.
type NopLogger struct{}

func (NopLogger) InfoObj(string, string, interface{})  {}
func (NopLogger) DebugObj(string, string, interface{}) {}
func (NopLogger) WarnObj(string, string, interface{})  {}
func (NopLogger) ErrorObj(string, string, interface{}) {}
