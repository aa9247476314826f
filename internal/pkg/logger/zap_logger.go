package logger

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// ILogger is the structured logger every layer receives. module names the
// component emitting the line; details become a nested JSON object.
type ILogger interface {
	Debug(module, message string, details map[string]interface{})
	Info(module, message string, details map[string]interface{})
	Warn(module, message string, details map[string]interface{})
	Error(module, message string, details map[string]interface{})
	Sync() error
}

type ZapLogger struct {
	logger *zap.Logger
}

func rotatingFile(path string) zapcore.WriteSyncer {
	return zapcore.AddSync(&lumberjack.Logger{
		Filename:   path,
		MaxSize:    10, // MB
		MaxBackups: 5,
		MaxAge:     30, // days
		Compress:   true,
	})
}

func fileEncoder() zapcore.Encoder {
	cfg := zap.NewProductionEncoderConfig()
	cfg.TimeKey = "timestamp"
	cfg.MessageKey = "message"
	cfg.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.EncodeLevel = zapcore.CapitalLevelEncoder
	return zapcore.NewJSONEncoder(cfg)
}

func wrap(core zapcore.Core) *ZapLogger {
	// skip the wrapper frame so callers show up in "caller"
	return &ZapLogger{logger: zap.New(core, zap.AddCaller(), zap.AddCallerSkip(2))}
}

// NewZapLogger writes JSON lines to a rotated file at Info and above and
// mirrors everything to stdout, in console format outside production.
func NewZapLogger(logFilePath string, isProd bool) *ZapLogger {
	console := fileEncoder()
	if !isProd {
		console = zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig())
	}
	return wrap(zapcore.NewTee(
		zapcore.NewCore(fileEncoder(), rotatingFile(logFilePath), zap.InfoLevel),
		zapcore.NewCore(console, zapcore.Lock(os.Stdout), zap.DebugLevel),
	))
}

// NewIsolatedLogger only writes to its own file. Workflow transitions and
// websocket fan-out go there so the main log stays readable.
func NewIsolatedLogger(logFilePath string) *ZapLogger {
	return wrap(zapcore.NewCore(fileEncoder(), rotatingFile(logFilePath), zap.DebugLevel))
}

// NewNopLogger discards everything.
func NewNopLogger() *ZapLogger {
	return &ZapLogger{logger: zap.NewNop()}
}

// NewCoreLogger wraps an arbitrary core, e.g. zaptest/observer in tests.
func NewCoreLogger(core zapcore.Core) *ZapLogger {
	return wrap(core)
}

func (l *ZapLogger) write(level zapcore.Level, module, message string, details map[string]interface{}) {
	ce := l.logger.Check(level, message)
	if ce == nil {
		return
	}
	if details == nil {
		details = map[string]interface{}{}
	}
	fields := []zap.Field{zap.String("module", module), zap.Any("details", details)}
	if err, ok := details["error"]; ok && level >= zapcore.ErrorLevel {
		fields = append(fields, zap.Any("error_ref", err))
	}
	ce.Write(fields...)
}

func (l *ZapLogger) Debug(module, message string, details map[string]interface{}) {
	l.write(zapcore.DebugLevel, module, message, details)
}

func (l *ZapLogger) Info(module, message string, details map[string]interface{}) {
	l.write(zapcore.InfoLevel, module, message, details)
}

func (l *ZapLogger) Warn(module, message string, details map[string]interface{}) {
	l.write(zapcore.WarnLevel, module, message, details)
}

func (l *ZapLogger) Error(module, message string, details map[string]interface{}) {
	l.write(zapcore.ErrorLevel, module, message, details)
}

func (l *ZapLogger) Sync() error {
	return l.logger.Sync()
}
