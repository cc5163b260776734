package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger wraps a zap sugared logger so the rest of the codebase does not
// depend on zap directly.
type Logger struct {
	sugared *zap.SugaredLogger
}

// NewLogger builds a production logger, or a human-readable development
// logger when dev is true.
func NewLogger(dev bool) (*Logger, error) {
	config := zap.NewProductionConfig()
	if dev {
		config = zap.NewDevelopmentConfig()
	}
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	logger, err := config.Build(zap.AddCallerSkip(1))
	if err != nil {
		return nil, err
	}
	return &Logger{sugared: logger.Sugar()}, nil
}

// NewNop returns a logger that discards everything. Used in tests.
func NewNop() *Logger {
	return &Logger{sugared: zap.NewNop().Sugar()}
}

func (l *Logger) Info(args ...interface{}) {
	l.sugared.Info(args...)
}

func (l *Logger) Infof(format string, args ...interface{}) {
	l.sugared.Infof(format, args...)
}

func (l *Logger) Error(args ...interface{}) {
	l.sugared.Error(args...)
}

func (l *Logger) Errorf(format string, args ...interface{}) {
	l.sugared.Errorf(format, args...)
}

func (l *Logger) Debug(args ...interface{}) {
	l.sugared.Debug(args...)
}

func (l *Logger) Warn(args ...interface{}) {
	l.sugared.Warn(args...)
}

func (l *Logger) Fatal(args ...interface{}) {
	l.sugared.Fatal(args...)
}

func (l *Logger) Fatalf(format string, args ...interface{}) {
	l.sugared.Fatalf(format, args...)
}

// Sync flushes buffered log entries. Call on shutdown.
func (l *Logger) Sync() error {
	return l.sugared.Sync()
}
