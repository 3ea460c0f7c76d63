// Package obslog is the round pipeline's structured logger: a narrow
// interface over zap, shaped after the teacher consensus module's log
// package without its Lux-node-specific surface (Fatal/Verbo/slog
// plumbing, node lifecycle hooks).
package obslog

import "go.uber.org/zap"

// Logger is the structured logging contract every round-pipeline
// component takes instead of talking to zap directly.
type Logger interface {
	Debug(msg string, fields ...zap.Field)
	Info(msg string, fields ...zap.Field)
	Warn(msg string, fields ...zap.Field)
	Error(msg string, fields ...zap.Field)
	With(fields ...zap.Field) Logger
}

type zapLogger struct {
	z *zap.Logger
}

// New wraps a *zap.Logger as a Logger.
func New(z *zap.Logger) Logger {
	return &zapLogger{z: z}
}

// NewProduction returns a Logger backed by zap's production config
// (JSON encoding, info level).
func NewProduction() (Logger, error) {
	z, err := zap.NewProduction()
	if err != nil {
		return nil, err
	}
	return New(z), nil
}

// NewNop returns a Logger that discards everything, for tests.
func NewNop() Logger {
	return New(zap.NewNop())
}

func (l *zapLogger) Debug(msg string, fields ...zap.Field) { l.z.Debug(msg, fields...) }
func (l *zapLogger) Info(msg string, fields ...zap.Field)  { l.z.Info(msg, fields...) }
func (l *zapLogger) Warn(msg string, fields ...zap.Field)  { l.z.Warn(msg, fields...) }
func (l *zapLogger) Error(msg string, fields ...zap.Field) { l.z.Error(msg, fields...) }

func (l *zapLogger) With(fields ...zap.Field) Logger {
	return &zapLogger{z: l.z.With(fields...)}
}
