package logger

import "go.temporal.io/sdk/log"

// temporalLogger exposes Logger through the Temporal SDK logging interface
type temporalLogger struct {
	logger *Logger
}

var _ log.WithLogger = (*temporalLogger)(nil)

// GetTemporalLogger returns a logger the Temporal client and worker can use
func (l *Logger) GetTemporalLogger() log.Logger {
	return &temporalLogger{logger: l}
}

func (t *temporalLogger) Debug(msg string, keyvals ...interface{}) {
	t.logger.Debugw(msg, keyvals...)
}

func (t *temporalLogger) Info(msg string, keyvals ...interface{}) {
	t.logger.Infow(msg, keyvals...)
}

func (t *temporalLogger) Warn(msg string, keyvals ...interface{}) {
	t.logger.Warnw(msg, keyvals...)
}

func (t *temporalLogger) Error(msg string, keyvals ...interface{}) {
	t.logger.Errorw(msg, keyvals...)
}

// With keeps workflow and activity tags attached to every following entry
func (t *temporalLogger) With(keyvals ...interface{}) log.Logger {
	return &temporalLogger{logger: &Logger{SugaredLogger: t.logger.SugaredLogger.With(keyvals...)}}
}
