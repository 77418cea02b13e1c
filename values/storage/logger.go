package storage

import (
	"go.uber.org/zap"
)

// badgerLogger routes badger's internal logging through zap
type badgerLogger struct {
	logger *zap.SugaredLogger
}

func newBadgerLogger(logger *zap.SugaredLogger) *badgerLogger {
	return &badgerLogger{logger: logger.Named("badger").WithOptions(zap.AddCallerSkip(1))}
}

func (l *badgerLogger) Errorf(format string, args ...interface{}) {
	l.logger.Errorf(format, args...)
}

func (l *badgerLogger) Warningf(format string, args ...interface{}) {
	l.logger.Warnf(format, args...)
}

func (l *badgerLogger) Infof(format string, args ...interface{}) {
	l.logger.Infof(format, args...)
}

func (l *badgerLogger) Debugf(format string, args ...interface{}) {
	l.logger.Debugf(format, args...)
}
