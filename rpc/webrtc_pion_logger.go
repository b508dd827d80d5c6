package rpc

import (
	"github.com/pion/logging"

	viamlogging "go.viam.com/rpc/logging"
)

// pionLoggerFactory adapts this module's Logger to pion's logging.LoggerFactory,
// so webrtc/ice/sctp/dtls internals log through the same sink as the rest of
// a Dial call instead of pion's default stderr writer.
type pionLoggerFactory struct {
	logger viamlogging.Logger
}

func newPionLoggerFactory(logger viamlogging.Logger) *pionLoggerFactory {
	return &pionLoggerFactory{logger: logger}
}

func (f *pionLoggerFactory) NewLogger(scope string) logging.LeveledLogger {
	return &pionLogger{logger: f.logger.Named(scope)}
}

// pionLogger implements logging.LeveledLogger by forwarding to a
// go.viam.com/rpc/logging.Logger. Pion's Trace level has no sugared-logger
// analog finer than Debug, so Trace collapses into Debug.
type pionLogger struct {
	logger viamlogging.Logger
}

func (l *pionLogger) Trace(msg string)                  { l.logger.Debug(msg) }
func (l *pionLogger) Tracef(format string, args ...interface{}) { l.logger.Debugf(format, args...) }
func (l *pionLogger) Debug(msg string)                  { l.logger.Debug(msg) }
func (l *pionLogger) Debugf(format string, args ...interface{}) { l.logger.Debugf(format, args...) }
func (l *pionLogger) Info(msg string)                   { l.logger.Info(msg) }
func (l *pionLogger) Infof(format string, args ...interface{}) { l.logger.Infof(format, args...) }
func (l *pionLogger) Warn(msg string)                   { l.logger.Warn(msg) }
func (l *pionLogger) Warnf(format string, args ...interface{}) { l.logger.Warnf(format, args...) }
func (l *pionLogger) Error(msg string)                  { l.logger.Error(msg) }
func (l *pionLogger) Errorf(format string, args ...interface{}) { l.logger.Errorf(format, args...) }
