// Package logging provides the structured logger used throughout go.viam.com/rpc.
// It is a thin wrapper over zap.SugaredLogger so callers can log structured
// key/value pairs without every package depending on zap's construction API
// directly.
package logging

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
)

// Logger is the logging surface used by every component in this module.
type Logger interface {
	Debug(args ...interface{})
	Debugf(template string, args ...interface{})
	Debugw(msg string, keysAndValues ...interface{})
	Info(args ...interface{})
	Infof(template string, args ...interface{})
	Infow(msg string, keysAndValues ...interface{})
	Warn(args ...interface{})
	Warnf(template string, args ...interface{})
	Warnw(msg string, keysAndValues ...interface{})
	Error(args ...interface{})
	Errorf(template string, args ...interface{})
	Errorw(msg string, keysAndValues ...interface{})

	// Named returns a descendant logger that prefixes log lines with name.
	Named(name string) Logger
	// AsZap exposes the underlying sugared logger for callers (such as
	// pion/webrtc glue code) that want a *zap.SugaredLogger directly.
	AsZap() *zap.SugaredLogger
}

type impl struct {
	*zap.SugaredLogger
}

func (l *impl) Named(name string) Logger {
	return &impl{l.SugaredLogger.Named(name)}
}

func (l *impl) AsZap() *zap.SugaredLogger {
	return l.SugaredLogger
}

// NewLogger returns a production-configured Logger named name.
func NewLogger(name string) Logger {
	zl, err := zap.NewProduction()
	if err != nil {
		// NewProduction only fails on a broken encoder/sink config, which
		// cannot happen with the defaults used here.
		panic(err)
	}
	return &impl{zl.Sugar().Named(name)}
}

// NewTestLogger returns a Logger that writes to tb's test log.
func NewTestLogger(tb testing.TB) Logger {
	return &impl{zaptest.NewLogger(tb).Sugar()}
}

// NewDebugLogger returns a development-configured (debug level, human
// readable) Logger, useful for dialdbg-style manual invocation.
func NewDebugLogger(name string) Logger {
	zl, err := zap.NewDevelopment()
	if err != nil {
		panic(err)
	}
	return &impl{zl.Sugar().Named(name)}
}
