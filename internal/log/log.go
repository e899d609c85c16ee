// Package log provides the package-level zap logger used across growthlapse.
package log

import (
	"fmt"

	"go.uber.org/zap"
)

var log *zap.SugaredLogger

// Init initializes the package-level logger. Debug mode uses zap's
// development config (human-readable, debug level).
func Init(debug bool) error {
	var zapLogger *zap.Logger
	var err error

	if debug {
		zapLogger, err = zap.NewDevelopment(zap.AddCallerSkip(1))
	} else {
		zapLogger, err = zap.NewProduction(zap.AddCallerSkip(1))
	}
	if err != nil {
		return fmt.Errorf("can't initialize zap logger: %v", err)
	}

	log = zapLogger.Sugar()
	return nil
}

// Logger returns the sugared logger, falling back to a no-op logger when
// Init has not been called (tests, library use).
func Logger() *zap.SugaredLogger {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return log
}

// Sync flushes any buffered log entries
func Sync() {
	if log != nil {
		_ = log.Sync()
	}
}

func Debugf(template string, args ...interface{}) {
	Logger().Debugf(template, args...)
}

func Infof(template string, args ...interface{}) {
	Logger().Infof(template, args...)
}

func Warnf(template string, args ...interface{}) {
	Logger().Warnf(template, args...)
}

func Errorf(template string, args ...interface{}) {
	Logger().Errorf(template, args...)
}

// Infow logs a message with structured key/value pairs.
func Infow(msg string, keysAndValues ...interface{}) {
	Logger().Infow(msg, keysAndValues...)
}
