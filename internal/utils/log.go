// Package utils holds small cross-cutting helpers, currently just the
// logger, modeled on quic-go/quic-go/internal/utils/log.go.
package utils

import (
	"log"
	"os"
	"strconv"
	"time"
)

// LogLevel controls verbosity of the package-level default logger.
type LogLevel uint8

const (
	logEnv = "QUICSOCKET_LOG_LEVEL"

	// LogLevelNothing disables logging.
	LogLevelNothing LogLevel = 0
	// LogLevelError enables error logs.
	LogLevelError LogLevel = 1
	// LogLevelInfo enables info logs (e.g. lifecycle transitions).
	LogLevelInfo LogLevel = 2
	// LogLevelDebug enables debug logs (e.g. per-datagram tracing).
	LogLevelDebug LogLevel = 3
)

// Logger is the logging surface the socket core writes through.
type Logger interface {
	Debug() bool
	Debugf(format string, args ...interface{})
	Infof(format string, args ...interface{})
	Errorf(format string, args ...interface{})
	WithPrefix(prefix string) Logger
}

type defaultLogger struct {
	prefix string
}

var _ Logger = &defaultLogger{}

// DefaultLogger is the logger used when a Config does not set one.
var DefaultLogger Logger = &defaultLogger{}

func init() {
	if e := os.Getenv(logEnv); e != "" {
		level, err := strconv.Atoi(e)
		if err == nil {
			SetLogLevel(LogLevel(level))
		}
	}
}

var logLevel = LogLevelNothing

// SetLogLevel sets the level of the default logger.
func SetLogLevel(level LogLevel) { logLevel = level }

func (l *defaultLogger) Debug() bool { return logLevel == LogLevelDebug }

func (l *defaultLogger) Debugf(format string, args ...interface{}) {
	if logLevel == LogLevelDebug {
		l.logMessage(format, args...)
	}
}

func (l *defaultLogger) Infof(format string, args ...interface{}) {
	if logLevel >= LogLevelInfo {
		l.logMessage(format, args...)
	}
}

func (l *defaultLogger) Errorf(format string, args ...interface{}) {
	if logLevel >= LogLevelError {
		l.logMessage(format, args...)
	}
}

func (l *defaultLogger) logMessage(format string, args ...interface{}) {
	now := time.Now().Format("2006/01/02 15:04:05")
	if l.prefix != "" {
		log.Printf(now+" "+l.prefix+" "+format, args...)
		return
	}
	log.Printf(now+" "+format, args...)
}

func (l *defaultLogger) WithPrefix(prefix string) Logger {
	if l.prefix != "" {
		prefix = l.prefix + " " + prefix
	}
	return &defaultLogger{prefix: prefix}
}
